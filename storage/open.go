package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver   string // memory, file, sqlite, redis, postgres
	Path     string // file directory or sqlite database path
	DSN      string // postgres connection string
	Addr     string // redis address
	Password string
	DB       int
	Prefix   string // redis key prefix
}

// Open builds the backend named by o.Driver.
func Open(ctx context.Context, o Options) (Store, error) {
	switch o.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "file":
		if o.Path == "" {
			return nil, fmt.Errorf("file storage requires a path")
		}
		return NewFile(o.Path)
	case "sqlite":
		if o.Path == "" {
			return nil, fmt.Errorf("sqlite storage requires a path")
		}
		return NewSQLite(o.Path)
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     o.Addr,
			Password: o.Password,
			DB:       o.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedis(rdb, o.Prefix), nil
	case "postgres":
		return NewPostgres(ctx, o.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", o.Driver)
	}
}
