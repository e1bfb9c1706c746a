package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	s := NewRedis(db, "betledger")

	mock.ExpectSet("betledger:bets", []byte(`[]`), 0).SetVal("OK")
	mock.ExpectGet("betledger:bets").SetVal(`[]`)

	require.NoError(t, s.Save(ctx, "bets", []byte(`[]`)))
	got, err := s.Load(ctx, "bets")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisMissingKey(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	s := NewRedis(db, "")

	mock.ExpectGet("config").RedisNil()

	_, err := s.Load(ctx, "config")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	s := NewRedis(db, "p")

	mock.ExpectSet("p:bets", []byte(`[]`), 0).SetErr(errors.New("READONLY"))
	mock.ExpectGet("p:bets").SetErr(errors.New("connection reset"))

	err := s.Save(ctx, "bets", []byte(`[]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READONLY")

	_, err = s.Load(ctx, "bets")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
