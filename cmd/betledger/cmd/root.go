package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/betledger/config"
	"github.com/rustyeddy/betledger/internal/logging"
	"github.com/rustyeddy/betledger/ledger"
	"github.com/rustyeddy/betledger/storage"
)

var rootCmd = &cobra.Command{
	Use:   "betledger",
	Short: "A wager ledger with bankroll analytics and stake sizing",
	Long: `Betledger records single and parlay wagers, tracks them from draft to
settlement, and derives bankroll, drawdown, streaks and stake recommendations
from the ledger.

It provides tools for:
  - Recording, updating and settling wagers
  - Pricing N-choose-M parlay tickets from a match catalog
  - Fixed ratio and Kelly stake sizing with a stop-loss gate
  - Exporting the ledger as CSV or Org-mode
  - Serving the ledger as a JSON API`,
	SilenceUsage: true,
}

var (
	cfgFile   string
	logLevel  string
	logPretty bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "betledger.yaml", "config file, defaults are used when it does not exist")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides the config file)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "pretty", false, "human readable logs")
}

// loadConfig reads the config file, or the defaults when there is none.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}

// app is everything a command needs, wired from the config file.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    storage.Store
	settings *config.Manager
	ledger   *ledger.Ledger
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	log := logging.New(level, cfg.Log.Pretty || logPretty, os.Stderr)

	store, err := storage.Open(ctx, storage.Options{
		Driver:   cfg.Storage.Driver,
		Path:     cfg.Storage.Path,
		DSN:      cfg.Storage.DSN,
		Addr:     cfg.Storage.Addr,
		Password: cfg.Storage.Password,
		DB:       cfg.Storage.DB,
		Prefix:   cfg.Storage.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	settings := config.NewManager(store, cfg.Risk, config.WithLogger(log))
	if err := settings.Bootstrap(ctx); err != nil {
		store.Close()
		return nil, err
	}

	l := ledger.New(store, settings, ledger.WithLogger(log))
	if err := l.Bootstrap(ctx); err != nil {
		store.Close()
		return nil, err
	}

	log.Debug().Str("driver", cfg.Storage.Driver).Msg("storage opened")
	return &app{cfg: cfg, log: log, store: store, settings: settings, ledger: l}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// withApp opens the app around fn.
func withApp(cmd *cobra.Command, fn func(*app) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
