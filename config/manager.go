package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/betledger/storage"
)

// Key is the storage key of the persisted risk parameters.
const Key = "betledger-config"

// Manager owns the process-wide RiskConfig: it is built from defaults,
// replaced by the persisted snapshot on Bootstrap, and only changes through
// Update, which persists every change.
type Manager struct {
	mu    sync.RWMutex
	store storage.Store
	key   string
	cfg   RiskConfig
	log   zerolog.Logger
}

type ManagerOption func(*Manager)

func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

func WithKey(key string) ManagerOption {
	return func(m *Manager) { m.key = key }
}

func NewManager(store storage.Store, defaults RiskConfig, opts ...ManagerOption) *Manager {
	m := &Manager{
		store: store,
		key:   Key,
		cfg:   defaults,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bootstrap lays the persisted snapshot over the defaults. A missing,
// unreadable or invalid snapshot leaves the defaults in place; only storage
// failures are returned.
func (m *Manager) Bootstrap(ctx context.Context) error {
	data, err := m.store.Load(ctx, m.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load risk config: %w", err)
	}

	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		m.log.Warn().Err(err).Str("key", m.key).Msg("ignoring unreadable risk config snapshot")
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := p.Apply(m.cfg)
	if err := next.Validate(); err != nil {
		m.log.Warn().Err(err).Str("key", m.key).Msg("ignoring invalid risk config snapshot")
		return nil
	}
	m.cfg = next
	m.log.Debug().Float64("starting_capital", next.StartingCapital).Msg("risk config loaded")
	return nil
}

// Current returns a copy of the active parameters.
func (m *Manager) Current() RiskConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Update validates and applies p, then persists the result. Nothing changes
// if validation or the write fails.
func (m *Manager) Update(ctx context.Context, p Patch) (RiskConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := p.Apply(m.cfg)
	if err := next.Validate(); err != nil {
		return m.cfg, err
	}

	if err := storage.SaveJSON(ctx, m.store, m.key, next); err != nil {
		return m.cfg, fmt.Errorf("persist risk config: %w", err)
	}

	m.cfg = next
	m.log.Info().
		Float64("starting_capital", next.StartingCapital).
		Float64("fixed_ratio", next.FixedRatio).
		Float64("kelly_factor", next.KellyFactor).
		Int("stop_loss_limit", next.StopLossLimit).
		Msg("risk config updated")
	return next, nil
}

// Persist writes the current parameters even if nothing changed, so a fresh
// store is seeded with the defaults.
func (m *Manager) Persist(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := storage.SaveJSON(ctx, m.store, m.key, m.cfg); err != nil {
		return fmt.Errorf("persist risk config: %w", err)
	}
	return nil
}
