// Package ledger owns the collection of wager records. Every mutation goes
// through the Ledger so the lifecycle and balance rules cannot be bypassed,
// and every accepted mutation is written through to storage before it
// becomes visible.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/betledger/analytics"
	"github.com/rustyeddy/betledger/config"
	"github.com/rustyeddy/betledger/metrics"
	"github.com/rustyeddy/betledger/storage"
	"github.com/rustyeddy/betledger/wager"
)

// Key is the storage key of the persisted record collection.
const Key = "betledger-bets"

var (
	ErrNotFound          = errors.New("wager not found")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicate         = errors.New("wager already exists")
	ErrInvalid           = errors.New("invalid wager input")
)

// CapitalSource supplies the current risk parameters. *config.Manager
// satisfies it.
type CapitalSource interface {
	Current() config.RiskConfig
}

type Ledger struct {
	mu      sync.RWMutex
	store   storage.Store
	capital CapitalSource
	key     string
	log     zerolog.Logger
	now     func() time.Time

	records   []wager.Record
	snapshots []analytics.Snapshot
}

type Option func(*Ledger)

func WithKey(key string) Option {
	return func(l *Ledger) { l.key = key }
}

func WithLogger(log zerolog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithClock replaces time.Now for ids and default bet times.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(store storage.Store, capital CapitalSource, opts ...Option) *Ledger {
	l := &Ledger{
		store:     store,
		capital:   capital,
		key:       Key,
		log:       zerolog.Nop(),
		now:       time.Now,
		snapshots: []analytics.Snapshot{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Bootstrap loads the persisted records and normalizes each one, which is
// where older record shapes are migrated. A missing or undecodable
// collection starts an empty ledger; storage failures are returned.
func (l *Ledger) Bootstrap(ctx context.Context) error {
	data, err := l.store.Load(ctx, l.key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("bootstrap ledger: %w", err)
	}

	var records []wager.Record
	if err == nil {
		records, err = wager.DecodeRecords(data, l.now())
		if err != nil {
			l.log.Warn().Err(err).Str("key", l.key).Msg("ignoring unreadable ledger, starting empty")
			records = nil
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = dedupe(records)
	l.recompute()
	l.log.Info().Int("records", len(l.records)).Msg("ledger loaded")
	return nil
}

// Add normalizes p into a new record and puts it at the head of the ledger.
// A record that starts out betting must fit in the bankroll.
func (l *Ledger) Add(ctx context.Context, p wager.Payload) (rec wager.Record, err error) {
	defer func() { metrics.ObserveOp("add", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec = wager.Normalize(wager.Apply(wager.Record{}, p), l.now())
	if l.indexOf(rec.ID) >= 0 {
		return wager.Record{}, fmt.Errorf("add: wager %q: %w", rec.ID, ErrDuplicate)
	}
	if rec.Status == wager.StatusBetting {
		if err := l.checkBalance(rec, l.records); err != nil {
			return wager.Record{}, fmt.Errorf("add: %w", err)
		}
	}

	next := make([]wager.Record, 0, len(l.records)+1)
	next = append(next, rec)
	next = append(next, l.records...)
	if err := l.commit(ctx, next); err != nil {
		return wager.Record{}, fmt.Errorf("add: %w", err)
	}

	l.logRecord(rec, "wager added")
	return rec.Clone(), nil
}

// Update merges p over the record with id and re-normalizes it. Moving a
// record into betting from any other status runs the balance guard against
// the rest of the ledger. A draft cannot jump straight to settled. The id
// itself cannot change, and the legs of a settled record are fixed.
func (l *Ledger) Update(ctx context.Context, id string, p wager.Payload) (rec wager.Record, err error) {
	defer func() { metrics.ObserveOp("update", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return wager.Record{}, fmt.Errorf("update: wager %q: %w", id, ErrNotFound)
	}
	cur := l.records[i]
	if cur.Status == wager.StatusSettled && p.LegsChanged() {
		l.reject("illegal_transition")
		return wager.Record{}, fmt.Errorf("update: legs of settled wager %q: %w", id, ErrIllegalTransition)
	}

	p.ID = nil
	rec = wager.Normalize(wager.Apply(cur, p), l.now())
	if rec.Status == wager.StatusSettled && cur.Status == wager.StatusSaved {
		l.reject("illegal_transition")
		return wager.Record{}, fmt.Errorf("update: draft %q cannot be settled: %w", id, ErrIllegalTransition)
	}
	if rec.Status == wager.StatusBetting && cur.Status != wager.StatusBetting {
		if err := l.checkBalance(rec, l.without(i)); err != nil {
			return wager.Record{}, fmt.Errorf("update: %w", err)
		}
	}

	next := slices.Clone(l.records)
	next[i] = rec
	if err := l.commit(ctx, next); err != nil {
		return wager.Record{}, fmt.Errorf("update: %w", err)
	}

	l.logRecord(rec, "wager updated")
	return rec.Clone(), nil
}

// Settle moves a betting record to settled and derives its profit. An empty
// result keeps the one already on the record.
func (l *Ledger) Settle(ctx context.Context, id string, result wager.Result) (rec wager.Record, err error) {
	defer func() { metrics.ObserveOp("settle", err) }()

	if result != "" && !result.Valid() {
		return wager.Record{}, fmt.Errorf("settle: result %q: %w", result, ErrInvalid)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return wager.Record{}, fmt.Errorf("settle: wager %q: %w", id, ErrNotFound)
	}
	cur := l.records[i]
	if cur.Status != wager.StatusBetting {
		l.reject("illegal_transition")
		return wager.Record{}, fmt.Errorf("settle: wager %q is %s: %w", id, cur.Status, ErrIllegalTransition)
	}

	rec = cur.Clone()
	rec.Status = wager.StatusSettled
	if result != "" {
		rec.Result = result
	}
	rec = wager.Normalize(rec, l.now())

	next := slices.Clone(l.records)
	next[i] = rec
	if err := l.commit(ctx, next); err != nil {
		return wager.Record{}, fmt.Errorf("settle: %w", err)
	}

	metrics.Settlements.WithLabelValues(string(rec.Result)).Inc()
	l.logRecord(rec, "wager settled")
	return rec.Clone(), nil
}

// Remove deletes the record with id whatever its status.
func (l *Ledger) Remove(ctx context.Context, id string) (err error) {
	defer func() { metrics.ObserveOp("remove", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return fmt.Errorf("remove: wager %q: %w", id, ErrNotFound)
	}
	if err := l.commit(ctx, l.without(i)); err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	l.log.Info().Str("id", id).Msg("wager removed")
	return nil
}

// Clear empties the ledger.
func (l *Ledger) Clear(ctx context.Context) (err error) {
	defer func() { metrics.ObserveOp("clear", err) }()

	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.records)
	if err := l.commit(ctx, []wager.Record{}); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	l.log.Info().Int("removed", n).Msg("ledger cleared")
	return nil
}

// commit persists next and, only once that succeeded, makes it the ledger.
// Callers hold the write lock.
func (l *Ledger) commit(ctx context.Context, next []wager.Record) error {
	data, err := wager.EncodeRecords(next)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	start := time.Now()
	err = l.store.Save(ctx, l.key, data)
	metrics.PersistDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		l.log.Error().Err(err).Str("key", l.key).Msg("persist ledger")
		return fmt.Errorf("persist ledger: %w", err)
	}

	l.records = next
	l.recompute()
	return nil
}

// recompute refreshes everything cached from the records. Callers hold the
// write lock.
func (l *Ledger) recompute() {
	l.snapshots = analytics.Snapshots(l.records)

	byStatus := map[string]int{
		string(wager.StatusSaved):   0,
		string(wager.StatusBetting): 0,
		string(wager.StatusSettled): 0,
	}
	for _, r := range l.records {
		byStatus[string(r.Status)]++
	}
	metrics.SetBook(
		analytics.Bankroll(l.records, l.capital.Current().StartingCapital),
		analytics.ActiveStake(l.records),
		byStatus,
	)
}

func (l *Ledger) checkBalance(rec wager.Record, others []wager.Record) error {
	bankroll := analytics.Bankroll(others, l.capital.Current().StartingCapital)
	if rec.Stake <= bankroll {
		return nil
	}
	l.reject("insufficient_funds")
	l.log.Warn().
		Str("id", rec.ID).
		Float64("stake", rec.Stake).
		Float64("bankroll", bankroll).
		Msg("stake exceeds bankroll")
	return fmt.Errorf("%w: stake %.2f exceeds bankroll %.2f", ErrInsufficientFunds, rec.Stake, bankroll)
}

func (l *Ledger) reject(reason string) {
	metrics.GuardRejections.WithLabelValues(reason).Inc()
}

func (l *Ledger) logRecord(rec wager.Record, msg string) {
	l.log.Info().
		Str("id", rec.ID).
		Str("status", string(rec.Status)).
		Str("result", string(rec.Result)).
		Float64("stake", rec.Stake).
		Float64("odds", rec.Odds).
		Float64("profit", rec.Profit).
		Msg(msg)
}

func (l *Ledger) indexOf(id string) int {
	return slices.IndexFunc(l.records, func(r wager.Record) bool { return r.ID == id })
}

// without returns a copy of the records minus index i.
func (l *Ledger) without(i int) []wager.Record {
	out := make([]wager.Record, 0, len(l.records)-1)
	out = append(out, l.records[:i]...)
	return append(out, l.records[i+1:]...)
}

// dedupe keeps the first (most recent) record for each id.
func dedupe(records []wager.Record) []wager.Record {
	seen := make(map[string]bool, len(records))
	out := make([]wager.Record, 0, len(records))
	for _, r := range records {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}
