package ledger

import (
	"fmt"
	"slices"

	"github.com/rustyeddy/betledger/analytics"
	"github.com/rustyeddy/betledger/wager"
)

// Filter narrows a listing. Zero fields match everything.
type Filter struct {
	Status wager.Status
	Result wager.Result
	Tag    string
}

func (f Filter) match(r wager.Record) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Result != "" && r.Result != f.Result {
		return false
	}
	if f.Tag != "" && !slices.Contains(r.Tags, f.Tag) {
		return false
	}
	return true
}

// Records returns a copy of the ledger, most recent first.
func (l *Ledger) Records() []wager.Record {
	return l.Find(Filter{})
}

// Find returns copies of the records matching f, in ledger order.
func (l *Ledger) Find(f Filter) []wager.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]wager.Record, 0, len(l.records))
	for _, r := range l.records {
		if f.match(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (l *Ledger) Get(id string) (wager.Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexOf(id)
	if i < 0 {
		return wager.Record{}, fmt.Errorf("wager %q: %w", id, ErrNotFound)
	}
	return l.records[i].Clone(), nil
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Snapshots returns the daily aggregates computed after the last mutation.
func (l *Ledger) Snapshots() []analytics.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.snapshots)
}

// Trend carries the running balance through the cached snapshots.
func (l *Ledger) Trend() []analytics.TrendPoint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return analytics.TrendSeries(l.snapshots, l.capital.Current().StartingCapital)
}

// Bankroll is the capital available for the next wager.
func (l *Ledger) Bankroll() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return analytics.Bankroll(l.records, l.capital.Current().StartingCapital)
}

// Summary computes every analytics figure against the current risk
// parameters.
func (l *Ledger) Summary() analytics.Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return analytics.Compute(l.records, l.capital.Current())
}
