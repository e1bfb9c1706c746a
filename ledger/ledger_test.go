package ledger

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/betledger/cart"
	"github.com/rustyeddy/betledger/config"
	"github.com/rustyeddy/betledger/storage"
	"github.com/rustyeddy/betledger/wager"
)

var testNow = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)

type fixedCapital config.RiskConfig

func (f fixedCapital) Current() config.RiskConfig { return config.RiskConfig(f) }

func capital(start float64) fixedCapital {
	cfg := config.DefaultRisk()
	cfg.StartingCapital = start
	return fixedCapital(cfg)
}

// flakyStore fails every Save while failing is set.
type flakyStore struct {
	*storage.Memory
	failing atomic.Bool
	loadErr error
}

var errDisk = errors.New("disk full")

func (s *flakyStore) Save(ctx context.Context, key string, value []byte) error {
	if s.failing.Load() {
		return errDisk
	}
	return s.Memory.Save(ctx, key, value)
}

func (s *flakyStore) Load(ctx context.Context, key string) ([]byte, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.Memory.Load(ctx, key)
}

func newLedger(t *testing.T, start float64) (*Ledger, *flakyStore) {
	t.Helper()
	store := &flakyStore{Memory: storage.NewMemory()}
	l := New(store, capital(start), WithClock(func() time.Time { return testNow }))
	require.NoError(t, l.Bootstrap(context.Background()))
	return l, store
}

func single(stake, odds float64, status wager.Status) wager.Payload {
	return wager.Payload{
		Stake:  wager.Ptr(stake),
		Status: wager.Ptr(status),
		Legs: []wager.Leg{{
			HomeTeam: "Arsenal",
			AwayTeam: "Chelsea",
			League:   "EPL",
			Odds:     odds,
		}},
	}
}

func TestAddPrependsAndPersists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, store := newLedger(t, 10000)

	first, err := l.Add(ctx, single(100, 2, wager.StatusSaved))
	require.NoError(t, err)
	second, err := l.Add(ctx, single(50, 3, wager.StatusSaved))
	require.NoError(t, err)

	records := l.Records()
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)
	assert.Equal(t, "Arsenal vs Chelsea", first.MatchName)

	data, err := store.Load(ctx, Key)
	require.NoError(t, err)
	persisted, err := wager.DecodeRecords(data, testNow)
	require.NoError(t, err)
	assert.Equal(t, records, persisted)
}

func TestAddBalanceGuard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _ := newLedger(t, 100)

	_, err := l.Add(ctx, single(60, 2, wager.StatusBetting))
	require.NoError(t, err)
	assert.Equal(t, 40.0, l.Bankroll())

	_, err = l.Add(ctx, single(41, 2, wager.StatusBetting))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 1, l.Len(), "rejected add leaves the ledger as it was")

	_, err = l.Add(ctx, single(40, 2, wager.StatusBetting))
	require.NoError(t, err, "stake equal to the bankroll is allowed")

	_, err = l.Add(ctx, single(5000, 2, wager.StatusSaved))
	require.NoError(t, err, "drafts are not checked")
	assert.Equal(t, 0.0, l.Bankroll())
}

func TestAddDuplicateID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _ := newLedger(t, 100)

	p := single(1, 2, wager.StatusSaved)
	p.ID = wager.Ptr("fixed")
	_, err := l.Add(ctx, p)
	require.NoError(t, err)

	_, err = l.Add(ctx, p)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, l.Len())
}

func TestBankrollScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _ := newLedger(t, 1000)

	rec, err := l.Add(ctx, single(100, 2.15, wager.StatusBetting))
	require.NoError(t, err)
	assert.Equal(t, 900.0, l.Bankroll())

	settled, err := l.Settle(ctx, rec.ID, wager.ResultWin)
	require.NoError(t, err)
	assert.Equal(t, wager.StatusSettled, settled.Status)
	assert.InDelta(t, 115.0, settled.Profit, 1e-9)
	assert.InDelta(t, 1115.0, l.Bankroll(), 1e-9)
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t, 100)
		_, err := l.Update(ctx, "missing", wager.Payload{Note: wager.Ptr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("into betting is guarded", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t, 100)
		draft, err := l.Add(ctx, single(150, 2, wager.StatusSaved))
		require.NoError(t, err)

		_, err = l.Update(ctx, draft.ID, wager.Payload{Status: wager.Ptr(wager.StatusBetting)})
		require.ErrorIs(t, err, ErrInsufficientFunds)
		got, _ := l.Get(draft.ID)
		assert.Equal(t, wager.StatusSaved, got.Status)

		got, err = l.Update(ctx, draft.ID, wager.Payload{
			Stake:  wager.Ptr(100.0),
			Status: wager.Ptr(wager.StatusBetting),
		})
		require.NoError(t, err)
		assert.Equal(t, wager.StatusBetting, got.Status)
		assert.Equal(t, 0.0, l.Bankroll())
	})

	t.Run("staying in betting is not re-checked", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t, 100)
		rec, err := l.Add(ctx, single(80, 2, wager.StatusBetting))
		require.NoError(t, err)

		got, err := l.Update(ctx, rec.ID, wager.Payload{Stake: wager.Ptr(150.0)})
		require.NoError(t, err)
		assert.Equal(t, 150.0, got.Stake)
	})

	t.Run("guard excludes the record being moved", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t, 100)
		rec, err := l.Add(ctx, single(100, 2, wager.StatusBetting))
		require.NoError(t, err)
		_, err = l.Settle(ctx, rec.ID, wager.ResultLose)
		require.NoError(t, err)
		assert.Equal(t, 0.0, l.Bankroll())

		// Reopening the lost wager puts its stake back at risk instead of
		// counting the loss as well.
		got, err := l.Update(ctx, rec.ID, wager.Payload{Status: wager.Ptr(wager.StatusBetting)})
		require.NoError(t, err)
		assert.Zero(t, got.Profit)
		assert.Equal(t, 0.0, l.Bankroll())
	})

	t.Run("leaving betting releases the stake", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t, 100)
		rec, err := l.Add(ctx, single(70, 2, wager.StatusBetting))
		require.NoError(t, err)

		_, err = l.Update(ctx, rec.ID, wager.Payload{Status: wager.Ptr(wager.StatusSaved)})
		require.NoError(t, err)
		assert.Equal(t, 100.0, l.Bankroll())
	})

	t.Run("settled legs are fixed", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t, 100)
		rec, err := l.Add(ctx, single(10, 2, wager.StatusBetting))
		require.NoError(t, err)
		_, err = l.Settle(ctx, rec.ID, wager.ResultWin)
		require.NoError(t, err)

		_, err = l.Update(ctx, rec.ID, wager.Payload{Legs: []wager.Leg{{Odds: 9}}})
		assert.ErrorIs(t, err, ErrIllegalTransition)

		got, err := l.Update(ctx, rec.ID, wager.Payload{Result: wager.Ptr(wager.ResultHalfWin)})
		require.NoError(t, err, "settled results can be corrected")
		assert.Equal(t, 5.0, got.Profit)
	})

	t.Run("draft cannot be settled", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t, 100)
		draft, err := l.Add(ctx, single(5000, 3, wager.StatusSaved))
		require.NoError(t, err)

		_, err = l.Update(ctx, draft.ID, wager.Payload{
			Status: wager.Ptr(wager.StatusSettled),
			Result: wager.Ptr(wager.ResultWin),
		})
		require.ErrorIs(t, err, ErrIllegalTransition)

		got, err := l.Get(draft.ID)
		require.NoError(t, err)
		assert.Equal(t, wager.StatusSaved, got.Status)
		assert.Zero(t, got.Profit)
		assert.Equal(t, 100.0, l.Bankroll())
	})

	t.Run("betting can be settled by update", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t, 100)
		rec, err := l.Add(ctx, single(10, 2, wager.StatusBetting))
		require.NoError(t, err)

		got, err := l.Update(ctx, rec.ID, wager.Payload{
			Status: wager.Ptr(wager.StatusSettled),
			Result: wager.Ptr(wager.ResultWin),
		})
		require.NoError(t, err)
		assert.Equal(t, 10.0, got.Profit)
		assert.Equal(t, 110.0, l.Bankroll())
	})

	t.Run("parlay shrunk to one leg", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t, 100)
		rec, err := l.Add(ctx, wager.Payload{
			Stake: wager.Ptr(10.0),
			Legs: []wager.Leg{
				{HomeTeam: "Arsenal", AwayTeam: "Chelsea", League: "EPL", Odds: 2},
				{HomeTeam: "Milan", AwayTeam: "Roma", League: "Serie A", Odds: 1.5},
			},
		})
		require.NoError(t, err)
		require.Equal(t, "parlay", rec.League)

		got, err := l.Update(ctx, rec.ID, wager.Payload{Legs: []wager.Leg{{HomeTeam: "Milan", Odds: 1.5}}})
		require.NoError(t, err)
		assert.Equal(t, wager.Single, got.WagerType)
		assert.Equal(t, "Milan", got.MatchName)
		assert.Empty(t, got.League)
		assert.Equal(t, 1.5, got.Odds)
	})

	t.Run("id cannot change", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t, 100)
		rec, err := l.Add(ctx, single(10, 2, wager.StatusSaved))
		require.NoError(t, err)

		got, err := l.Update(ctx, rec.ID, wager.Payload{ID: wager.Ptr("other"), Note: wager.Ptr("n")})
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, "n", got.Note)
	})
}

func TestSettle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		status  wager.Status
		result  wager.Result
		wantErr error
	}{
		{"from saved", wager.StatusSaved, wager.ResultWin, ErrIllegalTransition},
		{"twice", wager.StatusSettled, wager.ResultWin, ErrIllegalTransition},
		{"unknown result", wager.StatusBetting, wager.Result("void"), ErrInvalid},
		{"from betting", wager.StatusBetting, wager.ResultLose, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, _ := newLedger(t, 1000)
			rec, err := l.Add(ctx, single(10, 2, wager.StatusBetting))
			require.NoError(t, err)
			if tt.status == wager.StatusSettled {
				_, err = l.Settle(ctx, rec.ID, wager.ResultLose)
				require.NoError(t, err)
			} else if tt.status != wager.StatusBetting {
				_, err = l.Update(ctx, rec.ID, wager.Payload{Status: wager.Ptr(tt.status)})
				require.NoError(t, err)
			}
			before, _ := l.Get(rec.ID)

			_, err = l.Settle(ctx, rec.ID, tt.result)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				after, _ := l.Get(rec.ID)
				assert.Equal(t, before, after)
				return
			}
			require.NoError(t, err)
		})
	}

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t, 1000)
		_, err := l.Settle(ctx, "nope", wager.ResultWin)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty result keeps existing", func(t *testing.T) {
		t.Parallel()
		l, _ := newLedger(t, 1000)
		p := single(10, 2, wager.StatusBetting)
		p.Result = wager.Ptr(wager.ResultHalfLose)
		rec, err := l.Add(ctx, p)
		require.NoError(t, err)
		assert.Zero(t, rec.Profit, "no profit before settlement")

		got, err := l.Settle(ctx, rec.ID, "")
		require.NoError(t, err)
		assert.Equal(t, wager.ResultHalfLose, got.Result)
		assert.Equal(t, -5.0, got.Profit)
	})
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, store := newLedger(t, 100)

	a, err := l.Add(ctx, single(10, 2, wager.StatusBetting))
	require.NoError(t, err)
	_, err = l.Add(ctx, single(10, 2, wager.StatusSaved))
	require.NoError(t, err)

	assert.ErrorIs(t, l.Remove(ctx, "missing"), ErrNotFound)
	require.NoError(t, l.Remove(ctx, a.ID))
	assert.Equal(t, 1, l.Len())
	_, err = l.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, l.Clear(ctx))
	assert.Zero(t, l.Len())
	assert.Empty(t, l.Snapshots())

	data, err := store.Load(ctx, Key)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestPersistFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, store := newLedger(t, 1000)

	rec, err := l.Add(ctx, single(10, 2, wager.StatusBetting))
	require.NoError(t, err)
	before := l.Records()
	snaps := l.Snapshots()

	store.failing.Store(true)

	_, err = l.Add(ctx, single(10, 2, wager.StatusSaved))
	assert.ErrorIs(t, err, errDisk)
	_, err = l.Update(ctx, rec.ID, wager.Payload{Stake: wager.Ptr(20.0)})
	assert.ErrorIs(t, err, errDisk)
	_, err = l.Settle(ctx, rec.ID, wager.ResultWin)
	assert.ErrorIs(t, err, errDisk)
	assert.ErrorIs(t, l.Remove(ctx, rec.ID), errDisk)
	assert.ErrorIs(t, l.Clear(ctx), errDisk)

	assert.Equal(t, before, l.Records())
	assert.Equal(t, snaps, l.Snapshots())
}

func TestBootstrap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("migrates legacy records", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemory()
		legacy := `[
			{"id":"b","homeTeam":"Milan","awayTeam":"Roma","odds":2.0,"stake":10,"result":"win","betTime":"2024-05-30 18:00"},
			{"id":"a","homeTeam":"Ajax","odds":1.5,"stake":4,"result":"pending","betTime":"2024-05-29 18:00"},
			{"id":"a","stake":999}
		]`
		require.NoError(t, store.Save(ctx, Key, []byte(legacy)))

		l := New(store, capital(1000), WithClock(func() time.Time { return testNow }))
		require.NoError(t, l.Bootstrap(ctx))

		records := l.Records()
		require.Len(t, records, 2, "duplicate ids keep the most recent")
		assert.Equal(t, wager.StatusSettled, records[0].Status)
		assert.Equal(t, 10.0, records[0].Profit)
		assert.Equal(t, "Milan vs Roma", records[0].MatchName)
		assert.Equal(t, wager.StatusSaved, records[1].Status)
		assert.Equal(t, 1010.0, l.Bankroll())
		assert.Len(t, l.Snapshots(), 1)
	})

	t.Run("missing key starts empty", func(t *testing.T) {
		t.Parallel()
		l := New(storage.NewMemory(), capital(1000))
		require.NoError(t, l.Bootstrap(ctx))
		assert.Zero(t, l.Len())
	})

	t.Run("garbage starts empty", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemory()
		require.NoError(t, store.Save(ctx, Key, []byte(`{"not":"a list"`)))
		l := New(store, capital(1000))
		require.NoError(t, l.Bootstrap(ctx))
		assert.Zero(t, l.Len())
	})

	t.Run("storage error is returned", func(t *testing.T) {
		t.Parallel()
		store := &flakyStore{Memory: storage.NewMemory(), loadErr: errDisk}
		l := New(store, capital(1000))
		assert.ErrorIs(t, l.Bootstrap(ctx), errDisk)
	})

	t.Run("custom key", func(t *testing.T) {
		t.Parallel()
		store := storage.NewMemory()
		l := New(store, capital(1000), WithKey("alt"))
		require.NoError(t, l.Bootstrap(ctx))
		_, err := l.Add(ctx, single(1, 2, wager.StatusSaved))
		require.NoError(t, err)

		_, err = store.Load(ctx, Key)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.Load(ctx, "alt")
		assert.NoError(t, err)
	})
}

func TestFindAndSummary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _ := newLedger(t, 1000)

	p := single(10, 2, wager.StatusBetting)
	p.Tags = []string{"weekend"}
	won, err := l.Add(ctx, p)
	require.NoError(t, err)
	_, err = l.Settle(ctx, won.ID, wager.ResultWin)
	require.NoError(t, err)
	_, err = l.Add(ctx, single(20, 2, wager.StatusBetting))
	require.NoError(t, err)
	_, err = l.Add(ctx, single(30, 2, wager.StatusSaved))
	require.NoError(t, err)

	assert.Len(t, l.Find(Filter{Status: wager.StatusBetting}), 1)
	assert.Len(t, l.Find(Filter{Tag: "weekend"}), 1)
	assert.Len(t, l.Find(Filter{Result: wager.ResultWin}), 1)
	assert.Len(t, l.Find(Filter{}), 3)

	s := l.Summary()
	assert.Equal(t, 30.0, s.TotalStake)
	assert.Equal(t, 10.0, s.TotalProfit)
	assert.Equal(t, 990.0, s.Bankroll)
	assert.Equal(t, 1.0, s.WinningRate)

	trend := l.Trend()
	require.Len(t, trend, 1)
	assert.Equal(t, 1010.0, trend[0].Balance)
}

func TestRecordsAreCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _ := newLedger(t, 1000)

	rec, err := l.Add(ctx, single(10, 2, wager.StatusSaved))
	require.NoError(t, err)

	rec.Legs[0].Odds = 99
	list := l.Records()
	list[0].Tags = append(list[0].Tags, "mutated")

	got, err := l.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Legs[0].Odds)
	assert.Empty(t, got.Tags)
}

func TestCartToSettlement(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _ := newLedger(t, 10000)

	c := cart.New()
	c.Toggle(cart.Selection{MatchID: "1", HomeTeam: "Arsenal", AwayTeam: "Chelsea", PlayType: "had", Selection: "win", Odds: 2.15})
	c.Toggle(cart.Selection{MatchID: "2", HomeTeam: "Milan", AwayTeam: "Roma", PlayType: "had", Selection: "draw", Odds: 1.65})
	assert.Equal(t, "2_1", c.GroupingLabel())
	assert.Equal(t, 3.5475, c.AggregateOdds())
	assert.Equal(t, 2.0, c.TotalStake())

	rec, err := c.Submit(ctx, l, wager.StatusBetting)
	require.NoError(t, err)
	assert.Zero(t, c.Count())
	assert.Equal(t, wager.Parlay, rec.WagerType)
	assert.Equal(t, "Arsenal vs Chelsea and 1 others", rec.MatchName)
	assert.Equal(t, 3.5475, rec.Odds)
	assert.Equal(t, 9998.0, l.Bankroll())

	settled, err := l.Settle(ctx, rec.ID, wager.ResultWin)
	require.NoError(t, err)
	assert.Equal(t, 5.095, settled.Profit)
	assert.Equal(t, 10005.095, l.Bankroll())
	assert.Equal(t, 10005.1, wager.Round2(l.Bankroll()))
}
