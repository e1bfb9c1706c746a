package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/betledger/storage"
)

type failingStore struct {
	*storage.Memory
	saveErr error
	loadErr error
}

func (f *failingStore) Save(ctx context.Context, key string, value []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Memory.Save(ctx, key, value)
}

func (f *failingStore) Load(ctx context.Context, key string) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.Memory.Load(ctx, key)
}

func ptr[T any](v T) *T { return &v }

func TestManagerBootstrapWithoutSnapshot(t *testing.T) {
	t.Parallel()

	m := NewManager(storage.NewMemory(), DefaultRisk())
	require.NoError(t, m.Bootstrap(context.Background()))
	assert.Equal(t, DefaultRisk(), m.Current())
}

func TestManagerBootstrapMergesSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Save(ctx, Key, []byte(`{"startingCapital":5000,"theme":"dark"}`)))

	m := NewManager(store, DefaultRisk())
	require.NoError(t, m.Bootstrap(ctx))

	got := m.Current()
	assert.Equal(t, 5000.0, got.StartingCapital)
	assert.Equal(t, "dark", got.Theme)
	assert.Equal(t, 0.5, got.KellyFactor)
}

func TestManagerBootstrapIgnoresBadSnapshots(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for name, raw := range map[string]string{
		"unreadable": `{"startingCapital":`,
		"invalid":    `{"startingCapital":-10}`,
	} {
		raw := raw
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			store := storage.NewMemory()
			require.NoError(t, store.Save(ctx, Key, []byte(raw)))

			m := NewManager(store, DefaultRisk())
			require.NoError(t, m.Bootstrap(ctx))
			assert.Equal(t, DefaultRisk(), m.Current())
		})
	}
}

func TestManagerBootstrapStorageError(t *testing.T) {
	t.Parallel()

	store := &failingStore{Memory: storage.NewMemory(), loadErr: errors.New("disk gone")}
	m := NewManager(store, DefaultRisk())

	err := m.Bootstrap(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestManagerUpdatePersists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	m := NewManager(store, DefaultRisk())

	got, err := m.Update(ctx, Patch{KellyFactor: ptr(0.25), StopLossLimit: ptr(5), Theme: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, 0.25, got.KellyFactor)
	assert.Equal(t, 5, got.StopLossLimit)
	assert.Equal(t, "light", got.Theme)

	reloaded := NewManager(store, DefaultRisk())
	require.NoError(t, reloaded.Bootstrap(ctx))
	assert.Equal(t, got, reloaded.Current())
}

func TestManagerUpdateRejectsInvalid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	m := NewManager(store, DefaultRisk())

	_, err := m.Update(ctx, Patch{FixedRatio: ptr(2.0)})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, DefaultRisk(), m.Current())

	_, err = store.Load(ctx, Key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestManagerUpdateKeepsStateOnWriteFailure(t *testing.T) {
	t.Parallel()

	store := &failingStore{Memory: storage.NewMemory(), saveErr: errors.New("read-only")}
	m := NewManager(store, DefaultRisk())

	_, err := m.Update(context.Background(), Patch{StartingCapital: ptr(1.0)})
	require.Error(t, err)
	assert.Equal(t, DefaultRisk(), m.Current())
}

func TestManagerPersistSeedsStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	m := NewManager(store, DefaultRisk(), WithKey("alt"))
	require.NoError(t, m.Persist(ctx))

	var got RiskConfig
	found, err := storage.LoadJSON(ctx, store, "alt", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, DefaultRisk(), got)
}
