package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	dir := t.TempDir()

	file, err := NewFile(filepath.Join(dir, "docs"))
	require.NoError(t, err)

	sqlite, err := NewSQLite(filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": sqlite,
	}
	if pg := postgresBackend(t); pg != nil {
		stores["postgres"] = pg
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

// postgresBackend connects to BETLEDGER_TEST_PG_DSN, or returns nil when it
// is unset. The contract keys are wiped first.
func postgresBackend(t *testing.T) *Postgres {
	t.Helper()

	dsn := os.Getenv("BETLEDGER_TEST_PG_DSN")
	if dsn == "" {
		t.Log("BETLEDGER_TEST_PG_DSN not set, skipping postgres")
		return nil
	}

	ctx := context.Background()
	pg, err := NewPostgres(ctx, dsn)
	require.NoError(t, err)

	_, err = pg.pool.Exec(ctx, `DELETE FROM documents WHERE key IN ('betledger-bets', 'betledger-config')`)
	require.NoError(t, err)
	return pg
}

func TestStoreContract(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for name, s := range backends(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(ctx, "betledger-bets")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save(ctx, "betledger-bets", []byte(`[{"id":"a"}]`)))
			got, err := s.Load(ctx, "betledger-bets")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"a"}]`, string(got))

			require.NoError(t, s.Save(ctx, "betledger-bets", []byte(`[]`)))
			got, err = s.Load(ctx, "betledger-bets")
			require.NoError(t, err)
			assert.JSONEq(t, `[]`, string(got))

			_, err = s.Load(ctx, "betledger-config")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	in := []byte(`"x"`)
	require.NoError(t, m.Save(ctx, "k", in))
	in[1] = 'y'

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"x"`, string(got))
}

func TestFileSanitizesKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, f.Save(ctx, "../escape/attempt", []byte(`1`)))
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "k", []byte(`{"a":1}`)))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
}

func TestJSONHelpers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()

	var out map[string]int
	found, err := LoadJSON(ctx, m, "cfg", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SaveJSON(ctx, m, "cfg", map[string]int{"limit": 3}))
	found, err = LoadJSON(ctx, m, "cfg", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, out["limit"])

	require.NoError(t, m.Save(ctx, "broken", []byte(`{`)))
	found, err = LoadJSON(ctx, m, "broken", &out)
	assert.True(t, found)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{"default memory", Options{}, ""},
		{"file", Options{Driver: "file", Path: filepath.Join(dir, "files")}, ""},
		{"sqlite", Options{Driver: "sqlite", Path: filepath.Join(dir, "open.db")}, ""},
		{"file without path", Options{Driver: "file"}, "requires a path"},
		{"sqlite without path", Options{Driver: "sqlite"}, "requires a path"},
		{"unknown", Options{Driver: "etcd"}, "unknown storage driver"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.opts)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, s.Close())
		})
	}
}
