package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_SaveAndList(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveInvocation(Invocation{
		Config: "bench.toml", Output: "results.json", Runs: 2, Succeeded: 2,
		Report: `{"results": []}`,
	}))
	require.NoError(t, store.SaveInvocation(Invocation{
		Config: "other.toml", Runs: 3, Succeeded: 1,
	}))

	invs, err := store.ListInvocations(10)
	require.NoError(t, err)
	require.Len(t, invs, 2)

	// Most recent first.
	assert.Equal(t, "other.toml", invs[0].Config)
	assert.Equal(t, 3, invs[0].Runs)
	assert.Equal(t, 1, invs[0].Succeeded)
	assert.Equal(t, "bench.toml", invs[1].Config)
	assert.Equal(t, "results.json", invs[1].Output)
	assert.False(t, invs[1].CreatedAt.IsZero())
}

func TestSQLiteStore_ListLimit(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveInvocation(Invocation{Config: "bench.toml", Runs: 1}))
	}

	invs, err := store.ListInvocations(3)
	require.NoError(t, err)
	assert.Len(t, invs, 3)
}

func TestSQLiteStore_GetInvocation(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SaveInvocation(Invocation{
		Config: "bench.toml", Runs: 1, Succeeded: 1, Report: `{"results": []}`,
	}))

	invs, err := store.ListInvocations(1)
	require.NoError(t, err)
	require.Len(t, invs, 1)

	inv, err := store.GetInvocation(invs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "bench.toml", inv.Config)
	assert.Equal(t, `{"results": []}`, inv.Report)

	_, err = store.GetInvocation(9999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
