package database

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestGuildSettingsDefaultInit(t *testing.T) {
	s, _ := openTestStore(t)

	gs, err := s.GetGuildSettings("g-1")
	require.NoError(t, err)
	assert.Equal(t, "g-1", gs.ID)
	assert.True(t, gs.Enabled)
	assert.Empty(t, gs.VerifyRoles)

	// The default doc is persisted on first read
	again, err := s.GetGuildSettings("g-1")
	require.NoError(t, err)
	assert.Equal(t, gs, again)
}

func TestGuildSettingsRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)

	gs, err := s.GetGuildSettings("g-1")
	require.NoError(t, err)

	gs.Enabled = false
	gs.VerifyRoles = []string{"r-1", "r-2"}
	gs.VerifiedMsg = "welcome aboard"
	require.NoError(t, s.UpdateGuildSettings(gs))

	got, err := s.GetGuildSettings("g-1")
	require.NoError(t, err)
	assert.Equal(t, gs, got)
}

func TestMarkUsedAndIsUsed(t *testing.T) {
	s, _ := openTestStore(t)

	used, err := s.IsUsed("ABC123", 42)
	require.NoError(t, err)
	assert.False(t, used)

	require.NoError(t, s.MarkUsed("ABC123", 42, "verifier"))

	used, err = s.IsUsed("ABC123", 42)
	require.NoError(t, err)
	assert.True(t, used)

	// Composite key: same code for another account is untouched
	used, err = s.IsUsed("ABC123", 43)
	require.NoError(t, err)
	assert.False(t, used)

	assert.ErrorIs(t, s.MarkUsed("ABC123", 42, "verifier"), ErrCodeConflict)
}

func TestMarkUsedConcurrentSingleWinner(t *testing.T) {
	s, _ := openTestStore(t)

	const attempts = 16
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.MarkUsed("ABC123", 42, "verifier")
		}()
	}
	wg.Wait()
	close(results)

	wins, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrCodeConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, conflicts)
}

func TestUnburn(t *testing.T) {
	s, _ := openTestStore(t)

	assert.ErrorIs(t, s.Unburn("ABC123", 42), ErrRecordNotFound)

	require.NoError(t, s.MarkUsed("ABC123", 42, "verifier"))
	require.NoError(t, s.Unburn("ABC123", 42))

	used, err := s.IsUsed("ABC123", 42)
	require.NoError(t, err)
	assert.False(t, used)

	// The code can be consumed again after recovery
	assert.NoError(t, s.MarkUsed("ABC123", 42, "verifier"))
}

func TestLedgerReopenKeepsRecords(t *testing.T) {
	s, path := openTestStore(t)
	require.NoError(t, s.MarkUsed("ABC123", 42, "verifier"))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	used, err := s2.IsUsed("ABC123", 42)
	require.NoError(t, err)
	assert.True(t, used)
}

func TestLedgerSchemaSelfHeal(t *testing.T) {
	s, path := openTestStore(t)
	require.NoError(t, s.MarkUsed("ABC123", 42, "verifier"))
	require.NoError(t, s.Close())

	// Simulate a db written by a build with a different ledger layout
	db, err := bolt.Open(path, 0600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put(ledgerSchemaKey, []byte("0"))
	}))
	require.NoError(t, db.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	// Ledger was reinitialized, history gone but shape consistent
	used, err := s2.IsUsed("ABC123", 42)
	require.NoError(t, err)
	assert.False(t, used)
	assert.NoError(t, s2.MarkUsed("ABC123", 42, "verifier"))
}
