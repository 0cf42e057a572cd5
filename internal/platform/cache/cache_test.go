package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t, time.Hour)

	require.NoError(t, store.Put("org-1", "contacts", []byte(`[{"id":"c-1"}]`)))

	payload, fetchedAt, ok, err := store.Get("org-1", "contacts")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `[{"id":"c-1"}]`, string(payload))
	require.WithinDuration(t, time.Now(), fetchedAt, 5*time.Second)
}

func TestPutReplacesExistingSnapshot(t *testing.T) {
	store := openTestStore(t, time.Hour)

	require.NoError(t, store.Put("org-1", "contacts", []byte(`["old"]`)))
	require.NoError(t, store.Put("org-1", "contacts", []byte(`["new"]`)))

	payload, _, ok, err := store.Get("org-1", "contacts")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `["new"]`, string(payload))
}

func TestSnapshotsAreScopedByOrgAndResource(t *testing.T) {
	store := openTestStore(t, time.Hour)

	require.NoError(t, store.Put("org-1", "contacts", []byte(`["a"]`)))
	require.NoError(t, store.Put("org-2", "contacts", []byte(`["b"]`)))
	require.NoError(t, store.Put("org-1", "deals", []byte(`["c"]`)))

	payload, _, ok, err := store.Get("org-2", "contacts")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `["b"]`, string(payload))

	_, _, ok, err = store.Get("org-3", "contacts")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExpiredSnapshotIsAMiss(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db, time.Minute)

	stale := time.Now().Add(-2 * time.Minute).Unix()
	mock.ExpectQuery("SELECT payload, fetched_at FROM snapshots").
		WithArgs("org-1", "contacts").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "fetched_at"}).
			AddRow([]byte(`["stale"]`), stale))

	_, _, ok, err := store.Get("org-1", "contacts")
	require.NoError(t, err)
	require.False(t, ok, "expired snapshot must read as a miss")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestZeroTTLNeverExpires(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db, 0)

	ancient := time.Now().Add(-365 * 24 * time.Hour).Unix()
	mock.ExpectQuery("SELECT payload, fetched_at FROM snapshots").
		WithArgs("org-1", "contacts").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "fetched_at"}).
			AddRow([]byte(`["old"]`), ancient))

	_, _, ok, err := store.Get("org-1", "contacts")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetDropsAllSnapshots(t *testing.T) {
	store := openTestStore(t, time.Hour)

	require.NoError(t, store.Put("org-1", "contacts", []byte(`["a"]`)))
	require.NoError(t, store.Put("org-2", "deals", []byte(`["b"]`)))
	require.NoError(t, store.Reset())

	_, _, ok, err := store.Get("org-1", "contacts")
	require.NoError(t, err)
	require.False(t, ok)

	_, _, ok, err = store.Get("org-2", "deals")
	require.NoError(t, err)
	require.False(t, ok)
}
