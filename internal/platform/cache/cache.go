// Package cache keeps local snapshots of org-scoped list responses in a
// sqlite file, so list views can degrade to the last known data when the
// backend is unreachable.
package cache

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	org_id     TEXT NOT NULL,
	resource   TEXT NOT NULL,
	payload    BLOB NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (org_id, resource)
);
`

type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// Open creates or opens the cache file and ensures the schema exists.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return NewStore(db, ttl), nil
}

// NewStore wraps an existing handle. Tests inject a mocked one here.
func NewStore(db *sql.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl}
}

// Put upserts the latest successful list payload for (org, resource).
func (s *Store) Put(orgID, resource string, payload []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO snapshots (org_id, resource, payload, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(org_id, resource) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`, orgID, resource, payload, time.Now().Unix())
	return err
}

// Get returns the stored payload and its age. Snapshots older than the
// TTL are treated as misses.
func (s *Store) Get(orgID, resource string) ([]byte, time.Time, bool, error) {
	var payload []byte
	var fetchedAt int64
	err := s.db.QueryRow(`
		SELECT payload, fetched_at FROM snapshots WHERE org_id = ? AND resource = ?
	`, orgID, resource).Scan(&payload, &fetchedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, err
	}

	at := time.Unix(fetchedAt, 0)
	if s.ttl > 0 && time.Since(at) > s.ttl {
		return nil, time.Time{}, false, nil
	}
	return payload, at, true, nil
}

// Reset drops every snapshot. Called on logout so one account's data
// never leaks into the next session's views.
func (s *Store) Reset() error {
	_, err := s.db.Exec(`DELETE FROM snapshots`)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
