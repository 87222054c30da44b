package httpcache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	key       TEXT PRIMARY KEY,
	body      BLOB NOT NULL,
	stored_at INTEGER NOT NULL
);
`

// SQLiteStore persists entries in a single sqlite file so they survive between runs.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the cache database at path and drops expired rows.
func NewSQLiteStore(path string, ttl time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time; concurrent listings queue up instead of failing with SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	store := &SQLiteStore{db: db, ttl: ttl, now: time.Now}
	if err := store.prune(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	var body []byte
	var storedAt int64
	err := s.db.QueryRow(`SELECT body, stored_at FROM responses WHERE key = ?`, key).Scan(&body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if s.expired(storedAt) {
		return nil, false, nil
	}
	return body, true, nil
}

// Put replaces any previous entry for key; duplicate writes of the same response are harmless.
func (s *SQLiteStore) Put(key string, value []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO responses (key, body, stored_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			body = excluded.body,
			stored_at = excluded.stored_at
	`, key, value, s.now().UnixNano())
	return err
}

func (s *SQLiteStore) expired(storedAt int64) bool {
	return s.now().Sub(time.Unix(0, storedAt)) >= s.ttl
}

func (s *SQLiteStore) prune() error {
	cutoff := s.now().Add(-s.ttl).UnixNano()
	if _, err := s.db.Exec(`DELETE FROM responses WHERE stored_at <= ?`, cutoff); err != nil {
		return fmt.Errorf("pruning cache: %w", err)
	}
	return nil
}
