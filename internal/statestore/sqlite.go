package statestore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists state blobs in a single SQLite file. Exclusivity
// relies on SQLite's own file locking: the connection runs with
// locking_mode=EXCLUSIVE, so the first instance to write holds the lock
// until Close and every other instance fails its Connect handshake fast.
type SQLiteStore struct {
	dbPath string

	mu        sync.Mutex
	db        *sql.DB
	connected bool
}

// NewSQLiteStore creates a store backed by the SQLite file at dbPath.
// Nothing is opened until Connect.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("empty db path")
	}
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		abs = dbPath
	}
	return &SQLiteStore{dbPath: abs}, nil
}

// Connect opens the database and performs the exclusivity handshake: a
// schema write under locking_mode=EXCLUSIVE. If another instance already
// holds the file, the write comes back busy and Connect reports false.
func (s *SQLiteStore) Connect(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return true, nil
	}

	u := &url.URL{Scheme: "file", Path: s.dbPath}
	q := url.Values{}
	q.Add("_pragma", "locking_mode(EXCLUSIVE)")
	// Fail the handshake quickly instead of queueing behind the holder.
	q.Add("_pragma", "busy_timeout(250)")
	u.RawQuery = q.Encode()

	db, err := sql.Open("sqlite", u.String())
	if err != nil {
		return false, err
	}
	// A single connection keeps the exclusive lock pinned to one handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return false, err
	}

	// First write acquires the exclusive lock, which locking_mode then
	// retains for the life of the connection.
	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS state (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	if err != nil {
		_ = db.Close()
		if isBusy(err) {
			return false, nil
		}
		return false, err
	}

	s.db = db
	s.connected = true
	return true, nil
}

// Save persists value under key, overwriting any prior value.
func (s *SQLiteStore) Save(ctx context.Context, key string, value []byte) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save state for key %s: %w", key, err)
	}
	return nil
}

// Load returns the saved value for key, or (nil, false, nil) when the
// key was never saved or the store never connected.
func (s *SQLiteStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	db, err := s.handle()
	if err != nil {
		return nil, false, nil
	}

	var value []byte
	row := db.QueryRowContext(ctx, `SELECT value FROM state WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load state for key %s: %w", key, err)
	}
	return value, true, nil
}

// UpdatedAt returns the last save time for key, when present.
func (s *SQLiteStore) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	db, err := s.handle()
	if err != nil {
		return time.Time{}, false, nil
	}

	var millis int64
	row := db.QueryRowContext(ctx, `SELECT updated_at FROM state WHERE key = ?`, key)
	if err := row.Scan(&millis); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return time.UnixMilli(millis), true, nil
}

// Close releases the exclusive lock. Safe to call repeatedly and before
// a successful Connect.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.connected = false
	return err
}

func (s *SQLiteStore) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected || s.db == nil {
		return nil, ErrNotConnected
	}
	return s.db, nil
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "busy") || strings.Contains(msg, "locked")
}
