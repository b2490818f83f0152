package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicateKey is returned by Insert when the key already exists.
var ErrDuplicateKey = errors.New("duplicate key")

// StoreError wraps a failed store operation. The connection stays usable.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("kv %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("kv %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

type Database struct {
	db *sql.DB
}

// NewDatabase opens (or creates) the sqlite file at path and bootstraps the
// kv table in WAL mode. Calling it again on the same file is harmless.
func NewDatabase(path string) (*Database, error) {
	memory := path == ":memory:"
	dsn := path
	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		dsn += "?_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if memory {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	d := &Database{db: db}
	if err := d.init(); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

func (d *Database) init() error {
	if _, err := d.db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return err
	}

	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	return err
}

// Get returns the value for key. ok is false when the key is absent.
func (d *Database) Get(ctx context.Context, key string) (string, bool, error) {
	row := d.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, &StoreError{Op: "get", Key: key, Err: err}
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (d *Database) Set(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return &StoreError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Insert adds a new key. An existing key fails with ErrDuplicateKey and keeps
// its value.
func (d *Database) Insert(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx, `INSERT INTO kv (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		if isConstraint(err) {
			err = fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return &StoreError{Op: "insert", Key: key, Err: err}
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (d *Database) Delete(ctx context.Context, key string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// Keys lists every key in order.
func (d *Database) Keys(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, &StoreError{Op: "keys", Err: err}
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, &StoreError{Op: "keys", Err: err}
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "keys", Err: err}
	}
	return keys, nil
}

// JournalMode reports the sqlite journal mode, "wal" once bootstrapped.
func (d *Database) JournalMode(ctx context.Context) (string, error) {
	var mode string
	if err := d.db.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode); err != nil {
		return "", err
	}
	return mode, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func isConstraint(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
