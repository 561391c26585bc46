// Package sqlite persists the tracker's slots in a local SQLite file through
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrConnectionClosed indicates the database handle is closed.
	ErrConnectionClosed = errors.New("sqlite: connection is closed")

	// ErrMigrationFailed indicates a migration failure.
	ErrMigrationFailed = errors.New("sqlite: migration failed")
)

// ══════════════════════════════════════════════════════════════════════════════
// CONNECTION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds SQLite connection configuration.
type Config struct {
	// Path is the database file. ":memory:" keeps everything in memory.
	Path string

	// BusyTimeout is how long a writer waits for a lock held by another
	// process before SQLITE_BUSY is returned.
	BusyTimeout time.Duration

	// WAL enables write-ahead logging.
	WAL bool

	// BackupsPerSlot is how many previous values of each slot are kept.
	BackupsPerSlot int
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Path:           "halaqa.db",
		BusyTimeout:    5 * time.Second,
		WAL:            true,
		BackupsPerSlot: 20,
	}
}

// DSN returns the driver connection string.
func (c Config) DSN() string {
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	if c.WAL && c.Path != ":memory:" {
		params.Add("_pragma", "journal_mode(WAL)")
	}
	params.Add("_pragma", "synchronous(NORMAL)")

	path := c.Path
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + "?" + params.Encode()
}

// Connection wraps the database handle.
type Connection struct {
	db     *sql.DB
	config Config
}

// Open opens the database file and checks it is usable.
func Open(ctx context.Context, cfg Config) (*Connection, error) {
	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}
	// One writer at a time keeps SQLite from returning SQLITE_BUSY to ourselves.
	db.SetMaxOpenConns(1)

	conn := &Connection{db: db, config: cfg}
	if err := conn.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return conn, nil
}

// DB returns the underlying handle.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Close closes the database.
func (c *Connection) Close() error {
	if c.db == nil {
		return ErrConnectionClosed
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// Ping checks if the database is reachable.
func (c *Connection) Ping(ctx context.Context) error {
	if c.db == nil {
		return ErrConnectionClosed
	}
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// WithTx executes fn within a transaction.
// The transaction is committed if fn returns nil, rolled back otherwise.
func (c *Connection) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	if c.db == nil {
		return ErrConnectionClosed
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit error: %w", err)
	}
	return nil
}

// IsBusy reports whether err is SQLite's lock contention error.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
