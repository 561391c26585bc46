package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
	"github.com/badr-center/halaqa-tracker/pkg/logger"
	"github.com/badr-center/halaqa-tracker/pkg/retry"
)

// Storage keeps slots as rows of storage_slots.
type Storage struct {
	conn    *Connection
	log     *logger.Logger
	retrier *retry.Retrier
	keep    int
}

// NewStorage wraps a migrated connection.
func NewStorage(conn *Connection, log *logger.Logger) *Storage {
	if log == nil {
		log = logger.Nop()
	}
	keep := conn.config.BackupsPerSlot
	if keep < 0 {
		keep = 0
	}
	return &Storage{
		conn:    conn,
		log:     log.With(logger.Component("sqlite_storage")),
		retrier: retry.StorageRetrier(),
		keep:    keep,
	}
}

// OpenStorage opens the database, applies migrations and returns the storage.
func OpenStorage(ctx context.Context, cfg Config, log *logger.Logger) (*Storage, error) {
	conn, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := NewMigrator(conn).Migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return NewStorage(conn, log), nil
}

// Close closes the underlying connection.
func (s *Storage) Close() error {
	return s.conn.Close()
}

// Ping checks the database.
func (s *Storage) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Load returns the value of slot.
func (s *Storage) Load(ctx context.Context, slot string) ([]byte, error) {
	if s.conn.db == nil {
		return nil, ErrConnectionClosed
	}
	var value string
	err := s.conn.db.QueryRowContext(ctx, "SELECT value FROM storage_slots WHERE name = ?", slot).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load %s: %w", slot, err)
	}
	return []byte(value), nil
}

// Save upserts all slots in one transaction. Lock contention is retried.
func (s *Storage) Save(ctx context.Context, slots map[string][]byte) error {
	names := make([]string, 0, len(slots))
	for name := range slots {
		names = append(names, name)
	}
	sort.Strings(names)

	start := time.Now()
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		err := s.conn.WithTx(ctx, func(tx *sql.Tx) error {
			now := time.Now().UTC().Format(time.RFC3339Nano)
			for _, name := range names {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO storage_slots (name, value, updated_at) VALUES (?, ?, ?)
					ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
					name, string(slots[name]), now); err != nil {
					return fmt.Errorf("write %s: %w", name, err)
				}
				if _, err := tx.ExecContext(ctx, `
					DELETE FROM slot_backups WHERE name = ? AND id NOT IN (
						SELECT id FROM slot_backups WHERE name = ? ORDER BY id DESC LIMIT ?
					)`, name, name, s.keep); err != nil {
					return fmt.Errorf("prune backups of %s: %w", name, err)
				}
			}
			return nil
		})
		if IsBusy(err) {
			return retry.Retryable(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("sqlite: save: %w", err)
	}

	s.log.Debug("slots saved", logger.Int("slots", len(names)), logger.Latency(time.Since(start)))
	return nil
}

// Backup is a previous value of a slot.
type Backup struct {
	ID         int64
	Slot       string
	Value      []byte
	ReplacedAt string
}

// Backups lists the kept previous values of slot, newest first.
func (s *Storage) Backups(ctx context.Context, slot string) ([]Backup, error) {
	if s.conn.db == nil {
		return nil, ErrConnectionClosed
	}
	rows, err := s.conn.db.QueryContext(ctx,
		"SELECT id, name, value, replaced_at FROM slot_backups WHERE name = ? ORDER BY id DESC", slot)
	if err != nil {
		return nil, fmt.Errorf("sqlite: backups of %s: %w", slot, err)
	}
	defer rows.Close()

	var out []Backup
	for rows.Next() {
		var b Backup
		var value string
		if err := rows.Scan(&b.ID, &b.Slot, &value, &b.ReplacedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan backup: %w", err)
		}
		b.Value = []byte(value)
		out = append(out, b)
	}
	return out, rows.Err()
}

// Backup returns one kept value by id.
func (s *Storage) Backup(ctx context.Context, id int64) (Backup, error) {
	if s.conn.db == nil {
		return Backup{}, ErrConnectionClosed
	}
	var b Backup
	var value string
	err := s.conn.db.QueryRowContext(ctx,
		"SELECT id, name, value, replaced_at FROM slot_backups WHERE id = ?", id).
		Scan(&b.ID, &b.Slot, &value, &b.ReplacedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Backup{}, shared.ErrBackupNotFound
	}
	if err != nil {
		return Backup{}, fmt.Errorf("sqlite: backup %d: %w", id, err)
	}
	b.Value = []byte(value)
	return b, nil
}
