package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badr-center/halaqa-tracker/internal/application/tracker"
	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
)

func openTestStorage(t *testing.T, path string, keep int) *Storage {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Path = path
	cfg.BackupsPerSlot = keep

	s, err := OpenStorage(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorage_LoadMissingSlot(t *testing.T) {
	s := openTestStorage(t, filepath.Join(t.TempDir(), "halaqa.db"), 5)

	_, err := s.Load(context.Background(), "students")
	assert.True(t, shared.IsNotFound(err))
}

func TestStorage_SaveAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "halaqa.db")

	s := openTestStorage(t, path, 5)
	require.NoError(t, s.Save(ctx, map[string][]byte{
		"students":     []byte(`[{"id":1,"name":"محمد أحمد"}]`),
		"dailyRecords": []byte(`{}`),
	}))
	require.NoError(t, s.Close())

	reopened := openTestStorage(t, path, 5)
	got, err := reopened.Load(ctx, "students")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"name":"محمد أحمد"}]`, string(got))
}

func TestStorage_KeepsBoundedBackups(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t, filepath.Join(t.TempDir(), "halaqa.db"), 2)

	for _, v := range []string{`[1]`, `[2]`, `[3]`, `[4]`} {
		require.NoError(t, s.Save(ctx, map[string][]byte{"students": []byte(v)}))
	}
	require.NoError(t, s.Save(ctx, map[string][]byte{"students": []byte(`[4]`)}))

	backups, err := s.Backups(ctx, "students")
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, `[3]`, string(backups[0].Value))
	assert.Equal(t, `[2]`, string(backups[1].Value))

	b, err := s.Backup(ctx, backups[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "students", b.Slot)
	assert.Equal(t, `[2]`, string(b.Value))
	assert.NotEmpty(t, b.ReplacedAt)

	_, err = s.Backup(ctx, backups[0].ID+100)
	assert.ErrorIs(t, err, shared.ErrBackupNotFound)
	assert.True(t, shared.IsNotFound(err))
}

func TestMigrator_StatusAndRollback(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t, filepath.Join(t.TempDir(), "halaqa.db"), 5)
	m := NewMigrator(s.conn)

	status, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.True(t, status[0].IsApplied)
	assert.True(t, status[1].IsApplied)

	require.NoError(t, m.Rollback(ctx))
	status, err = m.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status[1].IsApplied)

	require.NoError(t, m.Migrate(ctx))
	require.NoError(t, m.Migrate(ctx), "migrate is idempotent")
}

func TestStorage_BacksTrackerStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "halaqa.db")

	store := tracker.New(tracker.Options{Storage: openTestStorage(t, path, 5)})
	require.NoError(t, store.Load(ctx))
	_, _, err := store.SetFlag(ctx, "2024-12-31", 3, attendance.FlagExcused, true)
	require.NoError(t, err)
	_, ok, err := store.AddStudent(ctx, "حمزة")
	require.NoError(t, err)
	require.True(t, ok)

	wantRoster, wantLedger := store.Snapshot()

	reloaded := tracker.New(tracker.Options{Storage: openTestStorage(t, path, 5)})
	require.NoError(t, reloaded.Load(ctx))
	gotRoster, gotLedger := reloaded.Snapshot()

	assert.Equal(t, wantRoster, gotRoster)
	assert.Equal(t, wantLedger, gotLedger)
}

func TestConfig_DSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = "/tmp/x.db"
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "journal_mode%28WAL%29")
}
