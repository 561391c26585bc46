package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badr-center/halaqa-tracker/internal/application/tracker"
	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
	"github.com/badr-center/halaqa-tracker/internal/domain/shared"
	"github.com/badr-center/halaqa-tracker/internal/domain/student"
	"github.com/badr-center/halaqa-tracker/internal/infrastructure/persistence/memory"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheFromClient(client, "halaqa:"), mr
}

func TestStatsCache_MissThenHit(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	sc := NewStatsCache(cache, time.Hour)

	_, err := sc.Get(ctx, "abc")
	assert.True(t, shared.IsNotFound(err))

	stats := []attendance.StudentStats{{
		Student: student.Student{ID: 1, Name: "محمد أحمد"},
		Counts:  attendance.Counts{Memorized: 2, Excused: 1},
	}}
	require.NoError(t, sc.Set(ctx, "abc", stats))
	assert.True(t, mr.Exists("halaqa:stats:abc"))
	assert.Equal(t, time.Hour, mr.TTL("halaqa:stats:abc"))

	got, err := sc.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}

func TestStatsCache_Purge(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	sc := NewStatsCache(cache, 0)

	require.NoError(t, sc.Set(ctx, "a", nil))
	require.NoError(t, sc.Set(ctx, "b", nil))
	require.NoError(t, mr.Set("halaqa:other", "keep"))

	n, err := sc.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("halaqa:other"))
}

func TestStatsCache_ServerDown(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	sc := NewStatsCache(cache, 0)
	mr.Close()

	_, err := sc.Get(ctx, "abc")
	assert.True(t, shared.IsExternalService(err))
	assert.False(t, shared.IsNotFound(err))
}

func TestStatsCache_BacksTrackerStore(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	store := tracker.New(tracker.Options{Storage: memory.NewStorage(), Cache: NewStatsCache(cache, 0)})
	require.NoError(t, store.Load(ctx))
	_, _, err := store.SetFlag(ctx, "2025-01-01", 1, attendance.FlagMemorized, true)
	require.NoError(t, err)

	stats := store.Statistics(ctx)
	assert.Equal(t, 1, stats[0].Memorized)
	assert.True(t, mr.Exists("halaqa:"+StatsKey(store.Fingerprint())))
}
