package cooldown

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmaloney/marine-sessions/internal/database"
)

// exerciseStore runs the behaviour every Store must share
func exerciseStore(t *testing.T, store Store, key string) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)

	ok, err := store.Allow(ctx, key, base)
	require.NoError(t, err)
	assert.True(t, ok, "first notification is allowed")

	require.NoError(t, store.MarkSent(ctx, key, base))

	ok, err = store.Allow(ctx, key, base.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "held back inside the period")

	ok, err = store.Allow(ctx, key, base.Add(DefaultPeriod))
	require.NoError(t, err)
	assert.False(t, ok, "period boundary is still held back")

	ok, err = store.Allow(ctx, key, base.Add(DefaultPeriod+time.Second))
	require.NoError(t, err)
	assert.True(t, ok, "allowed once the period has passed")

	ok, err = store.Allow(ctx, key+":other", base.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")
}

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "cooldown.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db, DefaultPeriod)
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, newSQLiteStore(t), "live")
}

func TestSQLiteStore_LatestSendWins(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.MarkSent(ctx, "daily", base))
	require.NoError(t, store.MarkSent(ctx, "daily", base.Add(3*time.Hour)))

	ok, err := store.Allow(ctx, "daily", base.Add(5*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_Prune(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.MarkSent(ctx, "daily", base))
	require.NoError(t, store.MarkSent(ctx, "daily", base.Add(48*time.Hour)))

	n, err := store.Prune(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	store, err := NewRedisStore(context.Background(), RedisOptions{Addr: addr}, DefaultPeriod)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store, "test:"+uuid.NewString())
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, RedisOptions{Addr: "127.0.0.1:1"}, DefaultPeriod)
	assert.Error(t, err)
}
