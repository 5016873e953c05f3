package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touchAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	ts := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, ts, ts))
}

func TestFileLock_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "thursday.lock")
	a := NewFileLock(path, "a", 0)
	b := NewFileLock(path, "b", 0)

	ok, err := a.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "fresh lock must not be taken over")

	rec, held, err := b.Holder(ctx)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, "a", rec.Owner)
	assert.Equal(t, os.Getpid(), rec.PID)

	assert.True(t, errors.Is(b.Release(ctx), ErrNotHeld))
	require.NoError(t, a.Release(ctx))
	require.NoError(t, a.Release(ctx), "releasing a missing lock is not an error")

	ok, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileLock_StaleRecovery(t *testing.T) {
	ctx := context.Background()

	t.Run("older than 180s is reclaimed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "thursday.lock")
		touchAged(t, path, 181*time.Second)

		ok, err := NewFileLock(path, "me", DefaultStaleAfter).TryAcquire(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("30s old is respected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "thursday.lock")
		touchAged(t, path, 30*time.Second)

		ok, err := NewFileLock(path, "me", DefaultStaleAfter).TryAcquire(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("marker from the future is reclaimed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "thursday.lock")
		touchAged(t, path, -2*time.Hour)

		l := NewFileLock(path, "me", DefaultStaleAfter)
		ok, err := l.TryAcquire(ctx)
		require.NoError(t, err)
		assert.True(t, ok)

		rec, held, err := l.Holder(ctx)
		require.NoError(t, err)
		assert.True(t, held)
		assert.Equal(t, "me", rec.Owner)
	})

	t.Run("small clock skew is still respected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "thursday.lock")
		touchAged(t, path, -time.Second)

		ok, err := NewFileLock(path, "me", DefaultStaleAfter).TryAcquire(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestFileLock_ReleaseForeignMarker(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "thursday.lock")
	touchAged(t, path, time.Second)

	// a bare marker has no owner and may be cleared by anyone
	require.NoError(t, NewFileLock(path, "me", 0).Release(ctx))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileLock_ConcurrentAcquire(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "thursday.lock")

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := NewFileLock(path, "", 0).TryAcquire(ctx)
			if err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())
}

func TestRedisLock(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	a := NewRedisLock(client, "thursday:lock", "a", DefaultStaleAfter)
	b := NewRedisLock(client, "thursday:lock", "b", DefaultStaleAfter)

	ok, err := a.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	rec, held, err := b.Holder(ctx)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, "a", rec.Owner)

	// b never acquired, so its release is a no-op
	require.NoError(t, b.Release(ctx))
	assert.True(t, mr.Exists("thursday:lock"))

	// TTL expiry plays the role of the stale threshold
	mr.FastForward(DefaultStaleAfter + time.Second)
	ok, err = b.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, errors.Is(a.Release(ctx), ErrNotHeld))
	require.NoError(t, b.Release(ctx))

	_, held, err = a.Holder(ctx)
	require.NoError(t, err)
	assert.False(t, held)
}
