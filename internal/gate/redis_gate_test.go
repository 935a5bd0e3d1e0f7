package gate

import (
	"auction-engine/internal/auctionerrors"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	t.Parallel()

	mr, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, 50*time.Millisecond, 10*time.Second)

	release, err := l.Acquire(context.Background(), "auction1")
	require.NoError(t, err)
	require.True(t, mr.Exists(LockKey("auction1")))

	_, err = l.Acquire(context.Background(), "auction1")
	require.True(t, errors.Is(err, auctionerrors.ErrBusy))

	release()
	require.False(t, mr.Exists(LockKey("auction1")))

	release, err = l.Acquire(context.Background(), "auction1")
	require.NoError(t, err)
	release()
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	t.Parallel()

	mr, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, 50*time.Millisecond, time.Second)

	release, err := l.Acquire(context.Background(), "auction1")
	require.NoError(t, err)

	// our lease expired and another process took the lock
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set(LockKey("auction1"), "someone-else"))

	release()

	got, err := mr.Get(LockKey("auction1"))
	require.NoError(t, err)
	require.Equal(t, "someone-else", got)
}

func TestRedisLocker_WaitsForHolder(t *testing.T) {
	t.Parallel()

	_, rdb := newTestRedis(t)
	l := NewRedisLocker(rdb, 2*time.Second, 10*time.Second)

	release, err := l.Acquire(context.Background(), "auction1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	acquired := make(chan struct{})
	go func() {
		defer wg.Done()
		r, err := l.Acquire(context.Background(), "auction1")
		require.NoError(t, err)
		close(acquired)
		r()
	}()

	time.Sleep(30 * time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("second caller acquired a held lock")
	default:
	}

	release()
	wg.Wait()
}
