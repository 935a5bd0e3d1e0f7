package gate

import (
	"auction-engine/internal/auctionerrors"
	"auction-engine/utils"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseIfOwner deletes the lock only when it still carries our token, so an
// expired holder can never release a lock re-acquired by someone else.
const releaseIfOwner = `
local lockKey = KEYS[1]
local token = ARGV[1]
if redis.call('GET', lockKey) == token then
  return redis.call('DEL', lockKey)
end
return 0
`

const lockKeyPrefix = "auction:lock:"

// RedisLocker is a Locker shared by every process talking to the same Redis.
// Locks expire after ttl so a crashed holder cannot wedge an auction forever.
type RedisLocker struct {
	rdb   *redis.Client
	wait  time.Duration
	ttl   time.Duration
	retry time.Duration
}

// NewRedisLocker creates a RedisLocker. ttl must exceed the longest unit of work.
func NewRedisLocker(rdb *redis.Client, wait, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		rdb:   rdb,
		wait:  wait,
		ttl:   ttl,
		retry: 10 * time.Millisecond,
	}
}

// LockKey returns the redis key guarding an auction
func LockKey(key string) string {
	return lockKeyPrefix + key
}

// Acquire polls SET NX PX until it wins, the wait bound elapses (ErrBusy) or ctx ends
func (l *RedisLocker) Acquire(ctx context.Context, key string) (Release, error) {
	redisKey := LockKey(key)
	token := utils.GenerateID()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("gate: acquire %s: %w", key, err)
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("gate: %w - waited %s for auction %s", auctionerrors.ErrBusy, l.wait, key)
		}

		pause := l.retry
		if pause > remaining {
			pause = remaining
		}
		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("gate: acquire %s: %w", key, ctx.Err())
		case <-timer.C:
		}
	}
}

func (l *RedisLocker) releaser(redisKey, token string) Release {
	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's context may already be done; release must still reach redis
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			if err := l.rdb.Eval(ctx, releaseIfOwner, []string{redisKey}, token).Err(); err != nil {
				utils.Warn("gate: failed to release redis lock", map[string]any{
					"key":   redisKey,
					"error": err.Error(),
				})
			}
		})
	}
}
