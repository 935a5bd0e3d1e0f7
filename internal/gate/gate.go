// Package gate provides the per-auction exclusive lock that serializes every
// read-validate-write sequence against one auction. Acquisition waits for a
// bounded time and then fails with auctionerrors.ErrBusy.
package gate

import (
	"auction-engine/internal/auctionerrors"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Release gives the lock back. Calling it more than once is a no-op.
type Release func()

// Locker hands out exclusive per-key locks
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// MemoryLocker is an in-process Locker. Each key owns a weight-1 semaphore
// that lives while at least one caller holds or waits for it.
type MemoryLocker struct {
	wait time.Duration

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	sem  *semaphore.Weighted
	refs int
}

// NewMemoryLocker creates a MemoryLocker whose Acquire waits at most wait
func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	return &MemoryLocker{
		wait:  wait,
		slots: make(map[string]*slot),
	}
}

// Acquire blocks until key is free, the wait bound elapses (ErrBusy) or ctx ends
func (l *MemoryLocker) Acquire(ctx context.Context, key string) (Release, error) {
	s := l.ref(key)

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	if err := s.sem.Acquire(waitCtx, 1); err != nil {
		l.unref(key, s)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("gate: acquire %s: %w", key, ctxErr)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("gate: %w - waited %s for auction %s", auctionerrors.ErrBusy, l.wait, key)
		}
		return nil, fmt.Errorf("gate: acquire %s: %w", key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.sem.Release(1)
			l.unref(key, s)
		})
	}, nil
}

// Len reports how many keys are currently held or waited on
func (l *MemoryLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func (l *MemoryLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = &slot{sem: semaphore.NewWeighted(1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *MemoryLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
