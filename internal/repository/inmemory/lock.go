package inmemory

import (
	"context"
	"sync"
	"time"
)

// Locker is the single-instance stand-in for the redis lock.
type Locker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	now   func() time.Time
	sweep int
}

func NewLocker() *Locker {
	return &Locker{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if expiresAt, ok := l.held[key]; ok && expiresAt.After(now) {
		return false, nil
	}
	l.held[key] = now.Add(ttl)

	l.sweep++
	if l.sweep >= 1000 {
		l.sweep = 0
		for k, expiresAt := range l.held {
			if !expiresAt.After(now) {
				delete(l.held, k)
			}
		}
	}
	return true, nil
}
