package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes work per key: catalog sync passes take "catalog:<id>",
// order mutations take "customer:<id>". Backed by redis SET NX PX when a
// client is configured, by in-process mutexes otherwise (single-node deploys
// run without redis).
type Locker struct {
	rdb *redis.Client
	ttl time.Duration

	mu    sync.Mutex
	local map[string]*sync.Mutex
}

// New returns a Locker. rdb may be nil.
func New(rdb *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Locker{rdb: rdb, ttl: ttl, local: make(map[string]*sync.Mutex)}
}

// Acquire blocks until the key lock is held or ctx is done. The returned
// release func must be called exactly once.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	if l.rdb == nil {
		return l.acquireLocal(ctx, key)
	}
	return l.acquireRedis(ctx, key)
}

func (l *Locker) localMutex(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.local[key]
	if !ok {
		m = &sync.Mutex{}
		l.local[key] = m
	}
	return m
}

func (l *Locker) acquireLocal(ctx context.Context, key string) (func(), error) {
	m := l.localMutex(key)
	done := make(chan struct{})
	go func() {
		m.Lock()
		close(done)
	}()
	select {
	case <-done:
		return m.Unlock, nil
	case <-ctx.Done():
		// The goroutine will grab and immediately release the stale hold.
		go func() {
			<-done
			m.Unlock()
		}()
		return nil, fmt.Errorf("lock %s: %w", key, ctx.Err())
	}
}

func (l *Locker) acquireRedis(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	rkey := "lock:" + key
	for {
		ok, err := l.rdb.SetNX(ctx, rkey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			return func() {
				// Only delete our own hold; an expired lock may have been
				// re-acquired by another holder.
				v, err := l.rdb.Get(context.Background(), rkey).Result()
				if err == nil && v == token {
					l.rdb.Del(context.Background(), rkey)
				}
			}, nil
		}
		select {
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			return nil, fmt.Errorf("lock %s: %w", key, ctx.Err())
		}
	}
}
