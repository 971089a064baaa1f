package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LocalContactLock serializes admission per contact within one process.
// Entries are cached per key and swept once idle, so the map does not grow
// with the full contact history.
type LocalContactLock struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
	idleTTL time.Duration
}

type lockEntry struct {
	sem      chan struct{}
	lastSeen time.Time
}

// NewLocalContactLock builds the in-process locker.
func NewLocalContactLock(idleTTL time.Duration) *LocalContactLock {
	if idleTTL <= 0 {
		idleTTL = 15 * time.Minute
	}
	return &LocalContactLock{
		entries: make(map[string]*lockEntry),
		idleTTL: idleTTL,
	}
}

// Lock blocks until the contact's slot is free or the context ends.
func (l *LocalContactLock) Lock(ctx context.Context, contact string) (func(), error) {
	l.mu.Lock()
	ent, ok := l.entries[contact]
	if !ok {
		ent = &lockEntry{sem: make(chan struct{}, 1)}
		l.entries[contact] = ent
	}
	ent.lastSeen = time.Now()
	l.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case ent.sem <- struct{}{}:
		return func() { <-ent.sem }, nil
	}
}

// Cleanup drops idle, unheld entries.
func (l *LocalContactLock) Cleanup() {
	cutoff := time.Now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) && len(ent.sem) == 0 {
			delete(l.entries, key)
		}
	}
}

// StartJanitor sweeps idle entries periodically until ctx is cancelled.
func (l *LocalContactLock) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = 2 * time.Minute
	}
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}

const contactLockPrefix = "lead:lock:"

// releaseScript deletes the lease only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisContactLock serializes admission per contact across replicas using
// a SET NX PX lease. The TTL bounds how long a crashed holder can wedge a
// contact.
type RedisContactLock struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisContactLock builds the distributed locker.
func NewRedisContactLock(client *redis.Client, ttl time.Duration) *RedisContactLock {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &RedisContactLock{client: client, ttl: ttl, retry: 50 * time.Millisecond}
}

// Lock polls for the lease until acquired or the context ends.
func (l *RedisContactLock) Lock(ctx context.Context, contact string) (func(), error) {
	key := contactLockPrefix + contact
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
