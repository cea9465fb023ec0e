package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "gidxpay/internal/errors"
)

const (
	keyPrefix     = "lock:"
	retryInterval = 50 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by another worker is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Manager hands out scoped locks backed by Redis SET NX. Unlike the cache
// wrapper, lock operations surface Redis errors: a lock that silently fails
// open is worse than one that fails the request.
type Manager struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewManager creates a lock manager. ttl bounds how long a crashed holder can
// block others; wait bounds how long Acquire polls before giving up.
func NewManager(client *redis.Client, ttl, wait time.Duration) *Manager {
	return &Manager{client: client, ttl: ttl, wait: wait}
}

// Lock is a held scoped lock. Release is idempotent.
type Lock struct {
	manager  *Manager
	key      string
	token    string
	released sync.Once
}

// Acquire obtains the lock for key, polling until the bounded wait elapses.
// Returns errors.ErrLockBusy when the wait is exceeded.
func (m *Manager) Acquire(ctx context.Context, key string) (*Lock, error) {
	token := uuid.New().String()
	deadline := time.Now().Add(m.wait)

	for {
		ok, err := m.client.SetNX(ctx, keyPrefix+key, token, m.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return &Lock{manager: m, key: keyPrefix + key, token: token}, nil
		}
		if time.Now().After(deadline) {
			return nil, apperrors.ErrLockBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// Release frees the lock. Safe to call more than once or on a nil lock.
func (l *Lock) Release() {
	if l == nil {
		return
	}
	l.released.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = releaseScript.Run(ctx, l.manager.client, []string{l.key}, l.token).Result()
	})
}
