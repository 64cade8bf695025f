// Package lock serialises journey evaluations for the same driver-day across
// service instances. The journeys unique constraint is what guarantees one row
// per key; the lock only keeps concurrent evaluations from interleaving their
// read-modify-write and appending audits out of order.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
)

// ErrBusy is returned when a key stays held for longer than the wait budget.
var ErrBusy = fmt.Errorf("%w: journey is being evaluated by another request", domain.ErrConflict)

// ReleaseFunc releases a held lock. It is safe to call more than once.
type ReleaseFunc func(ctx context.Context) error

// Locker acquires a named lock, blocking until it is held, the wait budget
// runs out (ErrBusy), or ctx is done.
type Locker interface {
	Lock(ctx context.Context, key string) (ReleaseFunc, error)
}

// JourneyKey is the lock key for one driver-day.
func JourneyKey(driverID int64, date time.Time) string {
	return fmt.Sprintf("lock:journey:%d:%s", driverID, domain.DateOf(date).Format(time.DateOnly))
}

// NopLocker never blocks. Used when Redis is not configured.
type NopLocker struct{}

func (NopLocker) Lock(context.Context, string) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by someone else is never released by us.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

// RedisLocker is a single-instance Redis lock using SET NX with a TTL.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewRedisLocker returns a locker whose locks expire after ttl and whose
// Lock calls give up after wait.
func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("lock.NewRedisLocker: redis client is nil")
	}
	if ttl <= 0 {
		return nil, errors.New("lock.NewRedisLocker: ttl must be > 0")
	}
	return &RedisLocker{client: client, ttl: ttl, wait: wait, retry: 50 * time.Millisecond}, nil
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (ReleaseFunc, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock.RedisLocker.Lock: %w", err)
		}
		if ok {
			return l.releaser(key, token), nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrBusy
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

func (l *RedisLocker) releaser(key, token string) ReleaseFunc {
	released := false
	return func(ctx context.Context) error {
		if released {
			return nil
		}
		released = true
		if err := l.client.Eval(ctx, releaseScript, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("lock.RedisLocker.release: %w", err)
		}
		return nil
	}
}
