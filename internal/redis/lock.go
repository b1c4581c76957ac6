package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/careline/token-booking/internal/booking"
)

var (
	ErrLockNotAcquired = errors.New("partition lock not acquired")
)

type partitionLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPartitionLocker returns a booking.Locker backed by a per-partition
// Redis key, for deployments running more than one instance against a
// shared Postgres store.
func NewPartitionLocker(client *redis.Client, ttl time.Duration) booking.Locker {
	return &partitionLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *partitionLocker) WithPartition(ctx context.Context, dept booking.Department, date booking.Date, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:tokens:%s", booking.PartitionKey(dept, date))
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire partition lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *partitionLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release partition lock: %w", err)
	}
	return nil
}
