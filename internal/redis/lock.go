package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireDriverDayLock attempts to acquire the lock serializing cumulative
// checks for one driver and calendar day. Without it, two concurrent checks
// can both read the same committed totals and both approve an assignment
// that only fits once.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireDriverDayLock(ctx context.Context, driverID string, date time.Time, ttl time.Duration) (bool, error) {
	key := driverDayLockKey(driverID, date)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseDriverDayLock releases the lock for the given driver and day.
func (s *LockStore) ReleaseDriverDayLock(ctx context.Context, driverID string, date time.Time) error {
	return s.client.Del(ctx, driverDayLockKey(driverID, date)).Err()
}

func driverDayLockKey(driverID string, date time.Time) string {
	return fmt.Sprintf("lock:driver_day:%s:%s", driverID, date.Format("2006-01-02"))
}
