package redis

import (
	"context"
	"time"

	"rse/internal/domain"
)

// RulesCacheInterface defines the interface for rule-set caching.
type RulesCacheInterface interface {
	Get(ctx context.Context, organizationID, licenseCategoryID string) (*domain.RSERules, error)
	Set(ctx context.Context, rules *domain.RSERules) error
	Invalidate(ctx context.Context, organizationID, licenseCategoryID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireDriverDayLock(ctx context.Context, driverID string, date time.Time, ttl time.Duration) (bool, error)
	ReleaseDriverDayLock(ctx context.Context, driverID string, date time.Time) error
}

// Ensure concrete types implement interfaces.
var (
	_ RulesCacheInterface = (*RulesCacheStore)(nil)
	_ LockStoreInterface  = (*LockStore)(nil)
)
