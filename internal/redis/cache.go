package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"rse/internal/domain"
)

// RulesCacheStore caches resolved RSE rule sets in Redis. Rule sets change
// rarely and are read on every validation, so a short TTL plus invalidation
// on upsert keeps lookups off the database without staleness risk.
type RulesCacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRulesCacheStore creates a new RulesCacheStore.
func NewRulesCacheStore(client *redis.Client, ttl time.Duration) *RulesCacheStore {
	return &RulesCacheStore{client: client, ttl: ttl}
}

const rulesCachePrefix = "cache:rse_rules:"

func rulesCacheKey(organizationID, licenseCategoryID string) string {
	return rulesCachePrefix + organizationID + ":" + licenseCategoryID
}

// cachedRules is the wire format for cached rule sets.
type cachedRules struct {
	ID                          string   `json:"id"`
	OrganizationID              string   `json:"organization_id"`
	LicenseCategoryID           string   `json:"license_category_id"`
	LicenseCategoryCode         string   `json:"license_category_code"`
	MaxDailyDrivingHours        float64  `json:"max_daily_driving_hours"`
	MaxDailyAmplitudeHours      float64  `json:"max_daily_amplitude_hours"`
	BreakMinutesPerDrivingBlock int      `json:"break_minutes_per_driving_block"`
	DrivingBlockHoursForBreak   float64  `json:"driving_block_hours_for_break"`
	CappedAverageSpeedKmh       *float64 `json:"capped_average_speed_kmh"`
	UpdatedAtUnix               int64    `json:"updated_at_unix"`
}

// Get retrieves a cached rule set. Returns (nil, nil) on cache miss.
func (s *RulesCacheStore) Get(ctx context.Context, organizationID, licenseCategoryID string) (*domain.RSERules, error) {
	data, err := s.client.Get(ctx, rulesCacheKey(organizationID, licenseCategoryID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached cachedRules
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	return &domain.RSERules{
		ID:                          cached.ID,
		OrganizationID:              cached.OrganizationID,
		LicenseCategoryID:           cached.LicenseCategoryID,
		LicenseCategoryCode:         cached.LicenseCategoryCode,
		MaxDailyDrivingHours:        cached.MaxDailyDrivingHours,
		MaxDailyAmplitudeHours:      cached.MaxDailyAmplitudeHours,
		BreakMinutesPerDrivingBlock: cached.BreakMinutesPerDrivingBlock,
		DrivingBlockHoursForBreak:   cached.DrivingBlockHoursForBreak,
		CappedAverageSpeedKmh:       cached.CappedAverageSpeedKmh,
		UpdatedAt:                   time.Unix(cached.UpdatedAtUnix, 0),
	}, nil
}

// Set stores a rule set in cache.
func (s *RulesCacheStore) Set(ctx context.Context, rules *domain.RSERules) error {
	data, err := json.Marshal(cachedRules{
		ID:                          rules.ID,
		OrganizationID:              rules.OrganizationID,
		LicenseCategoryID:           rules.LicenseCategoryID,
		LicenseCategoryCode:         rules.LicenseCategoryCode,
		MaxDailyDrivingHours:        rules.MaxDailyDrivingHours,
		MaxDailyAmplitudeHours:      rules.MaxDailyAmplitudeHours,
		BreakMinutesPerDrivingBlock: rules.BreakMinutesPerDrivingBlock,
		DrivingBlockHoursForBreak:   rules.DrivingBlockHoursForBreak,
		CappedAverageSpeedKmh:       rules.CappedAverageSpeedKmh,
		UpdatedAtUnix:               rules.UpdatedAt.Unix(),
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, rulesCacheKey(rules.OrganizationID, rules.LicenseCategoryID), data, s.ttl).Err()
}

// Invalidate removes a rule set from cache after an upsert.
func (s *RulesCacheStore) Invalidate(ctx context.Context, organizationID, licenseCategoryID string) error {
	return s.client.Del(ctx, rulesCacheKey(organizationID, licenseCategoryID)).Err()
}
