package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"rse/internal/domain"
	"rse/internal/redis"
	"rse/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RULE REPOSITORY
// ──────────────────────────────────────────────

// MockRuleRepository is a mock implementation of RuleRepository.
type MockRuleRepository struct {
	mu    sync.RWMutex
	rules map[string]*domain.RSERules // keyed by orgID + ":" + licenseCategoryID

	// Counters for verification
	UpsertCallCount int32

	// Error injection
	GetError    error
	UpsertError error
}

// NewMockRuleRepository creates a new mock rule repository.
func NewMockRuleRepository() *MockRuleRepository {
	return &MockRuleRepository{
		rules: make(map[string]*domain.RSERules),
	}
}

// AddRules seeds a rule set.
func (m *MockRuleRepository) AddRules(rules *domain.RSERules) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[rules.OrganizationID+":"+rules.LicenseCategoryID] = rules
}

func (m *MockRuleRepository) GetByLicenseCategory(ctx context.Context, organizationID, licenseCategoryID string) (*domain.RSERules, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rules, ok := m.rules[organizationID+":"+licenseCategoryID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *rules
	return &copy, nil
}

func (m *MockRuleRepository) GetAll(ctx context.Context, organizationID string) ([]*domain.RSERules, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.RSERules
	for _, r := range m.rules {
		if r.OrganizationID == organizationID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockRuleRepository) FirstWithSpeedCap(ctx context.Context, organizationID string) (*domain.RSERules, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rules {
		if r.OrganizationID == organizationID && r.CappedAverageSpeedKmh != nil {
			copy := *r
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRuleRepository) Upsert(ctx context.Context, rules *domain.RSERules) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *rules
	m.rules[rules.OrganizationID+":"+rules.LicenseCategoryID] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK VEHICLE CATEGORY REPOSITORY
// ──────────────────────────────────────────────

// MockVehicleCategoryRepository is a mock implementation of VehicleCategoryRepository.
type MockVehicleCategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*domain.VehicleCategory
}

// NewMockVehicleCategoryRepository creates a new mock vehicle category repository.
func NewMockVehicleCategoryRepository() *MockVehicleCategoryRepository {
	return &MockVehicleCategoryRepository{
		categories: make(map[string]*domain.VehicleCategory),
	}
}

// AddCategory seeds a vehicle category.
func (m *MockVehicleCategoryRepository) AddCategory(vc *domain.VehicleCategory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[vc.ID] = vc
}

func (m *MockVehicleCategoryRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.VehicleCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vc, ok := m.categories[id]
	if !ok || vc.OrganizationID != organizationID {
		return nil, repository.ErrNotFound
	}
	copy := *vc
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok || driver.OrganizationID != organizationID {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *driver
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK ACTIVITY REPOSITORY
// ──────────────────────────────────────────────

// MockActivityRepository is a mock implementation of ActivityRepository.
type MockActivityRepository struct {
	mu         sync.RWMutex
	activities []*domain.DriverActivity

	// Counters for verification
	CreateCallCount int32

	// Error injection
	SumError    error
	CreateError error
}

// NewMockActivityRepository creates a new mock activity repository.
func NewMockActivityRepository() *MockActivityRepository {
	return &MockActivityRepository{}
}

// AddActivity seeds a committed activity.
func (m *MockActivityRepository) AddActivity(a *domain.DriverActivity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities = append(m.activities, a)
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (m *MockActivityRepository) SumForDriverDate(ctx context.Context, organizationID, driverID string, date time.Time) (domain.DayCounters, error) {
	if m.SumError != nil {
		return domain.DayCounters{}, m.SumError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var counters domain.DayCounters
	for _, a := range m.activities {
		if a.OrganizationID != organizationID || a.DriverID != driverID {
			continue
		}
		if !sameDay(a.Date, date) || a.Status == domain.ActivityStatusCancelled {
			continue
		}
		counters = counters.Add(a.DrivingMinutes, a.AmplitudeMinutes)
	}
	return counters, nil
}

func (m *MockActivityRepository) ListForDriverDate(ctx context.Context, organizationID, driverID string, date time.Time) ([]*domain.DriverActivity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.DriverActivity
	for _, a := range m.activities {
		if a.OrganizationID == organizationID && a.DriverID == driverID && sameDay(a.Date, date) {
			copy := *a
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockActivityRepository) Create(ctx context.Context, activity *domain.DriverActivity) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *activity
	m.activities = append(m.activities, &copy)
	return nil
}

// ──────────────────────────────────────────────
// MOCK DECISION REPOSITORY
// ──────────────────────────────────────────────

// MockDecisionRepository is a mock implementation of DecisionRepository.
// Append-only like the real one.
type MockDecisionRepository struct {
	mu        sync.RWMutex
	decisions []*domain.ComplianceDecision

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockDecisionRepository creates a new mock decision repository.
func NewMockDecisionRepository() *MockDecisionRepository {
	return &MockDecisionRepository{}
}

func (m *MockDecisionRepository) Create(ctx context.Context, decision *domain.ComplianceDecision) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *decision
	m.decisions = append(m.decisions, &copy)
	return nil
}

func (m *MockDecisionRepository) List(ctx context.Context, organizationID string, filter repository.DecisionFilter) ([]*domain.ComplianceDecision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.ComplianceDecision
	for _, d := range m.decisions {
		if d.OrganizationID != organizationID {
			continue
		}
		if filter.DriverID != "" && d.DriverID != filter.DriverID {
			continue
		}
		if filter.Date != nil && !sameDay(d.CreatedAt, *filter.Date) {
			continue
		}
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

// Records returns all stored decisions for assertions.
func (m *MockDecisionRepository) Records() []*domain.ComplianceDecision {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.ComplianceDecision, len(m.decisions))
	for i, d := range m.decisions {
		copy := *d
		result[i] = &copy
	}
	return result
}

// ──────────────────────────────────────────────
// MOCK COST PARAMETER REPOSITORY
// ──────────────────────────────────────────────

// MockCostParameterRepository is a mock implementation of CostParameterRepository.
type MockCostParameterRepository struct {
	mu    sync.RWMutex
	costs map[string]*domain.CostParameters

	// Error injection
	GetError error
}

// NewMockCostParameterRepository creates a new mock cost parameter repository.
func NewMockCostParameterRepository() *MockCostParameterRepository {
	return &MockCostParameterRepository{
		costs: make(map[string]*domain.CostParameters),
	}
}

// SetCosts seeds cost parameters for an organization.
func (m *MockCostParameterRepository) SetCosts(organizationID string, costs domain.CostParameters) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.costs[organizationID] = &costs
}

func (m *MockCostParameterRepository) GetByOrganization(ctx context.Context, organizationID string) (*domain.CostParameters, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	costs, ok := m.costs[organizationID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *costs
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is an in-memory implementation of LockStoreInterface with
// SET NX semantics.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

func lockKey(driverID string, date time.Time) string {
	return driverID + ":" + date.Format("2006-01-02")
}

func (m *MockLockStore) AcquireDriverDayLock(ctx context.Context, driverID string, date time.Time, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := lockKey(driverID, date)
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *MockLockStore) ReleaseDriverDayLock(ctx context.Context, driverID string, date time.Time) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lockKey(driverID, date))
	return nil
}

// Ensure mocks satisfy the repository and redis interfaces.
var (
	_ repository.RuleRepository            = (*MockRuleRepository)(nil)
	_ repository.VehicleCategoryRepository = (*MockVehicleCategoryRepository)(nil)
	_ repository.DriverRepository          = (*MockDriverRepository)(nil)
	_ repository.ActivityRepository        = (*MockActivityRepository)(nil)
	_ repository.DecisionRepository        = (*MockDecisionRepository)(nil)
	_ repository.CostParameterRepository   = (*MockCostParameterRepository)(nil)
	_ redis.LockStoreInterface             = (*MockLockStore)(nil)
)
