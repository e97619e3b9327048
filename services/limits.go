package services

import (
	"time"

	"flea-scout/storage"
	"flea-scout/utils"
)

// Plan is the pricing tier a device currently sits on.
type Plan string

const (
	PlanFree  Plan = "free"
	PlanEmail Plan = "email"
	PlanPaid  Plan = "paid"
)

// Per-plan analysis quotas. Free is a lifetime total, the rest are daily.
const (
	FreeTotalLimit  = 5
	EmailDailyLimit = 10
	PaidDailyLimit  = 200
)

// LimitStatus reports whether a device may run another analysis.
type LimitStatus struct {
	Plan      Plan   `json:"plan"`
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason"`
	Remaining int    `json:"remaining"`
	Limit     int    `json:"limit"`
}

// LimitService enforces per-device usage quotas on top of the store.
type LimitService struct {
	store  storage.Store
	logger *utils.Logger
}

// NewLimitService creates a LimitService backed by the given store.
func NewLimitService(store storage.Store, logger *utils.Logger) *LimitService {
	return &LimitService{store: store, logger: logger}
}

// Plan resolves the device's tier: paid beats email beats free.
func (s *LimitService) Plan(deviceID string) (Plan, error) {
	paid, err := s.store.IsDevicePaid(deviceID)
	if err != nil {
		return PlanFree, err
	}
	if paid {
		return PlanPaid, nil
	}
	email, err := s.store.EmailForDevice(deviceID)
	if err != nil {
		return PlanFree, err
	}
	if email != "" {
		return PlanEmail, nil
	}
	return PlanFree, nil
}

// Check reports whether the device has quota left for one more analysis.
func (s *LimitService) Check(deviceID string) (LimitStatus, error) {
	plan, err := s.Plan(deviceID)
	if err != nil {
		return LimitStatus{}, err
	}
	day := utcDay()

	var used, limit int
	switch plan {
	case PlanPaid:
		limit = PaidDailyLimit
		used, err = s.store.DailyCount(deviceID, day)
	case PlanEmail:
		limit = EmailDailyLimit
		used, err = s.store.DailyCount(deviceID, day)
	default:
		limit = FreeTotalLimit
		used, err = s.store.TotalCount(deviceID)
	}
	if err != nil {
		return LimitStatus{}, err
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	reason := "OK"
	if remaining == 0 {
		if plan == PlanFree {
			reason = "FREE_LIMIT_REACHED"
		} else {
			reason = "DAILY_LIMIT_REACHED"
		}
		s.logger.Debug("[limits] Device %s exhausted %s plan (%d/%d)", deviceID, plan, used, limit)
	}

	return LimitStatus{
		Plan:      plan,
		Allowed:   remaining > 0,
		Reason:    reason,
		Remaining: remaining,
		Limit:     limit,
	}, nil
}

// RegisterUsage books one analysis against the device's quota.
func (s *LimitService) RegisterUsage(deviceID string) error {
	plan, err := s.Plan(deviceID)
	if err != nil {
		return err
	}
	if plan == PlanPaid || plan == PlanEmail {
		return s.store.IncrDaily(deviceID, 1, utcDay())
	}
	return s.store.IncrTotal(deviceID, 1)
}

// utcDay is the quota bucket key for daily plans.
func utcDay() string {
	return time.Now().UTC().Format("2006-01-02")
}
