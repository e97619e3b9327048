package services

import (
	"testing"

	"flea-scout/utils"
)

// memStore is an in-memory storage.Store for tests.
type memStore struct {
	total    map[string]int
	daily    map[string]int
	emails   map[string]string
	licenses map[string]string // key -> bound device
}

func newMemStore() *memStore {
	return &memStore{
		total:    map[string]int{},
		daily:    map[string]int{},
		emails:   map[string]string{},
		licenses: map[string]string{},
	}
}

func (m *memStore) TotalCount(id string) (int, error)           { return m.total[id], nil }
func (m *memStore) DailyCount(id, day string) (int, error)      { return m.daily[id+"|"+day], nil }
func (m *memStore) IncrTotal(id string, n int) error            { m.total[id] += n; return nil }
func (m *memStore) IncrDaily(id string, n int, day string) error {
	m.daily[id+"|"+day] += n
	return nil
}
func (m *memStore) EmailForDevice(id string) (string, error) { return m.emails[id], nil }
func (m *memStore) SetDeviceEmail(id, email string) error    { m.emails[id] = email; return nil }
func (m *memStore) CreateLicense(key, email, plan string) error {
	m.licenses[key] = ""
	return nil
}
func (m *memStore) BindLicense(key, id string) (bool, string, error) {
	bound, ok := m.licenses[key]
	if !ok {
		return false, "LICENSE_NOT_FOUND", nil
	}
	if bound != "" && bound != id {
		return false, "LICENSE_ALREADY_BOUND_TO_ANOTHER_DEVICE", nil
	}
	m.licenses[key] = id
	return true, "BOUND_OK", nil
}
func (m *memStore) IsDevicePaid(id string) (bool, error) {
	for _, bound := range m.licenses {
		if bound == id {
			return true, nil
		}
	}
	return false, nil
}
func (m *memStore) Close() error { return nil }

func TestLimitFreePlanLifetimeQuota(t *testing.T) {
	store := newMemStore()
	svc := NewLimitService(store, utils.NewLogger())

	for i := 0; i < FreeTotalLimit; i++ {
		status, err := svc.Check("dev-1")
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !status.Allowed {
			t.Fatalf("analysis %d should be allowed on the free plan", i+1)
		}
		if status.Plan != PlanFree {
			t.Fatalf("Plan: got %q, want %q", status.Plan, PlanFree)
		}
		if err := svc.RegisterUsage("dev-1"); err != nil {
			t.Fatalf("RegisterUsage: %v", err)
		}
	}

	status, err := svc.Check("dev-1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.Allowed {
		t.Error("free plan should be exhausted after its lifetime quota")
	}
	if status.Reason != "FREE_LIMIT_REACHED" {
		t.Errorf("Reason: got %q, want FREE_LIMIT_REACHED", status.Reason)
	}
}

func TestLimitEmailPlanDailyQuota(t *testing.T) {
	store := newMemStore()
	svc := NewLimitService(store, utils.NewLogger())

	if err := store.SetDeviceEmail("dev-2", "buyer@example.com"); err != nil {
		t.Fatal(err)
	}

	status, err := svc.Check("dev-2")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.Plan != PlanEmail {
		t.Errorf("Plan: got %q, want %q", status.Plan, PlanEmail)
	}
	if status.Limit != EmailDailyLimit {
		t.Errorf("Limit: got %d, want %d", status.Limit, EmailDailyLimit)
	}

	for i := 0; i < EmailDailyLimit; i++ {
		if err := svc.RegisterUsage("dev-2"); err != nil {
			t.Fatalf("RegisterUsage: %v", err)
		}
	}

	status, _ = svc.Check("dev-2")
	if status.Allowed {
		t.Error("email plan should be exhausted for the day")
	}
	if status.Reason != "DAILY_LIMIT_REACHED" {
		t.Errorf("Reason: got %q, want DAILY_LIMIT_REACHED", status.Reason)
	}
}

func TestLimitPaidPlanBeatsEmail(t *testing.T) {
	store := newMemStore()
	svc := NewLimitService(store, utils.NewLogger())

	if err := store.SetDeviceEmail("dev-3", "buyer@example.com"); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateLicense("FA-TEST", "buyer@example.com", string(PlanPaid)); err != nil {
		t.Fatal(err)
	}
	if ok, reason, _ := store.BindLicense("FA-TEST", "dev-3"); !ok {
		t.Fatalf("BindLicense refused: %s", reason)
	}

	status, err := svc.Check("dev-3")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.Plan != PlanPaid {
		t.Errorf("Plan: got %q, want %q", status.Plan, PlanPaid)
	}
	if status.Limit != PaidDailyLimit {
		t.Errorf("Limit: got %d, want %d", status.Limit, PaidDailyLimit)
	}
}
