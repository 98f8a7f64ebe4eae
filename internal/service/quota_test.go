package service

import (
	"errors"
	"testing"

	"github.com/openhrms/tenantcore/internal/domain"
)

func quotaTenant(current, max int) *domain.Tenant {
	return &domain.Tenant{
		ID:               1,
		Slug:             "acme",
		PlanType:         domain.PlanBasic,
		MaxUsers:         max,
		MaxEmployees:     max,
		CurrentUsers:     current,
		CurrentEmployees: current,
		MaxStorageGB:     float64(max),
		CurrentStorageGB: float64(current),
	}
}

func TestQuotaService_CheckQuota_Boundaries(t *testing.T) {
	svc := NewQuotaService(NewCatalogService())

	cases := []struct {
		name      string
		current   int
		max       int
		increment float64
		allow     bool
	}{
		{"well under ceiling", 10, 50, 1, true},
		{"reaches ceiling exactly", 49, 50, 1, true},
		{"exceeds ceiling by one", 50, 50, 1, false},
		{"large increment exceeds", 10, 50, 41, false},
		{"large increment fits", 10, 50, 40, true},
		{"zero increment always allowed", 50, 50, 0, true},
		{"decrement always allowed", 50, 50, -1, true},
		{"over ceiling after downgrade denies growth", 120, 50, 1, false},
		{"over ceiling after downgrade allows shrink", 120, 50, -10, true},
		{"empty tenant", 0, 50, 1, true},
		{"ceiling of zero denies everything", 0, 0, 1, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tenant := quotaTenant(tc.current, tc.max)
			for _, resource := range []domain.Resource{domain.ResourceUsers, domain.ResourceEmployees, domain.ResourceStorage} {
				err := svc.CheckQuota(tenant, resource, tc.increment)
				if tc.allow && err != nil {
					t.Errorf("resource %s: expected allow, got %v", resource, err)
				}
				if !tc.allow {
					var qe *QuotaExceededError
					if !errors.As(err, &qe) {
						t.Errorf("resource %s: expected QuotaExceededError, got %v", resource, err)
					} else if qe.Resource != resource {
						t.Errorf("denial must name the resource: got %s, want %s", qe.Resource, resource)
					}
				}
			}
		})
	}
}

func TestQuotaService_BasicPlanFullDeniesOneMore(t *testing.T) {
	svc := NewQuotaService(NewCatalogService())

	// acme on basic: max_employees=50, current_employees=50.
	tenant := &domain.Tenant{
		Slug:             "acme",
		PlanType:         domain.PlanBasic,
		MaxEmployees:     50,
		CurrentEmployees: 50,
	}

	err := svc.CheckQuota(tenant, domain.ResourceEmployees, 1)
	var qe *QuotaExceededError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if qe.Resource != domain.ResourceEmployees {
		t.Fatalf("expected employees denial, got %s", qe.Resource)
	}
}

func TestQuotaService_UpgradeUnblocksGrowth(t *testing.T) {
	svc := NewQuotaService(NewCatalogService())

	tenant := &domain.Tenant{
		Slug:             "acme",
		PlanType:         domain.PlanProfessional,
		MaxEmployees:     200, // post-upgrade ceiling
		CurrentEmployees: 50,
	}

	if err := svc.CheckQuota(tenant, domain.ResourceEmployees, 1); err != nil {
		t.Fatalf("expected allow after upgrade, got %v", err)
	}
}

func TestQuotaService_CheckModuleAccess(t *testing.T) {
	svc := NewQuotaService(NewCatalogService())

	tenant := &domain.Tenant{Slug: "acme", PlanType: domain.PlanBasic}

	if err := svc.CheckModuleAccess(tenant, domain.ModuleLeave); err != nil {
		t.Fatalf("basic plan includes leave, got %v", err)
	}

	err := svc.CheckModuleAccess(tenant, domain.ModulePayroll)
	var me *ModuleNotEnabledError
	if !errors.As(err, &me) {
		t.Fatalf("expected ModuleNotEnabledError, got %v", err)
	}
	if me.Module != domain.ModulePayroll {
		t.Fatalf("denial must name the module, got %s", me.Module)
	}
}

func TestQuotaService_CheckModuleAccess_PlanResolvedViaCatalog(t *testing.T) {
	svc := NewQuotaService(NewCatalogService())

	// A stale module copy on the tenant row must not grant access the
	// current plan does not include.
	tenant := &domain.Tenant{
		Slug:           "acme",
		PlanType:       domain.PlanFree,
		EnabledModules: []string{domain.ModulePayroll},
	}
	if err := svc.CheckModuleAccess(tenant, domain.ModulePayroll); err == nil {
		t.Fatal("free plan does not include payroll")
	}
}

func TestQuotaService_CheckModuleAccess_UnknownPlan(t *testing.T) {
	svc := NewQuotaService(NewCatalogService())

	tenant := &domain.Tenant{Slug: "acme", PlanType: "gold"}
	if err := svc.CheckModuleAccess(tenant, domain.ModuleCore); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}
