package service

import (
	"fmt"

	"github.com/openhrms/tenantcore/internal/domain"
)

// QuotaExceededError is the denial reason for a quota check. It names the
// specific resource so callers can render an actionable upgrade prompt.
type QuotaExceededError struct {
	Resource domain.Resource
	Current  float64
	Max      float64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s: %g of %g used", e.Resource, e.Current, e.Max)
}

// ModuleNotEnabledError is the denial reason for a module-access check.
type ModuleNotEnabledError struct {
	Module string
	Plan   domain.PlanType
}

func (e *ModuleNotEnabledError) Error() string {
	return fmt.Sprintf("module %s is not enabled on the %s plan", e.Module, e.Plan)
}

// QuotaService decides whether tenant-scoped mutations may proceed. It is a
// pure decision function over the tenant row and the plan catalog: it never
// mutates counters. Callers apply UpdateUsageCounters after a successful
// write, so a check can run speculatively (for a "can I add one more?"
// prompt) without committing anything.
type QuotaService struct {
	catalog domain.PlanCatalog
}

func NewQuotaService(catalog domain.PlanCatalog) *QuotaService {
	return &QuotaService{catalog: catalog}
}

// CheckQuota allows an operation iff current + increment stays at or below
// the ceiling. Reaching the ceiling exactly is allowed. A tenant already over
// its ceiling (possible after a plan downgrade) is denied any positive
// increment but never forcibly truncated: non-positive increments still pass.
func (s *QuotaService) CheckQuota(tenant *domain.Tenant, resource domain.Resource, increment float64) error {
	if increment <= 0 {
		return nil
	}
	current := tenant.Current(resource)
	max := tenant.Max(resource)
	if current+increment > max {
		return &QuotaExceededError{Resource: resource, Current: current, Max: max}
	}
	return nil
}

// CheckModuleAccess reports whether the tenant's current plan unlocks a
// feature module, independent of numeric quotas. The module set is resolved
// through the catalog so a stale copy on the tenant row cannot grant access
// the plan no longer includes.
func (s *QuotaService) CheckModuleAccess(tenant *domain.Tenant, module string) error {
	plan, err := s.catalog.GetPlan(tenant.PlanType)
	if err != nil {
		return err
	}
	for _, m := range plan.EnabledModules {
		if m == module {
			return nil
		}
	}
	return &ModuleNotEnabledError{Module: module, Plan: tenant.PlanType}
}
