package service

import (
	"testing"

	"github.com/openhrms/tenantcore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService_ListPlansOrder(t *testing.T) {
	catalog := NewCatalogService()

	plans := catalog.ListPlans()
	require.Len(t, plans, 4)

	want := []domain.PlanType{domain.PlanFree, domain.PlanBasic, domain.PlanProfessional, domain.PlanEnterprise}
	for i, p := range plans {
		assert.Equal(t, want[i], p.Type)
	}

	// Deterministic: a second listing is identical.
	again := catalog.ListPlans()
	assert.Equal(t, plans, again)

	// Cheapest first.
	for i := 1; i < len(plans); i++ {
		assert.GreaterOrEqual(t, plans[i].MonthlyPrice, plans[i-1].MonthlyPrice)
	}
}

func TestCatalogService_GetPlan(t *testing.T) {
	catalog := NewCatalogService()

	basic, err := catalog.GetPlan(domain.PlanBasic)
	require.NoError(t, err)
	assert.Equal(t, 10, basic.MaxUsers)
	assert.Equal(t, 50, basic.MaxEmployees)
	assert.Equal(t, float64(5), basic.MaxStorageGB)
	assert.Equal(t, 14, basic.TrialDays)
	assert.Contains(t, basic.EnabledModules, domain.ModuleLeave)
	assert.NotContains(t, basic.EnabledModules, domain.ModulePayroll)

	free, err := catalog.GetPlan(domain.PlanFree)
	require.NoError(t, err)
	assert.Zero(t, free.MonthlyPrice)
	assert.Zero(t, free.TrialDays)

	enterprise, err := catalog.GetPlan(domain.PlanEnterprise)
	require.NoError(t, err)
	assert.Equal(t, 1000, enterprise.MaxEmployees)
	assert.Len(t, enterprise.EnabledModules, 10)

	_, err = catalog.GetPlan("platinum")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestCatalogService_EveryPlanIncludesCore(t *testing.T) {
	catalog := NewCatalogService()
	for _, p := range catalog.ListPlans() {
		assert.Contains(t, p.EnabledModules, domain.ModuleCore, "plan %s", p.Type)
	}
}

func TestCatalogService_GetPlanReturnsCopy(t *testing.T) {
	catalog := NewCatalogService()

	p1, err := catalog.GetPlan(domain.PlanFree)
	require.NoError(t, err)
	p1.MaxUsers = 9999

	p2, err := catalog.GetPlan(domain.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 3, p2.MaxUsers, "catalog entries must not be mutable through returned values")
}
