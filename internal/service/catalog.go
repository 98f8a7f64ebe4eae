package service

import (
	"errors"

	"github.com/openhrms/tenantcore/internal/domain"
)

var ErrPlanNotFound = errors.New("plan not found")

// CatalogService exposes the fixed set of subscription plans. The catalog is
// seed data: editing it is an administrative deploy-time concern, so lookups
// are pure and require no database access.
type CatalogService struct {
	plans []domain.Plan
	index map[domain.PlanType]int
}

func NewCatalogService() *CatalogService {
	s := &CatalogService{
		plans: defaultPlans(),
		index: make(map[domain.PlanType]int),
	}
	for i, p := range s.plans {
		s.index[p.Type] = i
	}
	return s
}

func (s *CatalogService) GetPlan(planType domain.PlanType) (*domain.Plan, error) {
	i, ok := s.index[planType]
	if !ok {
		return nil, ErrPlanNotFound
	}
	p := s.plans[i]
	return &p, nil
}

// ListPlans returns all plans ordered by tier, cheapest first. The order is
// deterministic so catalog listings render consistently.
func (s *CatalogService) ListPlans() []domain.Plan {
	out := make([]domain.Plan, len(s.plans))
	copy(out, s.plans)
	return out
}

func defaultPlans() []domain.Plan {
	return []domain.Plan{
		{
			Type:         domain.PlanFree,
			Name:         "Free",
			Description:  "Basic HR functionality for small teams",
			MonthlyPrice: 0,
			YearlyPrice:  0,
			MaxUsers:     3,
			MaxEmployees: 10,
			MaxStorageGB: 1,
			EnabledModules: []string{
				domain.ModuleCore, domain.ModuleEmployees, domain.ModuleDepartments,
			},
			TrialDays:   0,
			SupportTier: "community",
		},
		{
			Type:         domain.PlanBasic,
			Name:         "Basic",
			Description:  "Essential HR tools for growing businesses",
			MonthlyPrice: 29,
			YearlyPrice:  290,
			MaxUsers:     10,
			MaxEmployees: 50,
			MaxStorageGB: 5,
			EnabledModules: []string{
				domain.ModuleCore, domain.ModuleEmployees, domain.ModuleDepartments,
				domain.ModuleLeave, domain.ModuleAttendance,
			},
			TrialDays:   14,
			SupportTier: "email",
		},
		{
			Type:         domain.PlanProfessional,
			Name:         "Professional",
			Description:  "Complete HR solution for established companies",
			MonthlyPrice: 79,
			YearlyPrice:  790,
			MaxUsers:     25,
			MaxEmployees: 200,
			MaxStorageGB: 20,
			EnabledModules: []string{
				domain.ModuleCore, domain.ModuleEmployees, domain.ModuleDepartments,
				domain.ModuleLeave, domain.ModuleAttendance,
				domain.ModulePayroll, domain.ModulePerformance,
			},
			TrialDays:   14,
			SupportTier: "priority",
		},
		{
			Type:         domain.PlanEnterprise,
			Name:         "Enterprise",
			Description:  "Advanced HR platform with dedicated support",
			MonthlyPrice: 199,
			YearlyPrice:  1990,
			MaxUsers:     100,
			MaxEmployees: 1000,
			MaxStorageGB: 100,
			EnabledModules: []string{
				domain.ModuleCore, domain.ModuleEmployees, domain.ModuleDepartments,
				domain.ModuleLeave, domain.ModuleAttendance,
				domain.ModulePayroll, domain.ModulePerformance,
				domain.ModuleRecruitment, domain.ModuleTraining, domain.ModuleDocuments,
			},
			TrialDays:   30,
			SupportTier: "dedicated",
		},
	}
}
