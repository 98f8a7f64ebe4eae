package domain

// PlanType identifies a subscription tier.
type PlanType string

const (
	PlanFree         PlanType = "free"
	PlanBasic        PlanType = "basic"
	PlanProfessional PlanType = "professional"
	PlanEnterprise   PlanType = "enterprise"
)

func ValidPlanType(s string) bool {
	switch PlanType(s) {
	case PlanFree, PlanBasic, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

// Plan is one subscription tier from the seed catalog. Plans are static at
// runtime; a tenant copies the ceilings and module set at assignment time.
type Plan struct {
	Type        PlanType `json:"plan_type"`
	Name        string   `json:"name"`
	Description string   `json:"description"`

	// Prices are zero for the free tier.
	MonthlyPrice float64 `json:"monthly_price"`
	YearlyPrice  float64 `json:"yearly_price"`

	MaxUsers     int     `json:"max_users"`
	MaxEmployees int     `json:"max_employees"`
	MaxStorageGB float64 `json:"max_storage_gb"`

	EnabledModules []string `json:"enabled_modules"`
	TrialDays      int      `json:"trial_days"`
	SupportTier    string   `json:"support_tier"`
}

// Feature module names known to the platform.
const (
	ModuleCore        = "core"
	ModuleEmployees   = "employees"
	ModuleDepartments = "departments"
	ModuleLeave       = "leave"
	ModuleAttendance  = "attendance"
	ModulePayroll     = "payroll"
	ModulePerformance = "performance"
	ModuleRecruitment = "recruitment"
	ModuleTraining    = "training"
	ModuleDocuments   = "documents"
)
