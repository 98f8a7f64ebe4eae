package domain

import (
	"time"
)

// TenantStatus is the lifecycle state of a tenant account.
type TenantStatus string

const (
	TenantStatusPending   TenantStatus = "pending"
	TenantStatusActive    TenantStatus = "active"
	TenantStatusTrial     TenantStatus = "trial"
	TenantStatusSuspended TenantStatus = "suspended"
	TenantStatusCancelled TenantStatus = "cancelled"
)

func ValidTenantStatus(s string) bool {
	switch TenantStatus(s) {
	case TenantStatusPending, TenantStatusActive, TenantStatusTrial, TenantStatusSuspended, TenantStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a tenant may move from one lifecycle status
// to another. A cancelled tenant cannot be reactivated directly; it has to
// re-enter through pending (re-onboarding) so stale billing state is never
// resurrected.
func (s TenantStatus) CanTransition(to TenantStatus) bool {
	if s == to {
		return true
	}
	if s == TenantStatusCancelled {
		return to == TenantStatusPending
	}
	return true
}

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// Resource is a quota-countable resource type.
type Resource string

const (
	ResourceUsers     Resource = "users"
	ResourceEmployees Resource = "employees"
	ResourceStorage   Resource = "storage"
)

func ValidResource(s string) bool {
	switch Resource(s) {
	case ResourceUsers, ResourceEmployees, ResourceStorage:
		return true
	}
	return false
}

// Tenant is one customer organization. Tenants live in the shared registry
// schema; each tenant's own data lives in a dedicated schema named after its
// slug.
type Tenant struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug"`
	Domain       *string      `json:"domain,omitempty"`
	Subdomain    *string      `json:"subdomain,omitempty"`
	ContactEmail string       `json:"contact_email"`
	Status       TenantStatus `json:"status"`

	PlanType             PlanType     `json:"plan_type"`
	BillingCycle         BillingCycle `json:"billing_cycle"`
	SubscriptionStartsAt *time.Time   `json:"subscription_starts_at,omitempty"`
	SubscriptionEndsAt   *time.Time   `json:"subscription_ends_at,omitempty"`
	TrialEndsAt          *time.Time   `json:"trial_ends_at,omitempty"`

	MaxUsers     int     `json:"max_users"`
	MaxEmployees int     `json:"max_employees"`
	MaxStorageGB float64 `json:"max_storage_gb"`

	CurrentUsers     int     `json:"current_users"`
	CurrentEmployees int     `json:"current_employees"`
	CurrentStorageGB float64 `json:"current_storage_gb"`

	EnabledModules []string `json:"enabled_modules"`

	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	DeletedBy *string    `json:"deleted_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SchemaName is the PostgreSQL schema holding this tenant's tables. It is
// derived 1:1 from the slug, which is validated at creation time.
func (t *Tenant) SchemaName() string {
	return t.Slug
}

func (t *Tenant) HasModule(module string) bool {
	for _, m := range t.EnabledModules {
		if m == module {
			return true
		}
	}
	return false
}

// Current returns the live usage counter for a resource.
func (t *Tenant) Current(r Resource) float64 {
	switch r {
	case ResourceUsers:
		return float64(t.CurrentUsers)
	case ResourceEmployees:
		return float64(t.CurrentEmployees)
	case ResourceStorage:
		return t.CurrentStorageGB
	}
	return 0
}

// Max returns the plan ceiling for a resource.
func (t *Tenant) Max(r Resource) float64 {
	switch r {
	case ResourceUsers:
		return float64(t.MaxUsers)
	case ResourceEmployees:
		return float64(t.MaxEmployees)
	case ResourceStorage:
		return t.MaxStorageGB
	}
	return 0
}

// UsageDelta carries atomic counter adjustments. Nil fields are untouched.
type UsageDelta struct {
	Users     *int     `json:"users,omitempty"`
	Employees *int     `json:"employees,omitempty"`
	StorageGB *float64 `json:"storage_gb,omitempty"`
}

func (d UsageDelta) IsZero() bool {
	return d.Users == nil && d.Employees == nil && d.StorageGB == nil
}

// PlanChange is one audit record of a subscription change.
type PlanChange struct {
	ID          int64     `json:"id"`
	TenantID    int64     `json:"tenant_id"`
	OldPlan     PlanType  `json:"old_plan"`
	NewPlan     PlanType  `json:"new_plan"`
	Reason      string    `json:"reason,omitempty"`
	InitiatedBy string    `json:"initiated_by,omitempty"`
	ChangedAt   time.Time `json:"changed_at"`
}
