package domain

import (
	"context"
)

// ListTenantsOpts filters and paginates tenant listings.
type ListTenantsOpts struct {
	Status *TenantStatus
	Plan   *PlanType
	Search string
	Page   int
	Size   int
}

type TenantStore interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id int64) (*Tenant, error)
	// GetBySlugOrDomain resolves an identifier with slug > domain > subdomain
	// precedence; slug is the canonical key.
	GetBySlugOrDomain(ctx context.Context, identifier string) (*Tenant, error)
	List(ctx context.Context, opts ListTenantsOpts) ([]Tenant, int, error)
	// UpdateUsageCounters applies deltas atomically in a single statement.
	// Decrements that would underflow clamp to zero.
	UpdateUsageCounters(ctx context.Context, id int64, delta UsageDelta) (*Tenant, error)
	// UpdatePlan swaps plan type, ceilings and module set. Live counters are
	// never modified here.
	UpdatePlan(ctx context.Context, id int64, plan *Plan) (*Tenant, error)
	UpdateStatus(ctx context.Context, id int64, status TenantStatus) (*Tenant, error)
	SoftDelete(ctx context.Context, id int64, deletedBy string) error
	RecordPlanChange(ctx context.Context, change *PlanChange) error
	PlanChanges(ctx context.Context, tenantID int64) ([]PlanChange, error)
}

// AdminUser is the bootstrap account written into a freshly provisioned
// tenant schema.
type AdminUser struct {
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
}

type SchemaProvisioner interface {
	// ProvisionSchema creates the tenant schema and its baseline tables.
	// Safe to re-run: existing schemas and tables are left untouched.
	ProvisionSchema(ctx context.Context, slug string) error
	SchemaExists(ctx context.Context, slug string) (bool, error)
	CreateAdminUser(ctx context.Context, slug string, user *AdminUser) error
}

type PlanCatalog interface {
	GetPlan(planType PlanType) (*Plan, error)
	// ListPlans returns plans in a stable tier order, cheapest first.
	ListPlans() []Plan
}
