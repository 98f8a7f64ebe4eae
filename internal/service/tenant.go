package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openhrms/tenantcore/internal/domain"
	"github.com/openhrms/tenantcore/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrSlugConflict      = errors.New("slug, domain or subdomain already in use")
	ErrInvalidTransition = errors.New("invalid tenant status transition")
	ErrSchemaCreation    = errors.New("tenant schema creation failed")
)

// CreateTenantInput carries everything needed to onboard a tenant.
type CreateTenantInput struct {
	Name         string
	Slug         string
	Domain       *string
	Subdomain    *string
	ContactEmail string
	PlanType     domain.PlanType
	BillingCycle domain.BillingCycle

	// Bootstrap admin for the new tenant schema.
	AdminUsername  string
	AdminEmail     string
	AdminFirstName string
	AdminLastName  string
	AdminPassword  string
}

// TenantService orchestrates the tenant lifecycle: registry rows, schema
// provisioning, plan changes and usage counters.
type TenantService struct {
	tenantStore domain.TenantStore
	provisioner domain.SchemaProvisioner
	catalog     domain.PlanCatalog
	logger      *zap.Logger
}

func NewTenantService(ts domain.TenantStore, p domain.SchemaProvisioner, c domain.PlanCatalog, logger *zap.Logger) *TenantService {
	return &TenantService{
		tenantStore: ts,
		provisioner: p,
		catalog:     c,
		logger:      logger,
	}
}

// Create onboards a tenant: validates the slug, copies ceilings and modules
// from the chosen plan, inserts the registry row (the unique index on slug is
// what serializes concurrent creates), provisions the tenant schema, and
// writes the bootstrap admin user into it.
//
// Tenants with a trial on their plan start in trial status with trial_ends_at
// set; otherwise they start pending until payment activates them.
func (s *TenantService) Create(ctx context.Context, in CreateTenantInput) (*domain.Tenant, error) {
	if err := domain.ValidateSlug(in.Slug); err != nil {
		return nil, err
	}

	plan, err := s.catalog.GetPlan(in.PlanType)
	if err != nil {
		return nil, err
	}

	cycle := in.BillingCycle
	if cycle == "" {
		cycle = domain.BillingCycleMonthly
	}

	now := time.Now()
	tenant := &domain.Tenant{
		Name:                 in.Name,
		Slug:                 in.Slug,
		Domain:               in.Domain,
		Subdomain:            in.Subdomain,
		ContactEmail:         in.ContactEmail,
		Status:               domain.TenantStatusPending,
		PlanType:             plan.Type,
		BillingCycle:         cycle,
		SubscriptionStartsAt: &now,
		MaxUsers:             plan.MaxUsers,
		MaxEmployees:         plan.MaxEmployees,
		MaxStorageGB:         plan.MaxStorageGB,
		EnabledModules:       plan.EnabledModules,
	}
	if plan.TrialDays > 0 {
		trialEnd := now.AddDate(0, 0, plan.TrialDays)
		tenant.Status = domain.TenantStatusTrial
		tenant.TrialEndsAt = &trialEnd
	}

	if err := s.tenantStore.Create(ctx, tenant); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrSlugConflict
		}
		return nil, err
	}

	if err := s.provisioner.ProvisionSchema(ctx, tenant.Slug); err != nil {
		s.logger.Error("schema provisioning failed",
			zap.String("slug", tenant.Slug),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrSchemaCreation, err)
	}

	if in.AdminUsername != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		admin := &domain.AdminUser{
			Username:     in.AdminUsername,
			Email:        in.AdminEmail,
			FirstName:    in.AdminFirstName,
			LastName:     in.AdminLastName,
			PasswordHash: string(hash),
		}
		if err := s.provisioner.CreateAdminUser(ctx, tenant.Slug, admin); err != nil {
			return nil, err
		}
	}

	s.logger.Info("tenant created",
		zap.Int64("tenant_id", tenant.ID),
		zap.String("slug", tenant.Slug),
		zap.String("plan", string(tenant.PlanType)),
		zap.String("status", string(tenant.Status)),
	)
	return tenant, nil
}

func (s *TenantService) GetByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	return s.tenantStore.GetByID(ctx, id)
}

func (s *TenantService) List(ctx context.Context, opts domain.ListTenantsOpts) ([]domain.Tenant, int, error) {
	return s.tenantStore.List(ctx, opts)
}

// ChangePlan moves a tenant to a new tier. Ceilings and the module set are
// replaced with the new plan's values; live counters are left alone. Usage
// already above a lower ceiling is not truncated; the quota enforcer simply
// denies further growth. Every change is recorded for audit.
func (s *TenantService) ChangePlan(ctx context.Context, tenantID int64, newPlanType domain.PlanType, reason, initiatedBy string) (*domain.Tenant, error) {
	tenant, err := s.tenantStore.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	plan, err := s.catalog.GetPlan(newPlanType)
	if err != nil {
		return nil, err
	}

	oldPlan := tenant.PlanType
	updated, err := s.tenantStore.UpdatePlan(ctx, tenantID, plan)
	if err != nil {
		return nil, err
	}

	change := &domain.PlanChange{
		TenantID:    tenantID,
		OldPlan:     oldPlan,
		NewPlan:     plan.Type,
		Reason:      reason,
		InitiatedBy: initiatedBy,
	}
	if err := s.tenantStore.RecordPlanChange(ctx, change); err != nil {
		// The plan switch itself succeeded; a lost audit row is logged, not
		// surfaced to the caller.
		s.logger.Error("failed to record plan change",
			zap.Int64("tenant_id", tenantID),
			zap.Error(err),
		)
	}

	s.logger.Info("tenant plan changed",
		zap.Int64("tenant_id", tenantID),
		zap.String("old_plan", string(oldPlan)),
		zap.String("new_plan", string(plan.Type)),
		zap.String("reason", reason),
	)
	return updated, nil
}

func (s *TenantService) PlanChanges(ctx context.Context, tenantID int64) ([]domain.PlanChange, error) {
	return s.tenantStore.PlanChanges(ctx, tenantID)
}

// ChangeStatus transitions the tenant lifecycle, refusing transitions that
// would resurrect a cancelled subscription without re-onboarding.
func (s *TenantService) ChangeStatus(ctx context.Context, tenantID int64, to domain.TenantStatus) (*domain.Tenant, error) {
	tenant, err := s.tenantStore.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, tenant.Status, to)
	}
	updated, err := s.tenantStore.UpdateStatus(ctx, tenantID, to)
	if err != nil {
		return nil, err
	}
	s.logger.Info("tenant status changed",
		zap.Int64("tenant_id", tenantID),
		zap.String("from", string(tenant.Status)),
		zap.String("to", string(to)),
	)
	return updated, nil
}

func (s *TenantService) Suspend(ctx context.Context, tenantID int64) (*domain.Tenant, error) {
	return s.ChangeStatus(ctx, tenantID, domain.TenantStatusSuspended)
}

func (s *TenantService) Activate(ctx context.Context, tenantID int64) (*domain.Tenant, error) {
	return s.ChangeStatus(ctx, tenantID, domain.TenantStatusActive)
}

func (s *TenantService) Cancel(ctx context.Context, tenantID int64) (*domain.Tenant, error) {
	return s.ChangeStatus(ctx, tenantID, domain.TenantStatusCancelled)
}

// UpdateUsage applies usage counter deltas after a successful tenant-scoped
// write. The store performs the update atomically.
func (s *TenantService) UpdateUsage(ctx context.Context, tenantID int64, delta domain.UsageDelta) (*domain.Tenant, error) {
	if delta.IsZero() {
		return s.tenantStore.GetByID(ctx, tenantID)
	}
	return s.tenantStore.UpdateUsageCounters(ctx, tenantID, delta)
}

// Usage summarizes counters against ceilings for dashboards.
type Usage struct {
	CurrentUsers     int     `json:"current_users"`
	CurrentEmployees int     `json:"current_employees"`
	CurrentStorageGB float64 `json:"current_storage_gb"`
	MaxUsers         int     `json:"max_users"`
	MaxEmployees     int     `json:"max_employees"`
	MaxStorageGB     float64 `json:"max_storage_gb"`

	UsersPct     float64 `json:"users_pct"`
	EmployeesPct float64 `json:"employees_pct"`
	StoragePct   float64 `json:"storage_pct"`
}

func (s *TenantService) Usage(ctx context.Context, tenantID int64) (*Usage, error) {
	t, err := s.tenantStore.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &Usage{
		CurrentUsers:     t.CurrentUsers,
		CurrentEmployees: t.CurrentEmployees,
		CurrentStorageGB: t.CurrentStorageGB,
		MaxUsers:         t.MaxUsers,
		MaxEmployees:     t.MaxEmployees,
		MaxStorageGB:     t.MaxStorageGB,
		UsersPct:         pct(float64(t.CurrentUsers), float64(t.MaxUsers)),
		EmployeesPct:     pct(float64(t.CurrentEmployees), float64(t.MaxEmployees)),
		StoragePct:       pct(t.CurrentStorageGB, t.MaxStorageGB),
	}, nil
}

func pct(current, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return current / max * 100
}

// Delete soft-deletes a tenant. The schema is never dropped automatically;
// reclaiming it is a manual administrative operation.
func (s *TenantService) Delete(ctx context.Context, tenantID int64, deletedBy string) error {
	if err := s.tenantStore.SoftDelete(ctx, tenantID, deletedBy); err != nil {
		return err
	}
	s.logger.Info("tenant soft-deleted",
		zap.Int64("tenant_id", tenantID),
		zap.String("deleted_by", deletedBy),
	)
	return nil
}
