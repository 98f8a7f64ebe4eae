package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openhrms/tenantcore/internal/domain"
)

// TenantStore is the registry of tenants. It lives in the shared "registry"
// schema, never inside a tenant schema.
type TenantStore struct {
	db *pgxpool.Pool
}

func NewTenantStore(db *pgxpool.Pool) *TenantStore {
	return &TenantStore{db: db}
}

const tenantColumns = `id, name, slug, domain, subdomain, contact_email, status,
	plan_type, billing_cycle, subscription_starts_at, subscription_ends_at, trial_ends_at,
	max_users, max_employees, max_storage_gb,
	current_users, current_employees, current_storage_gb,
	enabled_modules, is_deleted, deleted_at, deleted_by, created_at, updated_at`

func (s *TenantStore) Create(ctx context.Context, t *domain.Tenant) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO registry.tenants (
			name, slug, domain, subdomain, contact_email, status,
			plan_type, billing_cycle, subscription_starts_at, subscription_ends_at, trial_ends_at,
			max_users, max_employees, max_storage_gb, enabled_modules
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`,
		t.Name, t.Slug, t.Domain, t.Subdomain, t.ContactEmail, t.Status,
		t.PlanType, t.BillingCycle, t.SubscriptionStartsAt, t.SubscriptionEndsAt, t.TrialEndsAt,
		t.MaxUsers, t.MaxEmployees, t.MaxStorageGB, t.EnabledModules,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *TenantStore) GetByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM registry.tenants WHERE id = $1 AND NOT is_deleted`,
		id,
	)
	return scanTenant(row)
}

// GetBySlugOrDomain resolves an inbound identifier. When an identifier could
// match several tenants across the three fields, slug wins over domain, which
// wins over subdomain. The domain rank is wrapped in COALESCE because domain
// is nullable and a NULL comparison would sort above TRUE under DESC.
func (s *TenantStore) GetBySlugOrDomain(ctx context.Context, identifier string) (*domain.Tenant, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+`
		 FROM registry.tenants
		 WHERE (slug = $1 OR domain = $1 OR subdomain = $1) AND NOT is_deleted
		 ORDER BY (slug = $1) DESC, COALESCE(domain = $1, FALSE) DESC
		 LIMIT 1`,
		identifier,
	)
	return scanTenant(row)
}

func (s *TenantStore) List(ctx context.Context, opts domain.ListTenantsOpts) ([]domain.Tenant, int, error) {
	where := `NOT is_deleted`
	args := []any{}

	if opts.Status != nil {
		args = append(args, *opts.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if opts.Plan != nil {
		args = append(args, *opts.Plan)
		where += fmt.Sprintf(` AND plan_type = $%d`, len(args))
	}
	if opts.Search != "" {
		args = append(args, "%"+opts.Search+"%")
		n := len(args)
		where += fmt.Sprintf(` AND (name ILIKE $%d OR slug ILIKE $%d OR contact_email ILIKE $%d)`, n, n, n)
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM registry.tenants WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, size := opts.Page, opts.Size
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`SELECT `+tenantColumns+`
		FROM registry.tenants WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, *t)
	}
	return tenants, total, rows.Err()
}

// UpdateUsageCounters applies all deltas in a single UPDATE so concurrent
// requests for the same tenant cannot lose updates. Counters clamp at zero
// rather than going negative.
func (s *TenantStore) UpdateUsageCounters(ctx context.Context, id int64, delta domain.UsageDelta) (*domain.Tenant, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE registry.tenants SET
			current_users = GREATEST(0, current_users + COALESCE($2, 0)),
			current_employees = GREATEST(0, current_employees + COALESCE($3, 0)),
			current_storage_gb = GREATEST(0, current_storage_gb + COALESCE($4, 0)),
			updated_at = NOW()
		 WHERE id = $1 AND NOT is_deleted
		 RETURNING `+tenantColumns,
		id, delta.Users, delta.Employees, delta.StorageGB,
	)
	return scanTenant(row)
}

func (s *TenantStore) UpdatePlan(ctx context.Context, id int64, plan *domain.Plan) (*domain.Tenant, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE registry.tenants SET
			plan_type = $2,
			max_users = $3,
			max_employees = $4,
			max_storage_gb = $5,
			enabled_modules = $6,
			updated_at = NOW()
		 WHERE id = $1 AND NOT is_deleted
		 RETURNING `+tenantColumns,
		id, plan.Type, plan.MaxUsers, plan.MaxEmployees, plan.MaxStorageGB, plan.EnabledModules,
	)
	return scanTenant(row)
}

func (s *TenantStore) UpdateStatus(ctx context.Context, id int64, status domain.TenantStatus) (*domain.Tenant, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE registry.tenants SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND NOT is_deleted
		 RETURNING `+tenantColumns,
		id, status,
	)
	return scanTenant(row)
}

func (s *TenantStore) SoftDelete(ctx context.Context, id int64, deletedBy string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE registry.tenants
		 SET is_deleted = TRUE, deleted_at = NOW(), deleted_by = $2, updated_at = NOW()
		 WHERE id = $1 AND NOT is_deleted`,
		id, deletedBy,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TenantStore) RecordPlanChange(ctx context.Context, c *domain.PlanChange) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO registry.tenant_plan_changes (tenant_id, old_plan, new_plan, reason, initiated_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, changed_at`,
		c.TenantID, c.OldPlan, c.NewPlan, c.Reason, c.InitiatedBy,
	).Scan(&c.ID, &c.ChangedAt)
}

func (s *TenantStore) PlanChanges(ctx context.Context, tenantID int64) ([]domain.PlanChange, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, old_plan, new_plan, reason, initiated_by, changed_at
		 FROM registry.tenant_plan_changes
		 WHERE tenant_id = $1
		 ORDER BY changed_at DESC`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []domain.PlanChange
	for rows.Next() {
		var c domain.PlanChange
		if err := rows.Scan(&c.ID, &c.TenantID, &c.OldPlan, &c.NewPlan, &c.Reason, &c.InitiatedBy, &c.ChangedAt); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Slug, &t.Domain, &t.Subdomain, &t.ContactEmail, &t.Status,
		&t.PlanType, &t.BillingCycle, &t.SubscriptionStartsAt, &t.SubscriptionEndsAt, &t.TrialEndsAt,
		&t.MaxUsers, &t.MaxEmployees, &t.MaxStorageGB,
		&t.CurrentUsers, &t.CurrentEmployees, &t.CurrentStorageGB,
		&t.EnabledModules, &t.IsDeleted, &t.DeletedAt, &t.DeletedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}
