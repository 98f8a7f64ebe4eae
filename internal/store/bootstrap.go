package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// registryDDL creates the shared registry schema. Tenant rows and plan-change
// audit records live here; everything tenant-scoped lives in per-tenant
// schemas created by ProvisionStore. All statements are idempotent.
const registryDDL = `
CREATE SCHEMA IF NOT EXISTS registry;

CREATE TABLE IF NOT EXISTS registry.tenants (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	slug VARCHAR(63) NOT NULL,
	domain VARCHAR(255),
	subdomain VARCHAR(100),
	contact_email VARCHAR(255) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	plan_type VARCHAR(20) NOT NULL DEFAULT 'free',
	billing_cycle VARCHAR(10) NOT NULL DEFAULT 'monthly',
	subscription_starts_at TIMESTAMPTZ,
	subscription_ends_at TIMESTAMPTZ,
	trial_ends_at TIMESTAMPTZ,
	max_users INTEGER NOT NULL DEFAULT 0,
	max_employees INTEGER NOT NULL DEFAULT 0,
	max_storage_gb DOUBLE PRECISION NOT NULL DEFAULT 0,
	current_users INTEGER NOT NULL DEFAULT 0,
	current_employees INTEGER NOT NULL DEFAULT 0,
	current_storage_gb DOUBLE PRECISION NOT NULL DEFAULT 0,
	enabled_modules TEXT[] NOT NULL DEFAULT '{}',
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	deleted_at TIMESTAMPTZ,
	deleted_by VARCHAR(100),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS tenants_slug_idx ON registry.tenants (slug);
CREATE UNIQUE INDEX IF NOT EXISTS tenants_domain_idx ON registry.tenants (domain) WHERE domain IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS tenants_subdomain_idx ON registry.tenants (subdomain) WHERE subdomain IS NOT NULL;
CREATE INDEX IF NOT EXISTS tenants_status_idx ON registry.tenants (status);

CREATE TABLE IF NOT EXISTS registry.tenant_plan_changes (
	id BIGSERIAL PRIMARY KEY,
	tenant_id BIGINT NOT NULL REFERENCES registry.tenants(id),
	old_plan VARCHAR(20) NOT NULL,
	new_plan VARCHAR(20) NOT NULL,
	reason VARCHAR(255),
	initiated_by VARCHAR(100),
	changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS tenant_plan_changes_tenant_idx ON registry.tenant_plan_changes (tenant_id);
`

// EnsureRegistry creates the shared registry tables if they do not exist.
// Called once at startup before the server accepts requests.
func EnsureRegistry(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, registryDDL); err != nil {
		return fmt.Errorf("ensure registry schema: %w", err)
	}
	return nil
}
