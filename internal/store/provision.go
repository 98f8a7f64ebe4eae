package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openhrms/tenantcore/internal/domain"
	"go.uber.org/zap"
)

// ProvisionStore creates tenant schemas and their baseline tables.
//
// The schema name is interpolated into DDL, which is why every entry point
// re-validates the slug with domain.ValidateSlug before touching the
// database. A validated slug is a trusted identifier token.
type ProvisionStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProvisionStore(db *pgxpool.Pool, logger *zap.Logger) *ProvisionStore {
	return &ProvisionStore{db: db, logger: logger}
}

// baselineTables is the fixed template materialized inside every tenant
// schema. Each statement uses IF NOT EXISTS so re-provisioning is a no-op.
// New tenant-scoped tables are appended here and picked up by the next
// provisioning run.
var baselineTables = []struct {
	name string
	ddl  string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS %[1]s.users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			user_type VARCHAR(20) NOT NULL DEFAULT 'employee',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS users_username_idx ON %[1]s.users (username);
		CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON %[1]s.users (email);`},
	{"departments", `
		CREATE TABLE IF NOT EXISTS %[1]s.departments (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			code VARCHAR(50),
			parent_id BIGINT REFERENCES %[1]s.departments(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS departments_name_idx ON %[1]s.departments (name);`},
	{"employees", `
		CREATE TABLE IF NOT EXISTS %[1]s.employees (
			id BIGSERIAL PRIMARY KEY,
			employee_number VARCHAR(50) NOT NULL,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			email VARCHAR(255),
			department_id BIGINT REFERENCES %[1]s.departments(id),
			employment_status VARCHAR(20) NOT NULL DEFAULT 'active',
			hired_at DATE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS employees_number_idx ON %[1]s.employees (employee_number);`},
}

// ProvisionSchema ensures the tenant schema and every baseline table exist.
// DDL runs inside a transaction, so a failure never leaves a half-created
// schema reported as success. The expected tables are verified against
// information_schema before returning.
func (s *ProvisionStore) ProvisionSchema(ctx context.Context, slug string) error {
	if err := domain.ValidateSlug(slug); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin provisioning tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, slug)); err != nil {
		return fmt.Errorf("create schema %s: %w", slug, err)
	}

	for _, table := range baselineTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf(table.ddl, slug)); err != nil {
			return fmt.Errorf("create table %s.%s: %w", slug, table.name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit provisioning tx: %w", err)
	}

	if err := s.verifyBaseline(ctx, slug); err != nil {
		return err
	}

	s.logger.Info("tenant schema provisioned",
		zap.String("schema", slug),
		zap.Int("tables", len(baselineTables)),
	)
	return nil
}

// verifyBaseline confirms every baseline table is visible in the catalog.
func (s *ProvisionStore) verifyBaseline(ctx context.Context, slug string) error {
	rows, err := s.db.Query(ctx,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = $1`,
		slug,
	)
	if err != nil {
		return fmt.Errorf("verify schema %s: %w", slug, err)
	}
	defer rows.Close()

	found := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, table := range baselineTables {
		if !found[table.name] {
			return fmt.Errorf("schema %s is missing baseline table %s", slug, table.name)
		}
	}
	return nil
}

func (s *ProvisionStore) SchemaExists(ctx context.Context, slug string) (bool, error) {
	if err := domain.ValidateSlug(slug); err != nil {
		return false, err
	}
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)`,
		slug,
	).Scan(&exists)
	return exists, err
}

// CreateAdminUser inserts the bootstrap admin into a tenant's users table.
// Idempotent on username conflicts, matching ProvisionSchema re-run safety.
func (s *ProvisionStore) CreateAdminUser(ctx context.Context, slug string, user *domain.AdminUser) error {
	if err := domain.ValidateSlug(slug); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s.users (username, email, first_name, last_name, password_hash, is_active, is_verified, user_type)
		 VALUES ($1, $2, $3, $4, $5, TRUE, TRUE, 'admin')
		 ON CONFLICT (username) DO NOTHING`, slug),
		user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("create admin user in %s: %w", slug, err)
	}
	return nil
}
