package service

import (
	"context"
	"errors"
	"strings"

	"github.com/openhrms/tenantcore/internal/domain"
	"github.com/openhrms/tenantcore/internal/store"
)

var (
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrTenantSuspended = errors.New("tenant is suspended")
	ErrTenantCancelled = errors.New("tenant is cancelled")
)

// ResolverService maps an inbound tenant identifier (slug, custom domain or
// subdomain) to a TenantContext for the rest of the request. Resolution is
// read-only: it never provisions a schema and has no side effects.
type ResolverService struct {
	tenantStore domain.TenantStore
}

func NewResolverService(ts domain.TenantStore) *ResolverService {
	return &ResolverService{tenantStore: ts}
}

// Resolve looks up the identifier and returns the request-scoped context.
// Suspended and cancelled tenants resolve but are denied with distinct
// errors so callers can render different messages.
func (s *ResolverService) Resolve(ctx context.Context, identifier string) (*domain.TenantContext, error) {
	identifier = normalizeIdentifier(identifier)
	if identifier == "" {
		return nil, ErrTenantNotFound
	}

	tenant, err := s.tenantStore.GetBySlugOrDomain(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		// A host like acme.hrapp.example carries the subdomain in its first
		// label; fall back to that when the full host matches nothing.
		if label, ok := firstLabel(identifier); ok {
			tenant, err = s.tenantStore.GetBySlugOrDomain(ctx, label)
		}
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	switch tenant.Status {
	case domain.TenantStatusSuspended:
		return nil, ErrTenantSuspended
	case domain.TenantStatusCancelled:
		return nil, ErrTenantCancelled
	}

	return &domain.TenantContext{
		TenantID:       tenant.ID,
		SchemaName:     tenant.SchemaName(),
		PlanType:       tenant.PlanType,
		EnabledModules: tenant.EnabledModules,
	}, nil
}

func firstLabel(identifier string) (string, bool) {
	i := strings.Index(identifier, ".")
	if i <= 0 {
		return "", false
	}
	return identifier[:i], true
}

// normalizeIdentifier lowercases and strips any port from a host-style
// identifier, e.g. "Acme.example.com:8443" -> "acme.example.com".
func normalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(strings.ToLower(identifier))
	if i := strings.LastIndex(identifier, ":"); i >= 0 {
		identifier = identifier[:i]
	}
	return identifier
}
