package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/openhrms/tenantcore/internal/domain"
	"github.com/openhrms/tenantcore/internal/service"
)

type contextKey string

const (
	tenantContextKey  contextKey = "tenant_context"
	tenantLogClaimKey contextKey = "tenant_log_claim"
)

// tenantLogClaim is a mutable slot the Logging middleware installs before the
// tenant is known. ResolveTenant runs deeper in the chain on a derived
// request, so writing through a shared pointer is the only way the outer
// logger can see the resolved tenant.
type tenantLogClaim struct {
	tenantID int64
}

// TenantHeader lets API clients name the tenant explicitly instead of
// relying on the request host.
const TenantHeader = "X-Tenant-ID"

// TenantContextFromContext returns the resolved tenant context, or nil when
// the request was not tenant-scoped.
func TenantContextFromContext(ctx context.Context) *domain.TenantContext {
	tc, _ := ctx.Value(tenantContextKey).(*domain.TenantContext)
	return tc
}

// Resolver is the slice of ResolverService the middleware needs.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (*domain.TenantContext, error)
}

// ResolveTenant resolves the request's tenant once and stores the context
// for the rest of the call chain. The identifier comes from the X-Tenant-ID
// header when present, otherwise from the Host. Suspended, cancelled and
// unknown tenants get distinct responses so users know why access is
// blocked.
func ResolveTenant(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := strings.TrimSpace(r.Header.Get(TenantHeader))
			if identifier == "" {
				identifier = r.Host
			}

			tc, err := resolver.Resolve(r.Context(), identifier)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrTenantNotFound):
					writeError(w, http.StatusNotFound, "tenant not found")
				case errors.Is(err, service.ErrTenantSuspended):
					writeError(w, http.StatusForbidden, "tenant account is suspended")
				case errors.Is(err, service.ErrTenantCancelled):
					writeError(w, http.StatusForbidden, "tenant subscription is cancelled")
				default:
					writeError(w, http.StatusInternalServerError, "failed to resolve tenant")
				}
				return
			}

			if claim, ok := r.Context().Value(tenantLogClaimKey).(*tenantLogClaim); ok {
				claim.tenantID = tc.TenantID
			}

			ctx := context.WithValue(r.Context(), tenantContextKey, tc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireModule gates a route group on a feature module of the tenant's
// plan. Must run after ResolveTenant.
func RequireModule(module string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc := TenantContextFromContext(r.Context())
			if tc == nil {
				writeError(w, http.StatusInternalServerError, "tenant context missing")
				return
			}
			if !tc.HasModule(module) {
				writeError(w, http.StatusForbidden, "module "+module+" is not enabled on your plan")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
