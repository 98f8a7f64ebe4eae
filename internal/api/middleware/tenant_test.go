package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openhrms/tenantcore/internal/domain"
	"github.com/openhrms/tenantcore/internal/service"
)

type stubResolver struct {
	contexts map[string]*domain.TenantContext
	denials  map[string]error
}

func (s *stubResolver) Resolve(ctx context.Context, identifier string) (*domain.TenantContext, error) {
	identifier = strings.ToLower(identifier)
	if err, ok := s.denials[identifier]; ok {
		return nil, err
	}
	if tc, ok := s.contexts[identifier]; ok {
		return tc, nil
	}
	return nil, service.ErrTenantNotFound
}

func okHandler(captured **domain.TenantContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = TenantContextFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestResolveTenant_HeaderIdentifier(t *testing.T) {
	resolver := &stubResolver{
		contexts: map[string]*domain.TenantContext{
			"acme": {TenantID: 7, SchemaName: "acme", PlanType: domain.PlanBasic, EnabledModules: []string{domain.ModuleCore}},
		},
	}

	var captured *domain.TenantContext
	h := ResolveTenant(resolver)(okHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set(TenantHeader, "acme")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured == nil || captured.TenantID != 7 {
		t.Fatalf("expected tenant context 7 in request, got %+v", captured)
	}
}

func TestResolveTenant_HostFallback(t *testing.T) {
	resolver := &stubResolver{
		contexts: map[string]*domain.TenantContext{
			"acme.hrplatform.example": {TenantID: 7, SchemaName: "acme"},
		},
	}

	var captured *domain.TenantContext
	h := ResolveTenant(resolver)(okHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Host = "acme.hrplatform.example"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured == nil || captured.SchemaName != "acme" {
		t.Fatalf("expected acme schema context, got %+v", captured)
	}
}

func TestResolveTenant_DistinctDenials(t *testing.T) {
	resolver := &stubResolver{
		denials: map[string]error{
			"ghost":    service.ErrTenantNotFound,
			"frozen":   service.ErrTenantSuspended,
			"departed": service.ErrTenantCancelled,
		},
	}

	cases := []struct {
		identifier string
		status     int
		fragment   string
	}{
		{"ghost", http.StatusNotFound, "not found"},
		{"frozen", http.StatusForbidden, "suspended"},
		{"departed", http.StatusForbidden, "cancelled"},
	}

	for _, tc := range cases {
		var captured *domain.TenantContext
		h := ResolveTenant(resolver)(okHandler(&captured))

		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		req.Header.Set(TenantHeader, tc.identifier)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tc.status {
			t.Errorf("%s: expected %d, got %d", tc.identifier, tc.status, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tc.fragment) {
			t.Errorf("%s: expected message containing %q, got %s", tc.identifier, tc.fragment, rec.Body.String())
		}
		if captured != nil {
			t.Errorf("%s: handler must not run on denial", tc.identifier)
		}
	}
}

func TestRequireModule(t *testing.T) {
	tc := &domain.TenantContext{TenantID: 1, SchemaName: "acme", EnabledModules: []string{domain.ModuleCore, domain.ModuleLeave}}
	resolver := &stubResolver{contexts: map[string]*domain.TenantContext{"acme": tc}}

	allowed := false
	h := ResolveTenant(resolver)(RequireModule(domain.ModulePayroll)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed = true
	})))

	req := httptest.NewRequest(http.MethodGet, "/v1/me/payroll", nil)
	req.Header.Set(TenantHeader, "acme")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disabled module, got %d", rec.Code)
	}
	if allowed {
		t.Fatal("handler must not run without the module")
	}

	h = ResolveTenant(resolver)(RequireModule(domain.ModuleLeave)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed = true
	})))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if !allowed {
		t.Fatal("handler must run when the module is enabled")
	}
}
