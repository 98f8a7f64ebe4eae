package handlers

import (
	"net/http"

	"github.com/openhrms/tenantcore/internal/api/middleware"
)

// MeHandler serves the tenant-scoped surface. Downstream CRUD services use
// the same resolved context to scope their SQL; this handler just exposes it.
type MeHandler struct{}

func NewMeHandler() *MeHandler {
	return &MeHandler{}
}

func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	tc := middleware.TenantContextFromContext(r.Context())
	if tc == nil {
		writeError(w, http.StatusInternalServerError, "tenant context missing")
		return
	}
	writeJSON(w, http.StatusOK, tc)
}

func (h *MeHandler) Modules(w http.ResponseWriter, r *http.Request) {
	tc := middleware.TenantContextFromContext(r.Context())
	if tc == nil {
		writeError(w, http.StatusInternalServerError, "tenant context missing")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"modules": tc.EnabledModules})
}
