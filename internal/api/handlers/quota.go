package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/openhrms/tenantcore/internal/domain"
	"github.com/openhrms/tenantcore/internal/service"
	"github.com/openhrms/tenantcore/internal/store"
)

// QuotaHandler exposes speculative quota and module checks, e.g. for a
// "can I add one more employee?" prompt. Nothing here mutates counters.
type QuotaHandler struct {
	tenants *service.TenantService
	quota   *service.QuotaService
}

func NewQuotaHandler(tenants *service.TenantService, quota *service.QuotaService) *QuotaHandler {
	return &QuotaHandler{tenants: tenants, quota: quota}
}

type quotaCheckResponse struct {
	Allowed  bool   `json:"allowed"`
	Resource string `json:"resource"`
	Reason   string `json:"reason,omitempty"`
}

func (h *QuotaHandler) Check(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	resource := q.Get("resource")
	if !domain.ValidResource(resource) {
		writeError(w, http.StatusBadRequest, "resource must be one of users, employees, storage")
		return
	}

	increment := 1.0
	if inc := q.Get("increment"); inc != "" {
		var err error
		increment, err = strconv.ParseFloat(inc, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid increment")
			return
		}
	}

	tenant, err := h.tenants.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tenant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load tenant")
		return
	}

	resp := quotaCheckResponse{Allowed: true, Resource: resource}
	if err := h.quota.CheckQuota(tenant, domain.Resource(resource), increment); err != nil {
		var qe *service.QuotaExceededError
		if !errors.As(err, &qe) {
			writeError(w, http.StatusInternalServerError, "quota check failed")
			return
		}
		resp.Allowed = false
		resp.Reason = qe.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

type moduleCheckResponse struct {
	Module  string `json:"module"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
}

func (h *QuotaHandler) CheckModule(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	module := r.URL.Query().Get("module")
	if module == "" {
		writeError(w, http.StatusBadRequest, "module is required")
		return
	}

	tenant, err := h.tenants.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tenant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load tenant")
		return
	}

	resp := moduleCheckResponse{Module: module, Enabled: true}
	if err := h.quota.CheckModuleAccess(tenant, module); err != nil {
		var me *service.ModuleNotEnabledError
		if errors.As(err, &me) {
			resp.Enabled = false
			resp.Reason = me.Error()
		} else if errors.Is(err, service.ErrPlanNotFound) {
			writeError(w, http.StatusConflict, "tenant has an unknown plan")
			return
		} else {
			writeError(w, http.StatusInternalServerError, "module check failed")
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
