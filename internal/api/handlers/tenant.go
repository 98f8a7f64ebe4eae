package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/openhrms/tenantcore/internal/domain"
	"github.com/openhrms/tenantcore/internal/service"
	"github.com/openhrms/tenantcore/internal/store"
)

type TenantHandler struct {
	svc *service.TenantService
}

func NewTenantHandler(svc *service.TenantService) *TenantHandler {
	return &TenantHandler{svc: svc}
}

type createTenantRequest struct {
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Domain       *string `json:"domain,omitempty"`
	Subdomain    *string `json:"subdomain,omitempty"`
	ContactEmail string  `json:"contact_email"`
	PlanType     string  `json:"plan_type"`
	BillingCycle string  `json:"billing_cycle,omitempty"`

	AdminUsername  string `json:"admin_username,omitempty"`
	AdminEmail     string `json:"admin_email,omitempty"`
	AdminFirstName string `json:"admin_first_name,omitempty"`
	AdminLastName  string `json:"admin_last_name,omitempty"`
	AdminPassword  string `json:"admin_password,omitempty"`
}

func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.ContactEmail == "" {
		writeError(w, http.StatusBadRequest, "contact_email is required")
		return
	}
	if req.PlanType == "" {
		req.PlanType = string(domain.PlanFree)
	}
	if !domain.ValidPlanType(req.PlanType) {
		writeError(w, http.StatusBadRequest, "unknown plan_type")
		return
	}

	tenant, err := h.svc.Create(r.Context(), service.CreateTenantInput{
		Name:           req.Name,
		Slug:           req.Slug,
		Domain:         req.Domain,
		Subdomain:      req.Subdomain,
		ContactEmail:   req.ContactEmail,
		PlanType:       domain.PlanType(req.PlanType),
		BillingCycle:   domain.BillingCycle(req.BillingCycle),
		AdminUsername:  req.AdminUsername,
		AdminEmail:     req.AdminEmail,
		AdminFirstName: req.AdminFirstName,
		AdminLastName:  req.AdminLastName,
		AdminPassword:  req.AdminPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSlug):
			writeError(w, http.StatusBadRequest, "slug must be 1-63 lowercase letters, digits or underscores, not starting with a digit")
		case errors.Is(err, service.ErrSlugConflict):
			writeError(w, http.StatusConflict, "slug, domain or subdomain already in use")
		case errors.Is(err, service.ErrPlanNotFound):
			writeError(w, http.StatusBadRequest, "unknown plan_type")
		case errors.Is(err, service.ErrSchemaCreation):
			writeError(w, http.StatusInternalServerError, "tenant workspace could not be provisioned")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create tenant")
		}
		return
	}

	writeJSON(w, http.StatusCreated, tenant)
}

func (h *TenantHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}

	tenant, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tenant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load tenant")
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := domain.ListTenantsOpts{Search: q.Get("search")}

	if s := q.Get("status"); s != "" {
		if !domain.ValidTenantStatus(s) {
			writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		status := domain.TenantStatus(s)
		opts.Status = &status
	}
	if p := q.Get("plan"); p != "" {
		if !domain.ValidPlanType(p) {
			writeError(w, http.StatusBadRequest, "unknown plan filter")
			return
		}
		plan := domain.PlanType(p)
		opts.Plan = &plan
	}
	opts.Page, _ = strconv.Atoi(q.Get("page"))
	opts.Size, _ = strconv.Atoi(q.Get("size"))

	tenants, total, err := h.svc.List(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tenants": tenants,
		"total":   total,
	})
}

type changePlanRequest struct {
	PlanType    string `json:"plan_type"`
	Reason      string `json:"reason,omitempty"`
	InitiatedBy string `json:"initiated_by,omitempty"`
}

func (h *TenantHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}

	var req changePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !domain.ValidPlanType(req.PlanType) {
		writeError(w, http.StatusBadRequest, "unknown plan_type")
		return
	}

	tenant, err := h.svc.ChangePlan(r.Context(), id, domain.PlanType(req.PlanType), req.Reason, req.InitiatedBy)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "tenant not found")
		case errors.Is(err, service.ErrPlanNotFound):
			writeError(w, http.StatusBadRequest, "unknown plan_type")
		default:
			writeError(w, http.StatusInternalServerError, "failed to change plan")
		}
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

func (h *TenantHandler) PlanChanges(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	changes, err := h.svc.PlanChanges(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load plan history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": changes})
}

func (h *TenantHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.svc.Suspend)
}

func (h *TenantHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.svc.Activate)
}

func (h *TenantHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.svc.Cancel)
}

func (h *TenantHandler) changeStatus(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int64) (*domain.Tenant, error)) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	tenant, err := op(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "tenant not found")
		case errors.Is(err, service.ErrInvalidTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to change tenant status")
		}
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

func (h *TenantHandler) Usage(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	usage, err := h.svc.Usage(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tenant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load usage")
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

type updateUsageRequest struct {
	Users     *int     `json:"users,omitempty"`
	Employees *int     `json:"employees,omitempty"`
	StorageGB *float64 `json:"storage_gb,omitempty"`
}

func (h *TenantHandler) UpdateUsage(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}

	var req updateUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenant, err := h.svc.UpdateUsage(r.Context(), id, domain.UsageDelta{
		Users:     req.Users,
		Employees: req.Employees,
		StorageGB: req.StorageGB,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tenant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update usage")
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := tenantID(w, r)
	if !ok {
		return
	}
	deletedBy := r.URL.Query().Get("deleted_by")

	if err := h.svc.Delete(r.Context(), id, deletedBy); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "tenant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete tenant")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func tenantID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid tenant id")
		return 0, false
	}
	return id, true
}
