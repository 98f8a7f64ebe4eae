package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openhrms/tenantcore/internal/domain"
	"github.com/openhrms/tenantcore/internal/service"
)

type PlanHandler struct {
	catalog domain.PlanCatalog
}

func NewPlanHandler(catalog domain.PlanCatalog) *PlanHandler {
	return &PlanHandler{catalog: catalog}
}

func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"plans": h.catalog.ListPlans()})
}

func (h *PlanHandler) GetByType(w http.ResponseWriter, r *http.Request) {
	planType := chi.URLParam(r, "type")

	plan, err := h.catalog.GetPlan(domain.PlanType(planType))
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			writeError(w, http.StatusNotFound, "plan not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
