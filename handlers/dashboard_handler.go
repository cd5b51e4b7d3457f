package handlers

import (
	"context"
	"net/http"

	"github.com/agentdouble/kpix/models"
	service "github.com/agentdouble/kpix/services"
	"github.com/agentdouble/kpix/utils"

	"go.uber.org/zap"
)

type DashboardHandler struct {
	service service.DashboardService
	logger  *zap.Logger
}

func NewDashboardHandler(service service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{service: service, logger: logger}
}

func (h *DashboardHandler) CreateDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req models.CreateDashboardRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dashboard, err := h.service.CreateDashboard(ctx, p, &req)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Dashboard created successfully", dashboard, http.StatusCreated)
}

// ListDashboards accepts an optional process_name filter.
func (h *DashboardHandler) ListDashboards(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dashboards, err := h.service.ListDashboards(ctx, p, r.URL.Query().Get("process_name"))
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Dashboards retrieved successfully", dashboards, http.StatusOK)
}

func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dashboard, err := h.service.GetDashboard(ctx, p, id)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Dashboard retrieved successfully", dashboard, http.StatusOK)
}

func (h *DashboardHandler) UpdateDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateDashboardRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dashboard, err := h.service.UpdateDashboard(ctx, p, id, &req)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Dashboard updated successfully", dashboard, http.StatusOK)
}

func (h *DashboardHandler) DeleteDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.service.DeleteDashboard(ctx, p, id); err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleMessageResponse(w, "Dashboard deleted successfully", http.StatusOK)
}
