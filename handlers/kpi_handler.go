package handlers

import (
	"context"
	"net/http"

	"github.com/agentdouble/kpix/models"
	service "github.com/agentdouble/kpix/services"
	"github.com/agentdouble/kpix/utils"

	"go.uber.org/zap"
)

// KPIHandler serves KPIs and their values.
type KPIHandler struct {
	service service.KPIService
	logger  *zap.Logger
}

func NewKPIHandler(service service.KPIService, logger *zap.Logger) *KPIHandler {
	return &KPIHandler{service: service, logger: logger}
}

func (h *KPIHandler) ListKPIs(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	dashboardID, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	kpis, err := h.service.ListKPIs(ctx, p, dashboardID)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "KPIs retrieved successfully", kpis, http.StatusOK)
}

func (h *KPIHandler) CreateKPI(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	dashboardID, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}
	var req models.CreateKPIRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	kpi, err := h.service.CreateKPI(ctx, p, dashboardID, &req)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "KPI created successfully", kpi, http.StatusCreated)
}

func (h *KPIHandler) GetKPI(w http.ResponseWriter, r *http.Request) {
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

	kpi, err := h.service.GetKPI(ctx, p, id)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "KPI retrieved successfully", kpi, http.StatusOK)
}

func (h *KPIHandler) UpdateKPI(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateKPIRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	kpi, err := h.service.UpdateKPI(ctx, p, id, &req)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "KPI updated successfully", kpi, http.StatusOK)
}

func (h *KPIHandler) DeleteKPI(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.DeleteKPI(ctx, p, id); err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleMessageResponse(w, "KPI deleted successfully", http.StatusOK)
}

func (h *KPIHandler) ListValues(w http.ResponseWriter, r *http.Request) {
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

	values, err := h.service.ListValues(ctx, p, id)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "KPI values retrieved successfully", values, http.StatusOK)
}

func (h *KPIHandler) SubmitValue(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}
	var req models.SubmitValueRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	value, err := h.service.SubmitValue(ctx, p, id, &req)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "KPI value recorded successfully", value, http.StatusCreated)
}
