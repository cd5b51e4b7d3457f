package handlers

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/agentdouble/kpix/services"
	"github.com/agentdouble/kpix/utils"

	"go.uber.org/zap"
)

type ReportingHandler struct {
	service service.ReportingService
	logger  *zap.Logger
}

func NewReportingHandler(service service.ReportingService, logger *zap.Logger) *ReportingHandler {
	return &ReportingHandler{service: service, logger: logger}
}

func (h *ReportingHandler) Overview(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	overview, err := h.service.Overview(ctx, p)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Overview retrieved successfully", overview, http.StatusOK)
}

// TopRisks reads an optional limit query parameter.
func (h *ReportingHandler) TopRisks(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var limit *int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.HandleMessageResponse(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = &n
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	risks, err := h.service.TopRisks(ctx, p, limit)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Top risks retrieved successfully", risks, http.StatusOK)
}

func (h *ReportingHandler) Direction(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	direction, err := h.service.Direction(ctx, p)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Direction overview retrieved successfully", direction, http.StatusOK)
}
