package handlers

import (
	"context"
	"net/http"

	"github.com/agentdouble/kpix/models"
	service "github.com/agentdouble/kpix/services"
	"github.com/agentdouble/kpix/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ActionHandler serves action plans and the comment threads of KPIs and
// action plans.
type ActionHandler struct {
	actions  service.ActionService
	comments service.CommentService
	logger   *zap.Logger
}

func NewActionHandler(actions service.ActionService, comments service.CommentService, logger *zap.Logger) *ActionHandler {
	return &ActionHandler{actions: actions, comments: comments, logger: logger}
}

func (h *ActionHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	kpiID, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	actions, err := h.actions.ListActions(ctx, p, kpiID)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Action plans retrieved successfully", actions, http.StatusOK)
}

func (h *ActionHandler) CreateAction(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	kpiID, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}
	var req models.CreateActionRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	action, err := h.actions.CreateAction(ctx, p, kpiID, &req)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Action plan created successfully", action, http.StatusCreated)
}

func (h *ActionHandler) UpdateAction(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateActionRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	action, err := h.actions.UpdateAction(ctx, p, id, &req)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Action plan updated successfully", action, http.StatusOK)
}

func (h *ActionHandler) ListKPIComments(w http.ResponseWriter, r *http.Request) {
	h.listComments(w, r, h.comments.ListKPIComments)
}

func (h *ActionHandler) AddKPIComment(w http.ResponseWriter, r *http.Request) {
	h.addComment(w, r, h.comments.AddKPIComment)
}

func (h *ActionHandler) ListActionComments(w http.ResponseWriter, r *http.Request) {
	h.listComments(w, r, h.comments.ListActionComments)
}

func (h *ActionHandler) AddActionComment(w http.ResponseWriter, r *http.Request) {
	h.addComment(w, r, h.comments.AddActionComment)
}

type (
	listCommentsFunc func(context.Context, models.Principal, primitive.ObjectID) ([]models.Comment, error)
	addCommentFunc   func(context.Context, models.Principal, primitive.ObjectID, *models.CreateCommentRequest) (*models.Comment, error)
)

func (h *ActionHandler) listComments(w http.ResponseWriter, r *http.Request, list listCommentsFunc) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	parentID, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	comments, err := list(ctx, p, parentID)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Comments retrieved successfully", comments, http.StatusOK)
}

func (h *ActionHandler) addComment(w http.ResponseWriter, r *http.Request, add addCommentFunc) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	parentID, ok := utils.PathObjectID(w, r, "id")
	if !ok {
		return
	}
	var req models.CreateCommentRequest
	if err := utils.DecodeAndValidate(w, r, &req); err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	comment, err := add(ctx, p, parentID, &req)
	if err != nil {
		utils.HandleError(w, h.logger, err)
		return
	}
	utils.HandleDataResponse(w, "Comment added successfully", comment, http.StatusCreated)
}
