package services

import (
	"context"
	"strings"

	"github.com/agentdouble/kpix/cache"
	"github.com/agentdouble/kpix/engine"
	"github.com/agentdouble/kpix/models"
	repository "github.com/agentdouble/kpix/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ActionService interface {
	ListActions(ctx context.Context, p models.Principal, kpiID primitive.ObjectID) ([]models.ActionPlan, error)
	CreateAction(ctx context.Context, p models.Principal, kpiID primitive.ObjectID, req *models.CreateActionRequest) (*models.ActionPlan, error)
	UpdateAction(ctx context.Context, p models.Principal, id primitive.ObjectID, req *models.UpdateActionRequest) (*models.ActionPlan, error)
}

type actionService struct {
	kpis    repository.KPIRepository
	actions repository.ActionPlanRepository
	users   repository.UserRepository
	reports cache.ReportCache
	clock   engine.Clock
	logger  *zap.Logger
}

func NewActionService(
	kpis repository.KPIRepository,
	actions repository.ActionPlanRepository,
	users repository.UserRepository,
	reports cache.ReportCache,
	clock engine.Clock,
	logger *zap.Logger,
) ActionService {
	return &actionService{kpis: kpis, actions: actions, users: users, reports: reports, clock: clock, logger: logger}
}

func (s *actionService) ListActions(ctx context.Context, p models.Principal, kpiID primitive.ObjectID) ([]models.ActionPlan, error) {
	if _, err := s.kpis.GetByID(ctx, p.OrganizationID, kpiID); err != nil {
		return nil, err
	}
	return s.actions.ListByKPI(ctx, p.OrganizationID, kpiID)
}

func (s *actionService) CreateAction(ctx context.Context, p models.Principal, kpiID primitive.ObjectID, req *models.CreateActionRequest) (*models.ActionPlan, error) {
	kpi, err := s.kpis.GetByID(ctx, p.OrganizationID, kpiID)
	if err != nil {
		return nil, err
	}
	dueDate, err := engine.ParseOptionalDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}

	owner := p.UserID
	if req.OwnerID != nil {
		if err := checkOwner(ctx, s.users, p, *req.OwnerID); err != nil {
			return nil, err
		}
		owner = *req.OwnerID
	}
	status := req.Status
	if status == "" {
		status = models.ActionOpen
	}

	now := s.clock.Now()
	action := &models.ActionPlan{
		KPIID:          kpi.ID,
		OrganizationID: kpi.OrganizationID,
		OwnerID:        &owner,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		DueDate:        dueDate,
		Progress:       req.Progress,
		Status:         status,
		Metadata: models.Metadata{
			CreatedBy: p.UserID.Hex(),
			UpdatedBy: p.UserID.Hex(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := s.actions.Create(ctx, action); err != nil {
		return nil, err
	}
	invalidateReports(ctx, s.reports, s.logger, p.OrganizationID)

	s.logger.Info("action_created",
		zap.String("action_id", action.ID.Hex()),
		zap.String("kpi_id", kpi.ID.Hex()),
		zap.String("organization_id", p.OrganizationID.Hex()),
	)
	return action, nil
}

// UpdateAction bumps updated_at on every change; the closed-this-week view
// relies on it.
func (s *actionService) UpdateAction(ctx context.Context, p models.Principal, id primitive.ObjectID, req *models.UpdateActionRequest) (*models.ActionPlan, error) {
	action, err := s.actions.GetByID(ctx, p.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if !p.CanEdit(action.OwnerID) {
		return nil, ErrForbidden
	}

	if req.OwnerID != nil {
		if err := checkOwner(ctx, s.users, p, *req.OwnerID); err != nil {
			return nil, err
		}
		owner := *req.OwnerID
		action.OwnerID = &owner
	}
	if req.DueDate != nil {
		dueDate, err := engine.ParseOptionalDate("due_date", *req.DueDate)
		if err != nil {
			return nil, err
		}
		action.DueDate = dueDate
	}
	if req.Title != nil {
		action.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		action.Description = *req.Description
	}
	if req.Progress != nil {
		action.Progress = *req.Progress
	}
	if req.Status != nil {
		action.Status = *req.Status
	}
	action.Metadata.UpdatedBy = p.UserID.Hex()
	action.Metadata.UpdatedAt = s.clock.Now()

	if err := s.actions.Update(ctx, action); err != nil {
		return nil, err
	}
	invalidateReports(ctx, s.reports, s.logger, p.OrganizationID)

	s.logger.Info("action_updated",
		zap.String("action_id", action.ID.Hex()),
		zap.String("organization_id", p.OrganizationID.Hex()),
		zap.String("status", string(action.Status)),
	)
	return action, nil
}
