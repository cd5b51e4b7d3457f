package services

import (
	"context"
	"strings"

	"github.com/agentdouble/kpix/engine"
	"github.com/agentdouble/kpix/models"
	repository "github.com/agentdouble/kpix/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CommentService attaches comments to exactly one parent, a KPI or an action plan.
type CommentService interface {
	ListKPIComments(ctx context.Context, p models.Principal, kpiID primitive.ObjectID) ([]models.Comment, error)
	AddKPIComment(ctx context.Context, p models.Principal, kpiID primitive.ObjectID, req *models.CreateCommentRequest) (*models.Comment, error)
	ListActionComments(ctx context.Context, p models.Principal, actionID primitive.ObjectID) ([]models.Comment, error)
	AddActionComment(ctx context.Context, p models.Principal, actionID primitive.ObjectID, req *models.CreateCommentRequest) (*models.Comment, error)
}

type commentService struct {
	kpis     repository.KPIRepository
	actions  repository.ActionPlanRepository
	comments repository.CommentRepository
	clock    engine.Clock
	logger   *zap.Logger
}

func NewCommentService(
	kpis repository.KPIRepository,
	actions repository.ActionPlanRepository,
	comments repository.CommentRepository,
	clock engine.Clock,
	logger *zap.Logger,
) CommentService {
	return &commentService{kpis: kpis, actions: actions, comments: comments, clock: clock, logger: logger}
}

func (s *commentService) ListKPIComments(ctx context.Context, p models.Principal, kpiID primitive.ObjectID) ([]models.Comment, error) {
	if _, err := s.kpis.GetByID(ctx, p.OrganizationID, kpiID); err != nil {
		return nil, err
	}
	return s.comments.ListByKPI(ctx, p.OrganizationID, kpiID)
}

func (s *commentService) AddKPIComment(ctx context.Context, p models.Principal, kpiID primitive.ObjectID, req *models.CreateCommentRequest) (*models.Comment, error) {
	kpi, err := s.kpis.GetByID(ctx, p.OrganizationID, kpiID)
	if err != nil {
		return nil, err
	}
	comment := s.newComment(p, req)
	comment.KPIID = &kpi.ID

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.logger.Info("comment_created",
		zap.String("kpi_id", kpi.ID.Hex()),
		zap.String("comment_id", comment.ID.Hex()),
	)
	return comment, nil
}

func (s *commentService) ListActionComments(ctx context.Context, p models.Principal, actionID primitive.ObjectID) ([]models.Comment, error) {
	if _, err := s.actions.GetByID(ctx, p.OrganizationID, actionID); err != nil {
		return nil, err
	}
	return s.comments.ListByActionPlan(ctx, p.OrganizationID, actionID)
}

func (s *commentService) AddActionComment(ctx context.Context, p models.Principal, actionID primitive.ObjectID, req *models.CreateCommentRequest) (*models.Comment, error) {
	action, err := s.actions.GetByID(ctx, p.OrganizationID, actionID)
	if err != nil {
		return nil, err
	}
	comment := s.newComment(p, req)
	comment.ActionPlanID = &action.ID

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.logger.Info("comment_created",
		zap.String("action_id", action.ID.Hex()),
		zap.String("comment_id", comment.ID.Hex()),
	)
	return comment, nil
}

func (s *commentService) newComment(p models.Principal, req *models.CreateCommentRequest) *models.Comment {
	return &models.Comment{
		OrganizationID: p.OrganizationID,
		AuthorID:       p.UserID,
		Content:        strings.TrimSpace(req.Content),
		CreatedAt:      s.clock.Now(),
	}
}
