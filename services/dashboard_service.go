package services

import (
	"context"
	"strings"

	"github.com/agentdouble/kpix/cache"
	"github.com/agentdouble/kpix/database"
	"github.com/agentdouble/kpix/engine"
	"github.com/agentdouble/kpix/models"
	repository "github.com/agentdouble/kpix/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type DashboardService interface {
	CreateDashboard(ctx context.Context, p models.Principal, req *models.CreateDashboardRequest) (*models.Dashboard, error)
	GetDashboard(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Dashboard, error)
	ListDashboards(ctx context.Context, p models.Principal, processName string) ([]models.Dashboard, error)
	UpdateDashboard(ctx context.Context, p models.Principal, id primitive.ObjectID, req *models.UpdateDashboardRequest) (*models.Dashboard, error)
	DeleteDashboard(ctx context.Context, p models.Principal, id primitive.ObjectID) error
}

type dashboardService struct {
	repo    repository.DashboardRepository
	cascade repository.CascadeRepository
	tx      database.Transactor
	reports cache.ReportCache
	clock   engine.Clock
	logger  *zap.Logger
}

func NewDashboardService(
	repo repository.DashboardRepository,
	cascade repository.CascadeRepository,
	tx database.Transactor,
	reports cache.ReportCache,
	clock engine.Clock,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{repo: repo, cascade: cascade, tx: tx, reports: reports, clock: clock, logger: logger}
}

func (s *dashboardService) CreateDashboard(ctx context.Context, p models.Principal, req *models.CreateDashboardRequest) (*models.Dashboard, error) {
	now := s.clock.Now()
	owner := p.UserID
	dashboard := &models.Dashboard{
		OrganizationID: p.OrganizationID,
		OwnerID:        &owner,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		ProcessName:    req.ProcessName,
		Metadata: models.Metadata{
			CreatedBy: p.UserID.Hex(),
			UpdatedBy: p.UserID.Hex(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := s.repo.Create(ctx, dashboard); err != nil {
		return nil, err
	}
	invalidateReports(ctx, s.reports, s.logger, p.OrganizationID)

	s.logger.Info("dashboard_created",
		zap.String("dashboard_id", dashboard.ID.Hex()),
		zap.String("organization_id", p.OrganizationID.Hex()),
	)
	return dashboard, nil
}

func (s *dashboardService) GetDashboard(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.Dashboard, error) {
	return s.repo.GetByID(ctx, p.OrganizationID, id)
}

func (s *dashboardService) ListDashboards(ctx context.Context, p models.Principal, processName string) ([]models.Dashboard, error) {
	return s.repo.List(ctx, p.OrganizationID, repository.DashboardFilter{ProcessName: processName})
}

func (s *dashboardService) UpdateDashboard(ctx context.Context, p models.Principal, id primitive.ObjectID, req *models.UpdateDashboardRequest) (*models.Dashboard, error) {
	dashboard, err := s.repo.GetByID(ctx, p.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if !p.CanEdit(dashboard.OwnerID) {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		dashboard.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		dashboard.Description = *req.Description
	}
	if req.ProcessName != nil {
		dashboard.ProcessName = *req.ProcessName
	}
	dashboard.Metadata.UpdatedBy = p.UserID.Hex()
	dashboard.Metadata.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, dashboard); err != nil {
		return nil, err
	}
	invalidateReports(ctx, s.reports, s.logger, p.OrganizationID)

	s.logger.Info("dashboard_updated",
		zap.String("dashboard_id", dashboard.ID.Hex()),
		zap.String("organization_id", p.OrganizationID.Hex()),
	)
	return dashboard, nil
}

// DeleteDashboard is restricted to administrators and removes every KPI,
// value, action plan and comment under the dashboard in one transaction.
func (s *dashboardService) DeleteDashboard(ctx context.Context, p models.Principal, id primitive.ObjectID) error {
	if _, err := s.repo.GetByID(ctx, p.OrganizationID, id); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.cascade.DeleteDashboard(ctx, p.OrganizationID, id)
	})
	if err != nil {
		return err
	}
	invalidateReports(ctx, s.reports, s.logger, p.OrganizationID)

	s.logger.Info("dashboard_deleted",
		zap.String("dashboard_id", id.Hex()),
		zap.String("organization_id", p.OrganizationID.Hex()),
	)
	return nil
}
