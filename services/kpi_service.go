package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agentdouble/kpix/cache"
	"github.com/agentdouble/kpix/database"
	"github.com/agentdouble/kpix/engine"
	"github.com/agentdouble/kpix/models"
	repository "github.com/agentdouble/kpix/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type KPIService interface {
	ListKPIs(ctx context.Context, p models.Principal, dashboardID primitive.ObjectID) ([]models.KPI, error)
	CreateKPI(ctx context.Context, p models.Principal, dashboardID primitive.ObjectID, req *models.CreateKPIRequest) (*models.KPI, error)
	GetKPI(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.KPI, error)
	UpdateKPI(ctx context.Context, p models.Principal, id primitive.ObjectID, req *models.UpdateKPIRequest) (*models.KPI, error)
	DeleteKPI(ctx context.Context, p models.Principal, id primitive.ObjectID) error
	ListValues(ctx context.Context, p models.Principal, kpiID primitive.ObjectID) ([]models.KPIValue, error)
	SubmitValue(ctx context.Context, p models.Principal, kpiID primitive.ObjectID, req *models.SubmitValueRequest) (*models.KPIValue, error)
}

type kpiService struct {
	dashboards repository.DashboardRepository
	kpis       repository.KPIRepository
	values     repository.KPIValueRepository
	users      repository.UserRepository
	cascade    repository.CascadeRepository
	tx         database.Transactor
	reports    cache.ReportCache
	metrics    *Metrics
	clock      engine.Clock
	logger     *zap.Logger
}

type KPIServiceDeps struct {
	Dashboards repository.DashboardRepository
	KPIs       repository.KPIRepository
	Values     repository.KPIValueRepository
	Users      repository.UserRepository
	Cascade    repository.CascadeRepository
	Tx         database.Transactor
	Reports    cache.ReportCache
	Metrics    *Metrics
	Clock      engine.Clock
	Logger     *zap.Logger
}

func NewKPIService(deps KPIServiceDeps) KPIService {
	return &kpiService{
		dashboards: deps.Dashboards,
		kpis:       deps.KPIs,
		values:     deps.Values,
		users:      deps.Users,
		cascade:    deps.Cascade,
		tx:         deps.Tx,
		reports:    deps.Reports,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
		logger:     deps.Logger,
	}
}

// ListKPIs returns the dashboard's KPIs with their latest value, status and
// period end filled in.
func (s *kpiService) ListKPIs(ctx context.Context, p models.Principal, dashboardID primitive.ObjectID) ([]models.KPI, error) {
	if _, err := s.dashboards.GetByID(ctx, p.OrganizationID, dashboardID); err != nil {
		return nil, err
	}
	kpis, err := s.kpis.ListByDashboard(ctx, p.OrganizationID, dashboardID)
	if err != nil {
		return nil, err
	}
	if len(kpis) == 0 {
		return kpis, nil
	}

	ids := make([]primitive.ObjectID, len(kpis))
	for i := range kpis {
		ids[i] = kpis[i].ID
	}
	latest, err := s.values.RecentByKPIs(ctx, p.OrganizationID, ids, 1)
	if err != nil {
		return nil, err
	}

	for i := range kpis {
		vs := latest[kpis[i].ID]
		if len(vs) == 0 {
			continue
		}
		v := vs[0]
		kpis[i].LatestValue = &v.Value
		kpis[i].LatestStatus = &v.Status
		kpis[i].LatestPeriodEnd = &v.PeriodEnd
	}
	return kpis, nil
}

func (s *kpiService) CreateKPI(ctx context.Context, p models.Principal, dashboardID primitive.ObjectID, req *models.CreateKPIRequest) (*models.KPI, error) {
	dashboard, err := s.dashboards.GetByID(ctx, p.OrganizationID, dashboardID)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateThresholds(req.Direction, *req.ThresholdGreen, *req.ThresholdOrange, *req.ThresholdRed); err != nil {
		return nil, err
	}

	owner := p.UserID
	if req.OwnerID != nil {
		if err := s.checkOwner(ctx, p, *req.OwnerID); err != nil {
			return nil, err
		}
		owner = *req.OwnerID
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := s.clock.Now()
	kpi := &models.KPI{
		DashboardID:     dashboard.ID,
		OrganizationID:  dashboard.OrganizationID,
		OwnerID:         &owner,
		Name:            strings.TrimSpace(req.Name),
		Unit:            req.Unit,
		Frequency:       req.Frequency,
		Direction:       req.Direction,
		ThresholdGreen:  *req.ThresholdGreen,
		ThresholdOrange: *req.ThresholdOrange,
		ThresholdRed:    *req.ThresholdRed,
		IsActive:        active,
		Metadata: models.Metadata{
			CreatedBy: p.UserID.Hex(),
			UpdatedBy: p.UserID.Hex(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := s.kpis.Create(ctx, kpi); err != nil {
		return nil, err
	}
	invalidateReports(ctx, s.reports, s.logger, p.OrganizationID)

	s.logger.Info("kpi_created",
		zap.String("kpi_id", kpi.ID.Hex()),
		zap.String("dashboard_id", dashboard.ID.Hex()),
		zap.String("organization_id", p.OrganizationID.Hex()),
	)
	return kpi, nil
}

func (s *kpiService) GetKPI(ctx context.Context, p models.Principal, id primitive.ObjectID) (*models.KPI, error) {
	return s.kpis.GetByID(ctx, p.OrganizationID, id)
}

// UpdateKPI applies the provided fields and re-validates the full threshold
// triple after merging, so a partial update cannot break the ordering.
func (s *kpiService) UpdateKPI(ctx context.Context, p models.Principal, id primitive.ObjectID, req *models.UpdateKPIRequest) (*models.KPI, error) {
	kpi, err := s.kpis.GetByID(ctx, p.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if !p.CanEdit(kpi.OwnerID) {
		return nil, ErrForbidden
	}
	if req.OwnerID != nil {
		if err := s.checkOwner(ctx, p, *req.OwnerID); err != nil {
			return nil, err
		}
		owner := *req.OwnerID
		kpi.OwnerID = &owner
	}

	if req.Name != nil {
		kpi.Name = strings.TrimSpace(*req.Name)
	}
	if req.Unit != nil {
		kpi.Unit = *req.Unit
	}
	if req.Frequency != nil {
		kpi.Frequency = *req.Frequency
	}
	if req.Direction != nil {
		kpi.Direction = *req.Direction
	}
	if req.ThresholdGreen != nil {
		kpi.ThresholdGreen = *req.ThresholdGreen
	}
	if req.ThresholdOrange != nil {
		kpi.ThresholdOrange = *req.ThresholdOrange
	}
	if req.ThresholdRed != nil {
		kpi.ThresholdRed = *req.ThresholdRed
	}
	if req.IsActive != nil {
		kpi.IsActive = *req.IsActive
	}

	if err := engine.ValidateThresholds(kpi.Direction, kpi.ThresholdGreen, kpi.ThresholdOrange, kpi.ThresholdRed); err != nil {
		return nil, err
	}

	kpi.Metadata.UpdatedBy = p.UserID.Hex()
	kpi.Metadata.UpdatedAt = s.clock.Now()
	if err := s.kpis.Update(ctx, kpi); err != nil {
		return nil, err
	}
	invalidateReports(ctx, s.reports, s.logger, p.OrganizationID)

	s.logger.Info("kpi_updated",
		zap.String("kpi_id", kpi.ID.Hex()),
		zap.String("organization_id", p.OrganizationID.Hex()),
	)
	return kpi, nil
}

func (s *kpiService) DeleteKPI(ctx context.Context, p models.Principal, id primitive.ObjectID) error {
	kpi, err := s.kpis.GetByID(ctx, p.OrganizationID, id)
	if err != nil {
		return err
	}
	if !p.CanEdit(kpi.OwnerID) {
		return ErrForbidden
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.cascade.DeleteKPI(ctx, p.OrganizationID, id)
	})
	if err != nil {
		return err
	}
	invalidateReports(ctx, s.reports, s.logger, p.OrganizationID)

	s.logger.Info("kpi_deleted",
		zap.String("kpi_id", id.Hex()),
		zap.String("organization_id", p.OrganizationID.Hex()),
	)
	return nil
}

func (s *kpiService) ListValues(ctx context.Context, p models.Principal, kpiID primitive.ObjectID) ([]models.KPIValue, error) {
	if _, err := s.kpis.GetByID(ctx, p.OrganizationID, kpiID); err != nil {
		return nil, err
	}
	return s.values.ListByKPI(ctx, p.OrganizationID, kpiID)
}

// SubmitValue resolves the period, classifies the value and stores it. A second
// value for the same period is rejected with *engine.ConflictError.
func (s *kpiService) SubmitValue(ctx context.Context, p models.Principal, kpiID primitive.ObjectID, req *models.SubmitValueRequest) (*models.KPIValue, error) {
	kpi, err := s.kpis.GetByID(ctx, p.OrganizationID, kpiID)
	if err != nil {
		return nil, err
	}

	start, err := engine.ParseDate("period_start", req.PeriodStart)
	if err != nil {
		return nil, err
	}
	end, err := engine.ParseOptionalDate("period_end", req.PeriodEnd)
	if err != nil {
		return nil, err
	}

	value, err := newKPIValue(kpi, start, end, *req.Value, req.Comment, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.values.Create(ctx, value); err != nil {
		return nil, err
	}
	s.metrics.ValuesSubmitted.WithLabelValues(string(value.Status), SourceAPI).Inc()
	invalidateReports(ctx, s.reports, s.logger, p.OrganizationID)

	s.logger.Info("kpi_value_added",
		zap.String("kpi_id", kpi.ID.Hex()),
		zap.String("organization_id", kpi.OrganizationID.Hex()),
		zap.String("status", string(value.Status)),
	)
	return value, nil
}

// newKPIValue is shared by interactive submission and imports so both paths
// resolve periods and classify values identically.
func newKPIValue(kpi *models.KPI, start time.Time, end *time.Time, v float64, comment string, now time.Time) (*models.KPIValue, error) {
	periodStart, periodEnd, err := engine.ResolvePeriod(kpi.Frequency, start, end)
	if err != nil {
		return nil, err
	}
	return &models.KPIValue{
		KPIID:          kpi.ID,
		OrganizationID: kpi.OrganizationID,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		Value:          v,
		Status:         engine.ClassifyValue(kpi, v),
		Comment:        comment,
		CreatedAt:      now,
	}, nil
}

func (s *kpiService) checkOwner(ctx context.Context, p models.Principal, ownerID primitive.ObjectID) error {
	return checkOwner(ctx, s.users, p, ownerID)
}

// checkOwner requires the proposed owner to be a user of the caller's organization.
func checkOwner(ctx context.Context, users repository.UserRepository, p models.Principal, ownerID primitive.ObjectID) error {
	if _, err := users.GetByID(ctx, p.OrganizationID, ownerID); err != nil {
		var nf *engine.NotFoundError
		if errors.As(err, &nf) {
			return engine.NewValidationError("owner_id", "owner must belong to the organization")
		}
		return err
	}
	return nil
}
