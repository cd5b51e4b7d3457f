package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/agentdouble/kpix/cache"
	"github.com/agentdouble/kpix/config"
	"github.com/agentdouble/kpix/engine"
	"github.com/agentdouble/kpix/models"
	repository "github.com/agentdouble/kpix/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	reportOverview  = "overview"
	reportTopRisks  = "top_risks"
	reportDirection = "direction"
)

// ReportingService builds organization-wide views. Results are cached per
// organization until the next write or the cache TTL.
type ReportingService interface {
	Overview(ctx context.Context, p models.Principal) (*models.ReportingOverview, error)
	// TopRisks takes the requested limit; nil selects the configured default.
	TopRisks(ctx context.Context, p models.Principal, limit *int) (*models.TopRisks, error)
	Direction(ctx context.Context, p models.Principal) (*models.DirectionOverview, error)
}

type reportingService struct {
	dashboards repository.DashboardRepository
	kpis       repository.KPIRepository
	values     repository.KPIValueRepository
	actions    repository.ActionPlanRepository
	reports    cache.ReportCache
	cfg        config.ReportingConfig
	metrics    *Metrics
	clock      engine.Clock
	logger     *zap.Logger
}

type ReportingServiceDeps struct {
	Dashboards repository.DashboardRepository
	KPIs       repository.KPIRepository
	Values     repository.KPIValueRepository
	Actions    repository.ActionPlanRepository
	Reports    cache.ReportCache
	Config     config.ReportingConfig
	Metrics    *Metrics
	Clock      engine.Clock
	Logger     *zap.Logger
}

func NewReportingService(deps ReportingServiceDeps) ReportingService {
	return &reportingService{
		dashboards: deps.Dashboards,
		kpis:       deps.KPIs,
		values:     deps.Values,
		actions:    deps.Actions,
		reports:    deps.Reports,
		cfg:        deps.Config,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
		logger:     deps.Logger,
	}
}

// cached serves key from the report cache or computes and stores it. Cache
// failures fall through to computing. The generation is read before compute
// so a write that commits mid-compute keeps the result out of the cache.
func cached[T any](ctx context.Context, s *reportingService, orgID primitive.ObjectID, report, key string, compute func() (*T, error)) (*T, error) {
	gen, err := s.reports.Generation(ctx, orgID)
	if err != nil {
		s.metrics.ReportCache.WithLabelValues(report, "error").Inc()
		s.logger.Warn("report_cache_generation_failed", zap.String("report", report), zap.Error(err))
		return compute()
	}

	var hit T
	ok, err := s.reports.Get(ctx, orgID, key, &hit)
	switch {
	case err != nil:
		s.metrics.ReportCache.WithLabelValues(report, "error").Inc()
		s.logger.Warn("report_cache_get_failed", zap.String("report", report), zap.Error(err))
	case ok:
		s.metrics.ReportCache.WithLabelValues(report, "hit").Inc()
		return &hit, nil
	default:
		s.metrics.ReportCache.WithLabelValues(report, "miss").Inc()
	}

	result, err := compute()
	if err != nil {
		return nil, err
	}
	err = s.reports.Set(ctx, orgID, gen, key, result)
	switch {
	case errors.Is(err, cache.ErrStaleGeneration):
		s.metrics.ReportCache.WithLabelValues(report, "stale").Inc()
	case err != nil:
		s.logger.Warn("report_cache_set_failed", zap.String("report", report), zap.Error(err))
	}
	return result, nil
}

func (s *reportingService) Overview(ctx context.Context, p models.Principal) (*models.ReportingOverview, error) {
	return cached(ctx, s, p.OrganizationID, reportOverview, reportOverview, func() (*models.ReportingOverview, error) {
		return s.buildOverview(ctx, p.OrganizationID)
	})
}

func (s *reportingService) TopRisks(ctx context.Context, p models.Principal, requested *int) (*models.TopRisks, error) {
	limit, err := engine.RiskLimit(requested, s.cfg.TopRisksDefault, s.cfg.TopRisksMax)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s:%d", reportTopRisks, limit)
	return cached(ctx, s, p.OrganizationID, reportTopRisks, key, func() (*models.TopRisks, error) {
		snap, err := s.snapshot(ctx, p.OrganizationID, 1)
		if err != nil {
			return nil, err
		}
		return &models.TopRisks{Items: engine.RankRisks(snap.snapshots(), limit)}, nil
	})
}

func (s *reportingService) Direction(ctx context.Context, p models.Principal) (*models.DirectionOverview, error) {
	return cached(ctx, s, p.OrganizationID, reportDirection, reportDirection, func() (*models.DirectionOverview, error) {
		return s.buildDirection(ctx, p.OrganizationID)
	})
}

func (s *reportingService) buildOverview(ctx context.Context, orgID primitive.ObjectID) (*models.ReportingOverview, error) {
	dashboards, err := s.dashboards.List(ctx, orgID, repository.DashboardFilter{OrderByTitle: true})
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, orgID, 1)
	if err != nil {
		return nil, err
	}
	actions, err := s.actions.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	byDashboard := make(map[primitive.ObjectID][]models.KPI)
	for _, kpi := range snap.kpis {
		byDashboard[kpi.DashboardID] = append(byDashboard[kpi.DashboardID], kpi)
	}

	today := engine.Today(s.clock)
	overview := &models.ReportingOverview{Dashboards: make([]models.DashboardOverview, 0, len(dashboards))}
	for _, d := range dashboards {
		overview.Dashboards = append(overview.Dashboards,
			engine.AggregateDashboard(d, byDashboard[d.ID], snap.latest, actions, today))
	}
	return overview, nil
}

func (s *reportingService) buildDirection(ctx context.Context, orgID primitive.ObjectID) (*models.DirectionOverview, error) {
	snap, err := s.snapshot(ctx, orgID, 2)
	if err != nil {
		return nil, err
	}

	var red []models.KPISnapshot
	for _, item := range snap.snapshots() {
		if item.Status != nil && *item.Status == models.StatusRed {
			red = append(red, item)
		}
	}
	topRed := engine.RankRisks(red, s.cfg.TopRisksDefault)

	recent, err := s.values.ListRecent(ctx, orgID, s.cfg.LatestValuesLimit)
	if err != nil {
		return nil, err
	}
	latestValues := make([]models.KPISnapshot, 0, len(recent))
	for _, v := range recent {
		kpi, ok := snap.kpiByID[v.KPIID]
		if !ok {
			continue
		}
		latestValues = append(latestValues, snap.snapshotOf(kpi, &v))
	}

	inputs := make([]engine.TrendInput, 0, len(snap.kpis))
	for _, kpi := range snap.kpis {
		inputs = append(inputs, engine.TrendInput{
			KPI:            kpi,
			DashboardTitle: snap.dashboardTitle[kpi.DashboardID],
			Values:         snap.latest[kpi.ID],
		})
	}
	improving, worsening := engine.ComputeTrends(inputs, s.cfg.TrendLimit)

	actions, err := s.actions.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.ActionSummary, 0, len(actions))
	for _, a := range actions {
		kpi, ok := snap.kpiByID[a.KPIID]
		if !ok {
			continue
		}
		summaries = append(summaries, models.ActionSummary{
			ActionID:       a.ID,
			KPIID:          kpi.ID,
			KPIName:        kpi.Name,
			DashboardID:    kpi.DashboardID,
			DashboardTitle: snap.dashboardTitle[kpi.DashboardID],
			Title:          a.Title,
			Status:         a.Status,
			DueDate:        a.DueDate,
			UpdatedAt:      a.Metadata.UpdatedAt,
		})
	}
	buckets := engine.BucketActions(summaries, s.clock.Now())

	return &models.DirectionOverview{
		TopRedKPIs:            topRed,
		OverdueActions:        buckets.Overdue,
		LatestValues:          latestValues,
		ImprovingKPIs:         improving,
		WorseningKPIs:         worsening,
		UpcomingActions48h:    buckets.Upcoming48h,
		UpcomingActions7d:     buckets.Upcoming7d,
		ClosedActionsThisWeek: buckets.ClosedThisWeek,
	}, nil
}

// orgSnapshot is the organization's KPIs with their n most recent values.
type orgSnapshot struct {
	kpis           []models.KPI
	kpiByID        map[primitive.ObjectID]models.KPI
	dashboardTitle map[primitive.ObjectID]string
	latest         map[primitive.ObjectID][]models.KPIValue
}

func (s *reportingService) snapshot(ctx context.Context, orgID primitive.ObjectID, n int) (*orgSnapshot, error) {
	dashboards, err := s.dashboards.List(ctx, orgID, repository.DashboardFilter{})
	if err != nil {
		return nil, err
	}
	kpis, err := s.kpis.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	snap := &orgSnapshot{
		kpis:           kpis,
		kpiByID:        make(map[primitive.ObjectID]models.KPI, len(kpis)),
		dashboardTitle: make(map[primitive.ObjectID]string, len(dashboards)),
	}
	for _, d := range dashboards {
		snap.dashboardTitle[d.ID] = d.Title
	}

	var active []primitive.ObjectID
	for _, kpi := range kpis {
		snap.kpiByID[kpi.ID] = kpi
		if kpi.IsActive {
			active = append(active, kpi.ID)
		}
	}
	snap.latest, err = s.values.RecentByKPIs(ctx, orgID, active, n)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// snapshots lists the latest state of every active KPI, value or not.
func (o *orgSnapshot) snapshots() []models.KPISnapshot {
	items := make([]models.KPISnapshot, 0, len(o.kpis))
	for _, kpi := range o.kpis {
		if !kpi.IsActive {
			continue
		}
		var latest *models.KPIValue
		if vs := o.latest[kpi.ID]; len(vs) > 0 {
			latest = &vs[0]
		}
		items = append(items, o.snapshotOf(kpi, latest))
	}
	return items
}

func (o *orgSnapshot) snapshotOf(kpi models.KPI, v *models.KPIValue) models.KPISnapshot {
	item := models.KPISnapshot{
		KPIID:          kpi.ID,
		DashboardID:    kpi.DashboardID,
		DashboardTitle: o.dashboardTitle[kpi.DashboardID],
		Name:           kpi.Name,
	}
	if v != nil {
		status, value, periodEnd := v.Status, v.Value, v.PeriodEnd
		item.Status = &status
		item.Value = &value
		item.PeriodEnd = &periodEnd
	}
	return item
}
