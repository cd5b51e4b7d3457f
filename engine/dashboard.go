package engine

import (
	"time"

	"github.com/agentdouble/kpix/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewStatusBreakdown returns a breakdown with every status present at zero.
func NewStatusBreakdown() map[models.Status]int {
	breakdown := make(map[models.Status]int, len(models.Statuses))
	for _, s := range models.Statuses {
		breakdown[s] = 0
	}
	return breakdown
}

// AggregateDashboard rolls up one dashboard. Only active KPIs of the dashboard
// count. latest maps a KPI id to its values, most recent first (see LatestByKPI);
// KPIs without a value count toward TotalKPIs but not the breakdown. Actions are
// counted when pending and attached to one of the counted KPIs; overdue means
// due strictly before today.
func AggregateDashboard(
	dashboard models.Dashboard,
	kpis []models.KPI,
	latest map[primitive.ObjectID][]models.KPIValue,
	actions []models.ActionPlan,
	today time.Time,
) models.DashboardOverview {
	overview := models.DashboardOverview{
		DashboardID:     dashboard.ID,
		Title:           dashboard.Title,
		ProcessName:     dashboard.ProcessName,
		StatusBreakdown: NewStatusBreakdown(),
	}

	counted := make(map[primitive.ObjectID]struct{})
	for _, kpi := range kpis {
		if !kpi.IsActive || kpi.DashboardID != dashboard.ID || kpi.OrganizationID != dashboard.OrganizationID {
			continue
		}
		counted[kpi.ID] = struct{}{}
		overview.TotalKPIs++
		if values := latest[kpi.ID]; len(values) > 0 {
			overview.StatusBreakdown[values[0].Status]++
		}
	}

	today = Date(today)
	for _, action := range actions {
		if _, ok := counted[action.KPIID]; !ok || action.OrganizationID != dashboard.OrganizationID {
			continue
		}
		if !action.Status.IsPending() {
			continue
		}
		overview.OpenActions++
		if action.DueDate != nil && Date(*action.DueDate).Before(today) {
			overview.OverdueActions++
		}
	}
	return overview
}
