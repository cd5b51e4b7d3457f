package engine

import (
	"bytes"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/agentdouble/kpix/models"
)

const DefaultTrendLimit = 3

// TrendInput carries one KPI and its value history. Values need not be sorted.
type TrendInput struct {
	KPI            models.KPI
	DashboardTitle string
	Values         []models.KPIValue
}

// BuildTrend compares the two most recent values of a KPI. ok is false when the
// KPI has fewer than two values.
func BuildTrend(in TrendInput) (trend models.KPITrend, ok bool) {
	latest := SelectLatest(in.Values, 2)
	if len(latest) < 2 {
		return models.KPITrend{}, false
	}
	current, previous := latest[0], latest[1]

	delta := current.Value - previous.Value
	normalized := delta
	if in.KPI.Direction == models.DownIsBetter {
		normalized = previous.Value - current.Value
	}

	return models.KPITrend{
		KPIID:           in.KPI.ID,
		DashboardID:     in.KPI.DashboardID,
		DashboardTitle:  in.DashboardTitle,
		Name:            in.KPI.Name,
		Direction:       in.KPI.Direction,
		CurrentValue:    current.Value,
		PreviousValue:   previous.Value,
		CurrentStatus:   current.Status,
		PreviousStatus:  previous.Status,
		Delta:           delta,
		DeltaNormalized: normalized,
	}, true
}

// ComputeTrends splits active KPIs into improving (normalized delta > 0, largest
// first) and worsening (normalized delta < 0, most negative first), each capped
// at limit. Zero deltas belong to neither list. Equal magnitudes are ordered by
// KPI name, then KPI id.
func ComputeTrends(inputs []TrendInput, limit int) (improving, worsening []models.KPITrend) {
	improving = []models.KPITrend{}
	worsening = []models.KPITrend{}
	for _, in := range inputs {
		if !in.KPI.IsActive {
			continue
		}
		trend, ok := BuildTrend(in)
		if !ok {
			continue
		}
		switch {
		case trend.DeltaNormalized > 0:
			improving = append(improving, trend)
		case trend.DeltaNormalized < 0:
			worsening = append(worsening, trend)
		}
	}

	sortByMagnitude(improving)
	sortByMagnitude(worsening)
	return truncateTrends(improving, limit), truncateTrends(worsening, limit)
}

func sortByMagnitude(trends []models.KPITrend) {
	sort.SliceStable(trends, func(i, j int) bool {
		a, b := &trends[i], &trends[j]
		if ma, mb := math.Abs(a.DeltaNormalized), math.Abs(b.DeltaNormalized); ma != mb {
			return ma > mb
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return bytes.Compare(a.KPIID[:], b.KPIID[:]) < 0
	})
}

func truncateTrends(trends []models.KPITrend, limit int) []models.KPITrend {
	if limit >= 0 && len(trends) > limit {
		return trends[:limit]
	}
	return trends
}

// ActionBuckets partitions action plans for the executive summary.
type ActionBuckets struct {
	Overdue        []models.ActionSummary
	Upcoming48h    []models.ActionSummary
	Upcoming7d     []models.ActionSummary
	ClosedThisWeek []models.ActionSummary
}

const (
	upcomingShortDays = 2
	upcomingLongDays  = 7
	closedWindow      = 7 * 24 * time.Hour
)

// BucketActions sorts pending actions into overdue (due before today), due in
// [today, today+2d] and due in (today+2d, today+7d]; DONE actions updated within
// the last 7 days go to ClosedThisWeek. Pending actions without a due date and
// cancelled actions land nowhere.
func BucketActions(actions []models.ActionSummary, now time.Time) ActionBuckets {
	b := ActionBuckets{
		Overdue:        []models.ActionSummary{},
		Upcoming48h:    []models.ActionSummary{},
		Upcoming7d:     []models.ActionSummary{},
		ClosedThisWeek: []models.ActionSummary{},
	}
	today := Date(now)
	shortEdge := today.AddDate(0, 0, upcomingShortDays)
	longEdge := today.AddDate(0, 0, upcomingLongDays)
	closedSince := now.Add(-closedWindow)

	for _, a := range actions {
		switch {
		case a.Status == models.ActionDone:
			if !a.UpdatedAt.Before(closedSince) {
				b.ClosedThisWeek = append(b.ClosedThisWeek, a)
			}
		case a.Status.IsPending() && a.DueDate != nil:
			due := Date(*a.DueDate)
			switch {
			case due.Before(today):
				b.Overdue = append(b.Overdue, a)
			case !due.After(shortEdge):
				b.Upcoming48h = append(b.Upcoming48h, a)
			case !due.After(longEdge):
				b.Upcoming7d = append(b.Upcoming7d, a)
			}
		}
	}

	sortByDueDate(b.Overdue)
	sortByDueDate(b.Upcoming48h)
	sortByDueDate(b.Upcoming7d)
	sort.SliceStable(b.ClosedThisWeek, func(i, j int) bool {
		return b.ClosedThisWeek[i].UpdatedAt.After(b.ClosedThisWeek[j].UpdatedAt)
	})
	return b
}

func sortByDueDate(actions []models.ActionSummary) {
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].DueDate.Before(*actions[j].DueDate)
	})
}
