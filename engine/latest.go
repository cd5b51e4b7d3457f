package engine

import (
	"bytes"
	"sort"

	"github.com/agentdouble/kpix/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newerFirst orders values by period_end desc, then created_at desc.
// Identical timestamps fall back to the larger id so the order is total.
func newerFirst(a, b *models.KPIValue) bool {
	if !a.PeriodEnd.Equal(b.PeriodEnd) {
		return a.PeriodEnd.After(b.PeriodEnd)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) > 0
}

// SelectLatest returns up to n values of a single KPI, most recent first.
// The input slice is not modified.
func SelectLatest(values []models.KPIValue, n int) []models.KPIValue {
	if n <= 0 || len(values) == 0 {
		return []models.KPIValue{}
	}
	sorted := make([]models.KPIValue, len(values))
	copy(sorted, values)
	sort.SliceStable(sorted, func(i, j int) bool {
		return newerFirst(&sorted[i], &sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// LatestByKPI partitions values by KPI and applies SelectLatest to each group,
// so no ordering ever spans two KPIs.
func LatestByKPI(values []models.KPIValue, n int) map[primitive.ObjectID][]models.KPIValue {
	groups := make(map[primitive.ObjectID][]models.KPIValue)
	for _, v := range values {
		groups[v.KPIID] = append(groups[v.KPIID], v)
	}
	for id, group := range groups {
		groups[id] = SelectLatest(group, n)
	}
	return groups
}
