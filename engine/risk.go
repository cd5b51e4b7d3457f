package engine

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agentdouble/kpix/models"
)

const (
	DefaultRiskLimit = 5
	MaxRiskLimit     = 50
)

// RiskLimit resolves the requested limit. nil selects the default; values
// outside 1..max are rejected.
func RiskLimit(requested *int, def, max int) (int, error) {
	if requested == nil {
		return def, nil
	}
	if *requested < 1 || *requested > max {
		return 0, NewValidationError("limit", fmt.Sprintf("must be between 1 and %d", max))
	}
	return *requested, nil
}

func periodEndOrMin(s *models.KPISnapshot) time.Time {
	if s.PeriodEnd == nil {
		return time.Time{}
	}
	return *s.PeriodEnd
}

// RankRisks keeps ORANGE and RED snapshots and orders them by severity desc,
// then period_end desc (missing period_end sorts last). Equal pairs are ordered
// by KPI name, then KPI id, both ascending. The result holds at most limit items.
func RankRisks(snapshots []models.KPISnapshot, limit int) []models.KPISnapshot {
	items := make([]models.KPISnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if s.Status == nil || s.Status.Severity() == 0 {
			continue
		}
		items = append(items, s)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if sa, sb := a.Status.Severity(), b.Status.Severity(); sa != sb {
			return sa > sb
		}
		if pa, pb := periodEndOrMin(a), periodEndOrMin(b); !pa.Equal(pb) {
			return pa.After(pb)
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return bytes.Compare(a.KPIID[:], b.KPIID[:]) < 0
	})

	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
