package engine

import (
	"testing"

	"github.com/agentdouble/kpix/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func snapshot(name string, status models.Status, periodEnd string) models.KPISnapshot {
	s := status
	v := 1.0
	snap := models.KPISnapshot{KPIID: primitive.NewObjectID(), Name: name, Status: &s, Value: &v}
	if periodEnd != "" {
		snap.PeriodEnd = dayPtr(periodEnd)
	}
	return snap
}

func names(items []models.KPISnapshot) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Name
	}
	return out
}

func TestRankRisksExcludesGreen(t *testing.T) {
	got := RankRisks([]models.KPISnapshot{
		snapshot("ok", models.StatusGreen, "2024-06-01"),
		snapshot("warn", models.StatusOrange, "2024-01-01"),
		{KPIID: primitive.NewObjectID(), Name: "no value"},
	}, 5)

	assert.Equal(t, []string{"warn"}, names(got))
}

func TestRankRisksRedBeforeOrangeOnSamePeriod(t *testing.T) {
	got := RankRisks([]models.KPISnapshot{
		snapshot("orange", models.StatusOrange, "2024-03-31"),
		snapshot("red", models.StatusRed, "2024-03-31"),
	}, 5)

	assert.Equal(t, []string{"red", "orange"}, names(got))
}

func TestRankRisksOrdering(t *testing.T) {
	got := RankRisks([]models.KPISnapshot{
		snapshot("orange-new", models.StatusOrange, "2024-06-30"),
		snapshot("red-undated", models.StatusRed, ""),
		snapshot("red-old", models.StatusRed, "2024-01-31"),
		snapshot("red-new", models.StatusRed, "2024-05-31"),
		snapshot("b-tie", models.StatusOrange, "2024-02-29"),
		snapshot("a-tie", models.StatusOrange, "2024-02-29"),
	}, 50)

	assert.Equal(t, []string{"red-new", "red-old", "red-undated", "orange-new", "a-tie", "b-tie"}, names(got))
}

func TestRankRisksTruncates(t *testing.T) {
	var in []models.KPISnapshot
	for i := 0; i < 8; i++ {
		in = append(in, snapshot("k", models.StatusRed, "2024-01-01"))
	}
	assert.Len(t, RankRisks(in, 5), 5)
}

func TestRiskLimit(t *testing.T) {
	limit, err := RiskLimit(nil, DefaultRiskLimit, MaxRiskLimit)
	require.NoError(t, err)
	assert.Equal(t, 5, limit)

	fifty := 50
	limit, err = RiskLimit(&fifty, DefaultRiskLimit, MaxRiskLimit)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)

	for _, bad := range []int{-1, 0, 51} {
		_, err := RiskLimit(&bad, DefaultRiskLimit, MaxRiskLimit)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}
