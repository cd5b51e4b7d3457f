package engine

import (
	"testing"
	"time"

	"github.com/agentdouble/kpix/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func value(kpiID primitive.ObjectID, periodEnd string, v float64, created time.Time) models.KPIValue {
	return models.KPIValue{
		ID:          primitive.NewObjectID(),
		KPIID:       kpiID,
		PeriodStart: day(periodEnd),
		PeriodEnd:   day(periodEnd),
		Value:       v,
		CreatedAt:   created,
	}
}

func TestSelectLatestOrdersByPeriodEnd(t *testing.T) {
	kpiID := primitive.NewObjectID()
	t1 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(-time.Hour)
	jan := value(kpiID, "2024-01-31", 1, t1)
	feb := value(kpiID, "2024-02-29", 2, t2)

	for _, input := range [][]models.KPIValue{{jan, feb}, {feb, jan}} {
		got := SelectLatest(input, 1)
		require.Len(t, got, 1)
		assert.Equal(t, 2.0, got[0].Value)
	}
}

func TestSelectLatestTieBreaksOnCreatedAt(t *testing.T) {
	kpiID := primitive.NewObjectID()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	older := value(kpiID, "2024-02-29", 10, base)
	newer := value(kpiID, "2024-02-29", 20, base.Add(time.Minute))

	got := SelectLatest([]models.KPIValue{older, newer}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, 20.0, got[0].Value)
	assert.Equal(t, 10.0, got[1].Value)
}

func TestSelectLatestDoesNotMutateInput(t *testing.T) {
	kpiID := primitive.NewObjectID()
	now := time.Now()
	input := []models.KPIValue{value(kpiID, "2024-01-01", 1, now), value(kpiID, "2024-06-01", 2, now)}

	SelectLatest(input, 2)
	assert.Equal(t, 1.0, input[0].Value)
}

func TestSelectLatestEdgeCases(t *testing.T) {
	assert.Empty(t, SelectLatest(nil, 2))
	assert.Empty(t, SelectLatest([]models.KPIValue{value(primitive.NewObjectID(), "2024-01-01", 1, time.Now())}, 0))

	one := SelectLatest([]models.KPIValue{value(primitive.NewObjectID(), "2024-01-01", 1, time.Now())}, 2)
	assert.Len(t, one, 1)
}

func TestLatestByKPIPartitionsBeforeOrdering(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	now := time.Now()
	values := []models.KPIValue{
		value(a, "2024-01-31", 1, now),
		value(b, "2024-05-31", 50, now),
		value(a, "2024-02-29", 2, now),
		value(b, "2024-04-30", 40, now),
		value(b, "2024-03-31", 30, now),
	}

	latest := LatestByKPI(values, 2)
	require.Len(t, latest, 2)
	assert.Equal(t, []float64{2, 1}, valuesOf(latest[a]))
	assert.Equal(t, []float64{50, 40}, valuesOf(latest[b]))
}

func valuesOf(vs []models.KPIValue) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v.Value
	}
	return out
}
