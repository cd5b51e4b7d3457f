package engine

import (
	"errors"
	"testing"

	"github.com/agentdouble/kpix/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name      string
		direction models.Direction
		green     float64
		orange    float64
		value     float64
		want      models.Status
	}{
		{"up above green", models.UpIsBetter, 90, 75, 95, models.StatusGreen},
		{"up between", models.UpIsBetter, 90, 75, 80, models.StatusOrange},
		{"up below orange", models.UpIsBetter, 90, 75, 60, models.StatusRed},
		{"up on green boundary", models.UpIsBetter, 90, 75, 90, models.StatusGreen},
		{"up on orange boundary", models.UpIsBetter, 90, 75, 75, models.StatusOrange},
		{"down below green", models.DownIsBetter, 10, 20, 5, models.StatusGreen},
		{"down between", models.DownIsBetter, 10, 20, 15, models.StatusOrange},
		{"down above orange", models.DownIsBetter, 10, 20, 40, models.StatusRed},
		{"down just above orange", models.DownIsBetter, 3, 4, 4.2, models.StatusRed},
		{"down on green boundary", models.DownIsBetter, 10, 20, 10, models.StatusGreen},
		{"down on orange boundary", models.DownIsBetter, 10, 20, 20, models.StatusOrange},
		{"negative values", models.UpIsBetter, -1, -5, -3, models.StatusOrange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.direction, tt.green, tt.orange, tt.value))
		})
	}
}

func TestClassifyValueMatchesComputeStatus(t *testing.T) {
	kpi := &models.KPI{Direction: models.DownIsBetter, ThresholdGreen: 3, ThresholdOrange: 4, ThresholdRed: 5}
	assert.Equal(t, models.StatusOrange, ClassifyValue(kpi, 3.5))
	assert.Equal(t, models.StatusRed, ClassifyValue(kpi, 4.2))
	for _, v := range []float64{2, 3, 3.5, 4, 4.2, 5, 9} {
		assert.Equal(t, ComputeStatus(kpi.Direction, 3, 4, v), ClassifyValue(kpi, v), "value %v", v)
	}
}

func TestValidateThresholds(t *testing.T) {
	tests := []struct {
		name      string
		direction models.Direction
		g, o, r   float64
		wantErr   bool
	}{
		{"up ordered", models.UpIsBetter, 90, 75, 60, false},
		{"up all equal", models.UpIsBetter, 5, 5, 5, false},
		{"up inverted", models.UpIsBetter, 60, 75, 90, true},
		{"up orange above green", models.UpIsBetter, 90, 95, 60, true},
		{"down ordered", models.DownIsBetter, 10, 20, 30, false},
		{"down all equal", models.DownIsBetter, 0, 0, 0, false},
		{"down inverted", models.DownIsBetter, 30, 20, 10, true},
		{"down red below orange", models.DownIsBetter, 10, 20, 15, true},
		{"unknown direction", models.Direction("SIDEWAYS"), 1, 2, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateThresholds(tt.direction, tt.g, tt.o, tt.r)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestValidateThresholdsCarriesOffendingValues(t *testing.T) {
	err := ValidateThresholds(models.UpIsBetter, 1, 2, 3)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, models.UpIsBetter, verr.Details["direction"])
	assert.Equal(t, 1.0, verr.Details["green"])
	assert.Equal(t, 2.0, verr.Details["orange"])
	assert.Equal(t, 3.0, verr.Details["red"])
}

func TestProperty_ThresholdOrdering(t *testing.T) {
	properties := gopter.NewProperties(nil)
	threshold := gen.Float64Range(-1e6, 1e6)

	properties.Property("validation succeeds exactly when the triple is direction-ordered", prop.ForAll(
		func(g, o, r float64, up bool) bool {
			direction := models.DownIsBetter
			ordered := g <= o && o <= r
			if up {
				direction = models.UpIsBetter
				ordered = g >= o && o >= r
			}
			err := ValidateThresholds(direction, g, o, r)
			return (err == nil) == ordered
		},
		threshold, threshold, threshold, gen.Bool(),
	))

	properties.Property("classification is monotonic in the improving direction", prop.ForAll(
		func(g, spread, a, b float64, up bool) bool {
			direction := models.UpIsBetter
			o := g - spread
			better, worse := a, b
			if a < b {
				better, worse = b, a
			}
			if !up {
				direction = models.DownIsBetter
				o = g + spread
				better, worse = worse, better
			}
			sb := ComputeStatus(direction, g, o, better)
			sw := ComputeStatus(direction, g, o, worse)
			return sb.Severity() <= sw.Severity()
		},
		threshold, gen.Float64Range(0, 1e4), threshold, threshold, gen.Bool(),
	))

	properties.Property("classification is deterministic", prop.ForAll(
		func(g, spread, v float64) bool {
			return ComputeStatus(models.UpIsBetter, g, g-spread, v) == ComputeStatus(models.UpIsBetter, g, g-spread, v)
		},
		threshold, gen.Float64Range(0, 1e4), threshold,
	))

	properties.TestingRun(t)
}
