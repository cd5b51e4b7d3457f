package engine

import (
	"fmt"

	"github.com/agentdouble/kpix/models"
)

// ValidateThresholds checks that the green/orange/red triple is ordered the way
// the KPI improves: green >= orange >= red when up is better, the reverse otherwise.
// Callers must pass the full triple after any partial update has been merged.
func ValidateThresholds(direction models.Direction, green, orange, red float64) error {
	details := map[string]interface{}{
		"direction": direction,
		"green":     green,
		"orange":    orange,
		"red":       red,
	}
	switch direction {
	case models.UpIsBetter:
		if !(green >= orange && orange >= red) {
			return &ValidationError{
				Field:   "thresholds",
				Message: fmt.Sprintf("thresholds must satisfy green >= orange >= red for %s KPIs (got %g, %g, %g)", direction, green, orange, red),
				Details: details,
			}
		}
	case models.DownIsBetter:
		if !(green <= orange && orange <= red) {
			return &ValidationError{
				Field:   "thresholds",
				Message: fmt.Sprintf("thresholds must satisfy green <= orange <= red for %s KPIs (got %g, %g, %g)", direction, green, orange, red),
				Details: details,
			}
		}
	default:
		return &ValidationError{Field: "direction", Message: fmt.Sprintf("unknown direction %q", direction), Details: details}
	}
	return nil
}

// ComputeStatus classifies a value against the green and orange thresholds.
// Boundaries fall into the better bucket. The red threshold only bounds the
// ordering check; anything worse than orange is RED.
func ComputeStatus(direction models.Direction, green, orange, value float64) models.Status {
	if direction == models.DownIsBetter {
		switch {
		case value <= green:
			return models.StatusGreen
		case value <= orange:
			return models.StatusOrange
		default:
			return models.StatusRed
		}
	}

	switch {
	case value >= green:
		return models.StatusGreen
	case value >= orange:
		return models.StatusOrange
	default:
		return models.StatusRed
	}
}

// ClassifyValue is ComputeStatus for a stored KPI definition.
func ClassifyValue(kpi *models.KPI, value float64) models.Status {
	return ComputeStatus(kpi.Direction, kpi.ThresholdGreen, kpi.ThresholdOrange, value)
}
