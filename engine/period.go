package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentdouble/kpix/models"
)

// ResolvePeriod returns the inclusive [start, end] period for a new value.
// A missing end means a point-in-time period. Frequency is accepted for context
// only; periods are not snapped to calendar boundaries.
func ResolvePeriod(frequency models.Frequency, start time.Time, end *time.Time) (time.Time, time.Time, error) {
	if start.IsZero() {
		return time.Time{}, time.Time{}, NewValidationError("period_start", "is required")
	}
	start = Date(start)
	if end == nil || end.IsZero() {
		return start, start, nil
	}
	e := Date(*end)
	if e.Before(start) {
		return time.Time{}, time.Time{}, &ValidationError{
			Field:   "period_end",
			Message: "period_end must be on or after period_start",
			Details: map[string]interface{}{
				"frequency":    frequency,
				"period_start": start.Format(time.DateOnly),
				"period_end":   e.Format(time.DateOnly),
			},
		}
	}
	return start, e, nil
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp and
// returns the calendar day in UTC.
func ParseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, NewValidationError(field, "is required")
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return Date(t), nil
		}
	}
	return time.Time{}, &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("invalid date format: %s", raw),
		Details: map[string]interface{}{"value": raw},
	}
}

// ParseOptionalDate is ParseDate for fields that may be left empty.
func ParseOptionalDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := ParseDate(field, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
