package engine

import (
	"testing"
	"time"

	"github.com/agentdouble/kpix/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

func TestResolvePeriodDefaultsEndToStart(t *testing.T) {
	start, end, err := ResolvePeriod(models.FrequencyMonthly, day("2024-01-01"), nil)
	require.NoError(t, err)
	assert.Equal(t, day("2024-01-01"), start)
	assert.Equal(t, day("2024-01-01"), end)
}

func TestResolvePeriodKeepsExplicitEnd(t *testing.T) {
	start, end, err := ResolvePeriod(models.FrequencyMonthly, day("2024-01-01"), dayPtr("2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, day("2024-01-01"), start)
	assert.Equal(t, day("2024-01-31"), end)
}

func TestResolvePeriodSameDay(t *testing.T) {
	_, end, err := ResolvePeriod(models.FrequencyDaily, day("2024-03-05"), dayPtr("2024-03-05"))
	require.NoError(t, err)
	assert.Equal(t, day("2024-03-05"), end)
}

func TestResolvePeriodRejectsEndBeforeStart(t *testing.T) {
	_, _, err := ResolvePeriod(models.FrequencyWeekly, day("2024-02-10"), dayPtr("2024-02-09"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "period_end", verr.Field)
}

func TestResolvePeriodDoesNotSnapToFrequency(t *testing.T) {
	start, end, err := ResolvePeriod(models.FrequencyDaily, day("2024-01-01"), dayPtr("2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, end.Sub(start))
}

func TestResolvePeriodTruncatesTimeOfDay(t *testing.T) {
	start, end, err := ResolvePeriod(models.FrequencyDaily, time.Date(2024, 5, 6, 17, 30, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Equal(t, day("2024-05-06"), start)
	assert.Equal(t, start, end)
}

func TestResolvePeriodRequiresStart(t *testing.T) {
	_, _, err := ResolvePeriod(models.FrequencyDaily, time.Time{}, nil)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-02-29", day("2024-02-29")},
		{" 2024-02-29 ", day("2024-02-29")},
		{"2024-02-29T18:30:00Z", day("2024-02-29")},
		{"2024-02-29 08:00:00", day("2024-02-29")},
	}
	for _, tt := range tests {
		got, err := ParseDate("period_start", tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("period_start", "31/01/2024")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "period_start", verr.Field)

	_, err = ParseDate("period_start", "")
	require.ErrorAs(t, err, &verr)
}

func TestParseOptionalDate(t *testing.T) {
	got, err := ParseOptionalDate("due_date", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseOptionalDate("due_date", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, day("2024-03-01"), *got)
}
