//go:build !integration

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func forecastOf(metric string, first, last float64) TrendForecast {
	return TrendForecast{
		Metric: metric,
		Days:   7,
		Points: []ForecastPoint{
			{Day: 0, Date: day0, Value: first},
			{Day: 7, Date: day0.AddDate(0, 0, 7), Value: last},
		},
		Confidence: ConfidenceScore{Value: 0.6, SampleCount: 4, Method: "linear-regression"},
	}
}

func TestRiskAlert_IssueMetrics(t *testing.T) {
	tests := []struct {
		name        string
		metric      string
		first, last float64
		want        AlertSeverity
	}{
		{"acne high", MetricAcne, 5, 8, AlertHigh},
		{"acne medium", MetricAcne, 4, 5.5, AlertMedium},
		{"redness low", MetricRedness, 3.5, 4.2, AlertLow},
		{"sensitivity high", MetricSensitivity, 6, 9, AlertHigh},
		{"acne improving", MetricAcne, 3, 2, ""},
		{"high but flat", MetricAcne, 8, 8, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			alert := forecastOf(tc.metric, tc.first, tc.last).RiskAlert()
			if tc.want == "" {
				assert.Nil(t, alert)
				return
			}
			require.NotNil(t, alert)
			assert.Equal(t, tc.want, alert.Severity)
			assert.Equal(t, tc.metric, alert.Metric)
			assert.Contains(t, alert.Message, tc.metric)
			assert.NotEmpty(t, alert.ActionSuggestion)
		})
	}
}

func TestRiskAlert_OverallIsInverted(t *testing.T) {
	tests := []struct {
		first, last float64
		want        AlertSeverity
	}{
		{55, 38, AlertHigh},
		{60, 48, AlertMedium},
		{62, 57, AlertLow},
		{70, 65, ""},
		{50, 60, ""},
	}
	for _, tc := range tests {
		alert := forecastOf(MetricOverall, tc.first, tc.last).RiskAlert()
		if tc.want == "" {
			assert.Nil(t, alert, "%v -> %v", tc.first, tc.last)
			continue
		}
		require.NotNil(t, alert)
		assert.Equal(t, tc.want, alert.Severity, "%v -> %v", tc.first, tc.last)
	}
}

func TestRiskAlert_NoAlert(t *testing.T) {
	assert.Nil(t, forecastOf("pores", 2, 9).RiskAlert())
	assert.Nil(t, TrendForecast{Metric: MetricAcne}.RiskAlert())
}

func TestRiskAlert_CarriesDateAndConfidence(t *testing.T) {
	f := forecastOf(MetricAcne, 5, 8)

	alert := f.RiskAlert()

	require.NotNil(t, alert)
	assert.Equal(t, day0.AddDate(0, 0, 7), alert.PredictedDate)
	assert.Equal(t, f.Confidence, alert.Confidence)
	assert.Equal(t, "[high] acne: acne is forecast to worsen significantly", alert.Label())
}

func TestPredictiveAlert_DateText(t *testing.T) {
	now := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		predicted time.Time
		days      int
		text      string
	}{
		{time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC), 0, "today"},
		{time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC), 1, "tomorrow"},
		{time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC), 2, "in 2 days"},
		{time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC), -2, "expired"},
	}
	for _, tc := range tests {
		a := PredictiveAlert{PredictedDate: tc.predicted}
		assert.Equal(t, tc.days, a.DaysFromNow(now))
		assert.Equal(t, tc.text, a.PredictedDateText(now))
	}
}

func TestPredictiveAlert_Presentation(t *testing.T) {
	tests := []struct {
		severity    AlertSeverity
		icon, color string
	}{
		{AlertLow, "info", "blue"},
		{AlertMedium, "warning", "orange"},
		{AlertHigh, "critical", "red"},
	}
	for _, tc := range tests {
		a := PredictiveAlert{Severity: tc.severity}
		assert.Equal(t, tc.icon, a.Icon())
		assert.Equal(t, tc.color, a.Color())
	}
}
