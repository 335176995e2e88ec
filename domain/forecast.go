package domain

import (
	"fmt"
	"time"
)

const (
	MetricOverall     = "overall"
	MetricAcne        = "acne"
	MetricRedness     = "redness"
	MetricSensitivity = "sensitivity"
	MetricSkinAge     = "skinAge"
)

type ForecastPoint struct {
	Day        int       `json:"day"`
	Date       time.Time `json:"date"`
	Value      float64   `json:"value"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
}

type TrendForecast struct {
	Metric     string          `json:"metric"`
	Days       int             `json:"days"`
	Points     []ForecastPoint `json:"points"`
	Confidence ConfidenceScore `json:"confidence"`
}

type AlertSeverity string

const (
	AlertLow    AlertSeverity = "low"
	AlertMedium AlertSeverity = "medium"
	AlertHigh   AlertSeverity = "high"
)

type PredictiveAlert struct {
	Metric           string          `json:"metric"`
	Severity         AlertSeverity   `json:"severity"`
	Message          string          `json:"message"`
	ActionSuggestion string          `json:"action_suggestion"`
	PredictedDate    time.Time       `json:"predicted_date"`
	Confidence       ConfidenceScore `json:"confidence"`
}

type alertCopy struct {
	message string
	action  string
}

var issueAlertCopy = map[AlertSeverity]alertCopy{
	AlertHigh:   {"%s is forecast to worsen significantly", "Pause new actives and consider consulting a dermatologist"},
	AlertMedium: {"%s is trending worse", "Keep the routine gentle and watch for triggers"},
	AlertLow:    {"%s may increase slightly", "Keep tracking and stay consistent with your routine"},
}

var overallAlertCopy = map[AlertSeverity]alertCopy{
	AlertHigh:   {"overall skin score is forecast to drop sharply", "Review recent product and lifestyle changes"},
	AlertMedium: {"overall skin score is declining", "Prioritise sleep, hydration and a simple routine"},
	AlertLow:    {"overall skin score may dip slightly", "Keep tracking to confirm the trend"},
}

// RiskAlert derives a forward-looking warning from the first and last
// forecast points. It returns nil when the trajectory does not warrant one.
func (f TrendForecast) RiskAlert() *PredictiveAlert {
	if len(f.Points) == 0 {
		return nil
	}
	first := f.Points[0].Value
	last := f.Points[len(f.Points)-1].Value
	change := last - first

	var (
		severity AlertSeverity
		text     alertCopy
	)
	switch f.Metric {
	case MetricAcne, MetricRedness, MetricSensitivity:
		switch {
		case last >= 7 && change >= 2:
			severity = AlertHigh
		case last >= 5 && change >= 1:
			severity = AlertMedium
		case last >= 4 && change > 0:
			severity = AlertLow
		default:
			return nil
		}
		text = issueAlertCopy[severity]
		text.message = fmt.Sprintf(text.message, f.Metric)
	case MetricOverall:
		switch {
		case last < 40 && change <= -15:
			severity = AlertHigh
		case last < 50 && change <= -10:
			severity = AlertMedium
		case last < 60 && change <= -5:
			severity = AlertLow
		default:
			return nil
		}
		text = overallAlertCopy[severity]
	default:
		return nil
	}

	return &PredictiveAlert{
		Metric:           f.Metric,
		Severity:         severity,
		Message:          text.message,
		ActionSuggestion: text.action,
		PredictedDate:    f.Points[len(f.Points)-1].Date,
		Confidence:       f.Confidence,
	}
}

// DaysFromNow is the whole calendar-day difference between now and the predicted date.
func (a PredictiveAlert) DaysFromNow(now time.Time) int {
	from := startOfDay(now)
	to := startOfDay(a.PredictedDate.In(now.Location()))
	return int(to.Sub(from).Round(time.Hour).Hours() / 24)
}

func (a PredictiveAlert) PredictedDateText(now time.Time) string {
	days := a.DaysFromNow(now)
	switch {
	case days < 0:
		return "expired"
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

func (a PredictiveAlert) Icon() string {
	switch a.Severity {
	case AlertHigh:
		return "critical"
	case AlertMedium:
		return "warning"
	default:
		return "info"
	}
}

func (a PredictiveAlert) Color() string {
	switch a.Severity {
	case AlertHigh:
		return "red"
	case AlertMedium:
		return "orange"
	default:
		return "blue"
	}
}

func (a PredictiveAlert) Label() string {
	return fmt.Sprintf("[%s] %s: %s", a.Severity, a.Metric, a.Message)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
