package domain

import (
	"time"

	"github.com/google/uuid"
)

type TimelineMode string

const (
	TimelineAll      TimelineMode = "all"
	TimelineReliable TimelineMode = "reliable"
)

// TimelineDisplayPolicy tells the presentation layer which timeline to chart.
type TimelineDisplayPolicy struct {
	Mode          TimelineMode `json:"mode"`
	TotalPoints   int          `json:"total_points"`
	ExcludedCount int          `json:"excluded_count"`
}

type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

type TrendAnalysis struct {
	Metric      string         `json:"metric"`
	Slope       float64        `json:"slope"`
	RSquared    float64        `json:"r_squared"`
	Volatility  float64        `json:"volatility"`
	MaxDrawdown float64        `json:"max_drawdown"`
	Direction   TrendDirection `json:"direction"`
}

type HeatmapCell struct {
	Day       int     `json:"day"`
	Issue     string  `json:"issue"`
	Intensity float64 `json:"intensity"`
}

type ForecastWithAlert struct {
	Forecast TrendForecast    `json:"forecast"`
	Alert    *PredictiveAlert `json:"alert,omitempty"`
}

type TrackingReport struct {
	SessionID      uuid.UUID `json:"session_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	DurationDays   int       `json:"duration_days"`
	CheckInCount   int       `json:"check_in_count"`
	CompletionRate float64   `json:"completion_rate"`

	Timeline          []ScorePoint                      `json:"timeline"`
	ReliableTimeline  []ScorePoint                      `json:"reliable_timeline"`
	Reliability       map[uuid.UUID]ReliabilityMetadata `json:"reliability"`
	TimelinePolicy    TimelineDisplayPolicy             `json:"timeline_policy"`
	ScoreChange       float64                           `json:"score_change"`
	SkinAgeChange     float64                           `json:"skin_age_change"`
	Trends            []TrendAnalysis                   `json:"trends"`
	Anomalies         []AnomalyDetectionResult          `json:"anomalies"`
	Forecasts         []ForecastWithAlert               `json:"forecasts"`
	Lifestyle         []LifestyleCorrelationInsight     `json:"lifestyle"`
	LifestyleCoverage map[LifestyleFactor]int           `json:"lifestyle_coverage"`
	Products          []ProductEffectInsight            `json:"products"`
	ProductOverlaps   []ProductOverlap                  `json:"product_overlaps"`
	Combinations      []ProductCombinationInsight       `json:"combinations"`
	Heatmap           []HeatmapCell                     `json:"heatmap"`
	DataQuality       DataQuality                       `json:"data_quality"`
	Confidence        float64                           `json:"confidence"`
}
