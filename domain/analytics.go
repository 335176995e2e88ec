package domain

import "time"

type StabilityLevel string

const (
	StabilityVeryStable StabilityLevel = "very_stable"
	StabilityStable     StabilityLevel = "stable"
	StabilityVolatile   StabilityLevel = "volatile"
)

type TimeSeriesStatistics struct {
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	StandardDeviation float64 `json:"standard_deviation"`
}

// CoefficientOfVariation is std/|mean|, 0 when the mean is 0.
func (s TimeSeriesStatistics) CoefficientOfVariation() float64 {
	if s.Mean == 0 {
		return 0
	}
	m := s.Mean
	if m < 0 {
		m = -m
	}
	return s.StandardDeviation / m
}

func (s TimeSeriesStatistics) Stability() StabilityLevel {
	cv := s.CoefficientOfVariation()
	switch {
	case cv < 0.1:
		return StabilityVeryStable
	case cv < 0.2:
		return StabilityStable
	default:
		return StabilityVolatile
	}
}

type IntervalConsistency struct {
	MeanDays   float64 `json:"mean_days"`
	StdDevDays float64 `json:"std_dev_days"`
}

type AnomalyMethod string

const (
	AnomalyMethodZScore AnomalyMethod = "zscore"
	AnomalyMethodMAD    AnomalyMethod = "mad"
	AnomalyMethodIQR    AnomalyMethod = "iqr"
)

type AnomalySeverity string

const (
	SeverityMild     AnomalySeverity = "mild"
	SeverityModerate AnomalySeverity = "moderate"
	SeveritySevere   AnomalySeverity = "severe"
)

type AnomalyDetectionResult struct {
	Metric   string          `json:"metric"`
	Day      int             `json:"day"`
	Date     time.Time       `json:"date"`
	Value    float64         `json:"value"`
	ZScore   float64         `json:"z_score"`
	Severity AnomalySeverity `json:"severity"`
	Reason   string          `json:"reason"`
}

type DataQualityLabel string

const (
	QualityInsufficient DataQualityLabel = "insufficient"
	QualityPoor         DataQualityLabel = "poor"
	QualityFair         DataQualityLabel = "fair"
	QualityGood         DataQualityLabel = "good"
	QualityExcellent    DataQualityLabel = "excellent"
)

type DataQuality struct {
	Score float64          `json:"score"`
	Label DataQualityLabel `json:"label"`
}

type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// ConfidenceScore carries a [0,1] value together with the evidence behind it.
type ConfidenceScore struct {
	Value       float64 `json:"value"`
	SampleCount int     `json:"sample_count"`
	Method      string  `json:"method"`
}

func (c ConfidenceScore) Level() ConfidenceLevel {
	switch {
	case c.Value >= 0.7:
		return ConfidenceHigh
	case c.Value >= 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
