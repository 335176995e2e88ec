package anomaly

import (
	"fmt"
	"math"
	"time"

	"skinTrack/business/timeseries"
	"skinTrack/domain"
)

type Detector struct {
	cfg Config
}

func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg.withDefaults()}
}

func (d *Detector) Config() Config {
	return d.cfg
}

// Detect flags single-point outliers in values using the chosen method. The
// three slices are parallel; mismatched or short input yields no results.
// A threshold <= 0 uses the configured default for the method.
func (d *Detector) Detect(
	values []float64,
	days []int,
	dates []time.Time,
	metric string,
	method domain.AnomalyMethod,
	threshold float64,
) []domain.AnomalyDetectionResult {
	if !d.validInput(values, days, dates) {
		return []domain.AnomalyDetectionResult{}
	}

	switch method {
	case domain.AnomalyMethodMAD:
		return d.detectMAD(values, days, dates, metric, pick(threshold, d.cfg.MADThreshold))
	case domain.AnomalyMethodIQR:
		return d.detectIQR(values, days, dates, metric, pick(threshold, d.cfg.IQRMultiplier))
	default:
		return d.detectZScore(values, days, dates, metric, pick(threshold, d.cfg.ZScoreThreshold))
	}
}

func (d *Detector) detectZScore(values []float64, days []int, dates []time.Time, metric string, threshold float64) []domain.AnomalyDetectionResult {
	mean := timeseries.Mean(values)
	std := timeseries.StandardDeviation(values)
	out := []domain.AnomalyDetectionResult{}
	if std == 0 {
		return out
	}

	for i, v := range values {
		z := (v - mean) / std
		if math.Abs(z) <= threshold {
			continue
		}
		out = append(out, domain.AnomalyDetectionResult{
			Metric:   metric,
			Day:      days[i],
			Date:     dates[i],
			Value:    v,
			ZScore:   z,
			Severity: zSeverity(math.Abs(z)),
			Reason:   fmt.Sprintf("%s is %.1f standard deviations %s the mean", metric, math.Abs(z), side(z)),
		})
	}
	return out
}

func (d *Detector) detectMAD(values []float64, days []int, dates []time.Time, metric string, threshold float64) []domain.AnomalyDetectionResult {
	median := timeseries.Median(values)
	mad := timeseries.MedianAbsoluteDeviation(values)
	out := []domain.AnomalyDetectionResult{}
	if mad == 0 {
		return out
	}

	for i, v := range values {
		mz := madConsistency * (v - median) / mad
		if math.Abs(mz) <= threshold {
			continue
		}
		out = append(out, domain.AnomalyDetectionResult{
			Metric:   metric,
			Day:      days[i],
			Date:     dates[i],
			Value:    v,
			ZScore:   mz,
			Severity: madSeverity(math.Abs(mz)),
			Reason:   fmt.Sprintf("%s deviates from the median (robust z-score %.1f)", metric, mz),
		})
	}
	return out
}

func (d *Detector) detectIQR(values []float64, days []int, dates []time.Time, metric string, multiplier float64) []domain.AnomalyDetectionResult {
	q1, q3 := timeseries.Quartiles(values)
	iqr := q3 - q1
	out := []domain.AnomalyDetectionResult{}
	if iqr == 0 {
		return out
	}

	lower, upper := q1-multiplier*iqr, q3+multiplier*iqr
	severeLower, severeUpper := q1-iqrSevere*iqr, q3+iqrSevere*iqr
	mean := timeseries.Mean(values)
	std := timeseries.StandardDeviation(values)

	for i, v := range values {
		if v >= lower && v <= upper {
			continue
		}
		z := 0.0
		if std > 0 {
			z = (v - mean) / std
		}
		severity := domain.SeverityMild
		if v < severeLower || v > severeUpper {
			severity = domain.SeveritySevere
		}
		out = append(out, domain.AnomalyDetectionResult{
			Metric:   metric,
			Day:      days[i],
			Date:     dates[i],
			Value:    v,
			ZScore:   z,
			Severity: severity,
			Reason:   fmt.Sprintf("%s %.1f is outside the expected range [%.1f, %.1f]", metric, v, lower, upper),
		})
	}
	return out
}

// DetectJumps flags abrupt step changes by z-scoring the absolute
// day-over-day deltas. Each jump is reported at the later point.
func (d *Detector) DetectJumps(
	values []float64,
	days []int,
	dates []time.Time,
	metric string,
	threshold float64,
) []domain.AnomalyDetectionResult {
	if !d.validInput(values, days, dates) {
		return []domain.AnomalyDetectionResult{}
	}
	threshold = pick(threshold, d.cfg.JumpThreshold)

	deltas := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		deltas[i-1] = math.Abs(values[i] - values[i-1])
	}

	mean := timeseries.Mean(deltas)
	std := timeseries.StandardDeviation(deltas)
	out := []domain.AnomalyDetectionResult{}
	if std == 0 {
		return out
	}

	for i, delta := range deltas {
		z := (delta - mean) / std
		if z <= threshold {
			continue
		}
		severity := domain.SeverityModerate
		if z > jumpSevere {
			severity = domain.SeveritySevere
		}
		change := values[i+1] - values[i]
		out = append(out, domain.AnomalyDetectionResult{
			Metric:   metric,
			Day:      days[i+1],
			Date:     dates[i+1],
			Value:    values[i+1],
			ZScore:   z,
			Severity: severity,
			Reason:   fmt.Sprintf("%s changed by %+.1f between day %d and day %d", metric, change, days[i], days[i+1]),
		})
	}
	return out
}

// AssessDataQuality rates how much a series can be trusted from its size and spread.
func (d *Detector) AssessDataQuality(values []float64) domain.DataQuality {
	if len(values) < d.cfg.MinSamples {
		return domain.DataQuality{Score: 0, Label: domain.QualityInsufficient}
	}

	sizeScore := math.Min(0.5, float64(len(values))/20*0.5)

	cv := timeseries.CalculateStatistics(values).CoefficientOfVariation()
	var cvScore float64
	switch {
	case cv < 0.1:
		cvScore = 0.5
	case cv < 0.2:
		cvScore = 0.4
	case cv < 0.3:
		cvScore = 0.3
	default:
		cvScore = 0.2
	}

	score := math.Min(1, sizeScore+cvScore)
	return domain.DataQuality{Score: score, Label: qualityLabel(score)}
}

func (d *Detector) validInput(values []float64, days []int, dates []time.Time) bool {
	return len(values) >= d.cfg.MinSamples && len(values) == len(days) && len(values) == len(dates)
}

func qualityLabel(score float64) domain.DataQualityLabel {
	switch {
	case score >= 0.8:
		return domain.QualityExcellent
	case score >= 0.6:
		return domain.QualityGood
	case score >= 0.4:
		return domain.QualityFair
	default:
		return domain.QualityPoor
	}
}

func zSeverity(absZ float64) domain.AnomalySeverity {
	switch {
	case absZ > zSevere:
		return domain.SeveritySevere
	case absZ > zModerate:
		return domain.SeverityModerate
	default:
		return domain.SeverityMild
	}
}

func madSeverity(absZ float64) domain.AnomalySeverity {
	switch {
	case absZ > madSevere:
		return domain.SeveritySevere
	case absZ > madModerate:
		return domain.SeverityModerate
	default:
		return domain.SeverityMild
	}
}

func pick(threshold, fallback float64) float64 {
	if threshold > 0 {
		return threshold
	}
	return fallback
}

func side(z float64) string {
	if z < 0 {
		return "below"
	}
	return "above"
}
