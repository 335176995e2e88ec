package timeseries

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"skinTrack/domain"
)

const DefaultEMAAlpha = 0.3

// MovingAverage is a trailing window mean. The window expands at the start so
// no point looks ahead. Out of range windows return the input unchanged.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || window > len(values) {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		n := min(i+1, window)
		out[i] = sum / float64(n)
	}
	return out
}

// ExponentialMovingAverage smooths values with out[i] = a*v[i] + (1-a)*out[i-1].
func ExponentialMovingAverage(values []float64, alpha float64) []float64 {
	if len(values) == 0 {
		return []float64{}
	}
	alpha = math.Max(0, math.Min(1, alpha))

	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Slope is the OLS slope of values against their 0-based index.
func Slope(values []float64) float64 {
	slope, _, _ := LinearFit(indexes(len(values)), values)
	return slope
}

// RSquared is the coefficient of determination of the index fit.
func RSquared(values []float64) float64 {
	_, _, r2 := LinearFit(indexes(len(values)), values)
	return r2
}

// LinearFit regresses ys on xs. Degenerate inputs yield zeros.
func LinearFit(xs, ys []float64) (slope, intercept, rSquared float64) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		if n == 1 && len(ys) == 1 {
			return 0, ys[0], 0
		}
		return 0, 0, 0
	}
	if Variance(xs) == 0 {
		return 0, Mean(ys), 0
	}

	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	if Variance(ys) == 0 {
		return slope, intercept, 0
	}
	rSquared = math.Max(0, math.Min(1, stat.RSquared(xs, ys, nil, intercept, slope)))
	return slope, intercept, rSquared
}

// Volatility is the coefficient of variation capped at 1.
func Volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := math.Abs(Mean(values))
	if m == 0 {
		return 0
	}
	return math.Min(StandardDeviation(values)/m, 1)
}

// MaxDrawdown returns the largest peak-to-trough decline in percent.
func MaxDrawdown(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak * 100; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Median averages the two middle values of an even-length series.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := sortedCopy(values)
	lower := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	if len(sorted)%2 == 1 {
		return lower
	}
	return (lower + sorted[len(sorted)/2]) / 2
}

// Quartiles returns the empirical first and third quartiles.
func Quartiles(values []float64) (q1, q3 float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := sortedCopy(values)
	return stat.Quantile(0.25, stat.Empirical, sorted, nil), stat.Quantile(0.75, stat.Empirical, sorted, nil)
}

// Variance uses the n-1 denominator.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.Variance(values, nil)
}

func StandardDeviation(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// MedianAbsoluteDeviation is the median of |v - median(values)|.
func MedianAbsoluteDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	med := Median(values)
	dev := make([]float64, len(values))
	for i, v := range values {
		dev[i] = math.Abs(v - med)
	}
	return Median(dev)
}

func CalculateStatistics(values []float64) domain.TimeSeriesStatistics {
	if len(values) == 0 {
		return domain.TimeSeriesStatistics{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return domain.TimeSeriesStatistics{
		Mean:              Mean(values),
		Median:            Median(values),
		Min:               lo,
		Max:               hi,
		StandardDeviation: StandardDeviation(values),
	}
}

// AnalyzeIntervalConsistency measures the gaps, in days, between sorted timestamps.
func AnalyzeIntervalConsistency(dates []time.Time) domain.IntervalConsistency {
	if len(dates) < 2 {
		return domain.IntervalConsistency{}
	}
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].Sub(sorted[i-1]).Hours()/24)
	}
	return domain.IntervalConsistency{
		MeanDays:   Mean(gaps),
		StdDevDays: StandardDeviation(gaps),
	}
}

func indexes(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
