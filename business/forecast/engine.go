package forecast

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"skinTrack/domain"
)

// Sample is one observed value of a metric.
type Sample struct {
	Day   int
	Date  time.Time
	Value float64
}

type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// SeriesFor extracts metric from the timeline, ordered by day. Sensitivity is
// read from the redness score. Unknown metrics yield nil.
func SeriesFor(timeline []domain.ScorePoint, metric string) []Sample {
	var out []Sample
	for _, p := range timeline {
		var v float64
		switch metric {
		case domain.MetricOverall:
			v = p.OverallScore
		case domain.MetricSkinAge:
			v = p.SkinAge
		case domain.MetricAcne, domain.MetricRedness, domain.MetricSensitivity:
			if p.IssueScores == nil {
				continue
			}
			name := metric
			if metric == domain.MetricSensitivity {
				name = domain.MetricRedness
			}
			score, _ := p.IssueScores.ByName(name)
			v = float64(score)
		default:
			return nil
		}
		out = append(out, Sample{Day: p.Day, Date: p.Date, Value: v})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// Forecast fits a least-squares line over day offsets and projects it
// horizon days past the last observation. The first point is the fitted value
// on the last observed day. It returns nil with fewer than three samples, a
// non-positive horizon, or samples that all share one day.
func (e *Engine) Forecast(history []Sample, metric string, horizon int) *domain.TrendForecast {
	if len(history) < minSamples || horizon <= 0 {
		return nil
	}

	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	for i, s := range history {
		xs[i] = float64(s.Day)
		ys[i] = s.Value
	}
	if stat.Variance(xs, nil) == 0 {
		return nil
	}

	n := float64(len(history))
	meanX := stat.Mean(xs, nil)
	sxx := stat.Variance(xs, nil) * (n - 1)
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	var ssRes float64
	for i := range xs {
		r := ys[i] - (intercept + slope*xs[i])
		ssRes += r * r
	}
	se := math.Sqrt(ssRes / (n - 2))
	rSquared := 0.0
	if stat.Variance(ys, nil) > 0 {
		rSquared = math.Max(0, stat.RSquared(xs, ys, nil, intercept, slope))
	}

	last := history[len(history)-1]
	for _, s := range history {
		if s.Day > last.Day {
			last = s
		}
	}

	lo, hi := scaleOf(metric)
	t := e.cfg.tValue(n - 2)
	points := make([]domain.ForecastPoint, 0, horizon+1)
	for k := 0; k <= horizon; k++ {
		x := float64(last.Day + k)
		value := intercept + slope*x
		margin := t * se * math.Sqrt(1+1/n+(x-meanX)*(x-meanX)/sxx)
		points = append(points, domain.ForecastPoint{
			Day:        last.Day + k,
			Date:       last.Date.AddDate(0, 0, k),
			Value:      clamp(value, lo, hi),
			LowerBound: clamp(value-margin, lo, hi),
			UpperBound: clamp(value+margin, lo, hi),
		})
	}

	confidence := rSquared*0.4 + math.Min(1, n/10)*0.3 + math.Max(0, 1-se/10)*0.3
	return &domain.TrendForecast{
		Metric: metric,
		Days:   horizon,
		Points: points,
		Confidence: domain.ConfidenceScore{
			Value:       clamp(confidence, 0, 1),
			SampleCount: len(history),
			Method:      "linear-regression",
		},
	}
}

// SensitivityForecast projects sensitivity and shifts every point by the
// seasonal offset of its date.
func (e *Engine) SensitivityForecast(history []Sample, horizon int) *domain.TrendForecast {
	f := e.Forecast(history, domain.MetricSensitivity, horizon)
	if f == nil {
		return nil
	}
	lo, hi := scaleOf(domain.MetricSensitivity)
	for i := range f.Points {
		off := seasonalOffset(f.Points[i].Date)
		f.Points[i].Value = clamp(f.Points[i].Value+off, lo, hi)
		f.Points[i].LowerBound = clamp(f.Points[i].LowerBound+off, lo, hi)
		f.Points[i].UpperBound = clamp(f.Points[i].UpperBound+off, lo, hi)
	}
	return f
}

// WithAlert forecasts metric over its configured horizon and attaches the
// risk alert. Sensitivity gets the seasonal adjustment.
func (e *Engine) WithAlert(timeline []domain.ScorePoint, metric string) *domain.ForecastWithAlert {
	history := SeriesFor(timeline, metric)
	horizon := e.cfg.HorizonFor(metric)

	var f *domain.TrendForecast
	if metric == domain.MetricSensitivity {
		f = e.SensitivityForecast(history, horizon)
	} else {
		f = e.Forecast(history, metric, horizon)
	}
	if f == nil {
		return nil
	}
	return &domain.ForecastWithAlert{Forecast: *f, Alert: f.RiskAlert()}
}

// seasonalOffset uses northern-hemisphere meteorological seasons.
func seasonalOffset(t time.Time) float64 {
	switch t.Month() {
	case time.March, time.April, time.May:
		return 0.5
	case time.June, time.July, time.August:
		return -0.3
	case time.September, time.October, time.November:
		return 0.2
	default:
		return 0.8
	}
}

func scaleOf(metric string) (lo, hi float64) {
	switch metric {
	case domain.MetricAcne, domain.MetricRedness, domain.MetricSensitivity:
		return 0, 10
	default:
		return 0, 100
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
