package report

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"skinTrack/business/anomaly"
	"skinTrack/business/forecast"
	"skinTrack/business/lifestyle"
	"skinTrack/business/producteffect"
	"skinTrack/business/reliability"
	"skinTrack/business/timeseries"
	"skinTrack/domain"
)

const (
	defaultMinReliability = 0.5

	trendWindow    = 3
	trendThreshold = 0.5

	// a reliable-only timeline is shown once this many points are excluded
	excludedPointsCut = 2
	excludedShareCut  = 0.2

	maxAnomalyPenalty = 0.3
	anomalyPenalty    = 0.1
)

var (
	trendMetrics    = []string{domain.MetricOverall, domain.MetricSkinAge, domain.MetricAcne, domain.MetricRedness}
	anomalyMetrics  = []string{domain.MetricOverall, domain.MetricAcne, domain.MetricRedness}
	forecastMetrics = []string{domain.MetricOverall, domain.MetricAcne, domain.MetricRedness, domain.MetricSkinAge}
)

type Config struct {
	Anomaly        anomaly.Config
	Forecast       forecast.Config
	MinReliability float64
}

// Generator composes the analytics engines into a single tracking report.
// It is pure: the same inputs always yield the same report.
type Generator struct {
	minReliability float64
	scorer         *reliability.Scorer
	detector       *anomaly.Detector
	forecaster     *forecast.Engine
	lifestyle      *lifestyle.Analyzer
	products       *producteffect.Analyzer
}

func NewGenerator(cfg Config) *Generator {
	minRel := cfg.MinReliability
	if minRel <= 0 || minRel > 1 {
		minRel = defaultMinReliability
	}
	la := lifestyle.NewAnalyzer()
	la.MinReliability = minRel

	return &Generator{
		minReliability: minRel,
		scorer:         reliability.NewScorer(),
		detector:       anomaly.NewDetector(cfg.Anomaly),
		forecaster:     forecast.NewEngine(cfg.Forecast),
		lifestyle:      la,
		products:       producteffect.NewAnalyzer(),
	}
}

// Generate builds the report for a session as of now.
func (g *Generator) Generate(
	session domain.TrackingSession,
	checkIns []domain.CheckIn,
	analyses map[uuid.UUID]domain.SkinAnalysis,
	now time.Time,
) domain.TrackingReport {
	sorted := make([]domain.CheckIn, len(checkIns))
	copy(sorted, checkIns)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Day < sorted[j].Day })

	rel := g.Reliability(session, sorted, analyses, now)
	timeline := BuildTimeline(sorted, analyses)
	reliable := g.reliableTimeline(timeline, rel)
	policy := displayPolicy(len(timeline), len(reliable))

	chart := timeline
	if policy.Mode == domain.TimelineReliable {
		chart = reliable
	}

	r := domain.TrackingReport{
		SessionID:         session.ID,
		GeneratedAt:       now,
		DurationDays:      domain.DefaultSessionDuration,
		CheckInCount:      len(sorted),
		CompletionRate:    math.Min(1, float64(len(sorted))/float64(len(domain.StandardCheckpoints))),
		Timeline:          timeline,
		ReliableTimeline:  reliable,
		Reliability:       rel,
		TimelinePolicy:    policy,
		Trends:            g.trends(chart),
		Anomalies:         g.anomalies(timeline),
		Forecasts:         g.forecasts(chart),
		Lifestyle:         g.lifestyle.Analyze(sorted, timeline, rel),
		LifestyleCoverage: lifestyle.Coverage(sorted),
		Products:          g.products.Evaluate(sorted, analyses, nil),
		ProductOverlaps:   g.products.DetectProductOverlap(sorted),
		Heatmap:           heatmap(timeline),
	}

	if n := len(timeline); n >= 2 {
		r.ScoreChange = timeline[n-1].OverallScore - timeline[0].OverallScore
		r.SkinAgeChange = timeline[n-1].SkinAge - timeline[0].SkinAge
	}

	r.Combinations = []domain.ProductCombinationInsight{}
	for _, o := range r.ProductOverlaps {
		if c := g.products.AnalyzeCombinationEffect(o.ProductIDs, sorted, analyses); c != nil {
			r.Combinations = append(r.Combinations, *c)
		}
	}

	overall := make([]float64, len(timeline))
	for i, p := range timeline {
		overall[i] = p.OverallScore
	}
	r.DataQuality = g.detector.AssessDataQuality(overall)
	r.Confidence = math.Max(0, r.DataQuality.Score-math.Min(maxAnomalyPenalty, anomalyPenalty*float64(len(r.Anomalies))))

	return r
}

// Reliability prefers the score cached on each check-in and computes the rest.
func (g *Generator) Reliability(
	session domain.TrackingSession,
	checkIns []domain.CheckIn,
	analyses map[uuid.UUID]domain.SkinAnalysis,
	now time.Time,
) map[uuid.UUID]domain.ReliabilityMetadata {
	computed := g.scorer.WithClock(func() time.Time { return now }).ScoreAll(session, checkIns, analyses)
	for _, ci := range checkIns {
		if ci.Reliability != nil {
			computed[ci.ID] = *ci.Reliability
		}
	}
	return computed
}

// BuildTimeline joins check-ins to their analyses. Check-ins without an
// analysis are left out.
func BuildTimeline(checkIns []domain.CheckIn, analyses map[uuid.UUID]domain.SkinAnalysis) []domain.ScorePoint {
	timeline := []domain.ScorePoint{}
	for _, ci := range checkIns {
		if ci.AnalysisID == nil {
			continue
		}
		a, ok := analyses[*ci.AnalysisID]
		if !ok {
			continue
		}
		issues := a.IssueScores
		timeline = append(timeline, domain.ScorePoint{
			CheckInID:    ci.ID,
			Day:          ci.Day,
			Date:         ci.CaptureDate,
			OverallScore: float64(a.OverallScore),
			SkinAge:      float64(a.SkinAge),
			IssueScores:  &issues,
		})
	}
	sort.SliceStable(timeline, func(i, j int) bool { return timeline[i].Day < timeline[j].Day })
	return timeline
}

func (g *Generator) reliableTimeline(timeline []domain.ScorePoint, rel map[uuid.UUID]domain.ReliabilityMetadata) []domain.ScorePoint {
	out := []domain.ScorePoint{}
	for _, p := range timeline {
		if r, ok := rel[p.CheckInID]; ok && r.Score < g.minReliability {
			continue
		}
		out = append(out, p)
	}
	return out
}

func displayPolicy(total, reliable int) domain.TimelineDisplayPolicy {
	excluded := total - reliable
	mode := domain.TimelineAll
	if excluded >= excludedPointsCut || (total > 0 && float64(excluded)/float64(total) > excludedShareCut) {
		mode = domain.TimelineReliable
	}
	return domain.TimelineDisplayPolicy{Mode: mode, TotalPoints: total, ExcludedCount: excluded}
}

func (g *Generator) trends(timeline []domain.ScorePoint) []domain.TrendAnalysis {
	out := []domain.TrendAnalysis{}
	for _, metric := range trendMetrics {
		values := sampleValues(forecast.SeriesFor(timeline, metric))
		if len(values) < 2 {
			continue
		}
		smoothed := timeseries.MovingAverage(values, trendWindow)
		slope := timeseries.Slope(smoothed)

		// higher is better only for the overall score
		effective := slope
		if metric != domain.MetricOverall {
			effective = -slope
		}
		direction := domain.TrendStable
		switch {
		case effective > trendThreshold:
			direction = domain.TrendImproving
		case effective < -trendThreshold:
			direction = domain.TrendDeclining
		}

		out = append(out, domain.TrendAnalysis{
			Metric:      metric,
			Slope:       slope,
			RSquared:    timeseries.RSquared(smoothed),
			Volatility:  timeseries.Volatility(values),
			MaxDrawdown: timeseries.MaxDrawdown(values),
			Direction:   direction,
		})
	}
	return out
}

func (g *Generator) anomalies(timeline []domain.ScorePoint) []domain.AnomalyDetectionResult {
	out := []domain.AnomalyDetectionResult{}
	for _, metric := range anomalyMetrics {
		series := forecast.SeriesFor(timeline, metric)
		values := sampleValues(series)
		days := make([]int, len(series))
		dates := make([]time.Time, len(series))
		for i, s := range series {
			days[i], dates[i] = s.Day, s.Date
		}
		out = append(out, g.detector.Detect(values, days, dates, metric, domain.AnomalyMethodMAD, 0)...)
	}
	return out
}

func (g *Generator) forecasts(timeline []domain.ScorePoint) []domain.ForecastWithAlert {
	out := []domain.ForecastWithAlert{}
	for _, metric := range forecastMetrics {
		if f := g.forecaster.WithAlert(timeline, metric); f != nil {
			out = append(out, *f)
		}
	}
	return out
}

func heatmap(timeline []domain.ScorePoint) []domain.HeatmapCell {
	cells := []domain.HeatmapCell{}
	for _, p := range timeline {
		if p.IssueScores == nil {
			continue
		}
		for _, issue := range domain.IssueNames {
			score, _ := p.IssueScores.ByName(issue)
			cells = append(cells, domain.HeatmapCell{Day: p.Day, Issue: issue, Intensity: float64(score) / 10})
		}
	}
	return cells
}

func sampleValues(series []forecast.Sample) []float64 {
	out := make([]float64, len(series))
	for i, s := range series {
		out[i] = s.Value
	}
	return out
}
