package lifestyle

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"skinTrack/business/timeseries"
	"skinTrack/domain"
)

const (
	defaultMinReliability = 0.5
	defaultMinCorrelation = 0.3
	defaultMinPairs       = 2
	minCheckIns           = 3

	// reliability assumed when no pair carries a reliability entry
	fallbackReliability = 0.5

	targetMetric = "overallScore"
)

type Analyzer struct {
	MinReliability float64
	MinCorrelation float64
	MinPairs       int
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		MinReliability: defaultMinReliability,
		MinCorrelation: defaultMinCorrelation,
		MinPairs:       defaultMinPairs,
	}
}

type pair struct {
	factor      float64
	delta       float64
	reliability float64
	hasRel      bool
}

// Analyze correlates each lifestyle factor recorded at a check-in with the
// score change to the next reliable check-in. Scores are joined by check-in id.
func (a *Analyzer) Analyze(
	checkIns []domain.CheckIn,
	timeline []domain.ScorePoint,
	reliability map[uuid.UUID]domain.ReliabilityMetadata,
) []domain.LifestyleCorrelationInsight {
	insights := []domain.LifestyleCorrelationInsight{}
	if len(checkIns) < minCheckIns || len(timeline) == 0 {
		return insights
	}

	scores := make(map[uuid.UUID]float64, len(timeline))
	for _, p := range timeline {
		scores[p.CheckInID] = p.OverallScore
	}

	usable := a.reliableSorted(checkIns, reliability)

	for _, factor := range domain.TrackedFactors {
		pairs := collectPairs(usable, scores, reliability, factor)
		if len(pairs) < a.MinPairs {
			continue
		}

		xs := make([]float64, len(pairs))
		ys := make([]float64, len(pairs))
		for i, p := range pairs {
			xs[i], ys[i] = p.factor, p.delta
		}
		r := timeseries.SpearmanCorrelation(xs, ys)
		if math.Abs(r) < a.MinCorrelation {
			continue
		}

		direction := directionOf(r)
		insights = append(insights, domain.LifestyleCorrelationInsight{
			Factor:         factor,
			TargetMetric:   targetMetric,
			Correlation:    r,
			SampleCount:    len(pairs),
			Confidence:     confidenceFor(pairs),
			Direction:      direction,
			Interpretation: interpret(factor, direction),
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return math.Abs(insights[i].Correlation) > math.Abs(insights[j].Correlation)
	})
	return insights
}

// Coverage counts, per factor, how many check-ins recorded a value.
func Coverage(checkIns []domain.CheckIn) map[domain.LifestyleFactor]int {
	out := make(map[domain.LifestyleFactor]int, len(domain.TrackedFactors))
	for _, f := range domain.TrackedFactors {
		out[f] = 0
	}
	for _, ci := range checkIns {
		if ci.Lifestyle == nil {
			continue
		}
		for _, f := range domain.TrackedFactors {
			if _, ok := ci.Lifestyle.Value(f); ok {
				out[f]++
			}
		}
	}
	return out
}

// reliableSorted drops check-ins scored below the reliability cut and orders
// the rest by day. A check-in without a reliability entry is kept.
func (a *Analyzer) reliableSorted(checkIns []domain.CheckIn, reliability map[uuid.UUID]domain.ReliabilityMetadata) []domain.CheckIn {
	out := make([]domain.CheckIn, 0, len(checkIns))
	for _, ci := range checkIns {
		if r, ok := reliability[ci.ID]; ok && r.Score < a.MinReliability {
			continue
		}
		out = append(out, ci)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

func collectPairs(
	sorted []domain.CheckIn,
	scores map[uuid.UUID]float64,
	reliability map[uuid.UUID]domain.ReliabilityMetadata,
	factor domain.LifestyleFactor,
) []pair {
	var pairs []pair
	for i := 0; i+1 < len(sorted); i++ {
		cur, next := sorted[i], sorted[i+1]
		if cur.Lifestyle == nil {
			continue
		}
		value, ok := cur.Lifestyle.Value(factor)
		if !ok {
			continue
		}
		curScore, ok1 := scores[cur.ID]
		nextScore, ok2 := scores[next.ID]
		if !ok1 || !ok2 {
			continue
		}

		p := pair{factor: value, delta: nextScore - curScore}
		if r, ok := reliability[cur.ID]; ok {
			p.reliability, p.hasRel = r.Score, true
		}
		pairs = append(pairs, p)
	}
	return pairs
}

func confidenceFor(pairs []pair) domain.ConfidenceScore {
	n := float64(len(pairs))
	sum, count := 0.0, 0
	for _, p := range pairs {
		if p.hasRel {
			sum += p.reliability
			count++
		}
	}
	avgRel := fallbackReliability
	if count > 0 {
		avgRel = sum / float64(count)
	}

	value := math.Min(0.7, n/8*0.7) + avgRel*0.3
	return domain.ConfidenceScore{
		Value:       math.Min(1, value),
		SampleCount: len(pairs),
		Method:      "spearman",
	}
}

// directionOf reads only the sign; Analyze has already applied the
// strength cutoff.
func directionOf(r float64) domain.CorrelationDirection {
	switch {
	case r > 0:
		return domain.DirectionPositive
	case r < 0:
		return domain.DirectionNegative
	default:
		return domain.DirectionNone
	}
}

func interpret(factor domain.LifestyleFactor, direction domain.CorrelationDirection) string {
	name := factor.DisplayName()
	const caveat = " This is an observed association, not evidence that one causes the other."
	switch direction {
	case domain.DirectionPositive:
		return fmt.Sprintf("Higher %s tended to be followed by an improving skin score.", name) + caveat
	case domain.DirectionNegative:
		return fmt.Sprintf("Higher %s tended to be followed by a declining skin score.", name) + caveat
	default:
		return fmt.Sprintf("No clear pattern between %s and your skin score.", name) + caveat
	}
}
