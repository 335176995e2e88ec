package producteffect

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"skinTrack/business/timeseries"
	"skinTrack/domain"
)

const (
	defaultMinUsage = 2

	weightScoreChange = 0.5
	weightFeeling     = 0.3

	// ideal spacing between usages, in days
	idealIntervalMin = 1.0
	idealIntervalMax = 3.0
)

type usage struct {
	id       string
	days     []int
	scores   []float64
	feelings []float64
	solo     []int
	coUsed   map[string]struct{}
}

// Evaluate scores every product that was used in at least MinUsage analysed
// check-ins, combining the score trend with self-reported feeling.
func (a *Analyzer) Evaluate(
	checkIns []domain.CheckIn,
	analyses map[uuid.UUID]domain.SkinAnalysis,
	productNames map[string]string,
) []domain.ProductEffectInsight {
	usages := make(map[string]*usage)
	var order []string

	for _, ci := range byDay(checkIns) {
		analysis, ok := analysisFor(ci, analyses)
		if !ok {
			continue
		}
		ids := uniqueSorted(ci.UsedProducts)
		for _, id := range ids {
			u, seen := usages[id]
			if !seen {
				u = &usage{id: id, coUsed: map[string]struct{}{}}
				usages[id] = u
				order = append(order, id)
			}
			u.days = append(u.days, ci.Day)
			u.scores = append(u.scores, float64(analysis.OverallScore))
			if ci.Feeling != nil {
				u.feelings = append(u.feelings, ci.Feeling.Score())
			}
			if len(ids) == 1 {
				u.solo = append(u.solo, ci.Day)
			}
			for _, other := range ids {
				if other != id {
					u.coUsed[other] = struct{}{}
				}
			}
		}
	}

	weights := a.CalculateAttributionWeights(order, checkIns, analyses)

	insights := []domain.ProductEffectInsight{}
	for _, id := range order {
		u := usages[id]
		if len(u.days) < a.MinUsage {
			continue
		}

		scoreChange := clamp(meanDelta(u.scores)/100, -1, 1)
		feeling := timeseries.Mean(u.feelings)
		effectiveness := clamp(weightScoreChange*scoreChange+weightFeeling*feeling, -1, 1)

		interval := u.avgInterval()
		variability := populationStdDev(u.scores)

		name := id
		if n, ok := productNames[id]; ok && n != "" {
			name = n
		}

		insight := domain.ProductEffectInsight{
			ProductID:           id,
			ProductName:         name,
			EffectivenessScore:  effectiveness,
			Confidence:          effectConfidence(len(u.days), variability, interval),
			ContributingFactors: contributingFactors(len(u.days), scoreChange, feeling, variability),
			UsageCount:          len(u.days),
			AvgDayInterval:      interval,
			SoloUsageDays:       u.solo,
			CoUsedProductIDs:    keys(u.coUsed),
		}
		if w, ok := weights[id]; ok {
			insight.AttributionWeight = &w
		}
		insights = append(insights, insight)
	}

	sort.SliceStable(insights, func(i, j int) bool {
		if insights[i].EffectivenessScore != insights[j].EffectivenessScore {
			return insights[i].EffectivenessScore > insights[j].EffectivenessScore
		}
		return insights[i].ProductID < insights[j].ProductID
	})
	return insights
}

func (u *usage) avgInterval() float64 {
	if len(u.days) < 2 {
		return 0
	}
	gaps := make([]float64, len(u.days)-1)
	for i := 1; i < len(u.days); i++ {
		gaps[i-1] = float64(u.days[i] - u.days[i-1])
	}
	return timeseries.Mean(gaps)
}

func effectConfidence(usageCount int, variability, avgInterval float64) domain.ConfidenceScore {
	value := math.Min(0.4, float64(usageCount)/5*0.4)
	value += math.Max(0, 1-variability/20) * 0.3

	var intervalScore float64
	switch {
	case avgInterval >= idealIntervalMin && avgInterval <= idealIntervalMax:
		intervalScore = 1
	case avgInterval < idealIntervalMin:
		intervalScore = 0.5
	default:
		intervalScore = math.Max(0, 1-(avgInterval-idealIntervalMax)/7)
	}
	value += intervalScore * 0.3

	return domain.ConfidenceScore{
		Value:       clamp(value, 0, 1),
		SampleCount: usageCount,
		Method:      "bayes-lite",
	}
}

func contributingFactors(usageCount int, scoreChange, feeling, variability float64) []string {
	var factors []string
	switch {
	case scoreChange > 0.3:
		factors = append(factors, "skin score improved noticeably")
	case scoreChange < -0.3:
		factors = append(factors, "skin score declined")
	}
	switch {
	case feeling > 0.5:
		factors = append(factors, "mostly positive self-reported feeling")
	case feeling < -0.5:
		factors = append(factors, "mostly negative self-reported feeling")
	}
	if usageCount >= 5 {
		factors = append(factors, "enough usages")
	} else {
		factors = append(factors, "few usages")
	}
	switch {
	case variability < 5:
		factors = append(factors, "stable results")
	case variability > 15:
		factors = append(factors, "results fluctuate")
	}
	return factors
}

func populationStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := timeseries.Mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
