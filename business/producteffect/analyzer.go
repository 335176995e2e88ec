package producteffect

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"skinTrack/business/timeseries"
	"skinTrack/domain"
)

const (
	minOverlapOccurrences = 2
	maxOverlapResults     = 5
	minJointUsages        = 2

	// mean per-check-in score change that counts as a full (+/-1) effect
	fullEffectDelta = 10.0
)

type Analyzer struct {
	MinUsage int
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{MinUsage: defaultMinUsage}
}

// DetectProductOverlap counts the exact product sets used together in a
// single check-in and returns the most frequent sets seen at least twice.
func (a *Analyzer) DetectProductOverlap(checkIns []domain.CheckIn) []domain.ProductOverlap {
	counts := make(map[string]int)
	sets := make(map[string][]string)
	for _, ci := range checkIns {
		ids := uniqueSorted(ci.UsedProducts)
		if len(ids) < 2 {
			continue
		}
		key := setKey(ids)
		counts[key]++
		sets[key] = ids
	}

	out := []domain.ProductOverlap{}
	for key, n := range counts {
		if n < minOverlapOccurrences {
			continue
		}
		out = append(out, domain.ProductOverlap{ProductIDs: sets[key], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return setKey(out[i].ProductIDs) < setKey(out[j].ProductIDs)
	})
	if len(out) > maxOverlapResults {
		out = out[:maxOverlapResults]
	}
	return out
}

// CalculateAttributionWeights splits credit for the observed score trend
// among products. Weights always sum to 1 for a non-empty product list.
func (a *Analyzer) CalculateAttributionWeights(
	products []string,
	checkIns []domain.CheckIn,
	analyses map[uuid.UUID]domain.SkinAnalysis,
) map[string]float64 {
	ids := uniqueSorted(products)
	weights := make(map[string]float64, len(ids))
	switch len(ids) {
	case 0:
		return weights
	case 1:
		weights[ids[0]] = 1
		return weights
	}

	sorted := byDay(checkIns)
	raw := make(map[string]float64, len(ids))
	total := 0.0
	for _, id := range ids {
		scores := scoresWhere(sorted, analyses, func(ci domain.CheckIn) bool { return ci.UsesProduct(id) })
		contribution := math.Max(0, meanDelta(scores))
		raw[id] = contribution
		total += contribution
	}

	for _, id := range ids {
		if total == 0 {
			weights[id] = 1 / float64(len(ids))
			continue
		}
		weights[id] = raw[id] / total
	}
	return weights
}

// AnalyzeCombinationEffect measures the score trend across check-ins that used
// every product in the set, and compares it with what the products achieve
// outside the combination. It returns nil without enough joint usage.
func (a *Analyzer) AnalyzeCombinationEffect(
	products []string,
	checkIns []domain.CheckIn,
	analyses map[uuid.UUID]domain.SkinAnalysis,
) *domain.ProductCombinationInsight {
	ids := uniqueSorted(products)
	if len(ids) < 2 {
		return nil
	}

	sorted := byDay(checkIns)
	joint := 0
	for _, ci := range sorted {
		if ci.UsesAll(ids) {
			joint++
		}
	}
	if joint < minJointUsages {
		return nil
	}

	jointScores := scoresWhere(sorted, analyses, func(ci domain.CheckIn) bool { return ci.UsesAll(ids) })
	combined := effect(jointScores)

	weights := a.CalculateAttributionWeights(ids, checkIns, analyses)
	expected := 0.0
	for _, id := range ids {
		expected += weights[id] * individualEffect(id, ids, sorted, analyses, combined)
	}

	return &domain.ProductCombinationInsight{
		ProductIDs:          ids,
		CombinedEffectScore: combined,
		SynergyScore:        clamp(combined-expected, -1, 1),
		UsageCount:          joint,
		Confidence:          combinationConfidence(joint, jointScores),
	}
}

// individualEffect is the effect of id on check-ins outside the combination.
// Without two such scores it falls back to the combined effect.
func individualEffect(id string, ids []string, sorted []domain.CheckIn, analyses map[uuid.UUID]domain.SkinAnalysis, combined float64) float64 {
	alone := scoresWhere(sorted, analyses, func(ci domain.CheckIn) bool {
		return ci.UsesProduct(id) && !ci.UsesAll(ids)
	})
	if len(alone) < 2 {
		return combined
	}
	return effect(alone)
}

func combinationConfidence(usages int, scores []float64) domain.ConfidenceScore {
	value := math.Min(0.6, float64(usages)/5*0.6)
	if len(scores) >= 2 {
		stability := math.Max(0, 1-timeseries.StandardDeviation(scores)/20)
		value += stability * 0.4
	}
	return domain.ConfidenceScore{
		Value:       clamp(value, 0, 1),
		SampleCount: usages,
		Method:      "joint-usage",
	}
}

// effect normalizes the mean consecutive score change onto [-1, 1].
func effect(scores []float64) float64 {
	return clamp(meanDelta(scores)/fullEffectDelta, -1, 1)
}

func meanDelta(scores []float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	deltas := make([]float64, len(scores)-1)
	for i := 1; i < len(scores); i++ {
		deltas[i-1] = scores[i] - scores[i-1]
	}
	return timeseries.Mean(deltas)
}

// scoresWhere returns the overall scores of matching check-ins that have an analysis.
func scoresWhere(sorted []domain.CheckIn, analyses map[uuid.UUID]domain.SkinAnalysis, match func(domain.CheckIn) bool) []float64 {
	var out []float64
	for _, ci := range sorted {
		if !match(ci) {
			continue
		}
		if a, ok := analysisFor(ci, analyses); ok {
			out = append(out, float64(a.OverallScore))
		}
	}
	return out
}

func analysisFor(ci domain.CheckIn, analyses map[uuid.UUID]domain.SkinAnalysis) (domain.SkinAnalysis, bool) {
	if ci.AnalysisID == nil {
		return domain.SkinAnalysis{}, false
	}
	a, ok := analyses[*ci.AnalysisID]
	return a, ok
}

func byDay(checkIns []domain.CheckIn) []domain.CheckIn {
	out := make([]domain.CheckIn, len(checkIns))
	copy(out, checkIns)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func setKey(sortedIDs []string) string {
	return strings.Join(sortedIDs, "\x1f")
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
