package domain

type CorrelationDirection string

const (
	DirectionPositive CorrelationDirection = "positive"
	DirectionNegative CorrelationDirection = "negative"
	DirectionNone     CorrelationDirection = "none"
)

type LifestyleCorrelationInsight struct {
	Factor         LifestyleFactor      `json:"factor"`
	TargetMetric   string               `json:"target_metric"`
	Correlation    float64              `json:"correlation"`
	SampleCount    int                  `json:"sample_count"`
	Confidence     ConfidenceScore      `json:"confidence"`
	Direction      CorrelationDirection `json:"direction"`
	Interpretation string               `json:"interpretation"`
}

type EffectLevel string

const (
	EffectHighlyEffective EffectLevel = "highly_effective"
	EffectEffective       EffectLevel = "effective"
	EffectNeutral         EffectLevel = "neutral"
	EffectIneffective     EffectLevel = "ineffective"
	EffectHarmful         EffectLevel = "harmful"
)

type ProductEffectInsight struct {
	ProductID           string          `json:"product_id"`
	ProductName         string          `json:"product_name"`
	EffectivenessScore  float64         `json:"effectiveness_score"`
	Confidence          ConfidenceScore `json:"confidence"`
	ContributingFactors []string        `json:"contributing_factors"`
	UsageCount          int             `json:"usage_count"`
	AvgDayInterval      float64         `json:"avg_day_interval"`
	AttributionWeight   *float64        `json:"attribution_weight,omitempty"`
	SoloUsageDays       []int           `json:"solo_usage_days,omitempty"`
	CoUsedProductIDs    []string        `json:"co_used_product_ids,omitempty"`
}

// IsPrimaryContributor is true when the product carries more than 40% of the attributed effect.
func (p ProductEffectInsight) IsPrimaryContributor() bool {
	return p.AttributionWeight != nil && *p.AttributionWeight > 0.4
}

func (p ProductEffectInsight) NeedsSoloUsageValidation() bool {
	return len(p.SoloUsageDays) == 0
}

func (p ProductEffectInsight) EffectLevel() EffectLevel {
	s := p.EffectivenessScore
	switch {
	case s >= 0.5:
		return EffectHighlyEffective
	case s >= 0.2:
		return EffectEffective
	case s > -0.2:
		return EffectNeutral
	case s > -0.5:
		return EffectIneffective
	default:
		return EffectHarmful
	}
}

type SynergyLevel string

const (
	SynergyHigh    SynergyLevel = "high_synergy"
	SynergyMild    SynergyLevel = "mild_synergy"
	SynergyNeutral SynergyLevel = "neutral"
	AntagonismMild SynergyLevel = "mild_antagonism"
	AntagonismHigh SynergyLevel = "high_antagonism"
)

type ProductCombinationInsight struct {
	ProductIDs          []string        `json:"product_ids"`
	CombinedEffectScore float64         `json:"combined_effect_score"`
	SynergyScore        float64         `json:"synergy_score"`
	UsageCount          int             `json:"usage_count"`
	Confidence          ConfidenceScore `json:"confidence"`
}

func (p ProductCombinationInsight) SynergyLevel() SynergyLevel {
	s := p.SynergyScore
	switch {
	case s > 0.3:
		return SynergyHigh
	case s > 0.1:
		return SynergyMild
	case s >= -0.1:
		return SynergyNeutral
	case s >= -0.3:
		return AntagonismMild
	default:
		return AntagonismHigh
	}
}

// ProductOverlap is a product set applied together in at least two check-ins.
type ProductOverlap struct {
	ProductIDs []string `json:"product_ids"`
	Count      int      `json:"count"`
}
