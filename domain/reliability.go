package domain

import "time"

type ReliabilityLevel string

const (
	ReliabilityLow    ReliabilityLevel = "low"
	ReliabilityMedium ReliabilityLevel = "medium"
	ReliabilityHigh   ReliabilityLevel = "high"
)

// ReliabilityLevelFor buckets a score: >=0.7 high, >=0.4 medium, otherwise low.
func ReliabilityLevelFor(score float64) ReliabilityLevel {
	switch {
	case score >= 0.7:
		return ReliabilityHigh
	case score >= 0.4:
		return ReliabilityMedium
	default:
		return ReliabilityLow
	}
}

type ReliabilityReason string

const (
	ReasonLowLight                   ReliabilityReason = "low_light"
	ReasonHighLight                  ReliabilityReason = "high_light"
	ReasonNoFaceDetected             ReliabilityReason = "no_face_detected"
	ReasonAngleOff                   ReliabilityReason = "angle_off"
	ReasonDistanceOff                ReliabilityReason = "distance_off"
	ReasonMissingLiveConditions      ReliabilityReason = "missing_live_conditions"
	ReasonUserFlaggedIssue           ReliabilityReason = "user_flagged_issue"
	ReasonLongInterval               ReliabilityReason = "long_interval"
	ReasonLowAnalysisConfidence      ReliabilityReason = "low_analysis_confidence"
	ReasonInconsistentCameraPosition ReliabilityReason = "inconsistent_camera_position"
)

type ReliabilityMetadata struct {
	Score      float64             `json:"score"`
	Level      ReliabilityLevel    `json:"level"`
	Reasons    []ReliabilityReason `json:"reasons"`
	ComputedAt time.Time           `json:"computed_at"`
}

func (r ReliabilityMetadata) HasReason(reason ReliabilityReason) bool {
	for _, rr := range r.Reasons {
		if rr == reason {
			return true
		}
	}
	return false
}
