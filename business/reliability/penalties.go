package reliability

import "skinTrack/domain"

// penalty is one row of the reliability table, in hundredths of a point so
// stacked deductions land exactly on level boundaries. An empty reason means
// the deduction applies without a reason code.
type penalty struct {
	points int
	reason domain.ReliabilityReason
}

var noPenalty = penalty{}

// Bright and dark carry different reasons; never fold them together.
var lightingPenalties = map[domain.LightingCondition]penalty{
	domain.LightingTooDark:        {25, domain.ReasonLowLight},
	domain.LightingSlightlyDark:   {10, ""},
	domain.LightingOptimal:        noPenalty,
	domain.LightingSlightlyBright: {10, ""},
	domain.LightingTooBright:      {25, domain.ReasonHighLight},
}

var distancePenalties = map[domain.DistanceRating]penalty{
	domain.DistanceTooFar:        {15, domain.ReasonDistanceOff},
	domain.DistanceSlightlyFar:   noPenalty,
	domain.DistanceOptimal:       noPenalty,
	domain.DistanceSlightlyClose: noPenalty,
	domain.DistanceTooClose:      {15, domain.ReasonDistanceOff},
}

var sourcePenalties = map[domain.CaptureSource]penalty{
	domain.CaptureSourceCamera:  noPenalty,
	domain.CaptureSourceLibrary: {15, domain.ReasonMissingLiveConditions},
}

var overridePenalties = map[domain.UserOverride]penalty{
	domain.UserFlaggedIssue: {10, domain.ReasonUserFlaggedIssue},
}

// Tags outside the tables cannot be checked, so they cost as much as the
// worst recognized value and count as missing live conditions.
var (
	unknownLightingPenalty = penalty{25, domain.ReasonMissingLiveConditions}
	unknownDistancePenalty = penalty{15, domain.ReasonMissingLiveConditions}
	unknownSourcePenalty   = penalty{15, domain.ReasonMissingLiveConditions}
	unknownOverridePenalty = penalty{10, domain.ReasonUserFlaggedIssue}
)

func lookup[K comparable](table map[K]penalty, key K, unknown penalty) penalty {
	if p, ok := table[key]; ok {
		return p
	}
	return unknown
}

var (
	noFacePenalty             = penalty{20, domain.ReasonNoFaceDetected}
	anglePenalty              = penalty{20, domain.ReasonAngleOff}
	missingMetadataPenalty    = penalty{30, domain.ReasonMissingLiveConditions}
	longIntervalPenalty       = penalty{10, domain.ReasonLongInterval}
	offSchedulePenalty        = penalty{5, ""}
	lowConfidencePenalty      = penalty{20, domain.ReasonLowAnalysisConfidence}
	inconsistentCameraPenalty = penalty{10, domain.ReasonInconsistentCameraPosition}
)

const (
	maxYawDegrees   = 20.0
	maxPitchDegrees = 20.0
	maxRollDegrees  = 15.0

	// schedule offsets in whole days
	longIntervalDays = 3
	offScheduleDays  = 1

	minAnalysisConfidence = 50
)
