package domain

type LightingCondition string

const (
	LightingTooDark        LightingCondition = "too_dark"
	LightingSlightlyDark   LightingCondition = "slightly_dark"
	LightingOptimal        LightingCondition = "optimal"
	LightingSlightlyBright LightingCondition = "slightly_bright"
	LightingTooBright      LightingCondition = "too_bright"
)

type DistanceRating string

const (
	DistanceTooFar        DistanceRating = "too_far"
	DistanceSlightlyFar   DistanceRating = "slightly_far"
	DistanceOptimal       DistanceRating = "optimal"
	DistanceSlightlyClose DistanceRating = "slightly_close"
	DistanceTooClose      DistanceRating = "too_close"
)

type CaptureSource string

const (
	CaptureSourceCamera  CaptureSource = "camera"
	CaptureSourceLibrary CaptureSource = "library"
)

type UserOverride string

const UserFlaggedIssue UserOverride = "user_flagged_issue"

type CameraPosition string

const (
	CameraFront   CameraPosition = "front"
	CameraBack    CameraPosition = "back"
	CameraUnknown CameraPosition = "unknown"
)

// PhotoStandardizationMetadata is produced by the capture pipeline and
// describes the conditions a check-in photo was taken under.
type PhotoStandardizationMetadata struct {
	Lighting       LightingCondition `json:"lighting" validate:"required,oneof=too_dark slightly_dark optimal slightly_bright too_bright"`
	FaceDetected   bool              `json:"face_detected"`
	YawDegrees     float64           `json:"yaw_degrees"`
	PitchDegrees   float64           `json:"pitch_degrees"`
	RollDegrees    float64           `json:"roll_degrees"`
	Distance       DistanceRating    `json:"distance" validate:"required,oneof=too_far slightly_far optimal slightly_close too_close"`
	CaptureSource  CaptureSource     `json:"capture_source" validate:"required,oneof=camera library"`
	CameraPosition CameraPosition    `json:"camera_position,omitempty"`
	UserOverride   *UserOverride     `json:"user_override,omitempty" validate:"omitempty,oneof=user_flagged_issue"`
}

// Position returns the camera position, treating an empty value as unknown.
func (m PhotoStandardizationMetadata) Position() CameraPosition {
	if m.CameraPosition == "" {
		return CameraUnknown
	}
	return m.CameraPosition
}
