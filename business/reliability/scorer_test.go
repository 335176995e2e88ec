//go:build !integration

package reliability

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinTrack/domain"
)

var (
	sessionStart = time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	fixedNow     = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newTestScorer() *Scorer {
	return NewScorer().WithClock(func() time.Time { return fixedNow })
}

func testSession() domain.TrackingSession {
	return domain.TrackingSession{ID: uuid.New(), StartDate: sessionStart, Status: domain.SessionActive}
}

func optimalMeta() *domain.PhotoStandardizationMetadata {
	return &domain.PhotoStandardizationMetadata{
		Lighting:       domain.LightingOptimal,
		FaceDetected:   true,
		Distance:       domain.DistanceOptimal,
		CaptureSource:  domain.CaptureSourceCamera,
		CameraPosition: domain.CameraFront,
	}
}

func checkInAt(day int, meta *domain.PhotoStandardizationMetadata) domain.CheckIn {
	return domain.CheckIn{
		ID:                   uuid.New(),
		Day:                  day,
		CaptureDate:          sessionStart.AddDate(0, 0, day),
		PhotoStandardization: meta,
	}
}

func TestScore_OptimalCheckInIsFullyReliable(t *testing.T) {
	s := newTestScorer()
	analysis := &domain.SkinAnalysis{ConfidenceScore: 90}

	got := s.Score(checkInAt(7, optimalMeta()), analysis, testSession(), 7, true)

	assert.Equal(t, 1.0, got.Score)
	assert.Equal(t, domain.ReliabilityHigh, got.Level)
	assert.Empty(t, got.Reasons)
	assert.Equal(t, fixedNow, got.ComputedAt)
}

func TestScore_PenaltiesAreAdditive(t *testing.T) {
	s := newTestScorer()
	meta := optimalMeta()
	meta.Lighting = domain.LightingTooDark
	meta.YawDegrees = 25
	meta.Distance = domain.DistanceTooFar

	got := s.Score(checkInAt(0, meta), nil, testSession(), 0, true)

	assert.Equal(t, 0.40, got.Score)
	assert.Equal(t, domain.ReliabilityMedium, got.Level)
	assert.ElementsMatch(t, []domain.ReliabilityReason{
		domain.ReasonLowLight, domain.ReasonAngleOff, domain.ReasonDistanceOff,
	}, got.Reasons)
}

func TestScore_LightingDirectionIsPreserved(t *testing.T) {
	s := newTestScorer()

	bright := optimalMeta()
	bright.Lighting = domain.LightingTooBright
	got := s.Score(checkInAt(0, bright), nil, testSession(), 0, true)
	assert.Equal(t, 0.75, got.Score)
	assert.True(t, got.HasReason(domain.ReasonHighLight))
	assert.False(t, got.HasReason(domain.ReasonLowLight))

	dark := optimalMeta()
	dark.Lighting = domain.LightingTooDark
	got = s.Score(checkInAt(0, dark), nil, testSession(), 0, true)
	assert.True(t, got.HasReason(domain.ReasonLowLight))
	assert.False(t, got.HasReason(domain.ReasonHighLight))

	for _, mild := range []domain.LightingCondition{domain.LightingSlightlyDark, domain.LightingSlightlyBright} {
		meta := optimalMeta()
		meta.Lighting = mild
		got = s.Score(checkInAt(0, meta), nil, testSession(), 0, true)
		assert.Equal(t, 0.90, got.Score, "lighting=%s", mild)
		assert.Empty(t, got.Reasons)
	}
}

func TestScore_IndividualPenalties(t *testing.T) {
	flagged := domain.UserFlaggedIssue

	tests := []struct {
		name    string
		mutate  func(m *domain.PhotoStandardizationMetadata)
		want    float64
		reasons []domain.ReliabilityReason
	}{
		{"no face", func(m *domain.PhotoStandardizationMetadata) { m.FaceDetected = false }, 0.80, []domain.ReliabilityReason{domain.ReasonNoFaceDetected}},
		{"pitch off", func(m *domain.PhotoStandardizationMetadata) { m.PitchDegrees = -21 }, 0.80, []domain.ReliabilityReason{domain.ReasonAngleOff}},
		{"roll off", func(m *domain.PhotoStandardizationMetadata) { m.RollDegrees = 16 }, 0.80, []domain.ReliabilityReason{domain.ReasonAngleOff}},
		{"roll within bounds", func(m *domain.PhotoStandardizationMetadata) { m.RollDegrees = 15 }, 1.0, nil},
		{"too close", func(m *domain.PhotoStandardizationMetadata) { m.Distance = domain.DistanceTooClose }, 0.85, []domain.ReliabilityReason{domain.ReasonDistanceOff}},
		{"slightly far", func(m *domain.PhotoStandardizationMetadata) { m.Distance = domain.DistanceSlightlyFar }, 1.0, nil},
		{"library", func(m *domain.PhotoStandardizationMetadata) { m.CaptureSource = domain.CaptureSourceLibrary }, 0.85, []domain.ReliabilityReason{domain.ReasonMissingLiveConditions}},
		{"user flagged", func(m *domain.PhotoStandardizationMetadata) { m.UserOverride = &flagged }, 0.90, []domain.ReliabilityReason{domain.ReasonUserFlaggedIssue}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			meta := optimalMeta()
			tc.mutate(meta)
			got := newTestScorer().Score(checkInAt(0, meta), nil, testSession(), 0, true)
			assert.InDelta(t, tc.want, got.Score, 1e-9)
			assert.ElementsMatch(t, tc.reasons, got.Reasons)
		})
	}
}

func TestScore_UnrecognizedTagsArePenalized(t *testing.T) {
	odd := domain.UserOverride("retake")

	tests := []struct {
		name    string
		mutate  func(m *domain.PhotoStandardizationMetadata)
		want    float64
		reasons []domain.ReliabilityReason
	}{
		{"lighting", func(m *domain.PhotoStandardizationMetadata) { m.Lighting = "dark" }, 0.75, []domain.ReliabilityReason{domain.ReasonMissingLiveConditions}},
		{"distance", func(m *domain.PhotoStandardizationMetadata) { m.Distance = "far" }, 0.85, []domain.ReliabilityReason{domain.ReasonMissingLiveConditions}},
		{"source", func(m *domain.PhotoStandardizationMetadata) { m.CaptureSource = "upload" }, 0.85, []domain.ReliabilityReason{domain.ReasonMissingLiveConditions}},
		{"empty lighting", func(m *domain.PhotoStandardizationMetadata) { m.Lighting = "" }, 0.75, []domain.ReliabilityReason{domain.ReasonMissingLiveConditions}},
		{"override", func(m *domain.PhotoStandardizationMetadata) { m.UserOverride = &odd }, 0.90, []domain.ReliabilityReason{domain.ReasonUserFlaggedIssue}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			meta := optimalMeta()
			tc.mutate(meta)
			got := newTestScorer().Score(checkInAt(0, meta), nil, testSession(), 0, true)
			assert.InDelta(t, tc.want, got.Score, 1e-9)
			assert.ElementsMatch(t, tc.reasons, got.Reasons)
		})
	}

	meta := optimalMeta()
	meta.Lighting, meta.Distance, meta.CaptureSource = "dark", "far", "upload"
	got := newTestScorer().Score(checkInAt(0, meta), nil, testSession(), 0, true)
	assert.InDelta(t, 0.45, got.Score, 1e-9)
	assert.Equal(t, []domain.ReliabilityReason{domain.ReasonMissingLiveConditions}, got.Reasons)
}

func TestScore_MissingMetadata(t *testing.T) {
	got := newTestScorer().Score(checkInAt(0, nil), nil, testSession(), 0, true)

	assert.Equal(t, 0.70, got.Score)
	assert.Equal(t, domain.ReliabilityHigh, got.Level)
	assert.Equal(t, []domain.ReliabilityReason{domain.ReasonMissingLiveConditions}, got.Reasons)
}

func TestScore_ScheduleOffset(t *testing.T) {
	s := newTestScorer()
	session := testSession()

	tests := []struct {
		name       string
		offsetDays int
		want       float64
		long       bool
	}{
		{"on schedule", 0, 1.0, false},
		{"one day late", 1, 0.95, false},
		{"three days early", -3, 0.95, false},
		{"four days late", 4, 0.90, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ci := checkInAt(7, optimalMeta())
			ci.CaptureDate = session.StartDate.AddDate(0, 0, 7+tc.offsetDays)
			got := s.Score(ci, nil, session, 7, true)
			assert.InDelta(t, tc.want, got.Score, 1e-9)
			assert.Equal(t, tc.long, got.HasReason(domain.ReasonLongInterval))
		})
	}
}

func TestScore_AnalysisConfidenceAndCamera(t *testing.T) {
	s := newTestScorer()

	low := s.Score(checkInAt(0, optimalMeta()), &domain.SkinAnalysis{ConfidenceScore: 49}, testSession(), 0, true)
	assert.Equal(t, 0.80, low.Score)
	assert.True(t, low.HasReason(domain.ReasonLowAnalysisConfidence))

	boundary := s.Score(checkInAt(0, optimalMeta()), &domain.SkinAnalysis{ConfidenceScore: 50}, testSession(), 0, true)
	assert.Equal(t, 1.0, boundary.Score)

	inconsistent := s.Score(checkInAt(0, optimalMeta()), nil, testSession(), 0, false)
	assert.Equal(t, 0.90, inconsistent.Score)
	assert.True(t, inconsistent.HasReason(domain.ReasonInconsistentCameraPosition))
}

func TestScore_FloorsAtZero(t *testing.T) {
	flagged := domain.UserFlaggedIssue
	meta := &domain.PhotoStandardizationMetadata{
		Lighting:      domain.LightingTooDark,
		FaceDetected:  false,
		YawDegrees:    25,
		Distance:      domain.DistanceTooFar,
		CaptureSource: domain.CaptureSourceLibrary,
		UserOverride:  &flagged,
	}
	ci := checkInAt(7, meta)
	ci.CaptureDate = sessionStart.AddDate(0, 0, 17)

	got := newTestScorer().Score(ci, &domain.SkinAnalysis{ConfidenceScore: 30}, testSession(), 7, false)

	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, domain.ReliabilityLow, got.Level)
	assert.Len(t, got.Reasons, 9)
}

func TestScore_LevelBoundaries(t *testing.T) {
	s := newTestScorer()

	medium := optimalMeta()
	medium.Lighting = domain.LightingTooDark
	medium.YawDegrees = 25
	got := s.Score(checkInAt(0, medium), nil, testSession(), 0, true)
	assert.Equal(t, 0.55, got.Score)
	assert.Equal(t, domain.ReliabilityMedium, got.Level)

	low := optimalMeta()
	low.Lighting = domain.LightingTooDark
	low.FaceDetected = false
	low.YawDegrees = 25
	got = s.Score(checkInAt(0, low), nil, testSession(), 0, true)
	assert.Equal(t, 0.35, got.Score)
	assert.Equal(t, domain.ReliabilityLow, got.Level)
}

func TestScoreAll(t *testing.T) {
	s := newTestScorer()
	session := testSession()

	back := optimalMeta()
	back.CameraPosition = domain.CameraBack

	analysisID := uuid.New()
	ci0 := checkInAt(0, optimalMeta())
	ci0.AnalysisID = &analysisID
	ci1 := checkInAt(6, optimalMeta()) // nearest checkpoint is 7, captured one day early
	ci2 := checkInAt(14, back)
	ci3 := checkInAt(21, nil)

	analyses := map[uuid.UUID]domain.SkinAnalysis{
		analysisID: {ID: analysisID, ConfidenceScore: 40},
	}

	got := s.ScoreAll(session, []domain.CheckIn{ci0, ci1, ci2, ci3}, analyses)
	require.Len(t, got, 4)

	assert.Equal(t, 0.80, got[ci0.ID].Score)
	assert.True(t, got[ci0.ID].HasReason(domain.ReasonLowAnalysisConfidence))

	assert.Equal(t, 0.95, got[ci1.ID].Score)
	assert.Empty(t, got[ci1.ID].Reasons)

	assert.Equal(t, 0.90, got[ci2.ID].Score)
	assert.True(t, got[ci2.ID].HasReason(domain.ReasonInconsistentCameraPosition))

	assert.Equal(t, 0.70, got[ci3.ID].Score)
	assert.False(t, got[ci3.ID].HasReason(domain.ReasonInconsistentCameraPosition))
}

func TestNearestCheckpoint(t *testing.T) {
	assert.Equal(t, 0, domain.NearestCheckpoint(0))
	assert.Equal(t, 0, domain.NearestCheckpoint(3))
	assert.Equal(t, 7, domain.NearestCheckpoint(4))
	assert.Equal(t, 28, domain.NearestCheckpoint(40))
}
