package reliability

import (
	"math"
	"time"

	"github.com/google/uuid"

	"skinTrack/domain"
)

const fullScore = 100

type Scorer struct {
	now func() time.Time
}

func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// WithClock returns a scorer that stamps ComputedAt from now.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

type tally struct {
	lost    int
	reasons []domain.ReliabilityReason
}

func (t *tally) apply(p penalty) {
	if p.points == 0 {
		return
	}
	t.lost += p.points
	if p.reason == "" {
		return
	}
	for _, r := range t.reasons {
		if r == p.reason {
			return
		}
	}
	t.reasons = append(t.reasons, p.reason)
}

// Score rates how trustworthy a single check-in measurement is. It starts at
// 1.0 and subtracts each applicable penalty, flooring at 0.
func (s *Scorer) Score(
	checkIn domain.CheckIn,
	analysis *domain.SkinAnalysis,
	session domain.TrackingSession,
	expectedDay int,
	cameraConsistent bool,
) domain.ReliabilityMetadata {
	t := &tally{reasons: []domain.ReliabilityReason{}}

	if meta := checkIn.PhotoStandardization; meta != nil {
		t.apply(lookup(lightingPenalties, meta.Lighting, unknownLightingPenalty))
		if !meta.FaceDetected {
			t.apply(noFacePenalty)
		}
		if angleOff(*meta) {
			t.apply(anglePenalty)
		}
		t.apply(lookup(distancePenalties, meta.Distance, unknownDistancePenalty))
		t.apply(lookup(sourcePenalties, meta.CaptureSource, unknownSourcePenalty))
		if meta.UserOverride != nil {
			t.apply(lookup(overridePenalties, *meta.UserOverride, unknownOverridePenalty))
		}
	} else {
		t.apply(missingMetadataPenalty)
	}

	offset := scheduleOffsetDays(checkIn.CaptureDate, session.ExpectedDate(expectedDay), session.StartDate.Location())
	switch {
	case offset > longIntervalDays:
		t.apply(longIntervalPenalty)
	case offset >= offScheduleDays:
		t.apply(offSchedulePenalty)
	}

	if analysis != nil && analysis.ConfidenceScore < minAnalysisConfidence {
		t.apply(lowConfidencePenalty)
	}

	if !cameraConsistent {
		t.apply(inconsistentCameraPenalty)
	}

	score := float64(max(0, fullScore-t.lost)) / fullScore
	return domain.ReliabilityMetadata{
		Score:      score,
		Level:      domain.ReliabilityLevelFor(score),
		Reasons:    t.reasons,
		ComputedAt: s.now(),
	}
}

// ScoreAll scores every check-in of a session. Each check-in is measured
// against its nearest standard checkpoint, and camera consistency is judged
// against the session's most common camera position.
func (s *Scorer) ScoreAll(
	session domain.TrackingSession,
	checkIns []domain.CheckIn,
	analyses map[uuid.UUID]domain.SkinAnalysis,
) map[uuid.UUID]domain.ReliabilityMetadata {
	out := make(map[uuid.UUID]domain.ReliabilityMetadata, len(checkIns))
	dominant, ok := dominantCameraPosition(checkIns)

	for _, ci := range checkIns {
		var analysis *domain.SkinAnalysis
		if ci.AnalysisID != nil {
			if a, found := analyses[*ci.AnalysisID]; found {
				analysis = &a
			}
		}

		consistent := true
		if ok && ci.PhotoStandardization != nil {
			consistent = ci.PhotoStandardization.Position() == dominant
		}

		out[ci.ID] = s.Score(ci, analysis, session, domain.NearestCheckpoint(ci.Day), consistent)
	}
	return out
}

func angleOff(m domain.PhotoStandardizationMetadata) bool {
	return math.Abs(m.YawDegrees) > maxYawDegrees ||
		math.Abs(m.PitchDegrees) > maxPitchDegrees ||
		math.Abs(m.RollDegrees) > maxRollDegrees
}

// scheduleOffsetDays counts whole calendar days between two instants in loc.
func scheduleOffsetDays(actual, expected time.Time, loc *time.Location) int {
	a := calendarDay(actual.In(loc))
	e := calendarDay(expected.In(loc))
	days := int(math.Round(a.Sub(e).Hours() / 24))
	if days < 0 {
		return -days
	}
	return days
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var positionOrder = []domain.CameraPosition{domain.CameraFront, domain.CameraBack, domain.CameraUnknown}

func dominantCameraPosition(checkIns []domain.CheckIn) (domain.CameraPosition, bool) {
	counts := make(map[domain.CameraPosition]int)
	for _, ci := range checkIns {
		if ci.PhotoStandardization != nil {
			counts[ci.PhotoStandardization.Position()]++
		}
	}
	if len(counts) == 0 {
		return "", false
	}

	best, bestCount := domain.CameraUnknown, -1
	for _, p := range positionOrder {
		if counts[p] > bestCount {
			best, bestCount = p, counts[p]
		}
	}
	return best, true
}
