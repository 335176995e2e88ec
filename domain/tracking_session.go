package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// standard checkpoint days of a 28 day observation window
var StandardCheckpoints = []int{0, 7, 14, 21, 28}

const DefaultSessionDuration = 28

type TrackingSession struct {
	ID             uuid.UUID     `json:"id"`
	UserID         uint          `json:"user_id"`
	StartDate      time.Time     `json:"start_date"`
	TargetProducts []string      `json:"target_products"`
	Status         SessionStatus `json:"status"`
	CheckIns       []CheckIn     `json:"check_ins,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// IsTerminal reports whether the session no longer accepts check-ins.
func (s TrackingSession) IsTerminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionAbandoned
}

// ExpectedDate returns the calendar date a checkpoint day falls on.
func (s TrackingSession) ExpectedDate(day int) time.Time {
	return s.StartDate.AddDate(0, 0, day)
}

// NearestCheckpoint maps an arbitrary day offset to the closest standard checkpoint.
func NearestCheckpoint(day int) int {
	best := StandardCheckpoints[0]
	bestDiff := abs(day - best)
	for _, cp := range StandardCheckpoints[1:] {
		if d := abs(day - cp); d < bestDiff {
			best, bestDiff = cp, d
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
