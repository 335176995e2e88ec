package domain

import (
	"time"

	"github.com/google/uuid"
)

// CREATE TABLE public.skin_analyses (
//     id               UUID PRIMARY KEY,
//     user_id          BIGINT NOT NULL,
//     overall_score    INT NOT NULL,
//     skin_age         INT NOT NULL,
//     issue_spots      INT, issue_acne INT, issue_pores INT, issue_wrinkles INT,
//     issue_redness    INT, issue_evenness INT, issue_texture INT,
//     confidence_score INT NOT NULL,
//     analyzed_at      TIMESTAMPTZ NOT NULL
// );

// SkinAnalysis is a score snapshot produced by the external scoring service.
type SkinAnalysis struct {
	ID              uuid.UUID   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID          uint        `gorm:"column:user_id;not null" json:"user_id"`
	OverallScore    int         `gorm:"column:overall_score;not null" json:"overall_score"`
	SkinAge         int         `gorm:"column:skin_age;not null" json:"skin_age"`
	IssueScores     IssueScores `gorm:"embedded;embeddedPrefix:issue_" json:"issue_scores"`
	ConfidenceScore int         `gorm:"column:confidence_score;not null" json:"confidence_score"`
	AnalyzedAt      time.Time   `gorm:"column:analyzed_at;not null" json:"analyzed_at"`
}

func (SkinAnalysis) TableName() string {
	return "skin_analyses"
}

// IssueScores are 0-10 severities where higher is worse.
type IssueScores struct {
	Spots    int `gorm:"column:spots" json:"spots" validate:"gte=0,lte=10"`
	Acne     int `gorm:"column:acne" json:"acne" validate:"gte=0,lte=10"`
	Pores    int `gorm:"column:pores" json:"pores" validate:"gte=0,lte=10"`
	Wrinkles int `gorm:"column:wrinkles" json:"wrinkles" validate:"gte=0,lte=10"`
	Redness  int `gorm:"column:redness" json:"redness" validate:"gte=0,lte=10"`
	Evenness int `gorm:"column:evenness" json:"evenness" validate:"gte=0,lte=10"`
	Texture  int `gorm:"column:texture" json:"texture" validate:"gte=0,lte=10"`
}

// IssueNames lists the issue keys in heatmap order.
var IssueNames = []string{"spots", "acne", "pores", "wrinkles", "redness", "evenness", "texture"}

func (s IssueScores) ByName(name string) (int, bool) {
	switch name {
	case "spots":
		return s.Spots, true
	case "acne":
		return s.Acne, true
	case "pores":
		return s.Pores, true
	case "wrinkles":
		return s.Wrinkles, true
	case "redness":
		return s.Redness, true
	case "evenness":
		return s.Evenness, true
	case "texture":
		return s.Texture, true
	}
	return 0, false
}

// ScorePoint joins a check-in to its analysis. CheckInID is the join key for
// every downstream computation; Day is informational only.
type ScorePoint struct {
	CheckInID    uuid.UUID    `json:"check_in_id"`
	Day          int          `json:"day"`
	Date         time.Time    `json:"date"`
	OverallScore float64      `json:"overall_score"`
	SkinAge      float64      `json:"skin_age"`
	IssueScores  *IssueScores `json:"issue_scores,omitempty"`
}
