package domain

import (
	"time"

	"github.com/google/uuid"
)

type Feeling string

const (
	FeelingBetter Feeling = "better"
	FeelingSame   Feeling = "same"
	FeelingWorse  Feeling = "worse"
)

// Score maps a self-reported feeling onto [-1, 1].
func (f Feeling) Score() float64 {
	switch f {
	case FeelingBetter:
		return 1
	case FeelingWorse:
		return -1
	default:
		return 0
	}
}

type CheckIn struct {
	ID                   uuid.UUID                     `json:"id"`
	SessionID            uuid.UUID                     `json:"session_id"`
	Day                  int                           `json:"day"`
	CaptureDate          time.Time                     `json:"capture_date"`
	PhotoPath            *string                       `json:"photo_path,omitempty"`
	AnalysisID           *uuid.UUID                    `json:"analysis_id,omitempty"`
	UsedProducts         []string                      `json:"used_products"`
	Notes                *string                       `json:"notes,omitempty"`
	Feeling              *Feeling                      `json:"feeling,omitempty"`
	PhotoStandardization *PhotoStandardizationMetadata `json:"photo_standardization,omitempty"`
	Lifestyle            *LifestyleFactors             `json:"lifestyle,omitempty"`
	Reliability          *ReliabilityMetadata          `json:"reliability,omitempty"`
}

// UsesProduct reports whether productID was applied at this check-in.
func (c CheckIn) UsesProduct(productID string) bool {
	for _, p := range c.UsedProducts {
		if p == productID {
			return true
		}
	}
	return false
}

// UsesAll reports whether every product in ids was applied together.
func (c CheckIn) UsesAll(ids []string) bool {
	for _, id := range ids {
		if !c.UsesProduct(id) {
			return false
		}
	}
	return true
}
