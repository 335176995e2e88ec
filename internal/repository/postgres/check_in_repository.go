package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skinTrack/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CREATE TABLE public.check_ins (
//     id                    UUID PRIMARY KEY,
//     session_id            UUID NOT NULL REFERENCES tracking_sessions(id),
//     day                   INT NOT NULL,
//     capture_date          TIMESTAMPTZ NOT NULL,
//     photo_path            TEXT,
//     analysis_id           UUID REFERENCES skin_analyses(id),
//     used_products         JSONB NOT NULL DEFAULT '[]',
//     notes                 TEXT,              -- AES-CBC ciphertext, base64
//     feeling               VARCHAR(8),
//     photo_standardization JSONB NOT NULL DEFAULT 'null',
//     lifestyle             JSONB NOT NULL DEFAULT 'null',
//     reliability           JSONB NOT NULL DEFAULT 'null',
//     created_at            TIMESTAMPTZ NOT NULL,
//     updated_at            TIMESTAMPTZ NOT NULL
// );

type checkInRow struct {
	ID                   uuid.UUID                                                `gorm:"column:id;type:uuid;primaryKey"`
	SessionID            uuid.UUID                                                `gorm:"column:session_id;type:uuid;not null;index"`
	Day                  int                                                      `gorm:"column:day;not null"`
	CaptureDate          time.Time                                                `gorm:"column:capture_date;not null"`
	PhotoPath            *string                                                  `gorm:"column:photo_path"`
	AnalysisID           *uuid.UUID                                               `gorm:"column:analysis_id;type:uuid"`
	UsedProducts         datatypes.JSONSlice[string]                              `gorm:"column:used_products;not null"`
	Notes                *string                                                  `gorm:"column:notes"`
	Feeling              *string                                                  `gorm:"column:feeling"`
	PhotoStandardization datatypes.JSONType[*domain.PhotoStandardizationMetadata] `gorm:"column:photo_standardization;not null"`
	Lifestyle            datatypes.JSONType[*domain.LifestyleFactors]             `gorm:"column:lifestyle;not null"`
	Reliability          datatypes.JSONType[*domain.ReliabilityMetadata]          `gorm:"column:reliability;not null"`
	CreatedAt            time.Time                                                `gorm:"column:created_at"`
	UpdatedAt            time.Time                                                `gorm:"column:updated_at"`
}

func (checkInRow) TableName() string {
	return "check_ins"
}

func checkInRowFrom(c domain.CheckIn) checkInRow {
	products := c.UsedProducts
	if products == nil {
		products = []string{}
	}
	row := checkInRow{
		ID:                   c.ID,
		SessionID:            c.SessionID,
		Day:                  c.Day,
		CaptureDate:          c.CaptureDate,
		PhotoPath:            c.PhotoPath,
		AnalysisID:           c.AnalysisID,
		UsedProducts:         datatypes.JSONSlice[string](products),
		Notes:                c.Notes,
		PhotoStandardization: datatypes.NewJSONType(c.PhotoStandardization),
		Lifestyle:            datatypes.NewJSONType(c.Lifestyle),
		Reliability:          datatypes.NewJSONType(c.Reliability),
	}
	if c.Feeling != nil {
		f := string(*c.Feeling)
		row.Feeling = &f
	}
	return row
}

func (r checkInRow) toDomain() domain.CheckIn {
	c := domain.CheckIn{
		ID:                   r.ID,
		SessionID:            r.SessionID,
		Day:                  r.Day,
		CaptureDate:          r.CaptureDate,
		PhotoPath:            r.PhotoPath,
		AnalysisID:           r.AnalysisID,
		UsedProducts:         []string(r.UsedProducts),
		Notes:                r.Notes,
		PhotoStandardization: r.PhotoStandardization.Data(),
		Lifestyle:            r.Lifestyle.Data(),
		Reliability:          r.Reliability.Data(),
	}
	if r.Feeling != nil {
		f := domain.Feeling(*r.Feeling)
		c.Feeling = &f
	}
	return c
}

type CheckInRepository struct {
	DB *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{DB: db}
}

func (r *CheckInRepository) Create(ctx context.Context, checkIn *domain.CheckIn) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	row := checkInRowFrom(*checkIn)
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create check-in: %w", err)
	}

	return nil
}

// Save upserts the full check-in row.
func (r *CheckInRepository) Save(ctx context.Context, checkIn *domain.CheckIn) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	row := checkInRowFrom(*checkIn)
	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		},
	).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert check-in: %w", err)
	}

	return nil
}

func (r *CheckInRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.CheckIn, error) {
	if err := ctx.Err(); err != nil {
		return domain.CheckIn{}, fmt.Errorf("context error: %w", err)
	}

	var row checkInRow
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CheckIn{}, domain.ErrCheckInNotFound
		}
		return domain.CheckIn{}, fmt.Errorf("failed to query check-in: %w", err)
	}

	return row.toDomain(), nil
}

// FindBySession returns the session's check-ins ordered by day.
func (r *CheckInRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.CheckIn, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []checkInRow
	if err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("day ASC").
		Order("capture_date ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}

	checkIns := make([]domain.CheckIn, 0, len(rows))
	for _, row := range rows {
		checkIns = append(checkIns, row.toDomain())
	}
	return checkIns, nil
}
