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
)

// CREATE TABLE public.tracking_sessions (
//     id              UUID PRIMARY KEY,
//     user_id         BIGINT NOT NULL REFERENCES users(id),
//     start_date      TIMESTAMPTZ NOT NULL,
//     target_products JSONB NOT NULL DEFAULT '[]',
//     status          VARCHAR(16) NOT NULL,
//     created_at      TIMESTAMPTZ NOT NULL,
//     updated_at      TIMESTAMPTZ NOT NULL
// );

type trackingSessionRow struct {
	ID             uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	UserID         uint                        `gorm:"column:user_id;not null;index"`
	StartDate      time.Time                   `gorm:"column:start_date;not null"`
	TargetProducts datatypes.JSONSlice[string] `gorm:"column:target_products;not null"`
	Status         string                      `gorm:"column:status;not null"`
	CreatedAt      time.Time                   `gorm:"column:created_at"`
	UpdatedAt      time.Time                   `gorm:"column:updated_at"`
}

func (trackingSessionRow) TableName() string {
	return "tracking_sessions"
}

func sessionRowFrom(s domain.TrackingSession) trackingSessionRow {
	products := s.TargetProducts
	if products == nil {
		products = []string{}
	}
	return trackingSessionRow{
		ID:             s.ID,
		UserID:         s.UserID,
		StartDate:      s.StartDate,
		TargetProducts: datatypes.JSONSlice[string](products),
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (r trackingSessionRow) toDomain() domain.TrackingSession {
	return domain.TrackingSession{
		ID:             r.ID,
		UserID:         r.UserID,
		StartDate:      r.StartDate,
		TargetProducts: []string(r.TargetProducts),
		Status:         domain.SessionStatus(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type TrackingSessionRepository struct {
	DB *gorm.DB
}

func NewTrackingSessionRepository(db *gorm.DB) *TrackingSessionRepository {
	return &TrackingSessionRepository{DB: db}
}

func (r *TrackingSessionRepository) Create(ctx context.Context, session *domain.TrackingSession) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	row := sessionRowFrom(*session)
	if err := r.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create tracking session: %w", err)
	}

	session.CreatedAt, session.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *TrackingSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.TrackingSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.TrackingSession{}, fmt.Errorf("context error: %w", err)
	}

	var row trackingSessionRow
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TrackingSession{}, domain.ErrSessionNotFound
		}
		return domain.TrackingSession{}, fmt.Errorf("failed to query tracking session: %w", err)
	}

	return row.toDomain(), nil
}

// FindByUser lists a user's sessions, newest first.
func (r *TrackingSessionRepository) FindByUser(ctx context.Context, userID uint) ([]domain.TrackingSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []trackingSessionRow
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tracking sessions: %w", err)
	}

	sessions := make([]domain.TrackingSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toDomain())
	}
	return sessions, nil
}

func (r *TrackingSessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Model(&trackingSessionRow{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update tracking session status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}
