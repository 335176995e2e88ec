package postgres

import (
	"context"
	"errors"
	"fmt"

	"skinTrack/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SkinAnalysisRepository struct {
	DB *gorm.DB
}

func NewSkinAnalysisRepository(db *gorm.DB) *SkinAnalysisRepository {
	return &SkinAnalysisRepository{DB: db}
}

func (r *SkinAnalysisRepository) Create(ctx context.Context, analysis *domain.SkinAnalysis) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create skin analysis: %w", err)
	}

	return nil
}

func (r *SkinAnalysisRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.SkinAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return domain.SkinAnalysis{}, fmt.Errorf("context error: %w", err)
	}

	var analysis domain.SkinAnalysis
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SkinAnalysis{}, domain.ErrAnalysisNotFound
		}
		return domain.SkinAnalysis{}, fmt.Errorf("failed to query skin analysis: %w", err)
	}

	return analysis, nil
}

// FindByIDs returns the analyses keyed by id. Unknown ids are skipped.
func (r *SkinAnalysisRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.SkinAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	out := make(map[uuid.UUID]domain.SkinAnalysis, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var analyses []domain.SkinAnalysis
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&analyses).Error; err != nil {
		return nil, fmt.Errorf("failed to query skin analyses: %w", err)
	}

	for _, a := range analyses {
		out[a.ID] = a
	}
	return out, nil
}
