package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"copyflow/internal/models/db_models"
)

type IGenerationRepository interface {
	Insert(ctx context.Context, generation *db_models.Generation) error
	ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]db_models.Generation, error)
}

type generationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) IGenerationRepository {
	return &generationRepository{db: db}
}

func (r *generationRepository) Insert(ctx context.Context, generation *db_models.Generation) error {
	return r.db.WithContext(ctx).Create(generation).Error
}

func (r *generationRepository) ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]db_models.Generation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var generations []db_models.Generation
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Limit(limit).
		Find(&generations).Error
	if err != nil {
		return nil, err
	}
	return generations, nil
}
