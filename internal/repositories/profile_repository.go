package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"copyflow/internal/models/db_models"
)

type IProfileRepository interface {
	Insert(ctx context.Context, profile *db_models.Profile) error
	FindById(ctx context.Context, id uuid.UUID) (*db_models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*db_models.Profile, error)

	// UpdatePlan mirrors the ledger's plan onto the profile. Zero affected
	// rows is reported as an error so the caller can compensate the ledger.
	UpdatePlan(ctx context.Context, id uuid.UUID, plan db_models.PlanType) error

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	IncrementGenerations(ctx context.Context, id uuid.UUID) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) IProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Insert(ctx context.Context, profile *db_models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) FindById(ctx context.Context, id uuid.UUID) (*db_models.Profile, error) {
	var profile db_models.Profile
	err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindByEmail(ctx context.Context, email string) (*db_models.Profile, error) {
	var profile db_models.Profile
	err := r.db.WithContext(ctx).First(&profile, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan db_models.PlanType) error {
	res := r.db.WithContext(ctx).
		Model(&db_models.Profile{}).
		Where("id = ?", id).
		Update("plan", plan)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *profileRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Profile{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *profileRepository) IncrementGenerations(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("generations_used", gorm.Expr("generations_used + 1")).Error
}
