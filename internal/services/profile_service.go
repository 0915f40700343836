package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"copyflow/internal/models/db_models"
	"copyflow/internal/repositories"
	"copyflow/pkg/utils"
)

// ProfileServiceInterface keeps the denormalized profiles.plan in step with
// the subscription ledger. The ledger is authoritative; the profile field is
// a projection that low-stakes reads may trust and high-stakes reads
// re-derive through Reconcile.
type ProfileServiceInterface interface {
	// Project mirrors the given plan onto the profile, immediately after a
	// ledger mutation. A missing profile is a hard error so the caller can
	// roll the ledger change back.
	Project(ctx context.Context, userID uuid.UUID, plan db_models.PlanType) error

	// Reconcile re-derives the plan from the ledger, corrects drift on the
	// profile row and returns the authoritative value.
	Reconcile(ctx context.Context, userID uuid.UUID) (db_models.PlanType, error)

	Get(ctx context.Context, userID uuid.UUID) (*db_models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*db_models.Profile, error)
}

type ProfileService struct {
	profileRepo         repositories.IProfileRepository
	subscriptionService SubscriptionServiceInterface
}

func NewProfileService(profileRepo repositories.IProfileRepository, subscriptionService SubscriptionServiceInterface) ProfileServiceInterface {
	return &ProfileService{
		profileRepo:         profileRepo,
		subscriptionService: subscriptionService,
	}
}

func (s *ProfileService) Project(ctx context.Context, userID uuid.UUID, plan db_models.PlanType) error {
	if err := s.profileRepo.UpdatePlan(ctx, userID, plan); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrProfileNotFound
		}
		return err
	}
	return nil
}

func (s *ProfileService) Reconcile(ctx context.Context, userID uuid.UUID) (db_models.PlanType, error) {
	authoritative, err := s.subscriptionService.CurrentPlan(ctx, userID)
	if err != nil {
		return "", err
	}

	profile, err := s.profileRepo.FindById(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return "", utils.ErrProfileNotFound
	}

	if profile.Plan != authoritative {
		if err := s.profileRepo.UpdatePlan(ctx, userID, authoritative); err != nil {
			return "", err
		}
	}

	return authoritative, nil
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*db_models.Profile, error) {
	return s.profileRepo.FindById(ctx, userID)
}

func (s *ProfileService) GetByEmail(ctx context.Context, email string) (*db_models.Profile, error) {
	return s.profileRepo.FindByEmail(ctx, email)
}
