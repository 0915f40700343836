package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"copyflow/internal/models/db_models"
	"copyflow/internal/repositories"
	"copyflow/pkg/utils"
)

// SubscriptionPeriod is the fixed paid-period length. Payments never prorate;
// every approved payment grants a full window from now.
const SubscriptionPeriod = 30 * 24 * time.Hour

type SubscriptionServiceInterface interface {
	// UpsertActivePeriod grants plan to the user for a fresh period,
	// extending the existing active row in place when one exists.
	UpsertActivePeriod(ctx context.Context, userID uuid.UUID, plan db_models.PlanType, paymentRef string, amount float64) (*db_models.Subscription, error)

	// Cancel ends the user's active period. Idempotent.
	Cancel(ctx context.Context, userID uuid.UUID) error

	// CurrentPlan derives the authoritative plan from the ledger, applying
	// lazy expiry. Free when no active row survives.
	CurrentPlan(ctx context.Context, userID uuid.UUID) (db_models.PlanType, error)

	// ActiveSubscription returns the surviving active row, nil when none.
	ActiveSubscription(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error)

	// Compensate restores a previously captured row state, or cancels the
	// active row when the capture was nil (the grant created a fresh row).
	Compensate(ctx context.Context, userID uuid.UUID, prior *db_models.Subscription) error
}

type SubscriptionService struct {
	subscriptionRepo repositories.ISubscriptionRepository
}

func NewSubscriptionService(subscriptionRepo repositories.ISubscriptionRepository) SubscriptionServiceInterface {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
	}
}

func (s *SubscriptionService) UpsertActivePeriod(ctx context.Context, userID uuid.UUID, plan db_models.PlanType, paymentRef string, amount float64) (*db_models.Subscription, error) {
	if !plan.IsPaid() {
		return nil, utils.ErrUnknownPlan
	}
	sub, err := s.subscriptionRepo.UpsertActivePeriod(ctx, userID, plan, paymentRef, amount, SubscriptionPeriod)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriptionService) Cancel(ctx context.Context, userID uuid.UUID) error {
	return s.subscriptionRepo.CancelActive(ctx, userID)
}

func (s *SubscriptionService) CurrentPlan(ctx context.Context, userID uuid.UUID) (db_models.PlanType, error) {
	sub, err := s.subscriptionRepo.FindActive(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub == nil {
		return db_models.PlanFree, nil
	}
	return sub.PlanType, nil
}

func (s *SubscriptionService) ActiveSubscription(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	return s.subscriptionRepo.FindActive(ctx, userID)
}

func (s *SubscriptionService) Compensate(ctx context.Context, userID uuid.UUID, prior *db_models.Subscription) error {
	if prior == nil {
		return s.subscriptionRepo.CancelActive(ctx, userID)
	}
	return s.subscriptionRepo.RestorePeriod(ctx, prior)
}
