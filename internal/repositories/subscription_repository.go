package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"copyflow/internal/models/db_models"
)

type ISubscriptionRepository interface {
	// UpsertActivePeriod grants or extends a paid period. The whole
	// read-modify-write runs in one transaction under a per-user advisory
	// lock plus row locks on the user's subscriptions, so two concurrent
	// grants for the same user serialize and the single-active-row
	// invariant survives even when neither sees an existing row.
	UpsertActivePeriod(ctx context.Context, userID uuid.UUID, plan db_models.PlanType, paymentRef string, amount float64, period time.Duration) (*db_models.Subscription, error)

	// CancelActive cancels the user's active row(s). No-op without one.
	CancelActive(ctx context.Context, userID uuid.UUID) error

	// FindActive returns the user's newest still-valid active row, applying
	// lazy expiry: rows whose window already ended are flipped to expired as
	// a side effect and not returned.
	FindActive(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error)

	// RestorePeriod is the compensating update: it writes a previously
	// captured row state back (plan, status, window, payment ref) after a
	// later pipeline step failed.
	RestorePeriod(ctx context.Context, prior *db_models.Subscription) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) ISubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) UpsertActivePeriod(ctx context.Context, userID uuid.UUID, plan db_models.PlanType, paymentRef string, amount float64, period time.Duration) (*db_models.Subscription, error) {
	var result *db_models.Subscription

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		// FOR UPDATE on the active rows locks nothing when the user has no
		// subscription yet, so a first purchase delivered twice with distinct
		// payment ids could insert two active rows. The advisory lock is the
		// serialization point that exists even with zero rows; it releases at
		// commit/rollback.
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?::text))", userID).Error; err != nil {
			return err
		}

		var actives []db_models.Subscription
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND status = ?", userID, db_models.SubStatusActive).
			Order("starts_at DESC").
			Find(&actives).Error; err != nil {
			return err
		}

		var current *db_models.Subscription
		for i := range actives {
			sub := &actives[i]
			if sub.ExpiredBy(now) {
				if err := tx.Model(sub).Update("status", db_models.SubStatusExpired).Error; err != nil {
					return err
				}
				continue
			}
			if current == nil {
				current = sub
			}
		}

		expiresAt := now.Add(period).Unix()

		if current != nil {
			// Extend/retarget the existing period in place; never a second
			// active row for the same user.
			updates := map[string]interface{}{
				"plan_type":               plan,
				"mercado_pago_payment_id": paymentRef,
				"last_payment_amount":     amount,
				"expires_at":              expiresAt,
			}
			if err := tx.Model(current).Updates(updates).Error; err != nil {
				return err
			}
			current.PlanType = plan
			current.MercadoPagoPaymentID = paymentRef
			current.LastPaymentAmount = amount
			current.ExpiresAt = &expiresAt
			result = current
			return nil
		}

		fresh := &db_models.Subscription{
			UserID:               userID,
			PlanType:             plan,
			Status:               db_models.SubStatusActive,
			StartsAt:             now.Unix(),
			ExpiresAt:            &expiresAt,
			MercadoPagoPaymentID: paymentRef,
			LastPaymentAmount:    amount,
		}
		if err := tx.Create(fresh).Error; err != nil {
			return err
		}
		result = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *subscriptionRepository) CancelActive(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("user_id = ? AND status = ?", userID, db_models.SubStatusActive).
		Update("status", db_models.SubStatusCancelled).Error
}

func (r *subscriptionRepository) FindActive(ctx context.Context, userID uuid.UUID) (*db_models.Subscription, error) {
	var subs []db_models.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, db_models.SubStatusActive).
		Order("starts_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var current *db_models.Subscription
	for i := range subs {
		sub := &subs[i]
		if sub.ExpiredBy(now) {
			if err := r.db.WithContext(ctx).
				Model(sub).Update("status", db_models.SubStatusExpired).Error; err != nil {
				return nil, err
			}
			continue
		}
		if current == nil {
			current = sub
		}
	}
	return current, nil
}

func (r *subscriptionRepository) RestorePeriod(ctx context.Context, prior *db_models.Subscription) error {
	if prior == nil {
		return errors.New("restore: nil prior state")
	}
	return r.db.WithContext(ctx).
		Model(&db_models.Subscription{}).
		Where("id = ?", prior.ID).
		Updates(map[string]interface{}{
			"plan_type":               prior.PlanType,
			"status":                  prior.Status,
			"starts_at":               prior.StartsAt,
			"expires_at":              prior.ExpiresAt,
			"mercado_pago_payment_id": prior.MercadoPagoPaymentID,
			"last_payment_amount":     prior.LastPaymentAmount,
		}).Error
}
