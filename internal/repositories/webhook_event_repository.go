package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"copyflow/internal/models/db_models"
)

// RegistrationResult is the outcome of the dedup gate for one delivery.
type RegistrationResult int

const (
	// Registered means this delivery owns processing of the event.
	Registered RegistrationResult = iota
	// AlreadyCompleted means a previous delivery finished this event.
	AlreadyCompleted
	// AlreadyProcessing means another delivery holds the event right now
	// (or crashed while holding it; operational cleanup is out of scope).
	AlreadyProcessing
)

type IWebhookEventRepository interface {
	// Register inserts the event record. The unique index on webhook_id makes
	// the insert itself the concurrency gate: exactly one concurrent delivery
	// of the same id gets Registered. A failed record is reopened to pending
	// so gateway redelivery can retry it; completed is terminal.
	Register(ctx context.Context, webhookID, eventType, paymentID string, rawBody []byte) (RegistrationResult, error)

	MarkCompleted(ctx context.Context, webhookID string) error
	MarkFailed(ctx context.Context, webhookID string) error

	FindByWebhookID(ctx context.Context, webhookID string) (*db_models.WebhookEvent, error)
}

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) IWebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Register(ctx context.Context, webhookID, eventType, paymentID string, rawBody []byte) (RegistrationResult, error) {
	record := &db_models.WebhookEvent{
		WebhookID: webhookID,
		EventType: eventType,
		PaymentID: paymentID,
		Status:    db_models.WebhookStatusPending,
		RawData:   rawBody,
	}

	err := r.db.WithContext(ctx).Create(record).Error
	if err == nil {
		return Registered, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, err
	}

	// Lost the insert race or the event was seen before. Decide from the
	// existing row's status.
	existing, err := r.FindByWebhookID(ctx, webhookID)
	if err != nil {
		return 0, err
	}
	if existing == nil {
		// Row vanished between insert and read; treat as in-flight.
		return AlreadyProcessing, nil
	}

	switch existing.Status {
	case db_models.WebhookStatusCompleted:
		return AlreadyCompleted, nil
	case db_models.WebhookStatusFailed:
		// Reopen for reprocessing. The conditional update is the gate for
		// concurrent redeliveries of a failed event: only the one that flips
		// failed->pending owns the retry.
		res := r.db.WithContext(ctx).
			Model(&db_models.WebhookEvent{}).
			Where("webhook_id = ? AND status = ?", webhookID, db_models.WebhookStatusFailed).
			Update("status", db_models.WebhookStatusPending)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			return Registered, nil
		}
		return AlreadyProcessing, nil
	default:
		return AlreadyProcessing, nil
	}
}

func (r *webhookEventRepository) MarkCompleted(ctx context.Context, webhookID string) error {
	return r.setStatus(ctx, webhookID, db_models.WebhookStatusCompleted)
}

func (r *webhookEventRepository) MarkFailed(ctx context.Context, webhookID string) error {
	return r.setStatus(ctx, webhookID, db_models.WebhookStatusFailed)
}

func (r *webhookEventRepository) setStatus(ctx context.Context, webhookID string, status db_models.WebhookStatus) error {
	return r.db.WithContext(ctx).
		Model(&db_models.WebhookEvent{}).
		Where("webhook_id = ?", webhookID).
		Update("status", status).Error
}

func (r *webhookEventRepository) FindByWebhookID(ctx context.Context, webhookID string) (*db_models.WebhookEvent, error) {
	var record db_models.WebhookEvent
	err := r.db.WithContext(ctx).First(&record, "webhook_id = ?", webhookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
