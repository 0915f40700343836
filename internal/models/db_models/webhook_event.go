package db_models

import (
	"gorm.io/datatypes"
)

type WebhookStatus string

const (
	WebhookStatusPending   WebhookStatus = "pending"
	WebhookStatusCompleted WebhookStatus = "completed"
	WebhookStatusFailed    WebhookStatus = "failed"
)

// WebhookEvent records one logical gateway notification. WebhookID carries a
// unique index; the insert into this table is the deduplication gate for
// concurrent redeliveries of the same event. Rows are never deleted here,
// retention is an operational concern.
type WebhookEvent struct {
	BaseModel
	WebhookID string `gorm:"uniqueIndex;size:128"`
	EventType string `gorm:"size:64"`
	PaymentID string `gorm:"index;size:64"`

	Status WebhookStatus `gorm:"type:varchar(16);index"`

	// Original body, kept for audit and replay diagnosis.
	RawData datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
}
