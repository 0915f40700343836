package db_models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubscriptionStatus string

const (
	SubStatusActive    SubscriptionStatus = "active"
	SubStatusCancelled SubscriptionStatus = "cancelled"
	SubStatusExpired   SubscriptionStatus = "expired"
)

// Subscription is one contiguous paid period for one user. A user may have
// many historical rows but at most one with status=active at any instant;
// that invariant is held by the repository's per-user locking, not by a DB
// constraint, because cancelled/expired rows are retained.
type Subscription struct {
	BaseModel
	UserID uuid.UUID `gorm:"index"`

	PlanType PlanType           `gorm:"type:varchar(16)"`
	Status   SubscriptionStatus `gorm:"type:varchar(16);index"`

	StartsAt  int64 `gorm:"not null"`
	ExpiresAt *int64

	MercadoPagoPaymentID string `gorm:"index"`
	LastPaymentAmount    float64

	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	Profile Profile `gorm:"foreignKey:UserID"`
}

// ExpiredBy reports lazy expiry: the row is still marked active but its
// window ended before now. Rows with a nil ExpiresAt never expire.
func (s *Subscription) ExpiredBy(now time.Time) bool {
	if s.Status != SubStatusActive || s.ExpiresAt == nil {
		return false
	}
	return *s.ExpiresAt < now.Unix()
}
