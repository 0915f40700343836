package db_models

type PlanType string

const (
	PlanFree    PlanType = "free"
	PlanStarter PlanType = "starter"
	PlanPro     PlanType = "pro"
)

func (p PlanType) IsPaid() bool {
	return p == PlanStarter || p == PlanPro
}

// KnownPaidPlan reports whether s names a purchasable tier.
func KnownPaidPlan(s string) bool {
	return PlanType(s) == PlanStarter || PlanType(s) == PlanPro
}

// Profile is the user record. Plan is a denormalized snapshot of the
// subscription ledger; the ledger stays authoritative and the field is
// re-derived before quota decisions (see services.ProfileService.Reconcile).
type Profile struct {
	BaseModel
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	Name         string
	Role         string `gorm:"default:user"`

	Plan            PlanType `gorm:"type:varchar(16);default:free;index"`
	GenerationsUsed int      `gorm:"default:0"`
}
