package db_models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type GenerationKind string

const (
	GenerationCopy   GenerationKind = "copy"
	GenerationFunnel GenerationKind = "funnel"
	GenerationAds    GenerationKind = "ads"
	GenerationCanvas GenerationKind = "canvas"
)

type Generation struct {
	BaseModel
	ProfileID uuid.UUID      `gorm:"index"`
	Kind      GenerationKind `gorm:"type:varchar(16);index"`

	Prompt   string
	Output   datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	Keywords pq.StringArray `gorm:"type:text[]"`
	Model    string         `gorm:"size:64"`

	Profile Profile `gorm:"foreignKey:ProfileID"`
}
