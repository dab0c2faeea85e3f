package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PlagiarismStatus string

const (
	PlagiarismOK         PlagiarismStatus = "ok"
	PlagiarismSuspicious PlagiarismStatus = "suspicious"
	PlagiarismHighRisk   PlagiarismStatus = "high_risk"
)

// PlagiarismCheck is the one-per-attempt similarity verdict. Re-checks
// overwrite the existing row, there is no history.
type PlagiarismCheck struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AttemptID         uuid.UUID        `json:"attempt_id" gorm:"type:uuid;not null;uniqueIndex"`
	Attempt           *Attempt         `json:"attempt,omitempty" gorm:"foreignKey:AttemptID"`
	UniquenessPercent float64          `json:"uniqueness_percent" gorm:"not null"`
	MaxSimilarity     float64          `json:"max_similarity" gorm:"not null"`
	Status            PlagiarismStatus `json:"status" gorm:"not null"`
	Details           datatypes.JSON   `json:"details,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
