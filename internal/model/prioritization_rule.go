package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Sumiattri/task-manager/internal/priority"
)

// PrioritizationRule holds the weights used to score tasks. At most one row is
// active; the partial unique index enforces it at the storage layer. Revision
// is bumped on every write and compared before the next one.
type PrioritizationRule struct {
	ID               uuid.UUID                           `gorm:"primaryKey" json:"id"`
	DeadlineWeight   float64                             `gorm:"not null" json:"deadlineWeight"`
	ImportanceWeight float64                             `gorm:"not null" json:"importanceWeight"`
	ImportanceLevels datatypes.JSONType[priority.Levels] `gorm:"not null" json:"importanceLevels"`
	IsActive         bool                                `gorm:"not null;index:idx_prioritization_rules_single_active,unique,where:is_active" json:"isActive"`
	Revision         int64                               `gorm:"not null" json:"revision"`
	LastModifiedBy   *uuid.UUID                          `json:"lastModifiedBy,omitempty"`
	CreatedAt        time.Time                           `json:"createdAt"`
	UpdatedAt        time.Time                           `json:"updatedAt"`
}

func (r *PrioritizationRule) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Levels returns the importance level weights stored on the rule.
func (r *PrioritizationRule) Levels() priority.Levels {
	return r.ImportanceLevels.Data()
}

// Weights converts the rule into the scorer's input.
func (r *PrioritizationRule) Weights() priority.Weights {
	return priority.Weights{
		Deadline:   r.DeadlineWeight,
		Importance: r.ImportanceWeight,
		Levels:     r.Levels(),
	}
}
