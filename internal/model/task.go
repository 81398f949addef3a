package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is a single item owned by one user. PriorityScore is a cache of the
// score computed from Deadline and ImportanceLevel when either last changed.
type Task struct {
	ID              uuid.UUID  `gorm:"primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"index;not null" json:"userId"`
	Name            string     `gorm:"not null" json:"name"`
	Description     string     `json:"description,omitempty"`
	Deadline        time.Time  `gorm:"not null;index" json:"deadline"`
	ImportanceLevel string     `gorm:"not null" json:"importanceLevel"`
	Status          string     `gorm:"not null;index" json:"status"`
	CategoryID      *uuid.UUID `gorm:"index" json:"categoryId,omitempty"`
	Category        *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	PriorityScore   float64    `gorm:"not null;index" json:"priorityScore"`
	TotalTimeSpent  float64    `gorm:"not null" json:"totalTimeSpent"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
