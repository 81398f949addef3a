package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeLog is one interval of work on a task. Duration is in minutes and only
// set once EndTime is known.
type TimeLog struct {
	ID        uuid.UUID  `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"index;not null" json:"userId"`
	TaskID    uuid.UUID  `gorm:"index;not null" json:"taskId"`
	Task      *Task      `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	StartTime time.Time  `gorm:"not null;index" json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Duration  float64    `gorm:"not null" json:"duration"`
	IsActive  bool       `gorm:"not null;index" json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (l *TimeLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
