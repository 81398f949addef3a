package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/model"
)

// TimeLogRepository persists work intervals.
type TimeLogRepository struct {
	db *gorm.DB
}

func NewTimeLogRepository(db *gorm.DB) *TimeLogRepository {
	return &TimeLogRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *TimeLogRepository) WithTx(tx *gorm.DB) *TimeLogRepository {
	return &TimeLogRepository{db: tx}
}

func (r *TimeLogRepository) Create(ctx context.Context, log *model.TimeLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return apperr.Storage("create time log", err)
	}
	return nil
}

// FindActive returns the user's still-running log with the given id.
func (r *TimeLogRepository) FindActive(ctx context.Context, userID, logID uuid.UUID) (*model.TimeLog, error) {
	var log model.TimeLog
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND is_active = ?", logID, userID, true).
		First(&log).Error
	if err != nil {
		return nil, translate("find time log", "Active time log", err)
	}
	return &log, nil
}

// Finish closes an active log. The update is conditional on the log still being
// active, so of two concurrent stops only one sees RowsAffected == 1.
func (r *TimeLogRepository) Finish(ctx context.Context, log *model.TimeLog, endTime time.Time, minutes float64) error {
	res := r.db.WithContext(ctx).
		Model(&model.TimeLog{}).
		Where("id = ? AND user_id = ? AND is_active = ?", log.ID, log.UserID, true).
		Updates(map[string]interface{}{
			"end_time":  endTime,
			"duration":  minutes,
			"is_active": false,
		})
	if res.Error != nil {
		return apperr.Storage("finish time log", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Active time log")
	}
	log.EndTime = &endTime
	log.Duration = minutes
	log.IsActive = false
	return nil
}

// ListByUser returns the user's logs, newest start first, with their task.
func (r *TimeLogRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.TimeLog, error) {
	var logs []model.TimeLog
	if err := r.db.WithContext(ctx).
		Preload("Task").
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Find(&logs).Error; err != nil {
		return nil, apperr.Storage("list time logs", err)
	}
	return logs, nil
}

// ListActiveByTask returns the running logs of a task.
func (r *TimeLogRepository) ListActiveByTask(ctx context.Context, userID, taskID uuid.UUID) ([]model.TimeLog, error) {
	var logs []model.TimeLog
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ? AND is_active = ?", userID, taskID, true).
		Find(&logs).Error; err != nil {
		return nil, apperr.Storage("list active time logs", err)
	}
	return logs, nil
}

// TimeLogStats aggregates logs across all users.
type TimeLogStats struct {
	Count         int64
	TotalDuration float64
}

func (r *TimeLogRepository) Stats(ctx context.Context) (TimeLogStats, error) {
	var stats TimeLogStats
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.TimeLog{}).Count(&stats.Count).Error; err != nil {
		return stats, apperr.Storage("count time logs", err)
	}
	if err := db.Model(&model.TimeLog{}).
		Where("duration > ?", 0).
		Select("COALESCE(SUM(duration), 0)").
		Scan(&stats.TotalDuration).Error; err != nil {
		return stats, apperr.Storage("sum time log durations", err)
	}
	return stats, nil
}
