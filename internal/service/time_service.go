package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/repository"
)

// TimeLogInput describes a work interval. Without EndTime a running log is
// started; with both ends a finished log is recorded in one step.
type TimeLogInput struct {
	TaskID    uuid.UUID
	StartTime *time.Time
	EndTime   *time.Time
}

// TimeService records work intervals and folds finished ones into the task's
// TotalTimeSpent. Closing a log and incrementing the total happen in one
// transaction, and the increment is an atomic add so concurrent stops on the
// same task both land.
type TimeService struct {
	db    *gorm.DB
	tasks *repository.TaskRepository
	logs  *repository.TimeLogRepository
	log   *logger.Logger
	now   Clock
}

func NewTimeService(db *gorm.DB, tasks *repository.TaskRepository, logs *repository.TimeLogRepository, log *logger.Logger) *TimeService {
	return &TimeService{
		db:    db,
		tasks: tasks,
		logs:  logs,
		log:   log.With("service", "TimeService"),
		now:   utcNow,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *TimeService) WithClock(now Clock) *TimeService {
	s.now = now
	return s
}

// Log starts a running log, or records a finished one when EndTime is set.
func (s *TimeService) Log(ctx context.Context, userID uuid.UUID, in TimeLogInput) (*model.TimeLog, error) {
	if in.EndTime == nil {
		return s.Start(ctx, userID, in.TaskID, in.StartTime)
	}
	return s.Record(ctx, userID, in)
}

// Start opens a running log on one of the user's tasks. Overlapping running
// logs on the same task are allowed; each one counts when stopped.
func (s *TimeService) Start(ctx context.Context, userID, taskID uuid.UUID, startTime *time.Time) (*model.TimeLog, error) {
	if _, err := s.tasks.FindByID(ctx, userID, taskID); err != nil {
		return nil, err
	}

	start := s.now().UTC()
	if startTime != nil {
		start = startTime.UTC()
	}

	running, err := s.logs.ListActiveByTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if len(running) > 0 {
		s.log.Warn("overlapping time log", "user_id", userID.String(), "task_id", taskID.String(), "running", len(running))
	}

	entry := model.TimeLog{
		UserID:    userID,
		TaskID:    taskID,
		StartTime: start,
		IsActive:  true,
	}
	if err := s.logs.Create(ctx, &entry); err != nil {
		return nil, err
	}
	s.log.Info("time log started", "user_id", userID.String(), "task_id", taskID.String(), "log_id", entry.ID.String())
	return &entry, nil
}

// Record stores a finished interval and adds its duration to the task.
func (s *TimeService) Record(ctx context.Context, userID uuid.UUID, in TimeLogInput) (*model.TimeLog, error) {
	if in.EndTime == nil {
		return nil, apperr.Validation("endTime is required")
	}
	end := in.EndTime.UTC()
	start := s.now().UTC()
	if in.StartTime != nil {
		start = in.StartTime.UTC()
	}
	if end.Before(start) {
		return nil, apperr.Validation("endTime must not be before startTime")
	}
	if _, err := s.tasks.FindByID(ctx, userID, in.TaskID); err != nil {
		return nil, err
	}

	minutes := Minutes(start, end)
	entry := model.TimeLog{
		UserID:    userID,
		TaskID:    in.TaskID,
		StartTime: start,
		EndTime:   &end,
		Duration:  minutes,
	}
	err := repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.logs.WithTx(tx).Create(ctx, &entry); err != nil {
			return err
		}
		return s.tasks.WithTx(tx).AddTimeSpent(ctx, in.TaskID, minutes)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("time log recorded", "user_id", userID.String(), "task_id", in.TaskID.String(), "minutes", minutes)
	return &entry, nil
}

// Stop closes a running log and adds its duration to the task. Only the first
// of several stops on the same log succeeds; later ones get NotFound. If the
// task was deleted meanwhile the log is still closed.
func (s *TimeService) Stop(ctx context.Context, userID, logID uuid.UUID) (*model.TimeLog, error) {
	var stopped *model.TimeLog
	err := repository.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		logs := s.logs.WithTx(tx)
		entry, err := logs.FindActive(ctx, userID, logID)
		if err != nil {
			return err
		}
		end := s.now().UTC()
		minutes := Minutes(entry.StartTime, end)
		if err := logs.Finish(ctx, entry, end, minutes); err != nil {
			return err
		}
		if err := s.tasks.WithTx(tx).AddTimeSpent(ctx, entry.TaskID, minutes); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		stopped = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("time log stopped", "user_id", userID.String(), "log_id", logID.String(), "minutes", stopped.Duration)
	return stopped, nil
}

// ListLogs returns the user's logs, newest first.
func (s *TimeService) ListLogs(ctx context.Context, userID uuid.UUID) ([]model.TimeLog, error) {
	return s.logs.ListByUser(ctx, userID)
}

// Minutes is the length of [start, end] in fractional minutes. A stop clock
// earlier than the start counts as zero.
func Minutes(start, end time.Time) float64 {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return d.Minutes()
}
