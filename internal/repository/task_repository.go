package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/model"
)

// PriorityOrder is the listing order: highest score first, earliest deadline on ties.
const PriorityOrder = "priority_score DESC, deadline ASC"

// TaskRepository handles CRUD for tasks. Every lookup is scoped to the owner.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return apperr.Storage("create task", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND id = ?", userID, taskID).
		First(&task).Error
	if err != nil {
		return nil, translate("find task", "Task", err)
	}
	return &task, nil
}

// ListByUser returns the user's tasks in priority order.
func (r *TaskRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", userID).
		Order(PriorityOrder).
		Find(&tasks).Error; err != nil {
		return nil, apperr.Storage("list tasks", err)
	}
	return tasks, nil
}

// ListOpenByUser returns the user's unfinished tasks in priority order.
func (r *TaskRepository) ListOpenByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Task, error) {
	var tasks []model.Task
	q := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND status <> ?", userID, model.StatusCompleted).
		Order(PriorityOrder)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&tasks).Error; err != nil {
		return nil, apperr.Storage("list open tasks", err)
	}
	return tasks, nil
}

// ListRecentByUser returns the user's most recently created tasks.
func (r *TaskRepository) ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, apperr.Storage("list recent tasks", err)
	}
	return tasks, nil
}

// UpdateFields writes only the given columns. Writing the whole row would
// clobber total_time_spent increments made in between.
func (r *TaskRepository) UpdateFields(ctx context.Context, userID, taskID uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("user_id = ? AND id = ?", userID, taskID).
		Updates(fields)
	if res.Error != nil {
		return apperr.Storage("update task", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Task")
	}
	return nil
}

// AddTimeSpent atomically increments the task's total by minutes.
func (r *TaskRepository) AddTimeSpent(ctx context.Context, taskID uuid.UUID, minutes float64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ?", taskID).
		UpdateColumn("total_time_spent", gorm.Expr("total_time_spent + ?", minutes))
	if res.Error != nil {
		return apperr.Storage("add time spent", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Task")
	}
	return nil
}

// SetPriorityScore overwrites the cached score of a task.
func (r *TaskRepository) SetPriorityScore(ctx context.Context, taskID uuid.UUID, score float64) error {
	if err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ?", taskID).
		UpdateColumn("priority_score", score).Error; err != nil {
		return apperr.Storage("set priority score", err)
	}
	return nil
}

// EachBatch walks every task, batchSize at a time.
func (r *TaskRepository) EachBatch(ctx context.Context, batchSize int, fn func(tasks []model.Task) error) error {
	var batch []model.Task
	res := r.db.WithContext(ctx).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	if res.Error != nil {
		return apperr.Storage("scan tasks", res.Error)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{})
	if res.Error != nil {
		return apperr.Storage("delete task", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Task")
	}
	return nil
}

// GroupCount is one row of a GROUP BY count.
type GroupCount struct {
	GroupKey string
	Count    int64
}

// TaskStats aggregates task counts, optionally for a single user.
type TaskStats struct {
	Total          int64
	Completed      int64
	TotalTimeSpent float64
	ByStatus       map[string]int64
	ByImportance   map[string]int64
}

// Stats computes task aggregates. A nil userID covers every user.
func (r *TaskRepository) Stats(ctx context.Context, userID *uuid.UUID) (TaskStats, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Task{})
		if userID != nil {
			q = q.Where("user_id = ?", *userID)
		}
		return q
	}

	stats := TaskStats{
		ByStatus:     map[string]int64{},
		ByImportance: map[string]int64{},
	}
	if err := scoped().Count(&stats.Total).Error; err != nil {
		return stats, apperr.Storage("count tasks", err)
	}
	if err := scoped().Where("status = ?", model.StatusCompleted).Count(&stats.Completed).Error; err != nil {
		return stats, apperr.Storage("count completed tasks", err)
	}
	if err := scoped().Select("COALESCE(SUM(total_time_spent), 0)").Scan(&stats.TotalTimeSpent).Error; err != nil {
		return stats, apperr.Storage("sum time spent", err)
	}

	var rows []GroupCount
	if err := scoped().Select("status AS group_key, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return stats, apperr.Storage("group tasks by status", err)
	}
	for _, row := range rows {
		stats.ByStatus[row.GroupKey] = row.Count
	}

	rows = nil
	if err := scoped().Select("importance_level AS group_key, COUNT(*) AS count").Group("importance_level").Scan(&rows).Error; err != nil {
		return stats, apperr.Storage("group tasks by importance", err)
	}
	for _, row := range rows {
		stats.ByImportance[row.GroupKey] = row.Count
	}
	return stats, nil
}
