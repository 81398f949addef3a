package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/priority"
	"github.com/Sumiattri/task-manager/internal/repository"
)

// DefaultImportanceLevel applies when a new task names no importance level.
const DefaultImportanceLevel = priority.Medium

const rescoreBatchSize = 200

// TaskInput represents data required to create a task.
type TaskInput struct {
	Name            string
	Description     string
	Deadline        *time.Time
	ImportanceLevel string
	Category        string
}

// TaskPatch is a partial task update. Nil fields are left alone. Category set
// to "" detaches the task from its category.
type TaskPatch struct {
	Name            *string
	Description     *string
	Deadline        *time.Time
	ImportanceLevel *string
	Status          *string
	Category        *string
}

// scoringChange reports whether the patch touches an input of the score.
func (p TaskPatch) scoringChange() bool {
	return p.Deadline != nil || p.ImportanceLevel != nil
}

// TaskService owns task writes and keeps PriorityScore in step with the
// deadline and importance level of each task.
type TaskService struct {
	tasks *repository.TaskRepository
	rules *repository.RuleRepository
	log   *logger.Logger
	now   Clock
}

func NewTaskService(tasks *repository.TaskRepository, rules *repository.RuleRepository, log *logger.Logger) *TaskService {
	return &TaskService{
		tasks: tasks,
		rules: rules,
		log:   log.With("service", "TaskService"),
		now:   utcNow,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *TaskService) WithClock(now Clock) *TaskService {
	s.now = now
	return s
}

func (s *TaskService) CreateTask(ctx context.Context, userID uuid.UUID, input TaskInput) (*model.Task, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if input.Deadline == nil {
		return nil, apperr.Validation("deadline is required")
	}
	level := strings.TrimSpace(input.ImportanceLevel)
	if level == "" {
		level = DefaultImportanceLevel
	}
	if !priority.IsCanonicalLevel(level) {
		return nil, apperr.Validation("importanceLevel must be one of %s", strings.Join(priority.CanonicalLevels, ", "))
	}
	categoryID, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}

	task := model.Task{
		UserID:          userID,
		Name:            name,
		Description:     strings.TrimSpace(input.Description),
		Deadline:        input.Deadline.UTC(),
		ImportanceLevel: level,
		Status:          model.StatusPending,
		CategoryID:      categoryID,
	}

	score, err := s.score(ctx, task.Deadline, task.ImportanceLevel)
	if err != nil {
		return nil, err
	}
	task.PriorityScore = score

	if err := s.tasks.Create(ctx, &task); err != nil {
		s.log.Error("create task failed", "user_id", userID.String(), "error", err)
		return nil, err
	}
	s.log.Info("task created", "user_id", userID.String(), "task_id", task.ID.String(), "priority_score", score)
	return s.tasks.FindByID(ctx, userID, task.ID)
}

// UpdateTask applies patch to one of the user's tasks. The score is recomputed
// against the current rule only when the deadline or importance level is part
// of the patch; any other edit leaves the stored score as it was.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, patch TaskPatch) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		fields["name"] = name
	}
	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		if !model.ValidStatus(*patch.Status) {
			return nil, apperr.Validation("status must be one of %s, %s, %s",
				model.StatusPending, model.StatusInProgress, model.StatusCompleted)
		}
		fields["status"] = *patch.Status
	}
	if patch.Category != nil {
		categoryID, err := parseCategory(*patch.Category)
		if err != nil {
			return nil, err
		}
		fields["category_id"] = categoryID
	}

	if patch.scoringChange() {
		deadline := task.Deadline
		if patch.Deadline != nil {
			deadline = patch.Deadline.UTC()
			fields["deadline"] = deadline
		}
		level := task.ImportanceLevel
		if patch.ImportanceLevel != nil {
			if !priority.IsCanonicalLevel(*patch.ImportanceLevel) {
				return nil, apperr.Validation("importanceLevel must be one of %s", strings.Join(priority.CanonicalLevels, ", "))
			}
			level = *patch.ImportanceLevel
			fields["importance_level"] = level
		}
		score, err := s.score(ctx, deadline, level)
		if err != nil {
			return nil, err
		}
		fields["priority_score"] = score
	}

	if err := s.tasks.UpdateFields(ctx, userID, taskID, fields); err != nil {
		return nil, err
	}
	s.log.Info("task updated", "user_id", userID.String(), "task_id", taskID.String(), "rescored", patch.scoringChange())
	return s.tasks.FindByID(ctx, userID, taskID)
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	return s.tasks.FindByID(ctx, userID, taskID)
}

// ListTasks returns the user's tasks, highest priority first.
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

// ListOpen returns up to limit unfinished tasks, highest priority first.
func (s *TaskService) ListOpen(ctx context.Context, userID uuid.UUID, limit int) ([]model.Task, error) {
	return s.tasks.ListOpenByUser(ctx, userID, limit)
}

// DeleteTask removes a task. Time logs that point at it are left in place.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, userID, taskID); err != nil {
		return err
	}
	s.log.Info("task deleted", "user_id", userID.String(), "task_id", taskID.String())
	return nil
}

// RescoreAll recomputes every task's score under the current rule and returns
// how many tasks were written. Nothing calls it implicitly.
func (s *TaskService) RescoreAll(ctx context.Context) (int, error) {
	rule, err := s.rules.ActiveOrDefault(ctx)
	if err != nil {
		return 0, err
	}
	weights := rule.Weights()
	now := s.now()

	updated := 0
	err = s.tasks.EachBatch(ctx, rescoreBatchSize, func(batch []model.Task) error {
		for _, task := range batch {
			score := priority.Score(task.Deadline, task.ImportanceLevel, weights, now)
			if score == task.PriorityScore {
				continue
			}
			if err := s.tasks.SetPriorityScore(ctx, task.ID, score); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		s.log.Error("rescore failed", "updated", updated, "error", err)
		return updated, err
	}
	s.log.Info("tasks rescored", "updated", updated, "rule_revision", rule.Revision)
	return updated, nil
}

func (s *TaskService) score(ctx context.Context, deadline time.Time, level string) (float64, error) {
	rule, err := s.rules.ActiveOrDefault(ctx)
	if err != nil {
		return 0, err
	}
	return priority.Score(deadline, level, rule.Weights(), s.now()), nil
}

func parseCategory(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Validation("category must be a valid id")
	}
	return &id, nil
}
