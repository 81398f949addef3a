package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/repository"
	"github.com/Sumiattri/task-manager/internal/testutil"
)

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type taskFixture struct {
	db    *gorm.DB
	svc   *TaskService
	rules *repository.RuleRepository
	clock *testutil.Clock
	user  *model.User
}

func newTaskFixture(t *testing.T) taskFixture {
	t.Helper()
	db := testutil.OpenDB(t)
	clock := testutil.NewClock(baseTime)
	rules := repository.NewRuleRepository(db)
	svc := NewTaskService(repository.NewTaskRepository(db), rules, logger.NewNop()).WithClock(clock.Now)
	return taskFixture{
		db:    db,
		svc:   svc,
		rules: rules,
		clock: clock,
		user:  testutil.CreateUser(t, db, "alice", model.RoleUser),
	}
}

func TestTaskService_CreateScoresWithDefaults(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, f.user.ID, TaskInput{
		Name:            "ship release",
		Deadline:        testutil.Ptr(baseTime),
		ImportanceLevel: "critical",
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, task.PriorityScore)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.Equal(t, 0.0, task.TotalTimeSpent)

	low, err := f.svc.CreateTask(ctx, f.user.ID, TaskInput{
		Name:            "tidy desk",
		Deadline:        testutil.Ptr(baseTime.Add(10 * 24 * time.Hour)),
		ImportanceLevel: "low",
	})
	require.NoError(t, err)
	assert.Equal(t, 12.5, low.PriorityScore)
}

func TestTaskService_CreateDefaultsToMedium(t *testing.T) {
	f := newTaskFixture(t)

	task, err := f.svc.CreateTask(context.Background(), f.user.ID, TaskInput{
		Name:     "write notes",
		Deadline: testutil.Ptr(baseTime.Add(20 * 24 * time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, "medium", task.ImportanceLevel)
	assert.Equal(t, 25.0, task.PriorityScore)
}

func TestTaskService_CreateUsesActiveRule(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	_, err := f.rules.Upsert(ctx, repository.RulePatch{
		DeadlineWeight:   testutil.Ptr(1.0),
		ImportanceWeight: testutil.Ptr(0.0),
	}, uuid.New())
	require.NoError(t, err)

	task, err := f.svc.CreateTask(ctx, f.user.ID, TaskInput{
		Name:            "file taxes",
		Deadline:        testutil.Ptr(baseTime.Add(5 * 24 * time.Hour)),
		ImportanceLevel: "critical",
	})
	require.NoError(t, err)
	assert.InDelta(t, 50.0, task.PriorityScore, 1e-9)
}

func TestTaskService_CreateValidation(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	deadline := testutil.Ptr(baseTime)

	cases := map[string]TaskInput{
		"missing name":     {Deadline: deadline},
		"missing deadline": {Name: "x"},
		"unknown level":    {Name: "x", Deadline: deadline, ImportanceLevel: "urgent"},
		"bad category":     {Name: "x", Deadline: deadline, Category: "not-a-uuid"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.CreateTask(ctx, f.user.ID, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestTaskService_StatusUpdateKeepsScore(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, f.user.ID, TaskInput{
		Name:            "review PR",
		Deadline:        testutil.Ptr(baseTime.Add(3 * 24 * time.Hour)),
		ImportanceLevel: "high",
	})
	require.NoError(t, err)
	original := task.PriorityScore

	// Both the rule and the clock move; neither may leak into a status edit.
	_, err = f.rules.Upsert(ctx, repository.RulePatch{DeadlineWeight: testutil.Ptr(0.9)}, uuid.New())
	require.NoError(t, err)
	f.clock.Advance(48 * time.Hour)

	updated, err := f.svc.UpdateTask(ctx, f.user.ID, task.ID, TaskPatch{
		Status:      testutil.Ptr(model.StatusInProgress),
		Description: testutil.Ptr("halfway"),
	})
	require.NoError(t, err)
	assert.Equal(t, original, updated.PriorityScore)
	assert.Equal(t, model.StatusInProgress, updated.Status)
	assert.Equal(t, "halfway", updated.Description)
}

func TestTaskService_DeadlineUpdateRescores(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, f.user.ID, TaskInput{
		Name:            "prepare slides",
		Deadline:        testutil.Ptr(baseTime.Add(20 * 24 * time.Hour)),
		ImportanceLevel: "low",
	})
	require.NoError(t, err)
	assert.Equal(t, 12.5, task.PriorityScore)

	updated, err := f.svc.UpdateTask(ctx, f.user.ID, task.ID, TaskPatch{
		Deadline: testutil.Ptr(baseTime),
	})
	require.NoError(t, err)
	assert.Equal(t, 62.5, updated.PriorityScore)

	updated, err = f.svc.UpdateTask(ctx, f.user.ID, task.ID, TaskPatch{
		ImportanceLevel: testutil.Ptr("critical"),
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.PriorityScore)
	assert.Equal(t, "critical", updated.ImportanceLevel)
}

func TestTaskService_UpdateKeepsTimeSpent(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, f.user.ID, TaskInput{Name: "a", Deadline: testutil.Ptr(baseTime)})
	require.NoError(t, err)
	require.NoError(t, repository.NewTaskRepository(f.db).AddTimeSpent(ctx, task.ID, 7.5))

	updated, err := f.svc.UpdateTask(ctx, f.user.ID, task.ID, TaskPatch{Name: testutil.Ptr("b")})
	require.NoError(t, err)
	assert.Equal(t, 7.5, updated.TotalTimeSpent)
	assert.Equal(t, "b", updated.Name)
}

func TestTaskService_UpdateValidationAndOwnership(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, f.user.ID, TaskInput{Name: "a", Deadline: testutil.Ptr(baseTime)})
	require.NoError(t, err)

	_, err = f.svc.UpdateTask(ctx, f.user.ID, task.ID, TaskPatch{Status: testutil.Ptr("done")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.UpdateTask(ctx, f.user.ID, task.ID, TaskPatch{ImportanceLevel: testutil.Ptr("huge")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	other := testutil.CreateUser(t, f.db, "bob", model.RoleUser)
	_, err = f.svc.UpdateTask(ctx, other.ID, task.ID, TaskPatch{Name: testutil.Ptr("mine")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeleteTask(ctx, other.ID, task.ID), apperr.ErrNotFound)
	require.NoError(t, f.svc.DeleteTask(ctx, f.user.ID, task.ID))
	_, err = f.svc.GetTask(ctx, f.user.ID, task.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTaskService_CategoryCanBeCleared(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	categoryID := uuid.New()

	task, err := f.svc.CreateTask(ctx, f.user.ID, TaskInput{
		Name:     "a",
		Deadline: testutil.Ptr(baseTime),
		Category: categoryID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, task.CategoryID)
	assert.Equal(t, categoryID, *task.CategoryID)

	updated, err := f.svc.UpdateTask(ctx, f.user.ID, task.ID, TaskPatch{Category: testutil.Ptr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.CategoryID)
}

func TestTaskService_RuleChangeNeedsExplicitRescore(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, f.user.ID, TaskInput{
		Name:            "a",
		Deadline:        testutil.Ptr(baseTime),
		ImportanceLevel: "low",
	})
	require.NoError(t, err)
	assert.Equal(t, 62.5, task.PriorityScore)

	_, err = f.rules.Upsert(ctx, repository.RulePatch{ImportanceWeight: testutil.Ptr(0.0)}, uuid.New())
	require.NoError(t, err)

	stale, err := f.svc.GetTask(ctx, f.user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 62.5, stale.PriorityScore)

	n, err := f.svc.RescoreAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fresh, err := f.svc.GetTask(ctx, f.user.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, fresh.PriorityScore)

	n, err = f.svc.RescoreAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTaskService_ListInPriorityOrder(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()

	for _, in := range []TaskInput{
		{Name: "later", Deadline: testutil.Ptr(baseTime.Add(30 * 24 * time.Hour)), ImportanceLevel: "low"},
		{Name: "urgent", Deadline: testutil.Ptr(baseTime), ImportanceLevel: "critical"},
		{Name: "soon", Deadline: testutil.Ptr(baseTime.Add(2 * 24 * time.Hour)), ImportanceLevel: "medium"},
	} {
		_, err := f.svc.CreateTask(ctx, f.user.ID, in)
		require.NoError(t, err)
	}

	tasks, err := f.svc.ListTasks(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "urgent", tasks[0].Name)
	assert.Equal(t, "soon", tasks[1].Name)
	assert.Equal(t, "later", tasks[2].Name)
}
