package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/repository"
	"github.com/Sumiattri/task-manager/internal/testutil"
)

type timeFixture struct {
	svc   *TimeService
	tasks *repository.TaskRepository
	clock *testutil.Clock
	user  *model.User
	task  *model.Task
}

func newTimeFixture(t *testing.T) timeFixture {
	t.Helper()
	db := testutil.OpenDB(t)
	clock := testutil.NewClock(baseTime)
	tasks := repository.NewTaskRepository(db)
	user := testutil.CreateUser(t, db, "alice", model.RoleUser)

	task := &model.Task{
		UserID:          user.ID,
		Name:            "deep work",
		Deadline:        baseTime.Add(24 * time.Hour),
		ImportanceLevel: "high",
		Status:          model.StatusPending,
	}
	require.NoError(t, tasks.Create(context.Background(), task))

	svc := NewTimeService(db, tasks, repository.NewTimeLogRepository(db), logger.NewNop()).WithClock(clock.Now)
	return timeFixture{svc: svc, tasks: tasks, clock: clock, user: user, task: task}
}

func (f timeFixture) totalSpent(t *testing.T) float64 {
	t.Helper()
	task, err := f.tasks.FindByID(context.Background(), f.user.ID, f.task.ID)
	require.NoError(t, err)
	return task.TotalTimeSpent
}

func TestTimeService_StartStopAddsMinutes(t *testing.T) {
	f := newTimeFixture(t)
	ctx := context.Background()

	entry, err := f.svc.Log(ctx, f.user.ID, TimeLogInput{TaskID: f.task.ID})
	require.NoError(t, err)
	assert.True(t, entry.IsActive)
	assert.Equal(t, baseTime, entry.StartTime)

	f.clock.Advance(90 * time.Second)
	stopped, err := f.svc.Stop(ctx, f.user.ID, entry.ID)
	require.NoError(t, err)
	assert.False(t, stopped.IsActive)
	assert.Equal(t, 1.5, stopped.Duration)
	require.NotNil(t, stopped.EndTime)
	assert.Equal(t, baseTime.Add(90*time.Second), *stopped.EndTime)

	assert.Equal(t, 1.5, f.totalSpent(t))
}

func TestTimeService_ConcurrentStopsBothCount(t *testing.T) {
	f := newTimeFixture(t)
	ctx := context.Background()

	first, err := f.svc.Start(ctx, f.user.ID, f.task.ID, nil)
	require.NoError(t, err)
	second, err := f.svc.Start(ctx, f.user.ID, f.task.ID, nil)
	require.NoError(t, err)

	f.clock.Advance(90 * time.Second)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.svc.Stop(ctx, f.user.ID, id)
		}(i, id)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 3.0, f.totalSpent(t))
}

func TestTimeService_DoubleStopCountsOnce(t *testing.T) {
	f := newTimeFixture(t)
	ctx := context.Background()

	entry, err := f.svc.Start(ctx, f.user.ID, f.task.ID, nil)
	require.NoError(t, err)
	f.clock.Advance(90 * time.Second)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Stop(ctx, f.user.ID, entry.ID)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, apperr.ErrNotFound)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, 1.5, f.totalSpent(t))
}

func TestTimeService_RecordFinishedInterval(t *testing.T) {
	f := newTimeFixture(t)
	ctx := context.Background()

	start := baseTime.Add(-30 * time.Minute)
	end := baseTime
	entry, err := f.svc.Log(ctx, f.user.ID, TimeLogInput{TaskID: f.task.ID, StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	assert.False(t, entry.IsActive)
	assert.Equal(t, 30.0, entry.Duration)
	assert.Equal(t, 30.0, f.totalSpent(t))

	logs, err := f.svc.ListLogs(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].Task)
	assert.Equal(t, f.task.ID, logs[0].Task.ID)
}

func TestTimeService_RejectsEndBeforeStart(t *testing.T) {
	f := newTimeFixture(t)

	start := baseTime
	end := baseTime.Add(-time.Minute)
	_, err := f.svc.Log(context.Background(), f.user.ID, TimeLogInput{TaskID: f.task.ID, StartTime: &start, EndTime: &end})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, f.totalSpent(t))
}

func TestTimeService_ForeignTaskIsNotFound(t *testing.T) {
	f := newTimeFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, uuid.New(), f.task.ID, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Start(ctx, f.user.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTimeService_StopAfterTaskDeleted(t *testing.T) {
	f := newTimeFixture(t)
	ctx := context.Background()

	entry, err := f.svc.Start(ctx, f.user.ID, f.task.ID, nil)
	require.NoError(t, err)
	require.NoError(t, f.tasks.Delete(ctx, f.user.ID, f.task.ID))

	f.clock.Advance(time.Minute)
	stopped, err := f.svc.Stop(ctx, f.user.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, stopped.Duration)
}

func TestMinutes(t *testing.T) {
	assert.Equal(t, 1.5, Minutes(baseTime, baseTime.Add(90*time.Second)))
	assert.Zero(t, Minutes(baseTime, baseTime))
	assert.Zero(t, Minutes(baseTime, baseTime.Add(-time.Second)))
}
