package service

import (
	"context"
	"math"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/priority"
	"github.com/Sumiattri/task-manager/internal/repository"
)

const recentTaskCount = 5

// RecentTask is the short form of a task shown in a progress report.
type RecentTask struct {
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	TimeSpent float64 `json:"timeSpent"`
}

// Progress summarises one user's tasks.
type Progress struct {
	TotalTasks        int64            `json:"totalTasks"`
	CompletedTasks    int64            `json:"completedTasks"`
	PendingTasks      int64            `json:"pendingTasks"`
	CompletionRate    float64          `json:"completionRate"`
	TotalTimeSpent    float64          `json:"totalTimeSpent"`
	TasksByStatus     map[string]int64 `json:"tasksByStatus"`
	TasksByImportance map[string]int64 `json:"tasksByImportance"`
	RecentTasks       []RecentTask     `json:"recentTasks"`
}

// Performance summarises activity across every user.
type Performance struct {
	TotalUsers        int64            `json:"totalUsers"`
	TotalTasks        int64            `json:"totalTasks"`
	CompletedTasks    int64            `json:"completedTasks"`
	PendingTasks      int64            `json:"pendingTasks"`
	TotalTimeLogs     int64            `json:"totalTimeLogs"`
	TotalTimeSpent    float64          `json:"totalTimeSpent"`
	TasksByStatus     map[string]int64 `json:"tasksByStatus"`
	TasksByImportance map[string]int64 `json:"tasksByImportance"`
}

// ReportService builds progress and performance reports.
type ReportService struct {
	users *repository.UserRepository
	tasks *repository.TaskRepository
	logs  *repository.TimeLogRepository
}

func NewReportService(users *repository.UserRepository, tasks *repository.TaskRepository, logs *repository.TimeLogRepository) *ReportService {
	return &ReportService{users: users, tasks: tasks, logs: logs}
}

func (s *ReportService) Progress(ctx context.Context, userID uuid.UUID) (*Progress, error) {
	stats, err := s.tasks.Stats(ctx, &userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.tasks.ListRecentByUser(ctx, userID, recentTaskCount)
	if err != nil {
		return nil, err
	}

	p := &Progress{
		TotalTasks:        stats.Total,
		CompletedTasks:    stats.Completed,
		PendingTasks:      stats.Total - stats.Completed,
		TotalTimeSpent:    round2(stats.TotalTimeSpent),
		TasksByStatus:     fillKeys(stats.ByStatus, model.StatusPending, model.StatusInProgress, model.StatusCompleted),
		TasksByImportance: fillKeys(stats.ByImportance, priority.CanonicalLevels...),
		RecentTasks:       make([]RecentTask, 0, len(recent)),
	}
	if stats.Total > 0 {
		p.CompletionRate = round2(float64(stats.Completed) / float64(stats.Total) * 100)
	}
	for _, t := range recent {
		p.RecentTasks = append(p.RecentTasks, RecentTask{Name: t.Name, Status: t.Status, TimeSpent: t.TotalTimeSpent})
	}
	return p, nil
}

func (s *ReportService) Performance(ctx context.Context) (*Performance, error) {
	var (
		users    int64
		taskStat repository.TaskStats
		logStat  repository.TimeLogStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.users.Count(gctx)
		users = n
		return err
	})
	g.Go(func() error {
		st, err := s.tasks.Stats(gctx, nil)
		taskStat = st
		return err
	})
	g.Go(func() error {
		st, err := s.logs.Stats(gctx)
		logStat = st
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Performance{
		TotalUsers:        users,
		TotalTasks:        taskStat.Total,
		CompletedTasks:    taskStat.Completed,
		PendingTasks:      taskStat.Total - taskStat.Completed,
		TotalTimeLogs:     logStat.Count,
		TotalTimeSpent:    logStat.TotalDuration,
		TasksByStatus:     taskStat.ByStatus,
		TasksByImportance: taskStat.ByImportance,
	}, nil
}

func fillKeys(m map[string]int64, keys ...string) map[string]int64 {
	out := make(map[string]int64, len(m)+len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	for k, v := range m {
		out[k] = v
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
