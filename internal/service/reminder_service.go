package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/repository"
)

// DigestTaskLimit caps how many tasks one digest lists.
const DigestTaskLimit = 10

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	taskRepo *repository.TaskRepository
}

func NewReminderService(taskRepo *repository.TaskRepository) *ReminderService {
	return &ReminderService{taskRepo: taskRepo}
}

// DailySummary lists the user's open tasks in priority order as Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	tasks, err := s.taskRepo.ListOpenByUser(ctx, user.ID, DigestTaskLimit)
	if err != nil {
		return "", err
	}
	return FormatDigest(user, tasks, now), nil
}

// FormatDigest renders the digest text for tasks, which must already be in
// priority order.
func FormatDigest(user model.User, tasks []model.Task, now time.Time) string {
	var builder strings.Builder
	builder.WriteString("📋 <b>Daily digest</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s · %s\n\n", now.Format("2006-01-02"), html.EscapeString(user.Username)))

	builder.WriteString("🔥 <b>Open tasks by priority</b>\n")
	if len(tasks) == 0 {
		builder.WriteString("- nothing open\n")
	} else {
		for i, task := range tasks {
			builder.WriteString(FormatTask(i+1, task, now))
		}
	}
	return strings.TrimSpace(builder.String())
}

// FormatTask renders one task line with its deadline hint.
func FormatTask(position int, task model.Task, now time.Time) string {
	var sb strings.Builder

	deadline := task.Deadline.In(now.Location())
	icon := "🟢"
	switch {
	case now.After(deadline):
		icon = "⚠️"
	case deadline.Sub(now) <= 48*time.Hour:
		icon = "⏳"
	}

	title := html.EscapeString(strings.TrimSpace(task.Name))
	sb.WriteString(fmt.Sprintf("%d. %s %s <code>%.1f</code>", position, icon, title, task.PriorityScore))

	if task.Category != nil {
		if name := strings.TrimSpace(task.Category.Name); name != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
		}
	}

	if now.After(deadline) {
		sb.WriteString(fmt.Sprintf("\n   ⏰ due %s, <b>overdue</b>", deadline.Format("2006-01-02")))
	} else {
		daysLeft := int(deadline.Sub(now).Hours()/24) + 1
		sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · about %d day(s) left", deadline.Format("2006-01-02"), daysLeft))
	}
	sb.WriteString(fmt.Sprintf(" · %s", task.ImportanceLevel))
	if task.Status == model.StatusInProgress {
		sb.WriteString(" · in progress")
	}

	sb.WriteByte('\n')
	return sb.String()
}
