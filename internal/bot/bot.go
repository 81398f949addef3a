package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/service"
)

const topTaskCount = 5

// sender is the part of the Telegram API the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Services are the application services the bot reads from.
type Services struct {
	Users    *service.UserService
	Tasks    *service.TaskService
	Reports  *service.ReportService
	Reminder *service.ReminderService
}

// Bot answers commands from linked Telegram chats and delivers the daily digest.
type Bot struct {
	client *tgbotapi.BotAPI
	api    sender
	svc    Services
	log    *logger.Logger
	now    func() time.Time
}

func New(token string, svc Services, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	b := newBot(api, svc, log)
	b.client = api
	b.log.Info("bot authorized", "account", api.Self.UserName)
	return b, nil
}

func newBot(api sender, svc Services, log *logger.Logger) *Bot {
	return &Bot{
		api: api,
		svc: svc,
		log: log.With("component", "TelegramBot"),
		now: time.Now,
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot has no telegram client")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.log.Warn("handle message failed", "chat_id", update.Message.Chat.ID, "error", err)
		}
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only understand commands. Try /help.")
	}
	b.log.Debug("command received", "chat_id", msg.Chat.ID, "command", msg.Command())

	switch msg.Command() {
	case "start":
		return b.sendText(msg.Chat.ID, startText(msg.Chat.ID))
	case "help":
		return b.sendText(msg.Chat.ID, helpText())
	case "tasks":
		return b.handleTasks(ctx, msg)
	case "progress":
		return b.handleProgress(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleTasks(ctx context.Context, msg *tgbotapi.Message) error {
	user, ok, err := b.linkedUser(ctx, msg.Chat.ID)
	if err != nil || !ok {
		return err
	}
	tasks, err := b.svc.Tasks.ListOpen(ctx, user.ID, topTaskCount)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Could not load tasks right now.")
	}
	return b.sendText(msg.Chat.ID, formatTaskList(tasks, b.now().UTC()))
}

func (b *Bot) handleProgress(ctx context.Context, msg *tgbotapi.Message) error {
	user, ok, err := b.linkedUser(ctx, msg.Chat.ID)
	if err != nil || !ok {
		return err
	}
	progress, err := b.svc.Reports.Progress(ctx, user.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Could not build the report right now.")
	}
	return b.sendText(msg.Chat.ID, formatProgress(progress))
}

// linkedUser resolves the account for chatID and tells the chat how to link
// when there is none.
func (b *Bot) linkedUser(ctx context.Context, chatID int64) (*model.User, bool, error) {
	user, err := b.svc.Users.FindByTelegram(ctx, chatID)
	if err == nil {
		return user, true, nil
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, false, b.sendText(chatID, startText(chatID))
	}
	return nil, false, err
}

// SendDailyDigests sends each linked user their open tasks in priority order
// and returns how many digests went out.
func (b *Bot) SendDailyDigests(ctx context.Context) (int, error) {
	users, err := b.svc.Users.ListTelegramUsers(ctx)
	if err != nil {
		return 0, err
	}
	now := b.now().UTC()
	sent := 0
	for _, user := range users {
		select {
		case <-ctx.Done():
			return sent, ctx.Err()
		default:
		}
		if user.TelegramChatID == nil {
			continue
		}
		text, err := b.svc.Reminder.DailySummary(ctx, user, now)
		if err != nil {
			b.log.Warn("build digest failed", "user_id", user.ID.String(), "error", err)
			continue
		}
		if err := b.sendText(*user.TelegramChatID, text); err != nil {
			b.log.Warn("send digest failed", "user_id", user.ID.String(), "error", err)
			continue
		}
		sent++
	}
	b.log.Info("daily digests sent", "sent", sent, "linked", len(users))
	return sent, nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func startText(chatID int64) string {
	return fmt.Sprintf(
		"👋 <b>Task manager digest</b>\n\nYour chat id is <code>%d</code>.\n"+
			"Link it from the app with <code>PUT /api/user/telegram {\"chatId\": %d}</code>, "+
			"then use /tasks and /progress here.",
		chatID, chatID,
	)
}

func helpText() string {
	return "ℹ️ <b>Commands</b>\n" +
		"• /start, your chat id and how to link it\n" +
		"• /tasks, top open tasks by priority\n" +
		"• /progress, completion and time totals\n" +
		"• /help, this list"
}

func formatTaskList(tasks []model.Task, now time.Time) string {
	if len(tasks) == 0 {
		return "✅ No open tasks."
	}
	var sb strings.Builder
	sb.WriteString("🔥 <b>Top tasks</b>\n")
	for i, task := range tasks {
		sb.WriteString(service.FormatTask(i+1, task, now))
	}
	return strings.TrimSpace(sb.String())
}

func formatProgress(p *service.Progress) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Progress</b>\n")
	sb.WriteString(fmt.Sprintf("• Tasks: %d (%d completed, %d open)\n", p.TotalTasks, p.CompletedTasks, p.PendingTasks))
	sb.WriteString(fmt.Sprintf("• Completion rate: %.2f%%\n", p.CompletionRate))
	sb.WriteString(fmt.Sprintf("• Time spent: %.2f min\n", p.TotalTimeSpent))
	if len(p.RecentTasks) > 0 {
		sb.WriteString("\n🕑 <b>Recent</b>\n")
		for _, t := range p.RecentTasks {
			sb.WriteString(fmt.Sprintf("• %s · %s · %.1f min\n", escape(t.Name), t.Status, t.TimeSpent))
		}
	}
	return strings.TrimSpace(sb.String())
}

func escape(s string) string {
	return html.EscapeString(s)
}
