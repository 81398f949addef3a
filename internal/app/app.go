// Package app wires configuration, storage, services and transports together.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Sumiattri/task-manager/internal/bot"
	"github.com/Sumiattri/task-manager/internal/cache"
	"github.com/Sumiattri/task-manager/internal/config"
	apphttp "github.com/Sumiattri/task-manager/internal/http"
	httpH "github.com/Sumiattri/task-manager/internal/http/handlers"
	httpMW "github.com/Sumiattri/task-manager/internal/http/middleware"
	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/repository"
	"github.com/Sumiattri/task-manager/internal/service"
)

const digestTimeout = 2 * time.Minute

// Repositories groups the storage layer.
type Repositories struct {
	Users      *repository.UserRepository
	Categories *repository.CategoryRepository
	Tasks      *repository.TaskRepository
	TimeLogs   *repository.TimeLogRepository
	Rules      *repository.RuleRepository
}

// Services groups the application services.
type Services struct {
	Auth       *service.AuthService
	Users      *service.UserService
	Rules      *service.RuleService
	Categories *service.CategoryService
	Tasks      *service.TaskService
	Time       *service.TimeService
	Reports    *service.ReportService
	Reminder   *service.ReminderService
}

// App holds every long-lived dependency of the process.
type App struct {
	Cfg      config.Config
	Log      *logger.Logger
	DB       *gorm.DB
	Redis    *redis.Client
	Repos    Repositories
	Services Services
}

// New opens storage and builds the services. Redis is optional outside of
// production: a missing or unreachable server only disables the rule cache.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	db, err := repository.NewDB(cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	log.Info("connected to database", "driver", cfg.DBDriver)

	a := &App{Cfg: cfg, Log: log, DB: db}

	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		switch {
		case err == nil:
			a.Redis = client
			log.Info("connected to Redis")
		case cfg.IsProduction():
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		default:
			log.Warn("Redis not available, rule cache disabled", "error", err)
		}
	}

	a.Repos = Repositories{
		Users:      repository.NewUserRepository(db),
		Categories: repository.NewCategoryRepository(db),
		Tasks:      repository.NewTaskRepository(db),
		TimeLogs:   repository.NewTimeLogRepository(db),
		Rules:      repository.NewRuleRepository(db),
	}

	var ruleCache service.RuleCache
	if a.Redis != nil {
		ruleCache = cache.NewRuleCache(a.Redis, cfg.RuleCacheTTL, log)
	}

	a.Services = Services{
		Auth:       service.NewAuthService(a.Repos.Users, cfg.JWTSecret, cfg.JWTTTL, cfg.AllowAdminSignup, log),
		Users:      service.NewUserService(a.Repos.Users, log),
		Rules:      service.NewRuleService(a.Repos.Rules, ruleCache, log),
		Categories: service.NewCategoryService(a.Repos.Categories, log),
		Tasks:      service.NewTaskService(a.Repos.Tasks, a.Repos.Rules, log),
		Time:       service.NewTimeService(db, a.Repos.Tasks, a.Repos.TimeLogs, log),
		Reports:    service.NewReportService(a.Repos.Users, a.Repos.Tasks, a.Repos.TimeLogs),
		Reminder:   service.NewReminderService(a.Repos.Tasks),
	}
	return a, nil
}

// RouterConfig builds the HTTP routing table over the services.
func (a *App) RouterConfig() apphttp.RouterConfig {
	return apphttp.RouterConfig{
		Log:             a.Log,
		AllowOrigins:    a.Cfg.FrontendOrigins,
		AuthMiddleware:  httpMW.NewAuthMiddleware(a.Log, a.Services.Auth),
		AuthHandler:     httpH.NewAuthHandler(a.Services.Auth),
		UserHandler:     httpH.NewUserHandler(a.Services.Users),
		RuleHandler:     httpH.NewRuleHandler(a.Services.Rules),
		CategoryHandler: httpH.NewCategoryHandler(a.Services.Categories),
		TaskHandler:     httpH.NewTaskHandler(a.Services.Tasks),
		TimeLogHandler:  httpH.NewTimeLogHandler(a.Services.Time),
		ReportHandler:   httpH.NewReportHandler(a.Services.Reports),
		HealthHandler:   httpH.NewHealthHandler(),
	}
}

// Serve runs the HTTP API and, when a Telegram token is configured, the bot
// and its daily digest, until ctx is cancelled or one of them fails.
func (a *App) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	server := apphttp.NewServer(a.Cfg.HTTPAddr, a.RouterConfig())
	g.Go(func() error { return server.Run(gctx) })

	if a.Cfg.TelegramToken != "" {
		telegramBot, err := bot.New(a.Cfg.TelegramToken, bot.Services{
			Users:    a.Services.Users,
			Tasks:    a.Services.Tasks,
			Reports:  a.Services.Reports,
			Reminder: a.Services.Reminder,
		}, a.Log)
		if err != nil {
			return err
		}

		scheduler := service.NewSchedulerService(time.Local)
		if _, err := scheduler.ScheduleDaily(a.Cfg.DigestTime, func() {
			jobCtx, cancel := context.WithTimeout(gctx, digestTimeout)
			defer cancel()
			if _, err := telegramBot.SendDailyDigests(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.Log.Error("daily digest failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("schedule digest: %w", err)
		}
		scheduler.Start()
		a.Log.Info("daily digest scheduled", "at", a.Cfg.DigestTime)

		g.Go(func() error {
			<-gctx.Done()
			scheduler.Stop()
			return nil
		})
		g.Go(func() error { return telegramBot.Start(gctx) })
	} else {
		a.Log.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	return g.Wait()
}

// Close releases database and Redis connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("close redis", "error", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
