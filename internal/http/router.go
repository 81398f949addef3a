package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/Sumiattri/task-manager/internal/http/handlers"
	httpMW "github.com/Sumiattri/task-manager/internal/http/middleware"
	"github.com/Sumiattri/task-manager/internal/logger"
)

type RouterConfig struct {
	Log             *logger.Logger
	AllowOrigins    []string
	AuthMiddleware  *httpMW.AuthMiddleware
	AuthHandler     *httpH.AuthHandler
	UserHandler     *httpH.UserHandler
	RuleHandler     *httpH.RuleHandler
	CategoryHandler *httpH.CategoryHandler
	TaskHandler     *httpH.TaskHandler
	TimeLogHandler  *httpH.TimeLogHandler
	ReportHandler   *httpH.ReportHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	// Auth (public)
	if cfg.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)
	}

	user := api.Group("/user")
	user.Use(cfg.AuthMiddleware.RequireAuth())
	{
		if cfg.UserHandler != nil {
			user.GET("/me", cfg.UserHandler.GetMe)
			user.PUT("/telegram", cfg.UserHandler.LinkTelegram)
		}
		if cfg.TaskHandler != nil {
			user.POST("/tasks", cfg.TaskHandler.Create)
			user.GET("/tasks", cfg.TaskHandler.List)
			user.PUT("/tasks/:id", cfg.TaskHandler.Update)
			user.DELETE("/tasks/:id", cfg.TaskHandler.Delete)
		}
		if cfg.TimeLogHandler != nil {
			user.POST("/time-logs", cfg.TimeLogHandler.Log)
			user.GET("/time-logs", cfg.TimeLogHandler.List)
			user.PUT("/time-logs/:id/stop", cfg.TimeLogHandler.Stop)
		}
		if cfg.ReportHandler != nil {
			user.GET("/progress", cfg.ReportHandler.Progress)
		}
		if cfg.CategoryHandler != nil {
			user.GET("/categories", cfg.CategoryHandler.List)
		}
	}

	admin := api.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
	{
		if cfg.RuleHandler != nil {
			admin.GET("/prioritization-rules", cfg.RuleHandler.GetRule)
			admin.POST("/prioritization-rules", cfg.RuleHandler.UpdateRule)
		}
		if cfg.CategoryHandler != nil {
			admin.POST("/categories", cfg.CategoryHandler.Create)
			admin.GET("/categories", cfg.CategoryHandler.ListAdmin)
			admin.PUT("/categories/:id", cfg.CategoryHandler.Update)
			admin.DELETE("/categories/:id", cfg.CategoryHandler.Delete)
		}
		if cfg.TaskHandler != nil {
			admin.POST("/tasks/rescore", cfg.TaskHandler.Rescore)
		}
		if cfg.ReportHandler != nil {
			admin.GET("/performance", cfg.ReportHandler.Performance)
		}
	}

	return r
}
