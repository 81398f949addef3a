package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/http/response"
	"github.com/Sumiattri/task-manager/internal/service"
)

type TimeLogHandler struct {
	timeService *service.TimeService
}

func NewTimeLogHandler(timeService *service.TimeService) *TimeLogHandler {
	return &TimeLogHandler{timeService: timeService}
}

// Log starts an interval, or records a finished one when endTime is given.
func (h *TimeLogHandler) Log(c *gin.Context) {
	var req struct {
		TaskID    string  `json:"taskId"`
		StartTime *string `json:"startTime"`
		EndTime   *string `json:"endTime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		response.RespondAppError(c, apperr.Validation("taskId must be a valid id"))
		return
	}
	start, err := parseOptionalTime("startTime", req.StartTime)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	end, err := parseOptionalTime("endTime", req.EndTime)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	entry, err := h.timeService.Log(c.Request.Context(), actor(c).UserID, service.TimeLogInput{
		TaskID:    taskID,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Time entry logged successfully", "timeLog": entry})
}

// List returns the caller's logs, newest first.
func (h *TimeLogHandler) List(c *gin.Context) {
	logs, err := h.timeService.ListLogs(c.Request.Context(), actor(c).UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, logs)
}

func (h *TimeLogHandler) Stop(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	entry, err := h.timeService.Stop(c.Request.Context(), actor(c).UserID, id)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Time tracking stopped successfully", "timeLog": entry})
}
