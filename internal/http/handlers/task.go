package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/http/response"
	"github.com/Sumiattri/task-manager/internal/service"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req struct {
		Name            string `json:"name"`
		Description     string `json:"description"`
		Deadline        string `json:"deadline"`
		ImportanceLevel string `json:"importanceLevel"`
		Category        string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Deadline == "" {
		response.RespondAppError(c, apperr.Validation("deadline is required"))
		return
	}
	deadline, err := parseTime("deadline", req.Deadline)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), actor(c).UserID, service.TaskInput{
		Name:            req.Name,
		Description:     req.Description,
		Deadline:        &deadline,
		ImportanceLevel: req.ImportanceLevel,
		Category:        req.Category,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Task priority set successfully", "task": task})
}

// List returns the caller's tasks, highest priority first.
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.taskService.ListTasks(c.Request.Context(), actor(c).UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, tasks)
}

func (h *TaskHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	var req struct {
		Name            *string `json:"name"`
		Description     *string `json:"description"`
		Deadline        *string `json:"deadline"`
		ImportanceLevel *string `json:"importanceLevel"`
		Status          *string `json:"status"`
		Category        *string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	deadline, err := parseOptionalTime("deadline", req.Deadline)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), actor(c).UserID, id, service.TaskPatch{
		Name:            req.Name,
		Description:     req.Description,
		Deadline:        deadline,
		ImportanceLevel: req.ImportanceLevel,
		Status:          req.Status,
		Category:        req.Category,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Task updated successfully", "task": task})
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if err := h.taskService.DeleteTask(c.Request.Context(), actor(c).UserID, id); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Task deleted successfully"})
}

// Rescore recomputes every stored score under the active rule.
func (h *TaskHandler) Rescore(c *gin.Context) {
	updated, err := h.taskService.RescoreAll(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Tasks rescored successfully", "updated": updated})
}
