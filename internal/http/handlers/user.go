package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sumiattri/task-manager/internal/http/response"
	"github.com/Sumiattri/task-manager/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), actor(c).UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, user)
}

// LinkTelegram stores the chat the daily digest goes to. chatId 0 unlinks.
func (h *UserHandler) LinkTelegram(c *gin.Context) {
	var req struct {
		ChatID int64 `json:"chatId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	user, err := h.userService.LinkTelegram(c.Request.Context(), actor(c).UserID, req.ChatID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	msg := "Telegram chat linked successfully"
	if req.ChatID == 0 {
		msg = "Telegram chat unlinked successfully"
	}
	response.RespondOK(c, gin.H{"message": msg, "user": user})
}
