package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sumiattri/task-manager/internal/http/response"
	"github.com/Sumiattri/task-manager/internal/service"
)

type RuleHandler struct {
	ruleService *service.RuleService
}

func NewRuleHandler(ruleService *service.RuleService) *RuleHandler {
	return &RuleHandler{ruleService: ruleService}
}

// GetRule returns the active rule, or the defaults with revision 0.
func (h *RuleHandler) GetRule(c *gin.Context) {
	rule, err := h.ruleService.Current(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, rule)
}

// UpdateRule merges the body into the active rule. A stale revision yields 409.
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	var req struct {
		DeadlineWeight   *float64       `json:"deadlineWeight"`
		ImportanceWeight *float64       `json:"importanceWeight"`
		ImportanceLevels map[string]int `json:"importanceLevels"`
		Revision         *int64         `json:"revision"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	a := actor(c)
	rule, err := h.ruleService.Update(c.Request.Context(), a.UserID, service.RuleUpdate{
		DeadlineWeight:   req.DeadlineWeight,
		ImportanceWeight: req.ImportanceWeight,
		ImportanceLevels: req.ImportanceLevels,
		Revision:         req.Revision,
	})
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"message":    "Prioritization rules configured successfully",
		"rule":       rule,
		"modifiedBy": a.Username,
	})
}
