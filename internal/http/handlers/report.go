package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Sumiattri/task-manager/internal/http/response"
	"github.com/Sumiattri/task-manager/internal/service"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) Progress(c *gin.Context) {
	progress, err := h.reportService.Progress(c.Request.Context(), actor(c).UserID)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, progress)
}

func (h *ReportHandler) Performance(c *gin.Context) {
	perf, err := h.reportService.Performance(c.Request.Context())
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, perf)
}
