package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/services"
	"github.com/huangang/lvepanel/pkg/response"
	"gorm.io/gorm"
)

type SystemLogHandler struct {
	systemLogService *services.SystemLogService
}

func NewSystemLogHandler(db *gorm.DB) *SystemLogHandler {
	return &SystemLogHandler{
		systemLogService: services.NewSystemLogService(db),
	}
}

// List returns system logs, newest first
// GET /api/system-logs
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.systemLogService.List(&req)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, resp)
}

// GetModules returns the distinct modules that have logged
// GET /api/system-logs/modules
func (h *SystemLogHandler) GetModules(c *gin.Context) {
	modules, err := h.systemLogService.GetModules()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"modules": modules})
}

// Cleanup runs the retention cleanup now
// POST /api/system-logs/cleanup
func (h *SystemLogHandler) Cleanup(c *gin.Context) {
	days := h.systemLogService.GetRetentionDays()
	deleted, err := h.systemLogService.CleanupOldLogs(days)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"deleted": deleted, "retention_days": days})
}
