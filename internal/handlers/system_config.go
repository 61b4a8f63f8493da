package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/config"
	"github.com/huangang/lvepanel/internal/services"
	"github.com/huangang/lvepanel/pkg/response"
	"gorm.io/gorm"
)

type SystemConfigHandler struct {
	configService      *services.SystemConfigService
	defaultAccessHours int
}

func NewSystemConfigHandler(db *gorm.DB, cfg *config.Config) *SystemConfigHandler {
	return &SystemConfigHandler{
		configService:      services.NewSystemConfigService(db),
		defaultAccessHours: cfg.JWT.ExpireHour,
	}
}

// GET /api/system-config/ldap
func (h *SystemConfigHandler) GetLDAPConfig(c *gin.Context) {
	response.Success(c, h.configService.GetLDAPConfig())
}

// PUT /api/system-config/ldap
func (h *SystemConfigHandler) UpdateLDAPConfig(c *gin.Context) {
	var req services.UpdateLDAPConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.UpdateLDAPConfig(&req); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, h.configService.GetLDAPConfig())
}

// GET /api/system-config/auth-session
func (h *SystemConfigHandler) GetAuthSessionConfig(c *gin.Context) {
	response.Success(c, h.configService.GetAuthSessionConfig(h.defaultAccessHours))
}

// PUT /api/system-config/auth-session
func (h *SystemConfigHandler) UpdateAuthSessionConfig(c *gin.Context) {
	var req services.UpdateAuthSessionConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configService.UpdateAuthSessionConfig(&req); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, h.configService.GetAuthSessionConfig(h.defaultAccessHours))
}
