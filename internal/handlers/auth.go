package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/config"
	"github.com/huangang/lvepanel/internal/middleware"
	"github.com/huangang/lvepanel/internal/services"
	"github.com/huangang/lvepanel/pkg/response"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: services.NewAuthService(db, &cfg.JWT, &cfg.LDAP),
	}
}

type loginResponse struct {
	Token           string      `json:"token"`
	ExpireAt        int64       `json:"expire_at"`
	RefreshToken    string      `json:"refresh_token"`
	RefreshExpireAt int64       `json:"refresh_expire_at"`
	User            interface{} `json:"user,omitempty"`
	DisplayIdentity string      `json:"display_identity,omitempty"`
}

// Login handles operator login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		services.LogWarning("Auth", "login", "failed login for "+req.Username, nil, c.ClientIP(), c.Request.UserAgent(), nil)
		response.Unauthorized(c, err.Error())
		return
	}

	services.LogInfo("Auth", "login", result.User.Username+" signed in", &result.User.ID, c.ClientIP(), c.Request.UserAgent(), nil)
	response.Success(c, loginResponse{
		Token:           result.AccessToken,
		ExpireAt:        result.AccessExpireAt.Unix(),
		RefreshToken:    result.RefreshToken,
		RefreshExpireAt: result.RefreshExpireAt.Unix(),
		User:            result.User,
		DisplayIdentity: result.User.DisplayIdentity(),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh rotates a refresh token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Refresh(req.RefreshToken, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	response.Success(c, loginResponse{
		Token:           result.AccessToken,
		ExpireAt:        result.AccessExpireAt.Unix(),
		RefreshToken:    result.RefreshToken,
		RefreshExpireAt: result.RefreshExpireAt.Unix(),
	})
}

// GetCurrentUser returns the signed-in operator
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.GetUserByID(middleware.GetUserID(c))
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	response.Success(c, gin.H{
		"user":             user,
		"display_identity": user.DisplayIdentity(),
	})
}

// GetAuthConfig returns authentication configuration
// GET /api/auth/config
func (h *AuthHandler) GetAuthConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"ldap_enabled": h.authService.IsLDAPEnabled(),
	})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the refresh token, from the body or the refresh cookie.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(middleware.RefreshCookie)
	}

	if err := h.authService.RevokeRefreshToken(req.RefreshToken); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "logged out successfully"})
}

// ChangePassword changes a local operator's password
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.ChangePassword(middleware.GetUserID(c), &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "password changed"})
}

// CreateAdminIfNotExists creates default admin user
func (h *AuthHandler) CreateAdminIfNotExists() error {
	return h.authService.CreateAdminIfNotExists()
}
