package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/utils"
	"github.com/huangang/lvepanel/pkg/response"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"
	ContextSession  = "session"

	// SessionCookie carries the access token for the dashboard.
	SessionCookie = "lvepanel_session"
	// RefreshCookie carries the refresh token so sign-out can revoke it.
	RefreshCookie = "lvepanel_refresh"
)

var (
	errNoCredentials  = errors.New("authorization header required")
	errInvalidHeader  = errors.New("invalid authorization header format")
	errInvalidSession = errors.New("invalid or expired token")
)

// Session is the signed-in operator as read from the access token. Views
// receive it explicitly; it is never modified after the middleware builds it.
type Session struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity is what the layout prints after "Авторизований як:".
func (s *Session) Identity() string {
	if s == nil {
		return ""
	}
	if s.Email != "" {
		return s.Email
	}
	return s.Username
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == "admin"
}

// bearerToken extracts the token from "Authorization: Bearer <token>", falling
// back to the session cookie when no header is sent.
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
			return cookie, nil
		}
		return "", errNoCredentials
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errInvalidHeader
	}
	return parts[1], nil
}

func loadSession(c *gin.Context) (*Session, error) {
	token, err := bearerToken(c)
	if err != nil {
		return nil, err
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		return nil, errInvalidSession
	}

	session := &Session{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	c.Set(ContextUserID, session.UserID)
	c.Set(ContextUsername, session.Username)
	c.Set(ContextRole, session.Role)
	c.Set(ContextSession, session)
	return session, nil
}

// AuthRequired rejects API requests without a valid access token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := loadSession(c); err != nil {
			response.Abort(c, response.NewUnauthorized(err.Error()))
			return
		}
		c.Next()
	}
}

// DashboardAuthRequired sends visitors without a valid session cookie to
// loginPath, remembering where they were going.
func DashboardAuthRequired(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := loadSession(c); err != nil {
			target := loginPath
			if next := c.Request.URL.RequestURI(); next != "" && next != "/" {
				target += "?next=" + url.QueryEscape(next)
			}
			c.Redirect(http.StatusSeeOther, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired is a middleware that checks for admin role
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists || role != "admin" {
			response.Abort(c, response.NewForbidden("admin access required"))
			return
		}
		c.Next()
	}
}

// GetSession returns the session set by AuthRequired or DashboardAuthRequired.
func GetSession(c *gin.Context) *Session {
	if s, exists := c.Get(ContextSession); exists {
		if session, ok := s.(*Session); ok {
			return session
		}
	}
	return nil
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		if v, ok := id.(uint); ok {
			return v
		}
	}
	return 0
}

// GetUsername gets the current username from context
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextUsername)
}

func GetRole(c *gin.Context) string {
	return c.GetString(ContextRole)
}
