package dashboard

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/middleware"
	"github.com/huangang/lvepanel/internal/services"
	"github.com/huangang/lvepanel/pkg/logger"
)

const (
	loginMissingFields = "Введіть ім'я користувача та пароль"
	loginFailed        = "Невірне ім'я користувача або пароль"
	loginDisabled      = "Обліковий запис вимкнено"
)

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	AuthType string `form:"auth_type"`
	Next     string `form:"next"`
}

// safeNext keeps redirects on this host.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if next == loginPath || strings.HasPrefix(next, loginPath+"?") {
		return "/"
	}
	return next
}

func (d *Dashboard) setSessionCookies(c *gin.Context, access string, accessExpire time.Time, refresh string, refreshExpire time.Time) {
	now := time.Now()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, access, int(accessExpire.Sub(now).Seconds()), "/", "", d.secureCookies, true)
	c.SetCookie(middleware.RefreshCookie, refresh, int(refreshExpire.Sub(now).Seconds()), "/", "", d.secureCookies, true)
}

func (d *Dashboard) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", d.secureCookies, true)
	c.SetCookie(middleware.RefreshCookie, "", -1, "/", "", d.secureCookies, true)
}

func (d *Dashboard) renderLogin(c *gin.Context, status int, form loginForm, message string) {
	c.HTML(status, "login.html", gin.H{
		"username":    form.Username,
		"next":        form.Next,
		"error":       message,
		"ldapEnabled": d.auth.IsLDAPEnabled(),
	})
}

// handleLoginPage shows the sign-in form. A still valid refresh cookie
// renews the session without asking for the password again.
func (d *Dashboard) handleLoginPage(c *gin.Context) {
	next := c.Query("next")
	if refresh, err := c.Cookie(middleware.RefreshCookie); err == nil && refresh != "" {
		result, err := d.auth.Refresh(refresh, c.ClientIP(), c.Request.UserAgent())
		if err == nil {
			d.setSessionCookies(c, result.AccessToken, result.AccessExpireAt, result.RefreshToken, result.RefreshExpireAt)
			c.Redirect(http.StatusSeeOther, safeNext(next))
			return
		}
		logger.Debug().Err(err).Msg("dashboard session refresh failed")
		d.clearSessionCookies(c)
	}
	d.renderLogin(c, http.StatusOK, loginForm{Next: next}, "")
}

func (d *Dashboard) handleLogin(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil || form.Username == "" || form.Password == "" {
		d.renderLogin(c, http.StatusBadRequest, form, loginMissingFields)
		return
	}

	result, err := d.auth.Login(&services.LoginRequest{
		Username: form.Username,
		Password: form.Password,
		AuthType: form.AuthType,
	}, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		services.LogWarning("Auth", "login", "failed dashboard login for "+form.Username, nil, c.ClientIP(), c.Request.UserAgent(), nil)
		message := loginFailed
		if errors.Is(err, services.ErrUserDisabled) {
			message = loginDisabled
		}
		d.renderLogin(c, http.StatusUnauthorized, form, message)
		return
	}

	d.setSessionCookies(c, result.AccessToken, result.AccessExpireAt, result.RefreshToken, result.RefreshExpireAt)
	services.LogInfo("Auth", "login", result.User.Username+" signed in to the dashboard", &result.User.ID, c.ClientIP(), c.Request.UserAgent(), nil)
	c.Redirect(http.StatusSeeOther, safeNext(form.Next))
}

func (d *Dashboard) handleLogout(c *gin.Context) {
	if refresh, err := c.Cookie(middleware.RefreshCookie); err == nil && refresh != "" {
		if err := d.auth.RevokeRefreshToken(refresh); err != nil {
			logger.Warn().Err(err).Msg("failed to revoke refresh token")
		}
	}
	d.clearSessionCookies(c)
	c.Redirect(http.StatusSeeOther, loginPath)
}
