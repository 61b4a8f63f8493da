// Package dashboard serves the server-rendered operator pages.
package dashboard

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/config"
	"github.com/huangang/lvepanel/internal/datastore"
	"github.com/huangang/lvepanel/internal/middleware"
	"github.com/huangang/lvepanel/internal/services"
	"gorm.io/gorm"
)

const loginPath = "/login"

// Opts holds what the dashboard needs from the rest of the server.
type Opts struct {
	DB     *gorm.DB
	Store  *datastore.Client
	Config *config.Config
	// LoginLimiter guards POST /login. Nil disables limiting.
	LoginLimiter gin.HandlerFunc
}

// Dashboard renders the operator pages.
type Dashboard struct {
	auth          *services.AuthService
	users         *services.SystemUserService
	versions      *services.VersionService
	secureCookies bool
	loginLimiter  gin.HandlerFunc
}

func New(opts Opts) (*Dashboard, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("dashboard: db is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("dashboard: store is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	return &Dashboard{
		auth:          services.NewAuthService(opts.DB, &cfg.JWT, &cfg.LDAP),
		users:         services.NewSystemUserService(opts.Store),
		versions:      services.NewVersionService(opts.Store),
		secureCookies: cfg.Server.Mode == gin.ReleaseMode,
		loginLimiter:  opts.LoginLimiter,
	}, nil
}

// Register installs the templates, static assets and pages on router.
func (d *Dashboard) Register(router *gin.Engine) error {
	tmpl, err := parseTemplates()
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	staticFS, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	router.StaticFS("/static", http.FS(staticFS))

	router.GET(loginPath, d.handleLoginPage)
	if d.loginLimiter != nil {
		router.POST(loginPath, d.loginLimiter, d.handleLogin)
	} else {
		router.POST(loginPath, d.handleLogin)
	}

	pages := router.Group("")
	pages.Use(middleware.DashboardAuthRequired(loginPath), middleware.AuditLog())
	pages.POST("/logout", d.handleLogout)
	pages.GET("/", d.handleIndex)
	pages.GET("/users/new", d.handleNewUser)
	pages.POST("/users", d.handleCreateUser)
	pages.GET("/users/:id", d.handleUserDetail)
	pages.GET("/versions", d.handleVersions)
	pages.GET("/settings", d.handleSettings)
	return nil
}

var funcMap = template.FuncMap{
	"formatCreatedAt": formatCreatedAt,
	"presentation":    services.PresentationFor,
	"engineLabel": func(engine string) string {
		return services.PresentationFor(engine).Label
	},
}

// formatCreatedAt renders a timestamp the way the ru-RU locale does.
func formatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("02.01.2006, 15:04:05")
}

// parseTemplates loads the embedded HTML templates.
func parseTemplates() (*template.Template, error) {
	tmpl, err := template.New("dashboard").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}
