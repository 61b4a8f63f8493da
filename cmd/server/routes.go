package main

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/dashboard"
	"github.com/huangang/lvepanel/internal/handlers"
	"github.com/huangang/lvepanel/internal/middleware"
	"github.com/huangang/lvepanel/pkg/logger"
)

// registerRoutes sets up the dashboard pages and the JSON API.
func registerRoutes(r *gin.Engine, a *app) error {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.CORS())

	r.GET("/health", handlers.NewHealthHandler(a.db, a.store, a.cfg.DataStore.Backend).CheckHealth)

	board, err := dashboard.New(dashboard.Opts{
		DB:           a.db,
		Store:        a.store,
		Config:       a.cfg,
		LoginLimiter: a.loginLimiter.Middleware(),
	})
	if err != nil {
		return err
	}
	if err := board.Register(r); err != nil {
		return err
	}

	authHandler := handlers.NewAuthHandler(a.db, a.cfg)
	userHandler := handlers.NewSystemUserHandler(a.store)
	versionHandler := handlers.NewVersionHandler(a.store)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", a.loginLimiter.Middleware(), authHandler.Login)
			auth.POST("/refresh", a.loginLimiter.Middleware(), authHandler.Refresh)
			auth.GET("/config", authHandler.GetAuthConfig)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			protected.GET("/auth/me", authHandler.GetCurrentUser)
			protected.POST("/auth/logout", authHandler.Logout)
			protected.POST("/auth/change-password", authHandler.ChangePassword)

			protected.GET("/system-users", userHandler.List)
			protected.GET("/system-users/stats", userHandler.Stats)
			protected.GET("/system-users/:id", userHandler.Get)
			protected.POST("/system-users", userHandler.Create)

			protected.GET("/versions", versionHandler.Browse)
			protected.GET("/versions/lookup", versionHandler.Lookup)

			protected.GET("/settings", handlers.GetSettings)
			protected.GET("/navigation", handlers.GetNavigation)
		}

		// Admin only routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog())
		{
			systemLogHandler := handlers.NewSystemLogHandler(a.db)
			admin.GET("/system-logs", systemLogHandler.List)
			admin.GET("/system-logs/modules", systemLogHandler.GetModules)
			admin.POST("/system-logs/cleanup", systemLogHandler.Cleanup)

			systemConfigHandler := handlers.NewSystemConfigHandler(a.db, a.cfg)
			admin.GET("/system-config/ldap", systemConfigHandler.GetLDAPConfig)
			admin.PUT("/system-config/ldap", systemConfigHandler.UpdateLDAPConfig)
			admin.GET("/system-config/auth-session", systemConfigHandler.GetAuthSessionConfig)
			admin.PUT("/system-config/auth-session", systemConfigHandler.UpdateAuthSessionConfig)
		}
	}
	return nil
}
