package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/config"
	"github.com/huangang/lvepanel/internal/datastore"
	"github.com/huangang/lvepanel/internal/middleware"
	"github.com/huangang/lvepanel/internal/models"
	"github.com/huangang/lvepanel/internal/services"
	"github.com/huangang/lvepanel/internal/utils"
	"github.com/huangang/lvepanel/pkg/logger"
	"github.com/huangang/lvepanel/pkg/tracing"
	"gorm.io/gorm"
)

// app holds everything the server needs once it is wired up.
type app struct {
	cfg          *config.Config
	db           *gorm.DB
	store        *datastore.Client
	tracing      *tracing.Provider
	logCleanup   *services.LogCleanupScheduler
	loginLimiter *middleware.RateLimiter
}

// loadConfig reads the config file and sets up logging and gin mode.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)
	utils.SetJWTSecret(cfg.JWT.Secret)
	return cfg, nil
}

// openDatabase connects and migrates. The store tables are only migrated
// when the sql backend keeps them in this database.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if err := models.InitDB(&cfg.Database, cfg.Log.Level == "debug"); err != nil {
		return nil, err
	}
	db := models.GetDB()
	if err := models.AutoMigrate(db, cfg.DataStore.Backend == "sql"); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// newBackend picks the store backend named in the config.
func newBackend(cfg *config.DataStoreConfig, db *gorm.DB) (datastore.Backend, error) {
	switch cfg.Backend {
	case "", "sql":
		return datastore.NewSQLBackend(db), nil
	case "rest":
		if cfg.URL == "" {
			return nil, fmt.Errorf("datastore: url is required for the rest backend")
		}
		return datastore.NewRESTBackend(cfg.URL, cfg.APIKey, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported datastore backend: %s", cfg.Backend)
	}
}

// bootstrap initializes the database, the store, tracing and schedulers.
func bootstrap(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if err := models.SeedDefaultData(db); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	provider, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	backend, err := newBackend(&cfg.DataStore, db)
	if err != nil {
		return nil, err
	}
	store := datastore.New(datastore.WithTracing(backend, provider.Tracer()))

	if cfg.DataStore.Backend == "sql" {
		if n, err := services.NewVersionService(store).SeedCatalog(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to seed available versions")
		} else if n > 0 {
			logger.Info().Int("rows", n).Msg("Seeded available versions")
		}
	}

	if err := services.NewAuthService(db, &cfg.JWT, &cfg.LDAP).CreateAdminIfNotExists(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	services.InitSystemLogger(db)

	logCleanup := services.NewLogCleanupScheduler(db)
	if err := logCleanup.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start log cleanup scheduler")
	}

	logger.Info().
		Str("datastore", cfg.DataStore.Backend).
		Bool("tracing", provider.Enabled()).
		Msg("Panel initialized")

	return &app{
		cfg:          cfg,
		db:           db,
		store:        store,
		tracing:      provider,
		logCleanup:   logCleanup,
		loginLimiter: middleware.NewRateLimiter(1, 5),
	}, nil
}

// shutdown stops schedulers and flushes spans.
func (a *app) shutdown(ctx context.Context) {
	a.logCleanup.Stop()
	a.loginLimiter.Stop()
	if err := a.tracing.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to flush traces")
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info().Msg("All schedulers stopped")
}
