package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/datastore"
	"github.com/huangang/lvepanel/internal/models"
	"github.com/huangang/lvepanel/internal/services"
	"github.com/huangang/lvepanel/pkg/logger"
	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const shutdownTimeout = 10 * time.Second

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "lvepanel",
		Short:         "CloudLinux LVE management panel",
		Long:          "Serves the LVE Panel dashboard and JSON API for managing system users and their runtime versions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to config file")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newMigrateCmd(&configPath))
	cmd.AddCommand(newSeedVersionsCmd(&configPath))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard and API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Migrates the panel tables and, with the sql datastore backend, the system_users and available_versions tables. Safe to run multiple times.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := models.SeedDefaultData(db); err != nil {
				return fmt.Errorf("seed default data: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database migrated (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}

func newSeedVersionsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-versions",
		Short: "Fill available_versions with the default catalog",
		Long:  "Writes the default PHP, Node.js, MySQL and PostgreSQL versions to the data store when available_versions is empty.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			backend, err := newBackend(&cfg.DataStore, db)
			if err != nil {
				return err
			}
			n, err := services.NewVersionService(datastore.New(backend)).SeedCatalog(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "available_versions already populated")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d versions\n", n)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lvepanel %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func closeDB() {
	if db := models.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

// runServe blocks until SIGINT or SIGTERM, then shuts down gracefully.
func runServe(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, cfg)
	if err != nil {
		return err
	}

	r := gin.New()
	if err := registerRoutes(r, a); err != nil {
		a.shutdown(context.Background())
		return err
	}

	srv := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down")
	case err := <-errCh:
		if err != nil {
			a.shutdown(context.Background())
			return fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Server shutdown did not finish cleanly")
	}
	a.shutdown(shutdownCtx)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
