package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/datastore"
	"github.com/huangang/lvepanel/internal/models"
	"gorm.io/gorm"
)

// HealthHandler reports whether the operator database and the data store
// answer.
type HealthHandler struct {
	db      *gorm.DB
	store   *datastore.Client
	backend string
}

func NewHealthHandler(db *gorm.DB, store *datastore.Client, backend string) *HealthHandler {
	return &HealthHandler{db: db, store: store, backend: backend}
}

// CheckHealth returns the health status of all subsystems.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	storeStatus := "ok"
	var probe []models.AvailableVersion
	if err := h.store.From(models.TableAvailableVersions).Select("id").Eq("software_type", "php").Find(ctx, &probe); err != nil {
		storeStatus = "error: " + datastore.Message(err, "unreachable")
		if overall == "healthy" {
			overall = "degraded"
		}
	}

	status := http.StatusOK
	if overall == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":  overall,
		"service": "lvepanel",
		"components": gin.H{
			"database":          dbStatus,
			"datastore":         storeStatus,
			"datastore_backend": h.backend,
		},
	})
}
