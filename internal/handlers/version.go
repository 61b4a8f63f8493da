package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/datastore"
	"github.com/huangang/lvepanel/internal/services"
	"github.com/huangang/lvepanel/pkg/response"
)

type VersionHandler struct {
	versionService *services.VersionService
}

func NewVersionHandler(store *datastore.Client) *VersionHandler {
	return &VersionHandler{versionService: services.NewVersionService(store)}
}

// Browse returns every version sorted by category, optionally filtered
// GET /api/versions?filter=php
func (h *VersionHandler) Browse(c *gin.Context) {
	rows, err := h.versionService.Browse(c.Request.Context())
	if err != nil {
		services.LogError("DataStore", "list-versions", err.Error(), nil, c.ClientIP(), c.Request.UserAgent(), nil)
		storeFailure(c, err, "failed to load versions")
		return
	}
	response.Success(c, services.BuildVersionBrowser(rows, c.Query("filter")))
}

// Lookup returns the active versions grouped for the create form
// GET /api/versions/lookup
func (h *VersionHandler) Lookup(c *gin.Context) {
	lookup, err := h.versionService.Lookup(c.Request.Context())
	if err != nil {
		storeFailure(c, err, "failed to load versions")
		return
	}
	response.Success(c, lookup)
}
