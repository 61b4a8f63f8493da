package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/middleware"
	"github.com/huangang/lvepanel/internal/services"
	"github.com/huangang/lvepanel/pkg/response"
)

// GetSettings returns the static settings figures
// GET /api/settings
func GetSettings(c *gin.Context) {
	response.Success(c, services.StaticSettings())
}

type navigationResponse struct {
	Selection services.ViewSelection `json:"selection"`
	Menu      []services.MenuItem    `json:"menu"`
	SignedIn  string                 `json:"signed_in_as"`
}

// GetNavigation resolves a tab to its view and returns the sidebar
// GET /api/navigation?tab=php
func GetNavigation(c *gin.Context) {
	selection := services.ResolveView(c.Query("tab"))
	response.Success(c, navigationResponse{
		Selection: selection,
		Menu:      services.MenuItems(selection.Tab),
		SignedIn:  middleware.GetSession(c).Identity(),
	})
}
