package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/datastore"
	"github.com/huangang/lvepanel/internal/middleware"
	"github.com/huangang/lvepanel/internal/models"
	"github.com/huangang/lvepanel/internal/services"
	"github.com/huangang/lvepanel/pkg/response"
)

type SystemUserHandler struct {
	userService    *services.SystemUserService
	versionService *services.VersionService
}

func NewSystemUserHandler(store *datastore.Client) *SystemUserHandler {
	return &SystemUserHandler{
		userService:    services.NewSystemUserService(store),
		versionService: services.NewVersionService(store),
	}
}

type systemUserListResponse struct {
	Items []models.SystemUser `json:"items"`
	Stats services.UserStats  `json:"stats"`
}

// List returns every system user, newest first, with the list counters
// GET /api/system-users
func (h *SystemUserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		services.LogError("DataStore", "list-users", err.Error(), nil, c.ClientIP(), c.Request.UserAgent(), nil)
		storeFailure(c, err, "failed to load users")
		return
	}
	if users == nil {
		users = []models.SystemUser{}
	}

	response.Success(c, systemUserListResponse{Items: users, Stats: services.Summarize(users)})
}

// Stats returns the counters shown above the users list
// GET /api/system-users/stats
func (h *SystemUserHandler) Stats(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		storeFailure(c, err, "failed to load users")
		return
	}
	response.Success(c, services.Summarize(users))
}

// Get returns one system user
// GET /api/system-users/:id
func (h *SystemUserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrSystemUserNotFound) {
		response.NotFound(c, "system user not found")
		return
	}
	if err != nil {
		storeFailure(c, err, "failed to load user")
		return
	}
	response.Success(c, user)
}

type createSystemUserResponse struct {
	Username     string `json:"username"`
	Message      string `json:"message"`
	CloseAfterMS int64  `json:"close_after_ms"`
}

// Create runs the create form against the posted values
// POST /api/system-users
func (h *SystemUserHandler) Create(c *gin.Context) {
	var req services.CreateSystemUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	form := services.NewCreateUserForm(nil)
	if lookup, err := h.versionService.Lookup(ctx); err == nil {
		form.ApplyVersions(lookup)
	}
	if err := form.Fill(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := form.Submit(ctx, h.userService); err != nil {
		editing, _ := form.State().(services.FormEditing)
		if errors.Is(err, services.ErrUsernameRequired) {
			response.BadRequest(c, editing.Err)
			return
		}
		services.LogError("SystemUser", "create", err.Error(), userIDPtr(c), c.ClientIP(), c.Request.UserAgent(), nil)
		storeFailure(c, err, editing.Err)
		return
	}

	succeeded, _ := form.State().(services.FormSucceeded)
	response.Created(c, createSystemUserResponse{
		Username:     req.Username,
		Message:      services.CreatedMessage,
		CloseAfterMS: succeeded.CloseAfter.Milliseconds(),
	})
}

func userIDPtr(c *gin.Context) *uint {
	if id := middleware.GetUserID(c); id > 0 {
		return &id
	}
	return nil
}
