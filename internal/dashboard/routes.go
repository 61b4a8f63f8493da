package dashboard

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/lvepanel/internal/middleware"
	"github.com/huangang/lvepanel/internal/services"
)

const (
	usersLoadFailed    = "Не вдалося завантажити користувачів"
	versionsLoadFailed = "Не вдалося завантажити версії"
	userLoadFailed     = "Не вдалося завантажити користувача"
	unknownEngine      = "Невідомий тип бази даних"
)

// render draws page inside the shell with tab highlighted in the sidebar.
func (d *Dashboard) render(c *gin.Context, status int, tab services.Tab, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["page"] = page
	data["menu"] = services.MenuItems(tab)
	data["identity"] = middleware.GetSession(c).Identity()
	c.HTML(status, "layout.html", data)
}

func userIDPtr(c *gin.Context) *uint {
	if id := middleware.GetUserID(c); id > 0 {
		return &id
	}
	return nil
}

// handleIndex renders the view picked by ?tab=.
func (d *Dashboard) handleIndex(c *gin.Context) {
	selection := services.ResolveView(c.Query("tab"))
	switch selection.View {
	case services.ViewVersions:
		d.renderVersions(c, selection.Tab, selection.VersionFilter)
	case services.ViewSettings:
		d.handleSettings(c)
	default:
		d.renderUsers(c)
	}
}

func (d *Dashboard) renderUsers(c *gin.Context) {
	data := gin.H{}
	users, err := d.users.List(c.Request.Context())
	if err != nil {
		data["notice"] = usersLoadFailed
	}
	data["users"] = users
	data["stats"] = services.Summarize(users)
	d.render(c, http.StatusOK, services.TabUsers, "users", data)
}

func (d *Dashboard) handleUserDetail(c *gin.Context) {
	user, err := d.users.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrSystemUserNotFound) {
		d.render(c, http.StatusNotFound, services.TabUsers, "not-found", nil)
		return
	}
	if err != nil {
		d.render(c, http.StatusBadGateway, services.TabUsers, "user-detail", gin.H{"notice": userLoadFailed})
		return
	}
	d.render(c, http.StatusOK, services.TabUsers, "user-detail", gin.H{"user": user})
}

// newForm returns a create form with the active versions applied. When the
// versions cannot be read the form keeps its built-in defaults.
func (d *Dashboard) newForm(c *gin.Context) *services.CreateUserForm {
	form := services.NewCreateUserForm(nil)
	if lookup, err := d.versions.Lookup(c.Request.Context()); err == nil {
		form.ApplyVersions(lookup)
	}
	return form
}

type engineOption struct {
	Value    string
	Label    string
	Selected bool
}

// renderForm draws the create form. message overrides the error carried by
// the form state.
func (d *Dashboard) renderForm(c *gin.Context, status int, form *services.CreateUserForm, message string) {
	if message == "" {
		if editing, ok := form.State().(services.FormEditing); ok {
			message = editing.Err
		}
	}

	selected := form.DatabaseEngine()
	engines := make([]engineOption, 0, 2)
	for _, engine := range []services.DatabaseEngine{services.EngineMySQL, services.EnginePostgreSQL} {
		engines = append(engines, engineOption{Value: string(engine), Label: engine.Label(), Selected: engine == selected})
	}

	d.render(c, status, services.TabUsers, "user-form", gin.H{
		"form":             form.Values(),
		"options":          form.Options(),
		"databaseVersions": form.DatabaseVersionOptions(),
		"engines":          engines,
		"error":            message,
	})
}

func (d *Dashboard) handleNewUser(c *gin.Context) {
	d.renderForm(c, http.StatusOK, d.newForm(c), "")
}

// handleCreateUser submits the form. A press on one of the engine buttons
// only switches the engine and redraws the form.
func (d *Dashboard) handleCreateUser(c *gin.Context) {
	var req services.CreateSystemUserRequest
	if err := c.ShouldBind(&req); err != nil {
		d.renderForm(c, http.StatusBadRequest, d.newForm(c), err.Error())
		return
	}

	form := d.newForm(c)
	if err := form.Fill(&req); err != nil {
		d.renderForm(c, http.StatusBadRequest, form, unknownEngine)
		return
	}
	// The posted version stays when the new engine has no versions.
	if engine := c.PostForm("select_database"); engine != "" {
		if err := form.SelectDatabaseType(engine); err != nil {
			d.renderForm(c, http.StatusBadRequest, form, unknownEngine)
			return
		}
		d.renderForm(c, http.StatusOK, form, "")
		return
	}

	if err := form.Submit(c.Request.Context(), d.users); err != nil {
		if errors.Is(err, services.ErrUsernameRequired) {
			d.renderForm(c, http.StatusUnprocessableEntity, form, "")
			return
		}
		services.LogError("SystemUser", "create", err.Error(), userIDPtr(c), c.ClientIP(), c.Request.UserAgent(), nil)
		d.renderForm(c, http.StatusBadGateway, form, "")
		return
	}

	succeeded, _ := form.State().(services.FormSucceeded)
	d.render(c, http.StatusCreated, services.TabUsers, "user-created", gin.H{
		"username":       req.Username,
		"message":        services.CreatedMessage,
		"closeAfterMS":   succeeded.CloseAfter.Milliseconds(),
		"refreshSeconds": int(math.Ceil(succeeded.CloseAfter.Seconds())),
	})
}

// tabForFilter picks the sidebar entry matching a versions filter.
func tabForFilter(filter string) services.Tab {
	switch services.Category(filter) {
	case services.CategoryPHP:
		return services.TabPHP
	case services.CategoryNodeJS:
		return services.TabNodeJS
	default:
		return services.TabDatabase
	}
}

func (d *Dashboard) handleVersions(c *gin.Context) {
	filter := strings.TrimSpace(c.Query("filter"))
	d.renderVersions(c, tabForFilter(filter), filter)
}

func (d *Dashboard) renderVersions(c *gin.Context, tab services.Tab, filter string) {
	data := gin.H{}
	rows, err := d.versions.Browse(c.Request.Context())
	browser := services.BuildVersionPage(rows, filter)
	if err != nil {
		browser.LoadFailed = true
		data["notice"] = versionsLoadFailed
	}
	data["versions"] = browser
	d.render(c, http.StatusOK, tab, "versions", data)
}

func (d *Dashboard) handleSettings(c *gin.Context) {
	d.render(c, http.StatusOK, services.TabSettings, "settings", gin.H{
		"settings": services.StaticSettings(),
	})
}
