package services

import (
	"context"
	"errors"
	"strings"

	"github.com/huangang/lvepanel/internal/datastore"
	"github.com/huangang/lvepanel/internal/models"
	"github.com/huangang/lvepanel/pkg/logger"
)

var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrSystemUserNotFound = errors.New("system user not found")
)

// CreateUserFallbackError is shown when a failed create carries no message.
const CreateUserFallbackError = "Ошибка создания пользователя"

type SystemUserService struct {
	store *datastore.Client
}

func NewSystemUserService(store *datastore.Client) *SystemUserService {
	return &SystemUserService{store: store}
}

// CreateSystemUserRequest is the create payload shared by the form and the API.
type CreateSystemUserRequest struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	PHPVersion      string `json:"php_version" form:"php_version"`
	NodeJSVersion   string `json:"nodejs_version" form:"nodejs_version"`
	DatabaseType    string `json:"database_type" form:"database_type"`
	DatabaseVersion string `json:"database_version" form:"database_version"`
}

// newSystemUserRow is what gets inserted. id and timestamps are left to the store.
type newSystemUserRow struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	PHPVersion      string `json:"php_version"`
	NodeJSVersion   string `json:"nodejs_version"`
	DatabaseType    string `json:"database_type"`
	DatabaseVersion string `json:"database_version"`
	Status          string `json:"status"`
}

// List returns every system user, newest first.
func (s *SystemUserService) List(ctx context.Context) ([]models.SystemUser, error) {
	var users []models.SystemUser
	err := s.store.From(models.TableSystemUsers).
		Select("*").
		Order("created_at", false).
		Find(ctx, &users)
	if err != nil {
		logger.Error().Err(err).Msg("Error loading users")
		return nil, err
	}
	return users, nil
}

func (s *SystemUserService) Get(ctx context.Context, id string) (*models.SystemUser, error) {
	var users []models.SystemUser
	err := s.store.From(models.TableSystemUsers).
		Select("*").
		Eq("id", id).
		Find(ctx, &users)
	if err != nil {
		logger.Error().Err(err).Str("id", id).Msg("Error loading user")
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrSystemUserNotFound
	}
	return &users[0], nil
}

// Create inserts one system user with status active. A blank username is
// rejected without calling the store.
func (s *SystemUserService) Create(ctx context.Context, req *CreateSystemUserRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return ErrUsernameRequired
	}
	row := newSystemUserRow{
		Username:        req.Username,
		Email:           req.Email,
		PHPVersion:      req.PHPVersion,
		NodeJSVersion:   req.NodeJSVersion,
		DatabaseType:    req.DatabaseType,
		DatabaseVersion: req.DatabaseVersion,
		Status:          models.SystemUserStatusActive,
	}
	if err := s.store.From(models.TableSystemUsers).Insert(ctx, []newSystemUserRow{row}); err != nil {
		logger.Error().Err(err).Str("username", req.Username).Msg("Error creating user")
		return err
	}
	return nil
}

// UserStats are the counters above the users list.
type UserStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Databases int `json:"databases"`
}

// Summarize counts users. Every user has a database, so Databases equals Total.
func Summarize(users []models.SystemUser) UserStats {
	stats := UserStats{Total: len(users), Databases: len(users)}
	for i := range users {
		if users[i].IsActive() {
			stats.Active++
		}
	}
	return stats
}
