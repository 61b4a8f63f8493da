package services

import (
	"errors"
	"strconv"

	"github.com/huangang/lvepanel/internal/config"
	"github.com/huangang/lvepanel/internal/models"
	"gorm.io/gorm"
)

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) Get(key string) (string, error) {
	var cfg models.SystemConfig
	if err := s.db.Where("config_key = ?", key).First(&cfg).Error; err != nil {
		return "", err
	}
	return cfg.Value, nil
}

func (s *SystemConfigService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *SystemConfigService) GetInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(s.GetWithDefault(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *SystemConfigService) Set(key, value string) error {
	var cfg models.SystemConfig
	err := s.db.Where("config_key = ?", key).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.SystemConfig{
			Key:   key,
			Value: value,
		}
		return s.db.Create(&cfg).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&cfg).Update("value", value).Error
}

func (s *SystemConfigService) GetByGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Where("config_group = ?", group).Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

type LDAPConfigResponse struct {
	Enabled     bool   `json:"enabled"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	BaseDN      string `json:"base_dn"`
	BindDN      string `json:"bind_dn"`
	UserFilter  string `json:"user_filter"`
	UseSSL      bool   `json:"use_ssl"`
	PasswordSet bool   `json:"password_set"`
}

// LDAPSettings resolves the LDAP settings, stored values first and the file
// config for anything not stored.
func (s *SystemConfigService) LDAPSettings(fallback *config.LDAPConfig) config.LDAPConfig {
	var base config.LDAPConfig
	if fallback != nil {
		base = *fallback
	}
	if base.Port == 0 {
		base.Port = 389
	}
	if base.UserFilter == "" {
		base.UserFilter = "(uid=%s)"
	}
	return config.LDAPConfig{
		Enabled:      s.GetWithDefault("ldap_enabled", strconv.FormatBool(base.Enabled)) == "true",
		Host:         s.GetWithDefault("ldap_host", base.Host),
		Port:         s.GetInt("ldap_port", base.Port),
		BaseDN:       s.GetWithDefault("ldap_base_dn", base.BaseDN),
		BindDN:       s.GetWithDefault("ldap_bind_dn", base.BindDN),
		BindPassword: s.GetWithDefault("ldap_bind_password", base.BindPassword),
		UserFilter:   s.GetWithDefault("ldap_user_filter", base.UserFilter),
		UseSSL:       s.GetWithDefault("ldap_use_ssl", strconv.FormatBool(base.UseSSL)) == "true",
	}
}

func (s *SystemConfigService) GetLDAPConfig() *LDAPConfigResponse {
	settings := s.LDAPSettings(nil)
	return &LDAPConfigResponse{
		Enabled:     settings.Enabled,
		Host:        settings.Host,
		Port:        settings.Port,
		BaseDN:      settings.BaseDN,
		BindDN:      settings.BindDN,
		UserFilter:  settings.UserFilter,
		UseSSL:      settings.UseSSL,
		PasswordSet: settings.BindPassword != "",
	}
}

type UpdateLDAPConfigRequest struct {
	Enabled      *bool   `json:"enabled"`
	Host         *string `json:"host"`
	Port         *int    `json:"port" binding:"omitempty,min=1,max=65535"`
	BaseDN       *string `json:"base_dn"`
	BindDN       *string `json:"bind_dn"`
	BindPassword *string `json:"bind_password"`
	UserFilter   *string `json:"user_filter"`
	UseSSL       *bool   `json:"use_ssl"`
}

func (s *SystemConfigService) UpdateLDAPConfig(req *UpdateLDAPConfigRequest) error {
	updates := map[string]string{}
	if req.Enabled != nil {
		updates["ldap_enabled"] = strconv.FormatBool(*req.Enabled)
	}
	if req.Host != nil {
		updates["ldap_host"] = *req.Host
	}
	if req.Port != nil {
		updates["ldap_port"] = strconv.Itoa(*req.Port)
	}
	if req.BaseDN != nil {
		updates["ldap_base_dn"] = *req.BaseDN
	}
	if req.BindDN != nil {
		updates["ldap_bind_dn"] = *req.BindDN
	}
	// an empty password keeps the stored one
	if req.BindPassword != nil && *req.BindPassword != "" {
		updates["ldap_bind_password"] = *req.BindPassword
	}
	if req.UserFilter != nil {
		updates["ldap_user_filter"] = *req.UserFilter
	}
	if req.UseSSL != nil {
		updates["ldap_use_ssl"] = strconv.FormatBool(*req.UseSSL)
	}
	return s.setAll(updates)
}

type AuthSessionConfigResponse struct {
	AccessTokenExpireHours  int `json:"access_token_expire_hours"`
	RefreshTokenExpireHours int `json:"refresh_token_expire_hours"`
}

func (s *SystemConfigService) GetAuthSessionConfig(defaultAccessHours int) *AuthSessionConfigResponse {
	return &AuthSessionConfigResponse{
		AccessTokenExpireHours:  s.GetInt("auth_access_token_expire_hours", defaultAccessHours),
		RefreshTokenExpireHours: s.GetInt("auth_refresh_token_expire_hours", defaultRefreshHours),
	}
}

type UpdateAuthSessionConfigRequest struct {
	AccessTokenExpireHours  *int `json:"access_token_expire_hours" binding:"omitempty,min=1,max=720"`
	RefreshTokenExpireHours *int `json:"refresh_token_expire_hours" binding:"omitempty,min=1,max=8760"`
}

func (s *SystemConfigService) UpdateAuthSessionConfig(req *UpdateAuthSessionConfigRequest) error {
	updates := map[string]string{}
	if req.AccessTokenExpireHours != nil {
		updates["auth_access_token_expire_hours"] = strconv.Itoa(*req.AccessTokenExpireHours)
	}
	if req.RefreshTokenExpireHours != nil {
		updates["auth_refresh_token_expire_hours"] = strconv.Itoa(*req.RefreshTokenExpireHours)
	}
	return s.setAll(updates)
}

func (s *SystemConfigService) setAll(updates map[string]string) error {
	if len(updates) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		txSvc := NewSystemConfigService(tx)
		for key, value := range updates {
			if err := txSvc.Set(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}
