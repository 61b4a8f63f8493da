package models

import (
	"fmt"

	"github.com/huangang/lvepanel/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured database without touching the package
// level handle.
func Open(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

func InitDB(cfg *config.DatabaseConfig, debug bool) error {
	db, err := Open(cfg, debug)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// OperatorModels are the tables the panel always owns.
func OperatorModels() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&SystemConfig{},
		&SystemLog{},
	}
}

// StoreModels are the data store tables; they are only migrated when the
// sql backend is in use.
func StoreModels() []interface{} {
	return []interface{}{
		&SystemUser{},
		&AvailableVersion{},
	}
}

func AutoMigrate(db *gorm.DB, withStore bool) error {
	if err := db.AutoMigrate(OperatorModels()...); err != nil {
		return err
	}
	if withStore {
		return db.AutoMigrate(StoreModels()...)
	}
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default system configs if they do not exist.
func SeedDefaultData(db *gorm.DB) error {
	defaultConfigs := []SystemConfig{
		{Key: "ldap_enabled", Value: "false", Type: "bool", Group: "ldap", Label: "Enable LDAP Authentication"},
		{Key: "ldap_host", Value: "", Type: "string", Group: "ldap", Label: "LDAP Server Host"},
		{Key: "ldap_port", Value: "389", Type: "int", Group: "ldap", Label: "LDAP Server Port"},
		{Key: "ldap_base_dn", Value: "", Type: "string", Group: "ldap", Label: "LDAP Base DN"},
		{Key: "ldap_bind_dn", Value: "", Type: "string", Group: "ldap", Label: "LDAP Bind DN"},
		{Key: "ldap_bind_password", Value: "", Type: "string", Group: "ldap", Label: "LDAP Bind Password"},
		{Key: "ldap_user_filter", Value: "(uid=%s)", Type: "string", Group: "ldap", Label: "LDAP User Filter"},
		{Key: "ldap_use_ssl", Value: "false", Type: "bool", Group: "ldap", Label: "Use SSL/TLS"},
		{Key: "auth_access_token_expire_hours", Value: "24", Type: "int", Group: "auth", Label: "Access Token Lifetime (hours)"},
		{Key: "auth_refresh_token_expire_hours", Value: "720", Type: "int", Group: "auth", Label: "Refresh Token Lifetime (hours)"},
		{Key: "log_retention_days", Value: "30", Type: "int", Group: "system", Label: "System Log Retention Days"},
	}

	for _, cfg := range defaultConfigs {
		var count int64
		if err := db.Model(&SystemConfig{}).Where("config_key = ?", cfg.Key).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := db.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// DefaultVersionCatalog is the catalog a fresh store is seeded with.
func DefaultVersionCatalog() []AvailableVersion {
	catalog := map[string][]string{
		"php":        {"8.3", "8.2", "8.1", "7.4"},
		"nodejs":     {"22.x", "20.x", "18.x"},
		"mysql":      {"8.0", "5.7"},
		"postgresql": {"16", "15", "14"},
	}
	order := []string{"php", "nodejs", "mysql", "postgresql"}

	var rows []AvailableVersion
	for _, softwareType := range order {
		for _, v := range catalog[softwareType] {
			rows = append(rows, AvailableVersion{SoftwareType: softwareType, Version: v, IsActive: true})
		}
	}
	return rows
}
