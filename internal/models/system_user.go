package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TableSystemUsers       = "system_users"
	TableAvailableVersions = "available_versions"

	SystemUserStatusActive = "active"
)

// SystemUser is a server account with the runtime versions requested for it.
// The JSON names are the column contract shared with the remote store.
type SystemUser struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	Username        string    `gorm:"size:100;not null;index" json:"username"`
	Email           string    `gorm:"size:255" json:"email"`
	PHPVersion      string    `gorm:"column:php_version;size:20" json:"php_version"`
	NodeJSVersion   string    `gorm:"column:nodejs_version;size:20" json:"nodejs_version"`
	DatabaseType    string    `gorm:"column:database_type;size:20" json:"database_type"`
	DatabaseVersion string    `gorm:"column:database_version;size:20" json:"database_version"`
	Status          string    `gorm:"size:20" json:"status"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (SystemUser) TableName() string { return TableSystemUsers }

func (u *SystemUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *SystemUser) IsActive() bool {
	return u.Status == SystemUserStatusActive
}

// AvailableVersion is one selectable version of a software category.
type AvailableVersion struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	SoftwareType string    `gorm:"column:software_type;size:20;index" json:"software_type"`
	Version      string    `gorm:"size:20;not null" json:"version"`
	IsActive     bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AvailableVersion) TableName() string { return TableAvailableVersions }

func (v *AvailableVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
