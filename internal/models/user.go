package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a panel operator account. It is unrelated to SystemUser, which is
// a server account recorded in the data store.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // empty for LDAP operators
	Email     string         `gorm:"size:255" json:"email"`
	Nickname  string         `gorm:"size:100" json:"nickname"`
	Role      string         `gorm:"size:50;default:user" json:"role"`       // admin, user
	AuthType  string         `gorm:"size:20;default:local" json:"auth_type"` // local, ldap
	IsActive  bool           `gorm:"not null" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// DisplayIdentity is what the dashboard shows as "signed in as".
func (u *User) DisplayIdentity() string {
	if u.Email != "" {
		return u.Email
	}
	return u.Username
}
