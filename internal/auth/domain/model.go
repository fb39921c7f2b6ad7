// Package domain contains the user account types for authentication.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role names used by the authorization layer.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// User is one operator account scoped to a tenant.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID     snowflake.ID `gorm:"not null;uniqueIndex:ux_users_tenant_email" json:"tenant_id"`
	Email        string       `gorm:"not null;uniqueIndex:ux_users_tenant_email" json:"email"`
	PasswordHash string       `gorm:"not null" json:"-"`
	DisplayName  string       `json:"display_name"`
	Role         string       `gorm:"not null;default:operator" json:"role"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }
