package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrUserExists         = errors.New("user_already_exists")
	ErrUserDisabled       = errors.New("user_disabled")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrWeakPassword       = errors.New("password_too_short")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrInvalidToken       = errors.New("invalid_token")
)

type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type LoginRequest struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// Claims is the authenticated identity carried by a bearer token.
type Claims struct {
	UserID   snowflake.ID
	TenantID snowflake.ID
	Role     string
}

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (User, error)
	// Login verifies the password and issues a signed bearer token.
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	// Authenticate parses and verifies a bearer token.
	Authenticate(ctx context.Context, rawToken string) (Claims, error)
	ChangePassword(ctx context.Context, userID string, newPassword string) error
	GetByID(ctx context.Context, id string) (User, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByEmail(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, email string) (*User, error)
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*User, error)
	Update(ctx context.Context, db *gorm.DB, user *User) error
	CountByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (int64, error)
}
