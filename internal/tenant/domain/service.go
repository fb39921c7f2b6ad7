package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("tenant_not_found")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidNTN      = errors.New("invalid_ntn_cnic")
	ErrInvalidProvince = errors.New("invalid_province")
	ErrInvalidEnv      = errors.New("invalid_gateway_environment")
	ErrDuplicateNTN    = errors.New("duplicate_ntn_cnic")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Tenant, error)
	List(ctx context.Context, db *gorm.DB) ([]Tenant, error)
	Update(ctx context.Context, db *gorm.DB, tenant *Tenant) error
}

type CreateTenantRequest struct {
	Name         string `json:"name"`
	NTNCNIC      string `json:"ntn_cnic"`
	BusinessName string `json:"business_name"`
	Province     string `json:"province"`
	Address      string `json:"address"`
}

type UpdateGatewayRequest struct {
	ID           string `json:"-"`
	Environment  string `json:"environment"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type Service interface {
	Create(ctx context.Context, req CreateTenantRequest) (Tenant, error)
	GetByID(ctx context.Context, id string) (Tenant, error)
	List(ctx context.Context) ([]Tenant, error)
	UpdateGateway(ctx context.Context, req UpdateGatewayRequest) (Tenant, error)
}
