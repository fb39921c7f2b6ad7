package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/taxops/fbrgate/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("product_not_found")
	ErrInvalidTenant   = errors.New("invalid_tenant")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidHSCode   = errors.New("invalid_hs_code")
	ErrDuplicateCode   = errors.New("duplicate_code")
	ErrInvalidRateSpec = errors.New("invalid_rate_spec")
)

// Product is a reusable catalog entry. Code is a slug derived from the
// name; DefaultRateSpec pre-fills the line-item rate when the product is
// picked.
type Product struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID        snowflake.ID `gorm:"not null;uniqueIndex:ux_products_tenant_code" json:"tenant_id"`
	Code            string       `gorm:"not null;uniqueIndex:ux_products_tenant_code" json:"code"`
	Name            string       `gorm:"not null" json:"name"`
	Description     string       `json:"description"`
	HSCode          string       `gorm:"column:hs_code;not null" json:"hs_code"`
	UoM             string       `gorm:"column:uom" json:"uom"`
	DefaultRateSpec string       `json:"default_rate_spec"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, search string, page pagination.Pagination) ([]*Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error
}

type CreateRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	HSCode          string `json:"hs_code"`
	UoM             string `json:"uom"`
	DefaultRateSpec string `json:"default_rate_spec"`
}

type UpdateRequest struct {
	ID              string `json:"-"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	HSCode          string `json:"hs_code"`
	UoM             string `json:"uom"`
	DefaultRateSpec string `json:"default_rate_spec"`
}

type ListRequest struct {
	PageToken string
	PageSize  int32
	Search    string
}

type ListResponse struct {
	pagination.PageInfo
	Products []Product `json:"products"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Update(ctx context.Context, req UpdateRequest) (Product, error)
	Delete(ctx context.Context, id string) error
}
