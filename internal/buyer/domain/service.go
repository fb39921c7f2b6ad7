package domain

import (
	"context"
	"errors"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/taxops/fbrgate/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("buyer_not_found")
	ErrInvalidTenant        = errors.New("invalid_tenant")
	ErrInvalidNTN           = errors.New("invalid_ntn_cnic")
	ErrInvalidName          = errors.New("invalid_business_name")
	ErrInvalidProvince      = errors.New("invalid_province")
	ErrInvalidRegistration  = errors.New("invalid_registration_type")
	ErrDuplicateNTN         = errors.New("duplicate_ntn_cnic")
	ErrEmptyUpload          = errors.New("empty_upload")
	ErrUnreadableUpload     = errors.New("unreadable_upload")
	ErrUploadMissingColumns = errors.New("upload_missing_columns")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, buyer *Buyer) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Buyer, error)
	FindByNTNs(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, ntns []string) ([]Buyer, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter ListFilter, page pagination.Pagination) ([]*Buyer, error)
	Update(ctx context.Context, db *gorm.DB, buyer *Buyer) error
	Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error
}

type ListFilter struct {
	Search           string
	RegistrationType string
}

type ListRequest struct {
	PageToken        string
	PageSize         int32
	Search           string
	RegistrationType string
}

type ListResponse struct {
	pagination.PageInfo
	Buyers []Buyer `json:"buyers"`
}

type CreateRequest struct {
	NTNCNIC          string `json:"ntn_cnic"`
	BusinessName     string `json:"business_name"`
	Province         string `json:"province"`
	Address          string `json:"address"`
	RegistrationType string `json:"registration_type"`
}

type UpdateRequest struct {
	ID               string `json:"-"`
	BusinessName     string `json:"business_name"`
	Province         string `json:"province"`
	Address          string `json:"address"`
	RegistrationType string `json:"registration_type"`
}

// UploadRowError reports one rejected row of a bulk upload.
type UploadRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type UploadResult struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Errors  []UploadRowError `json:"errors,omitempty"`
}

// CheckExistingResult partitions the submitted identifiers.
type CheckExistingResult struct {
	Existing []string `json:"existing"`
	Missing  []string `json:"missing"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Buyer, error)
	GetByID(ctx context.Context, id string) (Buyer, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Update(ctx context.Context, req UpdateRequest) (Buyer, error)
	Delete(ctx context.Context, id string) error
	// BulkUpload ingests an xlsx sheet of buyers; rows that fail
	// validation or already exist are reported, not fatal.
	BulkUpload(ctx context.Context, r io.Reader) (UploadResult, error)
	CheckExisting(ctx context.Context, ntns []string) (CheckExistingResult, error)
}
