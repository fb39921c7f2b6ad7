package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/taxops/fbrgate/internal/buyer/domain"
	"github.com/taxops/fbrgate/pkg/db/option"
	"github.com/taxops/fbrgate/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, buyer *domain.Buyer) error {
	return db.WithContext(ctx).Create(buyer).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Buyer, error) {
	var buyer domain.Buyer
	err := db.WithContext(ctx).
		First(&buyer, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &buyer, nil
}

func (r *repo) FindByNTNs(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, ntns []string) ([]domain.Buyer, error) {
	if len(ntns) == 0 {
		return nil, nil
	}
	var buyers []domain.Buyer
	err := db.WithContext(ctx).
		Model(&domain.Buyer{}).
		Where("tenant_id = ? AND ntn_cnic IN ?", tenantID, ntns).
		Find(&buyers).Error
	if err != nil {
		return nil, err
	}
	return buyers, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Buyer, error) {
	var buyers []*domain.Buyer
	stmt := db.WithContext(ctx).
		Model(&domain.Buyer{}).
		Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		stmt = stmt.Where("business_name LIKE ? OR ntn_cnic LIKE ?", like, like)
	}
	if filter.RegistrationType != "" {
		stmt = stmt.Where("registration_type = ?", filter.RegistrationType)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&buyers).Error
	if err != nil {
		return nil, err
	}
	return buyers, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, buyer *domain.Buyer) error {
	return db.WithContext(ctx).Save(buyer).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Delete(&domain.Buyer{}, "tenant_id = ? AND id = ?", tenantID, id).Error
}
