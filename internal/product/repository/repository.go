package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/taxops/fbrgate/internal/product/domain"
	"github.com/taxops/fbrgate/pkg/db/option"
	"github.com/taxops/fbrgate/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).
		First(&product, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, search string, page pagination.Pagination) ([]*domain.Product, error) {
	var products []*domain.Product
	stmt := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("tenant_id = ?", tenantID)
	if search != "" {
		like := "%" + search + "%"
		stmt = stmt.Where("name LIKE ? OR code LIKE ? OR hs_code LIKE ?", like, like, like)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Save(product).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error {
	return db.WithContext(ctx).
		Delete(&domain.Product{}, "tenant_id = ? AND id = ?", tenantID, id).Error
}
