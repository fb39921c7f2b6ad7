package repository

import (
	"context"
	"errors"

	"github.com/taxops/fbrgate/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Create(tenant).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := db.WithContext(ctx).First(&tenant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	err := db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Order("created_at asc, id asc").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, tenant *domain.Tenant) error {
	return db.WithContext(ctx).Save(tenant).Error
}
