package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/taxops/fbrgate/internal/invoice/domain"
	"github.com/taxops/fbrgate/pkg/db/option"
	"github.com/taxops/fbrgate/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc, id asc")
		}).
		First(&invoice, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, status string, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("tenant_id = ?", tenantID)
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) CountByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error
	return count, err
}

// Update rewrites the invoice row and replaces its items in one
// transaction.
func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Delete(&domain.InvoiceItem{}, "invoice_id = ?", invoice.ID).Error; err != nil {
			return err
		}
		if err := tx.
			Session(&gorm.Session{FullSaveAssociations: true}).
			Save(invoice).Error; err != nil {
			return err
		}
		return nil
	})
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.InvoiceItem{}, "invoice_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.DraftPayload{}, "invoice_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Invoice{}, "tenant_id = ? AND id = ?", tenantID, id).Error
	})
}

func (r *repo) SaveDraftPayload(ctx context.Context, db *gorm.DB, payload *domain.DraftPayload) error {
	return db.WithContext(ctx).Save(payload).Error
}

func (r *repo) FindDraftPayload(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (*domain.DraftPayload, error) {
	var payload domain.DraftPayload
	err := db.WithContext(ctx).First(&payload, "invoice_id = ?", invoiceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payload, nil
}

func (r *repo) DeleteDraftPayload(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.DraftPayload{}, "invoice_id = ?", invoiceID).Error
}
