package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/taxops/fbrgate/internal/ratetable/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListTransactionTypes(ctx context.Context, db *gorm.DB) ([]domain.TransactionType, error) {
	var types []domain.TransactionType
	err := db.WithContext(ctx).
		Model(&domain.TransactionType{}).
		Order("id asc").
		Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (r *repo) ListRateOptions(ctx context.Context, db *gorm.DB, transactionTypeID int64) ([]domain.RateOption, error) {
	var options []domain.RateOption
	err := db.WithContext(ctx).
		Model(&domain.RateOption{}).
		Where("transaction_type_id = ?", transactionTypeID).
		Order("display_order asc, id asc").
		Find(&options).Error
	if err != nil {
		return nil, err
	}
	return options, nil
}

func (r *repo) ListSROSchedules(ctx context.Context, db *gorm.DB, rateOptionID snowflake.ID, provinceCode string) ([]domain.SROSchedule, error) {
	var schedules []domain.SROSchedule
	err := db.WithContext(ctx).
		Model(&domain.SROSchedule{}).
		Where("rate_option_id = ? AND province_code = ?", rateOptionID, provinceCode).
		Order("serial asc, id asc").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *repo) ListSROItems(ctx context.Context, db *gorm.DB, scheduleID snowflake.ID) ([]domain.SROItem, error) {
	var items []domain.SROItem
	err := db.WithContext(ctx).
		Model(&domain.SROItem{}).
		Where("schedule_id = ?", scheduleID).
		Order("serial asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
