package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListTransactionTypes(ctx context.Context, db *gorm.DB) ([]TransactionType, error)
	ListRateOptions(ctx context.Context, db *gorm.DB, transactionTypeID int64) ([]RateOption, error)
	ListSROSchedules(ctx context.Context, db *gorm.DB, rateOptionID snowflake.ID, provinceCode string) ([]SROSchedule, error)
	ListSROItems(ctx context.Context, db *gorm.DB, scheduleID snowflake.ID) ([]SROItem, error)
}
