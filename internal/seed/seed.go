// Package seed provisions the FBR reference data every installation
// needs: transaction types and the rate options attached to them.
package seed

import (
	"context"

	"github.com/bwmarrin/snowflake"
	ratetabledomain "github.com/taxops/fbrgate/internal/ratetable/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(EnsureRateTable),
)

type transactionTypeSeed struct {
	id          int64
	description string
	rates       []string
}

// Transaction types and rate labels mirror the FBR reference tables.
var defaultTransactionTypes = []transactionTypeSeed{
	{75, "Goods at standard rate (default)", []string{"18%", "17%", "16%", "15%"}},
	{24, "Goods at Reduced Rate", []string{"1%", "5%", "8%", "10%", "12%"}},
	{80, "Goods at zero-rate", []string{"0%"}},
	{81, "Exempt goods", []string{"exempt"}},
	{130, "3rd Schedule Goods", []string{"18%"}},
	{23, "FED in ST mode", []string{"RS.700", "RS.1.5/bill", "50/bill"}},
	{77, "Services rendered", []string{"15%", "16%", "/SqY"}},
}

func EnsureRateTable(db *gorm.DB, node *snowflake.Node, log *zap.Logger) error {
	ctx := context.Background()
	seeded := 0

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, seed := range defaultTransactionTypes {
			txType := ratetabledomain.TransactionType{
				ID:          seed.id,
				Description: seed.description,
			}
			if err := tx.Where(ratetabledomain.TransactionType{ID: seed.id}).
				FirstOrCreate(&txType).Error; err != nil {
				return err
			}

			var count int64
			if err := tx.Model(&ratetabledomain.RateOption{}).
				Where("transaction_type_id = ?", seed.id).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			for order, label := range seed.rates {
				option := ratetabledomain.RateOption{
					ID:                node.Generate(),
					TransactionTypeID: seed.id,
					Label:             label,
					DisplayOrder:      order,
				}
				if err := tx.Create(&option).Error; err != nil {
					return err
				}
			}
			seeded++
		}
		return nil
	})
	if err != nil {
		return err
	}

	if seeded > 0 {
		log.Named("seed").Info("rate table reference data seeded",
			zap.Int("transaction_types", seeded),
		)
	}
	return nil
}
