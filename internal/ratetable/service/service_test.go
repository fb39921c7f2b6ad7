package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxops/fbrgate/internal/ratetable/domain"
	"github.com/taxops/fbrgate/internal/ratetable/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.TransactionType{},
		&domain.RateOption{},
		&domain.SROSchedule{},
		&domain.SROItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: repository.Provide(),
	})
	return svc.(*Service), db, node
}

func TestRatesForOrdered(t *testing.T) {
	svc, db, node := newTestService(t)

	txType := domain.TransactionType{ID: 18, Description: "Goods at standard rate"}
	require.NoError(t, db.Create(&txType).Error)
	require.NoError(t, db.Create(&domain.RateOption{ID: node.Generate(), TransactionTypeID: 18, Label: "exempt", DisplayOrder: 2}).Error)
	require.NoError(t, db.Create(&domain.RateOption{ID: node.Generate(), TransactionTypeID: 18, Label: "18%", DisplayOrder: 1}).Error)

	resp, err := svc.RatesFor(context.Background(), domain.ListRatesRequest{TransactionTypeID: 18})
	require.NoError(t, err)
	require.Len(t, resp.Rates, 2)
	assert.Equal(t, "18%", resp.Rates[0].Label)
	assert.Equal(t, "exempt", resp.Rates[1].Label)
}

func TestRatesForUnknownTypeIsEmptyNotError(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, err := svc.RatesFor(context.Background(), domain.ListRatesRequest{TransactionTypeID: 999999})
	require.NoError(t, err)
	assert.NotNil(t, resp.Rates)
	assert.Empty(t, resp.Rates)
}

func TestRatesForDiscardsSupersededLookup(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// A newer lookup id arrives before the older one resolves.
	_, err := svc.RatesFor(ctx, domain.ListRatesRequest{TransactionTypeID: 1, LookupID: "01J2"})
	require.NoError(t, err)

	_, err = svc.RatesFor(ctx, domain.ListRatesRequest{TransactionTypeID: 2, LookupID: "01J1"})
	assert.ErrorIs(t, err, domain.ErrStaleLookup)

	// The newest id keeps working.
	resp, err := svc.RatesFor(ctx, domain.ListRatesRequest{TransactionTypeID: 1, LookupID: "01J2"})
	require.NoError(t, err)
	assert.Equal(t, "01J2", resp.LookupID)
}

func TestSROSchedulesKeyedByProvince(t *testing.T) {
	svc, db, node := newTestService(t)

	optionID := node.Generate()
	require.NoError(t, db.Create(&domain.SROSchedule{ID: node.Generate(), RateOptionID: optionID, ProvinceCode: "7", Serial: "1125(I)/2011"}).Error)
	require.NoError(t, db.Create(&domain.SROSchedule{ID: node.Generate(), RateOptionID: optionID, ProvinceCode: "8", Serial: "509(I)/2013"}).Error)

	resp, err := svc.SROSchedules(context.Background(), domain.ListSROSchedulesRequest{
		RateOptionID: optionID.String(),
		ProvinceCode: "7",
	})
	require.NoError(t, err)
	require.Len(t, resp.Schedules, 1)
	assert.Equal(t, "1125(I)/2011", resp.Schedules[0].Serial)
}

func TestSROItemsInvalidScheduleID(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.SROItems(context.Background(), domain.ListSROItemsRequest{ScheduleID: "not-a-number"})
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
}
