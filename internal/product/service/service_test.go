package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxops/fbrgate/internal/product/domain"
	"github.com/taxops/fbrgate/internal/product/repository"
	"github.com/taxops/fbrgate/internal/tenantctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, context.Context) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, tenantctx.WithTenantID(context.Background(), node.Generate())
}

func TestCreateProductSlugCode(t *testing.T) {
	svc, ctx := newTestService(t)

	product, err := svc.Create(ctx, domain.CreateRequest{
		Name:            "Portland Cement 50kg",
		HSCode:          "2523.2900",
		UoM:             "Bags",
		DefaultRateSpec: "18%",
	})
	require.NoError(t, err)
	assert.Equal(t, "portland-cement-50kg", product.Code)
}

func TestCreateProductRejectsUnparseableRate(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateRequest{
		Name:            "Widget",
		HSCode:          "8479.8999",
		DefaultRateSpec: "standard",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidRateSpec)
}

func TestCreateProductDuplicateCode(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Steel Bar", HSCode: "7214.2000"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Steel Bar", HSCode: "7214.2000"})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestUpdateProductRenameReslugs(t *testing.T) {
	svc, ctx := newTestService(t)

	product, err := svc.Create(ctx, domain.CreateRequest{Name: "Old Name", HSCode: "1001.9900"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: product.ID.String(), Name: "New Name"})
	require.NoError(t, err)
	assert.Equal(t, "new-name", updated.Code)
}

func TestGetProductMissing(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.GetByID(ctx, "123456789")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
