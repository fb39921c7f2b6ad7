package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxops/fbrgate/internal/buyer/domain"
	"github.com/taxops/fbrgate/internal/buyer/repository"
	"github.com/taxops/fbrgate/internal/lineitem"
	"github.com/taxops/fbrgate/internal/tenantctx"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, context.Context) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Buyer{}))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	ctx := tenantctx.WithTenantID(context.Background(), node.Generate())
	return svc, ctx
}

func TestCreateBuyer(t *testing.T) {
	svc, ctx := newTestService(t)

	buyer, err := svc.Create(ctx, domain.CreateRequest{
		NTNCNIC:          "1234567",
		BusinessName:     "Khan Traders",
		Province:         "KPK",
		RegistrationType: "Registered",
	})
	require.NoError(t, err)
	assert.Equal(t, "1234567", buyer.NTNCNIC)
	assert.Equal(t, lineitem.Registered, buyer.RegistrationType)
	// Alias resolves to the canonical province code.
	assert.Equal(t, "6", buyer.ProvinceCode)
}

func TestCreateBuyerValidation(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateRequest{NTNCNIC: "12345", BusinessName: "X", Province: "Punjab"})
	assert.ErrorIs(t, err, domain.ErrInvalidNTN)

	_, err = svc.Create(ctx, domain.CreateRequest{NTNCNIC: "1234567", Province: "Punjab"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{NTNCNIC: "1234567", BusinessName: "X", Province: "Atlantis"})
	assert.ErrorIs(t, err, domain.ErrInvalidProvince)

	_, err = svc.Create(context.Background(), domain.CreateRequest{NTNCNIC: "1234567", BusinessName: "X", Province: "Punjab"})
	assert.ErrorIs(t, err, domain.ErrInvalidTenant)
}

func TestCreateBuyerDuplicate(t *testing.T) {
	svc, ctx := newTestService(t)

	req := domain.CreateRequest{NTNCNIC: "7654321", BusinessName: "Dup Co", Province: "Sindh"}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicateNTN)
}

func TestCheckExisting(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Create(ctx, domain.CreateRequest{NTNCNIC: "1111111", BusinessName: "A", Province: "Punjab"})
	require.NoError(t, err)

	result, err := svc.CheckExisting(ctx, []string{"1111111", "2222222", "11-11111"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1111111"}, result.Existing)
	assert.Equal(t, []string{"2222222"}, result.Missing)
}

func uploadSheet(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	header := []string{"NTN/CNIC", "Business Name", "Province", "Address", "Registration Type"}
	for col, value := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		require.NoError(t, book.SetCellValue(sheet, cell, value))
	}
	for rowIdx, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			require.NoError(t, err)
			require.NoError(t, book.SetCellValue(sheet, cell, value))
		}
	}
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestBulkUpload(t *testing.T) {
	svc, ctx := newTestService(t)

	buf := uploadSheet(t, [][]string{
		{"3334445", "Valid Traders", "Punjab", "Lahore", "Registered"},
		{"999", "Bad NTN", "Punjab", "", ""},
		{"5556667", "No Province", "Nowhere", "", ""},
	})

	result, err := svc.BulkUpload(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)

	fetched, err := svc.List(ctx, domain.ListRequest{Search: "Valid Traders"})
	require.NoError(t, err)
	require.Len(t, fetched.Buyers, 1)
	assert.Equal(t, "3334445", fetched.Buyers[0].NTNCNIC)
}

func TestBulkUploadEmpty(t *testing.T) {
	svc, ctx := newTestService(t)

	buf := uploadSheet(t, nil)
	_, err := svc.BulkUpload(ctx, buf)
	assert.ErrorIs(t, err, domain.ErrEmptyUpload)
}

func TestListScopedToTenant(t *testing.T) {
	svc, ctx := newTestService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, domain.CreateRequest{
			NTNCNIC:      fmt.Sprintf("200000%d", i),
			BusinessName: fmt.Sprintf("Tenant A Buyer %d", i),
			Province:     "Sindh",
		})
		require.NoError(t, err)
	}

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	otherCtx := tenantctx.WithTenantID(context.Background(), node.Generate())

	resp, err := svc.List(otherCtx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Buyers)
}
