package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	buyerdomain "github.com/taxops/fbrgate/internal/buyer/domain"
	gatewaydomain "github.com/taxops/fbrgate/internal/gateway/domain"
	"github.com/taxops/fbrgate/internal/invoice/domain"
	"github.com/taxops/fbrgate/internal/invoice/format"
	"github.com/taxops/fbrgate/internal/lineitem"
	"github.com/taxops/fbrgate/internal/observability/metrics"
	tenantdomain "github.com/taxops/fbrgate/internal/tenant/domain"
	"github.com/taxops/fbrgate/internal/tenantctx"
	"github.com/taxops/fbrgate/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Buyers  buyerdomain.Service
	Tenants tenantdomain.Service
	Gateway gatewaydomain.Client
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	buyers  buyerdomain.Service
	tenants tenantdomain.Service
	gateway gatewaydomain.Client
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("invoice.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		buyers:  p.Buyers,
		tenants: p.Tenants,
		gateway: p.Gateway,
		metrics: p.Metrics,
	}
}

func (s *Service) SaveDraft(ctx context.Context, req domain.SaveDraftRequest) (domain.Invoice, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Invoice{}, domain.ErrInvalidTenant
	}

	buyer, err := s.buyers.GetByID(ctx, req.BuyerID)
	if err != nil {
		return domain.Invoice{}, domain.ErrInvalidBuyer
	}

	items := make([]domain.InvoiceItem, 0, len(req.Items))
	for i, input := range req.Items {
		item, err := buildItem(input)
		if err != nil {
			return domain.Invoice{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		item.Derive(lineitem.FieldNone, buyer.RegistrationType)
		if err := item.Validate(); err != nil {
			return domain.Invoice{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, domain.InvoiceItem{
			ID:        s.genID.Generate(),
			SortOrder: i,
			LineItem:  item,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		})
	}

	now := time.Now().UTC()
	invoiceDate := strings.TrimSpace(req.InvoiceDate)
	if invoiceDate == "" {
		invoiceDate = now.Format("2006-01-02")
	}
	invoiceType := strings.TrimSpace(req.InvoiceType)
	if invoiceType == "" {
		invoiceType = "Sale Invoice"
	}

	// Editing an existing draft keeps its identity and reference; a
	// validated invoice drops back to Draft on edit.
	if req.ID != "" {
		existing, err := s.GetByID(ctx, req.ID)
		if err != nil {
			return domain.Invoice{}, err
		}
		if existing.Status == domain.StatusSubmitted {
			return domain.Invoice{}, domain.ErrAlreadyFinal
		}

		existing.BuyerID = buyer.ID
		existing.BuyerNTNCNIC = buyer.NTNCNIC
		existing.BuyerBusinessName = buyer.BusinessName
		existing.BuyerProvinceCode = buyer.ProvinceCode
		existing.BuyerAddress = buyer.Address
		existing.BuyerRegistrationType = buyer.RegistrationType
		existing.InvoiceType = invoiceType
		existing.InvoiceDate = invoiceDate
		existing.ScenarioID = strings.TrimSpace(req.ScenarioID)
		existing.TransactionTypeID = req.TransactionTypeID
		existing.Status = domain.StatusDraft
		existing.UpdatedAt = now
		for i := range items {
			items[i].InvoiceID = existing.ID
		}
		existing.Items = items

		if err := s.repo.Update(ctx, s.db, &existing); err != nil {
			return domain.Invoice{}, err
		}
		return existing, nil
	}

	count, err := s.repo.CountByTenant(ctx, s.db, tenantID)
	if err != nil {
		return domain.Invoice{}, err
	}
	reference, err := format.FormatReference(format.DefaultReferenceTemplate, now, count+1)
	if err != nil {
		return domain.Invoice{}, err
	}

	invoice := domain.Invoice{
		ID:                    s.genID.Generate(),
		TenantID:              tenantID,
		BuyerID:               buyer.ID,
		BuyerNTNCNIC:          buyer.NTNCNIC,
		BuyerBusinessName:     buyer.BusinessName,
		BuyerProvinceCode:     buyer.ProvinceCode,
		BuyerAddress:          buyer.Address,
		BuyerRegistrationType: buyer.RegistrationType,
		InvoiceType:           invoiceType,
		InvoiceDate:           invoiceDate,
		ReferenceNo:           reference,
		ScenarioID:            strings.TrimSpace(req.ScenarioID),
		TransactionTypeID:     req.TransactionTypeID,
		Status:                domain.StatusDraft,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	for i := range items {
		items[i].InvoiceID = invoice.ID
	}
	invoice.Items = items

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		return domain.Invoice{}, err
	}
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.Invoice{}, domain.ErrInvalidTenant
	}
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	invoice, err := s.repo.FindByID(ctx, s.db, tenantID, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	tenantID, ok := tenantctx.TenantIDFromContext(ctx)
	if !ok || tenantID == 0 {
		return domain.ListResponse{}, domain.ErrInvalidTenant
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, tenantID, strings.ToUpper(strings.TrimSpace(req.Status)), pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if invoice.Status == domain.StatusSubmitted {
		return domain.ErrAlreadyFinal
	}
	return s.repo.Delete(ctx, s.db, invoice.TenantID, invoice.ID)
}

// DeriveItem previews the field cascade for one item edit. A malformed
// numeric edit leaves the item exactly as sent: no value change, no
// derivation pass.
func (s *Service) DeriveItem(ctx context.Context, req domain.DeriveItemRequest) (lineitem.LineItem, error) {
	changed := lineitem.Field(strings.TrimSpace(req.ChangedField))

	item, err := buildItemExcept(req.Item, changed)
	if err != nil {
		return lineitem.LineItem{}, err
	}

	if raw, numeric := numericInput(req.Item, changed); numeric {
		if !item.SetAmount(changed, raw) {
			return item, nil
		}
	}

	registration := req.BuyerRegistration
	if registration == "" {
		registration = lineitem.Unregistered
	}
	item.Derive(changed, registration)
	return item, nil
}

// buildItem parses every field of the input; malformed numerics are
// reported per-field before any derivation or network activity.
func buildItem(input domain.ItemInput) (lineitem.LineItem, error) {
	return buildItemExcept(input, lineitem.FieldNone)
}

func buildItemExcept(input domain.ItemInput, skip lineitem.Field) (lineitem.LineItem, error) {
	item := lineitem.New()
	item.HSCode = strings.TrimSpace(input.HSCode)
	item.ProductName = strings.TrimSpace(input.ProductName)
	item.ProductDescription = strings.TrimSpace(input.ProductDescription)
	item.RateSpec = strings.TrimSpace(input.RateSpec)
	item.UoM = strings.TrimSpace(input.UoM)
	item.SaleType = strings.TrimSpace(input.SaleType)
	item.SROScheduleRef = strings.TrimSpace(input.SROScheduleRef)
	item.SROItemRef = strings.TrimSpace(input.SROItemRef)

	for _, field := range input.Overrides {
		item.Overrides.Set(lineitem.Field(field))
	}

	numerics := []struct {
		field lineitem.Field
		raw   string
	}{
		{lineitem.FieldQuantity, input.Quantity},
		{lineitem.FieldRetailPrice, input.RetailPrice},
		{lineitem.FieldUnitPrice, input.UnitPrice},
		{lineitem.FieldValueSalesExcludingTax, input.ValueSalesExcludingTax},
		{lineitem.FieldSalesTaxApplicable, input.SalesTaxApplicable},
		{lineitem.FieldSalesTaxWithheldAtSource, input.SalesTaxWithheldAtSource},
		{lineitem.FieldExtraTax, input.ExtraTax},
		{lineitem.FieldFEDPayable, input.FEDPayable},
		{lineitem.FieldDiscount, input.Discount},
		{lineitem.FieldAdvanceIncomeTax, input.AdvanceIncomeTax},
		{lineitem.FieldFurtherTax, input.FurtherTax},
		{lineitem.FieldTotalValue, input.TotalValue},
	}
	for _, n := range numerics {
		if n.raw == "" || n.field == skip {
			continue
		}
		value, ok := lineitem.ParseAmount(n.raw)
		if !ok {
			return lineitem.LineItem{}, fmt.Errorf("invalid value %q for %s", n.raw, n.field)
		}
		item.SetValue(n.field, value)
	}
	return item, nil
}

func numericInput(input domain.ItemInput, field lineitem.Field) (string, bool) {
	switch field {
	case lineitem.FieldQuantity:
		return input.Quantity, true
	case lineitem.FieldRetailPrice:
		return input.RetailPrice, true
	case lineitem.FieldUnitPrice:
		return input.UnitPrice, true
	case lineitem.FieldValueSalesExcludingTax:
		return input.ValueSalesExcludingTax, true
	case lineitem.FieldSalesTaxApplicable:
		return input.SalesTaxApplicable, true
	case lineitem.FieldSalesTaxWithheldAtSource:
		return input.SalesTaxWithheldAtSource, true
	case lineitem.FieldExtraTax:
		return input.ExtraTax, true
	case lineitem.FieldFEDPayable:
		return input.FEDPayable, true
	case lineitem.FieldDiscount:
		return input.Discount, true
	case lineitem.FieldAdvanceIncomeTax:
		return input.AdvanceIncomeTax, true
	case lineitem.FieldFurtherTax:
		return input.FurtherTax, true
	case lineitem.FieldTotalValue:
		return input.TotalValue, true
	default:
		return "", false
	}
}
