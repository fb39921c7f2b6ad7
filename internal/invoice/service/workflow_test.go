package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	buyerdomain "github.com/taxops/fbrgate/internal/buyer/domain"
	buyerrepo "github.com/taxops/fbrgate/internal/buyer/repository"
	buyerservice "github.com/taxops/fbrgate/internal/buyer/service"
	gatewaydomain "github.com/taxops/fbrgate/internal/gateway/domain"
	"github.com/taxops/fbrgate/internal/invoice/domain"
	"github.com/taxops/fbrgate/internal/invoice/repository"
	tenantdomain "github.com/taxops/fbrgate/internal/tenant/domain"
	tenantrepo "github.com/taxops/fbrgate/internal/tenant/repository"
	tenantservice "github.com/taxops/fbrgate/internal/tenant/service"
	"github.com/taxops/fbrgate/internal/tenantctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// scriptedGateway replays canned responses and records call order into a
// shared journal.
type scriptedGateway struct {
	journal          *[]string
	validateResponse gatewaydomain.DecodedResponse
	validateErr      error
	submitResponse   gatewaydomain.DecodedResponse
	submitErr        error
}

func (g *scriptedGateway) Validate(ctx context.Context, creds gatewaydomain.Credentials, payload gatewaydomain.InvoicePayload) (gatewaydomain.DecodedResponse, error) {
	*g.journal = append(*g.journal, "gateway_validate")
	return g.validateResponse, g.validateErr
}

func (g *scriptedGateway) Submit(ctx context.Context, creds gatewaydomain.Credentials, payload gatewaydomain.InvoicePayload) (gatewaydomain.DecodedResponse, error) {
	*g.journal = append(*g.journal, "gateway_submit")
	return g.submitResponse, g.submitErr
}

// journalRepo delegates to the real repository while recording writes.
type journalRepo struct {
	domain.Repository
	journal *[]string
}

func (r *journalRepo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	*r.journal = append(*r.journal, "persist")
	return r.Repository.Update(ctx, db, invoice)
}

func (r *journalRepo) DeleteDraftPayload(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error {
	*r.journal = append(*r.journal, "delete_draft")
	return r.Repository.DeleteDraftPayload(ctx, db, invoiceID)
}

type workflowHarness struct {
	svc     domain.Service
	gateway *scriptedGateway
	journal *[]string
	ctx     context.Context
	buyerID string
}

func newWorkflowHarness(t *testing.T) *workflowHarness {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&tenantdomain.Tenant{},
		&buyerdomain.Buyer{},
		&domain.Invoice{},
		&domain.InvoiceItem{},
		&domain.DraftPayload{},
	))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	log := zap.NewNop()

	// The shared in-memory database survives across tests in this
	// package, so every harness needs a distinct seller NTN.
	ntn := node.Generate().String()
	ntn = ntn[len(ntn)-7:]

	tenants := tenantservice.New(tenantservice.Params{DB: db, Log: log, GenID: node, Repo: tenantrepo.Provide()})
	tenant, err := tenants.Create(context.Background(), tenantdomain.CreateTenantRequest{
		Name:     "Siddiq Traders",
		NTNCNIC:  ntn,
		Province: "Punjab",
	})
	require.NoError(t, err)

	ctx := tenantctx.WithTenantID(context.Background(), tenant.ID)

	buyers := buyerservice.New(buyerservice.Params{DB: db, Log: log, GenID: node, Repo: buyerrepo.Provide()})
	buyer, err := buyers.Create(ctx, buyerdomain.CreateRequest{
		NTNCNIC:          "1234567890123",
		BusinessName:     "Unregistered Retail Walk-in",
		Province:         "Punjab",
		RegistrationType: "Unregistered",
	})
	require.NoError(t, err)

	journal := &[]string{}
	gw := &scriptedGateway{journal: journal}

	svc := New(Params{
		DB:      db,
		Log:     log,
		GenID:   node,
		Repo:    &journalRepo{Repository: repository.Provide(), journal: journal},
		Buyers:  buyers,
		Tenants: tenants,
		Gateway: gw,
	})

	return &workflowHarness{
		svc:     svc,
		gateway: gw,
		journal: journal,
		ctx:     ctx,
		buyerID: buyer.ID.String(),
	}
}

func (h *workflowHarness) saveDraft(t *testing.T) domain.Invoice {
	t.Helper()
	invoice, err := h.svc.SaveDraft(h.ctx, domain.SaveDraftRequest{
		BuyerID: h.buyerID,
		Items: []domain.ItemInput{{
			HSCode:      "2523.2900",
			ProductName: "Cement",
			RateSpec:    "18%",
			Quantity:    "2",
			RetailPrice: "1000",
		}},
	})
	require.NoError(t, err)
	return invoice
}

func wrappedSuccess(number string) gatewaydomain.DecodedResponse {
	return gatewaydomain.DecodedResponse{
		Kind:          gatewaydomain.KindSuccess,
		InvoiceNumber: number,
		Raw:           []byte(`{"validationResponse":{"statusCode":"00"}}`),
	}
}

func TestSaveDraftDerivesItems(t *testing.T) {
	h := newWorkflowHarness(t)

	invoice := h.saveDraft(t)
	require.Len(t, invoice.Items, 1)
	item := invoice.Items[0]
	assert.Equal(t, "500", item.UnitPrice.String())
	assert.Equal(t, "180", item.SalesTaxApplicable.String())
	// Unregistered buyer picks up 4% further tax.
	assert.Equal(t, "40", item.FurtherTax.String())
	assert.Equal(t, "1220", item.TotalValue.String())
	assert.Equal(t, domain.StatusDraft, invoice.Status)
	assert.NotEmpty(t, invoice.ReferenceNo)
}

func TestValidatePromotesToValidated(t *testing.T) {
	h := newWorkflowHarness(t)
	h.gateway.validateResponse = wrappedSuccess("")

	invoice := h.saveDraft(t)
	validated, err := h.svc.Validate(h.ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusValidated, validated.Status)
}

func TestValidateRejectionKeepsDraft(t *testing.T) {
	h := newWorkflowHarness(t)
	h.gateway.validateResponse = gatewaydomain.DecodedResponse{
		Kind: gatewaydomain.KindValidationFailure,
		ItemErrors: []gatewaydomain.ItemError{
			{ItemSNo: "1", ErrorCode: "0052", Message: "Buyer NTN/CNIC is invalid"},
		},
	}

	invoice := h.saveDraft(t)
	_, err := h.svc.Validate(h.ctx, invoice.ID.String())

	var failed *domain.ValidationFailedError
	require.ErrorAs(t, err, &failed)
	require.Len(t, failed.Items, 1)
	assert.Equal(t, "0052", failed.Items[0].ErrorCode)

	reloaded, err := h.svc.GetByID(h.ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, reloaded.Status)
}

func TestSubmitRequiresValidated(t *testing.T) {
	h := newWorkflowHarness(t)

	invoice := h.saveDraft(t)
	_, err := h.svc.Submit(h.ctx, invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotValidated)
	assert.NotContains(t, *h.journal, "gateway_submit")
}

func TestSubmitHappyPathOrdering(t *testing.T) {
	h := newWorkflowHarness(t)
	h.gateway.validateResponse = wrappedSuccess("")
	h.gateway.submitResponse = wrappedSuccess("7000007DI1747119701593")

	invoice := h.saveDraft(t)
	_, err := h.svc.Validate(h.ctx, invoice.ID.String())
	require.NoError(t, err)

	*h.journal = nil
	result, err := h.svc.Submit(h.ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "7000007DI1747119701593", result.InvoiceNumber)
	assert.Equal(t, domain.StatusSubmitted, result.Invoice.Status)

	// Gateway first, then local finalize, then best-effort cleanup.
	require.Equal(t, []string{"gateway_submit", "persist", "delete_draft"}, *h.journal)

	reloaded, err := h.svc.GetByID(h.ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitted, reloaded.Status)
	assert.Equal(t, "7000007DI1747119701593", reloaded.FBRInvoiceNumber)
	require.NotNil(t, reloaded.SubmittedAt)
}

func TestSubmitMissingInvoiceNumberAborts(t *testing.T) {
	h := newWorkflowHarness(t)
	h.gateway.validateResponse = wrappedSuccess("")
	h.gateway.submitResponse = wrappedSuccess("")

	invoice := h.saveDraft(t)
	_, err := h.svc.Validate(h.ctx, invoice.ID.String())
	require.NoError(t, err)

	*h.journal = nil
	_, err = h.svc.Submit(h.ctx, invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrMissingNumber)

	// The local record must not be touched after a numberless response.
	assert.Equal(t, []string{"gateway_submit"}, *h.journal)

	reloaded, err := h.svc.GetByID(h.ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusValidated, reloaded.Status)
}

func TestSubmitTransportFailureStaysValidated(t *testing.T) {
	h := newWorkflowHarness(t)
	h.gateway.validateResponse = wrappedSuccess("")
	h.gateway.submitErr = gatewaydomain.ErrGatewayUnavailable

	invoice := h.saveDraft(t)
	_, err := h.svc.Validate(h.ctx, invoice.ID.String())
	require.NoError(t, err)

	_, err = h.svc.Submit(h.ctx, invoice.ID.String())
	assert.ErrorIs(t, err, gatewaydomain.ErrGatewayUnavailable)

	reloaded, err := h.svc.GetByID(h.ctx, invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusValidated, reloaded.Status)
}

func TestSubmitAgainAfterSubmittedFails(t *testing.T) {
	h := newWorkflowHarness(t)
	h.gateway.validateResponse = wrappedSuccess("")
	h.gateway.submitResponse = wrappedSuccess("N-1")

	invoice := h.saveDraft(t)
	_, err := h.svc.Validate(h.ctx, invoice.ID.String())
	require.NoError(t, err)
	_, err = h.svc.Submit(h.ctx, invoice.ID.String())
	require.NoError(t, err)

	_, err = h.svc.Submit(h.ctx, invoice.ID.String())
	assert.ErrorIs(t, err, domain.ErrAlreadyFinal)
}

func TestEditingValidatedDraftDemotesToDraft(t *testing.T) {
	h := newWorkflowHarness(t)
	h.gateway.validateResponse = wrappedSuccess("")

	invoice := h.saveDraft(t)
	_, err := h.svc.Validate(h.ctx, invoice.ID.String())
	require.NoError(t, err)

	edited, err := h.svc.SaveDraft(h.ctx, domain.SaveDraftRequest{
		ID:      invoice.ID.String(),
		BuyerID: h.buyerID,
		Items: []domain.ItemInput{{
			HSCode:      "2523.2900",
			ProductName: "Cement",
			RateSpec:    "18%",
			Quantity:    "3",
			RetailPrice: "1500",
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, edited.Status)
	assert.Equal(t, invoice.ReferenceNo, edited.ReferenceNo)
	require.Len(t, edited.Items, 1)
	assert.Equal(t, "500", edited.Items[0].UnitPrice.String())
}

func TestDeriveItemPreview(t *testing.T) {
	h := newWorkflowHarness(t)

	item, err := h.svc.DeriveItem(h.ctx, domain.DeriveItemRequest{
		Item: domain.ItemInput{
			HSCode:      "2523.2900",
			RateSpec:    "18%",
			Quantity:    "2",
			RetailPrice: "1000",
		},
		ChangedField:      "retailPrice",
		BuyerRegistration: "Registered",
	})
	require.NoError(t, err)
	assert.Equal(t, "500", item.UnitPrice.String())
	assert.Equal(t, "180", item.SalesTaxApplicable.String())
	assert.True(t, item.FurtherTax.IsZero())
}

func TestDeriveItemRejectsMalformedEdit(t *testing.T) {
	h := newWorkflowHarness(t)

	item, err := h.svc.DeriveItem(h.ctx, domain.DeriveItemRequest{
		Item: domain.ItemInput{
			HSCode:      "2523.2900",
			RateSpec:    "18%",
			Quantity:    "2",
			RetailPrice: "1,000",
		},
		ChangedField:      "retailPrice",
		BuyerRegistration: "Registered",
	})
	require.NoError(t, err)
	// The malformed edit is dropped: no value applied, no derivation.
	assert.True(t, item.RetailPrice.IsZero())
	assert.True(t, item.SalesTaxApplicable.IsZero())
}
