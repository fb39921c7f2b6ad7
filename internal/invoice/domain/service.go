package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	gatewaydomain "github.com/taxops/fbrgate/internal/gateway/domain"
	"github.com/taxops/fbrgate/internal/lineitem"
	"github.com/taxops/fbrgate/pkg/db/pagination"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("invoice_not_found")
	ErrInvalidTenant      = errors.New("invalid_tenant")
	ErrInvalidBuyer       = errors.New("invalid_buyer")
	ErrNoItems            = errors.New("no_items")
	ErrNotDraft           = errors.New("invoice_not_draft")
	ErrNotValidated       = errors.New("invoice_not_validated")
	ErrAlreadyFinal       = errors.New("invoice_already_submitted")
	ErrMissingNumber      = errors.New("gateway_returned_no_invoice_number")
	ErrUnknownGateway     = errors.New("gateway_response_unrecognized")
	ErrSubmissionRejected = errors.New("gateway_rejected_submission")
)

// ValidationFailedError carries the per-item rejections extracted from a
// gateway validation failure. The invoice stays in Draft.
type ValidationFailedError struct {
	Items []gatewaydomain.ItemError
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("gateway validation failed for %d item(s)", len(e.Items))
}

type ItemInput struct {
	HSCode             string `json:"hs_code"`
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
	RateSpec           string `json:"rate_spec"`
	UoM                string `json:"uom"`
	SaleType           string `json:"sale_type"`
	SROScheduleRef     string `json:"sro_schedule_ref"`
	SROItemRef         string `json:"sro_item_ref"`

	// Numeric fields travel as strings so malformed input can be
	// rejected at the boundary without partial mutation.
	Quantity                 string `json:"quantity"`
	RetailPrice              string `json:"retail_price"`
	UnitPrice                string `json:"unit_price"`
	ValueSalesExcludingTax   string `json:"value_sales_excluding_tax"`
	SalesTaxApplicable       string `json:"sales_tax_applicable"`
	SalesTaxWithheldAtSource string `json:"sales_tax_withheld_at_source"`
	ExtraTax                 string `json:"extra_tax"`
	FEDPayable               string `json:"fed_payable"`
	Discount                 string `json:"discount"`
	AdvanceIncomeTax         string `json:"advance_income_tax"`
	FurtherTax               string `json:"further_tax"`
	TotalValue               string `json:"total_value"`

	Overrides []string `json:"overrides"`
}

type SaveDraftRequest struct {
	ID                string      `json:"id,omitempty"`
	BuyerID           string      `json:"buyer_id"`
	InvoiceType       string      `json:"invoice_type"`
	InvoiceDate       string      `json:"invoice_date"`
	ScenarioID        string      `json:"scenario_id"`
	TransactionTypeID int64       `json:"transaction_type_id"`
	Items             []ItemInput `json:"items"`
}

// DeriveItemRequest previews the field cascade for one item without
// persisting anything.
type DeriveItemRequest struct {
	Item              ItemInput                 `json:"item"`
	ChangedField      string                    `json:"changed_field"`
	BuyerRegistration lineitem.RegistrationType `json:"buyer_registration"`
}

type ListRequest struct {
	PageToken string
	PageSize  int32
	Status    string
}

type ListResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type SubmitResult struct {
	Invoice       Invoice `json:"invoice"`
	InvoiceNumber string  `json:"invoice_number"`
}

type Service interface {
	SaveDraft(ctx context.Context, req SaveDraftRequest) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Delete(ctx context.Context, id string) error
	DeriveItem(ctx context.Context, req DeriveItemRequest) (lineitem.LineItem, error)

	// Validate sends the invoice to the gateway's validation endpoint.
	// Success promotes Draft to Validated; rejection keeps Draft and
	// returns *ValidationFailedError.
	Validate(ctx context.Context, id string) (Invoice, error)
	// Submit runs the ordered submission sequence from Validated:
	// gateway submit, finalize locally, best-effort draft cleanup.
	// Failure of the first two steps leaves the invoice Validated.
	Submit(ctx context.Context, id string) (SubmitResult, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, status string, page pagination.Pagination) ([]*Invoice, error)
	CountByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) (int64, error)
	// Update persists invoice fields and replaces its items.
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) error

	SaveDraftPayload(ctx context.Context, db *gorm.DB, payload *DraftPayload) error
	FindDraftPayload(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) (*DraftPayload, error)
	DeleteDraftPayload(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) error
}
