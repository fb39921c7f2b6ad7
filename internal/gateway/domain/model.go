// Package domain defines the FBR digital-invoicing gateway contract: the
// outbound payload schema, the normalized response union, and the client
// and token-source interfaces the submission workflow consumes.
package domain

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	// ErrNoToken means no bearer token could be produced for the tenant;
	// the operation is blocked before any gateway call.
	ErrNoToken = errors.New("no_token")
	// ErrTokenExhausted means token acquisition failed on every attempt.
	ErrTokenExhausted = errors.New("token_exhausted")
	// ErrUnknownEnvironment means the tenant references a gateway
	// environment absent from configuration.
	ErrUnknownEnvironment = errors.New("unknown_gateway_environment")
	// ErrGatewayUnavailable wraps transport-level failures (DNS, timeout,
	// connection reset) as opposed to gateway-reported rejections.
	ErrGatewayUnavailable = errors.New("gateway_unavailable")
)

// Credentials identify one tenant against one gateway environment.
type Credentials struct {
	TenantID     snowflake.ID
	Environment  string
	ClientID     string
	ClientSecret string
}

// ItemPayload is one invoice line in the gateway's wire schema. Field
// names follow the FBR DI API.
type ItemPayload struct {
	ItemSNo                  string  `json:"itemSNo"`
	HSCode                   string  `json:"hsCode"`
	ProductDescription       string  `json:"productDescription"`
	Rate                     string  `json:"rate"`
	UoM                      string  `json:"uoM"`
	Quantity                 float64 `json:"quantity"`
	TotalValues              float64 `json:"totalValues"`
	ValueSalesExcludingST    float64 `json:"valueSalesExcludingST"`
	FixedNotifiedValue       float64 `json:"fixedNotifiedValueOrRetailPrice"`
	SalesTaxApplicable       float64 `json:"salesTaxApplicable"`
	SalesTaxWithheldAtSource float64 `json:"salesTaxWithheldAtSource"`
	ExtraTax                 float64 `json:"extraTax"`
	FurtherTax               float64 `json:"furtherTax"`
	FEDPayable               float64 `json:"fedPayable"`
	Discount                 float64 `json:"discount"`
	SaleType                 string  `json:"saleType"`
	SROScheduleNo            string  `json:"sroScheduleNo"`
	SROItemSerialNo          string  `json:"sroItemSerialNo"`
}

// InvoicePayload is the full gateway submission body.
type InvoicePayload struct {
	InvoiceType           string        `json:"invoiceType"`
	InvoiceDate           string        `json:"invoiceDate"`
	SellerNTNCNIC         string        `json:"sellerNTNCNIC"`
	SellerBusinessName    string        `json:"sellerBusinessName"`
	SellerProvince        string        `json:"sellerProvince"`
	SellerAddress         string        `json:"sellerAddress"`
	BuyerNTNCNIC          string        `json:"buyerNTNCNIC"`
	BuyerBusinessName     string        `json:"buyerBusinessName"`
	BuyerProvince         string        `json:"buyerProvince"`
	BuyerAddress          string        `json:"buyerAddress"`
	BuyerRegistrationType string        `json:"buyerRegistrationType"`
	InvoiceRefNo          string        `json:"invoiceRefNo"`
	ScenarioID            string        `json:"scenarioId,omitempty"`
	Items                 []ItemPayload `json:"items"`
}

// ResponseKind discriminates the normalized gateway response shapes.
type ResponseKind int

const (
	// KindUnknown covers bodies that match none of the known shapes; the
	// raw payload is preserved for diagnosis.
	KindUnknown ResponseKind = iota
	// KindSuccess is an accepted payload, usually with an invoice number.
	KindSuccess
	// KindValidationFailure is a gateway rejection with per-item detail.
	KindValidationFailure
)

// ItemError is one per-item rejection extracted from a validation
// failure.
type ItemError struct {
	ItemSNo    string `json:"item_s_no,omitempty"`
	StatusCode string `json:"status_code,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"`
	Message    string `json:"message"`
}

// DecodedResponse is the gateway response normalized to a tagged union.
// Response-shape probing happens exactly once, at the decode boundary;
// downstream logic switches on Kind only.
type DecodedResponse struct {
	Kind          ResponseKind
	InvoiceNumber string
	// EmptyBody marks the documented gateway quirk: HTTP 200 with a fully
	// empty body. Treated as success with a locally synthesized invoice
	// number, and logged loudly.
	EmptyBody  bool
	ItemErrors []ItemError
	Raw        json.RawMessage
}

// TokenSource produces a bearer token for a tenant and environment.
// Implementations retry with backoff and may cache.
type TokenSource interface {
	Token(ctx context.Context, creds Credentials) (string, error)
}

// Client talks to the gateway's validate and submit endpoints.
// A non-nil error is a transport or precondition failure; gateway-reported
// rejections come back as a DecodedResponse with KindValidationFailure.
type Client interface {
	Validate(ctx context.Context, creds Credentials, payload InvoicePayload) (DecodedResponse, error)
	Submit(ctx context.Context, creds Credentials, payload InvoicePayload) (DecodedResponse, error)
}
