// Package pdf renders printable tax invoices with maroto.
package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

// Document is the flattened, display-ready invoice. Monetary values
// arrive pre-formatted so the renderer never does arithmetic.
type Document struct {
	SellerName     string
	SellerNTN      string
	SellerAddress  string
	SellerProvince string

	BuyerName         string
	BuyerNTN          string
	BuyerAddress      string
	BuyerProvince     string
	BuyerRegistration string

	InvoiceNumber string
	ReferenceNo   string
	InvoiceDate   string
	Status        string

	Items []DocumentItem

	TotalExclTax  string
	TotalSalesTax string
	TotalAmount   string
}

type DocumentItem struct {
	HSCode      string
	Description string
	Rate        string
	Quantity    string
	ValueExcl   string
	SalesTax    string
	FurtherTax  string
	Total       string
}

type Provider interface {
	RenderInvoice(ctx context.Context, doc Document) (io.Reader, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
