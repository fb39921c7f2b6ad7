package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) RenderInvoice(ctx context.Context, doc Document) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, "Sales Tax Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New("FBR Invoice No: "+doc.InvoiceNumber, props.Text{Top: 0}),
			text.New("Reference No: "+doc.ReferenceNo, props.Text{Top: 4}),
			text.New("Invoice date: "+doc.InvoiceDate, props.Text{Top: 8}),
			text.New("Status: "+doc.Status, props.Text{Top: 12}),
		),
		col.New(6),
	)

	m.AddRow(36,
		col.New(6).Add(
			text.New("Seller", props.Text{Style: fontstyle.Bold}),
			text.New(doc.SellerName, props.Text{Top: 5}),
			text.New("NTN/CNIC: "+doc.SellerNTN, props.Text{Top: 9}),
			text.New(doc.SellerAddress, props.Text{Top: 13}),
			text.New(doc.SellerProvince, props.Text{Top: 17}),
		),
		col.New(6).Add(
			text.New("Buyer", props.Text{Style: fontstyle.Bold}),
			text.New(doc.BuyerName, props.Text{Top: 5}),
			text.New("NTN/CNIC: "+doc.BuyerNTN, props.Text{Top: 9}),
			text.New(doc.BuyerAddress, props.Text{Top: 13}),
			text.New(doc.BuyerProvince+" ("+doc.BuyerRegistration+")", props.Text{Top: 17}),
		),
	)

	m.AddRow(10,
		text.NewCol(2, "HS Code", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Value excl. tax", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Sales tax", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Further tax", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range doc.Items {
		m.AddRow(12,
			text.NewCol(2, item.HSCode, props.Text{Size: 9}),
			text.NewCol(3, item.Description, props.Text{Size: 9}),
			text.NewCol(1, item.Rate, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, item.Quantity, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.ValueExcl, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, item.SalesTax, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, item.FurtherTax, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, item.Total, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Value excl. tax", props.Text{Size: 9}),
		text.NewCol(2, doc.TotalExclTax, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Sales tax", props.Text{Size: 9}),
		text.NewCol(2, doc.TotalSalesTax, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total amount", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, doc.TotalAmount, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	generated, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(generated.GetBytes()), nil
}
