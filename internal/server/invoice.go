package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/taxops/fbrgate/internal/invoice/domain"
	"github.com/taxops/fbrgate/internal/lineitem"
	"github.com/taxops/fbrgate/internal/providers/pdf"
)

type invoiceItemRequest struct {
	HSCode             string `json:"hs_code"`
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
	RateSpec           string `json:"rate_spec"`
	UoM                string `json:"uom"`
	SaleType           string `json:"sale_type"`
	SROScheduleRef     string `json:"sro_schedule_ref"`
	SROItemRef         string `json:"sro_item_ref"`

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

type saveInvoiceRequest struct {
	BuyerID           string               `json:"buyer_id"`
	InvoiceType       string               `json:"invoice_type"`
	InvoiceDate       string               `json:"invoice_date"`
	ScenarioID        string               `json:"scenario_id"`
	TransactionTypeID int64                `json:"transaction_type_id"`
	Items             []invoiceItemRequest `json:"items"`
}

func (r saveInvoiceRequest) toDomain(id string) invoicedomain.SaveDraftRequest {
	items := make([]invoicedomain.ItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, item.toDomain())
	}
	return invoicedomain.SaveDraftRequest{
		ID:                id,
		BuyerID:           strings.TrimSpace(r.BuyerID),
		InvoiceType:       r.InvoiceType,
		InvoiceDate:       r.InvoiceDate,
		ScenarioID:        r.ScenarioID,
		TransactionTypeID: r.TransactionTypeID,
		Items:             items,
	}
}

func (r invoiceItemRequest) toDomain() invoicedomain.ItemInput {
	return invoicedomain.ItemInput{
		HSCode:             r.HSCode,
		ProductName:        r.ProductName,
		ProductDescription: r.ProductDescription,
		RateSpec:           r.RateSpec,
		UoM:                r.UoM,
		SaleType:           r.SaleType,
		SROScheduleRef:     r.SROScheduleRef,
		SROItemRef:         r.SROItemRef,

		Quantity:                 r.Quantity,
		RetailPrice:              r.RetailPrice,
		UnitPrice:                r.UnitPrice,
		ValueSalesExcludingTax:   r.ValueSalesExcludingTax,
		SalesTaxApplicable:       r.SalesTaxApplicable,
		SalesTaxWithheldAtSource: r.SalesTaxWithheldAtSource,
		ExtraTax:                 r.ExtraTax,
		FEDPayable:               r.FEDPayable,
		Discount:                 r.Discount,
		AdvanceIncomeTax:         r.AdvanceIncomeTax,
		FurtherTax:               r.FurtherTax,
		TotalValue:               r.TotalValue,

		Overrides: r.Overrides,
	}
}

func (s *Server) SaveInvoiceDraft(c *gin.Context) {
	var req saveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.SaveDraft(c.Request.Context(), req.toDomain(""))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) UpdateInvoiceDraft(c *gin.Context) {
	var req saveInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.SaveDraft(c.Request.Context(), req.toDomain(strings.TrimSpace(c.Param("id"))))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		PageToken string `form:"page_token"`
		PageSize  int32  `form:"page_size"`
		Status    string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  query.PageSize,
		Status:    strings.ToUpper(strings.TrimSpace(query.Status)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

type deriveItemRequest struct {
	Item              invoiceItemRequest `json:"item"`
	ChangedField      string             `json:"changed_field"`
	BuyerRegistration string             `json:"buyer_registration"`
}

// DeriveInvoiceItem previews the field cascade for one line without
// persisting anything; the client calls it on every edit.
func (s *Server) DeriveInvoiceItem(c *gin.Context) {
	var req deriveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	item, err := s.invoiceSvc.DeriveItem(c.Request.Context(), invoicedomain.DeriveItemRequest{
		Item:              req.Item.toDomain(),
		ChangedField:      strings.TrimSpace(req.ChangedField),
		BuyerRegistration: lineitem.RegistrationType(strings.TrimSpace(req.BuyerRegistration)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ValidateInvoice(c *gin.Context) {
	invoice, err := s.invoiceSvc.Validate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoice})
}

func (s *Server) SubmitInvoice(c *gin.Context) {
	result, err := s.invoiceSvc.Submit(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	ctx := c.Request.Context()

	invoice, err := s.invoiceSvc.GetByID(ctx, strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	tenant, err := s.tenantSvc.GetByID(ctx, invoice.TenantID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdfProvider.RenderInvoice(ctx, buildInvoiceDocument(invoice, tenant.Name, tenant.NTNCNIC, tenant.Address, tenant.ProvinceCode))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+invoice.ReferenceNo+`.pdf"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

func buildInvoiceDocument(invoice invoicedomain.Invoice, sellerName, sellerNTN, sellerAddress, sellerProvince string) pdf.Document {
	items := make([]pdf.DocumentItem, 0, len(invoice.Items))
	totalExcl := decimal.Zero
	totalTax := decimal.Zero
	totalAmount := decimal.Zero

	for _, item := range invoice.Items {
		description := item.ProductName
		if description == "" {
			description = item.ProductDescription
		}
		items = append(items, pdf.DocumentItem{
			HSCode:      item.HSCode,
			Description: description,
			Rate:        item.RateSpec,
			Quantity:    item.Quantity.String(),
			ValueExcl:   item.ValueSalesExcludingTax.StringFixed(2),
			SalesTax:    item.SalesTaxApplicable.StringFixed(2),
			FurtherTax:  item.FurtherTax.StringFixed(2),
			Total:       item.TotalValue.StringFixed(2),
		})
		totalExcl = totalExcl.Add(item.ValueSalesExcludingTax)
		totalTax = totalTax.Add(item.SalesTaxApplicable)
		totalAmount = totalAmount.Add(item.TotalValue)
	}

	number := invoice.FBRInvoiceNumber
	if number == "" {
		number = "not yet submitted"
	}

	return pdf.Document{
		SellerName:     sellerName,
		SellerNTN:      sellerNTN,
		SellerAddress:  sellerAddress,
		SellerProvince: sellerProvince,

		BuyerName:         invoice.BuyerBusinessName,
		BuyerNTN:          invoice.BuyerNTNCNIC,
		BuyerAddress:      invoice.BuyerAddress,
		BuyerProvince:     invoice.BuyerProvinceCode,
		BuyerRegistration: string(invoice.BuyerRegistrationType),

		InvoiceNumber: number,
		ReferenceNo:   invoice.ReferenceNo,
		InvoiceDate:   invoice.InvoiceDate,
		Status:        string(invoice.Status),

		Items: items,

		TotalExclTax:  totalExcl.StringFixed(2),
		TotalSalesTax: totalTax.StringFixed(2),
		TotalAmount:   totalAmount.StringFixed(2),
	}
}
