package service

import (
	"strconv"

	gatewaydomain "github.com/taxops/fbrgate/internal/gateway/domain"
	"github.com/taxops/fbrgate/internal/invoice/domain"
	tenantdomain "github.com/taxops/fbrgate/internal/tenant/domain"
)

// buildPayload shapes the invoice into the gateway wire schema. Decimal
// values cross to float64 only here, at the serialization boundary.
func buildPayload(invoice domain.Invoice, tenant tenantdomain.Tenant) gatewaydomain.InvoicePayload {
	items := make([]gatewaydomain.ItemPayload, 0, len(invoice.Items))
	for i, item := range invoice.Items {
		items = append(items, gatewaydomain.ItemPayload{
			ItemSNo:                  strconv.Itoa(i + 1),
			HSCode:                   item.HSCode,
			ProductDescription:       item.ProductDescription,
			Rate:                     item.RateSpec,
			UoM:                      item.UoM,
			Quantity:                 item.Quantity.InexactFloat64(),
			TotalValues:              item.TotalValue.InexactFloat64(),
			ValueSalesExcludingST:    item.ValueSalesExcludingTax.InexactFloat64(),
			FixedNotifiedValue:       item.RetailPrice.InexactFloat64(),
			SalesTaxApplicable:       item.SalesTaxApplicable.InexactFloat64(),
			SalesTaxWithheldAtSource: item.SalesTaxWithheldAtSource.InexactFloat64(),
			ExtraTax:                 item.ExtraTax.InexactFloat64(),
			FurtherTax:               item.FurtherTax.InexactFloat64(),
			FEDPayable:               item.FEDPayable.InexactFloat64(),
			Discount:                 item.Discount.InexactFloat64(),
			SaleType:                 item.SaleType,
			SROScheduleNo:            item.SROScheduleRef,
			SROItemSerialNo:          item.SROItemRef,
		})
	}

	return gatewaydomain.InvoicePayload{
		InvoiceType:           invoice.InvoiceType,
		InvoiceDate:           invoice.InvoiceDate,
		SellerNTNCNIC:         tenant.NTNCNIC,
		SellerBusinessName:    tenant.BusinessName,
		SellerProvince:        tenant.ProvinceCode,
		SellerAddress:         tenant.Address,
		BuyerNTNCNIC:          invoice.BuyerNTNCNIC,
		BuyerBusinessName:     invoice.BuyerBusinessName,
		BuyerProvince:         invoice.BuyerProvinceCode,
		BuyerAddress:          invoice.BuyerAddress,
		BuyerRegistrationType: string(invoice.BuyerRegistrationType),
		InvoiceRefNo:          invoice.ReferenceNo,
		ScenarioID:            invoice.ScenarioID,
		Items:                 items,
	}
}
