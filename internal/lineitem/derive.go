package lineitem

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numericPattern admits the digit-and-dot shapes accepted for monetary and
// quantity input. Signs, exponents and thousands separators are rejected
// at the boundary.
var numericPattern = regexp.MustCompile(`^[0-9]*\.?[0-9]*$`)

var furtherTaxRate = decimal.NewFromFloat(0.04)

// ParseAmount validates and parses user-entered numeric text. The second
// return is false when the text is not an acceptable non-negative decimal;
// callers must then leave the target field untouched.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "." || !numericPattern.MatchString(s) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// SetValue writes a numeric field without touching the override set. Used
// when rehydrating an item whose override flags are tracked separately.
func (li *LineItem) SetValue(field Field, value decimal.Decimal) {
	switch field {
	case FieldQuantity:
		li.Quantity = value
	case FieldRetailPrice:
		li.RetailPrice = value
	case FieldUnitPrice:
		li.UnitPrice = value
	case FieldValueSalesExcludingTax:
		li.ValueSalesExcludingTax = value
	case FieldSalesTaxApplicable:
		li.SalesTaxApplicable = value
	case FieldSalesTaxWithheldAtSource:
		li.SalesTaxWithheldAtSource = value
	case FieldExtraTax:
		li.ExtraTax = value
	case FieldFEDPayable:
		li.FEDPayable = value
	case FieldDiscount:
		li.Discount = value
	case FieldAdvanceIncomeTax:
		li.AdvanceIncomeTax = value
	case FieldFurtherTax:
		li.FurtherTax = value
	case FieldTotalValue:
		li.TotalValue = value
	}
}

// SetAmount applies user-entered numeric text to one of the item's numeric
// fields. Invalid input is rejected without mutating the item. A
// successful edit marks the field as manually overridden so later
// derivation passes leave it alone.
func (li *LineItem) SetAmount(field Field, raw string) bool {
	value, ok := ParseAmount(raw)
	if !ok || !isNumericField(field) {
		return false
	}
	li.SetValue(field, value)
	if li.Overrides == nil {
		li.Overrides = Overrides{}
	}
	li.Overrides.Set(field)
	return true
}

func isNumericField(field Field) bool {
	switch field {
	case FieldQuantity, FieldRetailPrice, FieldUnitPrice,
		FieldValueSalesExcludingTax, FieldSalesTaxApplicable,
		FieldSalesTaxWithheldAtSource, FieldExtraTax, FieldFEDPayable,
		FieldDiscount, FieldAdvanceIncomeTax, FieldFurtherTax,
		FieldTotalValue:
		return true
	}
	return false
}

// Derive recomputes the dependent fields of the item after the named field
// changed. The cascade is:
//
//  1. a new rate resets the SRO selections and unlocks the schedule pick,
//  2. a new schedule resets and unlocks the item serial pick,
//  3. unit price and value of sales follow retail price and quantity,
//  4. sales tax follows the parsed rate,
//  5. further tax follows the buyer's registration type (4% for
//     unregistered buyers with a positive value of sales, zero for
//     registered buyers),
//  6. the line total sums the components, less discount, rounded to two
//     decimal places.
//
// Each derived field is skipped when its override flag is set; deriving a
// field clears its flag. Derive is idempotent: calling it again with the
// same trigger changes nothing.
func (li *LineItem) Derive(changed Field, buyer RegistrationType) {
	if li.Overrides == nil {
		li.Overrides = Overrides{}
	}

	if changed == FieldRateSpec {
		li.SROScheduleRef = ""
		li.SROItemRef = ""
		li.SROItemEnabled = false
		li.Overrides.Clear(FieldValueSalesExcludingTax)
	}
	li.SROScheduleEnabled = strings.TrimSpace(li.RateSpec) != ""

	if changed == FieldSROScheduleRef {
		li.SROItemRef = ""
	}
	li.SROItemEnabled = li.SROScheduleEnabled && li.SROScheduleRef != ""

	if !li.Overrides.Has(FieldValueSalesExcludingTax) {
		if li.Quantity.IsZero() {
			li.UnitPrice = decimal.Zero
		} else {
			li.UnitPrice = li.RetailPrice.Div(li.Quantity)
		}
		li.Overrides.Clear(FieldUnitPrice)
		li.ValueSalesExcludingTax = li.RetailPrice
	}

	if !li.Overrides.Has(FieldSalesTaxApplicable) {
		spec := ParseRateSpec(li.RateSpec)
		li.SalesTaxApplicable = spec.SalesTax(li.ValueSalesExcludingTax, li.Quantity)
	}

	if !li.Overrides.Has(FieldFurtherTax) {
		switch {
		case buyer == Unregistered && li.ValueSalesExcludingTax.IsPositive():
			li.FurtherTax = li.ValueSalesExcludingTax.Mul(furtherTaxRate)
		default:
			li.FurtherTax = decimal.Zero
		}
	}

	if !li.Overrides.Has(FieldTotalValue) {
		li.TotalValue = li.ValueSalesExcludingTax.
			Add(li.SalesTaxApplicable).
			Add(li.SalesTaxWithheldAtSource).
			Add(li.ExtraTax).
			Add(li.FEDPayable).
			Add(li.AdvanceIncomeTax).
			Add(li.FurtherTax).
			Sub(li.Discount).
			Round(2)
	}
}
