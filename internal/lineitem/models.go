// Package lineitem implements the invoice line-item model and the
// dependent-field derivation rules. Every edit to an item flows through
// Derive, which recomputes unit price, value of sales, sales tax, further
// tax and the line total while honoring per-field manual overrides.
package lineitem

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Field names one attribute of a line item. Fields double as override-set
// keys and as the "what changed" trigger passed to Derive.
type Field string

const (
	FieldNone                     Field = ""
	FieldHSCode                   Field = "hsCode"
	FieldProductName              Field = "productName"
	FieldProductDescription       Field = "productDescription"
	FieldRateSpec                 Field = "rate"
	FieldQuantity                 Field = "quantity"
	FieldRetailPrice              Field = "retailPrice"
	FieldUnitPrice                Field = "unitPrice"
	FieldValueSalesExcludingTax   Field = "valueSalesExcludingST"
	FieldSalesTaxApplicable       Field = "salesTaxApplicable"
	FieldSalesTaxWithheldAtSource Field = "salesTaxWithheldAtSource"
	FieldExtraTax                 Field = "extraTax"
	FieldFEDPayable               Field = "fedPayable"
	FieldDiscount                 Field = "discount"
	FieldAdvanceIncomeTax         Field = "advanceIncomeTax"
	FieldFurtherTax               Field = "furtherTax"
	FieldTotalValue               Field = "totalValue"
	FieldSROScheduleRef           Field = "sroScheduleNo"
	FieldSROItemRef               Field = "sroItemSerialNo"

	// FieldBuyerRegistration is a derivation trigger only: the buyer's
	// registration type changed, re-run the further-tax rule.
	FieldBuyerRegistration Field = "buyerRegistrationType"
)

// RegistrationType is the buyer registration flag that drives the
// further-tax rule.
type RegistrationType string

const (
	Registered   RegistrationType = "Registered"
	Unregistered RegistrationType = "Unregistered"
)

// Overrides is the set of fields the user has hand-edited. An overridden
// field is never silently recomputed.
type Overrides map[Field]struct{}

func (o Overrides) Has(f Field) bool {
	_, ok := o[f]
	return ok
}

func (o Overrides) Set(f Field) {
	o[f] = struct{}{}
}

func (o Overrides) Clear(f Field) {
	delete(o, f)
}

func (o Overrides) MarshalJSON() ([]byte, error) {
	fields := make([]string, 0, len(o))
	for f := range o {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	return json.Marshal(fields)
}

func (o *Overrides) UnmarshalJSON(data []byte) error {
	var fields []string
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	set := make(Overrides, len(fields))
	for _, f := range fields {
		set[Field(f)] = struct{}{}
	}
	*o = set
	return nil
}

// Value implements driver.Valuer so the set persists as a JSON array.
func (o Overrides) Value() (driver.Value, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (o *Overrides) Scan(value any) error {
	if value == nil {
		*o = Overrides{}
		return nil
	}
	switch typed := value.(type) {
	case []byte:
		return o.UnmarshalJSON(typed)
	case string:
		return o.UnmarshalJSON([]byte(typed))
	default:
		return fmt.Errorf("unsupported overrides column type %T", value)
	}
}

var ErrInvalidHSCode = errors.New("invalid_hs_code")

const maxHSCodeLen = 50

// LineItem is one taxable entry on an invoice. Monetary values are decimal
// and keep full precision internally; rounding happens only on the line
// total.
type LineItem struct {
	HSCode             string `gorm:"column:hs_code" json:"hs_code"`
	ProductName        string `json:"product_name"`
	ProductDescription string `json:"product_description"`
	RateSpec           string `gorm:"column:rate_spec" json:"rate_spec"`
	UoM                string `gorm:"column:uom" json:"uom"`
	SaleType           string `gorm:"column:sale_type" json:"sale_type"`

	Quantity                 decimal.Decimal `gorm:"type:decimal(18,4)" json:"quantity"`
	RetailPrice              decimal.Decimal `gorm:"type:decimal(18,4)" json:"retail_price"`
	UnitPrice                decimal.Decimal `gorm:"type:decimal(18,4)" json:"unit_price"`
	ValueSalesExcludingTax   decimal.Decimal `gorm:"type:decimal(18,4)" json:"value_sales_excluding_tax"`
	SalesTaxApplicable       decimal.Decimal `gorm:"type:decimal(18,4)" json:"sales_tax_applicable"`
	SalesTaxWithheldAtSource decimal.Decimal `gorm:"type:decimal(18,4)" json:"sales_tax_withheld_at_source"`
	ExtraTax                 decimal.Decimal `gorm:"type:decimal(18,4)" json:"extra_tax"`
	FEDPayable               decimal.Decimal `gorm:"column:fed_payable;type:decimal(18,4)" json:"fed_payable"`
	Discount                 decimal.Decimal `gorm:"type:decimal(18,4)" json:"discount"`
	AdvanceIncomeTax         decimal.Decimal `gorm:"type:decimal(18,4)" json:"advance_income_tax"`
	FurtherTax               decimal.Decimal `gorm:"type:decimal(18,4)" json:"further_tax"`
	TotalValue               decimal.Decimal `gorm:"type:decimal(18,4)" json:"total_value"`

	SROScheduleRef string `gorm:"column:sro_schedule_ref" json:"sro_schedule_ref"`
	SROItemRef     string `gorm:"column:sro_item_ref" json:"sro_item_ref"`

	// UI enablement for the dependent SRO selects, derived from the rate
	// and schedule selections.
	SROScheduleEnabled bool `json:"sro_schedule_enabled" gorm:"-"`
	SROItemEnabled     bool `json:"sro_item_enabled" gorm:"-"`

	Overrides Overrides `gorm:"type:jsonb" json:"overrides"`
}

// New returns a line item with defaults: quantity 1, all monetary fields
// zero, no overrides.
func New() LineItem {
	return LineItem{
		Quantity:  decimal.NewFromInt(1),
		Overrides: Overrides{},
	}
}

// Validate checks the item invariants that do not depend on derivation.
func (li *LineItem) Validate() error {
	if li.HSCode == "" || len(li.HSCode) > maxHSCodeLen {
		return ErrInvalidHSCode
	}
	return nil
}
