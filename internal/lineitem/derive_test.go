package lineitem

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s got %s", want, got)
}

func TestDefaults(t *testing.T) {
	li := New()
	assertDecEqual(t, "1", li.Quantity)
	assert.True(t, li.RetailPrice.IsZero())
	assert.Empty(t, li.Overrides)
}

func TestDerivePercentRate(t *testing.T) {
	li := New()
	require.True(t, li.SetAmount(FieldRetailPrice, "1000"))
	require.True(t, li.SetAmount(FieldQuantity, "2"))
	li.RateSpec = "18%"
	li.Derive(FieldRateSpec, Registered)

	assertDecEqual(t, "500", li.UnitPrice)
	assertDecEqual(t, "1000", li.ValueSalesExcludingTax)
	assertDecEqual(t, "180", li.SalesTaxApplicable)
	assert.True(t, li.FurtherTax.IsZero())
	assertDecEqual(t, "1180.00", li.TotalValue)
}

func TestDeriveZeroQuantity(t *testing.T) {
	li := New()
	require.True(t, li.SetAmount(FieldRetailPrice, "1000"))
	require.True(t, li.SetAmount(FieldQuantity, "0"))
	li.Derive(FieldQuantity, Registered)

	assert.True(t, li.UnitPrice.IsZero())
	assertDecEqual(t, "1000", li.ValueSalesExcludingTax)
}

func TestDerivePerBillRate(t *testing.T) {
	li := New()
	require.True(t, li.SetAmount(FieldRetailPrice, "900"))
	require.True(t, li.SetAmount(FieldQuantity, "3"))
	li.RateSpec = "50/bill"
	li.Derive(FieldRateSpec, Registered)

	assertDecEqual(t, "150", li.SalesTaxApplicable)
}

func TestDeriveFurtherTaxUnregistered(t *testing.T) {
	li := New()
	require.True(t, li.SetAmount(FieldRetailPrice, "1000"))
	li.Derive(FieldRetailPrice, Unregistered)

	assertDecEqual(t, "40", li.FurtherTax)
	assertDecEqual(t, "1040.00", li.TotalValue)
}

func TestDeriveFurtherTaxToggleRestores(t *testing.T) {
	li := New()
	require.True(t, li.SetAmount(FieldRetailPrice, "1000"))

	li.Derive(FieldBuyerRegistration, Registered)
	assert.True(t, li.FurtherTax.IsZero())

	li.Derive(FieldBuyerRegistration, Unregistered)
	assertDecEqual(t, "40", li.FurtherTax)

	li.Derive(FieldBuyerRegistration, Registered)
	assert.True(t, li.FurtherTax.IsZero(), "further tax must not stick at a stale value")
}

func TestDeriveFurtherTaxOverrideWins(t *testing.T) {
	li := New()
	require.True(t, li.SetAmount(FieldRetailPrice, "1000"))
	require.True(t, li.SetAmount(FieldFurtherTax, "99"))

	li.Derive(FieldBuyerRegistration, Unregistered)
	assertDecEqual(t, "99", li.FurtherTax)

	li.Derive(FieldBuyerRegistration, Registered)
	assertDecEqual(t, "99", li.FurtherTax)
}

func TestDeriveOverrideProtection(t *testing.T) {
	li := New()
	require.True(t, li.SetAmount(FieldRetailPrice, "1000"))
	li.RateSpec = "18%"
	li.Derive(FieldRateSpec, Registered)

	// Hand-edit the sales tax, then change an unrelated field.
	require.True(t, li.SetAmount(FieldSalesTaxApplicable, "123.45"))
	require.True(t, li.SetAmount(FieldDiscount, "10"))
	li.Derive(FieldDiscount, Registered)

	assertDecEqual(t, "123.45", li.SalesTaxApplicable)
	assertDecEqual(t, "1113.45", li.TotalValue)
}

func TestDeriveValueSalesOverride(t *testing.T) {
	li := New()
	require.True(t, li.SetAmount(FieldRetailPrice, "1000"))
	require.True(t, li.SetAmount(FieldQuantity, "2"))
	li.RateSpec = "18%"
	li.Derive(FieldRateSpec, Registered)

	require.True(t, li.SetAmount(FieldValueSalesExcludingTax, "800"))
	li.Derive(FieldValueSalesExcludingTax, Registered)

	// Sales tax follows the overridden value of sales; unit price is left
	// alone while the override holds.
	assertDecEqual(t, "800", li.ValueSalesExcludingTax)
	assertDecEqual(t, "144", li.SalesTaxApplicable)
	assertDecEqual(t, "500", li.UnitPrice)

	// A rate change resets the value-sales override.
	li.RateSpec = "5%"
	li.Derive(FieldRateSpec, Registered)
	assertDecEqual(t, "1000", li.ValueSalesExcludingTax)
	assertDecEqual(t, "50", li.SalesTaxApplicable)
}

func TestDeriveRateChangeResetsSROSelections(t *testing.T) {
	li := New()
	li.RateSpec = "18%"
	li.Derive(FieldRateSpec, Registered)
	assert.True(t, li.SROScheduleEnabled)
	assert.False(t, li.SROItemEnabled)

	li.SROScheduleRef = "SRO-1125(I)/2011"
	li.Derive(FieldSROScheduleRef, Registered)
	assert.True(t, li.SROItemEnabled)
	li.SROItemRef = "3"

	li.RateSpec = "RS.60"
	li.Derive(FieldRateSpec, Registered)
	assert.Empty(t, li.SROScheduleRef)
	assert.Empty(t, li.SROItemRef)
	assert.True(t, li.SROScheduleEnabled)
	assert.False(t, li.SROItemEnabled)
}

func TestDeriveIdempotent(t *testing.T) {
	li := New()
	require.True(t, li.SetAmount(FieldRetailPrice, "999.99"))
	require.True(t, li.SetAmount(FieldQuantity, "3"))
	li.RateSpec = "16.5%"
	li.Derive(FieldRateSpec, Unregistered)

	snapshot := li
	li.Derive(FieldNone, Unregistered)
	li.Derive(FieldNone, Unregistered)

	assert.True(t, snapshot.UnitPrice.Equal(li.UnitPrice))
	assert.True(t, snapshot.ValueSalesExcludingTax.Equal(li.ValueSalesExcludingTax))
	assert.True(t, snapshot.SalesTaxApplicable.Equal(li.SalesTaxApplicable))
	assert.True(t, snapshot.FurtherTax.Equal(li.FurtherTax))
	assert.True(t, snapshot.TotalValue.Equal(li.TotalValue))
}

func TestDeriveTotalRounding(t *testing.T) {
	li := New()
	require.True(t, li.SetAmount(FieldRetailPrice, "100"))
	require.True(t, li.SetAmount(FieldQuantity, "3"))
	li.RateSpec = "16.666%"
	li.Derive(FieldRateSpec, Registered)

	// 100 + 16.666 = 116.666, rounded only at the total.
	assertDecEqual(t, "16.666", li.SalesTaxApplicable)
	assertDecEqual(t, "116.67", li.TotalValue)
}

func TestSetAmountRejectsMalformedInput(t *testing.T) {
	li := New()
	require.True(t, li.SetAmount(FieldRetailPrice, "1000"))
	li.Derive(FieldRetailPrice, Registered)

	for _, raw := range []string{"", "abc", "-5", "1,000", "1e3", "1.2.3", "."} {
		ok := li.SetAmount(FieldRetailPrice, raw)
		assert.False(t, ok, "input %q must be rejected", raw)
		assertDecEqual(t, "1000", li.RetailPrice)
	}
}

func TestOverridesRoundTrip(t *testing.T) {
	o := Overrides{}
	o.Set(FieldFurtherTax)
	o.Set(FieldTotalValue)

	raw, err := o.Value()
	require.NoError(t, err)

	var back Overrides
	require.NoError(t, back.Scan(raw))
	assert.True(t, back.Has(FieldFurtherTax))
	assert.True(t, back.Has(FieldTotalValue))
	assert.False(t, back.Has(FieldSalesTaxApplicable))
}

func TestValidateHSCode(t *testing.T) {
	li := New()
	assert.ErrorIs(t, li.Validate(), ErrInvalidHSCode)

	li.HSCode = "0101.2100"
	assert.NoError(t, li.Validate())
}
