package lineitem

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRateSpec(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		kind   RateKind
		amount string
		unit   string
	}{
		{name: "empty", raw: "", kind: RateNone},
		{name: "whitespace only", raw: "   ", kind: RateNone},
		{name: "exempt sentinel", raw: "exempt", kind: RateExempt},
		{name: "exempt uppercase", raw: "EXEMPT", kind: RateExempt},
		{name: "zero percent is exempt", raw: "0%", kind: RateExempt},
		{name: "standard percent", raw: "18%", kind: RatePercent, amount: "18"},
		{name: "fractional percent", raw: "16.5%", kind: RatePercent, amount: "16.5"},
		{name: "fixed rupee", raw: "RS.700", kind: RateFixed, amount: "700"},
		{name: "fixed rupee lowercase", raw: "rs.60", kind: RateFixed, amount: "60"},
		{name: "per bill", raw: "50/bill", kind: RatePerUnit, amount: "50", unit: "bill"},
		{name: "per square yard", raw: "100/SqY", kind: RatePerUnit, amount: "100", unit: "SqY"},
		{name: "per unit without numerator", raw: "/SqY", kind: RatePerUnit, amount: "0", unit: "SqY"},
		{name: "garbage", raw: "standard rate", kind: RateNone},
		{name: "garbage percent", raw: "abc%", kind: RateNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := ParseRateSpec(tt.raw)
			require.Equal(t, tt.kind, spec.Kind)
			if tt.amount != "" {
				assert.True(t, spec.Amount.Equal(decimal.RequireFromString(tt.amount)),
					"amount: got %s want %s", spec.Amount, tt.amount)
			}
			assert.Equal(t, tt.unit, spec.Unit)
		})
	}
}

func TestRateSpecSalesTax(t *testing.T) {
	value := decimal.NewFromInt(1000)
	qty := decimal.NewFromInt(3)

	t.Run("percent applies to value of sales", func(t *testing.T) {
		tax := ParseRateSpec("18%").SalesTax(value, qty)
		assert.True(t, tax.Equal(decimal.NewFromInt(180)), "got %s", tax)
	})

	t.Run("fixed ignores quantity", func(t *testing.T) {
		tax := ParseRateSpec("RS.700").SalesTax(value, qty)
		assert.True(t, tax.Equal(decimal.NewFromInt(700)), "got %s", tax)
	})

	t.Run("per unit multiplies by quantity", func(t *testing.T) {
		tax := ParseRateSpec("50/bill").SalesTax(value, qty)
		assert.True(t, tax.Equal(decimal.NewFromInt(150)), "got %s", tax)
	})

	t.Run("exempt is zero", func(t *testing.T) {
		tax := ParseRateSpec("exempt").SalesTax(value, qty)
		assert.True(t, tax.IsZero())
	})

	t.Run("unknown is zero", func(t *testing.T) {
		tax := ParseRateSpec("whatever").SalesTax(value, qty)
		assert.True(t, tax.IsZero())
	})
}
