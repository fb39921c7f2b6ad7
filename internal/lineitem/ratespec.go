package lineitem

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RateKind discriminates the shapes a rate description can take.
type RateKind int

const (
	// RateNone means the rate text was empty or unrecognized; no sales
	// tax is derived from it.
	RateNone RateKind = iota
	// RateExempt covers "exempt" and "0%": sales tax is forced to zero.
	RateExempt
	// RatePercent is an ad-valorem rate applied to the value of sales.
	RatePercent
	// RateFixed is a flat rupee amount per line ("RS.700").
	RateFixed
	// RatePerUnit is a rupee amount multiplied by quantity ("50/bill",
	// "/SqY").
	RatePerUnit
)

// RateSpec is the parsed form of a rate description string.
type RateSpec struct {
	Kind RateKind
	// Amount is the percentage for RatePercent, the flat amount for
	// RateFixed, or the per-unit amount for RatePerUnit.
	Amount decimal.Decimal
	// Unit is the denominator of a per-unit rate ("bill", "SqY").
	Unit string
}

var oneHundred = decimal.NewFromInt(100)

// ParseRateSpec interprets a rate description. Unrecognized text yields
// RateNone rather than an error: the engine treats it as "no tax derivable
// from the rate" and leaves sales tax at zero.
func ParseRateSpec(raw string) RateSpec {
	s := strings.TrimSpace(raw)
	if s == "" {
		return RateSpec{Kind: RateNone}
	}
	lower := strings.ToLower(s)

	if lower == "exempt" {
		return RateSpec{Kind: RateExempt}
	}

	if strings.HasSuffix(s, "%") {
		pct, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(s, "%")))
		if err != nil {
			return RateSpec{Kind: RateNone}
		}
		if pct.IsZero() {
			return RateSpec{Kind: RateExempt}
		}
		return RateSpec{Kind: RatePercent, Amount: pct}
	}

	if strings.HasPrefix(lower, "rs.") {
		amt, err := decimal.NewFromString(strings.TrimSpace(s[len("rs."):]))
		if err != nil {
			return RateSpec{Kind: RateNone}
		}
		return RateSpec{Kind: RateFixed, Amount: amt}
	}

	if idx := strings.Index(s, "/"); idx >= 0 {
		numText := strings.TrimSpace(s[:idx])
		unit := strings.TrimSpace(s[idx+1:])
		if unit == "" {
			return RateSpec{Kind: RateNone}
		}
		// A bare "/SqY" has an empty numerator and contributes zero.
		amt := decimal.Zero
		if numText != "" {
			parsed, err := decimal.NewFromString(numText)
			if err != nil {
				return RateSpec{Kind: RateNone}
			}
			amt = parsed
		}
		return RateSpec{Kind: RatePerUnit, Amount: amt, Unit: unit}
	}

	return RateSpec{Kind: RateNone}
}

// SalesTax computes the sales tax this rate implies for the given value of
// sales and quantity.
func (r RateSpec) SalesTax(valueSales, quantity decimal.Decimal) decimal.Decimal {
	switch r.Kind {
	case RatePercent:
		return valueSales.Mul(r.Amount).Div(oneHundred)
	case RateFixed:
		return r.Amount
	case RatePerUnit:
		return r.Amount.Mul(quantity)
	default:
		return decimal.Zero
	}
}
