package erp

import (
	"github.com/shopspring/decimal"
)

var vatDivisor = decimal.RequireFromString("1.1")

// VATResult is the supply/VAT split of a gross amount.
// Invariant: Supply + VAT == Total exactly, for any sign.
type VATResult struct {
	Supply decimal.Decimal
	VAT    decimal.Decimal
	Total  decimal.Decimal
}

// ApplyVAT splits a gross amount under the given VAT mode.
//
// SUPPLY_DIV_11 treats the gross amount as VAT-inclusive: the supply
// portion is gross/1.1 rounded half away from zero to a whole won, and
// VAT is derived by subtraction so the split never drifts from the total.
// NO_VAT books the full amount as supply.
func ApplyVAT(gross decimal.Decimal, mode VATMode) VATResult {
	switch mode {
	case VATModeSupplyDiv11:
		supply := gross.Div(vatDivisor).Round(0)
		return VATResult{
			Supply: supply,
			VAT:    gross.Sub(supply),
			Total:  gross,
		}
	default:
		return VATResult{
			Supply: gross,
			VAT:    decimal.Zero,
			Total:  gross,
		}
	}
}

// ApplyVATNegated splits a gross amount, negating it first when negate
// is set. Negation happens before the split so the invariant holds for
// negative totals as well.
func ApplyVATNegated(gross decimal.Decimal, mode VATMode, negate bool) VATResult {
	if negate {
		gross = gross.Neg()
	}
	return ApplyVAT(gross, mode)
}
