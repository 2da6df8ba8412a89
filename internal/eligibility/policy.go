// Package eligibility decides whether a purchase qualifies for deferred
// payment.
package eligibility

import (
	"github.com/iwvelando/installment-plan/pkg/constants"
	"github.com/iwvelando/installment-plan/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// MinimumAmount is the smallest purchase total that may be paid in
// installments.
var MinimumAmount = decimal.NewFromInt(constants.MinimumDeferredAmount)

// IsEligible reports whether total reaches the minimum amount.
func IsEligible(total decimal.Decimal) bool {
	return total.GreaterThanOrEqual(MinimumAmount)
}

// Shortfall returns how much is missing from total to become eligible, or
// zero when it already is.
func Shortfall(total decimal.Decimal) decimal.Decimal {
	return mathutil.Round(mathutil.Max(decimal.Zero, MinimumAmount.Sub(total)))
}
