// Package mathutil provides common mathematical utility functions for
// currency values.
package mathutil

import (
	"github.com/iwvelando/installment-plan/pkg/constants"
	"github.com/shopspring/decimal"
)

// Cent is the smallest currency unit.
var Cent = decimal.New(1, -constants.CurrencyPlaces)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Halves are rounded away from zero.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.CurrencyPlaces)
}

// Floor truncates a value to two decimals toward negative infinity.
func Floor(val decimal.Decimal) decimal.Decimal {
	return val.RoundFloor(constants.CurrencyPlaces)
}

// IsPositive checks if a value is strictly greater than zero
func IsPositive(val decimal.Decimal) bool {
	return val.Sign() > 0
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance decimal.Decimal) bool {
	return val1.Sub(val2).Abs().LessThanOrEqual(tolerance)
}

// Max returns the larger of two values
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// ToPercentage converts a fractional rate (0.08) into a percentage (8).
func ToPercentage(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(constants.PercentageMultiplier))
}

// ApplyRate returns value increased by a flat fractional rate,
// i.e. value * (1 + rate).
func ApplyRate(value, rate decimal.Decimal) decimal.Decimal {
	return value.Mul(decimal.NewFromInt(1).Add(rate))
}
