// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/installment-plan/pkg/constants"
	"github.com/shopspring/decimal"
)

// ProductInfo carries the product fields that are validated.
type ProductInfo struct {
	ID    int
	Name  string
	Price decimal.Decimal
}

// ValidateProducts checks the configured product list and returns warnings
// for entries that cannot be sold as configured.
func ValidateProducts(products []ProductInfo) []string {
	var warnings []string

	if len(products) == 0 {
		warnings = append(warnings, "No products configured - carts can only be priced by total")
	}

	seen := make(map[int]string, len(products))
	for _, p := range products {
		if previous, ok := seen[p.ID]; ok {
			warnings = append(warnings, fmt.Sprintf("Product id %d is used by both '%s' and '%s'", p.ID, previous, p.Name))
		}
		seen[p.ID] = p.Name

		if strings.TrimSpace(p.Name) == "" {
			warnings = append(warnings, fmt.Sprintf("Product id %d has no name", p.ID))
		}
		if p.Price.Sign() <= 0 {
			warnings = append(warnings, fmt.Sprintf("Product '%s' has non-positive price %s", p.Name, p.Price))
		}
		if p.Price.Exponent() < -constants.CurrencyPlaces && !p.Price.Equal(p.Price.Round(constants.CurrencyPlaces)) {
			warnings = append(warnings, fmt.Sprintf("Product '%s' price %s has more than %d decimals",
				p.Name, p.Price, constants.CurrencyPlaces))
		}
	}

	return warnings
}

// ValidateSession checks the session backend selection.
func ValidateSession(backend, redisAddress string) []string {
	switch backend {
	case "", constants.SessionBackendMemory:
		return nil
	case constants.SessionBackendRedis:
		if strings.TrimSpace(redisAddress) == "" {
			return []string{"Session backend 'redis' selected without session.redis.address"}
		}
		return nil
	default:
		return []string{fmt.Sprintf("Unknown session backend '%s', expected %s or %s",
			backend, constants.SessionBackendMemory, constants.SessionBackendRedis)}
	}
}
