// Package catalog holds the fixed set of bank financing offers available for
// deferred payment.
package catalog

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a bank id is not part of the catalog.
var ErrNotFound = errors.New("bank not found")

// BankOffer describes one bank's installment offer. InterestRate is a flat
// fraction applied once to the principal (0.08 means 8%).
type BankOffer struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	TermMonths   int             `json:"termMonths"`
	InterestRate decimal.Decimal `json:"interestRate"`
}

// Catalog is an immutable, ordered set of offers.
type Catalog struct {
	offers []BankOffer
	byID   map[string]int
}

var defaultOffers = []BankOffer{
	{ID: "banco1", Name: "Banco1", TermMonths: 9, InterestRate: decimal.RequireFromString("0.08")},
	{ID: "banco2", Name: "Banco2", TermMonths: 12, InterestRate: decimal.RequireFromString("0.10")},
	{ID: "banco3", Name: "Banco3", TermMonths: 18, InterestRate: decimal.RequireFromString("0.13")},
}

// Default returns the catalog of participating banks.
func Default() *Catalog {
	return newCatalog(defaultOffers)
}

func newCatalog(offers []BankOffer) *Catalog {
	c := &Catalog{
		offers: make([]BankOffer, len(offers)),
		byID:   make(map[string]int, len(offers)),
	}
	copy(c.offers, offers)
	for i, offer := range c.offers {
		c.byID[offer.ID] = i
	}
	return c
}

// Offers returns a copy of all offers in catalog order.
func (c *Catalog) Offers() []BankOffer {
	out := make([]BankOffer, len(c.offers))
	copy(out, c.offers)
	return out
}

// Len returns the number of offers.
func (c *Catalog) Len() int {
	return len(c.offers)
}

// Lookup returns the offer with the given id.
func (c *Catalog) Lookup(id string) (BankOffer, error) {
	i, ok := c.byID[id]
	if !ok {
		return BankOffer{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.offers[i], nil
}

// Contains reports whether offer is an unmodified catalog entry.
func (c *Catalog) Contains(offer BankOffer) bool {
	known, err := c.Lookup(offer.ID)
	if err != nil {
		return false
	}
	return known.Name == offer.Name &&
		known.TermMonths == offer.TermMonths &&
		known.InterestRate.Equal(offer.InterestRate)
}
