// Package cart models the storefront's product list and shopping cart. A
// Cart is an explicit value handed from step to step; nothing here is
// global.
package cart

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrUnknownProduct is returned when a product id is not in the product list.
var ErrUnknownProduct = errors.New("unknown product")

// Product is an item for sale.
type Product struct {
	ID          int             `json:"id" mapstructure:"id"`
	Name        string          `json:"name" mapstructure:"name"`
	Description string          `json:"description" mapstructure:"description"`
	Image       string          `json:"image" mapstructure:"image"`
	Price       decimal.Decimal `json:"price" mapstructure:"price"`
}

// Item is a cart line.
type Item struct {
	Product
	Quantity int `json:"quantity"`
}

// Subtotal returns price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds the selected products in insertion order.
type Cart struct {
	items []Item
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add puts one unit of p in the cart.
func (c *Cart) Add(p Product) {
	for i := range c.items {
		if c.items[i].ID == p.ID {
			c.items[i].Quantity++
			return
		}
	}
	c.items = append(c.items, Item{Product: p, Quantity: 1})
}

// Remove drops the line for the given product id.
func (c *Cart) Remove(id int) {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity changes the quantity of a line by delta. A line whose
// quantity drops to zero or below is removed; unknown ids are ignored.
func (c *Cart) UpdateQuantity(id, delta int) {
	for i := range c.items {
		if c.items[i].ID != id {
			continue
		}
		c.items[i].Quantity += delta
		if c.items[i].Quantity <= 0 {
			c.Remove(id)
		}
		return
	}
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Total returns the sum of all line subtotals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count returns the number of units in the cart.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

// Products is the list of products on sale.
type Products []Product

// Find returns the product with the given id.
func (ps Products) Find(id int) (Product, error) {
	for _, p := range ps {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %d", ErrUnknownProduct, id)
}

// Fill builds a cart from product id to quantity pairs. Unknown ids are
// checked in ascending order, so the error names the lowest one.
func (ps Products) Fill(quantities map[int]int) (*Cart, error) {
	ids := make([]int, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if _, err := ps.Find(id); err != nil {
			return nil, err
		}
	}

	c := New()
	for _, p := range ps {
		if q, ok := quantities[p.ID]; ok && q > 0 {
			c.Add(p)
			c.UpdateQuantity(p.ID, q-1)
		}
	}
	return c, nil
}
