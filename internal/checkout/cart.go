// Package checkout holds the headless state and transition functions for the
// multi-school sale flow: cart accumulation, payment allocation, partitioning
// a cart by school, proportional payment splitting, and sequential per-school
// submission. Everything here is pure or repository-free so the flow can be
// tested without transport or storage.
package checkout

import (
	"github.com/Samsuesca/uniformes-backend/internal/domain"
)

// CartState is the ordered set of selected items for one checkout.
type CartState struct {
	Items []domain.CartItem `json:"items"`
}

// AddItem merges the product into the cart: an existing line with the same
// (product id, global flag) gets its quantity bumped, otherwise a new line is
// appended. The school is the one the product is sold "as" — required even
// for global products. Quantity is taken as given; clamping is the caller's
// concern.
func (c *CartState) AddItem(product domain.Product, school domain.School, qty int) {
	for i := range c.Items {
		if c.Items[i].ProductID == product.ID && c.Items[i].IsGlobal == product.IsGlobal {
			c.Items[i].Qty += qty
			return
		}
	}
	c.Items = append(c.Items, domain.CartItem{
		ProductID:      product.ID,
		DisplayName:    product.Name,
		Size:           product.Size,
		Qty:            qty,
		UnitPriceCents: product.PriceCents,
		IsGlobal:       product.IsGlobal,
		SchoolID:       school.ID,
		SchoolName:     school.Name,
	})
}

// RemoveItem deletes the line at the given position. Out-of-range indexes are
// ignored.
func (c *CartState) RemoveItem(index int) {
	if index < 0 || index >= len(c.Items) {
		return
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
}

// Total returns the grand total of the cart in cents.
func (c CartState) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += int64(item.Qty) * item.UnitPriceCents
	}
	return total
}

// Clear drops every line.
func (c *CartState) Clear() {
	c.Items = nil
}

func (c CartState) Empty() bool {
	return len(c.Items) == 0
}
