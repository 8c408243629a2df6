package models

import (
	"fmt"
	"time"
)

// LineItem is one product line of a cart.
type LineItem struct {
	ItemID   string    `json:"itemId"`
	Product  Product   `json:"product"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

// Subtotal is price times quantity.
func (li LineItem) Subtotal() Money {
	return li.Product.Price.Times(li.Quantity)
}

// Cart is one identity's shopping cart. Total is derived from Items.
type Cart struct {
	CartID    string     `json:"cartId"`
	OwnerID   int64      `json:"ownerId"`
	Items     []LineItem `json:"items"`
	Total     Money      `json:"total"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Clone returns a copy of c that shares no slices with it.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]LineItem, len(c.Items))
	for i, li := range c.Items {
		li.Product = li.Product.Snapshot()
		out.Items[i] = li
	}
	return &out
}

// Recalculate sets Total to the sum of line subtotals.
func (c *Cart) Recalculate() {
	var total Money
	for _, li := range c.Items {
		total += li.Subtotal()
	}
	c.Total = total
}

// Quantity is the total number of units across all lines.
func (c *Cart) Quantity() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, li := range c.Items {
		n += li.Quantity
	}
	return n
}

// Find returns the index of the line with itemID, or -1.
func (c *Cart) Find(itemID string) int {
	for i, li := range c.Items {
		if li.ItemID == itemID {
			return i
		}
	}
	return -1
}

// FindProduct returns the index of the line holding productID, or -1.
func (c *Cart) FindProduct(productID string) int {
	for i, li := range c.Items {
		if li.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Validate checks the structural invariants of a cart loaded from storage.
func (c *Cart) Validate(ownerID int64) error {
	if c.CartID == "" {
		return fmt.Errorf("missing cart id")
	}
	if c.OwnerID != ownerID {
		return fmt.Errorf("cart owner %d, expected %d", c.OwnerID, ownerID)
	}
	seen := make(map[string]struct{}, len(c.Items))
	for _, li := range c.Items {
		if li.ItemID == "" {
			return fmt.Errorf("line item without id")
		}
		if _, dup := seen[li.ItemID]; dup {
			return fmt.Errorf("duplicate line item %s", li.ItemID)
		}
		seen[li.ItemID] = struct{}{}
		if li.Quantity < 1 {
			return fmt.Errorf("line item %s has quantity %d", li.ItemID, li.Quantity)
		}
		if li.Product.ID == "" {
			return fmt.Errorf("line item %s has no product", li.ItemID)
		}
	}
	return nil
}
