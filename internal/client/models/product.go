package models

import "time"

// Product is a catalog item. Carts and wishlists hold copies of it.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         Money     `json:"price"`
	OriginalPrice *Money    `json:"originalPrice,omitempty"`
	ImageURL      string    `json:"imageUrl"`
	Category      string    `json:"category"`
	Stock         int       `json:"stock"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"reviewCount"`
	IsNew         bool      `json:"isNew"`
	IsSale        bool      `json:"isSale"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Snapshot returns a deep copy of p.
func (p Product) Snapshot() Product {
	if p.OriginalPrice != nil {
		op := *p.OriginalPrice
		p.OriginalPrice = &op
	}
	return p
}
