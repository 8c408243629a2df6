package models

import (
	"fmt"
	"time"
)

// WishlistEntry is a saved product.
type WishlistEntry struct {
	EntryID string    `json:"entryId"`
	Product Product   `json:"product"`
	AddedAt time.Time `json:"addedAt"`
}

// Wishlist is one identity's saved products, unique by product id.
type Wishlist struct {
	WishlistID string          `json:"wishlistId"`
	OwnerID    int64           `json:"ownerId"`
	Items      []WishlistEntry `json:"items"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (w *Wishlist) Clone() *Wishlist {
	if w == nil {
		return nil
	}
	out := *w
	out.Items = make([]WishlistEntry, len(w.Items))
	for i, e := range w.Items {
		e.Product = e.Product.Snapshot()
		out.Items[i] = e
	}
	return &out
}

func (w *Wishlist) Find(entryID string) int {
	for i, e := range w.Items {
		if e.EntryID == entryID {
			return i
		}
	}
	return -1
}

func (w *Wishlist) FindProduct(productID string) int {
	for i, e := range w.Items {
		if e.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Contains reports whether productID is saved. A nil wishlist contains nothing.
func (w *Wishlist) Contains(productID string) bool {
	return w != nil && w.FindProduct(productID) >= 0
}

// Validate checks the structural invariants of a wishlist loaded from storage.
func (w *Wishlist) Validate(ownerID int64) error {
	if w.WishlistID == "" {
		return fmt.Errorf("missing wishlist id")
	}
	if w.OwnerID != ownerID {
		return fmt.Errorf("wishlist owner %d, expected %d", w.OwnerID, ownerID)
	}
	entries := make(map[string]struct{}, len(w.Items))
	products := make(map[string]struct{}, len(w.Items))
	for _, e := range w.Items {
		if e.EntryID == "" || e.Product.ID == "" {
			return fmt.Errorf("incomplete wishlist entry")
		}
		if _, dup := entries[e.EntryID]; dup {
			return fmt.Errorf("duplicate entry %s", e.EntryID)
		}
		if _, dup := products[e.Product.ID]; dup {
			return fmt.Errorf("duplicate product %s", e.Product.ID)
		}
		entries[e.EntryID] = struct{}{}
		products[e.Product.ID] = struct{}{}
	}
	return nil
}
