package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storefront/internal/client/catalog"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/observable"
	"github.com/dmitrijs2005/storefront/internal/client/repositories/kvstore"
	"github.com/dmitrijs2005/storefront/internal/client/simulate"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

func WishlistRules() Rules[models.Wishlist] {
	return Rules[models.Wishlist]{
		Prefix: common.WishlistKeyPrefix,
		New: func(ownerID int64, now time.Time) *models.Wishlist {
			return &models.Wishlist{WishlistID: uuid.NewString(), OwnerID: ownerID, Items: []models.WishlistEntry{}, UpdatedAt: now}
		},
		Clone:    (*models.Wishlist).Clone,
		Validate: (*models.Wishlist).Validate,
		Touch:    func(w *models.Wishlist, now time.Time) { w.UpdatedAt = now },
		Count:    func(w *models.Wishlist) int { return len(w.Items) },
	}
}

// WishlistStore is the per-identity wishlist. Entries are unique by product.
type WishlistStore struct {
	*ScopedStore[models.Wishlist]

	catalog catalog.Lookup
}

func NewWishlistStore(lookup catalog.Lookup, repo kvstore.Repository, sim *simulate.Simulator, log logging.Logger, now func() time.Time) *WishlistStore {
	return &WishlistStore{
		ScopedStore: NewScopedStore(WishlistRules(), repo, sim, log, now),
		catalog:     lookup,
	}
}

// Add saves productID. A product already on the list fails with
// common.ErrDuplicateEntry and leaves the wishlist untouched.
func (s *WishlistStore) Add(ctx context.Context, productID string) (*models.Wishlist, error) {
	owner := s.currentOwner()

	product, err := s.catalog.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, common.ErrNotAuthenticated
	}

	return s.mutate(ctx, owner, "wishlist.add", s.sim.Latency().Mutate, func(w *models.Wishlist, now time.Time) error {
		if w.Contains(productID) {
			return fmt.Errorf("product %s: %w", productID, common.ErrDuplicateEntry)
		}
		w.Items = append(w.Items, models.WishlistEntry{
			EntryID: uuid.NewString(),
			Product: product.Snapshot(),
			AddedAt: now,
		})
		return nil
	})
}

// Remove deletes the entry with entryID.
func (s *WishlistStore) Remove(ctx context.Context, entryID string) (*models.Wishlist, error) {
	return s.mutate(ctx, s.currentOwner(), "wishlist.remove", s.sim.Latency().Remove, func(w *models.Wishlist, _ time.Time) error {
		i := w.Find(entryID)
		if i < 0 {
			return fmt.Errorf("wishlist entry %s: %w", entryID, common.ErrItemNotFound)
		}
		w.Items = slices.Delete(w.Items, i, i+1)
		return nil
	})
}

// RemoveProduct deletes the entry holding productID.
func (s *WishlistStore) RemoveProduct(ctx context.Context, productID string) (*models.Wishlist, error) {
	return s.mutate(ctx, s.currentOwner(), "wishlist.remove", s.sim.Latency().Remove, func(w *models.Wishlist, _ time.Time) error {
		i := w.FindProduct(productID)
		if i < 0 {
			return fmt.Errorf("product %s not in wishlist: %w", productID, common.ErrItemNotFound)
		}
		w.Items = slices.Delete(w.Items, i, i+1)
		return nil
	})
}

// Contains publishes whether productID is on the current wishlist. Close the
// returned projection when done with it.
func (s *WishlistStore) Contains(productID string) *observable.Derived[bool] {
	return observable.Map[*models.Wishlist](s.Collection(), func(w *models.Wishlist) bool {
		return w.Contains(productID)
	})
}
