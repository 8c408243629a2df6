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

// CartRules configures a ScopedStore for carts.
func CartRules() Rules[models.Cart] {
	return Rules[models.Cart]{
		Prefix: common.CartKeyPrefix,
		New: func(ownerID int64, now time.Time) *models.Cart {
			return &models.Cart{CartID: uuid.NewString(), OwnerID: ownerID, Items: []models.LineItem{}, UpdatedAt: now}
		},
		Clone:     (*models.Cart).Clone,
		Validate:  (*models.Cart).Validate,
		Recompute: (*models.Cart).Recalculate,
		Touch:     func(c *models.Cart, now time.Time) { c.UpdatedAt = now },
		Count:     (*models.Cart).Quantity,
	}
}

// CartStore is the per-identity shopping cart. Count publishes the total
// number of units; Total publishes the cart total.
type CartStore struct {
	*ScopedStore[models.Cart]

	catalog catalog.Lookup
	total   *observable.Derived[models.Money]
}

func NewCartStore(lookup catalog.Lookup, repo kvstore.Repository, sim *simulate.Simulator, log logging.Logger, now func() time.Time) *CartStore {
	s := NewScopedStore(CartRules(), repo, sim, log, now)
	return &CartStore{
		ScopedStore: s,
		catalog:     lookup,
		total: observable.Map[*models.Cart](s.Collection(), func(c *models.Cart) models.Money {
			if c == nil {
				return 0
			}
			return c.Total
		}),
	}
}

// Add puts quantity units of productID into the cart, merging with an
// existing line for the same product. The product lookup runs first, so an
// unknown product is reported even when anonymous.
func (s *CartStore) Add(ctx context.Context, productID string, quantity int) (*models.Cart, error) {
	owner := s.currentOwner()

	product, err := s.catalog.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, common.ErrNotAuthenticated
	}
	if quantity < 1 {
		return nil, fmt.Errorf("add %d of product %s: %w", quantity, productID, common.ErrInvalidQuantity)
	}

	return s.mutate(ctx, owner, "cart.add", s.sim.Latency().Mutate, func(c *models.Cart, now time.Time) error {
		if i := c.FindProduct(productID); i >= 0 {
			c.Items[i].Quantity += quantity
			return nil
		}
		c.Items = append(c.Items, models.LineItem{
			ItemID:   uuid.NewString(),
			Product:  product.Snapshot(),
			Quantity: quantity,
			AddedAt:  now,
		})
		return nil
	})
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line.
func (s *CartStore) UpdateQuantity(ctx context.Context, itemID string, quantity int) (*models.Cart, error) {
	return s.mutate(ctx, s.currentOwner(), "cart.update", s.sim.Latency().Mutate, func(c *models.Cart, _ time.Time) error {
		i := c.Find(itemID)
		if i < 0 {
			return fmt.Errorf("cart item %s: %w", itemID, common.ErrItemNotFound)
		}
		if quantity <= 0 {
			c.Items = slices.Delete(c.Items, i, i+1)
			return nil
		}
		c.Items[i].Quantity = quantity
		return nil
	})
}

func (s *CartStore) Remove(ctx context.Context, itemID string) (*models.Cart, error) {
	return s.mutate(ctx, s.currentOwner(), "cart.remove", s.sim.Latency().Remove, func(c *models.Cart, _ time.Time) error {
		i := c.Find(itemID)
		if i < 0 {
			return fmt.Errorf("cart item %s: %w", itemID, common.ErrItemNotFound)
		}
		c.Items = slices.Delete(c.Items, i, i+1)
		return nil
	})
}

// Total publishes the total of the current cart, 0 for none.
func (s *CartStore) Total() observable.Observable[models.Money] {
	return s.total
}

func (s *CartStore) Close() {
	s.total.Close()
	s.ScopedStore.Close()
}
