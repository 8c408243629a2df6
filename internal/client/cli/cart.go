package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/common"
)

func (a *App) ShowCart(ctx context.Context) error {
	c, err := a.core.Cart.Read(ctx)
	if err != nil {
		return err
	}
	if len(c.Items) == 0 {
		a.printf("Your cart is empty.\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPRODUCT\tPRICE\tQTY\tSUBTOTAL\t")
	for i, li := range c.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t\n", i+1, li.Product.Name, li.Product.Price, li.Quantity, li.Subtotal())
	}
	_ = tw.Flush()
	a.printf("Total: %s (%d items)\n", c.Total, c.Quantity())
	return nil
}

// AddToCart: add <productId> [qty].
func (a *App) AddToCart(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return usage("add <productId> [qty]")
	}
	qty := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return usage("add <productId> [qty]")
		}
		qty = n
	}

	c, err := a.core.Cart.Add(ctx, args[0], qty)
	if err != nil {
		return err
	}
	a.printf("Added to cart. Total: %s\n", c.Total)
	return nil
}

// UpdateCartItem: update <item> <qty>. A quantity of 0 removes the line.
func (a *App) UpdateCartItem(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("update <item#|itemId> <qty>")
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return usage("update <item#|itemId> <qty>")
	}
	itemID, err := a.cartItemID(args[0])
	if err != nil {
		return err
	}

	c, err := a.core.Cart.UpdateQuantity(ctx, itemID, qty)
	if err != nil {
		return err
	}
	a.printf("Cart updated. Total: %s\n", c.Total)
	return nil
}

// RemoveCartItem: remove <item>.
func (a *App) RemoveCartItem(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("remove <item#|itemId>")
	}
	itemID, err := a.cartItemID(args[0])
	if err != nil {
		return err
	}

	c, err := a.core.Cart.Remove(ctx, itemID)
	if err != nil {
		return err
	}
	a.printf("Removed. Total: %s\n", c.Total)
	return nil
}

func (a *App) ClearCart(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}
	if _, err := a.core.Cart.Clear(ctx); err != nil {
		return err
	}
	a.printf("Cart cleared.\n")
	return nil
}

// cartItemID resolves a 1-based line number as shown by 'cart' to the line's
// item id. Anything else is taken to be an item id.
func (a *App) cartItemID(ref string) (string, error) {
	return lineRef(ref, a.core.Cart.Snapshot(), func(c *models.Cart) []string {
		ids := make([]string, len(c.Items))
		for i, li := range c.Items {
			ids[i] = li.ItemID
		}
		return ids
	})
}

// lineRef maps a 1-based position in the published collection to an id.
func lineRef[C any](ref string, c *C, ids func(*C) []string) (string, error) {
	n, err := strconv.Atoi(ref)
	if err != nil {
		return ref, nil
	}
	if c == nil {
		return "", common.ErrNotAuthenticated
	}
	all := ids(c)
	if n < 1 || n > len(all) {
		return "", fmt.Errorf("line %d: %w", n, common.ErrItemNotFound)
	}
	return all[n-1], nil
}
