package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
)

func (a *App) ShowWishlist(ctx context.Context) error {
	w, err := a.core.Wishlist.Read(ctx)
	if err != nil {
		return err
	}
	if len(w.Items) == 0 {
		a.printf("Your wishlist is empty.\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE\tADDED\t")
	for _, e := range w.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", e.Product.ID, e.Product.Name, e.Product.Price, e.AddedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
	return nil
}

// Wish: wish <productId>.
func (a *App) Wish(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("wish <productId>")
	}
	w, err := a.core.Wishlist.Add(ctx, args[0])
	if err != nil {
		return err
	}
	a.printf("Saved to wishlist (%d items).\n", len(w.Items))
	return nil
}

// Unwish: unwish <productId>.
func (a *App) Unwish(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("unwish <productId>")
	}
	w, err := a.core.Wishlist.RemoveProduct(ctx, args[0])
	if err != nil {
		return err
	}
	a.printf("Removed from wishlist (%d items).\n", len(w.Items))
	return nil
}
