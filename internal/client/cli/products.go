package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/storefront/internal/client/catalog"
	"github.com/dmitrijs2005/storefront/internal/client/models"
)

// Products lists the catalog, optionally sorted: products [key] [desc].
func (a *App) Products(ctx context.Context, args []string) error {
	key, desc := catalog.SortByName, false
	if len(args) > 0 {
		k, err := catalog.ParseSortKey(args[0])
		if err != nil {
			return usage("products [name|price|rating|newest] [desc]")
		}
		key = k
	}
	if len(args) > 1 {
		desc = strings.EqualFold(args[1], "desc")
	}

	products, err := a.core.Catalog.ListAll(ctx)
	if err != nil {
		return err
	}
	a.printProducts(catalog.Sort(products, key, desc))
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("search <text>")
	}
	products, err := a.core.Catalog.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.printProducts(products)
	return nil
}

// Filter runs a product filter expression, e.g.
//
//	filter price < 5000 && category == "Clothing"
func (a *App) Filter(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("filter <expression>")
	}
	products, err := a.core.Catalog.Query(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.printProducts(products)
	return nil
}

func (a *App) Categories(ctx context.Context) error {
	cats, err := a.core.Catalog.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		a.printf("%s\n", c)
	}
	return nil
}

// printProducts renders products as a table. Products on the current
// wishlist are marked with '*'.
func (a *App) printProducts(products []models.Product) {
	if len(products) == 0 {
		a.printf("No products found.\n")
		return
	}
	wl := a.core.Wishlist.Snapshot()

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tSTOCK\t")
	for _, p := range products {
		price := p.Price.String()
		if p.OriginalPrice != nil && *p.OriginalPrice > p.Price {
			price += " (was " + p.OriginalPrice.String() + ")"
		}
		name := p.Name
		if wl.Contains(p.ID) {
			name += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f (%d)\t%d\t\n", p.ID, name, p.Category, price, p.Rating, p.ReviewCount, p.Stock)
	}
	_ = tw.Flush()
}

// NewProduct prompts for the fields of a new catalog product. Admin only.
func (a *App) NewProduct(ctx context.Context) error {
	if err := a.core.Identity.RequireRole(models.RoleAdmin); err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter product name", a.out)
	if err != nil {
		return err
	}
	description, err := getMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}
	category, err := getSimpleText(a.reader, "Enter category", a.out)
	if err != nil {
		return err
	}
	rawPrice, err := getSimpleText(a.reader, "Enter price (e.g. 19.99)", a.out)
	if err != nil {
		return err
	}
	price, err := models.ParseMoney(rawPrice)
	if err != nil {
		return usage("price must look like 19.99")
	}
	rawStock, err := getSimpleText(a.reader, "Enter stock", a.out)
	if err != nil {
		return err
	}
	stock, err := strconv.Atoi(rawStock)
	if err != nil {
		return usage("stock must be a whole number")
	}

	p, err := a.core.Catalog.Create(ctx, catalog.NewProduct{
		Name:        name,
		Description: description,
		Category:    category,
		Price:       price,
		Stock:       stock,
	})
	if err != nil {
		return err
	}
	a.printf("Created product %s (%s).\n", p.ID, p.Name)
	return nil
}

// SetPrice reprices a product and puts it on sale at the previous price.
// Admin only: price <productId> <amount>.
func (a *App) SetPrice(ctx context.Context, args []string) error {
	if err := a.core.Identity.RequireRole(models.RoleAdmin); err != nil {
		return err
	}
	if len(args) != 2 {
		return usage("price <productId> <amount>")
	}
	price, err := models.ParseMoney(args[1])
	if err != nil {
		return usage("price <productId> <amount>")
	}

	cur, err := a.core.Catalog.GetProductByID(ctx, args[0])
	if err != nil {
		return err
	}
	patch := catalog.ProductPatch{Price: &price}
	if price < cur.Price {
		onSale := true
		patch.OriginalPrice = &cur.Price
		patch.IsSale = &onSale
	}

	p, err := a.core.Catalog.Update(ctx, args[0], patch)
	if err != nil {
		return err
	}
	a.printf("%s now costs %s.\n", p.Name, p.Price)
	return nil
}

// DeleteProduct removes a product from the catalog. Admin only. Existing cart
// lines keep their product snapshot.
func (a *App) DeleteProduct(ctx context.Context, args []string) error {
	if err := a.core.Identity.RequireRole(models.RoleAdmin); err != nil {
		return err
	}
	if len(args) != 1 {
		return usage("delproduct <productId>")
	}
	if err := a.core.Catalog.Delete(ctx, args[0]); err != nil {
		return err
	}
	a.printf("Deleted product %s.\n", args[0])
	return nil
}
