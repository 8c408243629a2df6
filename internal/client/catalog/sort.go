package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

// SortKey selects the ordering applied by Sort.
type SortKey string

const (
	SortByName   SortKey = "name"
	SortByPrice  SortKey = "price"
	SortByRating SortKey = "rating"
	SortByNewest SortKey = "newest"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(s)); k {
	case SortByName, SortByPrice, SortByRating, SortByNewest:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Sort orders products in place and returns them. The sort is stable, so
// equal keys keep catalog order.
func Sort(products []models.Product, key SortKey, desc bool) []models.Product {
	var less func(a, b models.Product) int
	switch key {
	case SortByPrice:
		less = func(a, b models.Product) int { return cmp.Compare(a.Price, b.Price) }
	case SortByRating:
		less = func(a, b models.Product) int { return cmp.Compare(a.Rating, b.Rating) }
	case SortByNewest:
		less = func(a, b models.Product) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		less = func(a, b models.Product) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	}
	slices.SortStableFunc(products, func(a, b models.Product) int {
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
	return products
}
