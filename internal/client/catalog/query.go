package catalog

import (
	"context"
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/common"
)

// Query returns the products for which the boolean expression holds, e.g.
//
//	price < 5000 && category == "Clothing"
//
// Prices are in cents. Available fields: id, name, description, price,
// originalPrice (0 when unset), category, stock, rating, reviewCount, isNew,
// isSale.
func (s *Service) Query(ctx context.Context, expression string) ([]models.Product, error) {
	program, err := s.compile(expression)
	if err != nil {
		return nil, err
	}

	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		res, err := exprlang.Run(program, productEnv(p))
		if err != nil {
			return nil, fmt.Errorf("evaluate %q on product %s: %w", expression, p.ID, err)
		}
		if ok, _ := res.(bool); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) compile(expression string) (*exprvm.Program, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, fmt.Errorf("empty filter expression: %w", common.ErrValidation)
	}
	if cached, ok := s.programs.Load(expression); ok {
		return cached.(*exprvm.Program), nil
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(productEnv(models.Product{})),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %v: %w", expression, err, common.ErrValidation)
	}
	s.programs.Store(expression, program)
	return program, nil
}

func productEnv(p models.Product) map[string]any {
	var original int64
	if p.OriginalPrice != nil {
		original = int64(*p.OriginalPrice)
	}
	return map[string]any{
		"id":            p.ID,
		"name":          p.Name,
		"description":   p.Description,
		"price":         int64(p.Price),
		"originalPrice": original,
		"category":      p.Category,
		"stock":         p.Stock,
		"rating":        p.Rating,
		"reviewCount":   p.ReviewCount,
		"isNew":         p.IsNew,
		"isSale":        p.IsSale,
	}
}
