// Package catalog is the in-process product catalog. Every call goes through
// the simulator, so reads and writes carry the configured latency and can be
// failed by the fault injector.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/simulate"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

// Lookup is the part of the catalog the cart and wishlist stores depend on.
type Lookup interface {
	GetProductByID(ctx context.Context, id string) (models.Product, error)
	ListAll(ctx context.Context) ([]models.Product, error)
}

// NewProduct is the input of Create.
type NewProduct struct {
	Name          string
	Description   string
	Price         models.Money
	OriginalPrice *models.Money
	ImageURL      string
	Category      string
	Stock         int
}

// ProductPatch is the input of Update; nil fields are left unchanged.
type ProductPatch struct {
	Name          *string
	Description   *string
	Price         *models.Money
	OriginalPrice *models.Money
	ImageURL      *string
	Category      *string
	Stock         *int
	IsSale        *bool
}

type Service struct {
	sim *simulate.Simulator
	log logging.Logger
	now func() time.Time

	mu       sync.RWMutex
	products []models.Product
	nextID   int

	programs sync.Map
}

type Option func(*Service)

// WithProducts replaces the seeded product list.
func WithProducts(products []models.Product) Option {
	return func(s *Service) {
		s.products = make([]models.Product, len(products))
		for i, p := range products {
			s.products[i] = p.Snapshot()
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(sim *simulate.Simulator, log logging.Logger, opts ...Option) *Service {
	if log == nil {
		log = logging.Nop()
	}
	s := &Service{sim: sim, log: log.With("component", "catalog"), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.products == nil {
		s.products = SeedProducts(s.now())
	}
	for _, p := range s.products {
		if n, err := strconv.Atoi(p.ID); err == nil && n > s.nextID {
			s.nextID = n
		}
	}
	s.nextID++
	return s
}

// GetProductByID returns a copy of the product or common.ErrProductNotFound.
func (s *Service) GetProductByID(ctx context.Context, id string) (models.Product, error) {
	return simulate.Do(ctx, s.sim, "catalog.get", s.sim.Latency().CatalogGet, func() (models.Product, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		i := s.index(id)
		if i < 0 {
			return models.Product{}, fmt.Errorf("product %s: %w", id, common.ErrProductNotFound)
		}
		return s.products[i].Snapshot(), nil
	})
}

func (s *Service) ListAll(ctx context.Context) ([]models.Product, error) {
	return simulate.Do(ctx, s.sim, "catalog.list", s.sim.Latency().CatalogList, func() ([]models.Product, error) {
		return s.filter(func(models.Product) bool { return true }), nil
	})
}

// ListByCategory matches the category case-insensitively.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return simulate.Do(ctx, s.sim, "catalog.category", s.sim.Latency().CatalogList, func() ([]models.Product, error) {
		return s.filter(func(p models.Product) bool {
			return strings.EqualFold(p.Category, category)
		}), nil
	})
}

// Search matches q case-insensitively against name, description and category.
func (s *Service) Search(ctx context.Context, q string) ([]models.Product, error) {
	term := strings.ToLower(strings.TrimSpace(q))
	return simulate.Do(ctx, s.sim, "catalog.search", s.sim.Latency().CatalogGet, func() ([]models.Product, error) {
		return s.filter(func(p models.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), term) ||
				strings.Contains(strings.ToLower(p.Description), term) ||
				strings.Contains(strings.ToLower(p.Category), term)
		}), nil
	})
}

// Categories returns the distinct categories, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return simulate.Do(ctx, s.sim, "catalog.categories", s.sim.Latency().Read, func() ([]string, error) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		var out []string
		for _, p := range s.products {
			if !slices.Contains(out, p.Category) {
				out = append(out, p.Category)
			}
		}
		slices.Sort(out)
		return out, nil
	})
}

// Create adds a product. New products start unrated, flagged new and not on
// sale.
func (s *Service) Create(ctx context.Context, in NewProduct) (models.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Product{}, fmt.Errorf("product name is required: %w", common.ErrValidation)
	}
	if in.Price < 0 || in.Stock < 0 {
		return models.Product{}, fmt.Errorf("price and stock must not be negative: %w", common.ErrValidation)
	}
	return simulate.Do(ctx, s.sim, "catalog.create", s.sim.Latency().CatalogWrite, func() (models.Product, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		p := models.Product{
			ID:            strconv.Itoa(s.nextID),
			Name:          in.Name,
			Description:   in.Description,
			Price:         in.Price,
			OriginalPrice: in.OriginalPrice,
			ImageURL:      in.ImageURL,
			Category:      in.Category,
			Stock:         in.Stock,
			IsNew:         true,
			CreatedAt:     s.now().UTC(),
		}.Snapshot()
		s.nextID++
		s.products = append(s.products, p)
		s.log.Info(ctx, "product created", "id", p.ID, "name", p.Name)
		return p.Snapshot(), nil
	})
}

func (s *Service) Update(ctx context.Context, id string, patch ProductPatch) (models.Product, error) {
	return simulate.Do(ctx, s.sim, "catalog.update", s.sim.Latency().CatalogWrite, func() (models.Product, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.index(id)
		if i < 0 {
			return models.Product{}, fmt.Errorf("product %s: %w", id, common.ErrProductNotFound)
		}
		p := s.products[i]
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.Price != nil {
			p.Price = *patch.Price
		}
		if patch.OriginalPrice != nil {
			op := *patch.OriginalPrice
			p.OriginalPrice = &op
		}
		if patch.ImageURL != nil {
			p.ImageURL = *patch.ImageURL
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Stock != nil {
			p.Stock = *patch.Stock
		}
		if patch.IsSale != nil {
			p.IsSale = *patch.IsSale
		}
		if p.Name == "" || p.Price < 0 || p.Stock < 0 {
			return models.Product{}, fmt.Errorf("product %s: %w", id, common.ErrValidation)
		}
		s.products[i] = p
		return p.Snapshot(), nil
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := simulate.Do(ctx, s.sim, "catalog.delete", s.sim.Latency().CatalogWrite, func() (struct{}, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.index(id)
		if i < 0 {
			return struct{}{}, fmt.Errorf("product %s: %w", id, common.ErrProductNotFound)
		}
		s.products = slices.Delete(s.products, i, i+1)
		s.log.Info(ctx, "product deleted", "id", id)
		return struct{}{}, nil
	})
	return err
}

// index must be called with s.mu held.
func (s *Service) index(id string) int {
	return slices.IndexFunc(s.products, func(p models.Product) bool { return p.ID == id })
}

func (s *Service) filter(keep func(models.Product) bool) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			out = append(out, p.Snapshot())
		}
	}
	return out
}
