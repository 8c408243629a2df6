package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/simulate"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

func newTestService(t *testing.T, opts ...simulate.Option) *Service {
	t.Helper()
	return NewService(simulate.New(simulate.Latency{}, opts...), logging.Nop())
}

func ids(ps []models.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestGetProductByID(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	p, err := s.GetProductByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "Organic Cotton T-Shirt", p.Name)
	assert.Equal(t, models.Money(2999), p.Price)

	_, err = s.GetProductByID(ctx, "999")
	assert.ErrorIs(t, err, common.ErrProductNotFound)
}

func TestGetProductByID_ReturnsCopy(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	p, err := s.GetProductByID(ctx, "1")
	require.NoError(t, err)
	*p.OriginalPrice = 1
	p.Name = "changed"

	again, err := s.GetProductByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Wireless Bluetooth Headphones", again.Name)
	assert.Equal(t, models.Money(24999), *again.OriginalPrice)
}

func TestListAllAndCategories(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids(all))

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Clothing", "Electronics", "Furniture", "Photography", "Sports"}, cats)
}

func TestListByCategory_CaseInsensitive(t *testing.T) {
	s := newTestService(t)

	got, err := s.ListByCategory(context.Background(), "electronics")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(got))
}

func TestSearch(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	got, err := s.Search(ctx, "WIRELESS")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(got))

	got, err = s.Search(ctx, "premium")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "5"}, ids(got))

	got, err = s.Search(ctx, "sports")
	require.NoError(t, err)
	assert.Equal(t, []string{"6"}, ids(got))
}

func TestCreateUpdateDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	p, err := s.Create(ctx, NewProduct{Name: "Desk Lamp", Price: 4500, Category: "Furniture", Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, "7", p.ID)
	assert.True(t, p.IsNew)
	assert.Zero(t, p.Rating)

	price := models.Money(3900)
	sale := true
	upd, err := s.Update(ctx, "7", ProductPatch{Price: &price, IsSale: &sale})
	require.NoError(t, err)
	assert.Equal(t, models.Money(3900), upd.Price)
	assert.True(t, upd.IsSale)
	assert.Equal(t, "Desk Lamp", upd.Name)

	require.NoError(t, s.Delete(ctx, "7"))
	_, err = s.GetProductByID(ctx, "7")
	assert.ErrorIs(t, err, common.ErrProductNotFound)

	assert.ErrorIs(t, s.Delete(ctx, "7"), common.ErrProductNotFound)
	_, err = s.Update(ctx, "7", ProductPatch{})
	assert.ErrorIs(t, err, common.ErrProductNotFound)

	next, err := s.Create(ctx, NewProduct{Name: "Mug", Price: 900})
	require.NoError(t, err)
	assert.Equal(t, "8", next.ID)
}

func TestCreate_Validation(t *testing.T) {
	s := newTestService(t)

	_, err := s.Create(context.Background(), NewProduct{Price: 100})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = s.Create(context.Background(), NewProduct{Name: "x", Price: -1})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestWithProducts_AndClock(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	s := NewService(nil, nil,
		WithProducts([]models.Product{{ID: "10", Name: "Only", Price: 1}}),
		WithClock(func() time.Time { return at }),
	)
	ctx := context.Background()

	p, err := s.Create(ctx, NewProduct{Name: "Next", Price: 2})
	require.NoError(t, err)
	assert.Equal(t, "11", p.ID)
	assert.Equal(t, at, p.CreatedAt)
}

func TestFaultInjector_FailsCatalogCalls(t *testing.T) {
	boom := errors.New("offline")
	s := newTestService(t, simulate.WithFaultInjector(simulate.FailOps(boom, "catalog.get")))

	_, err := s.GetProductByID(context.Background(), "1")
	assert.ErrorIs(t, err, boom)

	_, err = s.ListAll(context.Background())
	assert.NoError(t, err)
}

func TestSort(t *testing.T) {
	ps := SeedProducts(time.Now())

	assert.Equal(t, []string{"3", "6", "1", "2", "5", "4"}, ids(Sort(ps, SortByPrice, false)))
	assert.Equal(t, []string{"4", "1", "5", "2", "6", "3"}, ids(Sort(ps, SortByRating, true)))
	assert.Equal(t, []string{"5", "3", "4", "2", "6", "1"}, ids(Sort(ps, SortByName, false)))

	_, err := ParseSortKey("colour")
	assert.Error(t, err)
	k, err := ParseSortKey("PRICE")
	require.NoError(t, err)
	assert.Equal(t, SortByPrice, k)
}
