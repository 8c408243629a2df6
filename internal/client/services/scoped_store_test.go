package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/simulate"
	"github.com/dmitrijs2005/storefront/internal/common"
)

func TestScopedStore_AnonymousPublishesNoneWithoutWrite(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	e.cart.OnIdentityChange(ctx, nil)

	assert.Nil(t, e.cart.Snapshot())
	all, err := e.repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestScopedStore_FirstLoadPersistsEmptyCollection(t *testing.T) {
	e := newTestEnv(t)
	e.signIn(t, userEmail)

	raw := e.stored(t, "cart.2")
	require.NotNil(t, raw)

	var c models.Cart
	require.NoError(t, json.Unmarshal(raw, &c))
	assert.Equal(t, int64(2), c.OwnerID)
	assert.NotEmpty(t, c.CartID)
	assert.Equal(t, c.CartID, e.cart.Snapshot().CartID)
}

func TestScopedStore_CorruptRecordsAreReset(t *testing.T) {
	otherOwner, _ := json.Marshal(models.Cart{CartID: "c", OwnerID: 1})
	dupItems, _ := json.Marshal(models.Cart{CartID: "c", OwnerID: 2, Items: []models.LineItem{
		{ItemID: "a", Product: models.Product{ID: "1"}, Quantity: 1},
		{ItemID: "a", Product: models.Product{ID: "2"}, Quantity: 1},
	}})
	badQty, _ := json.Marshal(models.Cart{CartID: "c", OwnerID: 2, Items: []models.LineItem{
		{ItemID: "a", Product: models.Product{ID: "1"}, Quantity: -2},
	}})

	cases := map[string][]byte{
		"not json":       []byte("{broken"),
		"wrong type":     []byte(`[1,2,3]`),
		"other owner":    otherOwner,
		"duplicate ids":  dupItems,
		"bad quantity":   badQty,
		"missing cartId": []byte(`{"ownerId":2,"items":[]}`),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			e := newTestEnv(t)
			require.NoError(t, e.repo.Set(context.Background(), "cart.2", raw))

			e.signIn(t, userEmail)

			c := e.cart.Snapshot()
			require.NotNil(t, c)
			assert.Empty(t, c.Items)
			assert.Equal(t, int64(2), c.OwnerID)

			var stored models.Cart
			require.NoError(t, json.Unmarshal(e.stored(t, "cart.2"), &stored))
			assert.Equal(t, c.CartID, stored.CartID)
			assert.NoError(t, stored.Validate(2))
		})
	}
}

func TestScopedStore_StaleTotalIsRecomputedOnLoad(t *testing.T) {
	e := newTestEnv(t)
	stale, _ := json.Marshal(models.Cart{CartID: "c", OwnerID: 2, Total: 1, Items: []models.LineItem{
		{ItemID: "a", Product: models.Product{ID: "3", Price: 2999}, Quantity: 3},
	}})
	require.NoError(t, e.repo.Set(context.Background(), "cart.2", stale))

	e.signIn(t, userEmail)

	assert.Equal(t, models.Money(8997), e.cart.Snapshot().Total)
	assert.Equal(t, models.Money(8997), e.cart.Total().Get())
}

func TestScopedStore_StorageReadErrorServesEmptyWithoutOverwrite(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.signIn(t, userEmail)
	_, err := e.cart.Add(ctx, "1", 1)
	require.NoError(t, err)
	e.signOut(t)

	e.repo.GetErr = errors.New("io error")
	e.cart.OnIdentityChange(ctx, &models.Identity{ID: 2})
	e.repo.GetErr = nil

	assert.Empty(t, e.cart.Snapshot().Items)
	var stored models.Cart
	require.NoError(t, json.Unmarshal(e.stored(t, "cart.2"), &stored))
	assert.Len(t, stored.Items, 1)
}

func TestScopedStore_MutationAfterReadErrorKeepsStoredItems(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.signIn(t, userEmail)
	for _, pid := range []string{"1", "2", "3"} {
		_, err := e.cart.Add(ctx, pid, 1)
		require.NoError(t, err)
	}
	e.signOut(t)

	e.repo.GetErr = errors.New("io error")
	e.signIn(t, userEmail)
	require.NotNil(t, e.cart.Snapshot())
	assert.Empty(t, e.cart.Snapshot().Items)

	// Storage still failing: the mutation fails and nothing is written.
	_, err := e.cart.Add(ctx, "4", 1)
	require.ErrorIs(t, err, e.repo.GetErr)
	var stored models.Cart
	require.NoError(t, json.Unmarshal(e.stored(t, "cart.2"), &stored))
	assert.Len(t, stored.Items, 3)

	// Storage recovered: the mutation applies to the stored record.
	e.repo.GetErr = nil
	c, err := e.cart.Add(ctx, "4", 1)
	require.NoError(t, err)
	assert.Len(t, c.Items, 4)
	assert.Equal(t, 4, e.cart.Count().Get())

	require.NoError(t, json.Unmarshal(e.stored(t, "cart.2"), &stored))
	assert.Len(t, stored.Items, 4)
}

func TestScopedStore_ReadAfterReadErrorReloads(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.signIn(t, userEmail)
	_, err := e.wish.Add(ctx, "2")
	require.NoError(t, err)
	e.signOut(t)

	e.repo.GetErr = errors.New("io error")
	e.signIn(t, userEmail)

	_, err = e.wish.Read(ctx)
	require.ErrorIs(t, err, e.repo.GetErr)

	e.repo.GetErr = nil
	w, err := e.wish.Read(ctx)
	require.NoError(t, err)
	require.Len(t, w.Items, 1)
	assert.True(t, e.wish.Snapshot().Contains("2"))
}

func TestScopedStore_ReturnedCollectionsAreCopies(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.signIn(t, userEmail)

	c, err := e.cart.Add(ctx, "1", 1)
	require.NoError(t, err)
	c.Items[0].Quantity = 50
	c.Items = append(c.Items, models.LineItem{ItemID: "x"})

	read, err := e.cart.Read(ctx)
	require.NoError(t, err)
	read.Items[0].Quantity = 70

	published := e.cart.Snapshot()
	require.Len(t, published.Items, 1)
	assert.Equal(t, 1, published.Items[0].Quantity)
	assert.Equal(t, 1, e.cart.Count().Get())
}

func TestScopedStore_Read(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.cart.Read(ctx)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)

	e.signIn(t, userEmail)
	c, err := e.cart.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, e.cart.Snapshot(), c)
}

func TestScopedStore_ReadInitializesWhenNothingPublished(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	store := NewCartStore(e.catalog, e.repo, e.sim, nil, nil)
	defer store.Close()

	store.mu.Lock()
	store.owner = &models.Identity{ID: 9}
	store.mu.Unlock()

	c, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), c.OwnerID)
	assert.Equal(t, c, store.Snapshot())
	assert.NotNil(t, e.stored(t, "cart.9"))
}

func TestScopedStore_ConcurrentReadsShareOneCall(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	count := func(op string) error {
		if op == "cart.read" {
			mu.Lock()
			calls++
			mu.Unlock()
		}
		return nil
	}
	e := newTestEnv(t,
		withLatency(simulate.Latency{Read: 50 * time.Millisecond}),
		withSimOptions(simulate.WithFaultInjector(count)),
	)
	e.signIn(t, userEmail)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.cart.Read(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Less(t, calls, 5)
	assert.GreaterOrEqual(t, calls, 1)
}

func TestScopedStore_ReadHonorsCallerContext(t *testing.T) {
	e := newTestEnv(t, withLatency(simulate.Latency{Read: 200 * time.Millisecond}))
	e.signIn(t, userEmail)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := e.cart.Read(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
