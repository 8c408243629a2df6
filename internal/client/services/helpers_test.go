package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storefront/internal/client/catalog"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/repositories/kvstore"
	"github.com/dmitrijs2005/storefront/internal/client/simulate"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

var testSecret = []byte("test-secret")

// ---- fakes ----

// faultyRepo wraps a real repository and fails selected calls. Set the
// fields before starting the operation under test.
type faultyRepo struct {
	kvstore.Repository

	GetErr        error
	SetErr        error
	SetManyErr    error
	DeleteManyErr error
}

func (r *faultyRepo) Get(ctx context.Context, key string) ([]byte, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	return r.Repository.Get(ctx, key)
}

func (r *faultyRepo) Set(ctx context.Context, key string, value []byte) error {
	if r.SetErr != nil {
		return r.SetErr
	}
	return r.Repository.Set(ctx, key, value)
}

func (r *faultyRepo) SetMany(ctx context.Context, values map[string][]byte) error {
	if r.SetManyErr != nil {
		return r.SetManyErr
	}
	return r.Repository.SetMany(ctx, values)
}

func (r *faultyRepo) DeleteMany(ctx context.Context, keys ...string) error {
	if r.DeleteManyErr != nil {
		return r.DeleteManyErr
	}
	return r.Repository.DeleteMany(ctx, keys...)
}

// hookedLookup calls before ahead of every product lookup.
type hookedLookup struct {
	catalog.Lookup
	before func()
}

func (h *hookedLookup) GetProductByID(ctx context.Context, id string) (models.Product, error) {
	if h.before != nil {
		h.before()
	}
	return h.Lookup.GetProductByID(ctx, id)
}

// ---- environment ----

type testEnv struct {
	repo    *faultyRepo
	sim     *simulate.Simulator
	catalog *catalog.Service
	dir     *Directory
	tokens  *TokenIssuer
	ic      *IdentityContext
	cart    *CartStore
	wish    *WishlistStore
}

type envConfig struct {
	latency simulate.Latency
	simOpts []simulate.Option
	lookup  func(catalog.Lookup) catalog.Lookup
	repo    kvstore.Repository
}

type envOption func(*envConfig)

func withLatency(l simulate.Latency) envOption {
	return func(c *envConfig) { c.latency = l }
}

func withSimOptions(opts ...simulate.Option) envOption {
	return func(c *envConfig) { c.simOpts = append(c.simOpts, opts...) }
}

func withLookup(wrap func(catalog.Lookup) catalog.Lookup) envOption {
	return func(c *envConfig) { c.lookup = wrap }
}

func withRepo(r kvstore.Repository) envOption {
	return func(c *envConfig) { c.repo = r }
}

func newMemRepo(t *testing.T) kvstore.Repository {
	t.Helper()
	r, err := kvstore.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := &envConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.repo == nil {
		cfg.repo = newMemRepo(t)
	}

	log := logging.Nop()
	e := &testEnv{repo: &faultyRepo{Repository: cfg.repo}}
	e.sim = simulate.New(cfg.latency, cfg.simOpts...)
	e.catalog = catalog.NewService(e.sim, log)

	var lookup catalog.Lookup = e.catalog
	if cfg.lookup != nil {
		lookup = cfg.lookup(lookup)
	}

	e.dir = NewDirectory(nil)
	e.tokens = NewTokenIssuer(testSecret, time.Hour, nil)
	e.ic = NewIdentityContext(e.dir, e.tokens, e.repo, e.sim, log)
	e.cart = NewCartStore(lookup, e.repo, e.sim, log, nil)
	e.wish = NewWishlistStore(lookup, e.repo, e.sim, log, nil)

	ctx := context.Background()
	stopCart := e.ic.Changes().Subscribe(func(id *models.Identity) { e.cart.OnIdentityChange(ctx, id) })
	stopWish := e.ic.Changes().Subscribe(func(id *models.Identity) { e.wish.OnIdentityChange(ctx, id) })
	t.Cleanup(func() {
		stopCart()
		stopWish()
		e.cart.Close()
		e.wish.Close()
	})
	return e
}

func (e *testEnv) signIn(t *testing.T, email string) models.Identity {
	t.Helper()
	res, err := e.ic.Authenticate(context.Background(), models.Credentials{Email: email, Password: common.TestPassword})
	require.NoError(t, err)
	return res.Identity
}

func (e *testEnv) signOut(t *testing.T) {
	t.Helper()
	require.NoError(t, e.ic.SignOut(context.Background()))
}

func (e *testEnv) stored(t *testing.T, key string) []byte {
	t.Helper()
	v, err := e.repo.Repository.Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

const (
	adminEmail = "admin@example.com"
	userEmail  = "user@example.com"
)
