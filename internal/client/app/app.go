// Package app builds the storefront object graph from a Config: logger,
// call simulator, key/value backend, catalog, identity context and the
// identity-scoped cart and wishlist stores.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/storefront/internal/client/catalog"
	"github.com/dmitrijs2005/storefront/internal/client/config"
	"github.com/dmitrijs2005/storefront/internal/client/models"
	"github.com/dmitrijs2005/storefront/internal/client/repositories/kvstore"
	"github.com/dmitrijs2005/storefront/internal/client/services"
	"github.com/dmitrijs2005/storefront/internal/client/simulate"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

// Repository is a key/value backend that owns a connection.
type Repository interface {
	kvstore.Repository
	Close() error
}

// App owns every long-lived component. Build it with New and release it with
// Close.
type App struct {
	Log       logging.Logger
	Sim       *simulate.Simulator
	Repo      Repository
	Catalog   *catalog.Service
	Directory *services.Directory
	Identity  *services.IdentityContext
	Cart      *services.CartStore
	Wishlist  *services.WishlistStore

	unsubscribe []func()
}

type options struct {
	logOut io.Writer
	repo   Repository
}

// Option customizes New.
type Option func(*options)

// WithLogOutput sends log records to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOut = w }
}

// WithRepository uses repo instead of opening the configured backend. The
// App takes ownership and closes it.
func WithRepository(repo Repository) Option {
	return func(o *options) { o.repo = repo }
}

// New wires the application and restores the persisted session, so the
// stores already hold the restored identity's collections when it returns.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{logOut: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	log, err := logging.New(cfg.LogBackend, cfg.LogLevel, o.logOut)
	if err != nil {
		return nil, err
	}

	repo := o.repo
	if repo == nil {
		repo, err = OpenRepository(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	a := &App{Log: log, Repo: repo}
	a.Sim = simulate.New(cfg.Latency,
		simulate.WithFaultInjector(simulate.RandomFaults(cfg.FaultRate)),
		simulate.WithLogger(log),
	)
	a.Catalog = catalog.NewService(a.Sim, log)
	a.Directory = services.NewDirectory(nil)

	secret, err := tokenSecret(ctx, repo, cfg.TokenSecret)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	tokens := services.NewTokenIssuer(secret, cfg.TokenTTL, nil)
	a.Identity = services.NewIdentityContext(a.Directory, tokens, repo, a.Sim, log)
	a.Cart = services.NewCartStore(a.Catalog, repo, a.Sim, log, nil)
	a.Wishlist = services.NewWishlistStore(a.Catalog, repo, a.Sim, log, nil)

	// Store callbacks outlive the caller's context.
	bg := context.WithoutCancel(ctx)
	changes := a.Identity.Changes()
	a.unsubscribe = append(a.unsubscribe,
		changes.Subscribe(func(id *models.Identity) { a.Cart.OnIdentityChange(bg, id) }),
		changes.Subscribe(func(id *models.Identity) { a.Wishlist.OnIdentityChange(bg, id) }),
	)

	a.Identity.Restore(ctx)

	log.Info(ctx, "storefront ready", "storage", cfg.Storage, "authenticated", a.Identity.IsAuthenticated())
	return a, nil
}

// OpenRepository opens the backend selected by cfg.Storage.
func OpenRepository(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		repo, err := kvstore.OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis %s unreachable: %w", cfg.RedisAddr, err)
		}
		return kvstore.NewRedisRepository(client, ""), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

// tokenSecret returns the configured secret, or else the one persisted by an
// earlier run, generating and persisting it on first use.
func tokenSecret(ctx context.Context, repo kvstore.Repository, configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	stored, err := repo.Get(ctx, common.TokenSecretKey)
	if err != nil {
		return nil, fmt.Errorf("load token secret: %w", err)
	}
	if len(stored) > 0 {
		return stored, nil
	}
	generated, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, err
	}
	if err := repo.Set(ctx, common.TokenSecretKey, []byte(generated)); err != nil {
		return nil, fmt.Errorf("persist token secret: %w", err)
	}
	return []byte(generated), nil
}

// Close detaches the stores from the identity context and closes the backend.
func (a *App) Close() error {
	for _, stop := range a.unsubscribe {
		stop()
	}
	a.unsubscribe = nil

	a.Cart.Close()
	a.Wishlist.Close()

	if s, ok := a.Log.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	return a.Repo.Close()
}
