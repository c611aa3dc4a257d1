// Package app assembles the store, services and HTTP handlers for a resolved
// configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/kahvecikaan/product-catalog/internal/config"
	"github.com/kahvecikaan/product-catalog/internal/events"
	"github.com/kahvecikaan/product-catalog/internal/repository"
	"github.com/kahvecikaan/product-catalog/internal/repository/badgerdb"
	"github.com/kahvecikaan/product-catalog/internal/repository/postgres"
	"github.com/kahvecikaan/product-catalog/internal/service"
	httpTransport "github.com/kahvecikaan/product-catalog/internal/transport/http"
	websocketTransport "github.com/kahvecikaan/product-catalog/internal/transport/websocket"
)

// Store URL schemes other than PostgreSQL.
const (
	// MemoryScheme selects the in-process store.
	MemoryScheme = "memory://"
	// BadgerScheme selects the embedded Badger store. The rest of the URL is
	// the data directory; an empty one keeps the data in memory.
	BadgerScheme = "badger://"
)

// UsesMigrations reports whether the configured store is PostgreSQL and
// needs schema migrations.
func UsesMigrations(databaseURL string) bool {
	return !strings.HasPrefix(databaseURL, MemoryScheme) && !strings.HasPrefix(databaseURL, BadgerScheme)
}

// Options are process flags that are not part of a configuration profile.
type Options struct {
	// CORSOrigins lists allowed origins; empty allows any.
	CORSOrigins []string
	// RateLimit is a limiter rate such as "100-M"; empty disables limiting.
	RateLimit string
}

type App struct {
	Config   config.Config
	Store    repository.Store
	Products service.ProductService
	// EventBus is nil unless the profile tracks modifications.
	EventBus *events.EventBus[any]
	Handler  http.Handler

	log hclog.Logger
}

// NewLogger returns the root logger. level overrides the profile's default
// when set.
func NewLogger(cfg config.Config, level string) hclog.Logger {
	lvl := hclog.Info
	if cfg.Debug {
		lvl = hclog.Debug
	}
	if level != "" {
		if l := hclog.LevelFromString(level); l != hclog.NoLevel {
			lvl = l
		}
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:  "product-api",
		Level: lvl,
	})
}

// OpenStore connects to the store named by cfg.DatabaseURL.
func OpenStore(ctx context.Context, cfg config.Config, log hclog.Logger) (repository.Store, error) {
	if strings.HasPrefix(cfg.DatabaseURL, MemoryScheme) {
		log.Info("Using in-memory store")
		return repository.NewMemoryStore(), nil
	}
	if dir, ok := strings.CutPrefix(cfg.DatabaseURL, BadgerScheme); ok {
		store, err := badgerdb.Open(dir, log.Named("badger"))
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		return store, nil
	}

	store, err := postgres.NewStore(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL), log.Named("postgres"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// New opens the configured store and builds the application on it.
func New(ctx context.Context, cfg config.Config, log hclog.Logger, opts Options) (*App, error) {
	store, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a, err := NewWithStore(cfg, store, log, opts)
	if err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStore builds the application on an open store. The App takes
// ownership of the store.
func NewWithStore(cfg config.Config, store repository.Store, log hclog.Logger, opts Options) (*App, error) {
	a := &App{
		Config: cfg,
		Store:  store,
		log:    log,
	}

	var wsh *websocketTransport.Handler
	if cfg.TrackModifications {
		a.EventBus = events.NewEventBus[any]()
		wsh = websocketTransport.NewHandler(log.Named("websocket-handler"), a.EventBus)
	}

	a.Products = service.NewProductService(store.Products(), a.EventBus, log.Named("product-service"))
	cs := service.NewCurrencyService(store.Currencies(), log.Named("currency-service"))

	routerOpts := httpTransport.RouterOptions{
		CORSOrigins:     opts.CORSOrigins,
		DisableRecovery: cfg.Testing,
	}
	if opts.RateLimit != "" {
		limit, err := httpTransport.NewRateLimitMiddleware(opts.RateLimit, log.Named("rate-limit"))
		if err != nil {
			return nil, err
		}
		routerOpts.RateLimit = limit
	}

	a.Handler = httpTransport.NewRouter(
		httpTransport.NewProductHandler(a.Products, cs, log.Named("http-handler")),
		httpTransport.NewHealthHandler(store, log.Named("health")),
		wsh,
		log,
		routerOpts,
	)

	return a, nil
}

// Close releases the store.
func (a *App) Close() {
	a.log.Info("Closing store")
	a.Store.Close()
}
