package main

import (
	"context"
	"os"

	"github.com/angelmondragon/storefront-core/internal/auth"
	"github.com/angelmondragon/storefront-core/internal/cart"
	"github.com/angelmondragon/storefront-core/internal/catalog"
	"github.com/angelmondragon/storefront-core/internal/gateway"
	"github.com/angelmondragon/storefront-core/internal/guest"
	"github.com/angelmondragon/storefront-core/internal/selection"
	"github.com/angelmondragon/storefront-core/internal/wishlist"
	"github.com/angelmondragon/storefront-core/pkg/config"
	"github.com/angelmondragon/storefront-core/pkg/db"
	"github.com/angelmondragon/storefront-core/pkg/logger"
	"github.com/angelmondragon/storefront-core/pkg/metrics"
	"github.com/angelmondragon/storefront-core/pkg/redis"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	sessionID := cfg.GuestStore.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	ctx := logg.WithSessionID(context.Background(), sessionID)

	var closers []func() error
	defer func() {
		var closeErr error
		for _, closeFn := range closers {
			closeErr = multierr.Append(closeErr, closeFn())
		}
		if closeErr != nil {
			logg.Error(ctx, "error shutting down storage", closeErr)
		}
	}()

	var (
		guestStore      cart.GuestStore
		wishlistService wishlist.Service
	)
	if cfg.GuestStore.IsRedis() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)

		guestStore, err = guest.NewRedisStore(redisClient, sessionID, logg)
		if err != nil {
			logg.Error(ctx, "failed to create guest cart store", err)
			os.Exit(1)
		}
		wishlistService, err = wishlist.NewRedisService(redisClient, sessionID, logg)
		if err != nil {
			logg.Error(ctx, "failed to create wishlist service", err)
			os.Exit(1)
		}
	} else {
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to open local database", err)
			os.Exit(1)
		}
		closers = append(closers, dbClient.Close)

		guestStore, err = guest.NewSQLiteStore(dbClient, sessionID, logg)
		if err != nil {
			logg.Error(ctx, "failed to create guest cart store", err)
			os.Exit(1)
		}
		wishlistService, err = wishlist.NewSQLiteService(dbClient, sessionID, logg)
		if err != nil {
			logg.Error(ctx, "failed to create wishlist service", err)
			os.Exit(1)
		}
	}

	authProvider, err := auth.NewProvider(cfg.JWT, logg)
	if err != nil {
		logg.Error(ctx, "failed to create auth provider", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	cartMetrics := metrics.NewCartMetrics(registry)

	gatewayClient, err := gateway.NewClient(cfg.Gateway, authProvider, gateway.WithMetrics(cartMetrics))
	if err != nil {
		logg.Error(ctx, "failed to create cart gateway client", err)
		os.Exit(1)
	}

	engine, err := cart.NewEngine(cart.Params{
		Gateway:    gatewayClient,
		GuestStore: guestStore,
		Auth:       authProvider,
		Logger:     logg,
		Metrics:    cartMetrics,
		OnCartOpened: func() {
			logg.Debug(ctx, "cart opened")
		},
	})
	if err != nil {
		logg.Error(ctx, "failed to create cart engine", err)
		os.Exit(1)
	}

	// Login adopts the server cart and drops session-local state; logout
	// falls back to whatever the guest store still holds.
	authProvider.Subscribe(func(authenticated bool) {
		engine.Sync(ctx)
		if authenticated {
			if err := wishlistService.Clear(ctx); err != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "failed to clear guest wishlist")
			}
		}
	})

	machine, err := selection.NewMachine(engine, logg)
	if err != nil {
		logg.Error(ctx, "failed to create selection machine", err)
		os.Exit(1)
	}

	logg.Info(logg.WithField(ctx, "env", cfg.App.Env), "storefront core ready")

	if err := smokeRun(ctx, logg, engine, machine, wishlistService); err != nil {
		logg.Error(ctx, "smoke run failed", err)
		os.Exit(1)
	}
}

// smokeRun exercises the wired stack against a demo product so a fresh
// checkout of the repo can be verified end to end without a UI.
func smokeRun(
	ctx context.Context,
	logg *logger.Logger,
	engine *cart.Engine,
	machine *selection.Machine,
	wishlistService wishlist.Service,
) error {
	engine.Sync(ctx)
	logg.Info(logg.WithCartMode(ctx, string(engine.Mode())), "cart synchronized")

	product := demoProduct()
	machine.SetProduct(product)
	machine.ChangeQuantity(+1)
	if err := machine.ConfirmAdd(ctx); err != nil {
		return err
	}

	saved, err := wishlistService.Toggle(ctx, product.Variants[0].ID)
	if err != nil {
		return err
	}

	items := engine.Items()
	summary := logg.WithFields(ctx, map[string]any{
		"lines":              len(items),
		"total_items":        engine.TotalItems(),
		"total_amount_cents": engine.TotalAmountCents(),
		"wishlisted":         saved,
	})
	logg.Info(summary, "smoke run complete")
	return nil
}

func demoProduct() *catalog.Product {
	return &catalog.Product{
		ID:   uuid.New(),
		Name: "demo trail jacket",
		Variants: []catalog.Variant{
			{
				ID:         uuid.New(),
				Color:      "forest",
				PriceCents: 12900,
				Sizes: []catalog.Size{
					{ID: uuid.New(), Label: "M", Stock: 8},
					{ID: uuid.New(), Label: "L", Stock: 3},
				},
			},
		},
	}
}
