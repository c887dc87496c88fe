package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopwave/mobile-core/internal/cart"
	"github.com/shopwave/mobile-core/internal/checkout"
	"github.com/shopwave/mobile-core/internal/orders"
	"github.com/shopwave/mobile-core/internal/session"
	"github.com/shopwave/mobile-core/internal/wishlist"
	"github.com/shopwave/mobile-core/pkg/api"
	"github.com/shopwave/mobile-core/pkg/auth"
	"github.com/shopwave/mobile-core/pkg/config"
	"github.com/shopwave/mobile-core/pkg/logger"
	"github.com/shopwave/mobile-core/pkg/metrics"
	"github.com/shopwave/mobile-core/pkg/storage"
)

// storefront boots the client core the way the app shell does on launch:
// open device storage, verify the stored session, then hydrate every store.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logg := logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewSQLite(ctx, cfg.Storage, logg)
	if err != nil {
		return fmt.Errorf("opening device storage: %w", err)
	}
	defer store.Close()

	tokens, err := auth.NewTokenStore(store)
	if err != nil {
		return err
	}

	var clientMetrics *metrics.ClientMetrics
	if cfg.Metrics.Enabled {
		clientMetrics = metrics.NewClientMetrics(prometheus.DefaultRegisterer)
	}

	apiClient, err := api.New(api.Params{
		Config:  cfg.API,
		Tokens:  tokens,
		Logger:  logg,
		Metrics: clientMetrics,
	})
	if err != nil {
		return err
	}

	sess, err := session.NewManager(session.ManagerParams{
		Remote: apiClient,
		Tokens: tokens,
		Logger: logg,
	})
	if err != nil {
		return err
	}

	cartStore, err := cart.NewStore(cart.StoreParams{
		Remote:  apiClient,
		Storage: store,
		Tokens:  tokens,
		Logger:  logg,
		Metrics: clientMetrics,
	})
	if err != nil {
		return err
	}

	orderStore, err := orders.NewStore(orders.StoreParams{
		Remote:  apiClient,
		Tokens:  tokens,
		Logger:  logg,
		Metrics: clientMetrics,
	})
	if err != nil {
		return err
	}

	wishlistStore, err := wishlist.NewStore(wishlist.StoreParams{
		Storage: store,
		Tokens:  tokens,
		Logger:  logg,
		Metrics: clientMetrics,
	})
	if err != nil {
		return err
	}

	if _, err := checkout.NewService(checkout.ServiceParams{
		Cart:   cartStore,
		Orders: orderStore,
		Logger: logg,
	}); err != nil {
		return err
	}

	// Session first so the stores see the surviving token, or its absence.
	if err := sess.CheckAuth(ctx); err != nil {
		logg.Error(ctx, "verifying stored session", err)
	}
	cartStore.Load(ctx)
	wishlistStore.Load(ctx)
	if err := orderStore.LoadOrders(ctx); err != nil {
		logg.Error(ctx, "loading order history", err)
	}

	cartState := cartStore.State()
	logg.Info(logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"authenticated": sess.IsAuthenticated(),
		"cart_items":    cartState.TotalItems,
		"cart_total":    cartState.TotalPrice.String(),
		"orders":        len(orderStore.State().Orders),
		"wishlist":      len(wishlistStore.State().Items),
	}), "storefront ready")

	<-ctx.Done()
	logg.Info(context.Background(), "shutting down")
	return nil
}
