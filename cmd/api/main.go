package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mangohub/mangostore-backend/api/routes"
	"github.com/mangohub/mangostore-backend/internal/analytics"
	"github.com/mangohub/mangostore-backend/internal/auth"
	"github.com/mangohub/mangostore-backend/internal/cart"
	"github.com/mangohub/mangostore-backend/internal/catalog"
	"github.com/mangohub/mangostore-backend/internal/checkout"
	"github.com/mangohub/mangostore-backend/internal/orders"
	"github.com/mangohub/mangostore-backend/internal/payments"
	"github.com/mangohub/mangostore-backend/internal/recommendations"
	"github.com/mangohub/mangostore-backend/internal/reviews"
	"github.com/mangohub/mangostore-backend/internal/users"
	"github.com/mangohub/mangostore-backend/pkg/config"
	"github.com/mangohub/mangostore-backend/pkg/db"
	"github.com/mangohub/mangostore-backend/pkg/env"
	"github.com/mangohub/mangostore-backend/pkg/logger"
	"github.com/mangohub/mangostore-backend/pkg/migrate"
	"github.com/mangohub/mangostore-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "mangostore-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "mangostore-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	svcs, err := buildServices(cfg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, prometheus.NewRegistry(), svcs),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client, redisClient *redis.Client) (routes.Services, error) {
	gormDB := dbClient.DB()

	catalogRepo := catalog.NewRepository(gormDB)
	catalogSvc, err := catalog.NewService(catalogRepo)
	if err != nil {
		return routes.Services{}, err
	}

	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(gormDB),
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		return routes.Services{}, err
	}

	cartSvc, err := cart.NewService(cart.NewRepository(gormDB), dbClient, catalogSvc)
	if err != nil {
		return routes.Services{}, err
	}

	guestCartStore, err := cart.NewRedisSnapshotStore(redisClient, cfg.Cart.SnapshotTTL)
	if err != nil {
		return routes.Services{}, err
	}

	orderSvc, err := orders.NewService(orders.NewRepository(gormDB), catalogRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	sessionStore, err := checkout.NewRedisSessionStore(redisClient, cfg.Checkout.SessionTTL)
	if err != nil {
		return routes.Services{}, err
	}
	checkoutSvc, err := checkout.NewService(sessionStore, cartSvc, orderSvc)
	if err != nil {
		return routes.Services{}, err
	}

	reviewSvc, err := reviews.NewService(reviews.NewRepository(gormDB), dbClient, catalogSvc, users.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	recSvc, err := recommendations.NewService(recommendations.NewRepository(gormDB), catalogSvc)
	if err != nil {
		return routes.Services{}, err
	}

	analyticsSvc, err := analytics.NewService(analytics.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	paymentSvc, err := payments.NewService(orderSvc)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:            authSvc,
		Catalog:         catalogSvc,
		Cart:            cartSvc,
		GuestCart:       guestCartStore,
		Checkout:        checkoutSvc,
		Orders:          orderSvc,
		Reviews:         reviewSvc,
		Recommendations: recSvc,
		Analytics:       analyticsSvc,
		Payments:        paymentSvc,
	}, nil
}
