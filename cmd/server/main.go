package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialmart-be/internal/auth"
	"socialmart-be/internal/boost"
	"socialmart-be/internal/cache"
	"socialmart-be/internal/campaign"
	"socialmart-be/internal/cart"
	"socialmart-be/internal/category"
	"socialmart-be/internal/clock"
	"socialmart-be/internal/config"
	"socialmart-be/internal/db"
	"socialmart-be/internal/dispute"
	"socialmart-be/internal/events"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/middleware"
	"socialmart-be/internal/order"
	"socialmart-be/internal/product"
	"socialmart-be/internal/review"
	"socialmart-be/internal/transport/rest"
	"socialmart-be/internal/wishlist"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Overridden in tests.
var (
	initDBFunc      = db.NewDatabase
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	conn, err := initDBFunc(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := newCache(ctx, cfg)
	pub := newPublisher(cfg)
	defer pub.Close()

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)
	limiter.StartCleanup(ctx)

	handler, err := newServer(cfg, conn, store, pub, limiter)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer wires repositories and services onto the router.
func newServer(cfg *config.Config, conn *sql.DB, store cache.Store, pub events.Publisher, limiter *middleware.RateLimiter) (http.Handler, error) {
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, 0)
	if err != nil {
		return nil, err
	}

	clk := clock.RealClock{}
	newID := uuid.NewString

	productRepo := product.NewRepository(conn, newID)

	svc := rest.Services{
		Products:   product.NewService(productRepo, store, clk),
		Categories: category.NewService(category.NewRepository(conn)),
		Carts:      cart.NewService(cart.NewRepository(conn, newID), productRepo, clk),
		Orders:     order.NewService(order.NewRepository(conn, newID), order.NoDiscount{}, store, pub, clk),
		Reviews:    review.NewService(review.NewRepository(conn, newID), store, pub, clk),
		Disputes:   dispute.NewService(dispute.NewRepository(conn, newID), pub, clk),
		Boosts:     boost.NewService(boost.NewRepository(conn, newID), store, pub, clk),
		Wishlists:  wishlist.NewService(wishlist.NewRepository(conn, newID), clk),
		Campaigns:  campaign.NewService(campaign.NewRepository(conn, newID), pub, clk),
	}

	return rest.NewRouter(svc, rest.Options{
		Tokens:         tokens,
		Limiter:        limiter,
		RequestTimeout: cfg.RequestTimeout,
	}), nil
}

// newCache falls back to no caching when Redis is unset or unreachable.
func newCache(ctx context.Context, cfg *config.Config) cache.Store {
	if !cfg.CacheEnabled() {
		return cache.Nop{}
	}

	store := cache.NewRedisStore(cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.ProductCacheTTL,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.L().Warn("redis unavailable, product cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		store.Close()
		return cache.Nop{}
	}
	return store
}

// newPublisher falls back to dropping events when the broker is unset or
// unreachable.
func newPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled() {
		return events.NopPublisher{}
	}

	pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		logger.L().Warn("amqp unavailable, domain events disabled", zap.Error(err))
		return events.NopPublisher{}
	}
	return pub
}
