package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/storefront-cart/internal/adapter/client"
	"github.com/rl1809/storefront-cart/internal/adapter/handler"
	"github.com/rl1809/storefront-cart/internal/adapter/notify"
	"github.com/rl1809/storefront-cart/internal/adapter/storage"
	"github.com/rl1809/storefront-cart/internal/config"
	"github.com/rl1809/storefront-cart/internal/core/service"
	applog "github.com/rl1809/storefront-cart/internal/logger"
	"github.com/rl1809/storefront-cart/internal/port"
)

const healthInterval = 10 * time.Second

type catalogSource interface {
	port.CatalogReader
	port.StockReader
	handler.Pinger
}

type cartStore interface {
	port.CartStore
	handler.Pinger
}

func main() {
	cfg := config.MustLoad()

	logger, err := applog.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openCartStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	catalog, closeCatalog, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCatalog()

	cartService := service.NewCartService(
		store, catalog, catalog,
		notify.NewLogNotifier(logger),
		logger,
		service.WithKeyPrefix(cfg.Cart.KeyPrefix),
	)

	// gRPC health
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	checker := handler.NewHealthChecker(healthServer, map[string]handler.Pinger{
		"cart-store": store,
		"catalog":    catalog,
	}, logger)

	lis, err := net.Listen("tcp", cfg.GRPC.Port)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	// HTTP API
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Port,
		Handler:           handler.NewHTTPHandler(cartService, logger, cfg.HTTP.SecureCookie).Routes(),
		ReadHeaderTimeout: cfg.HTTP.Timeout,
		WriteTimeout:      cfg.HTTP.Timeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPC.Port))
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Port))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		checker.Run(gctx, healthInterval)
		return nil
	})

	g.Go(func() error {
		cartService.RunEviction(gctx, cfg.Cart.EvictInterval, cfg.Cart.IdleTimeout)
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown", zap.Error(err))
		}
		logger.Info("HTTP server stopped")

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")
		return nil
	})

	return g.Wait()
}

func openCartStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cartStore, func(), error) {
	if cfg.Cart.Store == config.StoreMemory {
		logger.Warn("using in-memory cart store; carts are lost on restart")
		return storage.NewMemoryStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	return storage.NewRedisAdapter(rdb, cfg.Cart.TTL), func() { rdb.Close() }, nil
}

func openCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (catalogSource, func(), error) {
	if cfg.Catalog.Mode == config.CatalogHTTP {
		logger.Info("using REST catalog", zap.String("base_url", cfg.Catalog.BaseURL))
		return client.NewHTTPCatalog(cfg.Catalog.BaseURL, cfg.Catalog.Timeout), func() {}, nil
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping mysql: %w", err)
	}
	logger.Info("connected to mysql")

	return storage.NewMySQLAdapter(db), func() { db.Close() }, nil
}
