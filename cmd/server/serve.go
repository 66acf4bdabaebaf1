package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/adapter/events"
	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/handler/adminrpc"
	"github.com/rl1809/storefront/internal/adapter/metrics"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/port"
)

const shutdownTimeout = 5 * time.Second

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP and gRPC servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	cmd.Flags().StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC listen address")
	cmd.Flags().StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address; empty keeps sessions in memory")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	inventory, closeStore, err := openSeededInventory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	var publisher port.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		slog.Info("publishing events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		publisher = events.NewLogPublisher(slog.Default())
	}

	// Initialize services
	dispatcher := service.NewEventDispatcher(publisher, cfg.EventQueueSize)
	dispatcher.Start(cfg.EventWorkers)
	slog.Info("started event workers", "count", cfg.EventWorkers)

	inventoryService := service.NewInventoryService(inventory, dispatcher)
	cartService := service.NewCartService(inventory, cfg.ShippingFeePerUnit)
	checkoutService := service.NewCheckoutService(inventory, dispatcher, cfg.ShippingFeePerUnit)
	collector := metrics.NewCollector()

	// Initialize gRPC server
	grpcServer := grpc.NewServer()
	adminrpc.RegisterAdminServiceServer(grpcServer, handler.NewGRPCHandler(inventoryService, collector))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}

	go func() {
		slog.Info("gRPC server listening", "addr", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC server error", "err", err)
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(inventoryService, cartService, checkoutService, sessions, collector, cfg.SessionTTL)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpHandler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "err", err)
		}
	}()

	// Graceful shutdown
	quit, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-quit.Done()

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown", "err", err)
	}
	slog.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	slog.Info("gRPC server stopped")

	// Drain pending events before closing the publisher
	dispatcher.Close()
	if err := publisher.Close(); err != nil {
		slog.Error("close publisher", "err", err)
	}
	slog.Info("event workers stopped")

	return nil
}

// openInventory connects the configured store. The returned func releases it.
func openInventory(ctx context.Context, cfg config.Config) (port.InventoryRepository, func(), error) {
	switch cfg.Driver {
	case storage.DriverMySQL:
		db, err := sqlx.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping mysql: %w", err)
		}
		slog.Info("connected to mysql")
		return storage.NewMySQLAdapter(db), func() { db.Close() }, nil

	case storage.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		slog.Info("connected to postgres")
		return storage.NewPostgresAdapter(pool), pool.Close, nil

	case storage.DriverMemory:
		return storage.NewMemoryAdapter(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// openSeededInventory opens the store and loads cfg.SeedCatalog into it.
func openSeededInventory(ctx context.Context, cfg config.Config) (port.InventoryRepository, func(), error) {
	inventory, closeStore, err := openInventory(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.SeedCatalog == "" {
		if cfg.Driver == storage.DriverMemory {
			slog.Warn("memory store started empty; pass --seed to load a catalog")
		}
		return inventory, closeStore, nil
	}

	if err := seedCatalog(ctx, inventory, cfg.SeedCatalog); err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("seed %s: %w", cfg.SeedCatalog, err)
	}
	return inventory, closeStore, nil
}

func openSessions(ctx context.Context, cfg config.Config) (port.SessionRepository, func(), error) {
	if cfg.RedisAddr == "" {
		slog.Warn("no redis address; sessions are kept in memory")
		return storage.NewMemorySessionStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	slog.Info("connected to redis", "addr", cfg.RedisAddr)
	return storage.NewRedisAdapter(rdb, cfg.SessionTTL), func() { rdb.Close() }, nil
}
