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

	"github.com/SscSPs/banking_ledger/internal/core/services"
	"github.com/SscSPs/banking_ledger/internal/core/uow"
	"github.com/SscSPs/banking_ledger/internal/handlers"
	"github.com/SscSPs/banking_ledger/internal/platform/config"
	"github.com/SscSPs/banking_ledger/internal/platform/logging"
	"github.com/SscSPs/banking_ledger/internal/platform/telemetry"
	"github.com/SscSPs/banking_ledger/internal/repositories/cache"
	"github.com/SscSPs/banking_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/banking_ledger/internal/rpc"
	"github.com/SscSPs/banking_ledger/pkg/database"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	_, shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Insecure:     !cfg.IsProduction,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("Failed to flush traces", slog.String("error", err.Error()))
		}
	}()

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database pool: %w", err)
	}
	defer database.ClosePgxPool(pool, logger)
	db := database.OpenDB(pool)
	defer db.Close()

	if cfg.RunMigrations {
		logger.Info("Running database migrations")
		if err := database.RunMigrations(db, logger); err != nil {
			return err
		}
	}

	policy := uow.Policy{
		MaxAttempts: cfg.TxMaxAttempts,
		BaseDelay:   cfg.TxRetryBaseDelay,
		MaxDelay:    cfg.TxRetryMaxDelay,
	}
	repos := pgsql.NewRepositoryProvider(db, policy)

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		repos.BalanceCache = cache.NewRedisBalanceCache(client, cache.Options{TTL: cfg.BalanceCacheTTL})
		logger.Info("Balance cache enabled", slog.Duration("ttl", cfg.BalanceCacheTTL))
	} else {
		logger.Warn("REDIS_URL not set, balances are always read from the database")
	}

	container := services.NewContainer(repos,
		services.WithLogger(logger),
		services.WithRetryPolicy(policy),
		services.WithFastTransferTimeout(cfg.FastTransferTimeout),
	)

	router, err := handlers.NewRouter(cfg, container, logger)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcServer := rpc.NewServer(container, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", slog.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		logger.Info("gRPC server starting", slog.String("port", cfg.GRPCPort))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		err := httpServer.Shutdown(shutdownCtx)
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Servers stopped")
	return nil
}
