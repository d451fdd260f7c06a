package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/libraria-backend/api/controllers"
	"github.com/angelmondragon/libraria-backend/api/routes"
	"github.com/angelmondragon/libraria-backend/internal/loans"
	"github.com/angelmondragon/libraria-backend/pkg/config"
	"github.com/angelmondragon/libraria-backend/pkg/db"
	"github.com/angelmondragon/libraria-backend/pkg/directory"
	"github.com/angelmondragon/libraria-backend/pkg/logger"
	"github.com/angelmondragon/libraria-backend/pkg/metrics"
	"github.com/angelmondragon/libraria-backend/pkg/migrate"
	"github.com/angelmondragon/libraria-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "loans-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "loans-api",
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

	var store redis.IdempotencyStore
	deps := map[string]controllers.Pinger{"database": dbClient}
	if cfg.FeatureFlags.Idempotency {
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
		store = redisClient
		deps["redis"] = redisClient
	}

	usersClient, err := directory.NewUsersClient(cfg.Directory.UserServiceURL, directory.WithTimeout(cfg.Directory.CallTimeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create users directory client", err)
		os.Exit(1)
	}

	booksClient, err := directory.NewBooksClient(cfg.Directory.BookServiceURL, cfg.Directory.BatchFanout, directory.WithTimeout(cfg.Directory.CallTimeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create books directory client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	loanMetrics := metrics.NewLoanMetrics(registry)

	loanService, err := loans.NewService(
		loans.NewRepository(dbClient.DB()),
		usersClient,
		booksClient,
		logg,
		loanMetrics,
		cfg.Loan.Period(),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create loan service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting loans api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.LoansRouter(cfg, logg, loanService, store, registry, deps),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "loans api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "loans api shutdown failed", err)
		}
	}
	logg.Info(ctx, "loans api server stopped")
}
