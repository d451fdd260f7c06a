package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/libraria-backend/api/controllers"
	"github.com/angelmondragon/libraria-backend/api/routes"
	"github.com/angelmondragon/libraria-backend/internal/users"
	"github.com/angelmondragon/libraria-backend/pkg/config"
	"github.com/angelmondragon/libraria-backend/pkg/db"
	"github.com/angelmondragon/libraria-backend/pkg/directory"
	"github.com/angelmondragon/libraria-backend/pkg/logger"
	"github.com/angelmondragon/libraria-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "users-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "users-api",
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

	// The loan orchestrator is optional here: user stats degrade to zero
	// active loans when it is not configured.
	var loansClient users.LoanService
	if cfg.Directory.LoanServiceURL != "" {
		client, err := directory.NewLoansClient(cfg.Directory.LoanServiceURL, directory.WithTimeout(cfg.Directory.CallTimeout))
		if err != nil {
			logg.Error(context.Background(), "failed to create loans directory client", err)
			os.Exit(1)
		}
		loansClient = client
	}

	userService, err := users.NewService(users.NewRepository(dbClient.DB()), loansClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
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
	logg.Info(ctx, "starting users api server")

	deps := map[string]controllers.Pinger{"database": dbClient}
	server := &http.Server{
		Addr:    addr,
		Handler: routes.UsersRouter(cfg, logg, userService, nil, deps),
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
			logg.Error(ctx, "users api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "users api shutdown failed", err)
		}
	}
	logg.Info(ctx, "users api server stopped")
}
