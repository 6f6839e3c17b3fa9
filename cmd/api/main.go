package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cimillas/ticket-sale/internal/app"
	"github.com/cimillas/ticket-sale/internal/auth"
	"github.com/cimillas/ticket-sale/internal/clock"
	"github.com/cimillas/ticket-sale/internal/config"
	"github.com/cimillas/ticket-sale/internal/storage/memory"
	"github.com/cimillas/ticket-sale/internal/storage/postgres"
	transporthttp "github.com/cimillas/ticket-sale/internal/transport/http"
	"github.com/cimillas/ticket-sale/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/pflag"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// store is everything the services need from a backend.
type store interface {
	app.SaleRepository
	app.AdminRepository
	app.QueryRepository
	app.AccountRepository
	app.BootstrapRepository
}

func main() {
	fs := pflag.NewFlagSet("api", pflag.ExitOnError)
	port := fs.String("port", "", "listen port (overrides PORT)")
	storeKind := fs.String("store", "", "storage backend: memory or postgres (overrides STORE)")
	catalog := fs.String("catalog", "", "YAML sale catalog (overrides CATALOG_FILE)")
	_ = fs.Parse(os.Args[1:])

	envPath, envErr := config.LoadEnvFile()

	getenv := func(key string) string {
		switch {
		case key == "PORT" && fs.Changed("port"):
			return *port
		case key == "STORE" && fs.Changed("store"):
			return *storeKind
		}
		return os.Getenv(key)
	}
	cfg, err := config.Load(getenv, *catalog)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	switch {
	case envErr != nil:
		logger.Warn("failed to load .env", "err", envErr)
	case envPath == "":
		logger.Warn(".env not found in current or parent directories")
	default:
		logger.Info("loaded env", "path", envPath)
	}
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	st, closeStore, err := openStore(startupCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := app.Bootstrap(startupCtx, st, app.BootstrapInput{
		Authority: cfg.Authority,
		BaseURI:   cfg.BaseURI,
		Tiers:     cfg.Tiers,
		Decimals:  cfg.Decimals,
		Accounts:  cfg.Accounts,
	}, logger); err != nil {
		return err
	}

	tokens, err := auth.New(cfg.JWTSecret)
	if err != nil {
		return err
	}

	clk := clock.NewSystem()
	handler := transporthttp.NewRouter(transporthttp.Services{
		Reader:   app.NewQueryService(st),
		Sales:    app.NewSaleService(st, clk, app.WithSaleLogger(logger)),
		Admin:    app.NewAdminService(st, clk, app.WithAdminLogger(logger)),
		Accounts: app.NewAccountService(st),
		Tokens:   tokens,
	}, transporthttp.RouterOptions{
		Decimals:      cfg.Decimals,
		FaucetEnabled: cfg.FaucetEnabled,
		CORSOrigins:   cfg.CORSOrigins,
		Logger:        logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("api listening",
		"port", cfg.Port,
		"store", cfg.Store,
		"faucet", cfg.FaucetEnabled,
	)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "err", err)
	}
	logger.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("using in-memory store, state is lost on restart")
		return memory.New(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("db ping: %w", err)
	}
	applied, err := migrations.Apply(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", "names", applied)
	}
	return postgres.NewStore(pool), pool.Close, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
