// Package server wires the GophAuth server together: storage, the signing
// key store and its sweeper, the TOTP engine, metrics and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/keystore"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/passwords"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/totp"
	"github.com/dmitrijs2005/gophauth/internal/tasks"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	keys         *keystore.Store
	metrics      *metrics.Metrics
	authService  *services.AuthService
	secondFactor *services.SecondFactorService
}

func NewApp(c *config.Config) (*App, error) {

	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger}

	repos, err := app.initRepositories(context.Background())
	if err != nil {
		return nil, err
	}

	app.keys = keystore.New()

	app.metrics, err = metrics.New(app.keys.Len)
	if err != nil {
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	window := c.TOTPWindow
	if window < 0 {
		window = 0
	}
	if window > totp.MaxWindow {
		return nil, fmt.Errorf("totp window %d exceeds %d steps", window, totp.MaxWindow)
	}
	engine := totp.NewEngine(
		totp.WithIssuer(c.TOTPIssuer),
		totp.WithWindow(uint64(window)),
		totp.WithCacheSize(c.OTPCacheSize),
	)
	issuer := credentials.NewIssuer(app.keys)

	opts := []services.Option{services.WithLogger(logger), services.WithMetrics(app.metrics)}
	app.authService = services.NewAuthService(repos, services.NewPasswordAuthenticator(repos, passwords.Default), issuer, engine, c, opts...)
	app.secondFactor = services.NewSecondFactorService(repos, engine, opts...)

	return app, nil
}

// initRepositories opens PostgreSQL and applies migrations when a DSN is
// configured, otherwise keeps profiles in memory.
func (app *App) initRepositories(ctx context.Context) (repomanager.RepositoryManager, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "No database DSN configured, profiles are kept in memory")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := m.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app.db = db
	return m, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// sweepKeys drops signing keys older than KeyMaxAge.
func (app *App) sweepKeys(ctx context.Context) error {
	start := time.Now()
	n := app.keys.Sweep(app.config.KeyMaxAge)
	app.metrics.Swept(n, time.Since(start))
	if n > 0 {
		app.logger.Info(ctx, "Swept signing keys", "removed", n, "remaining", app.keys.Len())
	}
	return nil
}

func (app *App) startSweeper(ctx context.Context) *tasks.Handle {
	if app.config.SweepInterval <= 0 {
		app.logger.Warn(ctx, "Key sweep disabled")
		return nil
	}
	return tasks.Every(ctx, app.config.SweepInterval, app.sweepKeys, func(err error) {
		app.logger.Error(ctx, "key sweep failed", "error", err)
	})
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService, app.secondFactor, app.metrics, app.config.FederationKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())
	srv := &http.Server{Addr: app.config.EndpointAddrMetrics, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.EndpointAddrMetrics)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	sweeper := app.startSweeper(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrMetrics != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if sweeper != nil {
		sweeper.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "error closing database", "error", err)
		}
	}

	app.logger.Info(ctx, "App stopped")
}
