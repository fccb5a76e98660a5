package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/app"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/clock"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/config"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/internal/storage/postgres"
	transporthttp "github.com/Andrew-C-BOS/WilsonTool-sub004/internal/transport/http"
	"github.com/Andrew-C-BOS/WilsonTool-sub004/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	caps, err := config.LoadCapTable(cfg.CapTablePath)
	if err != nil {
		log.Fatal().Err(err).Msg("load cap table")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatal().Err(err).Msg("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	clk := clock.NewSystem()
	appRepo := postgres.NewApplicationRepository(pool)
	holdingRepo := postgres.NewHoldingRepository(pool)
	directory := postgres.NewDirectoryRepository(pool)
	intakeRepo := postgres.NewIntakeRepository(pool)

	stateMachine := app.NewApplicationStateMachine(appRepo, clk, log)
	holdings := app.NewHoldingRequestManager(holdingRepo, clk, log)
	setup := app.NewHoldSetupService(directory, directory, holdings, stateMachine, caps, log)
	reconciler := app.NewPaymentEventReconciler(holdings, stateMachine, log)
	intake := app.NewIntakeService(intakeRepo, clk)

	handler := transporthttp.NewRouter(transporthttp.RouterDeps{
		Setup:       setup,
		Holdings:    holdings,
		Payments:    reconciler,
		Intake:      intake,
		CORSOrigins: cfg.CORSOriginList(),
		Logger:      log,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Info().Str("port", cfg.Port).Msg("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	case <-stopCtx.Done():
		log.Info().Msg("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server stopped")
}
