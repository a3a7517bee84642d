package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpadapter "github.com/PabloGalante/vibe-agent/internal/adapters/http"
	"github.com/PabloGalante/vibe-agent/internal/bootstrap"
	"github.com/PabloGalante/vibe-agent/internal/config"
	"github.com/PabloGalante/vibe-agent/internal/observability"
	"github.com/PabloGalante/vibe-agent/internal/workers"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		observability.Logger().Error("vibe-api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	observability.SetLevel(cfg.LogLevel)
	observability.InitMetrics()
	log := observability.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:  "vibe-api",
		Exporter:     cfg.TraceExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		return err
	}

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}

	pool := workers.NewWorkerPool(cfg.TurnWorkers)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpadapter.NewServer(app.Chat, app.Reports, pool, cfg.APIKey),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := app.Scheduler.Start(ctx, cfg.SweepSchedule, cfg.ReminderSchedule); err != nil {
		_ = app.Close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Vibe API listening", "port", cfg.Port, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		pool.Stop()
		app.Scheduler.Stop(shutdownCtx)
		if tErr := shutdownTracing(shutdownCtx); tErr != nil {
			log.Warn("tracing shutdown failed", "error", tErr)
		}
		return err
	})

	err = g.Wait()
	if cErr := app.Close(); cErr != nil {
		log.Warn("closing backends failed", "error", cErr)
	}
	return err
}
