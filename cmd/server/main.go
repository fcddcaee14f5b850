package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/dgallion1/adocgest/internal/api"
	"github.com/dgallion1/adocgest/internal/config"
	"github.com/dgallion1/adocgest/internal/convert"
	"github.com/dgallion1/adocgest/internal/metrics"
	"github.com/dgallion1/adocgest/internal/pipeline"
	"github.com/dgallion1/adocgest/internal/publish"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Debug("maxprocs", "msg", format, "args", args)
	})); err != nil {
		log.Warn("set GOMAXPROCS", "error", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.LoadAttributes(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		rec            metrics.Recorder = metrics.NoopRecorder{}
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		reg := prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	var (
		pub       pipeline.Publisher
		pubClient *publish.Client
	)
	if cfg.PublishURL != "" {
		pubClient = publish.NewClient(cfg.PublishURL, cfg.PublishAPIKey)
		pub = pubClient
	}

	// Initialize pipeline.
	conv := convert.New(log)
	orch := pipeline.NewOrchestrator(cfg, conv, pub, rec, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, metricsHandler, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if pubClient != nil {
			pubClient.Close()
		}
	}()

	log.Info("starting adocgest",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"publish", cfg.PublishURL != "",
		"default_attributes", len(cfg.Attributes),
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
