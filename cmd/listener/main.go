// The listener daemon subscribes to the alert subject on NATS and runs
// every inbound alert through triage, agent enrichment, and the
// append-only history log.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/threatsentry/threatsentry/internal/agent"
	"github.com/threatsentry/threatsentry/internal/config"
	"github.com/threatsentry/threatsentry/internal/history"
	"github.com/threatsentry/threatsentry/internal/intel"
	"github.com/threatsentry/threatsentry/internal/listener"
	"github.com/threatsentry/threatsentry/internal/tools"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	if err := run(logger); err != nil {
		logger.Fatal("listener exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := history.NewFileStore(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("alert log open", zap.String("path", cfg.HistoryPath))

	geo := intel.NewGeoClient(cfg.IPInfoKey)
	vt := intel.NewVTClient(cfg.VirusTotalKey)

	factory, err := agent.NewFactory(ctx, cfg, tools.All(geo, vt, vt), logger)
	if err != nil {
		return err
	}
	enricher, err := factory.ReAct()
	if err != nil {
		return err
	}

	if cfg.MetricsPort > 0 {
		go serveMetrics(cfg.MetricsPort, logger)
	}

	l := listener.New(cfg, store, enricher, logger)
	if err := l.Run(ctx); err != nil {
		return err
	}

	logger.Info("listener stopped")
	return nil
}

// serveMetrics exposes the Prometheus scrape endpoint for the daemon.
func serveMetrics(port int, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("metrics listening", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics listen error", zap.Error(err))
	}
}
