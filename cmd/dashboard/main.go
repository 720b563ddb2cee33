// The dashboard serves the operator UI: ad-hoc agent queries and a view
// over the append-only alert history.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/threatsentry/threatsentry/internal/agent"
	"github.com/threatsentry/threatsentry/internal/config"
	"github.com/threatsentry/threatsentry/internal/dashboard"
	"github.com/threatsentry/threatsentry/internal/history"
	"github.com/threatsentry/threatsentry/internal/intel"
	"github.com/threatsentry/threatsentry/internal/tools"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	if err := run(logger); err != nil {
		logger.Fatal("dashboard exited with error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	store, err := history.NewFileStore(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	geo := intel.NewGeoClient(cfg.IPInfoKey)
	vt := intel.NewVTClient(cfg.VirusTotalKey)

	factory, err := agent.NewFactory(context.Background(), cfg, tools.All(geo, vt, vt), logger)
	if err != nil {
		return err
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := dashboard.NewServer(cfg, store, factory, logger)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.DashboardPort),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("dashboard listening", zap.Int("port", cfg.DashboardPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP listen error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down dashboard...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("dashboard stopped")
	return nil
}
