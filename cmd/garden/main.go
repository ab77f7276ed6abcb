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

	"go.uber.org/zap"

	"github.com/kailas-cloud/garden/internal/app"
	"github.com/kailas-cloud/garden/internal/config"
	logpkg "github.com/kailas-cloud/garden/internal/logger"
	"github.com/kailas-cloud/garden/internal/metrics"
	chiTransport "github.com/kailas-cloud/garden/internal/transport/chi"
	healthuc "github.com/kailas-cloud/garden/internal/usecase/health"
	searchuc "github.com/kailas-cloud/garden/internal/usecase/search"
	usageuc "github.com/kailas-cloud/garden/internal/usecase/usage"
	"github.com/kailas-cloud/garden/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting garden API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	ctx := context.Background()
	storage, err := app.OpenStorage(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer storage.Close()
	logger.Info("Connected to storage")

	// Explicit registration, no init()
	metrics.RegisterCompletionMetrics()
	metrics.RegisterSearchMetrics()

	comp := app.BuildCompletion(ctx, cfg.Completion, storage.KV, logger)
	if !comp.HasProvider() {
		logger.Warn("No completion provider configured, every search uses local scores")
	}
	if comp.Budget != nil && storage.KV == nil {
		logger.Warn("Budget counters are kept in memory and reset on restart",
			zap.String("storage_driver", cfg.Storage.Driver))
	}

	searchSvc := searchuc.New(storage.Content, comp.Generator, app.SearchOptions(cfg.Search), logger)

	// A nil *BudgetTracker inside the interface would not compare equal to nil.
	var budgetReader usageuc.BudgetReader
	if comp.Budget != nil {
		budgetReader = comp.Budget
	}
	usageSvc := usageuc.New(budgetReader)
	healthSvc := healthuc.New(storage.Content, comp.Checkers)

	server := chiTransport.NewServer(searchSvc, usageSvc, healthSvc, logger).
		WithDefaultLimit(cfg.Search.DefaultLimit)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:        cfg.Auth.APIKeys,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
