package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/legalmind/legalmind/internal/adapters/http"
	"github.com/legalmind/legalmind/internal/bootstrap"
	"github.com/legalmind/legalmind/internal/config"
	"github.com/legalmind/legalmind/internal/core/ports"
	"github.com/legalmind/legalmind/internal/observability/logging"
	"github.com/legalmind/legalmind/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverMetrics := metrics.NewHTTPServerMetrics("api")
	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Hooks{
		OnLexicalRebuild: func() { serverMetrics.RecordLexicalRebuild("api") },
		OnExpansionFallback: func(stage string) {
			serverMetrics.RecordExpansionFallback("api", stage)
		},
		OnRerankFallback: func() { serverMetrics.RecordRerankFallback("api") },
	})
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(
		app.IngestUC,
		app.Repo,
		app.Retriever,
		ports.RetrieveOptions{
			UseHyde:       cfg.HydeEnabled,
			UseMultiQuery: cfg.MultiQueryEnabled,
		},
		serverMetrics,
		logger,
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", "error", err)
	}
}
