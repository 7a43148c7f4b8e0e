package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ficsure/quote-service/internal/application/services"
	"github.com/ficsure/quote-service/internal/breaker"
	"github.com/ficsure/quote-service/internal/clock"
	"github.com/ficsure/quote-service/internal/config"
	"github.com/ficsure/quote-service/internal/infrastructure/events"
	"github.com/ficsure/quote-service/internal/infrastructure/memory"
	"github.com/ficsure/quote-service/internal/infrastructure/metrics"
	"github.com/ficsure/quote-service/internal/infrastructure/pricing"
	"github.com/ficsure/quote-service/internal/interfaces/rest/handlers"
	"github.com/ficsure/quote-service/internal/interfaces/rest/middleware"
	"github.com/ficsure/quote-service/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting quote service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	clk := clock.NewSystem()
	registry := metrics.NewRegistry()

	quoteStore := memory.NewQuoteStore()
	idempotencyStore := memory.NewIdempotencyStore(cfg.Idempotency.TTL, clk)

	pricingBreaker := breaker.New("pricing", breaker.Config{
		Timeout:                  cfg.Breaker.Timeout,
		ErrorThresholdPercentage: cfg.Breaker.ErrorThresholdPercentage,
		ResetTimeout:             cfg.Breaker.ResetTimeout,
		VolumeThreshold:          cfg.Breaker.VolumeThreshold,
	},
		breaker.WithClock(clk),
		breaker.OnStateChange(func(name string, from, to breaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
			registry.BreakerStateChanged(to.String())
		}),
	)

	pricingClient := pricing.NewSimulatedClient(cfg.Pricing)
	resilientPricer := pricing.NewResilientClient(pricingClient, pricingBreaker, logger)

	publisher := events.NewPublisher(cfg.Events.BufferSize, logger)

	quoteService := services.NewQuoteService(
		quoteStore,
		idempotencyStore,
		resilientPricer,
		publisher,
		registry,
		clk,
		logger,
		cfg.Idempotency.EnforceRequestHash,
	)

	h := handlers.NewQuoteHandler(quoteService, registry)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	router := http.Handler(mux)

	handler := middleware.Recovery(logger)(router)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	evictionWorker := worker.NewEvictionWorker(
		idempotencyStore,
		cfg.Worker.Interval,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go publisher.Start(workerCtx)
	go evictionWorker.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
