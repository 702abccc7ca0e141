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

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/dejobratic/orderflow/internal/config"
	httpadapter "github.com/dejobratic/orderflow/internal/orders/adapters/http"
	"github.com/dejobratic/orderflow/internal/payments"
	"github.com/dejobratic/orderflow/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadPaymentsServer()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, err := telemetry.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Warn("falling back to info log level", "error", err)
	}
	logger := telemetry.NewLogger(level, slog.String("service", cfg.ServiceName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.PaymentsServerConfig, logger *slog.Logger) error {
	meter := otel.Meter("github.com/dejobratic/orderflow/payments")
	paymentMetrics, err := payments.NewMetrics(meter)
	if err != nil {
		return err
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		return err
	}

	router := mux.NewRouter()
	router.Use(
		httpadapter.WithRecovery(logger),
		httpadapter.WithLogging(logger),
		httpadapter.WithMetrics(httpMetrics),
	)
	payments.NewHandler(payments.NewProcessor(logger, payments.WithMetrics(paymentMetrics))).Register(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("payments server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
