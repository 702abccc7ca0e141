package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dejobratic/orderflow/internal/clock"
	"github.com/dejobratic/orderflow/internal/config"
	"github.com/dejobratic/orderflow/internal/database"
	"github.com/dejobratic/orderflow/internal/jobs"
	"github.com/dejobratic/orderflow/internal/messaging"
	messagingmemory "github.com/dejobratic/orderflow/internal/messaging/memory"
	"github.com/dejobratic/orderflow/internal/messaging/rabbitmq"
	"github.com/dejobratic/orderflow/internal/orders/adapters"
	httpadapter "github.com/dejobratic/orderflow/internal/orders/adapters/http"
	ordersmemory "github.com/dejobratic/orderflow/internal/orders/adapters/memory"
	"github.com/dejobratic/orderflow/internal/orders/adapters/payments"
	orderspostgres "github.com/dejobratic/orderflow/internal/orders/adapters/postgres"
	ordersapp "github.com/dejobratic/orderflow/internal/orders/app"
	"github.com/dejobratic/orderflow/internal/orders/domain"
	ordersmetrics "github.com/dejobratic/orderflow/internal/orders/metrics"
	"github.com/dejobratic/orderflow/internal/orders/ports"
	"github.com/dejobratic/orderflow/internal/telemetry"
)

const meterName = "github.com/dejobratic/orderflow"

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, err := telemetry.ParseLevel(cfg.Telemetry.LogLevel)
	if err != nil {
		slog.Warn("falling back to info log level", "error", err)
	}
	logger := telemetry.NewLogger(level, slog.String("service", cfg.Service.Name))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		OTLPInsecure:   cfg.Telemetry.OTelInsecure,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	meter := tel.Meter(meterName)
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		return err
	}
	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return err
	}
	msgMetrics, err := messaging.NewMetrics(meter)
	if err != nil {
		return err
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		return err
	}

	clk := clock.NewSystem()
	repo, pool, err := openRepository(ctx, cfg.Database, clk, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
		if err := dbMetrics.ObservePool(pool); err != nil {
			return err
		}
	}
	observedRepo := adapters.NewObservableRepository(repo, dbMetrics)

	scheduler := messaging.NewScheduler(cfg.Messaging.Workers, logger, messaging.WithMetrics(msgMetrics))
	created, confirmed, closeTopics, err := openTopics(ctx, cfg.Messaging, scheduler, logger)
	if err != nil {
		return err
	}
	defer closeTopics()
	events := adapters.NewObservableEventBus(adapters.NewTopicEventBus(created, confirmed), msgMetrics)

	gateway := adapters.NewObservablePaymentGateway(
		payments.NewClient(cfg.Payments.BaseURL, cfg.Payments.Timeout),
		orderMetrics,
	)

	service := ordersapp.NewService(ordersapp.Dependencies{
		Repo:    observedRepo,
		Events:  events,
		Gateway: gateway,
		Clock:   clk,
		Logger:  logger,
		Metrics: orderMetrics,
	}, ordersapp.Config{
		PaymentMethodToken: cfg.Payments.MethodToken,
		DeliveryDelay:      cfg.Workflow.DeliveryDelay,
	})
	if err := service.Start(ctx); err != nil {
		return fmt.Errorf("start order pipeline: %w", err)
	}

	reporter := jobs.NewStaleOrderReporter(observedRepo, clk, cfg.Workflow.StaleThreshold, orderMetrics, logger)
	if err := reporter.Start(cfg.Workflow.StaleSchedule); err != nil {
		return err
	}

	router := mux.NewRouter()
	router.Use(
		httpadapter.WithRecovery(logger),
		httpadapter.WithLogging(logger),
		httpadapter.WithMetrics(httpMetrics),
	)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := database.CheckHealth(r.Context(), pool); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}).Methods(http.MethodGet)
	httpadapter.NewHandler(service).Register(router)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
		AllowedHeaders: []string{"Content-Type"},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           otelhttp.NewHandler(corsHandler.Handler(router), "orderflow-api"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownGrace)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		} else {
			logger.Info("http server stopped")
		}
		reporter.Stop(shutdownCtx)
		if err := scheduler.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("event scheduler shutdown: %w", err))
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func openRepository(
	ctx context.Context,
	cfg config.DatabaseConfig,
	clk clock.Clock,
	logger *slog.Logger,
) (ports.OrderRepository, *pgxpool.Pool, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Warn("using in-memory order store; orders are lost on restart")
		return ordersmemory.NewRepository(ordersmemory.WithClock(clk)), nil, nil
	}

	pool, err := database.NewPool(ctx, cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("create database pool: %w", err)
	}

	if cfg.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.MigrationsPath)
		if err := database.RunMigrations(cfg.URL, cfg.MigrationsPath, logger); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return orderspostgres.NewRepository(pool, orderspostgres.WithClock(clk)), pool, nil
}

func openTopics(
	ctx context.Context,
	cfg config.MessagingConfig,
	scheduler *messaging.Scheduler,
	logger *slog.Logger,
) (messaging.Topic[domain.OrderCreated], messaging.Topic[domain.OrderConfirmed], func(), error) {
	if cfg.Driver == config.DriverMemory {
		return messagingmemory.NewTopic[domain.OrderCreated](domain.TopicOrderCreated, scheduler),
			messagingmemory.NewTopic[domain.OrderConfirmed](domain.TopicOrderConfirmed, scheduler),
			func() {},
			nil
	}

	conn, err := rabbitmq.Dial(ctx, cfg.URL, cfg.Exchange, cfg.DialAttempts, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	closeConn := func() {
		if err := conn.Close(); err != nil {
			logger.Warn("failed to close rabbitmq connection", "error", err)
		}
	}

	return rabbitmq.NewTopic[domain.OrderCreated](conn, domain.TopicOrderCreated, scheduler, logger),
		rabbitmq.NewTopic[domain.OrderConfirmed](conn, domain.TopicOrderConfirmed, scheduler, logger),
		closeConn,
		nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
