package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-booking-webhook/cmd/mainconfig"
	"github.com/wolfman30/clinic-booking-webhook/internal/api/router"
	"github.com/wolfman30/clinic-booking-webhook/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-booking-webhook/internal/config"
	"github.com/wolfman30/clinic-booking-webhook/internal/fees"
	"github.com/wolfman30/clinic-booking-webhook/internal/fulfillment"
	"github.com/wolfman30/clinic-booking-webhook/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking-webhook/internal/webhook"
	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

func main() {
	mainconfig.LoadEnv()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic booking webhook",
		"env", cfg.Env,
		"port", cfg.Port,
		"catalog_source", cfg.CatalogSource,
		"notify_mode", cfg.NotifyMode,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler, notifications, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Stop async workers only after in-flight requests have enqueued.
	cancel()
	notifications.Wait()

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, *bootstrap.Notifications, error) {
	var awsCfg aws.Config
	if mainconfig.NeedsAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = loaded
	}

	dir, err := bootstrap.LoadCatalog(ctx, cfg, awsCfg, logger)
	if err != nil {
		return nil, nil, err
	}

	metricsHandler, fulfillmentMetrics := setupMetrics(cfg)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	notifications, err := bootstrap.BuildNotifications(ctx, cfg, awsCfg, redisClient, fulfillmentMetrics, logger)
	if err != nil {
		return nil, nil, err
	}

	dispatcher := fulfillment.New(
		dir,
		fees.NewCalculator(cfg.RecognizedInsurers),
		notifications.Service,
		logger,
		fulfillment.WithMetrics(fulfillmentMetrics),
		fulfillment.WithClinicName(cfg.ClinicName),
		fulfillment.WithCountryCode(cfg.PhoneCountryCode),
	)

	handler := router.New(&router.Config{
		Logger:         logger,
		Webhook:        webhook.NewHandler(dispatcher, logger),
		MetricsHandler: metricsHandler,
	})
	return handler, notifications, nil
}

// setupMetrics uses a private registry so tests can build the app repeatedly.
func setupMetrics(cfg *appconfig.Config) (http.Handler, *metrics.FulfillmentMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewFulfillmentMetrics(reg)
	if !cfg.MetricsEnabled {
		return nil, m
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}
