package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/clinic-booking-webhook/cmd/mainconfig"
	"github.com/wolfman30/clinic-booking-webhook/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-booking-webhook/internal/config"
	"github.com/wolfman30/clinic-booking-webhook/internal/notify"
	"github.com/wolfman30/clinic-booking-webhook/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

func main() {
	mainconfig.LoadEnv()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.NotifyQueueURL == "" {
		logger.Error("notification worker requires NOTIFY_QUEUE_URL")
		os.Exit(1)
	}

	awsConfig, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	deliverer := bootstrap.BuildDeliverer(cfg, awsConfig, redisClient, metrics.NewFulfillmentMetrics(prometheus.NewRegistry()), logger)
	queue := notify.NewSQSQueue(sqs.NewFromConfig(awsConfig), cfg.NotifyQueueURL)
	worker := notify.NewWorker(
		deliverer,
		queue,
		logger,
		notify.WithWorkerCount(cfg.NotifyWorkers),
	)

	worker.Start(ctx)
	logger.Info("notification worker started", "workers", cfg.NotifyWorkers)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down notification worker...")
	cancel()

	doneCtx, doneCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer doneCancel()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Info("notification worker stopped")
	case <-doneCtx.Done():
		logger.Error("notification worker shutdown timed out", "error", doneCtx.Err())
	}
}
