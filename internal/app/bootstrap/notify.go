package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/clinic-booking-webhook/internal/config"
	"github.com/wolfman30/clinic-booking-webhook/internal/messaging"
	"github.com/wolfman30/clinic-booking-webhook/internal/notify"
	"github.com/wolfman30/clinic-booking-webhook/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

// Notification modes.
const (
	NotifyModeInline = "inline"
	NotifyModeAsync  = "async"
	NotifyModeSQS    = "sqs"
)

// BuildEmailSender picks the email transport. "auto" prefers SendGrid, then
// SES, then SMTP, and falls back to a logging stub.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (notify.EmailSender, string) {
	if logger == nil {
		logger = logging.Default()
	}
	provider := cfg.EmailProvider
	if provider == "" || provider == "auto" {
		switch {
		case cfg.SendGridAPIKey != "":
			provider = "sendgrid"
		case cfg.SESFromEmail != "":
			provider = "ses"
		case cfg.SMTPHost != "":
			provider = "smtp"
		default:
			provider = "none"
		}
	}

	switch provider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  senderName(cfg),
		}, logger); sender != nil {
			return sender, provider
		}
	case "ses":
		if cfg.SESFromEmail != "" {
			client := sesv2.NewFromConfig(awsCfg)
			return notify.NewSESSender(client, notify.SESConfig{
				FromEmail: cfg.SESFromEmail,
				FromName:  senderName(cfg),
			}, logger), provider
		}
	case "smtp":
		if sender := notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: senderName(cfg),
		}, logger); sender != nil {
			return sender, provider
		}
	case "none":
	default:
		logger.Warn("unknown email provider; using stub", "provider", provider)
		return notify.NewStubEmailSender(logger), "stub"
	}
	if provider != "none" {
		logger.Warn("email provider selected but not configured; using stub", "provider", provider)
	}
	return notify.NewStubEmailSender(logger), "stub"
}

// BuildChatSender returns the Twilio WhatsApp sender when credentials are set.
func BuildChatSender(cfg *appconfig.Config, logger *logging.Logger) (notify.ChatSender, string) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioWhatsAppFrom == "" {
		return messaging.NewStubChatSender(logger), "stub"
	}
	return messaging.NewWhatsAppSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, logger), "twilio"
}

// BuildDeliverer wires the transports with optional Redis dedupe.
func BuildDeliverer(cfg *appconfig.Config, awsCfg aws.Config, redisClient *redis.Client, m *metrics.FulfillmentMetrics, logger *logging.Logger) *notify.Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	email, emailProvider := BuildEmailSender(cfg, awsCfg, logger)
	chat, chatProvider := BuildChatSender(cfg, logger)

	opts := []notify.DelivererOption{notify.WithMetrics(m)}
	if redisClient != nil {
		opts = append(opts, notify.WithDeduper(notify.NewRedisDedupe(redisClient, cfg.NotifyDedupeTTL)))
	}
	logger.Info("notification transports configured",
		"email_provider", emailProvider,
		"chat_provider", chatProvider,
		"dedupe", redisClient != nil,
	)
	return notify.NewDeliverer(email, chat, logger, opts...)
}

// Notifications is the wired notification pipeline. Worker is nil unless the
// mode runs in-process workers.
type Notifications struct {
	Service *notify.Service
	Worker  *notify.Worker
	Mode    string
}

// Wait blocks until in-process workers have drained.
func (n *Notifications) Wait() {
	if n != nil && n.Worker != nil {
		n.Worker.Wait()
	}
}

// BuildNotifications wires the notification service for NOTIFY_MODE. In async
// mode the worker is started with ctx and stops when ctx is cancelled.
func BuildNotifications(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, redisClient *redis.Client, m *metrics.FulfillmentMetrics, logger *logging.Logger) (*Notifications, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.NotifyMode))
	switch mode {
	case "", NotifyModeInline:
		deliverer := BuildDeliverer(cfg, awsCfg, redisClient, m, logger)
		return &Notifications{Service: notify.NewService(deliverer, logger), Mode: NotifyModeInline}, nil
	case NotifyModeAsync:
		deliverer := BuildDeliverer(cfg, awsCfg, redisClient, m, logger)
		queue := notify.NewMemoryQueue(cfg.NotifyQueueSize)
		worker := notify.NewWorker(deliverer, queue, logger, notify.WithWorkerCount(cfg.NotifyWorkers))
		worker.Start(ctx)
		return &Notifications{
			Service: notify.NewService(notify.NewQueueDispatcher(queue), logger),
			Worker:  worker,
			Mode:    mode,
		}, nil
	case NotifyModeSQS:
		if strings.TrimSpace(cfg.NotifyQueueURL) == "" {
			return nil, fmt.Errorf("bootstrap: NOTIFY_QUEUE_URL is required for sqs notifications")
		}
		queue := notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotifyQueueURL)
		return &Notifications{Service: notify.NewService(notify.NewQueueDispatcher(queue), logger), Mode: mode}, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown notify mode %q", cfg.NotifyMode)
	}
}

func senderName(cfg *appconfig.Config) string {
	if cfg.SendGridFromName != "" {
		return cfg.SendGridFromName
	}
	if cfg.ClinicName != "" {
		return cfg.ClinicName
	}
	return notify.DefaultFromName
}
