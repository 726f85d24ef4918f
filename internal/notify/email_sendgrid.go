package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

var emailTracer = otel.Tracer("clinic.internal.notify.email")

// BookingCategory tags confirmation emails in provider activity reports.
const BookingCategory = "booking-confirmation"

type sendgridAPI interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SendGridSender sends multipart confirmation emails through the v3 API.
type SendGridSender struct {
	client    sendgridAPI
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	return newSendGridSenderWithClient(sendgrid.NewSendClient(cfg.APIKey), cfg, logger)
}

func newSendGridSenderWithClient(client sendgridAPI, cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = DefaultFromName
	}
	return &SendGridSender{
		client:    client,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

// Send posts msg as a single-recipient v3 mail with plain and HTML parts.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("notify: sendgrid client: %w", ErrMissingCredentials)
	}

	ctx, span := emailTracer.Start(ctx, "notify.sendgrid.send")
	defer span.End()
	span.SetAttributes(attribute.String("clinic.notify.provider", "sendgrid"))

	response, err := s.client.SendWithContext(ctx, s.build(msg))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("notify: sendgrid send to %s: %w", msg.To, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", response.StatusCode))
	if response.StatusCode >= 300 {
		err := fmt.Errorf("%w: sendgrid status %d: %s", ErrRejected, response.StatusCode, response.Body)
		span.RecordError(err)
		return err
	}

	s.logger.Info("confirmation email accepted", "provider", "sendgrid", "to", msg.To, "status", response.StatusCode)
	return nil
}

func (s *SendGridSender) build(msg EmailMessage) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(s.fromName, s.fromEmail))
	m.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(msg.ToName, msg.To))
	m.AddPersonalizations(p)

	m.AddContent(mail.NewContent("text/plain", msg.Body))
	if msg.HTML != "" {
		m.AddContent(mail.NewContent("text/html", msg.HTML))
	}
	m.AddCategories(BookingCategory)
	return m
}
