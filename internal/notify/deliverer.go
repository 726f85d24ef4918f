package notify

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-booking-webhook/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

var deliverTracer = otel.Tracer("clinic.internal.notify.deliver")

// Dispatcher accepts a notification job for delivery, now or later.
type Dispatcher interface {
	Dispatch(ctx context.Context, job Job) error
}

// Deliverer sends jobs through the configured email and chat transports.
type Deliverer struct {
	email   EmailSender
	chat    ChatSender
	dedupe  Deduper
	metrics *metrics.FulfillmentMetrics
	logger  *logging.Logger
}

// DelivererOption customizes a Deliverer.
type DelivererOption func(*Deliverer)

// WithDeduper suppresses repeat deliveries.
func WithDeduper(d Deduper) DelivererOption {
	return func(dl *Deliverer) {
		dl.dedupe = d
	}
}

// WithMetrics records delivery outcomes.
func WithMetrics(m *metrics.FulfillmentMetrics) DelivererOption {
	return func(dl *Deliverer) {
		dl.metrics = m
	}
}

// NewDeliverer builds a deliverer. A nil sender disables that channel.
func NewDeliverer(email EmailSender, chat ChatSender, logger *logging.Logger, opts ...DelivererOption) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	d := &Deliverer{email: email, chat: chat, logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers job synchronously.
func (d *Deliverer) Dispatch(ctx context.Context, job Job) error {
	return d.Deliver(ctx, job)
}

// Deliver sends a single job. Duplicates within the dedupe window are skipped
// without error.
func (d *Deliverer) Deliver(ctx context.Context, job Job) error {
	if err := job.validate(); err != nil {
		d.metrics.ObserveNotification(string(job.Channel), "invalid")
		return err
	}

	ctx, span := deliverTracer.Start(ctx, "notify.deliver")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.notify.channel", string(job.Channel)),
		attribute.String("clinic.notify.job_id", job.ID),
	)

	key := job.DedupeKey()
	if d.dedupe != nil {
		claimed, err := d.dedupe.Claim(ctx, key)
		if err != nil {
			d.logger.Warn("notification dedupe unavailable", "error", err, "job_id", job.ID)
		} else if !claimed {
			d.logger.Info("skipping duplicate notification", "job_id", job.ID, "channel", job.Channel)
			d.metrics.ObserveNotification(string(job.Channel), "duplicate")
			return nil
		}
	}

	err := d.send(ctx, job)
	if err != nil {
		span.RecordError(err)
		d.metrics.ObserveNotification(string(job.Channel), "failed")
		if d.dedupe != nil {
			if relErr := d.dedupe.Release(ctx, key); relErr != nil {
				d.logger.Warn("failed to release dedupe key", "error", relErr, "job_id", job.ID)
			}
		}
		return err
	}
	d.metrics.ObserveNotification(string(job.Channel), "sent")
	return nil
}

func (d *Deliverer) send(ctx context.Context, job Job) error {
	switch job.Channel {
	case ChannelEmail:
		if d.email == nil {
			return fmt.Errorf("notify: email channel: %w", ErrMissingCredentials)
		}
		return d.email.Send(ctx, *job.Email)
	case ChannelChat:
		if d.chat == nil {
			return fmt.Errorf("notify: chat channel: %w", ErrMissingCredentials)
		}
		return d.chat.SendChat(ctx, job.Chat.To, job.Chat.Body)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChannel, job.Channel)
	}
}
