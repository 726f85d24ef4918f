package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-booking-webhook/internal/catalog"
	"github.com/wolfman30/clinic-booking-webhook/internal/messaging"
	"github.com/wolfman30/clinic-booking-webhook/internal/notify"
	"github.com/wolfman30/clinic-booking-webhook/internal/reply"
	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

func (d *Dispatcher) finalizeBooking(ctx context.Context, p Parameters, logger *logging.Logger) (reply.Reply, string) {
	confirmation, err := d.buildConfirmation(p, logger)
	if err != nil {
		logger.Info("booking not confirmed", "error", err, "candidate", p.DoctorName)
		d.cfg.metrics.ObserveUnresolved(TagConfirmBooking)
		return reply.BookingDoctorNotFound(), outcomeNotFound
	}
	out := reply.BookingConfirmation(confirmation)
	d.notifyConfirmation(ctx, confirmation, logger)
	return out, outcomeOK
}

func (d *Dispatcher) buildConfirmation(p Parameters, logger *logging.Logger) (reply.Confirmation, error) {
	doc, ok := d.resolveDoctor(p.DoctorName)
	if !ok {
		return reply.Confirmation{}, fmt.Errorf("fulfillment: resolve %q: %w", p.DoctorName, ErrDoctorNotFound)
	}
	location := doc.PrimaryLocation()
	if location == "" {
		return reply.Confirmation{}, fmt.Errorf("fulfillment: %s: %w", doc.Name, ErrNoBookingLocation)
	}
	hospital, ok := d.catalog.Hospital(location)
	if !ok {
		hospital = catalog.Hospital{Name: location}
	}

	when, ok := reply.FormatAppointment(p.AppointmentDateTime)
	if !ok {
		logger.Warn("appointment date/time not parseable", "raw", p.AppointmentDateTime.Raw)
		when = ""
	}

	method, recognized := d.fees.ParseMethod(p.PaymentMethod, p.Insurer)
	if !recognized {
		logger.Warn("unrecognized payment method", "payment_method", p.PaymentMethod)
	}

	base, ok := bookingFee(doc, location)
	if !ok {
		logger.Warn("no consultation fee listed", "doctor", doc.Name, "hospital", location)
	}

	return reply.Confirmation{
		PatientName:       p.PersonName,
		Email:             p.Email,
		Phone:             p.Phone,
		Doctor:            doc,
		Hospital:          hospital,
		When:              when,
		Method:            method,
		PolicyNumber:      p.PolicyNumber,
		AuthorisationCode: p.AuthorisationCode,
		Total:             d.fees.Total(base, method),
	}, nil
}

// bookingFee prefers the booking hospital's fee and otherwise takes the first
// fee listed across the doctor's locations.
func bookingFee(doc catalog.Doctor, location string) (catalog.Money, bool) {
	if fee, ok := doc.Fee(location); ok {
		return fee, true
	}
	for _, loc := range doc.Locations {
		if fee, ok := doc.Fee(loc); ok {
			return fee, true
		}
	}
	return 0, false
}

// notifyConfirmation hands the confirmation to the notifier. Failures are
// logged and never reach the caller.
func (d *Dispatcher) notifyConfirmation(ctx context.Context, c reply.Confirmation, logger *logging.Logger) {
	if d.notifier == nil {
		return
	}
	ctx, span := tracer.Start(ctx, "fulfillment.notify")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("clinic.notify.email", c.Email != ""),
		attribute.Bool("clinic.notify.chat", c.Phone != ""),
	)
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("fulfillment: notifier panic: %v", r)
			span.RecordError(err)
			logger.Error("notification panicked", "error", err, "stack", string(debug.Stack()))
		}
	}()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
	defer cancel()

	if c.Email != "" {
		if err := d.sendEmail(ctx, c); err != nil {
			span.RecordError(err)
			logger.Error("failed to send confirmation email", "error", err)
		}
	}
	if c.Phone != "" {
		if err := d.sendChat(ctx, c, logger); err != nil {
			span.RecordError(err)
			logger.Error("failed to send confirmation chat", "error", err)
		}
	}
}

func (d *Dispatcher) sendEmail(ctx context.Context, c reply.Confirmation) error {
	email, err := reply.ConfirmationEmail(c, d.cfg.clinicName)
	if err != nil {
		return fmt.Errorf("fulfillment: render email: %w", err)
	}
	msg := notify.EmailMessage{
		To:      c.Email,
		ToName:  c.PatientName,
		Subject: email.Subject,
		Body:    email.Text,
		HTML:    email.HTML,
	}
	if err := d.notifier.SendEmail(ctx, msg); err != nil {
		return fmt.Errorf("fulfillment: email %s: %w", c.Email, err)
	}
	return nil
}

func (d *Dispatcher) sendChat(ctx context.Context, c reply.Confirmation, logger *logging.Logger) error {
	to, exact := messaging.NormalizePhone(c.Phone, d.cfg.countryCode)
	if to == "" {
		return errors.New("fulfillment: phone number has no digits")
	}
	if !exact {
		logger.Warn("phone number normalized by guess", "phone", to)
	}
	if err := d.notifier.SendChat(ctx, to, reply.BookingConfirmation(c).Text[0]); err != nil {
		return fmt.Errorf("fulfillment: chat %s: %w", to, err)
	}
	return nil
}
