// Package fulfillment routes orchestrator callbacks to the booking flow's
// handlers and returns a structured reply for every call.
package fulfillment

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/clinic-booking-webhook/internal/availability"
	"github.com/wolfman30/clinic-booking-webhook/internal/catalog"
	"github.com/wolfman30/clinic-booking-webhook/internal/fees"
	"github.com/wolfman30/clinic-booking-webhook/internal/messaging"
	"github.com/wolfman30/clinic-booking-webhook/internal/notify"
	"github.com/wolfman30/clinic-booking-webhook/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking-webhook/internal/reply"
	"github.com/wolfman30/clinic-booking-webhook/internal/resolver"
	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.fulfillment")

// Tags understood by the dispatcher.
const (
	TagListDoctors    = "get_doctor_list"
	TagDoctorDetail   = "get_doctor_details"
	TagAskPayment     = "ask_payment_method"
	TagAskInsurance   = "ask_insurance_details"
	TagConfirmBooking = "confirm_booking"
)

// Outcome labels for the request counter.
const (
	outcomeOK         = "ok"
	outcomeNoMatch    = "no_match"
	outcomeNotFound   = "not_found"
	outcomeUnknownTag = "unknown_tag"
	outcomePanic      = "panic"
)

const (
	tagDefault          = "default"
	defaultClinicName   = "Clinic"
	viewPrefix          = "view "
	notificationTimeout = 15 * time.Second
)

var tagAliases = map[string]string{
	"list_doctors":         TagListDoctors,
	"get_doctors":          TagListDoctors,
	"find_doctors":         TagListDoctors,
	"doctor_list":          TagListDoctors,
	"get_doctor_detail":    TagDoctorDetail,
	"doctor_details":       TagDoctorDetail,
	"show_doctor_detail":   TagDoctorDetail,
	"show_doctor_details":  TagDoctorDetail,
	"ask_payment":          TagAskPayment,
	"payment_method":       TagAskPayment,
	"ask_insurance_detail": TagAskInsurance,
	"ask_insurance":        TagAskInsurance,
	"insurance_details":    TagAskInsurance,
	"finalize_booking":     TagConfirmBooking,
	"finalise_booking":     TagConfirmBooking,
	"book_appointment":     TagConfirmBooking,
	"confirm_appointment":  TagConfirmBooking,
}

// CanonicalTag maps a tag or one of its aliases to the canonical tag name.
// Unknown tags are returned normalized but otherwise unchanged.
func CanonicalTag(tag string) string {
	t := strings.ToLower(strings.TrimSpace(tag))
	t = strings.ReplaceAll(t, "-", "_")
	if canonical, ok := tagAliases[t]; ok {
		return canonical
	}
	return t
}

// Notifier receives booking confirmations for delivery. Implementations may
// send inline or enqueue.
type Notifier interface {
	SendEmail(ctx context.Context, msg notify.EmailMessage) error
	SendChat(ctx context.Context, to, body string) error
}

// Request is one orchestrator callback.
type Request struct {
	Tag        string
	Parameters map[string]any
	Text       string
}

type dispatcherConfig struct {
	metrics     *metrics.FulfillmentMetrics
	clinicName  string
	countryCode string
}

// Option customizes a Dispatcher.
type Option func(*dispatcherConfig)

// WithMetrics records per-tag outcomes and latency.
func WithMetrics(m *metrics.FulfillmentMetrics) Option {
	return func(cfg *dispatcherConfig) {
		cfg.metrics = m
	}
}

// WithClinicName sets the sign-off used in confirmation emails.
func WithClinicName(name string) Option {
	return func(cfg *dispatcherConfig) {
		if strings.TrimSpace(name) != "" {
			cfg.clinicName = strings.TrimSpace(name)
		}
	}
}

// WithCountryCode sets the dialling code applied to national phone numbers.
func WithCountryCode(code string) Option {
	return func(cfg *dispatcherConfig) {
		if strings.TrimSpace(code) != "" {
			cfg.countryCode = strings.TrimSpace(code)
		}
	}
}

// Dispatcher is stateless apart from its read-only collaborators and safe for
// concurrent use.
type Dispatcher struct {
	catalog  *catalog.Catalog
	resolver *resolver.Resolver
	filter   *availability.Filter
	fees     *fees.Calculator
	notifier Notifier
	logger   *logging.Logger

	cfg dispatcherConfig
}

// New builds a dispatcher. notifier may be nil to disable notifications.
func New(c *catalog.Catalog, calc *fees.Calculator, notifier Notifier, logger *logging.Logger, opts ...Option) *Dispatcher {
	if c == nil {
		panic("fulfillment: catalog cannot be nil")
	}
	if calc == nil {
		panic("fulfillment: fee calculator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg := dispatcherConfig{
		clinicName:  defaultClinicName,
		countryCode: messaging.DefaultCountryCode,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Dispatcher{
		catalog:  c,
		resolver: resolver.New(c),
		filter:   availability.New(c),
		fees:     calc,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
	}
}

// Handle runs the handler for req.Tag. It always returns a well-formed reply:
// unknown tags and handler panics yield the fallback reply.
func (d *Dispatcher) Handle(ctx context.Context, req Request) (out reply.Reply) {
	start := time.Now()
	tag := CanonicalTag(req.Tag)
	metricTag := tag
	if !isKnownTag(tag) {
		metricTag = tagDefault
	}

	ctx, span := tracer.Start(ctx, "fulfillment.handle", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	span.SetAttributes(attribute.String("clinic.fulfillment.tag", metricTag))

	logger := d.logger.With("tag", metricTag)
	outcome := outcomeOK
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("fulfillment: handler panic: %v", r)
			span.RecordError(err)
			logger.Error("fulfillment handler panicked", "error", err, "stack", string(debug.Stack()))
			out = reply.Fallback()
			outcome = outcomePanic
		}
		d.cfg.metrics.ObserveRequest(metricTag, outcome, time.Since(start).Seconds())
	}()

	params := ParseParameters(req.Parameters)
	logger.Debug("fulfillment callback received", "raw_tag", req.Tag)

	switch tag {
	case TagListDoctors:
		out, outcome = d.listDoctors(params)
	case TagDoctorDetail:
		out, outcome = d.showDoctorDetail(params, req.Text, logger)
	case TagAskPayment:
		out = reply.PaymentMethodPrompt()
	case TagAskInsurance:
		out = reply.InsuranceDetailPrompt()
	case TagConfirmBooking:
		out, outcome = d.finalizeBooking(ctx, params, logger)
	default:
		logger.Warn("unknown fulfillment tag", "raw_tag", req.Tag)
		out, outcome = reply.Fallback(), outcomeUnknownTag
	}
	return out
}

func isKnownTag(tag string) bool {
	switch tag {
	case TagListDoctors, TagDoctorDetail, TagAskPayment, TagAskInsurance, TagConfirmBooking:
		return true
	}
	return false
}

func (d *Dispatcher) listDoctors(p Parameters) (reply.Reply, string) {
	criteria := p.Criteria()
	matches := d.filter.Filter(criteria)
	if len(matches) == 0 {
		return reply.NoDoctors(criteria), outcomeNoMatch
	}
	return reply.DoctorList(matches, criteria), outcomeOK
}

func (d *Dispatcher) showDoctorDetail(p Parameters, text string, logger *logging.Logger) (reply.Reply, string) {
	candidate := p.DoctorName
	if candidate == "" {
		candidate = text
	}
	doc, ok := d.resolveDoctor(candidate)
	if !ok {
		logger.Info("doctor not resolved", "candidate", candidate)
		d.cfg.metrics.ObserveUnresolved(TagDoctorDetail)
		return reply.DoctorNotFound(), outcomeNotFound
	}
	return reply.DoctorDetail(doc, d.hospitalsFor(doc)), outcomeOK
}

// resolveDoctor strips the "View " prefix that list options carry before
// resolving the name against the catalog.
func (d *Dispatcher) resolveDoctor(candidate string) (catalog.Doctor, bool) {
	candidate = strings.TrimSpace(candidate)
	if len(candidate) >= len(viewPrefix) && strings.EqualFold(candidate[:len(viewPrefix)], viewPrefix) {
		candidate = strings.TrimSpace(candidate[len(viewPrefix):])
	}
	key, ok := d.resolver.Resolve(candidate)
	if !ok {
		return catalog.Doctor{}, false
	}
	return d.catalog.Doctor(key)
}

func (d *Dispatcher) hospitalsFor(doc catalog.Doctor) []catalog.Hospital {
	hospitals := make([]catalog.Hospital, 0, len(doc.Locations))
	for _, loc := range doc.Locations {
		if h, ok := d.catalog.Hospital(loc); ok {
			hospitals = append(hospitals, h)
		}
	}
	return hospitals
}
