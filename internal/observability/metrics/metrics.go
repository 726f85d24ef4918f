package metrics

import "github.com/prometheus/client_golang/prometheus"

// FulfillmentMetrics exposes counters/histograms for webhook fulfillment and
// the notifications it triggers.
type FulfillmentMetrics struct {
	requestsTotal      *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	notificationsTotal *prometheus.CounterVec
	unresolvedTotal    *prometheus.CounterVec
}

func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	m := &FulfillmentMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "fulfillment",
			Name:      "requests_total",
			Help:      "Total fulfillment callbacks by tag and outcome",
		}, []string{"tag", "outcome"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "fulfillment",
			Name:      "latency_seconds",
			Help:      "Latency of fulfillment handlers",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tag"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Outbound booking notifications by channel and status",
		}, []string{"channel", "status"}),
		unresolvedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "fulfillment",
			Name:      "unresolved_doctor_total",
			Help:      "Doctor names that did not resolve to the catalog",
		}, []string{"tag"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.notificationsTotal, m.unresolvedTotal)
	return m
}

func (m *FulfillmentMetrics) ObserveRequest(tag, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(tag, outcome).Inc()
	m.requestLatency.WithLabelValues(tag).Observe(seconds)
}

func (m *FulfillmentMetrics) ObserveNotification(channel, status string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(channel, status).Inc()
}

func (m *FulfillmentMetrics) ObserveUnresolved(tag string) {
	if m == nil {
		return
	}
	m.unresolvedTotal.WithLabelValues(tag).Inc()
}
