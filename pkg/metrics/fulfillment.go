package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records checkout, payment and payout outcomes.
type FulfillmentMetrics struct {
	checkoutDuration  *prometheus.HistogramVec
	checkoutOutcome   *prometheus.CounterVec
	stockShortfalls   *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	webhookOutcome    *prometheus.CounterVec
	payoutOutcome     *prometheus.CounterVec
}

// NewFulfillmentMetrics registers the fulfillment metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	checkoutOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	stockShortfalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_shortfall_total",
		Help: "Reservation attempts rejected for insufficient stock.",
	}, []string{"size"})
	statusTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transition_total",
		Help: "Order status transitions by target status.",
	}, []string{"to"})
	webhookOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_total",
		Help: "Payment webhook deliveries by outcome.",
	}, []string{"outcome"})
	payoutOutcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_total",
		Help: "Escrow release attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(checkoutDuration, checkoutOutcome, stockShortfalls, statusTransitions, webhookOutcome, payoutOutcome)
	return &FulfillmentMetrics{
		checkoutDuration:  checkoutDuration,
		checkoutOutcome:   checkoutOutcome,
		stockShortfalls:   stockShortfalls,
		statusTransitions: statusTransitions,
		webhookOutcome:    webhookOutcome,
		payoutOutcome:     payoutOutcome,
	}
}

// ObserveCheckout records one checkout attempt with its duration.
func (m *FulfillmentMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.checkoutDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.checkoutOutcome.WithLabelValues(label).Inc()
}

// IncStockShortfall counts a reservation rejected for the named size.
func (m *FulfillmentMetrics) IncStockShortfall(size string) {
	if m == nil || m.stockShortfalls == nil {
		return
	}
	m.stockShortfalls.WithLabelValues(normalizeLabel(size)).Inc()
}

// IncStatusTransition counts a committed order status change.
func (m *FulfillmentMetrics) IncStatusTransition(to string) {
	if m == nil || m.statusTransitions == nil {
		return
	}
	m.statusTransitions.WithLabelValues(normalizeLabel(to)).Inc()
}

// IncWebhook counts a payment webhook delivery.
func (m *FulfillmentMetrics) IncWebhook(outcome string) {
	if m == nil || m.webhookOutcome == nil {
		return
	}
	m.webhookOutcome.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncPayout counts an escrow release attempt.
func (m *FulfillmentMetrics) IncPayout(outcome string) {
	if m == nil || m.payoutOutcome == nil {
		return
	}
	m.payoutOutcome.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
