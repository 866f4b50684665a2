package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics records order-creation and reservation outcomes.
type FulfillmentMetrics struct {
	createDuration *prometheus.HistogramVec
	ordersCreated  *prometheus.CounterVec
	reservations   *prometheus.CounterVec
}

// NewFulfillmentMetrics registers the fulfillment metrics on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	createDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_create_duration_seconds",
		Help:    "Duration of order creation transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created, by outcome.",
	}, []string{"outcome"})
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_reservations_total",
		Help: "Stock reservation attempts, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(createDuration, ordersCreated, reservations)
	return &FulfillmentMetrics{
		createDuration: createDuration,
		ordersCreated:  ordersCreated,
		reservations:   reservations,
	}
}

// ObserveCreateDuration records the elapsed time of one create-order call.
func (f *FulfillmentMetrics) ObserveCreateDuration(outcome string, duration time.Duration) {
	if f == nil || f.createDuration == nil {
		return
	}
	f.createDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncOrderCreated increments the order-created counter for the outcome.
func (f *FulfillmentMetrics) IncOrderCreated(outcome string) {
	if f == nil || f.ordersCreated == nil {
		return
	}
	f.ordersCreated.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncReservation increments the reservation counter for the outcome.
func (f *FulfillmentMetrics) IncReservation(outcome string) {
	if f == nil || f.reservations == nil {
		return
	}
	f.reservations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(outcome string) string {
	if outcome == "" {
		return "unknown"
	}
	return outcome
}
