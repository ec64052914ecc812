// Package metrics exposes Prometheus instrumentation for the shareholder and
// trip services.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Child kinds used as the "kind" label on child counters.
const (
	ChildPassport  = "passport"
	ChildDependent = "dependent"
)

// Metrics tracks aggregate writes and the trip lifecycle.
// A nil *Metrics is valid and records nothing, so services can be built
// without instrumentation in tests.
type Metrics struct {
	ShareholderWrites *prometheus.CounterVec
	ChildrenSaved     *prometheus.CounterVec
	ChildrenSkipped   *prometheus.CounterVec
	TripRequests      prometheus.Counter
	TripApprovals     prometheus.Counter
	BookingsIssued    prometheus.Counter
	AggregateDuration *prometheus.HistogramVec
}

// New registers all metrics with reg and returns them.
// Pass prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ShareholderWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aeroholder_shareholder_writes_total",
			Help: "Successful shareholder writes by operation (create, update, delete)",
		}, []string{"op"}),
		ChildrenSaved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aeroholder_children_saved_total",
			Help: "Passports and dependents stored by aggregate writes",
		}, []string{"kind"}),
		ChildrenSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aeroholder_children_skipped_total",
			Help: "Passports and dependents skipped for missing data",
		}, []string{"kind"}),
		TripRequests: f.NewCounter(prometheus.CounterOpts{
			Name: "aeroholder_trip_requests_created_total",
			Help: "Trip requests raised",
		}),
		TripApprovals: f.NewCounter(prometheus.CounterOpts{
			Name: "aeroholder_trip_requests_approved_total",
			Help: "Trip requests updated into the Approved state",
		}),
		BookingsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "aeroholder_bookings_issued_total",
			Help: "Booking history rows created",
		}),
		AggregateDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "aeroholder_aggregate_duration_seconds",
			Help:    "Duration of transactional aggregate operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
	}
}

// IncShareholderWrite records a successful shareholder write.
func (m *Metrics) IncShareholderWrite(op string) {
	if m == nil {
		return
	}
	m.ShareholderWrites.WithLabelValues(op).Inc()
}

// AddChildren records how many children of kind were saved and skipped.
func (m *Metrics) AddChildren(kind string, saved, skipped int) {
	if m == nil {
		return
	}
	m.ChildrenSaved.WithLabelValues(kind).Add(float64(saved))
	m.ChildrenSkipped.WithLabelValues(kind).Add(float64(skipped))
}

// IncTripRequest records a new trip request.
func (m *Metrics) IncTripRequest() {
	if m == nil {
		return
	}
	m.TripRequests.Inc()
}

// IncTripApproval records a trip request moving to Approved.
func (m *Metrics) IncTripApproval() {
	if m == nil {
		return
	}
	m.TripApprovals.Inc()
}

// IncBookingIssued records a new booking history row.
func (m *Metrics) IncBookingIssued() {
	if m == nil {
		return
	}
	m.BookingsIssued.Inc()
}

// ObserveAggregate records the duration of an aggregate operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAggregate(op string, start time.Time) {
	if m == nil {
		return
	}
	m.AggregateDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
