package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OperationRegister      = "register"
	OperationRebook        = "rebook"
	OperationListAvailable = "list_available"
	OperationCreateSlot    = "create_slot"

	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics provides observability for slot bookings.
type Metrics struct {
	// Booking attempts by operation, dose type and outcome
	Bookings *prometheus.CounterVec

	// Operation latency including storage round trips
	OperationLatency *prometheus.HistogramVec

	// Registrations that lost the capacity race at write time
	CapacityConflicts prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Bookings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "vaxbook_slot_bookings_total",
			Help: "Slot booking operations by operation, dose type and outcome",
		}, []string{"operation", "dose_type", "outcome"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vaxbook_slot_operation_duration_seconds",
			Help:    "Duration of slot operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		CapacityConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "vaxbook_slot_capacity_conflicts_total",
			Help: "Registrations rejected by the storage capacity guard",
		}),
	}
}

func (m *Metrics) IncrementBooking(operation, doseType, outcome string) {
	if m != nil {
		m.Bookings.WithLabelValues(operation, doseType, outcome).Inc()
	}
}

func (m *Metrics) ObserveLatency(operation string, d time.Duration) {
	if m != nil {
		m.OperationLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementCapacityConflict() {
	if m != nil {
		m.CapacityConflicts.Inc()
	}
}
