// Package metrics owns the Prometheus collectors for the booking flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	BookingsCreated    prometheus.Counter
	BookingTransitions *prometheus.CounterVec
	BookingRejections  *prometheus.CounterVec
	CodeCollisions     prometheus.Counter
	EventsPublished    prometheus.Counter
	PublishErrors      prometheus.Counter
	SweptBookings      prometheus.Counter
}

// New registers the collectors on reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "tour_bookings_created_total",
			Help: "Bookings committed with their capacity reservation.",
		}),
		BookingTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tour_booking_transitions_total",
			Help: "Committed booking status transitions.",
		}, []string{"from", "to"}),
		BookingRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tour_booking_rejections_total",
			Help: "Booking operations rejected by the ledger, by error kind.",
		}, []string{"kind"}),
		CodeCollisions: f.NewCounter(prometheus.CounterOpts{
			Name: "tour_booking_code_collisions_total",
			Help: "Generated booking codes that were already taken.",
		}),
		EventsPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "tour_booking_events_published_total",
			Help: "Booking events written to Kafka.",
		}),
		PublishErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "tour_booking_event_publish_errors_total",
			Help: "Booking events that could not be written to Kafka.",
		}),
		SweptBookings: f.NewCounter(prometheus.CounterOpts{
			Name: "tour_bookings_completed_by_sweeper_total",
			Help: "Confirmed bookings completed by the background sweeper.",
		}),
	}
}
