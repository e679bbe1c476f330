// Package metrics defines and registers all custom Prometheus metrics for the
// clinic booking API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinic"

// BookingsCreatedTotal counts bookings that were successfully written.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created.",
	},
)

// BookingAttemptsFailedTotal counts booking attempts that were rejected.
// Label:
//   - reason: "slot_not_found" or "already_booked"
var BookingAttemptsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_attempts_failed_total",
		Help:      "Total number of rejected booking attempts, by reason.",
	},
	[]string{"reason"},
)

// LoginsTotal counts successful logins.
// Label:
//   - role: "patient" or "admin"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of successful logins, by role.",
	},
	[]string{"role"},
)

// SlotsSeededTotal counts slots written by the seed step. Stays at zero when
// the window was already seeded.
var SlotsSeededTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slots_seeded_total",
		Help:      "Total number of appointment slots generated at seed time.",
	},
)

// AvailabilityQueryDuration measures the windowed slot+booking join.
var AvailabilityQueryDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "availability_query_duration_seconds",
		Help:      "Duration of availability window queries.",
		Buckets:   prometheus.DefBuckets,
	},
)
