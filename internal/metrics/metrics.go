package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtbook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courtbook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtbook_bookings_total",
			Help: "Total number of bookings created",
		},
		[]string{"status", "payment"},
	)

	BookingCancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtbook_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
		[]string{"penalty_tier"},
	)

	PackageDeductionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtbook_package_hour_deductions_total",
			Help: "Total number of prepaid hour deductions",
		},
		[]string{"result"},
	)

	WaitlistNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtbook_waitlist_notifications_total",
			Help: "Total number of waiting list notifications",
		},
		[]string{"outcome"},
	)

	SweepRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtbook_sweep_runs_total",
			Help: "Total number of scheduled sweep runs",
		},
		[]string{"job", "result"},
	)

	SweepProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtbook_sweep_processed_total",
			Help: "Total number of records processed by sweeps",
		},
		[]string{"job"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "courtbook_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status, payment string) {
	BookingsTotal.WithLabelValues(status, payment).Inc()
}

func RecordCancellation(penaltyTier string) {
	BookingCancellationsTotal.WithLabelValues(penaltyTier).Inc()
}

func RecordPackageDeduction(result string) {
	PackageDeductionsTotal.WithLabelValues(result).Inc()
}

func RecordWaitlistNotification(outcome string) {
	WaitlistNotificationsTotal.WithLabelValues(outcome).Inc()
}

func RecordSweepRun(job, result string, processed int) {
	SweepRunsTotal.WithLabelValues(job, result).Inc()
	if processed > 0 {
		SweepProcessedTotal.WithLabelValues(job).Add(float64(processed))
	}
}
