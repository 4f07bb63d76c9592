package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GreetingsSigned = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "guestbook", Name: "greetings_signed_total", Help: "Number of greetings written."},
	)
	SeriesPoints = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "guestbook", Name: "series_points_total", Help: "Number of numeric points returned by the data export."},
	)
	SeriesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "guestbook", Name: "series_skipped_total", Help: "Number of greetings skipped by the data export because the selected token was not numeric."},
	)
	PurgeDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "guestbook", Name: "purge_deleted_total", Help: "Number of greetings removed by bulk delete."},
	)
	TasksEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "guestbook", Name: "tasks_enqueued_total", Help: "Number of tasks enqueued by kind."},
		[]string{"kind"},
	)
	TasksProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "guestbook", Name: "tasks_processed_total", Help: "Number of tasks processed by kind and outcome."},
		[]string{"kind", "outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "guestbook", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "guestbook", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(GreetingsSigned, SeriesPoints, SeriesSkipped, PurgeDeleted)
	reg.MustRegister(TasksEnqueued, TasksProcessed)
	reg.MustRegister(RateLimitAllowed, RateLimitRejected)
}
