package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Submission pipeline metrics
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of submissions processed, by outcome",
		},
		[]string{"outcome"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_validation_failures_total",
			Help: "Total number of validation failures, by field",
		},
		[]string{"field"},
	)

	DuplicatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_duplicates_total",
			Help: "Total number of submissions rejected as duplicates",
		},
	)

	// Rate limiting metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_rate_limit_hits_total",
			Help: "Total number of rate limit rejections, by scope",
		},
		[]string{"scope"},
	)

	ThrottleRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_throttle_rejections_total",
			Help: "Total number of requests rejected by the coarse request throttle",
		},
	)

	// Storage metrics
	StoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "contact_store_duration_seconds",
			Help:    "Duration of store write operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	StoreErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_store_errors_total",
			Help: "Total number of store failures",
		},
	)

	// Notification metrics
	NotificationsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_notifications_sent_total",
			Help: "Total number of notifications delivered",
		},
	)

	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_notification_failures_total",
			Help: "Total number of notification delivery failures",
		},
	)
)
