package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	LedgerChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_ledger_checks_total",
			Help: "Total number of cooldown checks by backend and result",
		},
		[]string{"backend", "result"},
	)

	LedgerSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_ledger_submissions_total",
			Help: "Total number of submission attempts by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	LedgerOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_ledger_operation_duration_seconds",
			Help:    "Time to complete ledger operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	AdmissionDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_admission_decisions_total",
			Help: "Total number of admission state transitions",
		},
		[]string{"state"},
	)

	NotificationForwards = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: Namespace + "_notification_forwards_total",
			Help: "Total number of submissions forwarded to the webhook",
		},
	)

	NotificationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: Namespace + "_notification_errors_total",
			Help: "Total number of webhook forwarding failures",
		},
	)

	RetentionRowsPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: Namespace + "_retention_rows_purged_total",
			Help: "Total number of expired ledger records removed",
		},
	)

	ThrottleRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: Namespace + "_throttle_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	IsLeader = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: Namespace + "_leader_is_leader",
			Help: "1 if this instance is the leader, 0 otherwise",
		},
	)
	LeadershipChanges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: Namespace + "_leader_changes_total",
			Help: "Total number of leadership changes",
		})
)
