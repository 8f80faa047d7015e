package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Per-attempt dispatch counters, labeled by outcome class. Exposed on the
// shared /metrics endpoint alongside the default process collectors.
var (
	dispatchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_dispatch_attempts_total",
		Help: "The total number of notification dispatch attempts (one per matched saved route)",
	})
	dispatchDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_dispatch_delivered_total",
		Help: "The total number of notifications accepted by the mail collaborator",
	})
	dispatchSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_dispatch_skipped_total",
		Help: "The total number of matches skipped (no target email or no generated content)",
	})
	dispatchFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notify_dispatch_failed_total",
		Help: "The total number of attempts that failed on an external collaborator",
	})
)
