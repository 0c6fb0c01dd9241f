package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ami",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ami",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	managerActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ami",
			Subsystem: "session",
			Name:      "actions_total",
			Help:      "Actions forwarded to the manager session.",
		},
		[]string{"service", "action", "success"},
	)
	managerActionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ami",
			Subsystem: "session",
			Name:      "action_duration_seconds",
			Help:      "Round-trip duration of manager actions.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "action", "success"},
	)
	managerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ami",
			Subsystem: "session",
			Name:      "events_total",
			Help:      "Events observed on the manager session.",
		},
		[]string{"service", "event"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			managerActions, managerActionDuration, managerEvents,
		)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordAction(service, action string, duration time.Duration, success bool) {
	RegisterMetrics()
	successLabel := strconv.FormatBool(success)
	managerActions.WithLabelValues(service, action, successLabel).Inc()
	managerActionDuration.WithLabelValues(service, action, successLabel).
		Observe(duration.Seconds())
}

func RecordEvent(service, event string) {
	RegisterMetrics()
	managerEvents.WithLabelValues(service, event).Inc()
}
