package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sessionsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vibe_chat_sessions_started_total",
			Help: "Total number of chat sessions started",
		},
	)

	sessionsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vibe_chat_sessions_completed_total",
			Help: "Total number of chat sessions that reached a final analysis",
		},
	)

	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_chat_turns_total",
			Help: "Answered turns by sentiment zone",
		},
		[]string{"zone"},
	)

	escalationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vibe_hr_escalations_total",
			Help: "Total number of HR escalations raised",
		},
	)

	classifierFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_classifier_fallbacks_total",
			Help: "Turns classified by the rule-based model because the external model failed",
		},
		[]string{"model"},
	)

	persistenceFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibe_persistence_failures_total",
			Help: "Best-effort writes that failed, by sink",
		},
		[]string{"sink"},
	)

	sessionsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vibe_chat_sessions_evicted_total",
			Help: "Idle chat sessions removed by the sweeper",
		},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vibe_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	initOnce sync.Once
)

// InitMetrics registers the collectors with the default registry.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			sessionsStartedTotal,
			sessionsCompletedTotal,
			turnsTotal,
			escalationsTotal,
			classifierFallbacksTotal,
			persistenceFailuresTotal,
			sessionsEvictedTotal,
			httpRequestDuration,
		)
	})
}

// MetricsHandler returns an HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func RecordSessionStarted() {
	sessionsStartedTotal.Inc()
}

func RecordSessionCompleted() {
	sessionsCompletedTotal.Inc()
}

func RecordTurn(zone string) {
	turnsTotal.WithLabelValues(zone).Inc()
}

func RecordEscalation() {
	escalationsTotal.Inc()
}

func RecordClassifierFallback(model string) {
	classifierFallbacksTotal.WithLabelValues(model).Inc()
}

func RecordPersistenceFailure(sink string) {
	persistenceFailuresTotal.WithLabelValues(sink).Inc()
}

func RecordSessionsEvicted(n int) {
	sessionsEvictedTotal.Add(float64(n))
}

func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}
