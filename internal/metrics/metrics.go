package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GatewayAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resolver",
		Name:      "gateway_attempts_total",
		Help:      "Upstream attempts by stage (proxy, direct, fallback) and outcome.",
	}, []string{"stage", "outcome"})

	GatewayAttemptDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "resolver",
		Name:      "gateway_attempt_duration_seconds",
		Help:      "Duration of a single upstream attempt in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"stage"})

	SearchCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resolver",
		Name:      "search_cache_lookups_total",
		Help:      "Search cache lookups by result (hit, miss).",
	}, []string{"result"})

	SearchShortCircuitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resolver",
		Name:      "search_id_lookups_total",
		Help:      "ID shaped search queries by outcome (resolved, demoted).",
	}, []string{"outcome"})

	MigrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resolver",
		Name:      "migrations_total",
		Help:      "URL migrations by kind (legacy, embed) and outcome.",
	}, []string{"kind", "outcome"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "resolver",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "resolver",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "path"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		GatewayAttemptsTotal,
		GatewayAttemptDuration,
		SearchCacheTotal,
		SearchShortCircuitTotal,
		MigrationsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
