package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "lena"
	subsystem = "chat_api"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ChatExchangesTotal counts orchestrated exchanges by outcome
	// (ok, auth_error, user_not_found, upstream_error, store_error).
	ChatExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "exchanges_total",
			Help:      "Total chat exchanges by outcome",
		},
		[]string{"outcome"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "provider_duration_seconds",
			Help:      "Completion provider call latency",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"provider"},
	)

	ProviderErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "provider_errors_total",
			Help:      "Total completion provider failures",
		},
		[]string{"provider"},
	)

	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "auth_requests_total",
			Help:      "Total authentication requests",
		},
		[]string{"action", "status"},
	)

	UsersCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "users_created_total",
			Help:      "Total users created, by origin (signup, register)",
		},
		[]string{"origin"},
	)
)

func RecordRequest(method, endpoint, status string, seconds float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

func RecordExchange(outcome string) {
	ChatExchangesTotal.WithLabelValues(outcome).Inc()
}

func RecordProviderCall(provider string, seconds float64, err error) {
	ProviderDuration.WithLabelValues(provider).Observe(seconds)
	if err != nil {
		ProviderErrorsTotal.WithLabelValues(provider).Inc()
	}
}

func RecordAuth(action, status string) {
	AuthRequestsTotal.WithLabelValues(action, status).Inc()
}

func RecordUserCreated(origin string) {
	UsersCreatedTotal.WithLabelValues(origin).Inc()
}
