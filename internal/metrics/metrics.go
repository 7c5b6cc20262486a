package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AsanaRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_asana_requests_total",
			Help: "Total number of Asana API requests by endpoint and status code",
		},
		[]string{"endpoint", "code"},
	)

	AsanaRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onboarding_asana_request_duration_seconds",
			Help:    "Duration of Asana API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_http_requests_total",
			Help: "Total number of onboarding endpoint requests by outcome",
		},
		[]string{"outcome"},
	)

	RecordsServed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "onboarding_records_last_count",
			Help: "Number of onboarding records returned by the last successful request",
		},
	)
)
