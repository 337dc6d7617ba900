package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldops_upstream_requests_total",
		Help: "Upstream API requests by method and outcome.",
	}, []string{"method", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fieldops_upstream_request_duration_seconds",
		Help:    "Upstream API request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)
