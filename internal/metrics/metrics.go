// Package metrics exposes Prometheus metrics for estimates, upstream calls and cache efficiency.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

// Metrics holds all collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	estimates        *prometheus.CounterVec
	estimateDuration prometheus.Histogram
	batchSize        prometheus.Histogram
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		estimates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundnav_estimates_total",
				Help: "Fund estimates produced, by source tier",
			},
			[]string{"tier"},
		),
		estimateDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fundnav_estimate_duration_seconds",
				Help:    "Time to produce one fund estimate",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
			},
		),
		batchSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fundnav_batch_size",
				Help:    "Funds per batch estimate request",
				Buckets: []float64{1, 5, 10, 20, 50, 100, 200},
			},
		),
		upstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundnav_upstream_requests_total",
				Help: "Upstream HTTP requests, by host and outcome",
			},
			[]string{"host", "outcome"},
		),
		upstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fundnav_upstream_latency_seconds",
				Help:    "Upstream HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundnav_cache_lookups_total",
				Help: "Freshness cache lookups, by namespace and result",
			},
			[]string{"namespace", "result"},
		),
	}
}

// RecordEstimate counts one finished estimate
func (m *Metrics) RecordEstimate(tier string, elapsed time.Duration) {
	m.estimates.WithLabelValues(tier).Inc()
	m.estimateDuration.Observe(elapsed.Seconds())
}

// RecordBatch records the size of one batch request
func (m *Metrics) RecordBatch(size int) {
	m.batchSize.Observe(float64(size))
}

// ObserveUpstream records one upstream request. Its signature matches transport.Observer.
func (m *Metrics) ObserveUpstream(host string, elapsed time.Duration, err error) {
	outcome := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "breaker_open"
	case err != nil:
		outcome = "error"
	}
	m.upstreamRequests.WithLabelValues(host, outcome).Inc()
	m.upstreamLatency.WithLabelValues(host).Observe(elapsed.Seconds())
}

// ObserveCache records one cache lookup. Its signature matches cache.Observer.
func (m *Metrics) ObserveCache(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(namespace, result).Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
