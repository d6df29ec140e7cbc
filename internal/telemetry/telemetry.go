// Package telemetry exposes pipeline metrics over a dedicated registry.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks pipeline runs per route and terminal outcome. A nil
// *Metrics is valid and records nothing, so callers never need to guard.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal      *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	extractFails   *prometheus.CounterVec
	cacheHitsTotal prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linksummarizer_runs_total",
			Help: "Pipeline runs by route and terminal outcome.",
		}, []string{"route", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "linksummarizer_run_duration_seconds",
			Help:    "End-to-end pipeline run duration.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"route"}),
		extractFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "linksummarizer_extraction_failures_total",
			Help: "Extractor failures by route, including recovered ones.",
		}, []string{"route"}),
		cacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "linksummarizer_cache_hits_total",
			Help: "Summaries served from the cache without a pipeline run.",
		}),
	}
	registry.MustRegister(m.runsTotal, m.runDuration, m.extractFails, m.cacheHitsTotal)
	return m
}

func (m *Metrics) ObserveRun(route, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(route, outcome).Inc()
	m.runDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) ExtractionFailure(route string) {
	if m == nil {
		return
	}
	m.extractFails.WithLabelValues(route).Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHitsTotal.Inc()
}

// Handler serves the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
