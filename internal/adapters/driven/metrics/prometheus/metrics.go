// Package prometheus records answer pipeline metrics with the Prometheus client.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/refrag/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.AnswerMetrics = (*Metrics)(nil)

const namespace = "refrag"

// Metrics holds the collectors for one registry.
type Metrics struct {
	registry *prometheus.Registry

	answers   *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	retrieved prometheus.Histogram
	evidence  *prometheus.CounterVec
}

// New creates metrics on a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers produced, by outcome code.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "answer_duration_seconds",
			Help:      "End-to-end answer latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"outcome"}),
		retrieved: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieved_chunks",
			Help:      "Chunks returned by retrieval per answer.",
			Buckets:   prometheus.LinearBuckets(0, 2, 11),
		}),
		evidence: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolved_evidence_total",
			Help:      "Tables and images resolved from chunk references.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.answers, m.latency, m.retrieved, m.evidence,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAnswer implements driven.AnswerMetrics.
func (m *Metrics) ObserveAnswer(outcome string, elapsed time.Duration) {
	m.answers.WithLabelValues(outcome).Inc()
	m.latency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveRetrieval implements driven.AnswerMetrics.
func (m *Metrics) ObserveRetrieval(chunks, tables, images int) {
	m.retrieved.Observe(float64(chunks))
	m.evidence.WithLabelValues("table").Add(float64(tables))
	m.evidence.WithLabelValues("image").Add(float64(images))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
