// Package metrics exposes prometheus collectors for the random helpers.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	Samples     *prometheus.CounterVec // random integers produced, by sample width
	Choices     *prometheus.CounterVec // Choose outcomes
	ChoiceDraws prometheus.Histogram   // draws per Choose call
	IDs         prometheus.Counter
	Requests    *prometheus.CounterVec // HTTP requests by handler and code
}

// New registers the collectors on a fresh registry, plus the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fscoin",
			Name:      "random_samples_total",
			Help:      "Random integers produced, by raw sample width.",
		}, []string{"width"}),
		Choices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fscoin",
			Name:      "choices_total",
			Help:      "Coin flip outcomes.",
		}, []string{"outcome"}),
		ChoiceDraws: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fscoin",
			Name:      "choice_draws",
			Help:      "Parity draws made per coin flip.",
			Buckets:   prometheus.LinearBuckets(128, 128, 8),
		}),
		IDs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fscoin",
			Name:      "ids_allocated_total",
			Help:      "Sequential identifiers handed out.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fscoin",
			Name:      "http_requests_total",
			Help:      "HTTP requests by handler and status code.",
		}, []string{"handler", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Samples,
		m.Choices,
		m.ChoiceDraws,
		m.IDs,
		m.Requests,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
