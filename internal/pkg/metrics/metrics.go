// Package metrics holds the prometheus collectors of the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bgrs"

// Outcomes of a dispatched request
const (
	OutcomeAck = "ack"
	OutcomeErr = "err"
)

// Metrics groups the collectors on a private registry so tests can build as many
// instances as they need.
type Metrics struct {
	registry *prometheus.Registry

	Requests    *prometheus.CounterVec
	Connections prometheus.Gauge
	Sessions    prometheus.Gauge
	Courses     prometheus.Gauge
}

// New creates and registers the collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests handled, by opcode and outcome.",
		}, []string{"opcode", "outcome"}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Open client connections.",
		}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Logged-in users.",
		}),
		Courses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_courses",
			Help:      "Courses in the loaded catalog.",
		}),
	}
	reg.MustRegister(
		m.Requests,
		m.Connections,
		m.Sessions,
		m.Courses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest counts one dispatched request
func (m *Metrics) ObserveRequest(opcode, outcome string) {
	m.Requests.WithLabelValues(opcode, outcome).Inc()
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
