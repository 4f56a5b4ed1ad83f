// Package metrics exposes the gateway's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/purezhi/mcu/internal/bridge"
)

const namespace = "mcugw"

// Metrics holds the collectors of one gateway instance on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ActionsTotal        *prometheus.CounterVec
	BridgeCallDuration  *prometheus.HistogramVec
	BridgeCallsTotal    *prometheus.CounterVec
	BridgeFaultsTotal   *prometheus.CounterVec
}

// Compile-time assertion that Metrics observes bridge calls
var _ bridge.Observer = (*Metrics)(nil)

// New registers the gateway collectors plus the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ActionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Gateway actions by outcome",
			},
			[]string{"action", "outcome"},
		),
		BridgeCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "bridge_call_duration_seconds",
				Help:      "Duration of XML-RPC calls to the bridge",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		BridgeCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_calls_total",
				Help:      "XML-RPC calls to the bridge by outcome",
			},
			[]string{"method", "outcome"},
		),
		BridgeFaultsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bridge_faults_total",
				Help:      "Faults declared by the bridge by code",
			},
			[]string{"method", "code"},
		),
	}
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCall implements bridge.Observer.
func (m *Metrics) ObserveCall(method, outcome string, elapsed time.Duration) {
	m.BridgeCallDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	m.BridgeCallsTotal.WithLabelValues(method, outcome).Inc()
}

// ObserveFault counts a fault by its vendor code.
func (m *Metrics) ObserveFault(method string, code int) {
	m.BridgeFaultsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// ObserveAction counts one gateway action.
func (m *Metrics) ObserveAction(action, outcome string) {
	m.ActionsTotal.WithLabelValues(action, outcome).Inc()
}

// ObserveHTTP records one HTTP request.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
