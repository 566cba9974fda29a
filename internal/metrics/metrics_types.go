package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric exported by the simulator.
type Registry struct {
	// Simulation Metrics
	TicksTotal      prometheus.Counter
	TickDuration    prometheus.Histogram
	EventsTotal     *prometheus.CounterVec
	AttackMode      *prometheus.GaugeVec
	FirewallRules   prometheus.Gauge
	NodeQueueDepth  *prometheus.GaugeVec
	NodeProcessed   *prometheus.GaugeVec
	NodeDropped     *prometheus.GaugeVec
	LinkUtilization *prometheus.GaugeVec

	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initSimulationMetrics()
	r.initHTTPMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
