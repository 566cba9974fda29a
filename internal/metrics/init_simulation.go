package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.TicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netsim_ticks_total",
			Help: "Total number of simulation ticks executed",
		},
	)

	r.TickDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netsim_tick_duration_seconds",
			Help:    "Wall time spent advancing one tick",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
	)

	r.EventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsim_events_total",
			Help: "Total number of simulation events by type and traffic",
		},
		[]string{"type", "traffic"},
	)

	r.AttackMode = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netsim_attack_mode",
			Help: "Active attack mode (1 for the active mode)",
		},
		[]string{"mode"},
	)

	r.FirewallRules = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netsim_firewall_rules",
			Help: "Number of active firewall rules",
		},
	)

	r.NodeQueueDepth = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netsim_node_queue_depth",
			Help: "Packets waiting in each node queue",
		},
		[]string{"node", "role"},
	)

	r.NodeProcessed = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netsim_node_processed_packets",
			Help: "Packets processed by each node since start",
		},
		[]string{"node", "role"},
	)

	r.NodeDropped = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netsim_node_dropped_packets",
			Help: "Packets dropped at each node since start",
		},
		[]string{"node", "role"},
	)

	r.LinkUtilization = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netsim_link_utilization_ratio",
			Help: "Smoothed utilization of each link",
		},
		[]string{"link", "source", "target"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netsim_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netsim_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
}
