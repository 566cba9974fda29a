package metrics

import (
	"time"

	"NetSimDash/internal/model"
)

// RecordTick records one tick and refreshes the state gauges from its snapshot.
func (r *Registry) RecordTick(s model.SimulationSnapshot, duration time.Duration) {
	r.TicksTotal.Inc()
	r.TickDuration.Observe(duration.Seconds())
	r.ObserveSnapshot(s)
}

// ObserveSnapshot sets the node, link, mode and firewall gauges.
func (r *Registry) ObserveSnapshot(s model.SimulationSnapshot) {
	for _, n := range s.Nodes {
		role := string(n.Role)
		r.NodeQueueDepth.WithLabelValues(n.ID, role).Set(float64(n.QueueDepth))
		r.NodeProcessed.WithLabelValues(n.ID, role).Set(float64(n.ProcessedCount))
		r.NodeDropped.WithLabelValues(n.ID, role).Set(float64(n.DroppedCount))
	}
	for _, l := range s.Links {
		r.LinkUtilization.WithLabelValues(l.ID, l.Source, l.Target).Set(l.Utilization)
	}
	r.SetAttackMode(s.AttackMode)
	r.FirewallRules.Set(float64(len(s.FirewallRules)))
}

// RecordEvent counts one simulation event.
func (r *Registry) RecordEvent(e model.SimulationEvent) {
	traffic := string(e.TrafficType)
	if traffic == "" {
		traffic = "none"
	}
	r.EventsTotal.WithLabelValues(string(e.Type), traffic).Inc()
}

// SetAttackMode marks mode as the only active mode.
func (r *Registry) SetAttackMode(mode model.AttackMode) {
	for _, m := range model.AttackModes {
		r.AttackMode.WithLabelValues(string(m)).Set(0)
	}
	r.AttackMode.WithLabelValues(string(mode)).Set(1)
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
