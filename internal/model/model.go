package model

import (
	"time"
)

// TrafficType classifies the origin of a packet.
type TrafficType string

const (
	Legitimate TrafficType = "legitimate"
	Attacker   TrafficType = "attacker"
)

// NodeRole is the function a node plays in the topology.
type NodeRole string

const (
	RoleGateway NodeRole = "gateway"
	RoleRouter  NodeRole = "router"
	RoleService NodeRole = "service"
	RoleDB      NodeRole = "db"
)

// AttackMode selects the attacker traffic profile used by the generator.
type AttackMode string

const (
	ModeIdle    AttackMode = "idle"
	ModePulse   AttackMode = "pulse"
	ModeStealth AttackMode = "stealth"
	ModeFlood   AttackMode = "flood"
)

// AttackModes lists every supported mode in display order.
var AttackModes = []AttackMode{ModeIdle, ModePulse, ModeStealth, ModeFlood}

// Valid reports whether m is one of the supported attack modes.
func (m AttackMode) Valid() bool {
	for _, known := range AttackModes {
		if m == known {
			return true
		}
	}
	return false
}

// AttackModeInfo describes a mode for operator-facing surfaces.
type AttackModeInfo struct {
	ID          AttackMode `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

// AttackModeCatalog is the human-readable description of each mode.
var AttackModeCatalog = []AttackModeInfo{
	{ID: ModeIdle, Title: "Normal traffic", Description: "User traffic only; attackers stay quiet."},
	{ID: ModePulse, Title: "Pulse attack", Description: "Short bursts probing defenses."},
	{ID: ModeStealth, Title: "Stealthy", Description: "Low and slow to blend with users."},
	{ID: ModeFlood, Title: "Flood", Description: "Volumetric surge overwhelming queues."},
}

// Packet is one unit of simulated traffic. It is never modified after creation.
type Packet struct {
	ID        string      `json:"id"`
	Size      int         `json:"size"`
	CreatedAt time.Time   `json:"createdAt"`
	Type      TrafficType `json:"type"`
	SourceIP  string      `json:"sourceIp"`
}

// Verdict is the ingress outcome for a materialized packet.
type Verdict string

const (
	VerdictAdmitted Verdict = "admitted"
	VerdictFiltered Verdict = "filtered"
	VerdictRejected Verdict = "rejected"
)

// NodeState is the observable state of a topology node.
type NodeState struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	Role           NodeRole `json:"role"`
	ProcessingRate int      `json:"processingRate"`
	QueueCapacity  int      `json:"queueCapacity"`
	QueueDepth     int      `json:"queueDepth"`
	ProcessedCount int      `json:"processedCount"`
	DroppedCount   int      `json:"droppedCount"`
	Processing     bool     `json:"processing"`
}

// LinkState is the observable state of a directed link.
type LinkState struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Bandwidth   int     `json:"bandwidth"`
	Utilization float64 `json:"utilization"`
}

// FirewallRule blocks attacker traffic whose source address falls in
// the inclusive range [Start, End].
type FirewallRule struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	StartIP string `json:"startIp"`
	EndIP   string `json:"endIp"`
	Start   uint32 `json:"start"`
	End     uint32 `json:"end"`
}

// RuleRequest carries the operator input for a new firewall rule.
type RuleRequest struct {
	StartIP string
	EndIP   string
	Label   string
}

// EventType names the kind of a SimulationEvent.
type EventType string

const (
	EventPacketGenerated EventType = "packet.generated"
	EventPacketForwarded EventType = "packet.forwarded"
	EventPacketDropped   EventType = "packet.dropped"
	EventPacketFiltered  EventType = "packet.filtered"
	EventTopologyUpdated EventType = "topology.updated"
	EventFirewallUpdated EventType = "firewall.updated"
)

// SimulationEvent is an immutable record of something the engine did.
type SimulationEvent struct {
	ID          string      `json:"id"`
	At          time.Time   `json:"at"`
	Type        EventType   `json:"type"`
	Detail      string      `json:"detail"`
	NodeID      string      `json:"nodeId,omitempty"`
	LinkID      string      `json:"linkId,omitempty"`
	TrafficType TrafficType `json:"trafficType,omitempty"`
}

// SimulationSnapshot is a self-contained copy of the engine state between ticks.
type SimulationSnapshot struct {
	Tick          uint64            `json:"tick"`
	Nodes         []NodeState       `json:"nodes"`
	Links         []LinkState       `json:"links"`
	Events        []SimulationEvent `json:"events"`
	AttackMode    AttackMode        `json:"attackMode"`
	FirewallRules []FirewallRule    `json:"firewallRules"`
}

// Node returns the node with the given id from the snapshot.
func (s SimulationSnapshot) Node(id string) (NodeState, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeState{}, false
}

// Link returns the link with the given id from the snapshot.
func (s SimulationSnapshot) Link(id string) (LinkState, bool) {
	for _, l := range s.Links {
		if l.ID == id {
			return l, true
		}
	}
	return LinkState{}, false
}

// NodeDef declares a node at construction time.
type NodeDef struct {
	ID             string   `yaml:"id" json:"id"`
	Label          string   `yaml:"label" json:"label"`
	Role           NodeRole `yaml:"role" json:"role"`
	ProcessingRate int      `yaml:"processing_rate" json:"processingRate"`
	QueueCapacity  int      `yaml:"queue_capacity" json:"queueCapacity"`
}

// LinkDef declares a directed link at construction time.
type LinkDef struct {
	ID        string `yaml:"id" json:"id"`
	Source    string `yaml:"source" json:"source"`
	Target    string `yaml:"target" json:"target"`
	Bandwidth int    `yaml:"bandwidth" json:"bandwidth"`
}
