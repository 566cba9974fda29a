package simulation

import (
	"fmt"
	"log"
	"math"
	"time"

	"NetSimDash/internal/engine/firewall"
	"NetSimDash/internal/engine/queue"
	"NetSimDash/internal/engine/random"
	"NetSimDash/internal/engine/topology"
	"NetSimDash/internal/engine/traffic"
	"NetSimDash/internal/model"

	"github.com/google/uuid"
)

const (
	// MaxEvents bounds the recent-event history.
	MaxEvents = 25

	jitterProbability = 0.12
	decayFactor       = 0.35
	bandwidthWindow   = 10
	fallbackIP        = "0.0.0.0"
)

// EventListener is invoked synchronously for every recorded event.
type EventListener func(event model.SimulationEvent)

// Verdict is the ingress outcome for a materialized packet.
type Verdict = model.Verdict

const (
	Admitted = model.VerdictAdmitted
	Filtered = model.VerdictFiltered
	Rejected = model.VerdictRejected
)

// PacketListener observes every packet that arrives at ingress.
type PacketListener func(packet model.Packet, verdict Verdict)

// Simulation owns the topology, firewall and event log, and advances them
// one tick at a time. It is not safe for concurrent use.
type Simulation struct {
	topo      *topology.Topology
	firewall  *firewall.Firewall
	generator traffic.Generator
	rng       random.Source
	now       func() time.Time
	newID     func() string

	mode      model.AttackMode
	ticks     uint64
	events    []model.SimulationEvent
	listeners []EventListener
	taps      []PacketListener

	// rotation is shared by every router so service links are visited in turn.
	rotation int
}

// Option customizes a Simulation at construction.
type Option func(*Simulation)

// WithRandom injects the random source used for routing and replica sizing.
func WithRandom(src random.Source) Option {
	return func(s *Simulation) { s.rng = src }
}

// WithGenerator replaces the traffic generator.
func WithGenerator(g traffic.Generator) Option {
	return func(s *Simulation) { s.generator = g }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Simulation) { s.now = now }
}

// WithIDGenerator replaces the identifier source for packets, events and rules.
func WithIDGenerator(newID func() string) Option {
	return func(s *Simulation) { s.newID = newID }
}

// WithTopology replaces the default four-node topology.
func WithTopology(t *topology.Topology) Option {
	return func(s *Simulation) { s.topo = t }
}

// WithAttackMode sets the initial attack mode without recording an event.
func WithAttackMode(mode model.AttackMode) Option {
	return func(s *Simulation) { s.mode = mode }
}

// New builds a simulation. Without options it uses the default topology,
// an rngstream-backed random source and UUID identifiers.
func New(opts ...Option) *Simulation {
	s := &Simulation{mode: model.ModeIdle}
	for _, opt := range opts {
		opt(s)
	}

	if s.rng == nil {
		s.rng = random.NewStream("netsim")
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.topo == nil {
		s.topo = topology.Default()
	}
	if s.generator == nil {
		s.generator = traffic.NewGenerator(s.rng)
	}
	if !s.mode.Valid() {
		s.mode = model.ModeIdle
	}
	s.firewall = firewall.New(s.newID)

	for _, node := range s.topo.Nodes() {
		s.attach(node)
	}
	if gw, ok := s.topo.FirstWithRole(model.RoleGateway); ok {
		if lost := s.topo.Unreachable(gw.ID); len(lost) > 0 {
			log.Printf("Simulation: nodes %v are not reachable from %s", lost, gw.ID)
		}
	}
	return s
}

// attach keeps node counters in step with queue notifications.
func (s *Simulation) attach(node *topology.Node) {
	node.Queue.OnUpdate(func(u queue.Update) {
		if u.Reason == queue.Dropped {
			node.DroppedCount++
			s.recordEvent(model.SimulationEvent{
				Type:        model.EventPacketDropped,
				Detail:      fmt.Sprintf("Queue full on %s; dropped %s packet (%dB)", node.Label, u.Packet.Type, u.Packet.Size),
				NodeID:      u.NodeID,
				TrafficType: u.Packet.Type,
			})
			return
		}
		node.QueueDepth = node.Queue.Depth()
	})
}

// OnEvent subscribes listener to every subsequently recorded event.
func (s *Simulation) OnEvent(listener EventListener) {
	s.listeners = append(s.listeners, listener)
}

// OnPacket subscribes listener to every packet that arrives at ingress.
func (s *Simulation) OnPacket(listener PacketListener) {
	s.taps = append(s.taps, listener)
}

func (s *Simulation) recordEvent(event model.SimulationEvent) {
	event.ID = s.newID()
	event.At = s.now()

	events := make([]model.SimulationEvent, 0, MaxEvents)
	events = append(events, event)
	events = append(events, s.events...)
	if len(events) > MaxEvents {
		events = events[:MaxEvents]
	}
	s.events = events

	for _, listener := range s.listeners {
		listener(event)
	}
}

// Tick advances the simulation by one step: generate, forward, decay.
func (s *Simulation) Tick() {
	s.ticks++
	s.generateTraffic()
	s.forwardPackets()
	s.decayUtilization()
}

func (s *Simulation) generateTraffic() {
	ingress, ok := s.topo.FirstWithRole(model.RoleGateway)
	if !ok {
		return
	}

	plan := s.generator.Plan(s.mode)
	for _, seed := range plan.Seeds() {
		packet := s.materialize(seed)

		if packet.Type == model.Attacker && s.firewall.Matches(packet.SourceIP) {
			ingress.DroppedCount++
			s.recordEvent(model.SimulationEvent{
				Type:        model.EventPacketFiltered,
				Detail:      fmt.Sprintf("Firewall blocked adversary packet from %s (%dB)", packet.SourceIP, packet.Size),
				NodeID:      ingress.ID,
				TrafficType: packet.Type,
			})
			s.tap(packet, Filtered)
			continue
		}

		accepted := ingress.Queue.Enqueue(ingress.ID, packet)
		ingress.QueueDepth = ingress.Queue.Depth()

		s.recordEvent(model.SimulationEvent{
			Type:        model.EventPacketGenerated,
			Detail:      fmt.Sprintf("%s packet (%dB) from %s arrived at %s", origin(packet.Type), packet.Size, packet.SourceIP, ingress.Label),
			NodeID:      ingress.ID,
			TrafficType: packet.Type,
		})

		if !accepted {
			// Counted a second time on top of the queue's own drop notification.
			ingress.DroppedCount++
			s.tap(packet, Rejected)
			continue
		}
		s.tap(packet, Admitted)
	}
}

func (s *Simulation) materialize(seed traffic.Seed) model.Packet {
	size := seed.Size
	if size <= 0 {
		size = max(50, int(math.Round(s.rng.Float64()*900)))
	}
	ip := seed.SourceIP
	if ip == "" {
		ip = fallbackIP
	}
	kind := seed.Type
	if kind == "" {
		kind = model.Legitimate
	}
	return model.Packet{
		ID:        s.newID(),
		Size:      size,
		CreatedAt: s.now(),
		Type:      kind,
		SourceIP:  ip,
	}
}

func (s *Simulation) tap(packet model.Packet, verdict Verdict) {
	for _, listener := range s.taps {
		listener(packet, verdict)
	}
}

func origin(t model.TrafficType) string {
	if t == model.Legitimate {
		return "User"
	}
	return "Adversary"
}

func (s *Simulation) forwardPackets() {
	for _, node := range s.topo.Nodes() {
		processed := node.Queue.Process(node.ID, node.ProcessingRate)
		node.QueueDepth = node.Queue.Depth()
		node.Processing = len(processed) > 0
		node.ProcessedCount += len(processed)

		if len(processed) == 0 {
			continue
		}
		links := s.topo.Outgoing(node.ID)
		if len(links) == 0 {
			continue
		}

		for _, packet := range processed {
			chosen := s.selectLink(node, links)
			destination, ok := s.topo.Node(chosen.Target)
			if !ok {
				log.Printf("Simulation: link %s points at missing node %s, skipping packet %s", chosen.ID, chosen.Target, packet.ID)
				continue
			}

			accepted := destination.Queue.Enqueue(destination.ID, packet)
			destination.QueueDepth = destination.Queue.Depth()
			if !accepted {
				destination.DroppedCount++
				continue
			}

			chosen.RecentBytes += packet.Size
			s.recordEvent(model.SimulationEvent{
				Type:        model.EventPacketForwarded,
				Detail:      fmt.Sprintf("%s packet forwarded from %s to %s", packet.Type, node.Label, destination.Label),
				NodeID:      destination.ID,
				LinkID:      chosen.ID,
				TrafficType: packet.Type,
			})
		}
	}
}

// selectLink round-robins router traffic across service links, with
// occasional jitter onto any outgoing link. Other nodes pick at random.
func (s *Simulation) selectLink(node *topology.Node, links []*topology.Link) *topology.Link {
	if node.Role != model.RoleRouter {
		return random.Choice(s.rng, links)
	}

	serviceLinks := make([]*topology.Link, 0, len(links))
	for _, l := range links {
		if target, ok := s.topo.Node(l.Target); ok && target.Role == model.RoleService {
			serviceLinks = append(serviceLinks, l)
		}
	}
	if len(serviceLinks) == 0 {
		return random.Choice(s.rng, links)
	}

	if len(serviceLinks) < len(links) && s.rng.Float64() < jitterProbability {
		return random.Choice(s.rng, links)
	}

	chosen := serviceLinks[s.rotation%len(serviceLinks)]
	s.rotation++
	return chosen
}

func (s *Simulation) decayUtilization() {
	for _, link := range s.topo.Links() {
		instantaneous := math.Min(1, float64(link.RecentBytes)/float64(link.Bandwidth*bandwidthWindow))
		link.Utilization = math.Max(instantaneous, link.Utilization*decayFactor)
		link.RecentBytes = 0
	}
}

// AttackMode returns the active traffic profile.
func (s *Simulation) AttackMode() model.AttackMode {
	return s.mode
}

// SetAttackMode switches the traffic profile.
func (s *Simulation) SetAttackMode(mode model.AttackMode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown attack mode '%s'", mode)
	}
	s.mode = mode
	s.recordEvent(model.SimulationEvent{
		Type:   model.EventFirewallUpdated,
		Detail: fmt.Sprintf("Attack mode switched to %s", mode),
	})
	return nil
}

// AddFirewallRule installs a block rule at the head of the rule list.
func (s *Simulation) AddFirewallRule(req model.RuleRequest) (model.FirewallRule, error) {
	rule, err := s.firewall.AddRule(req)
	if err != nil {
		return model.FirewallRule{}, err
	}
	s.recordEvent(model.SimulationEvent{
		Type:   model.EventFirewallUpdated,
		Detail: fmt.Sprintf("Firewall rule '%s' blocks %s → %s", rule.Label, rule.StartIP, rule.EndIP),
	})
	return rule, nil
}

// AddAppServer adds a service replica behind the first router.
func (s *Simulation) AddAppServer() (model.NodeState, error) {
	router, ok := s.topo.FirstWithRole(model.RoleRouter)
	if !ok {
		return model.NodeState{}, fmt.Errorf("topology has no router to attach a service replica to")
	}

	// Both ids are claimed up front so nothing can fail once the node exists.
	ordinal := s.topo.CountRole(model.RoleService) + 1
	id, linkID := replicaIDs(router.ID, ordinal)
	for {
		_, nodeTaken := s.topo.Node(id)
		_, linkTaken := s.topo.Link(linkID)
		if !nodeTaken && !linkTaken {
			break
		}
		ordinal++
		id, linkID = replicaIDs(router.ID, ordinal)
	}

	node, err := s.topo.AddNode(model.NodeDef{
		ID:             id,
		Label:          fmt.Sprintf("App Service %d", ordinal),
		Role:           model.RoleService,
		ProcessingRate: 5 + random.Intn(s.rng, 3),
		QueueCapacity:  12 + random.Intn(s.rng, 6),
	})
	if err != nil {
		return model.NodeState{}, fmt.Errorf("failed to add service node: %w", err)
	}
	s.attach(node)

	link, err := s.topo.AddLink(model.LinkDef{
		ID:        router.ID + "-" + id,
		Source:    router.ID,
		Target:    id,
		Bandwidth: 110 + random.Intn(s.rng, 30),
	})
	if err != nil {
		return model.NodeState{}, fmt.Errorf("failed to link service node: %w", err)
	}

	s.recordEvent(model.SimulationEvent{
		Type:   model.EventTopologyUpdated,
		Detail: fmt.Sprintf("%s joined behind %s (%d pkt/tick, queue %d, link %d)", node.Label, router.Label, node.ProcessingRate, node.QueueCapacity, link.Bandwidth),
		NodeID: node.ID,
		LinkID: link.ID,
	})
	return node.NodeState, nil
}

func replicaIDs(routerID string, ordinal int) (nodeID, linkID string) {
	nodeID = fmt.Sprintf("app-%d", ordinal)
	return nodeID, routerID + "-" + nodeID
}

// Reachable reports whether traffic can flow from one node to another.
func (s *Simulation) Reachable(from, to string) bool {
	return s.topo.Reachable(from, to)
}

// Snapshot returns a copy of the current state. It has no side effects.
func (s *Simulation) Snapshot() model.SimulationSnapshot {
	nodes := make([]model.NodeState, 0, len(s.topo.Nodes()))
	for _, n := range s.topo.Nodes() {
		nodes = append(nodes, n.NodeState)
	}
	links := make([]model.LinkState, 0, len(s.topo.Links()))
	for _, l := range s.topo.Links() {
		links = append(links, l.LinkState)
	}
	events := make([]model.SimulationEvent, len(s.events))
	copy(events, s.events)

	return model.SimulationSnapshot{
		Tick:          s.ticks,
		Nodes:         nodes,
		Links:         links,
		Events:        events,
		AttackMode:    s.mode,
		FirewallRules: s.firewall.Rules(),
	}
}
