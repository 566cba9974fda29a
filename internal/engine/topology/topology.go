package topology

import (
	"fmt"

	"NetSimDash/internal/engine/queue"
	"NetSimDash/internal/model"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Node is an arena record: observable state plus the queue it exclusively owns.
type Node struct {
	model.NodeState
	Queue *queue.PacketQueue
}

// Link is a directed link and the bytes forwarded over it since the last decay.
type Link struct {
	model.LinkState
	RecentBytes int
}

// Topology stores nodes and links in insertion order. Nothing is ever removed.
type Topology struct {
	nodes []*Node
	index map[string]int
	links []*Link
}

// DefaultNodes is the edge gateway → core router → app/db layout.
var DefaultNodes = []model.NodeDef{
	{ID: "ingress", Label: "Edge Gateway", Role: model.RoleGateway, ProcessingRate: 8, QueueCapacity: 24},
	{ID: "core", Label: "Core Router", Role: model.RoleRouter, ProcessingRate: 10, QueueCapacity: 32},
	{ID: "app", Label: "App Service", Role: model.RoleService, ProcessingRate: 6, QueueCapacity: 14},
	{ID: "db", Label: "DB Cluster", Role: model.RoleDB, ProcessingRate: 4, QueueCapacity: 16},
}

// DefaultLinks connects DefaultNodes.
var DefaultLinks = []model.LinkDef{
	{ID: "ingress-core", Source: "ingress", Target: "core", Bandwidth: 150},
	{ID: "core-app", Source: "core", Target: "app", Bandwidth: 120},
	{ID: "core-db", Source: "core", Target: "db", Bandwidth: 90},
}

// New returns an empty topology.
func New() *Topology {
	return &Topology{index: make(map[string]int)}
}

// Build creates a topology from node and link declarations.
func Build(nodes []model.NodeDef, links []model.LinkDef) (*Topology, error) {
	t := New()
	for _, def := range nodes {
		if _, err := t.AddNode(def); err != nil {
			return nil, err
		}
	}
	for _, def := range links {
		if _, err := t.AddLink(def); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Default builds the stock four-node topology.
func Default() *Topology {
	t, err := Build(DefaultNodes, DefaultLinks)
	if err != nil {
		panic(fmt.Sprintf("default topology is inconsistent: %v", err))
	}
	return t
}

// AddNode appends a node with an empty queue of the declared capacity.
func (t *Topology) AddNode(def model.NodeDef) (*Node, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("node id must not be empty")
	}
	if _, exists := t.index[def.ID]; exists {
		return nil, fmt.Errorf("node '%s' already exists", def.ID)
	}
	if def.ProcessingRate < 0 || def.QueueCapacity < 0 {
		return nil, fmt.Errorf("node '%s' has negative rate or capacity", def.ID)
	}

	label := def.Label
	if label == "" {
		label = def.ID
	}
	node := &Node{
		NodeState: model.NodeState{
			ID:             def.ID,
			Label:          label,
			Role:           def.Role,
			ProcessingRate: def.ProcessingRate,
			QueueCapacity:  def.QueueCapacity,
		},
		Queue: queue.New(def.QueueCapacity),
	}
	t.index[def.ID] = len(t.nodes)
	t.nodes = append(t.nodes, node)
	return node, nil
}

// AddLink appends a directed link between two existing nodes.
func (t *Topology) AddLink(def model.LinkDef) (*Link, error) {
	if _, ok := t.index[def.Source]; !ok {
		return nil, fmt.Errorf("link '%s' references unknown source node '%s'", def.ID, def.Source)
	}
	if _, ok := t.index[def.Target]; !ok {
		return nil, fmt.Errorf("link '%s' references unknown target node '%s'", def.ID, def.Target)
	}
	if def.Bandwidth <= 0 {
		return nil, fmt.Errorf("link '%s' must have a positive bandwidth", def.ID)
	}
	id := def.ID
	if id == "" {
		id = def.Source + "-" + def.Target
	}
	if _, exists := t.Link(id); exists {
		return nil, fmt.Errorf("link '%s' already exists", id)
	}

	link := &Link{LinkState: model.LinkState{
		ID:        id,
		Source:    def.Source,
		Target:    def.Target,
		Bandwidth: def.Bandwidth,
	}}
	t.links = append(t.links, link)
	return link, nil
}

// Node looks up a node by id.
func (t *Topology) Node(id string) (*Node, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return t.nodes[i], true
}

// Link looks up a link by id.
func (t *Topology) Link(id string) (*Link, bool) {
	for _, l := range t.links {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// Nodes returns the nodes in insertion order.
func (t *Topology) Nodes() []*Node {
	return t.nodes
}

// Links returns the links in insertion order.
func (t *Topology) Links() []*Link {
	return t.links
}

// Outgoing returns the links whose source is nodeID, in insertion order.
func (t *Topology) Outgoing(nodeID string) []*Link {
	var out []*Link
	for _, l := range t.links {
		if l.Source == nodeID {
			out = append(out, l)
		}
	}
	return out
}

// FirstWithRole returns the earliest-added node with the given role.
func (t *Topology) FirstWithRole(role model.NodeRole) (*Node, bool) {
	for _, n := range t.nodes {
		if n.Role == role {
			return n, true
		}
	}
	return nil, false
}

// CountRole returns how many nodes have the given role.
func (t *Topology) CountRole(role model.NodeRole) int {
	count := 0
	for _, n := range t.nodes {
		if n.Role == role {
			count++
		}
	}
	return count
}

// Reachable reports whether a directed path leads from one node to another.
func (t *Topology) Reachable(from, to string) bool {
	fromIdx, ok := t.index[from]
	if !ok {
		return false
	}
	toIdx, ok := t.index[to]
	if !ok {
		return false
	}

	g := t.graph()
	sp := path.DijkstraFrom(g.Node(int64(fromIdx)), g)
	route, _ := sp.To(int64(toIdx))
	return len(route) > 0
}

// Unreachable lists nodes that cannot be reached from the given root.
func (t *Topology) Unreachable(root string) []string {
	var out []string
	for _, n := range t.nodes {
		if !t.Reachable(root, n.ID) {
			out = append(out, n.ID)
		}
	}
	return out
}

// graph mirrors the topology as a gonum directed graph keyed by arena index.
func (t *Topology) graph() graph.Graph {
	g := simple.NewDirectedGraph()
	for i := range t.nodes {
		g.AddNode(simple.Node(int64(i)))
	}
	for _, l := range t.links {
		src, dst := t.index[l.Source], t.index[l.Target]
		if src == dst {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(int64(src)), simple.Node(int64(dst))))
	}
	return g
}
