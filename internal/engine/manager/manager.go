package manager

import (
	"fmt"
	"log"
	"sync"
	"time"

	"NetSimDash/internal/alerter"
	"NetSimDash/internal/config"
	"NetSimDash/internal/engine/random"
	"NetSimDash/internal/engine/simulation"
	"NetSimDash/internal/engine/topology"
	"NetSimDash/internal/factory"
	"NetSimDash/internal/model"
	"NetSimDash/internal/notification"
	"NetSimDash/internal/snapshot" // Registers text and clickhouse writers
)

// TickHook receives the snapshot taken right after each tick. Hooks run one
// tick at a time in tick order and must not call Tick.
type TickHook func(snapshot model.SimulationSnapshot, took time.Duration)

// Manager drives one Simulation on a ticker and serializes every access to it.
// Event and packet listeners run while the manager lock is held and must not
// call back into the Manager.
type Manager struct {
	mu      sync.Mutex
	hookMu  sync.Mutex // held from tick through hook delivery
	sim     *simulation.Simulation
	hooks   []TickHook
	writers []model.Writer
	alerter *alerter.Alerter

	tickInterval  time.Duration
	done          chan struct{}
	stopOnce      sync.Once
	tickerWg      sync.WaitGroup
	snapshotterWg sync.WaitGroup
}

// BuildSimulation creates the engine described by the simulation config section.
func BuildSimulation(cfg config.SimulationConfig, opts ...simulation.Option) (*simulation.Simulation, error) {
	var src random.Source
	if cfg.Seed != 0 {
		src = random.NewSeeded(cfg.Seed)
	} else {
		src = random.NewStream(cfg.RandomStream)
	}

	base := []simulation.Option{
		simulation.WithRandom(src),
		simulation.WithAttackMode(cfg.AttackMode),
	}
	if len(cfg.Topology.Nodes) > 0 {
		topo, err := topology.Build(cfg.Topology.Nodes, cfg.Topology.Links)
		if err != nil {
			return nil, fmt.Errorf("failed to build topology: %w", err)
		}
		base = append(base, simulation.WithTopology(topo))
	}
	return simulation.New(append(base, opts...)...), nil
}

// NewManager creates a Manager, its simulation, writers and alerter from config.
func NewManager(cfg *config.Config) (*Manager, error) {
	tick, err := cfg.TickInterval()
	if err != nil {
		return nil, err
	}

	sim, err := BuildSimulation(cfg.Simulation)
	if err != nil {
		return nil, err
	}

	writers, err := factory.Create(cfg)
	if err != nil {
		return nil, err
	}

	m := New(sim, tick, writers...)

	if cfg.Alerter.Enabled {
		notifier := notification.FromConfig(cfg.SMTP)
		m.alerter, err = alerter.NewAlerter(&cfg.Alerter, m.Snapshot, notifier)
		if err != nil {
			return nil, fmt.Errorf("failed to create alerter: %w", err)
		}
		log.Println("Alerter enabled and initialized.")
	}
	return m, nil
}

// New wraps an existing simulation. A non-positive tickInterval disables the
// automatic tick loop; ticks then happen only through Tick.
func New(sim *simulation.Simulation, tickInterval time.Duration, writers ...model.Writer) *Manager {
	return &Manager{
		sim:          sim,
		writers:      writers,
		tickInterval: tickInterval,
		done:         make(chan struct{}),
	}
}

// Start launches the tick loop, one snapshotter per writer and the alerter.
func (m *Manager) Start() {
	if m.tickInterval > 0 {
		m.tickerWg.Add(1)
		go m.runTicker()
		log.Printf("Started simulation ticker with interval %s", m.tickInterval)
	}

	for _, writer := range m.writers {
		m.snapshotterWg.Add(1)
		go m.runSnapshotter(writer)
		log.Printf("Started snapshotter for a writer with interval %s.", writer.GetInterval())
	}

	if m.alerter != nil {
		m.alerter.Start()
	}
	log.Println("Manager started.")
}

// Stop halts the tick loop, flushes a final snapshot to every writer and
// stops the alerter. It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		log.Println("Manager stopping...")
		close(m.done)

		m.tickerWg.Wait()
		log.Println("Waiting for snapshotters to finish...")
		m.snapshotterWg.Wait()

		if m.alerter != nil {
			m.alerter.Stop()
		}
		log.Println("Manager stopped.")
	})
}

func (m *Manager) runTicker() {
	defer m.tickerWg.Done()
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Tick()
		case <-m.done:
			log.Println("Ticker shutting down.")
			return
		}
	}
}

// runSnapshotter runs a dedicated snapshot loop for a single writer.
func (m *Manager) runSnapshotter(writer model.Writer) {
	defer m.snapshotterWg.Done()
	interval := writer.GetInterval()
	if interval <= 0 {
		log.Printf("Invalid interval %s for writer, snapshotter will not run.", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.writeSnapshot(writer)
		case <-m.done:
			m.writeSnapshot(writer)
			return
		}
	}
}

func (m *Manager) writeSnapshot(writer model.Writer) {
	timestamp := time.Now().Format(snapshot.TimestampLayout)
	if err := writer.Write(m.Snapshot(), timestamp); err != nil {
		log.Printf("Error writing snapshot at %s: %v", timestamp, err)
	}
}

// Tick advances the simulation once and runs the tick hooks outside the
// simulation lock, so hooks may read the Manager.
func (m *Manager) Tick() model.SimulationSnapshot {
	m.hookMu.Lock()
	defer m.hookMu.Unlock()

	m.mu.Lock()
	start := time.Now()
	m.sim.Tick()
	took := time.Since(start)
	snap := m.sim.Snapshot()
	hooks := append([]TickHook(nil), m.hooks...)
	m.mu.Unlock()

	for _, hook := range hooks {
		hook(snap, took)
	}
	return snap
}

// OnTick registers a hook invoked after every tick.
func (m *Manager) OnTick(hook TickHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// OnEvent subscribes listener to simulation events.
func (m *Manager) OnEvent(listener simulation.EventListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sim.OnEvent(listener)
}

// OnPacket subscribes listener to ingress packet verdicts.
func (m *Manager) OnPacket(listener simulation.PacketListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sim.OnPacket(listener)
}

func (m *Manager) Snapshot() model.SimulationSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sim.Snapshot()
}

func (m *Manager) AttackMode() model.AttackMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sim.AttackMode()
}

func (m *Manager) SetAttackMode(mode model.AttackMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sim.SetAttackMode(mode)
}

func (m *Manager) AddFirewallRule(req model.RuleRequest) (model.FirewallRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sim.AddFirewallRule(req)
}

func (m *Manager) AddAppServer() (model.NodeState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sim.AddAppServer()
}

func (m *Manager) Reachable(from, to string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sim.Reachable(from, to)
}
