package manager

import (
	"sync"
	"testing"
	"time"

	"NetSimDash/internal/config"
	"NetSimDash/internal/engine/random"
	"NetSimDash/internal/engine/simulation"
	"NetSimDash/internal/model"
)

type memoryWriter struct {
	mu        sync.Mutex
	interval  time.Duration
	snapshots []model.SimulationSnapshot
}

func (w *memoryWriter) Write(s model.SimulationSnapshot, _ string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.snapshots = append(w.snapshots, s)
	return nil
}

func (w *memoryWriter) GetInterval() time.Duration { return w.interval }

func (w *memoryWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.snapshots)
}

func TestManualTickRunsHooks(t *testing.T) {
	m := New(simulation.New(simulation.WithRandom(random.NewSeeded(5))), 0)

	var ticks []uint64
	m.OnTick(func(s model.SimulationSnapshot, _ time.Duration) { ticks = append(ticks, s.Tick) })

	m.Tick()
	snap := m.Tick()

	if snap.Tick != 2 {
		t.Fatalf("expected tick 2, got %d", snap.Tick)
	}
	if len(ticks) != 2 || ticks[0] != 1 || ticks[1] != 2 {
		t.Errorf("unexpected hook ticks %v", ticks)
	}
}

func TestStopFlushesFinalSnapshot(t *testing.T) {
	// 1. A writer with an interval far longer than the test
	writer := &memoryWriter{interval: time.Hour}
	m := New(simulation.New(simulation.WithRandom(random.NewSeeded(5))), 0, writer)

	// 2. Run a few manual ticks between Start and Stop
	m.Start()
	m.Tick()
	m.Tick()
	m.Stop()
	m.Stop()

	// 3. The shutdown write must carry the latest state
	if writer.count() != 1 {
		t.Fatalf("expected exactly one final snapshot, got %d", writer.count())
	}
	if writer.snapshots[0].Tick != 2 {
		t.Errorf("expected final snapshot at tick 2, got %d", writer.snapshots[0].Tick)
	}
}

func TestTickerAdvancesSimulation(t *testing.T) {
	m := New(simulation.New(simulation.WithRandom(random.NewSeeded(5))), 5*time.Millisecond)

	ticked := make(chan struct{}, 1)
	m.OnTick(func(model.SimulationSnapshot, time.Duration) {
		select {
		case ticked <- struct{}{}:
		default:
		}
	})

	m.Start()
	defer m.Stop()

	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker did not advance the simulation")
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New(simulation.New(simulation.WithRandom(random.NewSeeded(9))), 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				switch (i + j) % 4 {
				case 0:
					m.Tick()
				case 1:
					m.Snapshot()
				case 2:
					m.SetAttackMode(model.AttackModes[j%len(model.AttackModes)])
				case 3:
					m.Reachable("ingress", "db")
				}
			}
		}(i)
	}
	wg.Wait()

	if got := m.Snapshot().Tick; got != 40 {
		t.Errorf("expected 40 ticks, got %d", got)
	}
}

func TestHooksSeeTicksInOrder(t *testing.T) {
	// 1. The ticker and manual callers race on Tick
	m := New(simulation.New(simulation.WithRandom(random.NewSeeded(11))), time.Millisecond)
	var seen []uint64
	m.OnTick(func(s model.SimulationSnapshot, _ time.Duration) {
		seen = append(seen, s.Tick)
		// Reading back from a hook must not deadlock.
		m.Snapshot()
	})
	m.Start()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				m.Tick()
			}
		}()
	}
	wg.Wait()
	m.Stop()

	// 2. Every tick reached the hook exactly once, in order
	if len(seen) < 150 {
		t.Fatalf("expected at least 150 hook calls, got %d", len(seen))
	}
	for i, tick := range seen {
		if tick != uint64(i+1) {
			t.Fatalf("hook call %d saw tick %d, expected %d", i, tick, i+1)
		}
	}
}

func TestBuildSimulationFromConfig(t *testing.T) {
	cfg := config.SimulationConfig{
		AttackMode: model.ModeStealth,
		Seed:       7,
		Topology: config.TopologyConfig{
			Nodes: []model.NodeDef{
				{ID: "edge", Role: model.RoleGateway, ProcessingRate: 4, QueueCapacity: 8},
				{ID: "svc", Role: model.RoleService, ProcessingRate: 2, QueueCapacity: 4},
			},
			Links: []model.LinkDef{{ID: "edge-svc", Source: "edge", Target: "svc", Bandwidth: 40}},
		},
	}

	sim, err := BuildSimulation(cfg)
	if err != nil {
		t.Fatalf("BuildSimulation failed: %v", err)
	}
	snap := sim.Snapshot()
	if snap.AttackMode != model.ModeStealth || len(snap.Nodes) != 2 || len(snap.Links) != 1 {
		t.Errorf("unexpected simulation %+v", snap)
	}

	cfg.Topology.Links[0].Target = "ghost"
	if _, err := BuildSimulation(cfg); err == nil {
		t.Error("expected error for a link to an unknown node")
	}
}

func TestNewManagerFromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte(`
simulation: {tick_interval: 1h, seed: 3}
writers:
  - {type: text, enabled: true, interval: 1h, path: ` + t.TempDir() + `}
alerter:
  enabled: true
  check_interval: 1h
  rules:
    - {name: drops, metric: node_drops, target: "*", threshold: 1000000}
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if len(m.writers) != 1 || m.alerter == nil {
		t.Fatalf("expected one writer and an alerter, got %d writers", len(m.writers))
	}

	m.Start()
	m.Tick()
	m.Stop()
}
