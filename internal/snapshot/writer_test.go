package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"NetSimDash/internal/config"
	"NetSimDash/internal/factory"
	"NetSimDash/internal/model"
)

func sampleSnapshot() model.SimulationSnapshot {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return model.SimulationSnapshot{
		Tick:       7,
		AttackMode: model.ModePulse,
		Nodes: []model.NodeState{
			{ID: "ingress", Role: model.RoleGateway, QueueDepth: 3, QueueCapacity: 24, ProcessedCount: 40, DroppedCount: 2},
			{ID: "db", Role: model.RoleDB, QueueDepth: 0, QueueCapacity: 16, ProcessedCount: 10, DroppedCount: 1},
		},
		Links: []model.LinkState{{ID: "ingress-core", Source: "ingress", Target: "core", Bandwidth: 150, Utilization: 0.25}},
		Events: []model.SimulationEvent{
			{ID: "e2", At: at, Type: model.EventPacketFiltered, Detail: "Firewall blocked adversary packet"},
			{ID: "e1", At: at, Type: model.EventPacketGenerated, Detail: "User packet arrived"},
		},
		FirewallRules: []model.FirewallRule{{ID: "r1", Label: "block"}},
	}
}

func TestTextWriter_Write(t *testing.T) {
	// 1. Create a temporary directory
	tmpDir := t.TempDir()

	// 2. Write the snapshot
	writer := NewTextWriter(tmpDir, time.Second)
	if err := writer.Write(sampleSnapshot(), "2024-05-01_12-00-00"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// 3. Verify files
	snapshotDir := filepath.Join(tmpDir, "2024-05-01_12-00-00")
	for _, name := range []string{"nodes.txt", "links.txt", "events.txt", "summary.json"} {
		if _, err := os.Stat(filepath.Join(snapshotDir, name)); err != nil {
			t.Fatalf("%s was not created: %v", name, err)
		}
	}

	nodes, _ := os.ReadFile(filepath.Join(snapshotDir, "nodes.txt"))
	lines := strings.Split(strings.TrimSpace(string(nodes)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "ingress gateway queue=3/24") {
		t.Errorf("unexpected nodes.txt content: %q", nodes)
	}

	events, _ := os.ReadFile(filepath.Join(snapshotDir, "events.txt"))
	if !strings.Contains(strings.Split(string(events), "\n")[0], string(model.EventPacketFiltered)) {
		t.Errorf("events must be written newest first: %q", events)
	}

	// 4. Verify summary content
	summaryBytes, err := os.ReadFile(filepath.Join(snapshotDir, "summary.json"))
	if err != nil {
		t.Fatalf("Failed to read summary.json: %v", err)
	}
	var summary SummaryData
	if err := json.Unmarshal(summaryBytes, &summary); err != nil {
		t.Fatalf("Failed to unmarshal summary.json: %v", err)
	}
	if summary.Tick != 7 || summary.Processed != 50 || summary.Dropped != 3 || summary.FirewallRules != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestTextWriterRegistered(t *testing.T) {
	cfg := &config.Config{Writers: []config.WriterDef{{Type: "text", Enabled: true, Interval: "5s", Path: t.TempDir()}}}
	writers, err := factory.Create(cfg)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(writers) != 1 || writers[0].GetInterval() != 5*time.Second {
		t.Fatalf("unexpected writers %+v", writers)
	}

	cfg.Writers[0].Path = ""
	if _, err := factory.Create(cfg); err == nil {
		t.Error("expected error for text writer without path")
	}
}
