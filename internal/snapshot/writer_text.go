package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"NetSimDash/internal/model"
)

// TextWriter writes each snapshot as plain text files under a timestamped directory.
type TextWriter struct {
	rootPath string
	interval time.Duration
}

// NewTextWriter creates a new text writer rooted at rootPath.
func NewTextWriter(rootPath string, interval time.Duration) model.Writer {
	return &TextWriter{rootPath: rootPath, interval: interval}
}

func (w *TextWriter) GetInterval() time.Duration {
	return w.interval
}

func (w *TextWriter) Write(s model.SimulationSnapshot, timestamp string) error {
	snapshotDir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	err := writeLines(filepath.Join(snapshotDir, "nodes.txt"), len(s.Nodes), func(i int) string {
		n := s.Nodes[i]
		return fmt.Sprintf("%s %s queue=%d/%d processed=%d dropped=%d", n.ID, n.Role, n.QueueDepth, n.QueueCapacity, n.ProcessedCount, n.DroppedCount)
	})
	if err != nil {
		return err
	}

	err = writeLines(filepath.Join(snapshotDir, "links.txt"), len(s.Links), func(i int) string {
		l := s.Links[i]
		return fmt.Sprintf("%s %s->%s bandwidth=%d utilization=%.4f", l.ID, l.Source, l.Target, l.Bandwidth, l.Utilization)
	})
	if err != nil {
		return err
	}

	err = writeLines(filepath.Join(snapshotDir, "events.txt"), len(s.Events), func(i int) string {
		e := s.Events[i]
		return fmt.Sprintf("%s %s %s", e.At.Format(time.RFC3339), e.Type, e.Detail)
	})
	if err != nil {
		return err
	}

	summaryFile, err := os.Create(filepath.Join(snapshotDir, "summary.json"))
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	encoder := json.NewEncoder(summaryFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(Summarize(s, timestamp)); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}

	log.Printf("Wrote snapshot of tick %d to %s", s.Tick, snapshotDir)
	return nil
}

func writeLines(path string, count int, line func(i int) string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file '%s': %w", path, err)
	}
	defer file.Close()

	buf := bufio.NewWriter(file)
	for i := 0; i < count; i++ {
		if _, err := buf.WriteString(line(i) + "\n"); err != nil {
			return fmt.Errorf("failed to write to '%s': %w", path, err)
		}
	}
	return buf.Flush()
}
