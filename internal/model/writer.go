package model

import "time"

// Writer defines a generic interface for exporting simulation snapshots.
type Writer interface {
	// Write persists a single snapshot taken at the given timestamp.
	Write(snapshot SimulationSnapshot, timestamp string) error

	// GetInterval returns the configured snapshot interval for this writer.
	GetInterval() time.Duration
}
