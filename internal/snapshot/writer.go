package snapshot

import (
	"fmt"
	"time"

	"NetSimDash/internal/config"
	"NetSimDash/internal/factory"
	"NetSimDash/internal/model"
)

// TimestampLayout names snapshot directories and is parsed back by writers.
const TimestampLayout = "2006-01-02_15-04-05"

func init() {
	factory.RegisterWriter("text", func(def config.WriterDef) (model.Writer, error) {
		interval, err := parseInterval(def)
		if err != nil {
			return nil, err
		}
		if def.Path == "" {
			return nil, fmt.Errorf("text writer requires a path")
		}
		return NewTextWriter(def.Path, interval), nil
	})
	factory.RegisterWriter("clickhouse", func(def config.WriterDef) (model.Writer, error) {
		interval, err := parseInterval(def)
		if err != nil {
			return nil, err
		}
		return NewClickHouseWriter(def.ClickHouse, interval)
	})
}

func parseInterval(def config.WriterDef) (time.Duration, error) {
	interval, err := time.ParseDuration(def.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid interval for %s writer: %w", def.Type, err)
	}
	return interval, nil
}

// SummaryData holds the metadata for a snapshot.
type SummaryData struct {
	Tick          uint64           `json:"tick"`
	AttackMode    model.AttackMode `json:"attack_mode"`
	Nodes         int              `json:"nodes"`
	Links         int              `json:"links"`
	Processed     int              `json:"processed"`
	Dropped       int              `json:"dropped"`
	FirewallRules int              `json:"firewall_rules"`
	Timestamp     string           `json:"timestamp"`
}

// Summarize reduces a snapshot to its headline numbers.
func Summarize(s model.SimulationSnapshot, timestamp string) SummaryData {
	summary := SummaryData{
		Tick:          s.Tick,
		AttackMode:    s.AttackMode,
		Nodes:         len(s.Nodes),
		Links:         len(s.Links),
		FirewallRules: len(s.FirewallRules),
		Timestamp:     timestamp,
	}
	for _, n := range s.Nodes {
		summary.Processed += n.ProcessedCount
		summary.Dropped += n.DroppedCount
	}
	return summary
}
