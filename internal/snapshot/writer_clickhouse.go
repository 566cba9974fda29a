package snapshot

import (
	"context"
	"fmt"
	"log"
	"time"

	"NetSimDash/internal/config"
	"NetSimDash/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createNodeStatsTableStatement = `
CREATE TABLE IF NOT EXISTS sim_node_stats (
    Timestamp      DateTime,
    Tick           UInt64,
    AttackMode     String,
    NodeID         String,
    Role           String,
    QueueDepth     UInt32,
    QueueCapacity  UInt32,
    Processed      UInt64,
    Dropped        UInt64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (NodeID, Timestamp);
`

const createLinkStatsTableStatement = `
CREATE TABLE IF NOT EXISTS sim_link_stats (
    Timestamp    DateTime,
    Tick         UInt64,
    LinkID       String,
    Source       String,
    Target       String,
    Bandwidth    UInt32,
    Utilization  Float64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (LinkID, Timestamp);
`

// ClickHouseWriter implements the model.Writer interface for ClickHouse.
type ClickHouseWriter struct {
	conn     driver.Conn
	interval time.Duration
}

// NewClickHouseWriter connects and ensures the stats tables exist.
func NewClickHouseWriter(cfg config.ClickHouseConfig, interval time.Duration) (model.Writer, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	for _, stmt := range []string{createNodeStatsTableStatement, createLinkStatsTableStatement} {
		if err := conn.Exec(context.Background(), stmt); err != nil {
			return nil, fmt.Errorf("failed to create stats table: %w", err)
		}
	}
	log.Println("Successfully connected to ClickHouse and ensured sim_node_stats and sim_link_stats tables exist.")

	return &ClickHouseWriter{conn: conn, interval: interval}, nil
}

func (w *ClickHouseWriter) GetInterval() time.Duration {
	return w.interval
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

func (w *ClickHouseWriter) Write(s model.SimulationSnapshot, timestamp string) error {
	snapshotTime, err := time.Parse(TimestampLayout, timestamp)
	if err != nil {
		snapshotTime = time.Now()
	}
	ctx := context.Background()

	nodes, err := w.conn.PrepareBatch(ctx, "INSERT INTO sim_node_stats")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	for _, n := range s.Nodes {
		err := nodes.Append(snapshotTime, s.Tick, string(s.AttackMode), n.ID, string(n.Role),
			uint32(n.QueueDepth), uint32(n.QueueCapacity), uint64(n.ProcessedCount), uint64(n.DroppedCount))
		if err != nil {
			return fmt.Errorf("failed to append node stats to batch: %w", err)
		}
	}
	if err := nodes.Send(); err != nil {
		return fmt.Errorf("failed to send node batch: %w", err)
	}

	links, err := w.conn.PrepareBatch(ctx, "INSERT INTO sim_link_stats")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	for _, l := range s.Links {
		if err := links.Append(snapshotTime, s.Tick, l.ID, l.Source, l.Target, uint32(l.Bandwidth), l.Utilization); err != nil {
			return fmt.Errorf("failed to append link stats to batch: %w", err)
		}
	}
	if err := links.Send(); err != nil {
		return fmt.Errorf("failed to send link batch: %w", err)
	}

	log.Printf("Wrote %d node and %d link rows to ClickHouse", len(s.Nodes), len(s.Links))
	return nil
}
