package config

import (
	"fmt"
	"os"
	"time"

	"NetSimDash/internal/model"

	"gopkg.in/yaml.v3"
)

// TopologyConfig overrides the default four-node topology when non-empty.
type TopologyConfig struct {
	Nodes []model.NodeDef `yaml:"nodes"`
	Links []model.LinkDef `yaml:"links"`
}

// SimulationConfig controls the engine and its tick loop.
type SimulationConfig struct {
	TickInterval string           `yaml:"tick_interval"`
	AttackMode   model.AttackMode `yaml:"attack_mode"`
	RandomStream string           `yaml:"random_stream"`
	Seed         uint64           `yaml:"seed"`
	Topology     TopologyConfig   `yaml:"topology"`
}

// APIConfig holds the HTTP control server settings.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// GRPCConfig holds the health service settings.
type GRPCConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// ProbeConfig holds the NATS event stream settings.
type ProbeConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// ClickHouseConfig holds the connection details for ClickHouse.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// WriterDef defines one snapshot writer.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	Interval   string           `yaml:"interval"`
	Path       string           `yaml:"path"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// AlerterRule is a threshold on one metric of one node or link.
// Target "*" matches every node or link.
type AlerterRule struct {
	Name      string  `yaml:"name"`
	Metric    string  `yaml:"metric"`
	Target    string  `yaml:"target"`
	Threshold float64 `yaml:"threshold"`
}

// AlerterConfig holds the alerter settings.
type AlerterConfig struct {
	Enabled       bool          `yaml:"enabled"`
	CheckInterval string        `yaml:"check_interval"`
	Rules         []AlerterRule `yaml:"rules"`
}

// SMTPConfig holds the outgoing mail settings for alert notifications.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// CaptureConfig holds the ingress pcap capture settings.
type CaptureConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	BufferSize int    `yaml:"buffer_size"`
}

// MetricsConfig holds the Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	API        APIConfig        `yaml:"api"`
	GRPC       GRPCConfig       `yaml:"grpc"`
	Probe      ProbeConfig      `yaml:"probe"`
	Writers    []WriterDef      `yaml:"writers"`
	Alerter    AlerterConfig    `yaml:"alerter"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Capture    CaptureConfig    `yaml:"capture"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values with working defaults.
func (c *Config) ApplyDefaults() {
	if c.Simulation.TickInterval == "" {
		c.Simulation.TickInterval = "1s"
	}
	if c.Simulation.AttackMode == "" {
		c.Simulation.AttackMode = model.ModeIdle
	}
	if c.Simulation.RandomStream == "" {
		c.Simulation.RandomStream = "netsim"
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}
	if c.GRPC.ListenAddr == "" {
		c.GRPC.ListenAddr = ":50051"
	}
	if c.Probe.NATSURL == "" {
		c.Probe.NATSURL = "nats://127.0.0.1:4222"
	}
	if c.Probe.Subject == "" {
		c.Probe.Subject = "netsim"
	}
	for i := range c.Writers {
		if c.Writers[i].Interval == "" {
			c.Writers[i].Interval = "10s"
		}
	}
	if c.Alerter.CheckInterval == "" {
		c.Alerter.CheckInterval = "5s"
	}
	if c.Capture.Path == "" {
		c.Capture.Path = "captures"
	}
	if c.Capture.BufferSize <= 0 {
		c.Capture.BufferSize = 4096
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if _, err := c.TickInterval(); err != nil {
		return err
	}
	if !c.Simulation.AttackMode.Valid() {
		return fmt.Errorf("unknown attack mode '%s'", c.Simulation.AttackMode)
	}
	for i, w := range c.Writers {
		if d, err := time.ParseDuration(w.Interval); err != nil || d <= 0 {
			return fmt.Errorf("writer %d (%s) has invalid interval '%s'", i, w.Type, w.Interval)
		}
	}
	if c.Alerter.Enabled {
		if d, err := time.ParseDuration(c.Alerter.CheckInterval); err != nil || d <= 0 {
			return fmt.Errorf("invalid check_interval for alerter: '%s'", c.Alerter.CheckInterval)
		}
	}
	return nil
}

// TickInterval returns the parsed simulation tick period.
func (c *Config) TickInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Simulation.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid tick_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("tick_interval must be a positive duration")
	}
	return d, nil
}
