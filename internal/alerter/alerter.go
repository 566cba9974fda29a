package alerter

import (
	"fmt"
	"html"
	"log"
	"strings"
	"sync"
	"time"

	"NetSimDash/internal/config"
	"NetSimDash/internal/model"
)

// Supported rule metrics.
const (
	MetricLinkUtilization = "link_utilization"
	MetricQueueDepth      = "queue_depth"
	MetricNodeDrops       = "node_drops"
)

// SnapshotSource returns the latest simulation state.
type SnapshotSource func() model.SimulationSnapshot

// Alerter periodically checks the latest snapshot against threshold rules
// and sends one consolidated notification per check when any fire.
type Alerter struct {
	source        SnapshotSource
	rules         []config.AlerterRule
	notifier      model.Notifier
	checkInterval time.Duration
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// NewAlerter creates a new Alerter instance.
func NewAlerter(cfg *config.AlerterConfig, source SnapshotSource, notifier model.Notifier) (*Alerter, error) {
	interval, err := time.ParseDuration(cfg.CheckInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid check_interval for alerter: %w", err)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("alerter check_interval must be positive")
	}
	for _, rule := range cfg.Rules {
		switch rule.Metric {
		case MetricLinkUtilization, MetricQueueDepth, MetricNodeDrops:
		default:
			return nil, fmt.Errorf("alert rule '%s' uses unknown metric '%s'", rule.Name, rule.Metric)
		}
	}

	return &Alerter{
		source:        source,
		rules:         cfg.Rules,
		notifier:      notifier,
		checkInterval: interval,
		stopChan:      make(chan struct{}),
	}, nil
}

// Start launches the periodic evaluation loop.
func (a *Alerter) Start() {
	log.Println("Alerter started")
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.checkInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				a.Check()
			case <-a.stopChan:
				return
			}
		}
	}()
}

// Stop ends the loop and runs one final check.
func (a *Alerter) Stop() {
	log.Println("Stopping Alerter...")
	close(a.stopChan)
	a.wg.Wait()
	a.Check()
}

// Check evaluates the current snapshot and notifies when any rule fires.
func (a *Alerter) Check() {
	messages := Evaluate(a.rules, a.source())
	if len(messages) == 0 {
		return
	}
	log.Printf("Alerter evaluation completed. %d alert(s) triggered.", len(messages))

	if a.notifier == nil {
		return
	}
	body := "<h1>NetSimDash Alert Summary</h1>" +
		"<p>The following alerts were triggered during the last check:</p><hr>" +
		strings.Join(messages, "<hr>")
	subject := fmt.Sprintf("NetSimDash Alert Summary (%d Triggered)", len(messages))
	if err := a.notifier.Send(subject, body); err != nil {
		log.Printf("ERROR: Failed to send consolidated alert notification: %v", err)
	}
}

// Evaluate returns one HTML fragment per rule target above its threshold.
func Evaluate(rules []config.AlerterRule, s model.SimulationSnapshot) []string {
	var messages []string
	for _, rule := range rules {
		switch rule.Metric {
		case MetricLinkUtilization:
			for _, l := range s.Links {
				if matches(rule.Target, l.ID) && l.Utilization > rule.Threshold {
					messages = append(messages, format(rule, "link "+l.ID, l.Utilization, s.Tick))
				}
			}
		case MetricQueueDepth, MetricNodeDrops:
			for _, n := range s.Nodes {
				if !matches(rule.Target, n.ID) {
					continue
				}
				value := float64(n.QueueDepth)
				if rule.Metric == MetricNodeDrops {
					value = float64(n.DroppedCount)
				}
				if value > rule.Threshold {
					messages = append(messages, format(rule, "node "+n.ID, value, s.Tick))
				}
			}
		}
	}
	return messages
}

func matches(target, id string) bool {
	return target == "" || target == "*" || target == id
}

func format(rule config.AlerterRule, subject string, value float64, tick uint64) string {
	return fmt.Sprintf("<p><b>%s</b>: %s %s = %.2f exceeds %.2f (tick %d)</p>",
		html.EscapeString(rule.Name), html.EscapeString(subject), rule.Metric, value, rule.Threshold, tick)
}
