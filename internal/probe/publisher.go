package probe

import (
	"log"

	"NetSimDash/internal/config"
	"NetSimDash/internal/model"

	"github.com/nats-io/nats.go"
)

// Publisher streams simulation events and snapshots to NATS.
type Publisher struct {
	nc     *nats.Conn
	prefix string
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(cfg config.ProbeConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Publisher{nc: nc, prefix: cfg.Subject}, nil
}

// PublishEvent encodes an event and publishes it on the events subject.
func (p *Publisher) PublishEvent(e model.SimulationEvent) error {
	data, err := EncodeEvent(e)
	if err != nil {
		return err
	}
	return p.nc.Publish(EventsSubject(p.prefix), data)
}

// PublishSnapshot publishes a snapshot on the snapshot subject.
func (p *Publisher) PublishSnapshot(s model.SimulationSnapshot) error {
	data, err := EncodeSnapshot(s)
	if err != nil {
		return err
	}
	return p.nc.Publish(SnapshotSubject(p.prefix), data)
}

// OnEvent adapts PublishEvent to an event listener that logs failures.
func (p *Publisher) OnEvent(e model.SimulationEvent) {
	if err := p.PublishEvent(e); err != nil {
		log.Printf("Error publishing event %s: %v", e.ID, err)
	}
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
