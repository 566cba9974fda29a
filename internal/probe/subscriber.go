package probe

import (
	"log"

	"NetSimDash/internal/config"
	"NetSimDash/internal/model"

	"github.com/nats-io/nats.go"
)

// EventHandler processes a received simulation event.
type EventHandler func(event model.SimulationEvent)

// SnapshotHandler processes a received snapshot.
type SnapshotHandler func(snapshot model.SimulationSnapshot)

// Subscriber consumes the event and snapshot subjects.
type Subscriber struct {
	nc     *nats.Conn
	subs   []*nats.Subscription
	prefix string
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(cfg config.ProbeConfig) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Subscriber{nc: nc, prefix: cfg.Subject}, nil
}

// Start subscribes to the events subject.
func (s *Subscriber) Start(handler EventHandler) error {
	subject := EventsSubject(s.prefix)
	sub, err := s.nc.Subscribe(subject, func(msg *nats.Msg) {
		event, err := DecodeEvent(msg.Data)
		if err != nil {
			log.Printf("Error decoding event: %v", err)
			return
		}
		handler(event)
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	log.Printf("Subscribed to '%s'. Waiting for messages...", subject)
	return nil
}

// StartSnapshots subscribes to the snapshot subject.
func (s *Subscriber) StartSnapshots(handler SnapshotHandler) error {
	subject := SnapshotSubject(s.prefix)
	sub, err := s.nc.Subscribe(subject, func(msg *nats.Msg) {
		snap, err := DecodeSnapshot(msg.Data)
		if err != nil {
			log.Printf("Error decoding snapshot: %v", err)
			return
		}
		handler(snap)
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	log.Printf("Subscribed to '%s'. Waiting for messages...", subject)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.Println("NATS connection closed.")
	}
}
