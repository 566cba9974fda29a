package probe

import (
	"encoding/json"
	"fmt"
	"time"

	"NetSimDash/internal/model"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventsSubject and SnapshotSubject derive the NATS subjects from a prefix.
func EventsSubject(prefix string) string   { return prefix + ".events" }
func SnapshotSubject(prefix string) string { return prefix + ".snapshot" }

// EncodeEvent serializes an event as a protobuf Struct.
func EncodeEvent(e model.SimulationEvent) ([]byte, error) {
	msg, err := structpb.NewStruct(map[string]any{
		"id":          e.ID,
		"at":          e.At.UTC().Format(time.RFC3339Nano),
		"type":        string(e.Type),
		"detail":      e.Detail,
		"nodeId":      e.NodeID,
		"linkId":      e.LinkID,
		"trafficType": string(e.TrafficType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build event struct: %w", err)
	}
	return proto.Marshal(msg)
}

// DecodeEvent parses the output of EncodeEvent.
func DecodeEvent(data []byte) (model.SimulationEvent, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return model.SimulationEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	fields := msg.GetFields()
	str := func(key string) string { return fields[key].GetStringValue() }

	if str("type") == "" {
		return model.SimulationEvent{}, fmt.Errorf("event has no type")
	}
	at, err := time.Parse(time.RFC3339Nano, str("at"))
	if err != nil {
		return model.SimulationEvent{}, fmt.Errorf("invalid event time: %w", err)
	}

	return model.SimulationEvent{
		ID:          str("id"),
		At:          at,
		Type:        model.EventType(str("type")),
		Detail:      str("detail"),
		NodeID:      str("nodeId"),
		LinkID:      str("linkId"),
		TrafficType: model.TrafficType(str("trafficType")),
	}, nil
}

// EncodeSnapshot serializes a snapshot as JSON.
func EncodeSnapshot(s model.SimulationSnapshot) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses the output of EncodeSnapshot.
func DecodeSnapshot(data []byte) (model.SimulationSnapshot, error) {
	var s model.SimulationSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return s, nil
}
