package queue

import (
	"NetSimDash/internal/model"
)

// Reason tells listeners why a queue notification fired.
type Reason string

const (
	Accepted Reason = "accepted"
	Dropped  Reason = "dropped"
)

// Update is delivered to listeners on every enqueue attempt and dequeue.
type Update struct {
	NodeID string
	Packet model.Packet
	Reason Reason
}

// Listener receives queue updates synchronously.
type Listener func(update Update)

// PacketQueue is a bounded FIFO buffer owned by a single node.
type PacketQueue struct {
	capacity  int
	items     []model.Packet
	listeners []Listener
}

// New creates a queue that holds at most capacity packets.
func New(capacity int) *PacketQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &PacketQueue{
		capacity: capacity,
		items:    make([]model.Packet, 0, capacity),
	}
}

// OnUpdate registers a listener. Listeners run in registration order.
func (q *PacketQueue) OnUpdate(listener Listener) {
	q.listeners = append(q.listeners, listener)
}

// Enqueue appends packet unless the queue is full. A rejected packet is discarded.
func (q *PacketQueue) Enqueue(nodeID string, packet model.Packet) bool {
	if len(q.items) >= q.capacity {
		q.emit(nodeID, packet, Dropped)
		return false
	}

	q.items = append(q.items, packet)
	q.emit(nodeID, packet, Accepted)
	return true
}

// Process removes up to maxPackets from the front of the queue in FIFO order.
func (q *PacketQueue) Process(nodeID string, maxPackets int) []model.Packet {
	n := maxPackets
	if n > len(q.items) {
		n = len(q.items)
	}
	if n <= 0 {
		return nil
	}

	processed := make([]model.Packet, n)
	copy(processed, q.items[:n])
	remaining := copy(q.items, q.items[n:])
	clear(q.items[remaining:])
	q.items = q.items[:remaining]

	for _, packet := range processed {
		q.emit(nodeID, packet, Accepted)
	}
	return processed
}

// Drain empties the queue without notifying listeners.
func (q *PacketQueue) Drain() []model.Packet {
	drained := q.items
	q.items = make([]model.Packet, 0, q.capacity)
	return drained
}

// Depth returns the number of queued packets.
func (q *PacketQueue) Depth() int {
	return len(q.items)
}

// Capacity returns the fixed maximum depth.
func (q *PacketQueue) Capacity() int {
	return q.capacity
}

func (q *PacketQueue) emit(nodeID string, packet model.Packet, reason Reason) {
	update := Update{NodeID: nodeID, Packet: packet, Reason: reason}
	for _, listener := range q.listeners {
		listener(update)
	}
}
