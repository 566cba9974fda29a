// Package random isolates every source of randomness used by the simulation
// so that tests can pin outcomes.
package random

import (
	"math"
	mrand "math/rand/v2"
	"sync"

	"github.com/iti/rngstream"
)

// Source yields uniformly distributed values in [0, 1).
type Source interface {
	Float64() float64
}

// Stream is a Source backed by an independent L'Ecuyer RngStream.
type Stream struct {
	rs *rngstream.RngStream
}

// NewStream creates a stream with the given name. Streams created in the
// same order within a process yield the same sequence.
func NewStream(name string) *Stream {
	return &Stream{rs: rngstream.New(name)}
}

func (s *Stream) Float64() float64 {
	u := s.rs.RandU01()
	if u >= 1 {
		return math.Nextafter(1, 0)
	}
	return u
}

// Seeded is a Source driven by an explicit 64-bit seed.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded returns a reproducible source for the given seed.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Fixed always returns the same value.
type Fixed float64

func (f Fixed) Float64() float64 { return float64(f) }

// Sequence replays a list of values, wrapping around at the end.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence returns a Source cycling through values.
func NewSequence(values ...float64) *Sequence {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &Sequence{values: values}
}

func (s *Sequence) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Intn returns an integer in [0, n) drawn from src.
func Intn(src Source, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(math.Floor(src.Float64() * float64(n)))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Between returns an integer uniformly rounded into the inclusive range [lo, hi].
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + int(math.Round(src.Float64()*float64(hi-lo)))
}

// Choice returns a uniformly chosen element of items.
func Choice[T any](src Source, items []T) T {
	return items[Intn(src, len(items))]
}
