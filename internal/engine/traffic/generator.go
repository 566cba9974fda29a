package traffic

import (
	"fmt"
	"net/netip"

	"NetSimDash/internal/engine/random"
	"NetSimDash/internal/model"
)

// Seed describes a packet to be materialized by the engine.
type Seed struct {
	Type     model.TrafficType
	Size     int
	SourceIP string
}

// Plan is the traffic produced for one tick.
type Plan struct {
	Legitimate []Seed
	Attacker   []Seed
}

// Seeds returns legitimate seeds followed by attacker seeds.
func (p Plan) Seeds() []Seed {
	seeds := make([]Seed, 0, len(p.Legitimate)+len(p.Attacker))
	seeds = append(seeds, p.Legitimate...)
	return append(seeds, p.Attacker...)
}

// Generator produces a per-tick traffic plan for an attack mode.
type Generator interface {
	Plan(mode model.AttackMode) Plan
}

// IPRange is an inclusive dotted-quad address range.
type IPRange struct {
	Start string
	End   string
}

var (
	LegitimateRanges = []IPRange{
		{"10.24.0.1", "10.24.0.255"},
		{"10.25.1.1", "10.25.1.200"},
		{"172.16.10.1", "172.16.10.220"},
	}
	AttackerRanges = []IPRange{
		{"203.0.113.1", "203.0.113.254"},
		{"198.51.100.1", "198.51.100.200"},
		{"192.0.2.10", "192.0.2.220"},
	}
)

// SizeRange bounds packet sizes in bytes.
type SizeRange struct {
	Min int
	Max int
}

// Profile holds the tuning for one attack mode.
type Profile struct {
	Legitimate     int
	AttackerBase   int
	AttackerSpread int
	AttackerSize   SizeRange
}

// LegitimateSize is shared by every profile.
var LegitimateSize = SizeRange{Min: 80, Max: 480}

// Profiles maps each attack mode to its traffic profile.
var Profiles = map[model.AttackMode]Profile{
	model.ModeIdle:    {Legitimate: 6},
	model.ModePulse:   {Legitimate: 5, AttackerBase: 4, AttackerSpread: 5, AttackerSize: SizeRange{350, 800}},
	model.ModeStealth: {Legitimate: 6, AttackerBase: 2, AttackerSpread: 2, AttackerSize: SizeRange{120, 260}},
	model.ModeFlood:   {Legitimate: 4, AttackerBase: 10, AttackerSpread: 8, AttackerSize: SizeRange{450, 950}},
}

// ProfileGenerator draws traffic from Profiles using an injected random source.
type ProfileGenerator struct {
	rng random.Source
}

// NewGenerator creates a generator backed by rng.
func NewGenerator(rng random.Source) *ProfileGenerator {
	return &ProfileGenerator{rng: rng}
}

// Plan builds the legitimate and attacker batches for mode. Unknown modes
// fall back to the idle profile.
func (g *ProfileGenerator) Plan(mode model.AttackMode) Plan {
	profile, ok := Profiles[mode]
	if !ok {
		profile = Profiles[model.ModeIdle]
	}

	plan := Plan{Legitimate: g.burst(model.Legitimate, profile.Legitimate, LegitimateSize, LegitimateRanges)}
	if profile.AttackerBase > 0 {
		count := profile.AttackerBase + random.Intn(g.rng, profile.AttackerSpread)
		plan.Attacker = g.burst(model.Attacker, count, profile.AttackerSize, AttackerRanges)
	}
	return plan
}

func (g *ProfileGenerator) burst(kind model.TrafficType, count int, size SizeRange, ranges []IPRange) []Seed {
	seeds := make([]Seed, 0, count)
	for i := 0; i < count; i++ {
		seeds = append(seeds, Seed{
			Type:     kind,
			Size:     random.Between(g.rng, size.Min, size.Max),
			SourceIP: RandomIP(g.rng, random.Choice(g.rng, ranges)),
		})
	}
	return seeds
}

// RandomIP interpolates every octet independently between the range bounds.
// Unparseable bounds yield r.Start unchanged.
func RandomIP(rng random.Source, r IPRange) string {
	start, err := octets(r.Start)
	if err != nil {
		return r.Start
	}
	end, err := octets(r.End)
	if err != nil {
		return r.Start
	}

	var out [4]byte
	for i := range start {
		out[i] = byte(random.Between(rng, int(start[i]), int(end[i])))
	}
	return netip.AddrFrom4(out).String()
}

func octets(ip string) ([4]byte, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return [4]byte{}, fmt.Errorf("invalid IPv4 address %q", ip)
	}
	return addr.As4(), nil
}
