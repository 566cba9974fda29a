package traffic

import (
	"net"
	"testing"

	"NetSimDash/internal/engine/random"
	"NetSimDash/internal/model"
)

func inRanges(ip string, ranges []IPRange) bool {
	addr := net.ParseIP(ip).To4()
	if addr == nil {
		return false
	}
	for _, r := range ranges {
		start := net.ParseIP(r.Start).To4()
		end := net.ParseIP(r.End).To4()
		ok := true
		for i := 0; i < 4; i++ {
			if addr[i] < start[i] || addr[i] > end[i] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func TestPlanCountsPerMode(t *testing.T) {
	cases := []struct {
		mode        model.AttackMode
		u           float64
		legit       int
		attackerMin int
		attackerMax int
	}{
		{model.ModeIdle, 0.5, 6, 0, 0},
		{model.ModePulse, 0, 5, 4, 4},
		{model.ModePulse, 0.9999, 5, 8, 8},
		{model.ModeStealth, 0.9999, 6, 3, 3},
		{model.ModeFlood, 0, 4, 10, 10},
		{model.ModeFlood, 0.9999, 4, 17, 17},
	}

	for _, c := range cases {
		plan := NewGenerator(random.Fixed(c.u)).Plan(c.mode)
		if len(plan.Legitimate) != c.legit {
			t.Errorf("%s: expected %d legitimate seeds, got %d", c.mode, c.legit, len(plan.Legitimate))
		}
		if n := len(plan.Attacker); n < c.attackerMin || n > c.attackerMax {
			t.Errorf("%s (u=%v): attacker count %d outside [%d,%d]", c.mode, c.u, n, c.attackerMin, c.attackerMax)
		}
	}
}

func TestPlanSeedsRespectProfiles(t *testing.T) {
	gen := NewGenerator(random.NewSeeded(7))
	for _, mode := range model.AttackModes {
		for i := 0; i < 50; i++ {
			plan := gen.Plan(mode)
			for _, s := range plan.Legitimate {
				if s.Type != model.Legitimate {
					t.Fatalf("%s: legitimate batch contains %s seed", mode, s.Type)
				}
				if s.Size < LegitimateSize.Min || s.Size > LegitimateSize.Max {
					t.Fatalf("%s: legitimate size %d out of range", mode, s.Size)
				}
				if !inRanges(s.SourceIP, LegitimateRanges) {
					t.Fatalf("%s: legitimate source %s outside legitimate ranges", mode, s.SourceIP)
				}
			}
			size := Profiles[mode].AttackerSize
			for _, s := range plan.Attacker {
				if s.Type != model.Attacker {
					t.Fatalf("%s: attacker batch contains %s seed", mode, s.Type)
				}
				if s.Size < size.Min || s.Size > size.Max {
					t.Fatalf("%s: attacker size %d outside [%d,%d]", mode, s.Size, size.Min, size.Max)
				}
				if !inRanges(s.SourceIP, AttackerRanges) {
					t.Fatalf("%s: attacker source %s outside attacker ranges", mode, s.SourceIP)
				}
			}
		}
	}
}

func TestPlanSeedsOrder(t *testing.T) {
	plan := NewGenerator(random.Fixed(0.3)).Plan(model.ModeStealth)
	seeds := plan.Seeds()
	if len(seeds) != len(plan.Legitimate)+len(plan.Attacker) {
		t.Fatalf("Seeds() length mismatch: %d", len(seeds))
	}
	if seeds[0].Type != model.Legitimate || seeds[len(seeds)-1].Type != model.Attacker {
		t.Errorf("expected legitimate seeds before attacker seeds")
	}
}

func TestRandomIPInterpolatesOctets(t *testing.T) {
	r := IPRange{"10.25.1.1", "10.25.1.200"}
	if got := RandomIP(random.Fixed(0), r); got != "10.25.1.1" {
		t.Errorf("u=0: expected 10.25.1.1, got %s", got)
	}
	if got := RandomIP(random.Fixed(0.5), r); got != "10.25.1.101" {
		t.Errorf("u=0.5: expected 10.25.1.101, got %s", got)
	}
	if got := RandomIP(random.Fixed(0.5), IPRange{"bogus", "10.0.0.1"}); got != "bogus" {
		t.Errorf("invalid range should fall back to start, got %s", got)
	}
	if got := RandomIP(random.Fixed(0.5), IPRange{"10.0.0.1", "2001:db8::1"}); got != "10.0.0.1" {
		t.Errorf("IPv6 bound should fall back to start, got %s", got)
	}
	if got := RandomIP(random.Fixed(1), IPRange{"198.51.100.0", "198.51.100.255"}); got != "198.51.100.255" {
		t.Errorf("u=1: expected 198.51.100.255, got %s", got)
	}
}

func TestUnknownModeFallsBackToIdle(t *testing.T) {
	plan := NewGenerator(random.Fixed(0.5)).Plan(model.AttackMode("chaos"))
	if len(plan.Legitimate) != 6 || len(plan.Attacker) != 0 {
		t.Errorf("expected idle profile, got %d/%d", len(plan.Legitimate), len(plan.Attacker))
	}
}
