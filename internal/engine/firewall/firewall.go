package firewall

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"NetSimDash/internal/model"
)

// MaxRules bounds the rule list; adding beyond it evicts the oldest rule.
const MaxRules = 6

// Firewall holds IP range block rules, newest first.
type Firewall struct {
	rules []model.FirewallRule
	newID func() string
}

// New creates an empty firewall. newID supplies rule identifiers.
func New(newID func() string) *Firewall {
	return &Firewall{newID: newID}
}

// IPToNumber converts a dotted-quad IPv4 address to its big-endian numeric form.
func IPToNumber(ip string) (uint32, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return 0, fmt.Errorf("invalid IPv4 address %q: %w", ip, err)
	}
	if !addr.Is4() {
		return 0, fmt.Errorf("invalid IPv4 address %q: not a 4-octet address", ip)
	}
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:]), nil
}

// AddRule inserts a rule at the head of the list.
func (f *Firewall) AddRule(req model.RuleRequest) (model.FirewallRule, error) {
	start, err := IPToNumber(req.StartIP)
	if err != nil {
		return model.FirewallRule{}, fmt.Errorf("failed to parse range start: %w", err)
	}
	end, err := IPToNumber(req.EndIP)
	if err != nil {
		return model.FirewallRule{}, fmt.Errorf("failed to parse range end: %w", err)
	}
	if start > end {
		return model.FirewallRule{}, fmt.Errorf("range start %s is greater than range end %s", req.StartIP, req.EndIP)
	}

	label := req.Label
	if label == "" {
		label = fmt.Sprintf("%s – %s", req.StartIP, req.EndIP)
	}

	rule := model.FirewallRule{
		ID:      f.newID(),
		Label:   label,
		StartIP: req.StartIP,
		EndIP:   req.EndIP,
		Start:   start,
		End:     end,
	}

	rules := make([]model.FirewallRule, 0, MaxRules)
	rules = append(rules, rule)
	rules = append(rules, f.rules...)
	if len(rules) > MaxRules {
		rules = rules[:MaxRules]
	}
	f.rules = rules
	return rule, nil
}

// Matches reports whether ip falls inside any rule. Unparseable addresses never match.
func (f *Firewall) Matches(ip string) bool {
	n, err := IPToNumber(ip)
	if err != nil {
		return false
	}
	for _, rule := range f.rules {
		if n >= rule.Start && n <= rule.End {
			return true
		}
	}
	return false
}

// Rules returns a copy of the current rules, newest first.
func (f *Firewall) Rules() []model.FirewallRule {
	out := make([]model.FirewallRule, len(f.rules))
	copy(out, f.rules)
	return out
}
