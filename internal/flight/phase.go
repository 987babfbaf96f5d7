package flight

import (
	"fmt"
	"strings"
)

// Phase is the active flight phase. Exactly one is active per tick.
type Phase int

const (
	Launch Phase = iota
	Boost
	RamjetCruise
	TerminalGuided
	Impacted
	Missed
)

var phaseNames = [...]string{
	Launch:         "launch",
	Boost:          "boost",
	RamjetCruise:   "ramjet_cruise",
	TerminalGuided: "terminal_guided",
	Impacted:       "impacted",
	Missed:         "missed",
}

func (p Phase) String() string {
	if p < Launch || p > Missed {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Terminal reports whether the run ends in this phase.
func (p Phase) Terminal() bool {
	return p == Impacted || p == Missed
}

// CanTransition reports whether p may advance to next. Flight phases only move
// forward; terminal phases are reachable from any flight phase and are final.
func (p Phase) CanTransition(next Phase) bool {
	if p.Terminal() || next <= p {
		return false
	}
	if next.Terminal() {
		return true
	}
	return next == p+1
}

// ParsePhase converts a phase name back into a Phase.
func ParsePhase(s string) (Phase, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range phaseNames {
		if n == s {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown flight phase %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
