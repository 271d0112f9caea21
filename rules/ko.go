package rules

import (
	"fmt"
	"strings"
)

// KoRule selects how repeated positions are detected.
type KoRule int

const (
	// KoNone accepts every move ApplyMove accepts.
	KoNone KoRule = iota
	// KoSimple forbids recreating the position from two moves ago.
	KoSimple
	// KoSuperko forbids recreating any earlier position (positional superko).
	KoSuperko
)

func (r KoRule) String() string {
	switch r {
	case KoSimple:
		return "simple"
	case KoSuperko:
		return "superko"
	default:
		return "none"
	}
}

// ParseKoRule reads a rule name as used in configuration files.
func ParseKoRule(s string) (KoRule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "off":
		return KoNone, nil
	case "simple", "ko":
		return KoSimple, nil
	case "superko", "positional", "psk":
		return KoSuperko, nil
	}
	return KoNone, fmt.Errorf("unknown ko rule %q", s)
}

// History returns the ancestors of p, nearest first. p itself is not
// included.
func History(p *Position) []*Position {
	var out []*Position
	for q := p.parent; q != nil; q = q.parent {
		out = append(out, q)
	}
	return out
}

// IsIllegalKo reports whether candidate has the same stones as any position
// in history. Only the stone layout is compared.
func IsIllegalKo(history []*Position, candidate *Position) bool {
	for _, h := range history {
		if h.SameStonesAs(candidate) {
			return true
		}
	}
	return false
}

// IsIllegalSimpleKo reports whether candidate recreates the position from
// two moves earlier, which is the immediate recapture of a ko.
func IsIllegalSimpleKo(candidate *Position) bool {
	if candidate.parent == nil || candidate.parent.parent == nil {
		return false
	}
	return candidate.parent.parent.SameStonesAs(candidate)
}

// CheckKo returns a *MoveError wrapping ErrKoViolation if candidate breaks
// rule. Passes never violate ko.
func CheckKo(rule KoRule, candidate *Position) error {
	last, ok := candidate.LastMove()
	if !ok || last.IsPass() {
		return nil
	}
	var illegal bool
	switch rule {
	case KoSimple:
		illegal = IsIllegalSimpleKo(candidate)
	case KoSuperko:
		illegal = isRepeated(candidate)
	}
	if illegal {
		return &MoveError{Kind: ErrKoViolation, Color: candidate.lastPlayer, Cell: last}
	}
	return nil
}

// PlayMove is ApplyMove followed by CheckKo. It is what interactive play
// should use.
func PlayMove(p *Position, color Color, c Cell, rule KoRule) (*Position, error) {
	next, err := ApplyMove(p, color, c)
	if err != nil {
		return nil, err
	}
	if err := CheckKo(rule, next); err != nil {
		return nil, err
	}
	return next, nil
}

// isRepeated is IsIllegalKo over the ancestors of p without building the
// history slice.
func isRepeated(p *Position) bool {
	for q := p.parent; q != nil; q = q.parent {
		if q.SameStonesAs(p) {
			return true
		}
	}
	return false
}
