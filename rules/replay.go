package rules

import (
	"errors"
	"fmt"
	"strings"
)

// InitialState is the starting point of a game record: board shape, setup
// stones and who moves first.
type InitialState struct {
	Width  int
	Height int
	Black  []Cell
	White  []Cell
	Komi   float64

	WhiteFirst bool

	// With FreeHandicapPlacement, Black plays the first Handicap moves in a
	// row to place its handicap stones.
	Handicap              int
	FreeHandicapPlacement bool
}

// Move is one entry of a move list. A zero Color means the color is
// derived from the turn order.
type Move struct {
	Cell      Cell
	Color     Color
	ElapsedMs int64
}

// Policy decides what Replay does with a move the rules reject.
type Policy int

const (
	// Strict aborts the replay with a *ReplayError.
	Strict Policy = iota
	// CoerceToPass replaces the rejected move with a pass and continues.
	CoerceToPass
)

func (p Policy) String() string {
	if p == CoerceToPass {
		return "coerce"
	}
	return "strict"
}

// ParsePolicy reads a policy name as used in configuration files.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "coerce", "pass", "coerce-to-pass":
		return CoerceToPass, nil
	}
	return Strict, fmt.Errorf("unknown replay policy %q", s)
}

// ReplayOptions controls Replay. The zero value replays every move strictly
// without ko checks.
type ReplayOptions struct {
	Policy Policy
	// Limit stops the replay after that many moves. Zero or less replays all.
	Limit int
	Ko    KoRule
	// OnCoerced is called for each move replaced by a pass under
	// CoerceToPass.
	OnCoerced func(index int, m Move, err error)
}

// Root builds the position before the first move of init.
func Root(init InitialState) (*Position, error) {
	next := Black
	if init.WhiteFirst {
		next = White
	}
	return Setup{
		Width:      init.Width,
		Height:     init.Height,
		Black:      init.Black,
		White:      init.White,
		Komi:       init.Komi,
		NextToMove: next,
	}.Build()
}

// Replay plays moves on top of init and returns the last position. Every
// intermediate position is reachable through Parent.
func Replay(init InitialState, moves []Move, opts ReplayOptions) (*Position, error) {
	pos, err := Root(init)
	if err != nil {
		return nil, err
	}

	n := len(moves)
	if opts.Limit > 0 && opts.Limit < n {
		n = opts.Limit
	}

	turn := pos.nextToMove
	for i := 0; i < n; i++ {
		m := moves[i]
		color := m.Color
		if !color.Valid() {
			color = turn
		}

		next, err := ApplyMove(pos, color, m.Cell)
		if err == nil {
			err = CheckKo(opts.Ko, next)
		}
		if err != nil {
			if opts.Policy != CoerceToPass {
				return nil, &ReplayError{Index: i, Move: m, Err: err}
			}
			if opts.OnCoerced != nil {
				opts.OnCoerced(i, m, err)
			}
			next, _ = ApplyMove(pos, color, Pass)
		}

		if !init.FreeHandicapPlacement || i >= init.Handicap-1 {
			turn = color.Opponent()
		} else {
			turn = color
		}
		next.nextToMove = turn
		pos = next
	}
	return pos, nil
}

// Chain returns the positions from the root to p, in play order.
func Chain(p *Position) []*Position {
	var out []*Position
	for q := p; q != nil; q = q.parent {
		out = append(out, q)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// IsMalformed reports whether err came from replaying a history the rules
// reject.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedHistory)
}
