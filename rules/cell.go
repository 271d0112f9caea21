// Package rules implements the mechanics of Go positions: stones, groups and
// liberties, move legality with captures, ko, replay of move lists and
// territory estimation.
//
// Positions are immutable once built. Every operation that changes the board
// returns a new Position linked to the one it was derived from.
package rules

import "fmt"

// Cell is a board intersection. X runs left to right, Y top to bottom,
// both 0-indexed.
type Cell struct {
	X int
	Y int
}

// Pass is the sentinel cell for a pass move. It is never on the board.
var Pass = Cell{X: -1, Y: -1}

// IsPass returns true if c is the pass sentinel.
func (c Cell) IsPass() bool {
	return c == Pass
}

func (c Cell) String() string {
	if c.IsPass() {
		return "pass"
	}
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Color is the color of a stone.
type Color int

const (
	Black Color = iota + 1
	White
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	if c == Black {
		return White
	}
	return Black
}

// Valid reports whether c is Black or White.
func (c Color) Valid() bool {
	return c == Black || c == White
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "none"
	}
}

// Stone is a colored stone on a cell.
type Stone struct {
	Cell  Cell
	Color Color
}

// directions are the four orthogonal offsets, in up, down, left, right order.
var directions = [4]Cell{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
