// Package types contains shared data structures for termsuji.
package types

import (
	"encoding/json"

	"termsuji-rules/rules"
)

// Point values used in BoardState.Board and BoardState.Marks.
const (
	Empty = 0
	Black = 1
	White = 2
)

// BoardState is a read-only snapshot of a position for renderers.
// Board is indexed as Board[y][x] where 0=empty, 1=black, 2=white. Marks
// uses the same layout and holds the territory owner of a point.
type BoardState struct {
	MoveNumber    int        `json:"move_number"`
	PlayerToMove  int        `json:"player_to_move"` // 1=black, 2=white
	Phase         string     `json:"phase"`          // "playing", "finished"
	Board         [][]int    `json:"board"`
	Marks         [][]int    `json:"territory"`
	Removed       []BoardPos `json:"removed,omitempty"`
	BlackCaptures int        `json:"black_captures"`
	WhiteCaptures int        `json:"white_captures"`
	Komi          float64    `json:"komi"`
	Outcome       string     `json:"outcome"`
	LastMove      BoardPos   `json:"last_move"`
}

// Finished returns true if the game is over.
func (b *BoardState) Finished() bool {
	return b.Phase == "finished"
}

// Height returns the board height.
func (b *BoardState) Height() int {
	return len(b.Board)
}

// Width returns the board width.
func (b *BoardState) Width() int {
	if b.Height() == 0 {
		return 0
	}
	return len(b.Board[0])
}

// IsRemoved reports whether (x, y) is marked dead or dame.
func (b *BoardState) IsRemoved(x, y int) bool {
	for _, p := range b.Removed {
		if p.X == x && p.Y == y {
			return true
		}
	}
	return false
}

// BoardPos represents a position on the board. (-1, -1) is a pass or no
// move.
type BoardPos struct {
	X int
	Y int
}

// UnmarshalJSON allows BoardPos to be unmarshaled from a JSON array [x, y].
func (p *BoardPos) UnmarshalJSON(data []byte) error {
	var v []float64
	err := json.Unmarshal(data, &v)
	if err != nil {
		return err
	}
	if len(v) < 2 {
		p.X, p.Y = -1, -1
		return nil
	}
	p.X = int(v[0])
	p.Y = int(v[1])
	return nil
}

// MarshalJSON writes BoardPos as [x, y].
func (p BoardPos) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// Cell converts p to a rules cell.
func (p BoardPos) Cell() rules.Cell {
	if p.X < 0 || p.Y < 0 {
		return rules.Pass
	}
	return rules.Cell{X: p.X, Y: p.Y}
}

// NewBoardState creates a new empty board of the given size.
func NewBoardState(size int) *BoardState {
	return &BoardState{
		PlayerToMove: Black,
		Phase:        "playing",
		Board:        grid(size, size),
		Marks:        grid(size, size),
		LastMove:     BoardPos{X: -1, Y: -1},
	}
}

// FromPosition snapshots p.
func FromPosition(p *rules.Position) *BoardState {
	b := &BoardState{
		MoveNumber:    p.MoveNumber(),
		PlayerToMove:  int(p.NextToMove()),
		Phase:         "playing",
		Board:         grid(p.Width(), p.Height()),
		Marks:         grid(p.Width(), p.Height()),
		BlackCaptures: p.Captures(rules.Black),
		WhiteCaptures: p.Captures(rules.White),
		Komi:          p.Komi(),
		LastMove:      BoardPos{X: -1, Y: -1},
	}
	for _, s := range p.AllStones() {
		b.Board[s.Cell.Y][s.Cell.X] = int(s.Color)
	}
	for _, color := range []rules.Color{rules.Black, rules.White} {
		for _, c := range p.Territory(color) {
			b.Marks[c.Y][c.X] = int(color)
		}
	}
	for _, c := range p.RemovedSpots() {
		b.Removed = append(b.Removed, BoardPos{X: c.X, Y: c.Y})
	}
	if last, ok := p.LastMove(); ok && !last.IsPass() {
		b.LastMove = BoardPos{X: last.X, Y: last.Y}
	}
	return b
}

func grid(width, height int) [][]int {
	g := make([][]int, height)
	for i := range g {
		g[i] = make([]int, width)
	}
	return g
}
