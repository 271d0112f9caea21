package rules

import (
	"sort"
	"strings"
)

// MaxBoardSize is the largest supported board dimension. It is bounded by
// the number of column letters available in engine coordinates.
const MaxBoardSize = 25

// Position is a snapshot of the board after zero or more moves.
//
// A Position is never modified after it is built, so it can be shared freely
// between goroutines. Moves, stone removal and territory marking all return a
// new Position.
type Position struct {
	width  int
	height int
	stones map[Cell]Color

	lastMove    Cell
	hasLastMove bool
	lastPlayer  Color
	nextToMove  Color

	whiteCaptures int
	blackCaptures int

	removed        map[Cell]struct{}
	whiteTerritory map[Cell]struct{}
	blackTerritory map[Cell]struct{}

	komi       float64
	parent     *Position
	moveNumber int

	hash    uint64
	zobrist *zobristTable
}

// Setup describes an initial stone layout, from handicap placement or a
// puzzle diagram.
type Setup struct {
	Width      int
	Height     int
	Black      []Cell
	White      []Cell
	Komi       float64
	NextToMove Color // defaults to Black
}

// Build creates the root Position for the setup. Layouts leaving a group
// without liberties are rejected with ErrSuicide, since no sequence of legal
// moves can reach them.
func (s Setup) Build() (*Position, error) {
	p, err := NewPosition(s.Width, s.Height)
	if err != nil {
		return nil, err
	}
	p.komi = s.Komi
	if s.NextToMove.Valid() {
		p.nextToMove = s.NextToMove
	}
	for _, layer := range []struct {
		cells []Cell
		color Color
	}{{s.Black, Black}, {s.White, White}} {
		for _, c := range layer.cells {
			if !p.IsOnBoard(c) {
				return nil, &MoveError{Kind: ErrOutOfBounds, Color: layer.color, Cell: c}
			}
			if _, taken := p.stones[c]; taken {
				return nil, &MoveError{Kind: ErrOccupied, Color: layer.color, Cell: c}
			}
			p.put(c, layer.color)
		}
	}
	for _, st := range p.AllStones() {
		if !hasLiberty(p, st.Cell, st.Color) {
			return nil, &MoveError{Kind: ErrSuicide, Color: st.Color, Cell: st.Cell}
		}
	}
	return p, nil
}

// NewPosition returns an empty width x height board with Black to move.
func NewPosition(width, height int) (*Position, error) {
	if width < 1 || height < 1 || width > MaxBoardSize || height > MaxBoardSize {
		return nil, ErrInvalidSize
	}
	return &Position{
		width:      width,
		height:     height,
		stones:     make(map[Cell]Color),
		lastMove:   Pass,
		nextToMove: Black,
		zobrist:    zobristFor(width, height),
	}, nil
}

// Width returns the number of columns.
func (p *Position) Width() int {
	return p.width
}

// Height returns the number of rows.
func (p *Position) Height() int {
	return p.height
}

// Komi returns the compensation added to White's score.
func (p *Position) Komi() float64 {
	return p.komi
}

// IsOnBoard reports whether c is a real intersection of this board.
func (p *Position) IsOnBoard(c Cell) bool {
	return c.X >= 0 && c.X < p.width && c.Y >= 0 && c.Y < p.height
}

// Neighbors returns the up to four on-board cells orthogonally adjacent to c.
func (p *Position) Neighbors(c Cell) []Cell {
	out := make([]Cell, 0, 4)
	for _, d := range directions {
		n := Cell{c.X + d.X, c.Y + d.Y}
		if p.IsOnBoard(n) {
			out = append(out, n)
		}
	}
	return out
}

// StoneAt returns the color of the stone on c, if any.
func (p *Position) StoneAt(c Cell) (Color, bool) {
	color, ok := p.stones[c]
	return color, ok
}

// IsEmpty reports whether c is on the board and has no stone.
func (p *Position) IsEmpty(c Cell) bool {
	if !p.IsOnBoard(c) {
		return false
	}
	_, ok := p.stones[c]
	return !ok
}

// AllStones returns every stone, ordered row by row from the top-left.
func (p *Position) AllStones() []Stone {
	out := make([]Stone, 0, len(p.stones))
	for c, color := range p.stones {
		out = append(out, Stone{Cell: c, Color: color})
	}
	sort.Slice(out, func(i, j int) bool { return cellLess(out[i].Cell, out[j].Cell) })
	return out
}

// Stones returns the cells holding stones of the given color, in row order.
func (p *Position) Stones(color Color) []Cell {
	var out []Cell
	for c, col := range p.stones {
		if col == color {
			out = append(out, c)
		}
	}
	sortCells(out)
	return out
}

// StoneCount returns the number of stones on the board.
func (p *Position) StoneCount() int {
	return len(p.stones)
}

// LastMove returns the move that produced this position. The second result
// is false for a root position.
func (p *Position) LastMove() (Cell, bool) {
	return p.lastMove, p.hasLastMove
}

// LastPlayerToMove returns the color that played LastMove, or zero for a
// root position.
func (p *Position) LastPlayerToMove() Color {
	return p.lastPlayer
}

// NextToMove returns the color whose turn it is.
func (p *Position) NextToMove() Color {
	return p.nextToMove
}

// Captures returns how many stones the given color has captured so far.
func (p *Position) Captures(color Color) int {
	if color == White {
		return p.whiteCaptures
	}
	return p.blackCaptures
}

// IsRemoved reports whether c was marked dead (or as dame) in the
// stone-removal phase.
func (p *Position) IsRemoved(c Cell) bool {
	_, ok := p.removed[c]
	return ok
}

// RemovedSpots returns the cells marked in the stone-removal phase.
func (p *Position) RemovedSpots() []Cell {
	return setCells(p.removed)
}

// DeadStones returns the stones of the given color marked dead.
func (p *Position) DeadStones(color Color) []Cell {
	var out []Cell
	for c := range p.removed {
		if p.stones[c] == color {
			out = append(out, c)
		}
	}
	sortCells(out)
	return out
}

// Territory returns the cells attributed to color by the last territory
// estimate. It is empty until the estimator has run.
func (p *Position) Territory(color Color) []Cell {
	if color == White {
		return setCells(p.whiteTerritory)
	}
	return setCells(p.blackTerritory)
}

// TerritoryOwner returns the color owning c as territory, if any.
func (p *Position) TerritoryOwner(c Cell) (Color, bool) {
	if _, ok := p.blackTerritory[c]; ok {
		return Black, true
	}
	if _, ok := p.whiteTerritory[c]; ok {
		return White, true
	}
	return 0, false
}

// Parent returns the position this one was derived from, or nil for a root.
func (p *Position) Parent() *Position {
	return p.parent
}

// MoveNumber returns the number of moves (passes included) played since the
// root position.
func (p *Position) MoveNumber() int {
	return p.moveNumber
}

// Hash returns the Zobrist hash of the stone layout. Equal layouts on the
// same board shape always have equal hashes.
func (p *Position) Hash() uint64 {
	return p.hash
}

// SameStonesAs reports whether both positions have exactly the same stones.
// Move history, captures and markings are ignored.
func (p *Position) SameStonesAs(other *Position) bool {
	if other == nil || p.width != other.width || p.height != other.height {
		return false
	}
	if p.hash != other.hash || len(p.stones) != len(other.stones) {
		return false
	}
	for c, color := range p.stones {
		if other.stones[c] != color {
			return false
		}
	}
	return true
}

// CapturedByLastMove returns the stones that were on the parent position
// but are gone from this one.
func (p *Position) CapturedByLastMove() []Stone {
	if p.parent == nil {
		return nil
	}
	var out []Stone
	for c, color := range p.parent.stones {
		if _, ok := p.stones[c]; !ok {
			out = append(out, Stone{Cell: c, Color: color})
		}
	}
	sort.Slice(out, func(i, j int) bool { return cellLess(out[i].Cell, out[j].Cell) })
	return out
}

// WithNextToMove returns a copy of p with a different player to move. The
// copy keeps p's parent.
func (p *Position) WithNextToMove(color Color) *Position {
	q := p.clone()
	q.nextToMove = color
	return q
}

// WithKomi returns a copy of p with a different komi.
func (p *Position) WithKomi(komi float64) *Position {
	q := p.clone()
	q.komi = komi
	return q
}

// WithRemoved returns a copy of p whose removed set is exactly cells.
// Off-board cells are ignored. Territory marks are cleared because they
// depend on the removed set.
func (p *Position) WithRemoved(cells []Cell) *Position {
	q := p.clone()
	q.removed = make(map[Cell]struct{}, len(cells))
	for _, c := range cells {
		if p.IsOnBoard(c) {
			q.removed[c] = struct{}{}
		}
	}
	q.blackTerritory = nil
	q.whiteTerritory = nil
	return q
}

// WithTerritory returns a copy of p with the given territory marks.
func (p *Position) WithTerritory(black, white []Cell) *Position {
	q := p.clone()
	q.blackTerritory = cellSet(black)
	q.whiteTerritory = cellSet(white)
	return q
}

// String renders the board as text: X for black, O for white, . for empty.
func (p *Position) String() string {
	var b strings.Builder
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			switch p.stones[Cell{x, y}] {
			case Black:
				b.WriteByte('X')
			case White:
				b.WriteByte('O')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// clone copies p including its parent link. Marking sets are shared since
// they are never written after construction.
func (p *Position) clone() *Position {
	q := *p
	q.stones = make(map[Cell]Color, len(p.stones)+1)
	for c, color := range p.stones {
		q.stones[c] = color
	}
	return &q
}

// child returns a copy of p to be turned into the result of a move.
func (p *Position) child() *Position {
	q := p.clone()
	q.parent = p
	q.moveNumber = p.moveNumber + 1
	q.removed = nil
	q.blackTerritory = nil
	q.whiteTerritory = nil
	return q
}

// put and remove are only used while a new position is being built.
func (p *Position) put(c Cell, color Color) {
	p.stones[c] = color
	p.hash ^= p.zobrist.key(c, color)
}

func (p *Position) remove(c Cell) {
	color, ok := p.stones[c]
	if !ok {
		return
	}
	delete(p.stones, c)
	p.hash ^= p.zobrist.key(c, color)
}

func cellLess(a, b Cell) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

func sortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool { return cellLess(cells[i], cells[j]) })
}

func setCells(set map[Cell]struct{}) []Cell {
	out := make([]Cell, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sortCells(out)
	return out
}

func cellSet(cells []Cell) map[Cell]struct{} {
	set := make(map[Cell]struct{}, len(cells))
	for _, c := range cells {
		set[c] = struct{}{}
	}
	return set
}
