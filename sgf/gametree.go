package sgf

import (
	"fmt"

	"termsuji-rules/rules"
)

// GameNode is one position in the game tree.
type GameNode struct {
	Move     rules.Move // zero for the root
	Position *rules.Position
	Parent   *GameNode
	Children []*GameNode // First child = main line
}

// GameTree tracks an in-memory tree of positions for review and planning.
// Every node's Position is the result of playing Move on its parent's
// Position.
type GameTree struct {
	Root    *GameNode
	Current *GameNode
	Ko      rules.KoRule
}

// NewGameTree creates a tree rooted at root.
func NewGameTree(root *rules.Position, ko rules.KoRule) *GameTree {
	node := &GameNode{Position: root}
	return &GameTree{Root: node, Current: node, Ko: ko}
}

// TreeFromPosition creates a tree whose main line is the history of p and
// leaves Current at the root.
func TreeFromPosition(p *rules.Position, ko rules.KoRule) *GameTree {
	chain := rules.Chain(p)
	t := NewGameTree(chain[0], ko)
	cur := t.Root
	for _, q := range chain[1:] {
		last, _ := q.LastMove()
		child := &GameNode{
			Move:     rules.Move{Cell: last, Color: q.LastPlayerToMove()},
			Position: q,
			Parent:   cur,
		}
		cur.Children = append(cur.Children, child)
		cur = child
	}
	return t
}

// Play plays c for the side to move and advances to the resulting node.
// If a child with the same move already exists, navigates to it instead of
// creating a duplicate.
func (t *GameTree) Play(c rules.Cell) (*GameNode, error) {
	pos := t.Current.Position
	color := pos.NextToMove()
	for _, child := range t.Current.Children {
		if child.Move.Cell == c && child.Move.Color == color {
			t.Current = child
			return child, nil
		}
	}
	next, err := rules.PlayMove(pos, color, c, t.Ko)
	if err != nil {
		return nil, fmt.Errorf("play %s: %w", c, err)
	}
	node := &GameNode{
		Move:     rules.Move{Cell: c, Color: color},
		Position: next,
		Parent:   t.Current,
	}
	t.Current.Children = append(t.Current.Children, node)
	t.Current = node
	return node, nil
}

// Position returns the position at the current node.
func (t *GameTree) Position() *rules.Position {
	return t.Current.Position
}

// Back moves current to its parent. Returns false if already at root.
func (t *GameTree) Back() bool {
	if t.Current == t.Root {
		return false
	}
	t.Current = t.Current.Parent
	return true
}

// Forward moves current to children[idx]. Returns false if no such child.
func (t *GameTree) Forward(idx int) bool {
	if idx < 0 || idx >= len(t.Current.Children) {
		return false
	}
	t.Current = t.Current.Children[idx]
	return true
}

// ToStart and ToEnd jump along the main line.
func (t *GameTree) ToStart() {
	t.Current = t.Root
}

func (t *GameTree) ToEnd() {
	for t.Forward(0) {
	}
}

// NextVariation switches to the next sibling (among parent's children). Wraps around.
func (t *GameTree) NextVariation() bool {
	return t.stepVariation(1)
}

// PrevVariation switches to the previous sibling (among parent's children). Wraps around.
func (t *GameTree) PrevVariation() bool {
	return t.stepVariation(-1)
}

func (t *GameTree) stepVariation(delta int) bool {
	if t.Current.Parent == nil {
		return false
	}
	siblings := t.Current.Parent.Children
	if len(siblings) < 2 {
		return false
	}
	idx := t.childIndex()
	t.Current = siblings[(idx+delta+len(siblings))%len(siblings)]
	return true
}

// PathFromRoot returns the moves from root to current.
func (t *GameTree) PathFromRoot() []rules.Move {
	var path []rules.Move
	for node := t.Current; node != t.Root; node = node.Parent {
		path = append(path, node.Move)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// NumVariations returns the number of siblings at the current node's level.
// Returns 0 if at root.
func (t *GameTree) NumVariations() int {
	if t.Current.Parent == nil {
		return 0
	}
	return len(t.Current.Parent.Children)
}

// VariationIndex returns which child of parent the current node is (0-based).
// Returns -1 if at root.
func (t *GameTree) VariationIndex() int {
	return t.childIndex()
}

// HasChildren returns true if the current node has any children.
func (t *GameTree) HasChildren() bool {
	return len(t.Current.Children) > 0
}

func (t *GameTree) childIndex() int {
	if t.Current.Parent == nil {
		return -1
	}
	for i, child := range t.Current.Parent.Children {
		if child == t.Current {
			return i
		}
	}
	return -1
}
