package rules

// Group is a maximal set of same-colored stones connected through
// orthogonal adjacency, together with its liberties.
type Group struct {
	Color     Color
	Stones    []Cell
	Liberties []Cell
}

// InAtari reports whether the group has exactly one liberty left.
func (g Group) InAtari() bool {
	return len(g.Liberties) == 1
}

// Contains reports whether c is one of the group's stones.
func (g Group) Contains(c Cell) bool {
	for _, s := range g.Stones {
		if s == c {
			return true
		}
	}
	return false
}

// FindGroup returns the group of the stone on c. The second result is false
// if c holds no stone.
func FindGroup(p *Position, c Cell) (Group, bool) {
	color, ok := p.stones[c]
	if !ok {
		return Group{}, false
	}
	stones, liberties := flood(p, c, color)
	sortCells(stones)
	sortCells(liberties)
	return Group{Color: color, Stones: stones, Liberties: liberties}, true
}

// Groups returns every group on the board, ordered by their first stone.
func Groups(p *Position) []Group {
	seen := make(map[Cell]bool, len(p.stones))
	var out []Group
	for _, s := range p.AllStones() {
		if seen[s.Cell] {
			continue
		}
		g, _ := FindGroup(p, s.Cell)
		for _, c := range g.Stones {
			seen[c] = true
		}
		out = append(out, g)
	}
	return out
}

// flood collects the stones of color connected to start and the empty cells
// touching them. It uses an explicit stack, so group size does not affect
// call depth.
func flood(p *Position, start Cell, color Color) (stones, liberties []Cell) {
	visited := map[Cell]bool{start: true}
	libs := make(map[Cell]bool)
	stack := []Cell{start}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stones = append(stones, c)
		for _, d := range directions {
			n := Cell{c.X + d.X, c.Y + d.Y}
			if !p.IsOnBoard(n) {
				continue
			}
			other, occupied := p.stones[n]
			switch {
			case !occupied:
				if !libs[n] {
					libs[n] = true
					liberties = append(liberties, n)
				}
			case other == color && !visited[n]:
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}
	return stones, liberties
}

// hasLiberty reports whether the group on start has at least one liberty,
// stopping as soon as one is found.
func hasLiberty(p *Position, start Cell, color Color) bool {
	visited := map[Cell]bool{start: true}
	stack := []Cell{start}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range directions {
			n := Cell{c.X + d.X, c.Y + d.Y}
			if !p.IsOnBoard(n) {
				continue
			}
			other, occupied := p.stones[n]
			if !occupied {
				return true
			}
			if other == color && !visited[n] {
				visited[n] = true
				stack = append(stack, n)
			}
		}
	}
	return false
}
