package rules

// ToggleRemoved marks or unmarks the region around c during stone removal
// and returns the re-estimated position.
//
// The region is the connected area sharing c's kind: stones of the same
// color, points of the same territory, dame markers, or plain empty points.
// If c is already marked the whole region is unmarked, otherwise it is
// marked. Off-board cells leave p unchanged.
func ToggleRemoved(p *Position, c Cell) *Position {
	if !p.IsOnBoard(c) {
		return p
	}

	kind := removalKind(p, c)
	region := []Cell{}
	seen := map[Cell]bool{c: true}
	stack := []Cell{c}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		region = append(region, cur)
		for _, n := range p.Neighbors(cur) {
			if seen[n] || removalKind(p, n) != kind {
				continue
			}
			seen[n] = true
			stack = append(stack, n)
		}
	}

	removed := cellSet(setCells(p.removed))
	if _, marked := p.removed[c]; marked {
		for _, r := range region {
			delete(removed, r)
		}
	} else {
		for _, r := range region {
			removed[r] = struct{}{}
		}
	}
	return EstimateTerritory(p.WithRemoved(setCells(removed)))
}

type regionKind struct {
	stone     Color
	territory Color
	dame      bool
}

func removalKind(p *Position, c Cell) regionKind {
	if color, ok := p.stones[c]; ok {
		return regionKind{stone: color}
	}
	if _, ok := p.removed[c]; ok {
		return regionKind{dame: true}
	}
	owner, _ := p.TerritoryOwner(c)
	return regionKind{territory: owner}
}
