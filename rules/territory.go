package rules

// TerritoryMap is the result of a territory estimate. Black and White hold
// the points owned by each color, dead stones inside their area included.
// Dame holds the points owned by nobody.
type TerritoryMap struct {
	Black []Cell
	White []Cell
	Dame  []Cell
}

// Owner returns the color owning c in the map, if any.
func (t TerritoryMap) Owner(c Cell) (Color, bool) {
	for _, b := range t.Black {
		if b == c {
			return Black, true
		}
	}
	for _, w := range t.White {
		if w == c {
			return White, true
		}
	}
	return 0, false
}

// Territory splits the board into regions of points that are not living
// stones and assigns each region to the only color bordering it.
//
// removed lists the cells marked in the stone-removal phase. A marked stone
// is dead and counts as part of the surrounding region. A marked empty point
// is dame: it is never territory and regions do not extend through it.
// Regions touching both colors, or no living stone at all, are dame.
func Territory(p *Position, removed []Cell) TerritoryMap {
	marked := cellSet(removed)
	living := func(c Cell) bool {
		_, stone := p.stones[c]
		_, dead := marked[c]
		return stone && !dead
	}
	dame := func(c Cell) bool {
		_, stone := p.stones[c]
		_, mark := marked[c]
		return !stone && mark
	}

	var tm TerritoryMap
	seen := make(map[Cell]bool)
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			start := Cell{x, y}
			if seen[start] || living(start) {
				continue
			}
			if dame(start) {
				seen[start] = true
				tm.Dame = append(tm.Dame, start)
				continue
			}

			var region []Cell
			var touchesBlack, touchesWhite bool
			seen[start] = true
			stack := []Cell{start}
			for len(stack) > 0 {
				c := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				region = append(region, c)
				for _, n := range p.Neighbors(c) {
					switch {
					case living(n):
						if p.stones[n] == Black {
							touchesBlack = true
						} else {
							touchesWhite = true
						}
					case dame(n) || seen[n]:
					default:
						seen[n] = true
						stack = append(stack, n)
					}
				}
			}

			switch {
			case touchesBlack && !touchesWhite:
				tm.Black = append(tm.Black, region...)
			case touchesWhite && !touchesBlack:
				tm.White = append(tm.White, region...)
			default:
				tm.Dame = append(tm.Dame, region...)
			}
		}
	}
	sortCells(tm.Black)
	sortCells(tm.White)
	sortCells(tm.Dame)
	return tm
}

// EstimateTerritory runs Territory with the removal marks of p and returns a
// copy of p carrying the result.
func EstimateTerritory(p *Position) *Position {
	tm := Territory(p, setCells(p.removed))
	return p.WithTerritory(tm.Black, tm.White)
}
