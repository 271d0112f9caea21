package rules

import "fmt"

// handicapPoints lists the fixed handicap placements per board size, as SGF
// letter pairs indexed by handicap. Handicaps 0 and 1 place no stones.
var handicapPoints = map[int][]string{
	19: {
		"", "",
		"pddp",
		"pppddp",
		"ddpppddp",
		"jjddpppddp",
		"djpjddpppddp",
		"djpjjjddpppddp",
		"jdjpdjpjddpppddp",
		"jdjpdjpjjjddpppddp",
	},
	13: {
		"", "",
		"jddj",
		"jjjddj",
		"ddjjjddj",
		"ggddjjjddj",
		"dgjgddjjjddj",
		"dgjgggddjjjddj",
		"gdgjdgjgddjjjddj",
		"gdgjdgjgggddjjjddj",
	},
	9: {
		"", "",
		"gccg",
		"gggccg",
		"ccgggccg",
		"eeccgggccg",
		"cegeccgggccg",
		"cegeeeccgggccg",
		"ecegcegeccgggccg",
		"ecegcegeeeccgggccg",
	},
}

// MaxHandicap is the largest handicap with a fixed placement.
const MaxHandicap = 9

// HandicapStones returns the fixed handicap points for a size x size board.
// Only 9, 13 and 19 have fixed placements.
func HandicapStones(size, handicap int) ([]Cell, error) {
	table, ok := handicapPoints[size]
	if !ok {
		return nil, fmt.Errorf("no fixed handicap placement for %dx%d: %w", size, size, ErrInvalidSize)
	}
	if handicap < 0 || handicap > MaxHandicap {
		return nil, fmt.Errorf("handicap %d out of range 0-%d", handicap, MaxHandicap)
	}
	pairs := table[handicap]
	out := make([]Cell, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Cell{X: int(pairs[i] - 'a'), Y: int(pairs[i+1] - 'a')})
	}
	return out, nil
}

// DetermineKomi returns the customary komi for a board size and handicap.
func DetermineKomi(size, handicap int) float64 {
	if size == 9 {
		if handicap == 0 {
			return 5.5
		}
		return 3.5
	}
	if handicap == 0 {
		return 6.5
	}
	return 0.5
}

// NewGame returns the root position of an even or handicap game on a
// size x size board. With a handicap of two or more, Black's stones are
// placed and White moves first.
func NewGame(size, handicap int) (*Position, error) {
	setup := Setup{
		Width:  size,
		Height: size,
		Komi:   DetermineKomi(size, handicap),
	}
	if handicap > 1 {
		stones, err := HandicapStones(size, handicap)
		if err != nil {
			return nil, err
		}
		setup.Black = stones
		setup.NextToMove = White
	}
	return setup.Build()
}
