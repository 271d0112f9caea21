package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// walls gives Black the first column and White the last one, with a neutral
// column between the two walls.
func walls(t *testing.T) *Position {
	return diagram(t,
		".X.O.",
		".X.O.",
		"OX.O.",
		".X.O.",
		".X.O.",
	)
}

func column(x int, ys ...int) []Cell {
	out := make([]Cell, len(ys))
	for i, y := range ys {
		out[i] = Cell{x, y}
	}
	return out
}

func TestTerritoryEmptyBoardIsDame(t *testing.T) {
	p, err := NewPosition(5, 5)
	require.NoError(t, err)
	tm := Territory(p, nil)
	require.Empty(t, tm.Black)
	require.Empty(t, tm.White)
	require.Len(t, tm.Dame, 25)
}

func TestTerritoryLivingIntruderSplitsArea(t *testing.T) {
	tm := Territory(walls(t), nil)

	require.Equal(t, column(4, 0, 1, 2, 3, 4), tm.White)
	require.Empty(t, tm.Black)
	// The white stone at (0,2) is alive, so the left column touches both
	// colors.
	require.Contains(t, tm.Dame, Cell{0, 0})
	require.Contains(t, tm.Dame, Cell{0, 4})
	require.Contains(t, tm.Dame, Cell{2, 2})
}

func TestTerritoryDeadStoneCountsForSurrounder(t *testing.T) {
	tm := Territory(walls(t), []Cell{{0, 2}})

	require.Equal(t, column(0, 0, 1, 2, 3, 4), tm.Black)
	require.Equal(t, column(4, 0, 1, 2, 3, 4), tm.White)
	require.Equal(t, column(2, 0, 1, 2, 3, 4), tm.Dame)

	owner, ok := tm.Owner(Cell{0, 2})
	require.True(t, ok)
	require.Equal(t, Black, owner)
	_, ok = tm.Owner(Cell{2, 2})
	require.False(t, ok)
}

func TestTerritoryDameMarkerBlocksRegion(t *testing.T) {
	p := diagram(t,
		".X.O.",
		".X.O.",
		".X.O.",
		".X.O.",
		".X.O.",
	)
	tm := Territory(p, []Cell{{0, 2}})

	require.Equal(t, []Cell{{0, 0}, {0, 1}, {0, 3}, {0, 4}}, tm.Black)
	require.Contains(t, tm.Dame, Cell{0, 2})
}

func TestEstimateTerritoryMarksPosition(t *testing.T) {
	p := walls(t).WithRemoved([]Cell{{0, 2}})
	est := EstimateTerritory(p)

	require.Empty(t, p.Territory(Black))
	require.Equal(t, column(0, 0, 1, 2, 3, 4), est.Territory(Black))
	require.Equal(t, column(4, 0, 1, 2, 3, 4), est.Territory(White))
	require.Equal(t, []Cell{{0, 2}}, est.DeadStones(White))

	owner, ok := est.TerritoryOwner(Cell{4, 4})
	require.True(t, ok)
	require.Equal(t, White, owner)
}

func TestToggleRemovedGroup(t *testing.T) {
	p := diagram(t,
		".X.O.",
		"OX.O.",
		"OX.O.",
		".X.O.",
		".X.O.",
	)
	marked := ToggleRemoved(p, Cell{0, 1})
	require.Equal(t, []Cell{{0, 1}, {0, 2}}, marked.RemovedSpots())
	require.Equal(t, column(0, 0, 1, 2, 3, 4), marked.Territory(Black))

	unmarked := ToggleRemoved(marked, Cell{0, 2})
	require.Empty(t, unmarked.RemovedSpots())
	require.Empty(t, unmarked.Territory(Black))

	require.Same(t, p, ToggleRemoved(p, Cell{7, 7}))
}

func TestToggleRemovedDameRegion(t *testing.T) {
	p := EstimateTerritory(walls(t).WithRemoved([]Cell{{0, 2}}))

	// The neutral column is not territory, so it is marked as a whole.
	marked := ToggleRemoved(p, Cell{2, 0})
	require.ElementsMatch(t, append(column(2, 0, 1, 2, 3, 4), Cell{0, 2}), marked.RemovedSpots())

	unmarked := ToggleRemoved(marked, Cell{2, 4})
	require.Equal(t, []Cell{{0, 2}}, unmarked.RemovedSpots())
}
