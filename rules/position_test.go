package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// diagram builds a position from rows of X (black), O (white) and '.'.
func diagram(t *testing.T, rows ...string) *Position {
	t.Helper()
	var black, white []Cell
	for y, row := range rows {
		for x, ch := range row {
			switch ch {
			case 'X':
				black = append(black, Cell{x, y})
			case 'O':
				white = append(white, Cell{x, y})
			}
		}
	}
	p, err := Setup{Width: len(rows[0]), Height: len(rows), Black: black, White: white}.Build()
	require.NoError(t, err)
	return p
}

func TestNewPositionSizes(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"9x9", 9, 9, false},
		{"19x19", 19, 19, false},
		{"rectangular", 7, 13, false},
		{"largest", MaxBoardSize, MaxBoardSize, false},
		{"zero", 0, 9, true},
		{"negative", 9, -1, true},
		{"too wide", MaxBoardSize + 1, 9, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPosition(tt.w, tt.h)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSize)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.w, p.Width())
			require.Equal(t, tt.h, p.Height())
			require.Equal(t, Black, p.NextToMove())
			require.Zero(t, p.StoneCount())
			require.Nil(t, p.Parent())
			_, ok := p.LastMove()
			require.False(t, ok)
		})
	}
}

func TestSetupRejectsBadStones(t *testing.T) {
	_, err := Setup{Width: 9, Height: 9, Black: []Cell{{2, 2}}, White: []Cell{{2, 2}}}.Build()
	require.ErrorIs(t, err, ErrOccupied)

	_, err = Setup{Width: 9, Height: 9, White: []Cell{{9, 0}}}.Build()
	require.ErrorIs(t, err, ErrOutOfBounds)

	// White in the corner is surrounded from the start.
	_, err = Setup{Width: 9, Height: 9, Black: []Cell{{1, 0}, {0, 1}}, White: []Cell{{0, 0}}}.Build()
	require.ErrorIs(t, err, ErrSuicide)
	var moveErr *MoveError
	require.ErrorAs(t, err, &moveErr)
	require.Equal(t, Cell{0, 0}, moveErr.Cell)
	require.Equal(t, White, moveErr.Color)

	// A group shares liberties along its whole chain.
	_, err = Setup{Width: 3, Height: 1, Black: []Cell{{0, 0}, {1, 0}}, White: []Cell{{2, 0}}}.Build()
	require.ErrorIs(t, err, ErrSuicide)
	_, err = Setup{Width: 3, Height: 1, Black: []Cell{{0, 0}, {1, 0}}}.Build()
	require.NoError(t, err)

	p, err := Setup{Width: 9, Height: 9, Komi: 6.5, NextToMove: White}.Build()
	require.NoError(t, err)
	require.Equal(t, White, p.NextToMove())
	require.Equal(t, 6.5, p.Komi())
}

func TestNeighbors(t *testing.T) {
	p, err := NewPosition(9, 9)
	require.NoError(t, err)

	require.Len(t, p.Neighbors(Cell{0, 0}), 2)
	require.Len(t, p.Neighbors(Cell{4, 0}), 3)
	require.Len(t, p.Neighbors(Cell{8, 8}), 2)
	require.ElementsMatch(t, []Cell{{4, 3}, {4, 5}, {3, 4}, {5, 4}}, p.Neighbors(Cell{4, 4}))
	require.False(t, p.IsOnBoard(Pass))
	require.False(t, p.IsEmpty(Cell{9, 0}))
}

func TestAllStonesOrdered(t *testing.T) {
	p := diagram(t,
		"..O",
		"X..",
		".OX",
	)
	require.Equal(t, []Stone{
		{Cell{2, 0}, White},
		{Cell{0, 1}, Black},
		{Cell{1, 2}, White},
		{Cell{2, 2}, Black},
	}, p.AllStones())
	require.Equal(t, []Cell{{0, 1}, {2, 2}}, p.Stones(Black))
	require.Equal(t, "..O\nX..\n.OX\n", p.String())
}

func TestSameStonesIgnoresHistory(t *testing.T) {
	direct := diagram(t,
		"X..",
		"...",
		"..O",
	)

	root, err := NewPosition(3, 3)
	require.NoError(t, err)
	played, err := ApplyMove(root, Black, Cell{0, 0})
	require.NoError(t, err)
	played, err = ApplyMove(played, White, Cell{2, 2})
	require.NoError(t, err)

	require.True(t, direct.SameStonesAs(played))
	require.Equal(t, direct.Hash(), played.Hash())
	require.False(t, root.SameStonesAs(played))
	require.NotEqual(t, root.Hash(), played.Hash())

	other, err := NewPosition(3, 4)
	require.NoError(t, err)
	require.False(t, root.SameStonesAs(other))
}

func TestDerivedCopiesKeepOriginal(t *testing.T) {
	p := diagram(t,
		"XO.",
		"...",
		"...",
	)
	q := p.WithNextToMove(White).WithKomi(7.5).WithRemoved([]Cell{{1, 0}, {5, 5}})

	require.Equal(t, Black, p.NextToMove())
	require.Zero(t, p.Komi())
	require.Empty(t, p.RemovedSpots())

	require.Equal(t, White, q.NextToMove())
	require.Equal(t, 7.5, q.Komi())
	require.Equal(t, []Cell{{1, 0}}, q.RemovedSpots())
	require.Equal(t, []Cell{{1, 0}}, q.DeadStones(White))
	require.True(t, q.SameStonesAs(p))
}
