package rules

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstMoveOnEmptyBoard(t *testing.T) {
	root, err := NewPosition(9, 9)
	require.NoError(t, err)

	p, err := ApplyMove(root, Black, Cell{4, 4})
	require.NoError(t, err)

	color, ok := p.StoneAt(Cell{4, 4})
	require.True(t, ok)
	require.Equal(t, Black, color)
	require.Equal(t, 1, p.StoneCount())
	require.Equal(t, White, p.NextToMove())
	require.Equal(t, Black, p.LastPlayerToMove())
	last, ok := p.LastMove()
	require.True(t, ok)
	require.Equal(t, Cell{4, 4}, last)
	require.Same(t, root, p.Parent())
	require.Equal(t, 1, p.MoveNumber())

	require.Zero(t, root.StoneCount())
}

func TestCaptureSingleStone(t *testing.T) {
	p := diagram(t,
		".X..",
		"XO..",
		".X..",
		"....",
	)
	q, err := ApplyMove(p, Black, Cell{2, 1})
	require.NoError(t, err)

	require.Equal(t, 1, q.Captures(Black))
	require.Zero(t, q.Captures(White))
	require.True(t, q.IsEmpty(Cell{1, 1}))
	require.Equal(t, []Stone{{Cell{1, 1}, White}}, q.CapturedByLastMove())
	require.Equal(t, p.StoneCount(), q.StoneCount())
}

func TestCaptureTwoGroupsAtOnce(t *testing.T) {
	p := diagram(t,
		".XO",
		"XO.",
		"O..",
	)
	q, err := ApplyMove(p, White, Cell{0, 0})
	require.NoError(t, err)

	require.Equal(t, 2, q.Captures(White))
	require.Empty(t, q.Stones(Black))
	g, ok := FindGroup(q, Cell{0, 0})
	require.True(t, ok)
	require.Equal(t, []Cell{{1, 0}, {0, 1}}, g.Liberties)
}

func TestIllegalMoves(t *testing.T) {
	p := diagram(t,
		".X.",
		"X..",
		"...",
	)
	tests := []struct {
		name  string
		color Color
		cell  Cell
		want  error
	}{
		{"occupied by own stone", Black, Cell{1, 0}, ErrOccupied},
		{"occupied by opponent", White, Cell{0, 1}, ErrOccupied},
		{"off board", Black, Cell{3, 0}, ErrOutOfBounds},
		{"negative", White, Cell{-1, 2}, ErrOutOfBounds},
		{"suicide", White, Cell{0, 0}, ErrSuicide},
		{"no color", 0, Cell{2, 2}, ErrInvalidColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ApplyMove(p, tt.color, tt.cell)
			require.Nil(t, q)
			require.ErrorIs(t, err, tt.want)

			var me *MoveError
			require.True(t, errors.As(err, &me))
			require.Equal(t, tt.cell, me.Cell)
		})
	}
	require.Equal(t, 2, p.StoneCount())
}

func TestSelfAtariIsLegal(t *testing.T) {
	p := diagram(t,
		".X.",
		"...",
		"...",
	)
	q, err := ApplyMove(p, White, Cell{0, 0})
	require.NoError(t, err)
	g, ok := FindGroup(q, Cell{0, 0})
	require.True(t, ok)
	require.True(t, g.InAtari())
}

func TestPassKeepsStones(t *testing.T) {
	p := diagram(t,
		"X..",
		"...",
		"..O",
	)
	q, err := ApplyMove(p, Black, Pass)
	require.NoError(t, err)

	require.True(t, q.SameStonesAs(p))
	last, ok := q.LastMove()
	require.True(t, ok)
	require.True(t, last.IsPass())
	require.Equal(t, White, q.NextToMove())
	require.Equal(t, p.MoveNumber()+1, q.MoveNumber())
	require.Empty(t, q.CapturedByLastMove())
}

func TestRandomPlayKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p, err := NewPosition(7, 7)
	require.NoError(t, err)

	for i := 0; i < 300; i++ {
		color := p.NextToMove()
		legal := LegalMoves(p, color, KoSimple)
		c := Pass
		if len(legal) > 0 && rng.Intn(10) > 0 {
			c = legal[rng.Intn(len(legal))]
		}

		q, err := PlayMove(p, color, c, KoSimple)
		require.NoError(t, err)

		captured := q.Captures(color) - p.Captures(color)
		require.GreaterOrEqual(t, captured, 0)
		require.Equal(t, p.Captures(color.Opponent()), q.Captures(color.Opponent()))
		if c.IsPass() {
			require.Equal(t, p.StoneCount(), q.StoneCount())
		} else {
			require.Equal(t, p.StoneCount()+1-captured, q.StoneCount())
		}
		require.Len(t, q.CapturedByLastMove(), captured)

		for _, g := range Groups(q) {
			require.NotEmpty(t, g.Liberties, "group at %v has no liberties", g.Stones[0])
		}
		p = q
	}
}
