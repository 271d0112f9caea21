package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func moves(cells ...Cell) []Move {
	out := make([]Move, len(cells))
	for i, c := range cells {
		out[i] = Move{Cell: c}
	}
	return out
}

var nineByNine = InitialState{Width: 9, Height: 9, Komi: 6.5}

func TestReplayedPassFlipsTurn(t *testing.T) {
	p, err := Replay(nineByNine, moves(Pass), ReplayOptions{})
	require.NoError(t, err)
	require.Equal(t, White, p.NextToMove())
	require.Zero(t, p.StoneCount())

	p, err = Replay(nineByNine, moves(Cell{2, 2}, Pass), ReplayOptions{})
	require.NoError(t, err)
	require.Equal(t, Black, p.NextToMove())
	require.Equal(t, White, p.LastPlayerToMove())
	require.Equal(t, 1, p.StoneCount())
}

func TestReplayAlternatesColors(t *testing.T) {
	p, err := Replay(nineByNine, moves(Cell{2, 2}, Cell{6, 6}, Cell{2, 6}), ReplayOptions{})
	require.NoError(t, err)

	require.Equal(t, []Cell{{2, 2}, {2, 6}}, p.Stones(Black))
	require.Equal(t, []Cell{{6, 6}}, p.Stones(White))
	require.Equal(t, 6.5, p.Komi())

	chain := Chain(p)
	require.Len(t, chain, 4)
	require.Nil(t, chain[0].Parent())
	require.Same(t, p, chain[3])
	for i, q := range chain {
		require.Equal(t, i, q.MoveNumber())
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	ms := moves(Cell{3, 3}, Cell{3, 4}, Cell{4, 4}, Cell{4, 3}, Cell{2, 4}, Cell{5, 3}, Cell{3, 5}, Pass, Cell{4, 5})
	a, err := Replay(nineByNine, ms, ReplayOptions{})
	require.NoError(t, err)
	b, err := Replay(nineByNine, ms, ReplayOptions{})
	require.NoError(t, err)

	require.NotSame(t, a, b)
	require.True(t, a.SameStonesAs(b))
	require.Equal(t, a.Hash(), b.Hash())
	require.Equal(t, a.Captures(Black), b.Captures(Black))
	require.Equal(t, 1, a.Captures(Black))
	require.Equal(t, a.NextToMove(), b.NextToMove())
}

func TestReplayLimit(t *testing.T) {
	ms := moves(Cell{0, 0}, Cell{1, 1}, Cell{2, 2}, Cell{3, 3})
	p, err := Replay(nineByNine, ms, ReplayOptions{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, 2, p.MoveNumber())
	require.Equal(t, Black, p.NextToMove())

	p, err = Replay(nineByNine, ms, ReplayOptions{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 4, p.MoveNumber())
}

func TestReplayStrictRejectsBadMove(t *testing.T) {
	ms := moves(Cell{4, 4}, Cell{4, 4}, Cell{5, 5})
	p, err := Replay(nineByNine, ms, ReplayOptions{Policy: Strict})
	require.Nil(t, p)
	require.ErrorIs(t, err, ErrMalformedHistory)
	require.ErrorIs(t, err, ErrOccupied)
	require.True(t, IsMalformed(err))

	var re *ReplayError
	require.True(t, errors.As(err, &re))
	require.Equal(t, 1, re.Index)
	require.Equal(t, Cell{4, 4}, re.Move.Cell)
}

func TestReplayCoercesBadMoveToPass(t *testing.T) {
	var coerced []int
	opts := ReplayOptions{
		Policy: CoerceToPass,
		OnCoerced: func(index int, m Move, err error) {
			require.ErrorIs(t, err, ErrOutOfBounds)
			coerced = append(coerced, index)
		},
	}
	ms := moves(Cell{4, 4}, Cell{20, 20}, Cell{5, 5})
	p, err := Replay(nineByNine, ms, opts)
	require.NoError(t, err)

	require.Equal(t, []int{1}, coerced)
	require.Equal(t, []Cell{{4, 4}, {5, 5}}, p.Stones(Black))
	last, _ := p.Parent().LastMove()
	require.True(t, last.IsPass())
	require.Equal(t, White, p.NextToMove())
}

func TestReplayWhiteFirstAndSetup(t *testing.T) {
	init := InitialState{
		Width:      9,
		Height:     9,
		Black:      []Cell{{2, 6}, {6, 2}},
		WhiteFirst: true,
	}
	root, err := Root(init)
	require.NoError(t, err)
	require.Equal(t, White, root.NextToMove())
	require.Equal(t, 2, root.StoneCount())

	p, err := Replay(init, moves(Cell{4, 4}), ReplayOptions{})
	require.NoError(t, err)
	color, _ := p.StoneAt(Cell{4, 4})
	require.Equal(t, White, color)

	_, err = Root(InitialState{Width: 9, Height: 9, Black: []Cell{{9, 9}}})
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestReplayFreeHandicapPlacement(t *testing.T) {
	init := InitialState{Width: 9, Height: 9, Handicap: 3, FreeHandicapPlacement: true}
	p, err := Replay(init, moves(Cell{2, 2}, Cell{6, 6}, Cell{2, 6}, Cell{4, 4}), ReplayOptions{})
	require.NoError(t, err)

	require.Equal(t, []Cell{{2, 2}, {2, 6}, {6, 6}}, p.Stones(Black))
	require.Equal(t, []Cell{{4, 4}}, p.Stones(White))
	require.Equal(t, Black, p.NextToMove())

	after2, err := Replay(init, moves(Cell{2, 2}, Cell{6, 6}), ReplayOptions{})
	require.NoError(t, err)
	require.Equal(t, Black, after2.NextToMove())
}

func TestReplayExplicitColors(t *testing.T) {
	ms := []Move{
		{Cell: Cell{0, 0}, Color: White},
		{Cell: Cell{1, 1}, Color: White},
		{Cell: Cell{2, 2}},
	}
	p, err := Replay(nineByNine, ms, ReplayOptions{})
	require.NoError(t, err)
	require.Equal(t, []Cell{{0, 0}, {1, 1}}, p.Stones(White))
	require.Equal(t, []Cell{{2, 2}}, p.Stones(Black))
}

func TestReplayKoRevalidation(t *testing.T) {
	init := InitialState{
		Width:  4,
		Height: 4,
		Black:  []Cell{{1, 0}, {0, 1}, {1, 2}},
		White:  []Cell{{2, 0}, {1, 1}, {3, 1}, {2, 2}},
	}
	ms := moves(Cell{2, 1}, Cell{1, 1})

	_, err := Replay(init, ms, ReplayOptions{})
	require.NoError(t, err)

	_, err = Replay(init, ms, ReplayOptions{Ko: KoSimple})
	require.ErrorIs(t, err, ErrKoViolation)
	require.ErrorIs(t, err, ErrMalformedHistory)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("coerce")
	require.NoError(t, err)
	require.Equal(t, CoerceToPass, p)
	p, err = ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, Strict, p)
	_, err = ParsePolicy("lenient")
	require.Error(t, err)
}
