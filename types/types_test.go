package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"termsuji-rules/rules"
)

func TestFromPosition(t *testing.T) {
	p, err := rules.Setup{
		Width:  5,
		Height: 4,
		Black:  []rules.Cell{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 2}},
		White:  []rules.Cell{{X: 1, Y: 1}, {X: 4, Y: 3}},
		Komi:   6.5,
	}.Build()
	require.NoError(t, err)
	p, err = rules.ApplyMove(p, rules.Black, rules.Cell{X: 2, Y: 1})
	require.NoError(t, err)
	p = rules.EstimateTerritory(p.WithRemoved([]rules.Cell{{X: 4, Y: 3}}))

	b := FromPosition(p)
	require.Equal(t, 5, b.Width())
	require.Equal(t, 4, b.Height())
	require.Equal(t, 1, b.MoveNumber)
	require.Equal(t, White, b.PlayerToMove)
	require.Equal(t, 1, b.BlackCaptures)
	require.Equal(t, 0, b.WhiteCaptures)
	require.Equal(t, 6.5, b.Komi)
	require.Equal(t, BoardPos{X: 2, Y: 1}, b.LastMove)

	require.Equal(t, Black, b.Board[1][2])
	require.Equal(t, Empty, b.Board[1][1])
	require.Equal(t, White, b.Board[3][4])

	require.True(t, b.IsRemoved(4, 3))
	require.False(t, b.IsRemoved(1, 0))
	// The captured point is enclosed by black.
	require.Equal(t, Black, b.Marks[1][1])
}

func TestFromPositionPass(t *testing.T) {
	p, err := rules.NewPosition(9, 9)
	require.NoError(t, err)
	p, err = rules.ApplyMove(p, rules.Black, rules.Pass)
	require.NoError(t, err)

	b := FromPosition(p)
	require.Equal(t, BoardPos{X: -1, Y: -1}, b.LastMove)
	require.Equal(t, rules.Pass, b.LastMove.Cell())
	require.False(t, b.Finished())
}

func TestNewBoardState(t *testing.T) {
	b := NewBoardState(9)
	require.Equal(t, 9, b.Width())
	require.Equal(t, Black, b.PlayerToMove)
	require.Equal(t, rules.Pass, b.LastMove.Cell())
}

func TestBoardPosJSON(t *testing.T) {
	var p BoardPos
	require.NoError(t, json.Unmarshal([]byte(`[3, 4]`), &p))
	require.Equal(t, rules.Cell{X: 3, Y: 4}, p.Cell())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.Equal(t, `[3,4]`, string(data))

	require.NoError(t, json.Unmarshal([]byte(`[]`), &p))
	require.Equal(t, rules.Pass, p.Cell())
}
