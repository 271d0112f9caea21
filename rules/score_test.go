package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountScore(t *testing.T) {
	tests := []struct {
		name    string
		removed []Cell
		rules   ScoringRules
		black   float64
		white   float64
		result  string
	}{
		{"territory, intruder alive", nil, TerritoryScoring, 0, 11.5, "W+11.5"},
		{"territory, intruder dead", []Cell{{0, 2}}, TerritoryScoring, 6, 11.5, "W+5.5"},
		{"area, intruder alive", nil, AreaScoring, 5, 17.5, "W+12.5"},
		{"area, intruder dead", []Cell{{0, 2}}, AreaScoring, 10, 16.5, "W+6.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := walls(t).WithKomi(6.5).WithRemoved(tt.removed)
			s := CountScore(p, tt.rules)
			require.Equal(t, tt.black, s.Black.Total())
			require.Equal(t, tt.white, s.White.Total())
			require.Equal(t, tt.result, s.Result())
			require.Equal(t, White, s.Winner())
		})
	}
}

func TestCountScoreUsesCapturesAndMarks(t *testing.T) {
	p := diagram(t,
		".X..",
		"XO..",
		".X..",
		"....",
	)
	q, err := ApplyMove(p, Black, Cell{2, 1})
	require.NoError(t, err)
	q = q.WithTerritory([]Cell{{1, 1}, {0, 0}}, []Cell{{3, 3}})

	s := CountScore(q, TerritoryScoring)
	require.Equal(t, SideScore{Territory: 2, Prisoners: 1}, s.Black)
	require.Equal(t, SideScore{Territory: 1}, s.White)
	require.Equal(t, "B+2", s.Result())
}

func TestResultFormatting(t *testing.T) {
	tests := []struct {
		score Score
		want  string
	}{
		{Score{Black: SideScore{Territory: 10}, White: SideScore{Territory: 3, Komi: 6.5}}, "B+0.5"},
		{Score{Black: SideScore{Territory: 40}, White: SideScore{Territory: 40, Komi: 0.5}}, "W+0.5"},
		{Score{Black: SideScore{Territory: 7, Prisoners: 3}, White: SideScore{Stones: 10}}, "Jigo"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.score.Result())
	}
	require.Zero(t, Score{}.Winner())
}

func TestParseScoringRules(t *testing.T) {
	r, err := ParseScoringRules("chinese")
	require.NoError(t, err)
	require.Equal(t, AreaScoring, r)
	r, err = ParseScoringRules("")
	require.NoError(t, err)
	require.Equal(t, TerritoryScoring, r)
	_, err = ParseScoringRules("ing")
	require.Error(t, err)
}
