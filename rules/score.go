package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// ScoringRules selects how points are counted.
type ScoringRules int

const (
	// TerritoryScoring counts surrounded points plus prisoners.
	TerritoryScoring ScoringRules = iota
	// AreaScoring counts surrounded points plus living stones.
	AreaScoring
)

func (r ScoringRules) String() string {
	if r == AreaScoring {
		return "area"
	}
	return "territory"
}

// ParseScoringRules reads a scoring system name as used in configuration
// files.
func ParseScoringRules(s string) (ScoringRules, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "territory", "japanese":
		return TerritoryScoring, nil
	case "area", "chinese":
		return AreaScoring, nil
	}
	return TerritoryScoring, fmt.Errorf("unknown scoring rules %q", s)
}

// SideScore is the breakdown of one player's points.
type SideScore struct {
	Territory int
	Stones    int
	Prisoners int
	Komi      float64
}

// Total returns the sum of every component.
func (s SideScore) Total() float64 {
	return float64(s.Territory+s.Stones+s.Prisoners) + s.Komi
}

// Score is the count of a finished (or estimated) game.
type Score struct {
	Rules ScoringRules
	Black SideScore
	White SideScore
}

// Margin returns Black's total minus White's total.
func (s Score) Margin() float64 {
	return s.Black.Total() - s.White.Total()
}

// Winner returns the color with more points, or zero on a tie.
func (s Score) Winner() Color {
	switch m := s.Margin(); {
	case m > 0:
		return Black
	case m < 0:
		return White
	}
	return 0
}

// Result formats the score the way game records do: "B+3.5", "W+0.5" or
// "Jigo".
func (s Score) Result() string {
	m := s.Margin()
	switch {
	case m > 0:
		return "B+" + strconv.FormatFloat(m, 'f', -1, 64)
	case m < 0:
		return "W+" + strconv.FormatFloat(-m, 'f', -1, 64)
	}
	return "Jigo"
}

// CountScore counts p under rules. Territory marks already on p are used
// as they are; otherwise they are estimated from p's removal marks.
func CountScore(p *Position, rules ScoringRules) Score {
	black, white := p.Territory(Black), p.Territory(White)
	if p.blackTerritory == nil && p.whiteTerritory == nil {
		tm := Territory(p, p.RemovedSpots())
		black, white = tm.Black, tm.White
	}

	s := Score{
		Rules: rules,
		Black: SideScore{Territory: len(black)},
		White: SideScore{Territory: len(white), Komi: p.komi},
	}
	deadBlack := len(p.DeadStones(Black))
	deadWhite := len(p.DeadStones(White))
	switch rules {
	case AreaScoring:
		s.Black.Stones = len(p.Stones(Black)) - deadBlack
		s.White.Stones = len(p.Stones(White)) - deadWhite
	default:
		s.Black.Prisoners = p.blackCaptures + deadWhite
		s.White.Prisoners = p.whiteCaptures + deadBlack
	}
	return s
}
