package sgf

import (
	"fmt"
	"strings"

	"termsuji-rules/rules"
)

// SGF points are two lowercase letters, column then row, both counted from
// the top-left: (0,0) -> "aa", (3,4) -> "de", (18,18) -> "ss".
// An empty value is a pass. FF[3] files also write a pass as "tt", which is
// only unambiguous on boards up to 19x19; larger boards have a real point
// there.

// ToSGF converts a cell to an SGF point. rules.Pass becomes "".
func ToSGF(c rules.Cell) string {
	if c.IsPass() {
		return ""
	}
	return string(rune('a'+c.X)) + string(rune('a'+c.Y))
}

// FromSGF parses an SGF point on a board of at most 19x19, where "tt" is
// a pass.
func FromSGF(s string) (rules.Cell, error) {
	return PointOnBoard(s, 19, 19)
}

// PointOnBoard parses an SGF point for a width x height board. "tt" is a
// pass only when neither side exceeds 19.
func PointOnBoard(s string, width, height int) (rules.Cell, error) {
	if s == "" || (s == "tt" && width <= 19 && height <= 19) {
		return rules.Pass, nil
	}
	if len(s) != 2 {
		return rules.Pass, fmt.Errorf("invalid sgf point %q", s)
	}
	x, ok := letterIndex(s[0])
	if !ok {
		return rules.Pass, fmt.Errorf("invalid sgf point %q", s)
	}
	y, ok := letterIndex(s[1])
	if !ok {
		return rules.Pass, fmt.Errorf("invalid sgf point %q", s)
	}
	return rules.Cell{X: x, Y: y}, nil
}

// ParsePoints parses concatenated points such as the "pddp" strings used
// for handicap stones and removed-stone lists on a width x height board.
// Passes are skipped.
func ParsePoints(s string, width, height int) ([]rules.Cell, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("point list %q has odd length", s)
	}
	out := make([]rules.Cell, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := PointOnBoard(s[i:i+2], width, height)
		if err != nil {
			return nil, err
		}
		if c.IsPass() {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// FormatPoints is the inverse of ParsePoints.
func FormatPoints(cells []rules.Cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(ToSGF(c))
	}
	return b.String()
}

// letterIndex maps a-z to 0-25 and A-Z to 26-51, as in FF[4].
func letterIndex(ch byte) (int, bool) {
	switch {
	case ch >= 'a' && ch <= 'z':
		return int(ch - 'a'), true
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 26, true
	}
	return 0, false
}
