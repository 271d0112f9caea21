// Package gtp provides a GTP (Go Text Protocol) engine implementation.
package gtp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"termsuji-rules/rules"
)

// GTP coordinate system:
// - Columns: A-Z skipping I, so at most 25 columns
// - Rows: 1-N counted from the bottom of the board
// - Example on 19x19: D4 is (3, 15), Q16 is (15, 3)
//
// rules.Cell counts Y from the top, so rows are flipped using the board
// height.

// ErrResign is returned by VertexToCell for the "resign" reply of genmove.
var ErrResign = errors.New("resign")

const columns = "ABCDEFGHJKLMNOPQRSTUVWXYZ"

// CellToVertex converts a cell to GTP notation. rules.Pass becomes "pass".
func CellToVertex(c rules.Cell, height int) string {
	if c.IsPass() {
		return "pass"
	}
	if c.X < 0 || c.X >= len(columns) {
		return ""
	}
	return fmt.Sprintf("%c%d", columns[c.X], height-c.Y)
}

// VertexToCell converts GTP notation to a cell. "pass" gives rules.Pass and
// "resign" gives ErrResign. Row numbers outside 1..height are rejected;
// columns are only checked against the alphabet since the width is not
// known here.
func VertexToCell(vertex string, height int) (rules.Cell, error) {
	vertex = strings.TrimSpace(strings.ToUpper(vertex))

	switch vertex {
	case "PASS":
		return rules.Pass, nil
	case "RESIGN":
		return rules.Pass, ErrResign
	}

	if len(vertex) < 2 {
		return rules.Pass, fmt.Errorf("invalid vertex: %q", vertex)
	}

	x := strings.IndexByte(columns, vertex[0])
	if x < 0 {
		return rules.Pass, fmt.Errorf("invalid column in vertex: %q", vertex)
	}

	row, err := strconv.Atoi(vertex[1:])
	if err != nil {
		return rules.Pass, fmt.Errorf("invalid row in vertex: %q", vertex)
	}
	if row < 1 || row > height {
		return rules.Pass, fmt.Errorf("vertex out of bounds: %q", vertex)
	}

	return rules.Cell{X: x, Y: height - row}, nil
}

// colorToGTP converts a stone color to the GTP color argument.
func colorToGTP(color rules.Color) string {
	if color == rules.White {
		return "white"
	}
	return "black"
}

// gtpToColor parses a GTP color argument.
func gtpToColor(color string) (rules.Color, error) {
	switch strings.ToLower(strings.TrimSpace(color)) {
	case "black", "b":
		return rules.Black, nil
	case "white", "w":
		return rules.White, nil
	}
	return 0, fmt.Errorf("invalid color: %q", color)
}
