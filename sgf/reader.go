package sgf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"termsuji-rules/rules"
)

// GameInfo holds metadata parsed from an SGF file header.
type GameInfo struct {
	FilePath    string
	FileName    string
	BoardSize   int // width; equal to Height except on rectangular boards
	Height      int
	Komi        float64
	Handicap    int
	Rules       string
	PlayerBlack string
	PlayerWhite string
	Date        string
	Result      string
	MoveCount   int
}

// Record is the main line of an SGF game: header, setup stones and moves.
type Record struct {
	Info  GameInfo
	Black []rules.Cell
	White []rules.Cell
	// FirstPlayer is the PL property, zero when absent.
	FirstPlayer rules.Color
	Moves       []rules.Move
}

// node maps property identifiers to their values.
type node map[string][]string

func (n node) first(key string) string {
	if v := n[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// ReadFile parses the SGF file at filePath.
func ReadFile(filePath string) (*Record, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	rec, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filePath), err)
	}
	rec.Info.FilePath = filePath
	rec.Info.FileName = filepath.Base(filePath)
	return rec, nil
}

// Parse reads the main line of the first game in content. Variations other
// than the first are skipped.
func Parse(content string) (*Record, error) {
	nodes, err := mainLine(content)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no game tree found")
	}

	root := nodes[0]
	rec := &Record{Info: GameInfo{
		BoardSize:   19,
		Height:      19,
		PlayerBlack: root.first("PB"),
		PlayerWhite: root.first("PW"),
		Date:        root.first("DT"),
		Result:      root.first("RE"),
		Rules:       root.first("RU"),
	}}

	if v := root.first("SZ"); v != "" {
		w, h, err := parseSize(v)
		if err != nil {
			return nil, err
		}
		rec.Info.BoardSize, rec.Info.Height = w, h
	}
	if v := root.first("KM"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			rec.Info.Komi = f
		}
	}
	if v := root.first("HA"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			rec.Info.Handicap = n
		}
	}

	for _, n := range nodes {
		hasSetup := len(n["AB"]) > 0 || len(n["AW"]) > 0
		if hasSetup && len(rec.Moves) > 0 {
			return nil, fmt.Errorf("setup stones after move %d are not supported", len(rec.Moves))
		}
		for _, layer := range []struct {
			key   string
			cells *[]rules.Cell
		}{{"AB", &rec.Black}, {"AW", &rec.White}} {
			for _, v := range n[layer.key] {
				cells, err := parseCompressed(v, rec.Info.BoardSize, rec.Info.Height)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", layer.key, err)
				}
				*layer.cells = append(*layer.cells, cells...)
			}
		}
		if pl := n.first("PL"); pl != "" && len(rec.Moves) == 0 {
			if strings.EqualFold(pl, "W") {
				rec.FirstPlayer = rules.White
			} else {
				rec.FirstPlayer = rules.Black
			}
		}

		for _, key := range []string{"B", "W"} {
			v, ok := n[key]
			if !ok {
				continue
			}
			point := strings.TrimSpace(firstOf(v))
			c, err := PointOnBoard(point, rec.Info.BoardSize, rec.Info.Height)
			if err != nil {
				return nil, fmt.Errorf("move %d: %w", len(rec.Moves)+1, err)
			}
			color := rules.Black
			if key == "W" {
				color = rules.White
			}
			rec.Moves = append(rec.Moves, rules.Move{Cell: c, Color: color})
		}
	}
	rec.Info.MoveCount = len(rec.Moves)
	return rec, nil
}

// InitialState returns the replay input for the record.
func (r *Record) InitialState() rules.InitialState {
	whiteFirst := r.FirstPlayer == rules.White
	if r.FirstPlayer == 0 && len(r.Moves) > 0 {
		whiteFirst = r.Moves[0].Color == rules.White
	}
	return rules.InitialState{
		Width:      r.Info.BoardSize,
		Height:     r.Info.Height,
		Black:      r.Black,
		White:      r.White,
		Komi:       r.Info.Komi,
		WhiteFirst: whiteFirst,
		Handicap:   r.Info.Handicap,
	}
}

// Replay plays the record's main line.
func (r *Record) Replay(opts rules.ReplayOptions) (*rules.Position, error) {
	return rules.Replay(r.InitialState(), r.Moves, opts)
}

// ParseHeader reads an SGF file and extracts metadata from the root node.
func ParseHeader(filePath string) (*GameInfo, error) {
	rec, err := ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return &rec.Info, nil
}

// ReplayToEnd parses an SGF file and replays all moves to produce the final
// position. It also returns the number of moves in the file.
func ReplayToEnd(filePath string, opts rules.ReplayOptions) (*rules.Position, int, error) {
	rec, err := ReadFile(filePath)
	if err != nil {
		return nil, 0, err
	}
	pos, err := rec.Replay(opts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", filepath.Base(filePath), err)
	}
	return pos, len(rec.Moves), nil
}

// ListGames scans a directory for .sgf files and returns their parsed headers,
// sorted newest-first (by filename, which contains timestamps).
func ListGames(dir string) ([]GameInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	var games []GameInfo
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sgf") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := ParseHeader(path)
		if err != nil {
			continue
		}
		games = append(games, *info)
	}

	return games, nil
}

// mainLine parses the nodes from the start of the first game tree down its
// first variation.
func mainLine(content string) ([]node, error) {
	start := strings.IndexByte(content, '(')
	if start == -1 {
		return nil, nil
	}

	var nodes []node
	var cur node
	i := start + 1
	for i < len(content) {
		ch := content[i]
		switch {
		case ch == ';':
			cur = node{}
			nodes = append(nodes, cur)
			i++
		case ch == '(':
			// First variation continues the main line.
			i++
		case ch == ')':
			return nodes, nil
		case ch >= 'A' && ch <= 'Z':
			keyStart := i
			for i < len(content) && (content[i] >= 'A' && content[i] <= 'Z' || content[i] >= 'a' && content[i] <= 'z') {
				i++
			}
			key := stripLower(content[keyStart:i])
			for {
				for i < len(content) && isSpace(content[i]) {
					i++
				}
				if i >= len(content) || content[i] != '[' {
					break
				}
				val, next, err := readValue(content, i+1)
				if err != nil {
					return nil, err
				}
				i = next
				if cur != nil {
					cur[key] = append(cur[key], val)
				}
			}
		default:
			i++
		}
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nil, fmt.Errorf("unterminated game tree")
}

// readValue reads a property value starting just after '[' and returns it
// unescaped together with the index after the closing ']'.
func readValue(content string, i int) (string, int, error) {
	var b strings.Builder
	for i < len(content) {
		ch := content[i]
		switch ch {
		case ']':
			return b.String(), i + 1, nil
		case '\\':
			i++
			if i < len(content) && content[i] != '\n' && content[i] != '\r' {
				b.WriteByte(content[i])
			}
		default:
			b.WriteByte(ch)
		}
		i++
	}
	return "", i, fmt.Errorf("unterminated property value")
}

// parseCompressed parses a point or an FF[4] rectangle "aa:cc".
func parseCompressed(v string, width, height int) ([]rules.Cell, error) {
	v = strings.TrimSpace(v)
	from, to, ok := strings.Cut(v, ":")
	if !ok {
		c, err := PointOnBoard(v, width, height)
		if err != nil || c.IsPass() {
			return nil, err
		}
		return []rules.Cell{c}, nil
	}
	a, err := PointOnBoard(from, width, height)
	if err != nil {
		return nil, err
	}
	b, err := PointOnBoard(to, width, height)
	if err != nil {
		return nil, err
	}
	var out []rules.Cell
	for y := min(a.Y, b.Y); y <= max(a.Y, b.Y); y++ {
		for x := min(a.X, b.X); x <= max(a.X, b.X); x++ {
			out = append(out, rules.Cell{X: x, Y: y})
		}
	}
	return out, nil
}

func parseSize(v string) (int, int, error) {
	w, h, rect := strings.Cut(strings.TrimSpace(v), ":")
	width, err := strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid SZ %q", v)
	}
	height := width
	if rect {
		if height, err = strconv.Atoi(h); err != nil {
			return 0, 0, fmt.Errorf("invalid SZ %q", v)
		}
	}
	return width, height, nil
}

func firstOf(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// stripLower drops the lowercase letters FF[3] allowed in identifiers.
func stripLower(key string) string {
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		if key[i] >= 'A' && key[i] <= 'Z' {
			b.WriteByte(key[i])
		}
	}
	return b.String()
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\n' || ch == '\r' || ch == '\t'
}
