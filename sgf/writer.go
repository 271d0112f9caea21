// Package sgf implements SGF FF[4] writing and reading for Go game records.
package sgf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"termsuji-rules/rules"
)

// GameRecord tracks a game in progress and keeps it written to disk as SGF.
type GameRecord struct {
	FilePath string
	Record
	file *os.File
}

// NewGameRecord creates a new SGF file in dir for a game starting at start
// and writes the initial header. opponent names the engine.
func NewGameRecord(dir string, start *rules.Position, playerColor rules.Color, opponent string) (*GameRecord, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	now := time.Now()
	filename := fmt.Sprintf("%s_%dx%d.sgf", now.Format("2006-01-02_150405"), start.Width(), start.Height())
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create sgf file: %w", err)
	}

	human := "Player"
	pb, pw := human, opponent
	if playerColor == rules.White {
		pb, pw = opponent, human
	}

	rec := &GameRecord{
		FilePath: path,
		Record:   *RecordFromPosition(start),
		file:     f,
	}
	rec.Info.PlayerBlack = pb
	rec.Info.PlayerWhite = pw
	rec.Info.Date = now.Format("2006-01-02")
	rec.Info.Result = "?"
	rec.Info.FilePath = path
	rec.Info.FileName = filename

	if err := rec.flush(); err != nil {
		f.Close()
		return nil, err
	}

	return rec, nil
}

// AddMove appends a move to the record. c is rules.Pass for a pass.
func (r *GameRecord) AddMove(c rules.Cell, color rules.Color) error {
	r.Moves = append(r.Moves, rules.Move{Cell: c, Color: color})
	return r.flush()
}

// AddSetupPosition replaces the setup stones with the stones of p.
func (r *GameRecord) AddSetupPosition(p *rules.Position) error {
	r.Black = p.Stones(rules.Black)
	r.White = p.Stones(rules.White)
	return r.flush()
}

// UndoMoves removes the last n moves from the record.
func (r *GameRecord) UndoMoves(n int) error {
	if n > len(r.Moves) {
		n = len(r.Moves)
	}
	r.Moves = r.Moves[:len(r.Moves)-n]
	return r.flush()
}

// SetResult parses a game outcome string and sets the SGF RE property.
// Accepts GnuGo output like "White wins by 5.5 points" or "Black wins by resign"
// as well as already-formatted SGF like "W+5.5", "B+R".
func (r *GameRecord) SetResult(outcome string) error {
	r.Info.Result = parseResult(outcome)
	return r.flush()
}

// Close performs a final flush and closes the file handle.
func (r *GameRecord) Close() {
	if r.file == nil {
		return
	}
	r.flush()
	r.file.Close()
	r.file = nil
}

// flush rewrites the complete SGF file from scratch.
func (r *GameRecord) flush() error {
	if r.file == nil {
		return fmt.Errorf("file already closed")
	}

	if _, err := r.file.Seek(0, 0); err != nil {
		return err
	}
	if err := r.file.Truncate(0); err != nil {
		return err
	}
	if err := Write(r.file, &r.Record); err != nil {
		return err
	}
	return r.file.Sync()
}

// RecordFromPosition builds a record holding the history of p: the stones
// of its root as setup and every move since.
func RecordFromPosition(p *rules.Position) *Record {
	chain := rules.Chain(p)
	root := chain[0]
	rec := &Record{
		Info: GameInfo{
			BoardSize: p.Width(),
			Height:    p.Height(),
			Komi:      p.Komi(),
		},
		Black: root.Stones(rules.Black),
		White: root.Stones(rules.White),
	}
	if len(rec.Black) > 1 && len(rec.White) == 0 {
		rec.Info.Handicap = len(rec.Black)
	}
	if root.NextToMove() == rules.White {
		rec.FirstPlayer = rules.White
	}
	for _, q := range chain[1:] {
		last, _ := q.LastMove()
		rec.Moves = append(rec.Moves, rules.Move{Cell: last, Color: q.LastPlayerToMove()})
	}
	rec.Info.MoveCount = len(rec.Moves)
	return rec
}

// Write encodes rec as a single-variation SGF game.
func Write(w io.Writer, rec *Record) error {
	var b strings.Builder
	info := rec.Info

	// Root node
	b.WriteString("(;GM[1]FF[4]CA[UTF-8]")
	b.WriteString("AP[termsuji:2.0]")
	if info.Height != 0 && info.Height != info.BoardSize {
		b.WriteString(fmt.Sprintf("SZ[%d:%d]", info.BoardSize, info.Height))
	} else {
		b.WriteString(fmt.Sprintf("SZ[%d]", info.BoardSize))
	}
	b.WriteString(fmt.Sprintf("KM[%s]", strconv.FormatFloat(info.Komi, 'f', -1, 64)))
	if info.Handicap > 1 {
		b.WriteString(fmt.Sprintf("HA[%d]", info.Handicap))
	}
	if info.Rules != "" {
		b.WriteString(fmt.Sprintf("RU[%s]", escape(info.Rules)))
	}
	b.WriteString(fmt.Sprintf("PB[%s]", escape(info.PlayerBlack)))
	b.WriteString(fmt.Sprintf("PW[%s]", escape(info.PlayerWhite)))
	b.WriteString(fmt.Sprintf("DT[%s]", escape(info.Date)))
	b.WriteString(fmt.Sprintf("RE[%s]", escape(info.Result)))
	b.WriteString("\n")

	// Setup node
	if len(rec.Black) > 0 || len(rec.White) > 0 || rec.FirstPlayer != 0 {
		b.WriteString(";")
		if len(rec.Black) > 0 {
			b.WriteString("AB")
			for _, c := range rec.Black {
				b.WriteString(fmt.Sprintf("[%s]", ToSGF(c)))
			}
		}
		if len(rec.White) > 0 {
			b.WriteString("AW")
			for _, c := range rec.White {
				b.WriteString(fmt.Sprintf("[%s]", ToSGF(c)))
			}
		}
		if rec.FirstPlayer == rules.White {
			b.WriteString("PL[W]")
		}
		b.WriteString("\n")
	}

	// Move nodes
	for _, m := range rec.Moves {
		key := "B"
		if m.Color == rules.White {
			key = "W"
		}
		b.WriteString(fmt.Sprintf(";%s[%s]", key, ToSGF(m.Cell)))
	}

	b.WriteString(")\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "]", `\]`)
}

// parseResult converts various outcome formats to SGF RE[] value.
func parseResult(outcome string) string {
	o := strings.TrimSpace(outcome)

	// Already in SGF format
	if isValidSGFResult(o) {
		return o
	}

	low := strings.ToLower(o)

	// "White wins by 5.5 points" / "Black wins by resignation"
	var winner string
	switch {
	case strings.HasPrefix(low, "white wins"):
		winner = "W"
	case strings.HasPrefix(low, "black wins"):
		winner = "B"
	default:
		return "?"
	}

	byIdx := strings.Index(low, " by ")
	if byIdx == -1 {
		return winner + "+?"
	}
	rest := strings.TrimSpace(low[byIdx+4:])

	switch {
	case strings.HasPrefix(rest, "resign"):
		return winner + "+R"
	case strings.HasPrefix(rest, "time"):
		return winner + "+T"
	case strings.HasPrefix(rest, "forfeit"):
		return winner + "+F"
	}

	if parts := strings.Fields(rest); len(parts) > 0 && isScore(parts[0]) {
		return winner + "+" + parts[0]
	}
	return winner + "+?"
}

// isValidSGFResult checks if a string is already a valid SGF result.
func isValidSGFResult(s string) bool {
	switch s {
	case "?", "Jigo", "Void", "0":
		return true
	}
	if len(s) < 3 || (s[0] != 'B' && s[0] != 'W') || s[1] != '+' {
		return false
	}
	switch rest := s[2:]; rest {
	case "R", "T", "F", "?":
		return true
	default:
		return isScore(rest)
	}
}

// isScore reports whether s is a non-negative decimal like "5" or "3.5".
func isScore(s string) bool {
	if s == "" || s == "." {
		return false
	}
	dotSeen := false
	for _, ch := range s {
		switch {
		case ch == '.' && !dotSeen:
			dotSeen = true
		case ch < '0' || ch > '9':
			return false
		}
	}
	return true
}
