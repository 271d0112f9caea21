package sgf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"termsuji-rules/rules"
)

func newPosition(t *testing.T, size int, komi float64) *rules.Position {
	t.Helper()
	p, err := rules.NewPosition(size, size)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	return p.WithKomi(komi)
}

func readString(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(content)
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// Already SGF format
		{"W+5.5", "W+5.5"},
		{"B+R", "B+R"},
		{"B+3.5", "B+3.5"},
		{"?", "?"},
		{"Jigo", "Jigo"},

		// GnuGo output
		{"White wins by 5.5 points", "W+5.5"},
		{"Black wins by 3.5 points", "B+3.5"},
		{"White wins by resign", "W+R"},
		{"Black wins by resignation", "B+R"},
		{"White wins by time", "W+T"},
		{"Black wins by forfeit", "B+F"},

		// Edge cases
		{"White wins by 0.5 points", "W+0.5"},
		{"Black wins", "B+?"},
		{"Game aborted: engine played Z99", "?"},
		{"something else", "?"},
		{"", "?"},
	}
	for _, tt := range tests {
		got := parseResult(tt.input)
		if got != tt.want {
			t.Errorf("parseResult(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewGameRecord(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, newPosition(t, 19, 6.5), rules.Black, "GnuGo Level 5")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	if _, err := os.Stat(rec.FilePath); os.IsNotExist(err) {
		t.Fatal("SGF file not created")
	}

	s := readString(t, rec.FilePath)

	for _, prop := range []string{"GM[1]", "FF[4]", "SZ[19]", "KM[6.5]", "PB[Player]", "PW[GnuGo Level 5]", "RE[?]"} {
		if !strings.Contains(s, prop) {
			t.Errorf("SGF missing property %s in:\n%s", prop, s)
		}
	}

	if !strings.HasPrefix(s, "(;") {
		t.Error("SGF should start with '(;'")
	}
	if !strings.HasSuffix(strings.TrimSpace(s), ")") {
		t.Error("SGF should end with ')'")
	}
	if strings.Contains(s, "AB[") || strings.Contains(s, "PL[") {
		t.Errorf("empty start should have no setup node:\n%s", s)
	}
}

func TestNewGameRecordWhitePlayer(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, newPosition(t, 9, 7.5), rules.White, "GnuGo Level 3")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	s := readString(t, rec.FilePath)

	if !strings.Contains(s, "PB[GnuGo Level 3]") {
		t.Error("When human plays white, black should be engine")
	}
	if !strings.Contains(s, "PW[Player]") {
		t.Error("When human plays white, white should be Player")
	}
	if !strings.Contains(s, "SZ[9]") {
		t.Error("Board size should be 9")
	}
	if !strings.Contains(s, "KM[7.5]") {
		t.Error("Komi should be 7.5")
	}
}

func TestNewGameRecordHandicap(t *testing.T) {
	start, err := rules.NewGame(9, 2)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, start.WithKomi(0.5), rules.Black, "GnuGo Level 5")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	s := readString(t, rec.FilePath)
	for _, prop := range []string{"HA[2]", "AB[", "PL[W]", "KM[0.5]"} {
		if !strings.Contains(s, prop) {
			t.Errorf("SGF missing %s in:\n%s", prop, s)
		}
	}
}

func TestAddMove(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, newPosition(t, 19, 6.5), rules.Black, "GnuGo Level 5")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	rec.AddMove(rules.Cell{X: 15, Y: 3}, rules.Black)  // B[pd]
	rec.AddMove(rules.Cell{X: 3, Y: 15}, rules.White)  // W[dp]
	rec.AddMove(rules.Cell{X: 15, Y: 15}, rules.Black) // B[pp]

	s := readString(t, rec.FilePath)

	for _, move := range []string{";B[pd]", ";W[dp]", ";B[pp]"} {
		if !strings.Contains(s, move) {
			t.Errorf("SGF missing move %s in:\n%s", move, s)
		}
	}
}

func TestAddMovePass(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, newPosition(t, 9, 6.5), rules.Black, "GnuGo Level 5")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	rec.AddMove(rules.Cell{X: 4, Y: 4}, rules.Black)
	rec.AddMove(rules.Pass, rules.White)
	rec.AddMove(rules.Pass, rules.Black)

	s := readString(t, rec.FilePath)

	if !strings.Contains(s, ";B[ee]") {
		t.Error("Missing first move")
	}
	if strings.Count(s, ";W[]") != 1 {
		t.Error("Should have exactly one white pass")
	}
	if strings.Count(s, ";B[]") != 1 {
		t.Error("Should have exactly one black pass")
	}
}

func TestUndoMoves(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, newPosition(t, 9, 6.5), rules.Black, "GnuGo Level 5")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	rec.AddMove(rules.Cell{X: 4, Y: 4}, rules.Black)
	rec.AddMove(rules.Cell{X: 2, Y: 2}, rules.White)
	if err := rec.UndoMoves(1); err != nil {
		t.Fatalf("UndoMoves: %v", err)
	}

	s := readString(t, rec.FilePath)
	if strings.Contains(s, ";W[cc]") {
		t.Errorf("undone move still written:\n%s", s)
	}
	if !strings.Contains(s, ";B[ee]") {
		t.Errorf("first move lost:\n%s", s)
	}

	if err := rec.UndoMoves(5); err != nil {
		t.Fatalf("UndoMoves: %v", err)
	}
	if len(rec.Moves) != 0 {
		t.Errorf("len(Moves) = %d, want 0", len(rec.Moves))
	}
}

func TestSetResult(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, newPosition(t, 19, 6.5), rules.Black, "GnuGo Level 5")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	rec.AddMove(rules.Cell{X: 15, Y: 3}, rules.Black)
	rec.SetResult("White wins by 5.5 points")

	s := readString(t, rec.FilePath)

	if !strings.Contains(s, "RE[W+5.5]") {
		t.Errorf("Expected RE[W+5.5] in:\n%s", s)
	}
}

func TestAddSetupPosition(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, newPosition(t, 9, 6.5), rules.Black, "GnuGo Level 5")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	setup, err := rules.Setup{
		Width:  9,
		Height: 9,
		Black:  []rules.Cell{{X: 3, Y: 2}}, // "dc"
		White:  []rules.Cell{{X: 5, Y: 4}}, // "fe"
	}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rec.AddSetupPosition(setup)

	s := readString(t, rec.FilePath)

	if !strings.Contains(s, "AB[dc]") {
		t.Errorf("Missing AB[dc] setup in:\n%s", s)
	}
	if !strings.Contains(s, "AW[fe]") {
		t.Errorf("Missing AW[fe] setup in:\n%s", s)
	}
}

func TestFullGameRoundtrip(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, newPosition(t, 9, 6.5), rules.Black, "GnuGo Level 5")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}

	moves := []rules.Move{
		{Cell: rules.Cell{X: 4, Y: 4}, Color: rules.Black},
		{Cell: rules.Cell{X: 2, Y: 2}, Color: rules.White},
		{Cell: rules.Cell{X: 6, Y: 6}, Color: rules.Black},
		{Cell: rules.Cell{X: 2, Y: 6}, Color: rules.White},
		{Cell: rules.Cell{X: 6, Y: 2}, Color: rules.Black},
		{Cell: rules.Pass, Color: rules.White},
		{Cell: rules.Pass, Color: rules.Black},
	}

	for _, m := range moves {
		if err := rec.AddMove(m.Cell, m.Color); err != nil {
			t.Fatalf("AddMove(%v, %v): %v", m.Cell, m.Color, err)
		}
	}

	rec.SetResult("Black wins by 12.5 points")
	rec.Close()

	s := readString(t, rec.FilePath)

	if !strings.HasPrefix(s, "(;GM[1]") {
		t.Error("Should start with SGF header")
	}
	if !strings.HasSuffix(strings.TrimSpace(s), ")") {
		t.Error("Should end with closing paren")
	}

	expected := []string{";B[ee]", ";W[cc]", ";B[gg]", ";W[cg]", ";B[gc]", ";W[]", ";B[]"}
	for _, m := range expected {
		if !strings.Contains(s, m) {
			t.Errorf("Missing move %s in:\n%s", m, s)
		}
	}

	if !strings.Contains(s, "RE[B+12.5]") {
		t.Errorf("Missing result RE[B+12.5] in:\n%s", s)
	}

	back, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(back.Moves) != len(moves) {
		t.Fatalf("len(Moves) = %d, want %d", len(back.Moves), len(moves))
	}
	for i, m := range moves {
		if back.Moves[i] != m {
			t.Errorf("Moves[%d] = %+v, want %+v", i, back.Moves[i], m)
		}
	}
}

func TestRecordFromPosition(t *testing.T) {
	root, err := rules.Setup{
		Width:      9,
		Height:     9,
		Black:      []rules.Cell{{X: 2, Y: 2}},
		White:      []rules.Cell{{X: 6, Y: 6}},
		Komi:       6.5,
		NextToMove: rules.White,
	}.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	p, err := rules.ApplyMove(root, rules.White, rules.Cell{X: 4, Y: 4})
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	p, err = rules.ApplyMove(p, rules.Black, rules.Pass)
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, RecordFromPosition(p)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	s := buf.String()
	for _, want := range []string{"AB[cc]", "AW[gg]", "PL[W]", ";W[ee];B[]"} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %s in:\n%s", want, s)
		}
	}

	back, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	replayed, err := back.Replay(rules.ReplayOptions{})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if replayed.Hash() != p.Hash() {
		t.Errorf("replayed position differs:\n%v\nwant\n%v", replayed, p)
	}
	if replayed.NextToMove() != p.NextToMove() {
		t.Errorf("NextToMove = %v, want %v", replayed.NextToMove(), p.NextToMove())
	}
}

func TestFilenameFormat(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, newPosition(t, 13, 6.5), rules.Black, "GnuGo Level 5")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	base := filepath.Base(rec.FilePath)
	if !strings.HasSuffix(base, "_13x13.sgf") {
		t.Errorf("Filename should end with _13x13.sgf, got %s", base)
	}
	if !strings.HasPrefix(base, "20") {
		t.Errorf("Filename should start with year, got %s", base)
	}
}

func TestCloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, newPosition(t, 9, 6.5), rules.Black, "GnuGo Level 5")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}

	rec.Close()
	rec.Close() // Should not panic

	if err := rec.AddMove(rules.Pass, rules.Black); err == nil {
		t.Error("AddMove after Close should fail")
	}
}

func TestCrashSafety(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, newPosition(t, 9, 6.5), rules.Black, "GnuGo Level 5")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}

	rec.AddMove(rules.Cell{X: 4, Y: 4}, rules.Black)
	rec.AddMove(rules.Cell{X: 2, Y: 2}, rules.White)

	// Simulate crash: the file should be valid SGF after each flush
	s := readString(t, rec.FilePath)

	if !strings.HasPrefix(s, "(;") {
		t.Error("File should be valid SGF even without Close()")
	}
	if !strings.Contains(s, ")") {
		t.Error("File should have closing paren even without Close()")
	}
	if !strings.Contains(s, ";B[ee]") {
		t.Error("File should contain moves even without Close()")
	}

	rec.Close()
}
