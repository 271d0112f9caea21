// Package ui specifies custom controls for tview to assist in playing Go in the terminal.
package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"termsuji-rules/config"
	"termsuji-rules/engine"
	"termsuji-rules/rules"
	"termsuji-rules/sgf"
	"termsuji-rules/types"
)

// GoBoardUI draws a position and routes moves either to an engine or, when
// no engine is connected, to a game tree for review and face-to-face play.
type GoBoardUI struct {
	Box        *tview.Box
	BoardState *types.BoardState
	hint       *tview.TextView
	cfg        *config.Config
	log        *zap.SugaredLogger
	pos        *rules.Position
	finished   bool
	outcome    string
	selX       int
	selY       int
	app        *tview.Application
	eng        engine.GameEngine
	record     *sgf.GameRecord
	tree       *sgf.GameTree
	scoring    bool
	lastErr    error
	styles     []tcell.Color
	infoPanel  *GameInfoPanel
	focusMode  bool
}

// ToggleFocusMode toggles focus mode and returns the new state.
func (g *GoBoardUI) ToggleFocusMode() bool {
	g.focusMode = !g.focusMode
	g.refreshHint()
	return g.focusMode
}

// SetFocusMode sets focus mode to the given state.
func (g *GoBoardUI) SetFocusMode(enabled bool) {
	g.focusMode = enabled
	g.refreshHint()
}

// IsFocusMode returns true if focus mode is enabled.
func (g *GoBoardUI) IsFocusMode() bool {
	return g.focusMode
}

func (g *GoBoardUI) SelectedTile() *types.BoardPos {
	if g.selX == -1 && g.selY == -1 {
		return nil
	}
	return &types.BoardPos{X: g.selX, Y: g.selY}
}

func (g *GoBoardUI) MoveSelection(h, v int) {
	if g.BoardState.Width() == 0 || (g.finished && !g.scoring) {
		g.ResetSelection()
		return
	}
	if g.SelectedTile() == nil {
		g.selX = g.BoardState.LastMove.X
		g.selY = g.BoardState.LastMove.Y
		if g.SelectedTile() == nil {
			// No previous move made, use board center
			g.selX = g.BoardState.Width() / 2
			g.selY = g.BoardState.Height() / 2
		}
		return
	}
	if g.selX+h < 0 || g.selX+h >= g.BoardState.Width() {
		return
	}
	if g.selY+v < 0 || g.selY+v >= g.BoardState.Height() {
		return
	}
	g.selX += h
	g.selY += v
}

func (g *GoBoardUI) ResetSelection() {
	g.selX = -1
	g.selY = -1
}

func NewGoBoard(app *tview.Application, c *config.Config, hint *tview.TextView, logger *zap.SugaredLogger) *GoBoardUI {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	goBoard := &GoBoardUI{
		Box:        tview.NewBox(),
		BoardState: &types.BoardState{},
		hint:       hint,
		app:        app,
		log:        logger.With("component", "board"),
		selX:       -1,
		selY:       -1,
	}
	goBoard.SetConfig(c)
	goBoard.Box.SetDrawFunc(goBoard.draw)
	return goBoard
}

func (g *GoBoardUI) draw(screen tcell.Screen, x int, y int, width int, height int) (int, int, int, int) {
	state := g.BoardState
	if state == nil || state.Width() == 0 {
		return x, y, 1, 1
	}
	theme := g.cfg.Theme
	// 2 characters per cell for square appearance
	boardW, boardH := state.Width()*2, state.Height()

	for boardY := 0; boardY < state.Height(); boardY++ {
		for boardX := 0; boardX < state.Width(); boardX++ {
			stone := state.Board[boardY][boardX]
			dead := stone != types.Empty && state.IsRemoved(boardX, boardY)
			i := stone
			if !theme.DrawStoneBackground {
				i = 0
			}
			var fgColor tcell.Color
			// Get color and inverted color
			iInv := 0
			if i == types.Black {
				iInv = types.White
			} else if i == types.White {
				iInv = types.Black
			}
			if (boardX%2 + boardY%2) == 1 {
				i += 3
				iInv += 3
			}
			var drawRune rune
			if theme.UseGridLines && stone == types.Empty {
				hoshi := isHoshiPoint(boardX, boardY, state.Width(), state.Height())
				drawRune = getGridRune(boardX, boardY, state.Width(), state.Height(), hoshi)
			} else {
				drawRune = theme.Symbols.BoardSquare
			}

			switch {
			case dead:
				drawRune = theme.Symbols.DeadStoneBlack
				if stone == types.White {
					drawRune = theme.Symbols.DeadStoneWhite
				}
				fgColor = g.styles[stone]
			case stone != types.Empty:
				drawRune = theme.Symbols.BlackStone
				if stone == types.White {
					drawRune = theme.Symbols.WhiteStone
				}
				if theme.DrawStoneBackground {
					// Cursor color is inverted stone color, or cursor color when not on a stone.
					fgColor = g.styles[iInv]
				} else {
					// There's a stone but no background drawing, adjust the fg color instead to selected stone
					fgColor = g.styles[stone]
				}
			default:
				// No stone, use line color for grid
				fgColor = g.styles[9]
			}
			if owner := state.Marks[boardY][boardX]; owner != types.Empty && (stone == types.Empty || dead) {
				if stone == types.Empty {
					drawRune = theme.Symbols.Territory
				}
				fgColor = g.styles[owner]
				if theme.DrawStoneBackground {
					fgColor = g.styles[10]
				}
			}

			if boardX == g.selX && boardY == g.selY {
				if theme.DrawCursorBackground {
					i = 8
				} else if !theme.UseGridLines {
					drawRune = theme.Symbols.Cursor
				}
			} else if boardX == state.LastMove.X && boardY == state.LastMove.Y {
				if theme.DrawLastPlayedBackground {
					i = 7
				} else if !theme.UseGridLines {
					drawRune = theme.Symbols.LastPlayed
				}
			}

			style := tcell.StyleDefault.Background(g.styles[i]).Foreground(fgColor)
			if theme.UseGridLines && stone == types.Empty {
				hasStoneRight := false
				if boardX < state.Width()-1 {
					hasStoneRight = state.Board[boardY][boardX+1] > 0
				}
				drawGridCell(screen, style, drawRune, boardX, boardY, x+4, y, state.Width(), hasStoneRight)
			} else {
				drawStoneCell(screen, style, drawRune, boardX, boardY, x+4, y)
			}
		}
	}
	drawCoordinates(screen, x, y, g)
	// Add offset for coordinate display
	return x, y, boardW + 4, boardH + 2
}

// Position returns the position being shown.
func (g *GoBoardUI) Position() *rules.Position {
	return g.pos
}

func (g *GoBoardUI) setPosition(p *rules.Position) {
	g.pos = p
	g.BoardState = types.FromPosition(p)
	if g.finished {
		g.BoardState.Phase = "finished"
		g.BoardState.Outcome = g.outcome
	}
	g.refreshHint()
}

func (g *GoBoardUI) redraw() {
	if g.app == nil {
		return
	}
	// Spawn goroutine to avoid deadlock when called from main thread
	go g.app.QueueUpdateDraw(func() {})
}

// ConnectEngine connects the board to a game engine. Moves are appended to
// rec when it is non-nil.
func (g *GoBoardUI) ConnectEngine(e engine.GameEngine, rec *sgf.GameRecord) error {
	g.finished = false
	g.scoring = false
	g.outcome = ""
	g.tree = nil
	g.eng = e
	g.record = rec

	e.OnMove(func(c rules.Cell, color rules.Color, pos *rules.Position) {
		if g.record != nil {
			if err := g.record.AddMove(c, color); err != nil {
				g.log.Warnw("record move", "move", c, zap.Error(err))
			}
		}
		g.lastErr = nil
		g.setPosition(pos)
		g.redraw()
	})

	e.OnGameEnd(func(outcome string) {
		g.finished = true
		g.outcome = outcome
		if g.record != nil {
			if err := g.record.SetResult(outcome); err != nil {
				g.log.Warnw("record result", zap.Error(err))
			}
			g.record.Close()
		}
		g.log.Infow("game over", "outcome", outcome)
		g.ResetSelection()
		g.setPosition(rules.EstimateTerritory(e.Position()))
		g.redraw()
	})

	if err := e.Connect(); err != nil {
		return err
	}

	g.setPosition(e.Position())
	return nil
}

// Review shows tree with no engine attached. Moves entered on the board
// extend the tree for whichever side is to move.
func (g *GoBoardUI) Review(tree *sgf.GameTree) {
	g.eng = nil
	g.record = nil
	g.finished = false
	g.scoring = false
	g.outcome = ""
	g.tree = tree
	g.setPosition(tree.Position())
}

// Tree returns the game tree in review mode, nil otherwise.
func (g *GoBoardUI) Tree() *sgf.GameTree {
	return g.tree
}

// PlayMove plays a move at c. In scoring mode it toggles c's region as dead
// or alive instead.
func (g *GoBoardUI) PlayMove(c rules.Cell) {
	switch {
	case g.scoring:
		g.setPosition(rules.ToggleRemoved(g.pos, c))
	case g.tree != nil:
		if _, err := g.tree.Play(c); err != nil {
			g.lastErr = err
			g.refreshHint()
			return
		}
		g.lastErr = nil
		g.setPosition(g.tree.Position())
	case g.finished || g.eng == nil || !g.eng.IsMyTurn():
		return
	default:
		if err := g.eng.PlayMove(c); err != nil {
			g.lastErr = err
			g.refreshHint()
		}
	}
}

// Pass passes the current turn.
func (g *GoBoardUI) Pass() {
	if g.scoring {
		return
	}
	if g.tree != nil {
		g.PlayMove(rules.Pass)
		return
	}
	if g.finished || g.eng == nil || !g.eng.IsMyTurn() {
		return
	}
	if err := g.eng.Pass(); err != nil {
		g.lastErr = err
		g.refreshHint()
	}
}

// Undo takes back the last move of each side against an engine, or steps
// back one move in review mode.
func (g *GoBoardUI) Undo() {
	if g.scoring {
		return
	}
	if g.tree != nil {
		g.Navigate(g.tree.Back)
		return
	}
	if g.eng == nil || g.finished || !g.eng.IsMyTurn() {
		return
	}
	for i := 0; i < 2; i++ {
		if err := g.eng.Undo(); err != nil {
			g.lastErr = err
			break
		}
		if g.record != nil {
			if err := g.record.UndoMoves(1); err != nil {
				g.log.Warnw("record undo", zap.Error(err))
			}
		}
	}
	g.setPosition(g.eng.Position())
}

// Navigate runs a tree movement such as (*sgf.GameTree).Back and shows the
// resulting position. It does nothing outside review mode or while scoring.
func (g *GoBoardUI) Navigate(step func() bool) {
	if g.tree == nil || g.scoring {
		return
	}
	step()
	g.setPosition(g.tree.Position())
}

// NavigateTo is Navigate for the movements without a result.
func (g *GoBoardUI) NavigateTo(step func()) {
	g.Navigate(func() bool { step(); return true })
}

// ToggleScoring enters or leaves stone removal. Entering estimates the
// territory of the current position; leaving restores the plain position.
func (g *GoBoardUI) ToggleScoring() bool {
	if g.pos == nil {
		return false
	}
	g.scoring = !g.scoring
	if g.scoring {
		g.setPosition(rules.EstimateTerritory(g.pos))
	} else if g.tree != nil {
		g.setPosition(g.tree.Position())
	} else if g.eng != nil {
		g.setPosition(g.eng.Position())
	}
	return g.scoring
}

// IsScoring reports whether stone removal is active.
func (g *GoBoardUI) IsScoring() bool {
	return g.scoring
}

// Score counts the shown position with the configured scoring rules.
func (g *GoBoardUI) Score() rules.Score {
	return rules.CountScore(g.pos, g.cfg.ScoringRules())
}

// Close disconnects the engine.
func (g *GoBoardUI) Close() {
	if g.record != nil {
		g.record.Close()
	}
	if g.eng == nil {
		return
	}
	g.eng.Close()
	g.eng = nil
}

func (g *GoBoardUI) SetConfig(c *config.Config) {
	g.styles = []tcell.Color{
		tcell.PaletteColor(c.Theme.Colors.BoardColor),        // 0
		tcell.PaletteColor(c.Theme.Colors.BlackColor),        // 1
		tcell.PaletteColor(c.Theme.Colors.WhiteColor),        // 2
		tcell.PaletteColor(c.Theme.Colors.BoardColorAlt),     // 3
		tcell.PaletteColor(c.Theme.Colors.BlackColorAlt),     // 4
		tcell.PaletteColor(c.Theme.Colors.WhiteColorAlt),     // 5
		tcell.PaletteColor(c.Theme.Colors.CursorColorFG),     // 6
		tcell.PaletteColor(c.Theme.Colors.LastPlayedColorBG), // 7
		tcell.PaletteColor(c.Theme.Colors.CursorColorBG),     // 8
		tcell.PaletteColor(c.Theme.Colors.LineColor),         // 9
		tcell.PaletteColor(c.Theme.Colors.TerritoryColor),    // 10
	}
	g.cfg = c
}

func (g *GoBoardUI) refreshHint() {
	if g.infoPanel != nil {
		g.infoPanel.Update(g)
	}
	if g.hint == nil {
		return
	}
	if g.pos == nil {
		g.hint.SetText("")
		return
	}

	// Focus mode shows minimal hint
	if g.focusMode {
		g.hint.SetText("  f to toggle")
		return
	}

	var statusLine, turnLine, controlsLine string

	switch {
	case g.scoring:
		statusLine = "  Mark dead stones\n"
		turnLine = fmt.Sprintf("  Score: %s\n", g.Score().Result())
		controlsLine = "  ⏎ toggle group   s done   q quit"
	case g.finished:
		statusLine = "───────── Game Complete ─────────\n\n"
		turnLine = fmt.Sprintf("  Result: %s\n", g.outcome)
		controlsLine = "\n  s score   q · return to menu"
	case g.tree != nil:
		turnLine = fmt.Sprintf("  %s to move\n", g.pos.NextToMove())
		controlsLine = "  ⏎ play  p pass  [ ] back/fwd  { } start/end  v/V variation  s score  q quit"
	default:
		if last, ok := g.pos.LastMove(); ok && last.IsPass() {
			statusLine = "  ○ Opponent passed\n\n"
		}
		if g.eng != nil && g.eng.IsMyTurn() {
			stone := "●"
			if g.eng.PlayerColor() == rules.White {
				stone = "○"
			}
			turnLine = fmt.Sprintf("  %s Your move (%s)\n", stone, g.eng.PlayerColor())
		} else {
			turnLine = "  ◌ Thinking...\n"
		}
		controlsLine = `
  hjkl/↑↓←→ move   ⏎ play   u undo
         p pass   f focus   q quit`
	}
	if g.lastErr != nil {
		statusLine = fmt.Sprintf("  ! %s\n", g.lastErr)
	}
	g.hint.SetBorderColor(statusBorder(g.lastErr))

	g.hint.SetText(fmt.Sprintf("%s%s%s", statusLine, turnLine, controlsLine))
}

// IsFinished returns true if the game is over.
func (g *GoBoardUI) IsFinished() bool {
	return g.finished
}

// drawStoneCell draws a stone cell (2 characters wide)
func drawStoneCell(s tcell.Screen, c tcell.Style, r rune, x, y, l, t int) {
	s.SetContent(l+x*2, t+y, r, nil, c)
	s.SetContent(l+x*2+1, t+y, ' ', nil, c)
}

// drawGridCell draws a cell using box-drawing characters for grid lines
func drawGridCell(s tcell.Screen, c tcell.Style, r rune, x, y, l, t, boardWidth int, hasStoneRight bool) {
	// 2-char cell: [intersection][right-line]
	s.SetContent(l+x*2, t+y, r, nil, c)

	rightConn := '─'
	if x == boardWidth-1 || hasStoneRight {
		rightConn = ' '
	}
	s.SetContent(l+x*2+1, t+y, rightConn, nil, c)
}

// getGridRune returns the appropriate box-drawing character for a grid position
func getGridRune(x, y, width, height int, isHoshi bool) rune {
	if isHoshi {
		return '◦'
	}

	isTop := y == 0
	isBottom := y == height-1
	isLeft := x == 0
	isRight := x == width-1

	switch {
	case isTop && isLeft:
		return '┌'
	case isTop && isRight:
		return '┐'
	case isBottom && isLeft:
		return '└'
	case isBottom && isRight:
		return '┘'
	case isTop:
		return '┬'
	case isBottom:
		return '┴'
	case isLeft:
		return '├'
	case isRight:
		return '┤'
	default:
		return '┼'
	}
}

// isHoshiPoint reports whether (x, y) is a star point. Only the square
// 9, 13 and 19 boards have them.
func isHoshiPoint(x, y, width, height int) bool {
	if width != height {
		return false
	}
	var lines []int
	switch width {
	case 9:
		lines = []int{2, 4, 6}
	case 13:
		lines = []int{3, 6, 9}
	case 19:
		lines = []int{3, 9, 15}
	default:
		return false
	}
	onLine := func(v int) bool {
		for _, l := range lines {
			if v == l {
				return true
			}
		}
		return false
	}
	if !onLine(x) || !onLine(y) {
		return false
	}
	// 9x9 has no side stars
	if width == 9 && (x == 4) != (y == 4) {
		return false
	}
	// nor does 13x13
	if width == 13 && (x == 6) != (y == 6) {
		return false
	}
	return true
}

// columnLabel is the column letter of x in Go notation, which skips I.
func columnLabel(x int, fullWidth bool) rune {
	base := 'A'
	if fullWidth {
		base = 'Ａ'
	}
	if x >= 8 {
		x++
	}
	return base + rune(x)
}

func drawCoordinates(s tcell.Screen, x, y int, ui *GoBoardUI) {
	w, h := ui.BoardState.Width(), ui.BoardState.Height()

	style := tcell.StyleDefault
	highlight := tcell.StyleDefault.Background(ui.styles[8])
	lpHighlight := tcell.StyleDefault.Background(ui.styles[7])

	for ix := 0; ix < w; ix++ {
		_style := style
		if ix == ui.selX {
			_style = highlight
		} else if ix == ui.BoardState.LastMove.X {
			_style = lpHighlight
		}
		// 2-char cells
		s.SetContent(x+4+(ix*2), y+h+1, columnLabel(ix, ui.cfg.Theme.FullWidthLetters), nil, _style)
		s.SetContent(x+4+(ix*2)+1, y+h+1, ' ', nil, _style)
	}

	for iy := 0; iy < h; iy++ {
		iyInv := h - iy - 1 // Board coordinates starts top left, Go board starts bottom left
		_style := style
		if iyInv == ui.selY {
			_style = highlight
		} else if iyInv == ui.BoardState.LastMove.Y {
			_style = lpHighlight
		}
		displayNum := iy + 1
		tensRune := ' '
		if displayNum >= 10 {
			tensRune = rune('0' + displayNum/10)
		}
		s.SetContent(x+1, y+h-iy-1, tensRune, nil, _style)
		s.SetContent(x+2, y+h-iy-1, rune('0'+(displayNum%10)), nil, _style)
	}
}
