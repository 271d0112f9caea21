package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"termsuji-rules/engine/gtp"
	"termsuji-rules/rules"
	"termsuji-rules/sgf"
)

const maxVisibleMoves = 12

// GameInfoPanel displays game information and move history alongside the board.
type GameInfoPanel struct {
	box *tview.TextView
}

// NewGameInfoPanel creates a new game info panel.
func NewGameInfoPanel() *GameInfoPanel {
	panel := &GameInfoPanel{
		box: tview.NewTextView(),
	}

	panel.box.SetDynamicColors(true)
	panel.box.SetBorder(false)
	panel.box.SetTextAlign(tview.AlignLeft)

	return panel
}

// Box returns the underlying tview component.
func (p *GameInfoPanel) Box() *tview.TextView {
	return p.box
}

// Update redraws the panel from the board's current position.
func (p *GameInfoPanel) Update(board *GoBoardUI) {
	p.box.SetText(panelText(board))
}

func panelText(board *GoBoardUI) string {
	pos := board.Position()
	if pos == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString("[white::b]Game Info[-:-:-]\n")
	b.WriteString("[dimgray]──────────────────────[-:-:-]\n")
	fmt.Fprintf(&b, "[white]Komi:[-:-:-] %.1f\n", pos.Komi())
	fmt.Fprintf(&b, "[white]Move:[-:-:-] %d\n", pos.MoveNumber())
	fmt.Fprintf(&b, "[white]Captures:[-:-:-] B %d  W %d\n", pos.Captures(rules.Black), pos.Captures(rules.White))

	if board.IsScoring() || board.IsFinished() {
		score := board.Score()
		fmt.Fprintf(&b, "[white]Score:[-:-:-] B %.1f  W %.1f\n", score.Black.Total(), score.White.Total())
		fmt.Fprintf(&b, "[yellow]%s[-]\n", score.Result())
	}

	tree := board.Tree()
	var moves []rules.Move
	if tree != nil {
		b.WriteString("\n[yellow::b]REVIEW[-:-:-]\n")
		b.WriteString("[dimgray]──────────────────────[-:-:-]\n")
		if tree.NumVariations() > 1 {
			fmt.Fprintf(&b, "[dimgray]var %d/%d[-]\n", tree.VariationIndex()+1, tree.NumVariations())
		}
		moves = tree.PathFromRoot()
		if len(moves) == 0 {
			b.WriteString("[dimgray]  (no moves)[-]\n")
		}
	} else {
		moves = sgf.RecordFromPosition(pos).Moves
		if len(moves) > 0 {
			b.WriteString("\n[white::b]Moves[-:-:-]\n")
			b.WriteString("[dimgray]──────────────────────[-:-:-]\n")
		}
	}
	writeMoves(&b, moves, pos.Height(), tree != nil && tree.HasChildren())

	return b.String()
}

// writeMoves lists the last moves, marking the newest. more adds a hint
// that the line continues past the shown position.
func writeMoves(b *strings.Builder, moves []rules.Move, height int, more bool) {
	start := 0
	if len(moves) > maxVisibleMoves {
		start = len(moves) - maxVisibleMoves
	}
	if start > 0 {
		fmt.Fprintf(b, "[dimgray]  ··· %d earlier[-]\n", start)
	}
	for i := start; i < len(moves); i++ {
		m := moves[i]
		colorStr := "[white]B[-]"
		if m.Color == rules.White {
			colorStr = "[dimgray]W[-]"
		}
		marker := " "
		if i == len(moves)-1 {
			marker = "[yellow]>[-]"
		}
		fmt.Fprintf(b, "%s[dimgray]%3d.[-] %s %s\n", marker, i+1, colorStr, gtp.CellToVertex(m.Cell, height))
	}
	if more {
		b.WriteString("[dimgray]  ···[-]\n")
	}
}

// CreateGameLayout creates the main game layout with board and side panel.
func CreateGameLayout(board *GoBoardUI, hint *tview.TextView) *tview.Flex {
	mainFlex := tview.NewFlex()
	RebuildNormalLayout(mainFlex, board, hint)
	return mainFlex
}

// RebuildNormalLayout restores the normal game layout with board, info panel, and hint.
func RebuildNormalLayout(gameFrame *tview.Flex, board *GoBoardUI, hint *tview.TextView) {
	gameFrame.Clear()

	infoPanel := NewGameInfoPanel()
	board.infoPanel = infoPanel
	infoPanel.Update(board)

	// Create horizontal flex: board | info panel
	boardRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	boardRow.AddItem(board.Box, 0, 1, true)         // Board (flexible, takes remaining space)
	boardRow.AddItem(infoPanel.Box(), 28, 0, false) // Info panel (fixed width)

	// Main vertical flex: board area on top, status bar at bottom
	gameFrame.SetDirection(tview.FlexRow)
	gameFrame.AddItem(boardRow, 0, 1, true)
	gameFrame.AddItem(hint, 5, 0, false)
}

// BuildFocusLayout builds the focus mode layout with just the centered board.
func BuildFocusLayout(gameFrame *tview.Flex, board *GoBoardUI) {
	gameFrame.Clear()

	// Calculate board dimensions
	boardWidth := 22 // default for 9x9
	boardHeight := 11
	if board.BoardState != nil && board.BoardState.Width() > 0 {
		boardWidth = board.BoardState.Width()*2 + 4 // 2 chars per cell + coordinates
		boardHeight = board.BoardState.Height() + 2 // + coordinates
	}

	gameFrame.SetDirection(tview.FlexRow)
	gameFrame.AddItem(nil, 0, 1, false)

	centerRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	centerRow.AddItem(nil, 0, 1, false)
	centerRow.AddItem(board.Box, boardWidth, 0, true)
	centerRow.AddItem(nil, 0, 1, false)

	gameFrame.AddItem(centerRow, boardHeight, 0, true)
	gameFrame.AddItem(nil, 0, 1, false)
}
