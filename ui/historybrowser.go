package ui

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"termsuji-rules/rules"
	"termsuji-rules/sgf"
)

// HistoryBrowserUI provides a screen for browsing saved SGF game history.
type HistoryBrowserUI struct {
	flex     *tview.Flex
	gameList *tview.List
	preview  *tview.Box
	hint     *tview.TextView
	dir      string
	opts     rules.ReplayOptions
	log      *zap.SugaredLogger
	games    []sgf.GameInfo
	finals   map[string]*rules.Position // final positions by file path
	selected int
	onDone   func()
	onOpen   func(path string)
}

// NewHistoryBrowser creates a history browser over the SGF files in dir.
// Previews are replayed with opts. onOpen is called with the file chosen
// for review.
func NewHistoryBrowser(dir string, opts rules.ReplayOptions, logger *zap.SugaredLogger, onOpen func(path string), onDone func()) *HistoryBrowserUI {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	hb := &HistoryBrowserUI{
		dir:    dir,
		opts:   opts,
		log:    logger.With("component", "history"),
		onDone: onDone,
		onOpen: onOpen,
		finals: make(map[string]*rules.Position),
	}

	// Game list (left panel)
	hb.gameList = tview.NewList()
	hb.gameList.SetBorder(true)
	hb.gameList.SetTitle(" Game History ")
	hb.gameList.ShowSecondaryText(false)
	hb.gameList.SetHighlightFullLine(true)
	hb.gameList.SetMainTextStyle(tcell.StyleDefault.Foreground(MenuColors.Label))
	hb.gameList.SetSelectedStyle(tcell.StyleDefault.
		Foreground(MenuColors.ButtonText).
		Background(MenuColors.ButtonFocus))

	hb.preview = tview.NewBox()
	hb.preview.SetBorder(true)
	hb.preview.SetTitle(" Preview ")
	hb.preview.SetDrawFunc(hb.drawPreview)

	hb.hint = tview.NewTextView()
	hb.hint.SetDynamicColors(true)
	hb.hint.SetBorder(false)
	hb.hint.SetText("  [dimgray]⏎[-] review  [dimgray]d[-] delete  [dimgray]q[-] back")

	hb.gameList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		hb.selected = index
	})
	hb.gameList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if index < len(hb.games) && hb.onOpen != nil {
			hb.onOpen(hb.games[index].FilePath)
		}
	})

	hb.gameList.SetInputCapture(hb.handleInput)

	// Layout: list left, preview right, hint bottom
	topRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(hb.gameList, 38, 0, true).
		AddItem(hb.preview, 0, 1, false)

	hb.flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 1, true).
		AddItem(hb.hint, 1, 0, false)

	hb.loadGames()
	return hb
}

// Flex returns the flex container for this UI.
func (hb *HistoryBrowserUI) Flex() *tview.Flex {
	return hb.flex
}

// Refresh reloads the game list from disk.
func (hb *HistoryBrowserUI) Refresh() {
	hb.finals = make(map[string]*rules.Position)
	hb.loadGames()
}

// Games returns the listed games, newest first.
func (hb *HistoryBrowserUI) Games() []sgf.GameInfo {
	return hb.games
}

func (hb *HistoryBrowserUI) loadGames() {
	hb.gameList.Clear()
	hb.games = nil
	hb.selected = 0

	games, err := sgf.ListGames(hb.dir)
	if err != nil {
		hb.log.Warnw("list games", "dir", hb.dir, zap.Error(err))
	}
	if len(games) == 0 {
		hb.gameList.AddItem("[dimgray]No games found[-]", "", 0, nil)
		return
	}

	hb.games = games
	for _, g := range games {
		result := g.Result
		if result == "" || result == "?" {
			result = "..."
		}
		label := fmt.Sprintf("%s  %dx%d  %s", g.Date, g.BoardSize, g.Height, result)
		hb.gameList.AddItem(label, "", 0, nil)
	}
}

func (hb *HistoryBrowserUI) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		if hb.onDone != nil {
			hb.onDone()
		}
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q':
			if hb.onDone != nil {
				hb.onDone()
			}
			return nil
		case 'd':
			hb.deleteSelected()
			return nil
		}
	}
	return event
}

func (hb *HistoryBrowserUI) deleteSelected() {
	if hb.selected < 0 || hb.selected >= len(hb.games) {
		return
	}

	game := hb.games[hb.selected]
	if err := os.Remove(game.FilePath); err != nil {
		hb.log.Warnw("delete game", "file", game.FilePath, zap.Error(err))
	}
	delete(hb.finals, game.FilePath)
	hb.loadGames()
}

// finalPosition replays the game at path once and remembers the result.
// Unreadable games are remembered as nil.
func (hb *HistoryBrowserUI) finalPosition(path string) *rules.Position {
	if p, ok := hb.finals[path]; ok {
		return p
	}
	p, _, err := sgf.ReplayToEnd(path, hb.opts)
	if err != nil {
		hb.log.Warnw("replay game", "file", path, zap.Error(err))
		p = nil
	}
	hb.finals[path] = p
	return p
}

// drawPreview renders a mini board preview and game metadata.
func (hb *HistoryBrowserUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	if hb.selected < 0 || hb.selected >= len(hb.games) {
		return x, y, width, height
	}

	game := hb.games[hb.selected]
	pos := hb.finalPosition(game.FilePath)
	if pos == nil {
		drawText(screen, x+2, y+1, "Cannot replay this game", tcell.StyleDefault.Foreground(tcell.ColorRed))
		return x, y, width, height
	}

	w, h := pos.Width(), pos.Height()
	startX := x + 2
	startY := y + 1
	if width < w+4 || height < h+6 {
		return x, y, width, height
	}

	emptyStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(240))
	blackStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(255)).Bold(true)
	whiteStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(250))

	for by := 0; by < h; by++ {
		for bx := 0; bx < w; bx++ {
			ch := '·'
			style := emptyStyle
			if color, ok := pos.StoneAt(rules.Cell{X: bx, Y: by}); ok {
				switch color {
				case rules.Black:
					ch = '●'
					style = blackStyle
				case rules.White:
					ch = '○'
					style = whiteStyle
				}
			}
			screen.SetContent(startX+bx, startY+by, ch, nil, style)
		}
	}

	// Metadata below the board
	infoY := startY + h + 1
	infoStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(250))
	dimStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(245))

	drawText(screen, startX, infoY, fmt.Sprintf("%dx%d", w, h), infoStyle)
	drawText(screen, startX+6, infoY, fmt.Sprintf("| %d moves", game.MoveCount), dimStyle)

	infoY++
	drawText(screen, startX, infoY, fmt.Sprintf("B: %s  captures %d", game.PlayerBlack, pos.Captures(rules.Black)), dimStyle)
	infoY++
	drawText(screen, startX, infoY, fmt.Sprintf("W: %s  captures %d", game.PlayerWhite, pos.Captures(rules.White)), dimStyle)

	infoY++
	result := game.Result
	if result == "" || result == "?" {
		result = "Unfinished"
	}
	resultStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(109))
	drawText(screen, startX, infoY, fmt.Sprintf("Result: %s", result), resultStyle)

	return x, y, width, height
}

// drawText writes a string to the screen at the given position.
func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}
