package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termsuji-rules/config"
	"termsuji-rules/rules"
)

// ColorConfigUI provides a color configuration screen with live preview.
type ColorConfigUI struct {
	flex      *tview.Flex
	colorList *tview.List
	preview   *GoBoardUI
	// previewCfg is a copy of cfg holding the colors under consideration.
	previewCfg config.Config
	cfg        *config.Config
	onError    func(error)

	editingLine bool // true = editing line color, false = editing board color
}

type paletteEntry struct {
	code int
	name string
}

// Common board colors to choose from (warm wood-like tones)
var boardColors = []paletteEntry{
	{230, "Light Cream"},
	{229, "Pale Yellow"},
	{228, "Light Gold"},
	{222, "Gold"},
	{220, "Bright Yellow"},
	{214, "Orange Gold"},
	{208, "Dark Orange"},
	{180, "Tan"},
	{179, "Light Brown"},
	{172, "Brown"},
	{136, "Dark Brown"},
	{94, "Saddle Brown"},
	{252, "Light Gray"},
	{250, "Gray"},
	{248, "Medium Gray"},
	{244, "Dark Gray"},
	{188, "Light Beige"},
	{181, "Dusty Rose"},
	{223, "Peach"},
	{216, "Salmon"},
}

// Line colors (darker tones that contrast with board)
var lineColors = []paletteEntry{
	{94, "Saddle Brown"},
	{130, "Dark Orange"},
	{136, "Dark Brown"},
	{88, "Dark Red"},
	{52, "Dark Maroon"},
	{22, "Dark Green"},
	{23, "Teal"},
	{24, "Dark Cyan"},
	{17, "Navy Blue"},
	{54, "Purple"},
	{232, "Black"},
	{236, "Dark Gray"},
	{240, "Gray"},
	{244, "Medium Gray"},
	{16, "True Black"},
}

// The color preview is a 7x7 board split by a wall of each color, so both
// stones, both territories and the last-move highlight appear.
var previewMoves = []rules.Move{
	{Cell: rules.Cell{X: 1, Y: 5}},
	{Cell: rules.Cell{X: 5, Y: 1}},
}

func previewWall(x int) []rules.Cell {
	cells := make([]rules.Cell, 7)
	for y := range cells {
		cells[y] = rules.Cell{X: x, Y: y}
	}
	return cells
}

// PreviewPosition is the position drawn in the color preview.
func PreviewPosition() *rules.Position {
	init := rules.InitialState{Width: 7, Height: 7, Black: previewWall(2), White: previewWall(4)}
	p, err := rules.Replay(init, previewMoves, rules.ReplayOptions{})
	if err != nil {
		// previewMoves is fixed; fall back to an empty board.
		p, _ = rules.NewPosition(7, 7)
	}
	return rules.EstimateTerritory(p)
}

// NewColorConfig creates a new color configuration screen. Save failures
// are passed to onError.
func NewColorConfig(cfg *config.Config, onDone func(), onError func(error)) *ColorConfigUI {
	cc := &ColorConfigUI{
		cfg:        cfg,
		previewCfg: *cfg,
		onError:    onError,
	}

	cc.colorList = tview.NewList()
	cc.colorList.SetBorder(true)
	cc.colorList.ShowSecondaryText(false)

	cc.preview = NewGoBoard(nil, &cc.previewCfg, nil, nil)
	cc.preview.setPosition(PreviewPosition())
	previewFrame := tview.NewFlex().AddItem(cc.preview.Box, 0, 1, false)
	previewFrame.SetBorder(true)
	previewFrame.SetTitle(" Board Preview ")

	cc.populateColorList()

	// Selection change previews the color
	cc.colorList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		entry, ok := cc.entry(index)
		if !ok {
			return
		}
		if cc.editingLine {
			cc.previewCfg.Theme.Colors.LineColor = entry.code
		} else {
			cc.previewCfg.Theme.Colors.BoardColor = entry.code
			cc.previewCfg.Theme.Colors.BoardColorAlt = entry.code
		}
		cc.preview.SetConfig(&cc.previewCfg)
	})

	// Enter applies it
	cc.colorList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if _, ok := cc.entry(index); !ok {
			return
		}
		cc.Apply()
		if cc.editingLine {
			// Switch back to board color selection
			cc.editingLine = false
			cc.populateColorList()
			return
		}
		onDone()
	})

	cc.flex = tview.NewFlex().
		AddItem(cc.colorList, 30, 0, true).
		AddItem(previewFrame, 0, 1, false)

	return cc
}

func (cc *ColorConfigUI) entry(index int) (paletteEntry, bool) {
	list := boardColors
	if cc.editingLine {
		list = lineColors
	}
	if index < 0 || index >= len(list) {
		return paletteEntry{}, false
	}
	return list[index], true
}

// Apply copies the previewed colors into the live config and saves it.
func (cc *ColorConfigUI) Apply() {
	cc.cfg.Theme.Colors.BoardColor = cc.previewCfg.Theme.Colors.BoardColor
	cc.cfg.Theme.Colors.BoardColorAlt = cc.previewCfg.Theme.Colors.BoardColorAlt
	cc.cfg.Theme.Colors.LineColor = cc.previewCfg.Theme.Colors.LineColor
	if err := cc.cfg.Save(); err != nil && cc.onError != nil {
		cc.onError(err)
	}
}

// populateColorList fills the list with appropriate colors based on editing mode.
func (cc *ColorConfigUI) populateColorList() {
	cc.colorList.Clear()

	list, current := boardColors, cc.previewCfg.Theme.Colors.BoardColor
	cc.colorList.SetTitle(" Select Board Color (Tab: switch to line) ")
	if cc.editingLine {
		list, current = lineColors, cc.previewCfg.Theme.Colors.LineColor
		cc.colorList.SetTitle(" Select Line Color (Tab: switch to board) ")
	}
	for i, c := range list {
		cc.colorList.AddItem(fmt.Sprintf("[#%06x]████[-] %s (%d)",
			tcell.PaletteColor(c.code).Hex(), c.name, c.code),
			"", rune('a'+i), nil)
	}
	for i, c := range list {
		if c.code == current {
			cc.colorList.SetCurrentItem(i)
			break
		}
	}
}

// Flex returns the flex container for this UI.
func (cc *ColorConfigUI) Flex() *tview.Flex {
	return cc.flex
}

// SetInputCapture sets the input capture for the color list.
func (cc *ColorConfigUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	cc.colorList.SetInputCapture(capture)
}

// ToggleMode switches between board color and line color editing.
func (cc *ColorConfigUI) ToggleMode() {
	cc.editingLine = !cc.editingLine
	cc.populateColorList()
}
