package ui

import "github.com/gdamore/tcell/v2"

// MenuColors is the palette for everything around the board: menus, the
// history list and the status box.
var MenuColors = struct {
	Border      tcell.Color
	Warning     tcell.Color // status box border after a rejected move
	Label       tcell.Color
	Hint        tcell.Color
	ButtonBG    tcell.Color
	ButtonFocus tcell.Color
	ButtonText  tcell.Color
}{
	Border:      tcell.PaletteColor(60),  // muted blue-gray
	Warning:     tcell.PaletteColor(174), // soft red
	Label:       tcell.PaletteColor(250),
	Hint:        tcell.PaletteColor(245),
	ButtonBG:    tcell.PaletteColor(60),
	ButtonFocus: tcell.PaletteColor(109),
	ButtonText:  tcell.PaletteColor(255),
}

// statusBorder is the status box border color for the given move error.
func statusBorder(err error) tcell.Color {
	if err != nil {
		return MenuColors.Warning
	}
	return MenuColors.Border
}
