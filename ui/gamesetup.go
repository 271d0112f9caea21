package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"termsuji-rules/config"
	"termsuji-rules/engine"
	"termsuji-rules/rules"
)

var (
	boardSizes = []int{9, 13, 19}
	koRules    = []rules.KoRule{rules.KoSimple, rules.KoSuperko, rules.KoNone}
)

// GameSetupUI provides a form for configuring a new game.
type GameSetupUI struct {
	form *tview.Form
	flex *tview.Flex

	game engine.GameConfig
	// faceToFace skips the engine: both sides are played on this terminal.
	faceToFace bool
}

// NewGameSetup creates a new game setup form with defaults taken from cfg.
// onHistory may be nil to hide the history button.
func NewGameSetup(cfg *config.Config, onStart func(engine.GameConfig, bool), onCancel, onColors, onHistory func()) *GameSetupUI {
	setup := &GameSetupUI{
		game: engine.GameConfig{
			BoardSize:   cfg.Engine.DefaultBoardSize,
			Komi:        cfg.Engine.DefaultKomi,
			Handicap:    cfg.Engine.DefaultHandicap,
			PlayerColor: rules.Black,
			EngineLevel: cfg.Engine.DefaultLevel,
			EnginePath:  cfg.Engine.Path,
			Ko:          cfg.KoRule(),
			Scoring:     cfg.ScoringRules(),
		},
	}

	sizeLabels := make([]string, len(boardSizes))
	sizeIndex := len(boardSizes) - 1
	for i, n := range boardSizes {
		sizeLabels[i] = fmt.Sprintf("%dx%d", n, n)
		if n == setup.game.BoardSize {
			sizeIndex = i
		}
	}
	colors := []string{"Black (play first)", "White (play second)"}
	levels := []string{"1 (easiest)", "2", "3", "4", "5", "6", "7", "8", "9", "10 (hardest)"}
	handicaps := []string{"None"}
	for n := 2; n <= rules.MaxHandicap; n++ {
		handicaps = append(handicaps, strconv.Itoa(n))
	}
	handicapIndex := 0
	if setup.game.Handicap >= 2 {
		handicapIndex = setup.game.Handicap - 1
	}
	koLabels := make([]string, len(koRules))
	koIndex := 0
	for i, k := range koRules {
		koLabels[i] = k.String()
		if k == setup.game.Ko {
			koIndex = i
		}
	}

	form := tview.NewForm()

	form.AddDropDown("Opponent", []string{"GnuGo", "Face to face"}, 0, func(option string, index int) {
		setup.faceToFace = index == 1
	})

	form.AddDropDown("Board Size", sizeLabels, sizeIndex, func(option string, index int) {
		setup.game.BoardSize = boardSizes[index]
	})

	form.AddDropDown("Your Color", colors, 0, func(option string, index int) {
		setup.game.PlayerColor = rules.Color(index + 1)
	})

	form.AddDropDown("GnuGo Strength", levels, setup.game.EngineLevel-1, func(option string, index int) {
		setup.game.EngineLevel = index + 1
	})

	form.AddDropDown("Handicap", handicaps, handicapIndex, func(option string, index int) {
		setup.game.Handicap = 0
		if index > 0 {
			setup.game.Handicap = index + 1
		}
	})

	form.AddDropDown("Ko Rule", koLabels, koIndex, func(option string, index int) {
		setup.game.Ko = koRules[index]
	})

	form.AddInputField("Komi", strconv.FormatFloat(setup.game.Komi, 'f', -1, 64), 8, func(text string, lastChar rune) bool {
		// Allow digits, decimal point, and minus sign
		return (lastChar >= '0' && lastChar <= '9') || lastChar == '.' || lastChar == '-'
	}, func(text string) {
		if val, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			setup.game.Komi = val
		}
	})

	form.AddButton("Start Game", func() {
		onStart(setup.Config(), setup.faceToFace)
	})

	form.AddButton("Board Color", func() {
		if onColors != nil {
			onColors()
		}
	})

	if onHistory != nil {
		form.AddButton("History", onHistory)
	}

	form.AddButton("Quit", func() {
		onCancel()
	})

	form.SetBorder(true)
	form.SetTitle(" New Game ")
	form.SetTitleAlign(tview.AlignCenter)
	form.SetButtonBackgroundColor(MenuColors.ButtonBG)
	form.SetButtonTextColor(MenuColors.ButtonText)

	helpText := tview.NewTextView().
		SetText("Tab/Shift+Tab: navigate fields  |  Arrow keys: change dropdown  |  Enter: confirm").
		SetTextAlign(tview.AlignCenter)
	helpText.SetTextColor(MenuColors.Hint)

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(helpText, 1, 0, false)

	setup.form = form
	setup.flex = flex
	return setup
}

// Config returns the game configuration currently selected in the form.
func (s *GameSetupUI) Config() engine.GameConfig {
	return s.game
}

// Form returns the flex container with form and help text.
func (s *GameSetupUI) Form() *tview.Flex {
	return s.flex
}

// SetInputCapture sets the input capture function for the form.
func (s *GameSetupUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	s.form.SetInputCapture(capture)
}
