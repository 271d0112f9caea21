// termsuji is a terminal Go board: play GnuGo or a friend offline, and review
// SGF records or games saved from online-go.com.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"termsuji-rules/config"
	"termsuji-rules/engine"
	"termsuji-rules/engine/gtp"
	"termsuji-rules/rules"
	"termsuji-rules/sgf"
	"termsuji-rules/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

// Command-line flags
var (
	flagBoardSize  = flag.Int("boardsize", 0, "Board size (9, 13, or 19)")
	flagColor      = flag.String("color", "", "Player color (black or white)")
	flagDifficulty = flag.Int("difficulty", 0, "GnuGo difficulty level (1-10)")
	flagKomi       = flag.Float64("komi", -1, "Komi value")
	flagHandicap   = flag.Int("handicap", -1, "Handicap stones (0 or 2-9)")
	flagQuickStart = flag.Bool("play", false, "Start game immediately with defaults")
	flagLocal      = flag.Bool("local", false, "Play both sides on this terminal instead of against GnuGo")
	flagFocus      = flag.Bool("focus", false, "Start in focus mode (fullscreen board)")
	flagConfig     = flag.String("config", "", "Config file (default: termsuji/config.json in the XDG config dirs)")
	flagSGF        = flag.String("sgf", "", "Review an SGF file")
	flagOGS        = flag.String("ogs", "", "Review a game payload saved from the online-go.com API")
	flagDump       = flag.Bool("dump", false, "With -sgf or -ogs: print the final position and score, then exit")
	flagAnalyze    = flag.Bool("analyze", false, "With -sgf or -ogs: print KataGo's best moves for the final position, then exit")
	flagVersion    = flag.Bool("version", false, "Print version and exit")
)

var app *tview.Application
var rootPage *tview.Pages
var gameBoard *ui.GoBoardUI
var gameFrame *tview.Flex
var gameHint *tview.TextView
var history *ui.HistoryBrowserUI
var cfg *config.Config
var logger *zap.SugaredLogger

// localGame is set while a face-to-face game is on the board. It is saved
// to the history directory when the board is left.
var localGame bool

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Printf("termsuji %s\n", Version)
		return
	}

	var err error
	cfgPath := *flagConfig
	if cfgPath == "" {
		cfgPath = config.Locate()
	}
	cfg, err = config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	base, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %s\n", err)
		os.Exit(1)
	}
	defer base.Sync()
	logger = base.Sugar()

	review := reviewSource()
	if review.path != "" && (*flagDump || *flagAnalyze) {
		if err := runBatch(review); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	quickStart := *flagQuickStart || *flagLocal || *flagBoardSize > 0 || *flagColor != "" ||
		*flagDifficulty > 0 || *flagKomi >= 0 || *flagHandicap >= 0 || *flagFocus
	if review.path == "" && quickStart && !*flagLocal {
		if err := checkGnuGo(); err != nil {
			fmt.Println("Error: GnuGo not found.")
			fmt.Println("Please install GnuGo:")
			fmt.Println("  macOS:  brew install gnu-go")
			fmt.Println("  Ubuntu: sudo apt install gnugo")
			fmt.Println("  Fedora: sudo dnf install gnugo")
			fmt.Println("or run with -local to play face to face.")
			return
		}
	}

	app = tview.NewApplication()
	rootPage = tview.NewPages()
	rootPage.SetBorder(true).SetTitle(" ⬡ termsuji ")

	gameHint = tview.NewTextView()
	gameHint.SetBorder(true)
	gameHint.SetBorderPadding(0, 0, 1, 1)
	gameHint.SetTitle(" Status ")
	gameHint.SetTitleAlign(tview.AlignLeft)
	gameBoard = ui.NewGoBoard(app, cfg, gameHint, logger)

	gameFrame = ui.CreateGameLayout(gameBoard, gameHint)
	gameBoard.Box.SetInputCapture(handleBoardKey)

	setupUI := ui.NewGameSetup(cfg,
		startGame,
		func() {
			app.Stop()
		},
		func() {
			rootPage.SwitchToPage("colors")
		},
		func() {
			history.Refresh()
			rootPage.SwitchToPage("history")
		},
	)

	colorConfig := ui.NewColorConfig(cfg, func() {
		gameBoard.SetConfig(cfg)
		rootPage.SwitchToPage("setup")
	}, func(err error) {
		logger.Errorw("save config", zap.Error(err))
		showError("Failed to save config", err)
	})
	colorConfig.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			rootPage.SwitchToPage("setup")
			return nil
		}
		if event.Key() == tcell.KeyTab {
			colorConfig.ToggleMode()
			return nil
		}
		return event
	})

	history = ui.NewHistoryBrowser(cfg.HistoryDirPath(), replayOptions(), logger,
		func(path string) {
			openReview(source{path: path})
		},
		func() {
			rootPage.SwitchToPage("setup")
		},
	)

	startOnBoard := quickStart || review.path != ""
	rootPage.AddPage("setup", setupUI.Form(), true, !startOnBoard)
	rootPage.AddPage("gameview", gameFrame, true, startOnBoard)
	rootPage.AddPage("colors", colorConfig.Flex(), true, false)
	rootPage.AddPage("history", history.Flex(), true, false)

	switch {
	case review.path != "":
		openReview(review)
	case quickStart:
		startGame(buildGameConfigFromFlags(), *flagLocal)
	}
	if *flagFocus {
		gameBoard.SetFocusMode(true)
		ui.BuildFocusLayout(gameFrame, gameBoard)
	}

	if cfgPath != "" {
		config.Watch(cfgPath, func(c *config.Config) {
			app.QueueUpdateDraw(func() {
				cfg.Theme = c.Theme
				gameBoard.SetConfig(cfg)
				logger.Infow("theme reloaded", "file", cfgPath)
			})
		}, func(err error) {
			logger.Warnw("config reload failed", "file", cfgPath, zap.Error(err))
		})
	}

	go handleShutdown()

	if err := app.SetRoot(rootPage, true).Run(); err != nil {
		logger.Errorw("terminal UI failed", zap.Error(err))
		panic(err)
	}
	leaveBoard()
}

func handleBoardKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyRune && event.Rune() == 'q' {
		if gameBoard.SelectedTile() != nil {
			gameBoard.ResetSelection()
		} else {
			leaveBoard()
			rootPage.SwitchToPage("setup")
		}
		return nil
	}
	switch event.Key() {
	case tcell.KeyUp:
		gameBoard.MoveSelection(0, -1)
	case tcell.KeyDown:
		gameBoard.MoveSelection(0, 1)
	case tcell.KeyLeft:
		gameBoard.MoveSelection(-1, 0)
	case tcell.KeyRight:
		gameBoard.MoveSelection(1, 0)
	case tcell.KeyEnter:
		selTile := gameBoard.SelectedTile()
		if selTile == nil {
			return nil
		}
		gameBoard.PlayMove(selTile.Cell())
	case tcell.KeyRune:
		switch r := event.Rune(); r {
		case 'h':
			gameBoard.MoveSelection(-1, 0)
		case 'j':
			gameBoard.MoveSelection(0, 1)
		case 'k':
			gameBoard.MoveSelection(0, -1)
		case 'l':
			gameBoard.MoveSelection(1, 0)
		case 'p':
			gameBoard.Pass()
		case 'u':
			gameBoard.Undo()
		case 's':
			gameBoard.ToggleScoring()
		case 'f':
			if gameBoard.ToggleFocusMode() {
				ui.BuildFocusLayout(gameFrame, gameBoard)
			} else {
				ui.RebuildNormalLayout(gameFrame, gameBoard, gameHint)
			}
		default:
			navigate(r)
		}
	}
	return event
}

// navigate moves through the game tree in review and face-to-face mode.
func navigate(key rune) {
	tree := gameBoard.Tree()
	if tree == nil {
		return
	}
	switch key {
	case '[':
		gameBoard.Navigate(tree.Back)
	case ']':
		gameBoard.Navigate(func() bool { return tree.Forward(0) })
	case '{':
		gameBoard.NavigateTo(tree.ToStart)
	case '}':
		gameBoard.NavigateTo(tree.ToEnd)
	case 'v':
		gameBoard.Navigate(tree.NextVariation)
	case 'V':
		gameBoard.Navigate(tree.PrevVariation)
	}
}

// startGame starts a game against GnuGo, or a face-to-face game.
func startGame(gameCfg engine.GameConfig, faceToFace bool) {
	leaveBoard()

	start, err := gameCfg.StartPosition()
	if err != nil {
		showError("Failed to start game", err)
		return
	}

	if faceToFace {
		gameBoard.Review(sgf.NewGameTree(start, gameCfg.Ko))
		localGame = true
		logger.Infow("face-to-face game started", "size", gameCfg.BoardSize, "handicap", gameCfg.Handicap)
		rootPage.SwitchToPage("gameview")
		return
	}

	gameCfg.EnginePath = cfg.Engine.Path
	rec, err := sgf.NewGameRecord(cfg.HistoryDirPath(), start, gameCfg.PlayerColor, "GnuGo")
	if err != nil {
		logger.Warnw("game will not be saved", zap.Error(err))
		rec = nil
	}

	eng := gtp.NewGTPEngine(gameCfg, logger)
	if err := gameBoard.ConnectEngine(eng, rec); err != nil {
		logger.Errorw("engine failed to start", "path", gameCfg.EnginePath, zap.Error(err))
		if rec != nil {
			rec.Close()
		}
		showError("Failed to start game", err)
		return
	}
	rootPage.SwitchToPage("gameview")
}

// openReview loads a saved game into a tree positioned at its last move.
func openReview(src source) {
	leaveBoard()
	pos, err := loadGame(src, cfg, logger)
	if err != nil {
		logger.Errorw("open game", "file", src.path, zap.Error(err))
		showError("Failed to open game", err)
		return
	}
	tree := sgf.TreeFromPosition(pos, cfg.KoRule())
	tree.ToEnd()
	gameBoard.Review(tree)
	rootPage.SwitchToPage("gameview")
}

// leaveBoard closes the engine and saves a face-to-face game in progress.
func leaveBoard() {
	if gameBoard == nil {
		return
	}
	if localGame {
		localGame = false
		if tree := gameBoard.Tree(); tree != nil {
			if err := saveTree(tree, cfg.HistoryDirPath()); err != nil {
				logger.Warnw("save face-to-face game", zap.Error(err))
			}
		}
	}
	gameBoard.Close()
}

// saveTree writes the current line of tree as a new history file. Trees
// without moves are not saved.
func saveTree(tree *sgf.GameTree, dir string) error {
	path := tree.PathFromRoot()
	if len(path) == 0 {
		return nil
	}
	rec, err := sgf.NewGameRecord(dir, tree.Root.Position, rules.Black, "Player")
	if err != nil {
		return err
	}
	defer rec.Close()
	rec.Moves = path
	rec.Info.MoveCount = len(path)
	return rec.SetResult("?")
}

func showError(title string, err error) {
	modal := tview.NewModal().
		SetText(fmt.Sprintf("%s:\n%s", title, err.Error())).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			rootPage.RemovePage("error")
		})
	rootPage.AddPage("error", modal, true, true)
}

// buildGameConfigFromFlags creates a GameConfig from command-line flags.
func buildGameConfigFromFlags() engine.GameConfig {
	gameCfg := engine.GameConfig{
		BoardSize:   cfg.Engine.DefaultBoardSize,
		Komi:        cfg.Engine.DefaultKomi,
		Handicap:    cfg.Engine.DefaultHandicap,
		PlayerColor: rules.Black,
		EngineLevel: cfg.Engine.DefaultLevel,
		EnginePath:  cfg.Engine.Path,
		Ko:          cfg.KoRule(),
		Scoring:     cfg.ScoringRules(),
	}

	if *flagBoardSize == 9 || *flagBoardSize == 13 || *flagBoardSize == 19 {
		gameCfg.BoardSize = *flagBoardSize
	}

	switch strings.ToLower(*flagColor) {
	case "black", "b":
		gameCfg.PlayerColor = rules.Black
	case "white", "w":
		gameCfg.PlayerColor = rules.White
	}

	if *flagDifficulty >= 1 && *flagDifficulty <= 10 {
		gameCfg.EngineLevel = *flagDifficulty
	}

	if *flagHandicap == 0 || (*flagHandicap >= 2 && *flagHandicap <= rules.MaxHandicap) {
		gameCfg.Handicap = *flagHandicap
		if *flagKomi < 0 {
			gameCfg.Komi = rules.DetermineKomi(gameCfg.BoardSize, gameCfg.Handicap)
		}
	}

	if *flagKomi >= 0 {
		gameCfg.Komi = *flagKomi
	}

	return gameCfg
}

// checkGnuGo verifies that GnuGo is installed and accessible.
func checkGnuGo() error {
	path := cfg.Engine.Path
	if path == "" {
		path = "gnugo"
	}
	_, err := exec.LookPath(path)
	return err
}

func handleShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Infow("shutting down", "signal", sig.String())
	app.QueueUpdate(func() {
		leaveBoard()
		app.Stop()
	})
}
