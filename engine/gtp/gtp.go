package gtp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"termsuji-rules/engine"
	"termsuji-rules/rules"
)

// GTPEngine implements the GameEngine interface using GnuGo via GTP protocol.
//
// The game is tracked locally with the rules package. Human moves are
// checked before they are sent, and engine moves are checked when they
// arrive.
type GTPEngine struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	log    *zap.SugaredLogger

	config    engine.GameConfig
	pos       *rules.Position
	myTurn    bool
	passCount int
	gameOver  bool

	moveCallback func(c rules.Cell, color rules.Color, pos *rules.Position)
	endCallback  func(outcome string)

	mu sync.Mutex
}

// NewGTPEngine creates a new GTP engine with the given configuration.
func NewGTPEngine(cfg engine.GameConfig, logger *zap.SugaredLogger) *GTPEngine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if !cfg.PlayerColor.Valid() {
		cfg.PlayerColor = rules.Black
	}
	return &GTPEngine{
		config: cfg,
		log:    logger.With("engine", "gtp"),
	}
}

// Connect starts the GnuGo subprocess and initializes the game.
func (g *GTPEngine) Connect() error {
	args := []string{
		"--mode", "gtp",
		"--level", fmt.Sprintf("%d", g.config.EngineLevel),
		"--quiet",
	}
	g.cmd = exec.Command(g.config.EnginePath, args...)

	stdin, err := g.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := g.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}

	// Discard stderr to prevent blocking
	g.cmd.Stderr = nil

	if err := g.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start GnuGo: %w", err)
	}
	g.log.Infof("started %s (level %d)", g.config.EnginePath, g.config.EngineLevel)

	g.attach(stdin, stdout)
	return g.setup()
}

// attach connects the engine to an already running GTP peer.
func (g *GTPEngine) attach(w io.WriteCloser, r io.Reader) {
	g.stdin = w
	g.stdout = bufio.NewReader(r)
}

// setup sends the board, komi and game history, then starts play.
func (g *GTPEngine) setup() error {
	pos, err := g.config.StartPosition()
	if err != nil {
		return fmt.Errorf("invalid game configuration: %w", err)
	}
	if pos.Width() != pos.Height() {
		return fmt.Errorf("GTP engines need a square board, got %dx%d", pos.Width(), pos.Height())
	}

	if _, err := g.sendCommand(fmt.Sprintf("boardsize %d", pos.Width())); err != nil {
		return fmt.Errorf("failed to set board size: %w", err)
	}
	if _, err := g.sendCommand("clear_board"); err != nil {
		return fmt.Errorf("failed to clear board: %w", err)
	}
	if _, err := g.sendCommand(fmt.Sprintf("komi %.1f", pos.Komi())); err != nil {
		return fmt.Errorf("failed to set komi: %w", err)
	}

	chain := rules.Chain(pos)
	for _, s := range chain[0].AllStones() {
		if err := g.sendPlay(s.Color, s.Cell, pos.Height()); err != nil {
			return fmt.Errorf("failed to place setup stone: %w", err)
		}
	}
	for _, p := range chain[1:] {
		last, _ := p.LastMove()
		if err := g.sendPlay(p.LastPlayerToMove(), last, pos.Height()); err != nil {
			return fmt.Errorf("failed to replay move %d: %w", p.MoveNumber(), err)
		}
	}

	g.mu.Lock()
	g.pos = pos
	g.myTurn = pos.NextToMove() == g.config.PlayerColor
	myTurn := g.myTurn
	g.mu.Unlock()

	if !myTurn {
		go g.triggerEngineMove()
	}
	return nil
}

func (g *GTPEngine) sendPlay(color rules.Color, c rules.Cell, height int) error {
	_, err := g.sendCommand(fmt.Sprintf("play %s %s", colorToGTP(color), CellToVertex(c, height)))
	return err
}

// sendCommand sends a GTP command and returns the response.
func (g *GTPEngine) sendCommand(cmd string) (string, error) {
	g.log.Debugf("sending %q", cmd)

	_, err := fmt.Fprintf(g.stdin, "%s\n", cmd)
	if err != nil {
		return "", fmt.Errorf("failed to send command: %w", err)
	}

	// A response ends with an empty line
	var response strings.Builder
	for {
		line, err := g.stdout.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		if response.Len() > 0 {
			response.WriteString("\n")
		}
		response.WriteString(line)
	}

	result := response.String()
	g.log.Debugf("response %q", result)

	if strings.HasPrefix(result, "?") {
		return "", fmt.Errorf("GTP error: %s", strings.TrimSpace(strings.TrimPrefix(result, "?")))
	}

	return strings.TrimSpace(strings.TrimPrefix(result, "=")), nil
}

// Position returns the current position.
func (g *GTPEngine) Position() *rules.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos
}

// PlayMove plays the human move at c.
func (g *GTPEngine) PlayMove(c rules.Cell) error {
	return g.playHuman(c)
}

// Pass passes the current turn.
func (g *GTPEngine) Pass() error {
	return g.playHuman(rules.Pass)
}

func (g *GTPEngine) playHuman(c rules.Cell) error {
	g.mu.Lock()

	if g.gameOver {
		g.mu.Unlock()
		return fmt.Errorf("game is over")
	}
	if !g.myTurn {
		g.mu.Unlock()
		return fmt.Errorf("not your turn")
	}

	color := g.config.PlayerColor
	next, err := rules.PlayMove(g.pos, color, c, g.config.Ko)
	if err != nil {
		g.mu.Unlock()
		return fmt.Errorf("illegal move: %w", err)
	}

	if err := g.sendPlay(color, c, next.Height()); err != nil {
		g.mu.Unlock()
		g.log.Warnw("engine refused move", "move", c, zap.Error(err))
		return fmt.Errorf("illegal move: %w", err)
	}

	g.pos = next
	if c.IsPass() {
		g.passCount++
	} else {
		g.passCount = 0
	}
	passCount := g.passCount
	g.myTurn = false
	g.mu.Unlock()

	// Notify callback (outside lock to prevent deadlock)
	if g.moveCallback != nil {
		g.moveCallback(c, color, next)
	}

	if passCount >= 2 {
		g.handleGameEnd()
		return nil
	}

	go g.triggerEngineMove()
	return nil
}

// triggerEngineMove asks the engine to generate and play a move.
func (g *GTPEngine) triggerEngineMove() {
	g.mu.Lock()

	if g.gameOver {
		g.mu.Unlock()
		return
	}

	engineColor := g.config.PlayerColor.Opponent()
	response, err := g.sendCommand(fmt.Sprintf("genmove %s", colorToGTP(engineColor)))
	if err != nil {
		g.mu.Unlock()
		g.log.Errorw("genmove failed", zap.Error(err))
		return
	}

	c, err := VertexToCell(response, g.pos.Height())
	if errors.Is(err, ErrResign) {
		g.gameOver = true
		outcome := fmt.Sprintf("%s wins by resignation", titleColor(g.config.PlayerColor))
		g.mu.Unlock()
		g.log.Infof("engine resigned")

		if g.endCallback != nil {
			g.endCallback(outcome)
		}
		return
	}
	var next *rules.Position
	if err == nil {
		next, err = rules.PlayMove(g.pos, engineColor, c, g.config.Ko)
	}
	if err != nil {
		g.gameOver = true
		outcome := fmt.Sprintf("Game aborted: engine played %q: %v", response, err)
		g.mu.Unlock()
		g.log.Errorw("engine move rejected", "vertex", response, zap.Error(err))

		if g.endCallback != nil {
			g.endCallback(outcome)
		}
		return
	}

	g.pos = next
	if c.IsPass() {
		g.passCount++
	} else {
		g.passCount = 0
	}
	passCount := g.passCount
	g.myTurn = true
	g.mu.Unlock()

	// Notify callback (outside lock)
	if g.moveCallback != nil {
		g.moveCallback(c, engineColor, next)
	}

	if passCount >= 2 {
		g.handleGameEnd()
	}
}

// handleGameEnd calculates the final score and ends the game.
func (g *GTPEngine) handleGameEnd() {
	g.mu.Lock()
	g.gameOver = true

	outcome, err := g.sendCommand("final_score")
	if err != nil || outcome == "" {
		g.log.Warnw("final_score unavailable, counting locally", zap.Error(err))
		outcome = rules.CountScore(rules.EstimateTerritory(g.pos), g.config.Scoring).Result()
	}
	g.mu.Unlock()

	// Notify callback (outside lock)
	if g.endCallback != nil {
		g.endCallback(outcome)
	}
}

// Undo takes back the last move on both sides of the connection.
func (g *GTPEngine) Undo() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pos == nil || g.pos.Parent() == nil {
		return fmt.Errorf("nothing to undo")
	}
	parent := g.pos.Parent()
	if g.config.Start != nil && g.pos == g.config.Start {
		return fmt.Errorf("cannot undo past the loaded position")
	}
	if _, err := g.sendCommand("undo"); err != nil {
		return fmt.Errorf("failed to undo: %w", err)
	}

	g.pos = parent
	g.passCount = 0
	g.gameOver = false
	g.myTurn = parent.NextToMove() == g.config.PlayerColor
	return nil
}

// IsMyTurn returns true if it's the human player's turn.
func (g *GTPEngine) IsMyTurn() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.myTurn && !g.gameOver
}

// PlayerColor returns the human player's color.
func (g *GTPEngine) PlayerColor() rules.Color {
	return g.config.PlayerColor
}

// OnMove registers a callback for when a move is played.
func (g *GTPEngine) OnMove(callback func(c rules.Cell, color rules.Color, pos *rules.Position)) {
	g.moveCallback = callback
}

// OnGameEnd registers a callback for when the game ends.
func (g *GTPEngine) OnGameEnd(callback func(outcome string)) {
	g.endCallback = callback
}

// Close shuts down the GnuGo subprocess.
func (g *GTPEngine) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gameOver = true
	if g.stdin != nil {
		if _, err := g.sendCommand("quit"); err != nil {
			g.log.Debugw("quit failed", zap.Error(err))
		}
		g.stdin.Close()
	}
	if g.cmd != nil && g.cmd.Process != nil {
		g.cmd.Wait()
	}
}

func titleColor(c rules.Color) string {
	if c == rules.White {
		return "White"
	}
	return "Black"
}
