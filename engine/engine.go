// Package engine defines the interface for game engines.
package engine

import (
	"termsuji-rules/rules"
)

// GameEngine defines the interface for playing Go against an engine.
type GameEngine interface {
	// Connect starts the engine and initializes the game.
	Connect() error

	// Position returns the current position.
	Position() *rules.Position

	// PlayMove plays the human move at c.
	// Returns an error if the move is illegal.
	PlayMove(c rules.Cell) error

	// Pass passes the current turn.
	Pass() error

	// IsMyTurn returns true if it's the human player's turn.
	IsMyTurn() bool

	// PlayerColor returns the human player's color.
	PlayerColor() rules.Color

	// OnMove registers a callback for when a move is played (by either player).
	// c is rules.Pass for a pass.
	OnMove(func(c rules.Cell, color rules.Color, pos *rules.Position))

	// Undo undoes the last move (one ply). Call twice to undo a player+engine move pair.
	Undo() error

	// OnGameEnd registers a callback for when the game ends.
	OnGameEnd(func(outcome string))

	// Close shuts down the engine.
	Close()
}

// GameConfig holds configuration for starting a new game.
type GameConfig struct {
	BoardSize   int         // 9, 13, or 19
	Komi        float64     // Typically 6.5 or 7.5
	Handicap    int         // Fixed handicap stones, 0 for an even game
	PlayerColor rules.Color // Human's color
	EngineLevel int         // GnuGo level 1-10
	EnginePath  string      // Path to GnuGo binary
	Ko          rules.KoRule
	Scoring     rules.ScoringRules

	// Start, if set, is the position to continue from. Its whole history is
	// sent to the engine before play begins.
	Start *rules.Position
}

// DefaultConfig returns a reasonable default configuration.
func DefaultConfig() GameConfig {
	return GameConfig{
		BoardSize:   19,
		Komi:        6.5,
		PlayerColor: rules.Black,
		EngineLevel: 5,
		EnginePath:  "gnugo",
		Ko:          rules.KoSuperko,
	}
}

// StartPosition returns the position the game begins from: cfg.Start if
// set, otherwise a fresh board with cfg's handicap and komi.
func (cfg GameConfig) StartPosition() (*rules.Position, error) {
	if cfg.Start != nil {
		return cfg.Start, nil
	}
	p, err := rules.NewGame(cfg.BoardSize, cfg.Handicap)
	if err != nil {
		return nil, err
	}
	return p.WithKomi(cfg.Komi), nil
}
