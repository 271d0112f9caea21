// Package ogs decodes game payloads in the format served by online-go.com
// and replays them into rules positions.
package ogs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"termsuji-rules/rules"
	"termsuji-rules/sgf"
)

// Phase is the server-side game phase.
type Phase string

const (
	PhasePlay         Phase = "play"
	PhaseStoneRemoval Phase = "stone removal"
	PhaseFinished     Phase = "finished"
)

// InitialState holds the setup stones as concatenated SGF points.
type InitialState struct {
	Black string `json:"black"`
	White string `json:"white"`
}

// Move is one [x, y, elapsed] entry of the move list. (-1, -1) is a pass.
type Move struct {
	X         int
	Y         int
	ElapsedMs int64
}

func (m *Move) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("move %s: %w", data, err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("move %s: need at least x and y", data)
	}
	m.X, m.Y = int(raw[0]), int(raw[1])
	m.ElapsedMs = 0
	if len(raw) > 2 {
		m.ElapsedMs = int64(raw[2])
	}
	return nil
}

func (m Move) MarshalJSON() ([]byte, error) {
	return json.Marshal([]int64{int64(m.X), int64(m.Y), m.ElapsedMs})
}

// Cell converts the move to a board cell. Only (-1, -1) is a pass; other
// off-board coordinates are kept so the replay policy can reject them.
func (m Move) Cell() rules.Cell {
	if m.X == -1 && m.Y == -1 {
		return rules.Pass
	}
	return rules.Cell{X: m.X, Y: m.Y}
}

// Player identifies one side. The server sends either a bare numeric id or
// a full player object.
type Player struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Ranking  float64 `json:"ranking"`
}

func (p *Player) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("player id %s: %w", data, err)
		}
		*p = Player{ID: id}
		return nil
	}
	type plain Player
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Player(v)
	return nil
}

type Players struct {
	Black *Player `json:"black,omitempty"`
	White *Player `json:"white,omitempty"`
}

// SideScore is the server's score breakdown for one color.
type SideScore struct {
	Territory        int     `json:"territory"`
	Stones           int     `json:"stones"`
	Prisoners        int     `json:"prisoners"`
	Komi             float64 `json:"komi"`
	Total            float64 `json:"total"`
	ScoringPositions string  `json:"scoring_positions"`
}

type Scores struct {
	Black *SideScore `json:"black,omitempty"`
	White *SideScore `json:"white,omitempty"`
}

// GameData is the game payload. Fields the replay does not need are left
// out.
type GameData struct {
	GameID                int64         `json:"game_id"`
	GameName              string        `json:"game_name,omitempty"`
	Width                 int           `json:"width"`
	Height                int           `json:"height"`
	Komi                  float64       `json:"komi"`
	Handicap              int           `json:"handicap"`
	FreeHandicapPlacement bool          `json:"free_handicap_placement"`
	Rules                 string        `json:"rules,omitempty"`
	Phase                 Phase         `json:"phase"`
	InitialPlayer         string        `json:"initial_player,omitempty"`
	InitialState          *InitialState `json:"initial_state,omitempty"`
	Moves                 []Move        `json:"moves"`
	Removed               string        `json:"removed,omitempty"`
	Players               Players       `json:"players"`
	Score                 *Scores       `json:"score,omitempty"`
	Outcome               string        `json:"outcome,omitempty"`
	Winner                int64         `json:"winner,omitempty"`
}

// Decode reads one game payload from r.
func Decode(r io.Reader) (*GameData, error) {
	var g GameData
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	if g.Height == 0 {
		g.Height = g.Width
	}
	if g.Width == 0 {
		g.Width = g.Height
	}
	return &g, nil
}

// ReadFile decodes the game payload stored at path.
func ReadFile(path string) (*GameData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Initial returns the replay input described by the payload.
func (g *GameData) Initial() (rules.InitialState, error) {
	init := rules.InitialState{
		Width:                 g.Width,
		Height:                g.Height,
		Komi:                  g.Komi,
		WhiteFirst:            strings.EqualFold(g.InitialPlayer, "white"),
		Handicap:              g.Handicap,
		FreeHandicapPlacement: g.FreeHandicapPlacement,
	}
	if g.InitialState != nil {
		var err error
		if init.Black, err = sgf.ParsePoints(g.InitialState.Black, g.Width, g.Height); err != nil {
			return init, fmt.Errorf("initial black stones: %w", err)
		}
		if init.White, err = sgf.ParsePoints(g.InitialState.White, g.Width, g.Height); err != nil {
			return init, fmt.Errorf("initial white stones: %w", err)
		}
	}
	return init, nil
}

// MoveList converts the moves for rules.Replay. Colors are left to the
// turn order.
func (g *GameData) MoveList() []rules.Move {
	out := make([]rules.Move, len(g.Moves))
	for i, m := range g.Moves {
		out[i] = rules.Move{Cell: m.Cell(), ElapsedMs: m.ElapsedMs}
	}
	return out
}

// Replay replays the game without a cache or logger.
func (g *GameData) Replay(opts rules.ReplayOptions) (*rules.Position, error) {
	return (&Replayer{}).Replay(g, opts)
}

// Replayer replays game payloads, optionally through a shared cache.
type Replayer struct {
	Cache  *rules.ReplayCache
	Logger *zap.SugaredLogger
}

// Replay plays the moves of g, then applies the removed stones. Once the
// game has reached stone removal, territory is estimated as well; the
// server's own scoring positions take precedence when present.
func (r *Replayer) Replay(g *GameData, opts rules.ReplayOptions) (*rules.Position, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	init, err := g.Initial()
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", g.GameID, err)
	}

	onCoerced := opts.OnCoerced
	opts.OnCoerced = func(index int, m rules.Move, err error) {
		log.Warnw("server sent an invalid move",
			"game", g.GameID,
			"index", index,
			"move", m.Cell.String(),
			zap.Error(err))
		if onCoerced != nil {
			onCoerced(index, m, err)
		}
	}

	var pos *rules.Position
	if r.Cache != nil {
		pos, err = r.Cache.Replay(init, g.MoveList(), opts)
	} else {
		pos, err = rules.Replay(init, g.MoveList(), opts)
	}
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", g.GameID, err)
	}

	if g.Removed != "" {
		removed, err := sgf.ParsePoints(g.Removed, g.Width, g.Height)
		if err != nil {
			return nil, fmt.Errorf("game %d removed stones: %w", g.GameID, err)
		}
		pos = pos.WithRemoved(removed)
	}

	if g.Phase == PhaseStoneRemoval || g.Phase == PhaseFinished {
		pos = rules.EstimateTerritory(pos)
		if black, white, ok := g.scoringPositions(); ok {
			pos = pos.WithTerritory(black, white)
		}
	}
	return pos, nil
}

// scoringPositions returns the territory the server attributed to each
// side, if the payload carries a score.
func (g *GameData) scoringPositions() (black, white []rules.Cell, ok bool) {
	if g.Score == nil || g.Score.Black == nil || g.Score.White == nil {
		return nil, nil, false
	}
	if g.Score.Black.ScoringPositions == "" && g.Score.White.ScoringPositions == "" {
		return nil, nil, false
	}
	black, errB := sgf.ParsePoints(g.Score.Black.ScoringPositions, g.Width, g.Height)
	white, errW := sgf.ParsePoints(g.Score.White.ScoringPositions, g.Width, g.Height)
	if errB != nil || errW != nil {
		return nil, nil, false
	}
	return black, white, true
}
