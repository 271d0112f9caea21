// Package katago talks to a KataGo analysis engine over its JSON-lines
// protocol.
package katago

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"termsuji-rules/engine/gtp"
	"termsuji-rules/rules"
)

// ErrClosed is returned for queries still pending when the engine output
// ends.
var ErrClosed = errors.New("katago: analysis engine closed")

// Query is one analysis request.
type Query struct {
	ID               string      `json:"id"`
	InitialStones    [][2]string `json:"initialStones,omitempty"`
	InitialPlayer    string      `json:"initialPlayer,omitempty"`
	Moves            [][2]string `json:"moves"`
	Rules            string      `json:"rules"`
	Komi             float64     `json:"komi"`
	BoardXSize       int         `json:"boardXSize"`
	BoardYSize       int         `json:"boardYSize"`
	AnalyzeTurns     []int       `json:"analyzeTurns,omitempty"`
	MaxVisits        int         `json:"maxVisits,omitempty"`
	IncludeOwnership bool        `json:"includeOwnership,omitempty"`
}

// NewQuery builds a query analyzing p. The setup stones of p's root and
// every move since are sent, so the engine sees the same history that ko
// depends on.
func NewQuery(p *rules.Position, rulesName string, maxVisits int) Query {
	chain := rules.Chain(p)
	root := chain[0]
	height := p.Height()

	q := Query{
		ID:               uuid.New().String(),
		InitialPlayer:    playerName(root.NextToMove()),
		Moves:            [][2]string{},
		Rules:            rulesName,
		Komi:             p.Komi(),
		BoardXSize:       p.Width(),
		BoardYSize:       height,
		AnalyzeTurns:     []int{len(chain) - 1},
		MaxVisits:        maxVisits,
		IncludeOwnership: true,
	}
	for _, s := range root.AllStones() {
		q.InitialStones = append(q.InitialStones, [2]string{playerName(s.Color), gtp.CellToVertex(s.Cell, height)})
	}
	for _, pos := range chain[1:] {
		last, _ := pos.LastMove()
		q.Moves = append(q.Moves, [2]string{playerName(pos.LastPlayerToMove()), gtp.CellToVertex(last, height)})
	}
	return q
}

// Response is the engine's answer to a Query.
type Response struct {
	ID         string     `json:"id"`
	TurnNumber int        `json:"turnNumber"`
	MoveInfos  []MoveInfo `json:"moveInfos"`
	RootInfo   RootInfo   `json:"rootInfo"`
	Ownership  []float64  `json:"ownership"`
	Error      string     `json:"error"`
	Warning    string     `json:"warning"`
}

// MoveInfo is one candidate move.
type MoveInfo struct {
	Move      string   `json:"move"`
	Visits    int      `json:"visits"`
	Winrate   float64  `json:"winrate"`
	ScoreLead float64  `json:"scoreLead"`
	Order     int      `json:"order"`
	PV        []string `json:"pv"`
}

// RootInfo summarizes the analyzed position.
type RootInfo struct {
	Winrate       float64 `json:"winrate"`
	ScoreLead     float64 `json:"scoreLead"`
	Visits        int     `json:"visits"`
	CurrentPlayer string  `json:"currentPlayer"`
}

// Candidate is a MoveInfo resolved to a board cell.
type Candidate struct {
	Cell      rules.Cell
	Visits    int
	Winrate   float64
	ScoreLead float64
}

// Candidates returns the suggested moves in the engine's preference order.
func (r Response) Candidates(height int) ([]Candidate, error) {
	infos := append([]MoveInfo(nil), r.MoveInfos...)
	sort.SliceStable(infos, func(i, j int) bool { return infos[i].Order < infos[j].Order })

	out := make([]Candidate, 0, len(infos))
	for _, mi := range infos {
		c, err := gtp.VertexToCell(mi.Move, height)
		if err != nil {
			return nil, fmt.Errorf("move info %q: %w", mi.Move, err)
		}
		out = append(out, Candidate{Cell: c, Visits: mi.Visits, Winrate: mi.Winrate, ScoreLead: mi.ScoreLead})
	}
	return out, nil
}

// Territory converts the ownership array into a territory map. Values are
// read from perspective's point of view; cells whose absolute ownership is
// below threshold are dame.
func (r Response) Territory(width, height int, perspective rules.Color, threshold float64) (rules.TerritoryMap, error) {
	var tm rules.TerritoryMap
	if len(r.Ownership) != width*height {
		return tm, fmt.Errorf("ownership has %d values, want %d", len(r.Ownership), width*height)
	}
	for i, v := range r.Ownership {
		c := rules.Cell{X: i % width, Y: i / width}
		switch {
		case v >= threshold:
			addOwned(&tm, perspective, c)
		case v <= -threshold:
			addOwned(&tm, perspective.Opponent(), c)
		default:
			tm.Dame = append(tm.Dame, c)
		}
	}
	return tm, nil
}

func addOwned(tm *rules.TerritoryMap, color rules.Color, c rules.Cell) {
	if color == rules.White {
		tm.White = append(tm.White, c)
	} else {
		tm.Black = append(tm.Black, c)
	}
}

func playerName(c rules.Color) string {
	if c == rules.White {
		return "W"
	}
	return "B"
}

// Analyzer sends queries to a running analysis engine and routes the
// responses back by id. It is safe for concurrent use.
type Analyzer struct {
	cmd *exec.Cmd
	w   io.WriteCloser
	log *zap.SugaredLogger

	mu      sync.Mutex
	pending map[string]chan Response
	err     error
	done    chan struct{}
}

// Start launches the analysis engine binary with args, e.g.
// "analysis -config analysis.cfg -model model.bin.gz".
func Start(path string, args []string, logger *zap.SugaredLogger) (*Analyzer, error) {
	cmd := exec.Command(path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start KataGo: %w", err)
	}
	a := NewAnalyzer(stdin, stdout, logger)
	a.cmd = cmd
	return a, nil
}

// NewAnalyzer wraps an engine connection: queries are written to w and
// responses read from r.
func NewAnalyzer(w io.WriteCloser, r io.Reader, logger *zap.SugaredLogger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	a := &Analyzer{
		w:       w,
		log:     logger.With("engine", "katago"),
		pending: make(map[string]chan Response),
		done:    make(chan struct{}),
	}
	go a.readLoop(r)
	return a
}

func (a *Analyzer) readLoop(r io.Reader) {
	dec := json.NewDecoder(r)
	var err error
	for {
		var resp Response
		if err = dec.Decode(&resp); err != nil {
			break
		}
		if resp.Warning != "" {
			a.log.Warnw("analysis warning", "id", resp.ID, "warning", resp.Warning)
		}

		a.mu.Lock()
		ch, ok := a.pending[resp.ID]
		delete(a.pending, resp.ID)
		a.mu.Unlock()
		if !ok {
			a.log.Debugw("unmatched response", "id", resp.ID)
			continue
		}
		ch <- resp
	}

	if errors.Is(err, io.EOF) {
		err = ErrClosed
	} else {
		err = fmt.Errorf("%w: %v", ErrClosed, err)
	}
	a.mu.Lock()
	a.err = err
	for id, ch := range a.pending {
		close(ch)
		delete(a.pending, id)
	}
	a.mu.Unlock()
	close(a.done)
}

// Analyze sends q and waits for its response.
func (a *Analyzer) Analyze(ctx context.Context, q Query) (Response, error) {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	line, err := json.Marshal(q)
	if err != nil {
		return Response{}, fmt.Errorf("failed to marshal query: %w", err)
	}

	ch := make(chan Response, 1)
	a.mu.Lock()
	if a.err != nil {
		a.mu.Unlock()
		return Response{}, a.err
	}
	a.pending[q.ID] = ch
	_, err = a.w.Write(append(line, '\n'))
	a.mu.Unlock()
	if err != nil {
		a.forget(q.ID)
		return Response{}, fmt.Errorf("failed to send query: %w", err)
	}
	a.log.Debugw("query sent", "id", q.ID, "moves", len(q.Moves))

	select {
	case resp, ok := <-ch:
		if !ok {
			return Response{}, a.closedErr()
		}
		if resp.Error != "" {
			return resp, fmt.Errorf("katago: %s", resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		a.forget(q.ID)
		return Response{}, ctx.Err()
	}
}

func (a *Analyzer) forget(id string) {
	a.mu.Lock()
	delete(a.pending, id)
	a.mu.Unlock()
}

func (a *Analyzer) closedErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Close stops the engine and waits for its output to end.
func (a *Analyzer) Close() error {
	err := a.w.Close()
	<-a.done
	if a.cmd != nil {
		if werr := a.cmd.Wait(); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}
