package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"termsuji-rules/config"
	"termsuji-rules/engine/gtp"
	"termsuji-rules/engine/katago"
	"termsuji-rules/ogs"
	"termsuji-rules/rules"
	"termsuji-rules/sgf"
)

const analysisTimeout = 2 * time.Minute

// source is a saved game to review.
type source struct {
	path string
	ogs  bool
}

func reviewSource() source {
	switch {
	case *flagOGS != "":
		return source{path: *flagOGS, ogs: true}
	case *flagSGF != "":
		return source{path: *flagSGF}
	}
	return source{}
}

func replayOptions() rules.ReplayOptions {
	return rules.ReplayOptions{
		Policy: cfg.ReplayPolicy(),
		Ko:     cfg.KoRule(),
	}
}

// loadGame replays a saved game with the configured rules. Game files with
// a .json extension are read as server payloads even without ogs set.
func loadGame(src source, c *config.Config, log *zap.SugaredLogger) (*rules.Position, error) {
	opts := rules.ReplayOptions{
		Policy: c.ReplayPolicy(),
		Ko:     c.KoRule(),
	}
	if src.ogs || strings.EqualFold(filepath.Ext(src.path), ".json") {
		g, err := ogs.ReadFile(src.path)
		if err != nil {
			return nil, err
		}
		return (&ogs.Replayer{Logger: log}).Replay(g, opts)
	}

	opts.OnCoerced = func(index int, m rules.Move, err error) {
		log.Warnw("invalid move replayed as a pass",
			"file", src.path,
			"index", index,
			"move", sgf.ToSGF(m.Cell),
			zap.Error(err))
	}
	pos, _, err := sgf.ReplayToEnd(src.path, opts)
	return pos, err
}

func runBatch(src source) error {
	pos, err := loadGame(src, cfg, logger)
	if err != nil {
		return err
	}
	if *flagDump {
		dumpPosition(os.Stdout, pos, cfg.ScoringRules())
	}
	if *flagAnalyze {
		return analyze(os.Stdout, pos)
	}
	return nil
}

// dumpPosition prints the board, captures and the counted score. Positions
// without territory marks are estimated first.
func dumpPosition(w io.Writer, pos *rules.Position, scoring rules.ScoringRules) {
	if len(pos.Territory(rules.Black)) == 0 && len(pos.Territory(rules.White)) == 0 {
		pos = rules.EstimateTerritory(pos)
	}
	score := rules.CountScore(pos, scoring)

	fmt.Fprint(w, pos.String())
	fmt.Fprintf(w, "move %d, %s to play\n", pos.MoveNumber(), pos.NextToMove())
	fmt.Fprintf(w, "captures: black %d, white %d\n", pos.Captures(rules.Black), pos.Captures(rules.White))
	fmt.Fprintf(w, "score (%s): black %.1f, white %.1f\n", scoring, score.Black.Total(), score.White.Total())
	fmt.Fprintf(w, "result: %s\n", score.Result())
}

// katagoRules maps the scoring rules to a KataGo rule set name.
func katagoRules(s rules.ScoringRules) string {
	if s == rules.AreaScoring {
		return "chinese"
	}
	return "japanese"
}

func analyze(w io.Writer, pos *rules.Position) error {
	a, err := katago.Start(cfg.Engine.KataGoPath, cfg.Engine.KataGoArgs, logger)
	if err != nil {
		return fmt.Errorf("start katago: %w", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	q := katago.NewQuery(pos, katagoRules(cfg.ScoringRules()), cfg.Engine.KataGoMaxVisits)
	resp, err := a.Analyze(ctx, q)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	return writeCandidates(w, pos, resp)
}

func writeCandidates(w io.Writer, pos *rules.Position, resp katago.Response) error {
	cands, err := resp.Candidates(pos.Height())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s to play, winrate %.1f%%, lead %+.1f\n",
		pos.NextToMove(), resp.RootInfo.Winrate*100, resp.RootInfo.ScoreLead)
	for i, c := range cands {
		if i == 5 {
			break
		}
		fmt.Fprintf(w, "%d. %-4s  %5.1f%%  %+6.1f  %d visits\n",
			i+1, gtp.CellToVertex(c.Cell, pos.Height()), c.Winrate*100, c.ScoreLead, c.Visits)
	}
	return nil
}

// newLogger builds the application logger. The terminal belongs to the UI,
// so both modes write to the log file.
func newLogger(c *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	path, err := c.LogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	return zc.Build()
}
