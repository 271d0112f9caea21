package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"termsuji-rules/rules"
)

const appDir = "termsuji"

var (
	cfgFile = appDir + "/config.json"
	logFile = appDir + "/termsuji.log"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

type ConfigColors struct {
	BoardColor        int `json:"board" mapstructure:"board"`
	BoardColorAlt     int `json:"board_alt" mapstructure:"board_alt"`
	BlackColor        int `json:"black" mapstructure:"black"`
	BlackColorAlt     int `json:"black_alt" mapstructure:"black_alt"`
	WhiteColor        int `json:"white" mapstructure:"white"`
	WhiteColorAlt     int `json:"white_alt" mapstructure:"white_alt"`
	LineColor         int `json:"line" mapstructure:"line"`
	CursorColorFG     int `json:"cursor_fg" mapstructure:"cursor_fg"`
	CursorColorBG     int `json:"cursor_bg" mapstructure:"cursor_bg"`
	LastPlayedColorBG int `json:"last_played_bg" mapstructure:"last_played_bg"`
	TerritoryColor    int `json:"territory" mapstructure:"territory"`
}

type ConfigSymbols struct {
	BlackStone     rune `json:"black" mapstructure:"black"`
	WhiteStone     rune `json:"white" mapstructure:"white"`
	BoardSquare    rune `json:"board" mapstructure:"board"`
	Cursor         rune `json:"cursor" mapstructure:"cursor"`
	LastPlayed     rune `json:"last_played" mapstructure:"last_played"`
	Territory      rune `json:"territory" mapstructure:"territory"`
	DeadStoneBlack rune `json:"dead_black" mapstructure:"dead_black"`
	DeadStoneWhite rune `json:"dead_white" mapstructure:"dead_white"`
}

type Theme struct {
	DrawStoneBackground      bool          `json:"draw_stone_bg" mapstructure:"draw_stone_bg"`
	DrawCursorBackground     bool          `json:"draw_cursor_bg" mapstructure:"draw_cursor_bg"`
	DrawLastPlayedBackground bool          `json:"draw_last_played_bg" mapstructure:"draw_last_played_bg"`
	FullWidthLetters         bool          `json:"fullwidth_letters" mapstructure:"fullwidth_letters"`
	UseGridLines             bool          `json:"use_grid_lines" mapstructure:"use_grid_lines"`
	Colors                   ConfigColors  `json:"colors" mapstructure:"colors"`
	Symbols                  ConfigSymbols `json:"symbols" mapstructure:"symbols"`
}

// EngineConfig holds the engine programs and new-game defaults.
type EngineConfig struct {
	Path             string   `json:"gnugo_path" mapstructure:"gnugo_path"`
	DefaultBoardSize int      `json:"default_board_size" mapstructure:"default_board_size"`
	DefaultKomi      float64  `json:"default_komi" mapstructure:"default_komi"`
	DefaultLevel     int      `json:"default_level" mapstructure:"default_level"`
	DefaultHandicap  int      `json:"default_handicap" mapstructure:"default_handicap"`
	KataGoPath       string   `json:"katago_path" mapstructure:"katago_path"`
	KataGoArgs       []string `json:"katago_args" mapstructure:"katago_args"`
	KataGoMaxVisits  int      `json:"katago_max_visits" mapstructure:"katago_max_visits"`
}

// RulesConfig names the rule variants by their config spelling.
type RulesConfig struct {
	Ko      string `json:"ko" mapstructure:"ko"`
	Policy  string `json:"replay_policy" mapstructure:"replay_policy"`
	Scoring string `json:"scoring" mapstructure:"scoring"`
}

type LogConfig struct {
	Level       string `json:"level" mapstructure:"level"`
	Development bool   `json:"development" mapstructure:"development"`
	// File defaults to termsuji.log in the XDG state directory.
	File string `json:"file" mapstructure:"file"`
}

type Config struct {
	Theme      Theme        `json:"theme" mapstructure:"theme"`
	Engine     EngineConfig `json:"engine" mapstructure:"engine"`
	Rules      RulesConfig  `json:"rules" mapstructure:"rules"`
	Log        LogConfig    `json:"log" mapstructure:"log"`
	HistoryDir string       `json:"history_dir" mapstructure:"history_dir"`
}

// Locate returns the config file found in the XDG config directories, or
// "" when there is none.
func Locate() string {
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err != nil {
		return ""
	}
	return absPath
}

// InitConfig loads the config file from the XDG config directories, falling
// back to the defaults when there is none.
func InitConfig() (*Config, error) {
	return Load(Locate())
}

// Load reads the config file at path over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return decode(v)
}

// Watch calls onChange with the reloaded config whenever the file at path
// changes. Invalid edits are reported through onError and otherwise ignored.
func Watch(path string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && onError != nil {
		onError(err)
	}
	v.OnConfigChange(func(fsnotify.Event) {
		c, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(c)
	})
	v.WatchConfig()
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults := map[string]interface{}{}
	if err := mapstructure.Decode(DefaultConfig, &defaults); err != nil {
		panic(err)
	}
	for key, value := range flatten("", defaults) {
		v.SetDefault(key, value)
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// flatten turns nested maps into dotted viper keys.
func flatten(prefix string, m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]interface{}); ok {
			for sk, sv := range flatten(key, sub) {
				out[sk] = sv
			}
			continue
		}
		out[key] = v
	}
	return out
}

func (c *Config) Validate() error {
	for _, r := range []rune{c.Theme.Symbols.BlackStone, c.Theme.Symbols.WhiteStone, c.Theme.Symbols.BoardSquare} {
		if r < 32 || (r >= 127 && r <= 159) {
			return &InvalidConfig{"Unicode characters 1-31 and 127-159 are not allowed"}
		}
	}
	switch c.Engine.DefaultBoardSize {
	case 9, 13, 19:
	default:
		return &InvalidConfig{fmt.Sprintf("default board size %d is not 9, 13 or 19", c.Engine.DefaultBoardSize)}
	}
	if c.Engine.DefaultLevel < 1 || c.Engine.DefaultLevel > 10 {
		return &InvalidConfig{fmt.Sprintf("default level %d is outside 1-10", c.Engine.DefaultLevel)}
	}
	if c.Engine.DefaultHandicap < 0 || c.Engine.DefaultHandicap > rules.MaxHandicap {
		return &InvalidConfig{fmt.Sprintf("default handicap %d is outside 0-%d", c.Engine.DefaultHandicap, rules.MaxHandicap)}
	}
	if _, err := rules.ParseKoRule(c.Rules.Ko); err != nil {
		return &InvalidConfig{err.Error()}
	}
	if _, err := rules.ParsePolicy(c.Rules.Policy); err != nil {
		return &InvalidConfig{err.Error()}
	}
	if _, err := rules.ParseScoringRules(c.Rules.Scoring); err != nil {
		return &InvalidConfig{err.Error()}
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return &InvalidConfig{err.Error()}
	}
	return nil
}

// KoRule returns the configured ko rule. Validate has already checked it.
func (c *Config) KoRule() rules.KoRule {
	r, _ := rules.ParseKoRule(c.Rules.Ko)
	return r
}

func (c *Config) ReplayPolicy() rules.Policy {
	p, _ := rules.ParsePolicy(c.Rules.Policy)
	return p
}

func (c *Config) ScoringRules() rules.ScoringRules {
	s, _ := rules.ParseScoringRules(c.Rules.Scoring)
	return s
}

// Save writes the config to the XDG config directory.
func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return c.SaveTo(absPath)
}

// SaveTo writes the config to path. The format follows the extension.
func (c *Config) SaveTo(path string) error {
	settings := map[string]interface{}{}
	if err := mapstructure.Decode(c, &settings); err != nil {
		return err
	}
	v := viper.New()
	if err := v.MergeConfigMap(settings); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// HistoryDirPath returns the directory saved games are written to.
func (c *Config) HistoryDirPath() string {
	if c.HistoryDir != "" {
		return expandHome(c.HistoryDir)
	}
	return filepath.Join(xdg.DataHome, appDir, "history")
}

// LogFilePath returns the file the production logger writes to.
func (c *Config) LogFilePath() (string, error) {
	if c.Log.File != "" {
		return expandHome(c.Log.File), nil
	}
	return xdg.StateFile(logFile)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		return filepath.Join(xdg.Home, strings.TrimPrefix(path, "~"))
	}
	return path
}
