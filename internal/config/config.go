// Package config loads scoresync settings from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the config file looked up in the working directory.
const FileName = "scoresync.toml"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Cursor CursorConfig `toml:"cursor"`
	Scroll ScrollConfig `toml:"scroll"`
	Player PlayerConfig `toml:"player"`
	Layout LayoutConfig `toml:"layout"`
	Log    LogConfig    `toml:"log"`

	// Warnings lists unknown sections and keys, sorted.
	Warnings []string `toml:"-"`
}

type CursorConfig struct {
	Width     float64 `toml:"width"`
	PartStart int     `toml:"part_start"`
	PartEnd   int     `toml:"part_end"` // -1 follows only the selected part
}

type ScrollConfig struct {
	PaddingX float64 `toml:"padding_x"`
	PaddingY float64 `toml:"padding_y"`
	Behavior string  `toml:"behavior"`
}

type PlayerConfig struct {
	FPS   int     `toml:"fps"`
	Speed float64 `toml:"speed"`
	Loop  bool    `toml:"loop"`
}

type LayoutConfig struct {
	MeasuresPerSystem int     `toml:"measures_per_system"`
	BeatWidth         float64 `toml:"beat_width"`
	SystemHeight      float64 `toml:"system_height"`
	PartHeight        float64 `toml:"part_height"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func Default() *Config {
	return &Config{
		Cursor: CursorConfig{Width: 1.5, PartStart: 0, PartEnd: -1},
		Scroll: ScrollConfig{PaddingX: 60, PaddingY: 40, Behavior: "auto"},
		Player: PlayerConfig{FPS: 60, Speed: 1},
		Layout: LayoutConfig{MeasuresPerSystem: 4, BeatWidth: 40, SystemHeight: 120, PartHeight: 60},
		Log:    LogConfig{Level: "warn"},
	}
}

// Validate reports the first out-of-range value.
func (c *Config) Validate() error {
	switch {
	case c.Cursor.Width <= 0:
		return fmt.Errorf("%w: cursor.width must be positive", ErrInvalidConfig)
	case c.Scroll.PaddingX < 0 || c.Scroll.PaddingY < 0:
		return fmt.Errorf("%w: scroll padding must not be negative", ErrInvalidConfig)
	case c.Player.FPS <= 0:
		return fmt.Errorf("%w: player.fps must be positive", ErrInvalidConfig)
	case c.Player.Speed <= 0:
		return fmt.Errorf("%w: player.speed must be positive", ErrInvalidConfig)
	case c.Layout.MeasuresPerSystem <= 0:
		return fmt.Errorf("%w: layout.measures_per_system must be positive", ErrInvalidConfig)
	case c.Layout.BeatWidth <= 0 || c.Layout.SystemHeight <= 0 || c.Layout.PartHeight <= 0:
		return fmt.Errorf("%w: layout sizes must be positive", ErrInvalidConfig)
	}
	switch c.Scroll.Behavior {
	case "auto", "smooth", "instant":
	default:
		return fmt.Errorf("%w: scroll.behavior %q", ErrInvalidConfig, c.Scroll.Behavior)
	}
	return nil
}

// Marshal renders c as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Loader reads a config file over the defaults.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	if path == "" {
		path = FileName
	}
	return &Loader{path: path}
}

func (l *Loader) Path() string { return l.path }

// Load returns defaults merged with the file. A missing file is not an error
// unless required is set.
func (l *Loader) Load(required bool) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}
	if err := mergeTOML(cfg, data); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", l.path, err)
	}
	return cfg, nil
}

func mergeTOML(cfg *Config, data []byte) error {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var warnings []string
	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown key: %s", section))
			continue
		}
		var unknown []string
		switch section {
		case "cursor":
			unknown = apply(m, map[string]func(any) bool{
				"width":      setFloat(&cfg.Cursor.Width),
				"part_start": setInt(&cfg.Cursor.PartStart),
				"part_end":   setInt(&cfg.Cursor.PartEnd),
			})
		case "scroll":
			unknown = apply(m, map[string]func(any) bool{
				"padding_x": setFloat(&cfg.Scroll.PaddingX),
				"padding_y": setFloat(&cfg.Scroll.PaddingY),
				"behavior":  setString(&cfg.Scroll.Behavior),
			})
		case "player":
			unknown = apply(m, map[string]func(any) bool{
				"fps":   setInt(&cfg.Player.FPS),
				"speed": setFloat(&cfg.Player.Speed),
				"loop":  setBool(&cfg.Player.Loop),
			})
		case "layout":
			unknown = apply(m, map[string]func(any) bool{
				"measures_per_system": setInt(&cfg.Layout.MeasuresPerSystem),
				"beat_width":          setFloat(&cfg.Layout.BeatWidth),
				"system_height":       setFloat(&cfg.Layout.SystemHeight),
				"part_height":         setFloat(&cfg.Layout.PartHeight),
			})
		case "log":
			unknown = apply(m, map[string]func(any) bool{
				"level": setString(&cfg.Log.Level),
			})
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: [%s]", section))
			continue
		}
		for _, k := range unknown {
			warnings = append(warnings, fmt.Sprintf("unknown key in [%s]: %s", section, k))
		}
	}
	sort.Strings(warnings)
	cfg.Warnings = warnings
	return nil
}

// apply runs the setter for each known key and returns the unknown ones.
// A value of the wrong type is reported as a type mismatch in the key name.
func apply(m map[string]any, setters map[string]func(any) bool) []string {
	var unknown []string
	for k, v := range m {
		set, ok := setters[k]
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		if !set(v) {
			unknown = append(unknown, fmt.Sprintf("%s (wrong type %T)", k, v))
		}
	}
	return unknown
}

func setFloat(dst *float64) func(any) bool {
	return func(v any) bool {
		switch n := v.(type) {
		case float64:
			*dst = n
		case int64:
			*dst = float64(n)
		default:
			return false
		}
		return true
	}
}

func setInt(dst *int) func(any) bool {
	return func(v any) bool {
		n, ok := v.(int64)
		if ok {
			*dst = int(n)
		}
		return ok
	}
}

func setString(dst *string) func(any) bool {
	return func(v any) bool {
		s, ok := v.(string)
		if ok {
			*dst = s
		}
		return ok
	}
}

func setBool(dst *bool) func(any) bool {
	return func(v any) bool {
		b, ok := v.(bool)
		if ok {
			*dst = b
		}
		return ok
	}
}

// WriteDefault writes the default configuration to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists: %w", path, os.ErrExist)
		}
	}
	data, err := Default().Marshal()
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // config is meant to be readable
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
