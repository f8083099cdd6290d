package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cbegin/scoresync"
	"github.com/cbegin/scoresync/internal/config"
	"github.com/cbegin/scoresync/internal/cursor"
	"github.com/cbegin/scoresync/internal/export"
	"github.com/cbegin/scoresync/internal/logging"
	"github.com/cbegin/scoresync/internal/notation"
	"github.com/cbegin/scoresync/internal/score"
	"github.com/cbegin/scoresync/internal/timing"
)

var ErrNoScore = errors.New("no score given: use --file or --score")

// env carries the global flags and what PersistentPreRunE derived from them.
type env struct {
	configPath string
	logLevel   string
	part       int
	file       string
	score      string
	encoding   string
	format     string

	cfg    *config.Config
	logger *slog.Logger
}

// setup loads the config file and builds the logger. A config path given on
// the command line must exist.
func (e *env) setup(stderr io.Writer) error {
	cfg, err := config.NewLoader(e.configPath).Load(e.configPath != "")
	if err != nil {
		return err
	}
	for _, w := range cfg.Warnings {
		_, _ = fmt.Fprintf(stderr, "Warning: %s\n", w)
	}
	level := cfg.Log.Level
	if e.logLevel != "" {
		level = e.logLevel
	}
	e.cfg = cfg
	e.logger = logging.New(stderr, logging.ParseLevel(level))
	return nil
}

func (e *env) loadDocument() (*score.Document, error) {
	return LoadDocument(e.cfg, e.score, e.file, e.encoding)
}

func (e *env) newPlayback(doc *score.Document, extra ...scoresync.Option) (*scoresync.Playback, error) {
	opts := append(PlaybackOptions(e.cfg, e.logger, e.part), extra...)
	return scoresync.New(doc, opts...)
}

func (e *env) outputFormat() (export.Format, error) {
	return export.ParseFormat(e.format)
}

// LoadDocument parses inline source when given, otherwise the file at path.
func LoadDocument(cfg *config.Config, inline, path, encoding string) (*score.Document, error) {
	parser := notation.NewParser(LayoutFor(cfg))
	if strings.TrimSpace(inline) != "" {
		return parser.Parse(inline)
	}
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoScore
	}
	enc, err := notation.ParseEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return parser.ParseFile(path, enc)
}

func LayoutFor(cfg *config.Config) notation.Layout {
	return notation.Layout{
		MeasuresPerSystem: cfg.Layout.MeasuresPerSystem,
		BeatWidth:         cfg.Layout.BeatWidth,
		SystemHeight:      cfg.Layout.SystemHeight,
		PartHeight:        cfg.Layout.PartHeight,
	}
}

// PlaybackOptions maps the config file onto playback options.
func PlaybackOptions(cfg *config.Config, logger *slog.Logger, part int) []scoresync.Option {
	opts := []scoresync.Option{
		scoresync.WithLogger(logger),
		scoresync.WithPart(part),
		scoresync.WithCursorWidth(cfg.Cursor.Width),
	}
	if cfg.Cursor.PartEnd >= 0 {
		opts = append(opts, scoresync.WithPartRange(cfg.Cursor.PartStart, cfg.Cursor.PartEnd))
	}
	return opts
}

// ScrollerOptions maps the [scroll] section onto scroller options.
func ScrollerOptions(cfg *config.Config) []cursor.ScrollerOption {
	return []cursor.ScrollerOption{cursor.WithPadding(cfg.Scroll.PaddingX, cfg.Scroll.PaddingY)}
}

// parseTime accepts plain milliseconds ("1500") or a Go duration ("1.5s").
func parseTime(s string) (timing.Duration, error) {
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		return timing.Milliseconds(ms), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return timing.Zero(), fmt.Errorf("invalid time %q: want milliseconds or a duration like 1.5s", s)
	}
	return timing.FromStd(d), nil
}
