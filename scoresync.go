// Package scoresync keeps a cursor on a rendered score in step with playback
// time. A Playback owns the timelines, frames and cursor built from a laid-out
// document; a Player drives it from a clock.
package scoresync

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cbegin/scoresync/internal/cursor"
	"github.com/cbegin/scoresync/internal/playback"
	"github.com/cbegin/scoresync/internal/score"
	"github.com/cbegin/scoresync/internal/timing"
)

var ErrPartOutOfRange = errors.New("part out of range")

type Option func(*config)

type config struct {
	logger      *slog.Logger
	part        int
	partFrom    int
	partTo      int
	partRange   bool
	cursorWidth float64
	container   cursor.ScrollContainer
	scrollOpts  []cursor.ScrollerOption
}

func defaultConfig() config {
	return config{
		logger:      slog.New(slog.DiscardHandler),
		cursorWidth: cursor.DefaultWidth,
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}

// WithPart selects the part the cursor follows.
func WithPart(part int) Option {
	return func(cfg *config) { cfg.part = part }
}

// WithPartRange makes the cursor span parts from..to vertically instead of
// only the followed part.
func WithPartRange(from, to int) Option {
	return func(cfg *config) {
		cfg.partFrom, cfg.partTo, cfg.partRange = from, to, true
	}
}

func WithCursorWidth(w float64) Option {
	return func(cfg *config) { cfg.cursorWidth = w }
}

// WithScrollContainer lets the cursor scroll the viewport it is drawn in.
func WithScrollContainer(c cursor.ScrollContainer, opts ...cursor.ScrollerOption) Option {
	return func(cfg *config) {
		cfg.container = c
		cfg.scrollOpts = opts
	}
}

// pipeline is everything derived from one document. It is never mutated
// after build; reloads replace it whole.
type pipeline struct {
	doc       *score.Document
	part      int
	timelines []*playback.Timeline
	frames    [][]*playback.Frame
	cursor    *cursor.LegacyCursor
}

type listener struct {
	id int
	fn func(cursor.State)
}

// Playback is not safe for concurrent use. Player serializes access for the
// clock-driven case.
type Playback struct {
	cfg        config
	current    *pipeline
	generation uint64
	listeners  []listener
	nextID     int
}

func New(doc *score.Document, opts ...Option) (*Playback, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &Playback{cfg: cfg}
	pl, err := p.build(doc, cfg.part)
	if err != nil {
		return nil, err
	}
	p.install(pl)
	return p, nil
}

func (p *Playback) build(doc *score.Document, part int) (*pipeline, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("scoresync: %w", err)
	}
	if part < 0 || part >= len(doc.Parts) {
		return nil, fmt.Errorf("scoresync: part %d of %d: %w", part, len(doc.Parts), ErrPartOutOfRange)
	}

	timelines := playback.NewTimelines(doc)
	frames := make([][]*playback.Frame, len(timelines))
	for i, tl := range timelines {
		opts := []playback.FrameOption{playback.WithLogger(p.cfg.logger)}
		if p.cfg.partRange {
			opts = append(opts, playback.WithPartRange(p.cfg.partFrom, p.cfg.partTo))
		}
		frames[i] = playback.NewFrames(doc, tl, opts...)
	}

	pl := &pipeline{doc: doc, part: part, timelines: timelines, frames: frames}
	pl.cursor = p.newCursor(frames[part])
	p.cfg.logger.Debug("pipeline built", "category", "playback",
		"measures", len(doc.Measures), "parts", len(doc.Parts), "part", part,
		"frames", len(frames[part]), "duration", pl.cursor.Duration().String())
	return pl, nil
}

func (p *Playback) newCursor(frames []*playback.Frame) *cursor.LegacyCursor {
	opts := []cursor.Option{
		cursor.WithWidth(p.cfg.cursorWidth),
		cursor.WithLogger(p.cfg.logger),
	}
	if p.cfg.container != nil {
		opts = append(opts, cursor.WithScroller(cursor.NewScroller(p.cfg.container, p.cfg.scrollOpts...)))
	}
	return cursor.New(frames, opts...)
}

// install swaps pl in, bumps the generation and tells listeners where the new
// cursor sits.
func (p *Playback) install(pl *pipeline) {
	if p.current != nil {
		p.current.cursor.RemoveAllEventListeners()
	}
	pl.cursor.AddEventListener(p.notify)
	p.current = pl
	p.generation++
	p.notify(pl.cursor.State())
}

func (p *Playback) notify(s cursor.State) {
	for _, l := range slices.Clone(p.listeners) {
		l.fn(s)
	}
}

// Reload rebuilds everything for doc and swaps it in. On error the current
// pipeline stays in place.
func (p *Playback) Reload(doc *score.Document) error {
	part := p.current.part
	if part >= len(doc.Parts) {
		part = 0
	}
	pl, err := p.build(doc, part)
	if err != nil {
		return err
	}
	p.install(pl)
	return nil
}

// SelectPart points the cursor at another part's frames.
func (p *Playback) SelectPart(part int) error {
	cur := p.current
	if part < 0 || part >= len(cur.frames) {
		return fmt.Errorf("scoresync: part %d of %d: %w", part, len(cur.frames), ErrPartOutOfRange)
	}
	p.install(&pipeline{
		doc:       cur.doc,
		part:      part,
		timelines: cur.timelines,
		frames:    cur.frames,
		cursor:    p.newCursor(cur.frames[part]),
	})
	return nil
}

// Generation increases every time the pipeline is replaced.
func (p *Playback) Generation() uint64 { return p.generation }

func (p *Playback) Cursor() *cursor.LegacyCursor { return p.current.cursor }

func (p *Playback) Document() *score.Document { return p.current.doc }

func (p *Playback) Part() int { return p.current.part }

func (p *Playback) Duration() timing.Duration { return p.current.cursor.Duration() }

func (p *Playback) Timeline(part int) *playback.Timeline {
	if part < 0 || part >= len(p.current.timelines) {
		return nil
	}
	return p.current.timelines[part]
}

func (p *Playback) Frames(part int) []*playback.Frame {
	if part < 0 || part >= len(p.current.frames) {
		return nil
	}
	return p.current.frames[part]
}

// AddEventListener subscribes to cursor changes. Subscriptions survive
// Reload and SelectPart.
func (p *Playback) AddEventListener(fn func(cursor.State)) int {
	p.nextID++
	p.listeners = append(p.listeners, listener{id: p.nextID, fn: fn})
	return p.nextID
}

func (p *Playback) RemoveEventListener(ids ...int) {
	p.listeners = slices.DeleteFunc(p.listeners, func(l listener) bool {
		return slices.Contains(ids, l.id)
	})
}

func (p *Playback) RemoveAllEventListeners() { p.listeners = nil }
