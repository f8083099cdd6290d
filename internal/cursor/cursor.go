// Package cursor moves a highlight rectangle across the score in step with
// playback time.
package cursor

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/cbegin/scoresync/internal/geom"
	"github.com/cbegin/scoresync/internal/playback"
	"github.com/cbegin/scoresync/internal/timing"
)

const DefaultWidth = 1.5

// State is the cursor position published to listeners.
type State struct {
	Index       int
	Alpha       float64
	HasNext     bool
	HasPrevious bool
	Rect        geom.Rect
	Frame       *playback.Frame
}

type entryState struct {
	rect        geom.Rect
	hasNext     bool
	hasPrevious bool
}

type listener struct {
	id int
	fn func(State)
}

// LegacyCursor tracks the current frame and how far into it playback is.
type LegacyCursor struct {
	frames    []*playback.Frame
	entries   []entryState
	locator   *playback.FastLocator
	duration  timing.Duration
	width     float64
	scroller  *Scroller
	logger    *slog.Logger

	state     State
	listeners []listener
	nextID    int
}

type Option func(*LegacyCursor)

func WithWidth(w float64) Option {
	return func(c *LegacyCursor) {
		if w > 0 {
			c.width = w
		}
	}
}

func WithScroller(s *Scroller) Option {
	return func(c *LegacyCursor) { c.scroller = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *LegacyCursor) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(frames []*playback.Frame, opts ...Option) *LegacyCursor {
	c := &LegacyCursor{
		frames: frames,
		width:  DefaultWidth,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.locator = playback.NewFastLocator(playback.FrameRanges(frames))

	c.entries = make([]entryState, len(frames))
	for i, f := range frames {
		c.entries[i] = entryState{
			rect:        geom.NewRect(f.XRange.Min, f.YRange.Min, c.width, f.YRange.Size()),
			hasNext:     i < len(frames)-1,
			hasPrevious: i > 0,
		}
	}
	if n := len(frames); n > 0 {
		c.duration = frames[n-1].TRange.End
		c.state = c.stateAt(0, 0)
	}
	return c
}

func (c *LegacyCursor) State() State { return c.state }

func (c *LegacyCursor) Alpha() float64 { return c.state.Alpha }

func (c *LegacyCursor) Duration() timing.Duration { return c.duration }

func (c *LegacyCursor) Len() int { return len(c.frames) }

// Seek moves the cursor to the frame that owns t and interpolates within it.
func (c *LegacyCursor) Seek(t timing.Duration) {
	if len(c.frames) == 0 {
		return
	}
	t = timing.Clamp(t, timing.Zero(), c.duration)
	i := c.locate(t)
	c.update(i, c.frames[i].TRange.Fraction(t))
}

// Snap moves the cursor to the start of the frame that owns t.
func (c *LegacyCursor) Snap(t timing.Duration) {
	if len(c.frames) == 0 {
		return
	}
	c.update(c.locate(timing.Clamp(t, timing.Zero(), c.duration)), 0)
}

func (c *LegacyCursor) locate(t timing.Duration) int {
	i, ok := c.locator.Locate(t)
	if !ok {
		c.logger.Error("no frame owns time", "category", "cursor", "time", t.String(), "frames", len(c.frames))
		panic(fmt.Sprintf("cursor: no frame owns %s", t))
	}
	return i
}

// Next advances one frame. On the last frame it moves to the frame's end.
func (c *LegacyCursor) Next() {
	if len(c.frames) == 0 {
		return
	}
	if c.state.Index < len(c.frames)-1 {
		c.update(c.state.Index+1, 0)
		return
	}
	c.update(c.state.Index, 1)
}

func (c *LegacyCursor) Previous() {
	if len(c.frames) == 0 {
		return
	}
	c.update(c.state.Index-1, 0)
}

func (c *LegacyCursor) GoTo(index int) {
	if len(c.frames) == 0 {
		return
	}
	c.update(index, 0)
}

// Time returns the playback time the cursor currently points at.
func (c *LegacyCursor) Time() timing.Duration {
	if len(c.frames) == 0 {
		return timing.Zero()
	}
	return c.frames[c.state.Index].TRange.Lerp(c.state.Alpha)
}

func (c *LegacyCursor) update(index int, alpha float64) {
	index = min(max(index, 0), len(c.frames)-1)
	alpha = math.Round(min(max(alpha, 0), 1)*1000) / 1000
	if index == c.state.Index && alpha == c.state.Alpha {
		return
	}
	c.locator.Remember(index)
	c.state = c.stateAt(index, alpha)

	listeners := slices.Clone(c.listeners)
	for _, l := range listeners {
		l.fn(c.state)
	}
}

func (c *LegacyCursor) stateAt(index int, alpha float64) State {
	e := c.entries[index]
	f := c.frames[index]
	rect := e.rect
	rect.X = f.XRange.Lerp(alpha)
	return State{
		Index:       index,
		Alpha:       alpha,
		HasNext:     e.hasNext,
		HasPrevious: e.hasPrevious,
		Rect:        rect,
		Frame:       f,
	}
}

// AddEventListener registers fn for state changes and returns a handle for
// RemoveEventListener.
func (c *LegacyCursor) AddEventListener(fn func(State)) int {
	c.nextID++
	c.listeners = append(c.listeners, listener{id: c.nextID, fn: fn})
	return c.nextID
}

func (c *LegacyCursor) RemoveEventListener(ids ...int) {
	c.listeners = slices.DeleteFunc(c.listeners, func(l listener) bool {
		return slices.Contains(ids, l.id)
	})
}

func (c *LegacyCursor) RemoveAllEventListeners() {
	c.listeners = nil
}

// IsFullyVisible reports whether the cursor rect lies inside the viewport.
// Without a scroller everything counts as visible.
func (c *LegacyCursor) IsFullyVisible() bool {
	if c.scroller == nil || len(c.frames) == 0 {
		return true
	}
	return c.scroller.IsFullyVisible(c.state.Rect)
}

func (c *LegacyCursor) ScrollIntoView(b Behavior) {
	if c.scroller == nil || len(c.frames) == 0 {
		return
	}
	c.scroller.ScrollTo(c.state.Rect.Origin(), b)
}
