// Package viewport is a scrollable window onto the laid-out score. It
// implements cursor.ScrollContainer for front ends that draw the page
// themselves.
package viewport

import (
	"math"

	"github.com/cbegin/scoresync/internal/cursor"
	"github.com/cbegin/scoresync/internal/geom"
)

// DefaultSmoothing is the share of the remaining distance covered per Step.
const DefaultSmoothing = 0.25

var _ cursor.ScrollContainer = (*Viewport)(nil)

type Viewport struct {
	offset    geom.Point
	target    geom.Point
	animating bool
	w, h      float64
	contentW  float64
	contentH  float64
	smoothing float64
}

type Option func(*Viewport)

func WithSmoothing(s float64) Option {
	return func(v *Viewport) {
		if s > 0 && s <= 1 {
			v.smoothing = s
		}
	}
}

func New(w, h float64, opts ...Option) *Viewport {
	v := &Viewport{w: w, h: h, smoothing: DefaultSmoothing}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Viewport) ScrollOffset() geom.Point { return v.offset }

func (v *Viewport) ClientSize() (float64, float64) { return v.w, v.h }

// SetClientSize resizes the window and re-clamps the offset.
func (v *Viewport) SetClientSize(w, h float64) {
	v.w, v.h = w, h
	v.offset = v.clamp(v.offset)
	v.target = v.clamp(v.target)
}

// SetContentSize bounds how far the viewport can scroll. Zero means
// unbounded.
func (v *Viewport) SetContentSize(w, h float64) {
	v.contentW, v.contentH = w, h
	v.offset = v.clamp(v.offset)
	v.target = v.clamp(v.target)
}

// ScrollTo moves to (x, y). Smooth scrolls animate over later Steps; auto
// and instant jump immediately.
func (v *Viewport) ScrollTo(x, y float64, b cursor.Behavior) {
	p := v.clamp(geom.Point{X: x, Y: y})
	if b == cursor.BehaviorSmooth {
		v.target = p
		v.animating = p != v.offset
		return
	}
	v.offset, v.target = p, p
	v.animating = false
}

// ScrollBy moves the offset immediately and cancels any animation.
func (v *Viewport) ScrollBy(dx, dy float64) {
	v.ScrollTo(v.offset.X+dx, v.offset.Y+dy, cursor.BehaviorInstant)
}

func (v *Viewport) Animating() bool { return v.animating }

// Step advances a smooth scroll by one frame. It snaps once within half a
// pixel of the target and reports whether the offset moved.
func (v *Viewport) Step() bool {
	if !v.animating {
		return false
	}
	dx := v.target.X - v.offset.X
	dy := v.target.Y - v.offset.Y
	if math.Abs(dx) < 0.5 && math.Abs(dy) < 0.5 {
		v.offset = v.target
		v.animating = false
		return true
	}
	v.offset.X += dx * v.smoothing
	v.offset.Y += dy * v.smoothing
	return true
}

// Visible is the score rectangle currently shown.
func (v *Viewport) Visible() geom.Rect {
	return geom.NewRect(v.offset.X, v.offset.Y, v.w, v.h)
}

// ToScreen converts score coordinates to window-relative ones.
func (v *Viewport) ToScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X - v.offset.X, Y: p.Y - v.offset.Y}
}

func (v *Viewport) clamp(p geom.Point) geom.Point {
	p.X = math.Max(p.X, 0)
	p.Y = math.Max(p.Y, 0)
	if v.contentW > 0 {
		p.X = math.Min(p.X, math.Max(v.contentW-v.w, 0))
	}
	if v.contentH > 0 {
		p.Y = math.Min(p.Y, math.Max(v.contentH-v.h, 0))
	}
	return p
}
