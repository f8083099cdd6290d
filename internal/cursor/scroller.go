package cursor

import (
	"math"

	"github.com/cbegin/scoresync/internal/geom"
)

// Behavior selects how a container animates a scroll.
type Behavior int

const (
	BehaviorAuto Behavior = iota
	BehaviorSmooth
	BehaviorInstant
)

func (b Behavior) String() string {
	switch b {
	case BehaviorSmooth:
		return "smooth"
	case BehaviorInstant:
		return "instant"
	default:
		return "auto"
	}
}

// ParseBehavior maps a config string to a Behavior. Unknown strings are auto.
func ParseBehavior(s string) Behavior {
	switch s {
	case "smooth":
		return BehaviorSmooth
	case "instant":
		return BehaviorInstant
	default:
		return BehaviorAuto
	}
}

// ScrollContainer is the viewport the score is drawn in.
type ScrollContainer interface {
	ScrollOffset() geom.Point
	ClientSize() (w, h float64)
	ScrollTo(x, y float64, b Behavior)
}

const (
	DefaultPaddingX = 60
	DefaultPaddingY = 40
)

// Scroller keeps a target point visible with some breathing room above and
// to the left of it.
type Scroller struct {
	container ScrollContainer
	paddingX  float64
	paddingY  float64
}

type ScrollerOption func(*Scroller)

func WithPadding(x, y float64) ScrollerOption {
	return func(s *Scroller) {
		s.paddingX, s.paddingY = math.Max(x, 0), math.Max(y, 0)
	}
}

func NewScroller(c ScrollContainer, opts ...ScrollerOption) *Scroller {
	s := &Scroller{container: c, paddingX: DefaultPaddingX, paddingY: DefaultPaddingY}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scroller) VisibleRect() geom.Rect {
	off := s.container.ScrollOffset()
	w, h := s.container.ClientSize()
	return geom.NewRect(off.X, off.Y, w, h)
}

func (s *Scroller) IsFullyVisible(r geom.Rect) bool {
	return s.VisibleRect().Contains(r)
}

// ScrollTo moves the viewport so p sits just inside its top-left corner. It
// reports whether a scroll was requested.
func (s *Scroller) ScrollTo(p geom.Point, b Behavior) bool {
	x := math.Max(p.X-s.paddingX, 0)
	y := math.Max(p.Y-s.paddingY, 0)
	off := s.container.ScrollOffset()
	if off.X == x && off.Y == y {
		return false
	}
	s.container.ScrollTo(x, y, b)
	return true
}
