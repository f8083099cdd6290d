package playback

import (
	"log/slog"
	"math"
	"slices"

	"github.com/cbegin/scoresync/internal/geom"
	"github.com/cbegin/scoresync/internal/score"
	"github.com/cbegin/scoresync/internal/timing"
)

// Frame is the span between two consecutive moments: what sounds during it
// and where on the page the cursor travels.
type Frame struct {
	TRange  timing.Range
	XRange  geom.Span
	YRange  geom.Span
	Active  []score.Element
	Measure *score.Measure
}

type frameOptions struct {
	logger    *slog.Logger
	partFrom  int
	partTo    int
	partRange bool
}

type FrameOption func(*frameOptions)

func WithLogger(l *slog.Logger) FrameOption {
	return func(o *frameOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPartRange sets the parts the cursor spans vertically. By default it
// covers only the timeline's own part.
func WithPartRange(from, to int) FrameOption {
	return func(o *frameOptions) {
		o.partFrom, o.partTo, o.partRange = from, to, true
	}
}

// NewFrames derives cursor frames from a timeline. A timeline with n moments
// yields n-1 frames.
func NewFrames(doc *score.Document, tl *Timeline, opts ...FrameOption) []*Frame {
	o := frameOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.partRange {
		o.partFrom, o.partTo = tl.Part(), tl.Part()
	}
	log := o.logger.With("category", "frames", "part", tl.Part())

	moments := tl.Moments()
	if len(moments) < 2 {
		return nil
	}

	frames := make([]*Frame, 0, len(moments)-1)
	var (
		active  []score.Element
		measure *score.Measure
	)
	for i := 0; i < len(moments)-1; i++ {
		cur, next := moments[i], moments[i+1]

		for _, e := range cur.Events {
			ev, ok := e.(TransitionEvent)
			if !ok {
				continue
			}
			switch ev.Kind {
			case TransitionStop:
				active = removeElement(active, ev.Element)
			case TransitionStart:
				if !slices.Contains(active, ev.Element) {
					active = append(active, ev.Element)
				}
			}
		}
		if m := firstStartMeasure(cur); m != nil {
			measure = m
		}

		left, ok := startLeft(cur)
		if !ok {
			left = fallbackLeft(cur)
			log.Warn("moment has no start transitions; using first event for left bound",
				"moment", i, "time", cur.Time.String(), "left", left)
		}
		right := rightBound(next, log, i+1)
		if right < left {
			log.Warn("frame right bound precedes left bound; collapsing",
				"frame", i, "left", left, "right", right)
			right = left
		}

		frames = append(frames, &Frame{
			TRange:  timing.NewRange(cur.Time, next.Time),
			XRange:  geom.Span{Min: left, Max: right},
			YRange:  yBound(doc, cur, o.partFrom, o.partTo),
			Active:  slices.Clone(active),
			Measure: measure,
		})
	}
	return frames
}

// FrameRanges lists the time range of each frame.
func FrameRanges(frames []*Frame) []timing.Range {
	out := make([]timing.Range, len(frames))
	for i, f := range frames {
		out[i] = f.TRange
	}
	return out
}

func removeElement(active []score.Element, el score.Element) []score.Element {
	if i := slices.Index(active, el); i >= 0 {
		return slices.Delete(active, i, i+1)
	}
	return active
}

func firstStartMeasure(m Moment) *score.Measure {
	for _, e := range m.Events {
		if ev, ok := e.(TransitionEvent); ok && ev.Kind == TransitionStart {
			return ev.Measure
		}
	}
	return nil
}

func startLeft(m Moment) (float64, bool) {
	left := math.Inf(1)
	found := false
	for _, e := range m.Events {
		if ev, ok := e.(TransitionEvent); ok && ev.Kind == TransitionStart {
			left = math.Min(left, ev.Element.Rect().Left())
			found = true
		}
	}
	return left, found
}

func fallbackLeft(m Moment) float64 {
	if len(m.Events) == 0 {
		panic("playback: moment without events")
	}
	switch ev := m.Events[0].(type) {
	case TransitionEvent:
		return ev.Element.Rect().Left()
	case JumpEvent:
		return ev.Measure.Bounds.Left()
	case SystemEndEvent:
		return ev.System.Bounds.Left()
	default:
		panic("playback: unknown moment event")
	}
}

func rightBound(next Moment, log *slog.Logger, index int) float64 {
	for _, e := range next.Events {
		switch ev := e.(type) {
		case JumpEvent:
			return ev.Measure.Bounds.Right()
		case SystemEndEvent:
			return ev.System.Bounds.Right()
		}
	}
	if left, ok := startLeft(next); ok {
		return left
	}
	right := fallbackLeft(next)
	log.Warn("moment has no start transitions; using first event for right bound",
		"moment", index, "time", next.Time.String(), "right", right)
	return right
}

func yBound(doc *score.Document, m Moment, from, to int) geom.Span {
	system := momentSystem(doc, m)
	if system == nil {
		return geom.Span{}
	}
	if span, ok := doc.PartSpan(system, from, to); ok {
		return span
	}
	return system.Bounds.YSpan()
}

func momentSystem(doc *score.Document, m Moment) *score.System {
	if measure := firstStartMeasure(m); measure != nil {
		return doc.System(measure.System)
	}
	for _, e := range m.Events {
		if ev, ok := e.(TransitionEvent); ok {
			return doc.System(ev.Measure.System)
		}
	}
	for _, e := range m.Events {
		if ev, ok := e.(SystemEndEvent); ok {
			return ev.System
		}
	}
	for _, e := range m.Events {
		if ev, ok := e.(JumpEvent); ok {
			return doc.System(ev.Measure.System)
		}
	}
	return nil
}
