package playback

import (
	"github.com/cbegin/scoresync/internal/score"
	"github.com/cbegin/scoresync/internal/timing"
)

// TransitionKind tells whether an element starts or stops sounding.
type TransitionKind int

const (
	TransitionStart TransitionKind = iota + 1
	TransitionStop
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionStart:
		return "start"
	case TransitionStop:
		return "stop"
	default:
		return "unknown"
	}
}

// MomentEvent is one thing that happens at a timeline moment.
//
// go-sumtype:decl MomentEvent
type MomentEvent interface {
	sealed()
}

type TransitionEvent struct {
	Kind    TransitionKind
	Measure *score.Measure
	Element score.Element
}

func (TransitionEvent) sealed() {}

// JumpEvent marks the moment playback leaves Measure for a non-adjacent one.
type JumpEvent struct {
	Measure *score.Measure
}

func (JumpEvent) sealed() {}

// SystemEndEvent marks the moment playback runs off the right edge of System.
type SystemEndEvent struct {
	System *score.System
}

func (SystemEndEvent) sealed() {}

// eventRank orders events within a moment: transitions, then jumps, then
// system ends.
func eventRank(e MomentEvent) int {
	switch e.(type) {
	case TransitionEvent:
		return 0
	case JumpEvent:
		return 1
	case SystemEndEvent:
		return 2
	default:
		return 3
	}
}

// Moment bundles every event that happens at one instant.
type Moment struct {
	Time   timing.Duration
	Events []MomentEvent
}
