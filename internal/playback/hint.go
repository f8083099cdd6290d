package playback

import (
	"slices"

	"github.com/cbegin/scoresync/internal/score"
)

// Hint tells a consumer how the sounding set changed between two frames.
//
// go-sumtype:decl Hint
type Hint interface {
	sealed()
}

type StartHint struct {
	Element score.Element
}

func (StartHint) sealed() {}

type StopHint struct {
	Element score.Element
}

func (StopHint) sealed() {}

// RetriggerHint is a pitch that stops and immediately sounds again.
type RetriggerHint struct {
	From, To score.Element
}

func (RetriggerHint) sealed() {}

// SustainHint is a pitch carried across frames by a tie or slur.
type SustainHint struct {
	From, To score.Element
}

func (SustainHint) sealed() {}

// Hints compares the active set with prev (nil for the first frame). Stops
// come first, then starts, then the retrigger or sustain pairing of each
// started pitch with a stopped one.
func (f *Frame) Hints(prev *Frame) []Hint {
	var before []score.Element
	if prev != nil {
		before = prev.Active
	}

	var removed, added []score.Element
	for _, el := range before {
		if !slices.Contains(f.Active, el) {
			removed = append(removed, el)
		}
	}
	for _, el := range f.Active {
		if !slices.Contains(before, el) {
			added = append(added, el)
		}
	}

	hints := make([]Hint, 0, len(removed)+len(added))
	for _, el := range removed {
		hints = append(hints, StopHint{Element: el})
	}
	for _, el := range added {
		hints = append(hints, StartHint{Element: el})
	}
	for _, to := range added {
		pitch, ok := to.NotePitch()
		if !ok {
			continue
		}
		for _, from := range removed {
			p, ok := from.NotePitch()
			if !ok || !p.Equal(pitch) {
				continue
			}
			if from.SharesCurveWith(to) {
				hints = append(hints, SustainHint{From: from, To: to})
			} else {
				hints = append(hints, RetriggerHint{From: from, To: to})
			}
			break
		}
	}
	return hints
}
