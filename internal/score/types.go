// Package score is the laid-out document consumed by the playback engine:
// measures with tempo and repeat directives, entries with beat positions, and
// the pixel rectangles a layout pass assigned to them.
package score

import (
	"fmt"

	"github.com/cbegin/scoresync/internal/geom"
	"github.com/cbegin/scoresync/internal/timing"
)

// Element is a renderable leaf the cursor can point at.
type Element interface {
	ElementID() string
	Rect() geom.Rect
	// NotePitch reports the sounding pitch; rests and gaps report false.
	NotePitch() (Pitch, bool)
	// SharesCurveWith reports whether a tie or slur joins the two elements.
	SharesCurveWith(other Element) bool
}

type Pitch struct {
	Step       string // A-G
	Octave     int
	Accidental int // semitone offset: -1 flat, 0 natural, 1 sharp
}

func (p Pitch) Equal(other Pitch) bool {
	return p.Step == other.Step && p.Octave == other.Octave && p.Accidental == other.Accidental
}

func (p Pitch) String() string {
	acc := ""
	switch {
	case p.Accidental > 0:
		for i := 0; i < p.Accidental; i++ {
			acc += "#"
		}
	case p.Accidental < 0:
		for i := 0; i > p.Accidental; i-- {
			acc += "b"
		}
	}
	return fmt.Sprintf("%s%s%d", p.Step, acc, p.Octave)
}

type EntryKind int

const (
	EntryNote EntryKind = iota + 1
	EntryRest
	EntryMultiRest
)

func (k EntryKind) String() string {
	switch k {
	case EntryNote:
		return "note"
	case EntryRest:
		return "rest"
	case EntryMultiRest:
		return "multirest"
	default:
		return "unknown"
	}
}

// Entry is a note or rest in one voice of one part.
type Entry struct {
	ID        string
	Kind      EntryKind
	Part      int
	Voice     int
	StartBeat float64 // offset from the start of the measure
	Beats     float64
	Bounds    geom.Rect
	Pitch     *Pitch
	Curves    []string // ids of ties/slurs touching this entry
}

var _ Element = (*Entry)(nil)

func (e *Entry) ElementID() string { return e.ID }

func (e *Entry) Rect() geom.Rect { return e.Bounds }

func (e *Entry) NotePitch() (Pitch, bool) {
	if e.Pitch == nil {
		return Pitch{}, false
	}
	return *e.Pitch, true
}

func (e *Entry) SharesCurveWith(other Element) bool {
	o, ok := other.(*Entry)
	if !ok || o == e {
		return false
	}
	for _, a := range e.Curves {
		for _, b := range o.Curves {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Gap is a stretch of fixed-length non-musical time, e.g. a pause inserted
// between movements.
type Gap struct {
	ID       string
	Label    string
	Duration timing.Duration
	Bounds   geom.Rect
}

var _ Element = (*Gap)(nil)

func (g *Gap) ElementID() string              { return g.ID }
func (g *Gap) Rect() geom.Rect                { return g.Bounds }
func (g *Gap) NotePitch() (Pitch, bool)       { return Pitch{}, false }
func (g *Gap) SharesCurveWith(_ Element) bool { return false }

// Fragment is a run of a measure with one tempo, or a gap.
type Fragment struct {
	BPM     float64 // 0 inherits the measure tempo
	Gap     *Gap
	Entries []*Entry
}

func (f *Fragment) IsGap() bool { return f.Gap != nil }

type Measure struct {
	Index     int
	System    int
	BPM       float64
	Beats     float64
	Jumps     []Jump
	MultiRest int // number of bars collapsed into this measure; 0 when not a multi-measure rest
	Bounds    geom.Rect
	Fragments []*Fragment
}

func (m *Measure) IsMultiRest() bool { return m.MultiRest > 0 }

// Tempo returns the fragment's tempo, falling back to the measure's.
func (m *Measure) Tempo(f *Fragment) float64 {
	if f != nil && f.BPM > 0 {
		return f.BPM
	}
	return m.BPM
}

type Part struct {
	ID   string
	Name string
}

// System is one line of the rendered score.
type System struct {
	Index  int
	Bounds geom.Rect
	Parts  []geom.Rect // per part, indexed like Document.Parts
}

type Document struct {
	Title    string
	Parts    []Part
	Systems  []*System
	Measures []*Measure
}

func (d *Document) System(index int) *System {
	if index < 0 || index >= len(d.Systems) {
		return nil
	}
	return d.Systems[index]
}

// EndsSystem reports whether the measure at index is the last one drawn on
// its system.
func (d *Document) EndsSystem(index int) bool {
	if index < 0 || index >= len(d.Measures) {
		return false
	}
	if index == len(d.Measures)-1 {
		return true
	}
	return d.Measures[index+1].System != d.Measures[index].System
}

// PartSpan returns the vertical extent covered by parts [from, to] on a
// system. Indexes outside the system are ignored.
func (d *Document) PartSpan(system *System, from, to int) (geom.Span, bool) {
	if system == nil {
		return geom.Span{}, false
	}
	if from > to {
		from, to = to, from
	}
	var out geom.Span
	found := false
	for i := from; i <= to; i++ {
		if i < 0 || i >= len(system.Parts) {
			continue
		}
		s := system.Parts[i].YSpan()
		if !found {
			out = s
			found = true
			continue
		}
		out = out.Union(s)
	}
	return out, found
}
