package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/message"

	"github.com/cbegin/scoresync/internal/cursor"
	"github.com/cbegin/scoresync/internal/playback"
	"github.com/cbegin/scoresync/internal/score"
	"github.com/cbegin/scoresync/internal/timing"
)

var ErrInvalidStep = errors.New("trace step must be positive")

func partID(doc *score.Document, part int) string {
	if part < 0 || part >= len(doc.Parts) {
		return ""
	}
	return doc.Parts[part].ID
}

func intPtr(v int) *int { return &v }

type EventDoc struct {
	Kind    string `json:"kind" yaml:"kind"`
	Element string `json:"element,omitempty" yaml:"element,omitempty"`
	Measure *int   `json:"measure,omitempty" yaml:"measure,omitempty"`
	System  *int   `json:"system,omitempty" yaml:"system,omitempty"`
	text    string
}

type MomentDoc struct {
	TimeMs float64    `json:"time_ms" yaml:"time_ms"`
	Events []EventDoc `json:"events" yaml:"events"`
}

type TimelineDoc struct {
	Title      string      `json:"title,omitempty" yaml:"title,omitempty"`
	Part       int         `json:"part" yaml:"part"`
	PartID     string      `json:"part_id" yaml:"part_id"`
	DurationMs float64     `json:"duration_ms" yaml:"duration_ms"`
	Moments    []MomentDoc `json:"moments" yaml:"moments"`
}

func NewTimelineDoc(doc *score.Document, tl *playback.Timeline) *TimelineDoc {
	out := &TimelineDoc{
		Title:      doc.Title,
		Part:       tl.Part(),
		PartID:     partID(doc, tl.Part()),
		DurationMs: tl.Duration().Ms(),
		Moments:    make([]MomentDoc, 0, tl.MomentCount()),
	}
	for _, m := range tl.Moments() {
		md := MomentDoc{TimeMs: m.Time.Ms(), Events: make([]EventDoc, 0, len(m.Events))}
		for _, e := range m.Events {
			md.Events = append(md.Events, eventDoc(e))
		}
		out.Moments = append(out.Moments, md)
	}
	return out
}

func eventDoc(e playback.MomentEvent) EventDoc {
	d := EventDoc{text: playback.DescribeEvent(e)}
	switch ev := e.(type) {
	case playback.TransitionEvent:
		d.Kind = ev.Kind.String()
		d.Element = ev.Element.ElementID()
		d.Measure = intPtr(ev.Measure.Index)
	case playback.JumpEvent:
		d.Kind = "jump"
		d.Measure = intPtr(ev.Measure.Index)
	case playback.SystemEndEvent:
		d.Kind = "systemend"
		d.System = intPtr(ev.System.Index)
	}
	return d
}

func (d *TimelineDoc) writeText(w io.Writer, p *message.Printer) error {
	if d.Title != "" {
		if _, err := fmt.Fprintf(w, "# %s\n", d.Title); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "part %d (%s), %d moments, %s\n", d.Part, d.PartID, len(d.Moments), ms(p, d.DurationMs)); err != nil {
		return err
	}
	for _, m := range d.Moments {
		parts := make([]string, 0, len(m.Events)+1)
		parts = append(parts, "["+ms(p, m.TimeMs)+"]")
		for _, e := range m.Events {
			parts = append(parts, e.text)
		}
		if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}

type FrameDoc struct {
	Index   int      `json:"index" yaml:"index"`
	StartMs float64  `json:"start_ms" yaml:"start_ms"`
	EndMs   float64  `json:"end_ms" yaml:"end_ms"`
	XMin    float64  `json:"x_min" yaml:"x_min"`
	XMax    float64  `json:"x_max" yaml:"x_max"`
	YMin    float64  `json:"y_min" yaml:"y_min"`
	YMax    float64  `json:"y_max" yaml:"y_max"`
	Measure int      `json:"measure" yaml:"measure"`
	Active  []string `json:"active" yaml:"active"`
	Hints   []string `json:"hints,omitempty" yaml:"hints,omitempty"`
}

type FramesDoc struct {
	Title  string     `json:"title,omitempty" yaml:"title,omitempty"`
	Part   int        `json:"part" yaml:"part"`
	PartID string     `json:"part_id" yaml:"part_id"`
	Frames []FrameDoc `json:"frames" yaml:"frames"`
}

// NewFramesDoc describes frames. Hints are included when withHints is set.
func NewFramesDoc(doc *score.Document, part int, frames []*playback.Frame, withHints bool) *FramesDoc {
	out := &FramesDoc{
		Title:  doc.Title,
		Part:   part,
		PartID: partID(doc, part),
		Frames: make([]FrameDoc, 0, len(frames)),
	}
	var prev *playback.Frame
	for i, f := range frames {
		fd := FrameDoc{
			Index:   i,
			StartMs: f.TRange.Start.Ms(),
			EndMs:   f.TRange.End.Ms(),
			XMin:    f.XRange.Min,
			XMax:    f.XRange.Max,
			YMin:    f.YRange.Min,
			YMax:    f.YRange.Max,
			Measure: -1,
			Active:  make([]string, 0, len(f.Active)),
		}
		if f.Measure != nil {
			fd.Measure = f.Measure.Index
		}
		for _, el := range f.Active {
			fd.Active = append(fd.Active, el.ElementID())
		}
		if withHints {
			for _, h := range f.Hints(prev) {
				fd.Hints = append(fd.Hints, DescribeHint(h))
			}
		}
		out.Frames = append(out.Frames, fd)
		prev = f
	}
	return out
}

// DescribeHint renders a hint as kind(element) or kind(from->to).
func DescribeHint(h playback.Hint) string {
	switch v := h.(type) {
	case playback.StartHint:
		return "start(" + v.Element.ElementID() + ")"
	case playback.StopHint:
		return "stop(" + v.Element.ElementID() + ")"
	case playback.RetriggerHint:
		return "retrigger(" + v.From.ElementID() + "->" + v.To.ElementID() + ")"
	case playback.SustainHint:
		return "sustain(" + v.From.ElementID() + "->" + v.To.ElementID() + ")"
	default:
		return "?"
	}
}

func (d *FramesDoc) writeText(w io.Writer, p *message.Printer) error {
	if d.Title != "" {
		if _, err := fmt.Fprintf(w, "# %s\n", d.Title); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "part %d (%s), %d frames\n", d.Part, d.PartID, len(d.Frames)); err != nil {
		return err
	}
	for _, f := range d.Frames {
		line := fmt.Sprintf("#%d [%s, %s) x=%g..%g y=%g..%g m%d active=[%s]",
			f.Index, ms(p, f.StartMs), ms(p, f.EndMs),
			f.XMin, f.XMax, f.YMin, f.YMax, f.Measure,
			strings.Join(f.Active, " "))
		if len(f.Hints) > 0 {
			line += " hints=[" + strings.Join(f.Hints, " ") + "]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// StateDoc is one cursor position.
type StateDoc struct {
	TimeMs      float64 `json:"time_ms" yaml:"time_ms"`
	Index       int     `json:"index" yaml:"index"`
	Alpha       float64 `json:"alpha" yaml:"alpha"`
	HasNext     bool    `json:"has_next" yaml:"has_next"`
	HasPrevious bool    `json:"has_previous" yaml:"has_previous"`
	X           float64 `json:"x" yaml:"x"`
	Y           float64 `json:"y" yaml:"y"`
	W           float64 `json:"w" yaml:"w"`
	H           float64 `json:"h" yaml:"h"`
	Measure     int     `json:"measure" yaml:"measure"`
}

func NewStateDoc(t timing.Duration, s cursor.State) *StateDoc {
	d := &StateDoc{
		TimeMs:      t.Ms(),
		Index:       s.Index,
		Alpha:       s.Alpha,
		HasNext:     s.HasNext,
		HasPrevious: s.HasPrevious,
		X:           s.Rect.X,
		Y:           s.Rect.Y,
		W:           s.Rect.W,
		H:           s.Rect.H,
		Measure:     -1,
	}
	if s.Frame != nil && s.Frame.Measure != nil {
		d.Measure = s.Frame.Measure.Index
	}
	return d
}

func (d *StateDoc) line(p *message.Printer) string {
	return fmt.Sprintf("[%s] frame=%d alpha=%.3f m%d rect=(%g,%g %gx%g)",
		ms(p, d.TimeMs), d.Index, d.Alpha, d.Measure, d.X, d.Y, d.W, d.H)
}

func (d *StateDoc) writeText(w io.Writer, p *message.Printer) error {
	_, err := fmt.Fprintln(w, d.line(p))
	return err
}

type TraceDoc struct {
	Title  string     `json:"title,omitempty" yaml:"title,omitempty"`
	Part   int        `json:"part" yaml:"part"`
	StepMs float64    `json:"step_ms" yaml:"step_ms"`
	Steps  []StateDoc `json:"steps" yaml:"steps"`
}

// NewTraceDoc seeks c from zero to its duration in increments of step and
// records the state after each seek. The last step lands on the duration.
func NewTraceDoc(doc *score.Document, part int, c *cursor.LegacyCursor, step timing.Duration) (*TraceDoc, error) {
	if step.Ms() <= 0 || math.IsNaN(step.Ms()) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStep, step)
	}
	out := &TraceDoc{Title: doc.Title, Part: part, StepMs: step.Ms()}
	if c.Len() == 0 {
		return out, nil
	}
	end := c.Duration()
	for i := 0; ; i++ {
		t := timing.Milliseconds(float64(i) * step.Ms())
		if t.After(end) {
			t = end
		}
		c.Seek(t)
		out.Steps = append(out.Steps, *NewStateDoc(t, c.State()))
		if !t.Before(end) {
			break
		}
	}
	return out, nil
}

func (d *TraceDoc) writeText(w io.Writer, p *message.Printer) error {
	if d.Title != "" {
		if _, err := fmt.Fprintf(w, "# %s\n", d.Title); err != nil {
			return err
		}
	}
	for _, s := range d.Steps {
		if _, err := fmt.Fprintln(w, s.line(p)); err != nil {
			return err
		}
	}
	return nil
}

// SequenceDoc is the playback order of measures.
type SequenceDoc struct {
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Measures []int  `json:"measures" yaml:"measures,flow"`
}

func NewSequenceDoc(doc *score.Document) *SequenceDoc {
	seq := playback.MeasureSequence(doc.Measures)
	if seq == nil {
		seq = []int{}
	}
	return &SequenceDoc{Title: doc.Title, Measures: seq}
}

func (d *SequenceDoc) writeText(w io.Writer, _ *message.Printer) error {
	parts := make([]string, len(d.Measures))
	for i, m := range d.Measures {
		parts[i] = fmt.Sprint(m)
	}
	_, err := fmt.Fprintf(w, "%d measures: %s\n", len(d.Measures), strings.Join(parts, " "))
	return err
}
