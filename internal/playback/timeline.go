package playback

import (
	"fmt"
	"slices"

	"github.com/cbegin/scoresync/internal/score"
	"github.com/cbegin/scoresync/internal/timing"
)

// Timeline is the time-ordered list of moments for one part.
type Timeline struct {
	part     int
	moments  []Moment
	duration timing.Duration
}

func (t *Timeline) Part() int { return t.part }

// Moments returns the moments in ascending time order. Callers must not
// modify the returned slice.
func (t *Timeline) Moments() []Moment { return t.moments }

func (t *Timeline) MomentCount() int { return len(t.moments) }

func (t *Timeline) Moment(i int) (Moment, bool) {
	if i < 0 || i >= len(t.moments) {
		return Moment{}, false
	}
	return t.moments[i], true
}

// Duration is the time of the last moment.
func (t *Timeline) Duration() timing.Duration { return t.duration }

// Describe renders one line per moment for debugging and the CLI.
func (t *Timeline) Describe() []string {
	out := make([]string, 0, len(t.moments))
	for _, m := range t.moments {
		line := fmt.Sprintf("[%s]", m.Time)
		for _, e := range m.Events {
			line += " " + DescribeEvent(e)
		}
		out = append(out, line)
	}
	return out
}

// DescribeEvent renders a single moment event.
func DescribeEvent(e MomentEvent) string {
	switch ev := e.(type) {
	case TransitionEvent:
		return fmt.Sprintf("%s(%s@m%d)", ev.Kind, ev.Element.ElementID(), ev.Measure.Index)
	case JumpEvent:
		return fmt.Sprintf("jump(m%d)", ev.Measure.Index)
	case SystemEndEvent:
		return fmt.Sprintf("systemend(s%d)", ev.System.Index)
	default:
		return "?"
	}
}

// NewTimeline builds the timeline of one part.
func NewTimeline(doc *score.Document, part int) *Timeline {
	b := &timelineBuilder{
		doc:     doc,
		part:    part,
		moments: make(map[float64]*Moment),
	}
	return b.build()
}

// NewTimelines builds one timeline per part of the document.
func NewTimelines(doc *score.Document) []*Timeline {
	out := make([]*Timeline, 0, len(doc.Parts))
	for i := range doc.Parts {
		out = append(out, NewTimeline(doc, i))
	}
	return out
}

type timelineBuilder struct {
	doc                     *score.Document
	part                    int
	moments                 map[float64]*Moment
	currentMeasureStartTime timing.Duration
	nextMeasureStartTime    timing.Duration
}

func (b *timelineBuilder) build() *Timeline {
	sequence := MeasureSequence(b.doc.Measures)
	for k, mi := range sequence {
		m := b.doc.Measures[mi]
		b.addMeasure(m)
		b.currentMeasureStartTime = b.nextMeasureStartTime

		switch {
		case k+1 < len(sequence) && sequence[k+1] != mi+1:
			b.addEvent(b.currentMeasureStartTime, JumpEvent{Measure: m})
		case b.doc.EndsSystem(mi):
			if system := b.doc.System(m.System); system != nil {
				b.addEvent(b.currentMeasureStartTime, SystemEndEvent{System: system})
			}
		}
	}
	return b.finish()
}

func (b *timelineBuilder) addMeasure(m *score.Measure) {
	start := b.currentMeasureStartTime

	if m.IsMultiRest() {
		stop := start.Add(timing.BeatsToDuration(m.Beats, m.BPM))
		b.addTransitions(start, stop, m, b.multiRestEntry(m))
		return
	}

	offset := timing.Zero()
	end := start
	for _, f := range m.Fragments {
		if f.IsGap() {
			gapStart := end
			gapStop := gapStart.Add(f.Gap.Duration)
			b.addTransitions(gapStart, gapStop, m, f.Gap)
			offset = offset.Add(f.Gap.Duration)
			end = gapStop
			continue
		}
		bpm := m.Tempo(f)
		for _, e := range f.Entries {
			if e.Part != b.part {
				continue
			}
			entryStart := start.Add(offset).Add(timing.BeatsToDuration(e.StartBeat, bpm))
			entryStop := entryStart.Add(timing.BeatsToDuration(e.Beats, bpm))
			b.addTransitions(entryStart, entryStop, m, e)
			end = timing.Max(end, entryStop)
		}
	}
}

// multiRestEntry returns the part's rest entry for a multi-measure rest, or
// one covering the whole measure when the document has none.
func (b *timelineBuilder) multiRestEntry(m *score.Measure) *score.Entry {
	for _, f := range m.Fragments {
		for _, e := range f.Entries {
			if e.Part == b.part {
				return e
			}
		}
	}
	return &score.Entry{
		ID:     fmt.Sprintf("p%d-m%d-rest", b.part+1, m.Index),
		Kind:   score.EntryMultiRest,
		Part:   b.part,
		Beats:  m.Beats,
		Bounds: m.Bounds,
	}
}

func (b *timelineBuilder) addTransitions(start, stop timing.Duration, m *score.Measure, el score.Element) {
	b.addEvent(start, TransitionEvent{Kind: TransitionStart, Measure: m, Element: el})
	b.addEvent(stop, TransitionEvent{Kind: TransitionStop, Measure: m, Element: el})
	b.proposeNextMeasureStartTime(stop)
}

func (b *timelineBuilder) proposeNextMeasureStartTime(t timing.Duration) {
	b.nextMeasureStartTime = timing.Max(b.nextMeasureStartTime, t)
}

func (b *timelineBuilder) addEvent(t timing.Duration, e MomentEvent) {
	m, ok := b.moments[t.Ms()]
	if !ok {
		m = &Moment{Time: t}
		b.moments[t.Ms()] = m
	}
	m.Events = append(m.Events, e)
}

func (b *timelineBuilder) finish() *Timeline {
	keys := make([]float64, 0, len(b.moments))
	for k := range b.moments {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	moments := make([]Moment, 0, len(keys))
	for _, k := range keys {
		m := b.moments[k]
		slices.SortStableFunc(m.Events, func(a, c MomentEvent) int {
			return eventRank(a) - eventRank(c)
		})
		moments = append(moments, *m)
	}

	tl := &Timeline{part: b.part, moments: moments}
	if n := len(moments); n > 0 {
		tl.duration = moments[n-1].Time
	}
	return tl
}
