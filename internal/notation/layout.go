package notation

import (
	"fmt"
	"math"

	"github.com/cbegin/scoresync/internal/geom"
	"github.com/cbegin/scoresync/internal/score"
	"github.com/cbegin/scoresync/internal/timing"
)

// Layout is the fixed grid measures are placed on.
type Layout struct {
	MeasuresPerSystem int
	BeatWidth         float64
	SystemHeight      float64 // minimum; grows to fit all parts
	PartHeight        float64
}

const (
	margin      = 20
	systemPad   = 10
	systemGap   = 20
	entryWidth  = 10
	entryHeight = 10
	entryInset  = 4
)

func DefaultLayout() Layout {
	return Layout{
		MeasuresPerSystem: 4,
		BeatWidth:         40,
		SystemHeight:      120,
		PartHeight:        60,
	}
}

func (l Layout) withDefaults() Layout {
	d := DefaultLayout()
	if l.MeasuresPerSystem <= 0 {
		l.MeasuresPerSystem = d.MeasuresPerSystem
	}
	if l.BeatWidth <= 0 {
		l.BeatWidth = d.BeatWidth
	}
	if l.SystemHeight <= 0 {
		l.SystemHeight = d.SystemHeight
	}
	if l.PartHeight <= 0 {
		l.PartHeight = d.PartHeight
	}
	return l
}

func (l Layout) systemHeight(parts int) float64 {
	return math.Max(l.SystemHeight, float64(parts)*l.PartHeight+2*systemPad)
}

// measureUnits is the measure width in beats, counting each gap as one beat.
func measureUnits(m *measureToken) float64 {
	beats := m.beats
	if m.multiRest > 0 {
		beats = beatsPerBar
	}
	if beats <= 0 {
		beats = 1
	}
	return beats + float64(len(m.gaps))
}

// gapsBefore counts the gaps a beat position is drawn after.
func gapsBefore(m *measureToken, beat float64) int {
	n := 0
	for _, g := range m.gaps {
		if g.beat <= beat {
			n++
		}
	}
	return n
}

func (l Layout) build(title string, parts []*partTokens) *score.Document {
	lead := parts[0].measures
	height := l.systemHeight(len(parts))

	doc := &score.Document{Title: title}
	for _, pt := range parts {
		doc.Parts = append(doc.Parts, score.Part{
			ID:   fmt.Sprintf("P%d", pt.index+1),
			Name: fmt.Sprintf("Part %d", pt.index+1),
		})
	}

	var system *score.System
	inSystem := 0
	x := 0.0
	for mi, lm := range lead {
		if system == nil || inSystem >= l.MeasuresPerSystem {
			system = l.newSystem(len(doc.Systems), len(parts), height)
			doc.Systems = append(doc.Systems, system)
			inSystem = 0
			x = margin
		}

		width := measureUnits(lm) * l.BeatWidth
		m := &score.Measure{
			Index:  mi,
			System: system.Index,
			BPM:    lm.bpm,
			Beats:  lm.beats,
			Jumps:  lm.jumps,
			Bounds: geom.NewRect(x, system.Bounds.Y, width, height),
		}
		if lm.multiRest > 0 {
			m.MultiRest = lm.multiRest
		}
		for _, pt := range parts[1:] {
			m.Beats = math.Max(m.Beats, pt.measures[mi].beats)
		}
		m.Fragments = l.fragments(m, lm, parts, mi)
		doc.Measures = append(doc.Measures, m)

		x += width
		system.Bounds.W = x - system.Bounds.X
		for p := range system.Parts {
			system.Parts[p].W = system.Bounds.W
		}

		inSystem++
		if lm.breakAfter {
			inSystem = l.MeasuresPerSystem
		}
	}
	return doc
}

func (l Layout) newSystem(index, parts int, height float64) *score.System {
	y := margin + float64(index)*(height+systemGap)
	s := &score.System{
		Index:  index,
		Bounds: geom.NewRect(margin, y, 0, height),
	}
	for p := 0; p < parts; p++ {
		s.Parts = append(s.Parts, geom.NewRect(margin, y+systemPad+float64(p)*l.PartHeight, 0, l.PartHeight))
	}
	return s
}

// fragments splits the measure at each gap of the leading part and sorts every
// part's entries into the run they sound in.
func (l Layout) fragments(m *score.Measure, lead *measureToken, parts []*partTokens, mi int) []*score.Fragment {
	runs := make([]*score.Fragment, len(lead.gaps)+1)
	for i := range runs {
		runs[i] = &score.Fragment{}
	}

	for _, pt := range parts {
		mt := pt.measures[mi]
		for n, tok := range mt.notes {
			e := &score.Entry{
				ID:        fmt.Sprintf("p%d-m%d-e%d", pt.index+1, mi, n),
				Kind:      tok.kind,
				Part:      pt.index,
				StartBeat: tok.startBeat,
				Beats:     tok.beats,
				Pitch:     tok.pitch,
				Curves:    tok.curves,
			}
			e.Bounds = l.entryBounds(m, lead, pt.index, tok)
			run := runs[gapsBefore(lead, tok.startBeat)]
			run.Entries = append(run.Entries, e)
		}
	}

	out := make([]*score.Fragment, 0, 2*len(runs))
	for i, run := range runs {
		if i > 0 {
			g := lead.gaps[i-1]
			units := g.beat + float64(i-1)
			out = append(out, &score.Fragment{Gap: &score.Gap{
				ID:       fmt.Sprintf("m%d-gap%d", mi, i-1),
				Label:    fmt.Sprintf("%gs", g.ms/1000),
				Duration: timing.Milliseconds(g.ms),
				Bounds:   geom.NewRect(m.Bounds.X+units*l.BeatWidth, m.Bounds.Y, l.BeatWidth, m.Bounds.H),
			}})
		}
		if len(run.Entries) > 0 {
			out = append(out, run)
		}
	}
	return out
}

func (l Layout) entryBounds(m *score.Measure, lead *measureToken, part int, tok *noteToken) geom.Rect {
	rowY := m.Bounds.Y + systemPad + float64(part)*l.PartHeight
	mid := rowY + l.PartHeight/2 - entryHeight/2

	if tok.kind == score.EntryMultiRest {
		return geom.NewRect(m.Bounds.X+entryInset, mid, m.Bounds.W-2*entryInset, entryHeight)
	}

	x := m.Bounds.X + (tok.startBeat+float64(gapsBefore(lead, tok.startBeat)))*l.BeatWidth + entryInset
	y := mid
	if tok.pitch != nil {
		// two pixels per staff step around B4
		y = mid - float64(diatonic(*tok.pitch)-34)*2
		y = math.Min(math.Max(y, rowY), rowY+l.PartHeight-entryHeight)
	}
	return geom.NewRect(x, y, entryWidth, entryHeight)
}

func diatonic(p score.Pitch) int {
	steps := map[string]int{"C": 0, "D": 1, "E": 2, "F": 3, "G": 4, "A": 5, "B": 6}
	return p.Octave*7 + steps[p.Step]
}
