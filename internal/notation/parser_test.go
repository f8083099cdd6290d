package notation

import (
	"errors"
	"testing"

	"github.com/cbegin/scoresync/internal/geom"
	"github.com/cbegin/scoresync/internal/score"
	"github.com/cbegin/scoresync/internal/timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(m *score.Measure) []*score.Entry {
	var out []*score.Entry
	for _, f := range m.Fragments {
		out = append(out, f.Entries...)
	}
	return out
}

func TestParseBasicMeasures(t *testing.T) {
	doc, err := Parse("t120 l4 c d | e f")
	require.NoError(t, err)
	require.Len(t, doc.Measures, 2)
	require.Len(t, doc.Parts, 1)

	m := doc.Measures[0]
	assert.Equal(t, 120.0, m.BPM)
	assert.Equal(t, 2.0, m.Beats)
	es := entries(m)
	require.Len(t, es, 2)
	assert.Equal(t, "C4", es[0].Pitch.String())
	assert.Equal(t, 0.0, es[0].StartBeat)
	assert.Equal(t, 1.0, es[1].StartBeat)
	assert.Equal(t, 1.0, es[1].Beats)
	assert.Equal(t, 24.0, es[0].Bounds.X)
	assert.Equal(t, 64.0, es[1].Bounds.X)
	assert.Equal(t, "E4", entries(doc.Measures[1])[0].Pitch.String())
}

func TestParseLengthsAndPitches(t *testing.T) {
	doc, err := Parse("c4. d8 e2 | o5 c+ > d- < < e# r")
	require.NoError(t, err)

	first := entries(doc.Measures[0])
	assert.Equal(t, []float64{1.5, 0.5, 2}, []float64{first[0].Beats, first[1].Beats, first[2].Beats})
	assert.Equal(t, 4.0, doc.Measures[0].Beats)

	second := entries(doc.Measures[1])
	require.Len(t, second, 4)
	assert.Equal(t, "C#5", second[0].Pitch.String())
	assert.Equal(t, "Db6", second[1].Pitch.String())
	assert.Equal(t, "E#4", second[2].Pitch.String())
	assert.Equal(t, score.EntryRest, second[3].Kind)
	assert.Nil(t, second[3].Pitch)
}

func TestParseDefaultLength(t *testing.T) {
	doc, err := Parse("l8 c d e f l2 g")
	require.NoError(t, err)
	assert.Equal(t, 4.0, doc.Measures[0].Beats)
	es := entries(doc.Measures[0])
	assert.Equal(t, 0.5, es[0].Beats)
	assert.Equal(t, 2.0, es[4].Beats)
}

func TestParseTempo(t *testing.T) {
	doc, err := Parse("t60 c4 | t90 c4 | c4 t100 d4 | e4")
	require.NoError(t, err)
	require.Len(t, doc.Measures, 4)
	assert.Equal(t, 60.0, doc.Measures[0].BPM)
	assert.Equal(t, 90.0, doc.Measures[1].BPM)
	assert.Equal(t, 90.0, doc.Measures[2].BPM)
	assert.Equal(t, 100.0, doc.Measures[3].BPM)
}

func TestParseRepeats(t *testing.T) {
	doc, err := Parse("|: c1 | d1 :| e1")
	require.NoError(t, err)
	require.Len(t, doc.Measures, 3)
	assert.Equal(t, []score.Jump{score.RepeatStart{}}, doc.Measures[0].Jumps)
	assert.Equal(t, []score.Jump{score.RepeatEnd{Times: 2}}, doc.Measures[1].Jumps)
	assert.Empty(t, doc.Measures[2].Jumps)

	doc, err = Parse("|: c1 :|3")
	require.NoError(t, err)
	assert.Equal(t, []score.Jump{score.RepeatStart{}, score.RepeatEnd{Times: 3}}, doc.Measures[0].Jumps)
}

func TestParseEndings(t *testing.T) {
	doc, err := Parse("|: c1 | [1 d1 | [2! e1")
	require.NoError(t, err)
	require.Len(t, doc.Measures, 3)
	assert.Equal(t, []score.Jump{score.RepeatEnding{Times: 1}}, doc.Measures[1].Jumps)
	assert.Equal(t, []score.Jump{score.RepeatEnding{Times: 2, Terminal: true}}, doc.Measures[2].Jumps)
}

func TestParseMultiRest(t *testing.T) {
	doc, err := Parse("c1 | R3 | d1")
	require.NoError(t, err)
	require.Len(t, doc.Measures, 3)

	m := doc.Measures[1]
	assert.True(t, m.IsMultiRest())
	assert.Equal(t, 3, m.MultiRest)
	assert.Equal(t, 12.0, m.Beats)
	es := entries(m)
	require.Len(t, es, 1)
	assert.Equal(t, score.EntryMultiRest, es[0].Kind)
}

func TestParseGap(t *testing.T) {
	doc, err := Parse("c4 w1500 d4")
	require.NoError(t, err)

	frags := doc.Measures[0].Fragments
	require.Len(t, frags, 3)
	assert.False(t, frags[0].IsGap())
	require.True(t, frags[1].IsGap())
	assert.Equal(t, timing.Milliseconds(1500), frags[1].Gap.Duration)
	assert.Equal(t, "1.5s", frags[1].Gap.Label)
	assert.Equal(t, 1.0, frags[2].Entries[0].StartBeat)
	// the gap takes one beat of width
	assert.Equal(t, 60.0, frags[1].Gap.Bounds.X)
	assert.Equal(t, 104.0, frags[2].Entries[0].Bounds.X)
}

func TestParseTies(t *testing.T) {
	doc, err := Parse("c2 & c2 | c1 & | c1")
	require.NoError(t, err)

	first := entries(doc.Measures[0])
	assert.True(t, first[0].SharesCurveWith(first[1]))

	across := entries(doc.Measures[1])[0]
	next := entries(doc.Measures[2])[0]
	assert.True(t, across.SharesCurveWith(next))
	assert.False(t, first[0].SharesCurveWith(next))
}

func TestParseMultipleParts(t *testing.T) {
	doc, err := Parse("c2 c2 | d1; e1 | f1")
	require.NoError(t, err)
	require.Len(t, doc.Parts, 2)
	assert.Equal(t, "P2", doc.Parts[1].ID)

	es := entries(doc.Measures[0])
	require.Len(t, es, 3)
	assert.Equal(t, 1, es[2].Part)
	system := doc.Systems[0]
	assert.Greater(t, es[2].Bounds.Y, system.Parts[1].Y-1)
	assert.Less(t, es[0].Bounds.Y, system.Parts[1].Y)
}

func TestParseSystems(t *testing.T) {
	p := NewParser(Layout{MeasuresPerSystem: 2})
	doc, err := p.Parse("c1 | d1 | e1")
	require.NoError(t, err)
	require.Len(t, doc.Systems, 2)
	assert.Equal(t, []int{0, 0, 1}, []int{doc.Measures[0].System, doc.Measures[1].System, doc.Measures[2].System})
	assert.Equal(t, 320.0, doc.Systems[0].Bounds.W)
	assert.Equal(t, doc.Systems[0].Bounds.W, doc.Systems[0].Parts[0].W)
	assert.Equal(t, geom.Span{Min: 20, Max: 340}, doc.Systems[0].Bounds.XSpan())

	doc, err = Parse("c1 / d1 | e1")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 1}, []int{doc.Measures[0].System, doc.Measures[1].System, doc.Measures[2].System})
	assert.Greater(t, doc.Systems[1].Bounds.Y, doc.Systems[0].Bounds.Bottom())
}

func TestParseTitleAndComments(t *testing.T) {
	doc, err := Parse("#title Ode\nc1 // first bar\n| d1")
	require.NoError(t, err)
	assert.Equal(t, "Ode", doc.Title)
	assert.Len(t, doc.Measures, 2)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
	}{
		{"unknown token", "c4 x", 3},
		{"zero length", "c0", 1},
		{"lonely colon", "c1 : d", 3},
		{"tie without note", "& c", 0},
		{"dangling tie", "c1 &", 4},
		{"zero tempo", "t0 c", 0},
		{"empty", "", 0},
		{"second part offset", "c1; d1 x", 7},
		{"measure count mismatch", "c1 | d1; e1", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSyntax)
			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.offset, se.Offset)
		})
	}
}
