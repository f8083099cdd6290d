package score

import (
	"testing"

	"github.com/cbegin/scoresync/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPitchEqualAndString(t *testing.T) {
	cSharp := Pitch{Step: "C", Octave: 4, Accidental: 1}
	assert.True(t, cSharp.Equal(Pitch{Step: "C", Octave: 4, Accidental: 1}))
	assert.False(t, cSharp.Equal(Pitch{Step: "C", Octave: 4}))
	assert.False(t, cSharp.Equal(Pitch{Step: "C", Octave: 5, Accidental: 1}))
	assert.Equal(t, "C#4", cSharp.String())
	assert.Equal(t, "Bbb3", Pitch{Step: "B", Octave: 3, Accidental: -2}.String())
}

func TestEntrySharesCurveWith(t *testing.T) {
	a := &Entry{ID: "a", Curves: []string{"tie1"}}
	b := &Entry{ID: "b", Curves: []string{"slur9", "tie1"}}
	c := &Entry{ID: "c", Curves: []string{"tie2"}}
	gap := &Gap{ID: "g"}

	assert.True(t, a.SharesCurveWith(b))
	assert.True(t, b.SharesCurveWith(a))
	assert.False(t, a.SharesCurveWith(c))
	assert.False(t, a.SharesCurveWith(a))
	assert.False(t, a.SharesCurveWith(gap))
	assert.False(t, gap.SharesCurveWith(a))
}

func TestEntryNotePitch(t *testing.T) {
	rest := &Entry{ID: "r", Kind: EntryRest}
	_, ok := rest.NotePitch()
	assert.False(t, ok)

	note := &Entry{ID: "n", Kind: EntryNote, Pitch: &Pitch{Step: "G", Octave: 5}}
	p, ok := note.NotePitch()
	require.True(t, ok)
	assert.Equal(t, "G5", p.String())
}

func twoSystemDoc() *Document {
	return &Document{
		Parts: []Part{{ID: "P1"}, {ID: "P2"}},
		Systems: []*System{
			{Index: 0, Bounds: geom.NewRect(0, 0, 400, 200), Parts: []geom.Rect{geom.NewRect(0, 10, 400, 60), geom.NewRect(0, 100, 400, 60)}},
			{Index: 1, Bounds: geom.NewRect(0, 220, 400, 200), Parts: []geom.Rect{geom.NewRect(0, 230, 400, 60), geom.NewRect(0, 320, 400, 60)}},
		},
		Measures: []*Measure{
			{Index: 0, System: 0, BPM: 120, Beats: 4},
			{Index: 1, System: 0, BPM: 120, Beats: 4},
			{Index: 2, System: 1, BPM: 120, Beats: 4},
		},
	}
}

func TestDocumentEndsSystem(t *testing.T) {
	doc := twoSystemDoc()
	assert.False(t, doc.EndsSystem(0))
	assert.True(t, doc.EndsSystem(1))
	assert.True(t, doc.EndsSystem(2))
	assert.False(t, doc.EndsSystem(3))
}

func TestDocumentPartSpan(t *testing.T) {
	doc := twoSystemDoc()

	span, ok := doc.PartSpan(doc.System(1), 0, 1)
	require.True(t, ok)
	assert.Equal(t, geom.Span{Min: 230, Max: 380}, span)

	span, ok = doc.PartSpan(doc.System(0), 1, 1)
	require.True(t, ok)
	assert.Equal(t, geom.Span{Min: 100, Max: 160}, span)

	_, ok = doc.PartSpan(doc.System(0), 5, 7)
	assert.False(t, ok)
	_, ok = doc.PartSpan(nil, 0, 0)
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	require.NoError(t, twoSystemDoc().Validate())

	doc := twoSystemDoc()
	doc.Measures[1].Index = 7
	assert.ErrorIs(t, doc.Validate(), ErrInvalidDocument)

	doc = twoSystemDoc()
	doc.Measures[2].BPM = 0
	assert.ErrorIs(t, doc.Validate(), ErrInvalidDocument)

	doc = twoSystemDoc()
	doc.Measures[2].System = 4
	assert.ErrorIs(t, doc.Validate(), ErrInvalidDocument)

	doc = twoSystemDoc()
	doc.Measures[0].Fragments = []*Fragment{{Entries: []*Entry{{ID: "x", Part: 3}}}}
	assert.ErrorIs(t, doc.Validate(), ErrInvalidDocument)

	var nilDoc *Document
	assert.ErrorIs(t, nilDoc.Validate(), ErrInvalidDocument)
}
