package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cbegin/scoresync/internal/cursor"
	"github.com/cbegin/scoresync/internal/notation"
	"github.com/cbegin/scoresync/internal/playback"
	"github.com/cbegin/scoresync/internal/score"
	"github.com/cbegin/scoresync/internal/timing"
)

func mustParse(t *testing.T, src string) *score.Document {
	t.Helper()
	doc, err := notation.Parse(src)
	require.NoError(t, err)
	return doc
}

func render(t *testing.T, f Format, doc Document) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f, doc))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"text", FormatText},
		{"", FormatText},
		{"JSON", FormatJSON},
		{" yaml ", FormatYAML},
		{"yml", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.ErrorIs(t, Write(&bytes.Buffer{}, Format("xml"), &SequenceDoc{}), ErrUnknownFormat)
}

func TestTimelineText(t *testing.T) {
	doc := mustParse(t, "#title Ode\nt120 c4 c4")
	out := render(t, FormatText, NewTimelineDoc(doc, playback.NewTimeline(doc, 0)))

	assert.Equal(t, strings.Join([]string{
		"# Ode",
		"part 0 (P1), 3 moments, 1,000ms",
		"[0ms] start(p1-m0-e0@m0)",
		"[500ms] stop(p1-m0-e0@m0) start(p1-m0-e1@m0)",
		"[1,000ms] stop(p1-m0-e1@m0) systemend(s0)",
	}, "\n")+"\n", out)
}

func TestTimelineJSON(t *testing.T) {
	doc := mustParse(t, "t120 c4 c4")
	out := render(t, FormatJSON, NewTimelineDoc(doc, playback.NewTimeline(doc, 0)))

	var decoded struct {
		PartID     string  `json:"part_id"`
		DurationMs float64 `json:"duration_ms"`
		Moments    []struct {
			TimeMs float64 `json:"time_ms"`
			Events []map[string]any
		} `json:"moments"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "P1", decoded.PartID)
	assert.Equal(t, 1000.0, decoded.DurationMs)
	require.Len(t, decoded.Moments, 3)
	assert.Equal(t, 500.0, decoded.Moments[1].TimeMs)
	assert.Equal(t, map[string]any{"kind": "stop", "element": "p1-m0-e0", "measure": 0.0}, decoded.Moments[1].Events[0])
	assert.Equal(t, map[string]any{"kind": "systemend", "system": 0.0}, decoded.Moments[2].Events[1])
	assert.Contains(t, out, "\n  \"part\": 0,")
}

func TestTimelineYAML(t *testing.T) {
	doc := mustParse(t, "t120 c4 c4")
	out := render(t, FormatYAML, NewTimelineDoc(doc, playback.NewTimeline(doc, 0)))

	var decoded TimelineDoc
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 1000.0, decoded.DurationMs)
	require.Len(t, decoded.Moments, 3)
	ev := decoded.Moments[2].Events[1]
	assert.Equal(t, "systemend", ev.Kind)
	require.NotNil(t, ev.System)
	assert.Equal(t, 0, *ev.System)
	assert.Nil(t, ev.Measure)
}

func TestFramesTextWithHints(t *testing.T) {
	doc := mustParse(t, "t120 c4 c4")
	frames := playback.NewFrames(doc, playback.NewTimeline(doc, 0))
	out := render(t, FormatText, NewFramesDoc(doc, 0, frames, true))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "part 0 (P1), 2 frames", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "#0 [0ms, 500ms) x=24..64 "), lines[1])
	assert.Contains(t, lines[1], "m0 active=[p1-m0-e0] hints=[start(p1-m0-e0)]")
	assert.True(t, strings.HasPrefix(lines[2], "#1 [500ms, 1,000ms) x=64.."), lines[2])
	assert.Contains(t, lines[2], "hints=[stop(p1-m0-e0) start(p1-m0-e1) retrigger(p1-m0-e0->p1-m0-e1)]")
}

func TestFramesWithoutHints(t *testing.T) {
	doc := mustParse(t, "t120 c4 c4")
	frames := playback.NewFrames(doc, playback.NewTimeline(doc, 0))
	fd := NewFramesDoc(doc, 0, frames, false)

	require.Len(t, fd.Frames, 2)
	assert.Nil(t, fd.Frames[1].Hints)
	assert.Equal(t, []string{"p1-m0-e1"}, fd.Frames[1].Active)
	assert.NotContains(t, render(t, FormatJSON, fd), "hints")
}

func TestDescribeHint(t *testing.T) {
	a := &score.Entry{ID: "a"}
	b := &score.Entry{ID: "b"}
	assert.Equal(t, "start(a)", DescribeHint(playback.StartHint{Element: a}))
	assert.Equal(t, "stop(b)", DescribeHint(playback.StopHint{Element: b}))
	assert.Equal(t, "sustain(a->b)", DescribeHint(playback.SustainHint{From: a, To: b}))
	assert.Equal(t, "retrigger(b->a)", DescribeHint(playback.RetriggerHint{From: b, To: a}))
}

func TestTrace(t *testing.T) {
	doc := mustParse(t, "t120 c4 c4")
	c := cursor.New(playback.NewFrames(doc, playback.NewTimeline(doc, 0)))

	trace, err := NewTraceDoc(doc, 0, c, timing.Milliseconds(250))
	require.NoError(t, err)

	type step struct {
		time  float64
		index int
		alpha float64
	}
	var got []step
	for _, s := range trace.Steps {
		got = append(got, step{s.TimeMs, s.Index, s.Alpha})
	}
	assert.Equal(t, []step{
		{0, 0, 0},
		{250, 0, 0.5},
		{500, 1, 0},
		{750, 1, 0.5},
		{1000, 1, 1},
	}, got)
	assert.Equal(t, 0, trace.Steps[0].Measure)
	assert.Equal(t, 24.0, trace.Steps[0].X)

	out := render(t, FormatText, trace)
	assert.Contains(t, out, "[250ms] frame=0 alpha=0.500 m0 rect=(44,")
}

func TestTraceLastStepLandsOnDuration(t *testing.T) {
	doc := mustParse(t, "t120 c4 c4")
	c := cursor.New(playback.NewFrames(doc, playback.NewTimeline(doc, 0)))

	trace, err := NewTraceDoc(doc, 0, c, timing.Milliseconds(300))
	require.NoError(t, err)
	require.Len(t, trace.Steps, 5)
	assert.Equal(t, 1000.0, trace.Steps[4].TimeMs)

	_, err = NewTraceDoc(doc, 0, c, timing.Zero())
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestSequence(t *testing.T) {
	doc := mustParse(t, "|: c1 | d1 :| e1")
	seq := NewSequenceDoc(doc)
	assert.Equal(t, []int{0, 1, 0, 1, 2}, seq.Measures)
	assert.Equal(t, "5 measures: 0 1 0 1 2\n", render(t, FormatText, seq))
	assert.Equal(t, "measures: [0, 1, 0, 1, 2]\n", render(t, FormatYAML, seq))
}
