package playback

import (
	"slices"
	"testing"

	"github.com/cbegin/scoresync/internal/score"
	"github.com/stretchr/testify/assert"
)

func measuresWithJumps(jumps ...[]score.Jump) []*score.Measure {
	out := make([]*score.Measure, len(jumps))
	for i, j := range jumps {
		out[i] = &score.Measure{Index: i, BPM: 120, Beats: 4, Jumps: j}
	}
	return out
}

func TestMeasureSequence(t *testing.T) {
	tests := []struct {
		name     string
		measures []*score.Measure
		want     []int
	}{
		{
			name:     "no directives",
			measures: measuresWithJumps(nil, nil, nil),
			want:     []int{0, 1, 2},
		},
		{
			name: "simple repeat",
			measures: measuresWithJumps(
				[]score.Jump{score.RepeatStart{}},
				nil,
				[]score.Jump{score.RepeatEnd{Times: 2}},
			),
			want: []int{0, 1, 2, 0, 1, 2},
		},
		{
			name: "repeat played three times",
			measures: measuresWithJumps(
				[]score.Jump{score.RepeatStart{}},
				[]score.Jump{score.RepeatEnd{Times: 3}},
			),
			want: []int{0, 1, 0, 1, 0, 1},
		},
		{
			name: "unmatched end repeats from the top",
			measures: measuresWithJumps(
				nil,
				nil,
				[]score.Jump{score.RepeatEnd{Times: 2}},
				nil,
			),
			want: []int{0, 1, 2, 0, 1, 2, 3},
		},
		{
			name: "times below two still repeats once",
			measures: measuresWithJumps(
				[]score.Jump{score.RepeatStart{}},
				[]score.Jump{score.RepeatEnd{Times: 0}},
			),
			want: []int{0, 1, 0, 1},
		},
		{
			name: "first and second ending",
			measures: measuresWithJumps(
				[]score.Jump{score.RepeatStart{}},
				nil,
				[]score.Jump{score.RepeatEnding{Times: 1}},
				[]score.Jump{score.RepeatEnding{Times: 1, Terminal: true}},
			),
			want: []int{0, 1, 2, 0, 1, 3},
		},
		{
			name: "three endings",
			measures: measuresWithJumps(
				[]score.Jump{score.RepeatStart{}},
				nil,
				[]score.Jump{score.RepeatEnding{Times: 1}},
				[]score.Jump{score.RepeatEnding{Times: 1}},
				[]score.Jump{score.RepeatEnding{Times: 1, Terminal: true}},
			),
			want: []int{0, 1, 2, 0, 1, 3, 0, 1, 4},
		},
		{
			name: "ending played twice",
			measures: measuresWithJumps(
				[]score.Jump{score.RepeatStart{}},
				nil,
				[]score.Jump{score.RepeatEnding{Times: 2}},
				[]score.Jump{score.RepeatEnding{Times: 1, Terminal: true}},
			),
			want: []int{0, 1, 2, 0, 1, 2, 0, 1, 3},
		},
		{
			name: "nested repeats",
			measures: measuresWithJumps(
				[]score.Jump{score.RepeatStart{}},
				[]score.Jump{score.RepeatStart{}},
				[]score.Jump{score.RepeatEnd{Times: 2}},
				[]score.Jump{score.RepeatEnd{Times: 2}},
			),
			want: []int{0, 1, 2, 1, 2, 3, 0, 1, 2, 1, 2, 3},
		},
		{
			name: "two sections in a row",
			measures: measuresWithJumps(
				[]score.Jump{score.RepeatStart{}},
				[]score.Jump{score.RepeatEnd{Times: 2}},
				[]score.Jump{score.RepeatStart{}},
				[]score.Jump{score.RepeatEnd{Times: 2}},
			),
			want: []int{0, 1, 0, 1, 2, 3, 2, 3},
		},
		{
			name:     "empty",
			measures: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MeasureSequence(tt.measures))
		})
	}
}

func TestMeasureSequenceIteratorSeq(t *testing.T) {
	measures := measuresWithJumps(
		[]score.Jump{score.RepeatStart{}},
		nil,
		[]score.Jump{score.RepeatEnd{Times: 2}},
	)
	got := slices.Collect(NewMeasureSequenceIterator(measures).Seq())
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, got)
}

func TestMeasureSequenceIteratorStopsEarly(t *testing.T) {
	it := NewMeasureSequenceIterator(measuresWithJumps(nil, nil, nil))
	var got []int
	for i := range it.Seq() {
		got = append(got, i)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, got)

	next, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, 2, next)
	_, ok = it.Next()
	assert.False(t, ok)
}

func TestMeasureSequenceIteratorsAreIndependent(t *testing.T) {
	measures := measuresWithJumps(
		[]score.Jump{score.RepeatStart{}},
		[]score.Jump{score.RepeatEnd{Times: 2}},
	)
	first := MeasureSequence(measures)
	second := MeasureSequence(measures)
	assert.Equal(t, first, second)
}
