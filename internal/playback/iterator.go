// Package playback turns a laid-out score into real-time playback data: the
// measure order after repeats, the timeline of note transitions, the cursor
// frames derived from it, and the locators that map a time to a frame.
package playback

import (
	"fmt"
	"iter"

	"github.com/cbegin/scoresync/internal/score"
)

// maxSequenceSteps bounds one iteration pass. Repeat counters are finite, so
// hitting it means the repeat table is corrupt.
const maxSequenceSteps = 1 << 20

// repeat is one backward jump. Templates are built once per document; the
// iterator works on clones so every pass gets a fresh countdown.
type repeat struct {
	id        int
	from      int
	to        int
	times     int // jumps remaining
	excluding map[int]bool
}

func (r *repeat) clone() *repeat {
	c := *r
	return &c
}

// MeasureSequenceIterator yields measure indexes in playback order.
type MeasureSequenceIterator struct {
	count   int
	repeats []*repeat
	active  []*repeat
	index   int
	steps   int
}

func NewMeasureSequenceIterator(measures []*score.Measure) *MeasureSequenceIterator {
	return &MeasureSequenceIterator{
		count:   len(measures),
		repeats: scanRepeats(measures),
	}
}

// MeasureSequence returns the full playback order of measures.
func MeasureSequence(measures []*score.Measure) []int {
	return NewMeasureSequenceIterator(measures).All()
}

func scanRepeats(measures []*score.Measure) []*repeat {
	var (
		out     []*repeat
		starts  []int
		endings []int
	)
	add := func(from, to, times int, excluding map[int]bool) {
		out = append(out, &repeat{id: len(out), from: from, to: to, times: times, excluding: excluding})
	}
	for i, m := range measures {
		for _, jump := range m.Jumps {
			switch j := jump.(type) {
			case score.RepeatStart:
				starts = append(starts, i)
				endings = nil
			case score.RepeatEnd:
				from := 0
				if n := len(starts); n > 0 {
					from = starts[n-1]
					starts = starts[:n-1]
				}
				add(from, i, max(j.Times, 2)-1, nil)
				endings = nil
			case score.RepeatEnding:
				from := 0
				if n := len(starts); n > 0 {
					from = starts[n-1]
				}
				if j.Terminal {
					if n := len(starts); n > 0 {
						starts = starts[:n-1]
					}
					endings = nil
					continue
				}
				prior := make(map[int]bool)
				for _, e := range endings {
					if e >= from && e < i {
						prior[e] = true
					}
				}
				if j.Times > 1 {
					add(from, i, j.Times-1, prior)
				}
				final := make(map[int]bool, len(prior)+1)
				for e := range prior {
					final[e] = true
				}
				final[i] = true
				add(from, i, 1, final)
				endings = append(endings, i)
			}
		}
	}
	return out
}

// Next returns the next measure index to play, or false once playback is
// complete.
func (it *MeasureSequenceIterator) Next() (int, bool) {
	for it.index < it.count {
		it.steps++
		if it.steps > maxSequenceSteps {
			panic(fmt.Sprintf("playback: measure sequence did not terminate after %d steps", maxSequenceSteps))
		}
		i := it.index
		top := it.top()

		if top != nil && top.excluding[i] {
			if top.to == i {
				it.pop()
			}
			it.index++
			continue
		}

		if top != nil && top.to == i {
			if top.times > 0 {
				top.times--
				it.index = top.from
				return i, true
			}
			if next := it.chained(top); next != nil {
				r := next.clone()
				r.times--
				it.active[len(it.active)-1] = r
				it.index = r.from
				return i, true
			}
			it.pop()
			it.index++
			return i, true
		}

		if start := it.starting(i); start != nil {
			r := start.clone()
			r.times--
			it.active = append(it.active, r)
			it.index = r.from
			return i, true
		}

		it.index++
		return i, true
	}
	return 0, false
}

// All drains the iterator.
func (it *MeasureSequenceIterator) All() []int {
	var out []int
	for {
		i, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, i)
	}
}

// Seq drains the iterator as a range-over-func sequence.
func (it *MeasureSequenceIterator) Seq() iter.Seq[int] {
	return func(yield func(int) bool) {
		for {
			i, ok := it.Next()
			if !ok || !yield(i) {
				return
			}
		}
	}
}

func (it *MeasureSequenceIterator) top() *repeat {
	if len(it.active) == 0 {
		return nil
	}
	return it.active[len(it.active)-1]
}

func (it *MeasureSequenceIterator) pop() {
	it.active = it.active[:len(it.active)-1]
}

// chained finds the repeat that takes over once r is exhausted at the same
// measure, e.g. the last pass of an ending played more than once.
func (it *MeasureSequenceIterator) chained(r *repeat) *repeat {
	for _, cand := range it.repeats {
		if cand.id > r.id && cand.to == r.to && cand.times > 0 {
			return cand
		}
	}
	return nil
}

func (it *MeasureSequenceIterator) starting(i int) *repeat {
	for _, cand := range it.repeats {
		if cand.to == i && cand.times > 0 {
			return cand
		}
	}
	return nil
}
