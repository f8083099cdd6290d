package playback

import (
	"sort"

	"github.com/cbegin/scoresync/internal/timing"
)

// Locator maps a time to the index of the frame range that owns it. Range i
// owns [Start, End); the last range also owns its End. Times before the first
// range map to 0 and times past the last map to the last index. An empty
// range list never locates.
type Locator interface {
	Locate(t timing.Duration) (int, bool)
}

func owns(ranges []timing.Range, i int, t timing.Duration) bool {
	r := ranges[i]
	if t.Before(r.Start) {
		return false
	}
	if i == len(ranges)-1 {
		return !t.After(r.End)
	}
	return t.Before(r.End)
}

// edge resolves times outside the covered span.
func edge(ranges []timing.Range, t timing.Duration) (int, bool) {
	if len(ranges) == 0 {
		return -1, true
	}
	if t.Ms() < 0 || t.Before(ranges[0].Start) {
		return 0, true
	}
	if t.After(ranges[len(ranges)-1].End) {
		return len(ranges) - 1, true
	}
	return 0, false
}

// CheapLocator checks only the last located range and its neighbours, which
// covers sequential playback and single steps.
type CheapLocator struct {
	ranges []timing.Range
	last   int
}

func NewCheapLocator(ranges []timing.Range) *CheapLocator {
	return &CheapLocator{ranges: ranges}
}

func (l *CheapLocator) Locate(t timing.Duration) (int, bool) {
	if i, ok := edge(l.ranges, t); ok {
		return i, i >= 0
	}
	for _, i := range [...]int{l.last, l.last + 1, l.last - 1} {
		if i >= 0 && i < len(l.ranges) && owns(l.ranges, i, t) {
			l.last = i
			return i, true
		}
	}
	return -1, false
}

// Remember sets the index the next lookup starts from.
func (l *CheapLocator) Remember(i int) {
	if i >= 0 && i < len(l.ranges) {
		l.last = i
	}
}

type BinarySearchLocator struct {
	ranges []timing.Range
}

func NewBinarySearchLocator(ranges []timing.Range) *BinarySearchLocator {
	return &BinarySearchLocator{ranges: ranges}
}

func (l *BinarySearchLocator) Locate(t timing.Duration) (int, bool) {
	if i, ok := edge(l.ranges, t); ok {
		return i, i >= 0
	}
	// first range starting after t, minus one
	i := sort.Search(len(l.ranges), func(i int) bool {
		return l.ranges[i].Start.After(t)
	}) - 1
	if i < 0 {
		i = 0
	}
	// zero-length ranges share a start; step back to the one that owns t
	for i > 0 && !owns(l.ranges, i, t) {
		i--
	}
	if owns(l.ranges, i, t) {
		return i, true
	}
	return -1, false
}

// FastLocator tries the cheap neighbour check and falls back to binary search, then
// remembers where it landed.
type FastLocator struct {
	cheap    *CheapLocator
	fallback *BinarySearchLocator
}

func NewFastLocator(ranges []timing.Range) *FastLocator {
	return &FastLocator{
		cheap:    NewCheapLocator(ranges),
		fallback: NewBinarySearchLocator(ranges),
	}
}

func (l *FastLocator) Locate(t timing.Duration) (int, bool) {
	if i, ok := l.cheap.Locate(t); ok {
		return i, true
	}
	i, ok := l.fallback.Locate(t)
	if ok {
		l.cheap.Remember(i)
	}
	return i, ok
}

func (l *FastLocator) Remember(i int) { l.cheap.Remember(i) }
