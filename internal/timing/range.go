package timing

import "fmt"

// Range is a closed interval of time. Start never exceeds End.
type Range struct {
	Start Duration
	End   Duration
}

// NewRange builds a Range, swapping the bounds if they arrive reversed.
func NewRange(start, end Duration) Range {
	if end.Before(start) {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

// Includes reports whether t lies within the range, both ends inclusive.
func (r Range) Includes(t Duration) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

func (r Range) Size() Duration { return r.End.Sub(r.Start) }

// Fraction returns how far t is into the range as a value in [0, 1].
func (r Range) Fraction(t Duration) float64 {
	size := r.Size().Ms()
	if size <= 0 {
		return 0
	}
	f := (t.Ms() - r.Start.Ms()) / size
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// Lerp returns the time alpha of the way through the range.
func (r Range) Lerp(alpha float64) Duration {
	return Milliseconds(r.Start.Ms() + r.Size().Ms()*alpha)
}

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.Start, r.End)
}
