// Package timing holds the millisecond time values used by the timeline and
// cursor packages.
package timing

import (
	"math"
	"strconv"
	"time"
)

// Duration is an immutable span of time measured in milliseconds.
type Duration struct {
	ms float64
}

func Zero() Duration { return Duration{} }

func Milliseconds(ms float64) Duration { return Duration{ms: ms} }

func Seconds(s float64) Duration { return Duration{ms: s * 1000} }

func Minutes(m float64) Duration { return Duration{ms: m * 60 * 1000} }

// FromStd converts a time.Duration, keeping sub-millisecond precision.
func FromStd(d time.Duration) Duration {
	return Duration{ms: float64(d) / float64(time.Millisecond)}
}

func (d Duration) Ms() float64 { return d.ms }

func (d Duration) Sec() float64 { return d.ms / 1000 }

func (d Duration) Std() time.Duration {
	return time.Duration(d.ms * float64(time.Millisecond))
}

func (d Duration) Add(other Duration) Duration { return Duration{ms: d.ms + other.ms} }

func (d Duration) Sub(other Duration) Duration { return Duration{ms: d.ms - other.ms} }

// Compare returns -1, 0 or 1 when d is shorter than, equal to or longer than other.
func (d Duration) Compare(other Duration) int {
	switch {
	case d.ms < other.ms:
		return -1
	case d.ms > other.ms:
		return 1
	default:
		return 0
	}
}

func (d Duration) Before(other Duration) bool { return d.ms < other.ms }

func (d Duration) After(other Duration) bool { return d.ms > other.ms }

func (d Duration) IsZero() bool { return d.ms == 0 }

func (d Duration) String() string {
	return strconv.FormatFloat(d.ms, 'f', -1, 64) + "ms"
}

// Max returns the longest of ds, or Zero when ds is empty.
func Max(ds ...Duration) Duration {
	if len(ds) == 0 {
		return Zero()
	}
	out := ds[0]
	for _, d := range ds[1:] {
		if d.ms > out.ms {
			out = d
		}
	}
	return out
}

func Sum(ds ...Duration) Duration {
	var total float64
	for _, d := range ds {
		total += d.ms
	}
	return Duration{ms: total}
}

// Clamp limits d to [lo, hi].
func Clamp(d, lo, hi Duration) Duration {
	return Duration{ms: math.Min(math.Max(d.ms, lo.ms), hi.ms)}
}

// coalesceMs is the grid every beat-derived duration is snapped to. Voices
// whose transitions land within the same grid cell share one moment.
const coalesceMs = 100

// BeatsToDuration converts a beat count at the given tempo to real time,
// rounded to the nearest 100ms.
func BeatsToDuration(beats, bpm float64) Duration {
	if bpm <= 0 || beats <= 0 {
		return Zero()
	}
	ms := Minutes(beats / bpm).ms
	return Duration{ms: math.Round(ms/coalesceMs) * coalesceMs}
}
