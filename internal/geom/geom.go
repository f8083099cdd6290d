// Package geom holds the pixel geometry shared by layout consumers.
package geom

import "math"

type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

func NewRect(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }

func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

func (r Rect) XSpan() Span { return Span{Min: r.Left(), Max: r.Right()} }
func (r Rect) YSpan() Span { return Span{Min: r.Top(), Max: r.Bottom()} }

// Contains reports whether other lies entirely inside r.
func (r Rect) Contains(other Rect) bool {
	return other.Left() >= r.Left() && other.Right() <= r.Right() &&
		other.Top() >= r.Top() && other.Bottom() <= r.Bottom()
}

// Has reports whether p lies in r. The right and bottom edges are outside.
func (r Rect) Has(p Point) bool {
	return p.X >= r.Left() && p.X < r.Right() && p.Y >= r.Top() && p.Y < r.Bottom()
}

// Inset shrinks r by d on every side. It never goes below zero size.
func (r Rect) Inset(d float64) Rect {
	w := math.Max(r.W-2*d, 0)
	h := math.Max(r.H-2*d, 0)
	return Rect{X: r.X + d, Y: r.Y + d, W: w, H: h}
}

func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Union returns the smallest rectangle covering r and other.
func (r Rect) Union(other Rect) Rect {
	left := math.Min(r.Left(), other.Left())
	top := math.Min(r.Top(), other.Top())
	right := math.Max(r.Right(), other.Right())
	bottom := math.Max(r.Bottom(), other.Bottom())
	return Rect{X: left, Y: top, W: right - left, H: bottom - top}
}

// Span is a closed interval along one axis.
type Span struct {
	Min, Max float64
}

func (s Span) Size() float64 { return s.Max - s.Min }

// Lerp returns the coordinate alpha of the way from Min to Max.
func (s Span) Lerp(alpha float64) float64 { return s.Min + (s.Max-s.Min)*alpha }

func (s Span) Has(v float64) bool { return v >= s.Min && v <= s.Max }

func (s Span) Union(other Span) Span {
	return Span{Min: math.Min(s.Min, other.Min), Max: math.Max(s.Max, other.Max)}
}
