// Package geom provides the plain geometry used for block placement and
// attach-target hit testing.
//
// All coordinates are canvas pixels with the origin at the top-left corner:
// Left grows to the right and Top grows downward.
package geom

import "math"

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns p translated by d.
func (p Point) Add(d Point) Point { return Point{X: p.X + d.X, Y: p.Y + d.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// IsZero reports whether either dimension is zero.
func (s Size) IsZero() bool { return s.Width == 0 || s.Height == 0 }

// Scale returns s multiplied uniformly by f.
func (s Size) Scale(f float64) Size { return Size{Width: s.Width * f, Height: s.Height * f} }

// Rect is an axis-aligned rectangle described by its top-left corner and extent.
type Rect struct {
	Left   float64 `json:"left" yaml:"left"`
	Top    float64 `json:"top" yaml:"top"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// RectAt builds a Rect from a position and a size.
func RectAt(p Point, s Size) Rect {
	return Rect{Left: p.X, Top: p.Y, Width: s.Width, Height: s.Height}
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.Left, Y: r.Top} }

// Size returns the rectangle extent.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Center returns the center point.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	r.Left += d.X
	r.Top += d.Y
	return r
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Overlaps reports whether a and b intersect. Touching edges count as an
// overlap, matching the attach rule used while dragging.
func Overlaps(a, b Rect) bool {
	return !(b.Right() < a.Left ||
		b.Left > a.Right() ||
		b.Bottom() < a.Top ||
		b.Top > a.Bottom())
}

// Overlaps is the method form of [Overlaps].
func (r Rect) Overlaps(o Rect) bool { return Overlaps(r, o) }

// Union returns the smallest rectangle containing both a and b.
func Union(a, b Rect) Rect {
	left := math.Min(a.Left, b.Left)
	top := math.Min(a.Top, b.Top)
	right := math.Max(a.Right(), b.Right())
	bottom := math.Max(a.Bottom(), b.Bottom())
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Bounds returns the union of all rects, or the zero Rect for no input.
func Bounds(rects ...Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	out := rects[0]
	for _, r := range rects[1:] {
		out = Union(out, r)
	}
	return out
}
