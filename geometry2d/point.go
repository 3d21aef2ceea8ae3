// Package geometry2d provides the point, polygon, circle and ray
// primitives used to classify grid cells against immersed bodies and to
// build ghost-cell stencils.
package geometry2d

import "math"

// Point is a location in the plane. Internal geometry uses float64
// throughout; conversion to the float32 representation used by the
// visualization stack happens at the boundary (see visualize).
type Point struct {
	X, Y float64
}

func (p Point) Minus(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Plus(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Scaled(s float64) Point {
	return Point{p.X * s, p.Y * s}
}
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64 {
	return p.X*q.Y - p.Y*q.X
}
func (p Point) Mag() float64 { return math.Sqrt(p.X*p.X + p.Y*p.Y) }
func (p Point) MagSqr() float64 { return p.X*p.X + p.Y*p.Y }

func (p Point) Unit() Point {
	m := p.Mag()
	if m == 0 {
		return Point{}
	}
	return Point{p.X / m, p.Y / m}
}

// Rotate returns p rotated by angle radians about the origin.
func (p Point) Rotate(angle float64) Point {
	c, s := math.Cos(angle), math.Sin(angle)
	return Point{p.X*c - p.Y*s, p.X*s + p.Y*c}
}

// Tangent returns the counter-clockwise tangent of a unit vector.
func (p Point) Tangent() Point {
	return Point{-p.Y, p.X}
}

// Angle is the polar angle of p about the origin, in (-pi, pi].
func (p Point) Angle() float64 {
	return math.Atan2(p.Y, p.X)
}

// BoundingBox is an axis-aligned box, used for the broad-phase cell
// search in gridmesh and for the visualization viewport.
type BoundingBox struct {
	Min, Max Point
}

func NewBoundingBox(pts []Point) (bb BoundingBox) {
	if len(pts) == 0 {
		return
	}
	bb.Min, bb.Max = pts[0], pts[0]
	for _, p := range pts[1:] {
		if p.X < bb.Min.X {
			bb.Min.X = p.X
		}
		if p.Y < bb.Min.Y {
			bb.Min.Y = p.Y
		}
		if p.X > bb.Max.X {
			bb.Max.X = p.X
		}
		if p.Y > bb.Max.Y {
			bb.Max.Y = p.Y
		}
	}
	return
}

func (bb BoundingBox) Contains(p Point) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X && p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
}

func (bb BoundingBox) Grow(other BoundingBox) BoundingBox {
	return BoundingBox{
		Min: Point{math.Min(bb.Min.X, other.Min.X), math.Min(bb.Min.Y, other.Min.Y)},
		Max: Point{math.Max(bb.Max.X, other.Max.X), math.Max(bb.Max.Y, other.Max.Y)},
	}
}
