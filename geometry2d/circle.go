package geometry2d

import "math"

// Circle implements Shape directly rather than through Polygon
// approximation, matching the "Circles reuse the same
// interface."
type Circle struct {
	Center Point
	Radius float64
}

func NewCircle(center Point, radius float64) *Circle {
	return &Circle{Center: center, Radius: radius}
}

func (c *Circle) Area() float64 { return math.Pi * c.Radius * c.Radius }

func (c *Circle) Centroid() Point { return c.Center }

func (c *Circle) BoundingBox() BoundingBox {
	r := Point{c.Radius, c.Radius}
	return BoundingBox{Min: c.Center.Minus(r), Max: c.Center.Plus(r)}
}

func (c *Circle) IsInside(p Point) bool {
	return p.Minus(c.Center).MagSqr() <= c.Radius*c.Radius
}

func (c *Circle) NearestIntersect(p Point) Point {
	dir := p.Minus(c.Center)
	if dir.Mag() == 0 {
		dir = Point{1, 0}
	}
	return c.Center.Plus(dir.Unit().Scaled(c.Radius))
}

func (c *Circle) NearestEdgeNormal(p Point) Point {
	return p.Minus(c.Center).Unit()
}

func (c *Circle) Scale(factor float64) { c.Radius *= factor }

func (c *Circle) Rotate(float64) {} // rotation-invariant

func (c *Circle) Intersections(r Ray) []Intersection {
	// |origin + t*dir - center|^2 = R^2
	oc := r.Origin.Minus(c.Center)
	b := 2 * oc.Dot(r.Dir)
	cc := oc.MagSqr() - c.Radius*c.Radius
	disc := b*b - 4*cc
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	t1, t2 := (-b-sq)/2, (-b+sq)/2
	var hits []Intersection
	for _, t := range []float64{t1, t2} {
		if t >= 0 {
			pt := r.At(t)
			hits = append(hits, Intersection{T: t, Point: pt, Normal: pt.Minus(c.Center).Unit()})
		}
	}
	sortIntersections(hits)
	return hits
}
