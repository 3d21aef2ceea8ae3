package immersed

import (
	"github.com/finitevolume/ibflow/geometry2d"
)

// CollisionModel is the short-range soft-contact repulsion of the design
// 4.7, stateless beyond its two parameters, grounded on the
// collisionModel_ member ImmersedBoundary.cpp constructs from
// ImmersedBoundaries.Collisions.stiffness/range.
type CollisionModel struct {
	Stiffness float64
	Range float64
}

func NewCollisionModel(stiffness, rng float64) *CollisionModel {
	return &CollisionModel{Stiffness: stiffness, Range: rng}
}

// PairwiseForces returns, for each body in bodies, the sum of
// F_AB = k*max(0, eps-d_AB)^2 * (x_A-x_B)/d_AB over every other body B
// within range, d_AB the minimum distance between the two shapes'
// boundaries.
func (c *CollisionModel) PairwiseForces(bodies []*Body) []geometry2d.Point {
	forces := make([]geometry2d.Point, len(bodies))
	if c == nil {
		return forces
	}
	for i, a := range bodies {
		for j, b := range bodies {
			if i == j {
				continue
			}
			forces[i] = forces[i].Plus(c.pairForce(a, b))
		}
	}
	return forces
}

// pairForce is the force on a from b, using the minimum boundary-to-
// boundary distance between the two shapes as d_AB: the distance
// between centroids reduced by each shape's projection of the other's
// centroid onto its own boundary, exact for circles and a reasonable
// convex approximation for polygons.
func (c *CollisionModel) pairForce(a, b *Body) geometry2d.Point {
	xa, xb := a.Centroid(), b.Centroid()
	sep := xa.Minus(xb)
	centerDist := sep.Mag()
	if centerDist == 0 {
		return geometry2d.Point{}
	}
	rA := xa.Minus(a.Shape.NearestIntersect(xb)).Mag()
	rB := xb.Minus(b.Shape.NearestIntersect(xa)).Mag()
	d := centerDist - rA - rB
	if d >= c.Range {
		return geometry2d.Point{}
	}
	if d < 0 {
		d = 0
	}
	gap := c.Range - d
	mag := c.Stiffness * gap * gap
	return sep.Scaled(mag / centerDist)
}

// WallForces returns, for each body, a repulsive force from whichever
// domain wall is nearest, using the same law with d_AB the distance
// from the body's boundary to that wall.
func (c *CollisionModel) WallForces(bodies []*Body, domain geometry2d.BoundingBox) []geometry2d.Point {
	forces := make([]geometry2d.Point, len(bodies))
	if c == nil {
		return forces
	}
	for i, body := range bodies {
		forces[i] = c.wallForce(body, domain)
	}
	return forces
}

func (c *CollisionModel) wallForce(body *Body, domain geometry2d.BoundingBox) geometry2d.Point {
	xc := body.Centroid()
	type wall struct {
		point geometry2d.Point // nearest point of this wall to xc
		normal geometry2d.Point // normal pointing into the domain, i.e. repulsion direction
	}
	walls := []wall{
		{geometry2d.Point{X: domain.Min.X, Y: xc.Y}, geometry2d.Point{X: 1}},
		{geometry2d.Point{X: domain.Max.X, Y: xc.Y}, geometry2d.Point{X: -1}},
		{geometry2d.Point{X: xc.X, Y: domain.Min.Y}, geometry2d.Point{Y: 1}},
		{geometry2d.Point{X: xc.X, Y: domain.Max.Y}, geometry2d.Point{Y: -1}},
	}
	best := walls[0]
	bestDist := xc.Minus(best.point).Mag()
	for _, w := range walls[1:] {
		d := xc.Minus(w.point).Mag()
		if d < bestDist {
			bestDist = d
			best = w
		}
	}

	bodyRadius := xc.Minus(body.Shape.NearestIntersect(best.point)).Mag()
	d := bestDist - bodyRadius
	if d >= c.Range {
		return geometry2d.Point{}
	}
	if d < 0 {
		d = 0
	}
	gap := c.Range - d
	mag := c.Stiffness * gap * gap
	return best.normal.Scaled(mag)
}
