package immersed

import (
	"testing"

	"github.com/finitevolume/ibflow/geometry2d"
	"github.com/finitevolume/ibflow/gridmesh"
	"github.com/stretchr/testify/assert"
)

func twoBodies(g *gridmesh.Grid, dx float64) (*Body, *Body) {
	a := geometry2d.NewCircle(geometry2d.Point{X: 5, Y: 5}, 1.0)
	b := geometry2d.NewCircle(geometry2d.Point{X: 5 + dx, Y: 5}, 1.0)
	return NewBody("a", 0, a, 1.0, nil, g), NewBody("b", 1, b, 1.0, nil, g)
}

func TestPairwiseForceZeroOutsideRange(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(20, 20, 20, 20)
	a, b := twoBodies(g, 10)
	model := NewCollisionModel(1e-4, 0.05)
	forces := model.PairwiseForces([]*Body{a, b})
	assert.Equal(t, geometry2d.Point{}, forces[0])
	assert.Equal(t, geometry2d.Point{}, forces[1])
}

func TestPairwiseForceIsRepulsiveWhenClose(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(20, 20, 20, 20)
	a, b := twoBodies(g, 2.02)
	model := NewCollisionModel(1e-2, 0.05)
	forces := model.PairwiseForces([]*Body{a, b})
	assert.Less(t, forces[0].X, 0.0, "a is left of b, should be pushed further left")
	assert.Greater(t, forces[1].X, 0.0, "b is right of a, should be pushed further right")
}

func TestPairwiseForceSatisfiesNewtonsThirdLaw(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(20, 20, 20, 20)
	a, b := twoBodies(g, 2.01)
	model := NewCollisionModel(1e-2, 0.05)
	forces := model.PairwiseForces([]*Body{a, b})
	sum := forces[0].Plus(forces[1])
	assert.InDelta(t, 0.0, sum.X, 1e-9)
	assert.InDelta(t, 0.0, sum.Y, 1e-9)
}

func TestWallForceRepelsFromNearestWall(t *testing.T) {
	domain := geometry2d.BoundingBox{Min: geometry2d.Point{}, Max: geometry2d.Point{X: 10, Y: 10}}
	g := gridmesh.NewStructuredChannelMesh(20, 20, 10, 10)
	near := geometry2d.NewCircle(geometry2d.Point{X: 0.3, Y: 5}, 0.2)
	body := NewBody("near-wall", 0, near, 1.0, nil, g)
	model := NewCollisionModel(1e-2, 0.2)
	forces := model.WallForces([]*Body{body}, domain)
	assert.Greater(t, forces[0].X, 0.0, "should be pushed away from the min-x wall")
}
