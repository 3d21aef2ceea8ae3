package geometry2d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonWindingIsCorrectedToCCW(t *testing.T) {
	// Clockwise square
	cw := []Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	pg, err := NewPolygon(cw)
	require.NoError(t, err)
	assert.Greater(t, pg.Area(), 0.0)
}

func TestPolygonDegenerateRejected(t *testing.T) {
	_, err := NewPolygon([]Point{{0, 0}, {1, 0}})
	require.Error(t, err)

	_, err = NewPolygon([]Point{{0, 0}, {1, 0}, {2, 0}})
	require.Error(t, err)
}

func TestBoxRotate45MatchesDiamond(t *testing.T) {
	box, err := NewBox(Point{0, 0}, 2, 2)
	require.NoError(t, err)
	box.Rotate(math.Pi / 4)

	diamond, err := NewPolygon([]Point{{1.4142135, 0}, {0, 1.4142135}, {-1.4142135, 0}, {0, -1.4142135}})
	require.NoError(t, err)

	probe := []Point{{0, 0}, {1, 0}, {0.9, 0.9}, {1.1, 1.1}, {-0.5, 0.5}}
	for _, p := range probe {
		assert.Equal(t, diamond.IsInside(p), box.IsInside(p), "mismatch at %+v", p)
	}
}

func TestCircleContainsAndNearest(t *testing.T) {
	c := NewCircle(Point{0, 0}, 1)
	assert.True(t, c.IsInside(Point{0.5, 0}))
	assert.False(t, c.IsInside(Point{1.5, 0}))

	np := c.NearestIntersect(Point{2, 0})
	assert.InDelta(t, 1.0, np.X, 1e-9)
	assert.InDelta(t, 0.0, np.Y, 1e-9)
}

func TestPolygonNearestEdgeNormalIsOutward(t *testing.T) {
	sq, err := NewPolygon([]Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}})
	require.NoError(t, err)
	n := sq.NearestEdgeNormal(Point{0.5, -0.1})
	assert.InDelta(t, 0.0, n.X, 1e-9)
	assert.InDelta(t, -1.0, n.Y, 1e-9)
}

func TestRayCircleIntersections(t *testing.T) {
	c := NewCircle(Point{0, 0}, 1)
	r := NewRay(Point{-2, 0}, Point{1, 0})
	hits := c.Intersections(r)
	require.Len(t, hits, 2)
	assert.Less(t, hits[0].T, hits[1].T)
	assert.InDelta(t, -1.0, hits[0].Point.X, 1e-9)
	assert.InDelta(t, 1.0, hits[1].Point.X, 1e-9)
}
