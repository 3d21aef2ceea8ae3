package gridmesh

import (
	"sync"
	"testing"

	"github.com/finitevolume/ibflow/geometry2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredChannelMeshFaceCounts(t *testing.T) {
	g := NewStructuredChannelMesh(4, 3, 4, 3)
	require.Equal(t, 12, g.NumCells())

	interior, boundary := 0, 0
	for _, f := range g.Faces {
		if f.Neighbor == NoCell {
			boundary++
		} else {
			interior++
		}
	}
	// interior faces: (nx-1)*ny + nx*(ny-1); boundary: 2*nx + 2*ny
	assert.Equal(t, 3*3+4*2, interior)
	assert.Equal(t, 2*4+2*3, boundary)
}

func TestStructuredChannelMeshNeighboursAreSymmetric(t *testing.T) {
	g := NewStructuredChannelMesh(3, 3, 3, 3)
	for id, c := range g.Cells {
		for _, nb := range c.Neighbours {
			found := false
			for _, back := range g.Cells[nb].Neighbours {
				if back == CellID(id) {
					found = true
				}
			}
			assert.True(t, found, "neighbour link %d->%d not reciprocated", id, nb)
		}
	}
}

func TestCellsWithinFindsExpectedCells(t *testing.T) {
	g := NewStructuredChannelMesh(10, 10, 10, 10)
	circle := geometry2d.NewCircle(geometry2d.Point{X: 5, Y: 5}, 2)
	found := g.CellsWithin(circle)
	assert.NotEmpty(t, found)
	for _, id := range found {
		assert.True(t, circle.IsInside(g.Cells[id].Centroid))
	}
	// A cell known to be inside must appear.
	center := g.NearestCell(geometry2d.Point{X: 5, Y: 5})
	assert.Contains(t, found, center)
}

func TestZoneRegistrySingleOwnership(t *testing.T) {
	reg := NewZoneRegistry()
	fluid := reg.NewZone("fluid")
	solid := reg.NewZone("solid")

	fluid.Add(7)
	assert.True(t, fluid.Contains(7))
	assert.Equal(t, fluid, reg.ZoneOf(7))

	solid.Add(7)
	assert.False(t, fluid.Contains(7), "cell must be evicted from its previous zone")
	assert.True(t, solid.Contains(7))
	assert.Equal(t, solid, reg.ZoneOf(7))
}

func TestZoneClearReleasesOwnership(t *testing.T) {
	reg := NewZoneRegistry()
	z := reg.NewZone("ib")
	z.AddAll([]CellID{1, 2, 3})
	require.Equal(t, 3, z.Len())
	z.Clear()
	assert.Equal(t, 0, z.Len())
	assert.Nil(t, reg.ZoneOf(1))
}

func TestCommunicatorReductions(t *testing.T) {
	c := NewCommunicator(4)
	vals := []float64{1, 5, -2, 3}
	assert.Equal(t, 5.0, c.Max(vals))
	assert.Equal(t, -2.0, c.Min(vals))
	assert.Equal(t, 7.0, c.Sum(vals))
}

func TestCommunicatorRunParallelVisitsEveryRank(t *testing.T) {
	c := NewCommunicator(8)
	seen := make([]bool, 8)
	var mu sync.Mutex
	c.RunParallel(func(rank int) {
		mu.Lock()
		seen[rank] = true
		mu.Unlock()
	})
	for i, ok := range seen {
		assert.True(t, ok, "rank %d not visited", i)
	}
}

func TestGatherv(t *testing.T) {
	perRank := [][]int{{1, 2}, {}, {3}}
	got := Gatherv(perRank)
	assert.Equal(t, []int{1, 2, 3}, got)
}
