package immersed

import (
	"errors"
	"testing"

	"github.com/finitevolume/ibflow/field"
	"github.com/finitevolume/ibflow/geometry2d"
	"github.com/finitevolume/ibflow/gridmesh"
	"github.com/finitevolume/ibflow/ibrun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBPValueReproducesGhostCellRelation(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(20, 20, 10, 10)
	fluid := g.Zones.NewZone("fluid")
	for id := range g.Cells {
		fluid.Add(gridmesh.CellID(id))
	}
	circle := geometry2d.NewCircle(geometry2d.Point{X: 5, Y: 5}, 1.5)
	b := NewBody("cyl", 0, circle, 1.0, nil, g)
	require.NoError(t, b.Classify(fluid))

	p := field.NewScalarField(g, "p")
	for id := range g.Cells {
		p.SetCell(gridmesh.CellID(id), 42.0)
	}
	for _, st := range b.Stencils {
		// A uniform field is a fixed point of the ghost relation:
		// phi(x_C) + phi(I) = 2*phi_B.
		assert.InDelta(t, 42.0, st.BPValue(p), 1e-9)
		assert.InDelta(t, 0.0, st.BPGrad(p), 1e-9)
	}
}

func TestFindFluidDonorsPrefersEnclosingBilinearQuad(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(10, 10, 10, 10)
	for id := range g.Cells {
		g.SetStatus(gridmesh.CellID(id), gridmesh.Fluid)
	}
	// start is a neighbour of the quad (i=4,4)-(5,4)-(4,5)-(5,5) rather
	// than one of its corners, so the corner itself is a reachable
	// donor candidate and not excluded as the search origin.
	start := gridmesh.CellID(4*10 + 3)
	donors, weights, err := findFluidDonors(g, start, geometry2d.Point{X: 4.8, Y: 4.8})
	require.NoError(t, err)
	require.Len(t, donors, 4)

	var sum float64
	var reconstructed geometry2d.Point
	for i, id := range donors {
		sum += weights[i]
		reconstructed = reconstructed.Plus(g.Cells[id].Centroid.Scaled(weights[i]))
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 4.8, reconstructed.X, 1e-6)
	assert.InDelta(t, 4.8, reconstructed.Y, 1e-6)
}

func TestFindFluidDonorsErrorsWhenStarved(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(3, 3, 3, 3)
	// Mark every cell solid so no fluid donor can be found.
	for id := range g.Cells {
		g.SetStatus(gridmesh.CellID(id), gridmesh.Solid)
	}
	_, _, err := findFluidDonors(g, 0, geometry2d.Point{X: 1, Y: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ibrun.ErrStencilUnderdetermined))
}

func TestDirichletAndNeumannCoeffsAreConsistent(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(20, 20, 10, 10)
	fluid := g.Zones.NewZone("fluid")
	for id := range g.Cells {
		fluid.Add(gridmesh.CellID(id))
	}
	circle := geometry2d.NewCircle(geometry2d.Point{X: 5, Y: 5}, 1.5)
	b := NewBody("cyl", 0, circle, 1.0, nil, g)
	require.NoError(t, b.Classify(fluid))

	for _, st := range b.Stencils {
		d := st.DirichletCoeffs()
		n := st.NeumannCoeffs()
		require.Equal(t, len(d), len(n))
		assert.Equal(t, 1.0, d[0])
		assert.Equal(t, 1.0, n[0])
		for i := 1; i < len(d); i++ {
			assert.InDelta(t, -d[i], n[i], 1e-12)
		}
	}
}
