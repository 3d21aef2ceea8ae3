package field

import (
	"testing"

	"github.com/finitevolume/ibflow/geometry2d"
	"github.com/finitevolume/ibflow/gridmesh"
	"github.com/stretchr/testify/assert"
)

func TestScalarFieldInterpolateFacesInterior(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(2, 1, 2, 1)
	p := NewScalarField(g, "p")
	p.SetCell(0, 1.0)
	p.SetCell(1, 3.0)
	p.InterpolateFaces()

	for _, f := range g.Faces {
		if f.Neighbor != gridmesh.NoCell {
			assert.InDelta(t, 2.0, p.Face(f.ID), 1e-12)
		}
	}
}

func TestScalarFieldFixedBoundary(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(2, 1, 2, 1)
	p := NewScalarField(g, "p")
	p.SetFixedValue("inlet", 5.0)
	p.SetBoundaryFaces()

	for _, f := range g.Faces {
		if f.Patch == "inlet" {
			assert.Equal(t, 5.0, p.Face(f.ID))
		}
	}
}

func TestVectorFieldSymmetryReflectsNormalComponent(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(1, 1, 1, 1)
	u := NewVectorField(g, "u")
	u.SetBoundaryType("top", Symmetry)
	u.SetCell(0, geometry2d.Point{X: 1, Y: 2})
	u.SetBoundaryFaces()

	for _, f := range g.Faces {
		if f.Patch == "top" {
			v := u.Face(f.ID)
			assert.InDelta(t, 1.0, v.X, 1e-9)
			assert.InDelta(t, 0.0, v.Y, 1e-9) // normal (0,1) component removed
		}
	}
}

func TestScalarGradientOfLinearFieldIsConstant(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(4, 4, 4, 4)
	p := NewScalarField(g, "p")
	for _, c := range g.Cells {
		p.SetCell(c.ID, c.Centroid.X) // p = x
	}
	p.SetFixedValue("inlet", 0)
	p.SetFixedValue("outlet", 4)
	p.SetBoundaryType("top", NormalGradient)
	p.SetBoundaryType("bottom", NormalGradient)
	p.InterpolateFaces()

	grad := NewScalarGradient(p)
	grad.Compute(nil)

	// interior cells should read grad ~ (1, 0)
	mid := g.NearestCell(geometry2d.Point{X: 2, Y: 2})
	gv := grad.Cell(int(mid))
	assert.InDelta(t, 1.0, gv.X, 0.2)
	assert.InDelta(t, 0.0, gv.Y, 0.2)
}
