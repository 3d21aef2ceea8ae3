package field

import "github.com/finitevolume/ibflow/geometry2d"

// ScalarGradient computes the cell-centred gradient of a ScalarField by
// the Green-Gauss face-sum formula, grad(cell) = (1/V) * sum(phi_face *
// normal * length), the same construction FractionalStep binds as
// gradP = ScalarGradient(p).
type ScalarGradient struct {
	field *ScalarField
	value []geometry2d.Point
}

func NewScalarGradient(f *ScalarField) *ScalarGradient {
	return &ScalarGradient{field: f, value: make([]geometry2d.Point, len(f.grid.Cells))}
}

// Compute recomputes the gradient over every cell of the grid. zoneIDs,
// if non-empty, restricts the computation to that subset (mirroring
// gradP.compute(fluid_) being scoped to the fluid zone).
func (g *ScalarGradient) Compute(zoneIDs []int) {
	var only map[int]bool
	if len(zoneIDs) > 0 {
		only = make(map[int]bool, len(zoneIDs))
		for _, id := range zoneIDs {
			only[id] = true
		}
	}
	for i := range g.value {
		g.value[i] = geometry2d.Point{}
	}
	for _, c := range g.field.grid.Cells {
		if only != nil && !only[int(c.ID)] {
			continue
		}
		var sum geometry2d.Point
		for _, fid := range c.Faces {
			fc := g.field.grid.Faces[fid]
			n := fc.Normal
			if fc.Owner != c.ID {
				n = n.Scaled(-1)
			}
			phi := g.field.Face(fid)
			sum = sum.Plus(n.Scaled(phi * fc.Length))
		}
		g.value[c.ID] = sum.Scaled(1.0 / c.Volume)
	}
}

func (g *ScalarGradient) Cell(id int) geometry2d.Point { return g.value[id] }

// AsVectorField materializes the gradient as a standalone VectorField
// (interior faces filled by interpolation) for callers that expect the
// same Cell/Face API as any other field.
func (g *ScalarGradient) AsVectorField() *VectorField {
	vf := NewVectorField(g.field.grid, g.field.Name+"Grad")
	for i, v := range g.value {
		vf.cell[i] = v
	}
	vf.InterpolateFaces()
	return vf
}
