package field

import (
	"github.com/finitevolume/ibflow/geometry2d"
	"github.com/finitevolume/ibflow/gridmesh"
)

// VectorField is the vector analogue of ScalarField, used for velocity
// u and the pressure gradient gradP.
type VectorField struct {
	patchSpec
	Name string
	grid *gridmesh.Grid

	cell []geometry2d.Point
	face []geometry2d.Point
	prev []geometry2d.Point

	fixedValue map[string]geometry2d.Point
}

func NewVectorField(g *gridmesh.Grid, name string) *VectorField {
	return &VectorField{
		patchSpec: newPatchSpec(),
		Name: name,
		grid: g,
		cell: make([]geometry2d.Point, len(g.Cells)),
		face: make([]geometry2d.Point, len(g.Faces)),
		prev: make([]geometry2d.Point, len(g.Cells)),
		fixedValue: make(map[string]geometry2d.Point),
	}
}

func (f *VectorField) Cell(id gridmesh.CellID) geometry2d.Point { return f.cell[id] }
func (f *VectorField) SetCell(id gridmesh.CellID, v geometry2d.Point) { f.cell[id] = v }
func (f *VectorField) Face(id gridmesh.FaceID) geometry2d.Point { return f.face[id] }
func (f *VectorField) SetFace(id gridmesh.FaceID, v geometry2d.Point) { f.face[id] = v }
func (f *VectorField) Previous(id gridmesh.CellID) geometry2d.Point { return f.prev[id] }

func (f *VectorField) SetFixedValue(patch string, v geometry2d.Point) {
	f.fixedValue[patch] = v
	f.SetBoundaryType(patch, Fixed)
}

func (f *VectorField) SavePreviousTimeStep() {
	copy(f.prev, f.cell)
}

func (f *VectorField) InterpolateFaces() {
	for i, fc := range f.grid.Faces {
		if fc.Neighbor == gridmesh.NoCell {
			continue
		}
		f.face[i] = f.cell[fc.Owner].Plus(f.cell[fc.Neighbor]).Scaled(0.5)
	}
	f.SetBoundaryFaces()
}

// SetBoundaryFaces implements the three boundary kinds
// correctVelocity switches on: FIXED leaves the prescribed value,
// NORMAL_GRADIENT copies the owner cell value (zero-gradient), and
// SYMMETRY reflects out the wall-normal component.
func (f *VectorField) SetBoundaryFaces() {
	for i, fc := range f.grid.Faces {
		if fc.Neighbor != gridmesh.NoCell {
			continue
		}
		switch f.BoundaryType(fc.Patch) {
		case Fixed:
			f.face[i] = f.fixedValue[fc.Patch]
		case NormalGradient:
			f.face[i] = f.cell[fc.Owner]
		case Symmetry:
			owner := f.cell[fc.Owner]
			n := fc.Normal
			normalComp := owner.Dot(n)
			f.face[i] = owner.Minus(n.Scaled(normalComp))
		}
	}
}
