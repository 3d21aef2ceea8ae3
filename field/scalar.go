package field

import "github.com/finitevolume/ibflow/gridmesh"

// ScalarField is a per-cell + per-face scalar quantity, with a saved
// previous-time-step snapshot for time discretization terms
// (fv::ddt in the original solver).
type ScalarField struct {
	patchSpec
	Name string
	grid *gridmesh.Grid

	cell []float64
	face []float64
	prev []float64

	fixedValue map[string]float64
}

func NewScalarField(g *gridmesh.Grid, name string) *ScalarField {
	return &ScalarField{
		patchSpec: newPatchSpec(),
		Name: name,
		grid: g,
		cell: make([]float64, len(g.Cells)),
		face: make([]float64, len(g.Faces)),
		prev: make([]float64, len(g.Cells)),
		fixedValue: make(map[string]float64),
	}
}

func (f *ScalarField) Cell(id gridmesh.CellID) float64 { return f.cell[id] }
func (f *ScalarField) SetCell(id gridmesh.CellID, v float64) { f.cell[id] = v }
func (f *ScalarField) Face(id gridmesh.FaceID) float64 { return f.face[id] }
func (f *ScalarField) SetFace(id gridmesh.FaceID, v float64) { f.face[id] = v }
func (f *ScalarField) Previous(id gridmesh.CellID) float64 { return f.prev[id] }

func (f *ScalarField) SetFixedValue(patch string, v float64) {
	f.fixedValue[patch] = v
	f.SetBoundaryType(patch, Fixed)
}

// SavePreviousTimeStep snapshots the current cell values, called once
// per step before assembling the ddt term.
func (f *ScalarField) SavePreviousTimeStep() {
	copy(f.prev, f.cell)
}

// InterpolateFaces sets every interior face value to the plain
// arithmetic mean of its owner and neighbour cells, and every boundary
// face value from its patch's boundary type, grounded on
// FaceInterpolation's linear scheme referenced by u.interpolateFaces.
func (f *ScalarField) InterpolateFaces() {
	for i, fc := range f.grid.Faces {
		if fc.Neighbor == gridmesh.NoCell {
			continue
		}
		owner, nb := f.cell[fc.Owner], f.cell[fc.Neighbor]
		f.face[i] = 0.5 * (owner + nb)
	}
	f.SetBoundaryFaces()
}

// SetBoundaryFaces applies each patch's boundary type to compute face
// values from the interior, mirroring p.setBoundaryFaces.
func (f *ScalarField) SetBoundaryFaces() {
	for i, fc := range f.grid.Faces {
		if fc.Neighbor != gridmesh.NoCell {
			continue
		}
		switch f.BoundaryType(fc.Patch) {
		case Fixed:
			f.face[i] = f.fixedValue[fc.Patch]
		case NormalGradient, Symmetry:
			f.face[i] = f.cell[fc.Owner]
		}
	}
}
