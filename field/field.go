// Package field implements the per-cell/per-face scalar and vector
// fields the fractional-step solver operates on, plus the boundary
// patch handling (FIXED/NORMAL_GRADIENT/SYMMETRY) of
// Solvers/FractionalStep.cpp's correctVelocity.
package field

import "github.com/finitevolume/ibflow/gridmesh"

// BoundaryType selects how a field's face value on a named patch is
// derived from the interior, mirroring
// VectorFiniteVolumeField::{FIXED,NORMAL_GRADIENT,SYMMETRY} in the
// original solver.
type BoundaryType int

const (
	Fixed BoundaryType = iota
	NormalGradient
	Symmetry
)

func (b BoundaryType) String() string {
	switch b {
	case Fixed:
		return "fixed"
	case NormalGradient:
		return "normalGradient"
	case Symmetry:
		return "symmetry"
	default:
		return "unknown"
	}
}

// patchSpec is shared by ScalarField and VectorField.
type patchSpec struct {
	boundaryType map[string]BoundaryType
}

func newPatchSpec() patchSpec {
	return patchSpec{boundaryType: make(map[string]BoundaryType)}
}

// SetBoundaryType binds a patch name (as tagged on gridmesh.Face.Patch)
// to a boundary condition kind.
func (p *patchSpec) SetBoundaryType(patch string, t BoundaryType) {
	p.boundaryType[patch] = t
}

func (p *patchSpec) BoundaryType(patch string) BoundaryType {
	if t, ok := p.boundaryType[patch]; ok {
		return t
	}
	return Fixed
}

// patchesOf enumerates the distinct boundary patch names present in a
// grid, in first-seen order, for iterating "for each patch" the way
// FractionalStep::correctVelocity does.
func patchesOf(g *gridmesh.Grid) []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range g.Faces {
		if f.Neighbor == gridmesh.NoCell && f.Patch != "" && !seen[f.Patch] {
			seen[f.Patch] = true
			names = append(names, f.Patch)
		}
	}
	return names
}
