// Package immersed implements the ghost-cell immersed boundary object
// (C4), its interpolation stencils (C5), the registry that aggregates
// bodies (C6), and the soft-contact collision model (C7), grounded on
// FiniteVolume/ImmersedBoundary/GhostCellImmersedBoundaryObject.cpp and
// ImmersedBoundary.cpp.
package immersed

import (
	"fmt"
	"math"
	"sort"

	"github.com/finitevolume/ibflow/geometry2d"
	"github.com/finitevolume/ibflow/gridmesh"
	"github.com/finitevolume/ibflow/ibrun"
)

// ScalarSampler and VectorSampler are the minimal read views a stencil
// needs of a field; field.ScalarField and field.VectorField satisfy
// these structurally.
type ScalarSampler interface {
	Cell(gridmesh.CellID) float64
}

type VectorSampler interface {
	Cell(gridmesh.CellID) geometry2d.Point
}

// Stencil is the ghost-cell interpolation of this design: a boundary
// point B, the image point I = C + 2(B-C), and a donor set built by
// walking face-neighbour/diagonal links out from C to find a
// quadrilateral of four fluid cells enclosing I, weighted by bilinear
// shape functions. When no enclosing quad is found within the search
// radius, this falls back to inverse-distance weighting over the
// nearest fluid cells, mirroring GhostCellImmersedBoundaryObject.cpp's
// own "fall back to inverse-distance weighting" branch for fewer than
// four donors.
type Stencil struct {
	Cell gridmesh.CellID
	BoundaryPoint geometry2d.Point
	WallNormal geometry2d.Point
	Image geometry2d.Point
	ImageDist float64
	Donors []gridmesh.CellID
	Weights []float64
}

// maxDonors caps the inverse-distance neighbourhood; this design asks
// for up to four.
const maxDonors = 4

// searchCap bounds the breadth-first donor search.
const searchCap = 24

// NewGhostCellStencil builds the stencil for cell against shape,
// projecting its centroid onto the nearest boundary point.
func NewGhostCellStencil(g *gridmesh.Grid, cell gridmesh.CellID, shape geometry2d.Shape) (*Stencil, error) {
	xC := g.Cells[cell].Centroid
	b := shape.NearestIntersect(xC)
	n := shape.NearestEdgeNormal(b)
	return buildStencilAt(g, cell, b, n)
}

// buildStencilAt is shared by the ghost-cell construction above and by
// contactLineBcs's off-axis probe stencils, which supply
// their own boundary point and probe direction in place of the
// nearest-point/nearest-normal pair.
func buildStencilAt(g *gridmesh.Grid, cell gridmesh.CellID, b, wallNormal geometry2d.Point) (*Stencil, error) {
	xC := g.Cells[cell].Centroid
	image := xC.Plus(b.Minus(xC).Scaled(2))

	donors, weights, err := findFluidDonors(g, cell, image)
	if err != nil {
		return nil, err
	}

	return &Stencil{
		Cell: cell,
		BoundaryPoint: b,
		WallNormal: wallNormal,
		Image: image,
		ImageDist: image.Minus(xC).Mag(),
		Donors: donors,
		Weights: weights,
	}, nil
}

// findFluidDonors locates the donor set for target: first it walks
// face-neighbour/diagonal links out from start looking for a
// quadrilateral of four fluid cells that encloses target, weighted by
// bilinear shape functions (the primary method of this step); if no
// enclosing quad turns up within the search radius it falls back to
// inverse-distance weighting over the nearest fluid cells found by the
// same breadth-first walk.
func findFluidDonors(g *gridmesh.Grid, start gridmesh.CellID, target geometry2d.Point) ([]gridmesh.CellID, []float64, error) {
	candidates := collectFluidCandidates(g, start)
	if len(candidates) < 2 {
		return nil, nil, fmt.Errorf("%w: only %d fluid donors found for cell %d", ibrun.ErrStencilUnderdetermined, len(candidates), start)
	}

	sort.Slice(candidates, func(i, j int) bool {
		di := g.Cells[candidates[i]].Centroid.Minus(target).MagSqr()
		dj := g.Cells[candidates[j]].Centroid.Minus(target).MagSqr()
		return di < dj
	})

	if donors, weights, ok := findEnclosingQuad(g, candidates, target); ok {
		return donors, weights, nil
	}

	donors := inverseDistanceDonors(candidates)
	return donors, inverseDistanceWeights(g, donors, target), nil
}

// collectFluidCandidates breadth-first searches out from start over
// face-neighbours and diagonals, collecting FLUID cells up to
// searchCap.
func collectFluidCandidates(g *gridmesh.Grid, start gridmesh.CellID) []gridmesh.CellID {
	visited := map[gridmesh.CellID]bool{start: true}
	queue := []gridmesh.CellID{start}
	var candidates []gridmesh.CellID

	for len(queue) > 0 && len(candidates) < searchCap {
		id := queue[0]
		queue = queue[1:]
		neighbours := append(append([]gridmesh.CellID{}, g.Neighbours(id)...), g.Diagonals(id)...)
		for _, nb := range neighbours {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			if g.Status(nb) == gridmesh.Fluid {
				candidates = append(candidates, nb)
			}
			queue = append(queue, nb)
		}
	}
	return candidates
}

// findEnclosingQuad tries each fluid candidate as the quad's near
// corner A, walking its diagonal links to find the opposite corner C
// and the two face-neighbours B, D shared by A and C that complete the
// quadrilateral, then inverts the bilinear map for (u,v) and accepts
// the quad if target falls inside it (u,v both in [0,1], to within
// tolerance). Candidates are tried nearest-to-target first so the
// first accepted quad is the tightest one found.
func findEnclosingQuad(g *gridmesh.Grid, candidates []gridmesh.CellID, target geometry2d.Point) ([]gridmesh.CellID, []float64, bool) {
	fluidSet := make(map[gridmesh.CellID]bool, len(candidates))
	for _, id := range candidates {
		fluidSet[id] = true
	}

	for _, a := range candidates {
		for _, c := range g.Diagonals(a) {
			if !fluidSet[c] || c == a {
				continue
			}
			corners := sharedFaceNeighbours(g, a, c, fluidSet)
			if len(corners) < 2 {
				continue
			}
			b, d := corners[0], corners[1]
			u, v, ok := invertBilinear(g.Cells[a].Centroid, g.Cells[b].Centroid, g.Cells[d].Centroid, g.Cells[c].Centroid, target)
			if !ok {
				continue
			}
			donors := []gridmesh.CellID{a, b, d, c}
			weights := []float64{(1 - u) * (1 - v), u * (1 - v), (1 - u) * v, u * v}
			return donors, weights, true
		}
	}
	return nil, nil, false
}

// sharedFaceNeighbours returns the fluid cells that are face-neighbours
// of both a and c, sorted by id for determinism. For a well-formed
// structured quad there are exactly two: the corners B and D that,
// together with a and c, close the quadrilateral.
func sharedFaceNeighbours(g *gridmesh.Grid, a, c gridmesh.CellID, fluidSet map[gridmesh.CellID]bool) []gridmesh.CellID {
	cNeighbours := make(map[gridmesh.CellID]bool, len(g.Neighbours(c)))
	for _, nb := range g.Neighbours(c) {
		cNeighbours[nb] = true
	}
	var shared []gridmesh.CellID
	for _, nb := range g.Neighbours(a) {
		if nb != c && cNeighbours[nb] && fluidSet[nb] {
			shared = append(shared, nb)
		}
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i] < shared[j] })
	return shared
}

// invertBilinear solves target = (1-u)(1-v)*p00 + u(1-v)*p10 +
// (1-u)v*p01 + u*v*p11 for (u,v) by Newton iteration from the quad's
// center, reporting ok=false if the quad is degenerate or target falls
// outside [0,1]x[0,1].
func invertBilinear(p00, p10, p01, p11, target geometry2d.Point) (u, v float64, ok bool) {
	u, v = 0.5, 0.5
	const maxIter = 20
	const tol = 1e-10
	const boundsTol = 1e-6

	for iter := 0; iter < maxIter; iter++ {
		f := p00.Scaled((1 - u) * (1 - v)).
			Plus(p10.Scaled(u * (1 - v))).
			Plus(p01.Scaled((1 - u) * v)).
			Plus(p11.Scaled(u * v)).
			Minus(target)
		if f.MagSqr() < tol*tol {
			break
		}

		dfdu := p10.Minus(p00).Scaled(1 - v).Plus(p11.Minus(p01).Scaled(v))
		dfdv := p01.Minus(p00).Scaled(1 - u).Plus(p11.Minus(p10).Scaled(u))

		det := dfdu.X*dfdv.Y - dfdu.Y*dfdv.X
		if math.Abs(det) < 1e-14 {
			return 0, 0, false
		}
		du := (dfdv.Y*f.X - dfdv.X*f.Y) / det
		dv := (dfdu.X*f.Y - dfdu.Y*f.X) / det
		u -= du
		v -= dv
	}

	if u < -boundsTol || u > 1+boundsTol || v < -boundsTol || v > 1+boundsTol {
		return 0, 0, false
	}
	return u, v, true
}

// inverseDistanceDonors keeps the maxDonors candidates nearest to
// target, candidates already sorted by distance to target.
func inverseDistanceDonors(candidates []gridmesh.CellID) []gridmesh.CellID {
	if len(candidates) > maxDonors {
		candidates = candidates[:maxDonors]
	}
	return candidates
}

// inverseDistanceWeights weights donors by inverse squared distance to
// target so the weights sum to 1, collapsing to a single unit weight
// if a donor centroid coincides with target.
func inverseDistanceWeights(g *gridmesh.Grid, donors []gridmesh.CellID, target geometry2d.Point) []float64 {
	weights := make([]float64, len(donors))
	var sum float64
	const eps = 1e-12
	for i, id := range donors {
		d2 := g.Cells[id].Centroid.Minus(target).MagSqr()
		if d2 < eps {
			for j := range weights {
				weights[j] = 0
			}
			weights[i] = 1
			sum = 1
			break
		}
		weights[i] = 1 / d2
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// Cells returns [C, D1,..., Dk], the row/column set of the BC
// equation this stencil contributes.
func (s *Stencil) Cells() []gridmesh.CellID {
	out := make([]gridmesh.CellID, 0, 1+len(s.Donors))
	out = append(out, s.Cell)
	out = append(out, s.Donors...)
	return out
}

// DirichletCoeffs returns (1, w1,..., wk).
func (s *Stencil) DirichletCoeffs() []float64 {
	out := make([]float64, 0, 1+len(s.Weights))
	out = append(out, 1)
	out = append(out, s.Weights...)
	return out
}

// NeumannCoeffs returns (1, -w1,..., -wk).
func (s *Stencil) NeumannCoeffs() []float64 {
	out := make([]float64, 0, 1+len(s.Weights))
	out = append(out, 1)
	for _, w := range s.Weights {
		out = append(out, -w)
	}
	return out
}

// IPValue evaluates a scalar field at the image point.
func (s *Stencil) IPValue(f ScalarSampler) float64 {
	var v float64
	for i, d := range s.Donors {
		v += s.Weights[i] * f.Cell(d)
	}
	return v
}

// BPValue extrapolates a scalar field to the boundary point using the
// ghost-cell relation phi(x_C) + phi(I) = 2*phi_B, applied uniformly
// regardless of which boundary condition the field itself carries.
func (s *Stencil) BPValue(f ScalarSampler) float64 {
	return 0.5 * (f.Cell(s.Cell) + s.IPValue(f))
}

// BPGrad returns the wall-normal derivative implied by the ghost-cell
// relation, (phi(I)-phi(x_C))/||I-x_C||.
func (s *Stencil) BPGrad(f ScalarSampler) float64 {
	return (s.IPValue(f) - f.Cell(s.Cell)) / s.ImageDist
}

// IPVector, BPVector and BPGradVector are the vector-field analogues,
// used by force integration's shear-stress evaluation.
func (s *Stencil) IPVector(f VectorSampler) geometry2d.Point {
	var v geometry2d.Point
	for i, d := range s.Donors {
		v = v.Plus(f.Cell(d).Scaled(s.Weights[i]))
	}
	return v
}

func (s *Stencil) BPVector(f VectorSampler) geometry2d.Point {
	return f.Cell(s.Cell).Plus(s.IPVector(f)).Scaled(0.5)
}

func (s *Stencil) BPGradVector(f VectorSampler) geometry2d.Point {
	return s.IPVector(f).Minus(f.Cell(s.Cell)).Scaled(1 / s.ImageDist)
}
