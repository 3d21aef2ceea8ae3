package immersed

import (
	"fmt"
	"math"
	"sort"

	"github.com/finitevolume/ibflow/equation"
	"github.com/finitevolume/ibflow/field"
	"github.com/finitevolume/ibflow/geometry2d"
	"github.com/finitevolume/ibflow/gridmesh"
	"github.com/finitevolume/ibflow/ibrun"
	"github.com/finitevolume/ibflow/motion"
)

// Method tags the IB variant a Body implements. Per this design, variants
// share one capability set and are modeled as a tag plus a dispatch
// table rather than an inheritance hierarchy; only MethodGhostCell is
// implemented; the rest are configuration errors until built out.
type Method int

const (
	MethodGhostCell Method = iota
	MethodStep
	MethodQuadratic
	MethodHighOrder
)

// BCKind is a per-field boundary condition kind, the
// {fixed, normal_gradient, partial_slip}.
type BCKind int

const (
	BCFixed BCKind = iota
	BCNormalGradient
	BCPartialSlip
)

// Body is one immersed boundary object: an owned shape,
// density, optional motion, the ib and solid cell zones of the grid's
// zone registry, the dead and fresh bookkeeping sets (kept in a registry
// of their own, so listing a cell there does not evict it from any grid
// zone), and the stencils owned by its ibCells.
type Body struct {
	Name string
	ID int
	Shape geometry2d.Shape
	Rho float64
	Motion motion.Motion
	Method Method

	Grid *gridmesh.Grid

	IBCells *gridmesh.CellZone
	SolidCells *gridmesh.CellZone
	DeadCells *gridmesh.CellZone
	FreshCells *gridmesh.CellZone

	Stencils map[gridmesh.CellID]*Stencil

	boundaryKind map[string]BCKind
	boundaryValue map[string]float64

	Theta float64
	ElapsedTime float64
	Force geometry2d.Point
	Torque float64
}

func NewBody(name string, id int, shape geometry2d.Shape, rho float64, m motion.Motion, g *gridmesh.Grid) *Body {
	bookkeeping := gridmesh.NewZoneRegistry()
	return &Body{
		Name: name,
		ID: id,
		Shape: shape,
		Rho: rho,
		Motion: m,
		Method: MethodGhostCell,
		Grid: g,
		IBCells: g.Zones.NewZone(name + ".ib"),
		SolidCells: g.Zones.NewZone(name + ".solid"),
		DeadCells: bookkeeping.NewZone(name + ".dead"),
		FreshCells: bookkeeping.NewZone(name + ".fresh"),
		Stencils: make(map[gridmesh.CellID]*Stencil),
		boundaryKind: make(map[string]BCKind),
		boundaryValue: make(map[string]float64),
	}
}

func (b *Body) SetBoundary(fieldName string, kind BCKind, value float64) {
	b.boundaryKind[fieldName] = kind
	b.boundaryValue[fieldName] = value
}

func (b *Body) Centroid() geometry2d.Point { return b.Shape.Centroid() }

// Classify runs the per-step cell classification of this design. fluid
// is the shared "fluid" zone every unclaimed cell belongs to.
func (b *Body) Classify(fluid *gridmesh.CellZone) error {
	if b.Method != MethodGhostCell {
		return fmt.Errorf("%w: method %v not implemented", ibrun.ErrInvalidConfiguration, b.Method)
	}

	// Step 1: capture the set this body occupies on entry — the only
	// point at which b.IBCells/b.SolidCells hold last step's
	// classification — then return those cells to fluid so they're
	// candidates for reclassification below.
	prev := make(map[gridmesh.CellID]bool)
	for _, id := range append(b.IBCells.Cells(), b.SolidCells.Cells()...) {
		prev[id] = true
		fluid.Add(id)
	}

	// Step 2: clear (Add above already evicted ibCells/solidCells; deadCells is ours to clear).
	b.DeadCells.Clear()

	// Step 3: candidate cells are fluid-zone cells inside the shape.
	candidates := b.Grid.CellsWithin(b.Shape)
	fluidCandidates := candidates[:0]
	for _, id := range candidates {
		if fluid.Contains(id) {
			fluidCandidates = append(fluidCandidates, id)
		}
	}

	// Step 4: classify IB vs SOLID.
	for _, id := range fluidCandidates {
		if b.isIBCell(id) {
			b.IBCells.Add(id)
			b.Grid.SetStatus(id, gridmesh.IBCell)
		} else {
			b.SolidCells.Add(id)
			b.Grid.SetStatus(id, gridmesh.Solid)
		}
	}

	// Step 5: fresh-cell detection (SeedFreshScalar/SeedFreshVector do
	// the seeding). A cell previously
	// occupied (IB or solid) that is no longer inside the shape has
	// been uncovered by body motion.
	b.FreshCells.Clear()
	for id := range prev {
		if !b.Shape.IsInside(b.Grid.Cells[id].Centroid) {
			b.FreshCells.Add(id)
			b.Grid.SetStatus(id, gridmesh.Fresh)
		}
	}
	// Any newly-covered fluid cell is DEAD (was fluid last step, solid now).
	for _, id := range b.SolidCells.Cells() {
		if !prev[id] {
			b.DeadCells.Add(id)
		}
	}

	// Step 6: rebuild stencils.
	return b.constructStencils()
}

func (b *Body) isIBCell(id gridmesh.CellID) bool {
	for _, nb := range b.Grid.Neighbours(id) {
		if !b.Shape.IsInside(b.Grid.Cells[nb].Centroid) {
			return true
		}
	}
	for _, nb := range b.Grid.Diagonals(id) {
		if !b.Shape.IsInside(b.Grid.Cells[nb].Centroid) {
			return true
		}
	}
	return false
}

func (b *Body) constructStencils() error {
	b.Stencils = make(map[gridmesh.CellID]*Stencil, b.IBCells.Len())
	for _, id := range b.IBCells.Cells() {
		st, err := NewGhostCellStencil(b.Grid, id, b.Shape)
		if err != nil {
			return err
		}
		b.Stencils[id] = st
	}
	return nil
}

// SeedFreshScalar fills each fresh cell's value with an inverse-
// distance average of its FLUID face-neighbours.
func (b *Body) SeedFreshScalar(f *field.ScalarField) {
	for _, id := range b.FreshCells.Cells() {
		if v, ok := b.idwSeedScalar(f, id); ok {
			f.SetCell(id, v)
		}
	}
}

func (b *Body) SeedFreshVector(f *field.VectorField) {
	for _, id := range b.FreshCells.Cells() {
		if v, ok := b.idwSeedVector(f, id); ok {
			f.SetCell(id, v)
		}
	}
}

func (b *Body) idwSeedScalar(f *field.ScalarField, id gridmesh.CellID) (float64, bool) {
	xC := b.Grid.Cells[id].Centroid
	var sum, weightSum float64
	for _, nb := range b.Grid.Neighbours(id) {
		if b.Grid.Status(nb) != gridmesh.Fluid {
			continue
		}
		d := xC.Minus(b.Grid.Cells[nb].Centroid).Mag()
		if d == 0 {
			return f.Cell(nb), true
		}
		w := 1 / d
		sum += w * f.Cell(nb)
		weightSum += w
	}
	if weightSum == 0 {
		return 0, false
	}
	return sum / weightSum, true
}

func (b *Body) idwSeedVector(f *field.VectorField, id gridmesh.CellID) (geometry2d.Point, bool) {
	xC := b.Grid.Cells[id].Centroid
	var sum geometry2d.Point
	var weightSum float64
	for _, nb := range b.Grid.Neighbours(id) {
		if b.Grid.Status(nb) != gridmesh.Fluid {
			continue
		}
		d := xC.Minus(b.Grid.Cells[nb].Centroid).Mag()
		if d == 0 {
			return f.Cell(nb), true
		}
		w := 1 / d
		sum = sum.Plus(f.Cell(nb).Scaled(w))
		weightSum += w
	}
	if weightSum == 0 {
		return geometry2d.Point{}, false
	}
	return sum.Scaled(1 / weightSum), true
}

// Bcs assembles the generic per-boundary-type equation of this design,
// confined to ibCells union solidCells.
func (b *Body) Bcs(f *field.ScalarField) (*equation.Equation, error) {
	kind := b.boundaryKind[f.Name]
	ref := b.boundaryValue[f.Name]
	eqn := equation.New(len(b.Grid.Cells))

	switch kind {
	case BCFixed:
		for _, st := range b.Stencils {
			cells, coeffs := st.Cells(), st.DirichletCoeffs()
			for i, c := range cells {
				eqn.Add(int(st.Cell), int(c), coeffs[i])
			}
			eqn.AddSource(int(st.Cell), 2*ref)
		}
		for _, id := range b.SolidCells.Cells() {
			eqn.Add(int(id), int(id), 1)
			eqn.AddSource(int(id), ref)
		}
	case BCNormalGradient:
		for _, st := range b.Stencils {
			cells, coeffs := st.Cells(), st.NeumannCoeffs()
			for i, c := range cells {
				eqn.Add(int(st.Cell), int(c), coeffs[i])
			}
			eqn.AddSource(int(st.Cell), -st.ImageDist*ref)
		}
		for _, id := range b.SolidCells.Cells() {
			eqn.Add(int(id), int(id), 1)
		}
	default:
		return nil, fmt.Errorf("%w: bcs does not support boundary kind %v for field %q", ibrun.ErrInvalidConfiguration, kind, f.Name)
	}
	return eqn, nil
}

// VelocityBcs imposes Dirichlet = wall velocity at B for FIXED, or
// reports InvalidConfiguration for the reserved PARTIAL_SLIP kind.
func (b *Body) VelocityBcs(u *field.VectorField) (*equation.VectorEquation, error) {
	kind := b.boundaryKind[u.Name]
	n := len(b.Grid.Cells)
	eqn := equation.NewVectorEquation(n)

	if kind == BCPartialSlip {
		return nil, fmt.Errorf("%w: PARTIAL_SLIP velocity boundary is reserved and unimplemented", ibrun.ErrInvalidConfiguration)
	}
	// BCFixed (also the zero value when no boundary is configured, so
	// an un-configured field defaults to plain no-slip).
	for _, st := range b.Stencils {
		cells, coeffs := st.Cells(), st.DirichletCoeffs()
		wallVel := b.wallVelocity(st.BoundaryPoint)
		for i, c := range cells {
			eqn.Add(int(st.Cell), int(c), coeffs[i])
		}
		eqn.AddSource(int(st.Cell), wallVel.Scaled(2))
	}

	for _, id := range b.SolidCells.Cells() {
		wallVel := b.wallVelocity(b.Grid.Cells[id].Centroid)
		eqn.Add(int(id), int(id), 1)
		eqn.AddSource(int(id), wallVel)
	}
	return eqn, nil
}

func (b *Body) wallVelocity(p geometry2d.Point) geometry2d.Point {
	if b.Motion == nil {
		return geometry2d.Point{}
	}
	return b.Motion.VelocityAt(p, b.Centroid(), b.ElapsedTime)
}

func (b *Body) wallAcceleration(p geometry2d.Point) geometry2d.Point {
	if b.Motion == nil {
		return geometry2d.Point{}
	}
	return b.Motion.AccelerationAt(p, b.Centroid(), b.ElapsedTime)
}

// PressureBcs is the consistent moving-wall Neumann condition:
// rho*(a_B . n).
func (b *Body) PressureBcs(rho float64, p *field.ScalarField) (*equation.Equation, error) {
	eqn := equation.New(len(b.Grid.Cells))
	for _, st := range b.Stencils {
		cells, coeffs := st.Cells(), st.NeumannCoeffs()
		for i, c := range cells {
			eqn.Add(int(st.Cell), int(c), coeffs[i])
		}
		if b.Motion != nil {
			a := b.wallAcceleration(st.BoundaryPoint)
			dudn := a.Dot(st.WallNormal)
			eqn.AddSource(int(st.Cell), rho*dudn)
		}
	}
	for _, id := range b.SolidCells.Cells() {
		eqn.Add(int(id), int(id), 1)
	}
	return eqn, nil
}

// ContactLineBcs imposes the prescribed contact angle theta for a
// volume-fraction field via a two-ray probe.
func (b *Body) ContactLineBcs(gamma *field.ScalarField, theta float64) (*equation.Equation, error) {
	eqn := equation.New(len(b.Grid.Cells))
	for _, st := range b.Stencils {
		xC := b.Grid.Cells[st.Cell].Centroid
		wn := st.WallNormal.Scaled(-1)
		dir1 := wn.Rotate(math.Pi/2 - theta)
		dir2 := wn.Rotate(theta - math.Pi/2)

		hits1 := b.Shape.Intersections(geometry2d.NewRay(xC, dir1))
		hits2 := b.Shape.Intersections(geometry2d.NewRay(xC, dir2))
		if len(hits1) == 0 || len(hits2) == 0 {
			continue
		}

		m1, err1 := buildStencilAt(b.Grid, st.Cell, hits1[0].Point, dir1)
		m2, err2 := buildStencilAt(b.Grid, st.Cell, hits2[0].Point, dir2)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("%w: contact line probe for cell %d", ibrun.ErrStencilUnderdetermined, st.Cell)
		}

		v1, v2 := m1.IPValue(gamma), m2.IPValue(gamma)
		chosen := m2
		if theta < math.Pi/2 {
			if v1 > v2 {
				chosen = m1
			}
		} else if v1 < v2 {
			chosen = m1
		}

		cells, coeffs := chosen.Cells(), chosen.NeumannCoeffs()
		for i, c := range cells {
			eqn.Add(int(chosen.Cell), int(c), coeffs[i])
		}
	}
	for _, id := range b.SolidCells.Cells() {
		eqn.Add(int(id), int(id), 1)
	}
	return eqn, nil
}

// ComputeForce integrates pressure and shear samples around the body
// contour. gridmesh.Gatherv/Broadcast perform the (here trivial,
// single-rank) gather/broadcast collectives.
func (b *Body) ComputeForce(rho, mu float64, u *field.VectorField, p *field.ScalarField) {
	type sample struct {
		point geometry2d.Point
		pressure float64
		shear float64
	}
	local := make([]sample, 0, len(b.Stencils))
	for _, st := range b.Stencils {
		dudn := st.BPGradVector(u)
		tangent := st.WallNormal.Tangent()
		shear := mu * dudn.Dot(tangent)
		local = append(local, sample{point: st.BoundaryPoint, pressure: st.BPValue(p), shear: shear})
	}

	gathered := gridmesh.Gatherv([][]sample{local})
	if len(gathered) < 2 {
		b.Force = geometry2d.Point{}
		return
	}

	centroid := b.Centroid()
	sort.Slice(gathered, func(i, j int) bool {
		ai := gathered[i].point.Minus(centroid).Angle()
		aj := gathered[j].point.Minus(centroid).Angle()
		const eps = 1e-9
		if math.Abs(ai-aj) > eps {
			return ai < aj
		}
		// Sub-order colinear samples by distance from the centroid
		// rather than leaving the
		// order to an unstable angle-only sort.
		return gathered[i].point.Minus(centroid).MagSqr() < gathered[j].point.Minus(centroid).MagSqr()
	})

	var force geometry2d.Point
	n := len(gathered)
	for i := 0; i < n; i++ {
		a, c := gathered[i], gathered[(i+1)%n]
		edge := c.point.Minus(a.point)
		perp := geometry2d.Point{X: edge.Y, Y: -edge.X}
		force = force.Plus(perp.Scaled(-(a.pressure + c.pressure) / 2))
		force = force.Plus(edge.Scaled((a.shear + c.shear) / 2))
	}
	b.Force = gridmesh.Broadcast(force)
}

// Advance moves the body according to its motion model using the
// force integrated over the previous step.
func (b *Body) Advance(t, dt float64) {
	if b.Motion == nil {
		b.ElapsedTime += dt
		return
	}
	oldTheta := b.Theta
	c, theta := b.Motion.Advance(b.Centroid(), b.Theta, t, dt, b.Force, b.Torque)
	b.ElapsedTime = t + dt
	b.moveShapeTo(c, theta-oldTheta)
	b.Theta = theta
}

// moveShapeTo translates the shape's centroid to newCentroid and, for
// polygons, rotates it by deltaTheta about its (already-translated)
// centroid; circles are rotation-invariant.
func (b *Body) moveShapeTo(newCentroid geometry2d.Point, deltaTheta float64) {
	switch shp := b.Shape.(type) {
	case *geometry2d.Circle:
		shp.Center = newCentroid
	case *geometry2d.Polygon:
		translation := newCentroid.Minus(shp.Centroid())
		for i := range shp.Vertices {
			shp.Vertices[i] = shp.Vertices[i].Plus(translation)
		}
		if deltaTheta != 0 {
			shp.Rotate(deltaTheta)
		}
	}
}
