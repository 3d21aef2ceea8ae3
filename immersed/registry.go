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
)

// Registry aggregates every Body in a run, owning the shared "fluid"
// zone every cell not otherwise claimed belongs to and dispatching
// per-step classification, boundary assembly and force integration
// across all of them, grounded on ImmersedBoundary.cpp.
type Registry struct {
	Fluid *gridmesh.CellZone
	Bodies []*Body
	Collision *CollisionModel

	grid *gridmesh.Grid
}

func NewRegistry(g *gridmesh.Grid, collision *CollisionModel) *Registry {
	return &Registry{
		Fluid: g.Zones.NewZone("fluid"),
		grid: g,
		Collision: collision,
	}
}

// Add registers a body, keeping Bodies sorted by ID. Cells are claimed
// into the fluid zone by InitCellZones, not here.
func (r *Registry) Add(b *Body) {
	r.Bodies = append(r.Bodies, b)
	sort.Slice(r.Bodies, func(i, j int) bool { return r.Bodies[i].ID < r.Bodies[j].ID })
}

// InitCellZones seeds every cell as fluid, then runs the initial
// classification pass for each body in ID order so ties resolve
// deterministically to the lower-id body.
func (r *Registry) InitCellZones() error {
	for id := range r.grid.Cells {
		r.Fluid.Add(gridmesh.CellID(id))
	}
	for _, b := range r.Bodies {
		if err := b.Classify(r.Fluid); err != nil {
			return err
		}
	}
	r.grid.ComputeGlobalOrdering()
	return nil
}

// IBCells returns the union of every body's ib cell set.
func (r *Registry) IBCells() []gridmesh.CellID {
	var out []gridmesh.CellID
	for _, b := range r.Bodies {
		out = append(out, b.IBCells.Cells()...)
	}
	return out
}

// SolidCells returns the union of every body's solid cell set.
func (r *Registry) SolidCells() []gridmesh.CellID {
	var out []gridmesh.CellID
	for _, b := range r.Bodies {
		out = append(out, b.SolidCells.Cells()...)
	}
	return out
}

// Body looks a body up by name, mirroring ImmersedBoundary::ibObj(name).
func (r *Registry) Body(name string) (*Body, error) {
	for _, b := range r.Bodies {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: no immersed boundary object named %q", ibrun.ErrInvalidConfiguration, name)
}

// BodyAt returns the body whose shape contains p, or nil if p is in the
// fluid domain, mirroring ImmersedBoundary::ibObj(Point2D).
func (r *Registry) BodyAt(p geometry2d.Point) *Body {
	for _, b := range r.Bodies {
		if b.Shape.IsInside(p) {
			return b
		}
	}
	return nil
}

// NearestIntersect finds the body whose boundary lies closest to p and
// the projection of p onto that boundary, mirroring
// ImmersedBoundary::nearestIntersect.
func (r *Registry) NearestIntersect(p geometry2d.Point) (*Body, geometry2d.Point) {
	var nearest *Body
	var nearestPoint geometry2d.Point
	best := math.Inf(1)
	for _, b := range r.Bodies {
		x := b.Shape.NearestIntersect(p)
		d := x.Minus(p).MagSqr()
		if d < best {
			best = d
			nearest = b
			nearestPoint = x
		}
	}
	return nearest, nearestPoint
}

// Update runs one step of body motion and reclassification across
// every body, in ID order so the deterministic
// overlap rule (lower-id body wins a contested cell) is enforced by
// construction: a higher-id body's Classify call sees cells the
// lower-id body already re-claimed as no longer fluid.
func (r *Registry) Update(t, dt float64) error {
	for _, b := range r.Bodies {
		b.Advance(t, dt)
	}
	for _, b := range r.Bodies {
		if err := b.Classify(r.Fluid); err != nil {
			return err
		}
	}
	r.grid.ComputeGlobalOrdering()
	return nil
}

// SeedFreshScalar and SeedFreshVector reseed every body's
// newly-uncovered cells for the given field, this step.
func (r *Registry) SeedFreshScalar(f *field.ScalarField) {
	for _, b := range r.Bodies {
		b.SeedFreshScalar(f)
	}
}

func (r *Registry) SeedFreshVector(f *field.VectorField) {
	for _, b := range r.Bodies {
		b.SeedFreshVector(f)
	}
}

// VelocityBcs sums every body's velocity boundary equation into one,
// mirroring ImmersedBoundary::velocityBcs's eqn += ibObj->velocityBcs(u).
func (r *Registry) VelocityBcs(u *field.VectorField) (*equation.VectorEquation, error) {
	sum := equation.NewVectorEquation(len(r.grid.Cells))
	for _, b := range r.Bodies {
		eqn, err := b.VelocityBcs(u)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", b.Name, err)
		}
		addVectorEquation(sum, eqn)
	}
	return sum, nil
}

// PressureBcs sums every body's pressure boundary equation.
func (r *Registry) PressureBcs(rho float64, p *field.ScalarField) (*equation.Equation, error) {
	sum := equation.New(len(r.grid.Cells))
	for _, b := range r.Bodies {
		eqn, err := b.PressureBcs(rho, p)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", b.Name, err)
		}
		addEquation(sum, eqn)
	}
	return sum, nil
}

// Bcs sums every body's generic scalar boundary equation for f.
func (r *Registry) Bcs(f *field.ScalarField) (*equation.Equation, error) {
	sum := equation.New(len(r.grid.Cells))
	for _, b := range r.Bodies {
		eqn, err := b.Bcs(f)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", b.Name, err)
		}
		addEquation(sum, eqn)
	}
	return sum, nil
}

// ContactLineBcs sums every body's contact-line equation, each queried
// at its own prescribed contact angle.
func (r *Registry) ContactLineBcs(gamma *field.ScalarField, thetaOf func(*Body) float64) (*equation.Equation, error) {
	sum := equation.New(len(r.grid.Cells))
	for _, b := range r.Bodies {
		eqn, err := b.ContactLineBcs(gamma, thetaOf(b))
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", b.Name, err)
		}
		addEquation(sum, eqn)
	}
	return sum, nil
}

// ComputeForce integrates hydrodynamic force on every body, then adds
// pairwise and wall collision forces, mirroring
// ImmersedBoundary::computeForce's addForce loop.
func (r *Registry) ComputeForce(rho, mu float64, u *field.VectorField, p *field.ScalarField, domain geometry2d.BoundingBox) {
	for _, b := range r.Bodies {
		b.ComputeForce(rho, mu, u, p)
	}
	if r.Collision == nil {
		return
	}
	pairwise := r.Collision.PairwiseForces(r.Bodies)
	wall := r.Collision.WallForces(r.Bodies, domain)
	for i, b := range r.Bodies {
		b.Force = b.Force.Plus(pairwise[i]).Plus(wall[i])
	}
}

func addEquation(sum, part *equation.Equation) {
	for row, cols := range part.Rows() {
		for col, coeff := range cols {
			sum.Add(row, col, coeff)
		}
	}
	for row, v := range part.SourceVector() {
		if v != 0 {
			sum.AddSource(row, v)
		}
	}
}

func addVectorEquation(sum, part *equation.VectorEquation) {
	addEquation(sum.X, part.X)
	addEquation(sum.Y, part.Y)
}
