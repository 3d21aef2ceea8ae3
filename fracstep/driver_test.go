package fracstep

import (
	"testing"

	"github.com/finitevolume/ibflow/field"
	"github.com/finitevolume/ibflow/geometry2d"
	"github.com/finitevolume/ibflow/gridmesh"
	"github.com/finitevolume/ibflow/immersed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	g := gridmesh.NewStructuredChannelMesh(12, 8, 12, 8)
	reg := immersed.NewRegistry(g, immersed.NewCollisionModel(1e-4, 0))
	circle := geometry2d.NewCircle(geometry2d.Point{X: 4, Y: 4}, 1.0)
	reg.Add(immersed.NewBody("cyl", 0, circle, 1.0, nil, g))
	require.NoError(t, reg.InitCellZones())

	d := NewDriver(g, reg, 1.0, 0.01, geometry2d.Point{}, 0.1)
	d.U.SetFixedValue("inlet", geometry2d.Point{X: 1, Y: 0})
	d.U.SetBoundaryType("outlet", field.NormalGradient)
	d.P.SetFixedValue("outlet", 0)
	d.Initialize()
	return d
}

func TestStepRunsWithoutErrorOnQuiescentFluid(t *testing.T) {
	d := newTestDriver(t)
	maxDiv, maxCo, err := d.Step(0.01)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, maxDiv, 0.0)
	assert.GreaterOrEqual(t, maxCo, 0.0)
}

func TestComputeMaxTimeStepNeverExceedsCap(t *testing.T) {
	d := newTestDriver(t)
	dt := d.ComputeMaxTimeStep(0.5, 0.01)
	assert.LessOrEqual(t, dt, d.MaxTimeStep+1e-12)
}

func TestComputeMaxTimeStepWithZeroCourantUsesGrowthCap(t *testing.T) {
	d := newTestDriver(t)
	// Quiescent fluid before any Step call: zero Courant number falls
	// back to min(lambda2*prevTimeStep, cap) = min(1.2*0.01, 0.1).
	dt := d.ComputeMaxTimeStep(0.5, 0.01)
	assert.InDelta(t, 0.012, dt, 1e-12)
}
