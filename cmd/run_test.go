package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunSimulationCompletesOnMinimalConfig(t *testing.T) {
	yaml := []byte(`
Title: Test Case
Nx: 8
Ny: 6
Lx: 8
Ly: 6
Rho: 1.0
Mu: 0.01
FinalTime: 0.02
InitialStep: 0.01
MaxTimeStep: 0.01
CFLMax: 0.5
InletVelocityX: 1.0
OutputInterval: 1

ImmersedBoundaries:
  cyl:
    geometry:
      type: circle
      center: {x: 4, y: 3}
      radius: 1.0
    properties:
      rho: 1.0
    u:
      type: fixed
    p:
      type: normal_gradient
`)
	require.NoError(t, runSimulation(yaml, false))
}
