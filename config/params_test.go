package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunParametersParse(t *testing.T) {
	data := []byte(`
Title: Cylinder in channel
Nx: 40
Ny: 20
Lx: 8
Ly: 4
Rho: 1.0
Mu: 0.01
FinalTime: 5.0
CFLMax: 0.5
UseNativeBLAS: true
`)
	var p RunParameters
	require.NoError(t, p.Parse(data))
	assert.Equal(t, "Cylinder in channel", p.Title)
	assert.Equal(t, 40, p.Nx)
	assert.Equal(t, 0.01, p.Mu)
	assert.Equal(t, 0.5, p.CFLMax)
	assert.True(t, p.UseNativeBLAS)
}
