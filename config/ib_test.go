package config

import (
	"testing"

	"github.com/finitevolume/ibflow/gridmesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRegistryFromNamedBody(t *testing.T) {
	data := []byte(`
ImmersedBoundaries:
  cyl:
    geometry:
      type: circle
      center: {x: 4, y: 3}
      radius: 1.0
    properties:
      rho: 1.0
    motion:
      type: translating
      velocity: {x: 0.5, y: 0}
    u:
      type: fixed
    p:
      type: normal_gradient
      value: 0
  Collisions:
    stiffness: 2e-3
    range: 0.1
`)
	tree, err := LoadTree(data)
	require.NoError(t, err)

	g := gridmesh.NewStructuredChannelMesh(24, 12, 12, 6)
	reg, err := tree.BuildRegistry(g)
	require.NoError(t, err)
	require.Len(t, reg.Bodies, 1)

	body := reg.Bodies[0]
	assert.Equal(t, "cyl", body.Name)
	assert.NotNil(t, body.Motion)
	assert.InDelta(t, 4.0, body.Centroid().X, 1e-9)
	assert.InDelta(t, 2e-3, reg.Collision.Stiffness, 1e-12)
	assert.InDelta(t, 0.1, reg.Collision.Range, 1e-12)
}

func TestBuildRegistryFromArray(t *testing.T) {
	data := []byte(`
ImmersedBoundaryArray:
  shapeI: 2
  shapeJ: 2
  anchor: {x: 2, y: 2}
  spacing: {x: 3, y: 3}
  boundary:
    name: post
    geometry:
      type: circle
      radius: 0.4
    properties:
      rho: 1.0
    fields:
      u:
        type: fixed
`)
	tree, err := LoadTree(data)
	require.NoError(t, err)

	g := gridmesh.NewStructuredChannelMesh(40, 40, 10, 10)
	reg, err := tree.BuildRegistry(g)
	require.NoError(t, err)
	require.Len(t, reg.Bodies, 4)

	names := make(map[string]bool)
	for _, b := range reg.Bodies {
		names[b.Name] = true
	}
	assert.True(t, names["post_0_0"])
	assert.True(t, names["post_1_1"])
}

func TestBuildRegistryDefaultCollisionValues(t *testing.T) {
	tree, err := LoadTree([]byte(`Nx: 4`))
	require.NoError(t, err)
	g := gridmesh.NewStructuredChannelMesh(4, 4, 4, 4)
	reg, err := tree.BuildRegistry(g)
	require.NoError(t, err)
	assert.InDelta(t, 1e-4, reg.Collision.Stiffness, 1e-12)
	assert.Empty(t, reg.Bodies)
}
