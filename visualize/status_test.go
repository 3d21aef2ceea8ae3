package visualize

import (
	"testing"

	"github.com/finitevolume/ibflow/gridmesh"
	"github.com/stretchr/testify/assert"
)

func TestStatusTriMeshHasTwoTrianglesPerCell(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(4, 3, 4, 3)
	g.SetStatus(5, gridmesh.IBCell)

	mesh := StatusTriMesh(g, 4, 3)
	assert.Equal(t, len(g.Nodes), len(mesh.Geometry))
	assert.Equal(t, 2*g.NumCells(), len(mesh.Triangles))
	assert.Equal(t, len(mesh.Triangles), len(mesh.Attributes))

	// Cell 5 is (i=1, j=1) in a 4-wide grid; both of its triangles
	// should carry the IBCell status code on every vertex.
	found := false
	for k, tri := range mesh.Triangles {
		if tri.Nodes[0] == int32(1*(4+1)+1) {
			found = true
			assert.Equal(t, float32(gridmesh.IBCell), mesh.Attributes[k][0])
		}
	}
	assert.True(t, found)
}
