package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/finitevolume/ibflow/geometry2d"
	"github.com/finitevolume/ibflow/gridmesh"
	"github.com/finitevolume/ibflow/immersed"
	"github.com/stretchr/testify/require"
)

func TestForceLogWritesHeaderAndRows(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(4, 4, 4, 4)
	circle := geometry2d.NewCircle(geometry2d.Point{X: 2, Y: 2}, 0.5)
	body := immersed.NewBody("cyl", 0, circle, 1.0, nil, g)
	body.Force = geometry2d.Point{X: 1.5, Y: -0.25}

	path := filepath.Join(t.TempDir(), "forces.csv")
	log, err := NewForceLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Write(0.01, []*immersed.Body{body}))
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "t,body,Fx,Fy,torque,cx,cy")
	require.Contains(t, string(data), "cyl")
}
