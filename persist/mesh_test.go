package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/finitevolume/ibflow/gridmesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveCellStatusWritesNonEmptyFile(t *testing.T) {
	g := gridmesh.NewStructuredChannelMesh(4, 4, 4, 4)
	path := filepath.Join(t.TempDir(), "status.bin")
	require.NoError(t, SaveCellStatus(g, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	// 2 length prefixes (int64) + 32 float64 coords (x,y per cell) + 16 status bytes.
	assert.Equal(t, int64(2*8+32*8+16), info.Size())
}
