package persist

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/finitevolume/ibflow/gridmesh"
)

// SaveCellStatus writes cell centroids and their classification codes
// in the little-endian binary.Write layout SaveOutputMesh uses for its
// vertex/connectivity arrays: a length-prefixed float64 array of
// interleaved x,y followed by a length-prefixed byte array of status
// codes, so a downstream reader can zip them back together without a
// text parser.
func SaveCellStatus(g *gridmesh.Grid, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("persist: create cell status file: %w", err)
	}
	defer file.Close()

	n := int64(g.NumCells())
	xy := make([]float64, 2*n)
	status := make([]byte, n)
	for id := range g.Cells {
		c := g.Cells[id].Centroid
		xy[2*id] = c.X
		xy[2*id+1] = c.Y
		status[id] = byte(g.Status(gridmesh.CellID(id)))
	}

	for _, v := range []interface{}{n, xy, n, status} {
		if err := binary.Write(file, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("persist: write cell status: %w", err)
		}
	}
	return nil
}
