package gridmesh

import "github.com/finitevolume/ibflow/geometry2d"

// NewStructuredChannelMesh builds an nx-by-ny rectangular grid of
// (lx/nx)-by-(ly/ny) cells covering [0,lx]x[0,ly]. Boundary faces are tagged
// "inlet"/"outlet"/"top"/"bottom" so config patch lookups have real
// names to bind against.
func NewStructuredChannelMesh(nx, ny int, lx, ly float64) *Grid {
	dx, dy := lx/float64(nx), ly/float64(ny)
	area := dx * dy

	cellIndex := func(i, j int) CellID { return CellID(j*nx + i) }

	cells := make([]Cell, nx*ny)
	var faces []Face
	var nodes []Node

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			id := cellIndex(i, j)
			cells[id] = Cell{
				ID: id,
				GlobalID: int(id),
				Centroid: geometry2d.Point{X: (float64(i) + 0.5) * dx, Y: (float64(j) + 0.5) * dy},
				Volume: area,
			}
		}
	}

	addFace := func(owner, neighbor CellID, centroid, normal geometry2d.Point, length float64, patch string) {
		f := Face{
			ID: FaceID(len(faces)),
			Centroid: centroid,
			Normal: normal,
			Length: length,
			Owner: owner,
			Neighbor: neighbor,
			Patch: patch,
		}
		faces = append(faces, f)
		cells[owner].Faces = append(cells[owner].Faces, f.ID)
		if neighbor == NoCell {
			cells[owner].BoundaryFaces = append(cells[owner].BoundaryFaces, f.ID)
		} else {
			cells[owner].Neighbours = append(cells[owner].Neighbours, neighbor)
			cells[neighbor].Faces = append(cells[neighbor].Faces, f.ID)
			cells[neighbor].Neighbours = append(cells[neighbor].Neighbours, owner)
		}
	}

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			id := cellIndex(i, j)
			c := cells[id].Centroid

			// East face
			east := geometry2d.Point{X: c.X + dx/2, Y: c.Y}
			if i+1 < nx {
				addFace(id, cellIndex(i+1, j), east, geometry2d.Point{X: 1, Y: 0}, dy, "")
			} else {
				addFace(id, NoCell, east, geometry2d.Point{X: 1, Y: 0}, dy, "outlet")
			}

			// West face only at the domain boundary; interior west faces
			// are already emitted as the neighbour's east face.
			if i == 0 {
				west := geometry2d.Point{X: c.X - dx/2, Y: c.Y}
				addFace(id, NoCell, west, geometry2d.Point{X: -1, Y: 0}, dy, "inlet")
			}

			// North face
			north := geometry2d.Point{X: c.X, Y: c.Y + dy/2}
			if j+1 < ny {
				addFace(id, cellIndex(i, j+1), north, geometry2d.Point{X: 0, Y: 1}, dx, "")
			} else {
				addFace(id, NoCell, north, geometry2d.Point{X: 0, Y: 1}, dx, "top")
			}

			if j == 0 {
				south := geometry2d.Point{X: c.X, Y: c.Y - dy/2}
				addFace(id, NoCell, south, geometry2d.Point{X: 0, Y: -1}, dx, "bottom")
			}
		}
	}

	// Diagonal (corner-sharing) links, needed by the IB-cell test of
	// this step which treats corner adjacency as a candidate
	// link distinct from face adjacency.
	diag := func(i, j, di, dj int) (CellID, bool) {
		ni, nj := i+di, j+dj
		if ni < 0 || ni >= nx || nj < 0 || nj >= ny {
			return 0, false
		}
		return cellIndex(ni, nj), true
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			id := cellIndex(i, j)
			for _, d := range [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}} {
				if nb, ok := diag(i, j, d[0], d[1]); ok {
					cells[id].Diagonals = append(cells[id].Diagonals, nb)
				}
			}
		}
	}

	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			nodes = append(nodes, Node{ID: NodeID(len(nodes)), Point: geometry2d.Point{X: float64(i) * dx, Y: float64(j) * dy}})
		}
	}

	return newGrid(cells, faces, nodes, NewCommunicator(1))
}
