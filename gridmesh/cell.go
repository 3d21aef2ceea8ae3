// Package gridmesh supplies the minimal concrete grid adaptor (C2 in
// the design) that the IB subsystem is built against: cell/face/node
// iteration, neighbour/diagonal links, spatial search of cells within a
// shape, and a communicator handle. A full unstructured-mesh reader is
// out of scope; NewStructuredChannelMesh below builds
// simple rectangular test grids so the core is exercisable end-to-end.
package gridmesh

import "github.com/finitevolume/ibflow/geometry2d"

type CellID int
type FaceID int
type NodeID int

// CellStatus is the total partition of this design: every cell is in
// exactly one of these classes after each classification pass.
type CellStatus uint8

const (
	Fluid CellStatus = iota
	IBCell
	Solid
	Fresh
	Dead
	Buffer
)

func (s CellStatus) String() string {
	switch s {
	case Fluid:
		return "FLUID"
	case IBCell:
		return "IB"
	case Solid:
		return "SOLID"
	case Fresh:
		return "FRESH"
	case Dead:
		return "DEAD"
	case Buffer:
		return "BUFFER"
	default:
		return "UNKNOWN"
	}
}

// Cell is identified by a stable local id, dense and 0-based within the
// rank, plus a global index assigned after classification.
type Cell struct {
	ID CellID
	GlobalID int
	Centroid geometry2d.Point
	Volume float64
	Faces []FaceID
	Nodes []NodeID

	// Neighbours links interior faces to the cell across them.
	Neighbours []CellID
	// BoundaryFaces are faces of this cell with no interior neighbour.
	BoundaryFaces []FaceID
	// Diagonals are corner-sharing (node-adjacent, not face-adjacent)
	// cells, used by the IB-cell test in this step.
	Diagonals []CellID
}

// Face carries the geometric data needed for flux and BC assembly: an
// owner cell, an optional neighbour (boundary faces have none), the
// outward-from-owner unit normal, and the face length (its "area" in
// 2D) kept separately in Length.
type Face struct {
	ID FaceID
	Centroid geometry2d.Point
	Normal geometry2d.Point // unit, outward from Owner
	Length float64
	Owner CellID
	Neighbor CellID // -1 if this is a boundary face
	Patch string // boundary patch name; empty for interior faces
}

const NoCell CellID = -1

type Node struct {
	ID NodeID
	Point geometry2d.Point
}
