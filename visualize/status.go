// Package visualize renders cell classification with avs/chart2d, the
// same plotting library readfiles/plotMesh.go and model_problems/Euler2D/plot.go
// drive: a graphics2D.TriMesh with one color attribute per triangle
// vertex, shown through a Chart2D with a discrete color map. Unlike
// those DG plotters, which triangulate an unstructured Gambit mesh or
// an already-triangulated DFR output mesh, the mesh here is the
// structured quad grid gridmesh.NewStructuredChannelMesh builds, so
// StatusTriMesh triangulates each quad cell into two triangles itself
// rather than reusing an EToV table that doesn't exist for this grid.
package visualize

import (
	"fmt"
	"image/color"

	"github.com/notargets/avs/chart2d"
	graphics2D "github.com/notargets/avs/geometry"
	utils2 "github.com/notargets/avs/utils"

	"github.com/finitevolume/ibflow/geometry2d"
	"github.com/finitevolume/ibflow/gridmesh"
)

// StatusTriMesh builds the avs TriMesh for a structured nx-by-ny
// channel grid, tagging each triangle's three vertex attributes with
// its owning cell's CellStatus code so a discrete color map renders
// the classification of this design directly.
func StatusTriMesh(g *gridmesh.Grid, nx, ny int) graphics2D.TriMesh {
	nodeIndex := func(i, j int) int32 { return int32(j*(nx+1) + i) }

	points := make([]graphics2D.Point, len(g.Nodes))
	for i, n := range g.Nodes {
		points[i].X[0] = float32(n.Point.X)
		points[i].X[1] = float32(n.Point.Y)
	}

	tris := make([]graphics2D.Triangle, 0, 2*nx*ny)
	attrs := make([][]float32, 0, 2*nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			id := gridmesh.CellID(j*nx + i)
			code := float32(g.Status(id))
			bl, br := nodeIndex(i, j), nodeIndex(i+1, j)
			tl, tr := nodeIndex(i, j+1), nodeIndex(i+1, j+1)

			tris = append(tris,
				graphics2D.Triangle{Nodes: [3]int32{bl, br, tr}},
				graphics2D.Triangle{Nodes: [3]int32{bl, tr, tl}},
			)
			attrs = append(attrs, []float32{code, code, code}, []float32{code, code, code})
		}
	}

	return graphics2D.TriMesh{Geometry: points, Triangles: tris, Attributes: attrs}
}

// CellStatusChart opens a live Chart2D window plotting the current
// classification of every cell in g, colored by CellStatus, the way
// PlotMesh opens a window colored by boundary condition attribute.
func CellStatusChart(g *gridmesh.Grid, nx, ny, width, height int) (*chart2d.Chart2D, error) {
	mesh := StatusTriMesh(g, nx, ny)
	box := graphics2D.NewBoundingBox(mesh.GetGeometry())
	box = box.Scale(1.05)

	chart := chart2d.NewChart2D(width, height, box.XMin[0], box.XMax[0], box.XMin[1], box.XMax[1])
	// Six CellStatus codes, this design: FLUID..BUFFER.
	chart.AddColorMap(utils2.NewColorMap(0, float32(gridmesh.Buffer), 1))
	go chart.Plot()

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if err := chart.AddTriMesh("cellStatus", mesh, chart2d.NoGlyph, chart2d.Solid, white); err != nil {
		return nil, fmt.Errorf("visualize: add cell status trimesh: %w", err)
	}
	return chart, nil
}

// PlotTrajectory overlays a body's centroid history as a dashed line
// series on an already-open chart, the way plotMesh.go overlays the
// element point series on top of the triangle mesh.
func PlotTrajectory(chart *chart2d.Chart2D, name string, centroids []geometry2d.Point, col color.RGBA) error {
	x := make([]float64, len(centroids))
	y := make([]float64, len(centroids))
	for i, p := range centroids {
		x[i] = p.X
		y[i] = p.Y
	}
	if err := chart.AddSeries(name, x, y, chart2d.CrossGlyph, chart2d.Dashed, col); err != nil {
		return fmt.Errorf("visualize: add trajectory series %q: %w", name, err)
	}
	return nil
}
