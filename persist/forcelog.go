// Package persist writes run output to disk: a per-step force time
// series per immersed body, and a binary export of cell status for
// offline visualization, in the spirit of Euler2D/plot.go's
// SaveOutputMesh/SavePlotFunction pair but adapted to the handful of
// small, named per-body scalars this solver produces per step rather
// than one large per-element field. A CSV writer fits that shape far
// better than SavePlotFunction's raw binary.Write of a single dense
// array, so encoding/csv replaces encoding/binary here; see DESIGN.md.
package persist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/finitevolume/ibflow/immersed"
)

// ForceLog appends one row per body per call to Write, matching the
// original solver's per-step force integration output.
type ForceLog struct {
	w *csv.Writer
	closer io.Closer
}

// NewForceLog creates (or truncates) path and writes the header row.
func NewForceLog(path string) (*ForceLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("persist: create force log: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"t", "body", "Fx", "Fy", "torque", "cx", "cy"}); err != nil {
		f.Close()
		return nil, fmt.Errorf("persist: write force log header: %w", err)
	}
	return &ForceLog{w: w, closer: f}, nil
}

// Write appends one row for every body in bodies at time t.
func (l *ForceLog) Write(t float64, bodies []*immersed.Body) error {
	for _, b := range bodies {
		c := b.Centroid()
		row := []string{
			fmt.Sprintf("%.10g", t),
			b.Name,
			fmt.Sprintf("%.10g", b.Force.X),
			fmt.Sprintf("%.10g", b.Force.Y),
			fmt.Sprintf("%.10g", b.Torque),
			fmt.Sprintf("%.10g", c.X),
			fmt.Sprintf("%.10g", c.Y),
		}
		if err := l.w.Write(row); err != nil {
			return fmt.Errorf("persist: write force row: %w", err)
		}
	}
	l.w.Flush()
	return l.w.Error()
}

// Close flushes and closes the underlying file.
func (l *ForceLog) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return err
	}
	return l.closer.Close()
}
