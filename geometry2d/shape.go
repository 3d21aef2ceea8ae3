package geometry2d

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/finitevolume/ibflow/ibrun"
)

// ErrGeometryDegenerate and ErrInvalidConfiguration are re-exported here
// so geometry construction errors carry the module-wide error kinds from
// this design without every caller importing ibrun directly.
var (
	ErrGeometryDegenerate = ibrun.ErrGeometryDegenerate
	ErrInvalidConfiguration = ibrun.ErrInvalidConfiguration
)

// Shape is the common capability set this design requires of both
// polygons and circles: oriented boundary, signed-distance containment,
// nearest-point projection, nearest-edge normal, similarity transforms
// and ray intersection.
type Shape interface {
	IsInside(p Point) bool
	NearestIntersect(p Point) Point
	NearestEdgeNormal(p Point) Point
	Area() float64
	Centroid() Point
	BoundingBox() BoundingBox
	Scale(factor float64)
	Rotate(angleRadians float64)
	Intersections(r Ray) []Intersection
}

// Polygon is a simple, CCW-oriented closed polygon. Vertices[0] and
// Vertices[len-1] are equal (explicit closing vertex), matching the
// NewPolygon convention in geometry2D/legacy_geom.go.
type Polygon struct {
	Vertices []Point
	box BoundingBox
}

// NewPolygon closes the vertex loop if needed, enforces CCW winding, and
// rejects self-intersecting/degenerate input via a signed-area check per
// this design ("simple; self-intersection is undefined behaviour and
// should be rejected at construction").
func NewPolygon(verts []Point) (*Polygon, error) {
	if len(verts) < 3 {
		return nil, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrGeometryDegenerate, len(verts))
	}
	v := make([]Point, len(verts))
	copy(v, verts)
	if v[len(v)-1] != v[0] {
		v = append(v, v[0])
	}
	area := signedArea(v)
	if math.Abs(area) < 1e-15 {
		return nil, fmt.Errorf("%w: polygon has zero area", ErrGeometryDegenerate)
	}
	if area < 0 {
		reverse(v)
	}
	pg := &Polygon{Vertices: v}
	pg.box = NewBoundingBox(v)
	return pg, nil
}

// NewBox builds a rectangle centered at c, promoted to a Polygon so it
// composes with the rest of the Shape machinery (rotate/scale), matching
// the note that boxes are "promoted to polygons first" before a
// rotate is applied.
func NewBox(center Point, width, height float64) (*Polygon, error) {
	hw, hh := width/2, height/2
	verts := []Point{
		{center.X - hw, center.Y - hh},
		{center.X + hw, center.Y - hh},
		{center.X + hw, center.Y + hh},
		{center.X - hw, center.Y + hh},
	}
	return NewPolygon(verts)
}

// NewRegularPolygon builds a CCW n-gon of the given circumradius,
// grounded on geometry2D/legacy_geom.go's NewNgon.
func NewRegularPolygon(center Point, radius float64, n int) (*Polygon, error) {
	if n < 3 {
		return nil, fmt.Errorf("%w: regular polygon needs at least 3 sides", ErrGeometryDegenerate)
	}
	verts := make([]Point, n)
	inc := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		a := float64(i) * inc
		verts[i] = center.Plus(Point{radius * math.Cos(a), radius * math.Sin(a)})
	}
	return NewPolygon(verts)
}

// NewPolygonFromFile reads the ASCII "x y" per line vertex file format of
// this design, closes it implicitly, translates it so its centroid matches
// center, and fixes winding to CCW automatically.
func NewPolygonFromFile(path string, center Point) (*Polygon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	defer f.Close()

	var verts []Point
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if len(line) == 0 {
			continue
		}
		var x, y float64
		if _, err := fmt.Sscanf(line, "%g %g", &x, &y); err != nil {
			continue
		}
		verts = append(verts, Point{x, y})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	pg, err := NewPolygon(verts)
	if err != nil {
		return nil, err
	}
	translation := center.Minus(pg.Centroid())
	for i := range pg.Vertices {
		pg.Vertices[i] = pg.Vertices[i].Plus(translation)
	}
	pg.box = NewBoundingBox(pg.Vertices)
	return pg, nil
}

func signedArea(v []Point) float64 {
	var a float64
	for i := 0; i < len(v)-1; i++ {
		a += v[i].X*v[i+1].Y - v[i+1].X*v[i].Y
	}
	return 0.5 * a
}

func reverse(v []Point) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}

func (pg *Polygon) Area() float64 { return signedArea(pg.Vertices) }

func (pg *Polygon) Centroid() Point {
	area := pg.Area()
	var cx, cy float64
	for i := 0; i < len(pg.Vertices)-1; i++ {
		p0, p1 := pg.Vertices[i], pg.Vertices[i+1]
		cross := p0.X*p1.Y - p1.X*p0.Y
		cx += (p0.X + p1.X) * cross
		cy += (p0.Y + p1.Y) * cross
	}
	return Point{cx / (6 * area), cy / (6 * area)}
}

func (pg *Polygon) BoundingBox() BoundingBox { return pg.box }

// IsInside uses the winding-number test, grounded on
// geometry2D/legacy_geom.go's Polygon.PointInside.
func (pg *Polygon) IsInside(p Point) bool {
	if !pg.box.Contains(p) {
		return false
	}
	isLeft := func(p0, p1, p2 Point) float64 {
		return (p1.X-p0.X)*(p2.Y-p0.Y) - (p2.X-p0.X)*(p1.Y-p0.Y)
	}
	var wn int
	v := pg.Vertices
	for i := 0; i < len(v)-1; i++ {
		p0, p1 := v[i], v[i+1]
		if p0.Y <= p.Y {
			if p1.Y > p.Y && isLeft(p0, p1, p) > 0 {
				wn++
			}
		} else {
			if p1.Y <= p.Y && isLeft(p0, p1, p) < 0 {
				wn--
			}
		}
	}
	return wn != 0
}

// NearestIntersect projects p onto the closest edge of the polygon
// boundary.
func (pg *Polygon) NearestIntersect(p Point) Point {
	best := pg.Vertices[0]
	bestDist := math.Inf(1)
	v := pg.Vertices
	for i := 0; i < len(v)-1; i++ {
		q := nearestPointOnSegment(p, v[i], v[i+1])
		d := q.Minus(p).MagSqr()
		if d < bestDist {
			bestDist = d
			best = q
		}
	}
	return best
}

// NearestEdgeNormal returns the outward unit normal of the polygon edge
// nearest to p.
func (pg *Polygon) NearestEdgeNormal(p Point) Point {
	bestIdx := 0
	bestDist := math.Inf(1)
	v := pg.Vertices
	for i := 0; i < len(v)-1; i++ {
		q := nearestPointOnSegment(p, v[i], v[i+1])
		d := q.Minus(p).MagSqr()
		if d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	edge := v[bestIdx+1].Minus(v[bestIdx])
	// outward normal of a CCW polygon is the clockwise perpendicular
	n := Point{edge.Y, -edge.X}
	return n.Unit()
}

func (pg *Polygon) Scale(factor float64) {
	c := pg.Centroid()
	for i := range pg.Vertices {
		pg.Vertices[i] = c.Plus(pg.Vertices[i].Minus(c).Scaled(factor))
	}
	pg.box = NewBoundingBox(pg.Vertices)
}

func (pg *Polygon) Rotate(angle float64) {
	c := pg.Centroid()
	for i := range pg.Vertices {
		pg.Vertices[i] = c.Plus(pg.Vertices[i].Minus(c).Rotate(angle))
	}
	pg.box = NewBoundingBox(pg.Vertices)
}

// Intersections returns the ray/polygon crossings ordered by parameter t
// along the ray.
func (pg *Polygon) Intersections(r Ray) []Intersection {
	var hits []Intersection
	v := pg.Vertices
	for i := 0; i < len(v)-1; i++ {
		if t, ok := rayLineIntersect(r, v[i], v[i+1]); ok {
			edge := v[i+1].Minus(v[i])
			n := Point{edge.Y, -edge.X}.Unit()
			hits = append(hits, Intersection{T: t, Point: r.At(t), Normal: n})
		}
	}
	sortIntersections(hits)
	return hits
}

func nearestPointOnSegment(p, a, b Point) Point {
	ab := b.Minus(a)
	t := 0.0
	denom := ab.MagSqr()
	if denom > 0 {
		t = p.Minus(a).Dot(ab) / denom
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	return a.Plus(ab.Scaled(t))
}

// rayLineIntersect intersects a ray p = origin + t*dir (t>=0) with the
// finite segment [a,b].
func rayLineIntersect(r Ray, a, b Point) (t float64, ok bool) {
	edge := b.Minus(a)
	denom := r.Dir.Cross(edge)
	if math.Abs(denom) < 1e-14 {
		return 0, false
	}
	diff := a.Minus(r.Origin)
	t = diff.Cross(edge) / denom
	s := diff.Cross(r.Dir) / denom
	if t < 0 || s < 0 || s > 1 {
		return 0, false
	}
	return t, true
}

func sortIntersections(hits []Intersection) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].T < hits[j-1].T; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}
