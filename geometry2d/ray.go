package geometry2d

// Ray is a half-line used for contact-line probing (Body.ContactLineBcs)
// and image-point reconstruction.
type Ray struct {
	Origin, Dir Point
}

func NewRay(origin, dir Point) Ray {
	return Ray{Origin: origin, Dir: dir.Unit()}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Point {
	return r.Origin.Plus(r.Dir.Scaled(t))
}

// Intersection is one entry/exit of a ray with a shape boundary, kept in
// parameter order.1.
type Intersection struct {
	T float64
	Point Point
	Normal Point // outward normal of the crossed edge
}
