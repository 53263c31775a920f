package detection

import (
	"image"
	"math"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// (X1, Y1) is the top-left corner (inclusive) and (X2, Y2) the bottom-right
// corner (exclusive), matching image.Rectangle.
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Point is a sub-pixel position in image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Particle describes the shape of one traced residue.
type Particle struct {
	// Bounds encloses every contour pixel.
	Bounds Bounds `json:"bounds"`

	// Centroid is the centre of mass of the contour polygon.
	Centroid Point `json:"centroid"`

	// Area is the polygon area in square pixels.
	Area float64 `json:"area"`

	// Perimeter is the polygon perimeter in pixels.
	Perimeter float64 `json:"perimeter"`

	// Circularity is 4πA/P²: 1 for a circle, lower for elongated or
	// merged residues. Zero when the perimeter is zero.
	Circularity float64 `json:"circularity"`
}

// Perimeter returns the length of the closed polygon through the contour
// points. A single point has zero perimeter.
func (c Contour) Perimeter() float64 {
	if len(c) < 2 {
		return 0
	}
	var sum float64
	for i, p := range c {
		q := c[(i+1)%len(c)]
		sum += math.Hypot(float64(q.X-p.X), float64(q.Y-p.Y))
	}
	return sum
}

// Centroid returns the centre of mass of the contour polygon. Degenerate
// contours (zero area) fall back to the mean of their points.
func (c Contour) Centroid() Point {
	if len(c) == 0 {
		return Point{}
	}

	var a2, cx, cy float64
	for i, p := range c {
		q := c[(i+1)%len(c)]
		cross := float64(p.X*q.Y - q.X*p.Y)
		a2 += cross
		cx += float64(p.X+q.X) * cross
		cy += float64(p.Y+q.Y) * cross
	}
	if a2 != 0 {
		return Point{X: cx / (3 * a2), Y: cy / (3 * a2)}
	}

	var sx, sy float64
	for _, p := range c {
		sx += float64(p.X)
		sy += float64(p.Y)
	}
	n := float64(len(c))
	return Point{X: sx / n, Y: sy / n}
}

// Describe measures the shape of c.
func Describe(c Contour) Particle {
	r := c.Bounds()
	p := Particle{
		Bounds:    boundsOf(r),
		Centroid:  c.Centroid(),
		Area:      c.Area(),
		Perimeter: c.Perimeter(),
	}
	if p.Perimeter > 0 {
		p.Circularity = 4 * math.Pi * p.Area / (p.Perimeter * p.Perimeter)
	}
	return p
}

func boundsOf(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}
