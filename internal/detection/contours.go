package detection

import (
	"image"
	"math"
)

// Contour is an ordered, closed sequence of pixel coordinates along the
// outer border of a connected region. The last point connects back to the
// first.
type Contour []image.Point

// Area returns the absolute shoelace area of the polygon through the
// contour's pixel centres. Contours with fewer than three points have zero
// area.
func (c Contour) Area() float64 {
	if len(c) < 3 {
		return 0
	}
	var sum int
	for i, p := range c {
		q := c[(i+1)%len(c)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(float64(sum)) / 2
}

// Bounds returns the smallest rectangle containing every contour pixel.
// Max is exclusive, matching image.Rectangle.
func (c Contour) Bounds() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c[0], Max: c[0].Add(image.Pt(1, 1))}
	for _, p := range c[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}

// EquivalentDiameter returns the diameter of the circle with the given
// area: sqrt(4A/π).
func EquivalentDiameter(area float64) float64 {
	if area <= 0 {
		return 0
	}
	return math.Sqrt(4 * area / math.Pi)
}

// Moore neighbourhood in clockwise order for y-down image coordinates,
// starting east.
var neighbours = [8]image.Point{
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
	{-1, 0},  // W
	{-1, -1}, // NW
	{0, -1},  // N
	{1, -1},  // NE
}

const dirWest = 4

// direction returns the index in neighbours of a unit offset, or -1.
func direction(d image.Point) int {
	for i, n := range neighbours {
		if n == d {
			return i
		}
	}
	return -1
}

// ExternalContours finds the outer borders of the connected regions of
// non-zero pixels in a binary edge map.
//
// Regions are 8-connected; background is 4-connected. A region is external
// when it touches the image border or borders the background that reaches
// the border. Regions lying inside another region's hole are skipped, as
// are the holes themselves. Each outer border is traced clockwise with
// Moore neighbour tracing and compressed by dropping points in the middle
// of straight horizontal, vertical or diagonal runs.
//
// Contours are returned in raster order of each region's top-left pixel.
// Coordinates are absolute image coordinates.
func ExternalContours(edges *image.Gray) []Contour {
	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	contours := make([]Contour, 0)
	if width == 0 || height == 0 {
		return contours
	}

	fg := make([]bool, width*height)
	for y := 0; y < height; y++ {
		row := edges.Pix[edges.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < width; x++ {
			fg[y*width+x] = row[x] != 0
		}
	}

	labels, starts := labelRegions(fg, width, height)
	outside := outerBackground(fg, width, height)

	external := make([]bool, len(starts))
	for i, l := range labels {
		if l == 0 || external[l-1] {
			continue
		}
		x, y := i%width, i/width
		if x == 0 || y == 0 || x == width-1 || y == height-1 ||
			outside[i-1] || outside[i+1] || outside[i-width] || outside[i+width] {
			external[l-1] = true
		}
	}

	for l, start := range starts {
		if !external[l] {
			continue
		}
		chain := compressChain(traceBorder(fg, width, height, start))
		contour := make(Contour, len(chain))
		for i, p := range chain {
			contour[i] = p.Add(bounds.Min)
		}
		contours = append(contours, contour)
	}

	return contours
}

// labelRegions assigns 8-connected labels (1-based) to foreground pixels
// with an iterative flood fill and returns each region's first pixel in
// raster order.
func labelRegions(fg []bool, width, height int) ([]int, []image.Point) {
	labels := make([]int, width*height)
	starts := make([]image.Point, 0)

	for i, on := range fg {
		if !on || labels[i] != 0 {
			continue
		}
		starts = append(starts, image.Pt(i%width, i/width))
		label := len(starts)

		stack := []int{i}
		labels[i] = label
		for len(stack) > 0 {
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := j%width, j/width

			for _, n := range neighbours {
				nx, ny := x+n.X, y+n.Y
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				k := ny*width + nx
				if fg[k] && labels[k] == 0 {
					labels[k] = label
					stack = append(stack, k)
				}
			}
		}
	}

	return labels, starts
}

// outerBackground marks background pixels 4-connected to the image border.
func outerBackground(fg []bool, width, height int) []bool {
	outside := make([]bool, width*height)
	stack := make([]int, 0)

	push := func(x, y int) {
		i := y*width + x
		if !fg[i] && !outside[i] {
			outside[i] = true
			stack = append(stack, i)
		}
	}

	for x := 0; x < width; x++ {
		push(x, 0)
		push(x, height-1)
	}
	for y := 0; y < height; y++ {
		push(0, y)
		push(width-1, y)
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width
		if x > 0 {
			push(x-1, y)
		}
		if x < width-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < height-1 {
			push(x, y+1)
		}
	}

	return outside
}

// traceBorder follows the outer border of the region containing start,
// which must be the region's first pixel in raster order. It stops when it
// is about to repeat its first move (Jacob's stopping criterion).
func traceBorder(fg []bool, width, height int, start image.Point) []image.Point {
	isFG := func(p image.Point) bool {
		return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height && fg[p.Y*width+p.X]
	}

	border := []image.Point{start}
	p := start
	backtrack := dirWest
	var second image.Point

	// Each border pixel is entered at most four times.
	maxSteps := 4*width*height + 8
	for step := 0; step < maxSteps; step++ {
		found := -1
		for k := 1; k <= 8; k++ {
			d := (backtrack + k) % 8
			if isFG(p.Add(neighbours[d])) {
				found = d
				break
			}
		}
		if found < 0 {
			// Isolated pixel.
			break
		}

		q := p.Add(neighbours[found])
		if step == 0 {
			second = q
		} else if p == start && q == second {
			break
		}

		prev := neighbours[(found+7)%8]
		backtrack = direction(prev.Sub(neighbours[found]))
		border = append(border, q)
		p = q
	}

	if len(border) > 1 && border[len(border)-1] == start {
		border = border[:len(border)-1]
	}
	return border
}

// compressChain drops points that continue a straight run in the same
// direction, keeping only the corners of the closed chain.
func compressChain(border []image.Point) []image.Point {
	n := len(border)
	if n < 3 {
		return border
	}

	kept := make([]image.Point, 0, n)
	for i, p := range border {
		in := p.Sub(border[(i+n-1)%n])
		out := border[(i+1)%n].Sub(p)
		if in != out {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return border
	}
	return kept
}
