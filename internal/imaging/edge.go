package imaging

import (
	"image"
	"math"
)

// EdgeDetectResult contains an edge map encoded as base64 PNG.
//
// The result is a grayscale image where white pixels (255) represent detected
// edges and black pixels (0) represent non-edges.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of pixels marked as edges.
	EdgePixels int `json:"edge_pixels"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png" for edge detection results.
	MimeType string `json:"mime_type"`
}

// EdgeDetect runs Canny on the grayscale form of img and returns the edge
// map as a base64 PNG. Thresholds are in 8-bit gradient units, see Canny.
func EdgeDetect(img image.Image, thresholdLow, thresholdHigh int) (*EdgeDetectResult, error) {
	return EncodeEdges(Canny(Grayscale(img), thresholdLow, thresholdHigh))
}

// EncodeEdges counts the edge pixels of a binary edge map and encodes it.
func EncodeEdges(edges *image.Gray) (*EdgeDetectResult, error) {
	encoded, err := EncodePNGBase64(edges)
	if err != nil {
		return nil, err
	}

	count := 0
	bounds := edges.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := edges.Pix[edges.PixOffset(bounds.Min.X, y):edges.PixOffset(bounds.Max.X, y)]
		for _, v := range row {
			if v != 0 {
				count++
			}
		}
	}

	return &EdgeDetectResult{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		EdgePixels:  count,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// Canny detects edges in a grayscale image and returns a binary edge map
// with the same bounds (255 = edge, 0 = background).
//
// # Algorithm
//
//  1. Gaussian blur: 5x5 kernel to reduce noise
//
//  2. Gradient computation: Scharr operators for X and Y gradients on the
//     blurred 0-255 intensities, magnitude = sqrt(Gx² + Gy²)
//
//  3. Non-maximum suppression: a pixel survives only if its magnitude is at
//     least that of both neighbours along the quantised gradient direction
//     (0°, 45°, 90°, 135°)
//
//  4. Hysteresis thresholding:
//     - Pixels with magnitude above high are strong edges
//     - Pixels above low are weak edges, kept only when 8-connected
//     (directly or through other weak edges) to a strong edge
//
// Thresholds are in the same units as the gradient magnitude, not
// normalised to 0-1. If low > high they are swapped. A uniform image has
// zero gradient everywhere and never yields edges.
func Canny(gray *image.Gray, low, high int) *image.Gray {
	if low > high {
		low, high = high, low
	}

	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	result := image.NewGray(bounds)
	if width == 0 || height == 0 {
		return result
	}

	pix := make([]float64, width*height)
	for y := 0; y < height; y++ {
		row := gray.Pix[gray.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < width; x++ {
			pix[y*width+x] = float64(row[x])
		}
	}

	blurred := gaussianBlur(pix, width, height)
	gx, gy, magnitude := scharr(blurred, width, height)

	// Non-maximum suppression; border pixels are never edges.
	suppressed := make([]float64, width*height)
	tan22 := math.Tan(math.Pi / 8)
	tan67 := math.Tan(3 * math.Pi / 8)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			mag := magnitude[i]
			if mag <= float64(low) {
				continue
			}

			ax := math.Abs(gx[i])
			ay := math.Abs(gy[i])

			var n1, n2 float64
			switch {
			case ay <= ax*tan22:
				n1 = magnitude[i-1]
				n2 = magnitude[i+1]
			case ay >= ax*tan67:
				n1 = magnitude[i-width]
				n2 = magnitude[i+width]
			case gx[i]*gy[i] > 0:
				// Gradient points down-right or up-left.
				n1 = magnitude[i-width-1]
				n2 = magnitude[i+width+1]
			default:
				n1 = magnitude[i-width+1]
				n2 = magnitude[i+width-1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[i] = mag
			}
		}
	}

	// Hysteresis: grow strong edges through connected weak pixels.
	lowThresh := float64(low)
	highThresh := float64(high)
	stack := make([]int, 0)
	for i, v := range suppressed {
		if v > highThresh {
			result.Pix[pixOffset(result, i, width)] = 255
			stack = append(stack, i)
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x := i % width
		y := i / width

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				j := ny*width + nx
				off := pixOffset(result, j, width)
				if result.Pix[off] == 0 && suppressed[j] > lowThresh {
					result.Pix[off] = 255
					stack = append(stack, j)
				}
			}
		}
	}

	return result
}

// pixOffset maps a dense row-major index to the Pix offset of dst.
func pixOffset(dst *image.Gray, i, width int) int {
	return (i/width)*dst.Stride + i%width
}

// scharr computes Scharr X and Y derivatives and their L2 magnitude.
//
//	Gx: -3 0 3    Gy: -3 -10 -3
//	   -10 0 10         0   0  0
//	    -3 0 3          3  10  3
//
// Border pixels use clamped (replicated) edge values.
func scharr(img []float64, width, height int) (gx, gy, magnitude []float64) {
	kx := [3][3]float64{
		{-3, 0, 3},
		{-10, 0, 10},
		{-3, 0, 3},
	}
	ky := [3][3]float64{
		{-3, -10, -3},
		{0, 0, 0},
		{3, 10, 3},
	}

	gx = make([]float64, width*height)
	gy = make([]float64, width*height)
	magnitude = make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sx, sy float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					v := img[clamp(y+dy, 0, height-1)*width+clamp(x+dx, 0, width-1)]
					sx += v * kx[dy+1][dx+1]
					sy += v * ky[dy+1][dx+1]
				}
			}
			i := y*width + x
			gx[i] = sx
			gy[i] = sy
			magnitude[i] = math.Sqrt(sx*sx + sy*sy)
		}
	}
	return gx, gy, magnitude
}

// gaussianBlur applies a 5x5 Gaussian blur to reduce noise before edge detection.
//
// Uses a standard 5x5 Gaussian kernel with sigma ≈ 1.4:
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
//
// Total kernel sum = 273, used for normalization.
// Border pixels use clamped (replicated) edge values.
func gaussianBlur(img []float64, width, height int) []float64 {
	kernel := [5][5]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	kernelSum := 273.0

	result := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					sum += img[py*width+px] * kernel[ky+2][kx+2]
				}
			}
			result[y*width+x] = sum / kernelSum
		}
	}
	return result
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
