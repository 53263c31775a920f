package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Grayscale returns img as a single-channel 8-bit image. *image.Gray input
// is returned unchanged; anything else goes through bild's luminance
// conversion. The result keeps the bounds of img.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	return grayFromRGBA(effect.Grayscale(img), img.Bounds())
}

// grayFromRGBA copies the red channel of a bild result into a Gray with the
// given bounds. bild rebases its output to the origin, so rows are matched
// by offset rather than by coordinate.
func grayFromRGBA(rgba *image.RGBA, bounds image.Rectangle) *image.Gray {
	dst := image.NewGray(bounds)
	rb := rgba.Bounds()
	w, h := min(rb.Dx(), bounds.Dx()), min(rb.Dy(), bounds.Dy())
	for y := 0; y < h; y++ {
		src := rgba.Pix[rgba.PixOffset(rb.Min.X, rb.Min.Y+y):]
		out := dst.Pix[dst.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < w; x++ {
			out[x] = src[4*x]
		}
	}
	return dst
}

// Threshold applies a binary threshold: pixels strictly brighter than
// cutoff become maxValue, the rest become 0. With cutoff 0 only pure black
// stays off.
func Threshold(gray *image.Gray, cutoff, maxValue uint8) *image.Gray {
	bounds := gray.Bounds()
	dst := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		src := gray.Pix[gray.PixOffset(bounds.Min.X, y):]
		out := dst.Pix[dst.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			if src[x] > cutoff {
				out[x] = maxValue
			}
		}
	}
	return dst
}

// Invert maps every pixel v to 255-v using bild's colour inversion.
func Invert(gray *image.Gray) *image.Gray {
	return grayFromRGBA(effect.Invert(gray), gray.Bounds())
}
