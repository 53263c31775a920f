package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"
)

// rectangleGray creates a black rectangle in the centre of a white image.
func rectangleGray(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(255)
			if x >= width/4 && x < 3*width/4 && y >= height/4 && y < 3*height/4 {
				v = 0
			}
			img.SetGray(x, y, color.Gray{v})
		}
	}
	return img
}

func countEdges(img *image.Gray) int {
	n := 0
	for _, v := range img.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

func TestEdgeDetect(t *testing.T) {
	result, err := EdgeDetect(rectangleGray(100, 100), 50, 150)
	if err != nil {
		t.Fatalf("EdgeDetect failed: %v", err)
	}

	if result.Width != 100 || result.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}
	if result.EdgePixels == 0 {
		t.Error("expected edge pixels around the rectangle")
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	edgeImg, err := png.Decode(bytes.NewReader(decoded))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	if edgeImg.Bounds().Dx() != 100 || edgeImg.Bounds().Dy() != 100 {
		t.Errorf("decoded image dimensions: got %dx%d, want 100x100",
			edgeImg.Bounds().Dx(), edgeImg.Bounds().Dy())
	}

	// Interior of the rectangle has no gradient.
	if r, _, _, _ := edgeImg.At(50, 50).RGBA(); r != 0 {
		t.Error("rectangle interior should not be an edge")
	}
}

func TestEdgeDetect_ColorInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			if x < 30 {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}

	result, err := EdgeDetect(img, 50, 150)
	if err != nil {
		t.Fatalf("EdgeDetect failed: %v", err)
	}
	if result.EdgePixels == 0 {
		t.Error("black/white boundary in a colour image was not detected")
	}
}

func TestCanny_UniformImage(t *testing.T) {
	for _, v := range []uint8{0, 128, 205, 255} {
		img := image.NewGray(image.Rect(0, 0, 50, 50))
		for i := range img.Pix {
			img.Pix[i] = v
		}
		if n := countEdges(Canny(img, 0, 0)); n != 0 {
			t.Errorf("uniform %d: expected no edges, got %d", v, n)
		}
	}
}

func TestCanny_StrongEdge(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 50; x < 100; x++ {
			img.SetGray(x, y, color.Gray{255})
		}
	}

	edges := Canny(img, 50, 150)

	// Every interior row should mark the boundary near x=50.
	for y := 1; y < 99; y++ {
		found := false
		for x := 48; x <= 52; x++ {
			if edges.GrayAt(x, y).Y == 255 {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("row %d: strong vertical edge was not detected", y)
		}
	}

	// Nothing far from the boundary.
	for y := 0; y < 100; y++ {
		if edges.GrayAt(10, y).Y != 0 || edges.GrayAt(90, y).Y != 0 {
			t.Fatalf("row %d: spurious edge away from the boundary", y)
		}
	}
}

func TestCanny_SwappedThresholds(t *testing.T) {
	img := rectangleGray(100, 100)
	a := Canny(img, 50, 150)
	b := Canny(img, 150, 50)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("swapped thresholds should give the same edge map")
	}
}

func TestCanny_HighThresholdSuppressesAll(t *testing.T) {
	// A 0-255 step has a Scharr response well below 10000.
	if n := countEdges(Canny(rectangleGray(100, 100), 10000, 10000)); n != 0 {
		t.Errorf("expected no edges above an unreachable threshold, got %d", n)
	}
}

func TestCanny_SmallAndEmpty(t *testing.T) {
	small := image.NewGray(image.Rect(0, 0, 5, 5))
	for i := range small.Pix {
		small.Pix[i] = 128
	}
	edges := Canny(small, 50, 150)
	if edges.Bounds() != small.Bounds() {
		t.Errorf("bounds: got %v, want %v", edges.Bounds(), small.Bounds())
	}

	empty := Canny(image.NewGray(image.Rect(0, 0, 0, 0)), 50, 150)
	if !empty.Bounds().Empty() {
		t.Errorf("expected empty result, got %v", empty.Bounds())
	}
}

func TestCanny_SubImage(t *testing.T) {
	base := rectangleGray(100, 100)
	sub := base.SubImage(image.Rect(10, 10, 90, 90)).(*image.Gray)

	edges := Canny(sub, 50, 150)
	if edges.Bounds() != sub.Bounds() {
		t.Fatalf("bounds: got %v, want %v", edges.Bounds(), sub.Bounds())
	}
	if countEdges(edges) == 0 {
		t.Error("expected edges in sub-image")
	}
}

func TestGaussianBlur(t *testing.T) {
	width, height := 10, 10
	img := make([]float64, width*height)
	for i := range img {
		img[i] = 128
	}

	blurred := gaussianBlur(img, width, height)

	for i, v := range blurred {
		if math.Abs(v-128) > 1e-9 {
			t.Fatalf("blurred[%d]: got %.3f, want 128", i, v)
		}
	}
}

func TestGaussianBlur_WithSpot(t *testing.T) {
	width, height := 11, 11
	img := make([]float64, width*height)
	img[5*width+5] = 255

	blurred := gaussianBlur(img, width, height)

	if got, want := blurred[5*width+5], 255*41/273.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("centre: got %.3f, want %.3f", got, want)
	}
	for _, i := range []int{5*width + 4, 5*width + 6, 4*width + 5, 6*width + 5} {
		if blurred[i] == 0 {
			t.Error("neighbors should receive some brightness from blur")
		}
	}
}

func TestScharr(t *testing.T) {
	width, height := 5, 5
	img := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 3; x < width; x++ {
			img[y*width+x] = 10
		}
	}

	gx, gy, mag := scharr(img, width, height)
	i := 2*width + 2
	if gx[i] != 160 || gy[i] != 0 || mag[i] != 160 {
		t.Errorf("at step: gx=%v gy=%v mag=%v, want 160 0 160", gx[i], gy[i], mag[i])
	}
	if mag[2*width] != 0 {
		t.Errorf("flat region should have zero magnitude, got %v", mag[2*width])
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},   // within range
		{-1, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tt := range tests {
		got := clamp(tt.val, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("clamp(%d, %d, %d): got %d, want %d",
				tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}
