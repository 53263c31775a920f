//go:build gocv

package sizing

import (
	"fmt"
	"image"
	"image/draw"

	"gocv.io/x/gocv"

	"github.com/ironsheep/spotsize/internal/detection"
)

// OpenCVExtractor runs the pipeline through OpenCV.
type OpenCVExtractor struct{}

// NewOpenCVExtractor returns the OpenCV-backed extractor.
func NewOpenCVExtractor() (Extractor, error) {
	return OpenCVExtractor{}, nil
}

func (OpenCVExtractor) ExtractContours(gray *image.Gray, th Thresholds) ([]detection.Contour, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}

	// The Mat conversion assumes tightly packed rows.
	if gray.Stride != gray.Rect.Dx() {
		packed := image.NewGray(gray.Rect)
		draw.Draw(packed, packed.Rect, gray, gray.Rect.Min, draw.Src)
		gray = packed
	}

	src, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(src, &binary, float32(th.Low), float32(th.High), gocv.ThresholdBinary)
	gocv.BitwiseNot(binary, &binary)

	edges := gocv.NewMat()
	defer edges.Close()
	low, high := th.CannyLimits()
	gocv.Canny(binary, &edges, float32(low), float32(high))

	found := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer found.Close()

	origin := gray.Bounds().Min
	contours := make([]detection.Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		pts := found.At(i).ToPoints()
		c := make(detection.Contour, len(pts))
		for j, p := range pts {
			c[j] = p.Add(origin)
		}
		contours = append(contours, c)
	}
	return contours, nil
}
