package sizing

import (
	"fmt"
	"image"

	"github.com/ironsheep/spotsize/internal/detection"
	"github.com/ironsheep/spotsize/internal/imaging"
)

// Thresholds drives the binarisation and edge detection of a scan.
//
// Pixels brighter than Low become High, the rest 0. After inversion, Canny
// runs with hysteresis limits 255-High and 255-Low.
type Thresholds struct {
	Low  int `json:"low" yaml:"low"`
	High int `json:"high" yaml:"high"`
}

// DefaultThresholds keeps every non-black pixel on the bright side.
var DefaultThresholds = Thresholds{Low: 0, High: 50}

// Validate checks both values fit an 8-bit image.
func (t Thresholds) Validate() error {
	if t.Low < 0 || t.Low > 255 || t.High < 0 || t.High > 255 {
		return fmt.Errorf("thresholds must be within 0-255, got low=%d high=%d", t.Low, t.High)
	}
	return nil
}

// CannyLimits returns the hysteresis limits applied to the inverted image.
func (t Thresholds) CannyLimits() (low, high int) {
	return 255 - t.High, 255 - t.Low
}

// Extractor finds the external contours of residues in a grayscale scan.
type Extractor interface {
	ExtractContours(gray *image.Gray, th Thresholds) ([]detection.Contour, error)
}

// NativeExtractor is the pure Go pipeline: threshold, invert, Canny, then
// external contour tracing.
type NativeExtractor struct{}

func (NativeExtractor) ExtractContours(gray *image.Gray, th Thresholds) ([]detection.Contour, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	edges := EdgeMap(gray, th)
	return detection.ExternalContours(edges), nil
}

// EdgeMap returns the Canny edge map of gray after thresholding and
// inversion.
func EdgeMap(gray *image.Gray, th Thresholds) *image.Gray {
	binary := imaging.Threshold(gray, uint8(th.Low), uint8(th.High))
	inverted := imaging.Invert(binary)
	low, high := th.CannyLimits()
	return imaging.Canny(inverted, low, high)
}
