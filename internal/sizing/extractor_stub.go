//go:build !gocv

package sizing

// NewOpenCVExtractor is unavailable without OpenCV; the NativeExtractor
// runs the same pipeline in pure Go.
func NewOpenCVExtractor() (Extractor, error) {
	return nil, ErrOpenCVUnavailable
}
