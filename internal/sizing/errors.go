package sizing

import (
	"errors"
	"fmt"
)

// ErrOpenCVUnavailable is returned by NewOpenCVExtractor in builds without
// the gocv tag.
var ErrOpenCVUnavailable = errors.New("sizing: OpenCV extractor requires the gocv build tag")

// ImageLoadError reports a scan that could not be read or decoded.
type ImageLoadError struct {
	Location string
	Err      error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Location, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// RenderError reports a failure to present the contour overlay.
type RenderError struct {
	Title string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %q: %v", e.Title, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
