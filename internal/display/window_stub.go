//go:build !gocv

package display

// NewWindow is unavailable without OpenCV; use PNGWriter for headless runs.
func NewWindow() (Renderer, error) {
	return nil, ErrWindowUnavailable
}
