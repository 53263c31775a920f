//go:build gocv

package display

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Window shows each frame in a resizable OpenCV window and blocks until a
// key is pressed.
type Window struct{}

// NewWindow returns a blocking OpenCV window renderer.
func NewWindow() (Renderer, error) {
	return Window{}, nil
}

func (Window) Render(title string, frame image.Image) error {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	window := gocv.NewWindow(title)
	defer window.Close()

	bounds := frame.Bounds()
	window.ResizeWindow(bounds.Dx(), bounds.Dy())
	window.IMShow(mat)
	window.WaitKey(0)
	return nil
}
