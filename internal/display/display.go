// Package display shows sizing overlays to an operator. Rendering is a side
// channel: renderers receive finished frames and never feed back into the
// measured sizes.
package display

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"
)

// Display envelope for overlays. The height keeps the 0.23 aspect of a
// spot-test card.
const (
	EnvelopeWidth  = 1200
	EnvelopeHeight = int(0.23 * EnvelopeWidth)
)

// ErrWindowUnavailable is returned by NewWindow in builds without OpenCV.
var ErrWindowUnavailable = errors.New("display: window rendering requires the gocv build tag")

// Renderer presents a frame under a title.
type Renderer interface {
	Render(title string, frame image.Image) error
}

// Envelope resizes img to the fixed display envelope.
func Envelope(img image.Image) image.Image {
	return imaging.Resize(img, EnvelopeWidth, EnvelopeHeight, imaging.Lanczos)
}

// Nop discards frames.
type Nop struct{}

func (Nop) Render(string, image.Image) error { return nil }

// Frame is one rendered overlay.
type Frame struct {
	Title string
	Image image.Image
}

// Recorder keeps every frame it is given.
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
}

func (r *Recorder) Render(title string, frame image.Image) error {
	r.mu.Lock()
	r.frames = append(r.frames, Frame{Title: title, Image: frame})
	r.mu.Unlock()
	return nil
}

// Frames returns a copy of the recorded frames in render order.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

// PNGWriter writes each frame to <Dir>/<title>.png, creating Dir if needed.
// A later frame with the same title replaces the earlier file.
type PNGWriter struct {
	Dir string
}

func (w PNGWriter) Render(title string, frame image.Image) error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create display dir: %w", err)
	}

	path := filepath.Join(w.Dir, title+".png")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := png.Encode(f, frame); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
