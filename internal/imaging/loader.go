package imaging

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder

	"github.com/ironsheep/spotsize/internal/source"
)

// Loader decodes scan images from a source.Opener and caches them by
// location.
//
// Loader is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or Clear().
// Batch runs over many scans should Evict each location once it has been sized.
//
// # Example Usage
//
//	loader := imaging.NewLoader(source.NewRouter())
//	gray, err := loader.LoadGray(ctx, "/scans/dd50_T12_06152023.tif")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	loader.Evict("/scans/dd50_T12_06152023.tif")
type Loader struct {
	opener source.Opener

	mu      sync.RWMutex
	images  map[string]image.Image
	formats map[string]string
}

// NewLoader creates an empty loader reading through opener. A nil opener
// reads from the local filesystem.
func NewLoader(opener source.Opener) *Loader {
	if opener == nil {
		opener = source.File{}
	}
	return &Loader{
		opener:  opener,
		images:  make(map[string]image.Image),
		formats: make(map[string]string),
	}
}

// Load retrieves an image from the cache or decodes it from the opener.
//
// Supported formats are PNG, JPEG, GIF, TIFF and BMP. The image is cached
// under the exact location string provided.
func (l *Loader) Load(ctx context.Context, location string) (image.Image, error) {
	l.mu.RLock()
	if img, ok := l.images[location]; ok {
		l.mu.RUnlock()
		return img, nil
	}
	l.mu.RUnlock()

	rc, err := l.opener.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer rc.Close()

	img, format, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	l.mu.Lock()
	l.images[location] = img
	l.formats[location] = format
	l.mu.Unlock()

	return img, nil
}

// LoadGray loads location and returns its single-channel 8-bit form.
func (l *Loader) LoadGray(ctx context.Context, location string) (*image.Gray, error) {
	img, err := l.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	return Grayscale(img), nil
}

// Clear removes all images from the cache.
func (l *Loader) Clear() {
	l.mu.Lock()
	l.images = make(map[string]image.Image)
	l.formats = make(map[string]string)
	l.mu.Unlock()
}

// Evict removes a specific image from the cache. Unknown locations are ignored.
func (l *Loader) Evict(location string) {
	l.mu.Lock()
	delete(l.images, location)
	delete(l.formats, location)
	l.mu.Unlock()
}

// ImageInfo describes a decoded scan.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder that read the image: "png", "jpeg", "gif",
	// "tiff" or "bmp".
	Format string `json:"format"`

	// ColorDepth is "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// Grayscale is true when the decoded image has a single channel.
	Grayscale bool `json:"grayscale"`
}

// Info loads location and reports its dimensions and encoding.
func (l *Loader) Info(ctx context.Context, location string) (*ImageInfo, error) {
	img, err := l.Load(ctx, location)
	if err != nil {
		return nil, err
	}

	l.mu.RLock()
	format := l.formats[location]
	l.mu.RUnlock()

	colorDepth := "8-bit"
	grayscale := false
	switch img.(type) {
	case *image.Gray:
		grayscale = true
	case *image.Gray16:
		grayscale = true
		colorDepth = "16-bit"
	case *image.RGBA64, *image.NRGBA64:
		colorDepth = "16-bit"
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Format:     format,
		ColorDepth: colorDepth,
		Grayscale:  grayscale,
	}, nil
}
