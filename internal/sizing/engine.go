// Package sizing measures the residues left on a spot-test card.
//
// An Engine loads the scan of a spot.Sample, extracts the external contours
// of every residue, converts each contour's area into an equivalent circle
// diameter, calibrates it and scales it to micrometres. The overlay of the
// detected contours is handed to a display.Renderer as a side channel.
package sizing

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/spotsize/internal/aerosol"
	"github.com/ironsheep/spotsize/internal/detection"
	"github.com/ironsheep/spotsize/internal/display"
	"github.com/ironsheep/spotsize/internal/imaging"
	"github.com/ironsheep/spotsize/internal/logger"
	"github.com/ironsheep/spotsize/internal/metrics"
	"github.com/ironsheep/spotsize/internal/spot"
)

// OverlayTitle is the window title of the contour overlay.
const OverlayTitle = "contour"

// ImageLoader decodes the scan at a location.
type ImageLoader interface {
	Load(ctx context.Context, location string) (image.Image, error)
}

// Result is one measurement of a scan. All slices are in contour
// extraction order and have equal length.
type Result struct {
	Contours []detection.Contour `json:"-"`

	// PixelDiameters are the equivalent circle diameters in pixels, before
	// calibration.
	PixelDiameters []float64 `json:"pixel_diameters"`

	// Sizes are the calibrated diameters in micrometres.
	Sizes []float64 `json:"sizes"`

	// Particles describe the shape of each contour in pixels.
	Particles []detection.Particle `json:"particles"`
}

// Engine runs the sizing pipeline. It holds no per-sample state and can be
// reused across samples.
type Engine struct {
	loader       ImageLoader
	thresholds   Thresholds
	region       imaging.Region
	extractor    Extractor
	renderer     display.Renderer
	calibration  aerosol.Calibration
	contourColor string
	log          *logger.Logger
	metrics      *metrics.Recorder
}

// Option configures an Engine.
type Option func(*Engine)

func WithThresholds(th Thresholds) Option {
	return func(e *Engine) {
		e.thresholds = th
	}
}

// WithRegion restricts extraction to part of the scan, e.g. to leave out
// the card label. Contours keep full-scan coordinates.
func WithRegion(r imaging.Region) Option {
	return func(e *Engine) {
		e.region = r
	}
}

func WithExtractor(x Extractor) Option {
	return func(e *Engine) {
		e.extractor = x
	}
}

func WithRenderer(r display.Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

func WithCalibration(c aerosol.Calibration) Option {
	return func(e *Engine) {
		e.calibration = c
	}
}

// WithContourColor sets the overlay stroke colour as #RRGGBB.
func WithContourColor(hex string) Option {
	return func(e *Engine) {
		e.contourColor = hex
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New returns an Engine reading scans through loader. Defaults: default
// thresholds, the pure Go extractor, no rendering, identity calibration
// and a discarding logger.
func New(loader ImageLoader, opts ...Option) *Engine {
	e := &Engine{
		loader:       loader,
		thresholds:   DefaultThresholds,
		extractor:    NativeExtractor{},
		renderer:     display.Nop{},
		calibration:  aerosol.PhysicalSize,
		contourColor: imaging.DefaultContourColor,
		log:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Measure sizes the scan of s without modifying s.
//
// Load failures are returned as *ImageLoadError and overlay failures as
// *RenderError. A scan with no residues yields empty, non-nil slices.
func (e *Engine) Measure(ctx context.Context, s *spot.Sample) (*Result, error) {
	if err := e.thresholds.Validate(); err != nil {
		return nil, err
	}

	img, err := e.loader.Load(ctx, s.FilePath)
	if err != nil {
		e.metrics.Failure(metrics.StageLoad)
		return nil, &ImageLoadError{Location: s.FilePath, Err: err}
	}
	gray := imaging.Grayscale(img)
	e.log.Debug("loaded %s (%dx%d)", s.FilePath, gray.Bounds().Dx(), gray.Bounds().Dy())

	if gray, err = imaging.CropGray(gray, e.region); err != nil {
		e.metrics.Failure(metrics.StageExtract)
		return nil, fmt.Errorf("failed to crop %s: %w", s.FilePath, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contours, err := e.extractor.ExtractContours(gray, e.thresholds)
	if err != nil {
		e.metrics.Failure(metrics.StageExtract)
		return nil, fmt.Errorf("failed to extract contours from %s: %w", s.FilePath, err)
	}
	e.log.Debug("extracted %d external contours (thresholds %d/%d)", len(contours), e.thresholds.Low, e.thresholds.High)

	res := &Result{
		Contours:       contours,
		PixelDiameters: make([]float64, 0, len(contours)),
		Sizes:          make([]float64, 0, len(contours)),
		Particles:      make([]detection.Particle, 0, len(contours)),
	}
	for _, c := range contours {
		px := detection.EquivalentDiameter(c.Area())
		res.PixelDiameters = append(res.PixelDiameters, px)
		res.Sizes = append(res.Sizes, e.calibration(px)*s.ScaleMicronsPerPixel)
		res.Particles = append(res.Particles, detection.Describe(c))
	}
	e.log.Trace("pixel diameters for %s: %v", s.FilePath, res.PixelDiameters)

	if err := e.render(img, contours); err != nil {
		e.metrics.Failure(metrics.StageRender)
		return nil, err
	}

	e.metrics.SampleSized(res.Sizes)
	return res, nil
}

// Size measures s and replaces s.Sizes with the result. On error s is
// left unchanged.
func (e *Engine) Size(ctx context.Context, s *spot.Sample) error {
	res, err := e.Measure(ctx, s)
	if err != nil {
		return err
	}
	s.Sizes = res.Sizes
	e.log.Info("sized %s: %d particles", s.FilePath, len(s.Sizes))
	return nil
}

func (e *Engine) render(img image.Image, contours []detection.Contour) error {
	// Nothing to show; skip drawing and resizing.
	if _, ok := e.renderer.(display.Nop); ok {
		return nil
	}

	overlay, err := imaging.DrawContours(img, contours, e.contourColor)
	if err != nil {
		return &RenderError{Title: OverlayTitle, Err: err}
	}
	if err := e.renderer.Render(OverlayTitle, display.Envelope(overlay)); err != nil {
		return &RenderError{Title: OverlayTitle, Err: err}
	}
	return nil
}
