package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/spotsize/internal/aerosol"
	"github.com/ironsheep/spotsize/internal/config"
	"github.com/ironsheep/spotsize/internal/detection"
	"github.com/ironsheep/spotsize/internal/display"
	"github.com/ironsheep/spotsize/internal/distribution"
	"github.com/ironsheep/spotsize/internal/imaging"
	"github.com/ironsheep/spotsize/internal/metrics"
	"github.com/ironsheep/spotsize/internal/sizing"
	"github.com/ironsheep/spotsize/internal/spot"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "spot_size_particles").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Arguments a tool rejects return code -32602; errors while the tool runs
// return code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	s.log.Debug("tools/call %s", params.Name)
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Debug("tool %s failed: %v", params.Name, err)
		var argErr *invalidArgsError
		if errors.As(err, &argErr) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler unmarshals its arguments, fills omitted optional values
// from the server configuration and returns the result or error.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "spot_parse_filename":
		return s.handleParseFilename(args)
	case "spot_image_info":
		return s.handleImageInfo(ctx, args)
	case "spot_size_particles":
		return s.handleSizeParticles(ctx, args)
	case "spot_aerodynamic_size":
		return s.handleAerodynamicSize(args)
	case "spot_edge_detect":
		return s.handleEdgeDetect(ctx, args)
	default:
		return nil, invalidArgs(fmt.Errorf("unknown tool: %s", name))
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

var errMissingPath = errors.New("path is required")

// invalidArgsError marks a call rejected for its arguments before any work
// was done.
type invalidArgsError struct {
	err error
}

func (e *invalidArgsError) Error() string { return e.err.Error() }

func (e *invalidArgsError) Unwrap() error { return e.err }

func invalidArgs(err error) error {
	return &invalidArgsError{err: err}
}

// thresholds overlays the optional tool arguments on the configured values.
func (s *Server) thresholds(low, high *int) sizing.Thresholds {
	th := sizing.Thresholds{Low: s.cfg.Thresholds.Low, High: s.cfg.Thresholds.High}
	if low != nil {
		th.Low = *low
	}
	if high != nil {
		th.High = *high
	}
	return th
}

// region returns the tool argument, or the configured region when omitted.
func (s *Server) region(arg *imaging.Region) imaging.Region {
	if arg != nil {
		return *arg
	}
	r := s.cfg.Region
	return imaging.Region{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2}
}

// extractor returns the configured contour extractor, falling back to the
// pure Go one when OpenCV is not compiled in.
func (s *Server) extractor() sizing.Extractor {
	if s.cfg.Vision == config.VisionOpenCV {
		x, err := sizing.NewOpenCVExtractor()
		if err == nil {
			return x
		}
		s.log.Debug("using native extractor: %v", err)
	}
	return sizing.NativeExtractor{}
}

// === Sample Metadata Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

type parseFilenameResult struct {
	spot.Metadata
	Path    string `json:"path"`
	Summary string `json:"summary"`
}

func (s *Server) handleParseFilename(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, invalidArgs(err)
	}
	if a.Path == "" {
		return nil, invalidArgs(errMissingPath)
	}

	sample, err := spot.New(a.Path, s.cfg.ScaleMicronsPerPixel)
	if err != nil {
		return nil, err
	}
	return &parseFilenameResult{
		Metadata: sample.Metadata(),
		Path:     a.Path,
		Summary:  sample.String(),
	}, nil
}

func (s *Server) handleImageInfo(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, invalidArgs(err)
	}
	if a.Path == "" {
		return nil, invalidArgs(errMissingPath)
	}
	return s.loader.Info(ctx, a.Path)
}

// === Sizing Handlers ===

type sizeParticlesArgs struct {
	Path                 string          `json:"path"`
	ScaleMicronsPerPixel *float64        `json:"scale_microns_per_pixel"`
	ThresholdLow         *int            `json:"threshold_low"`
	ThresholdHigh        *int            `json:"threshold_high"`
	Region               *imaging.Region `json:"region"`
	SaltConcentration    *float64        `json:"salt_concentration"`
	IncludeOverlay       bool            `json:"include_overlay"`
}

// SizeParticlesResult is the spot_size_particles tool result.
type SizeParticlesResult struct {
	Sample            *spot.Sample         `json:"sample"`
	Summary           string               `json:"summary"`
	Thresholds        sizing.Thresholds    `json:"thresholds"`
	PixelDiameters    []float64            `json:"pixel_diameters"`
	Particles         []detection.Particle `json:"particles"`
	AerodynamicSizes  []float64            `json:"aerodynamic_sizes"`
	SaltConcentration float64              `json:"salt_concentration"`
	Distribution      distribution.Summary `json:"distribution"`

	// OverlayBase64 is the envelope-sized contour overlay, when requested.
	OverlayBase64 string `json:"overlay_base64,omitempty"`
	MimeType      string `json:"mime_type,omitempty"`
}

func (s *Server) handleSizeParticles(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sizeParticlesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, invalidArgs(err)
	}
	if a.Path == "" {
		return nil, invalidArgs(errMissingPath)
	}

	scale := s.cfg.ScaleMicronsPerPixel
	if a.ScaleMicronsPerPixel != nil {
		scale = *a.ScaleMicronsPerPixel
	}
	salt := s.cfg.SaltConcentration
	if a.SaltConcentration != nil {
		salt = *a.SaltConcentration
	}

	th := s.thresholds(a.ThresholdLow, a.ThresholdHigh)
	if err := th.Validate(); err != nil {
		return nil, invalidArgs(err)
	}
	region := s.region(a.Region)
	if err := region.Validate(); err != nil {
		return nil, invalidArgs(err)
	}

	sample, err := spot.New(a.Path, scale)
	if err != nil {
		s.metrics.Failure(metrics.StageParse)
		if errors.Is(err, spot.ErrInvalidScale) {
			return nil, invalidArgs(err)
		}
		return nil, err
	}

	opts := []sizing.Option{
		sizing.WithThresholds(th),
		sizing.WithRegion(region),
		sizing.WithExtractor(s.extractor()),
		sizing.WithContourColor(s.cfg.Display.ContourColor),
		sizing.WithLogger(s.log),
		sizing.WithMetrics(s.metrics),
	}

	var recorder *display.Recorder
	if a.IncludeOverlay {
		recorder = &display.Recorder{}
		opts = append(opts, sizing.WithRenderer(recorder))
	}

	engine := sizing.New(s.loader, opts...)
	res, err := engine.Measure(ctx, sample)
	if err != nil {
		return nil, err
	}
	sample.Sizes = res.Sizes

	out := &SizeParticlesResult{
		Sample:            sample,
		Summary:           sample.String(),
		Thresholds:        th,
		PixelDiameters:    res.PixelDiameters,
		Particles:         res.Particles,
		AerodynamicSizes:  sample.AerodynamicSizes(salt),
		SaltConcentration: salt,
		Distribution:      distribution.Summarize(sample.Sizes),
	}

	if recorder != nil {
		frames := recorder.Frames()
		if len(frames) > 0 {
			encoded, err := imaging.EncodePNGBase64(frames[len(frames)-1].Image)
			if err != nil {
				return nil, err
			}
			out.OverlayBase64 = encoded
			out.MimeType = "image/png"
		}
	}

	return out, nil
}

type aerodynamicSizeArgs struct {
	PhysicalDiameter  *float64 `json:"physical_diameter"`
	SaltConcentration *float64 `json:"salt_concentration"`
}

type aerodynamicSizeResult struct {
	PhysicalDiameter    float64 `json:"physical_diameter"`
	SaltConcentration   float64 `json:"salt_concentration"`
	AerodynamicDiameter float64 `json:"aerodynamic_diameter"`
}

func (s *Server) handleAerodynamicSize(args json.RawMessage) (interface{}, error) {
	var a aerodynamicSizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, invalidArgs(err)
	}
	if a.PhysicalDiameter == nil {
		return nil, invalidArgs(errors.New("physical_diameter is required"))
	}

	salt := s.cfg.SaltConcentration
	if a.SaltConcentration != nil {
		salt = *a.SaltConcentration
	}

	return &aerodynamicSizeResult{
		PhysicalDiameter:    *a.PhysicalDiameter,
		SaltConcentration:   salt,
		AerodynamicDiameter: aerosol.AerodynamicSize(*a.PhysicalDiameter, salt),
	}, nil
}

// === Diagnostic Handlers ===

type edgeDetectArgs struct {
	Path          string          `json:"path"`
	ThresholdLow  *int            `json:"threshold_low"`
	ThresholdHigh *int            `json:"threshold_high"`
	Region        *imaging.Region `json:"region"`
}

func (s *Server) handleEdgeDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a edgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, invalidArgs(err)
	}
	if a.Path == "" {
		return nil, invalidArgs(errMissingPath)
	}

	th := s.thresholds(a.ThresholdLow, a.ThresholdHigh)
	if err := th.Validate(); err != nil {
		return nil, invalidArgs(err)
	}
	region := s.region(a.Region)
	if err := region.Validate(); err != nil {
		return nil, invalidArgs(err)
	}

	gray, err := s.loader.LoadGray(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	if gray, err = imaging.CropGray(gray, region); err != nil {
		return nil, err
	}
	return imaging.EncodeEdges(sizing.EdgeMap(gray, th))
}
