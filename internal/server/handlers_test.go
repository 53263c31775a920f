package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/spotsize/internal/aerosol"
	"github.com/ironsheep/spotsize/internal/config"
	"github.com/ironsheep/spotsize/internal/metrics"
)

// createScanFile writes a white scan with one black disk of radius r at
// its centre and returns its path.
func createScanFile(t *testing.T, name string, size, r int) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, size, size))
	c := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := uint8(255)
			if (x-c)*(x-c)+(y-c)*(y-c) <= r*r {
				v = 0
			}
			img.SetGray(x, y, color.Gray{v})
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create scan: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode scan: %v", err)
	}
	return path
}

// callTool runs a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, _ := json.Marshal(params)

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}

	resp := s.handleRequest(context.Background(), req)
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful tool response.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %s (%v)", resp.Error.Message, resp.Error.Data)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Fatalf("content type: got %v, want text", content[0]["type"])
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
}

func TestHandleToolsCall_ParseFilename(t *testing.T) {
	s := New()
	resp := callTool(t, s, "spot_parse_filename", map[string]interface{}{
		"path": "/data/run1/dd200_T34_01022024.tif",
	})

	var got struct {
		DropletDiameterMicrons int    `json:"droplet_diameter_microns"`
		TrialNumber            int    `json:"trial_number"`
		LocationNumber         int    `json:"location_number"`
		DateCollected          string `json:"date_collected"`
		Summary                string `json:"summary"`
	}
	decodeResult(t, resp, &got)

	if got.DropletDiameterMicrons != 200 || got.TrialNumber != 3 || got.LocationNumber != 4 {
		t.Errorf("metadata: got %+v", got)
	}
	if !strings.HasPrefix(got.DateCollected, "2024-01-02") {
		t.Errorf("date_collected: got %s", got.DateCollected)
	}
	want := "SPOT Image with droplet diameter: 200, Trial-Location number: 3-4 (2024-01-02)"
	if got.Summary != want {
		t.Errorf("summary: got %q, want %q", got.Summary, want)
	}
}

func TestHandleToolsCall_ParseFilenameInvalid(t *testing.T) {
	s := New()
	resp := callTool(t, s, "spot_parse_filename", map[string]interface{}{
		"path": "/data/run1/scan.tif",
	})

	if resp.Error == nil {
		t.Fatal("Expected error for malformed filename")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_ImageInfo(t *testing.T) {
	s := New()
	path := createScanFile(t, "dd50_T12_06152023.png", 80, 10)

	var info struct {
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Format    string `json:"format"`
		Grayscale bool   `json:"grayscale"`
	}
	decodeResult(t, callTool(t, s, "spot_image_info", map[string]interface{}{"path": path}), &info)

	if info.Width != 80 || info.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 80x80", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
	if !info.Grayscale {
		t.Error("expected grayscale scan")
	}
}

func TestHandleToolsCall_SizeParticles(t *testing.T) {
	m := metrics.New()
	s := New(WithMetrics(m))
	path := createScanFile(t, "dd50_T12_06152023.png", 100, 30)

	var got SizeParticlesResult
	decodeResult(t, callTool(t, s, "spot_size_particles", map[string]interface{}{
		"path":                    path,
		"scale_microns_per_pixel": 1.0,
		"salt_concentration":      0.2,
	}), &got)

	if len(got.Sample.Sizes) != 1 {
		t.Fatalf("sizes: got %v, want one residue", got.Sample.Sizes)
	}
	if math.Abs(got.Sample.Sizes[0]-60) > 3 {
		t.Errorf("size: got %.2f, want about 60", got.Sample.Sizes[0])
	}
	if len(got.PixelDiameters) != 1 || got.PixelDiameters[0] != got.Sample.Sizes[0] {
		t.Errorf("pixel diameters: got %v, want %v at scale 1", got.PixelDiameters, got.Sample.Sizes)
	}

	wantAero := aerosol.AerodynamicSize(got.Sample.Sizes[0], 0.2)
	if len(got.AerodynamicSizes) != 1 || math.Abs(got.AerodynamicSizes[0]-wantAero) > 1e-9 {
		t.Errorf("aerodynamic sizes: got %v, want [%v]", got.AerodynamicSizes, wantAero)
	}
	if got.SaltConcentration != 0.2 {
		t.Errorf("salt concentration: got %v", got.SaltConcentration)
	}
	if got.Distribution.Count != 1 {
		t.Errorf("distribution count: got %d, want 1", got.Distribution.Count)
	}
	if got.Thresholds.Low != 0 || got.Thresholds.High != 50 {
		t.Errorf("thresholds: got %+v, want default 0/50", got.Thresholds)
	}
	if got.OverlayBase64 != "" {
		t.Error("overlay returned without include_overlay")
	}
	if !strings.Contains(got.Summary, "droplet diameter: 50") {
		t.Errorf("summary: got %q", got.Summary)
	}
}

func TestHandleToolsCall_SizeParticlesOverlay(t *testing.T) {
	s := New()
	path := createScanFile(t, "dd50_T12_06152023.png", 100, 30)

	var got SizeParticlesResult
	decodeResult(t, callTool(t, s, "spot_size_particles", map[string]interface{}{
		"path":            path,
		"include_overlay": true,
	}), &got)

	if got.OverlayBase64 == "" {
		t.Fatal("expected overlay")
	}
	if got.MimeType != "image/png" {
		t.Errorf("mime type: got %s", got.MimeType)
	}
}

func TestHandleToolsCall_SizeParticlesBlank(t *testing.T) {
	s := New()
	path := createScanFile(t, "dd50_T12_06152023.png", 60, 0)

	var got struct {
		Sample struct {
			Sizes []float64 `json:"sizes"`
		} `json:"sample"`
	}
	decodeResult(t, callTool(t, s, "spot_size_particles", map[string]interface{}{"path": path}), &got)

	// A single dark pixel is too faint after blurring to yield edges.
	if got.Sample.Sizes == nil {
		t.Error("sizes should be an empty array, not null")
	}
}

func TestHandleToolsCall_SizeParticlesRegion(t *testing.T) {
	s := New()
	path := createScanFile(t, "dd50_T12_06152023.png", 100, 30)

	var got SizeParticlesResult
	decodeResult(t, callTool(t, s, "spot_size_particles", map[string]interface{}{
		"path":   path,
		"region": map[string]interface{}{"x1": 0, "y1": 0, "x2": 15, "y2": 100},
	}), &got)

	// The strip left of the residue is blank.
	if len(got.Sample.Sizes) != 0 {
		t.Errorf("sizes: got %v, want none inside the region", got.Sample.Sizes)
	}

	decodeResult(t, callTool(t, s, "spot_size_particles", map[string]interface{}{"path": path}), &got)
	if len(got.Particles) != 1 {
		t.Fatalf("particles: got %d, want 1", len(got.Particles))
	}
	if c := got.Particles[0].Centroid; math.Abs(c.X-50) > 1 || math.Abs(c.Y-50) > 1 {
		t.Errorf("centroid: got %+v, want about (50, 50)", c)
	}
}

func TestHandleToolsCall_SizeParticlesErrors(t *testing.T) {
	scan := createScanFile(t, "dd50_T12_06152023.png", 40, 5)

	tests := []struct {
		name string
		args interface{}
		code int
	}{
		{"missing path", map[string]interface{}{}, -32602},
		{"arguments not an object", []int{1, 2}, -32602},
		{"path not a string", map[string]interface{}{"path": 7}, -32602},
		{"zero scale", map[string]interface{}{"path": scan, "scale_microns_per_pixel": 0}, -32602},
		{"threshold out of range", map[string]interface{}{"path": scan, "threshold_high": 300}, -32602},
		{"empty region", map[string]interface{}{"path": scan, "region": map[string]interface{}{"x1": 10, "y1": 0, "x2": 10, "y2": 5}}, -32602},
		{"bad filename", map[string]interface{}{"path": filepath.Join(filepath.Dir(scan), "scan.png")}, -32000},
		{"missing file", map[string]interface{}{"path": "/nonexistent/dd50_T12_06152023.png"}, -32000},
		{"region outside scan", map[string]interface{}{"path": scan, "region": map[string]interface{}{"x1": 0, "y1": 0, "x2": 400, "y2": 10}}, -32000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, New(), "spot_size_particles", tt.args)
			if resp.Error == nil {
				t.Fatal("Expected error")
			}
			if resp.Error.Code != tt.code {
				t.Errorf("Error code: got %d, want %d", resp.Error.Code, tt.code)
			}
		})
	}
}

func TestHandleToolsCall_AerodynamicSize(t *testing.T) {
	cfg := config.Default()
	cfg.SaltConcentration = 0.5
	s := New(WithConfig(cfg))

	var got struct {
		PhysicalDiameter    float64 `json:"physical_diameter"`
		SaltConcentration   float64 `json:"salt_concentration"`
		AerodynamicDiameter float64 `json:"aerodynamic_diameter"`
	}
	decodeResult(t, callTool(t, s, "spot_aerodynamic_size", map[string]interface{}{
		"physical_diameter": 10.0,
	}), &got)

	if got.SaltConcentration != 0.5 {
		t.Errorf("salt concentration: got %v, want configured 0.5", got.SaltConcentration)
	}
	want := aerosol.AerodynamicSize(10, 0.5)
	if math.Abs(got.AerodynamicDiameter-want) > 1e-9 {
		t.Errorf("aerodynamic diameter: got %v, want %v", got.AerodynamicDiameter, want)
	}

	resp := callTool(t, s, "spot_aerodynamic_size", map[string]interface{}{})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("Expected -32602 for missing physical_diameter, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_EdgeDetect(t *testing.T) {
	s := New()
	path := createScanFile(t, "dd50_T12_06152023.png", 100, 30)

	var got struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		EdgePixels  int    `json:"edge_pixels"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	decodeResult(t, callTool(t, s, "spot_edge_detect", map[string]interface{}{"path": path}), &got)

	if got.Width != 100 || got.Height != 100 {
		t.Errorf("dimensions: got %dx%d", got.Width, got.Height)
	}
	if got.EdgePixels == 0 {
		t.Error("expected edges around the residue")
	}
	if got.ImageBase64 == "" || got.MimeType != "image/png" {
		t.Errorf("image: got %d bytes of %s", len(got.ImageBase64), got.MimeType)
	}

	resp := callTool(t, s, "spot_edge_detect", map[string]interface{}{"path": path, "threshold_low": -1})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("Expected -32602 for negative threshold, got %+v", resp.Error)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	resp := callTool(t, New(), "image_crop", map[string]interface{}{})

	if resp.Error == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Data.(string), "unknown tool") {
		t.Errorf("Error data: got %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	}

	resp := s.handleRequest(context.Background(), req)
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("Expected -32602, got %+v", resp.Error)
	}
}

func TestServer_Extractor(t *testing.T) {
	cfg := config.Default()
	cfg.Vision = config.VisionOpenCV
	s := New(WithConfig(cfg))

	if s.extractor() == nil {
		t.Fatal("extractor should fall back to the native implementation")
	}
}
