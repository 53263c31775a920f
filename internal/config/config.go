// Package config loads spotsize settings from YAML.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Display modes.
const (
	DisplayNone   = "none"
	DisplayWindow = "window"
	DisplayPNG    = "png"
)

// Vision backends.
const (
	VisionNative = "native"
	VisionOpenCV = "opencv"
)

type Config struct {
	ScaleMicronsPerPixel float64 `yaml:"scale_microns_per_pixel"`
	Thresholds           struct {
		Low  int `yaml:"low"`
		High int `yaml:"high"`
	} `yaml:"thresholds"`
	// Region limits sizing to part of the scan; all zero means the whole scan.
	Region struct {
		X1 int `yaml:"x1"`
		Y1 int `yaml:"y1"`
		X2 int `yaml:"x2"`
		Y2 int `yaml:"y2"`
	} `yaml:"region"`
	SaltConcentration float64 `yaml:"salt_concentration"`
	Vision            string  `yaml:"vision"`
	Display           struct {
		Mode         string `yaml:"mode"`
		Dir          string `yaml:"dir"`
		ContourColor string `yaml:"contour_color"`
	} `yaml:"display"`
	Source struct {
		S3 S3 `yaml:"s3"`
	} `yaml:"source"`
	MetricsFile string `yaml:"metrics_file"`
	LogLevel    string `yaml:"log_level"`
}

// S3 configures reads of s3:// scan locations.
type S3 struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := numericDefaults()
	cfg.applyDefaults()
	return &cfg
}

// numericDefaults holds the settings where zero is a meaningful value, so
// they are set before unmarshalling rather than filled in afterwards.
func numericDefaults() Config {
	var cfg Config
	cfg.ScaleMicronsPerPixel = 1e-3
	cfg.SaltConcentration = 0.09
	cfg.Thresholds.High = 50
	return cfg
}

// Load reads a YAML file, fills unset fields with defaults and applies
// SPOTSIZE_* environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := numericDefaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Vision == "" {
		c.Vision = VisionNative
	}
	if c.Display.Mode == "" {
		c.Display.Mode = DisplayNone
	}
	if c.Display.Dir == "" {
		c.Display.Dir = "./contours"
	}
	if c.Display.ContourColor == "" {
		c.Display.ContourColor = "#FF0000"
	}
	if c.Source.S3.Region == "" {
		c.Source.S3.Region = "us-east-1"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if v := os.Getenv("SPOTSIZE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SPOTSIZE_S3_REGION"); v != "" {
		c.Source.S3.Region = v
	}
	if v := os.Getenv("SPOTSIZE_S3_ENDPOINT"); v != "" {
		c.Source.S3.Endpoint = v
	}
	if v := os.Getenv("SPOTSIZE_S3_PATH_STYLE"); v != "" {
		c.Source.S3.PathStyle = strings.EqualFold(v, "true")
	}
}

// Validate reports the first setting that cannot drive a sizing run.
func (c *Config) Validate() error {
	if !(c.ScaleMicronsPerPixel > 0) {
		return fmt.Errorf("scale_microns_per_pixel must be positive, got %v", c.ScaleMicronsPerPixel)
	}
	if c.Thresholds.Low < 0 || c.Thresholds.Low > 255 || c.Thresholds.High < 0 || c.Thresholds.High > 255 {
		return fmt.Errorf("thresholds must be within 0-255, got low=%d high=%d", c.Thresholds.Low, c.Thresholds.High)
	}
	if r := c.Region; r.X1 != 0 || r.Y1 != 0 || r.X2 != 0 || r.Y2 != 0 {
		if r.X1 >= r.X2 || r.Y1 >= r.Y2 {
			return fmt.Errorf("invalid region (%d,%d)-(%d,%d): x1 must be < x2, y1 must be < y2", r.X1, r.Y1, r.X2, r.Y2)
		}
	}
	switch c.Vision {
	case VisionNative, VisionOpenCV:
	default:
		return fmt.Errorf("unknown vision backend %q", c.Vision)
	}
	switch c.Display.Mode {
	case DisplayNone, DisplayWindow, DisplayPNG:
	default:
		return fmt.Errorf("unknown display mode %q", c.Display.Mode)
	}
	if _, err := colorful.Hex(c.Display.ContourColor); err != nil {
		return fmt.Errorf("invalid contour_color %q: %w", c.Display.ContourColor, err)
	}
	return nil
}
