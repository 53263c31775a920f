// Command spotsize measures the residues on one spot-test scan and prints
// their sizes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/ironsheep/spotsize/internal/config"
	"github.com/ironsheep/spotsize/internal/display"
	"github.com/ironsheep/spotsize/internal/distribution"
	"github.com/ironsheep/spotsize/internal/imaging"
	"github.com/ironsheep/spotsize/internal/logger"
	"github.com/ironsheep/spotsize/internal/metrics"
	"github.com/ironsheep/spotsize/internal/sizing"
	"github.com/ironsheep/spotsize/internal/source"
	"github.com/ironsheep/spotsize/internal/spot"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// stageError names the pipeline stage that failed.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.stage, e.err)
}

func (e *stageError) Unwrap() error { return e.err }

type options struct {
	configPath  string
	scale       float64
	salt        float64
	low, high   int
	region      string
	vision      string
	displayMode string
	displayDir  string
	metricsFile string
	histBins    int
	verbose     bool
	version     bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("spotsize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: spotsize [flags] <image>")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "<image> is a local path or s3://bucket/key named dd<diameter>_T<trial><location>_<MMDDYYYY>.<ext>")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	var o options
	fs.StringVar(&o.configPath, "config", "", "YAML configuration `file`")
	fs.Float64Var(&o.scale, "scale", 0, "micrometres per pixel (default from config, 1e-3)")
	fs.Float64Var(&o.salt, "salt", 0, "salt mass concentration for aerodynamic sizes (default from config, 0.09)")
	fs.IntVar(&o.low, "low", 0, "binarisation cutoff 0-255")
	fs.IntVar(&o.high, "high", 50, "value for pixels above the cutoff 0-255")
	fs.StringVar(&o.region, "region", "", "size only `x1,y1,x2,y2` of the scan (x2, y2 exclusive)")
	fs.StringVar(&o.vision, "vision", "", "contour backend: native or opencv")
	fs.StringVar(&o.displayMode, "display", "", "overlay display: none, window or png")
	fs.StringVar(&o.displayDir, "display-dir", "", "directory for -display png")
	fs.StringVar(&o.metricsFile, "metrics-file", "", "write Prometheus textfile metrics to `path`")
	fs.IntVar(&o.histBins, "hist-bins", 10, "histogram buckets; 0 disables the histogram")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	fs.BoolVar(&o.version, "version", false, "print version information")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if o.version {
		fmt.Fprintf(stdout, "spotsize %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return 0
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := loadConfig(o, set)
	if err != nil {
		fmt.Fprintf(stderr, "spotsize: %v\n", err)
		return 1
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if o.verbose {
		level = logger.LevelDebug
	}
	log := logger.New(logger.WithOutput(stderr), logger.WithLevel(level))

	rec := metrics.New()
	err = measure(ctx, fs.Arg(0), cfg, log, rec, stdout, o.histBins)
	if err != nil {
		fmt.Fprintf(stderr, "spotsize: %v\n", err)
	}

	if cfg.MetricsFile != "" {
		if werr := rec.WriteTextfile(cfg.MetricsFile); werr != nil {
			fmt.Fprintf(stderr, "spotsize: %v\n", werr)
			if err == nil {
				return 1
			}
		}
	}

	if err != nil {
		return 1
	}
	return 0
}

// loadConfig reads the config file, if any, and applies flags the user set.
func loadConfig(o options, set map[string]bool) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	if set["scale"] {
		cfg.ScaleMicronsPerPixel = o.scale
	}
	if set["salt"] {
		cfg.SaltConcentration = o.salt
	}
	if set["low"] {
		cfg.Thresholds.Low = o.low
	}
	if set["high"] {
		cfg.Thresholds.High = o.high
	}
	if set["region"] {
		var r [4]int
		if _, err := fmt.Sscanf(o.region, "%d,%d,%d,%d", &r[0], &r[1], &r[2], &r[3]); err != nil {
			return nil, fmt.Errorf("invalid -region %q: want x1,y1,x2,y2", o.region)
		}
		cfg.Region.X1, cfg.Region.Y1, cfg.Region.X2, cfg.Region.Y2 = r[0], r[1], r[2], r[3]
	}
	if set["vision"] {
		cfg.Vision = o.vision
	}
	if set["display"] {
		cfg.Display.Mode = o.displayMode
	}
	if set["display-dir"] {
		cfg.Display.Dir = o.displayDir
	}
	if set["metrics-file"] {
		cfg.MetricsFile = o.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func measure(ctx context.Context, location string, cfg *config.Config, log *logger.Logger, rec *metrics.Recorder, w io.Writer, bins int) error {
	sample, err := spot.New(location, cfg.ScaleMicronsPerPixel)
	if err != nil {
		rec.Failure(metrics.StageParse)
		return &stageError{stage: metrics.StageParse, err: err}
	}

	router := source.NewRouter()
	if source.Scheme(location) == "s3" {
		s3src, err := source.NewS3(ctx, source.S3Config{
			Region:    cfg.Source.S3.Region,
			Endpoint:  cfg.Source.S3.Endpoint,
			PathStyle: cfg.Source.S3.PathStyle,
		})
		if err != nil {
			rec.Failure(metrics.StageLoad)
			return &stageError{stage: metrics.StageLoad, err: err}
		}
		router.Handle("s3", s3src)
	}

	renderer, err := newRenderer(cfg)
	if err != nil {
		rec.Failure(metrics.StageRender)
		return &stageError{stage: metrics.StageRender, err: err}
	}

	extractor, err := newExtractor(cfg)
	if err != nil {
		rec.Failure(metrics.StageExtract)
		return &stageError{stage: metrics.StageExtract, err: err}
	}

	engine := sizing.New(imaging.NewLoader(router),
		sizing.WithThresholds(sizing.Thresholds{Low: cfg.Thresholds.Low, High: cfg.Thresholds.High}),
		sizing.WithRegion(imaging.Region{X1: cfg.Region.X1, Y1: cfg.Region.Y1, X2: cfg.Region.X2, Y2: cfg.Region.Y2}),
		sizing.WithExtractor(extractor),
		sizing.WithRenderer(renderer),
		sizing.WithContourColor(cfg.Display.ContourColor),
		sizing.WithLogger(log),
		sizing.WithMetrics(rec),
	)

	if err := engine.Size(ctx, sample); err != nil {
		return &stageError{stage: failedStage(err), err: err}
	}

	return report(w, sample, cfg.SaltConcentration, bins)
}

// failedStage maps an engine error to the stage that produced it.
func failedStage(err error) string {
	var loadErr *sizing.ImageLoadError
	var renderErr *sizing.RenderError
	switch {
	case errors.As(err, &loadErr):
		return metrics.StageLoad
	case errors.As(err, &renderErr):
		return metrics.StageRender
	default:
		return metrics.StageExtract
	}
}

func newRenderer(cfg *config.Config) (display.Renderer, error) {
	switch cfg.Display.Mode {
	case config.DisplayWindow:
		return display.NewWindow()
	case config.DisplayPNG:
		return display.PNGWriter{Dir: cfg.Display.Dir}, nil
	default:
		return display.Nop{}, nil
	}
}

func newExtractor(cfg *config.Config) (sizing.Extractor, error) {
	if cfg.Vision == config.VisionOpenCV {
		return sizing.NewOpenCVExtractor()
	}
	return sizing.NativeExtractor{}, nil
}

func report(w io.Writer, sample *spot.Sample, salt float64, bins int) error {
	fmt.Fprintln(w, sample)
	fmt.Fprintf(w, "sizes (um): %v\n", sample.Sizes)
	fmt.Fprintf(w, "aerodynamic sizes (um, salt %.3g): %v\n", salt, sample.AerodynamicSizes(salt))

	summary := distribution.Summarize(sample.Sizes)
	fmt.Fprintf(w, "distribution: %s\n", summary)

	// Hist needs a spread to bucket.
	if bins <= 0 || summary.Count < 2 || summary.Min == summary.Max {
		return nil
	}
	fmt.Fprintln(w)
	hist := histogram.Hist(bins, sample.Sizes)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}
