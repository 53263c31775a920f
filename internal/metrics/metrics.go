// Package metrics counts sizing runs on a private Prometheus registry and
// writes them in the node_exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Failure stages.
const (
	StageParse   = "parse"
	StageLoad    = "load"
	StageExtract = "extract"
	StageRender  = "render"
)

// Recorder holds the sizing metrics. A nil *Recorder ignores every call.
type Recorder struct {
	registry  *prometheus.Registry
	samples   prometheus.Counter
	contours  prometheus.Counter
	failures  *prometheus.CounterVec
	diameters prometheus.Histogram
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spotsize_samples_sized_total",
			Help: "Spot-test samples sized successfully.",
		}),
		contours: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spotsize_contours_total",
			Help: "External contours measured across all samples.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spotsize_sizing_failures_total",
			Help: "Sizing failures by pipeline stage.",
		}, []string{"stage"}),
		diameters: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "spotsize_particle_diameter_microns",
			Help:    "Physical particle diameters in microns.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 20),
		}),
	}
	r.registry.MustRegister(r.samples, r.contours, r.failures, r.diameters)
	return r
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// SampleSized records one successful sizing with its particle sizes.
func (r *Recorder) SampleSized(sizes []float64) {
	if r == nil {
		return
	}
	r.samples.Inc()
	r.contours.Add(float64(len(sizes)))
	for _, s := range sizes {
		r.diameters.Observe(s)
	}
}

// Failure records a failed sizing at stage.
func (r *Recorder) Failure(stage string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(stage).Inc()
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
