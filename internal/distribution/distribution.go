// Package distribution summarises particle size distributions.
package distribution

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a set of particle sizes. D10, D50 and D90 are the
// empirical 10th, 50th and 90th percentiles.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	D10    float64 `json:"d10"`
	D50    float64 `json:"d50"`
	D90    float64 `json:"d90"`
}

// Summarize computes the Summary of sizes. An empty input yields the zero
// Summary. StdDev is the sample standard deviation and is 0 for a single
// value.
func Summarize(sizes []float64) Summary {
	if len(sizes) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(sizes))
	copy(sorted, sizes)
	sort.Float64s(sorted)

	s := Summary{
		Count: len(sorted),
		Mean:  stat.Mean(sorted, nil),
		Min:   floats.Min(sorted),
		Max:   floats.Max(sorted),
		D10:   stat.Quantile(0.1, stat.Empirical, sorted, nil),
		D50:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		D90:   stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
	if s.Count > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

func (s Summary) String() string {
	if s.Count == 0 {
		return "n=0"
	}
	return fmt.Sprintf("n=%d mean=%.4g sd=%.4g min=%.4g D10=%.4g D50=%.4g D90=%.4g max=%.4g",
		s.Count, s.Mean, s.StdDev, s.Min, s.D10, s.D50, s.D90, s.Max)
}
