package spot

import (
	"fmt"
	"time"

	"github.com/ironsheep/spotsize/internal/aerosol"
)

// DefaultScaleMicronsPerPixel is the scale used when the caller has no
// calibration for the scanner.
const DefaultScaleMicronsPerPixel = 1e-3

// Sample is one scanned spot-test card.
//
// A Sample is created by New, which decodes the filename immediately. Sizes
// stays nil until a sizing run fills it; each run replaces the previous
// slice rather than appending to it.
type Sample struct {
	// FilePath is the location of the scan (local path or s3:// URI).
	FilePath string `json:"file_path"`

	// ScaleMicronsPerPixel converts pixel lengths to micrometres.
	ScaleMicronsPerPixel float64 `json:"scale_microns_per_pixel"`

	// DropletDiameterMicrons is the nominal droplet size from the filename.
	DropletDiameterMicrons int `json:"droplet_diameter_microns"`

	// TrialNumber is the trial digit from the filename.
	TrialNumber int `json:"trial_number"`

	// LocationNumber is the sampling location digit from the filename.
	LocationNumber int `json:"location_number"`

	// DateCollected is the collection date at midnight UTC.
	DateCollected time.Time `json:"date_collected"`

	// Sizes holds the physical diameters (µm) of the detected residues,
	// in contour extraction order.
	Sizes []float64 `json:"sizes"`
}

// New parses location and returns a Sample with no sizes.
func New(location string, scaleMicronsPerPixel float64) (*Sample, error) {
	if !(scaleMicronsPerPixel > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidScale, scaleMicronsPerPixel)
	}

	md, err := ParseFilename(location)
	if err != nil {
		return nil, err
	}

	return &Sample{
		FilePath:               location,
		ScaleMicronsPerPixel:   scaleMicronsPerPixel,
		DropletDiameterMicrons: md.DropletDiameterMicrons,
		TrialNumber:            md.TrialNumber,
		LocationNumber:         md.LocationNumber,
		DateCollected:          md.DateCollected,
	}, nil
}

// Metadata returns the filename-derived fields of the sample.
func (s *Sample) Metadata() Metadata {
	return Metadata{
		DropletDiameterMicrons: s.DropletDiameterMicrons,
		TrialNumber:            s.TrialNumber,
		LocationNumber:         s.LocationNumber,
		DateCollected:          s.DateCollected,
	}
}

// Sized reports whether a sizing run has populated Sizes.
func (s *Sample) Sized() bool {
	return s.Sizes != nil
}

// AerodynamicSizes converts every measured size to an aerodynamic diameter
// for the given salt mass concentration. It returns nil before sizing.
func (s *Sample) AerodynamicSizes(saltConcentration float64) []float64 {
	if s.Sizes == nil {
		return nil
	}
	out := make([]float64, len(s.Sizes))
	for i, d := range s.Sizes {
		out[i] = aerosol.AerodynamicSize(d, saltConcentration)
	}
	return out
}

func (s *Sample) String() string {
	return fmt.Sprintf("SPOT Image with droplet diameter: %d, Trial-Location number: %d-%d (%s)",
		s.DropletDiameterMicrons, s.TrialNumber, s.LocationNumber, s.DateCollected.Format("2006-01-02"))
}
