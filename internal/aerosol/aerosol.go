// Package aerosol converts measured residue diameters into physical and
// aerodynamic particle diameters.
package aerosol

import "math"

const (
	// ParticleDensity is the dried salt particle density in g/cm³.
	ParticleDensity = 2.17

	// ShapeFactor is the dynamic shape factor of the particle, taken as a
	// sphere (value from the FMAG manual).
	ShapeFactor = 1.0

	// DefaultSaltConcentration is the salt mass concentration of the
	// sprayed solution.
	DefaultSaltConcentration = 0.09
)

// Calibration maps a diameter measured on the paper (in pixels) to the
// diameter of the droplet that produced it (in pixels).
type Calibration func(pixelDiameter float64) float64

// PhysicalSize is the default Calibration. It is the identity until lens
// distortion and paper stretch corrections are characterised.
func PhysicalSize(pixelDiameter float64) float64 {
	return 1 * pixelDiameter
}

// AerodynamicSize returns the aerodynamic diameter of the dried particle left
// by a droplet of the given physical diameter.
//
// The particle diameter is physicalDiameter*saltConcentration; the aerodynamic
// diameter scales it by sqrt(ParticleDensity/ShapeFactor). Inputs are not
// validated; saltConcentration is physically meaningful in [0, 1].
func AerodynamicSize(physicalDiameter, saltConcentration float64) float64 {
	particleSize := physicalDiameter * saltConcentration
	return particleSize * math.Sqrt(ParticleDensity/ShapeFactor)
}
