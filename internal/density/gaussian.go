package density

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultDelta controls footprint sharpness: sigma = diameter / delta.
const DefaultDelta = 6.0

// machineEpsilon is the float64 spacing at 1.0.
var machineEpsilon = math.Nextafter(1, 2) - 1

// Kernel is a square Size x Size weight grid stored row-major.
type Kernel struct {
	Size    int       `json:"size"`
	Sigma   float64   `json:"sigma"`
	Weights []float64 `json:"weights"`
}

// At returns the weight at row i, column j.
func (k Kernel) At(i, j int) float64 {
	return k.Weights[i*k.Size+j]
}

// GaussianKernel builds a diameter x diameter isotropic Gaussian normalized
// to unit mass.
//
// The center sits at diameter/2 on both axes. For an even diameter that
// index truncates, so the kernel extends one cell further before the center
// than after it; footprints always use odd diameters, so this only matters
// to direct callers.
func GaussianKernel(diameter int, sigma float64) Kernel {
	weights := gaussian2D(diameter, sigma)
	floats.Scale(1/floats.Sum(weights), weights)
	return Kernel{Size: diameter, Sigma: sigma, Weights: weights}
}

// Footprint returns the normalized kernel used for a point of the given
// radius: diameter 2*radius+1, sigma diameter/delta.
func Footprint(radius int, delta float64) Kernel {
	diameter := 2*radius + 1
	return GaussianKernel(diameter, float64(diameter)/delta)
}

// gaussian2D returns exp(-(dx²+dy²)/(2σ²)) over a diameter x diameter grid.
// The center weight is exactly 1. Tail values below eps times the peak are
// cut to zero.
func gaussian2D(diameter int, sigma float64) []float64 {
	r := diameter / 2
	weights := make([]float64, diameter*diameter)
	twoSigmaSq := 2 * sigma * sigma
	for i := 0; i < diameter; i++ {
		dy := float64(i - r)
		for j := 0; j < diameter; j++ {
			dx := float64(j - r)
			weights[i*diameter+j] = math.Exp(-(dx*dx + dy*dy) / twoSigmaSq)
		}
	}

	cutoff := machineEpsilon * floats.Max(weights)
	for i, w := range weights {
		if w < cutoff {
			weights[i] = 0
		}
	}
	return weights
}
