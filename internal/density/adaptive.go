package density

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// MinRadius is the smallest footprint radius the adaptive selector assigns
// when two or more points are present.
const MinRadius = 3

// Params bounds the adaptive kernel radius.
type Params struct {
	// MaxScale caps a point's working distance at MaxScale times the
	// smallest nearest-neighbor distance in the whole set.
	MaxScale float64 `json:"max_scale"`
	// MaxRadius caps every radius, in pixels. A lone point uses it as is.
	MaxRadius float64 `json:"max_radius"`
}

// DefaultParams returns MaxScale 3 and MaxRadius 15.
func DefaultParams() Params {
	return Params{MaxScale: 3.0, MaxRadius: 15.0}
}

// Validate reports whether both bounds are positive and finite, and
// MaxRadius does not exceed MaxFootprintRadius.
func (p Params) Validate() error {
	if !(p.MaxScale > 0) || math.IsInf(p.MaxScale, 0) {
		return fmt.Errorf("density: max_scale must be positive, got %g", p.MaxScale)
	}
	if !(p.MaxRadius > 0) || p.MaxRadius > MaxFootprintRadius {
		return fmt.Errorf("density: max_radius must be in (0, %d], got %g", MaxFootprintRadius, p.MaxRadius)
	}
	return nil
}

// Radii returns the footprint radius chosen for each point.
//
// A single point gets MaxRadius. Otherwise each point's working distance is
// the smallest of its own nearest-neighbor distance, MaxScale times the
// global minimum nearest-neighbor distance, and MaxRadius; the radius is
// that distance floored, but never below MinRadius. Coincident points have
// a zero distance and fall to MinRadius.
func Radii(points []Point, params Params) []int {
	switch len(points) {
	case 0:
		return nil
	case 1:
		return []int{int(params.MaxRadius)}
	}

	nearest := nearestDistances(points)
	disMin := floats.Min(nearest)

	radii := make([]int, len(points))
	for i, local := range nearest {
		dis := min(local, params.MaxScale*disMin, params.MaxRadius)
		radii[i] = max(MinRadius, int(dis))
	}
	return radii
}

// Synthesize builds a height x width density map from points.
//
// Every point is drawn in OverlapAdd mode with unit peak scale and the
// default delta, using the radius picked by Radii. An empty point set yields
// an all-zero map of the requested shape.
func Synthesize(points []Point, height, width int, params Params) (*Map, error) {
	m, _, err := SynthesizeWithRadii(points, height, width, params)
	return m, err
}

// SynthesizeWithRadii is Synthesize that also returns the radius drawn for
// each point, nil when there are none.
func SynthesizeWithRadii(points []Point, height, width int, params Params) (*Map, []int, error) {
	m, err := NewMap(height, width)
	if err != nil {
		return nil, nil, err
	}
	if len(points) == 0 {
		return m, nil, nil
	}
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	opts := DefaultDrawOptions()
	radii := Radii(points, params)
	for i, r := range radii {
		if err := DrawGaussian(m, points[i], r, opts); err != nil {
			return nil, nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return m, radii, nil
}

// nearestDistances returns, for each point, the Euclidean distance to its
// nearest neighbor. The distance vector for a point includes the point
// itself, so the neighbor is the second entry once sorted; a duplicate
// point therefore yields zero.
func nearestDistances(points []Point) []float64 {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.X, p.Y}
	}

	nearest := make([]float64, len(points))
	dis := make([]float64, len(points))
	for i, a := range coords {
		for j, b := range coords {
			dis[j] = floats.Distance(a, b, 2)
		}
		sort.Float64s(dis)
		nearest[i] = dis[1]
	}
	return nearest
}
