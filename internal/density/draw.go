package density

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOverlap is returned for an overlap mode other than
	// OverlapAdd or OverlapMax. It signals a configuration error.
	ErrUnsupportedOverlap = errors.New("density: unsupported overlap mode")

	// ErrPointOutOfRange is returned for a center with a coordinate at or
	// below -1, or NaN. Coordinates in (-1, 0) truncate to 0 and coordinates
	// past the far edge are clamped.
	ErrPointOutOfRange = errors.New("density: point out of range")
)

// MaxFootprintRadius is the largest radius DrawGaussian accepts.
const MaxFootprintRadius = 512

// OverlapMode selects how a footprint combines with existing map values.
type OverlapMode string

const (
	// OverlapAdd sums overlapping footprints.
	OverlapAdd OverlapMode = "add"
	// OverlapMax keeps the element-wise maximum.
	OverlapMax OverlapMode = "max"
)

// DrawOptions controls how DrawGaussian lays a footprint onto a map.
type DrawOptions struct {
	// PeakScale multiplies the unit-mass kernel. Default 1.
	PeakScale float64
	// Delta sets sharpness: sigma = (2*radius+1) / Delta. Default 6.
	Delta float64
	// Overlap is the compositing policy. Default OverlapAdd.
	Overlap OverlapMode
}

// DefaultDrawOptions returns PeakScale 1, Delta 6 and OverlapAdd.
func DefaultDrawOptions() DrawOptions {
	return DrawOptions{
		PeakScale: 1,
		Delta:     DefaultDelta,
		Overlap:   OverlapAdd,
	}
}

// DrawGaussian accumulates one point's footprint into m.
//
// The center is truncated toward zero and then clamped to the last column
// and row. The kernel window is clipped against the map edges, so a point
// near a border adds less than PeakScale of mass.
//
// The map is left untouched when an error is returned.
func DrawGaussian(m *Map, center Point, radius int, opts DrawOptions) error {
	if opts.Overlap != OverlapAdd && opts.Overlap != OverlapMax {
		return fmt.Errorf("%w: %q", ErrUnsupportedOverlap, opts.Overlap)
	}
	if !(center.X > -1) || !(center.Y > -1) {
		return fmt.Errorf("%w: (%g, %g)", ErrPointOutOfRange, center.X, center.Y)
	}
	if radius < 0 || radius > MaxFootprintRadius {
		return fmt.Errorf("density: radius %d outside 0..%d", radius, MaxFootprintRadius)
	}

	kernel := Footprint(radius, opts.Delta)

	x := clampIndex(center.X, m.Width)
	y := clampIndex(center.Y, m.Height)

	left, right := min(x, radius), min(m.Width-x, radius+1)
	top, bottom := min(y, radius), min(m.Height-y, radius+1)

	k := opts.PeakScale
	for dy := -top; dy < bottom; dy++ {
		row := m.Data[(y+dy)*m.Width : (y+dy+1)*m.Width]
		krow := kernel.Weights[(radius+dy)*kernel.Size : (radius+dy+1)*kernel.Size]
		for dx := -left; dx < right; dx++ {
			v := float32(krow[radius+dx] * k)
			switch opts.Overlap {
			case OverlapAdd:
				row[x+dx] += v
			case OverlapMax:
				if v > row[x+dx] {
					row[x+dx] = v
				}
			}
		}
	}
	return nil
}

// clampIndex truncates v and caps it at n-1. The cap is applied before the
// integer conversion so very large coordinates cannot overflow.
func clampIndex(v float64, n int) int {
	if v >= float64(n-1) {
		return n - 1
	}
	return int(v)
}
