package density

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidShape is returned when a map is requested with a non-positive
// height or width, or with more than MaxCells cells.
var ErrInvalidShape = errors.New("density: invalid map shape")

// MaxCells caps the number of cells in a single map (256 MiB of float32).
const MaxCells = 1 << 26

// Point is a keypoint location in image pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Map is a Height x Width grid of density values stored row-major.
type Map struct {
	Height int       `json:"height"`
	Width  int       `json:"width"`
	Data   []float32 `json:"-"`
}

// NewMap allocates a zero-filled map of the given shape.
func NewMap(height, width int) (*Map, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidShape, height, width)
	}
	if height > MaxCells/width {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrInvalidShape, height, width, MaxCells)
	}
	return &Map{
		Height: height,
		Width:  width,
		Data:   make([]float32, height*width),
	}, nil
}

// At returns the value stored at column x, row y.
func (m *Map) At(x, y int) float32 {
	return m.Data[y*m.Width+x]
}

// Sum returns the total mass of the map, accumulated in float64.
func (m *Map) Sum() float64 {
	var sum float64
	for _, v := range m.Data {
		sum += float64(v)
	}
	return sum
}

// Max returns the largest cell value.
func (m *Map) Max() float32 {
	hi := float32(math.Inf(-1))
	for _, v := range m.Data {
		if v > hi {
			hi = v
		}
	}
	return hi
}

// Min returns the smallest cell value.
func (m *Map) Min() float32 {
	lo := float32(math.Inf(1))
	for _, v := range m.Data {
		if v < lo {
			lo = v
		}
	}
	return lo
}

// Float64s returns a float64 copy of the map data.
func (m *Map) Float64s() []float64 {
	out := make([]float64, len(m.Data))
	for i, v := range m.Data {
		out[i] = float64(v)
	}
	return out
}

// Normalize rescales the map in place so that it sums to count.
//
// Boundary clipping makes a synthesized map integrate to slightly less than
// its point count; counting losses want the exact count back. Normalize is
// a no-op when count is zero or the map carries no mass, since the ratio is
// undefined.
func (m *Map) Normalize(count int) {
	if count == 0 {
		return
	}
	sum := m.Sum()
	if sum == 0 {
		return
	}
	factor := float64(count) / sum
	for i, v := range m.Data {
		m.Data[i] = float32(float64(v) * factor)
	}
}
