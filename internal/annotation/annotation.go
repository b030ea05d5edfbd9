// Package annotation holds the caller-side glue between raw keypoint clicks
// and the density synthesizer: missing-tip filtering, display-to-original
// coordinate scaling and the JSON sidecar written next to a density file.
package annotation

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/ironsheep/keypoint-density-mcp/internal/density"
)

// Click is one annotation entry. A nil coordinate marks a tip the annotator
// flagged as missing; it is kept in the sidecar but never drawn.
type Click struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// NewClick returns a click at (x, y).
func NewClick(x, y float64) Click {
	return Click{X: &x, Y: &y}
}

// Missing reports whether the click is the missing-tip sentinel.
func (c Click) Missing() bool {
	return c.X == nil || c.Y == nil
}

// ToOriginal maps clicks made on a display scaled by scaleFactor back to
// original image pixels, rounding to the nearest integer. Missing clicks
// pass through unchanged.
func ToOriginal(clicks []Click, scaleFactor float64) ([]Click, error) {
	if !(scaleFactor > 0) || math.IsInf(scaleFactor, 0) {
		return nil, fmt.Errorf("invalid scale factor %g", scaleFactor)
	}
	out := make([]Click, len(clicks))
	for i, c := range clicks {
		if c.Missing() {
			out[i] = Click{}
			continue
		}
		out[i] = NewClick(math.Round(*c.X/scaleFactor), math.Round(*c.Y/scaleFactor))
	}
	return out, nil
}

// Points drops missing clicks and returns the rest as density points.
func Points(clicks []Click) []density.Point {
	points := make([]density.Point, 0, len(clicks))
	for _, c := range clicks {
		if c.Missing() {
			continue
		}
		points = append(points, density.Point{X: *c.X, Y: *c.Y})
	}
	return points
}

// Sidecar is the JSON record stored next to a density array.
type Sidecar struct {
	// Filename is the base name of the annotated image.
	Filename string `json:"filename"`
	// Density is the base name of the .npy density file.
	Density string `json:"density"`
	// Points are the clicks in original image coordinates, missing
	// entries included as {"x": null, "y": null}.
	Points []Click `json:"points"`
}

// WriteSidecar writes s to path as indented JSON.
func WriteSidecar(path string, s *Sidecar) error {
	b, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode sidecar: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write sidecar: %w", err)
	}
	return nil
}

// ReadSidecar loads a sidecar written by WriteSidecar.
func ReadSidecar(path string) (*Sidecar, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sidecar: %w", err)
	}
	var s Sidecar
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("failed to decode sidecar: %w", err)
	}
	return &s, nil
}
