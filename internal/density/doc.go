// Package density converts sparse keypoint annotations into continuous
// density maps usable as regression targets for counting and heatmap
// training.
//
// Each annotated point contributes a normalized Gaussian footprint whose
// radius adapts to local point spacing: crowded points get tight kernels,
// isolated points get wide ones, bounded by a configurable maximum radius.
//
// # Coordinate System
//
// Points use image pixel coordinates where (0,0) is the top-left corner,
// X increases rightward and Y increases downward. Fractional coordinates
// are truncated toward zero when a footprint is placed.
//
// # Map Layout
//
// A Map stores float32 cells in row-major order: the cell at (x, y) lives at
// Data[y*Width+x]. The shape of a synthesized map always equals the
// requested height and width, even when there are no points.
//
// # Mass
//
// A footprint that lies entirely inside the map adds exactly PeakScale of
// mass (up to float32 rounding). Footprints that cross the map border are
// clipped, so they add less. Callers that need the map to integrate to the
// point count use Map.Normalize after synthesis.
//
// # Thread Safety
//
// Synthesis is stateless. Separate maps may be built concurrently; a single
// Map must not be drawn into from more than one goroutine at a time.
// SynthesizeBatch fans independent images out across goroutines.
package density
