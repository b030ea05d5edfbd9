package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/keypoint-density-mcp/internal/density"
)

// PreviewResult contains a density map rendered as a grayscale PNG.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// DensityImage renders m as an 8-bit grayscale image, min-max normalized so
// the densest cell is white and empty cells are black. A zero map renders
// all black.
func DensityImage(m *density.Map) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	lo, hi := float64(m.Min()), float64(m.Max())
	span := hi - lo + 1e-8
	for i, v := range m.Data {
		img.Pix[i] = uint8((float64(v) - lo) / span * 255)
	}
	return img
}

// DensityPreview encodes m as a base64 PNG, resized by scale when it is
// positive and not 1. The preview is for eyeballing blob placement and
// spread; the .npy output carries the exact values.
func DensityPreview(m *density.Map, scale float64) (*PreviewResult, error) {
	var img image.Image = DensityImage(m)

	if scale != 1.0 && scale > 0 {
		newWidth := max(1, int(float64(m.Width)*scale))
		newHeight := max(1, int(float64(m.Height)*scale))
		img = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
