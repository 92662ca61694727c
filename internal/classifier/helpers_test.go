package classifier

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createTestImage creates a uniformly filled RGBA image.
func createTestImage(width, height int, fill color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}
	return img
}

// uniformRaw builds a canonical raster where every pixel is (r, g, b).
func uniformRaw(r, g, b uint8) RawImage {
	raw := RawImage{Width: CanonicalSize, Height: CanonicalSize}
	for i := 0; i < CanonicalSize*CanonicalSize; i++ {
		raw.Pix = append(raw.Pix, r, g, b)
	}
	return raw
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}
