package classifier

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"testing"
)

func assertUniform(t *testing.T, raw RawImage, want [3]uint8, tolerance int) {
	t.Helper()

	for y := 0; y < raw.Height; y++ {
		for x := 0; x < raw.Width; x++ {
			r, g, b := raw.At(x, y)
			got := [3]uint8{r, g, b}
			for c := 0; c < 3; c++ {
				diff := int(got[c]) - int(want[c])
				if diff < -tolerance || diff > tolerance {
					t.Fatalf("pixel (%d,%d) = %v, want %v (tolerance %d)", x, y, got, want, tolerance)
				}
			}
		}
	}
}

func TestDecode_ResizesToCanonicalGrid(t *testing.T) {
	sizes := []struct {
		name          string
		width, height int
	}{
		{"smaller", 50, 30},
		{"exact", CanonicalSize, CanonicalSize},
		{"larger", 640, 480},
		{"single pixel", 1, 1},
	}

	for _, tt := range sizes {
		t.Run(tt.name, func(t *testing.T) {
			data := encodePNG(t, createTestImage(tt.width, tt.height, color.RGBA{200, 80, 80, 255}))

			raw, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if raw.Width != CanonicalSize || raw.Height != CanonicalSize {
				t.Errorf("Expected %dx%d, got %dx%d", CanonicalSize, CanonicalSize, raw.Width, raw.Height)
			}
			if raw.PixelCount() != CanonicalSize*CanonicalSize {
				t.Errorf("Expected %d pixels, got %d", CanonicalSize*CanonicalSize, raw.PixelCount())
			}
			assertUniform(t, raw, [3]uint8{200, 80, 80}, 0)
		})
	}
}

func TestDecode_ExpandsGrayscale(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 20, 20))
	for i := range gray.Pix {
		gray.Pix[i] = 90
	}

	raw, err := Decode(encodePNG(t, gray))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	assertUniform(t, raw, [3]uint8{90, 90, 90}, 0)
}

func TestDecode_DropsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{200, 80, 80, 128})
		}
	}

	raw, err := Decode(encodePNG(t, img))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	assertUniform(t, raw, [3]uint8{200, 80, 80}, 0)
}

func TestDecode_PalettedGIF(t *testing.T) {
	palette := color.Palette{color.RGBA{80, 80, 150, 255}}
	img := image.NewPaletted(image.Rect(0, 0, 32, 32), palette)

	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode GIF: %v", err)
	}

	raw, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	assertUniform(t, raw, [3]uint8{80, 80, 150}, 0)
}

func TestDecode_JPEG(t *testing.T) {
	var buf bytes.Buffer
	img := createTestImage(300, 200, color.RGBA{120, 120, 120, 255})
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("failed to encode JPEG: %v", err)
	}

	raw, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if raw.Width != CanonicalSize || raw.Height != CanonicalSize {
		t.Fatalf("Expected canonical size, got %dx%d", raw.Width, raw.Height)
	}
	assertUniform(t, raw, [3]uint8{120, 120, 120}, 3)
}

func TestDecode_Failures(t *testing.T) {
	valid := encodePNG(t, createTestImage(8, 8, color.RGBA{1, 2, 3, 255}))

	inputs := map[string][]byte{
		"nil":       nil,
		"empty":     {},
		"text":      []byte("this is definitely not an image"),
		"truncated": valid[:len(valid)/2],
		"bad magic": append([]byte{0x89, 'P', 'N', 'G', 0, 0, 0, 0}, bytes.Repeat([]byte{0xff}, 64)...),
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			raw, err := Decode(data)
			if err == nil {
				t.Fatal("Expected decode error")
			}
			if !errors.Is(err, ErrDecode) {
				t.Errorf("Expected ErrDecode, got %v", err)
			}
			if errors.Is(err, image.ErrFormat) {
				t.Error("Parser error type must not leak through ErrDecode")
			}
			if raw.PixelCount() != 0 {
				t.Errorf("Expected empty raster on failure, got %d pixels", raw.PixelCount())
			}
		})
	}
}

// withDeclaredSize rewrites the IHDR dimensions of an encoded PNG and fixes
// up the chunk checksum. Pixel data is left as is.
func withDeclaredSize(t *testing.T, data []byte, width, height uint32) []byte {
	t.Helper()

	out := append([]byte(nil), data...)
	if string(out[12:16]) != "IHDR" {
		t.Fatalf("unexpected first chunk %q", out[12:16])
	}
	binary.BigEndian.PutUint32(out[16:20], width)
	binary.BigEndian.PutUint32(out[20:24], height)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestDecode_RejectsOversizedHeader(t *testing.T) {
	small := encodePNG(t, image.NewGray(image.Rect(0, 0, 1, 1)))

	tests := []struct {
		name          string
		width, height uint32
	}{
		{"square bomb", 20000, 20000},
		{"one pixel over", MaxSourcePixels + 1, 1},
		{"wide strip", 1 << 30, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := withDeclaredSize(t, small, tt.width, tt.height)

			raw, err := Decode(data)
			if !errors.Is(err, ErrDecode) {
				t.Fatalf("Expected ErrDecode, got %v", err)
			}
			if raw.PixelCount() != 0 {
				t.Errorf("Expected empty raster, got %d pixels", raw.PixelCount())
			}

			result := Classify(data)
			if result.Category != Unknown || result.Confidence != FallbackConfidence {
				t.Errorf("Expected unknown/%v, got %s/%v", FallbackConfidence, result.Category, result.Confidence)
			}
			if result.Decoded() {
				t.Error("Expected no features for an oversized image")
			}
		})
	}
}

func TestNormalize_ZeroAreaIsUnknown(t *testing.T) {
	sources := map[string]image.Image{
		"empty rect":  image.NewRGBA(image.Rect(0, 0, 0, 0)),
		"zero width":  image.NewNRGBA(image.Rect(5, 5, 5, 9)),
		"zero height": image.NewGray(image.Rect(0, 0, 7, 0)),
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			raw := normalize(src)
			if raw.PixelCount() != 0 {
				t.Fatalf("Expected zero pixels, got %d", raw.PixelCount())
			}

			features := ExtractFeatures(raw)
			if features != (ColorFeatures{}) {
				t.Errorf("Expected all-zero features, got %+v", features)
			}

			category, confidence := Evaluate(DefaultRules(), features)
			if category != Unknown || confidence != 0.50 {
				t.Errorf("Expected unknown/0.50, got %s/%v", category, confidence)
			}
		})
	}
}

// The standard GIF reader zeroes the transparent palette entry, so
// transparent pixels come out black regardless of the stored RGB.
func TestDecode_TransparentGIFIsBlack(t *testing.T) {
	palette := color.Palette{color.RGBA{80, 80, 150, 255}, color.RGBA{}}
	img := image.NewPaletted(image.Rect(0, 0, 16, 16), palette)
	for i := range img.Pix {
		img.Pix[i] = 1
	}

	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode GIF: %v", err)
	}

	raw, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	assertUniform(t, raw, [3]uint8{0, 0, 0}, 0)
}
