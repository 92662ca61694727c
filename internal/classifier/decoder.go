package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// CanonicalSize is the edge length of the square raster every feature
// computation runs on.
const CanonicalSize = 224

// MaxSourcePixels bounds the declared area of a source image. Larger
// headers are rejected before any pixel buffer is allocated.
const MaxSourcePixels = 89_478_485

// ErrDecode is returned by Decode for any input that cannot be turned into
// a raster. The underlying parser error is flattened into the message only.
var ErrDecode = errors.New("image could not be decoded")

// RawImage is a normalized RGB raster stored as row-major R,G,B triplets.
type RawImage struct {
	Width  int
	Height int
	Pix    []uint8
}

// PixelCount returns the number of complete RGB samples in the raster.
func (r RawImage) PixelCount() int {
	return len(r.Pix) / 3
}

// At returns the RGB triplet at (x, y).
func (r RawImage) At(x, y int) (red, green, blue uint8) {
	i := 3 * (y*r.Width + x)
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

// Decode parses any registered container format (PNG, JPEG, GIF, WEBP, BMP,
// TIFF), drops the alpha channel or expands grayscale/paletted sources to
// RGB, and resamples the result to CanonicalSize x CanonicalSize.
//
// A source with zero area yields an empty RawImage and no error.
func Decode(data []byte) (raw RawImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw = RawImage{}
			err = fmt.Errorf("%w: decoder panic: %v", ErrDecode, r)
		}
	}()

	if len(data) == 0 {
		return RawImage{}, fmt.Errorf("%w: empty input", ErrDecode)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return RawImage{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return RawImage{}, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, cfg.Width, cfg.Height, MaxSourcePixels)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return RawImage{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return normalize(src), nil
}

// normalize flattens src to opaque RGB at the canonical size. A source with
// zero area yields an empty RawImage.
func normalize(src image.Image) RawImage {
	if src.Bounds().Empty() {
		return RawImage{}
	}

	rgb := toOpaqueRGB(src)
	resized := resize.Resize(CanonicalSize, CanonicalSize, rgb, resize.Bicubic)
	return rasterize(resized)
}

// toOpaqueRGB copies src into an RGBA buffer using straight (non
// premultiplied) color values with alpha forced to opaque, so the color
// conversion happens before any resampling.
func toOpaqueRGB(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			i := dst.PixOffset(x-bounds.Min.X, y-bounds.Min.Y)
			dst.Pix[i] = c.R
			dst.Pix[i+1] = c.G
			dst.Pix[i+2] = c.B
			dst.Pix[i+3] = 0xff
		}
	}
	return dst
}

func rasterize(img image.Image) RawImage {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	raw := RawImage{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 0, 3*width*height),
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			raw.Pix = append(raw.Pix, uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}
	return raw
}
