// Package output encodes generated faces and writes them to disk.
package output

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// ErrUnknownFormat is returned for an output extension with no encoder.
var ErrUnknownFormat = errors.New("output: unknown image format")

// Format is an output image encoding.
type Format int

const (
	FormatPNG Format = iota
	FormatBMP
	FormatTIFF
	FormatJPEG
	FormatGIF
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	case FormatJPEG:
		return "jpeg"
	case FormatGIF:
		return "gif"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// FormatFor picks the encoder from the extension of path.
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".gif":
		return FormatGIF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// EncodeOptions tunes Encode.
type EncodeOptions struct {
	// Paletted reduces PNG output to at most 256 colors.
	Paletted bool
	// Background shows through transparent pixels in JPEG output.
	Background color.NRGBA
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format, opts EncodeOptions) error {
	switch f {
	case FormatPNG:
		if opts.Paletted {
			img = Quantize(img)
		}
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatJPEG:
		return jpeg.Encode(w, Flatten(img, opts.Background), &jpeg.Options{Quality: 95})
	case FormatGIF:
		return gif.Encode(w, Quantize(img), nil)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}

// Quantize reduces img to a median-cut palette of at most 256 colors.
// Fully transparent pixels map to a transparent palette entry.
func Quantize(img image.Image) *image.Paletted {
	b := img.Bounds()

	q := quantize.MedianCutQuantizer{AddTransparent: hasTransparent(img)}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, 256), img))
	draw.Draw(pm, b, img, b.Min, draw.Src)
	return pm
}

// Flatten draws img over an opaque background.
func Flatten(img image.Image, bg color.NRGBA) *image.NRGBA {
	b := img.Bounds()
	bg.A = 0xff
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

func hasTransparent(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a == 0 {
				return true
			}
		}
	}
	return false
}
