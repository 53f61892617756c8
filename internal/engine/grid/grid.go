// Package grid arranges a batch of images into a fixed-column sheet.
package grid

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// ErrNoImages is returned when tiling an empty batch.
var ErrNoImages = errors.New("grid: no images")

// DefaultBackground fills grid cells behind and between images.
const DefaultBackground = "#ffffff"

// ParseBackground parses a hex color such as "#ffffff" into an opaque color.
func ParseBackground(hex string) (color.NRGBA, error) {
	if hex == "" {
		hex = DefaultBackground
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("background %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Rows returns ceil(n / cols).
func Rows(n, cols int) int {
	return (n + cols - 1) / cols
}

// Tile lays images out left to right, top to bottom, cols per row. The
// cell size is taken from the first image. Every cell starts filled with
// the opaque background, so unused cells stay background.
func Tile(images []image.Image, cols int, bg color.Color) (*image.NRGBA, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if cols <= 0 {
		return nil, fmt.Errorf("grid: invalid column count %d", cols)
	}

	cell := images[0].Bounds().Size()
	rows := Rows(len(images), cols)
	sheet := image.NewNRGBA(image.Rect(0, 0, cols*cell.X, rows*cell.Y))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for i, img := range images {
		at := image.Pt(i%cols*cell.X, i/cols*cell.Y)
		r := image.Rectangle{Min: at, Max: at.Add(cell)}
		draw.Draw(sheet, r, img, img.Bounds().Min, draw.Over)
	}

	return sheet, nil
}

// Filter names accepted by Scale.
const (
	FilterNearest    = "nearest"
	FilterBilinear   = "bilinear"
	FilterCatmullRom = "catmullrom"
)

func interpolator(name string) (draw.Interpolator, error) {
	switch name {
	case "", FilterNearest:
		return draw.NearestNeighbor, nil
	case FilterBilinear:
		return draw.BiLinear, nil
	case FilterCatmullRom:
		return draw.CatmullRom, nil
	default:
		return nil, fmt.Errorf("grid: unknown filter %q", name)
	}
}

// Scale enlarges img by an integer factor. A factor of 1 returns img
// unchanged.
func Scale(img *image.NRGBA, factor int, filter string) (*image.NRGBA, error) {
	if factor < 1 {
		return nil, fmt.Errorf("grid: invalid scale %d", factor)
	}
	ip, err := interpolator(filter)
	if err != nil {
		return nil, err
	}
	if factor == 1 {
		return img, nil
	}

	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	ip.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}
