// Package sprite converts indexed cels to RGBA and composites them.
package sprite

import (
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/facegen/pkg/aseprite"
)

// ErrPaletteLookup is returned when a cel uses an index the palette
// does not define.
var ErrPaletteLookup = errors.New("sprite: palette index not defined")

// NewCanvas returns a fully transparent canvas.
func NewCanvas(width, height int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, width, height))
}

// Depalettize converts a cel's indices into an image with bounds
// (0,0)-(w,h). Index 0 becomes a fully transparent pixel.
func Depalettize(p *aseprite.Palette, cel *aseprite.CelChunk) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, cel.Width, cel.Height))

	for i, idx := range cel.Pixels {
		if idx == 0 {
			continue // NewNRGBA is zeroed
		}
		c, ok := p.Lookup(idx)
		if !ok {
			return nil, fmt.Errorf("%w: %d at (%d,%d) of layer %d",
				ErrPaletteLookup, idx, i%cel.Width, i/cel.Width, cel.LayerIndex)
		}
		offset := i * 4
		img.Pix[offset] = c.R
		img.Pix[offset+1] = c.G
		img.Pix[offset+2] = c.B
		img.Pix[offset+3] = c.A
	}

	return img, nil
}

// Composite writes src onto dst with its top-left corner at the given
// point, clipped to dst. A source pixel with nonzero alpha replaces the
// destination pixel; a fully transparent one leaves it untouched.
func Composite(dst, src *image.NRGBA, at image.Point) {
	sb := src.Bounds()
	r := sb.Sub(sb.Min).Add(at).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		sy := sb.Min.Y + y - at.Y
		for x := r.Min.X; x < r.Max.X; x++ {
			sx := sb.Min.X + x - at.X

			si := src.PixOffset(sx, sy)
			if src.Pix[si+3] == 0 {
				continue // Fully transparent
			}
			di := dst.PixOffset(x, y)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
}

// DrawCel depalettizes cel and composites it at its own placement.
func DrawCel(dst *image.NRGBA, p *aseprite.Palette, cel *aseprite.CelChunk) error {
	img, err := Depalettize(p, cel)
	if err != nil {
		return err
	}
	Composite(dst, img, image.Pt(cel.X, cel.Y))
	return nil
}
