package sprite

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/Faultbox/facegen/pkg/aseprite"
)

func testPalette() *aseprite.Palette {
	p := &aseprite.Palette{}
	// Entry 0 is deliberately opaque: it must still render transparent.
	p.Colors[0] = color.NRGBA{255, 0, 255, 255}
	p.Colors[1] = color.NRGBA{255, 0, 0, 255}
	p.Colors[2] = color.NRGBA{0, 0, 255, 255}
	p.Defined[0], p.Defined[1], p.Defined[2] = true, true, true
	return p
}

func solidCel(x, y, w, h int, idx byte) *aseprite.CelChunk {
	px := make([]byte, w*h)
	for i := range px {
		px[i] = idx
	}
	return &aseprite.CelChunk{X: x, Y: y, Width: w, Height: h, Pixels: px}
}

func TestNewCanvas(t *testing.T) {
	c := NewCanvas(3, 2)
	if c.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("unexpected bounds %v", c.Bounds())
	}
	for i, b := range c.Pix {
		if b != 0 {
			t.Fatalf("byte %d of new canvas is %d, expected 0", i, b)
		}
	}
}

func TestDepalettize(t *testing.T) {
	cel := &aseprite.CelChunk{Width: 2, Height: 2, Pixels: []byte{0, 1, 2, 0}}
	img, err := Depalettize(testPalette(), cel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 0, color.NRGBA{}},
		{1, 0, color.NRGBA{255, 0, 0, 255}},
		{0, 1, color.NRGBA{0, 0, 255, 255}},
		{1, 1, color.NRGBA{}},
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d): expected %v, got %v", tt.x, tt.y, tt.want, got)
		}
	}
}

func TestDepalettize_IndexZeroNeverOpaque(t *testing.T) {
	img, err := Depalettize(testPalette(), solidCel(0, 0, 5, 5, 0))
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if a := img.NRGBAAt(x, y).A; a != 0 {
				t.Fatalf("pixel (%d,%d) has alpha %d", x, y, a)
			}
		}
	}
}

func TestDepalettize_UndefinedIndex(t *testing.T) {
	_, err := Depalettize(testPalette(), solidCel(0, 0, 1, 1, 7))
	if !errors.Is(err, ErrPaletteLookup) {
		t.Errorf("expected ErrPaletteLookup, got %v", err)
	}
}

func TestComposite_Placement(t *testing.T) {
	canvas := NewCanvas(8, 8)
	if err := DrawCel(canvas, testPalette(), solidCel(2, 3, 4, 4, 1)); err != nil {
		t.Fatal(err)
	}

	block := image.Rect(2, 3, 6, 7)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			got := canvas.NRGBAAt(x, y)
			if image.Pt(x, y).In(block) {
				if got != (color.NRGBA{255, 0, 0, 255}) {
					t.Errorf("pixel (%d,%d): expected opaque red, got %v", x, y, got)
				}
			} else if got.A != 0 {
				t.Errorf("pixel (%d,%d): expected transparent, got %v", x, y, got)
			}
		}
	}
}

func TestComposite_Clipping(t *testing.T) {
	tests := []struct {
		name   string
		cel    *aseprite.CelChunk
		opaque int
	}{
		{"negative offset", solidCel(-2, -2, 4, 4, 1), 4},
		{"past right edge", solidCel(3, 0, 4, 1, 1), 1},
		{"fully outside", solidCel(10, 10, 2, 2, 1), 0},
		{"larger than canvas", solidCel(-1, -1, 10, 10, 1), 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := NewCanvas(4, 4)
			if err := DrawCel(canvas, testPalette(), tt.cel); err != nil {
				t.Fatal(err)
			}
			n := 0
			for i := 3; i < len(canvas.Pix); i += 4 {
				if canvas.Pix[i] != 0 {
					n++
				}
			}
			if n != tt.opaque {
				t.Errorf("expected %d opaque pixels, got %d", tt.opaque, n)
			}
		})
	}
}

func TestComposite_MaskOverwrite(t *testing.T) {
	p := testPalette()
	canvas := NewCanvas(3, 1)

	// Earlier layer: all red.
	if err := DrawCel(canvas, p, solidCel(0, 0, 3, 1, 1)); err != nil {
		t.Fatal(err)
	}
	// Later layer: blue, hole, blue.
	later := &aseprite.CelChunk{Width: 3, Height: 1, Pixels: []byte{2, 0, 2}}
	if err := DrawCel(canvas, p, later); err != nil {
		t.Fatal(err)
	}

	want := []color.NRGBA{{0, 0, 255, 255}, {255, 0, 0, 255}, {0, 0, 255, 255}}
	for x, w := range want {
		if got := canvas.NRGBAAt(x, 0); got != w {
			t.Errorf("pixel %d: expected %v, got %v", x, w, got)
		}
	}
}

func TestComposite_SemiTransparentReplaces(t *testing.T) {
	canvas := NewCanvas(1, 1)
	canvas.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})

	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, color.NRGBA{0, 255, 0, 10})
	Composite(canvas, src, image.Point{})

	if got := canvas.NRGBAAt(0, 0); got != (color.NRGBA{0, 255, 0, 10}) {
		t.Errorf("expected source pixel to replace destination, got %v", got)
	}
}
