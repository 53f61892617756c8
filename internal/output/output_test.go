package output

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/Faultbox/facegen/internal/face"
)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	white = color.NRGBA{255, 255, 255, 255}
)

// testFace is a 4x4 face with a red left half and a transparent right half.
func testFace(i int) *face.Face {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, red)
		}
	}
	return &face.Face{Index: i, Image: img, Picks: []face.Pick{{Group: "Hair", Element: "Spiky"}}}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"a.png":        FormatPNG,
		"dir/b.PNG":    FormatPNG,
		"c.bmp":        FormatBMP,
		"d.tif":        FormatTIFF,
		"e.tiff":       FormatTIFF,
		"f.jpg":        FormatJPEG,
		"g.jpeg":       FormatJPEG,
		"h.gif":        FormatGIF,
		"faces.v2.gif": FormatGIF,
	}
	for path, want := range tests {
		got, err := FormatFor(path)
		if err != nil || got != want {
			t.Errorf("%s: expected %s, got %s (%v)", path, want, got, err)
		}
	}

	for _, path := range []string{"a.webp", "noext"} {
		if _, err := FormatFor(path); !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("%s: expected ErrUnknownFormat, got %v", path, err)
		}
	}
}

func TestEncode_Decodes(t *testing.T) {
	img := testFace(0).Image

	tests := []struct {
		format Format
		decode func(*bytes.Reader) (image.Image, error)
	}{
		{FormatPNG, func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) }},
		{FormatBMP, func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) }},
		{FormatTIFF, func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) }},
		{FormatJPEG, func(r *bytes.Reader) (image.Image, error) { return jpeg.Decode(r) }},
		{FormatGIF, func(r *bytes.Reader) (image.Image, error) { return gif.Decode(r) }},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, img, tt.format, EncodeOptions{Background: white}); err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := tt.decode(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Bounds().Size() != img.Bounds().Size() {
				t.Errorf("expected size %v, got %v", img.Bounds().Size(), got.Bounds().Size())
			}
		})
	}
}

func TestEncode_PNGLossless(t *testing.T) {
	img := testFace(0).Image
	var buf bytes.Buffer
	if err := Encode(&buf, img, FormatPNG, EncodeOptions{}); err != nil {
		t.Fatal(err)
	}
	got, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := img.NRGBAAt(x, y)
			if c := color.NRGBAModel.Convert(got.At(x, y)).(color.NRGBA); c != want {
				t.Errorf("(%d,%d): expected %v, got %v", x, y, want, c)
			}
		}
	}
}

func TestQuantize_KeepsTransparency(t *testing.T) {
	pm := Quantize(testFace(0).Image)

	if len(pm.Palette) > 256 {
		t.Fatalf("palette has %d colors", len(pm.Palette))
	}
	if _, _, _, a := pm.At(3, 0).RGBA(); a != 0 {
		t.Errorf("expected transparent pixel, got alpha %d", a)
	}
	r, g, b, a := pm.At(0, 0).RGBA()
	if r>>8 < 0xf0 || g>>8 > 0x10 || b>>8 > 0x10 || a != 0xffff {
		t.Errorf("expected near red, got %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestQuantize_GradientWithTransparentHalf(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 20; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 12), uint8(y * 6), uint8(x*y) % 255, 255})
		}
	}

	pm := Quantize(img)
	if len(pm.Palette) > 256 {
		t.Fatalf("palette has %d colors", len(pm.Palette))
	}
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			_, _, _, a := pm.At(x, y).RGBA()
			if x < 20 && a != 0xffff {
				t.Fatalf("(%d,%d): opaque pixel became alpha %d", x, y, a>>8)
			}
			if x >= 20 && a != 0 {
				t.Fatalf("(%d,%d): transparent pixel became alpha %d", x, y, a>>8)
			}
		}
	}
}

func TestQuantize_OpaqueHasNoTransparentEntry(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:i+4], []byte{10, 20, 30, 255})
	}
	for _, c := range Quantize(img).Palette {
		if _, _, _, a := c.RGBA(); a == 0 {
			t.Errorf("unexpected transparent palette entry %v", c)
		}
	}
}

func TestFlatten(t *testing.T) {
	out := Flatten(testFace(0).Image, color.NRGBA{0, 0, 255, 0})
	if got := out.NRGBAAt(3, 3); got != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("expected opaque blue background, got %v", got)
	}
	if got := out.NRGBAAt(0, 0); got != red {
		t.Errorf("expected red foreground, got %v", got)
	}
}

func TestWriter_Filename(t *testing.T) {
	w, err := NewWriter("out/output_image.png", Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := w.Filename(3); got != "out/output_image_3.png" {
		t.Errorf("unexpected filename %q", got)
	}
}

func TestWriter_Individual(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(filepath.Join(dir, "sub", "face.png"), Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}

	names, err := w.Write([]*face.Face{testFace(0), testFace(1), testFace(4)})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(dir, "sub", "face_0.png"),
		filepath.Join(dir, "sub", "face_1.png"),
		filepath.Join(dir, "sub", "face_4.png"),
	}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
	for _, name := range want {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestWriter_Grid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.png")
	w, err := NewWriter(path, Options{Grid: 2, Scale: 2, Background: white}, nil)
	if err != nil {
		t.Fatal(err)
	}

	names, err := w.Write([]*face.Face{testFace(0), testFace(1), testFace(2)})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != path {
		t.Fatalf("expected single sheet %s, got %v", path, names)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	// 2 cols x 2 rows of 4x4 cells, scaled by 2.
	if img.Bounds() != image.Rect(0, 0, 16, 16) {
		t.Fatalf("expected 16x16 sheet, got %v", img.Bounds())
	}
	at := func(x, y int) color.NRGBA { return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA) }
	if got := at(0, 0); got != red {
		t.Errorf("expected red at origin, got %v", got)
	}
	if got := at(7, 0); got != white {
		t.Errorf("expected background behind transparent half, got %v", got)
	}
	if got := at(12, 12); got != white {
		t.Errorf("expected unused cell to be background, got %v", got)
	}
}

func TestWriter_EmptyBatch(t *testing.T) {
	for _, opts := range []Options{{}, {Grid: 3, Background: white}} {
		path := filepath.Join(t.TempDir(), "sheet.png")
		w, err := NewWriter(path, opts, nil)
		if err != nil {
			t.Fatal(err)
		}
		names, err := w.Write(nil)
		if err != nil {
			t.Errorf("grid %d: expected no error for an empty batch, got %v", opts.Grid, err)
		}
		if len(names) != 0 {
			t.Errorf("grid %d: expected no files, got %v", opts.Grid, names)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("grid %d: expected no sheet on disk", opts.Grid)
		}
	}
}

func TestNewWriter_UnknownFormat(t *testing.T) {
	if _, err := NewWriter("faces.webp", Options{}, nil); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestManifest(t *testing.T) {
	res := &face.BatchResult{
		Faces:  []*face.Face{testFace(0), testFace(2)},
		Failed: []*face.RoundError{{Round: 1, Err: errors.New("boom")}},
	}

	m := NewManifest("run-1", "faces.aseprite", 42, "layer-order")
	m.AddBatch(res, []string{"out_0.png", "out_2.png"})

	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := m.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadManifest(path)
	if err != nil {
		t.Fatal(err)
	}

	if got.RunID != "run-1" || got.Seed != 42 || got.Source != "faces.aseprite" {
		t.Errorf("unexpected header: %+v", got)
	}
	if len(got.Faces) != 2 || got.Faces[1].Index != 2 {
		t.Fatalf("unexpected faces: %+v", got.Faces)
	}
	if !reflect.DeepEqual(got.Faces[0].Picks, []face.Pick{{Group: "Hair", Element: "Spiky"}}) {
		t.Errorf("unexpected picks: %+v", got.Faces[0].Picks)
	}
	if len(got.Failed) != 1 || got.Failed[0].Round != 1 || got.Failed[0].Error != "boom" {
		t.Errorf("unexpected failures: %+v", got.Failed)
	}
	if !got.Created.Equal(m.Created) {
		t.Errorf("created time changed: %v vs %v", m.Created, got.Created)
	}
}

func TestDominantHex(t *testing.T) {
	hex := DominantHex(testFace(0).Image)
	if len(hex) != 7 || !strings.HasPrefix(hex, "#") {
		t.Errorf("expected #rrggbb, got %q", hex)
	}
	if got := DominantHex(image.NewNRGBA(image.Rect(0, 0, 2, 2))); got != "" {
		t.Errorf("expected empty for transparent image, got %q", got)
	}
}
