package output

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/facegen/internal/engine/grid"
	"github.com/Faultbox/facegen/internal/face"
)

// Options controls how a batch is written.
type Options struct {
	// Grid is the number of columns of a contact sheet. Zero writes one
	// file per face.
	Grid int
	// Scale and Filter upscale the contact sheet.
	Scale  int
	Filter string
	// Background fills grid cells and flattens JPEG output.
	Background color.NRGBA
	Paletted   bool
}

// Writer writes batches of faces under a single output path.
type Writer struct {
	path   string
	format Format
	opts   Options
	log    *zap.Logger
}

// NewWriter returns a Writer for path. The encoder is chosen from its
// extension. A nil logger discards output.
func NewWriter(path string, opts Options, log *zap.Logger) (*Writer, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	return &Writer{path: path, format: f, opts: opts, log: log}, nil
}

// Filename returns the individual file name for face i: the output
// path with _i inserted before its extension.
func (w *Writer) Filename(i int) string {
	ext := filepath.Ext(w.path)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(w.path, ext), i, ext)
}

// Write writes faces and returns the written file names. In grid mode
// a single sheet is written at the output path. An empty batch writes
// nothing in either mode.
func (w *Writer) Write(faces []*face.Face) ([]string, error) {
	if len(faces) == 0 {
		w.log.Warn("no faces to write", zap.String("path", w.path))
		return nil, nil
	}
	if w.opts.Grid > 0 {
		name, err := w.writeGrid(faces)
		if err != nil {
			return nil, err
		}
		return []string{name}, nil
	}

	names := make([]string, 0, len(faces))
	for _, f := range faces {
		name := w.Filename(f.Index)
		if err := w.save(name, f.Image); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (w *Writer) writeGrid(faces []*face.Face) (string, error) {
	images := make([]image.Image, len(faces))
	for i, f := range faces {
		images[i] = f.Image
	}

	sheet, err := grid.Tile(images, w.opts.Grid, w.opts.Background)
	if err != nil {
		return "", err
	}
	sheet, err = grid.Scale(sheet, w.opts.Scale, w.opts.Filter)
	if err != nil {
		return "", err
	}

	if err := w.save(w.path, sheet); err != nil {
		return "", err
	}
	w.log.Info("wrote grid",
		zap.String("file", w.path),
		zap.Int("faces", len(faces)),
		zap.Int("cols", w.opts.Grid),
		zap.Int("rows", grid.Rows(len(faces), w.opts.Grid)))
	return w.path, nil
}

func (w *Writer) save(name string, img image.Image) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	opts := EncodeOptions{Paletted: w.opts.Paletted, Background: w.opts.Background}
	if err := Encode(file, img, w.format, opts); err != nil {
		return fmt.Errorf("encoding %s: %w", w.format, err)
	}

	w.log.Debug("wrote image", zap.String("file", name))
	return file.Close()
}
