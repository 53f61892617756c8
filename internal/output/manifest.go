package output

import (
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/facegen/internal/face"
)

// Manifest records what a run produced and how to reproduce it.
type Manifest struct {
	RunID      string          `yaml:"run_id"`
	Created    time.Time       `yaml:"created"`
	Source     string          `yaml:"source"`
	Seed       uint64          `yaml:"seed"`
	Addressing string          `yaml:"addressing"`
	Files      []string        `yaml:"files"`
	Faces      []ManifestFace  `yaml:"faces"`
	Failed     []ManifestError `yaml:"failed,omitempty"`
}

// ManifestFace describes one generated face.
type ManifestFace struct {
	Index    int         `yaml:"index"`
	Dominant string      `yaml:"dominant,omitempty"`
	Picks    []face.Pick `yaml:"picks"`
}

// ManifestError is a round skipped after a failure.
type ManifestError struct {
	Round int    `yaml:"round"`
	Error string `yaml:"error"`
}

// NewManifest starts a manifest for a run.
func NewManifest(runID, source string, seed uint64, addressing string) *Manifest {
	return &Manifest{
		RunID:      runID,
		Created:    time.Now().UTC().Truncate(time.Second),
		Source:     source,
		Seed:       seed,
		Addressing: addressing,
	}
}

// AddBatch records the faces and failed rounds of res and the files
// they were written to.
func (m *Manifest) AddBatch(res *face.BatchResult, files []string) {
	m.Files = append(m.Files, files...)
	for _, f := range res.Faces {
		m.Faces = append(m.Faces, ManifestFace{
			Index:    f.Index,
			Dominant: DominantHex(f.Image),
			Picks:    f.Picks,
		})
	}
	for _, r := range res.Failed {
		m.Failed = append(m.Failed, ManifestError{Round: r.Round, Error: r.Err.Error()})
	}
}

// WriteFile writes the manifest as YAML.
func (m *Manifest) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadManifest loads a manifest written by WriteFile.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DominantHex returns the dominant color of img as #rrggbb, or "" for
// a fully transparent image.
func DominantHex(img image.Image) string {
	if !hasOpaque(img) {
		return ""
	}
	c, ok := colorful.MakeColor(dominantcolor.Find(img))
	if !ok {
		return ""
	}
	return c.Clamped().Hex()
}

func hasOpaque(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				return true
			}
		}
	}
	return false
}
