// Package face assembles composite images from indexed layer groups.
package face

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/facegen/internal/engine/sprite"
	"github.com/Faultbox/facegen/internal/parts"
	"github.com/Faultbox/facegen/internal/selector"
	"github.com/Faultbox/facegen/pkg/aseprite"
)

// Pick records the element drawn for one group.
type Pick struct {
	Group   string `yaml:"group"`
	Element string `yaml:"element"`
}

// Face is the result of one generation round.
type Face struct {
	Index int
	Image *image.NRGBA
	Picks []Pick
}

// Assembler composites faces from a fixed group index. The groups and
// palette are shared read-only across rounds; only the selector's
// random source changes.
type Assembler struct {
	groups  []parts.Group
	palette *aseprite.Palette
	width   int
	height  int
	sel     *selector.Selector
	log     *zap.Logger
}

// NewAssembler returns an Assembler producing width x height canvases.
// A nil logger discards output.
func NewAssembler(groups []parts.Group, palette *aseprite.Palette, width, height int, sel *selector.Selector, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{
		groups:  groups,
		palette: palette,
		width:   width,
		height:  height,
		sel:     sel,
		log:     log,
	}
}

// Assemble composites one face. Groups are drawn in file order and only
// those named in active take part; later groups overwrite earlier ones
// where their pixels are opaque.
func (a *Assembler) Assemble(active []string) (*Face, error) {
	want := make(map[string]bool, len(active))
	for _, name := range active {
		want[name] = true
	}

	f := &Face{Image: sprite.NewCanvas(a.width, a.height)}
	for _, g := range a.groups {
		if !want[g.Name] {
			continue
		}

		e, err := a.sel.DrawElement(g)
		if err != nil {
			return nil, err
		}
		if err := sprite.DrawCel(f.Image, a.palette, e.Cel); err != nil {
			return nil, fmt.Errorf("group %q element %q: %w", g.Name, e.Name, err)
		}
		f.Picks = append(f.Picks, Pick{Group: g.Name, Element: e.Name})
	}

	return f, nil
}

// Generate chooses the active groups from fams and assembles one face.
func (a *Assembler) Generate(fams []selector.Family) (*Face, error) {
	active, err := a.sel.ChooseActiveGroups(fams)
	if err != nil {
		return nil, err
	}
	a.log.Debug("active groups", zap.Strings("groups", active))
	return a.Assemble(active)
}
