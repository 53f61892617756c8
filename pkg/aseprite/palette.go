package aseprite

import "image/color"

// Palette maps 256 indices to colors. Index 0 is the transparency
// sentinel whatever color is stored for it.
type Palette struct {
	Colors  [256]color.NRGBA
	Defined [256]bool
}

// Lookup returns the color stored at idx and whether a palette chunk
// defined it.
func (p *Palette) Lookup(idx uint8) (color.NRGBA, bool) {
	return p.Colors[idx], p.Defined[idx]
}

// Len returns the number of defined entries.
func (p *Palette) Len() int {
	n := 0
	for _, ok := range p.Defined {
		if ok {
			n++
		}
	}
	return n
}

// ResolvePalette builds the palette from the first palette chunk in
// chunks. Later palette chunks are ignored: the first one applies to
// the whole sprite.
func ResolvePalette(chunks []Chunk) (*Palette, error) {
	for _, c := range chunks {
		pc, ok := c.(*PaletteChunk)
		if !ok {
			continue
		}
		p := &Palette{}
		for _, e := range pc.Entries {
			p.Colors[e.Index] = e.Color
			p.Defined[e.Index] = true
		}
		return p, nil
	}
	return nil, formatErr("missing palette")
}

// Palette resolves the palette of the first frame.
func (f *File) Palette() (*Palette, error) {
	return ResolvePalette(f.Frames[0].Chunks)
}
