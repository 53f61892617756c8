package aseprite

import (
	"bytes"
	"fmt"
	"image/color"
)

// ChunkType is the type tag stored in every chunk header.
type ChunkType uint16

// Chunk types found in the first frame. Only palette, layer and cel
// chunks are decoded; the rest are skipped by their declared size.
const (
	ChunkOldPalette    ChunkType = 0x0004
	ChunkOldPalette64  ChunkType = 0x0011
	ChunkLayer         ChunkType = 0x2004
	ChunkCel           ChunkType = 0x2005
	ChunkCelExtra      ChunkType = 0x2006
	ChunkColorProfile  ChunkType = 0x2007
	ChunkExternalFiles ChunkType = 0x2008
	ChunkMask          ChunkType = 0x2016
	ChunkPath          ChunkType = 0x2017
	ChunkTags          ChunkType = 0x2018
	ChunkPalette       ChunkType = 0x2019
	ChunkUserData      ChunkType = 0x2020
	ChunkSlice         ChunkType = 0x2022
	ChunkTileset       ChunkType = 0x2023
)

func (t ChunkType) String() string {
	switch t {
	case ChunkOldPalette, ChunkOldPalette64:
		return "old palette"
	case ChunkLayer:
		return "layer"
	case ChunkCel:
		return "cel"
	case ChunkPalette:
		return "palette"
	case ChunkTileset:
		return "tileset"
	default:
		return fmt.Sprintf("%#04x", uint16(t))
	}
}

// Chunk is one decoded chunk: *PaletteChunk, *LayerChunk or *CelChunk.
type Chunk interface {
	Type() ChunkType
	sealed()
}

// LayerKind distinguishes drawable layers from group layers.
type LayerKind uint16

const (
	LayerNormal  LayerKind = 0
	LayerGroup   LayerKind = 1
	LayerTilemap LayerKind = 2
)

func (k LayerKind) String() string {
	switch k {
	case LayerNormal:
		return "normal"
	case LayerGroup:
		return "group"
	case LayerTilemap:
		return "tilemap"
	default:
		return fmt.Sprintf("kind(%d)", uint16(k))
	}
}

// Layer flags.
const (
	LayerVisible  = 1 << 0
	LayerEditable = 1 << 1
)

// LayerChunk declares one layer. Index is the position of the layer in
// the flattened layer list, which is what cels refer to.
type LayerChunk struct {
	Index      int
	Kind       LayerKind
	ChildLevel int
	Flags      uint16
	Name       string
}

// CelChunk holds the indexed pixels of one layer in the first frame.
// Pixels is row-major with one palette index per pixel.
type CelChunk struct {
	LayerIndex int
	X, Y       int
	Width      int
	Height     int
	Pixels     []byte
}

// PaletteEntry is one palette slot set by a palette chunk.
type PaletteEntry struct {
	Index uint8
	Color color.NRGBA
}

// PaletteChunk carries palette entries. Legacy is set for the pre-1.2
// palette chunks (0x0004, 0x0011), which carry no alpha.
type PaletteChunk struct {
	Entries []PaletteEntry
	Legacy  bool
}

func (*LayerChunk) Type() ChunkType   { return ChunkLayer }
func (*CelChunk) Type() ChunkType     { return ChunkCel }
func (*PaletteChunk) Type() ChunkType { return ChunkPalette }

func (*LayerChunk) sealed()   {}
func (*CelChunk) sealed()     {}
func (*PaletteChunk) sealed() {}

// Cel types.
const (
	celRaw            = 0
	celLinked         = 1
	celCompressed     = 2
	celCompressedTile = 3
)

type layerHeader struct {
	Flags         uint16
	Kind          uint16
	ChildLevel    uint16
	DefaultWidth  uint16
	DefaultHeight uint16
	BlendMode     uint16
	Opacity       uint8
	_             [3]byte
}

type celHeader struct {
	LayerIndex uint16
	X          int16
	Y          int16
	Opacity    uint8
	Kind       uint16
	ZIndex     int16
	_          [5]byte
}

type paletteHeader struct {
	Size  uint32
	First uint32
	Last  uint32
	_     [8]byte
}

// chunkDecoder keeps the running layer count so cels can be checked
// against the layers declared before them.
type chunkDecoder struct {
	layers int
}

// decode returns nil, nil for chunk types that are skipped.
func (d *chunkDecoder) decode(typ ChunkType, payload []byte) (Chunk, error) {
	switch typ {
	case ChunkPalette:
		return decodePalette(payload)
	case ChunkOldPalette:
		return decodeOldPalette(payload, false)
	case ChunkOldPalette64:
		return decodeOldPalette(payload, true)
	case ChunkLayer:
		l, err := decodeLayer(payload)
		if err != nil {
			return nil, err
		}
		l.Index = d.layers
		d.layers++
		return l, nil
	case ChunkCel:
		cel, err := decodeCel(payload)
		if err != nil {
			return nil, err
		}
		if cel.LayerIndex >= d.layers {
			return nil, formatErr("cel references undeclared layer %d", cel.LayerIndex)
		}
		return cel, nil
	case ChunkTileset:
		return nil, unsupported("tilesets")
	default:
		return nil, nil
	}
}

func readString(r *bytes.Reader, what string) (string, error) {
	var n uint16
	if err := read(r, &n, what+" length"); err != nil {
		return "", err
	}
	if int(n) > r.Len() {
		return "", formatErr("truncated %s", what)
	}
	b := make([]byte, n)
	_, _ = r.Read(b)
	return string(b), nil
}

func decodeLayer(payload []byte) (*LayerChunk, error) {
	r := bytes.NewReader(payload)

	var h layerHeader
	if err := read(r, &h, "layer header"); err != nil {
		return nil, err
	}

	kind := LayerKind(h.Kind)
	switch kind {
	case LayerNormal, LayerGroup:
	case LayerTilemap:
		return nil, unsupported("tilemap layers")
	default:
		return nil, formatErr("unknown layer kind %d", h.Kind)
	}

	name, err := readString(r, "layer name")
	if err != nil {
		return nil, err
	}

	return &LayerChunk{
		Kind:       kind,
		ChildLevel: int(h.ChildLevel),
		Flags:      h.Flags,
		Name:       name,
	}, nil
}

func decodeCel(payload []byte) (*CelChunk, error) {
	r := bytes.NewReader(payload)

	var h celHeader
	if err := read(r, &h, "cel header"); err != nil {
		return nil, err
	}

	switch h.Kind {
	case celRaw:
	case celLinked:
		return nil, unsupported("linked cels")
	case celCompressed:
		return nil, unsupported("compressed cels")
	case celCompressedTile:
		return nil, unsupported("tilemap cels")
	default:
		return nil, formatErr("unknown cel type %d", h.Kind)
	}

	var size struct{ Width, Height uint16 }
	if err := read(r, &size, "cel size"); err != nil {
		return nil, err
	}

	n := int(size.Width) * int(size.Height)
	switch {
	case r.Len() < n:
		return nil, formatErr("truncated cel pixels: need %d bytes, have %d", n, r.Len())
	case r.Len() > n:
		return nil, formatErr("cel pixels: need %d bytes, chunk holds %d", n, r.Len())
	}

	pixels := make([]byte, n)
	_, _ = r.Read(pixels)

	return &CelChunk{
		LayerIndex: int(h.LayerIndex),
		X:          int(h.X),
		Y:          int(h.Y),
		Width:      int(size.Width),
		Height:     int(size.Height),
		Pixels:     pixels,
	}, nil
}

func decodePalette(payload []byte) (*PaletteChunk, error) {
	r := bytes.NewReader(payload)

	var h paletteHeader
	if err := read(r, &h, "palette header"); err != nil {
		return nil, err
	}
	if h.Last < h.First || h.Last > 255 {
		return nil, formatErr("palette range %d..%d outside 0..255", h.First, h.Last)
	}

	p := &PaletteChunk{Entries: make([]PaletteEntry, 0, h.Last-h.First+1)}
	for i := h.First; i <= h.Last; i++ {
		var e struct {
			Flags      uint16
			R, G, B, A uint8
		}
		if err := read(r, &e, "palette entry"); err != nil {
			return nil, err
		}
		if e.Flags&1 != 0 {
			if _, err := readString(r, "palette entry name"); err != nil {
				return nil, err
			}
		}
		p.Entries = append(p.Entries, PaletteEntry{
			Index: uint8(i),
			Color: color.NRGBA{R: e.R, G: e.G, B: e.B, A: e.A},
		})
	}

	return p, nil
}

// decodeOldPalette reads packet based palettes. Colors in 0x0011 chunks
// use 0-63 components.
func decodeOldPalette(payload []byte, sixBit bool) (*PaletteChunk, error) {
	r := bytes.NewReader(payload)

	var packets uint16
	if err := read(r, &packets, "palette packet count"); err != nil {
		return nil, err
	}

	scale := func(c uint8) uint8 { return c }
	if sixBit {
		scale = func(c uint8) uint8 { return c<<2 | c>>4 }
	}

	p := &PaletteChunk{Legacy: true}
	idx := 0
	for i := 0; i < int(packets); i++ {
		var pk struct{ Skip, Count uint8 }
		if err := read(r, &pk, "palette packet"); err != nil {
			return nil, err
		}
		idx += int(pk.Skip)
		count := int(pk.Count)
		if count == 0 {
			count = 256
		}
		if idx+count > 256 {
			return nil, formatErr("palette packet overflows 256 entries")
		}
		for j := 0; j < count; j++ {
			var rgb [3]uint8
			if err := read(r, &rgb, "palette color"); err != nil {
				return nil, err
			}
			p.Entries = append(p.Entries, PaletteEntry{
				Index: uint8(idx),
				Color: color.NRGBA{R: scale(rgb[0]), G: scale(rgb[1]), B: scale(rgb[2]), A: 0xff},
			})
			idx++
		}
	}

	return p, nil
}
