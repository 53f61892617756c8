// Package asepritetest builds synthetic Aseprite files for tests.
package asepritetest

import (
	"bytes"
	"encoding/binary"
	"image/color"

	"github.com/Faultbox/facegen/pkg/aseprite"
)

// Builder accumulates the chunks of frame 0. Chunks are written in the
// order the methods are called.
type Builder struct {
	Width  int
	Height int
	Depth  int
	Frames int

	chunks [][]byte
}

// New returns a builder for an indexed sprite of the given size.
func New(width, height int) *Builder {
	return &Builder{
		Width:  width,
		Height: height,
		Depth:  aseprite.DepthIndexed,
		Frames: 1,
	}
}

func le(buf *bytes.Buffer, v any) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}

func str(buf *bytes.Buffer, s string) {
	le(buf, uint16(len(s)))
	buf.WriteString(s)
}

// Raw appends a chunk with an arbitrary type and payload.
func (b *Builder) Raw(typ aseprite.ChunkType, payload []byte) *Builder {
	var buf bytes.Buffer
	le(&buf, uint32(6+len(payload)))
	le(&buf, uint16(typ))
	buf.Write(payload)
	b.chunks = append(b.chunks, buf.Bytes())
	return b
}

// Entry is one palette entry. A non-empty Name sets the has-name flag.
type Entry struct {
	Color color.NRGBA
	Name  string
}

// Palette appends a 0x2019 palette chunk with entries starting at 0.
func (b *Builder) Palette(colors ...color.NRGBA) *Builder {
	entries := make([]Entry, len(colors))
	for i, c := range colors {
		entries[i] = Entry{Color: c}
	}
	return b.PaletteEntries(0, entries...)
}

// PaletteEntries appends a 0x2019 palette chunk with entries starting
// at first.
func (b *Builder) PaletteEntries(first int, entries ...Entry) *Builder {
	var buf bytes.Buffer
	le(&buf, uint32(first+len(entries)))
	le(&buf, uint32(first))
	le(&buf, uint32(first+len(entries)-1))
	buf.Write(make([]byte, 8))
	for _, e := range entries {
		if e.Name != "" {
			le(&buf, uint16(1))
		} else {
			le(&buf, uint16(0))
		}
		buf.Write([]byte{e.Color.R, e.Color.G, e.Color.B, e.Color.A})
		if e.Name != "" {
			str(&buf, e.Name)
		}
	}
	return b.Raw(aseprite.ChunkPalette, buf.Bytes())
}

// OldPalette appends a single-packet 0x0004 palette chunk.
func (b *Builder) OldPalette(skip int, colors ...color.RGBA) *Builder {
	return b.oldPalette(aseprite.ChunkOldPalette, skip, colors)
}

// OldPalette64 appends a single-packet 0x0011 palette chunk. Components
// must be in 0..63.
func (b *Builder) OldPalette64(skip int, colors ...color.RGBA) *Builder {
	return b.oldPalette(aseprite.ChunkOldPalette64, skip, colors)
}

func (b *Builder) oldPalette(typ aseprite.ChunkType, skip int, colors []color.RGBA) *Builder {
	var buf bytes.Buffer
	le(&buf, uint16(1))
	buf.WriteByte(byte(skip))
	buf.WriteByte(byte(len(colors)))
	for _, c := range colors {
		buf.Write([]byte{c.R, c.G, c.B})
	}
	return b.Raw(typ, buf.Bytes())
}

// Layer appends a layer chunk.
func (b *Builder) Layer(kind aseprite.LayerKind, level int, name string) *Builder {
	var buf bytes.Buffer
	le(&buf, uint16(aseprite.LayerVisible|aseprite.LayerEditable))
	le(&buf, uint16(kind))
	le(&buf, uint16(level))
	le(&buf, uint16(b.Width))
	le(&buf, uint16(b.Height))
	le(&buf, uint16(0)) // blend mode
	buf.WriteByte(255)  // opacity
	buf.Write(make([]byte, 3))
	str(&buf, name)
	return b.Raw(aseprite.ChunkLayer, buf.Bytes())
}

// Group appends a top-level group layer.
func (b *Builder) Group(name string) *Builder {
	return b.Layer(aseprite.LayerGroup, 0, name)
}

// Child appends a normal layer nested one level deep.
func (b *Builder) Child(name string) *Builder {
	return b.Layer(aseprite.LayerNormal, 1, name)
}

func celHeader(buf *bytes.Buffer, layer, x, y int, kind uint16) {
	le(buf, uint16(layer))
	le(buf, int16(x))
	le(buf, int16(y))
	buf.WriteByte(255)
	le(buf, kind)
	le(buf, int16(0))
	buf.Write(make([]byte, 5))
}

// Cel appends an uncompressed cel. pixels must hold w*h indices.
func (b *Builder) Cel(layer, x, y, w, h int, pixels []byte) *Builder {
	var buf bytes.Buffer
	celHeader(&buf, layer, x, y, 0)
	le(&buf, uint16(w))
	le(&buf, uint16(h))
	buf.Write(pixels)
	return b.Raw(aseprite.ChunkCel, buf.Bytes())
}

// CelKind appends a cel of the given cel type with a raw body.
func (b *Builder) CelKind(layer int, kind uint16, body []byte) *Builder {
	var buf bytes.Buffer
	celHeader(&buf, layer, 0, 0, kind)
	buf.Write(body)
	return b.Raw(aseprite.ChunkCel, buf.Bytes())
}

// Bytes encodes the file. Frames after the first carry no chunks.
func (b *Builder) Bytes() []byte {
	var frame bytes.Buffer
	size := 16
	for _, c := range b.chunks {
		size += len(c)
	}
	le(&frame, uint32(size))
	le(&frame, uint16(0xF1FA))
	le(&frame, uint16(len(b.chunks)))
	le(&frame, uint16(100))
	frame.Write(make([]byte, 2))
	le(&frame, uint32(len(b.chunks)))
	for _, c := range b.chunks {
		frame.Write(c)
	}
	for i := 1; i < b.Frames; i++ {
		le(&frame, uint32(16))
		le(&frame, uint16(0xF1FA))
		le(&frame, uint16(0))
		le(&frame, uint16(100))
		frame.Write(make([]byte, 2))
		le(&frame, uint32(0))
	}

	var out bytes.Buffer
	le(&out, uint32(128+frame.Len()))
	le(&out, uint16(0xA5E0))
	le(&out, uint16(b.Frames))
	le(&out, uint16(b.Width))
	le(&out, uint16(b.Height))
	le(&out, uint16(b.Depth))
	le(&out, uint32(1)) // flags
	le(&out, uint16(100))
	out.Write(make([]byte, 8))
	out.WriteByte(0) // transparent index
	out.Write(make([]byte, 3))
	le(&out, uint16(256))
	out.Write([]byte{1, 1})
	out.Write(make([]byte, 128-out.Len()))
	out.Write(frame.Bytes())
	return out.Bytes()
}

// Fill returns w*h pixels all set to idx.
func Fill(w, h int, idx byte) []byte {
	return bytes.Repeat([]byte{idx}, w*h)
}

// Opaque returns a fully opaque color.
func Opaque(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}
