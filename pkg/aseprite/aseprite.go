// Package aseprite decodes the subset of the Aseprite (.ase/.aseprite)
// format needed to rebuild flat, indexed-color sprites: the global
// header, the palette, the layer list and the uncompressed cels of the
// first frame.
//
// All values are little-endian. A file starts with a 128 byte header,
// followed by one block per frame. Each frame block carries a 16 byte
// frame header and a list of chunks, every chunk framed by its total
// size (header included) and a type tag.
package aseprite

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Decoding errors. Every error returned by Decode wraps one of these.
var (
	ErrFormat             = errors.New("aseprite: malformed file")
	ErrUnsupportedFeature = errors.New("aseprite: unsupported feature")
)

const (
	headerSize      = 128
	frameHeaderSize = 16
	chunkHeaderSize = 6

	fileMagic  = 0xA5E0
	frameMagic = 0xF1FA

	// DepthIndexed is the only color depth this package decodes.
	DepthIndexed = 8
)

// header mirrors the fixed 128 byte file header.
type header struct {
	FileSize    uint32
	Magic       uint16
	Frames      uint16
	Width       uint16
	Height      uint16
	ColorDepth  uint16
	Flags       uint32
	Speed       uint16
	_           [2]uint32
	Transparent uint8
	_           [3]byte
	NumColors   uint16
	PixelWidth  uint8
	PixelHeight uint8
	GridX       int16
	GridY       int16
	GridWidth   uint16
	GridHeight  uint16
	_           [84]byte
}

type frameHeader struct {
	Size      uint32
	Magic     uint16
	OldChunks uint16
	Duration  uint16
	_         [2]byte
	NewChunks uint32
}

// File is a decoded sprite. Only the first frame is decoded; FrameCount
// still reports how many frames the file declares.
type File struct {
	Width            int
	Height           int
	ColorDepth       int
	TransparentIndex uint8
	NumColors        int
	FrameCount       int
	Frames           []Frame
}

// Frame holds the chunks of one frame in file order.
type Frame struct {
	Duration int // milliseconds
	Chunks   []Chunk
}

func formatErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFormat, fmt.Sprintf(format, args...))
}

func unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFeature, fmt.Sprintf(format, args...))
}

// read decodes a fixed-size value, turning short reads into ErrFormat.
func read(r io.Reader, v any, what string) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return formatErr("truncated %s", what)
		}
		return err
	}
	return nil
}

// Decode parses an Aseprite file from raw bytes.
func Decode(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, formatErr("file shorter than %d byte header", headerSize)
	}

	var h header
	if err := read(bytes.NewReader(data[:headerSize]), &h, "header"); err != nil {
		return nil, err
	}
	if h.Magic != fileMagic {
		return nil, formatErr("bad file magic %#04x", h.Magic)
	}
	if int(h.FileSize) > len(data) {
		return nil, formatErr("header declares %d bytes, have %d", h.FileSize, len(data))
	}
	if h.ColorDepth != DepthIndexed {
		return nil, unsupported("color depth %d (only indexed is supported)", h.ColorDepth)
	}
	if h.Frames == 0 {
		return nil, formatErr("no frames")
	}

	f := &File{
		Width:            int(h.Width),
		Height:           int(h.Height),
		ColorDepth:       int(h.ColorDepth),
		TransparentIndex: h.Transparent,
		NumColors:        int(h.NumColors),
		FrameCount:       int(h.Frames),
	}

	frame, err := decodeFrame(data[headerSize:])
	if err != nil {
		return nil, fmt.Errorf("frame 0: %w", err)
	}
	f.Frames = []Frame{frame}

	return f, nil
}

// DecodeFile reads and decodes an Aseprite file from disk.
func DecodeFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sprite file: %w", err)
	}
	return Decode(data)
}

func decodeFrame(data []byte) (Frame, error) {
	if len(data) < frameHeaderSize {
		return Frame{}, formatErr("truncated frame header")
	}

	var fh frameHeader
	if err := read(bytes.NewReader(data[:frameHeaderSize]), &fh, "frame header"); err != nil {
		return Frame{}, err
	}
	if fh.Magic != frameMagic {
		return Frame{}, formatErr("bad frame magic %#04x", fh.Magic)
	}
	if fh.Size < frameHeaderSize || int(fh.Size) > len(data) {
		return Frame{}, formatErr("frame declares %d bytes, have %d", fh.Size, len(data))
	}

	count := int(fh.NewChunks)
	if count == 0 {
		count = int(fh.OldChunks)
	}

	body := data[frameHeaderSize:fh.Size]
	d := chunkDecoder{}
	frame := Frame{
		Duration: int(fh.Duration),
		Chunks:   make([]Chunk, 0, count),
	}

	for i := 0; i < count; i++ {
		if len(body) < chunkHeaderSize {
			return Frame{}, formatErr("chunk %d: truncated chunk header", i)
		}
		size := binary.LittleEndian.Uint32(body)
		typ := ChunkType(binary.LittleEndian.Uint16(body[4:]))
		if size < chunkHeaderSize || uint64(size) > uint64(len(body)) {
			return Frame{}, formatErr("chunk %d (%s): declares %d bytes, have %d", i, typ, size, len(body))
		}

		c, err := d.decode(typ, body[chunkHeaderSize:size])
		if err != nil {
			return Frame{}, fmt.Errorf("chunk %d (%s): %w", i, typ, err)
		}
		if c != nil {
			frame.Chunks = append(frame.Chunks, c)
		}
		body = body[size:]
	}

	return frame, nil
}

// Layers returns the layer chunks of the first frame in declaration order.
func (f *File) Layers() []*LayerChunk {
	var layers []*LayerChunk
	for _, c := range f.Frames[0].Chunks {
		if l, ok := c.(*LayerChunk); ok {
			layers = append(layers, l)
		}
	}
	return layers
}

// Cels returns the cel chunks of the first frame in file order.
func (f *File) Cels() []*CelChunk {
	var cels []*CelChunk
	for _, c := range f.Frames[0].Chunks {
		if cel, ok := c.(*CelChunk); ok {
			cels = append(cels, cel)
		}
	}
	return cels
}

// Cel returns the first cel of the first frame placed on the given layer.
func (f *File) Cel(layerIndex int) (*CelChunk, bool) {
	for _, c := range f.Frames[0].Chunks {
		if cel, ok := c.(*CelChunk); ok && cel.LayerIndex == layerIndex {
			return cel, true
		}
	}
	return nil, false
}
