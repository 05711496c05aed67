// Package testutil builds synthetic archive and texture blobs for tests.
//
// Builders write the raw wire formats directly so that package tests
// exercise the real parsers rather than round-tripping through them.
package testutil

import (
	"bytes"
	"encoding/binary"
)

const (
	archiveAlign = 16
	markerSlot   = "PSPCHECK"
)

// BuildArchive assembles an archive blob from the given payloads. When
// marker is true a trailing "PSPCHECK" slot is appended, making the
// archive well-formed per the producer's own validity check.
func BuildArchive(payloads [][]byte, marker bool) []byte {
	all := payloads
	if marker {
		all = append(append([][]byte{}, payloads...), []byte(markerSlot))
	}

	var buf bytes.Buffer
	putUint32(&buf, uint32(len(all)))
	for _, p := range all {
		putUint32(&buf, uint32(len(p)))
	}
	for _, p := range all {
		padTo(&buf, archiveAlign)
		buf.Write(p)
	}
	return buf.Bytes()
}

// GIMSpec describes a synthetic GIM texture.
type GIMSpec struct {
	Format      uint16
	Order       uint16
	Width       uint16
	Height      uint16
	PitchAlign  uint16
	HeightAlign uint16
	LevelCount  uint16 // defaults to 1
	FrameCount  uint16 // defaults to 1
	Pixels      []byte

	// Palette, when non-nil, adds a palette chunk of raw colors in
	// PaletteFormat.
	PaletteFormat uint16
	Palette       []byte
}

// BuildGIM assembles a GIM file: header, root block, picture chunk, image
// chunk, and optional palette chunk.
func BuildGIM(s GIMSpec) []byte {
	if s.LevelCount == 0 {
		s.LevelCount = 1
	}
	if s.FrameCount == 0 {
		s.FrameCount = 1
	}

	img := buildImageChunk(0x04, s.Format, s.Order, s.Width, s.Height,
		s.PitchAlign, s.HeightAlign, s.LevelCount, s.FrameCount, s.Pixels)
	var pal []byte
	if s.Palette != nil {
		pal = buildImageChunk(0x05, s.PaletteFormat, 0, uint16(len(s.Palette)/4), 1,
			8, 1, 1, 1, s.Palette)
	}

	var pic bytes.Buffer
	putChunk(&pic, 0x03, uint32(16+len(img)+len(pal)), 16, 16)
	pic.Write(img)
	pic.Write(pal)

	var buf bytes.Buffer
	buf.WriteString("MIG.00.1PSP\x00")
	buf.Write(make([]byte, 4))
	putChunk(&buf, 0x02, uint32(16+pic.Len()), 16, 16)
	buf.Write(pic.Bytes())
	return buf.Bytes()
}

// buildImageChunk assembles an image or palette chunk: chunk header,
// 48-byte image header, one block of level offsets, then the pixel data.
func buildImageChunk(typ, format, order, width, height, pitchAlign, heightAlign, levels, frames uint16, data []byte) []byte {
	offsets := make([]byte, 4*int(levels)*int(frames))
	headerTotal := uint32(48 + len(offsets) + len(data))

	var buf bytes.Buffer
	putChunk(&buf, typ, 16+headerTotal, 16+headerTotal, 16)

	putUint16(&buf, 48) // header size
	putUint16(&buf, 0)  // reference
	putUint16(&buf, format)
	putUint16(&buf, order)
	putUint16(&buf, width)
	putUint16(&buf, height)
	putUint16(&buf, bitsFor(format))
	putUint16(&buf, pitchAlign)
	putUint16(&buf, heightAlign)
	putUint16(&buf, 2) // dimension count
	putUint16(&buf, 0)
	putUint16(&buf, 0)
	putUint32(&buf, 48)                      // level offsets
	putUint32(&buf, uint32(48+len(offsets))) // pixel data start
	putUint32(&buf, headerTotal)             // pixel data end
	putUint32(&buf, 0)                       // plane mask
	putUint16(&buf, 1)                       // level type
	putUint16(&buf, levels)
	putUint16(&buf, 0) // frame type
	putUint16(&buf, frames)

	buf.Write(offsets)
	buf.Write(data)
	return buf.Bytes()
}

// bitsFor returns the storage bits per pixel for a format tag.
func bitsFor(format uint16) uint16 {
	switch format {
	case 3:
		return 32
	case 0, 1, 2:
		return 16
	case 5:
		return 8
	case 4:
		return 4
	default:
		return 0
	}
}

func putChunk(buf *bytes.Buffer, typ uint16, next, child, data uint32) {
	putUint16(buf, typ)
	putUint16(buf, 0)
	putUint32(buf, next)
	putUint32(buf, child)
	putUint32(buf, data)
}

func putUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// padTo pads buf with zeros up to the next multiple of align.
func padTo(buf *bytes.Buffer, align int) {
	if rem := buf.Len() % align; rem != 0 {
		buf.Write(make([]byte, align-rem))
	}
}
