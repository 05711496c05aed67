package gim

import (
	"encoding/binary"
	"fmt"
)

// File header magic words, little-endian.
const (
	fileHeaderSize = 16

	magicSignature = 0x2e47494d // ".GIM", stored as "MIG."
	magicVersion   = 0x312e3030 // "1.00", stored as "00.1"
	magicStylePSP  = 0x00505350 // "PSP"
)

// Chunk types.
const (
	chunkBlock    = 0x0001
	chunkFile     = 0x0002
	chunkPicture  = 0x0003
	chunkImage    = 0x0004
	chunkPalette  = 0x0005
	chunkSequence = 0x0006
	chunkFileInfo = 0x00ff
)

const chunkHeaderSize = 16

// chunk is one node of the GIM chunk tree. All offsets are relative to
// the chunk's own start.
type chunk struct {
	typ   uint16
	next  uint32 // offset of the following sibling; doubles as chunk size
	child uint32 // offset of the first child
	data  uint32 // offset of the chunk's own data
}

// checkFileHeader validates the GIM signature, version, and style words.
func checkFileHeader(b []byte) error {
	if len(b) < fileHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrNotGIM, len(b))
	}
	if binary.LittleEndian.Uint32(b) != magicSignature {
		return fmt.Errorf("%w: bad signature", ErrNotGIM)
	}
	if binary.LittleEndian.Uint32(b[4:]) != magicVersion {
		return fmt.Errorf("%w: unsupported version", ErrNotGIM)
	}
	if binary.LittleEndian.Uint32(b[8:]) != magicStylePSP {
		return fmt.Errorf("%w: unsupported style", ErrNotGIM)
	}
	return nil
}

// readChunk decodes the chunk header at off.
func readChunk(b []byte, off int) (chunk, error) {
	if off < 0 || off+chunkHeaderSize > len(b) {
		return chunk{}, fmt.Errorf("%w: chunk header at 0x%x past end", ErrMalformed, off)
	}
	c := chunk{
		typ:   binary.LittleEndian.Uint16(b[off:]),
		next:  binary.LittleEndian.Uint32(b[off+4:]),
		child: binary.LittleEndian.Uint32(b[off+8:]),
		data:  binary.LittleEndian.Uint32(b[off+12:]),
	}
	if c.next < chunkHeaderSize {
		return chunk{}, fmt.Errorf("%w: chunk at 0x%x declares size %d", ErrMalformed, off, c.next)
	}
	return c, nil
}

// eachChild calls fn for every direct child of the chunk at off.
// Iteration stops at the first error.
func eachChild(b []byte, off int, parent chunk, fn func(c chunk, off int) error) error {
	end := off + int(parent.next)
	if end > len(b) {
		end = len(b)
	}
	childOff := off + int(parent.child)
	for childOff < end {
		c, err := readChunk(b, childOff)
		if err != nil {
			return err
		}
		if err := fn(c, childOff); err != nil {
			return err
		}
		childOff += int(c.next)
	}
	return nil
}

// findChild returns the last direct child of the given type, matching the
// original tool's resolution when duplicates occur.
func findChild(b []byte, off int, parent chunk, typ uint16) (chunk, int, bool, error) {
	var (
		found    chunk
		foundOff int
		ok       bool
	)
	err := eachChild(b, off, parent, func(c chunk, childOff int) error {
		if c.typ == typ {
			found, foundOff, ok = c, childOff, true
		}
		return nil
	})
	return found, foundOff, ok, err
}
