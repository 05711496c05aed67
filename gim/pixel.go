package gim

import (
	"encoding/binary"
	"fmt"
)

// PSP textures are swizzled in blocks of 16 bytes by 8 rows, so one block
// covers 128/bpp pixels horizontally regardless of pixel depth.
const (
	blockWidthBytes = 16
	blockHeight     = 8
	blockSizeBytes  = blockWidthBytes * blockHeight
)

// unswizzle rearranges block-ordered pixel data into row-major order.
//
// The mapping works on raw bytes, which keeps it uniform across pixel
// depths: byte bx of output row y lives in block (y/8, bx/16) at position
// (y%8, bx%16), with blocks stored row-major.
func unswizzle(data []byte, rowBytes, rows int) ([]byte, error) {
	if rowBytes%blockWidthBytes != 0 || rows%blockHeight != 0 {
		return nil, fmt.Errorf("%w: swizzled raster %d bytes x %d rows not block aligned",
			ErrMalformed, rowBytes, rows)
	}
	out := make([]byte, rowBytes*rows)
	blocksPerRow := rowBytes / blockWidthBytes
	for y := range rows {
		blockRow := y / blockHeight
		rowInBlock := y % blockHeight
		for bx := 0; bx < rowBytes; bx += blockWidthBytes {
			block := blockRow*blocksPerRow + bx/blockWidthBytes
			src := block*blockSizeBytes + rowInBlock*blockWidthBytes
			copy(out[y*rowBytes+bx:], data[src:src+blockWidthBytes])
		}
	}
	return out, nil
}

// putDirectRGBA expands the direct-color pixel at index px in row to RGBA.
// Callers guarantee the row holds at least px+1 pixels of the format.
func putDirectRGBA(dst []byte, f Format, row []byte, px int) {
	switch f {
	case FormatRGBA8888:
		copy(dst[:4], row[px*4:px*4+4])
	case FormatRGBA5650:
		v := binary.LittleEndian.Uint16(row[px*2:])
		dst[0] = uint8(v&0x1F) << 3
		dst[1] = uint8(v>>5&0x3F) << 2
		dst[2] = uint8(v>>11&0x1F) << 3
		dst[3] = 0xFF
	case FormatRGBA5551:
		v := binary.LittleEndian.Uint16(row[px*2:])
		dst[0] = uint8(v&0x1F) << 3
		dst[1] = uint8(v>>5&0x1F) << 3
		dst[2] = uint8(v>>10&0x1F) << 3
		if v&0x8000 != 0 {
			dst[3] = 0xFF
		} else {
			dst[3] = 0
		}
	case FormatRGBA4444:
		v := binary.LittleEndian.Uint16(row[px*2:])
		dst[0] = uint8(v&0xF) * 0x11
		dst[1] = uint8(v>>4&0xF) * 0x11
		dst[2] = uint8(v>>8&0xF) * 0x11
		dst[3] = uint8(v>>12&0xF) * 0x11
	}
}
