package gim

import (
	"encoding/binary"
	"fmt"
	"image"
)

// Format is a GIM pixel-format tag.
type Format uint16

const (
	FormatRGBA5650 Format = 0
	FormatRGBA5551 Format = 1
	FormatRGBA4444 Format = 2
	FormatRGBA8888 Format = 3
	FormatIndex4   Format = 4
	FormatIndex8   Format = 5
	FormatIndex16  Format = 6
	FormatIndex32  Format = 7
	FormatDXT1     Format = 8
	FormatDXT3     Format = 9
	FormatDXT5     Format = 10
)

// String returns the format tag's name.
func (f Format) String() string {
	switch f {
	case FormatRGBA5650:
		return "RGBA5650"
	case FormatRGBA5551:
		return "RGBA5551"
	case FormatRGBA4444:
		return "RGBA4444"
	case FormatRGBA8888:
		return "RGBA8888"
	case FormatIndex4:
		return "INDEX4"
	case FormatIndex8:
		return "INDEX8"
	case FormatIndex16:
		return "INDEX16"
	case FormatIndex32:
		return "INDEX32"
	case FormatDXT1:
		return "DXT1"
	case FormatDXT3:
		return "DXT3"
	case FormatDXT5:
		return "DXT5"
	default:
		return fmt.Sprintf("Format(%d)", uint16(f))
	}
}

// indexed reports whether the format stores palette indices.
func (f Format) indexed() bool {
	return f == FormatIndex4 || f == FormatIndex8
}

// bits returns the storage bits per pixel, or 0 for unsupported tags.
func (f Format) bits() int {
	switch f {
	case FormatRGBA8888:
		return 32
	case FormatRGBA5650, FormatRGBA5551, FormatRGBA4444:
		return 16
	case FormatIndex8:
		return 8
	case FormatIndex4:
		return 4
	default:
		return 0
	}
}

// Order is a GIM pixel storage order.
type Order uint16

const (
	// OrderLinear stores pixels row-major, left to right.
	OrderLinear Order = 0

	// OrderPSP stores pixels in the PSP's block-swizzled arrangement,
	// optimized for hardware texture fetch.
	OrderPSP Order = 1
)

// String returns the order's name.
func (o Order) String() string {
	switch o {
	case OrderLinear:
		return "linear"
	case OrderPSP:
		return "psp"
	default:
		return fmt.Sprintf("Order(%d)", uint16(o))
	}
}

const imageHeaderSize = 48

// imageHeader is the fixed 48-byte header shared by image and palette
// chunks. The offsets, images, and total fields are relative to the
// header's own start.
type imageHeader struct {
	headerSize  uint16
	reference   uint16
	format      Format
	order       Order
	width       uint16
	height      uint16
	bpp         uint16
	pitchAlign  uint16
	heightAlign uint16
	dimCount    uint16
	offsets     uint32
	images      uint32
	total       uint32
	planeMask   uint32
	levelType   uint16
	levelCount  uint16
	frameType   uint16
	frameCount  uint16
}

// readImageHeader decodes the image header at off.
func readImageHeader(b []byte, off int) (imageHeader, error) {
	if off < 0 || off+imageHeaderSize > len(b) {
		return imageHeader{}, fmt.Errorf("%w: image header at 0x%x past end", ErrMalformed, off)
	}
	h := imageHeader{
		headerSize:  binary.LittleEndian.Uint16(b[off:]),
		reference:   binary.LittleEndian.Uint16(b[off+2:]),
		format:      Format(binary.LittleEndian.Uint16(b[off+4:])),
		order:       Order(binary.LittleEndian.Uint16(b[off+6:])),
		width:       binary.LittleEndian.Uint16(b[off+8:]),
		height:      binary.LittleEndian.Uint16(b[off+10:]),
		bpp:         binary.LittleEndian.Uint16(b[off+12:]),
		pitchAlign:  binary.LittleEndian.Uint16(b[off+14:]),
		heightAlign: binary.LittleEndian.Uint16(b[off+16:]),
		dimCount:    binary.LittleEndian.Uint16(b[off+18:]),
		offsets:     binary.LittleEndian.Uint32(b[off+24:]),
		images:      binary.LittleEndian.Uint32(b[off+28:]),
		total:       binary.LittleEndian.Uint32(b[off+32:]),
		planeMask:   binary.LittleEndian.Uint32(b[off+36:]),
		levelType:   binary.LittleEndian.Uint16(b[off+40:]),
		levelCount:  binary.LittleEndian.Uint16(b[off+42:]),
		frameType:   binary.LittleEndian.Uint16(b[off+44:]),
		frameCount:  binary.LittleEndian.Uint16(b[off+46:]),
	}
	return h, nil
}

// pixelData returns the header's pixel (or palette color) payload,
// bounds-checked against the buffer.
func (h imageHeader) pixelData(b []byte, headerOff int) ([]byte, error) {
	start := headerOff + int(h.images)
	end := headerOff + int(h.total)
	if start < headerOff+imageHeaderSize || end < start || end > len(b) {
		return nil, fmt.Errorf("%w: pixel data [0x%x:0x%x] out of range", ErrMalformed, start, end)
	}
	return b[start:end], nil
}

// Image is a decoded texture: a row-major RGBA raster at the header's
// declared dimensions, with any alignment padding cropped away.
type Image struct {
	Width  int
	Height int

	// Pix holds RGBA values, 4 bytes per pixel; its length is always
	// exactly Width*Height*4.
	Pix []byte

	// PaletteUsed reports whether the source was palette-indexed.
	PaletteUsed bool
}

// NRGBA adapts the raster to the standard library image type for
// serialization to PNG or further processing. The pixel buffer is shared,
// not copied.
func (m *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    m.Pix,
		Stride: m.Width * 4,
		Rect:   image.Rect(0, 0, m.Width, m.Height),
	}
}
