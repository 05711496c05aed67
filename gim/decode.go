package gim

import (
	"errors"
	"fmt"
)

// Decode errors. All decode failures wrap one of these sentinels.
var (
	// ErrNotGIM is returned when the file header is missing or carries
	// an unsupported signature, version, or style.
	ErrNotGIM = errors.New("gim: not a GIM image")

	// ErrMalformed is returned when the chunk tree or a header declares
	// ranges inconsistent with the payload.
	ErrMalformed = errors.New("gim: malformed image")

	// ErrUnsupported is returned for pixel-format tags and layouts this
	// decoder does not handle. It fails fast rather than guessing.
	ErrUnsupported = errors.New("gim: unsupported image")

	// ErrTruncated is returned when the declared dimensions require more
	// pixel data than the payload holds.
	ErrTruncated = errors.New("gim: pixel data truncated")
)

// picture is the located image chunk and optional palette chunk.
type picture struct {
	image     imageHeader
	imageData []byte
	palette   *imageHeader
	palData   []byte
}

// Decode decodes a GIM texture into a flat RGBA raster.
//
// Decoding either fully succeeds, producing a buffer of exactly
// width*height*4 bytes, or fails; no partial images are emitted.
func Decode(b []byte) (*Image, error) {
	pic, err := loadPicture(b)
	if err != nil {
		return nil, err
	}
	return decodePicture(pic)
}

// loadPicture walks the chunk tree down to the image and palette chunks.
func loadPicture(b []byte) (*picture, error) {
	if err := checkFileHeader(b); err != nil {
		return nil, err
	}

	root, err := readChunk(b, fileHeaderSize)
	if err != nil {
		return nil, err
	}
	picChunk, picOff, ok, err := findChild(b, fileHeaderSize, root, chunkPicture)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: no picture chunk", ErrMalformed)
	}

	var pic picture
	var haveImage bool
	err = eachChild(b, picOff, picChunk, func(c chunk, off int) error {
		switch c.typ {
		case chunkImage:
			headerOff := off + int(c.data)
			h, err := readImageHeader(b, headerOff)
			if err != nil {
				return err
			}
			data, err := h.pixelData(b, headerOff)
			if err != nil {
				return err
			}
			pic.image = h
			pic.imageData = data
			haveImage = true
		case chunkPalette:
			headerOff := off + int(c.data)
			h, err := readImageHeader(b, headerOff)
			if err != nil {
				return err
			}
			data, err := h.pixelData(b, headerOff)
			if err != nil {
				return err
			}
			pic.palette = &h
			pic.palData = data
		case chunkSequence, chunkFileInfo:
			// Animation sequences and authoring metadata are not part of
			// the raster; skip them.
		default:
			return fmt.Errorf("%w: picture child chunk type 0x%x", ErrUnsupported, c.typ)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !haveImage {
		return nil, fmt.Errorf("%w: no image chunk", ErrMalformed)
	}
	return &pic, nil
}

// decodePicture converts the located pixel and palette data to RGBA.
func decodePicture(pic *picture) (*Image, error) {
	h := pic.image
	bits := h.format.bits()
	if bits == 0 {
		return nil, fmt.Errorf("%w: pixel format %s", ErrUnsupported, h.format)
	}
	if h.levelCount > 1 || h.frameCount > 1 {
		return nil, fmt.Errorf("%w: %d levels, %d frames", ErrUnsupported, h.levelCount, h.frameCount)
	}
	if h.width == 0 || h.height == 0 || h.pitchAlign == 0 || h.heightAlign == 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d align %d/%d",
			ErrMalformed, h.width, h.height, h.pitchAlign, h.heightAlign)
	}

	// Pixel data is stored at the header's aligned dimensions; the
	// declared width/height crop the usable region out of it.
	width, height := int(h.width), int(h.height)
	storeW := alignDim(width, int(h.pitchAlign))
	storeH := alignDim(height, int(h.heightAlign))
	rowBytes := storeW * bits / 8

	data := pic.imageData
	if need := rowBytes * storeH; len(data) < need {
		return nil, fmt.Errorf("%w: have %d bytes, need %d for %dx%d %s",
			ErrTruncated, len(data), need, storeW, storeH, h.format)
	}

	if h.order == OrderPSP {
		var err error
		data, err = unswizzle(data, rowBytes, storeH)
		if err != nil {
			return nil, err
		}
	} else if h.order != OrderLinear {
		return nil, fmt.Errorf("%w: pixel order %s", ErrUnsupported, h.order)
	}

	var pal []byte
	if h.format.indexed() {
		var err error
		pal, err = expandPalette(pic)
		if err != nil {
			return nil, err
		}
	}

	out := make([]byte, width*height*4)
	for y := range height {
		row := data[y*rowBytes:]
		for x := range width {
			dst := (y*width + x) * 4
			switch h.format {
			case FormatIndex8:
				if err := putPaletteRGBA(out[dst:], pal, int(row[x])); err != nil {
					return nil, err
				}
			case FormatIndex4:
				idx := int(row[x/2])
				if x%2 == 0 {
					idx &= 0x0F
				} else {
					idx >>= 4
				}
				if err := putPaletteRGBA(out[dst:], pal, idx); err != nil {
					return nil, err
				}
			default:
				putDirectRGBA(out[dst:], h.format, row, x)
			}
		}
	}

	return &Image{
		Width:       width,
		Height:      height,
		Pix:         out,
		PaletteUsed: pal != nil,
	}, nil
}

// expandPalette decodes the palette chunk's colors to RGBA.
func expandPalette(pic *picture) ([]byte, error) {
	if pic.palette == nil {
		return nil, fmt.Errorf("%w: indexed image without palette", ErrMalformed)
	}
	ph := *pic.palette
	bits := ph.format.bits()
	if bits == 0 || ph.format.indexed() {
		return nil, fmt.Errorf("%w: palette format %s", ErrUnsupported, ph.format)
	}
	colors := len(pic.palData) / (bits / 8)
	if colors == 0 {
		return nil, fmt.Errorf("%w: empty palette", ErrMalformed)
	}
	pal := make([]byte, colors*4)
	for i := range colors {
		putDirectRGBA(pal[i*4:], ph.format, pic.palData, i)
	}
	return pal, nil
}

// putPaletteRGBA writes the palette color idx to dst.
func putPaletteRGBA(dst, pal []byte, idx int) error {
	off := idx * 4
	if off+4 > len(pal) {
		return fmt.Errorf("%w: palette index %d beyond %d colors", ErrMalformed, idx, len(pal)/4)
	}
	copy(dst[:4], pal[off:off+4])
	return nil
}

// alignDim rounds dim up to a multiple of align.
func alignDim(dim, align int) int {
	return (dim + align - 1) / align * align
}
