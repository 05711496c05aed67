package gim

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammiq/psp-dstools/internal/testutil"
)

func TestDecode_RGBA8888Linear(t *testing.T) {
	t.Parallel()

	// 4x2 raster, each pixel's bytes carrying its own index.
	pixels := make([]byte, 4*2*4)
	for i := range pixels {
		pixels[i] = byte(i)
	}
	blob := testutil.BuildGIM(testutil.GIMSpec{
		Format:      uint16(FormatRGBA8888),
		Order:       uint16(OrderLinear),
		Width:       4,
		Height:      2,
		PitchAlign:  4,
		HeightAlign: 2,
		Pixels:      pixels,
	})

	img, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Len(t, img.Pix, 4*2*4)
	assert.Equal(t, pixels, img.Pix)
	assert.False(t, img.PaletteUsed)
}

func TestDecode_CropsAlignmentPadding(t *testing.T) {
	t.Parallel()

	// Declared 5x3, stored 8x4 because of pitch and height alignment.
	const storeW, storeH = 8, 4
	pixels := make([]byte, storeW*storeH*4)
	for y := range storeH {
		for x := range storeW {
			base := (y*storeW + x) * 4
			pixels[base] = byte(x)
			pixels[base+1] = byte(y)
			pixels[base+3] = 0xFF
		}
	}
	blob := testutil.BuildGIM(testutil.GIMSpec{
		Format:      uint16(FormatRGBA8888),
		Order:       uint16(OrderLinear),
		Width:       5,
		Height:      3,
		PitchAlign:  8,
		HeightAlign: 4,
		Pixels:      pixels,
	})

	img, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, 5, img.Width)
	assert.Equal(t, 3, img.Height)
	require.Len(t, img.Pix, 5*3*4)
	for y := range 3 {
		for x := range 5 {
			base := (y*5 + x) * 4
			assert.Equal(t, byte(x), img.Pix[base], "x at (%d,%d)", x, y)
			assert.Equal(t, byte(y), img.Pix[base+1], "y at (%d,%d)", x, y)
		}
	}
}

func TestDecode_DirectColor16(t *testing.T) {
	t.Parallel()

	le16 := func(vs ...uint16) []byte {
		out := make([]byte, 2*len(vs))
		for i, v := range vs {
			binary.LittleEndian.PutUint16(out[i*2:], v)
		}
		return out
	}

	tests := []struct {
		name   string
		format Format
		pixels []byte
		want   []byte // RGBA for two pixels
	}{
		{
			name:   "rgba5551",
			format: FormatRGBA5551,
			pixels: le16(0x801F, 0x03E0),
			want:   []byte{0xF8, 0, 0, 0xFF, 0, 0xF8, 0, 0},
		},
		{
			name:   "rgba5650",
			format: FormatRGBA5650,
			pixels: le16(0xF800, 0x07E0),
			want:   []byte{0, 0, 0xF8, 0xFF, 0, 0xFC, 0, 0xFF},
		},
		{
			name:   "rgba4444",
			format: FormatRGBA4444,
			pixels: le16(0xF00F, 0x00F0),
			want:   []byte{0xFF, 0, 0, 0xFF, 0, 0xFF, 0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			blob := testutil.BuildGIM(testutil.GIMSpec{
				Format:      uint16(tt.format),
				Order:       uint16(OrderLinear),
				Width:       2,
				Height:      1,
				PitchAlign:  2,
				HeightAlign: 1,
				Pixels:      tt.pixels,
			})
			img, err := Decode(blob)
			require.NoError(t, err)
			assert.Equal(t, tt.want, img.Pix)
		})
	}
}

func TestDecode_Index8WithPalette(t *testing.T) {
	t.Parallel()

	palette := make([]byte, 16*4)
	for i := range 16 {
		palette[i*4] = byte(i)
		palette[i*4+1] = byte(i * 2)
		palette[i*4+2] = byte(i * 3)
		palette[i*4+3] = 0xFF
	}
	pixels := make([]byte, 16*8)
	for i := range pixels {
		pixels[i] = byte(i % 16)
	}
	blob := testutil.BuildGIM(testutil.GIMSpec{
		Format:        uint16(FormatIndex8),
		Order:         uint16(OrderLinear),
		Width:         16,
		Height:        8,
		PitchAlign:    16,
		HeightAlign:   8,
		Pixels:        pixels,
		PaletteFormat: uint16(FormatRGBA8888),
		Palette:       palette,
	})

	img, err := Decode(blob)
	require.NoError(t, err)
	assert.True(t, img.PaletteUsed)
	require.Len(t, img.Pix, 16*8*4)
	for i, idx := range pixels {
		assert.Equal(t, palette[int(idx)*4:int(idx)*4+4], img.Pix[i*4:i*4+4], "pixel %d", i)
	}
}

func TestDecode_Index4WithPalette(t *testing.T) {
	t.Parallel()

	// Two packed bytes, low nibble first: indices 0,1,2,3.
	pixels := []byte{0x10, 0x32}
	palette := make([]byte, 4*2)
	// RGBA5551 palette: red, green, blue, opaque black.
	binary.LittleEndian.PutUint16(palette[0:], 0x801F)
	binary.LittleEndian.PutUint16(palette[2:], 0x83E0)
	binary.LittleEndian.PutUint16(palette[4:], 0xFC00)
	binary.LittleEndian.PutUint16(palette[6:], 0x8000)
	blob := testutil.BuildGIM(testutil.GIMSpec{
		Format:        uint16(FormatIndex4),
		Order:         uint16(OrderLinear),
		Width:         4,
		Height:        1,
		PitchAlign:    4,
		HeightAlign:   1,
		Pixels:        pixels,
		PaletteFormat: uint16(FormatRGBA5551),
		Palette:       palette,
	})

	img, err := Decode(blob)
	require.NoError(t, err)
	assert.True(t, img.PaletteUsed)
	want := []byte{
		0xF8, 0, 0, 0xFF,
		0, 0xF8, 0, 0xFF,
		0, 0, 0xF8, 0xFF,
		0, 0, 0, 0xFF,
	}
	assert.Equal(t, want, img.Pix)
}

// swizzleBytes is the inverse of the decoder's unswizzle, used to build
// block-ordered fixtures from a linear raster.
func swizzleBytes(linear []byte, rowBytes, rows int) []byte {
	out := make([]byte, len(linear))
	blocksPerRow := rowBytes / blockWidthBytes
	for y := range rows {
		for bx := range rowBytes {
			block := (y/blockHeight)*blocksPerRow + bx/blockWidthBytes
			dst := block*blockSizeBytes + (y%blockHeight)*blockWidthBytes + bx%blockWidthBytes
			out[dst] = linear[y*rowBytes+bx]
		}
	}
	return out
}

func TestDecode_PSPOrderUnswizzles(t *testing.T) {
	t.Parallel()

	// 8x8 RGBA8888: two 4-pixel-wide blocks per block row.
	const w, h = 8, 8
	linear := make([]byte, w*h*4)
	for px := range w * h {
		linear[px*4] = byte(px)
		linear[px*4+1] = byte(px >> 1)
		linear[px*4+3] = 0xFF
	}
	blob := testutil.BuildGIM(testutil.GIMSpec{
		Format:      uint16(FormatRGBA8888),
		Order:       uint16(OrderPSP),
		Width:       w,
		Height:      h,
		PitchAlign:  8,
		HeightAlign: 8,
		Pixels:      swizzleBytes(linear, w*4, h),
	})

	img, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, linear, img.Pix)
}

func TestUnswizzle_RoundTrip(t *testing.T) {
	t.Parallel()

	const rowBytes, rows = 48, 16
	linear := make([]byte, rowBytes*rows)
	for i := range linear {
		linear[i] = byte(i * 7)
	}
	got, err := unswizzle(swizzleBytes(linear, rowBytes, rows), rowBytes, rows)
	require.NoError(t, err)
	assert.Equal(t, linear, got)

	_, err = unswizzle(linear, 24, rows) // not a multiple of the block width
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_Failures(t *testing.T) {
	t.Parallel()

	valid := testutil.GIMSpec{
		Format:        uint16(FormatIndex8),
		Order:         uint16(OrderLinear),
		Width:         16,
		Height:        8,
		PitchAlign:    16,
		HeightAlign:   8,
		Pixels:        make([]byte, 16*8),
		PaletteFormat: uint16(FormatRGBA8888),
		Palette:       make([]byte, 16*4),
	}
	_, err := Decode(testutil.BuildGIM(valid))
	require.NoError(t, err)

	t.Run("unsupportedFormatTag", func(t *testing.T) {
		t.Parallel()
		// Mutating only the pixel-format tag must fail cleanly.
		for _, tag := range []Format{FormatDXT1, FormatDXT3, FormatDXT5, FormatIndex16, FormatIndex32} {
			spec := valid
			spec.Format = uint16(tag)
			_, err := Decode(testutil.BuildGIM(spec))
			assert.ErrorIs(t, err, ErrUnsupported, "format %s", tag)
		}
	})

	t.Run("truncatedPixels", func(t *testing.T) {
		t.Parallel()
		spec := valid
		spec.Pixels = spec.Pixels[:40]
		_, err := Decode(testutil.BuildGIM(spec))
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("multiLevel", func(t *testing.T) {
		t.Parallel()
		spec := valid
		spec.LevelCount = 2
		_, err := Decode(testutil.BuildGIM(spec))
		assert.ErrorIs(t, err, ErrUnsupported)
	})

	t.Run("indexedWithoutPalette", func(t *testing.T) {
		t.Parallel()
		spec := valid
		spec.Palette = nil
		_, err := Decode(testutil.BuildGIM(spec))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("paletteIndexOutOfRange", func(t *testing.T) {
		t.Parallel()
		spec := valid
		pixels := make([]byte, len(spec.Pixels))
		copy(pixels, spec.Pixels)
		pixels[3] = 200 // beyond the 16-color palette
		spec.Pixels = pixels
		_, err := Decode(testutil.BuildGIM(spec))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("notGIM", func(t *testing.T) {
		t.Parallel()
		_, err := Decode([]byte("MThd and then some"))
		assert.ErrorIs(t, err, ErrNotGIM)
		_, err = Decode(nil)
		assert.ErrorIs(t, err, ErrNotGIM)
	})
}

func TestImage_NRGBA(t *testing.T) {
	t.Parallel()

	pixels := make([]byte, 4*2*4)
	blob := testutil.BuildGIM(testutil.GIMSpec{
		Format:      uint16(FormatRGBA8888),
		Order:       uint16(OrderLinear),
		Width:       4,
		Height:      2,
		PitchAlign:  4,
		HeightAlign: 2,
		Pixels:      pixels,
	})
	img, err := Decode(blob)
	require.NoError(t, err)

	std := img.NRGBA()
	assert.Equal(t, 4, std.Rect.Dx())
	assert.Equal(t, 2, std.Rect.Dy())
	assert.Equal(t, 16, std.Stride)
	assert.Len(t, std.Pix, len(img.Pix))
}
