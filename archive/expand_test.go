package archive

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammiq/psp-dstools/internal/testutil"
)

func gzipBytes(t *testing.T, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(b)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zlibBytes(t *testing.T, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, err := w.Write(b)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, b []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(b, nil)
}

func TestExpandPayload_RoundTrips(t *testing.T) {
	t.Parallel()

	plain := gimPayload(64)

	tests := []struct {
		name string
		b    []byte
		kind Kind
	}{
		{"gzip", gzipBytes(t, plain), KindGzip},
		{"zlib", zlibBytes(t, plain), KindZlib},
		{"zstd", zstdBytes(t, plain), KindZstd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.kind, Classify(tt.b), "compressed payload must classify to its codec")
			out, err := expandPayload(tt.b, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, plain, out)
		})
	}
}

func TestExpandPayload_RejectsUncompressedKind(t *testing.T) {
	t.Parallel()

	_, err := expandPayload([]byte("MThd"), KindMIDI)
	assert.Error(t, err)
}

func TestDecompose_ExpandReclassifies(t *testing.T) {
	t.Parallel()

	texture := gimPayload(48)
	blob := testutil.BuildArchive([][]byte{gzipBytes(t, texture)}, true)

	// Without expansion the payload stays a gzip blob.
	raw := collect(NewDecomposer(), blob)
	require.Len(t, raw, 1)
	assert.Equal(t, KindGzip, raw[0].Kind)

	// With expansion it inflates and re-classifies as a texture.
	expanded := collect(NewDecomposer(WithExpand(true)), blob)
	require.Len(t, expanded, 1)
	assert.Equal(t, KindTexture, expanded[0].Kind)
	assert.Equal(t, texture, expanded[0].Payload)
}

func TestDecompose_ExpandFailureDegrades(t *testing.T) {
	t.Parallel()

	// A gzip magic with a garbage body cannot inflate; the entry keeps
	// its compressed classification and raw payload instead of failing.
	bogus := append([]byte{0x1F, 0x8B}, bytes.Repeat([]byte{0xFF}, 30)...)
	blob := testutil.BuildArchive([][]byte{bogus}, true)

	results := collect(NewDecomposer(WithExpand(true)), blob)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, KindGzip, results[0].Kind)
	assert.Equal(t, bogus, results[0].Payload)
}

func TestDecompose_ExpandedNestedArchiveRecurses(t *testing.T) {
	t.Parallel()

	inner := testutil.BuildArchive([][]byte{gimPayload(32)}, true)
	blob := testutil.BuildArchive([][]byte{zstdBytes(t, inner)}, true)

	results := collect(NewDecomposer(WithExpand(true)), blob)
	require.Len(t, results, 1)
	assert.Equal(t, []int{0, 0}, results[0].Path)
	assert.Equal(t, KindTexture, results[0].Kind)
}
