package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// maxExpandedSize caps the inflated size of a single payload, guarding
// against decompression bombs in corrupt archives.
const maxExpandedSize = 64 << 20

// expandPayload inflates a payload classified as gzip, zlib, or zstd.
func expandPayload(b []byte, kind Kind) ([]byte, error) {
	switch kind {
	case KindGzip:
		r, err := gzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("archive: gzip: %w", err)
		}
		defer r.Close()
		return readCapped(r)
	case KindZlib:
		r, err := zlib.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("archive: zlib: %w", err)
		}
		defer r.Close()
		return readCapped(r)
	case KindZstd:
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(maxExpandedSize),
		)
		if err != nil {
			return nil, fmt.Errorf("archive: zstd: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(b, nil)
		if err != nil {
			return nil, fmt.Errorf("archive: zstd: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("archive: kind %s is not compressed", kind)
	}
}

// readCapped reads r fully, erroring out beyond maxExpandedSize.
func readCapped(r io.Reader) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, maxExpandedSize+1))
	if err != nil {
		return nil, fmt.Errorf("archive: expand: %w", err)
	}
	if len(out) > maxExpandedSize {
		return nil, fmt.Errorf("archive: expanded payload exceeds %d bytes", maxExpandedSize)
	}
	return out, nil
}
