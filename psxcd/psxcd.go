// Package psxcd splits the block-addressed PSX CD image carried alongside
// the PSP assets on the producer's discs.
//
// The catalog is stored as two parallel files: PSXCDNAM.BIN holds 32-byte
// NUL-padded file names and PSXCDLOC.BIN holds matching location records
// of start block, block count, and byte size. File content lives in
// PSXCD.IMG at 0x800-byte block granularity.
package psxcd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// BlockSize is the CD image's addressing granularity.
const BlockSize = 0x800

const (
	nameSize = 32
	locSize  = 12
)

// ErrCatalogMismatch is returned when the name and location tables do not
// describe the same number of files.
var ErrCatalogMismatch = errors.New("psxcd: name and location tables disagree")

// File is one catalog record.
type File struct {
	// Name is the stored file name with NUL padding trimmed.
	Name string

	// StartBlock and NumBlocks locate the file's blocks in the image.
	StartBlock uint32
	NumBlocks  uint32

	// Size is the file's byte size; the final block is partially used.
	Size uint32
}

// Slice returns the file's content from the raw image.
func (f File) Slice(img []byte) ([]byte, error) {
	start := uint64(f.StartBlock) * BlockSize
	end := start + uint64(f.Size)
	if end > uint64(len(img)) {
		return nil, fmt.Errorf("psxcd: %s: range [0x%x:0x%x] past image end 0x%x",
			f.Name, start, end, len(img))
	}
	if uint64(f.Size) > uint64(f.NumBlocks)*BlockSize {
		return nil, fmt.Errorf("psxcd: %s: size %d exceeds %d blocks", f.Name, f.Size, f.NumBlocks)
	}
	return img[start:end], nil
}

// Catalog pairs the name and location tables.
type Catalog struct {
	files []File
}

// LoadCatalog decodes the catalog from the raw contents of PSXCDNAM.BIN
// and PSXCDLOC.BIN. The name table ends at its first empty record; the
// location table must cover at least that many records.
func LoadCatalog(namData, locData []byte) (*Catalog, error) {
	var files []File
	for off := 0; off+nameSize <= len(namData); off += nameSize {
		raw := namData[off : off+nameSize]
		if raw[0] == 0 {
			break
		}
		i := len(files)
		locOff := i * locSize
		if locOff+locSize > len(locData) {
			return nil, fmt.Errorf("%w: %d names but location table ends at record %d",
				ErrCatalogMismatch, i+1, i)
		}
		files = append(files, File{
			Name:       strings.TrimRight(string(raw), "\x00"),
			StartBlock: binary.LittleEndian.Uint32(locData[locOff:]),
			NumBlocks:  binary.LittleEndian.Uint32(locData[locOff+4:]),
			Size:       binary.LittleEndian.Uint32(locData[locOff+8:]),
		})
	}
	return &Catalog{files: files}, nil
}

// Len returns the number of cataloged files.
func (c *Catalog) Len() int {
	return len(c.files)
}

// Files iterates the catalog in table order.
func (c *Catalog) Files() iter.Seq[File] {
	return func(yield func(File) bool) {
		for _, f := range c.files {
			if !yield(f) {
				return
			}
		}
	}
}
