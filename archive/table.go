package archive

import (
	"bytes"
	"encoding/binary"
)

const (
	// entryAlign is the boundary every payload is padded to.
	entryAlign = 16

	// maxEntryCount is the producer's own sanity bound on table size.
	maxEntryCount = 10000

	// checkMarker occupies the final table slot of a well-formed archive.
	checkMarker = "PSPCHECK"
)

// Entry is one table-described byte range within an archive.
//
// Offsets are not stored in the file; they are derived by walking the
// length table and rounding each payload's end up to the 16-byte boundary.
type Entry struct {
	// Index is the entry's position in the table, used for deterministic
	// output ordering.
	Index int

	// Offset is the derived byte position of the payload within the blob.
	Offset uint64

	// Length is the declared byte count of the payload.
	Length uint32

	// Err records a structural violation on this entry, such as a range
	// past the end of the blob. Entries with a non-nil Err have no
	// extractable payload; their neighbors are unaffected.
	Err error
}

// End returns the exclusive end offset of the entry's byte range.
func (e Entry) End() uint64 {
	return e.Offset + uint64(e.Length)
}

// Table is the decoded entry table of one archive level.
//
// A Table is owned by a single ParseTable call and never shared across
// nesting levels; each nested archive re-parses its own slice.
type Table struct {
	// Entries holds the payload entries in table order. When the validity
	// marker is present, the marker slot is excluded: it is metadata, not
	// a payload.
	Entries []Entry

	// Valid reports whether the final table slot carried the "PSPCHECK"
	// marker. An invalid table is still extractable; callers decide how
	// much to trust it.
	Valid bool

	// EntryCount is the count field as declared in the header, before any
	// truncation or marker exclusion.
	EntryCount uint32
}

// ParseTable locates and decodes the entry table of blob.
//
// ParseTable never fails: a blob with no discoverable table yields an empty
// entry list with Valid set to false. An implausibly large count field is
// truncated to the entries that fit, forcing Valid to false regardless of
// the marker outcome. Individual entries whose derived range falls outside
// the blob are flagged with a StructuralError rather than dropped.
func ParseTable(blob []byte) Table {
	var t Table
	if len(blob) < 4 {
		return t
	}
	count := binary.LittleEndian.Uint32(blob)
	t.EntryCount = count
	if count == 0 {
		return t
	}

	// Lengths that are actually present in the blob.
	avail := uint32((len(blob) - 4) / 4)
	n := count
	truncated := false
	if n > maxEntryCount {
		n = maxEntryCount
		truncated = true
	}
	if n > avail {
		n = avail
		truncated = true
	}

	entries := make([]Entry, 0, n)
	offset := alignUp(4 + 4*uint64(count))
	for i := uint32(0); i < n; i++ {
		length := binary.LittleEndian.Uint32(blob[4+4*i:])
		e := Entry{Index: int(i), Offset: offset, Length: length}
		if e.End() > uint64(len(blob)) {
			e.Err = &StructuralError{
				Index:  e.Index,
				Offset: e.Offset,
				Length: e.Length,
				Reason: "range past end of blob",
			}
		}
		entries = append(entries, e)
		offset = alignUp(e.End())
	}
	t.Entries = entries

	if truncated {
		return t
	}

	// The marker slot signals validity and is excluded from the payload
	// entries when present.
	last := entries[len(entries)-1]
	if last.Err == nil && hasMarker(blob[last.Offset:last.End()]) {
		t.Valid = true
		t.Entries = entries[:len(entries)-1]
	}
	return t
}

// hasMarker reports whether the byte range designated by the final table
// slot begins with the validity marker.
func hasMarker(b []byte) bool {
	return bytes.HasPrefix(b, []byte(checkMarker))
}

// looksLikeTable reports whether b plausibly begins with an entry table.
//
// This is the same structural shape ParseTable expects, tightened so that
// classification and re-parsing cannot drift: the count must be within the
// producer's sanity bound, the length table must fit, every derived range
// must fall inside b, and the final payload must end within one alignment
// unit of the end of b.
func looksLikeTable(b []byte) bool {
	if len(b) < 4+entryAlign {
		return false
	}
	count := binary.LittleEndian.Uint32(b)
	if count == 0 || count > maxEntryCount {
		return false
	}
	tableEnd := 4 + 4*uint64(count)
	if tableEnd > uint64(len(b)) {
		return false
	}
	offset := alignUp(tableEnd)
	for i := uint32(0); i < count; i++ {
		length := binary.LittleEndian.Uint32(b[4+4*i:])
		end := offset + uint64(length)
		if end > uint64(len(b)) {
			return false
		}
		offset = alignUp(end)
	}
	// offset is now the aligned end of the last payload; anything beyond
	// one alignment unit of slack means the table does not describe b.
	return uint64(len(b)) < offset+entryAlign
}

// alignUp rounds v up to the next entry alignment boundary.
func alignUp(v uint64) uint64 {
	return (v + entryAlign - 1) &^ uint64(entryAlign-1)
}
