package archive

import (
	"errors"
	"fmt"
)

// Sentinel errors for the archive package.
var (
	// ErrDepthExceeded is returned on results whose branch nested deeper
	// than the decomposer's configured ceiling.
	ErrDepthExceeded = errors.New("archive: nesting depth exceeded")
)

// StructuralError describes a table field that is inconsistent with the
// blob it was read from, such as an entry range past the end of the blob.
//
// Structural errors are recorded per entry and never abort the surrounding
// parse; the remaining entries stay usable.
type StructuralError struct {
	Index  int    // position of the entry in its table
	Offset uint64 // derived byte offset of the entry
	Length uint32 // declared byte length of the entry
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("archive: entry %d at 0x%x+0x%x: %s", e.Index, e.Offset, e.Length, e.Reason)
}

// IsStructural reports whether err is a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
