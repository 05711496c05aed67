// Package archive decomposes the packed .bin asset archives found on the
// producer's PSP discs into their individual payloads.
//
// An archive is a little-endian uint32 entry count followed by that many
// uint32 payload lengths; payload data follows the length table, with every
// payload aligned to a 16-byte boundary. There is no universal magic: the
// format is recognized structurally, and a well-formed archive proves itself
// by carrying the ASCII marker "PSPCHECK" in its final table slot.
//
// The package is split along the three stages of the data flow:
//
//   - [ParseTable] locates and decodes the entry table and performs the
//     trailing-marker validity check. It never fails; malformed tables yield
//     whatever entries were structurally decodable.
//   - [Classify] infers a payload's type from content signatures, since
//     entries carry no explicit type tag.
//   - [Decomposer.Decompose] walks an archive depth-first, recursing into
//     payloads that are themselves archives, and yields a lazy sequence of
//     classified payloads.
//
// All operations are pure functions over in-memory byte slices. Payloads
// alias the input blob; callers must not modify the blob while results are
// in use.
package archive
