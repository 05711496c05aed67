package archive

import "bytes"

// Kind is the best-guess payload type inferred from content signatures.
type Kind uint8

const (
	// KindUnknown marks payloads with no distinguishing header, such as
	// raw audio or text. It is an expected, valid outcome.
	KindUnknown Kind = iota

	// KindArchive marks payloads that are themselves archives.
	KindArchive

	// KindTexture marks GIM texture images ("MIG.").
	KindTexture

	// KindMIDI marks standard MIDI audio ("MThd").
	KindMIDI

	// KindPSPAudio marks PSP PHD audio banks ("PPHD").
	KindPSPAudio

	// KindMovie marks PSP movie streams ("PSMF").
	KindMovie

	// KindVAGAudio marks PlayStation VAG audio ("VAGp").
	KindVAGAudio

	// KindRIFF marks RIFF containers, ATRAC3 audio on this producer's
	// discs.
	KindRIFF

	// KindGzip, KindZlib, and KindZstd mark compressed payloads that can
	// be expanded and re-classified.
	KindGzip
	KindZlib
	KindZstd
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindArchive:
		return "archive"
	case KindTexture:
		return "texture"
	case KindMIDI:
		return "midi"
	case KindPSPAudio:
		return "psp-audio"
	case KindMovie:
		return "movie"
	case KindVAGAudio:
		return "vag-audio"
	case KindRIFF:
		return "riff"
	case KindGzip:
		return "gzip"
	case KindZlib:
		return "zlib"
	case KindZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Ext returns the file extension the external driver should assign to
// payloads of this kind.
func (k Kind) Ext() string {
	switch k {
	case KindTexture:
		return "gim"
	case KindMIDI:
		return "mid"
	case KindPSPAudio:
		return "phd"
	case KindMovie:
		return "psmf"
	case KindVAGAudio:
		return "vag"
	case KindRIFF:
		return "at3"
	case KindGzip:
		return "gz"
	case KindZlib:
		return "zz"
	case KindZstd:
		return "zst"
	default:
		return "bin"
	}
}

// compressed reports whether payloads of this kind can be expanded.
func (k Kind) compressed() bool {
	return k == KindGzip || k == KindZlib || k == KindZstd
}

// rule matches a byte pattern at a fixed offset, optionally backed by a
// structural check on the whole payload.
type rule struct {
	offset int
	magic  []byte
	check  func([]byte) bool
	kind   Kind
}

// rules is the ordered signature table. Most specific first: the texture
// rule verifies the GIM version and style words beyond its magic, and the
// multi-byte magics precede the loose two-byte zlib prefixes. The archive
// probe runs last because it matches on structure alone.
var rules = []rule{
	{offset: 0, magic: []byte("MIG.00.1PSP\x00"), kind: KindTexture},
	{offset: 0, magic: []byte("MIG."), kind: KindTexture},
	{offset: 0, magic: []byte("MThd"), kind: KindMIDI},
	{offset: 0, magic: []byte("PPHD"), kind: KindPSPAudio},
	{offset: 0, magic: []byte("PSMF"), kind: KindMovie},
	{offset: 0, magic: []byte("VAGp"), kind: KindVAGAudio},
	{offset: 0, magic: []byte("RIFF"), kind: KindRIFF},
	{offset: 0, magic: []byte{0x28, 0xB5, 0x2F, 0xFD}, kind: KindZstd},
	{offset: 0, magic: []byte{0x1F, 0x8B}, kind: KindGzip},
	{offset: 0, magic: []byte{0x78, 0x01}, kind: KindZlib},
	{offset: 0, magic: []byte{0x78, 0x5E}, kind: KindZlib},
	{offset: 0, magic: []byte{0x78, 0x9C}, kind: KindZlib},
	{offset: 0, magic: []byte{0x78, 0xDA}, kind: KindZlib},
	{offset: 0, check: looksLikeTable, kind: KindArchive},
}

// Classify returns the best-guess payload type for b.
//
// Classification is a total, deterministic function: the first rule whose
// pattern matches at its expected offset wins, and every input classifies
// to something, with KindUnknown as the fallback. Nested archives are
// recognized by the same structural test ParseTable expects, so "looks
// like an archive" and "parses like an archive" cannot drift apart.
func Classify(b []byte) Kind {
	for _, r := range rules {
		if len(r.magic) > 0 {
			end := r.offset + len(r.magic)
			if end > len(b) || !bytes.Equal(b[r.offset:end], r.magic) {
				continue
			}
		}
		if r.check != nil && !r.check(b) {
			continue
		}
		return r.kind
	}
	return KindUnknown
}
