package archive

import (
	"iter"
	"log/slog"
	"slices"
)

// DefaultMaxDepth bounds archive nesting when no WithMaxDepth option is set.
//
// The format itself has no depth limit, but a malformed table could
// otherwise recurse unreasonably deep; exceeding the ceiling is a
// structural error for that branch only.
const DefaultMaxDepth = 16

// Result is one decomposed payload, yielded in extraction order.
type Result struct {
	// Path identifies the payload's position in the nesting tree: the
	// table indices from the top-level archive down to this entry. The
	// external driver derives file names from it.
	Path []int

	// Entry is the table entry the payload was sliced from.
	Entry Entry

	// Kind is the payload's classification.
	Kind Kind

	// Payload aliases the entry's byte range within the parent blob, or
	// its expanded form when compressed-payload expansion is enabled. Nil
	// when Err is set.
	Payload []byte

	// Verified is false when this result, or any archive level above it,
	// lacked the trailing validity marker.
	Verified bool

	// Err carries the per-entry failure, if any: a StructuralError for
	// table fields out of range, or ErrDepthExceeded for an over-deep
	// branch. Errors are data here; siblings are unaffected.
	Err error
}

// Option configures a Decomposer.
type Option func(*Decomposer)

// WithMaxDepth sets the recursion ceiling for nested archives.
// Values < 1 are treated as 1.
func WithMaxDepth(n int) Option {
	return func(d *Decomposer) {
		if n < 1 {
			n = 1
		}
		d.maxDepth = n
	}
}

// WithLogger sets the logger used for warning-level diagnostics such as
// overlapping entry ranges. Nil discards diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decomposer) {
		d.logger = logger
	}
}

// WithExpand enables expansion of compressed payloads: entries classified
// as gzip, zlib, or zstd are inflated and re-classified before being
// yielded. Expansion failure degrades to the compressed payload rather
// than failing the entry.
func WithExpand(enabled bool) Option {
	return func(d *Decomposer) {
		d.expand = enabled
	}
}

// Decomposer orchestrates table parsing, classification, and recursion
// into nested archives.
type Decomposer struct {
	maxDepth int
	expand   bool
	logger   *slog.Logger
}

// NewDecomposer creates a Decomposer with the given options.
func NewDecomposer(opts ...Option) *Decomposer {
	d := &Decomposer{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// log returns the logger, falling back to a discard logger if nil.
func (d *Decomposer) log() *slog.Logger {
	if d.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.logger
}

// Decompose walks blob depth-first in table order and returns a lazy
// sequence of classified payloads.
//
// The sequence is restartable: each range-over re-parses from the top.
// An invalid table does not stop decomposition; its entries are yielded
// with Verified set to false, mirroring real-world archives that lack the
// trailing marker yet are otherwise well-formed. No entry's failure aborts
// its siblings.
func (d *Decomposer) Decompose(blob []byte) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		d.walk(blob, nil, 0, true, yield)
	}
}

// walk decomposes one archive level. It returns false when the consumer
// stopped the iteration.
func (d *Decomposer) walk(blob []byte, path []int, depth int, verified bool, yield func(Result) bool) bool {
	t := ParseTable(blob)
	verified = verified && t.Valid

	var prevEnd uint64
	for _, e := range t.Entries {
		p := append(slices.Clone(path), e.Index)
		if e.Err != nil {
			d.log().Warn("skipping malformed entry",
				"path", p, "offset", e.Offset, "length", e.Length, "err", e.Err)
			if !yield(Result{Path: p, Entry: e, Verified: verified, Err: e.Err}) {
				return false
			}
			continue
		}

		// Overlap is a data-modeling curiosity, not a safety hazard:
		// payloads are read-only slices of a shared immutable blob.
		// Both entries are still emitted.
		if e.Offset < prevEnd {
			d.log().Warn("entry ranges overlap",
				"path", p, "offset", e.Offset, "previousEnd", prevEnd)
		}
		if end := e.End(); end > prevEnd {
			prevEnd = end
		}

		payload := blob[e.Offset:e.End()]
		kind := Classify(payload)
		if d.expand && kind.compressed() {
			payload, kind = d.expandAndReclassify(p, payload, kind)
		}

		if kind == KindArchive {
			if depth+1 >= d.maxDepth {
				d.log().Warn("nesting depth exceeded", "path", p, "maxDepth", d.maxDepth)
				if !yield(Result{Path: p, Entry: e, Kind: kind, Payload: payload, Verified: verified, Err: ErrDepthExceeded}) {
					return false
				}
				continue
			}
			if !d.walk(payload, p, depth+1, verified, yield) {
				return false
			}
			continue
		}

		if !yield(Result{Path: p, Entry: e, Kind: kind, Payload: payload, Verified: verified}) {
			return false
		}
	}
	return true
}

// expandAndReclassify inflates a compressed payload and classifies the
// expanded bytes. On failure the original payload and kind are kept.
func (d *Decomposer) expandAndReclassify(path []int, payload []byte, kind Kind) ([]byte, Kind) {
	expanded, err := expandPayload(payload, kind)
	if err != nil {
		d.log().Warn("payload expansion failed", "path", path, "kind", kind, "err", err)
		return payload, kind
	}
	return expanded, Classify(expanded)
}
