package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Naming selects how extracted payloads are named on disk.
type Naming uint8

const (
	// NameByKind appends an extension derived from the payload's
	// classification, e.g. "0.2.gim".
	NameByKind Naming = iota

	// NameByIndex names payloads by table position alone, e.g. "0.2".
	NameByIndex
)

// Stats summarizes one Extract run.
type Stats struct {
	// Files is the number of payloads written.
	Files int

	// Bytes is the total payload bytes written.
	Bytes uint64

	// Failed counts entries that could not be processed: structural
	// violations, over-deep branches. Failed entries are skipped, not
	// fatal.
	Failed int

	// Unverified reports whether any yielded payload sat below an archive
	// level lacking the validity marker.
	Unverified bool
}

// ExtractOption configures an Extract run.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	naming  Naming
	workers int
}

// ExtractWithNaming sets the file naming mode. The default is NameByKind.
func ExtractWithNaming(n Naming) ExtractOption {
	return func(c *extractConfig) {
		c.naming = n
	}
}

// ExtractWithWorkers sets the number of concurrent writers.
// Values < 1 use GOMAXPROCS.
func ExtractWithWorkers(n int) ExtractOption {
	return func(c *extractConfig) {
		c.workers = n
	}
}

// Extract decomposes blob and writes every payload beneath dir, naming
// files by their index path in the nesting tree.
//
// Sibling payloads are independent, so they are written by a bounded
// worker pool; the only shared resource is the immutable blob, which is
// safe for any number of concurrent readers. Per-entry failures are
// counted in Stats and logged, never fatal; a non-nil error indicates a
// driver-level failure such as an unwritable destination.
func (d *Decomposer) Extract(blob []byte, dir string, opts ...ExtractOption) (Stats, error) {
	cfg := extractConfig{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Stats{}, fmt.Errorf("archive: create output directory: %w", err)
	}

	var stats Stats
	var bytesWritten atomic.Uint64
	var filesWritten atomic.Int64

	var eg errgroup.Group
	eg.SetLimit(cfg.workers)
	for res := range d.Decompose(blob) {
		if !res.Verified {
			stats.Unverified = true
		}
		if res.Err != nil {
			stats.Failed++
			continue
		}
		eg.Go(func() error {
			name := entryName(res, cfg.naming)
			if err := os.WriteFile(filepath.Join(dir, name), res.Payload, 0o644); err != nil {
				return fmt.Errorf("archive: write %s: %w", name, err)
			}
			bytesWritten.Add(uint64(len(res.Payload)))
			filesWritten.Add(1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Stats{}, err
	}

	stats.Files = int(filesWritten.Load())
	stats.Bytes = bytesWritten.Load()
	return stats, nil
}

// entryName renders a result's index path as a file name.
func entryName(res Result, naming Naming) string {
	parts := make([]string, len(res.Path))
	for i, idx := range res.Path {
		parts[i] = strconv.Itoa(idx)
	}
	name := strings.Join(parts, ".")
	if naming == NameByKind {
		name += "." + res.Kind.Ext()
	}
	return name
}
