// Command binextract unpacks the producer's packed .bin asset archives
// into individual files, one directory per input archive.
//
// Output files are named by their index path within the archive's nesting
// tree, with an extension derived from content classification:
//
//	binextract -output out GAME.BIN
//	out/GAME/0.gim out/GAME/1.vag out/GAME/2.0.bin ...
//
// Archives missing the trailing PSPCHECK marker are rejected unless
// -skipcheck is given, in which case they are extracted and reported as
// unverified.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sammiq/psp-dstools/archive"
)

var (
	outputDir string
	skipCheck bool
	indexOnly bool
	expand    bool
	workers   int
	verbose   bool
)

func init() {
	flag.StringVar(&outputDir, "output", ".", "directory to place extracted archives under")
	flag.BoolVar(&skipCheck, "skipcheck", false, "extract archives that lack the PSPCHECK validity marker")
	flag.BoolVar(&indexOnly, "index-only", false, "name output files by table position only, without detected extensions")
	flag.BoolVar(&expand, "expand", false, "inflate gzip/zlib/zstd payloads before classification")
	flag.IntVar(&workers, "workers", 0, "concurrent writers (0 = one per CPU)")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: binextract [options] <binfile>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	failed := false
	for _, name := range flag.Args() {
		if err := extractFile(logger, name); err != nil {
			logger.Error("extraction failed", "file", name, "err", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func extractFile(logger *slog.Logger, name string) error {
	blob, err := os.ReadFile(name)
	if err != nil {
		return err
	}

	table := archive.ParseTable(blob)
	if len(table.Entries) == 0 {
		return fmt.Errorf("no entry table found")
	}
	if !table.Valid && !skipCheck {
		return fmt.Errorf("missing %q validity marker (use -skipcheck to extract anyway)", "PSPCHECK")
	}

	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	dir := filepath.Join(outputDir, stem)

	d := archive.NewDecomposer(
		archive.WithLogger(logger),
		archive.WithExpand(expand),
	)
	opts := []archive.ExtractOption{archive.ExtractWithWorkers(workers)}
	if indexOnly {
		opts = append(opts, archive.ExtractWithNaming(archive.NameByIndex))
	}

	stats, err := d.Extract(blob, dir, opts...)
	if err != nil {
		return err
	}
	if stats.Unverified {
		logger.Warn("archive is unverified; extracted contents may be incomplete", "file", name)
	}
	logger.Info("extracted archive",
		"file", name, "dir", dir, "files", stats.Files, "bytes", stats.Bytes, "failed", stats.Failed)
	if stats.Failed > 0 {
		return fmt.Errorf("%d entries failed", stats.Failed)
	}
	return nil
}
