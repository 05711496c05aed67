// Command gim2png converts GIM texture images to PNG.
//
// Each input decodes to a PNG alongside the input file (-inplace) or in
// the working directory. An -offset skips leading bytes, which helps when
// a texture is embedded in a larger blob.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sammiq/psp-dstools/gim"
)

var (
	offset  int64
	inplace bool
	verbose bool
)

func init() {
	flag.Int64Var(&offset, "offset", 0, "skip the first n bytes of each input file")
	flag.BoolVar(&inplace, "inplace", false, "write PNG files next to their inputs")
	flag.BoolVar(&verbose, "verbose", false, "enable debug logging")
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: gim2png [options] <gimfile>...")
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
		if err := convert(logger, name); err != nil {
			logger.Error("conversion failed", "file", name, "err", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func convert(logger *slog.Logger, name string) error {
	blob, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	if offset > 0 {
		if offset >= int64(len(blob)) {
			return fmt.Errorf("offset %d past end of %d-byte file", offset, len(blob))
		}
		blob = blob[offset:]
	}

	img, err := gim.Decode(blob)
	if err != nil {
		return err
	}
	logger.Debug("decoded texture",
		"file", name, "width", img.Width, "height", img.Height, "palette", img.PaletteUsed)

	out := outputPath(name)
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img.NRGBA()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("wrote image", "file", out)
	return nil
}

func outputPath(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if offset > 0 {
		stem = fmt.Sprintf("%s_%d", stem, offset)
	}
	dir := "."
	if inplace {
		dir = filepath.Dir(name)
	}
	return filepath.Join(dir, stem+".png")
}
