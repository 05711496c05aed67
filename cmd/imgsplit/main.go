// Command imgsplit extracts the files cataloged by PSXCDNAM.BIN and
// PSXCDLOC.BIN from a PSXCD.IMG disc image.
//
//	imgsplit -output out <dir containing the three files>
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sammiq/psp-dstools/psxcd"
)

var outputDir string

func init() {
	flag.StringVar(&outputDir, "output", ".", "directory to write extracted files to")
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: imgsplit [options] <image dir>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := split(logger, flag.Arg(0)); err != nil {
		logger.Error("split failed", "err", err)
		os.Exit(1)
	}
}

func split(logger *slog.Logger, dir string) error {
	nam, err := os.ReadFile(filepath.Join(dir, "PSXCDNAM.BIN"))
	if err != nil {
		return err
	}
	loc, err := os.ReadFile(filepath.Join(dir, "PSXCDLOC.BIN"))
	if err != nil {
		return err
	}
	img, err := os.ReadFile(filepath.Join(dir, "PSXCD.IMG"))
	if err != nil {
		return err
	}

	catalog, err := psxcd.LoadCatalog(nam, loc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	for f := range catalog.Files() {
		data, err := f.Slice(img)
		if err != nil {
			return err
		}
		out := filepath.Join(outputDir, f.Name)
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		logger.Info("extracted file",
			"name", f.Name, "startBlock", f.StartBlock, "blocks", f.NumBlocks, "bytes", len(data))
	}
	return nil
}
