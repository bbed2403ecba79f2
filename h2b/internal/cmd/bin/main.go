// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/PitterL/Hex2Bin/h2b/internal/convert"
	"github.com/PitterL/Hex2Bin/h2b/internal/segment"
	"github.com/PitterL/Hex2Bin/h2b/internal/util"
	"github.com/PitterL/Hex2Bin/h2b/internal/verify"
)

const (
	DescrBin    = "convert an Intel HEX file to segment binaries and a C header"
	DescrVerify = "check that an Intel HEX file converts to consistent segments"
)

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] HEX [HEX...]\nOptions:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	base := fs.String(
		"a", "0",
		"segment base `address` of the data that precede any address record",
	)
	size := fs.String(
		"s", "0",
		"pad a single-segment image to `size` bytes (0 means no padding)",
	)
	pad := fs.String("p", "0xff", "pad `byte` used to fill gaps and to pad the image")
	align := fs.Int("align", 16, "bytes per row of the C array (0 means one row)")
	gap := fs.String(
		"gap", "0",
		"address gap that starts a new segment (0 means never)",
	)
	wcrc := fs.Bool(
		"crc", false,
		"append CRC-24 to a single-segment image (inside -s if given)",
	)
	var (
		outDir  string
		jobs    int
		verbose bool
		check   bool
	)
	if cmd == "bin" {
		fs.StringVar(&outDir, "o", "", "write the outputs to `dir` instead of next to the input")
		fs.IntVar(&jobs, "j", 0, "convert up to `n` files at a time (0 means all)")
		fs.BoolVar(&verbose, "v", false, "print the segments of every converted file")
		fs.BoolVar(&check, "verify", false, "verify the outputs after conversion")
	}
	fs.Parse(args)
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}
	cfg := segment.DefaultConfig()
	cfg.BaseAddr = uint32(parseUint("-a", *base, 32))
	cfg.TargetSize = uint32(parseUint("-s", *size, 32))
	cfg.Pad = byte(parseUint("-p", *pad, 8))
	cfg.GapSimSeg = uint32(parseUint("-gap", *gap, 32))
	cfg.WriteCRC = *wcrc
	if *align < 0 {
		util.Fatal("-align: negative row width: %d", *align)
	}
	cfg.Align = *align

	switch cmd {
	case "bin":
		inputs := fs.Args()
		b := &convert.Batch{
			OutDir: outDir,
			Jobs:   jobs,
			Config: cfg,
			Warnf:  util.Warn,
		}
		done := 0
		if len(inputs) > 1 && !verbose {
			b.Done = func(*convert.Result) {
				done++
				util.Progress("Converting:", done, len(inputs), 1, "files")
			}
		}
		results, err := b.Run(context.Background(), inputs)
		util.FatalErr("bin", err)
		for _, res := range results {
			if verbose {
				printSegments(res.Input, res.Segments, res.Bins)
			}
			if check {
				util.FatalErr("verify", verify.Files(res, cfg.Pad))
			}
		}
	case "verify":
		for _, in := range fs.Args() {
			hex, err := os.ReadFile(in)
			util.FatalErr("verify", err)
			segs, err := verify.Memory(hex, cfg)
			util.FatalErr("verify", err)
			printSegments(in, segs, nil)
		}
	}
}

func parseUint(name, s string, bits int) uint64 {
	u, err := util.ParseUint(s, bits)
	if err != nil {
		util.Fatal("%s: bad value %q: %s", name, s, strings.TrimPrefix(err.Error(), "strconv.ParseUint: "))
	}
	return u
}

func printSegments(in string, segs []segment.Segment, files []string) {
	fmt.Printf("%s:\n", in)
	for i, s := range segs {
		fmt.Printf(
			"%d: Base: %#x Offset: %#x Start: %#x Size: %d CRC: %#06x",
			i, s.Base, s.Offset, s.Start, s.Size, s.CRC,
		)
		if i < len(files) {
			fmt.Printf(" %s", files[i])
		}
		fmt.Println()
	}
}
