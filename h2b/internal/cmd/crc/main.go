// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package crc

import (
	"flag"
	"fmt"
	"os"

	"github.com/PitterL/Hex2Bin/h2b/internal/crc24"
	"github.com/PitterL/Hex2Bin/h2b/internal/util"
)

const Descr = "print the CRC-24 of binary files"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS] FILE...\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	trailer := fs.Bool(
		"trailer", false,
		"exclude the last 3 bytes and compare them with the computed CRC",
	)
	fs.Parse(args)
	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}
	bad := false
	for _, name := range fs.Args() {
		data, err := os.ReadFile(name)
		util.FatalErr("", err)
		if !*trailer {
			fmt.Printf("%06X %8d %s\n", crc24.Checksum(data), len(data), name)
			continue
		}
		if len(data) < crc24.Size {
			util.Fatal("%s: too short for a CRC trailer", name)
		}
		n := len(data) - crc24.Size
		crc := crc24.Checksum(data[:n])
		got := uint32(data[n])<<16 | uint32(data[n+1])<<8 | uint32(data[n+2])
		status := "ok"
		if got != crc {
			status = fmt.Sprintf("mismatch (trailer %06X)", got)
			bad = true
		}
		fmt.Printf("%06X %8d %s %s\n", crc, n, name, status)
	}
	if bad {
		os.Exit(1)
	}
}
