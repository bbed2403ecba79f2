// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hex

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/marcinbor85/gohex"

	"github.com/PitterL/Hex2Bin/h2b/internal/util"
)

const (
	DescrHex  = "convert segment binaries back to the Intel HEX format"
	DescrJoin = "join segment binaries into one flat binary image"
)

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	out := "HEX"
	if cmd == "join" {
		out = "BIN"
	}
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] BIN1:ADDR1[,BIN2:ADDR2[,...]] [%s]\nOptions:\n",
			cmd, out,
		)
		fs.PrintDefaults()
	}
	var (
		lineLen uint
		pad     uint
	)
	switch cmd {
	case "hex":
		fs.UintVar(&lineLen, "line", 16, "maximum number of data `bytes` in a record")
	case "join":
		fs.UintVar(&pad, "pad", 0xff, "pad `byte` used to fill gaps between binaries")
	}
	fs.Parse(args)
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		os.Exit(1)
	}
	sections, err := util.ReadBins(fs.Arg(0))
	util.FatalErr("readbins", err)
	name := fs.Arg(1)
	if name == "" {
		first := sections[0].Name
		name = strings.TrimSuffix(first, ".bin") + "." + cmd
		if cmd == "join" {
			name = strings.TrimSuffix(first, ".bin") + "_joined.bin"
		}
	}
	switch cmd {
	case "hex":
		if lineLen == 0 || lineLen > 255 {
			util.Fatal("-line: %d not in range 1..255", lineLen)
		}
		mem := gohex.NewMemory()
		for _, s := range sections {
			err := mem.AddBinary(uint32(s.Paddr), s.Data)
			util.FatalErr(s.Name, err)
		}
		of, err := os.Create(name)
		util.FatalErr("", err)
		defer of.Close()
		err = mem.DumpIntelHex(of, byte(lineLen))
		util.FatalErr("dumpintelhex", err)
	case "join":
		if pad > 0xff {
			util.Fatal("-pad: %#x doesn't fit in a byte", pad)
		}
		of, err := os.Create(name)
		util.FatalErr("", err)
		defer of.Close()
		_, err = sections.Flatten(of, byte(pad))
		util.FatalErr("flatten", err)
		fmt.Printf("%s: %d bytes\n", name, sections.Size())
	}
}
