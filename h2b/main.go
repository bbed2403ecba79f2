// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// H2b converts Intel HEX firmware images into per-segment binaries and
// C headers, and back.
package main

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/PitterL/Hex2Bin/h2b/internal/cmd/bin"
	"github.com/PitterL/Hex2Bin/h2b/internal/cmd/crc"
	"github.com/PitterL/Hex2Bin/h2b/internal/cmd/hex"
)

type tool struct {
	descr string
	main  func(cmd string, args []string)
}

var tools = map[string]tool{
	"bin":    {bin.DescrBin, bin.Main},
	"crc":    {crc.Descr, crc.Main},
	"hex":    {hex.DescrHex, hex.Main},
	"join":   {hex.DescrJoin, hex.Main},
	"verify": {bin.DescrVerify, bin.Main},
}

func printToolList() {
	names := slices.Sorted(maps.Keys(tools))
	maxLen := 0
	for _, k := range names {
		if maxLen < len(k) {
			maxLen = len(k)
		}
	}
	uw := os.Stderr
	uw.WriteString("Usage:\n  h2b COMMAND [ARGUMENTS]\n\n")
	uw.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(uw, "  %*s  %s\n", maxLen, name, tools[name].descr)
	}
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" {
		printToolList()
		return
	}
	cmd := os.Args[1]
	tool, ok := tools[cmd]
	if !ok {
		printToolList()
		os.Exit(1)
	}
	tool.main(cmd, os.Args[2:])
}
