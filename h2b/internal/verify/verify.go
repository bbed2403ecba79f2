// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package verify checks converted segments against an independent Intel HEX
// reader (github.com/marcinbor85/gohex).
package verify

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/marcinbor85/gohex"
	"github.com/pkg/errors"

	"github.com/PitterL/Hex2Bin/h2b/internal/convert"
	"github.com/PitterL/Hex2Bin/h2b/internal/ihex"
	"github.com/PitterL/Hex2Bin/h2b/internal/segment"
)

// ErrSegmentAddr is returned for images with extended segment address
// records, which the reference reader ignores.
var ErrSegmentAddr = errors.New("extended segment address records are not supported")

// MismatchError reports the first byte of a segment that differs from the
// reference image.
type MismatchError struct {
	Segment string
	Index   int // byte index in the segment
	Addr    uint32
	Got     byte
	Want    byte
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf(
		"%s: byte %d (address %#x) is 0x%02X, want 0x%02X",
		e.Segment, e.Index, e.Addr, e.Got, e.Want,
	)
}

type image []gohex.DataSegment

func load(hex []byte) (image, error) {
	sc := bufio.NewScanner(bytes.NewReader(hex))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		r, err := ihex.Decode(line)
		if err == nil && r.Type == ihex.ExtSegmentAddr {
			return nil, ErrSegmentAddr
		}
	}
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(bytes.NewReader(hex)); err != nil {
		return nil, errors.Wrap(err, "gohex")
	}
	return mem.GetDataSegments(), nil
}

// at returns the byte at addr and reports whether any record defined it.
func (img image) at(addr uint32) (byte, bool) {
	for _, s := range img {
		if addr >= s.Address && addr-s.Address < uint32(len(s.Data)) {
			return s.Data[addr-s.Address], true
		}
	}
	return 0, false
}

func (img image) size() int {
	n := 0
	for _, s := range img {
		n += len(s.Data)
	}
	return n
}

// Segments checks that bins, the binary contents of segs, reproduce the data
// records of the Intel HEX image: every byte at the address of a data record
// must be equal to that record byte, every other byte must be equal to pad,
// and all data bytes must be covered.
func Segments(hex []byte, segs []segment.Segment, bins [][]byte, pad byte) error {
	if len(segs) != len(bins) {
		return errors.Errorf("%d segments but %d binaries", len(segs), len(bins))
	}
	img, err := load(hex)
	if err != nil {
		return err
	}
	covered := 0
	for i := range segs {
		s := &segs[i]
		bin := bins[i]
		if uint32(len(bin)) != s.Size {
			return errors.Errorf("%s: %d bytes, want %d", s.Name(), len(bin), s.Size)
		}
		for k, got := range bin[:s.Data] {
			addr := s.Start + uint32(k)
			want, ok := img.at(addr)
			if ok {
				covered++
			} else {
				want = pad
			}
			if got != want {
				return &MismatchError{s.Name(), k, addr, got, want}
			}
		}
	}
	if n := img.size(); covered != n {
		return errors.Errorf("segments cover %d of %d data bytes", covered, n)
	}
	return nil
}

// Files checks the binaries of res against the Intel HEX file they were
// converted from.
func Files(res *convert.Result, pad byte) error {
	hex, err := os.ReadFile(res.Input)
	if err != nil {
		return err
	}
	bins := make([][]byte, len(res.Bins))
	for i, name := range res.Bins {
		if bins[i], err = os.ReadFile(name); err != nil {
			return err
		}
	}
	return errors.Wrap(Segments(hex, res.Segments, bins, pad), res.Input)
}

// Memory converts the Intel HEX data in memory and checks the result.
func Memory(hex []byte, cfg segment.Config) ([]segment.Segment, error) {
	segs, mem, err := convert.Memory(bytes.NewReader(hex), cfg)
	if err != nil {
		return nil, err
	}
	return segs, Segments(hex, segs, mem.Bins, cfg.Pad)
}
