// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package emit implements the outputs of the segment engine: one binary file
// per segment and one C header with an array per segment.
package emit

import (
	"bufio"
	"os"

	"github.com/pkg/errors"

	"github.com/PitterL/Hex2Bin/h2b/internal/segment"
)

// Files writes every segment to <base>_<name>.bin and appends its array to
// <base>.h.
type Files struct {
	base  string
	align int

	bin  *os.File
	binw *bufio.Writer
	hdr  *os.File
	hdrw *bufio.Writer
	text *Text
	bins []string
}

func NewFiles(base string, align int) *Files {
	return &Files{base: base, align: align}
}

// BinName returns the name of the binary file of s.
func (f *Files) BinName(s *segment.Segment) string {
	return f.base + "_" + s.Name() + ".bin"
}

// HeaderName returns the name of the text output.
func (f *Files) HeaderName() string {
	return f.base + ".h"
}

// Bins returns the names of the created binary files in creation order.
func (f *Files) Bins() []string {
	return f.bins
}

func (f *Files) Open(s *segment.Segment) error {
	if err := f.closeBin(); err != nil {
		return err
	}
	if f.hdr == nil {
		name := f.HeaderName()
		hdr, err := os.Create(name)
		if err != nil {
			return errors.Wrap(err, "create header")
		}
		f.hdr = hdr
		f.hdrw = bufio.NewWriter(hdr)
		f.text = NewText(f.hdrw, f.align)
	}
	name := f.BinName(s)
	bin, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create segment binary")
	}
	f.bin = bin
	f.binw = bufio.NewWriter(bin)
	f.bins = append(f.bins, name)
	return errors.Wrapf(f.text.Begin(s.Name()), "write %s", f.hdr.Name())
}

func (f *Files) Write(p []byte) error {
	if _, err := f.binw.Write(p); err != nil {
		return errors.Wrapf(err, "write %s", f.bin.Name())
	}
	_, err := f.text.Write(p)
	return errors.Wrapf(err, "write %s", f.hdr.Name())
}

func (f *Files) Close(s *segment.Segment) error {
	if err := f.text.End(s.Size, s.CRC); err != nil {
		return errors.Wrapf(err, "write %s", f.hdr.Name())
	}
	return f.closeBin()
}

// Release closes both files. It may be called more than once.
func (f *Files) Release() error {
	err := f.closeBin()
	if f.hdr != nil {
		if e := f.hdrw.Flush(); e != nil && err == nil {
			err = errors.Wrapf(e, "write %s", f.hdr.Name())
		}
		if e := f.hdr.Close(); e != nil && err == nil {
			err = e
		}
		f.hdr, f.hdrw, f.text = nil, nil, nil
	}
	return err
}

func (f *Files) closeBin() error {
	if f.bin == nil {
		return nil
	}
	err := f.binw.Flush()
	if err != nil {
		err = errors.Wrapf(err, "write %s", f.bin.Name())
	}
	if e := f.bin.Close(); e != nil && err == nil {
		err = e
	}
	f.bin, f.binw = nil, nil
	return err
}

var _ segment.Emitter = (*Files)(nil)
