// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package convert drives the conversion of Intel HEX files.
package convert

import (
	"bufio"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/PitterL/Hex2Bin/h2b/internal/emit"
	"github.com/PitterL/Hex2Bin/h2b/internal/ihex"
	"github.com/PitterL/Hex2Bin/h2b/internal/segment"
	"github.com/PitterL/Hex2Bin/h2b/internal/util"
)

// ErrNoEOF is returned if the input ends before the end of file record.
var ErrNoEOF = errors.New("missing end of file record")

// NotFoundError is returned if the input file doesn't exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return "input file " + e.Path + " not found"
}

// Result describes the outputs of one converted file.
type Result struct {
	Input    string
	Header   string
	Bins     []string
	Segments []segment.Segment
}

// Stream reads records from r and feeds them to em until the end of file
// record. It doesn't release em. The returned error wraps an
// *ihex.ChecksumError or an *ihex.MalformedError if the input is invalid.
func Stream(r io.Reader, cfg segment.Config, em segment.Emitter, warnf func(string, ...any)) ([]segment.Segment, error) {
	eng := segment.New(cfg, em)
	eng.Warnf = warnf
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rec, err := ihex.Decode(line)
		if err != nil {
			return nil, ihex.WithLine(err, n)
		}
		if err := eng.Feed(rec); err != nil {
			return nil, errors.Wrapf(err, "line %d", n)
		}
		if eng.Done() {
			if eng.Count() == 0 && warnf != nil {
				warnf("line %d: end of file before any data record", n)
			}
			return eng.Segments(), nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read line %d", n+1)
	}
	return nil, errors.Wrapf(ErrNoEOF, "after line %d", n)
}

// File converts the Intel HEX file in. The outputs are written next to the
// input file or to outDir if it isn't empty. After an error the outputs are
// closed but their content is incomplete.
func File(in, outDir string, cfg segment.Config, warnf func(string, ...any)) (res *Result, err error) {
	f, err := os.Open(in)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{in}
		}
		return nil, err
	}
	defer f.Close()
	em := emit.NewFiles(util.OutBase(in, outDir), cfg.Align)
	defer func() {
		if e := em.Release(); e != nil && err == nil {
			res, err = nil, e
		}
	}()
	segs, err := Stream(f, cfg, em, warnf)
	if err != nil {
		return nil, errors.Wrap(err, in)
	}
	return &Result{
		Input:    in,
		Header:   em.HeaderName(),
		Bins:     em.Bins(),
		Segments: segs,
	}, nil
}

// Memory converts the Intel HEX data read from r without creating files.
func Memory(r io.Reader, cfg segment.Config) ([]segment.Segment, *emit.Memory, error) {
	em := emit.NewMemory(cfg.Align)
	defer em.Release()
	segs, err := Stream(r, cfg, em, nil)
	if err != nil {
		return nil, nil, err
	}
	return segs, em, nil
}
