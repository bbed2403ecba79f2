// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package segment splits a stream of Intel HEX records into contiguous
// segments and feeds their bytes to an Emitter.
package segment

import (
	"fmt"

	"github.com/PitterL/Hex2Bin/h2b/internal/crc24"
	"github.com/PitterL/Hex2Bin/h2b/internal/ihex"
	"github.com/PitterL/Hex2Bin/h2b/internal/util"
)

type Config struct {
	BaseAddr   uint32 // base of the data that precede any address record
	Pad        byte   // value used to fill gaps and to pad to TargetSize
	TargetSize uint32 // pad a single-segment image to this size, 0 disables
	Align      int    // bytes per text row, 0 disables wrapping
	GapSimSeg  uint32 // gap that starts a new segment, 0 disables
	WriteCRC   bool   // append CRC-24 to a single-segment image
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{Pad: 0xff, Align: 16}
}

type Segment struct {
	Base   uint32 // base address used to name the outputs
	Offset uint16 // record offset of the first byte
	Start  uint32 // absolute load address of the first byte
	Size   uint32 // number of emitted bytes
	Data   uint32 // bytes emitted before finalization (payload and gaps)
	Gap    uint32 // pad bytes inserted to fill address gaps
	CRC    uint32
}

// Name returns the identifier of the segment outputs.
func (s *Segment) Name() string {
	return fmt.Sprintf("Sig_0x%04X_(%04Xh)", s.Base, s.Offset)
}

// Emitter receives the bytes of the segments. Open and Close are called in
// pairs, at most one segment is open at a time. Release must close every
// resource held by the Emitter, also when called in the middle of a segment.
type Emitter interface {
	Open(s *Segment) error
	Write(p []byte) error
	Close(s *Segment) error
	Release() error
}

// Engine is the segmentation state machine. It isn't safe for concurrent use.
type Engine struct {
	cfg Config
	em  Emitter

	// Warnf, if not nil, reports suspicious but accepted input.
	Warnf func(format string, args ...any)

	cur     *Segment // open segment
	pending bool     // an address record announced a new segment
	base    uint32   // base of the pending/open segment
	start   uint32   // absolute address of offset 0 in the pending/open segment
	running uint32   // offset expected in the next data record
	count   int      // segments opened so far
	done    bool
	closed  []Segment
	padBuf  []byte
}

// New returns an Engine that feeds em according to cfg.
func New(cfg Config, em Emitter) *Engine {
	if cfg.Align < 0 {
		cfg.Align = 0
	}
	return &Engine{cfg: cfg, em: em}
}

// Feed processes one decoded record.
func (e *Engine) Feed(r ihex.Record) error {
	if e.done {
		return nil
	}
	switch r.Type {
	case ihex.ExtSegmentAddr:
		a := uint32(r.Addr()) << 4
		e.announce(a, a)
	case ihex.ExtLinearAddr:
		a := uint32(r.Addr())
		e.announce(a<<8, a<<16)
	case ihex.Data:
		return e.data(&r)
	case ihex.EOF:
		return e.eof()
	}
	return nil
}

// Done reports whether the end of file record was processed.
func (e *Engine) Done() bool {
	return e.done
}

// Count returns the number of segments opened so far.
func (e *Engine) Count() int {
	return e.count
}

// Segments returns the closed segments in the order they were emitted.
func (e *Engine) Segments() []Segment {
	return e.closed
}

// Close releases the Emitter. The open segment, if any, is left unfinished.
func (e *Engine) Close() error {
	return e.em.Release()
}

func (e *Engine) announce(base, start uint32) {
	e.pending = true
	e.base = base
	e.start = start
}

func (e *Engine) data(r *ihex.Record) error {
	off := uint32(r.Offset)
	switch {
	case e.cur == nil && !e.pending:
		// Flat image without address records.
		e.announce(e.cfg.BaseAddr, 0)
		fallthrough
	case e.pending:
		if err := e.open(r.Offset); err != nil {
			return err
		}
	default:
		gap := int64(off) - int64(e.running)
		switch {
		case e.cfg.GapSimSeg != 0 && gap >= int64(e.cfg.GapSimSeg):
			if err := e.open(r.Offset); err != nil {
				return err
			}
		case gap > 0:
			if err := e.pad(int(gap)); err != nil {
				return err
			}
			e.cur.Gap += uint32(gap)
		case gap < 0 && e.Warnf != nil:
			e.Warnf(
				"%s: record at offset %#04x goes back %d bytes, appended",
				e.cur.Name(), off, -gap,
			)
		}
	}
	if len(r.Data) != 0 {
		if err := e.feed(r.Data, true); err != nil {
			return err
		}
	}
	e.cur.Data = e.cur.Size
	e.running = off + uint32(r.Len)
	return nil
}

func (e *Engine) open(off uint16) error {
	if err := e.closeCur(); err != nil {
		return err
	}
	s := &Segment{Base: e.base, Offset: off, Start: e.start + uint32(off)}
	if err := e.em.Open(s); err != nil {
		return err
	}
	e.cur = s
	e.count++
	e.pending = false
	e.running = uint32(off)
	return nil
}

func (e *Engine) closeCur() error {
	if e.cur == nil {
		return nil
	}
	s := e.cur
	e.cur = nil
	e.closed = append(e.closed, *s)
	return e.em.Close(s)
}

func (e *Engine) feed(p []byte, fold bool) error {
	if err := e.em.Write(p); err != nil {
		return err
	}
	e.cur.Size += uint32(len(p))
	if fold {
		e.cur.CRC = crc24.Update(e.cur.CRC, p)
	}
	return nil
}

// pad feeds n pad bytes in rows of cfg.Align bytes.
func (e *Engine) pad(n int) error {
	row := e.cfg.Align
	if row == 0 {
		row = n
	}
	for n > 0 {
		m := min(n, row)
		if err := e.feed(util.PadBytes(&e.padBuf, m, e.cfg.Pad), true); err != nil {
			return err
		}
		n -= m
	}
	return nil
}

func (e *Engine) eof() error {
	e.done = true
	if e.cur == nil {
		return nil
	}
	// Only a single-segment image is padded and CRC-terminated.
	if e.count == 1 {
		if err := e.finalize(); err != nil {
			return err
		}
	}
	return e.closeCur()
}

func (e *Engine) finalize() error {
	size := int64(e.cur.Size)
	target := int64(e.cfg.TargetSize)
	if e.cfg.WriteCRC {
		if target != 0 {
			target -= crc24.Size
		} else {
			target = size
		}
	}
	if n := target - size; n > 0 {
		if err := e.pad(int(n)); err != nil {
			return err
		}
	}
	if e.cfg.WriteCRC {
		return e.feed(crc24.Bytes(e.cur.CRC), false)
	}
	return nil
}
