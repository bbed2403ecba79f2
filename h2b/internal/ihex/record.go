// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ihex decodes single Intel HEX records.
//
// Record layout (all fields are ASCII hex digits):
//
//	:LLAAAATT[DD...]CC
//
// LL is the payload length, AAAA the 16-bit offset, TT the record type, DD the
// payload bytes and CC the two's complement of the sum of all other bytes.
package ihex

import (
	"fmt"
	"strconv"
)

type Type uint8

const (
	Data             Type = 0x00
	EOF              Type = 0x01
	ExtSegmentAddr   Type = 0x02
	StartSegmentAddr Type = 0x03
	ExtLinearAddr    Type = 0x04
	StartLinearAddr  Type = 0x05
)

var typeNames = [...]string{
	Data:             "data",
	EOF:              "end of file",
	ExtSegmentAddr:   "extended segment address",
	StartSegmentAddr: "start segment address",
	ExtLinearAddr:    "extended linear address",
	StartLinearAddr:  "start linear address",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "type " + strconv.Itoa(int(t))
}

// Field positions in a record line (in characters).
const (
	lenPos    = 1
	offsetPos = 3
	typePos   = 7
	dataPos   = 9
)

type Record struct {
	Len      uint8
	Offset   uint16
	Type     Type
	Data     []byte
	Checksum uint8
}

// Addr returns the 16-bit big-endian value carried by the payload of the
// address records.
func (r *Record) Addr() uint16 {
	if len(r.Data) < 2 {
		return 0
	}
	return uint16(r.Data[0])<<8 | uint16(r.Data[1])
}

// Sum returns the checksum that makes the byte sum of p zero.
func Sum(p []byte) uint8 {
	var s uint8
	for _, b := range p {
		s += b
	}
	return -s
}

func (r *Record) sum() uint8 {
	return Sum(append([]byte{r.Len, byte(r.Offset >> 8), byte(r.Offset), byte(r.Type)}, r.Data...))
}

// String returns r in the Intel HEX text form.
func (r *Record) String() string {
	s := fmt.Sprintf(":%02X%04X%02X", r.Len, r.Offset, uint8(r.Type))
	for _, b := range r.Data {
		s += fmt.Sprintf("%02X", b)
	}
	return s + fmt.Sprintf("%02X", r.Checksum)
}

// Decode decodes one record line. Fields are read at fixed positions, so line
// must not contain anything but the record (surrounding white space included).
// The returned error is a *MalformedError or a *ChecksumError.
func Decode(line string) (r Record, err error) {
	if len(line) < dataPos+2 {
		return r, malformed(line, "record too short")
	}
	if line[0] != ':' {
		return r, malformed(line, "missing start code ':'")
	}
	n, err := field(line, lenPos, 2)
	if err != nil {
		return r, err
	}
	r.Len = uint8(n)
	if want := dataPos + 2*int(r.Len) + 2; len(line) < want {
		return r, malformed(
			line, fmt.Sprintf("%d characters for %d data bytes, want %d", len(line), r.Len, want),
		)
	}
	off, err := field(line, offsetPos, 4)
	if err != nil {
		return r, err
	}
	r.Offset = uint16(off)
	t, err := field(line, typePos, 2)
	if err != nil {
		return r, err
	}
	r.Type = Type(t)
	if r.Type > StartLinearAddr {
		return r, malformed(line, "unknown record type "+line[typePos:typePos+2])
	}
	r.Data = make([]byte, r.Len)
	for i := range r.Data {
		b, err := field(line, dataPos+2*i, 2)
		if err != nil {
			return r, err
		}
		r.Data[i] = byte(b)
	}
	cs, err := field(line, dataPos+2*int(r.Len), 2)
	if err != nil {
		return r, err
	}
	r.Checksum = uint8(cs)
	if want := r.sum(); want != r.Checksum {
		return r, &ChecksumError{Record: line, Expected: want, Actual: r.Checksum}
	}
	switch r.Type {
	case ExtSegmentAddr, ExtLinearAddr:
		if r.Len != 2 {
			return r, malformed(line, fmt.Sprintf("%v record with %d data bytes", r.Type, r.Len))
		}
	}
	return r, nil
}

func field(line string, pos, width int) (uint64, error) {
	v, err := strconv.ParseUint(line[pos:pos+width], 16, width*4)
	if err != nil {
		return 0, malformed(line, fmt.Sprintf("bad hex digits %q at column %d", line[pos:pos+width], pos+1))
	}
	return v, nil
}
