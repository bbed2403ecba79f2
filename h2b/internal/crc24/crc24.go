// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crc24 implements the 24-bit checksum appended to firmware segments.
//
// The algorithm is not one of the named CRC-24 variants. Data is folded as
// little-endian 16-bit words: for every word the accumulator is shifted left
// by one, XORed with the word and reduced by Poly when bit 24 becomes set.
package crc24

// Poly is the reduction polynomial.
const Poly = 0x80001b

// Size is the length of the encoded checksum.
const Size = 3

const mask = 1<<24 - 1

// Update returns the result of folding p into crc. An odd-length p is
// processed as if it had one more zero byte.
func Update(crc uint32, p []byte) uint32 {
	for len(p) >= 2 {
		crc = step(crc, uint32(p[0])|uint32(p[1])<<8)
		p = p[2:]
	}
	if len(p) != 0 {
		crc = step(crc, uint32(p[0]))
	}
	return crc & mask
}

func step(crc, word uint32) uint32 {
	crc = crc<<1 ^ word
	if crc&(1<<24) != 0 {
		crc ^= Poly
	}
	return crc
}

// Checksum returns the CRC-24 of p.
func Checksum(p []byte) uint32 {
	return Update(0, p)
}

// Bytes returns crc in the big-endian form written after the segment data.
func Bytes(crc uint32) []byte {
	return []byte{byte(crc >> 16), byte(crc >> 8), byte(crc)}
}
