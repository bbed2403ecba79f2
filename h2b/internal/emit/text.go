// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"fmt"
	"io"
)

const hexDigits = "0123456789ABCDEF"

// Text writes segment bytes as the body of a C array, align bytes per row.
type Text struct {
	w     io.Writer
	align int
	n     int // bytes written in the current array
	buf   []byte
}

func NewText(w io.Writer, align int) *Text {
	return &Text{w: w, align: max(align, 0)}
}

// Begin starts a new array declaration.
func (t *Text) Begin(name string) error {
	t.n = 0
	_, err := fmt.Fprintf(t.w, "%s[] = {\n", name)
	return err
}

// Write writes p as "0xHH, " tokens. Every row starts with two tabs and ends
// with a new line after align bytes.
func (t *Text) Write(p []byte) (int, error) {
	buf := t.buf[:0]
	for i, b := range p {
		k := t.n + i
		if t.align != 0 && k%t.align == 0 {
			buf = append(buf, '\t', '\t')
		}
		buf = append(buf, '0', 'x', hexDigits[b>>4], hexDigits[b&15], ',', ' ')
		if t.align != 0 && (k+1)%t.align == 0 {
			buf = append(buf, '\n')
		}
	}
	t.buf = buf
	t.n += len(p)
	if _, err := t.w.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}

// End closes the array with a comment recording its size and CRC.
func (t *Text) End(size, crc uint32) error {
	_, err := fmt.Fprintf(t.w, "};\t/* %d bytes CRC(24) = 0x%06X */\n", size, crc)
	return err
}
