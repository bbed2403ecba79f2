// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"bytes"

	"github.com/PitterL/Hex2Bin/h2b/internal/segment"
)

// Memory keeps the emitted segments in memory.
type Memory struct {
	Bins   [][]byte     // binary content of every opened segment
	Header bytes.Buffer // text output

	text *Text
	cur  *bytes.Buffer
}

func NewMemory(align int) *Memory {
	m := new(Memory)
	m.text = NewText(&m.Header, align)
	return m
}

func (m *Memory) Open(s *segment.Segment) error {
	m.flush()
	m.cur = new(bytes.Buffer)
	return m.text.Begin(s.Name())
}

func (m *Memory) Write(p []byte) error {
	m.cur.Write(p)
	_, err := m.text.Write(p)
	return err
}

func (m *Memory) Close(s *segment.Segment) error {
	m.flush()
	return m.text.End(s.Size, s.CRC)
}

func (m *Memory) Release() error {
	m.flush()
	return nil
}

func (m *Memory) flush() {
	if m.cur != nil {
		m.Bins = append(m.Bins, m.cur.Bytes())
		m.cur = nil
	}
}

var _ segment.Emitter = (*Memory)(nil)
