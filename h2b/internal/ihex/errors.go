// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ihex

import (
	"fmt"
)

// ChecksumError reports a record whose checksum does not match its content.
type ChecksumError struct {
	Line     int // 1-based line number, 0 if unknown
	Record   string
	Expected uint8
	Actual   uint8
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf(
		"%schecksum mismatch in %s: expected 0x%02X, got 0x%02X",
		linePrefix(e.Line), e.Record, e.Expected, e.Actual,
	)
}

// MalformedError reports a line that cannot be decoded as a record.
type MalformedError struct {
	Line   int // 1-based line number, 0 if unknown
	Record string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%smalformed record %q: %s", linePrefix(e.Line), e.Record, e.Reason)
}

func malformed(line, reason string) error {
	return &MalformedError{Record: line, Reason: reason}
}

func linePrefix(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("line %d: ", n)
}

// WithLine sets the line number in the decoding errors. Other errors are
// returned unchanged.
func WithLine(err error, n int) error {
	switch e := err.(type) {
	case *ChecksumError:
		e.Line = n
	case *MalformedError:
		e.Line = n
	}
	return err
}
