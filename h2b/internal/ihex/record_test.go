// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ihex

import (
	"bytes"
	"errors"
	"testing"
)

const dataLine = ":10000000214601360121470136007EFE09D2190042"

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Record
	}{
		{
			name: "data",
			line: dataLine,
			want: Record{
				Len:    16,
				Offset: 0,
				Type:   Data,
				Data: []byte{
					0x21, 0x46, 0x01, 0x36, 0x01, 0x21, 0x47, 0x01,
					0x36, 0x00, 0x7e, 0xfe, 0x09, 0xd2, 0x19, 0x00,
				},
				Checksum: 0x42,
			},
		},
		{
			name: "lower case digits",
			line: ":03c0de00aabbcc2e",
			want: Record{Len: 3, Offset: 0xc0de, Type: Data, Data: []byte{0xaa, 0xbb, 0xcc}, Checksum: 0x2e},
		},
		{
			name: "eof",
			line: ":00000001FF",
			want: Record{Type: EOF, Data: []byte{}, Checksum: 0xff},
		},
		{
			name: "extended linear address",
			line: ":020000040800F2",
			want: Record{Len: 2, Type: ExtLinearAddr, Data: []byte{0x08, 0x00}, Checksum: 0xf2},
		},
		{
			name: "extended segment address",
			line: ":020000021000EC",
			want: Record{Len: 2, Type: ExtSegmentAddr, Data: []byte{0x10, 0x00}, Checksum: 0xec},
		},
		{
			name: "start linear address",
			line: ":0400000508000000EF",
			want: Record{Len: 4, Type: StartLinearAddr, Data: []byte{0x08, 0, 0, 0}, Checksum: 0xef},
		},
		{
			name: "trailing characters ignored",
			line: ":00000001FFxyz",
			want: Record{Type: EOF, Data: []byte{}, Checksum: 0xff},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.line)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.Len != tt.want.Len || got.Offset != tt.want.Offset ||
				got.Type != tt.want.Type || got.Checksum != tt.want.Checksum {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
			if !bytes.Equal(got.Data, tt.want.Data) {
				t.Errorf("Decode() data = % x, want % x", got.Data, tt.want.Data)
			}
		})
	}
}

func TestDecodeChecksumMismatch(t *testing.T) {
	line := ":10000000214601360121470136007EFE09D2190043"
	_, err := Decode(line)
	var ce *ChecksumError
	if !errors.As(err, &ce) {
		t.Fatalf("Decode() error = %v, want *ChecksumError", err)
	}
	if ce.Record != line {
		t.Errorf("Record = %q, want %q", ce.Record, line)
	}
	if ce.Expected != 0x42 || ce.Actual != 0x43 {
		t.Errorf("Expected/Actual = %#x/%#x, want 0x42/0x43", ce.Expected, ce.Actual)
	}
}

func TestDecodeChecksumAllTypes(t *testing.T) {
	for _, line := range []string{":00000001FE", ":020000040800F3", ":020000021000ED"} {
		_, err := Decode(line)
		var ce *ChecksumError
		if !errors.As(err, &ce) {
			t.Errorf("Decode(%q) error = %v, want *ChecksumError", line, err)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"no colon", "00000001FF"},
		{"short header", ":000000"},
		{"truncated payload", ":10000000214601360121470136007EFE09D219"},
		{"missing checksum", ":0100000055"},
		{"bad length digits", ":G0000001FF"},
		{"bad type digits", ":0100000Z55AA"},
		{"bad payload digits", ":01000000ZZ00"},
		{"unknown type", ":00000006FA"},
		{"address record length", ":0100000408F3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.line)
			var me *MalformedError
			if !errors.As(err, &me) {
				t.Fatalf("Decode(%q) error = %v, want *MalformedError", tt.line, err)
			}
		})
	}
}

func TestWithLine(t *testing.T) {
	_, err := Decode(":00000001FE")
	err = WithLine(err, 7)
	want := "line 7: checksum mismatch in :00000001FE: expected 0xFF, got 0xFE"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	other := errors.New("other")
	if WithLine(other, 3) != other {
		t.Error("WithLine changed an unrelated error")
	}
}

func TestRecordString(t *testing.T) {
	r, err := Decode(dataLine)
	if err != nil {
		t.Fatal(err)
	}
	if s := r.String(); s != dataLine {
		t.Errorf("String() = %q, want %q", s, dataLine)
	}
	if s := (&Record{Type: EOF, Checksum: 0xff}).String(); s != ":00000001FF" {
		t.Errorf("String() = %q, want %q", s, ":00000001FF")
	}
	if got := (&Record{Type: ExtLinearAddr, Data: []byte{0x12, 0x34}}).Addr(); got != 0x1234 {
		t.Errorf("Addr() = %#x, want 0x1234", got)
	}
}

func TestSum(t *testing.T) {
	if got := Sum([]byte{0x02, 0x00, 0x00, 0x04, 0x08, 0x00}); got != 0xf2 {
		t.Errorf("Sum() = %#x, want 0xf2", got)
	}
}
