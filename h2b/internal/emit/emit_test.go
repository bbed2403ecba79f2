// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PitterL/Hex2Bin/h2b/internal/ihex"
	"github.com/PitterL/Hex2Bin/h2b/internal/segment"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		align int
		want  string
	}{
		{
			name:  "rows",
			align: 4,
			want: "A[] = {\n" +
				"\t\t0x01, 0x02, 0x03, 0x04, \n" +
				"\t\t0x05, };\t/* 5 bytes CRC(24) = 0x000001 */\n",
		},
		{
			name:  "full last row",
			align: 5,
			want: "A[] = {\n" +
				"\t\t0x01, 0x02, 0x03, 0x04, 0x05, \n" +
				"};\t/* 5 bytes CRC(24) = 0x000001 */\n",
		},
		{
			name:  "no wrapping",
			align: 0,
			want: "A[] = {\n" +
				"0x01, 0x02, 0x03, 0x04, 0x05, };\t/* 5 bytes CRC(24) = 0x000001 */\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			text := NewText(&buf, tt.align)
			if err := text.Begin("A"); err != nil {
				t.Fatal(err)
			}
			for _, p := range [][]byte{{1, 2, 3}, {4, 5}} {
				if n, err := text.Write(p); err != nil || n != len(p) {
					t.Fatalf("Write() = %d, %v", n, err)
				}
			}
			if err := text.End(5, 1); err != nil {
				t.Fatal(err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("got\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestTextRestartsRows(t *testing.T) {
	var buf bytes.Buffer
	text := NewText(&buf, 2)
	text.Begin("A")
	text.Write([]byte{0xab})
	text.End(1, 0)
	text.Begin("B")
	text.Write([]byte{0xcd, 0xef})
	text.End(2, 0)
	want := "A[] = {\n\t\t0xAB, };\t/* 1 bytes CRC(24) = 0x000000 */\n" +
		"B[] = {\n\t\t0xCD, 0xEF, \n};\t/* 2 bytes CRC(24) = 0x000000 */\n"
	if got := buf.String(); got != want {
		t.Errorf("got\n%q\nwant\n%q", got, want)
	}
}

var payload = []byte{
	0x21, 0x46, 0x01, 0x36, 0x01, 0x21, 0x47, 0x01,
	0x36, 0x00, 0x7e, 0xfe, 0x09, 0xd2, 0x19, 0x00,
}

func feed(t *testing.T, e *segment.Engine, recs ...ihex.Record) {
	t.Helper()
	for _, r := range recs {
		if err := e.Feed(r); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFiles(t *testing.T) {
	base := filepath.Join(t.TempDir(), "fw")
	f := NewFiles(base, 16)
	cfg := segment.DefaultConfig()
	cfg.GapSimSeg = 0x100
	e := segment.New(cfg, f)
	feed(t, e,
		ihex.Record{Len: 16, Type: ihex.Data, Data: payload},
		ihex.Record{Len: 2, Offset: 0x200, Type: ihex.Data, Data: []byte{1, 2}},
		ihex.Record{Type: ihex.EOF},
	)
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	wantBins := []string{base + "_Sig_0x0000_(0000h).bin", base + "_Sig_0x0000_(0200h).bin"}
	if got := f.Bins(); len(got) != 2 || got[0] != wantBins[0] || got[1] != wantBins[1] {
		t.Fatalf("Bins() = %q, want %q", got, wantBins)
	}
	for i, want := range [][]byte{payload, {1, 2}} {
		got, err := os.ReadFile(wantBins[i])
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("%s = % x, want % x", wantBins[i], got, want)
		}
	}
	hdr, err := os.ReadFile(base + ".h")
	if err != nil {
		t.Fatal(err)
	}
	want := "Sig_0x0000_(0000h)[] = {\n" +
		"\t\t0x21, 0x46, 0x01, 0x36, 0x01, 0x21, 0x47, 0x01, " +
		"0x36, 0x00, 0x7E, 0xFE, 0x09, 0xD2, 0x19, 0x00, \n" +
		"};\t/* 16 bytes CRC(24) = 0x28F8D3 */\n" +
		"Sig_0x0000_(0200h)[] = {\n" +
		"\t\t0x01, 0x02, };\t/* 2 bytes CRC(24) = 0x000201 */\n"
	if string(hdr) != want {
		t.Errorf("header\n%q\nwant\n%q", hdr, want)
	}
	if f.HeaderName() != base+".h" {
		t.Errorf("HeaderName() = %q", f.HeaderName())
	}
}

func TestFilesReleaseMidSegment(t *testing.T) {
	base := filepath.Join(t.TempDir(), "fw")
	f := NewFiles(base, 16)
	e := segment.New(segment.DefaultConfig(), f)
	feed(t, e, ihex.Record{Len: 2, Type: ihex.Data, Data: []byte{1, 2}})
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Release(); err != nil {
		t.Errorf("second Release() = %v", err)
	}
	hdr, err := os.ReadFile(base + ".h")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(hdr), "};") {
		t.Errorf("unfinished segment has a trailer: %q", hdr)
	}
	bin, err := os.ReadFile(f.Bins()[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bin, []byte{1, 2}) {
		t.Errorf("bin = % x", bin)
	}
}

func TestFilesCreateError(t *testing.T) {
	f := NewFiles(filepath.Join(t.TempDir(), "missing", "fw"), 16)
	e := segment.New(segment.DefaultConfig(), f)
	err := e.Feed(ihex.Record{Len: 1, Type: ihex.Data, Data: []byte{1}})
	if err == nil {
		t.Fatal("Feed() succeeded with a missing output directory")
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory(16)
	e := segment.New(segment.DefaultConfig(), m)
	feed(t, e,
		ihex.Record{Len: 2, Type: ihex.ExtLinearAddr, Data: []byte{0, 1}},
		ihex.Record{Len: 1, Type: ihex.Data, Data: []byte{7}},
		ihex.Record{Len: 2, Type: ihex.ExtLinearAddr, Data: []byte{0, 2}},
		ihex.Record{Len: 1, Type: ihex.Data, Data: []byte{8}},
		ihex.Record{Type: ihex.EOF},
	)
	if len(m.Bins) != 2 || !bytes.Equal(m.Bins[0], []byte{7}) || !bytes.Equal(m.Bins[1], []byte{8}) {
		t.Errorf("Bins = % x", m.Bins)
	}
	if n := strings.Count(m.Header.String(), "[] = {"); n != 2 {
		t.Errorf("%d arrays in %q", n, m.Header.String())
	}
}
