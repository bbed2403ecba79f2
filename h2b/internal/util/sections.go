// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

type Section struct {
	Name  string // file the data was read from
	Paddr uint64 // load address of the first byte
	Data  []byte
}

type Sections []*Section

// ReadBins reads binary files acording to the description (comma separated
// list of BIN:ADDR pairs) and returns them as a slice of sections.
func ReadBins(descr string) (Sections, error) {
	bins := strings.Split(descr, ",")
	ss := make(Sections, len(bins))
	for k, ba := range bins {
		i := strings.LastIndexByte(ba, ':')
		if i <= 0 {
			return nil, errors.Errorf("bad '%s' (format BIN1:ADDR1[,BIN2:ADDR2[,...]])", ba)
		}
		bin, addr := ba[:i], ba[i+1:]
		s := &Section{Name: bin}
		var err error
		s.Paddr, err = ParseUint(addr, 32)
		if err != nil {
			return nil, errors.Wrapf(err, "bad address in '%s'", addr)
		}
		s.Data, err = os.ReadFile(bin)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		ss[k] = s
	}
	return ss, nil
}

// SortByPaddr sorts sections according to the Paddr field.
func (ss Sections) SortByPaddr() {
	sort.Slice(
		ss,
		func(i, j int) bool {
			return ss[i].Paddr < ss[j].Paddr
		},
	)
}

// Size returns the size of the flattened image.
func (ss Sections) Size() int {
	if len(ss) == 0 {
		return 0
	}
	lo, hi := ss[0].Paddr, ss[0].Paddr
	for _, s := range ss {
		lo = min(lo, s.Paddr)
		hi = max(hi, s.Paddr+uint64(len(s.Data)))
	}
	return int(hi - lo)
}

// Flatten flattens sections by writting their data to the provided io.Writer
// according to the Paddr field (before writting the sections are sorted using
// SortPaddr method). The gaps between sections are filled using the pad byte.
func (ss Sections) Flatten(w io.Writer, pad byte) (n int, err error) {
	if len(ss) == 0 {
		return
	}
	ss.SortByPaddr()
	pa := ss[0].Paddr
	n, err = w.Write(ss[0].Data)
	if err != nil {
		return
	}
	pa += uint64(n)
	var padCache []byte
	for _, s := range ss[1:] {
		if s.Paddr < pa {
			err = errors.New("flatten: overlaping sections")
			return
		}
		m := int(s.Paddr - pa)
		if m != 0 {
			m, err = w.Write(PadBytes(&padCache, m, pad))
			n += m
			if err != nil {
				return
			}
			pa += uint64(m)
		}
		m, err = w.Write(s.Data)
		n += m
		if err != nil {
			return
		}
		pa += uint64(m)
	}
	return
}

// PadBytes returns the slice containing n byte equal b. If cache isn't nil it
// is used to avoid allocations, it must not be shared between pad values.
func PadBytes(cache *[]byte, n int, b byte) []byte {
	if cache == nil {
		cache = new([]byte)
	}
	if len(*cache) < n {
		*cache = make([]byte, n)
		for i := range *cache {
			(*cache)[i] = b
		}
	}
	return (*cache)[:n]
}
