// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package convert

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/PitterL/Hex2Bin/h2b/internal/segment"
	"github.com/PitterL/Hex2Bin/h2b/internal/util"
)

// Batch converts several files. Up to jobs files (all if jobs <= 0) are
// converted concurrently, each by its own engine. Inputs that would produce
// the same outputs are rejected before anything is converted. The results
// are in the order of inputs. The first error stops starting new
// conversions.
type Batch struct {
	OutDir string
	Jobs   int
	Config segment.Config

	// Warnf reports warnings, it must be safe for concurrent use.
	Warnf func(format string, args ...any)
	// Done, if not nil, is called after every successful conversion.
	Done func(res *Result)
}

func (b *Batch) Run(ctx context.Context, inputs []string) ([]*Result, error) {
	if err := checkOutputs(inputs, b.OutDir); err != nil {
		return nil, err
	}
	for _, in := range inputs {
		if _, err := os.Stat(in); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &NotFoundError{in}
			}
			return nil, err
		}
	}
	results := make([]*Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if b.Jobs > 0 {
		g.SetLimit(b.Jobs)
	}
	var mu sync.Mutex
	for i, in := range inputs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := File(in, b.OutDir, b.Config, b.Warnf)
			if err != nil {
				return err
			}
			results[i] = res
			if b.Done != nil {
				mu.Lock()
				b.Done(res)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkOutputs(inputs []string, outDir string) error {
	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		base, err := filepath.Abs(util.OutBase(in, outDir))
		if err != nil {
			return err
		}
		if prev, ok := seen[base]; ok {
			return errors.Errorf("%s and %s would write the same outputs", prev, in)
		}
		seen[base] = in
	}
	return nil
}
