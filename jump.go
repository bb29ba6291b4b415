// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package htsio

import (
	"io"
	"os"

	"github.com/biogo/htsio/bgzf"
	"github.com/biogo/htsio/tabix"
)

// jumpToRegion implements spec §4.F.3. It returns unreachable true
// when the index proves the region can hold no records at all, in
// which case the caller should set at_end without scanning further.
func (r *Reader) jumpToRegion() (unreachable bool, err error) {
	region := r.opts.Region

	idxPath := r.opts.RegionIndexFile
	if idxPath == "" && r.path != "" {
		candidate := r.path + ".tbi"
		if _, statErr := os.Stat(candidate); statErr == nil {
			idxPath = candidate
		}
	}

	if idxPath == "" {
		if !r.opts.RegionIndexOptional {
			return false, newError(FileOpenError,
				"no tabix index found for region filtering; set RegionIndexOptional to permit a linear scan", nil)
		}
		return false, nil
	}

	idx, err := readTabixIndex(idxPath)
	if err != nil {
		return false, err
	}

	chunks := idx.Overlapping(region.Chrom, int(region.Beg), int(region.End))
	if len(chunks) == 0 {
		return true, nil
	}

	min := chunks[0].Begin
	for _, c := range chunks[1:] {
		if voffset(c.Begin) < voffset(min) {
			min = c.Begin
		}
	}
	disk, block := min.File, min.Block

	if err := r.st.SeekPrimary(disk); err != nil {
		return false, err
	}
	if err := r.st.SkipN(int(block)); err != nil {
		return false, newError(FormatError, "skipping into BGZF block", err)
	}
	r.variant.ResetStream()
	return false, nil
}

func voffset(o bgzf.Offset) int64 { return o.File<<16 | int64(o.Block) }

// readTabixIndex opens and parses a .tbi file, transparently
// decompressing it if it is BGZF-wrapped as the format requires.
func readTabixIndex(path string) (*tabix.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(FileOpenError, "cannot open tabix index", err)
	}
	defer f.Close()

	magic := make([]byte, 2)
	n, _ := io.ReadFull(f, magic)
	var r io.Reader = f
	if n == 2 && bgzf.IsMagic(magic) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, newError(FileOpenError, "cannot rewind tabix index", err)
		}
		bg, err := bgzf.NewReader(f)
		if err != nil {
			return nil, newError(FormatError, "invalid BGZF tabix index", err)
		}
		r = bg
	} else {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, newError(FileOpenError, "cannot rewind tabix index", err)
		}
	}

	idx, err := tabix.ReadFrom(r)
	if err != nil {
		return nil, newError(FormatError, "parsing tabix index", err)
	}
	return idx, nil
}
