// Copyright ©2014 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package internal provides the binning-index machinery shared by
// coordinate-sorted BGZF index formats. tabix is the only consumer
// this module needs, but the binning scheme is the one shared across
// the whole BAI/CSI/tabix family.
package internal

import (
	"sort"

	"github.com/biogo/htsio/bgzf"
	"github.com/biogo/htsio/bgzf/index"
)

const (
	// TileWidth is the length of the interval tiling used in the
	// linear index.
	TileWidth = 0x4000

	// StatsDummyBin is the bin number of the reference statistics
	// bin, when present.
	StatsDummyBin = 0x924a
)

// Index is a coordinate based index: one binning index plus one linear
// index per reference sequence.
type Index struct {
	Refs     []RefIndex
	Unmapped *uint64
	IsSorted bool
}

// RefIndex is the index of a single reference.
type RefIndex struct {
	Bins      []Bin
	Stats     *ReferenceStats
	Intervals []bgzf.Offset
}

// Bin is an index bin holding the BGZF chunks of records placed in it.
type Bin struct {
	Bin    uint32
	Chunks []bgzf.Chunk
}

// ReferenceStats holds mapping statistics for a genomic reference.
// It is field-compatible with index.ReferenceStats so that a parsed
// value can be converted directly to the public type.
type ReferenceStats struct {
	Chunk    bgzf.Chunk
	Mapped   uint64
	Unmapped uint64
}

// Chunks returns the chunks of the binning index for reference rid that
// may hold records overlapping [beg, end). The returned slice is
// sorted by chunk begin offset but is not deduplicated or coalesced;
// callers typically pass it through an index.MergeStrategy such as
// index.Adjacent.
func (i *Index) Chunks(rid, beg, end int) ([]bgzf.Chunk, error) {
	if rid < 0 || rid >= len(i.Refs) {
		return nil, index.ErrNoReference
	}
	i.sort()
	ref := i.Refs[rid]

	iv := beg / TileWidth
	if iv >= len(ref.Intervals) {
		return nil, index.ErrInvalid
	}

	// Collect candidate chunks according to the scheme described in
	// the SAM spec under section 5, Indexing BAM; tabix reuses the
	// same binning index layout for arbitrary coordinate-sorted text.
	var chunks []bgzf.Chunk
	for _, b := range OverlappingBinsFor(beg, end) {
		c := sort.Search(len(ref.Bins), func(i int) bool { return ref.Bins[i].Bin >= b })
		if c >= len(ref.Bins) || ref.Bins[c].Bin != b {
			continue
		}
		for _, chunk := range ref.Bins[c].Chunks {
			chunkEndOffset := vOffset(chunk.End)
			haveNonZero := false
			for j, tile := range ref.Intervals[iv:] {
				if haveNonZero && isZero(tile) {
					continue
				}
				haveNonZero = true
				tbeg := (j + iv) * TileWidth
				tend := tbeg + TileWidth
				if tend >= beg && tbeg <= end && chunkEndOffset > vOffset(tile) {
					chunks = append(chunks, chunk)
					break
				}
			}
		}
	}

	if !sort.IsSorted(byBeginOffset(chunks)) {
		sort.Sort(byBeginOffset(chunks))
	}
	return chunks, nil
}

func (i *Index) sort() {
	if i.IsSorted {
		return
	}
	for _, ref := range i.Refs {
		sort.Sort(byBinNumber(ref.Bins))
		for _, bin := range ref.Bins {
			sort.Sort(byBeginOffset(bin.Chunks))
		}
		sort.Sort(byVirtOffset(ref.Intervals))
	}
	i.IsSorted = true
}

const (
	indexWordBits = 29
	nextBinShift  = 3
)

const (
	level0 = uint32(((1 << (iota * nextBinShift)) - 1) / 7)
	level1
	level2
	level3
	level4
	level5
)

const (
	level0Shift = indexWordBits - (iota * nextBinShift)
	level1Shift
	level2Shift
	level3Shift
	level4Shift
	level5Shift
)

// BinFor returns the bin number for the interval [beg,end)
// (zero-based, half-open).
func BinFor(beg, end int) uint32 {
	end--
	switch {
	case beg>>level5Shift == end>>level5Shift:
		return level5 + uint32(beg>>level5Shift)
	case beg>>level4Shift == end>>level4Shift:
		return level4 + uint32(beg>>level4Shift)
	case beg>>level3Shift == end>>level3Shift:
		return level3 + uint32(beg>>level3Shift)
	case beg>>level2Shift == end>>level2Shift:
		return level2 + uint32(beg>>level2Shift)
	case beg>>level1Shift == end>>level1Shift:
		return level1 + uint32(beg>>level1Shift)
	}
	return level0
}

// OverlappingBinsFor returns the bin numbers for all bins overlapping
// the interval [beg,end) (zero-based, half-open).
func OverlappingBinsFor(beg, end int) []uint32 {
	end--
	list := []uint32{level0}
	for _, r := range []struct {
		offset, shift uint32
	}{
		{level1, level1Shift},
		{level2, level2Shift},
		{level3, level3Shift},
		{level4, level4Shift},
		{level5, level5Shift},
	} {
		for k := r.offset + uint32(beg>>r.shift); k <= r.offset+uint32(end>>r.shift); k++ {
			list = append(list, k)
		}
	}
	return list
}

func isZero(o bgzf.Offset) bool {
	return o == bgzf.Offset{}
}

func vOffset(o bgzf.Offset) int64 {
	return o.File<<16 | int64(o.Block)
}

type byBinNumber []Bin

func (b byBinNumber) Len() int           { return len(b) }
func (b byBinNumber) Less(i, j int) bool { return b[i].Bin < b[j].Bin }
func (b byBinNumber) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }

type byBeginOffset []bgzf.Chunk

func (c byBeginOffset) Len() int           { return len(c) }
func (c byBeginOffset) Less(i, j int) bool { return vOffset(c[i].Begin) < vOffset(c[j].Begin) }
func (c byBeginOffset) Swap(i, j int)      { c[i], c[j] = c[j], c[i] }

type byVirtOffset []bgzf.Offset

func (o byVirtOffset) Len() int           { return len(o) }
func (o byVirtOffset) Less(i, j int) bool { return vOffset(o[i]) < vOffset(o[j]) }
func (o byVirtOffset) Swap(i, j int)      { o[i], o[j] = o[j], o[i] }
