// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package htsio

// Verdict is the three-way result of comparing a probe interval
// against a target Region.
type Verdict int

const (
	// less means the probe lies strictly before the target: skip
	// and keep scanning.
	less Verdict = iota - 1
	// equivalent means the probe overlaps the target: materialise
	// the record.
	equivalent
	// greater means the probe lies strictly after the target, which
	// (on chrom-sorted input) means no further record can overlap:
	// stop.
	greater
)

// compare implements the genomic-region comparator (spec §4.F.5).
// probeBeg/probeEnd are the half-open interval of the probed record
// on chromosome probeChrom; target is the region being filtered for.
// header supplies the reference contig order when available; ties
// fall back to lexicographic order on chromosome name.
func compare(header *Header, probeChrom string, probeBeg, probeEnd int64, target Region) Verdict {
	if probeChrom != target.Chrom {
		pi, pok := header.ContigIndex(probeChrom)
		ti, tok := header.ContigIndex(target.Chrom)
		if pok && tok {
			if pi < ti {
				return less
			}
			return greater
		}
		if probeChrom < target.Chrom {
			return less
		}
		return greater
	}
	switch {
	case probeEnd <= target.Beg:
		return less
	case probeBeg >= target.End:
		return greater
	default:
		return equivalent
	}
}

// probeInterval computes the half-open [beg, end) interval used to
// compare a variant probe against a Region, from its 1-based VCF/BCF
// pos and ref length. A zero-length ref is a point interval at
// pos-1, matching the "undo when interval notation gets decided on"
// convention carried from the original C++ reader (see DESIGN.md).
func probeInterval(pos int64, refLen int) (beg, end int64) {
	beg = pos - 1
	end = beg + int64(refLen)
	if refLen == 0 {
		end = beg + 1
	}
	return beg, end
}
