// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package htsio

// formatHandler is the capability every per-format parser shares.
// sequenceHandler and variantHandler extend it with their family's
// record-parsing operations; the Reader engine holds exactly one of
// the two, selected by Format, and dispatches through this shared
// sum-type rather than through a handler base class.
type formatHandler interface {
	// ResetStream re-synchronises internal parse state (discards
	// look-ahead, clears the line buffer) after the engine has
	// repositioned the underlying stream out from under the
	// handler, e.g. following a tabix-driven seek.
	ResetStream()
}

// sequenceHandler is the FASTA/FASTQ handler contract.
type sequenceHandler interface {
	formatHandler

	// ParseNext advances the stream past one record and writes its
	// fields into rec. It returns (false, nil) at clean end of
	// input.
	ParseNext(rec *SeqRecord) (bool, error)
}

// variantHandler is the VCF/BCF handler contract.
type variantHandler interface {
	formatHandler

	// Header returns the parsed header. It is read at handler
	// construction and never replaced.
	Header() *Header

	// ParseNext advances the stream past one record and writes its
	// fields into rec. It returns (false, nil) at clean end of
	// input.
	ParseNext(rec *VariantRecord) (bool, error)

	// ParseProbeNext advances the stream past one record, writing
	// only the fields the region comparator needs (chrom, pos, ref)
	// into probe. It returns (false, nil) at clean end of input.
	ParseProbeNext(probe *probeRecord) (bool, error)

	// ParseCurrent fully materialises the record most recently
	// parsed by ParseProbeNext into rec, without consuming further
	// input. It is idempotent if called twice in succession for the
	// same probed record.
	ParseCurrent(rec *VariantRecord) error
}
