// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package htsio

import "github.com/biogo/htsio/record"

// The record and header types are defined in the record package so
// that format handler packages (fasta, fastq, vcf, bcf) can produce
// them without importing this package. They are re-exported here as
// the public API of htsio.
type (
	Representation = record.Representation
	Field          = record.Field
	SeqRecord      = record.SeqRecord
	VariantRecord  = record.VariantRecord
	Header         = record.Header
	Contig         = record.Contig
	FieldDef       = record.FieldDef
	Alphabet       = record.Alphabet
	Symbol         = record.Symbol
)

const (
	Shallow = record.Shallow
	Deep    = record.Deep
)

// RawBytes is the identity alphabet: every byte decodes to itself.
var RawBytes = record.RawBytes

// probeRecord is the minimal instance parsed during region-filtered
// scanning: only the three fields the comparator needs (chrom, pos,
// ref) are populated. It is a real, if minimal, VariantRecord rather
// than a distinct type, mirroring the original C++ reader's probe
// record.
type probeRecord = record.VariantRecord
