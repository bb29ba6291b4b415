// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package record

import "github.com/biogo/htsio/internal/pool"

// Representation selects how a record's fields are backed: Shallow
// fields borrow the handler's internal line buffer and are only
// valid until the next advance of the reader; Deep fields own their
// storage and may be retained indefinitely. All fields of a record
// share the same representation; it is fixed at reader construction.
type Representation int

const (
	Shallow Representation = iota
	Deep
)

// Field is one record field. Its concrete storage depends on the
// Representation the owning record was constructed with.
type Field struct {
	b    []byte
	deep bool
}

// Bytes returns the field's raw bytes. For a Shallow field the
// returned slice aliases the handler's internal buffer and is
// invalidated by the reader's next advance.
func (f Field) Bytes() []byte { return f.b }

// String returns the field's bytes converted to a string.
func (f Field) String() string { return string(f.b) }

// Empty reports whether the field has no bytes.
func (f Field) Empty() bool { return len(f.b) == 0 }

// Set stores src into f according to rep. For Shallow it aliases src
// directly (the caller promises src's lifetime extends at least to
// the next advance); for Deep it copies into pooled storage, growing
// f.b only when the pooled buffer from a previous iteration is too
// small.
func (f *Field) Set(src []byte, rep Representation) {
	if rep == Shallow {
		f.b = src
		f.deep = false
		return
	}
	if cap(f.b) < len(src) {
		if f.deep {
			pool.PutBuffer(f.b)
		}
		f.b = pool.GetBuffer(len(src))
	} else {
		f.b = f.b[:len(src)]
	}
	copy(f.b, src)
	f.deep = true
}

// Reset clears a shallow field so stale aliases are not observed
// after an error; it does not release deep storage, which is reused
// on the next Set call.
func (f *Field) Reset() {
	if !f.deep {
		f.b = nil
	}
}

// SeqRecord is the sequence-family record: { id, seq, qual }. Qual is
// empty, not absent, for formats without quality scores (FASTA).
type SeqRecord struct {
	ID   Field
	Seq  Field
	Qual Field

	Rep Representation
}

// VariantRecord is the variant-family record. Info and each entry of
// Genotypes hold raw, undecoded bytes: this package does not parse
// individual INFO/FORMAT values beyond what the region probe needs
// (chrom, pos, ref).
type VariantRecord struct {
	Chrom  Field
	Pos    int64
	ID     Field
	Ref    Field
	Alt    []Field
	Qual   float64
	Filter []Field
	Info   Field

	// Genotypes is grouped by FORMAT field, not by sample: each key
	// is a FORMAT id and the value is one Field per sample, in
	// sample order.
	Genotypes map[string][]Field

	Rep Representation
}

// End returns the half-open end coordinate pos-1+len(ref).
func (r *VariantRecord) End() int64 {
	return r.Pos - 1 + int64(len(r.Ref.Bytes()))
}
