// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package record

// Contig is a named reference sequence and, where known, its length.
// Contigs are ordered as declared in the source header; that order is
// the reference ordering used by the region comparator when two
// records' chromosomes differ.
type Contig struct {
	Name   string
	Length int64
}

// FieldDef describes one INFO or FORMAT definition declared in a
// variant header: its id, declared type and arity, and free-text
// description.
type FieldDef struct {
	ID          string
	Type        string
	Number      string
	Description string
}

// Header is the parsed metadata of a variant file: contig dictionary,
// INFO/FORMAT definitions, sample names, and any other header lines
// verbatim. It is owned by the format handler and is not mutated
// after parsing.
type Header struct {
	Contigs []Contig
	Info    []FieldDef
	Format  []FieldDef
	Samples []string

	// Extra holds header lines this package does not give first-class
	// structure to (e.g. ##source, ##reference), verbatim and in
	// declaration order.
	Extra []string

	contigOrder map[string]int
}

// ContigIndex returns the declared order of name, and true if name
// was seen in the header's contig dictionary.
func (h *Header) ContigIndex(name string) (int, bool) {
	if h == nil {
		return 0, false
	}
	if h.contigOrder == nil {
		h.contigOrder = make(map[string]int, len(h.Contigs))
		for i, c := range h.Contigs {
			h.contigOrder[c.Name] = i
		}
	}
	i, ok := h.contigOrder[name]
	return i, ok
}
