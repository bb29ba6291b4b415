// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fasta

import (
	"strings"
	"testing"

	"github.com/biogo/htsio/record"
)

const twoRecords = `>chr1 first chromosome
ACGTAC
GAGGAC
>chr2
ACGT
`

func TestParseNext(t *testing.T) {
	h := NewHandler(strings.NewReader(twoRecords))

	var rec record.SeqRecord
	ok, err := h.ParseNext(&rec)
	if err != nil || !ok {
		t.Fatalf("ParseNext: ok=%v err=%v", ok, err)
	}
	if rec.ID.String() != "chr1 first chromosome" {
		t.Errorf("ID = %q", rec.ID.String())
	}
	if rec.Seq.String() != "ACGTACGAGGAC" {
		t.Errorf("Seq = %q", rec.Seq.String())
	}
	if !rec.Qual.Empty() {
		t.Errorf("Qual should be empty, got %q", rec.Qual.String())
	}

	ok, err = h.ParseNext(&rec)
	if err != nil || !ok {
		t.Fatalf("ParseNext: ok=%v err=%v", ok, err)
	}
	if rec.ID.String() != "chr2" {
		t.Errorf("ID = %q", rec.ID.String())
	}
	if rec.Seq.String() != "ACGT" {
		t.Errorf("Seq = %q", rec.Seq.String())
	}

	ok, err = h.ParseNext(&rec)
	if err != nil || ok {
		t.Fatalf("expected clean end of input, got ok=%v err=%v", ok, err)
	}
}

func TestParseNextTruncateIDs(t *testing.T) {
	h := NewHandler(strings.NewReader(twoRecords), WithTruncateIDs(true))

	var rec record.SeqRecord
	if ok, err := h.ParseNext(&rec); err != nil || !ok {
		t.Fatalf("ParseNext: ok=%v err=%v", ok, err)
	}
	if rec.ID.String() != "chr1" {
		t.Errorf("ID = %q, want truncated at first whitespace", rec.ID.String())
	}
}

func TestParseNextDeepRepresentation(t *testing.T) {
	h := NewHandler(strings.NewReader(twoRecords), WithRepresentation(Deep))

	var rec record.SeqRecord
	if ok, err := h.ParseNext(&rec); err != nil || !ok {
		t.Fatalf("ParseNext: ok=%v err=%v", ok, err)
	}
	if rec.Rep != Deep {
		t.Errorf("Rep = %v, want Deep", rec.Rep)
	}
	if rec.Seq.String() != "ACGTACGAGGAC" {
		t.Errorf("Seq = %q", rec.Seq.String())
	}
}

func TestParseNextEmptyInput(t *testing.T) {
	h := NewHandler(strings.NewReader(""))
	var rec record.SeqRecord
	ok, err := h.ParseNext(&rec)
	if err != nil || ok {
		t.Fatalf("expected clean end of input on empty stream, got ok=%v err=%v", ok, err)
	}
}

func TestParseNextMalformed(t *testing.T) {
	h := NewHandler(strings.NewReader("not a fasta record\n"))
	var rec record.SeqRecord
	if _, err := h.ParseNext(&rec); err == nil {
		t.Fatal("expected an error for input not starting with '>'")
	}
}
