// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fastq

import (
	"strings"
	"testing"

	"github.com/biogo/htsio/record"
)

const twoRecords = "@read1 description\nACGTACGT\n+\nIIIIIIII\n@read2\nTTTT\n+\nJJJJ\n"

func TestParseNext(t *testing.T) {
	h := NewHandler(strings.NewReader(twoRecords))

	var rec record.SeqRecord
	ok, err := h.ParseNext(&rec)
	if err != nil || !ok {
		t.Fatalf("ParseNext: ok=%v err=%v", ok, err)
	}
	if rec.ID.String() != "read1 description" {
		t.Errorf("ID = %q", rec.ID.String())
	}
	if rec.Seq.String() != "ACGTACGT" {
		t.Errorf("Seq = %q", rec.Seq.String())
	}
	if rec.Qual.String() != "IIIIIIII" {
		t.Errorf("Qual = %q", rec.Qual.String())
	}

	ok, err = h.ParseNext(&rec)
	if err != nil || !ok {
		t.Fatalf("ParseNext: ok=%v err=%v", ok, err)
	}
	if rec.ID.String() != "read2" {
		t.Errorf("ID = %q", rec.ID.String())
	}
	if rec.Seq.String() != "TTTT" || rec.Qual.String() != "JJJJ" {
		t.Errorf("Seq/Qual = %q/%q", rec.Seq.String(), rec.Qual.String())
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
	if rec.ID.String() != "read1" {
		t.Errorf("ID = %q, want truncated at first whitespace", rec.ID.String())
	}
}

func TestParseNextQualLengthMismatch(t *testing.T) {
	h := NewHandler(strings.NewReader("@r\nACGT\n+\nII\n"))
	var rec record.SeqRecord
	if _, err := h.ParseNext(&rec); err == nil {
		t.Fatal("expected an error for mismatched seq/qual lengths")
	}
}

func TestParseNextMissingSeparator(t *testing.T) {
	h := NewHandler(strings.NewReader("@r\nACGT\nnotasep\nIIII\n"))
	var rec record.SeqRecord
	if _, err := h.ParseNext(&rec); err == nil {
		t.Fatal("expected an error for a missing '+' separator line")
	}
}

func TestParseNextTruncatedRecord(t *testing.T) {
	h := NewHandler(strings.NewReader("@r\nACGT\n+\n"))
	var rec record.SeqRecord
	if _, err := h.ParseNext(&rec); err == nil {
		t.Fatal("expected an error for a record missing its quality line")
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
