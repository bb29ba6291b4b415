// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vcf

import (
	"strings"
	"testing"

	"github.com/biogo/htsio/record"
)

const sample = `##fileformat=VCFv4.2
##source=test
##contig=<ID=20,length=63025520>
##contig=<ID=21,length=48129895>
##INFO=<ID=DP,Number=1,Type=Integer,Description="Total Depth">
##FORMAT=<ID=GT,Number=1,Type=String,Description="Genotype">
##FORMAT=<ID=DP,Number=1,Type=Integer,Description="Read Depth">
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	S1	S2
20	14370	rs6054257	G	A	29	PASS	DP=14	GT:DP	0/1:10	1/1:8
20	17330	.	T	A,TT	3	q10;s50	DP=11	GT:DP	0/0:5	0/1:4
21	1000000	.	C	G	.	.	DP=1	GT	0/1	.
`

func mustHandler(t *testing.T) *Handler {
	h, err := NewHandler(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}

func TestHeader(t *testing.T) {
	h := mustHandler(t)
	hdr := h.Header()
	if len(hdr.Contigs) != 2 || hdr.Contigs[0].Name != "20" || hdr.Contigs[0].Length != 63025520 {
		t.Fatalf("Contigs = %+v", hdr.Contigs)
	}
	if len(hdr.Info) != 1 || hdr.Info[0].ID != "DP" || hdr.Info[0].Number != "1" {
		t.Fatalf("Info = %+v", hdr.Info)
	}
	if len(hdr.Format) != 2 {
		t.Fatalf("Format = %+v", hdr.Format)
	}
	if len(hdr.Samples) != 2 || hdr.Samples[0] != "S1" || hdr.Samples[1] != "S2" {
		t.Fatalf("Samples = %+v", hdr.Samples)
	}
	if i, ok := hdr.ContigIndex("21"); !ok || i != 1 {
		t.Fatalf("ContigIndex(21) = %d, %v", i, ok)
	}
}

func TestParseNext(t *testing.T) {
	h := mustHandler(t)

	var rec record.VariantRecord
	ok, err := h.ParseNext(&rec)
	if err != nil || !ok {
		t.Fatalf("ParseNext: ok=%v err=%v", ok, err)
	}
	if rec.Chrom.String() != "20" || rec.Pos != 14370 {
		t.Errorf("Chrom/Pos = %q/%d", rec.Chrom.String(), rec.Pos)
	}
	if rec.Ref.String() != "G" || len(rec.Alt) != 1 || rec.Alt[0].String() != "A" {
		t.Errorf("Ref/Alt = %q/%v", rec.Ref.String(), rec.Alt)
	}
	if rec.Qual != 29 {
		t.Errorf("Qual = %v", rec.Qual)
	}
	if len(rec.Filter) != 1 || rec.Filter[0].String() != "PASS" {
		t.Errorf("Filter = %v", rec.Filter)
	}
	if rec.Info.String() != "DP=14" {
		t.Errorf("Info = %q", rec.Info.String())
	}
	dp, ok := rec.Genotypes["DP"]
	if !ok || len(dp) != 2 || dp[0].String() != "10" || dp[1].String() != "8" {
		t.Errorf("Genotypes[DP] = %v", dp)
	}

	ok, err = h.ParseNext(&rec)
	if err != nil || !ok {
		t.Fatalf("ParseNext: ok=%v err=%v", ok, err)
	}
	if len(rec.Alt) != 2 || rec.Alt[0].String() != "A" || rec.Alt[1].String() != "TT" {
		t.Errorf("multi-allelic Alt = %v", rec.Alt)
	}
	if len(rec.Filter) != 2 || rec.Filter[0].String() != "q10" || rec.Filter[1].String() != "s50" {
		t.Errorf("Filter = %v", rec.Filter)
	}

	ok, err = h.ParseNext(&rec)
	if err != nil || !ok {
		t.Fatalf("ParseNext: ok=%v err=%v", ok, err)
	}
	gt, ok := rec.Genotypes["GT"]
	if !ok || len(gt) != 2 || gt[0].String() != "0/1" || gt[1].String() != "" {
		t.Errorf("short trailing genotype column = %v", gt)
	}

	ok, err = h.ParseNext(&rec)
	if err != nil || ok {
		t.Fatalf("expected clean end of input, got ok=%v err=%v", ok, err)
	}
}

func TestParseProbeAndCurrent(t *testing.T) {
	h := mustHandler(t)

	var probe record.VariantRecord
	ok, err := h.ParseProbeNext(&probe)
	if err != nil || !ok {
		t.Fatalf("ParseProbeNext: ok=%v err=%v", ok, err)
	}
	if probe.Chrom.String() != "20" || probe.Pos != 14370 || probe.Ref.String() != "G" {
		t.Fatalf("probe = %q %d %q", probe.Chrom.String(), probe.Pos, probe.Ref.String())
	}

	var rec record.VariantRecord
	if err := h.ParseCurrent(&rec); err != nil {
		t.Fatalf("ParseCurrent: %v", err)
	}
	if rec.ID.String() != "rs6054257" || len(rec.Alt) != 1 || rec.Alt[0].String() != "A" {
		t.Fatalf("ParseCurrent materialised = %q %v", rec.ID.String(), rec.Alt)
	}

	// ParseCurrent is idempotent: calling it again re-parses the same
	// cached line without consuming further input.
	var rec2 record.VariantRecord
	if err := h.ParseCurrent(&rec2); err != nil {
		t.Fatalf("ParseCurrent (second call): %v", err)
	}
	if rec2.ID.String() != rec.ID.String() {
		t.Fatalf("ParseCurrent not idempotent: %q != %q", rec2.ID.String(), rec.ID.String())
	}
}

func TestParseCurrentBeforeProbe(t *testing.T) {
	h := mustHandler(t)
	var rec record.VariantRecord
	if err := h.ParseCurrent(&rec); err == nil {
		t.Fatal("expected an error calling ParseCurrent before any ParseProbeNext")
	}
}

func TestNewHandlerMissingColumnLine(t *testing.T) {
	_, err := NewHandler(strings.NewReader("##fileformat=VCFv4.2\n"))
	if err == nil {
		t.Fatal("expected an error for a header with no #CHROM line")
	}
}

func TestQualMissing(t *testing.T) {
	h := mustHandler(t)
	var rec record.VariantRecord
	for i := 0; i < 3; i++ {
		if ok, err := h.ParseNext(&rec); err != nil || !ok {
			t.Fatalf("ParseNext %d: ok=%v err=%v", i, ok, err)
		}
	}
	if rec.Qual == rec.Qual {
		t.Errorf("Qual = %v, want NaN for missing QUAL", rec.Qual)
	}
	if len(rec.Filter) != 0 {
		t.Errorf("Filter = %v, want empty for missing FILTER", rec.Filter)
	}
}
