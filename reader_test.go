// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package htsio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fastaFixture = ">chr1 first\nACGT\nACGT\n>chr2\nTTTT\n"

func TestReaderFastaUnrestricted(t *testing.T) {
	r, err := New(strings.NewReader(fastaFixture), FASTA)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	var ids []string
	for r.Next() {
		ids = append(ids, r.SeqRecord().ID.String())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if len(ids) != 2 || ids[0] != "chr1 first" || ids[1] != "chr2" {
		t.Fatalf("ids = %v", ids)
	}
}

func TestReaderFastqUnrestricted(t *testing.T) {
	r, err := New(strings.NewReader("@r1\nACGT\n+\nIIII\n@r2\nTT\n+\nJJ\n"), FASTQ)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	count := 0
	for r.Next() {
		count++
		if r.SeqRecord().Seq.Empty() {
			t.Errorf("record %d has empty Seq", count)
		}
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

const vcfRegionFixture = `##fileformat=VCFv4.2
##contig=<ID=20,length=63025520>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
20	100	a	A	T	.	PASS	.
20	200	b	A	T	.	PASS	.
20	300	c	A	T	.	PASS	.
20	400	d	A	T	.	PASS	.
20	500	e	A	T	.	PASS	.
`

func TestReaderVCFUnrestricted(t *testing.T) {
	r, err := New(strings.NewReader(vcfRegionFixture), VCF)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	var ids []string
	for r.Next() {
		ids = append(ids, r.VariantRecord().ID.String())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	want := []string{"a", "b", "c", "d", "e"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestReaderVCFRegionFilteredLinearScan(t *testing.T) {
	r, err := New(strings.NewReader(vcfRegionFixture), VCF,
		WithRegion(Region{Chrom: "20", Beg: 150, End: 250}),
		WithRegionIndexOptional(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	var ids []string
	for r.Next() {
		ids = append(ids, r.VariantRecord().ID.String())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if len(ids) != 1 || ids[0] != "b" {
		t.Fatalf("ids = %v, want [b]", ids)
	}
}

func TestReaderVCFRegionRequiresIndexOrOptIn(t *testing.T) {
	r, err := New(strings.NewReader(vcfRegionFixture), VCF,
		WithRegion(Region{Chrom: "20", Beg: 150, End: 250}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	if r.Next() {
		t.Fatal("expected Next to report no records when no index and RegionIndexOptional is false")
	}
	if !IsKind(r.Err(), FileOpenError) {
		t.Fatalf("Err = %v, want a FileOpenError", r.Err())
	}
}

func TestReaderVCFRegionFilteringOnFastaRejected(t *testing.T) {
	r, err := New(strings.NewReader(fastaFixture), FASTA,
		WithRegion(Region{Chrom: "chr1", Beg: 0, End: 10}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()
	if r.Next() {
		t.Fatal("expected Next to fail for region filtering on a sequence-family format")
	}
	if !IsKind(r.Err(), UnsupportedOperationError) {
		t.Fatalf("Err = %v, want UnsupportedOperationError", r.Err())
	}
}

func TestReaderReopenContinuesLinearScan(t *testing.T) {
	r, err := New(strings.NewReader(vcfRegionFixture), VCF,
		WithRegion(Region{Chrom: "20", Beg: 150, End: 250}),
		WithRegionIndexOptional(true))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	var first []string
	for r.Next() {
		first = append(first, r.VariantRecord().ID.String())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if len(first) != 1 || first[0] != "b" {
		t.Fatalf("first pass = %v, want [b]", first)
	}

	hdrBefore := r.Header()

	if err := r.Reopen(Region{Chrom: "20", Beg: 350, End: 450}); err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if r.Header() != hdrBefore {
		t.Fatal("Reopen must not re-parse or replace the header")
	}

	var second []string
	for r.Next() {
		second = append(second, r.VariantRecord().ID.String())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if len(second) != 1 || second[0] != "d" {
		t.Fatalf("second pass = %v, want [d] (record c was already consumed as the linear scan's stopping probe)", second)
	}
}

func TestReaderHeaderPanicsOnSequenceFormat(t *testing.T) {
	r, err := New(strings.NewReader(fastaFixture), FASTA)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("expected Header to panic for a sequence-family Reader")
		}
	}()
	r.Header()
}

func TestNewFromPathDetectsByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.fa")
	if err := os.WriteFile(path, []byte(fastaFixture), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := NewFromPath(path, 0)
	if err != nil {
		t.Fatalf("NewFromPath: %v", err)
	}
	defer r.Close()

	if !r.Next() {
		t.Fatalf("Next: %v", r.Err())
	}
	if r.SeqRecord().ID.String() != "chr1 first" {
		t.Errorf("ID = %q", r.SeqRecord().ID.String())
	}
}

func TestNewFromPathUnhandledExtensionFallsBackToContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(path, []byte(fastaFixture), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r, err := NewFromPath(path, 0)
	if err != nil {
		t.Fatalf("NewFromPath: %v", err)
	}
	defer r.Close()

	if !r.Next() {
		t.Fatalf("Next: %v", r.Err())
	}
	if r.SeqRecord().ID.String() != "chr1 first" {
		t.Errorf("ID = %q", r.SeqRecord().ID.String())
	}
}

func TestNewFromPathNonexistent(t *testing.T) {
	_, err := NewFromPath("/nonexistent/path/does-not-exist.fa", 0)
	if !IsKind(err, FileOpenError) {
		t.Fatalf("err = %v, want a FileOpenError", err)
	}
}

func TestNewFromPathUnrecognisedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.bin")
	if err := os.WriteFile(path, []byte("not a recognised format at all"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := NewFromPath(path, 0)
	if !IsKind(err, UnhandledExtensionError) {
		t.Fatalf("err = %v, want an UnhandledExtensionError", err)
	}
}

func TestNewRequiresFormat(t *testing.T) {
	_, err := New(strings.NewReader(fastaFixture), 0)
	if !IsKind(err, UnhandledExtensionError) {
		t.Fatalf("err = %v, want an UnhandledExtensionError", err)
	}
}

func TestReaderEmptyInput(t *testing.T) {
	r, err := New(strings.NewReader(""), FASTA)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()
	if r.Next() {
		t.Fatal("expected no records from an empty stream")
	}
	if !IsKind(r.Err(), FileOpenError) {
		t.Fatalf("Err = %v, want a FileOpenError", r.Err())
	}
}

func TestReaderEmptyInputVCF(t *testing.T) {
	r, err := New(strings.NewReader(""), VCF)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()
	if r.Next() {
		t.Fatal("expected no records from an empty stream")
	}
	if !IsKind(r.Err(), FileOpenError) {
		t.Fatalf("Err = %v, want a FileOpenError", r.Err())
	}
}

func TestReaderHeaderBeforeNextDoesNotDropFirstRecord(t *testing.T) {
	r, err := New(strings.NewReader(vcfRegionFixture), VCF)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Close()

	if h := r.Header(); len(h.Contigs) == 0 {
		t.Fatalf("Header: got no contigs, want at least one")
	}

	var ids []string
	for r.Next() {
		ids = append(ids, r.VariantRecord().ID.String())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	want := []string{"a", "b", "c", "d", "e"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v (calling Header before the loop must not skip record 0)", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}
