// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package htsio provides a format-dispatching, record-oriented reader
// for genomic sequence and variant files (FASTA, FASTQ, VCF and BCF),
// optionally BGZF-compressed and optionally region-filtered via a
// tabix index.
//
// A Reader is constructed over a file path or an existing stream and
// yields records lazily: construction opens the source and sniffs its
// first bytes but parses no records, the format handler and any
// tabix-driven seek happen on the first call to Next (or Header), and
// every Next call makes at most one further record available.
package htsio
