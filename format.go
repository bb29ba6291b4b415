// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package htsio

import (
	"path/filepath"
	"strings"
)

// Format identifies one of the four supported record families.
type Format int

const (
	_ Format = iota
	FASTA
	FASTQ
	VCF
	BCF
)

func (f Format) String() string {
	switch f {
	case FASTA:
		return "fasta"
	case FASTQ:
		return "fastq"
	case VCF:
		return "vcf"
	case BCF:
		return "bcf"
	default:
		return "unknown"
	}
}

// extensions maps a recognised file extension, after stripping a
// trailing ".gz"/".bgz" compression suffix, to its Format.
var extensions = map[string]Format{
	".fa":    FASTA,
	".fasta": FASTA,
	".fna":   FASTA,
	".fq":    FASTQ,
	".fastq": FASTQ,
	".vcf":   VCF,
	".bcf":   BCF,
}

// detectByExtension returns the Format registered for path's
// extension, and false if path's extension (after stripping a
// compression suffix) is not in the registered set.
func detectByExtension(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".gz" || ext == ".bgz" {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	f, ok := extensions[ext]
	return f, ok
}

var bcfMagic = []byte("BCF\x02\x02")

// detectByContent inspects the first non-whitespace bytes of a
// decompressed stream and returns the Format they indicate.
func detectByContent(b []byte) (Format, bool) {
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	if i >= len(b) {
		return 0, false
	}
	if len(b)-i >= 3 && string(b[i:i+3]) == string(bcfMagic[:3]) {
		return BCF, true
	}
	switch b[i] {
	case '>':
		return FASTA, true
	case '@':
		return FASTQ, true
	case '#':
		return VCF, true
	}
	return 0, false
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
