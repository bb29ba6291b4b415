// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package record holds the schema-parameterised record and header
// types shared by every format handler (fasta, fastq, vcf, bcf) and
// by the top-level reader engine, so that neither side needs to
// import the other.
package record

// Symbol is an opaque decoded alphabet element. Concrete alphabets
// (DNA5, AA27, Phred63, ...) are external collaborators: this package
// never constructs one beyond the degenerate alphabet below.
type Symbol byte

// Alphabet decodes raw input bytes into Symbol values. Implementations
// are supplied by the caller; this package only consumes the
// interface.
type Alphabet interface {
	// Decode returns the Symbol for byte b and true, or false if b
	// is not a member of the alphabet.
	Decode(b byte) (Symbol, bool)

	// Unknown returns the Symbol substituted for an undecodable
	// byte when the reader is configured to replace rather than
	// reject unknown symbols.
	Unknown() Symbol
}

// RawBytes is the identity alphabet: every byte decodes to itself.
var RawBytes Alphabet = rawBytesAlphabet{}

type rawBytesAlphabet struct{}

func (rawBytesAlphabet) Decode(b byte) (Symbol, bool) { return Symbol(b), true }
func (rawBytesAlphabet) Unknown() Symbol              { return '?' }

// DecodeInto decodes src through alphabet a into dst, which must have
// length len(src). It reports the first undecodable byte's index and
// false if strict is true and decoding fails; otherwise undecodable
// bytes are replaced with a.Unknown().
func DecodeInto(dst []Symbol, src []byte, a Alphabet, strict bool) (int, bool) {
	if a == nil {
		a = RawBytes
	}
	for i, b := range src {
		s, ok := a.Decode(b)
		if !ok {
			if strict {
				return i, false
			}
			s = a.Unknown()
		}
		dst[i] = s
	}
	return -1, true
}
