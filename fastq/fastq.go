// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fastq implements the FASTQ format handler (component D):
// four-line records `@id / seq / + / qual`, with the invariant
// |qual| == |seq|. FASTQ has no header.
package fastq

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/biogo/htsio/record"
)

// Representation is re-exported so callers configuring a Handler
// directly need not import record.
type Representation = record.Representation

const (
	Shallow = record.Shallow
	Deep    = record.Deep
)

var (
	errMalformed   = errors.New("fastq: expected '@' at start of record")
	errNoSep       = errors.New("fastq: expected '+' separator line")
	errTruncated   = errors.New("fastq: truncated record")
	errLenMismatch = errors.New("fastq: qual length does not match seq length")
)

// Option configures a Handler at construction.
type Option func(*Handler)

// WithTruncateIDs truncates each record's id at the first whitespace
// byte.
func WithTruncateIDs(v bool) Option {
	return func(h *Handler) { h.truncateIDs = v }
}

// WithRepresentation selects Shallow (the default) or Deep field
// storage.
func WithRepresentation(rep Representation) Option {
	return func(h *Handler) { h.rep = rep }
}

// Handler parses a stream of FASTQ records, reading them four lines
// at a time: id line, sequence line, '+' separator, quality line.
//
// Each of the four lines is read with its own ReadBytes call, which
// returns a freshly allocated slice rather than a view into a reused
// buffer: unlike a single-token bufio.Scanner loop, this lets every
// field of one record be aliased independently (the Shallow case)
// without the later lines of the same record overwriting the earlier
// ones' backing storage.
type Handler struct {
	src io.Reader
	br  *bufio.Reader

	truncateIDs bool
	rep         Representation
}

// NewHandler returns a Handler reading from r. The stream is left
// positioned at the first record's '@' line.
func NewHandler(r io.Reader, opts ...Option) *Handler {
	h := &Handler{src: r, br: bufio.NewReader(r)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ResetStream discards buffered look-ahead and re-wraps the
// underlying source in a fresh bufio.Reader. FASTQ is a sequence
// format and is never region-filtered, so the engine never actually
// calls this; implemented for interface completeness.
func (h *Handler) ResetStream() {
	h.br = bufio.NewReader(h.src)
}

// ParseNext advances past one four-line record and writes its fields
// into rec. It returns (false, nil) at clean end of input.
func (h *Handler) ParseNext(rec *record.SeqRecord) (bool, error) {
	idLine, err := h.readLine()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	if len(idLine) == 0 || idLine[0] != '@' {
		return false, errMalformed
	}
	id := idLine[1:]
	if h.truncateIDs {
		if i := bytes.IndexAny(id, " \t"); i >= 0 {
			id = id[:i]
		}
	}

	seq, err := h.readLine()
	if err != nil {
		return false, errAtLine(errTruncated, err)
	}

	sep, err := h.readLine()
	if err != nil {
		return false, errAtLine(errTruncated, err)
	}
	if len(sep) == 0 || sep[0] != '+' {
		return false, errNoSep
	}

	qual, err := h.readLine()
	if err != nil {
		return false, errAtLine(errTruncated, err)
	}
	if len(qual) != len(seq) {
		return false, fmt.Errorf("%w: seq=%d qual=%d", errLenMismatch, len(seq), len(qual))
	}

	rec.ID.Set(id, h.rep)
	rec.Seq.Set(seq, h.rep)
	rec.Qual.Set(qual, h.rep)
	rec.Rep = h.rep
	return true, nil
}

// readLine reads one line, stripped of its trailing newline. io.EOF
// is returned only when no bytes at all were read before end of
// input; a final line with no trailing newline is returned intact.
func (h *Handler) readLine() ([]byte, error) {
	line, err := h.br.ReadBytes('\n')
	if len(line) == 0 && err != nil {
		return nil, err
	}
	if err != nil && err != io.EOF {
		return nil, err
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

func errAtLine(sentinel, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %v", sentinel, cause)
	}
	return sentinel
}
