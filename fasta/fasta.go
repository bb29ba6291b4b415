// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fasta implements the FASTA format handler (component D):
// lines beginning with '>' start a record; subsequent non-'>' lines
// concatenate into its sequence. FASTA has no quality scores and no
// header, matching the degenerate case of the shared variant header
// model.
package fasta

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/biogo/htsio/record"
)

// errMalformed is returned when a non-blank line is encountered where
// a record's leading '>' line is expected.
var errMalformed = errors.New("fasta: expected '>' at start of record")

// Representation is re-exported so callers configuring a Handler
// directly (outside the root package) need not import record.
type Representation = record.Representation

const (
	Shallow = record.Shallow
	Deep    = record.Deep
)

// Option configures a Handler at construction.
type Option func(*Handler)

// WithTruncateIDs truncates each record's id at the first whitespace
// byte, discarding any description text following it (the faidx
// convention: ">chr1 a description" becomes id "chr1").
func WithTruncateIDs(v bool) Option {
	return func(h *Handler) { h.truncateIDs = v }
}

// WithRepresentation selects Shallow (the default) or Deep field
// storage.
func WithRepresentation(rep Representation) Option {
	return func(h *Handler) { h.rep = rep }
}

// Handler parses a stream of FASTA records. It satisfies the
// sequence-family handler contract: new, parse_next_record_into,
// reset_stream.
type Handler struct {
	src io.Reader
	br  *bufio.Reader

	// header holds a '>' line already read as look-ahead for the next
	// record; nil once consumed or at end of input.
	header []byte

	truncateIDs bool
	rep         Representation

	done bool
}

// NewHandler returns a Handler reading from r. FASTA has no header to
// parse, so the stream is left positioned at the first record's '>'
// line; the handler reads it lazily on the first call to ParseNext.
func NewHandler(r io.Reader, opts ...Option) *Handler {
	h := &Handler{src: r, br: bufio.NewReader(r)}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ResetStream discards any buffered look-ahead and re-wraps the
// underlying source in a fresh bufio.Reader, so the next read pulls
// bytes from wherever the engine has just seeked to. FASTA is a
// sequence format and is never region-filtered, so the engine never
// actually calls this in practice; it is implemented for interface
// completeness and in case a caller uses the handler standalone.
func (h *Handler) ResetStream() {
	h.br = bufio.NewReader(h.src)
	h.header = nil
	h.done = false
}

// ParseNext advances past one record and writes its fields into rec.
// It returns (false, nil) at clean end of input.
func (h *Handler) ParseNext(rec *record.SeqRecord) (bool, error) {
	if h.done {
		return false, nil
	}

	if h.header == nil {
		line, err := h.readHeaderLine()
		if err != nil {
			if err == io.EOF {
				h.done = true
				return false, nil
			}
			return false, err
		}
		h.header = line
	}

	id := h.header[1:]
	if h.truncateIDs {
		if i := bytes.IndexAny(id, " \t"); i >= 0 {
			id = id[:i]
		}
	}

	var seq []byte
	for {
		line, err := h.br.ReadBytes('\n')
		line = bytes.TrimRight(line, "\r\n")
		if len(line) > 0 {
			if line[0] == '>' {
				h.header = line
				break
			}
			seq = append(seq, line...)
		}
		if err != nil {
			h.header = nil
			break
		}
	}

	rec.ID.Set(id, h.rep)
	rec.Seq.Set(seq, h.rep)
	rec.Qual.Set(nil, h.rep)
	rec.Rep = h.rep
	return true, nil
}

// readHeaderLine reads lines until it finds a non-blank '>' line,
// matching fai's tolerance of blank lines between records.
func (h *Handler) readHeaderLine() ([]byte, error) {
	for {
		line, err := h.br.ReadBytes('\n')
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) != 0 {
			if trimmed[0] != '>' {
				return nil, errMalformed
			}
			return trimmed, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
