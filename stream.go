// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package htsio

import (
	"bufio"
	"io"
	"os"

	"golang.org/x/exp/mmap"

	"github.com/biogo/htsio/bgzf"
)

// stream is the transparent-decompression layer (component A). It
// wraps either a plain byte source or a BGZF-compressed one behind a
// single io.Reader, and exposes the seek_primary/skip_n operations
// region filtering needs when the source is BGZF.
type stream struct {
	r      io.Reader
	br     *bufio.Reader
	bg     *bgzf.Reader
	closer io.Closer
}

// sniff peeks the next n bytes without consuming them: they remain
// available to the next Read, satisfying the non-destructive
// detection requirement of spec §4.A.
func (s *stream) sniff(n int) ([]byte, error) {
	if s.br == nil {
		s.br = bufio.NewReader(s.r)
		s.r = s.br
	}
	return s.br.Peek(n)
}

// openPath opens path for reading and installs the decompression
// layer if the content sniffs as BGZF. Uncompressed local files are
// mapped with golang.org/x/exp/mmap and read sequentially through
// ReadAt, which copies out of the mapping: shallow record fields alias
// the handlers' own line slices, not the mapped file.
func openPath(path string) (*stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(FileOpenError, "cannot open source", err)
	}

	magic := make([]byte, 2)
	n, _ := io.ReadFull(f, magic)
	if n == 2 && bgzf.IsMagic(magic) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, newError(FileOpenError, "cannot rewind source", err)
		}
		bg, err := bgzf.NewReader(f)
		if err != nil {
			f.Close()
			return nil, newError(FormatError, "invalid BGZF stream", err)
		}
		return &stream{r: bg, bg: bg, closer: f}, nil
	}
	f.Close()

	m, err := mmap.Open(path)
	if err != nil {
		return nil, newError(FileOpenError, "cannot map source", err)
	}
	return &stream{r: newMmapReader(m), closer: m}, nil
}

// openReader installs the decompression layer over an existing
// io.Reader, sniffing its first two bytes without discarding them:
// they are buffered and replayed to the downstream parser.
func openReader(r io.Reader) (*stream, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && bgzf.IsMagic(magic) {
		bg, err := bgzf.NewReader(br)
		if err != nil {
			return nil, newError(FormatError, "invalid BGZF stream", err)
		}
		return &stream{r: bg, bg: bg}, nil
	}
	return &stream{r: br}, nil
}

func (s *stream) Read(p []byte) (int, error) { return s.r.Read(p) }

// SeekPrimary repositions the underlying BGZF block cursor. It raises
// UnsupportedOperationError when the stream is not BGZF-backed.
func (s *stream) SeekPrimary(disk int64) error {
	if s.bg == nil {
		return newError(UnsupportedOperationError, "seek_primary on a non-BGZF stream", nil)
	}
	if err := s.bg.SeekPrimary(disk); err != nil {
		return newError(UnsupportedOperationError, "seek_primary failed", err)
	}
	if s.br != nil {
		// Drop bytes sniff buffered from before the seek.
		s.br.Reset(s.bg)
	}
	return nil
}

// SkipN advances the logical post-inflation cursor by n bytes.
func (s *stream) SkipN(n int) error {
	if s.bg == nil {
		_, err := io.CopyN(io.Discard, s.r, int64(n))
		return err
	}
	return s.bg.SkipN(n)
}

func (s *stream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// mmapReader adapts an mmap.ReaderAt into a sequential io.Reader, for
// the uncompressed-local-file fast path.
type mmapReader struct {
	r   *mmap.ReaderAt
	off int64
}

func newMmapReader(r *mmap.ReaderAt) *mmapReader { return &mmapReader{r: r} }

func (m *mmapReader) Read(p []byte) (int, error) {
	n, err := m.r.ReadAt(p, m.off)
	m.off += int64(n)
	return n, err
}
