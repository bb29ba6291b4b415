// Copyright ©2012 The bíogo.bam Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"bufio"
	"bytes"
	"compress/flate"
	"compress/gzip"
	"io"
)

// Reader is a BGZF stream reader. It transparently inflates the
// concatenated gzip members of a BGZF stream and presents them as a
// single, seekable byte stream.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	gzip.Header
	r  io.Reader
	rs io.ReadSeeker // non-nil when r also implements io.Seeker

	chunk Chunk

	block *blockReader

	err error
}

// NewReader returns a new Reader reading BGZF data from r. The first
// member of r is inflated immediately to validate that it is in fact
// BGZF (carries the BC extra subfield) and to populate Header.
func NewReader(r io.Reader) (*Reader, error) {
	b, err := newBlockReader(r)
	if err != nil {
		return nil, err
	}
	bg := &Reader{
		Header: b.header(),
		r:      r,
		block:  b,
	}
	if rs, ok := r.(io.ReadSeeker); ok {
		bg.rs = rs
	}
	return bg, nil
}

// Read satisfies the io.Reader interface. It returns io.EOF only at the
// logical end of the stream, that is, after inflating the final, empty
// BGZF member; a truncated block or CRC mismatch is reported as a
// distinct non-EOF error.
func (bg *Reader) Read(p []byte) (int, error) {
	if bg.err != nil {
		return 0, bg.err
	}
	var h gzip.Header

	if bg.block.decompressed != nil {
		bg.block.beginTx()
	}

	if bg.block.decompressed == nil || bg.block.len() == 0 {
		h, bg.err = bg.block.reset(nil, 0)
		if bg.err != nil {
			return 0, bg.err
		}
		bg.Header = h
	}

	var n int
	for n < len(p) && bg.err == nil {
		var _n int
		_n, bg.err = bg.block.read(p[n:])
		if _n > 0 {
			bg.chunk = bg.block.endTx()
		}
		n += _n
		if bg.err == io.EOF {
			if n == len(p) {
				bg.err = nil
				break
			}
			h, bg.err = bg.block.reset(nil, 0)
			if bg.err != nil {
				break
			}
			bg.Header = h
		}
	}

	return n, bg.err
}

// ReadByte satisfies the io.ByteReader interface.
func (bg *Reader) ReadByte() (byte, error) {
	var p [1]byte
	for {
		n, err := bg.Read(p[:])
		if n == 1 {
			return p[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// LastChunk returns the BGZF virtual offset range spanned by the most
// recent Read.
func (bg *Reader) LastChunk() Chunk { return bg.chunk }

// SeekPrimary repositions the underlying stream to the start of the
// BGZF block at disk offset disk and invalidates the currently
// inflated block, forcing re-inflation on the next Read. It implements
// component A's seek_primary(disk_offset) operation.
//
// SeekPrimary returns ErrNotASeeker if the stream wrapped by the
// Reader does not support seeking.
func (bg *Reader) SeekPrimary(disk int64) error {
	if bg.rs == nil {
		return ErrNotASeeker
	}
	if _, err := bg.rs.Seek(disk, io.SeekStart); err != nil {
		bg.err = err
		return err
	}
	h, err := bg.block.reset(bg.r, disk)
	if err != nil {
		bg.err = err
		return err
	}
	bg.Header = h
	bg.err = nil
	return nil
}

// SkipN advances the logical, post-inflation cursor by n bytes without
// producing output, implementing component A's skip_n(count)
// operation. It is used to move to the intra-block offset of a BGZF
// virtual offset after a SeekPrimary to the containing block.
func (bg *Reader) SkipN(n int) error {
	if n == 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, bg, int64(n))
	return err
}

// Close releases the resources held by the Reader's current block.
func (bg *Reader) Close() error {
	if bg.block == nil || bg.block.gz == nil {
		return nil
	}
	return bg.block.gz.Close()
}

type blockReader struct {
	cr *countReader
	gz *gzip.Reader

	decompressed *bytes.Reader
	base         int64
	chunk        Chunk
}

func newBlockReader(r io.Reader) (*blockReader, error) {
	cr := makeReader(r)
	gz, err := gzip.NewReader(cr)
	if err != nil {
		return nil, err
	}
	if expectedBlockSize(gz.Header) < 0 {
		return nil, ErrNoBlockSize
	}
	b := &blockReader{cr: cr, gz: gz}
	if err := b.fill(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *blockReader) header() gzip.Header { return b.gz.Header }

// reset discards the current inflated block. If r is non-nil the
// underlying reader is known to have just been repositioned to off and
// a fresh gzip.Reader is installed over it; otherwise the next gzip
// member of the existing stream is inflated in place.
func (b *blockReader) reset(r io.Reader, off int64) (gzip.Header, error) {
	if r != nil {
		switch cr := b.cr.r.(type) {
		case reseter:
			cr.Reset(r)
		default:
			b.cr = makeReader(r)
		}
		b.cr.n = off
		b.base = off
		return b.gz.Header, b.fillFresh()
	}

	b.base = b.cr.n
	err := b.gz.Reset(b.cr)
	if err == nil && expectedBlockSize(b.gz.Header) < 0 {
		err = ErrNoBlockSize
	}
	if err != nil {
		return b.gz.Header, err
	}
	return b.gz.Header, b.fill()
}

// fillFresh (re)creates the gzip reader from scratch after a seek,
// since compress/gzip cannot reliably Reset a reader that has been
// repositioned to an arbitrary byte offset mid-stream.
func (b *blockReader) fillFresh() error {
	gz, err := gzip.NewReader(b.cr)
	if err != nil {
		return err
	}
	b.gz = gz
	if expectedBlockSize(b.gz.Header) < 0 {
		return ErrNoBlockSize
	}
	return b.fill()
}

func (b *blockReader) fill() error {
	b.gz.Multistream(false)
	var buf bytes.Buffer
	buf.Grow(MaxBlockSize)
	n, err := io.Copy(&buf, b.gz)
	if err != nil {
		return err
	}
	if n > MaxBlockSize {
		return ErrBlockOverflow
	}
	b.decompressed = bytes.NewReader(buf.Bytes())
	b.chunk = Chunk{Begin: Offset{File: b.base}, End: Offset{File: b.base}}
	return nil
}

func (b *blockReader) beginTx() { b.chunk.Begin = b.chunk.End }

func (b *blockReader) endTx() Chunk { return b.chunk }

func (b *blockReader) len() int {
	if b.decompressed == nil {
		return 0
	}
	return b.decompressed.Len()
}

func (b *blockReader) read(p []byte) (int, error) {
	n, err := b.decompressed.Read(p)
	b.chunk.End.Block += uint16(n)
	return n, err
}

func makeReader(r io.Reader) *countReader {
	switch r := r.(type) {
	case *countReader:
		panic("bgzf: illegal use of internal type")
	case flate.Reader:
		return &countReader{r: r}
	default:
		return &countReader{r: bufio.NewReader(r)}
	}
}

type countReader struct {
	r flate.Reader
	n int64
}

func (r *countReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.n += int64(n)
	return n, err
}

func (r *countReader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	r.n++
	return b, err
}

type reseter interface {
	Reset(io.Reader)
}

func expectedBlockSize(h gzip.Header) int {
	i := bytes.Index(h.Extra, bgzfExtraPrefix)
	if i < 0 || i+5 >= len(h.Extra) {
		return -1
	}
	return (int(h.Extra[i+4]) | int(h.Extra[i+5])<<8) + 1
}
