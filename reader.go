// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package htsio

import (
	"io"

	"github.com/biogo/htsio/bcf"
	"github.com/biogo/htsio/fasta"
	"github.com/biogo/htsio/fastq"
	"github.com/biogo/htsio/vcf"
)

// Reader is the format-dispatching, record-oriented engine (component
// F). It is constructed over a path or a stream and options; no
// parsing happens until the first call to Next, which lazily builds
// the per-format handler, performs a tabix-driven region jump if
// configured, and pulls the first record.
//
// A Reader is single-pass, forward-only and not safe for concurrent
// use; it is not copyable and should be discarded, not reused, once
// exhausted or once an error has been observed.
type Reader struct {
	opts   Options
	format Format
	path   string

	st *stream

	seq     sequenceHandler
	variant variantHandler

	inited    bool
	initErr   error
	atEnd     bool
	filtering bool

	// primed is set whenever init or Reopen has already pumped a
	// record into seqRec/varRec on the caller's behalf (init always
	// does; Reopen does when re-invoked after the Reader is already
	// initialised), so the following Next call reports that record
	// instead of advancing past it. Next's own !inited branch, which
	// triggers init and reports its pumped record itself in the same
	// call, clears the flag immediately so it never lingers into the
	// call after that.
	primed bool

	seqRec SeqRecord
	varRec VariantRecord
	probe  probeRecord
}

// NewFromPath opens path and returns a Reader for it. If format is
// zero, it is inferred first from path's extension, then, if that is
// ambiguous, from the content of the (possibly BGZF-decompressed)
// stream. A non-existent path or an unrecognised extension/content
// combination raises an error immediately, before any record parsing.
func NewFromPath(path string, format Format, opts ...Option) (*Reader, error) {
	o := newOptions(opts)

	if format == 0 {
		if f, ok := detectByExtension(path); ok {
			format = f
		}
	}

	st, err := openPath(path)
	if err != nil {
		return nil, err
	}

	if format == 0 {
		b, _ := st.sniff(3)
		f, ok := detectByContent(b)
		if !ok {
			st.Close()
			return nil, newError(UnhandledExtensionError,
				"cannot determine format from extension or content of "+path, nil)
		}
		format = f
	}

	return &Reader{opts: o, format: format, path: path, st: st}, nil
}

// New wraps an existing stream. format is required: there is no
// filename to infer an extension from, and the stream's content is not
// sniffed to infer one. New itself reads only the two bytes it peeks
// to detect BGZF compression.
func New(r io.Reader, format Format, opts ...Option) (*Reader, error) {
	if format == 0 {
		return nil, newError(UnhandledExtensionError, "format is required when constructing from a stream", nil)
	}
	st, err := openReader(r)
	if err != nil {
		return nil, err
	}
	return &Reader{opts: newOptions(opts), format: format, st: st}, nil
}

// Header returns the parsed variant header, lazily forcing
// initialisation if Next has not yet been called. Forcing init here
// pumps the first record the same way the first call to Next would;
// that pumped record is not lost, since init leaves primed set and the
// following Next call reports it rather than advancing past it. It
// panics if the Reader was constructed for a sequence format
// (FASTA/FASTQ), which have no header.
func (r *Reader) Header() *Header {
	if !r.inited {
		r.init()
	}
	if r.variant == nil {
		panic("htsio: Header called on a sequence-format Reader")
	}
	return r.variant.Header()
}

// init builds the format handler, optionally jumps to the configured
// region, and primes the first record, leaving primed set so whichever
// call reaches Next first reports that record instead of skipping past
// it. It runs at most once.
func (r *Reader) init() {
	if r.inited {
		return
	}
	r.inited = true

	if b, err := r.st.sniff(1); len(b) == 0 && err != nil {
		r.initErr = newError(FileOpenError, "source is empty", nil)
		r.atEnd = true
		return
	}

	switch r.format {
	case FASTA:
		r.seq = fasta.NewHandler(r.st,
			fasta.WithTruncateIDs(r.opts.TruncateIDsAtFirstWhitespace),
			fasta.WithRepresentation(r.opts.Representation))
	case FASTQ:
		r.seq = fastq.NewHandler(r.st,
			fastq.WithTruncateIDs(r.opts.TruncateIDsAtFirstWhitespace),
			fastq.WithRepresentation(r.opts.Representation))
	case VCF:
		h, err := vcf.NewHandler(r.st,
			vcf.WithRepresentation(r.opts.Representation))
		if err != nil {
			r.initErr = newError(FormatError, "parsing VCF header", err)
			r.atEnd = true
			return
		}
		r.variant = h
	case BCF:
		h, err := bcf.NewHandler(r.st,
			bcf.WithRepresentation(r.opts.Representation))
		if err != nil {
			r.initErr = newError(FormatError, "parsing BCF header", err)
			r.atEnd = true
			return
		}
		r.variant = h
	default:
		r.initErr = newError(FileOpenError, "unknown format", nil)
		r.atEnd = true
		return
	}

	if r.opts.Region.set() {
		if r.variant == nil {
			r.initErr = newError(UnsupportedOperationError, "region filtering requires a variant-family format (VCF or BCF)", nil)
			r.atEnd = true
			return
		}
		r.filtering = true
		unreachable, err := r.jumpToRegion()
		if err != nil {
			r.initErr = err
			r.atEnd = true
			return
		}
		if unreachable {
			r.atEnd = true
			return
		}
	}

	r.readNext()
	r.primed = true
}

// Next advances the Reader by one record. It returns false at clean
// end of input or after any error; call Err to distinguish the two.
func (r *Reader) Next() bool {
	if !r.inited {
		r.init()
		r.primed = false
		return !r.atEnd
	}
	if r.primed {
		r.primed = false
		return !r.atEnd
	}
	if r.atEnd {
		return false
	}
	r.readNext()
	return !r.atEnd
}

// Err returns the error that terminated iteration, or nil if the
// Reader is not yet exhausted or reached clean end of input.
func (r *Reader) Err() error {
	return r.initErr
}

// SeqRecord returns the most recently read sequence-family record.
// Its fields alias the Reader's internal buffer when the Reader uses
// Shallow representation, and are invalidated by the next call to
// Next.
func (r *Reader) SeqRecord() *SeqRecord { return &r.seqRec }

// VariantRecord returns the most recently read variant-family
// record, subject to the same shallow-invalidation rule as SeqRecord.
func (r *Reader) VariantRecord() *VariantRecord { return &r.varRec }

// Reopen clears end-of-input, replaces the active region, and
// re-invokes region jumping and the first record pump; the pumped
// record, if any, is reported by the following call to Next exactly
// as if Next itself had just advanced to it. It never re-parses the
// header and never replaces the format handler, so a *Header obtained
// before Reopen remains valid and byte-identical after it. Reopen may
// be called as often as desired.
func (r *Reader) Reopen(region Region) error {
	if !r.inited {
		r.opts.Region = region
		return nil
	}
	if r.variant == nil {
		return newError(UnsupportedOperationError, "Reopen requires a variant-family format (VCF or BCF)", nil)
	}
	r.opts.Region = region
	r.atEnd = false
	r.initErr = nil
	r.filtering = region.set()

	if r.filtering {
		unreachable, err := r.jumpToRegion()
		if err != nil {
			// The missing-index error is the only FileOpenError
			// jumpToRegion raises without a cause; on Reopen it is
			// reported as an unsupported operation.
			if e, ok := err.(*Error); ok && e.Kind == FileOpenError && e.Err == nil {
				err = newError(UnsupportedOperationError, e.Msg, nil)
			}
			r.initErr = err
			r.atEnd = true
			return err
		}
		if unreachable {
			r.atEnd = true
			return nil
		}
	}
	r.readNext()
	r.primed = true
	return r.initErr
}

// Close releases the underlying stream's resources.
func (r *Reader) Close() error {
	if r.st == nil {
		return nil
	}
	return r.st.Close()
}

// readNext implements read_next_record (spec §4.F.4).
func (r *Reader) readNext() {
	if r.atEnd {
		return
	}

	if !r.filtering {
		if r.seq != nil {
			ok, err := r.seq.ParseNext(&r.seqRec)
			if err != nil {
				r.initErr = newError(FormatError, "parsing "+r.format.String()+" record", err)
				r.atEnd = true
				return
			}
			if !ok {
				r.atEnd = true
			}
			return
		}
		ok, err := r.variant.ParseNext(&r.varRec)
		if err != nil {
			r.initErr = newError(FormatError, "parsing "+r.format.String()+" record", err)
			r.atEnd = true
			return
		}
		if !ok {
			r.atEnd = true
		}
		return
	}

	region := r.opts.Region
	for {
		ok, err := r.variant.ParseProbeNext(&r.probe)
		if err != nil {
			r.initErr = newError(FormatError, "parsing "+r.format.String()+" record", err)
			r.atEnd = true
			return
		}
		if !ok {
			r.atEnd = true
			return
		}

		beg, end := probeInterval(r.probe.Pos, len(r.probe.Ref.Bytes()))
		switch compare(r.variant.Header(), r.probe.Chrom.String(), beg, end, region) {
		case less:
			continue
		case equivalent:
			if err := r.variant.ParseCurrent(&r.varRec); err != nil {
				r.initErr = newError(FormatError, "materialising "+r.format.String()+" record", err)
				r.atEnd = true
			}
			return
		default: // greater
			r.atEnd = true
			return
		}
	}
}
