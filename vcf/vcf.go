// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vcf implements the VCF format handler (component D):
// tab-separated, optionally BGZF-compressed, a '#'-prefixed header
// followed by body lines with fixed and per-sample columns.
package vcf

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

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
	errNoHeader        = errors.New("vcf: missing #CHROM column header line")
	errTruncated       = errors.New("vcf: truncated record")
	errNoCurrentProbe  = errors.New("vcf: ParseCurrent called before any ParseProbeNext")
	errMalformedRecord = errors.New("vcf: malformed record")
)

var tab = []byte("\t")

// Option configures a Handler at construction.
type Option func(*Handler)

// WithRepresentation selects Shallow (the default) or Deep field
// storage.
func WithRepresentation(rep Representation) Option {
	return func(h *Handler) { h.rep = rep }
}

// Handler parses a stream of VCF records. Its header is read once at
// construction; ParseProbeNext/ParseCurrent split parsing into a
// cheap positional probe and a full materialisation of the same line,
// for the region-filtering state machine.
type Handler struct {
	src io.Reader
	br  *bufio.Reader

	header *record.Header
	rep    Representation

	// curLine holds the raw bytes of the record most recently read by
	// ParseProbeNext, for a following ParseCurrent to re-parse fully
	// without consuming further input.
	curLine []byte
}

// NewHandler returns a Handler reading from r, having consumed and
// parsed the leading '##'/'#CHROM' header block. The stream is left
// positioned at the first data record.
func NewHandler(r io.Reader, opts ...Option) (*Handler, error) {
	h := &Handler{src: r, br: bufio.NewReader(r)}
	for _, opt := range opts {
		opt(h)
	}
	header, err := h.parseHeader()
	if err != nil {
		return nil, err
	}
	h.header = header
	return h, nil
}

// Header returns the parsed header. It is read at construction and
// never replaced.
func (h *Handler) Header() *record.Header { return h.header }

// ResetStream discards buffered look-ahead and any cached probe line,
// and re-wraps the underlying source in a fresh bufio.Reader, so the
// next read pulls bytes from wherever the engine has just seeked to.
func (h *Handler) ResetStream() {
	h.br = bufio.NewReader(h.src)
	h.curLine = nil
}

// ParseNext advances past one record and writes its fields into rec.
// It returns (false, nil) at clean end of input.
func (h *Handler) ParseNext(rec *record.VariantRecord) (bool, error) {
	line, err := h.readLine()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	if err := h.parseLine(line, rec); err != nil {
		return false, err
	}
	return true, nil
}

// ParseProbeNext advances past one record, writing only chrom, pos
// and ref into probe.
func (h *Handler) ParseProbeNext(probe *record.VariantRecord) (bool, error) {
	line, err := h.readLine()
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	h.curLine = line
	if err := h.parseProbeLine(line, probe); err != nil {
		return false, err
	}
	return true, nil
}

// ParseCurrent fully materialises the record most recently probed by
// ParseProbeNext into rec, without consuming further input.
func (h *Handler) ParseCurrent(rec *record.VariantRecord) error {
	if h.curLine == nil {
		return errNoCurrentProbe
	}
	return h.parseLine(h.curLine, rec)
}

func (h *Handler) parseProbeLine(line []byte, probe *record.VariantRecord) error {
	fields := bytes.SplitN(line, tab, 5)
	if len(fields) < 4 {
		return fmt.Errorf("%w: line has %d columns, want at least 4", errTruncated, len(fields))
	}
	probe.Chrom.Set(fields[0], h.rep)
	pos, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: parsing POS: %v", errMalformedRecord, err)
	}
	probe.Pos = pos
	probe.Ref.Set(fields[3], h.rep)
	return nil
}

func (h *Handler) parseLine(line []byte, rec *record.VariantRecord) error {
	fields := bytes.Split(line, tab)
	if len(fields) < 8 {
		return fmt.Errorf("%w: line has %d columns, want at least 8", errTruncated, len(fields))
	}

	rep := h.rep
	rec.Chrom.Set(fields[0], rep)
	pos, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: parsing POS: %v", errMalformedRecord, err)
	}
	rec.Pos = pos
	rec.ID.Set(fields[2], rep)
	rec.Ref.Set(fields[3], rep)

	altFields := bytes.Split(fields[4], []byte(","))
	if cap(rec.Alt) < len(altFields) {
		rec.Alt = make([]record.Field, len(altFields))
	} else {
		rec.Alt = rec.Alt[:len(altFields)]
	}
	for i, a := range altFields {
		rec.Alt[i].Set(a, rep)
	}

	if string(fields[5]) == "." {
		rec.Qual = math.NaN()
	} else {
		q, err := strconv.ParseFloat(string(fields[5]), 64)
		if err != nil {
			return fmt.Errorf("%w: parsing QUAL: %v", errMalformedRecord, err)
		}
		rec.Qual = q
	}

	if string(fields[6]) == "." {
		rec.Filter = rec.Filter[:0]
	} else {
		filterFields := bytes.Split(fields[6], []byte(";"))
		if cap(rec.Filter) < len(filterFields) {
			rec.Filter = make([]record.Field, len(filterFields))
		} else {
			rec.Filter = rec.Filter[:len(filterFields)]
		}
		for i, f := range filterFields {
			rec.Filter[i].Set(f, rep)
		}
	}

	rec.Info.Set(fields[7], rep)

	if len(fields) > 9 {
		formatKeys := bytes.Split(fields[8], []byte(":"))
		samples := fields[9:]
		sampleFields := make([][][]byte, len(samples))
		for i, s := range samples {
			sampleFields[i] = bytes.Split(s, []byte(":"))
		}
		genotypes := make(map[string][]record.Field, len(formatKeys))
		for ki, key := range formatKeys {
			vals := make([]record.Field, len(samples))
			for si := range samples {
				var v []byte
				if ki < len(sampleFields[si]) {
					v = sampleFields[si][ki]
				}
				vals[si].Set(v, rep)
			}
			genotypes[string(key)] = vals
		}
		rec.Genotypes = genotypes
	} else {
		rec.Genotypes = nil
	}

	rec.Rep = rep
	return nil
}

// readLine reads the next non-blank line, stripped of its trailing
// newline. io.EOF is returned only once no further non-blank line is
// available.
func (h *Handler) readLine() ([]byte, error) {
	for {
		line, err := h.br.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			return nil, err
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		trimmed := bytes.TrimRight(line, "\r\n")
		if len(trimmed) != 0 {
			return trimmed, nil
		}
		if err == io.EOF {
			return nil, io.EOF
		}
	}
}

// ParseHeaderText parses a complete '#'-prefixed VCF header block
// (the same text BCF embeds verbatim as its header block) into a
// Header. It is exported so the bcf package can reuse the same header
// model instead of duplicating the meta-line grammar.
func ParseHeaderText(text []byte) (*record.Header, error) {
	header := &record.Header{}
	sawColumnLine := false
	for _, line := range bytes.Split(text, []byte("\n")) {
		line = bytes.TrimRight(line, "\r")
		if len(line) == 0 || line[0] != '#' {
			continue
		}
		switch {
		case bytes.HasPrefix(line, []byte("##")):
			parseMetaLine(line[2:], header)
		case bytes.HasPrefix(line, []byte("#CHROM")):
			fields := bytes.Split(line, tab)
			if len(fields) > 9 {
				header.Samples = make([]string, len(fields)-9)
				for i, f := range fields[9:] {
					header.Samples[i] = string(f)
				}
			}
			sawColumnLine = true
		default:
			header.Extra = append(header.Extra, string(bytes.TrimPrefix(line, []byte("#"))))
		}
	}
	if !sawColumnLine {
		return nil, errNoHeader
	}
	return header, nil
}

// parseHeader consumes and parses the leading '#'-prefixed header
// block, stopping (without consuming) at the first data line.
func (h *Handler) parseHeader() (*record.Header, error) {
	header := &record.Header{}
	sawColumnLine := false
	for {
		b, err := h.br.Peek(1)
		if err != nil || b[0] != '#' {
			break
		}
		line, err := h.br.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		line = bytes.TrimRight(line, "\r\n")
		switch {
		case bytes.HasPrefix(line, []byte("##")):
			parseMetaLine(line[2:], header)
		case bytes.HasPrefix(line, []byte("#CHROM")):
			fields := bytes.Split(line, tab)
			if len(fields) > 9 {
				header.Samples = make([]string, len(fields)-9)
				for i, f := range fields[9:] {
					header.Samples[i] = string(f)
				}
			}
			sawColumnLine = true
		default:
			header.Extra = append(header.Extra, string(bytes.TrimPrefix(line, []byte("#"))))
		}
		if sawColumnLine {
			break
		}
	}
	if !sawColumnLine {
		return nil, errNoHeader
	}
	return header, nil
}

// parseMetaLine parses one "##key=value" line's body (key and value,
// without the leading "##") into header.
func parseMetaLine(body []byte, header *record.Header) {
	eq := bytes.IndexByte(body, '=')
	if eq < 0 {
		header.Extra = append(header.Extra, "##"+string(body))
		return
	}
	key := string(body[:eq])
	value := body[eq+1:]
	switch key {
	case "contig":
		tags := parseTagList(value)
		length, _ := strconv.ParseInt(tags["length"], 10, 64)
		header.Contigs = append(header.Contigs, record.Contig{Name: tags["ID"], Length: length})
	case "INFO":
		tags := parseTagList(value)
		header.Info = append(header.Info, record.FieldDef{
			ID: tags["ID"], Type: tags["Type"], Number: tags["Number"], Description: tags["Description"],
		})
	case "FORMAT":
		tags := parseTagList(value)
		header.Format = append(header.Format, record.FieldDef{
			ID: tags["ID"], Type: tags["Type"], Number: tags["Number"], Description: tags["Description"],
		})
	default:
		header.Extra = append(header.Extra, "##"+key+"="+string(value))
	}
}

// parseTagList parses a "<ID=chr1,length=249250621>"-shaped value
// into its key/value tags, respecting double-quoted values that may
// themselves contain commas (as Description text does).
func parseTagList(value []byte) map[string]string {
	s := strings.TrimSuffix(strings.TrimPrefix(string(value), "<"), ">")

	var parts []string
	var tok strings.Builder
	inQuotes := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			tok.WriteByte(c)
		case c == ',' && !inQuotes:
			parts = append(parts, tok.String())
			tok.Reset()
		default:
			tok.WriteByte(c)
		}
	}
	if tok.Len() > 0 {
		parts = append(parts, tok.String())
	}

	tags := make(map[string]string, len(parts))
	for _, p := range parts {
		eq := strings.IndexByte(p, '=')
		if eq < 0 {
			continue
		}
		tags[p[:eq]] = strings.Trim(p[eq+1:], `"`)
	}
	return tags
}
