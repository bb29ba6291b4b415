// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bcf implements the BCF format handler (component D):
// little-endian binary framed inside BGZF; file magic BCF\x02\x02;
// per-record length-prefixed blocks with shared and format
// sub-blocks. BCF's outer BGZF layer is handled by the caller's
// stream, not by this package: it reads plain binary frames from r.
package bcf

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/biogo/htsio/record"
	"github.com/biogo/htsio/vcf"
)

// Representation is re-exported so callers configuring a Handler
// directly need not import record.
type Representation = record.Representation

const (
	Shallow = record.Shallow
	Deep    = record.Deep
)

var bcfMagic = [5]byte{'B', 'C', 'F', 0x02, 0x02}

var (
	errBadMagic        = errors.New("bcf: bad magic, not a BCF stream")
	errTruncated       = errors.New("bcf: truncated binary record")
	errMalformedRecord = errors.New("bcf: malformed binary record")
	errNoCurrentProbe  = errors.New("bcf: ParseCurrent called before any ParseProbeNext")
)

// Typed-atom type codes, per the BCF2 binary encoding.
const (
	typeMissing = 0
	typeInt8    = 1
	typeInt16   = 2
	typeInt32   = 3
	typeFloat   = 5
	typeChar    = 7
)

// Option configures a Handler at construction.
type Option func(*Handler)

// WithRepresentation selects Shallow (the default) or Deep field
// storage.
func WithRepresentation(rep Representation) Option {
	return func(h *Handler) { h.rep = rep }
}

// Handler parses a stream of BCF records. Its header is the same
// '#'-prefixed text VCF carries, embedded verbatim as a length-
// prefixed block after the file magic; dict is the combined
// INFO/FILTER/FORMAT dictionary BCF's binary fields index into,
// derived from that same text in declaration order.
type Handler struct {
	src io.Reader
	br  *bufio.Reader

	header *record.Header
	dict   []string
	rep    Representation

	curShared, curIndiv []byte
	hasCur              bool
}

// NewHandler returns a Handler reading from r, having consumed and
// parsed the file magic and embedded text header. The stream is left
// positioned at the first record's length-prefixed shared block.
func NewHandler(r io.Reader, opts ...Option) (*Handler, error) {
	h := &Handler{src: r, br: bufio.NewReader(r)}
	for _, opt := range opts {
		opt(h)
	}

	var magic [5]byte
	if _, err := io.ReadFull(h.br, magic[:]); err != nil {
		return nil, fmt.Errorf("bcf: reading magic: %w", err)
	}
	if magic != bcfMagic {
		return nil, errBadMagic
	}

	var lText uint32
	if err := binary.Read(h.br, binary.LittleEndian, &lText); err != nil {
		return nil, fmt.Errorf("bcf: reading header length: %w", err)
	}
	text := make([]byte, lText)
	if _, err := io.ReadFull(h.br, text); err != nil {
		return nil, fmt.Errorf("bcf: reading header text: %w", err)
	}
	text = bytes.TrimRight(text, "\x00")

	header, err := vcf.ParseHeaderText(text)
	if err != nil {
		return nil, fmt.Errorf("bcf: parsing embedded header: %w", err)
	}
	h.header = header
	h.dict = buildDictionary(text)
	return h, nil
}

// Header returns the parsed header. It is read at construction and
// never replaced.
func (h *Handler) Header() *record.Header { return h.header }

// ResetStream discards buffered look-ahead and any cached probe
// blocks, and re-wraps the underlying source in a fresh bufio.Reader.
func (h *Handler) ResetStream() {
	h.br = bufio.NewReader(h.src)
	h.hasCur = false
}

// ParseNext advances past one record and writes its fields into rec.
// It returns (false, nil) at clean end of input.
func (h *Handler) ParseNext(rec *record.VariantRecord) (bool, error) {
	shared, indiv, ok, err := h.readRecordBlocks()
	if err != nil || !ok {
		return false, err
	}
	if err := h.decode(shared, indiv, rec); err != nil {
		return false, err
	}
	return true, nil
}

// ParseProbeNext advances past one record, writing only chrom, pos
// and ref into probe.
func (h *Handler) ParseProbeNext(probe *record.VariantRecord) (bool, error) {
	shared, indiv, ok, err := h.readRecordBlocks()
	if err != nil || !ok {
		return false, err
	}
	h.curShared, h.curIndiv, h.hasCur = shared, indiv, true
	if err := h.decodeProbe(shared, probe); err != nil {
		return false, err
	}
	return true, nil
}

// ParseCurrent fully materialises the record most recently probed by
// ParseProbeNext into rec, without consuming further input.
func (h *Handler) ParseCurrent(rec *record.VariantRecord) error {
	if !h.hasCur {
		return errNoCurrentProbe
	}
	return h.decode(h.curShared, h.curIndiv, rec)
}

// readRecordBlocks reads one record's l_shared/l_indiv length prefixes
// and the shared/indiv byte blocks they describe.
func (h *Handler) readRecordBlocks() (shared, indiv []byte, ok bool, err error) {
	var lShared uint32
	if err := binary.Read(h.br, binary.LittleEndian, &lShared); err != nil {
		if err == io.EOF {
			return nil, nil, false, nil
		}
		return nil, nil, false, fmt.Errorf("%w: reading l_shared: %v", errTruncated, err)
	}
	var lIndiv uint32
	if err := binary.Read(h.br, binary.LittleEndian, &lIndiv); err != nil {
		return nil, nil, false, fmt.Errorf("%w: reading l_indiv: %v", errTruncated, err)
	}
	shared = make([]byte, lShared)
	if _, err := io.ReadFull(h.br, shared); err != nil {
		return nil, nil, false, fmt.Errorf("%w: reading shared block: %v", errTruncated, err)
	}
	if lIndiv > 0 {
		indiv = make([]byte, lIndiv)
		if _, err := io.ReadFull(h.br, indiv); err != nil {
			return nil, nil, false, fmt.Errorf("%w: reading indiv block: %v", errTruncated, err)
		}
	}
	return shared, indiv, true, nil
}

// sharedFixed holds the fields decoded from the start of every shared
// block, common to both the probe and the full decode path.
type sharedFixed struct {
	chromIdx       int32
	pos            int32
	nAllele, nInfo int
	nFmt, nSample  int
}

func (h *Handler) decodeFixed(c *cursor) sharedFixed {
	var f sharedFixed
	f.chromIdx = c.int32()
	f.pos = c.int32()
	c.int32() // rlen: the reference span: not needed, Ref's own length is used instead
	c.skip(4) // qual is read separately by the full decode path
	nAlleleInfo := c.uint32()
	f.nInfo = int(nAlleleInfo & 0xFFFF)
	f.nAllele = int(nAlleleInfo >> 16)
	nFmtSample := c.uint32()
	f.nFmt = int(nFmtSample & 0xFF)
	f.nSample = int(nFmtSample >> 8)
	return f
}

func (h *Handler) decodeProbe(shared []byte, probe *record.VariantRecord) error {
	c := &cursor{b: shared}
	// decodeFixed consumes the qual field's 4 bytes via skip, so qual
	// is unavailable here; re-derive the fixed fields with our own
	// cursor positioned the same way decode uses.
	f := h.decodeFixed(c)
	c.typedString() // id, discarded
	if f.nAllele < 1 {
		if c.err == nil {
			c.err = errMalformedRecord
		}
	}
	ref := c.typedString()
	if c.err != nil {
		return fmt.Errorf("%w: %v", errMalformedRecord, c.err)
	}
	h.setChrom(&probe.Chrom, f.chromIdx)
	probe.Pos = int64(f.pos) + 1
	probe.Ref.Set(ref, h.rep)
	return nil
}

func (h *Handler) decode(shared, indiv []byte, rec *record.VariantRecord) error {
	rep := h.rep
	c := &cursor{b: shared}
	chromIdx := c.int32()
	pos := c.int32()
	c.int32() // rlen
	qualBits := c.uint32()
	nAlleleInfo := c.uint32()
	nInfo := int(nAlleleInfo & 0xFFFF)
	nAllele := int(nAlleleInfo >> 16)
	nFmtSample := c.uint32()
	nFmt := int(nFmtSample & 0xFF)
	nSample := int(nFmtSample >> 8)
	_ = nInfo

	id := c.typedString()
	if nAllele < 1 && c.err == nil {
		c.err = errMalformedRecord
	}
	alleles := make([][]byte, nAllele)
	for i := 0; i < nAllele && c.err == nil; i++ {
		alleles[i] = c.typedString()
	}
	filterIdx := c.typedIntVector()
	infoStart := c.off
	if c.err != nil {
		return fmt.Errorf("%w: %v", errMalformedRecord, c.err)
	}
	infoRaw := shared[infoStart:]

	h.setChrom(&rec.Chrom, chromIdx)
	rec.Pos = int64(pos) + 1
	if len(id) == 0 {
		rec.ID.Set([]byte("."), rep)
	} else {
		rec.ID.Set(id, rep)
	}
	rec.Ref.Set(alleles[0], rep)

	altN := nAllele - 1
	if cap(rec.Alt) < altN {
		rec.Alt = make([]record.Field, altN)
	} else {
		rec.Alt = rec.Alt[:altN]
	}
	for i := 0; i < altN; i++ {
		rec.Alt[i].Set(alleles[i+1], rep)
	}

	if len(filterIdx) == 0 {
		rec.Filter = rec.Filter[:0]
	} else {
		if cap(rec.Filter) < len(filterIdx) {
			rec.Filter = make([]record.Field, len(filterIdx))
		} else {
			rec.Filter = rec.Filter[:len(filterIdx)]
		}
		for i, fi := range filterIdx {
			rec.Filter[i].Set([]byte(h.dictName(int(fi))), rep)
		}
	}

	rec.Info.Set(infoRaw, rep)

	qual := float64(math.Float32frombits(qualBits))
	if math.IsNaN(qual) {
		qual = math.NaN()
	}
	rec.Qual = qual

	genotypes, err := h.decodeIndiv(indiv, nFmt, nSample, rep)
	if err != nil {
		return err
	}
	rec.Genotypes = genotypes
	rec.Rep = rep
	return nil
}

// decodeIndiv walks the per-record genotype block: nFmt FORMAT
// fields, each a dictionary key followed by one type descriptor
// describing every sample's value for that field, then nSample
// contiguous raw values.
func (h *Handler) decodeIndiv(indiv []byte, nFmt, nSample int, rep Representation) (map[string][]record.Field, error) {
	if nFmt == 0 {
		return nil, nil
	}
	c := &cursor{b: indiv}
	genotypes := make(map[string][]record.Field, nFmt)
	for i := 0; i < nFmt && c.err == nil; i++ {
		keyIdx := c.typedInt()
		valTyp, valN := c.typeDescriptor()
		perSample := valN * typeSize(valTyp)
		data := c.bytes(perSample * nSample)
		if c.err != nil {
			break
		}
		vals := make([]record.Field, nSample)
		for s := 0; s < nSample; s++ {
			vals[s].Set(data[s*perSample:(s+1)*perSample], rep)
		}
		genotypes[h.dictName(int(keyIdx))] = vals
	}
	if c.err != nil {
		return nil, fmt.Errorf("%w: decoding genotypes: %v", errMalformedRecord, c.err)
	}
	return genotypes, nil
}

func (h *Handler) setChrom(f *record.Field, idx int32) {
	if idx >= 0 && int(idx) < len(h.header.Contigs) {
		f.Set([]byte(h.header.Contigs[idx].Name), h.rep)
	} else {
		f.Set([]byte(strconv.Itoa(int(idx))), h.rep)
	}
}

func (h *Handler) dictName(idx int) string {
	if idx < 0 || idx >= len(h.dict) {
		return strconv.Itoa(idx)
	}
	return h.dict[idx]
}

// buildDictionary derives the combined INFO/FILTER/FORMAT string
// dictionary BCF's binary fields index into, in the order those
// header lines are declared: the on-disk encoding of a FILTER or
// FORMAT key is a positional index into this dictionary, not a name.
func buildDictionary(text []byte) []string {
	var dict []string
	for _, line := range bytes.Split(text, []byte("\n")) {
		switch {
		case bytes.HasPrefix(line, []byte("##INFO=")),
			bytes.HasPrefix(line, []byte("##FILTER=")),
			bytes.HasPrefix(line, []byte("##FORMAT=")):
			if id, ok := extractIDTag(line); ok {
				dict = append(dict, id)
			}
		}
	}
	return dict
}

// extractIDTag finds the "ID=" tag in a "##KEY=<ID=...,...>" header
// line and returns its value, up to the next ',' or '>'.
func extractIDTag(line []byte) (string, bool) {
	i := bytes.Index(line, []byte("ID="))
	if i < 0 {
		return "", false
	}
	i += len("ID=")
	j := i
	for j < len(line) && line[j] != ',' && line[j] != '>' {
		j++
	}
	return string(line[i:j]), true
}

// cursor is a forward-only reader over an in-memory binary block,
// accumulating the first error it hits so callers can chain reads
// without checking err after every call.
type cursor struct {
	b   []byte
	off int
	err error
}

func (c *cursor) need(n int) bool {
	if c.err != nil {
		return false
	}
	if n < 0 || c.off+n > len(c.b) {
		c.err = errTruncated
		return false
	}
	return true
}

func (c *cursor) uint8() uint8 {
	if !c.need(1) {
		return 0
	}
	v := c.b[c.off]
	c.off++
	return v
}

func (c *cursor) int8() int8 { return int8(c.uint8()) }

func (c *cursor) int16() int16 {
	if !c.need(2) {
		return 0
	}
	v := int16(binary.LittleEndian.Uint16(c.b[c.off:]))
	c.off += 2
	return v
}

func (c *cursor) int32() int32 {
	if !c.need(4) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(c.b[c.off:]))
	c.off += 4
	return v
}

func (c *cursor) uint32() uint32 {
	if !c.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(c.b[c.off:])
	c.off += 4
	return v
}

func (c *cursor) skip(n int) {
	if !c.need(n) {
		return
	}
	c.off += n
}

func (c *cursor) bytes(n int) []byte {
	if !c.need(n) {
		return nil
	}
	v := c.b[c.off : c.off+n]
	c.off += n
	return v
}

func (c *cursor) readIntAsInt64(typ byte) int64 {
	switch typ {
	case typeInt8:
		return int64(c.int8())
	case typeInt16:
		return int64(c.int16())
	case typeInt32:
		return int64(c.int32())
	default:
		if c.err == nil {
			c.err = errMalformedRecord
		}
		return 0
	}
}

// typeDescriptor reads one type-descriptor byte and returns the
// element type and element count it describes. A high nibble of 15
// means the count overflows a 4-bit field and is itself encoded as
// the next typed integer atom.
func (c *cursor) typeDescriptor() (typ byte, n int) {
	if c.err != nil {
		return 0, 0
	}
	b := c.uint8()
	typ = b & 0x0F
	nib := int(b >> 4)
	if nib != 15 {
		return typ, nib
	}
	countTyp, countN := c.typeDescriptor()
	if c.err != nil {
		return typ, 0
	}
	if countN != 1 {
		c.err = errMalformedRecord
		return typ, 0
	}
	return typ, int(c.readIntAsInt64(countTyp))
}

// typedInt reads one typed atom expected to hold exactly one integer
// value, as used for FORMAT/INFO dictionary keys.
func (c *cursor) typedInt() int64 {
	typ, n := c.typeDescriptor()
	if c.err != nil {
		return 0
	}
	if n != 1 {
		c.err = errMalformedRecord
		return 0
	}
	return c.readIntAsInt64(typ)
}

// typedString reads one typed atom of char type and returns its raw
// bytes, used for the id and allele fields.
func (c *cursor) typedString() []byte {
	typ, n := c.typeDescriptor()
	if c.err != nil || typ == typeMissing || n == 0 {
		return nil
	}
	return c.bytes(n * typeSize(typ))
}

// typedIntVector reads one typed atom describing a vector of
// integers, used for the filter field.
func (c *cursor) typedIntVector() []int64 {
	typ, n := c.typeDescriptor()
	if c.err != nil || typ == typeMissing || n == 0 {
		return nil
	}
	vals := make([]int64, n)
	for i := 0; i < n; i++ {
		vals[i] = c.readIntAsInt64(typ)
	}
	return vals
}

func typeSize(typ byte) int {
	switch typ {
	case typeInt8, typeChar:
		return 1
	case typeInt16:
		return 2
	case typeInt32, typeFloat:
		return 4
	default:
		return 0
	}
}
