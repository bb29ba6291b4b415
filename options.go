// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package htsio

// Region is a genomic interval used to filter records by position.
// Beg and End are zero-based and half-open: [Beg, End).
type Region struct {
	Chrom string
	Beg   int64
	End   int64
}

// set reports whether a region filter has been configured.
func (r Region) set() bool { return r.Chrom != "" }

// Options configures a Reader. The zero value selects the
// format-default record schema, Shallow representation and no region
// filtering.
type Options struct {
	// TruncateIDsAtFirstWhitespace truncates the id field at the
	// first whitespace byte before it is decoded.
	TruncateIDsAtFirstWhitespace bool

	// Region, when set, restricts emitted records to those
	// overlapping the interval.
	Region Region

	// RegionIndexFile is an explicit tabix index path. When empty
	// and Region is set, the reader looks for "<path>.tbi" next to
	// a path-constructed source.
	RegionIndexFile string

	// RegionIndexOptional permits a linear scan from the start of
	// the stream when no tabix index can be found, instead of
	// raising FileOpenError.
	RegionIndexOptional bool

	// ReplaceUnknownSymbols records whether unknown alphabet symbols
	// are to be replaced by the alphabet's Unknown symbol rather than
	// rejected. The Reader's handlers store raw bytes and do not decode
	// through an Alphabet, so this option does not change the records
	// or errors a Reader produces.
	ReplaceUnknownSymbols bool

	// Representation selects whether record fields borrow the
	// handler's internal buffer (Shallow, the default) or own their
	// storage (Deep). Fixed for the lifetime of the Reader.
	Representation Representation
}

// Option configures an Options value at Reader construction.
type Option func(*Options)

// WithTruncateIDs sets TruncateIDsAtFirstWhitespace.
func WithTruncateIDs(v bool) Option {
	return func(o *Options) { o.TruncateIDsAtFirstWhitespace = v }
}

// WithRegion sets Region.
func WithRegion(r Region) Option {
	return func(o *Options) { o.Region = r }
}

// WithRegionIndexFile sets an explicit tabix index path.
func WithRegionIndexFile(path string) Option {
	return func(o *Options) { o.RegionIndexFile = path }
}

// WithRegionIndexOptional sets RegionIndexOptional.
func WithRegionIndexOptional(v bool) Option {
	return func(o *Options) { o.RegionIndexOptional = v }
}

// WithReplaceUnknownSymbols sets ReplaceUnknownSymbols.
func WithReplaceUnknownSymbols(v bool) Option {
	return func(o *Options) { o.ReplaceUnknownSymbols = v }
}

// WithRepresentation sets the record field Representation.
func WithRepresentation(rep Representation) Option {
	return func(o *Options) { o.Representation = rep }
}

func newOptions(opts []Option) Options {
	var o Options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
