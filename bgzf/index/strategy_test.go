// Copyright ©2015 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package index

import (
	"reflect"
	"testing"

	"github.com/biogo/htsio/bgzf"
)

func off(file int64, block uint16) bgzf.Offset { return bgzf.Offset{File: file, Block: block} }

func TestAdjacent(t *testing.T) {
	for _, test := range []struct {
		name string
		in   []bgzf.Chunk
		want []bgzf.Chunk
	}{
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "single",
			in:   []bgzf.Chunk{{Begin: off(0, 0), End: off(10, 0)}},
			want: []bgzf.Chunk{{Begin: off(0, 0), End: off(10, 0)}},
		},
		{
			name: "touching merges",
			in: []bgzf.Chunk{
				{Begin: off(0, 0), End: off(10, 0)},
				{Begin: off(10, 0), End: off(20, 0)},
			},
			want: []bgzf.Chunk{{Begin: off(0, 0), End: off(20, 0)}},
		},
		{
			name: "gap does not merge",
			in: []bgzf.Chunk{
				{Begin: off(0, 0), End: off(10, 0)},
				{Begin: off(11, 0), End: off(20, 0)},
			},
			want: []bgzf.Chunk{
				{Begin: off(0, 0), End: off(10, 0)},
				{Begin: off(11, 0), End: off(20, 0)},
			},
		},
	} {
		got := Adjacent(append([]bgzf.Chunk(nil), test.in...))
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: Adjacent(%v) = %v, want %v", test.name, test.in, got, test.want)
		}
	}
}

func TestSquash(t *testing.T) {
	in := []bgzf.Chunk{
		{Begin: off(0, 0), End: off(10, 0)},
		{Begin: off(20, 0), End: off(30, 0)},
	}
	want := []bgzf.Chunk{{Begin: off(0, 0), End: off(30, 0)}}
	got := Squash(append([]bgzf.Chunk(nil), in...))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Squash(%v) = %v, want %v", in, got, want)
	}
	if got := Squash(nil); got != nil {
		t.Errorf("Squash(nil) = %v, want nil", got)
	}
}

func TestIdentity(t *testing.T) {
	in := []bgzf.Chunk{{Begin: off(0, 0), End: off(10, 0)}}
	got := Identity(in)
	if !reflect.DeepEqual(got, in) {
		t.Errorf("Identity(%v) = %v, want unchanged", in, got)
	}
}

func TestCompressorStrategy(t *testing.T) {
	in := []bgzf.Chunk{
		{Begin: off(0, 0), End: off(10, 0)},
		{Begin: off(15, 0), End: off(20, 0)},
	}
	got := CompressorStrategy(10)(append([]bgzf.Chunk(nil), in...))
	want := []bgzf.Chunk{{Begin: off(0, 0), End: off(20, 0)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CompressorStrategy(10)(%v) = %v, want %v", in, got, want)
	}
}
