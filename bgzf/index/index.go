// Copyright ©2015 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package index provides common code for coordinate-sorted BGZF
// indexing formats, notably tabix.
package index

import (
	"errors"

	"github.com/biogo/htsio/bgzf"
)

var (
	ErrNoReference = errors.New("index: no reference")
	ErrInvalid     = errors.New("index: invalid interval")
)

// ReferenceStats holds mapping statistics for a genomic reference.
type ReferenceStats struct {
	// Chunk is the span of the indexed BGZF holding records for
	// the reference.
	Chunk bgzf.Chunk

	Mapped   uint64
	Unmapped uint64
}
