// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package htsio

import (
	"errors"
	"fmt"
)

// Kind classifies the four raised-error categories.
type Kind int

const (
	// FileOpenError covers a source that cannot be opened, an
	// unknown or ambiguous format, or a required index that is
	// missing.
	FileOpenError Kind = iota + 1

	// UnhandledExtensionError covers a file extension that is not
	// in the registered set for the selected reader family.
	UnhandledExtensionError

	// FormatError covers a malformed record, a BGZF CRC or inflate
	// failure, an unexpected EOF mid-record, or an illegal alphabet
	// symbol under strict decoding.
	FormatError

	// UnsupportedOperationError covers a seek on a non-seekable
	// stream, or a Reopen on a source with no index when
	// RegionIndexOptional is false.
	UnsupportedOperationError
)

func (k Kind) String() string {
	switch k {
	case FileOpenError:
		return "file open error"
	case UnhandledExtensionError:
		return "unhandled extension error"
	case FormatError:
		return "format error"
	case UnsupportedOperationError:
		return "unsupported operation error"
	default:
		return "unknown error"
	}
}

// Error is the error type raised by every component of the package.
// It carries a Kind so callers can branch with errors.As without
// string matching, and wraps an underlying cause when there is one.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("htsio: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("htsio: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, htsio.FileOpenError) style checks are not directly
// supported; callers should use errors.As and compare Kind, or use
// the IsKind helper.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
