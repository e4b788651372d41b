// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package heifwriter

import "github.com/bep/heifwriter/internal/herr"

// The error taxonomy of §7, re-exported so callers can errors.As/errors.Is
// against a specific variant without reaching into internal/herr.
type (
	// ConfigInvalidError reports a configuration that failed validation.
	ConfigInvalidError = herr.ConfigInvalidError
	// UnresolvedReferenceError reports a reference to an undeclared context.
	UnresolvedReferenceError = herr.UnresolvedReferenceError
	// FileIOError reports an open/read/write failure.
	FileIOError = herr.FileIOError
	// ParseError reports a malformed bitstream or box at a known offset.
	ParseError = herr.ParseError
	// UnsupportedCodecError reports a codec 4CC the parser does not handle.
	UnsupportedCodecError = herr.UnsupportedCodecError
	// BoxTooLargeError reports a box that exceeded the 32-bit size field
	// while the 64-bit largesize form was disabled for it.
	BoxTooLargeError = herr.BoxTooLargeError
	// InconsistentError reports an invariant violated at layout time.
	InconsistentError = herr.InconsistentError
)
