// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package herr defines the closed error taxonomy used across the writer.
package herr

import (
	"errors"
	"fmt"
)

// ConfigInvalidError reports a configuration that failed validation.
type ConfigInvalidError struct {
	Where string
	Why   string
}

func (e *ConfigInvalidError) Error() string {
	return fmt.Sprintf("config invalid: %s: %s", e.Where, e.Why)
}

// Is reports whether target is also a *ConfigInvalidError.
func (e *ConfigInvalidError) Is(target error) bool {
	_, ok := target.(*ConfigInvalidError)
	return ok
}

// NewConfigInvalid builds a ConfigInvalidError.
func NewConfigInvalid(where, why string) error {
	return &ConfigInvalidError{Where: where, Why: why}
}

func NewConfigInvalidf(where, format string, args ...any) error {
	return &ConfigInvalidError{Where: where, Why: fmt.Sprintf(format, args...)}
}

// UnresolvedReferenceError reports a reference to an undeclared context.
type UnresolvedReferenceError struct {
	UniqBsid uint32
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference: uniq_bsid %d", e.UniqBsid)
}

func (e *UnresolvedReferenceError) Is(target error) bool {
	_, ok := target.(*UnresolvedReferenceError)
	return ok
}

func NewUnresolvedReference(uniqBsid uint32) error {
	return &UnresolvedReferenceError{UniqBsid: uniqBsid}
}

// FileIOError reports an open/read/write failure.
type FileIOError struct {
	Path  string
	Cause error
}

func (e *FileIOError) Error() string {
	return fmt.Sprintf("file io error: %s: %s", e.Path, e.Cause)
}

func (e *FileIOError) Unwrap() error { return e.Cause }

func (e *FileIOError) Is(target error) bool {
	_, ok := target.(*FileIOError)
	return ok
}

func NewFileIO(path string, cause error) error {
	return &FileIOError{Path: path, Cause: cause}
}

// ParseError reports a malformed bitstream or box at a known byte offset.
type ParseError struct {
	File   string
	Offset int64
	Why    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s: offset %d: %s", e.File, e.Offset, e.Why)
}

func (e *ParseError) Is(target error) bool {
	_, ok := target.(*ParseError)
	return ok
}

func NewParse(file string, offset int64, why string) error {
	return &ParseError{File: file, Offset: offset, Why: why}
}

func NewParsef(file string, offset int64, format string, args ...any) error {
	return &ParseError{File: file, Offset: offset, Why: fmt.Sprintf(format, args...)}
}

// UnsupportedCodecError reports a codec 4CC the parser does not handle.
type UnsupportedCodecError struct {
	FourCC string
}

func (e *UnsupportedCodecError) Error() string {
	return fmt.Sprintf("unsupported codec: %s", e.FourCC)
}

func (e *UnsupportedCodecError) Is(target error) bool {
	_, ok := target.(*UnsupportedCodecError)
	return ok
}

func NewUnsupportedCodec(fourCC string) error {
	return &UnsupportedCodecError{FourCC: fourCC}
}

// BoxTooLargeError reports a box that exceeded 2^32-1 bytes while the
// 64-bit largesize form was disabled for it.
type BoxTooLargeError struct {
	Tag string
}

func (e *BoxTooLargeError) Error() string {
	return fmt.Sprintf("box too large: %s", e.Tag)
}

func (e *BoxTooLargeError) Is(target error) bool {
	_, ok := target.(*BoxTooLargeError)
	return ok
}

func NewBoxTooLarge(tag string) error {
	return &BoxTooLargeError{Tag: tag}
}

// InconsistentError reports an invariant violated at layout time.
type InconsistentError struct {
	Description string
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("inconsistent: %s", e.Description)
}

func (e *InconsistentError) Is(target error) bool {
	_, ok := target.(*InconsistentError)
	return ok
}

func NewInconsistent(format string, args ...any) error {
	return &InconsistentError{Description: fmt.Sprintf(format, args...)}
}

// KeyUnknownError reports a miss on a per-context data-store lookup.
type KeyUnknownError struct {
	ContextID uint32
	Key       string
}

func (e *KeyUnknownError) Error() string {
	return fmt.Sprintf("key unknown: context %d: %s", e.ContextID, e.Key)
}

func (e *KeyUnknownError) Is(target error) bool {
	_, ok := target.(*KeyUnknownError)
	return ok
}

func NewKeyUnknown(contextID uint32, key string) error {
	return &KeyUnknownError{ContextID: contextID, Key: key}
}

// EndOfStreamError reports a read past the end of a bit/byte stream.
var EndOfStreamError = errors.New("end of stream")

// IsEndOfStream reports whether err is, or wraps, an EndOfStreamError.
func IsEndOfStream(err error) bool {
	return errors.Is(err, EndOfStreamError)
}
