// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package wwerr is a collection of error types common to the Westwood
// format readers. Every fallible operation across the module returns an
// *Error carrying one of the Code categories below; nothing panics across
// a package boundary.
package wwerr

import "fmt"

// Code categorizes a failure. Callers branch on Code rather than message
// text.
type Code uint8

const (
	// None is the zero value; never returned in a non-nil Error.
	None Code = iota

	// FileNotFound indicates the backing path could not be opened.
	FileNotFound
	// ReadError indicates an I/O failure distinct from a short read.
	ReadError
	// UnexpectedEof indicates a read ran past the end of the available bytes.
	UnexpectedEof

	// InvalidFormat indicates the input does not match any known container.
	InvalidFormat
	// UnsupportedFormat indicates a recognized but unimplemented variant.
	UnsupportedFormat
	// CorruptHeader indicates a fixed-layout header failed validation.
	CorruptHeader
	// CorruptIndex indicates an index/offset table failed validation.
	CorruptIndex
	// CorruptData indicates payload bytes failed validation during decode.
	CorruptData

	// DecryptionFailed indicates a cipher operation could not proceed.
	DecryptionFailed
	// InvalidKey indicates a key (cipher key, frame index, hash) was malformed.
	InvalidKey

	// DecompressError indicates a codec kernel rejected its input stream.
	DecompressError
	// OutputOverflow indicates a decode would write past its output bound.
	OutputOverflow
)

var names = [...]string{
	None:              "none",
	FileNotFound:      "file not found",
	ReadError:         "read error",
	UnexpectedEof:     "unexpected eof",
	InvalidFormat:     "invalid format",
	UnsupportedFormat: "unsupported format",
	CorruptHeader:     "corrupt header",
	CorruptIndex:      "corrupt index",
	CorruptData:       "corrupt data",
	DecryptionFailed:  "decryption failed",
	InvalidKey:        "invalid key",
	DecompressError:   "decompress error",
	OutputOverflow:    "output overflow",
}

func (c Code) String() string {
	if int(c) < len(names) {
		return names[c]
	}
	return "unknown error code"
}

// Error is the wrapper type for errors specific to this module. It carries
// a Code so callers can branch on category with errors.As, plus a
// free-form message for diagnostics.
type Error struct {
	Code    Code
	Pkg     string
	Message string
}

// New builds an Error tagged with pkg (the reporting package's short name,
// e.g. "mix" or "vqa") and code.
func New(pkg string, code Code, message string) *Error {
	return &Error{Code: code, Pkg: pkg, Message: message}
}

// Newf is New with fmt.Sprintf-style formatting of message.
func Newf(pkg string, code Code, format string, args ...any) *Error {
	return New(pkg, code, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Pkg, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pkg, e.Code, e.Message)
}

// Is reports whether target is an *Error with the same Code, so callers can
// write errors.Is(err, wwerr.New("", wwerr.CorruptData, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
