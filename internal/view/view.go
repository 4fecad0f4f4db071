// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package view provides a bounded cursor over a byte slice shared by every
// format reader in this module. It never copies the backing slice and
// never allocates on the read path; every accessor returns a tagged error
// instead of panicking when a read would run past the end of the slice.
package view

import "github.com/jassoncasey/westwood/internal/wwerr"

// View is a read-only cursor over a byte slice. The zero value is not
// usable; construct with New.
type View struct {
	buf []byte
	pos int
	pkg string
}

// New returns a View positioned at the start of buf. pkg names the calling
// package for error tagging (e.g. "mix", "vqa").
func New(pkg string, buf []byte) *View {
	return &View{buf: buf, pos: 0, pkg: pkg}
}

// Len returns the total length of the backing slice.
func (v *View) Len() int { return len(v.buf) }

// Pos returns the current cursor offset.
func (v *View) Pos() int { return v.pos }

// Remaining returns the number of unread bytes.
func (v *View) Remaining() int { return len(v.buf) - v.pos }

// AtEnd reports whether the cursor has reached the end of the slice.
func (v *View) AtEnd() bool { return v.pos >= len(v.buf) }

// Bytes returns the full backing slice, independent of cursor position.
func (v *View) Bytes() []byte { return v.buf }

func (v *View) eof() error {
	return wwerr.New(v.pkg, wwerr.UnexpectedEof, "read past end of input")
}

// Seek moves the cursor to an absolute offset.
func (v *View) Seek(pos int) error {
	if pos < 0 || pos > len(v.buf) {
		return v.eof()
	}
	v.pos = pos
	return nil
}

// Skip advances the cursor by n bytes without reading them.
func (v *View) Skip(n int) error {
	return v.Seek(v.pos + n)
}

// ReadBytes returns the next n bytes and advances the cursor. The returned
// slice aliases the backing buffer; callers that need an independent copy
// must clone it.
func (v *View) ReadBytes(n int) ([]byte, error) {
	if n < 0 || v.pos+n > len(v.buf) {
		return nil, v.eof()
	}
	b := v.buf[v.pos : v.pos+n]
	v.pos += n
	return b, nil
}

// PeekBytes returns the next n bytes without advancing the cursor.
func (v *View) PeekBytes(n int) ([]byte, error) {
	if n < 0 || v.pos+n > len(v.buf) {
		return nil, v.eof()
	}
	return v.buf[v.pos : v.pos+n], nil
}

// ReadU8 reads one byte and advances the cursor.
func (v *View) ReadU8() (uint8, error) {
	b, err := v.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16LE reads a little-endian 16-bit word and advances the cursor.
func (v *View) ReadU16LE() (uint16, error) {
	b, err := v.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadU16BE reads a big-endian 16-bit word and advances the cursor.
func (v *View) ReadU16BE() (uint16, error) {
	b, err := v.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[1]) | uint16(b[0])<<8, nil
}

// ReadU24LE reads a little-endian 24-bit word (as used by SHP frame offset
// tables) and advances the cursor.
func (v *View) ReadU24LE() (uint32, error) {
	b, err := v.ReadBytes(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// ReadU32LE reads a little-endian 32-bit word and advances the cursor.
func (v *View) ReadU32LE() (uint32, error) {
	b, err := v.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadU32BE reads a big-endian 32-bit word (used by VQA IFF chunk headers)
// and advances the cursor.
func (v *View) ReadU32BE() (uint32, error) {
	b, err := v.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24, nil
}

// ReadTag reads a 4-byte ASCII chunk tag (as used by VQA) and advances the
// cursor.
func (v *View) ReadTag() (string, error) {
	b, err := v.ReadBytes(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LE16 reads a little-endian 16-bit word at an absolute offset without
// moving the cursor. Used by fixed-layout header parsers that address
// fields by offset rather than sequentially.
func LE16(b []byte, off int) uint16 {
	return uint16(b[off]) | uint16(b[off+1])<<8
}

// LE32 reads a little-endian 32-bit word at an absolute offset.
func LE32(b []byte, off int) uint32 {
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
}

// BE32 reads a big-endian 32-bit word at an absolute offset.
func BE32(b []byte, off int) uint32 {
	return uint32(b[off+3]) | uint32(b[off+2])<<8 | uint32(b[off+1])<<16 | uint32(b[off])<<24
}
