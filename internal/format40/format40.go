// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package format40 implements Westwood's Format40 XOR-delta patcher, used
// by the frame animation readers to advance a persistent frame buffer
// without re-sending unchanged pixels.
//
// The patch is applied in place over a reference buffer of the same size
// as the patch's target: each opcode either XORs a run of source bytes
// into the buffer at the cursor, or advances the cursor without touching
// the buffer (a skip). A patch never changes the buffer's length.
package format40

import "github.com/jassoncasey/westwood/internal/wwerr"

const pkg = "format40"

func eof(msg string) error     { return wwerr.New(pkg, wwerr.UnexpectedEof, msg) }
func overflow(msg string) error { return wwerr.New(pkg, wwerr.OutputOverflow, msg) }

func readU16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

// Apply XORs patch into buf in place, following the cursor conventions
// derived from the canonical worked examples: a leading 0x00 is a
// short run-length fill (read a count, then a single value XORed count
// times), 0x01-0x7F is a literal XOR block of that many bytes, 0x80
// reads a 16-bit word that is either a zero terminator, a large skip
// (high bit set), or a large literal XOR block, and 0x81-0xFF is a skip
// of the low 7 bits of the command byte.
func Apply(patch []byte, buf []byte) error {
	pos := 0
	cursor := 0
	end := len(patch)
	bufLen := len(buf)

	for pos < end {
		cmd := patch[pos]
		pos++

		switch {
		case cmd == 0x00:
			if pos >= end {
				return eof("fill count")
			}
			count := int(patch[pos])
			pos++
			if count == 0 {
				return nil
			}
			if pos >= end {
				return eof("fill value")
			}
			value := patch[pos]
			pos++
			if cursor+count > bufLen {
				return overflow("fill")
			}
			for i := 0; i < count; i++ {
				buf[cursor+i] ^= value
			}
			cursor += count

		case cmd < 0x80:
			count := int(cmd)
			if pos+count > end {
				return eof("xor block")
			}
			if cursor+count > bufLen {
				return overflow("xor block")
			}
			for i := 0; i < count; i++ {
				buf[cursor+i] ^= patch[pos+i]
			}
			pos += count
			cursor += count

		case cmd == 0x80:
			if pos+2 > end {
				return eof("extended op")
			}
			word := readU16(patch[pos : pos+2])
			pos += 2
			if word == 0 {
				return nil
			}
			if word&0x8000 != 0 {
				skip := int(word & 0x7FFF)
				if cursor+skip > bufLen {
					return overflow("extended skip")
				}
				cursor += skip
			} else {
				count := int(word)
				if pos+count > end {
					return eof("extended xor block")
				}
				if cursor+count > bufLen {
					return overflow("extended xor block")
				}
				for i := 0; i < count; i++ {
					buf[cursor+i] ^= patch[pos+i]
				}
				pos += count
				cursor += count
			}

		default:
			skip := int(cmd & 0x7F)
			if cursor+skip > bufLen {
				return overflow("skip")
			}
			cursor += skip
		}
	}

	return nil
}
