// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package lcw implements Westwood's LCW (also called Format80)
// byte-oriented decompressor: a byte-aligned LZ77 variant with literal,
// run-length fill, and back-reference opcodes, plus run-length fills.
//
// Decompression writes into a caller-provided, fixed-capacity window; it
// never allocates and never grows the output. Back-reference copies are
// done byte-by-byte so that overlapping source/destination ranges (the
// mechanism by which a run longer than its reference extent is built)
// behave correctly.
package lcw

import "github.com/jassoncasey/westwood/internal/wwerr"

const pkg = "lcw"

func eof(msg string) error       { return wwerr.New(pkg, wwerr.UnexpectedEof, msg) }
func overflow(msg string) error  { return wwerr.New(pkg, wwerr.OutputOverflow, msg) }
func corrupt(msg string) error   { return wwerr.New(pkg, wwerr.CorruptData, msg) }
func decodeErr(msg string) error { return wwerr.New(pkg, wwerr.DecompressError, msg) }

func readU16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

// Decode decompresses input into output, returning the number of bytes
// written. relative selects whether long (0x81-0xBF, 0xFF) back-references
// measure their offset from the current write position (relative, used by
// most containers) or from the start of the output window (absolute, used
// by a minority of CPS/VQA payloads). Short back-references (0x40-0x7F)
// are always relative, matching the original format.
//
// Decode never writes past len(output) and never reads past len(input);
// violations return a tagged error instead of panicking.
func Decode(input []byte, output []byte, relative bool) (int, error) {
	if len(input) == 0 {
		return 0, decodeErr("empty input")
	}

	srcPos := 0
	dstPos := 0
	srcEnd := len(input)
	dstEnd := len(output)

	for srcPos < srcEnd {
		cmd := input[srcPos]
		srcPos++

		switch {
		case cmd == 0x80:
			return dstPos, nil

		case cmd < 0x40:
			// 0x00-0x3F: literal copy.
			count := int(cmd&0x3F) + 1
			if srcPos+count > srcEnd {
				return dstPos, eof("literal copy")
			}
			if dstPos+count > dstEnd {
				return dstPos, overflow("literal copy")
			}
			copy(output[dstPos:dstPos+count], input[srcPos:srcPos+count])
			srcPos += count
			dstPos += count

		case cmd < 0x80:
			// 0x40-0x7F: short back-reference, always relative.
			count := int((cmd&0x70)>>4) + 3
			if srcPos >= srcEnd {
				return dstPos, eof("short back-reference")
			}
			offset := int(cmd&0x0F)<<8 | int(input[srcPos])
			srcPos++
			if dstPos-offset < 0 {
				return dstPos, corrupt("short back-reference before output start")
			}
			if dstPos+count > dstEnd {
				return dstPos, overflow("short back-reference")
			}
			copyOverlap(output, dstPos, dstPos-offset, count)
			dstPos += count

		case cmd < 0xC0:
			// 0x81-0xBF: medium/long back-reference.
			count := int(cmd & 0x3F)
			if count == 0 {
				return dstPos, nil
			}
			if srcPos+2 > srcEnd {
				return dstPos, eof("back-reference offset")
			}
			rawOffset := int(readU16(input[srcPos : srcPos+2]))
			srcPos += 2

			var copySrc int
			if relative {
				copySrc = dstPos - rawOffset
				if copySrc < 0 {
					return dstPos, corrupt("back-reference before output start")
				}
			} else {
				copySrc = rawOffset
				if copySrc >= dstPos {
					return dstPos, corrupt("back-reference not yet written")
				}
			}
			if dstPos+count > dstEnd {
				return dstPos, overflow("back-reference")
			}
			copyOverlap(output, dstPos, copySrc, count)
			dstPos += count

		case cmd < 0xFE:
			// 0xC0-0xFD: short run-length fill.
			count := int(cmd&0x3F) + 3
			if srcPos >= srcEnd {
				return dstPos, eof("short fill")
			}
			value := input[srcPos]
			srcPos++
			if dstPos+count > dstEnd {
				return dstPos, overflow("short fill")
			}
			fill(output[dstPos:dstPos+count], value)
			dstPos += count

		case cmd == 0xFE:
			// 0xFE: long run-length fill.
			if srcPos+3 > srcEnd {
				return dstPos, eof("long fill")
			}
			count := int(readU16(input[srcPos : srcPos+2]))
			srcPos += 2
			value := input[srcPos]
			srcPos++
			if dstPos+count > dstEnd {
				return dstPos, overflow("long fill")
			}
			fill(output[dstPos:dstPos+count], value)
			dstPos += count

		default:
			// 0xFF: long copy, explicit count and offset.
			if srcPos+4 > srcEnd {
				return dstPos, eof("long copy")
			}
			count := int(readU16(input[srcPos : srcPos+2]))
			srcPos += 2
			rawOffset := int(readU16(input[srcPos : srcPos+2]))
			srcPos += 2

			var copySrc int
			if relative {
				copySrc = dstPos - rawOffset
				if copySrc < 0 {
					return dstPos, corrupt("long copy before output start")
				}
			} else {
				copySrc = rawOffset
				if copySrc >= dstPos {
					return dstPos, corrupt("long copy not yet written")
				}
			}
			if dstPos+count > dstEnd {
				return dstPos, overflow("long copy")
			}
			copyOverlap(output, dstPos, copySrc, count)
			dstPos += count
		}
	}

	return dstPos, nil
}

// DecodeSize decompresses input into a freshly allocated n-byte buffer,
// trimmed to the number of bytes actually written.
func DecodeSize(input []byte, n int, relative bool) ([]byte, error) {
	output := make([]byte, n)
	written, err := Decode(input, output, relative)
	if err != nil {
		return nil, err
	}
	return output[:written], nil
}

// copyOverlap copies count bytes within buf from src to dst one byte at a
// time so that overlapping ranges (src < dst) replicate the run the way
// the reference decoder does, rather than behaving like copy() (which is
// only well-defined for non-overlapping or backward-overlapping slices).
func copyOverlap(buf []byte, dst, src, count int) {
	for i := 0; i < count; i++ {
		buf[dst+i] = buf[src+i]
	}
}

func fill(buf []byte, value byte) {
	for i := range buf {
		buf[i] = value
	}
}
