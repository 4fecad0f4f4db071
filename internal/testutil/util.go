// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package testutil is a collection of testing helper methods shared by the
// format readers' test suites.
package testutil

import "encoding/hex"

// MustDecodeHex must decode a hexadecimal string or else panics. Hex is the
// most direct way to express fixed-layout binary headers and worked
// opcode streams in test source.
func MustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// U16LE packs n as a little-endian 16-bit word, the layout used by every
// header field in this module family.
func U16LE(n uint16) []byte {
	return []byte{byte(n), byte(n >> 8)}
}

// U32LE packs n as a little-endian 32-bit word.
func U32LE(n uint32) []byte {
	return []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
}

// U32BE packs n as a big-endian 32-bit word, the layout used by VQA IFF
// chunk headers and Generals/BIG archive index fields.
func U32BE(n uint32) []byte {
	return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}

// Concat flattens a sequence of byte slices into one, a convenience for
// assembling synthetic fixtures from header fields and payload chunks.
func Concat(parts ...[]byte) []byte {
	var total int
	for _, p := range parts {
		total += len(p)
	}
	out := make([]byte, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
