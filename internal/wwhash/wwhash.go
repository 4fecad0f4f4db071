// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package wwhash implements the two filename hash functions used by
// Westwood's archive formats: the rotate-add hash shared by Tiberian Dawn
// and Red Alert, and the reflected CRC-32 variant shared by Tiberian Sun,
// Renegade, and the Generals family.
package wwhash

// crc32Table is the standard reflected CRC-32 polynomial table (the same
// one published in the Westwood archive format documentation and used
// verbatim by every TS/Renegade/Generals-era tool). Computed once via a
// closure initializer rather than touched lazily at call time.
var crc32Table = func() [256]uint32 {
	var t [256]uint32
	for i := range t {
		c := uint32(i)
		for j := 0; j < 8; j++ {
			if c&1 != 0 {
				c = 0xEDB88320 ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		t[i] = c
	}
	return t
}()

// TD computes the Tiberian Dawn / Red Alert rotate-add filename hash: the
// name is uppercased, '/' is normalized to '\\', then processed four bytes
// at a time into a little-endian-packed 32-bit word (first byte lowest,
// zero-padded at the end) that accumulates as
// rotate_left(hash, 1) + word.
func TD(filename string) uint32 {
	name := make([]byte, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if c >= 'a' && c <= 'z' {
			c -= 0x20
		}
		if c == '/' {
			c = '\\'
		}
		name[i] = c
	}

	var id uint32
	for i := 0; i < len(name); {
		var a uint32
		for j := 0; j < 4; j++ {
			a >>= 8
			if i < len(name) {
				a |= uint32(name[i]) << 24
				i++
			}
		}
		id = (id<<1 | id>>31) + a
	}
	return id
}

// TS computes the Tiberian Sun / Renegade / Generals filename hash: a
// reflected CRC-32 over the lowercased name, initial CRC zero, no final
// complement (a deliberate deviation from the public zlib CRC-32, which
// both inverts the seed and complements the output).
func TS(filename string) uint32 {
	var crc uint32
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if c >= 'A' && c <= 'Z' {
			c += 0x20
		}
		crc = crc32Table[byte(crc^uint32(c))] ^ (crc >> 8)
	}
	return crc
}
