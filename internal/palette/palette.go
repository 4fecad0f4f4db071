// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package palette implements the 768-byte RGB table shared by every
// container that embeds a palette (CPS still images, WSA animations, and
// VQA's CPL0/CPLZ chunks): 256 entries of 3 bytes each, stored either as
// 6-bit VGA-DAC values or already-scaled 8-bit values.
//
// Parsing a standalone .PAL file is out of scope for this module (the
// format is a trivial fixed-size RGB table with no structure beyond this
// byte-to-color transform); this package exposes only the transform every
// embedding site needs.
package palette

import "github.com/jassoncasey/westwood/internal/wwerr"

const pkg = "palette"

// Color is one RGB palette entry, 8-bit per channel.
type Color struct {
	R, G, B uint8
}

// Size is the fixed byte length of a palette payload (256 entries * 3
// bytes).
const Size = 768

// Decode converts 768 raw bytes into 256 RGB colors. The source bit depth
// is auto-detected: if any channel byte exceeds 63, the data is assumed
// already 8-bit and passed through; otherwise every channel is assumed
// 6-bit (the VGA DAC convention) and scaled by (v<<2)|(v>>4).
func Decode(raw []byte) ([256]Color, error) {
	var out [256]Color
	if len(raw) != Size {
		return out, wwerr.Newf(pkg, wwerr.CorruptData, "palette must be %d bytes, got %d", Size, len(raw))
	}

	is8Bit := false
	for _, b := range raw {
		if b > 63 {
			is8Bit = true
			break
		}
	}

	for i := 0; i < 256; i++ {
		r, g, b := raw[i*3], raw[i*3+1], raw[i*3+2]
		if !is8Bit {
			r = scale6to8(r)
			g = scale6to8(g)
			b = scale6to8(b)
		}
		out[i] = Color{R: r, G: g, B: b}
	}
	return out, nil
}

func scale6to8(v uint8) uint8 {
	v &= 0x3F
	return v<<2 | v>>4
}
