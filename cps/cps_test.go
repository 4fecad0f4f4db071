// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package cps

import (
	"bytes"
	"testing"

	"github.com/jassoncasey/westwood/internal/testutil"
)

func TestDecodeUncompressed(t *testing.T) {
	pixels := bytes.Repeat([]byte{0x07}, PixelCount)
	body := testutil.Concat(
		testutil.U16LE(uint16(8+len(pixels))), // file_size excludes the 2-byte field itself
		testutil.U16LE(0),                     // compression
		testutil.U32LE(uint32(len(pixels))),
		testutil.U16LE(0), // no palette
		pixels,
	)

	img, err := Decode(body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(img.Pixels) != PixelCount {
		t.Fatalf("len(Pixels) = %d, want %d", len(img.Pixels), PixelCount)
	}
	if img.Palette != nil {
		t.Error("expected no palette")
	}
}

func TestDecodeRejectsUnknownCompression(t *testing.T) {
	body := testutil.Concat(
		testutil.U16LE(8),
		testutil.U16LE(9), // invalid compression method
		testutil.U32LE(0),
		testutil.U16LE(0),
	)
	if _, err := Decode(body); err == nil {
		t.Fatal("want UnsupportedFormat for unknown compression")
	}
}

func TestDecodeRejectsShortHeader(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatal("want CorruptHeader for short input")
	}
}
