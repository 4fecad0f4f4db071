// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package adpcm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeWestwoodRawBlock(t *testing.T) {
	// count=3 (raw block), three samples: 128 (silence), 255, 0.
	src := []byte{0x03, 128, 255, 0}
	got := DecodeWestwood(src)
	want := []int16{0, (255 - 128) << 8, (0 - 128) << 8}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeWestwoodEmpty(t *testing.T) {
	if got := DecodeWestwood(nil); len(got) != 0 {
		t.Errorf("DecodeWestwood(nil) = %v, want empty", got)
	}
}

func TestDecodeIMAMonoRoundTripsThroughState(t *testing.T) {
	// Prefix: predictor 0, step index 0. One byte of nibbles.
	src := []byte{0, 0, 0, 0, 0x00}
	out, err := DecodeIMA(src, 1)
	if err != nil {
		t.Fatalf("DecodeIMA: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
}

func TestDecodeIMAStereoSplitsNibbles(t *testing.T) {
	src := make([]byte, 8+2)
	out, err := DecodeIMA(src, 2)
	if err != nil {
		t.Fatalf("DecodeIMA: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4 (2 bytes * 2 channels)", len(out))
	}
}

func TestDecodeIMATruncatedPrefix(t *testing.T) {
	if _, err := DecodeIMA([]byte{1, 2}, 1); err == nil {
		t.Fatal("want error for truncated mono prefix")
	}
	if _, err := DecodeIMA([]byte{1, 2, 3, 4, 5}, 2); err == nil {
		t.Fatal("want error for truncated stereo prefix")
	}
}

func TestPCM8ToI16(t *testing.T) {
	got := PCM8ToI16([]byte{128, 0, 255})
	want := []int16{0, -32768, (255 - 128) << 8}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPCM16LEToI16(t *testing.T) {
	got := PCM16LEToI16([]byte{0x01, 0x02, 0xFF, 0xFF})
	want := []int16{0x0201, -1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
