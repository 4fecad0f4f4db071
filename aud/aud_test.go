// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package aud

import (
	"testing"

	"github.com/jassoncasey/westwood/internal/testutil"
)

func buildAUD(sampleRate uint16, uncompSize, compSize uint32, flags, comp byte, payload []byte) []byte {
	header := testutil.Concat(
		testutil.U16LE(sampleRate),
		testutil.U32LE(uncompSize),
		testutil.U32LE(compSize),
		[]byte{flags, comp},
	)
	return testutil.Concat(header, payload)
}

func TestOpenParsesHeader(t *testing.T) {
	data := buildAUD(22050, 100, 50, 0x00, 1, []byte{0x03, 128, 129, 130})
	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	info := r.Info()
	if info.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050", info.SampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("Channels = %d, want 1", info.Channels)
	}
	if info.Bits != 8 {
		t.Errorf("Bits = %d, want 8", info.Bits)
	}
	if info.Codec != CodecWestwoodADPCM {
		t.Errorf("Codec = %v, want CodecWestwoodADPCM", info.Codec)
	}
}

func TestOpenStereo16Bit(t *testing.T) {
	data := buildAUD(44100, 4, 4, 0x03, 99, []byte{0, 0, 0, 0, 0, 0, 0, 0})
	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	info := r.Info()
	if info.Channels != 2 || info.Bits != 16 {
		t.Errorf("Channels/Bits = %d/%d, want 2/16", info.Channels, info.Bits)
	}
	if info.Codec != CodecIMAADPCM {
		t.Errorf("Codec = %v, want CodecIMAADPCM", info.Codec)
	}
}

func TestDecodeWestwoodADPCM(t *testing.T) {
	data := buildAUD(22050, 3, 4, 0, 1, []byte{0x03, 128, 129, 130})
	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	samples, err := r.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("len(samples) = %d, want 3", len(samples))
	}
}

func TestSampleCountAndDuration(t *testing.T) {
	data := buildAUD(8000, 8000, 8000, 0, 0, make([]byte, 10))
	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := r.SampleCount(); got != 8000 {
		t.Errorf("SampleCount() = %d, want 8000", got)
	}
	if got := r.Duration(); got != 1.0 {
		t.Errorf("Duration() = %v, want 1.0", got)
	}
}

func TestDurationZeroSampleRate(t *testing.T) {
	data := buildAUD(0, 100, 100, 0, 0, make([]byte, 4))
	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := r.Duration(); got != 0 {
		t.Errorf("Duration() = %v, want 0", got)
	}
}

func TestOpenTooSmall(t *testing.T) {
	if _, err := Open([]byte{1, 2, 3}); err == nil {
		t.Fatal("want error for truncated header")
	}
}
