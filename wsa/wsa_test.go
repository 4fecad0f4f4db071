// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package wsa

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jassoncasey/westwood/internal/testutil"
)

// buildWSA assembles a minimal synthetic WSA: frameCount frames, each an
// LCW-literal-compressed payload (no XOR delta needed since the delta
// buffer starts zeroed), 2 trailing sentinel offsets with no palette.
func buildWSA(t *testing.T, width, height, deltaSize int, frames [][]byte) []byte {
	t.Helper()
	frameCount := len(frames)
	header := testutil.Concat(
		testutil.U16LE(uint16(frameCount)),
		testutil.U16LE(0), testutil.U16LE(0),
		testutil.U16LE(uint16(width)),
		testutil.U16LE(uint16(height)),
		testutil.U32LE(uint32(deltaSize)),
	)

	var body []byte
	offsets := make([]uint32, frameCount+2)
	pos := uint32(headerSize + (frameCount+2)*4)
	for i, f := range frames {
		offsets[i] = pos
		body = append(body, f...)
		pos += uint32(len(f))
	}
	offsets[frameCount] = pos // end marker
	offsets[frameCount+1] = 0 // no palette

	var table []byte
	for _, o := range offsets {
		table = append(table, testutil.U32LE(o)...)
	}

	return testutil.Concat(header, table, body)
}

func TestOpenAndDecodeRawFrame(t *testing.T) {
	// Format40 patch that XORs 4 literal bytes then terminates.
	patch := testutil.Concat([]byte{0x04, 0x41, 0x42, 0x43, 0x44}, testutil.U16LE(0))
	// LCW-encode patch as one literal-copy opcode: 0x00|(len-1), bytes, terminator.
	lcwPayload := testutil.Concat([]byte{byte(len(patch) - 1)}, patch, []byte{0x80})

	data := buildWSA(t, 2, 2, 7, [][]byte{lcwPayload})

	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.Info().FrameCount != 1 {
		t.Fatalf("FrameCount = %d, want 1", r.Info().FrameCount)
	}
	if !r.Info().HasLoop {
		t.Error("HasLoop = false, want true (first frame offset is non-zero)")
	}

	delta := make([]byte, 4)
	frame, err := r.DecodeFrame(0, delta)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	want := []byte{0x41, 0x42, 0x43, 0x44}
	if diff := cmp.Diff(want, frame); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFrameEmptyReturnsUnchangedBuffer(t *testing.T) {
	data := buildWSA(t, 2, 2, 4, [][]byte{{}})
	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	delta := []byte{9, 9, 9, 9}
	frame, err := r.DecodeFrame(0, delta)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if diff := cmp.Diff(delta, frame); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenRejectsTruncatedTable(t *testing.T) {
	data := []byte{1, 0, 0, 0, 0, 0, 2, 0, 2, 0, 4, 0, 0, 0}
	if _, err := Open(data); err == nil {
		t.Fatal("want error for truncated offset table")
	}
}

func TestDecodeFrameWrongBufferSize(t *testing.T) {
	data := buildWSA(t, 2, 2, 4, [][]byte{{}})
	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := r.DecodeFrame(0, make([]byte, 3)); err == nil {
		t.Fatal("want error for mis-sized delta buffer")
	}
}
