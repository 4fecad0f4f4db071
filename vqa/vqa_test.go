// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package vqa

import (
	"testing"

	"github.com/jassoncasey/westwood/internal/testutil"
)

// chunk builds one IFF-style VQA chunk: 4-byte tag, big-endian size,
// payload, and an even-alignment pad byte when size is odd.
func chunk(tag string, payload []byte) []byte {
	out := testutil.Concat([]byte(tag), testutil.U32BE(uint32(len(payload))), payload)
	if len(payload)%2 != 0 {
		out = append(out, 0)
	}
	return out
}

func vqhdPayload(t *testing.T, version, flags, frameCount, width, height uint16, blockW, blockH, frameRate, cbParts byte, colors, maxBlocks, offX, offY, maxVPT, sampleRate uint16, channels, bits byte) []byte {
	t.Helper()
	return testutil.Concat(
		testutil.U16LE(version),
		testutil.U16LE(flags),
		testutil.U16LE(frameCount),
		testutil.U16LE(width),
		testutil.U16LE(height),
		[]byte{blockW, blockH, frameRate, cbParts},
		testutil.U16LE(colors),
		testutil.U16LE(maxBlocks),
		testutil.U16LE(offX),
		testutil.U16LE(offY),
		testutil.U16LE(maxVPT),
		testutil.U16LE(sampleRate),
		[]byte{channels, bits},
	)
}

func buildMinimalVQA(t *testing.T, extra ...[]byte) []byte {
	t.Helper()
	vqhd := vqhdPayload(t, 2, 0, 1, 4, 2, 2, 2, 15, 1, 256, 1, 0, 0, 0, 22050, 1, 8)

	var body []byte
	body = append(body, chunk("VQHD", vqhd)...)
	for _, e := range extra {
		body = append(body, e...)
	}

	form := testutil.Concat([]byte("FORM"), testutil.U32BE(uint32(4+len(body))), []byte("WVQA"), body)
	return form
}

func TestOpenParsesHeader(t *testing.T) {
	data := buildMinimalVQA(t)
	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	h := r.Info().Header
	if h.FrameCount != 1 || h.Width != 4 || h.Height != 2 {
		t.Fatalf("header = %+v, unexpected", h)
	}
	if h.BlockW != 2 || h.BlockH != 2 {
		t.Fatalf("block size = %dx%d, want 2x2", h.BlockW, h.BlockH)
	}
	if r.Info().HiColor {
		t.Error("HiColor = true, want false (colors=256)")
	}
}

func TestDecodeVideoAssemblesOneFrame(t *testing.T) {
	// A 4x2 frame = 2x1 blocks of 2x2. Codebook holds 1 block (index 0)
	// filled with palette index 1 everywhere; palette entry 1 is pure red
	// (already-8-bit palette since a channel byte exceeds 63).
	codebook := []byte{1, 1, 1, 1}
	pal := make([]byte, 768)
	pal[1*3+0] = 200 // R for index 1, forces 8-bit passthrough detection

	vpt := []byte{0, 0} // both blocks -> codebook index 0 (V2 indexed, 1 byte each... but width 2 blocks needs 2 bytes)

	data := buildMinimalVQA(t,
		chunk("CBF0", codebook),
		chunk("CPL0", pal),
		chunk("VPT0", vpt),
	)

	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	frames, err := r.DecodeVideo()
	if err != nil {
		t.Fatalf("DecodeVideo: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("len(frames) = %d, want 1", len(frames))
	}
	f := frames[0]
	if f.Width != 4 || f.Height != 2 {
		t.Fatalf("frame dims = %dx%d, want 4x2", f.Width, f.Height)
	}
	// Every pixel should carry palette index 1's red channel.
	for px := 0; px < len(f.RGB); px += 3 {
		if f.RGB[px] != 200 {
			t.Errorf("pixel %d R = %d, want 200", px/3, f.RGB[px])
		}
	}
}

func TestDecodeVideoPadsShortStreamWithLastFrame(t *testing.T) {
	vqhd := vqhdPayload(t, 2, 0, 3, 4, 2, 2, 2, 15, 1, 256, 1, 0, 0, 0, 22050, 1, 8)
	body := chunk("VQHD", vqhd)
	form := testutil.Concat([]byte("FORM"), testutil.U32BE(uint32(4+len(body))), []byte("WVQA"), body)

	r, err := Open(form)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	frames, err := r.DecodeVideo()
	if err != nil {
		t.Fatalf("DecodeVideo: %v", err)
	}
	if len(frames) != 3 {
		t.Fatalf("len(frames) = %d, want 3 (padded to header frame_count)", len(frames))
	}
}

func TestScanAudioCodecDetectsSND1(t *testing.T) {
	vqhd := vqhdPayload(t, 1, 0, 1, 4, 2, 2, 2, 15, 1, 256, 1, 0, 0, 0, 0, 0, 0)
	body := testutil.Concat(chunk("VQHD", vqhd), chunk("SND1", []byte{0x03, 128, 129, 130}))
	form := testutil.Concat([]byte("FORM"), testutil.U32BE(uint32(4+len(body))), []byte("WVQA"), body)

	r, err := Open(form)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.Info().AudioCodec != AudioWestwoodADPCM {
		t.Errorf("AudioCodec = %v, want AudioWestwoodADPCM", r.Info().AudioCodec)
	}
	// V1 defaults should have filled in sample rate/channels/bits.
	if r.Info().Header.SampleRate != 22050 || r.Info().Header.Channels != 1 || r.Info().Header.Bits != 8 {
		t.Errorf("V1 defaults not applied: %+v", r.Info().Header)
	}

	samples, err := r.DecodeAudio()
	if err != nil {
		t.Fatalf("DecodeAudio: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("len(samples) = %d, want 3", len(samples))
	}
}
