// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package shp reads Westwood's TD/RA sprite container: a multi-frame
// image format where each frame is stored raw, LCW-compressed, or as a
// Format40 XOR-delta against a reference or the previous frame.
//
// The TS/RA2-era SHP variant uses an entirely different header layout and
// is not supported; it is detected (a leading zero word) and reported as
// UnsupportedFormat rather than misparsed.
package shp

import (
	"github.com/jassoncasey/westwood/internal/format40"
	"github.com/jassoncasey/westwood/internal/lcw"
	"github.com/jassoncasey/westwood/internal/view"
	"github.com/jassoncasey/westwood/internal/wwerr"
)

const pkg = "shp"

const (
	flagLCW        = 0x80
	flagXORRef     = 0x40
	flagXORPrev    = 0x20
	indexEntrySize = 8
)

// Info is a sprite container's header metadata.
type Info struct {
	FrameCount      int
	MaxWidth        int
	MaxHeight       int
	DeltaBufferSize int
	FileSize        int
	LCWFrames       int
	XORFrames       int
}

// FrameInfo describes one frame's location and encoding within the
// backing file.
type FrameInfo struct {
	Width, Height    int
	OffsetX, OffsetY int
	DataOffset       uint32
	DataSize         uint32
	Format           byte
	RefOffset        uint32
}

// Reader provides frame decode over a parsed sprite container. Frame
// decode is stateful: callers drive it through an explicit delta buffer
// they own (see Reader.DecodeFrame), mirroring a pull iterator rather than
// smuggling the buffer into reader state.
type Reader struct {
	info         Info
	frames       []FrameInfo
	data         []byte
	byDataOffset map[uint32]int
	rendered     map[int][]byte
}

// Info returns the sprite's header metadata.
func (r *Reader) Info() Info { return r.info }

// Frames returns every frame's location/encoding metadata.
func (r *Reader) Frames() []FrameInfo { return r.frames }

// Open parses a sprite container from data.
func Open(data []byte) (*Reader, error) {
	if len(data) < 14 {
		return nil, wwerr.New(pkg, wwerr.CorruptHeader, "SHP file too small")
	}

	if view.LE16(data, 0) == 0 {
		return nil, wwerr.New(pkg, wwerr.UnsupportedFormat, "TS/RA2 SHP not supported")
	}

	return openTD(data)
}

func openTD(data []byte) (*Reader, error) {
	frameCount := int(view.LE16(data, 0))
	if frameCount == 0 {
		return nil, wwerr.New(pkg, wwerr.CorruptHeader, "SHP has no frames")
	}

	r := &Reader{data: data, byDataOffset: make(map[uint32]int), rendered: make(map[int][]byte)}
	r.info.FrameCount = frameCount
	r.info.MaxWidth = int(view.LE16(data, 6))
	r.info.MaxHeight = int(view.LE16(data, 8))
	r.info.DeltaBufferSize = int(view.LE16(data, 10))
	r.info.FileSize = len(data)

	tableSize := (frameCount + 2) * indexEntrySize
	if len(data) < 14+tableSize {
		return nil, wwerr.New(pkg, wwerr.CorruptIndex, "SHP offset table truncated")
	}

	table := data[14:]
	r.frames = make([]FrameInfo, 0, frameCount)
	for i := 0; i < frameCount; i++ {
		entry := table[i*indexEntrySize:]
		next := table[(i+1)*indexEntrySize:]

		f := FrameInfo{
			Width:      r.info.MaxWidth,
			Height:     r.info.MaxHeight,
			DataOffset: uint32(entry[0]) | uint32(entry[1])<<8 | uint32(entry[2])<<16,
			Format:     entry[3],
			RefOffset:  uint32(entry[4]) | uint32(entry[5])<<8 | uint32(entry[6])<<16,
		}
		nextOffset := uint32(next[0]) | uint32(next[1])<<8 | uint32(next[2])<<16
		f.DataSize = nextOffset - f.DataOffset

		switch {
		case f.Format&flagLCW != 0:
			r.info.LCWFrames++
		case f.Format&(flagXORRef|flagXORPrev) != 0:
			r.info.XORFrames++
		default:
			r.info.LCWFrames++
		}

		r.byDataOffset[f.DataOffset] = i
		r.frames = append(r.frames, f)
	}

	return r, nil
}

// DecodeFrame decodes one frame, patching deltaBuffer in place and
// returning a copy of the result. deltaBuffer must be resized by the
// caller to MaxWidth*MaxHeight bytes before the first call (a zero-filled
// buffer is a valid starting state) and carried, unmodified by the
// caller, from one call to the next — the decoder both reads and updates
// it to advance the animation.
func (r *Reader) DecodeFrame(index int, deltaBuffer []byte) ([]byte, error) {
	if index < 0 || index >= len(r.frames) {
		return nil, wwerr.New(pkg, wwerr.InvalidKey, "frame index out of range")
	}

	f := r.frames[index]
	frameSize := r.info.MaxWidth * r.info.MaxHeight
	if len(deltaBuffer) != frameSize {
		return nil, wwerr.Newf(pkg, wwerr.InvalidKey, "delta buffer must be %d bytes, got %d", frameSize, len(deltaBuffer))
	}

	end := uint64(f.DataOffset) + uint64(f.DataSize)
	if end > uint64(len(r.data)) {
		return nil, wwerr.New(pkg, wwerr.UnexpectedEof, "frame data out of bounds")
	}
	frameData := r.data[f.DataOffset:end]

	output := make([]byte, frameSize)

	switch {
	case f.Format == 0x00:
		copy(output, frameData)

	case f.Format&flagLCW != 0:
		if _, err := lcw.Decode(frameData, output, true); err != nil {
			return nil, err
		}

	case f.Format&flagXORRef != 0:
		refIdx, ok := r.byDataOffset[f.RefOffset]
		if !ok {
			return nil, wwerr.New(pkg, wwerr.CorruptData, "XOR reference frame not found")
		}
		ref, ok := r.rendered[refIdx]
		if !ok {
			return nil, wwerr.New(pkg, wwerr.CorruptData, "XOR reference frame not yet rendered")
		}
		copy(output, ref)
		if err := format40.Apply(frameData, output); err != nil {
			return nil, err
		}

	case f.Format&flagXORPrev != 0:
		copy(output, deltaBuffer)
		if err := format40.Apply(frameData, output); err != nil {
			return nil, err
		}

	default:
		copy(output, frameData)
	}

	copy(deltaBuffer, output)
	r.rendered[index] = append([]byte(nil), output...)
	return output, nil
}

// DecodeAllFrames decodes every frame in order, driving a fresh delta
// buffer internally.
func (r *Reader) DecodeAllFrames() ([][]byte, error) {
	frameSize := r.info.MaxWidth * r.info.MaxHeight
	deltaBuffer := make([]byte, frameSize)

	out := make([][]byte, 0, len(r.frames))
	for i := range r.frames {
		frame, err := r.DecodeFrame(i, deltaBuffer)
		if err != nil {
			return nil, err
		}
		out = append(out, frame)
	}
	return out, nil
}
