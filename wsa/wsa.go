// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package wsa reads Westwood's WSA animation container: a single
// fixed-size frame buffer advanced by LCW-decompressing each stored
// frame into a scratch window and then Format40-patching it, in place,
// over a persistent delta buffer.
package wsa

import (
	"github.com/jassoncasey/westwood/internal/format40"
	"github.com/jassoncasey/westwood/internal/lcw"
	"github.com/jassoncasey/westwood/internal/palette"
	"github.com/jassoncasey/westwood/internal/view"
	"github.com/jassoncasey/westwood/internal/wwerr"
)

const pkg = "wsa"

const headerSize = 14
const offsetEntrySize = 4

// Info is an animation's header metadata.
type Info struct {
	FrameCount int
	Width      int
	Height     int
	DeltaSize  int
	FileSize   int
	// HasLoop is true when the stored first frame offset is non-zero,
	// meaning frame 0 is a complete base image rather than a delta
	// against an implicit all-zero buffer.
	HasLoop bool
	// HasPalette is true when a 768-byte palette trails the offset table.
	HasPalette bool
}

// FrameInfo describes one stored frame's location.
type FrameInfo struct {
	Offset uint32
	Size   uint32
}

// Reader provides frame decode over a parsed WSA animation.
type Reader struct {
	info    Info
	frames  []FrameInfo
	data    []byte
	palette *[256]palette.Color
}

// Info returns the animation's header metadata.
func (r *Reader) Info() Info { return r.info }

// Frames returns every stored frame's location metadata.
func (r *Reader) Frames() []FrameInfo { return r.frames }

// Palette returns the embedded palette, or nil if the animation carries
// none.
func (r *Reader) Palette() *[256]palette.Color { return r.palette }

// Open parses a WSA animation from data.
func Open(data []byte) (*Reader, error) {
	if len(data) < headerSize {
		return nil, wwerr.New(pkg, wwerr.CorruptHeader, "WSA file too small")
	}

	frameCount := int(view.LE16(data, 0))
	if frameCount == 0 {
		return nil, wwerr.New(pkg, wwerr.CorruptHeader, "WSA has no frames")
	}

	r := &Reader{data: data}
	r.info.FrameCount = frameCount
	r.info.Width = int(view.LE16(data, 6))
	r.info.Height = int(view.LE16(data, 8))
	r.info.DeltaSize = int(view.LE32(data, 10))
	r.info.FileSize = len(data)

	tableEntries := frameCount + 2
	tableSize := tableEntries * offsetEntrySize
	if len(data) < headerSize+tableSize {
		return nil, wwerr.New(pkg, wwerr.CorruptIndex, "WSA offset table truncated")
	}

	table := data[headerSize:]
	r.info.HasLoop = view.LE32(table, 0) != 0

	r.frames = make([]FrameInfo, 0, frameCount)
	for i := 0; i < frameCount; i++ {
		off := view.LE32(table, i*offsetEntrySize)
		next := view.LE32(table, (i+1)*offsetEntrySize)
		size := uint32(0)
		if next > off {
			size = next - off
		}
		r.frames = append(r.frames, FrameInfo{Offset: off, Size: size})
	}

	paletteOffset := view.LE32(table, (frameCount+1)*offsetEntrySize)
	r.info.HasPalette = paletteOffset != 0
	if r.info.HasPalette {
		end := uint64(paletteOffset) + palette.Size
		if end <= uint64(len(data)) {
			colors, err := palette.Decode(data[paletteOffset : paletteOffset+palette.Size])
			if err != nil {
				return nil, err
			}
			r.palette = &colors
		}
	}

	return r, nil
}

// DecodeFrame decodes one frame, patching deltaBuffer in place and
// returning a copy of the result. deltaBuffer must be sized
// Width*Height bytes before the first call and carried unchanged between
// calls; an empty (zero-size) stored frame leaves deltaBuffer untouched
// and returns its current contents.
func (r *Reader) DecodeFrame(index int, deltaBuffer []byte) ([]byte, error) {
	if index < 0 || index >= len(r.frames) {
		return nil, wwerr.New(pkg, wwerr.InvalidKey, "frame index out of range")
	}

	frameSize := r.info.Width * r.info.Height
	if len(deltaBuffer) != frameSize {
		return nil, wwerr.Newf(pkg, wwerr.InvalidKey, "delta buffer must be %d bytes, got %d", frameSize, len(deltaBuffer))
	}

	f := r.frames[index]
	if f.Size == 0 || f.Offset == 0 {
		out := make([]byte, frameSize)
		copy(out, deltaBuffer)
		return out, nil
	}

	end := uint64(f.Offset) + uint64(f.Size)
	if end > uint64(len(r.data)) {
		return nil, wwerr.New(pkg, wwerr.UnexpectedEof, "frame data out of bounds")
	}
	frameData := r.data[f.Offset:end]

	scratch, err := lcw.DecodeSize(frameData, r.info.DeltaSize, true)
	if err != nil {
		return nil, err
	}

	if err := format40.Apply(scratch, deltaBuffer); err != nil {
		return nil, err
	}

	out := make([]byte, frameSize)
	copy(out, deltaBuffer)
	return out, nil
}

// DecodeAllFrames decodes every stored frame in order, driving a fresh
// delta buffer internally.
func (r *Reader) DecodeAllFrames() ([][]byte, error) {
	frameSize := r.info.Width * r.info.Height
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
