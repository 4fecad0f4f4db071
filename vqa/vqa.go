// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package vqa reads Westwood's VQA vector-quantized video container: an
// IFF-style FORM/WVQA chunk stream that maintains a persistent palette,
// codebook, and frame buffer across per-frame chunks and emits full RGB
// frames plus interleaved PCM audio.
package vqa

import (
	"github.com/jassoncasey/westwood/internal/adpcm"
	"github.com/jassoncasey/westwood/internal/lcw"
	"github.com/jassoncasey/westwood/internal/palette"
	"github.com/jassoncasey/westwood/internal/view"
	"github.com/jassoncasey/westwood/internal/wwerr"
)

const pkg = "vqa"

// AudioCodec identifies which sub-stream codec a VQA's audio chunks use.
type AudioCodec uint8

const (
	AudioNone AudioCodec = iota
	AudioPCM
	AudioWestwoodADPCM
	AudioIMAADPCM
)

// Header is the container metadata parsed from the first 28 bytes of the
// VQHD chunk; any further VQHD bytes are not read.
type Header struct {
	Version       uint16
	Flags         uint16
	FrameCount    int
	Width         int
	Height        int
	BlockW        int
	BlockH        int
	FrameRate     int
	CodebookParts int
	Colors        int
	MaxBlocks     int
	OffsetX       int
	OffsetY       int
	MaxVPTSize    int
	SampleRate    int
	Channels      int
	Bits          int
}

// Info is a VQA file's metadata, derived from its header plus a scan for
// the first audio sub-stream tag present.
type Info struct {
	Header     Header
	FileSize   int
	HiColor    bool
	AudioCodec AudioCodec
}

// Frame is one fully assembled video frame.
type Frame struct {
	RGB    []byte // 3 bytes per pixel, row-major
	Width  int
	Height int
}

// Reader provides header metadata plus full video/audio decode over a
// parsed VQA stream.
type Reader struct {
	info Info
	data []byte
}

// Info returns the container's metadata.
func (r *Reader) Info() Info { return r.info }

// Duration returns the nominal playback duration in seconds, or zero if
// the header's frame rate is zero.
func (r *Reader) Duration() float64 {
	if r.info.Header.FrameRate == 0 {
		return 0
	}
	return float64(r.info.Header.FrameCount) / float64(r.info.Header.FrameRate)
}

// Open parses a VQA file's FORM/WVQA/VQHD prelude and scans for the first
// audio sub-stream tag. Video/audio decode is deferred to DecodeVideo and
// DecodeAudio.
func Open(data []byte) (*Reader, error) {
	if len(data) < 20 {
		return nil, wwerr.New(pkg, wwerr.CorruptHeader, "VQA file too small")
	}

	v := view.New(pkg, data)
	formTag, err := v.ReadTag()
	if err != nil {
		return nil, err
	}
	if formTag != "FORM" {
		return nil, wwerr.New(pkg, wwerr.InvalidFormat, "missing FORM chunk")
	}
	if err := v.Skip(4); err != nil { // FORM size
		return nil, err
	}
	wvqaTag, err := v.ReadTag()
	if err != nil {
		return nil, err
	}
	if wvqaTag != "WVQA" {
		return nil, wwerr.New(pkg, wwerr.InvalidFormat, "missing WVQA sub-type")
	}

	vqhdTag, err := v.ReadTag()
	if err != nil {
		return nil, err
	}
	if vqhdTag != "VQHD" {
		return nil, wwerr.New(pkg, wwerr.InvalidFormat, "missing VQHD chunk")
	}
	if _, err := v.ReadU32BE(); err != nil { // VQHD chunk size
		return nil, err
	}

	hdr, err := parseHeader(v)
	if err != nil {
		return nil, err
	}

	r := &Reader{data: data}
	r.info.Header = hdr
	r.info.FileSize = len(data)
	r.info.HiColor = hdr.Flags&0x10 != 0 || hdr.Colors == 0
	r.info.AudioCodec = scanAudioCodec(data)

	return r, nil
}

func parseHeader(v *view.View) (Header, error) {
	var h Header
	var err error
	readU16 := func() int {
		if err != nil {
			return 0
		}
		var u uint16
		u, err = v.ReadU16LE()
		return int(u)
	}
	readU8 := func() int {
		if err != nil {
			return 0
		}
		var u uint8
		u, err = v.ReadU8()
		return int(u)
	}

	version := readU16()
	flags := readU16()
	h.FrameCount = readU16()
	h.Width = readU16()
	h.Height = readU16()
	h.BlockW = readU8()
	h.BlockH = readU8()
	h.FrameRate = readU8()
	h.CodebookParts = readU8()
	h.Colors = readU16()
	h.MaxBlocks = readU16()
	h.OffsetX = readU16()
	h.OffsetY = readU16()
	h.MaxVPTSize = readU16()
	h.SampleRate = readU16()
	h.Channels = readU8()
	h.Bits = readU8()
	if err != nil {
		return Header{}, err
	}

	h.Version = uint16(version)
	h.Flags = uint16(flags)

	if h.Version == 1 {
		if h.SampleRate == 0 {
			h.SampleRate = 22050
		}
		if h.Channels == 0 {
			h.Channels = 1
		}
		if h.Bits == 0 {
			h.Bits = 8
		}
	}

	return h, nil
}

// scanAudioCodec walks the chunk stream looking for the first SND0/1/2
// tag to report which audio codec (if any) the file carries.
func scanAudioCodec(data []byte) AudioCodec {
	v := view.New(pkg, data)
	if err := v.Seek(12); err != nil {
		return AudioNone
	}
	for v.Remaining() >= 8 {
		tag, err := v.ReadTag()
		if err != nil {
			break
		}
		size, err := v.ReadU32BE()
		if err != nil {
			break
		}
		switch tag {
		case "SND0":
			return AudioPCM
		case "SND1":
			return AudioWestwoodADPCM
		case "SND2":
			return AudioIMAADPCM
		case "VQFR", "VQFL":
			continue
		}
		if err := v.Skip(int(size + (size & 1))); err != nil {
			break
		}
	}
	return AudioNone
}

// blockSize returns the codebook/frame block footprint in bytes: one byte
// per sample for indexed color, two for hicolor RGB555.
func (r *Reader) blockSize() int {
	n := r.info.Header.BlockW * r.info.Header.BlockH
	if r.info.HiColor {
		n *= 2
	}
	return n
}

// codebookBytes returns the full codebook allocation size.
func (r *Reader) codebookBytes() int {
	return r.info.Header.MaxBlocks * r.blockSize()
}

// walkState tracks per-chunk-walk mutable state: codebook, palette, and
// the assembled frame buffer, mirroring the persistent state the VQA
// chunk stream accumulates across chunks.
type walkState struct {
	codebook []byte
	pal      [256]palette.Color
	frame    []byte
}

// DecodeVideo walks the entire chunk stream and assembles every video
// frame. Short streams (fewer VPT chunks than the header's frame_count)
// are padded with the last assembled frame buffer to reach frame_count.
func (r *Reader) DecodeVideo() ([]Frame, error) {
	hdr := r.info.Header
	if hdr.BlockW == 0 || hdr.BlockH == 0 {
		return nil, wwerr.New(pkg, wwerr.CorruptHeader, "VQA block size is zero")
	}
	blocksX := hdr.Width / hdr.BlockW
	blocksY := hdr.Height / hdr.BlockH

	st := &walkState{
		codebook: make([]byte, r.codebookBytes()),
		frame:    make([]byte, hdr.Width*hdr.Height*3),
	}

	frames := make([]Frame, 0, hdr.FrameCount)

	v := view.New(pkg, r.data)
	if err := v.Seek(12); err != nil {
		return nil, err
	}

	for v.Remaining() >= 8 && len(frames) < hdr.FrameCount {
		tag, err := v.ReadTag()
		if err != nil {
			break
		}
		size, err := v.ReadU32BE()
		if err != nil {
			break
		}
		chunkStart := v.Pos()

		switch tag {
		case "VQFR", "VQFL":
			// V3 container chunks carry sub-chunks directly inline; don't
			// skip their declared size, just keep walking into them.
			continue
		case "FINF":
			// Informational only.
		case "CBF0", "CBFZ":
			if err := handleFullCodebook(v, int(size), tag == "CBFZ", st); err != nil {
				return nil, err
			}
		case "CBP0", "CBPZ":
			if err := handlePartialCodebook(v, int(size), tag == "CBPZ", st); err != nil {
				return nil, err
			}
		case "CPL0", "CPLZ":
			if err := handlePalette(v, int(size), tag == "CPLZ", st); err != nil {
				return nil, err
			}
		case "VPT0", "VPTR", "VPTZ", "VPRZ":
			compressed := tag == "VPTZ" || tag == "VPRZ"
			frame, err := assembleFrame(v, int(size), compressed, hdr, r.info.HiColor, blocksX, blocksY, r.blockSize(), st)
			if err != nil {
				return nil, err
			}
			frames = append(frames, frame)
		default:
			// Unknown tag: leave the cursor at chunkStart so the
			// consumed/aligned bookkeeping below skips the whole chunk.
		}

		consumed := v.Pos() - chunkStart
		aligned := int(size) + int(size&1)
		if consumed < aligned {
			if err := v.Skip(aligned - consumed); err != nil {
				break
			}
		}
	}

	last := Frame{RGB: append([]byte(nil), st.frame...), Width: hdr.Width, Height: hdr.Height}
	for len(frames) < hdr.FrameCount {
		frames = append(frames, last)
	}

	return frames, nil
}

func handleFullCodebook(v *view.View, size int, compressed bool, st *walkState) error {
	raw, err := v.ReadBytes(size)
	if err != nil {
		return err
	}
	if compressed {
		decoded, err := lcw.DecodeSize(raw, len(st.codebook), true)
		if err != nil {
			return err
		}
		copy(st.codebook, decoded)
	} else {
		n := size
		if n > len(st.codebook) {
			n = len(st.codebook)
		}
		copy(st.codebook, raw[:n])
	}
	return nil
}

func handlePartialCodebook(v *view.View, size int, compressed bool, st *walkState) error {
	raw, err := v.ReadBytes(size)
	if err != nil {
		return err
	}
	if len(raw) < 4 {
		return wwerr.New(pkg, wwerr.CorruptData, "partial codebook chunk too small")
	}
	offset := int(view.LE32(raw, 0))
	if offset > len(st.codebook) {
		return wwerr.New(pkg, wwerr.CorruptData, "partial codebook offset out of range")
	}
	payload := raw[4:]
	if compressed {
		decoded, err := lcw.DecodeSize(payload, len(st.codebook)-offset, true)
		if err != nil {
			return err
		}
		copy(st.codebook[offset:], decoded)
	} else {
		n := len(payload)
		if offset+n > len(st.codebook) {
			n = len(st.codebook) - offset
		}
		copy(st.codebook[offset:], payload[:n])
	}
	return nil
}

func handlePalette(v *view.View, size int, compressed bool, st *walkState) error {
	raw, err := v.ReadBytes(size)
	if err != nil {
		return err
	}
	var raw768 []byte
	if compressed {
		raw768, err = lcw.DecodeSize(raw, palette.Size, true)
		if err != nil {
			return err
		}
	} else {
		if len(raw) < palette.Size {
			return wwerr.New(pkg, wwerr.CorruptData, "palette chunk too small")
		}
		raw768 = raw[:palette.Size]
	}
	colors, err := palette.Decode(raw768)
	if err != nil {
		return err
	}
	st.pal = colors
	return nil
}

func assembleFrame(v *view.View, size int, compressed bool, hdr Header, hicolor bool, blocksX, blocksY, blockSize int, st *walkState) (Frame, error) {
	raw, err := v.ReadBytes(size)
	if err != nil {
		return Frame{}, err
	}

	indexBytes := 1
	if hdr.Version == 1 || hicolor {
		indexBytes = 2
	}

	var vpt []byte
	if compressed {
		want := blocksX * blocksY * indexBytes
		vpt, err = lcw.DecodeSize(raw, want, true)
		if err != nil {
			return Frame{}, err
		}
	} else {
		vpt = raw
	}

	isV1 := hdr.Version == 1
	pos := 0
	for by := 0; by < blocksY && pos < len(vpt); by++ {
		for bx := 0; bx < blocksX && pos < len(vpt); bx++ {
			var cbIdx int
			uniform := false
			uniformColor := byte(0)

			switch {
			case isV1 && pos+1 < len(vpt):
				lo, hi := vpt[pos], vpt[pos+1]
				pos += 2
				if hi == 0xFF {
					uniform = true
					uniformColor = lo
				} else {
					cbIdx = (int(hi)*256 + int(lo)) / 8
				}
			case hicolor && pos+1 < len(vpt):
				cbIdx = int(vpt[pos]) | int(vpt[pos+1])<<8
				pos += 2
			default:
				cbIdx = int(vpt[pos])
				pos++
			}

			if !uniform && cbIdx >= hdr.MaxBlocks {
				continue
			}

			var block []byte
			if !uniform {
				off := cbIdx * blockSize
				if off+blockSize > len(st.codebook) {
					continue
				}
				block = st.codebook[off : off+blockSize]
			}

			for py := 0; py < hdr.BlockH; py++ {
				for px := 0; px < hdr.BlockW; px++ {
					fx := bx*hdr.BlockW + px
					fy := by*hdr.BlockH + py
					if fx >= hdr.Width || fy >= hdr.Height {
						continue
					}
					dst := (fy*hdr.Width + fx) * 3

					switch {
					case uniform:
						c := st.pal[uniformColor]
						st.frame[dst], st.frame[dst+1], st.frame[dst+2] = c.R, c.G, c.B
					case hicolor:
						src := (py*hdr.BlockW + px) * 2
						pixel := uint16(block[src]) | uint16(block[src+1])<<8
						st.frame[dst] = byte(((pixel >> 10) & 0x1F) << 3)
						st.frame[dst+1] = byte(((pixel >> 5) & 0x1F) << 3)
						st.frame[dst+2] = byte((pixel & 0x1F) << 3)
					default:
						src := py*hdr.BlockW + px
						c := st.pal[block[src]]
						st.frame[dst], st.frame[dst+1], st.frame[dst+2] = c.R, c.G, c.B
					}
				}
			}
		}
	}

	return Frame{RGB: append([]byte(nil), st.frame...), Width: hdr.Width, Height: hdr.Height}, nil
}

// DecodeAudio walks the chunk stream and decodes every audio sub-stream
// chunk into one interleaved signed-16-bit PCM buffer, in file order.
// Each SND2 chunk carries its own per-channel predictor/step prefix, so
// IMA state does not carry across chunk boundaries.
func (r *Reader) DecodeAudio() ([]int16, error) {
	if r.info.AudioCodec == AudioNone {
		return nil, nil
	}

	var out []int16

	v := view.New(pkg, r.data)
	if err := v.Seek(12); err != nil {
		return nil, err
	}

	for v.Remaining() >= 8 {
		tag, err := v.ReadTag()
		if err != nil {
			break
		}
		size, err := v.ReadU32BE()
		if err != nil {
			break
		}

		switch tag {
		case "SND0":
			raw, err := v.ReadBytes(int(size))
			if err != nil {
				return nil, err
			}
			if r.info.Header.Bits == 16 {
				out = append(out, adpcm.PCM16LEToI16(raw)...)
			} else {
				out = append(out, adpcm.PCM8ToI16(raw)...)
			}
			if size&1 != 0 {
				_ = v.Skip(1)
			}
		case "SND1":
			raw, err := v.ReadBytes(int(size))
			if err != nil {
				return nil, err
			}
			out = append(out, adpcm.DecodeWestwood(raw)...)
			if size&1 != 0 {
				_ = v.Skip(1)
			}
		case "SND2":
			raw, err := v.ReadBytes(int(size))
			if err != nil {
				return nil, err
			}
			samples, err := adpcm.DecodeIMA(raw, r.info.Header.Channels)
			if err != nil {
				return nil, err
			}
			out = append(out, samples...)
			if size&1 != 0 {
				_ = v.Skip(1)
			}
		case "VQFR", "VQFL":
			continue
		default:
			if err := v.Skip(int(size + (size & 1))); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}
