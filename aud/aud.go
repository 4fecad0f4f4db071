// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package aud reads Westwood's standalone AUD audio container: a 12-byte
// header followed by a block-structured payload compressed with one of
// two ADPCM variants, or carried raw. It shares its ADPCM decoders with
// the vqa package's embedded audio sub-streams.
package aud

import (
	"github.com/jassoncasey/westwood/internal/adpcm"
	"github.com/jassoncasey/westwood/internal/view"
	"github.com/jassoncasey/westwood/internal/wwerr"
)

const pkg = "aud"

const headerSize = 12

// Codec identifies how an AUD file's payload is compressed.
type Codec uint8

const (
	CodecUnknown Codec = iota
	CodecWestwoodADPCM
	CodecIMAADPCM
)

func (c Codec) String() string {
	switch c {
	case CodecWestwoodADPCM:
		return "Westwood ADPCM"
	case CodecIMAADPCM:
		return "IMA ADPCM"
	default:
		return "Unknown"
	}
}

// Info is an AUD file's header metadata.
type Info struct {
	SampleRate       int
	UncompressedSize int
	CompressedSize   int
	Channels         int
	Bits             int
	Codec            Codec
	FileSize         int
}

// Reader provides decode over a parsed AUD file.
type Reader struct {
	info    Info
	payload []byte
}

// Info returns the file's header metadata.
func (r *Reader) Info() Info { return r.info }

// SampleCount reports the number of samples the header's uncompressed
// size implies.
func (r *Reader) SampleCount() int {
	bytesPerSample := (r.info.Bits / 8) * r.info.Channels
	if bytesPerSample == 0 {
		return 0
	}
	return r.info.UncompressedSize / bytesPerSample
}

// Duration returns the stream's nominal playback duration in seconds, or
// zero if the header's sample rate is zero.
func (r *Reader) Duration() float64 {
	if r.info.SampleRate == 0 {
		return 0
	}
	return float64(r.SampleCount()) / float64(r.info.SampleRate)
}

// Open parses an AUD header from data; the remaining bytes are the
// compressed/raw payload, decoded on demand by Decode.
func Open(data []byte) (*Reader, error) {
	if len(data) < headerSize {
		return nil, wwerr.New(pkg, wwerr.CorruptHeader, "AUD file too small")
	}

	r := &Reader{}
	r.info.SampleRate = int(view.LE16(data, 0))
	r.info.UncompressedSize = int(view.LE32(data, 2))
	r.info.CompressedSize = int(view.LE32(data, 6))

	flags := data[10]
	if flags&0x01 != 0 {
		r.info.Channels = 2
	} else {
		r.info.Channels = 1
	}
	if flags&0x02 != 0 {
		r.info.Bits = 16
	} else {
		r.info.Bits = 8
	}

	switch data[11] {
	case 1:
		r.info.Codec = CodecWestwoodADPCM
	case 99:
		r.info.Codec = CodecIMAADPCM
	default:
		r.info.Codec = CodecUnknown
	}

	r.info.FileSize = len(data)

	// compressed_size is informational (the original format's declared
	// payload length); the payload itself is simply the rest of the file,
	// since this module loads the whole container into memory up front.
	r.payload = data[headerSize:]

	return r, nil
}

// Decode returns the full decoded sample stream as interleaved signed
// 16-bit PCM.
func (r *Reader) Decode() ([]int16, error) {
	switch r.info.Codec {
	case CodecWestwoodADPCM:
		return adpcm.DecodeWestwood(r.payload), nil
	case CodecIMAADPCM:
		return adpcm.DecodeIMA(r.payload, r.info.Channels)
	default:
		if r.info.Bits == 16 {
			return adpcm.PCM16LEToI16(r.payload), nil
		}
		return adpcm.PCM8ToI16(r.payload), nil
	}
}
