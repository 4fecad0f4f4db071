// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package adpcm implements the two ADPCM variants Westwood's audio
// formats share: the block-structured "Westwood ADPCM" used by VQA v1's
// SND1 chunks, and standard IMA ADPCM used by VQA's SND2 chunks and AUD's
// compression type 99. Both are decoded once here so vqa and aud need not
// duplicate the nibble/step-table arithmetic.
package adpcm

import "github.com/jassoncasey/westwood/internal/wwerr"

const pkg = "adpcm"

// imaStepTable is the standard 89-entry IMA ADPCM quantizer step table.
var imaStepTable = [89]int{
	7, 8, 9, 10, 11, 12, 13, 14, 16, 17, 19, 21, 23, 25, 28, 31,
	34, 37, 41, 45, 50, 55, 60, 66, 73, 80, 88, 97, 107, 118, 130, 143,
	157, 173, 190, 209, 230, 253, 279, 307, 337, 371, 408, 449, 494, 544, 598, 658,
	724, 796, 876, 963, 1060, 1166, 1282, 1411, 1552, 1707, 1878, 2066, 2272, 2499, 2749, 3024,
	3327, 3660, 4026, 4428, 4871, 5358, 5894, 6484, 7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794, 32767,
}

// imaIndexTable adjusts the step-table index per nibble; index 8..15
// mirror 0..7 since only the low 3 bits plus sign matter.
var imaIndexTable = [16]int{
	-1, -1, -1, -1, 2, 4, 6, 8,
	-1, -1, -1, -1, 2, 4, 6, 8,
}

// wsIndexAdjust is the same adjustment table addressed by nibble & 0x7,
// kept separate because Westwood ADPCM never looks at the sign bit here
// (it tracks sign on the accumulated sample, not the index).
var wsIndexAdjust = [8]int{-1, -1, -1, -1, 2, 4, 6, 8}

func clampI16(v int) int16 {
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	return int16(v)
}

func clampIndex(v int) int {
	if v < 0 {
		return 0
	}
	if v > 88 {
		return 88
	}
	return v
}

// DecodeWestwood decodes a VQA SND1 block stream: a sequence of blocks,
// each beginning with a count byte. A count with the high bit set
// introduces a run of delta-coded nibbles (count & 0x7F deltas, or, if
// that is zero, a following byte gives the real count); low nibble of
// each delta byte decodes first. A count below 0x80 introduces that many
// raw 8-bit unsigned samples, each widened to 16-bit signed and resetting
// the predictor index to 0.
func DecodeWestwood(src []byte) []int16 {
	var out []int16
	sample := 0
	index := 0
	pos := 0

	for pos < len(src) {
		count := src[pos]
		pos++

		if count&0x80 != 0 {
			n := int(count & 0x7F)
			if n == 0 {
				if pos >= len(src) {
					break
				}
				n = int(src[pos])
				pos++
				if n == 0 {
					continue
				}
			}
			for i := 0; i < n && pos < len(src); i++ {
				delta := src[pos]
				pos++
				for half := 0; half < 2; half++ {
					var nibble int
					if half == 0 {
						nibble = int(delta & 0x0F)
					} else {
						nibble = int(delta>>4) & 0x0F
					}

					step := imaStepTable[index]
					diff := step >> 3
					if nibble&4 != 0 {
						diff += step
					}
					if nibble&2 != 0 {
						diff += step >> 1
					}
					if nibble&1 != 0 {
						diff += step >> 2
					}
					if nibble&8 != 0 {
						sample -= diff
					} else {
						sample += diff
					}
					if sample < -32768 {
						sample = -32768
					}
					if sample > 32767 {
						sample = 32767
					}
					out = append(out, int16(sample))

					index += wsIndexAdjust[nibble&0x07]
					index = clampIndex(index)
				}
			}
		} else {
			n := int(count)
			for i := 0; i < n && pos < len(src); i++ {
				raw := src[pos]
				pos++
				sample = (int(raw) - 128) << 8
				out = append(out, int16(sample))
			}
			index = 0
		}
	}
	return out
}

// IMAState carries one channel's running predictor and step index across
// calls to DecodeIMASample.
type IMAState struct {
	Predictor int16
	StepIndex int
}

// DecodeIMASample decodes one 4-bit nibble into a signed 16-bit sample,
// advancing state in place. Shared by both VQA's SND2 and AUD's IMA
// ADPCM payloads.
func DecodeIMASample(nibble uint8, state *IMAState) int16 {
	step := imaStepTable[state.StepIndex]
	diff := step >> 3
	if nibble&1 != 0 {
		diff += step >> 2
	}
	if nibble&2 != 0 {
		diff += step >> 1
	}
	if nibble&4 != 0 {
		diff += step
	}
	if nibble&8 != 0 {
		diff = -diff
	}

	pred := int(state.Predictor) + diff
	state.Predictor = clampI16(pred)
	state.StepIndex = clampIndex(state.StepIndex + imaIndexTable[nibble&0x0F])
	return state.Predictor
}

// DecodeIMA decodes a full IMA ADPCM payload. If channels == 2, the
// payload is expected to lead with an 8-byte per-channel state prefix (4
// bytes left, 4 bytes right: i16 LE predictor then u8 step index, one pad
// byte); mono leads with a 4-byte prefix. Each remaining byte holds two
// nibbles; mono decodes both nibbles against the single channel, stereo
// routes the low nibble to the left channel and the high nibble to the
// right, interleaving the output L,R,L,R...
func DecodeIMA(src []byte, channels int) ([]int16, error) {
	if channels != 1 && channels != 2 {
		return nil, wwerr.Newf(pkg, wwerr.InvalidFormat, "unsupported channel count %d", channels)
	}

	var left, right IMAState
	pos := 0
	if channels == 2 {
		if len(src) < 8 {
			return nil, wwerr.New(pkg, wwerr.UnexpectedEof, "IMA stereo prefix truncated")
		}
		left.Predictor = int16(uint16(src[0]) | uint16(src[1])<<8)
		left.StepIndex = clampIndex(int(src[2]))
		right.Predictor = int16(uint16(src[4]) | uint16(src[5])<<8)
		right.StepIndex = clampIndex(int(src[6]))
		pos = 8
	} else {
		if len(src) < 4 {
			return nil, wwerr.New(pkg, wwerr.UnexpectedEof, "IMA mono prefix truncated")
		}
		left.Predictor = int16(uint16(src[0]) | uint16(src[1])<<8)
		left.StepIndex = clampIndex(int(src[2]))
		pos = 4
	}

	var out []int16
	for ; pos < len(src); pos++ {
		b := src[pos]
		if channels == 2 {
			out = append(out, DecodeIMASample(b&0x0F, &left))
			out = append(out, DecodeIMASample(b>>4, &right))
		} else {
			out = append(out, DecodeIMASample(b&0x0F, &left))
			out = append(out, DecodeIMASample(b>>4, &left))
		}
	}
	return out, nil
}

// PCM8ToI16 widens raw 8-bit unsigned PCM into signed 16-bit samples, the
// convention every raw-audio path in this module (VQA SND0, AUD
// uncompressed) uses.
func PCM8ToI16(raw []byte) []int16 {
	out := make([]int16, len(raw))
	for i, b := range raw {
		out[i] = int16((int(b) - 128) << 8)
	}
	return out
}

// PCM16LEToI16 reinterprets little-endian 16-bit PCM bytes as signed
// samples, truncating a trailing odd byte.
func PCM16LEToI16(raw []byte) []int16 {
	n := len(raw) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(uint16(raw[i*2]) | uint16(raw[i*2+1])<<8)
	}
	return out
}
