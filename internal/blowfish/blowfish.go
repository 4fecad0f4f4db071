// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package blowfish implements the cipher and key-derivation conventions
// Westwood's encrypted archives use.
//
// The block cipher itself is standard Blowfish; rather than re-transcribe
// the P-array/S-box initialization tables by hand (1,042 32-bit constants
// with no room for transcription error), this package builds on
// golang.org/x/crypto/blowfish, the canonical Go implementation, and adds
// only the two things that are actually Westwood-specific: the
// little-endian-word-swap convention applied before/after the Feistel
// network, and the public-key-based key derivation for encrypted MIX
// headers. See DESIGN.md for why the underlying cipher is not
// reimplemented from scratch.
package blowfish

import (
	"math/big"

	"golang.org/x/crypto/blowfish"

	"github.com/jassoncasey/westwood/internal/wwerr"
)

const pkg = "blowfish"

// KeySize is the exact key length Westwood's cipher requires.
const KeySize = 56

// BlockSize is the cipher's block length.
const BlockSize = 8

// Cipher wraps a standard Blowfish cipher keyed with a 56-byte Westwood
// key, applying the little-endian word swap on every block.
type Cipher struct {
	inner *blowfish.Cipher
}

// New constructs a Cipher from an exactly-56-byte key.
func New(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, wwerr.Newf(pkg, wwerr.InvalidKey, "key must be %d bytes, got %d", KeySize, len(key))
	}
	c, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, wwerr.Newf(pkg, wwerr.InvalidKey, "%v", err)
	}
	return &Cipher{inner: c}, nil
}

// swapWords reads block as two little-endian 32-bit words and writes them
// back byte-swapped into big-endian-word order, keeping the two words in
// place — Westwood's convention, needed because the reference Blowfish
// implementation expects big-endian words. Implementations that
// skip this step decrypt standard Blowfish cleartext byte-reversed.
func swapWords(block []byte) {
	var tmp [8]byte
	tmp[0], tmp[1], tmp[2], tmp[3] = block[3], block[2], block[1], block[0]
	tmp[4], tmp[5], tmp[6], tmp[7] = block[7], block[6], block[5], block[4]
	copy(block, tmp[:])
}

// DecryptBlock decrypts one 8-byte block in place.
func (c *Cipher) DecryptBlock(block []byte) {
	swapWords(block)
	c.inner.Decrypt(block, block)
	swapWords(block)
}

// EncryptBlock encrypts one 8-byte block in place.
func (c *Cipher) EncryptBlock(block []byte) {
	swapWords(block)
	c.inner.Encrypt(block, block)
	swapWords(block)
}

// Decrypt decrypts data in ECB mode in place. len(data) must be a multiple
// of BlockSize.
func (c *Cipher) Decrypt(data []byte) error {
	if len(data)%BlockSize != 0 {
		return wwerr.Newf(pkg, wwerr.InvalidKey, "data length %d is not a multiple of %d", len(data), BlockSize)
	}
	for i := 0; i < len(data); i += BlockSize {
		c.DecryptBlock(data[i : i+BlockSize])
	}
	return nil
}

// Encrypt encrypts data in ECB mode in place. len(data) must be a multiple
// of BlockSize.
func (c *Cipher) Encrypt(data []byte) error {
	if len(data)%BlockSize != 0 {
		return wwerr.Newf(pkg, wwerr.InvalidKey, "data length %d is not a multiple of %d", len(data), BlockSize)
	}
	for i := 0; i < len(data); i += BlockSize {
		c.EncryptBlock(data[i : i+BlockSize])
	}
	return nil
}

// publicModulus and publicExponent are Westwood's fixed public key,
// used by encrypted MIX archives to protect the 80-byte Blowfish key
// source. The modulus is the 40-byte integer distributed (DER-wrapped,
// base64) as "AihRvNoIbTn85FZRYNZRcT+i6KpU+maCsEqr3Q5q+LDB5tH7Tz2qQ38V"
// in the games' key rings.
var publicExponent = big.NewInt(65537)

var publicModulus = new(big.Int).SetBytes([]byte{
	0x51, 0xbc, 0xda, 0x08, 0x6d, 0x39, 0xfc, 0xe4, 0x56, 0x51,
	0x60, 0xd6, 0x51, 0x71, 0x3f, 0xa2, 0xe8, 0xaa, 0x54, 0xfa,
	0x66, 0x82, 0xb0, 0x4a, 0xab, 0xdd, 0x0e, 0x6a, 0xf8, 0xb0,
	0xc1, 0xe6, 0xd1, 0xfb, 0x4f, 0x3d, 0xaa, 0x43, 0x7f, 0x15,
})

// DeriveKey derives a 56-byte Blowfish key from the 80-byte key source
// read from an encrypted archive's header: the source is split into two
// 40-byte big-endian integers, each modular-exponentiated against the
// fixed public key, and the two 40-byte results are concatenated (high
// bytes first) and truncated to 56 bytes.
func DeriveKey(keySource []byte) ([]byte, error) {
	if len(keySource) != 80 {
		return nil, wwerr.Newf(pkg, wwerr.InvalidKey, "key source must be 80 bytes, got %d", len(keySource))
	}

	a := new(big.Int).SetBytes(keySource[:40])
	b := new(big.Int).SetBytes(keySource[40:])

	ra := new(big.Int).Exp(a, publicExponent, publicModulus)
	rb := new(big.Int).Exp(b, publicExponent, publicModulus)

	out := make([]byte, 0, 80)
	out = append(out, pad40(ra)...)
	out = append(out, pad40(rb)...)

	return out[:KeySize], nil
}

func pad40(v *big.Int) []byte {
	raw := v.Bytes()
	out := make([]byte, 40)
	copy(out[40-len(raw):], raw)
	return out
}
