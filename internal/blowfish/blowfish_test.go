// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package blowfish

import (
	"bytes"
	"testing"
)

func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i * 7 + 1)
	}
	return key
}

func TestEncryptDecryptBlockRoundTrip(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF}
	block := append([]byte(nil), want...)

	c.EncryptBlock(block)
	if bytes.Equal(block, want) {
		t.Fatal("EncryptBlock did not change the block")
	}
	c.DecryptBlock(block)
	if !bytes.Equal(block, want) {
		t.Errorf("round trip mismatch: got %x, want %x", block, want)
	}
}

func TestDecryptRejectsUnalignedInput(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Decrypt(make([]byte, 5)); err == nil {
		t.Fatal("want error for non-multiple-of-8 input")
	}
}

func TestNewRejectsWrongKeySize(t *testing.T) {
	if _, err := New(make([]byte, 10)); err == nil {
		t.Fatal("want error for short key")
	}
}

func TestDeriveKeyProducesFixedLengthKey(t *testing.T) {
	src := make([]byte, 80)
	for i := range src {
		src[i] = byte(i)
	}
	key, err := DeriveKey(src)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if len(key) != KeySize {
		t.Errorf("len(key) = %d, want %d", len(key), KeySize)
	}
}

func TestDeriveKeyRejectsWrongSourceSize(t *testing.T) {
	if _, err := DeriveKey(make([]byte, 79)); err == nil {
		t.Fatal("want error for wrong key source length")
	}
}
