// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package mix

import (
	"bytes"
	"testing"

	"github.com/jassoncasey/westwood/internal/blowfish"
	"github.com/jassoncasey/westwood/internal/testutil"
	"github.com/jassoncasey/westwood/internal/wwhash"
)

func buildTD(t *testing.T, entries [][3]uint32, body []byte) []byte {
	t.Helper()
	header := testutil.Concat(
		testutil.U16LE(uint16(len(entries))),
		testutil.U32LE(uint32(len(body))),
	)
	var index []byte
	for _, e := range entries {
		index = testutil.Concat(index,
			testutil.U32LE(e[0]), testutil.U32LE(e[1]), testutil.U32LE(e[2]))
	}
	return testutil.Concat(header, index, body)
}

func TestOpenTD(t *testing.T) {
	body := make([]byte, 48)
	for i := range body {
		body[i] = byte(i)
	}
	data := buildTD(t, [][3]uint32{
		{0x11111111, 0, 16},
		{0x22222222, 16, 16},
		{0x33333333, 32, 16},
	}, body)

	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	info := r.Info()
	if info.Format != FormatTD {
		t.Errorf("Format = %v, want TD", info.Format)
	}
	if info.FileCount != 3 {
		t.Errorf("FileCount = %d, want 3", info.FileCount)
	}
	if r.bodyOffset != 42 {
		t.Errorf("bodyOffset = %d, want 42", r.bodyOffset)
	}

	for _, want := range r.entries {
		if want.Offset+want.Size > uint32(len(data)) {
			t.Errorf("entry %+v exceeds archive bounds", want)
		}
	}

	e, ok := r.Find(0x22222222)
	if !ok {
		t.Fatal("expected to find entry by hash")
	}
	got, err := r.Read(e)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 16 {
		t.Errorf("len(Read) = %d, want 16", len(got))
	}
}

func TestOpenTDRejectsExcessiveFileCount(t *testing.T) {
	header := testutil.Concat(testutil.U16LE(4096), testutil.U32LE(0))
	_, err := Open(header)
	if err == nil {
		t.Fatal("want CorruptHeader for file_count > 4095")
	}
}

func TestResolveNames(t *testing.T) {
	body := make([]byte, 16)
	h := wwhash.TD("TEST.BIN")
	data := buildTD(t, [][3]uint32{{h, 0, 16}}, body)
	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	r.ResolveNames([]string{"TEST.BIN"})
	e, ok := r.FindName("TEST.BIN")
	if !ok {
		t.Fatal("expected name to resolve")
	}
	if e.Hash != h {
		t.Errorf("resolved entry hash mismatch")
	}
}

func TestOpenRAUnencrypted(t *testing.T) {
	body := make([]byte, 32)
	data := testutil.Concat(
		testutil.U32LE(0x00010000), // checksum flag only
		testutil.U16LE(2),
		testutil.U32LE(uint32(len(body))),
		testutil.U32LE(0xAAAA0001), testutil.U32LE(0), testutil.U32LE(16),
		testutil.U32LE(0xAAAA0002), testutil.U32LE(16), testutil.U32LE(16),
		body,
	)

	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	info := r.Info()
	if info.Format != FormatRA {
		t.Errorf("Format = %v, want RA", info.Format)
	}
	if !info.HasChecksum || info.Encrypted {
		t.Errorf("flags misparsed: %+v", info)
	}
	if info.FileCount != 2 {
		t.Errorf("FileCount = %d, want 2", info.FileCount)
	}
}

// TestOpenRAEncrypted builds an encrypted RA archive with the real cipher
// and verifies the full open path: key derivation, decrypting the
// misaligned 8-byte header block, the 2-byte carry of the first index
// bytes out of that block, ECB-decrypting the rest of the index, and the
// resulting absolute entry offsets.
func TestOpenRAEncrypted(t *testing.T) {
	keySource := make([]byte, 80)
	for i := range keySource {
		keySource[i] = byte(i*3 + 1)
	}
	key, err := blowfish.DeriveKey(keySource)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	bf, err := blowfish.New(key)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	body := make([]byte, 48)
	for i := range body {
		body[i] = byte(0xC0 + i)
	}

	const count = 3
	index := testutil.Concat(
		testutil.U32LE(0x11111111), testutil.U32LE(0), testutil.U32LE(16),
		testutil.U32LE(0x22222222), testutil.U32LE(16), testutil.U32LE(16),
		testutil.U32LE(0x33333333), testutil.U32LE(32), testutil.U32LE(16),
	)

	// Plaintext stream: 6-byte header then the index; the first 8 bytes
	// become the standalone header block, the rest is padded to the ECB
	// block size.
	plain := testutil.Concat(
		testutil.U16LE(count),
		testutil.U32LE(uint32(len(body))),
		index,
	)
	p := (count*12 + 5) &^ 7
	padded := make([]byte, 8+p)
	copy(padded, plain)

	headerBlock := padded[:8]
	bf.EncryptBlock(headerBlock)
	if err := bf.Encrypt(padded[8:]); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	data := testutil.Concat(
		testutil.U32LE(0x00020000),
		keySource,
		padded,
		body,
	)

	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	info := r.Info()
	if !info.Encrypted {
		t.Error("Encrypted = false, want true")
	}
	if info.FileCount != count {
		t.Fatalf("FileCount = %d, want %d", info.FileCount, count)
	}
	if want := uint32(92 + p); r.bodyOffset != want {
		t.Errorf("bodyOffset = %d, want %d", r.bodyOffset, want)
	}

	var joined []byte
	for _, e := range r.Entries() {
		got, err := r.Read(e)
		if err != nil {
			t.Fatalf("Read(%08X): %v", e.Hash, err)
		}
		joined = append(joined, got...)
	}
	if !bytes.Equal(joined, body) {
		t.Errorf("concatenated entries differ from plaintext body")
	}
}

func TestOpenRAEncryptedRejectsZeroFileCount(t *testing.T) {
	keySource := make([]byte, 80)
	key, err := blowfish.DeriveKey(keySource)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	bf, err := blowfish.New(key)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	headerBlock := make([]byte, 8) // file_count == 0
	bf.EncryptBlock(headerBlock)

	data := testutil.Concat(testutil.U32LE(0x00020000), keySource, headerBlock)
	if _, err := Open(data); err == nil {
		t.Fatal("want CorruptHeader for decrypted file_count == 0")
	}
}

func TestOpenBig(t *testing.T) {
	names := []string{"art\\a.tga", "art\\b.tga"}
	payload := []byte("0123456789abcdef")

	var index []byte
	offset := uint32(64)
	for i, name := range names {
		index = testutil.Concat(index,
			testutil.U32BE(offset+uint32(i*8)),
			testutil.U32BE(8),
			append([]byte(name), 0),
		)
	}

	data := testutil.Concat(
		[]byte("BIGF"),
		testutil.U32LE(uint32(16+len(index)+len(payload))),
		testutil.U32BE(uint32(len(names))),
		testutil.U32BE(uint32(len(index))),
		index,
	)
	for len(data) < 64 {
		data = append(data, 0)
	}
	data = append(data, payload...)

	r, err := Open(data)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.Info().Format != FormatBig {
		t.Errorf("Format = %v, want BIG", r.Info().Format)
	}
	e, ok := r.FindName("art\\b.tga")
	if !ok {
		t.Fatal("expected inline name lookup to succeed")
	}
	got, err := r.Read(e)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 8 {
		t.Errorf("len(Read) = %d, want 8", len(got))
	}
}
