// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package mix reads Westwood's archive ("MIX") container in each of its
// five variants: Tiberian Dawn, Red Alert (plain and Blowfish-encrypted
// index), Renegade, and the Generals/Zero Hour "BIG" format.
package mix

import (
	"github.com/jassoncasey/westwood/internal/blowfish"
	"github.com/jassoncasey/westwood/internal/view"
	"github.com/jassoncasey/westwood/internal/wwerr"
	"github.com/jassoncasey/westwood/internal/wwhash"
)

const pkg = "mix"

// Format identifies the on-disk archive layout.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTD
	FormatRA
	FormatRenegade
	FormatBig
)

func (f Format) String() string {
	switch f {
	case FormatTD:
		return "TD"
	case FormatRA:
		return "RA"
	case FormatRenegade:
		return "Renegade"
	case FormatBig:
		return "BIG"
	default:
		return "Unknown"
	}
}

// Game names the title whose hash/flag conventions an archive follows.
// Detected from the format plus a TS-marker-hash sentinel entry, since TS
// and RA2/YR reuse the RA container shape but the TS filename hash.
type Game uint8

const (
	GameUnknown Game = iota
	GameTiberianDawn
	GameRedAlert
	GameTiberianSun
	GameRenegade
	GameGenerals
	GameZeroHour
)

func (g Game) String() string {
	switch g {
	case GameTiberianDawn:
		return "Tiberian Dawn"
	case GameRedAlert:
		return "Red Alert"
	case GameTiberianSun:
		return "Tiberian Sun"
	case GameRenegade:
		return "Renegade"
	case GameGenerals:
		return "Generals"
	case GameZeroHour:
		return "Zero Hour"
	default:
		return "Unknown"
	}
}

const (
	flagChecksum   = 0x00010000
	flagEncrypted  = 0x00020000
	tsMarkerHash   = 0x763C81DD
	maxFileCount   = 4095
	indexEntrySize = 12
)

// Entry describes one archived file's location and identity.
type Entry struct {
	Hash   uint32
	Offset uint32
	Size   uint32
	Name   string // empty until resolved via ResolveNames or read from an embedded name table
}

// Info is an archive's metadata, independent of any particular entry.
type Info struct {
	Format      Format
	Game        Game
	Encrypted   bool
	HasChecksum bool
	FileCount   int
	FileSize    int
}

// Reader provides entry lookup and byte-range extraction over an archive
// that has already been parsed. It never copies the backing slice; Read
// returns a fresh copy of just the requested entry's bytes.
type Reader struct {
	info       Info
	entries    []Entry
	hashIndex  map[uint32]int
	nameIndex  map[string]int
	data       []byte
	bodyOffset uint32
}

// Info returns the archive's metadata.
func (r *Reader) Info() Info { return r.info }

// Entries returns every entry in on-disk order.
func (r *Reader) Entries() []Entry { return r.entries }

// Find looks up an entry by its stored hash.
func (r *Reader) Find(hash uint32) (Entry, bool) {
	i, ok := r.hashIndex[hash]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// FindName looks up an entry by a previously resolved filename.
func (r *Reader) FindName(name string) (Entry, bool) {
	i, ok := r.nameIndex[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// ResolveNames hashes each candidate name with the archive's game-specific
// hash function and assigns it to any entry whose hash matches and which
// doesn't already carry a name.
func (r *Reader) ResolveNames(names []string) {
	for _, name := range names {
		h := hashFor(r.info.Game, name)
		i, ok := r.hashIndex[h]
		if !ok || r.entries[i].Name != "" {
			continue
		}
		r.entries[i].Name = name
		r.nameIndex[name] = i
	}
}

// Read returns a copy of entry's bytes from the archive body.
func (r *Reader) Read(e Entry) ([]byte, error) {
	end := uint64(e.Offset) + uint64(e.Size)
	if end > uint64(len(r.data)) {
		return nil, wwerr.New(pkg, wwerr.ReadError, "entry extends past end of archive")
	}
	out := make([]byte, e.Size)
	copy(out, r.data[e.Offset:uint32(end)])
	return out, nil
}

func hashFor(game Game, name string) uint32 {
	switch game {
	case GameTiberianDawn, GameRedAlert:
		return wwhash.TD(name)
	default:
		return wwhash.TS(name)
	}
}

// Open detects the archive variant present in data and parses its index.
func Open(data []byte) (*Reader, error) {
	if len(data) < 6 {
		return nil, wwerr.New(pkg, wwerr.InvalidFormat, "file too small")
	}

	r := &Reader{
		hashIndex: make(map[uint32]int),
		nameIndex: make(map[string]int),
		data:      data,
	}

	magic := view.LE32(data, 0)
	switch magic {
	case 0x3158494D: // "MIX1"
		if err := parseRenegade(r, data); err != nil {
			return nil, err
		}
		return r, nil
	case 0x46474942, 0x34474942: // "BIGF", "BIG4"
		if err := parseBig(r, data, magic); err != nil {
			return nil, err
		}
		return r, nil
	}

	if view.LE16(data, 0) == 0 {
		flags := view.LE32(data, 0)
		if flags & ^uint32(flagChecksum|flagEncrypted) == 0 {
			if err := parseRA(r, data, flags); err != nil {
				return nil, err
			}
			return r, nil
		}
	}

	if err := parseTD(r, data); err != nil {
		return nil, err
	}
	return r, nil
}

func parseIndex(r *Reader, idx []byte, count int, baseOffset uint32) {
	r.entries = make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		p := idx[i*indexEntrySize:]
		e := Entry{
			Hash:   view.LE32(p, 0),
			Offset: view.LE32(p, 4) + baseOffset,
			Size:   view.LE32(p, 8),
		}
		// First entry wins on a hash collision; the duplicate stays
		// unnamed and unreachable by hash.
		if _, dup := r.hashIndex[e.Hash]; !dup {
			r.hashIndex[e.Hash] = len(r.entries)
		}
		r.entries = append(r.entries, e)
	}
}

func detectGame(format Format, entries []Entry) Game {
	for _, e := range entries {
		if e.Hash == tsMarkerHash {
			return GameTiberianSun
		}
	}
	switch format {
	case FormatTD:
		return GameTiberianDawn
	case FormatRA:
		return GameRedAlert
	case FormatRenegade:
		return GameRenegade
	case FormatBig:
		return GameGenerals
	default:
		return GameUnknown
	}
}

func parseTD(r *Reader, data []byte) error {
	if len(data) < 6 {
		return wwerr.New(pkg, wwerr.CorruptHeader, "TD header too small")
	}
	count := int(view.LE16(data, 0))
	if count > maxFileCount {
		return wwerr.New(pkg, wwerr.CorruptHeader, "file count too large")
	}
	hdrSize := 6 + count*indexEntrySize
	if len(data) < hdrSize {
		return wwerr.New(pkg, wwerr.CorruptIndex, "index truncated")
	}

	r.info.Format = FormatTD
	r.info.FileCount = count
	r.info.FileSize = len(data)
	r.bodyOffset = uint32(hdrSize)

	parseIndex(r, data[6:], count, r.bodyOffset)
	r.info.Game = detectGame(FormatTD, r.entries)
	return nil
}

func parseRA(r *Reader, data []byte, flags uint32) error {
	r.info.Format = FormatRA
	r.info.Encrypted = flags&flagEncrypted != 0
	r.info.HasChecksum = flags&flagChecksum != 0
	r.info.FileSize = len(data)

	if r.info.Encrypted {
		return parseRAEncrypted(r, data)
	}
	return parseRAUnencrypted(r, data)
}

func parseRAUnencrypted(r *Reader, data []byte) error {
	if len(data) < 10 {
		return wwerr.New(pkg, wwerr.CorruptHeader, "RA header too small")
	}
	count := int(view.LE16(data, 4))
	if count > maxFileCount {
		return wwerr.New(pkg, wwerr.CorruptHeader, "file count too large")
	}
	hdrSize := 10 + count*indexEntrySize
	if len(data) < hdrSize {
		return wwerr.New(pkg, wwerr.CorruptIndex, "index truncated")
	}

	r.info.FileCount = count
	r.bodyOffset = uint32(hdrSize)

	parseIndex(r, data[10:], count, r.bodyOffset)
	r.info.Game = detectGame(FormatRA, r.entries)
	return nil
}

const (
	keySourceOffset    = 4
	encryptedHdrOffset = 84
	encryptedIdxOffset = 92
)

func parseRAEncrypted(r *Reader, data []byte) error {
	if len(data) < encryptedIdxOffset {
		return wwerr.New(pkg, wwerr.CorruptHeader, "encrypted RA: file too small for header")
	}

	keySource := data[keySourceOffset : keySourceOffset+80]
	key, err := blowfish.DeriveKey(keySource)
	if err != nil {
		return err
	}
	bf, err := blowfish.New(key)
	if err != nil {
		return err
	}

	decHeader := make([]byte, 8)
	copy(decHeader, data[encryptedHdrOffset:encryptedHdrOffset+8])
	bf.DecryptBlock(decHeader)

	count := int(view.LE16(decHeader, 0))
	if count == 0 || count > maxFileCount {
		return wwerr.New(pkg, wwerr.CorruptHeader, "encrypted RA: invalid file count")
	}

	rawIndexSize := count * indexEntrySize
	p := (rawIndexSize + 5) &^ 7

	if len(data) < encryptedIdxOffset+p {
		return wwerr.New(pkg, wwerr.CorruptIndex, "encrypted RA: truncated encrypted index")
	}

	decIndex := make([]byte, p)
	copy(decIndex, data[encryptedIdxOffset:encryptedIdxOffset+p])
	if err := bf.Decrypt(decIndex); err != nil {
		return err
	}

	fullIndex := make([]byte, rawIndexSize)
	fullIndex[0] = decHeader[6]
	fullIndex[1] = decHeader[7]
	if rawIndexSize > 2 {
		copy(fullIndex[2:], decIndex[:rawIndexSize-2])
	}

	bodyOffset := uint32(encryptedIdxOffset + p)
	r.info.FileCount = count
	r.bodyOffset = bodyOffset

	parseIndex(r, fullIndex, count, bodyOffset)
	r.info.Game = detectGame(FormatRA, r.entries)
	return nil
}

const renegadeDataStart = 12

func parseRenegade(r *Reader, data []byte) error {
	if len(data) < renegadeDataStart {
		return wwerr.New(pkg, wwerr.CorruptHeader, "Renegade header too small")
	}

	headerOffset := view.LE32(data, 4)
	namesOffset := view.LE32(data, 8)

	r.info.Format = FormatRenegade
	r.info.Game = GameRenegade
	r.info.FileSize = len(data)
	r.bodyOffset = renegadeDataStart

	if uint64(headerOffset)+4 > uint64(len(data)) {
		return wwerr.New(pkg, wwerr.CorruptIndex, "index offset beyond file")
	}
	fileCount := int(view.LE32(data, int(headerOffset)))
	if fileCount > maxFileCount {
		return wwerr.New(pkg, wwerr.CorruptHeader, "file count too large")
	}
	r.info.FileCount = fileCount

	indexStart := int(headerOffset) + 4
	indexSize := fileCount * indexEntrySize
	if indexStart+indexSize > len(data) {
		return wwerr.New(pkg, wwerr.CorruptIndex, "index truncated")
	}

	r.entries = make([]Entry, 0, fileCount)
	p := data[indexStart:]
	for i := 0; i < fileCount; i++ {
		e := Entry{
			Hash:   view.LE32(p, i*indexEntrySize),
			Offset: view.LE32(p, i*indexEntrySize+4) + renegadeDataStart,
			Size:   view.LE32(p, i*indexEntrySize+8),
		}
		if _, dup := r.hashIndex[e.Hash]; !dup {
			r.hashIndex[e.Hash] = len(r.entries)
		}
		r.entries = append(r.entries, e)
	}

	if namesOffset > 0 && int(namesOffset) < len(data) {
		pos := int(namesOffset)
		for i := 0; i < len(r.entries) && pos < len(data); i++ {
			nameLen := int(data[pos])
			pos++
			if pos+nameLen > len(data) {
				break
			}
			name := string(data[pos : pos+nameLen])
			pos += nameLen

			crc := wwhash.TS(name)
			if idx, ok := r.hashIndex[crc]; ok {
				r.entries[idx].Name = name
				r.nameIndex[name] = idx
			}
		}
	}

	return nil
}

func parseBig(r *Reader, data []byte, magic uint32) error {
	if len(data) < 16 {
		return wwerr.New(pkg, wwerr.CorruptHeader, "BIG header too small")
	}

	r.info.Format = FormatBig
	if magic == 0x34474942 { // "BIG4"
		r.info.Game = GameZeroHour
	} else {
		r.info.Game = GameGenerals
	}
	r.info.FileSize = len(data)

	entryCount := int(view.BE32(data, 8))
	indexSize := int(view.BE32(data, 12))
	r.info.FileCount = entryCount

	pos := 16
	end := 16 + indexSize
	if end > len(data) {
		return wwerr.New(pkg, wwerr.CorruptIndex, "index beyond file")
	}

	r.entries = make([]Entry, 0, entryCount)
	for i := 0; i < entryCount; i++ {
		if pos+8 > end {
			return wwerr.New(pkg, wwerr.CorruptIndex, "entry truncated")
		}
		e := Entry{
			Offset: view.BE32(data, pos),
			Size:   view.BE32(data, pos+4),
		}
		pos += 8

		nameStart := pos
		for pos < end && data[pos] != 0 {
			pos++
		}
		if pos >= end {
			return wwerr.New(pkg, wwerr.CorruptIndex, "filename unterminated")
		}
		e.Name = string(data[nameStart:pos])
		pos++ // skip NUL

		e.Hash = wwhash.TS(e.Name)
		r.hashIndex[e.Hash] = len(r.entries)
		r.nameIndex[e.Name] = len(r.entries)
		r.entries = append(r.entries, e)
	}

	r.bodyOffset = 0
	return nil
}
