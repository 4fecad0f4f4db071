// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package tileset reads Westwood's TMP tileset container: a fixed-size
// array of uncompressed tiles addressed by a sparse offset index.
//
// Tile payloads are never compressed — TMP trades density for decode simplicity, since tilesets
// are reused across many maps and decoded once per session.
package tileset

import (
	"github.com/jassoncasey/westwood/internal/view"
	"github.com/jassoncasey/westwood/internal/wwerr"
)

const pkg = "tileset"

// Format identifies which game's TMP header layout is present.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTD
	FormatRA
)

func (f Format) String() string {
	switch f {
	case FormatTD:
		return "TD"
	case FormatRA:
		return "RA"
	default:
		return "Unknown"
	}
}

// Info is a tileset's header metadata.
type Info struct {
	Format     Format
	TileWidth  int
	TileHeight int
	TileCount  int
	IndexStart int
	IndexEnd   int
	ImageStart int
	FileSize   int
	EmptyCount int
}

// Tile describes one tile slot. Valid is false for sparse (absent) tiles.
type Tile struct {
	Offset int
	Size   int
	Valid  bool
}

// Reader provides tile lookup and decode over a parsed TMP file.
type Reader struct {
	info  Info
	tiles []Tile
	data  []byte
}

// Info returns the tileset's header metadata.
func (r *Reader) Info() Info { return r.info }

// Tiles returns every tile slot in index order, including sparse ones.
func (r *Reader) Tiles() []Tile { return r.tiles }

// ValidTileCount returns the number of non-sparse tiles.
func (r *Reader) ValidTileCount() int { return r.info.TileCount - r.info.EmptyCount }

func detectFormat(data []byte) Format {
	if len(data) >= 28 {
		val20 := view.LE32(data, 20)
		val26 := view.LE16(data, 26)
		if val20 == 0 && val26 == 0x2C73 {
			return FormatRA
		}
	}
	if len(data) >= 24 {
		val16 := view.LE32(data, 16)
		val20 := view.LE32(data, 20)
		if val16 == 0 && val20 == 0x0D1AFFFF {
			return FormatTD
		}
	}
	return FormatRA
}

// Open parses a TMP tileset from data.
func Open(data []byte) (*Reader, error) {
	if len(data) < 40 {
		return nil, wwerr.New(pkg, wwerr.CorruptHeader, "TMP file too small")
	}

	r := &Reader{data: data}
	r.info.Format = detectFormat(data)
	r.info.TileWidth = int(view.LE16(data, 0))
	r.info.TileHeight = int(view.LE16(data, 2))
	r.info.TileCount = int(view.LE32(data, 4))
	r.info.IndexStart = int(view.LE32(data, 28))
	r.info.IndexEnd = int(view.LE32(data, 32))
	r.info.ImageStart = int(view.LE32(data, 36))
	r.info.FileSize = len(data)

	if r.info.TileWidth == 0 || r.info.TileHeight == 0 {
		return nil, wwerr.New(pkg, wwerr.CorruptHeader, "TMP invalid tile size")
	}
	if r.info.TileCount == 0 {
		return nil, wwerr.New(pkg, wwerr.CorruptHeader, "TMP has no tiles")
	}

	indexSize := r.info.IndexEnd - r.info.IndexStart
	if indexSize < 0 || r.info.IndexStart+indexSize > len(data) {
		return nil, wwerr.New(pkg, wwerr.CorruptIndex, "TMP index truncated")
	}

	tileSize := r.info.TileWidth * r.info.TileHeight
	r.tiles = make([]Tile, 0, r.info.TileCount)
	index := data[r.info.IndexStart:]
	emptyCount := 0

	for i := 0; i < r.info.TileCount; i++ {
		if (i+1)*4 > len(index) {
			return nil, wwerr.New(pkg, wwerr.CorruptIndex, "TMP index entry truncated")
		}
		offset := int(view.LE32(index, i*4))
		t := Tile{Offset: offset, Size: tileSize, Valid: offset != 0}
		if t.Valid && offset+tileSize > len(data) {
			return nil, wwerr.New(pkg, wwerr.CorruptData, "TMP tile data out of bounds")
		}
		if !t.Valid {
			emptyCount++
		}
		r.tiles = append(r.tiles, t)
	}
	r.info.EmptyCount = emptyCount

	return r, nil
}

// DecodeTile returns a copy of one tile's raw palette-index bytes, or nil
// if the index is out of range or the slot is sparse.
func (r *Reader) DecodeTile(index int) []byte {
	if index < 0 || index >= len(r.tiles) {
		return nil
	}
	t := r.tiles[index]
	if !t.Valid {
		return nil
	}
	if t.Offset+t.Size > len(r.data) {
		return nil
	}
	out := make([]byte, t.Size)
	copy(out, r.data[t.Offset:t.Offset+t.Size])
	return out
}

// DecodeAllTiles decodes every tile slot, with nil entries for sparse
// tiles.
func (r *Reader) DecodeAllTiles() [][]byte {
	out := make([][]byte, len(r.tiles))
	for i := range r.tiles {
		out[i] = r.DecodeTile(i)
	}
	return out
}
