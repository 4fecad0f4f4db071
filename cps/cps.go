// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package cps reads Westwood's CPS still-image container: a fixed
// 320x200 (64,000 pixel) LCW-compressible bitmap with an optional
// embedded 768-byte palette.
package cps

import (
	"github.com/jassoncasey/westwood/internal/lcw"
	"github.com/jassoncasey/westwood/internal/palette"
	"github.com/jassoncasey/westwood/internal/view"
	"github.com/jassoncasey/westwood/internal/wwerr"
)

const pkg = "cps"

// Width and Height are fixed for every CPS image.
const (
	Width      = 320
	Height     = 200
	PixelCount = Width * Height
)

// Info is a CPS image's header metadata.
type Info struct {
	FileSize    int
	Compression int
	UncompSize  int
	PaletteSize int
	HasPalette  bool
}

// Image is a fully decoded CPS still image.
type Image struct {
	Info    Info
	Pixels  []byte // palette-index bytes, length PixelCount
	Palette *[256]palette.Color
}

// Decode parses and fully decodes a CPS image from data.
func Decode(data []byte) (*Image, error) {
	if len(data) < 10 {
		return nil, wwerr.New(pkg, wwerr.CorruptHeader, "CPS file too small")
	}

	v := view.New(pkg, data)
	fileSize, _ := v.ReadU16LE()
	compression, _ := v.ReadU16LE()
	uncompSize, _ := v.ReadU32LE()
	paletteSize, _ := v.ReadU16LE()

	info := Info{
		FileSize:    int(fileSize),
		Compression: int(compression),
		UncompSize:  int(uncompSize),
		PaletteSize: int(paletteSize),
		HasPalette:  paletteSize == 768,
	}

	if info.FileSize+2 > len(data) {
		return nil, wwerr.New(pkg, wwerr.CorruptHeader, "CPS file size mismatch")
	}
	if info.Compression != 0 && info.Compression != 4 {
		return nil, wwerr.New(pkg, wwerr.UnsupportedFormat, "unknown CPS compression method")
	}

	img := &Image{Info: info}

	if info.HasPalette {
		raw, err := v.ReadBytes(768)
		if err != nil {
			return nil, err
		}
		colors, err := palette.Decode(raw)
		if err != nil {
			return nil, err
		}
		img.Palette = &colors
	}

	imageData, err := v.ReadBytes(v.Remaining())
	if err != nil {
		return nil, err
	}

	var pixels []byte
	if info.Compression == 4 {
		pixels, err = lcw.DecodeSize(imageData, info.UncompSize, true)
		if err != nil {
			return nil, err
		}
	} else {
		pixels = append([]byte(nil), imageData...)
	}

	if len(pixels) != PixelCount {
		return nil, wwerr.New(pkg, wwerr.CorruptData, "CPS pixel data size mismatch")
	}
	img.Pixels = pixels

	return img, nil
}
