// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jassoncasey/westwood/internal/palette"
)

func toGoPalette(pal [256]palette.Color) color.Palette {
	out := make(color.Palette, 256)
	for i, c := range pal {
		out[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
	}
	return out
}

func palettedImage(width, height int, pixels []byte, pal color.Palette) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, width, height), pal)
	copy(img.Pix, pixels)
	return img
}

func rgbImage(width, height int, rgb []byte) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		img.Pix[i*4+0] = rgb[i*3+0]
		img.Pix[i*4+1] = rgb[i*3+1]
		img.Pix[i*4+2] = rgb[i*3+2]
		img.Pix[i*4+3] = 0xFF
	}
	return img
}

func writePalettedPNG(path string, width, height int, pixels []byte, pal color.Palette) error {
	f, err := os.Create(path)
	if err != nil {
		return ioErr(err)
	}
	defer f.Close()
	if err := png.Encode(f, palettedImage(width, height, pixels, pal)); err != nil {
		return ioErr(err)
	}
	return nil
}

func writeRGBPNG(path string, width, height int, rgb []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return ioErr(err)
	}
	defer f.Close()
	if err := png.Encode(f, rgbImage(width, height, rgb)); err != nil {
		return ioErr(err)
	}
	return nil
}

// writePalettedGIF writes a sequence of same-size palette-index frames as
// an animated GIF, one logical frame per decoded animation frame.
func writePalettedGIF(path string, width, height int, frames [][]byte, pal color.Palette, delayCentiseconds int) error {
	f, err := os.Create(path)
	if err != nil {
		return ioErr(err)
	}
	defer f.Close()

	g := &gif.GIF{}
	for _, frame := range frames {
		g.Image = append(g.Image, palettedImage(width, height, frame, pal))
		g.Delay = append(g.Delay, delayCentiseconds)
	}
	if err := gif.EncodeAll(f, g); err != nil {
		return ioErr(err)
	}
	return nil
}

// writeWAV writes interleaved signed 16-bit PCM samples as a WAV file.
func writeWAV(path string, samples []int16, sampleRate, channels int) error {
	f, err := os.Create(path)
	if err != nil {
		return ioErr(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)

	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return ioErr(err)
	}
	if err := enc.Close(); err != nil {
		return ioErr(err)
	}
	return nil
}
