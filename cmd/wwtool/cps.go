// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/jassoncasey/westwood/cps"
	"github.com/jassoncasey/westwood/internal/palette"
)

func newCPSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cps",
		Short: "Inspect and export CPS still images",
	}
	cmd.AddCommand(newCPSInfoCmd())
	cmd.AddCommand(newCPSExportCmd())
	return cmd
}

func openCPS(path string) (*cps.Image, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	img, err := cps.Decode(data)
	if err != nil {
		return nil, formatErr(err)
	}
	return img, nil
}

func newCPSInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print a CPS image's header metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openCPS(args[0])
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(img.Info)
		},
	}
}

func newCPSExportCmd() *cobra.Command {
	var palettePath string
	cmd := &cobra.Command{
		Use:   "export <file> <out.png>",
		Short: "Decode a CPS image and write it as PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := openCPS(args[0])
			if err != nil {
				return err
			}
			pal, err := resolvePalette(img.Palette, palettePath)
			if err != nil {
				return err
			}
			return writePalettedPNG(args[1], cps.Width, cps.Height, img.Pixels, toGoPalette(pal))
		},
	}
	cmd.Flags().StringVar(&palettePath, "palette", "", "raw 768-byte palette file, required when the image carries none")
	return cmd
}

// resolvePalette prefers an embedded palette; falls back to a raw 768-byte
// file supplied on the command line, since several CPS files omit one and
// expect the caller to bring the game's standard palette.
func resolvePalette(embedded *[256]palette.Color, path string) ([256]palette.Color, error) {
	if embedded != nil {
		return *embedded, nil
	}
	if path == "" {
		return [256]palette.Color{}, argErr("image has no embedded palette; pass --palette")
	}
	raw, err := readFile(path)
	if err != nil {
		return [256]palette.Color{}, err
	}
	colors, err := palette.Decode(raw)
	if err != nil {
		return [256]palette.Color{}, formatErr(err)
	}
	return colors, nil
}
