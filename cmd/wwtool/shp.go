// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/jassoncasey/westwood/shp"
)

func newSHPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shp",
		Short: "Inspect and export SHP sprite animations",
	}
	cmd.AddCommand(newSHPInfoCmd())
	cmd.AddCommand(newSHPExportCmd())
	return cmd
}

func openSHP(path string) (*shp.Reader, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	r, err := shp.Open(data)
	if err != nil {
		return nil, formatErr(err)
	}
	return r, nil
}

func newSHPInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print a sprite container's header metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openSHP(args[0])
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(r.Info())
		},
	}
}

func newSHPExportCmd() *cobra.Command {
	var palettePath string
	var delay int
	cmd := &cobra.Command{
		Use:   "export <file> <out.gif>",
		Short: "Decode every frame and write them as an animated GIF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openSHP(args[0])
			if err != nil {
				return err
			}
			pal, err := resolvePalette(nil, palettePath)
			if err != nil {
				return err
			}
			frames, err := r.DecodeAllFrames()
			if err != nil {
				return formatErr(err)
			}
			info := r.Info()
			return writePalettedGIF(args[1], info.MaxWidth, info.MaxHeight, frames, toGoPalette(pal), delay)
		},
	}
	cmd.Flags().StringVar(&palettePath, "palette", "", "raw 768-byte palette file")
	cmd.Flags().IntVar(&delay, "delay", 5, "per-frame GIF delay in hundredths of a second")
	cmd.MarkFlagRequired("palette")
	return cmd
}
