// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/jassoncasey/westwood/internal/palette"
	"github.com/jassoncasey/westwood/wsa"
)

func newWSACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wsa",
		Short: "Inspect and export WSA animations",
	}
	cmd.AddCommand(newWSAInfoCmd())
	cmd.AddCommand(newWSAExportCmd())
	return cmd
}

func openWSA(path string) (*wsa.Reader, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	r, err := wsa.Open(data)
	if err != nil {
		return nil, formatErr(err)
	}
	return r, nil
}

func newWSAInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print an animation's header metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openWSA(args[0])
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(r.Info())
		},
	}
}

func newWSAExportCmd() *cobra.Command {
	var palettePath string
	var delay int
	cmd := &cobra.Command{
		Use:   "export <file> <out.gif>",
		Short: "Decode every frame and write them as an animated GIF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openWSA(args[0])
			if err != nil {
				return err
			}
			var colors [256]palette.Color
			if embedded := r.Palette(); embedded != nil {
				colors = *embedded
			} else {
				var err error
				colors, err = resolvePalette(nil, palettePath)
				if err != nil {
					return err
				}
			}
			frames, err := r.DecodeAllFrames()
			if err != nil {
				return formatErr(err)
			}
			info := r.Info()
			return writePalettedGIF(args[1], info.Width, info.Height, frames, toGoPalette(colors), delay)
		},
	}
	cmd.Flags().StringVar(&palettePath, "palette", "", "raw 768-byte palette file, used when the animation carries none")
	cmd.Flags().IntVar(&delay, "delay", 5, "per-frame GIF delay in hundredths of a second")
	return cmd
}
