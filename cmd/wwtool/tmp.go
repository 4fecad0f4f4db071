// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jassoncasey/westwood/tileset"
)

func newTMPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tmp",
		Short: "Inspect and export TMP tilesets",
	}
	cmd.AddCommand(newTMPInfoCmd())
	cmd.AddCommand(newTMPExportCmd())
	return cmd
}

func openTMP(path string) (*tileset.Reader, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	r, err := tileset.Open(data)
	if err != nil {
		return nil, formatErr(err)
	}
	return r, nil
}

func newTMPInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print a tileset's header metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openTMP(args[0])
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(r.Info())
		},
	}
}

func newTMPExportCmd() *cobra.Command {
	var palettePath string
	var outDir string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Decode every tile and write each as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openTMP(args[0])
			if err != nil {
				return err
			}
			pal, err := resolvePalette(nil, palettePath)
			if err != nil {
				return err
			}
			goPal := toGoPalette(pal)

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return ioErr(err)
			}
			info := r.Info()
			tiles := r.DecodeAllTiles()
			for i, t := range tiles {
				if t == nil {
					continue
				}
				name := filepath.Join(outDir, fmt.Sprintf("tile_%04d.png", i))
				if err := writePalettedPNG(name, info.TileWidth, info.TileHeight, t, goPal); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&palettePath, "palette", "", "raw 768-byte palette file")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.MarkFlagRequired("palette")
	return cmd
}
