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

	"github.com/jassoncasey/westwood/vqa"
)

func newVQACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vqa",
		Short: "Inspect and export VQA video/audio",
	}
	cmd.AddCommand(newVQAInfoCmd())
	cmd.AddCommand(newVQAExportCmd())
	return cmd
}

func openVQA(path string) (*vqa.Reader, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	r, err := vqa.Open(data)
	if err != nil {
		return nil, formatErr(err)
	}
	return r, nil
}

func newVQAInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print a VQA stream's header metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openVQA(args[0])
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(r.Info())
		},
	}
}

// newVQAExportCmd decodes video frames as a sequence of numbered PNGs
// (VQA's RGB555/indexed frames don't fit a single fixed GIF palette the
// way an SHP/WSA sprite's shared palette does) and, when the stream
// carries an audio sub-stream, a companion WAV file.
func newVQAExportCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Decode video frames to PNGs and audio to a WAV, under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openVQA(args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return ioErr(err)
			}

			frames, err := r.DecodeVideo()
			if err != nil {
				return formatErr(err)
			}
			for i, f := range frames {
				name := filepath.Join(outDir, fmt.Sprintf("frame_%04d.png", i))
				if err := writeRGBPNG(name, f.Width, f.Height, f.RGB); err != nil {
					return err
				}
			}

			if r.Info().AudioCodec != vqa.AudioNone {
				samples, err := r.DecodeAudio()
				if err != nil {
					return formatErr(err)
				}
				hdr := r.Info().Header
				if err := writeWAV(filepath.Join(outDir, "audio.wav"), samples, hdr.SampleRate, hdr.Channels); err != nil {
					return err
				}
			}

			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	return cmd
}
