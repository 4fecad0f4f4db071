// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/jassoncasey/westwood/aud"
)

func newAUDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aud",
		Short: "Inspect and export AUD audio",
	}
	cmd.AddCommand(newAUDInfoCmd())
	cmd.AddCommand(newAUDExportCmd())
	return cmd
}

func openAUD(path string) (*aud.Reader, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	r, err := aud.Open(data)
	if err != nil {
		return nil, formatErr(err)
	}
	return r, nil
}

func newAUDInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Print an AUD file's header metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openAUD(args[0])
			if err != nil {
				return err
			}
			return json.NewEncoder(os.Stdout).Encode(r.Info())
		},
	}
}

func newAUDExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file> <out.wav>",
		Short: "Decode an AUD file and write it as WAV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openAUD(args[0])
			if err != nil {
				return err
			}
			samples, err := r.Decode()
			if err != nil {
				return formatErr(err)
			}
			info := r.Info()
			return writeWAV(args[1], samples, info.SampleRate, info.Channels)
		},
	}
}
