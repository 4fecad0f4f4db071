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

	"github.com/jassoncasey/westwood/mix"
)

func newMixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mix",
		Short: "Inspect and extract Westwood MIX archives",
	}
	cmd.AddCommand(newMixListCmd())
	cmd.AddCommand(newMixExtractCmd())
	return cmd
}

func openMix(path string) (*mix.Reader, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	r, err := mix.Open(data)
	if err != nil {
		return nil, formatErr(err)
	}
	return r, nil
}

func newMixListCmd() *cobra.Command {
	var namesFile string
	cmd := &cobra.Command{
		Use:   "list <archive>",
		Short: "List archive entries as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openMix(args[0])
			if err != nil {
				return err
			}
			if namesFile != "" {
				names, err := readFile(namesFile)
				if err != nil {
					return err
				}
				r.ResolveNames(splitLines(string(names)))
			}
			return json.NewEncoder(os.Stdout).Encode(struct {
				Info    mix.Info    `json:"info"`
				Entries []mix.Entry `json:"entries"`
			}{r.Info(), r.Entries()})
		},
	}
	cmd.Flags().StringVar(&namesFile, "names", "", "newline-separated candidate filenames to resolve hashes against")
	return cmd
}

func newMixExtractCmd() *cobra.Command {
	var outDir string
	var namesFile string
	cmd := &cobra.Command{
		Use:   "extract <archive>",
		Short: "Extract every archive entry to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openMix(args[0])
			if err != nil {
				return err
			}
			if namesFile != "" {
				names, err := readFile(namesFile)
				if err != nil {
					return err
				}
				r.ResolveNames(splitLines(string(names)))
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return ioErr(err)
			}
			for _, e := range r.Entries() {
				buf, err := r.Read(e)
				if err != nil {
					return formatErr(err)
				}
				name := e.Name
				if name == "" {
					name = fmt.Sprintf("%08x.bin", e.Hash)
				}
				if err := os.WriteFile(filepath.Join(outDir, name), buf, 0o644); err != nil {
					return ioErr(err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	cmd.Flags().StringVar(&namesFile, "names", "", "newline-separated candidate filenames to resolve hashes against")
	return cmd
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			line := s[start:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			if line != "" {
				out = append(out, line)
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
