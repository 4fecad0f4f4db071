// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command wwtool is a single binary exposing info/export subcommands for
// every container format this module reads: MIX archives, CPS/TMP still
// images and tilesets, SHP/WSA frame animations, VQA video, and AUD
// audio. It is a thin external collaborator over the core library — all
// decode logic lives in the format packages; this binary only handles
// argument parsing, logging, and encoding decoded buffers to PNG/GIF/WAV
// sinks.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Exit codes, per the CLI surface contract: 0 success, 1 invalid
// argument, 2 format error, 3 I/O error.
const (
	exitOK          = 0
	exitInvalidArg  = 1
	exitFormatError = 2
	exitIOError     = 3
)

var verbose bool

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	root := &cobra.Command{
		Use:   "wwtool",
		Short: "Read Westwood Studios game asset containers",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newMixCmd(),
		newCPSCmd(),
		newTMPCmd(),
		newSHPCmd(),
		newWSACmd(),
		newVQACmd(),
		newAUDCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(exitCodeFor(err))
	}
}

// exitErr carries an explicit exit code alongside the error message a
// subcommand wants logged.
type exitErr struct {
	code int
	err  error
}

func (e *exitErr) Error() string { return e.err.Error() }
func (e *exitErr) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	if ee, ok := err.(*exitErr); ok {
		return ee.code
	}
	return exitFormatError
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &exitErr{code: exitIOError, err: err}
	}
	return data, nil
}

func formatErr(err error) error {
	return &exitErr{code: exitFormatError, err: err}
}

func ioErr(err error) error {
	return &exitErr{code: exitIOError, err: err}
}

func argErr(msg string) error {
	return &exitErr{code: exitInvalidArg, err: errString(msg)}
}

type errString string

func (e errString) Error() string { return string(e) }
