// Copyright 2017 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Report the headers of a PE file.
//
// Synopsis:
//     pecheck [-v] [--format text|json|yaml] [FILENAME]
//
// Description:
//     Windows and EFI executables are in the portable executable (PE) format.
//     This command prints the entry point, the section table, the data
//     directories and whether the image carries .NET metadata. With no
//     FILENAME, or with "-", the image is read from stdin.
//
//     On failure a single "[ERR]" line is printed instead. The exit status is
//     1 if the file could not be read, 2 on a usage error, 3 if the file is
//     not a valid PE image and 4 if the report could not be written.
//
// Options:
//     -f, --format: output format, text (default), json or yaml
//     -v, --verbose: log parser diagnostics to stderr
//
// Environment:
//     PECHECK_FORMAT: default for --format
//     PECHECK_VERBOSE: default for --verbose
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/pflag"
	"github.com/xyproto/env/v2"

	"github.com/u-root/pecheck/pkg/pe"
	"github.com/u-root/pecheck/pkg/uflag"
	"github.com/u-root/pecheck/pkg/uio"
)

const (
	exitOK     = 0
	exitOpen   = 1
	exitUsage  = 2
	exitFormat = 3
	exitWrite  = 4
)

// maxStdin caps how much of stdin is buffered before parsing.
const maxStdin = 512 << 20

const stdinName = "(stdin)"

func formats() []string {
	var s []string
	for _, f := range pe.Formats {
		s = append(s, string(f))
	}
	return s
}

func exitCode(err error) int {
	if errors.Is(err, pe.ErrFormat) {
		return exitFormat
	}
	return exitOpen
}

func loadStdin(stdin io.Reader, opts []pe.Option) (*pe.Image, error) {
	b, err := uio.ReadAll(stdin, maxStdin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pe.ErrOpen, err)
	}
	return pe.LoadBytes(stdinName, b, opts...)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "pecheck: ", 0)

	fs := pflag.NewFlagSet("pecheck", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	format := uflag.NewChoice(env.Str("PECHECK_FORMAT", string(pe.FormatText)), formats()...)
	fs.VarP(format, "format", "f", "output format")
	verbose := fs.BoolP("verbose", "v", env.Bool("PECHECK_VERBOSE"), "log parser diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	// The default may come from the environment and skip Set.
	if err := format.Set(format.String()); err != nil {
		logger.Printf("format %q: %v", format.String(), err)
		return exitUsage
	}

	var opts []pe.Option
	if *verbose {
		opts = append(opts, pe.WithLogger(logger))
	}

	var (
		img *pe.Image
		err error
	)
	switch fs.NArg() {
	case 0:
		img, err = loadStdin(stdin, opts)
	case 1:
		if name := fs.Arg(0); name == "-" {
			img, err = loadStdin(stdin, opts)
		} else {
			img, err = pe.Load(name, opts...)
		}
	default:
		logger.Print("Usage: pecheck [FILENAME]")
		return exitUsage
	}
	if err != nil {
		pe.ReportError(stdout, err)
		return exitCode(err)
	}

	if err := pe.Encode(stdout, img, pe.Format(format.String())); err != nil {
		logger.Printf("writing report: %v", err)
		return exitWrite
	}
	return exitOK
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
