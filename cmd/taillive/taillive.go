// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package taillive colorizes a live log stream. It reads stdin by
// default; --follow tails a file in a full-screen viewer.
package taillive

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/hostid"
	"github.com/daqtools/daqctl/internal/livelog"
	"github.com/daqtools/daqctl/internal/workspace"
	"golang.org/x/term"
)

const (
	followFlag      = "follow"
	printColorsFlag = "print-colors"
)

type cmd struct {
	In  io.Reader
	Out io.Writer
}

// New returns the taillive command.
func New() command.Command {
	return &cmd{In: os.Stdin, Out: os.Stdout}
}

func (*cmd) Name() string {
	return "taillive"
}

func (*cmd) Description() string {
	return "Colorize a live log stream."
}

func (*cmd) Epilog() string {
	return "Styles come from " + livelog.SchemeFileName +
		" in your home directory, or the file named by " + livelog.EnvColors + "."
}

func (*cmd) AddArguments(set *argset.Set) error {
	set.Flags().StringP(followFlag, "f", "", "tail this file in a full-screen viewer")
	set.Flags().Bool(printColorsFlag, false, "print the active color scheme and exit")
	set.EnableNoHostCheck()

	return nil
}

func (*cmd) IsValidHost(*argset.Set) bool {
	return hostid.IsHost(hostid.Control)
}

func (c *cmd) Run(ctx context.Context, set *argset.Set) error {
	fs := workspace.FsFactory()

	paths, err := workspace.Default()
	if err != nil {
		return err
	}

	scheme, err := livelog.LoadScheme(fs, livelog.SchemePath(paths.Home))
	if err != nil {
		return err
	}

	if print, _ := set.Flags().GetBool(printColorsFlag); print {
		dump, err := scheme.Dump()
		if err != nil {
			return err
		}

		fmt.Fprint(c.Out, dump)

		return nil
	}

	if path, _ := set.Flags().GetString(followFlag); path != "" {
		return followFile(ctx, fs, path, scheme)
	}

	renderer := livelog.NewRenderer(scheme, c.colorOut())

	scanner := bufio.NewScanner(c.In)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return command.ErrInterrupted
		default:
		}

		fmt.Fprintln(c.Out, renderer.Line(scanner.Text()))
	}

	return scanner.Err()
}

func (c *cmd) colorOut() bool {
	f, ok := c.Out.(*os.File)

	return ok && term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == ""
}
