// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package workspace prints or repoints the current-workspace symlink.
package workspace

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/hostid"
	ws "github.com/daqtools/daqctl/internal/workspace"
)

const pathArg = "path"

type cmd struct {
	Out io.Writer
}

// New returns the workspace command.
func New() command.Command {
	return &cmd{Out: os.Stdout}
}

func (*cmd) Name() string {
	return "workspace"
}

func (*cmd) Description() string {
	return "Print or repoint the current-workspace symlink."
}

func (*cmd) Epilog() string {
	return "The target must be a workspace directory (dash and src subdirectories)."
}

func (*cmd) AddArguments(set *argset.Set) error {
	set.OptionalPositional(pathArg, "workspace directory to make current")
	set.EnableNoHostCheck()

	return nil
}

func (*cmd) IsValidHost(*argset.Set) bool {
	return hostid.IsHost(hostid.Build)
}

func (c *cmd) Run(_ context.Context, set *argset.Set) error {
	fs := ws.FsFactory()

	paths, err := ws.Default()
	if err != nil {
		return err
	}

	if !set.HasArg(pathArg) {
		target, err := ws.CurrentTarget(fs, paths.Current())
		if err != nil {
			return err
		}

		fmt.Fprintln(c.Out, target)

		return nil
	}

	if err := ws.Repoint(fs, paths.Current(), set.Arg(pathArg)); err != nil {
		return err
	}

	fmt.Fprintf(c.Out, "%s -> %s\n", paths.Current(), set.Arg(pathArg))

	return nil
}
