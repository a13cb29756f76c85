// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runnumber reads and updates the last-run-number file kept in
// the operator's home directory.
package runnumber

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/hostid"
	"github.com/daqtools/daqctl/internal/workspace"
)

const (
	numberArg = "number"
	resetFlag = "reset"
)

// ErrBadNumber is returned when the positional argument is not a
// positive integer.
var ErrBadNumber = errors.New("run number must be a positive integer")

type cmd struct {
	Out io.Writer
}

// New returns the runnumber command.
func New() command.Command {
	return &cmd{Out: os.Stdout}
}

func (*cmd) Name() string {
	return "runnumber"
}

func (*cmd) Description() string {
	return "Print or set the last run number."
}

func (*cmd) Epilog() string {
	return "With no argument the current run and subrun numbers are printed."
}

func (*cmd) AddArguments(set *argset.Set) error {
	set.OptionalPositional(numberArg, "run number to record")
	set.Flags().Bool(resetFlag, false, "reset the subrun number to zero")
	set.EnableNoHostCheck()

	return nil
}

func (*cmd) IsValidHost(*argset.Set) bool {
	return hostid.IsHost(hostid.Control)
}

func (c *cmd) Run(_ context.Context, set *argset.Set) error {
	fs := workspace.FsFactory()

	paths, err := workspace.Default()
	if err != nil {
		return err
	}

	file := paths.RunNumberFile()

	run, subrun, err := workspace.LastRun(fs, file)
	if err != nil {
		return err
	}

	if !set.HasArg(numberArg) && !mustBool(set, resetFlag) {
		fmt.Fprintf(c.Out, "%d %d\n", run, subrun)
		return nil
	}

	if set.HasArg(numberArg) {
		n, err := strconv.Atoi(set.Arg(numberArg))
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %q", ErrBadNumber, set.Arg(numberArg))
		}

		run = n
	}

	if mustBool(set, resetFlag) {
		subrun = 0
	}

	return workspace.SetLastRun(fs, file, run, subrun)
}

func mustBool(set *argset.Set, name string) bool {
	v, _ := set.Flags().GetBool(name)
	return v
}
