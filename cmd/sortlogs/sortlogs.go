// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sortlogs merges the per-component log files of a run
// directory into one timestamp-ordered stream.
package sortlogs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/logsort"
	"github.com/daqtools/daqctl/internal/workspace"
	"github.com/spf13/afero"
)

const (
	dirArg     = "dir"
	outputFlag = "output"
)

// ErrNoLogs is returned when the run directory holds no log files.
var ErrNoLogs = errors.New("no log files found")

type cmd struct {
	Out io.Writer
}

// New returns the sortlogs command.
func New() command.Command {
	return &cmd{Out: os.Stdout}
}

func (*cmd) Name() string {
	return "sortlogs"
}

func (*cmd) Description() string {
	return "Merge a run directory's log files into one time-ordered stream."
}

func (*cmd) Epilog() string {
	return "Entries are ordered by timestamp; ties break by level, then component."
}

func (*cmd) AddArguments(set *argset.Set) error {
	set.OptionalPositional(dirArg, "run directory holding the log files (default current directory)")
	set.Flags().StringP(outputFlag, "o", "", "write the merged stream to this file instead of stdout")

	return nil
}

// Any host may sort logs.
func (*cmd) IsValidHost(*argset.Set) bool {
	return true
}

func (c *cmd) Run(_ context.Context, set *argset.Set) error {
	fs := workspace.FsFactory()

	dir := set.Arg(dirArg)
	if dir == "" {
		dir = "."
	}

	paths, err := afero.Glob(fs, filepath.Join(dir, "*.log"))
	if err != nil {
		return fmt.Errorf("cannot scan %s: %w", dir, err)
	}

	if len(paths) == 0 {
		return fmt.Errorf("%w in %s", ErrNoLogs, dir)
	}

	sort.Strings(paths)

	out := c.Out

	if path, _ := set.Flags().GetString(outputFlag); path != "" {
		f, err := fs.Create(path)
		if err != nil {
			return fmt.Errorf("cannot create %s: %w", path, err)
		}
		defer f.Close()

		out = f
	}

	return logsort.SortFiles(fs, paths, out)
}
