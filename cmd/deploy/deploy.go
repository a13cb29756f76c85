// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package deploy fetches a DAQ software bundle into the workspace.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/ctxlog"
	"github.com/daqtools/daqctl/internal/hostid"
	"github.com/daqtools/daqctl/internal/workspace"
	getter "github.com/hashicorp/go-getter/v2"
)

const (
	sourceArg = "source"
	destFlag  = "dest"
)

// ErrFetch is returned when the bundle cannot be retrieved.
var ErrFetch = errors.New("failed to fetch software bundle")

// fetch retrieves src into dst. Rebound in tests.
var fetch = func(ctx context.Context, src, dst, pwd string) error {
	cli := getter.Client{
		DisableSymlinks: true,
	}

	_, err := cli.Get(ctx, &getter.Request{
		Src:     src,
		Dst:     dst,
		Pwd:     pwd,
		GetMode: getter.ModeAny,
	})

	return err
}

type cmd struct{}

// New returns the deploy command.
func New() command.Command {
	return &cmd{}
}

func (*cmd) Name() string {
	return "deploy"
}

func (*cmd) Description() string {
	return "Fetch a DAQ software bundle into the workspace."
}

func (*cmd) Epilog() string {
	return "The source may be a local path, an HTTP(S) URL, a git URL or an archive."
}

func (*cmd) AddArguments(set *argset.Set) error {
	set.Positional(sourceArg, "bundle location (path, URL or archive)")
	set.Flags().StringP(destFlag, "d", "", "destination directory (default: the current workspace)")
	set.EnableNoHostCheck()

	return nil
}

func (*cmd) IsValidHost(*argset.Set) bool {
	return hostid.IsHost(hostid.Build)
}

func (*cmd) Run(ctx context.Context, set *argset.Set) error {
	paths, err := workspace.Default()
	if err != nil {
		return err
	}

	dest, _ := set.Flags().GetString(destFlag)
	if dest == "" {
		target, err := workspace.CurrentTarget(workspace.FsFactory(), paths.Current())
		if err != nil {
			return fmt.Errorf("%w: no destination and no current workspace: %w", ErrFetch, err)
		}

		dest = filepath.Join(target, "bundle")
	}

	wd, err := os.Getwd()
	if err != nil {
		return errors.Join(ErrFetch, err)
	}

	src := set.Arg(sourceArg)

	ctxlog.Info(ctx, "fetching bundle", "source", src, "dest", dest)

	if err := fetch(ctx, src, dest, wd); err != nil {
		if errors.Is(err, context.Canceled) {
			return command.ErrInterrupted
		}

		return errors.Join(ErrFetch, err)
	}

	return nil
}
