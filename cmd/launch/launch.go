// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package launch starts the DAQ components described by the cluster
// description across the cluster.
package launch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/cluster"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/ctxlog"
	"github.com/daqtools/daqctl/internal/hostid"
	"github.com/daqtools/daqctl/internal/launcher"
	"github.com/daqtools/daqctl/internal/workspace"
)

const (
	clusterDescFlag = "cluster-desc"
	configFlag      = "config"
	skipKillFlag    = "skip-kill"
	forceFlag       = "force"
	dryRunFlag      = "dry-run"
)

var (
	// ErrLaunch is returned when the launch could not be completed.
	ErrLaunch = errors.New("launch failed")

	// ErrNoConfig is returned when the named run configuration does not
	// exist in the workspace.
	ErrNoConfig = errors.New("run configuration not found")
)

type cmd struct{}

// New returns the launch command.
func New() command.Command {
	return &cmd{}
}

func (*cmd) Name() string {
	return "launch"
}

func (*cmd) Description() string {
	return "Start the DAQ components on their assigned hosts."
}

func (*cmd) Epilog() string {
	return "Components already running are stopped first unless --skip-kill is given."
}

func (*cmd) AddArguments(set *argset.Set) error {
	set.Flags().StringP(clusterDescFlag, "C", "", "cluster description file")
	set.Flags().StringP(configFlag, "c", "", "run configuration name")
	set.Flags().Bool(skipKillFlag, false, "do not stop running components first")
	set.Flags().BoolP(forceFlag, "f", false, "send SIGKILL instead of SIGTERM when stopping")
	set.Flags().BoolP(dryRunFlag, "n", false, "print what would be done without doing it")
	set.EnableNoHostCheck()

	return nil
}

func (*cmd) IsValidHost(*argset.Set) bool {
	return hostid.IsHost(hostid.Control)
}

func (*cmd) Run(ctx context.Context, set *argset.Set) error {
	cfg, err := resolveRunConfig(set)
	if err != nil {
		return err
	}

	l, err := newLauncher(ctx, set)
	if err != nil {
		return err
	}

	if cfg != "" {
		l.SetRunConfig(cfg)
	}

	if force, _ := set.Flags().GetBool(forceFlag); force {
		l.SetForce(true)
	}

	skipKill, _ := set.Flags().GetBool(skipKillFlag)
	if !skipKill {
		if err := l.Kill(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrLaunch, err)
		}
	}

	if err := l.Launch(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	if cfg != "" {
		ctxlog.Info(ctx, "launched with run configuration", "config", cfg)
	}

	return nil
}

// resolveRunConfig validates the --config flag against the workspace run
// configuration directory. An empty flag is not an error.
func resolveRunConfig(set *argset.Set) (string, error) {
	cfg, _ := set.Flags().GetString(configFlag)
	if cfg == "" {
		return "", nil
	}

	paths, err := workspace.Default()
	if err != nil {
		return "", err
	}

	path := filepath.Join(paths.RunConfigDir(), cfg+".xml")

	ok, err := afero.Exists(workspace.FsFactory(), path)
	if err != nil {
		return "", fmt.Errorf("cannot check %s: %w", path, err)
	}

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoConfig, cfg)
	}

	return cfg, nil
}

// newLauncher resolves the cluster description and the local hostname into
// a ready Launcher.
func newLauncher(ctx context.Context, set *argset.Set) (*launcher.Launcher, error) {
	fs := workspace.FsFactory()

	paths, err := workspace.Default()
	if err != nil {
		return nil, err
	}

	descPath, _ := set.Flags().GetString(clusterDescFlag)
	if descPath == "" {
		descPath = paths.ClusterFile()
	}

	desc, err := cluster.Load(fs, descPath)
	if err != nil {
		return nil, err
	}

	local, err := hostid.Hostname()
	if err != nil {
		return nil, fmt.Errorf("cannot determine local hostname: %w", err)
	}

	l := launcher.New(desc, fs, paths.PidDir(), local)

	if dry, _ := set.Flags().GetBool(dryRunFlag); dry {
		ctxlog.Debug(ctx, "dry run", "cluster", descPath)
		l.SetDryRun(true)
	}

	return l, nil
}
