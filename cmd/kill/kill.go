// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package kill stops the DAQ components described by the cluster
// description.
package kill

import (
	"context"
	"errors"
	"fmt"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/cluster"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/hostid"
	"github.com/daqtools/daqctl/internal/launcher"
	"github.com/daqtools/daqctl/internal/workspace"
)

const (
	forceFlag  = "force"
	dryRunFlag = "dry-run"
)

// ErrKill is returned when one or more components could not be stopped.
var ErrKill = errors.New("kill failed")

type cmd struct{}

// New returns the kill command.
func New() command.Command {
	return &cmd{}
}

func (*cmd) Name() string {
	return "kill"
}

func (*cmd) Description() string {
	return "Stop the DAQ components on their assigned hosts."
}

func (*cmd) Epilog() string {
	return ""
}

func (*cmd) AddArguments(set *argset.Set) error {
	set.Flags().BoolP(forceFlag, "f", false, "send SIGKILL instead of SIGTERM")
	set.Flags().BoolP(dryRunFlag, "n", false, "print what would be done without doing it")
	set.EnableNoHostCheck()

	return nil
}

func (*cmd) IsValidHost(*argset.Set) bool {
	return hostid.IsHost(hostid.Control)
}

func (*cmd) Run(ctx context.Context, set *argset.Set) error {
	fs := workspace.FsFactory()

	paths, err := workspace.Default()
	if err != nil {
		return err
	}

	desc, err := cluster.Load(fs, paths.ClusterFile())
	if err != nil {
		return err
	}

	local, err := hostid.Hostname()
	if err != nil {
		return fmt.Errorf("cannot determine local hostname: %w", err)
	}

	l := launcher.New(desc, fs, paths.PidDir(), local)

	if force, _ := set.Flags().GetBool(forceFlag); force {
		l.SetForce(true)
	}

	if dry, _ := set.Flags().GetBool(dryRunFlag); dry {
		l.SetDryRun(true)
	}

	if err := l.Kill(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrKill, err)
	}

	return nil
}
