// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd assembles the command table. Every subcommand is
// registered here, in the order the command list prints them.
package cmd

import (
	"context"

	"github.com/daqtools/daqctl/cmd/commands"
	"github.com/daqtools/daqctl/cmd/deploy"
	"github.com/daqtools/daqctl/cmd/flash"
	"github.com/daqtools/daqctl/cmd/help"
	"github.com/daqtools/daqctl/cmd/kill"
	"github.com/daqtools/daqctl/cmd/launch"
	"github.com/daqtools/daqctl/cmd/runnumber"
	"github.com/daqtools/daqctl/cmd/shell"
	"github.com/daqtools/daqctl/cmd/sortlogs"
	"github.com/daqtools/daqctl/cmd/status"
	"github.com/daqtools/daqctl/cmd/taillive"
	"github.com/daqtools/daqctl/cmd/workspace"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/dispatch"
	"github.com/daqtools/daqctl/internal/registry"
)

// Default builds the full command registry. Each call returns a fresh
// registry; argument sets are single-parse.
func Default() *registry.Registry {
	reg := registry.New()

	for _, c := range []command.Command{
		launch.New(),
		kill.New(),
		status.New(),
		runnumber.New(),
		sortlogs.New(),
		workspace.New(),
		taillive.New(),
		deploy.New(),
		flash.New(),
		shell.New(Default),
		help.New(Default),
		commands.New(Default, Manifest),
	} {
		// a duplicate or unnamed command still lands in the registry,
		// where the commands --verify check reports it
		_ = reg.Add(c)
	}

	return reg
}

// Manifest lists the command names that must be registered. The
// commands --verify check compares it against Default().
func Manifest() []string {
	return []string{
		"launch",
		"kill",
		"status",
		"runnumber",
		"sortlogs",
		"workspace",
		"taillive",
		"deploy",
		"flash",
		"shell",
		"help",
		"commands",
	}
}

// Main dispatches argv (program name excluded) and returns the process
// exit code.
func Main(ctx context.Context, argv []string) int {
	return dispatch.New(Default()).Main(ctx, argv)
}
