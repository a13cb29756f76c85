// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package help prints a command's description, epilog and argument
// usage.
package help

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/registry"
)

const commandArg = "command"

type cmd struct {
	Out         io.Writer
	newRegistry func() *registry.Registry
}

// New returns the help command. newRegistry must build the same
// registry the top-level dispatcher uses.
func New(newRegistry func() *registry.Registry) command.Command {
	return &cmd{Out: os.Stdout, newRegistry: newRegistry}
}

func (*cmd) Name() string {
	return "help"
}

func (*cmd) Description() string {
	return "Show help for a command."
}

func (*cmd) Epilog() string {
	return ""
}

func (*cmd) AddArguments(set *argset.Set) error {
	set.OptionalPositional(commandArg, "command to describe (default: list all commands)")

	return nil
}

func (*cmd) IsValidHost(*argset.Set) bool {
	return true
}

func (c *cmd) Run(_ context.Context, set *argset.Set) error {
	reg := c.newRegistry()

	if !set.HasArg(commandArg) {
		for _, cm := range reg.All() {
			fmt.Fprintf(c.Out, "  %-12s %s\n", cm.Name(), cm.Description())
		}

		return nil
	}

	name := set.Arg(commandArg)

	target, ok := reg.Lookup(name)
	if !ok {
		fmt.Fprintf(c.Out, "no such command: %s\n", name)
		return nil
	}

	fmt.Fprintf(c.Out, "%s - %s\n", target.Name(), target.Description())

	usage := argset.New(target.Name())
	if err := target.AddArguments(usage); err != nil {
		fmt.Fprintf(c.Out, "\n(arguments unavailable: %v)\n", err)
	} else {
		fmt.Fprintf(c.Out, "\nusage: %s", usage.Usage())
	}

	if e := target.Epilog(); e != "" {
		fmt.Fprintf(c.Out, "\n%s\n", e)
	}

	return nil
}
