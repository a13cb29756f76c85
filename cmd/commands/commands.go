// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commands exposes the command table for shell completion
// scripts and for the registration consistency check.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/registry"
)

const (
	namesFlag  = "names"
	argsFlag   = "args"
	verifyFlag = "verify"
)

type cmd struct {
	Out         io.Writer
	newRegistry func() *registry.Registry
	manifest    func() []string
}

// New returns the commands command. manifest supplies the expected
// command names for --verify.
func New(newRegistry func() *registry.Registry, manifest func() []string) command.Command {
	return &cmd{Out: os.Stdout, newRegistry: newRegistry, manifest: manifest}
}

func (*cmd) Name() string {
	return "commands"
}

func (*cmd) Description() string {
	return "List the command table for completion scripts."
}

func (*cmd) Epilog() string {
	return "Without flags every command is printed with its description."
}

func (*cmd) AddArguments(set *argset.Set) error {
	set.Flags().BoolP(namesFlag, "n", false, "print command names only")
	set.Flags().StringP(argsFlag, "a", "", "print the named command's flag spellings")
	set.Flags().Bool(verifyFlag, false, "check the registration list against the manifest")

	return nil
}

func (*cmd) IsValidHost(*argset.Set) bool {
	return true
}

func (c *cmd) Run(_ context.Context, set *argset.Set) error {
	reg := c.newRegistry()

	if verify, _ := set.Flags().GetBool(verifyFlag); verify {
		if err := registry.Verify(reg, c.manifest()); err != nil {
			fmt.Fprintf(c.Out, "registration problems:\n%v\n", err)
			return nil
		}

		fmt.Fprintln(c.Out, "ok")

		return nil
	}

	if name, _ := set.Flags().GetString(argsFlag); name != "" {
		target, ok := reg.Lookup(name)
		if !ok {
			fmt.Fprintf(c.Out, "no such command: %s\n", name)
			return nil
		}

		flags := argset.New(name)
		if err := target.AddArguments(flags); err != nil {
			return err
		}

		fmt.Fprintln(c.Out, strings.Join(flags.FlagNames(), " "))

		return nil
	}

	if names, _ := set.Flags().GetBool(namesFlag); names {
		fmt.Fprintln(c.Out, strings.Join(reg.Names(), " "))
		return nil
	}

	for _, cm := range reg.All() {
		fmt.Fprintf(c.Out, "%-12s %s\n", cm.Name(), cm.Description())
	}

	return nil
}
