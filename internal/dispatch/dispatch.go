// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package dispatch builds one argument set per registered command, resolves
// the selected command name and invokes it. A command whose argument setup
// fails because an optional capability is missing degrades to a stand-in
// instead of taking the whole tool down with it.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/ctxlog"
	"github.com/daqtools/daqctl/internal/registry"
)

// Exit codes. Only zero versus non-zero is contractual; the distinct values
// keep failure classes apart for scripts that care.
const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitUnavailable = 3
	ExitInterrupted = 130
)

// Dispatcher resolves and runs one subcommand per process invocation.
type Dispatcher struct {
	// Prog is the name used in messages, "daqctl" by default.
	Prog string
	// Stdout and Stderr receive normal and error output.
	Stdout io.Writer
	Stderr io.Writer

	reg *registry.Registry
}

// New creates a dispatcher over reg writing to the process streams.
func New(reg *registry.Registry) *Dispatcher {
	return &Dispatcher{
		Prog:   "daqctl",
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		reg:    reg,
	}
}

// entry pairs a command with its built argument set. problem records that
// the command was substituted by a stand-in during setup.
type entry struct {
	cmd     command.Command
	set     *argset.Set
	problem bool
}

// Main parses argv (the raw process arguments, program name excluded),
// resolves the selected command and runs it, returning the process exit
// code.
func (d *Dispatcher) Main(ctx context.Context, argv []string) int {
	if len(argv) == 0 {
		d.printCommandList()
		return ExitUsage
	}

	if argv[0] == "-h" || argv[0] == "--help" {
		d.printCommandList()
		return ExitSuccess
	}

	table, err := d.buildTable(ctx)
	if err != nil {
		fmt.Fprintf(d.Stderr, "%s: %v\n", d.Prog, err)
		return ExitFailure
	}

	name := argv[0]

	ent, ok := table[name]
	if !ok {
		fmt.Fprintf(d.Stderr, "%s: unknown command %q\n", d.Prog, name)
		return ExitUsage
	}

	if err := ent.set.Parse(argv[1:]); err != nil {
		fmt.Fprintf(d.Stderr, "%s %s: %v\n", d.Prog, name, err)
		return ExitUsage
	}

	if left := ent.set.Leftovers(); len(left) > 0 {
		// The leftovers may only look like bad flags because the real
		// command never got to declare its grammar. Report the root cause
		// in that case instead of a misleading usage error.
		if ent.problem {
			err := ent.cmd.Run(ctx, ent.set)
			fmt.Fprintf(d.Stderr, "%s %s: %v\n", d.Prog, name, err)

			return ExitUnavailable
		}

		// Commands do not declare -h themselves, so a help request
		// surfaces as a leftover.
		if wantsHelp(left) {
			d.printCommandHelp(ent.cmd, ent.set)
			return ExitSuccess
		}

		fmt.Fprintf(d.Stderr, "%s %s: unknown argument(s): %s\n",
			d.Prog, name, strings.Join(left, " "))

		return ExitUsage
	}

	if !ent.set.NoHostCheck() && !ent.cmd.IsValidHost(ent.set) {
		fmt.Fprintf(d.Stderr,
			"%s %s: cannot run here; are you sure this is the correct host?\n",
			d.Prog, name)

		return ExitFailure
	}

	if err := ent.cmd.Run(ctx, ent.set); err != nil {
		switch {
		case errors.Is(err, command.ErrInterrupted), errors.Is(err, context.Canceled):
			fmt.Fprintln(d.Stderr, "Interrupted.")
			return ExitInterrupted
		case errors.Is(err, command.ErrUnavailable):
			fmt.Fprintf(d.Stderr, "%s %s: %v\n", d.Prog, name, err)
			return ExitUnavailable
		default:
			fmt.Fprintf(d.Stderr, "%s %s: %v\n", d.Prog, name, err)
			return ExitFailure
		}
	}

	return ExitSuccess
}

// buildTable builds one argument set per registered command. A setup failure
// wrapping command.ErrUnavailable substitutes a stand-in under the same
// name; any other setup failure is a defect and propagates.
func (d *Dispatcher) buildTable(ctx context.Context) (map[string]entry, error) {
	table := make(map[string]entry, d.reg.Len())

	for _, c := range d.reg.All() {
		set := argset.New(c.Name())

		err := c.AddArguments(set)
		if err == nil {
			table[c.Name()] = entry{cmd: c, set: set}
			continue
		}

		if !errors.Is(err, command.ErrUnavailable) {
			return nil, fmt.Errorf("cannot set up command %q: %w", c.Name(), err)
		}

		ctxlog.Debug(ctx, "command degraded", "command", c.Name(), "error", err)

		// The stand-in gets an empty grammar: whatever flags the user
		// meant for the real command become leftovers, which routes
		// resolution to the load-failure report.
		table[c.Name()] = entry{
			cmd:     command.NewProblem(c.Name(), err),
			set:     argset.New(c.Name()),
			problem: true,
		}
	}

	return table, nil
}

func wantsHelp(left []string) bool {
	for _, a := range left {
		if a == "-h" || a == "--help" {
			return true
		}
	}

	return false
}

// printCommandHelp writes one command's description and argument usage.
func (d *Dispatcher) printCommandHelp(c command.Command, set *argset.Set) {
	fmt.Fprintf(d.Stdout, "%s - %s\n\nusage: %s", c.Name(), c.Description(), set.Usage())

	if e := c.Epilog(); e != "" {
		fmt.Fprintf(d.Stdout, "\n%s\n", e)
	}
}

// printCommandList writes the known command names and descriptions.
func (d *Dispatcher) printCommandList() {
	fmt.Fprintf(d.Stdout, "usage: %s <command> [arguments]\n\ncommands:\n", d.Prog)

	for _, c := range d.reg.All() {
		fmt.Fprintf(d.Stdout, "  %-12s %s\n", c.Name(), c.Description())
	}
}
