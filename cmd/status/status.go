// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package status reports which DAQ components are running.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TylerBrock/colorjson"
	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/cluster"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/hostid"
	"github.com/daqtools/daqctl/internal/launcher"
	"github.com/daqtools/daqctl/internal/workspace"
	"golang.org/x/term"
)

const (
	jsonFlag = "json"
	hostFlag = "host"
)

// ErrUnknownHost is returned when --host names a host with no components.
var ErrUnknownHost = errors.New("no components on host")

type cmd struct {
	// Out is the report destination, os.Stdout unless a test rebinds it.
	Out io.Writer
}

// New returns the status command.
func New() command.Command {
	return &cmd{Out: os.Stdout}
}

func (*cmd) Name() string {
	return "status"
}

func (*cmd) Description() string {
	return "Report which DAQ components are running."
}

func (*cmd) Epilog() string {
	return "Liveness is probed from the pidfiles the launcher keeps per component."
}

func (*cmd) AddArguments(set *argset.Set) error {
	set.Flags().BoolP(jsonFlag, "j", false, "emit the report as JSON")
	set.Flags().String(hostFlag, "", "report only components on this host")
	set.EnableNoHostCheck()

	return nil
}

func (*cmd) IsValidHost(*argset.Set) bool {
	return hostid.IsHost(hostid.Control)
}

func (c *cmd) Run(ctx context.Context, set *argset.Set) error {
	fs := workspace.FsFactory()

	paths, err := workspace.Default()
	if err != nil {
		return err
	}

	desc, err := cluster.Load(fs, paths.ClusterFile())
	if err != nil {
		return err
	}

	if host, _ := set.Flags().GetString(hostFlag); host != "" {
		if desc, err = filterHost(desc, host); err != nil {
			return err
		}
	}

	local, err := hostid.Hostname()
	if err != nil {
		return fmt.Errorf("cannot determine local hostname: %w", err)
	}

	statuses, err := launcher.New(desc, fs, paths.PidDir(), local).Probe(ctx)
	if err != nil {
		return err
	}

	if asJSON, _ := set.Flags().GetBool(jsonFlag); asJSON {
		return c.writeJSON(statuses)
	}

	for _, s := range statuses {
		state := "stopped"
		if s.Running {
			state = fmt.Sprintf("running (pid %d)", s.Pid)
		}

		fmt.Fprintf(c.Out, "%-20s %-12s %s\n", s.Component, s.Host, state)
	}

	return nil
}

// filterHost narrows the description to the components pinned to one host.
func filterHost(desc *cluster.Description, host string) (*cluster.Description, error) {
	comps := desc.ComponentsOn(host)
	if len(comps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHost, host)
	}

	narrowed := *desc
	narrowed.Components = comps

	return &narrowed, nil
}

// writeJSON renders the report as JSON, colorized when stdout is a
// terminal.
func (c *cmd) writeJSON(statuses []launcher.Status) error {
	raw, err := json.Marshal(statuses)
	if err != nil {
		return fmt.Errorf("cannot encode status report: %w", err)
	}

	if f, ok := c.Out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			formatter := colorjson.NewFormatter()
			formatter.Indent = 2

			if pretty, err := formatter.Marshal(v); err == nil {
				fmt.Fprintln(c.Out, string(pretty))
				return nil
			}
		}
	}

	fmt.Fprintln(c.Out, string(raw))

	return nil
}
