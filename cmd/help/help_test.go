// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package help

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCmd struct {
	name    string
	epilog  string
	addArgs func(*argset.Set) error
}

func (f *fakeCmd) Name() string        { return f.name }
func (f *fakeCmd) Description() string { return "does " + f.name + " things" }
func (f *fakeCmd) Epilog() string      { return f.epilog }

func (f *fakeCmd) AddArguments(set *argset.Set) error {
	if f.addArgs != nil {
		return f.addArgs(set)
	}

	return nil
}

func (f *fakeCmd) IsValidHost(*argset.Set) bool           { return true }
func (f *fakeCmd) Run(context.Context, *argset.Set) error { return nil }

func setup(t *testing.T, cmds ...command.Command) (*cmd, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}

	return &cmd{
		Out: out,
		newRegistry: func() *registry.Registry {
			reg := registry.New()
			for _, c := range cmds {
				_ = reg.Add(c)
			}

			return reg
		},
	}, out
}

func parse(t *testing.T, c *cmd, argv ...string) *argset.Set {
	t.Helper()

	set := argset.New(c.Name())
	require.NoError(t, c.AddArguments(set))
	require.NoError(t, set.Parse(argv))

	return set
}

func TestRun_ListsAllWithoutArgument(t *testing.T) {
	c, out := setup(t, &fakeCmd{name: "launch"}, &fakeCmd{name: "kill"})

	require.NoError(t, c.Run(context.Background(), parse(t, c)))

	assert.Contains(t, out.String(), "launch")
	assert.Contains(t, out.String(), "does kill things")
}

func TestRun_DescribesOneCommand(t *testing.T) {
	target := &fakeCmd{
		name:   "launch",
		epilog: "Stops running components first.",
		addArgs: func(set *argset.Set) error {
			set.Flags().BoolP("force", "f", false, "kill without asking")
			return nil
		},
	}
	c, out := setup(t, target)

	require.NoError(t, c.Run(context.Background(), parse(t, c, "launch")))

	assert.Contains(t, out.String(), "launch - does launch things")
	assert.Contains(t, out.String(), "--force")
	assert.Contains(t, out.String(), "Stops running components first.")
}

func TestRun_UnknownCommandIsNonFatal(t *testing.T) {
	c, out := setup(t, &fakeCmd{name: "launch"})

	require.NoError(t, c.Run(context.Background(), parse(t, c, "nope")))

	assert.Contains(t, out.String(), "no such command: nope")
}

func TestRun_DegradedCommandShowsTheFailure(t *testing.T) {
	target := &fakeCmd{
		name: "flash",
		addArgs: func(*argset.Set) error {
			return command.Unavailable("flasher kit", errors.New("not installed"))
		},
	}
	c, out := setup(t, target)

	require.NoError(t, c.Run(context.Background(), parse(t, c, "flash")))

	assert.Contains(t, out.String(), "arguments unavailable")
	assert.Contains(t, out.String(), "flasher kit")
}
